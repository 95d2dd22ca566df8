package verify

import (
	"errors"
	"fmt"
)

// Kind categorizes verification errors and failed checks.
type Kind string

const (
	// KindInvocation means the wrapped plotting call failed. Always fatal.
	KindInvocation Kind = "invocation"

	// KindExtraction means a specific raw value could not be normalized.
	KindExtraction Kind = "extraction"

	// KindMissingStructure means an expected artifact group or legend is
	// wholly absent. Soft unless escalated by fail_on_missing.
	KindMissingStructure Kind = "missing_structure"

	// KindToleranceMismatch means values disagree beyond the tolerance.
	KindToleranceMismatch Kind = "tolerance_mismatch"

	// KindCountMismatch means distinct-value or entry counts disagree.
	KindCountMismatch Kind = "count_mismatch"

	// KindConfiguration means the caller supplied an invalid expectation.
	// Always fatal.
	KindConfiguration Kind = "configuration"
)

// Error is a verification error with a category and structured context.
type Error struct {
	Kind    Kind
	Message string

	// Source names the subplot, legend or expectation field involved.
	Source string

	// Escalated marks a missing-structure error raised under fail_on_missing.
	Escalated bool

	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s (source=%s)", e.Kind, e.Message, e.Source)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Fatal reports whether the error aborts a verification run.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case KindInvocation, KindConfiguration:
		return true
	case KindMissingStructure:
		return e.Escalated
	default:
		return false
	}
}

// NewInvocationError wraps a failure of the plotting call.
func NewInvocationError(err error) *Error {
	return &Error{Kind: KindInvocation, Message: "invocation failed", Err: err}
}

// NewConfigurationError reports an invalid expectation field.
func NewConfigurationError(field, format string, args ...any) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf(format, args...),
		Source:  field,
	}
}

// NewMissingStructureError reports absent structure escalated to fatal.
func NewMissingStructureError(source, message string) *Error {
	return &Error{
		Kind:      KindMissingStructure,
		Message:   message,
		Source:    source,
		Escalated: true,
	}
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsInvocationError reports whether err is an invocation error.
// Uses errors.As to handle wrapped errors.
func IsInvocationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInvocation
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConfiguration
}

// IsMissingStructureError reports whether err is a missing-structure error.
func IsMissingStructureError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindMissingStructure
}

// IsFatal reports whether err aborts a verification run.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal()
	}
	return false
}
