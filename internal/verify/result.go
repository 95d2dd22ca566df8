package verify

import (
	"fmt"
	"strings"
)

// Result is the uniform outcome of every check.
//
// A leaf result describes one check. A composite result holds child
// checks in Checks and passes only when all of them pass.
type Result struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`

	// Kind categorizes a failed leaf. It is empty for passing results.
	Kind Kind `json:"kind,omitempty"`

	Details map[string]any `json:"details,omitempty"`
	Checks  []*Result      `json:"checks,omitempty"`
}

// Pass returns a passing leaf result.
func Pass(name, message string, details map[string]any) *Result {
	return &Result{Name: name, Passed: true, Message: message, Details: details}
}

// Fail returns a failing leaf result.
func Fail(name string, kind Kind, message string, details map[string]any) *Result {
	return &Result{Name: name, Passed: false, Kind: kind, Message: message, Details: details}
}

// Compose combines checks by logical AND. Nil checks are skipped. A
// composite with no checks passes.
func Compose(name string, checks ...*Result) *Result {
	r := &Result{Name: name, Passed: true}
	var failed []string
	for _, c := range checks {
		if c == nil {
			continue
		}
		r.Checks = append(r.Checks, c)
		if !c.Passed {
			r.Passed = false
			failed = append(failed, c.Name)
		}
	}
	switch {
	case len(r.Checks) == 0:
		r.Message = "no checks"
	case r.Passed:
		r.Message = fmt.Sprintf("all %d checks passed", len(r.Checks))
	default:
		r.Message = fmt.Sprintf("%d of %d checks failed: %s",
			len(failed), len(r.Checks), strings.Join(failed, ", "))
	}
	return r
}

// Add appends a child check, updating the pass state and message.
func (r *Result) Add(c *Result) {
	if c == nil {
		return
	}
	*r = *Compose(r.Name, append(r.Checks, c)...)
}

// Leaf reports whether r has no child checks.
func (r *Result) Leaf() bool { return len(r.Checks) == 0 }

// Map returns r as a {passed, message, details} mapping. Child results are
// nested under details keyed by child name.
func (r *Result) Map() map[string]any {
	details := make(map[string]any, len(r.Details)+len(r.Checks))
	for k, v := range r.Details {
		details[k] = v
	}
	if r.Kind != "" {
		details["kind"] = string(r.Kind)
	}
	for _, c := range r.Checks {
		key := c.Name
		for n := 2; ; n++ {
			if _, taken := details[key]; !taken {
				break
			}
			key = fmt.Sprintf("%s#%d", c.Name, n)
		}
		details[key] = c.Map()
	}
	return map[string]any{
		"passed":  r.Passed,
		"message": r.Message,
		"details": details,
	}
}

// Leaves returns every leaf check in depth-first order.
func (r *Result) Leaves() []*Result {
	if r.Leaf() {
		return []*Result{r}
	}
	var out []*Result
	for _, c := range r.Checks {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Failures returns the failing leaf checks in depth-first order.
func (r *Result) Failures() []*Result {
	var out []*Result
	for _, l := range r.Leaves() {
		if !l.Passed {
			out = append(out, l)
		}
	}
	return out
}

// Find returns the first check named name, searching depth-first.
func (r *Result) Find(name string) *Result {
	if r.Name == name {
		return r
	}
	for _, c := range r.Checks {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}
