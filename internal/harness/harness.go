package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/plotcheck/internal/canon"
	"github.com/roach88/plotcheck/internal/expect"
	"github.com/roach88/plotcheck/internal/extract"
	"github.com/roach88/plotcheck/internal/scene"
	"github.com/roach88/plotcheck/internal/verify"
)

// PlotFunc produces one rendered scene. It takes no input so that every
// call renders the same figure from scratch.
type PlotFunc func() (scene.Scene, error)

// InvocationCheck is the name of the result returned when the plot call fails.
const InvocationCheck = "invocation"

// Harness wraps plot-producing calls and verifies their output.
//
// A Harness holds no per-call state and may be reused for sequential
// calls. Each call owns its scene and closes it before returning.
type Harness struct {
	logger    *slog.Logger
	out       io.Writer
	color     bool
	defaults  expect.Defaults
	extractor *extract.Extractor
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithOutput writes the text report of every call to w.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) { h.out = w }
}

// WithColor enables ANSI colors in the text report.
func WithColor(enabled bool) Option {
	return func(h *Harness) { h.color = enabled }
}

// WithDefaults sets the defaults merged into every expectation.
func WithDefaults(d expect.Defaults) Option {
	return func(h *Harness) { h.defaults = d }
}

// WithSampleLimit caps the sample values listed in failure details.
func WithSampleLimit(n int) Option {
	return func(h *Harness) { h.defaults.SampleLimit = n }
}

// WithTable replaces the extraction table.
func WithTable(t extract.Table) Option {
	return func(h *Harness) { h.extractor = extract.New(t) }
}

// New returns a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaults:  expect.BuiltinDefaults(),
		extractor: extract.New(nil),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Report is the outcome of one verification call.
type Report struct {
	// ID is a name-based UUID derived from Fingerprint. Identical results
	// always get identical IDs.
	ID string `json:"id"`

	// Fingerprint is the domain-separated SHA-256 of the canonical result.
	Fingerprint string `json:"fingerprint"`

	Result *verify.Result `json:"result"`
}

// Passed reports whether the verification passed.
func (r *Report) Passed() bool { return r != nil && r.Result != nil && r.Result.Passed }

// Verify runs plot and verifies the scene against spec.
//
// Rendering mismatches are reported as failed checks inside the result.
// The error is non-nil only when the run was aborted: the plot call failed
// (the result is then a single failed "invocation" check), the expectation
// is invalid (no result), or expected structure was missing under
// fail_on_missing (the result holds the checks run so far). The
// expectation is validated before plot is called.
func (h *Harness) Verify(plot PlotFunc, spec *expect.Spec) (*verify.Result, error) {
	rep, err := h.Run(plot, spec)
	if rep == nil {
		return nil, err
	}
	return rep.Result, err
}

// Run is Verify returning the full report.
func (h *Harness) Run(plot PlotFunc, spec *expect.Spec) (*Report, error) {
	s := expect.Spec{}
	if spec != nil {
		s = *spec
	}
	s.Merge(h.defaults)
	name := s.Name
	if name == "" {
		name = "figure"
	}

	if err := s.Validate(); err != nil {
		h.logger.Error("invalid expectation", "name", name, "error", err)
		return nil, err
	}

	h.logger.Debug("invoking", "name", name)
	sc, err := invoke(plot)
	if sc != nil {
		defer func() {
			if cerr := sc.Close(); cerr != nil {
				h.logger.Warn("failed to close scene", "name", name, "error", cerr)
			}
		}()
	}
	if err != nil {
		h.logger.Error("invocation failed", "name", name, "error", err)
		res := verify.Fail(InvocationCheck, verify.KindInvocation,
			fmt.Sprintf("invocation failed: %v", err), nil)
		return h.finish(name, res), verify.NewInvocationError(err)
	}

	h.logger.Debug("verifying", "name", name, "subplots", len(sc.Subplots()))
	v := newVerification(h, &s, sc)
	checks, abort := v.run()
	res := verify.Compose(name, checks...)

	h.logger.Debug("reporting", "name", name)
	rep := h.finish(name, res)
	if abort != nil {
		return rep, abort
	}
	return rep, nil
}

// invoke calls plot, converting panics and nil scenes into errors. Any
// scene returned alongside an error is closed.
func invoke(plot PlotFunc) (sc scene.Scene, err error) {
	if plot == nil {
		return nil, errors.New("no plot function")
	}
	defer func() {
		if r := recover(); r != nil {
			sc = nil
			err = fmt.Errorf("plot function panicked: %v", r)
		}
	}()
	sc, err = plot()
	if err != nil {
		if sc != nil {
			_ = sc.Close()
		}
		return nil, err
	}
	if sc == nil {
		return nil, errors.New("plot function returned no scene")
	}
	return sc, nil
}

// finish fingerprints the result, writes the text report and logs a
// summary.
func (h *Harness) finish(name string, res *verify.Result) *Report {
	rep := &Report{Result: res}
	fp, err := canon.Fingerprint(canon.DomainReport, res.Map())
	if err != nil {
		h.logger.Warn("failed to fingerprint result", "name", name, "error", err)
	} else {
		rep.Fingerprint = fp
		rep.ID = canon.ReportID(fp).String()
	}

	if h.out != nil {
		if err := WriteText(h.out, rep, TextOptions{Color: h.color}); err != nil {
			h.logger.Warn("failed to write report", "name", name, "error", err)
		}
	}

	failures := res.Failures()
	for _, f := range failures {
		h.logger.Debug("check failed", "check", f.Name, "kind", string(f.Kind), "message", f.Message)
	}
	h.logger.Info("verification complete",
		"name", name,
		"passed", res.Passed,
		"checks", len(res.Leaves()),
		"failed", len(failures),
		"report_id", rep.ID,
	)
	return rep
}
