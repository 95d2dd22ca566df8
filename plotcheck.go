// Package plotcheck verifies rendered plots against declared expectations:
// that visual channels vary, that legends agree with plotted data, and
// that legends are arranged and placed as intended.
//
// Basic usage with a go-chart figure:
//
//	res, err := plotcheck.Verify(plotcheck.Chart(buildChart), &plotcheck.Expectation{
//	    ExpectedChannels:        map[string][]string{plotcheck.ChartSubplot: {"color"}},
//	    VerifyLegendConsistency: true,
//	})
//	if err != nil {
//	    // invocation failure, invalid expectation or missing structure
//	}
//	if !res.Passed {
//	    log.Println(plotcheck.Summary(res))
//	}
//
// Any renderer can be verified by returning a Scene from a PlotFunc;
// Figure is an in-memory Scene that adapters and tests can fill in.
package plotcheck

import (
	"github.com/wcharczuk/go-chart/v2"

	"github.com/roach88/plotcheck/internal/expect"
	"github.com/roach88/plotcheck/internal/gochart"
	"github.com/roach88/plotcheck/internal/harness"
	"github.com/roach88/plotcheck/internal/scene"
	"github.com/roach88/plotcheck/internal/verify"
)

type (
	// PlotFunc produces one rendered scene from scratch on every call.
	PlotFunc = harness.PlotFunc

	// Scene is the rendered output a PlotFunc returns.
	Scene = scene.Scene

	// Figure is an in-memory Scene.
	Figure = scene.Figure

	// Scene building blocks.
	Subplot       = scene.Subplot
	ArtifactGroup = scene.ArtifactGroup
	Element       = scene.Element
	Raw           = scene.Raw
	Legend        = scene.Legend
	Entry         = scene.Entry
	Rect          = scene.Rect
	Kind          = scene.Kind

	// Expectation declares what a figure must exhibit.
	Expectation = expect.Spec

	// Result is one check, or a composition of checks.
	Result = verify.Result

	// Report is a fingerprinted result.
	Report = harness.Report

	// Harness wraps plot calls and verifies their scenes.
	Harness = harness.Harness

	// Option configures a Harness.
	Option = harness.Option
)

// Artifact kinds.
const (
	PointCloud   = scene.KindPointCloud
	LineSet      = scene.KindLineSet
	BarGroup     = scene.KindBarGroup
	PolygonGroup = scene.KindPolygonGroup
	Image        = scene.KindImage
)

// ChartSubplot is the subplot ID go-chart figures are verified under.
const ChartSubplot = gochart.SubplotID

// Harness options.
var (
	WithLogger      = harness.WithLogger
	WithOutput      = harness.WithOutput
	WithColor       = harness.WithColor
	WithDefaults    = harness.WithDefaults
	WithSampleLimit = harness.WithSampleLimit
)

// New returns a Harness.
func New(opts ...Option) *Harness {
	return harness.New(opts...)
}

// Verify calls plot once and verifies its scene against exp using a
// Harness built from opts.
func Verify(plot PlotFunc, exp *Expectation, opts ...Option) (*Result, error) {
	return harness.New(opts...).Verify(plot, exp)
}

// LoadExpectation reads a YAML or CUE expectation file.
func LoadExpectation(path string) (*Expectation, error) {
	return expect.Load(path)
}

// ParseExpectation parses a YAML expectation. Unknown fields are rejected.
func ParseExpectation(data []byte) (*Expectation, error) {
	return expect.ParseYAML(data)
}

// LoadFigure reads a YAML scene fixture.
func LoadFigure(path string) (*Figure, error) {
	return scene.LoadFigure(path)
}

// Chart wraps a go-chart line or scatter chart builder.
func Chart(build func() (*chart.Chart, error)) PlotFunc {
	return gochart.Plot(build)
}

// BarChart wraps a go-chart bar chart builder.
func BarChart(build func() (*chart.BarChart, error)) PlotFunc {
	return gochart.PlotBar(build)
}

// PieChart wraps a go-chart pie chart builder.
func PieChart(build func() (*chart.PieChart, error)) PlotFunc {
	return gochart.PlotPie(build)
}

// Summary returns a one-line description of res.
func Summary(res *Result) string {
	return harness.Summary(res)
}

// Error predicates.
var (
	IsInvocationError       = verify.IsInvocationError
	IsConfigurationError    = verify.IsConfigurationError
	IsMissingStructureError = verify.IsMissingStructureError
)
