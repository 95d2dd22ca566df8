package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/plotcheck/internal/expect"
	"github.com/roach88/plotcheck/internal/scene"
)

// Scenario pairs a figure fixture with the expectation it is verified
// against. Scenario files drive both the golden tests and `plotcheck check`.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description,omitempty"`

	// Figure is an inline scene fixture. Exactly one of Figure and
	// FigureFile must be set.
	Figure *yaml.Node `yaml:"figure,omitempty"`

	// FigureFile is a path to a scene fixture, relative to the scenario file.
	FigureFile string `yaml:"figure_file,omitempty"`

	// Expect is an inline expectation. At most one of Expect and ExpectFile
	// may be set; with neither, the scenario only checks that the figure
	// renders.
	Expect *yaml.Node `yaml:"expect,omitempty"`

	// ExpectFile is a path to a YAML or CUE expectation, relative to the
	// scenario file.
	ExpectFile string `yaml:"expect_file,omitempty"`

	// WantPass is the expected verification outcome. Defaults to true.
	WantPass *bool `yaml:"want_pass,omitempty"`

	// dir is the directory holding the scenario file.
	dir string
}

// LoadScenario reads a scenario file. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

// ParseScenario parses scenario YAML. Relative paths inside it resolve
// against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if (s.Figure == nil) == (s.FigureFile == "") {
		return fmt.Errorf("scenario %s: exactly one of figure and figure_file is required", s.Name)
	}
	if s.Expect != nil && s.ExpectFile != "" {
		return fmt.Errorf("scenario %s: expect and expect_file are mutually exclusive", s.Name)
	}
	return nil
}

// ShouldPass returns the expected outcome.
func (s *Scenario) ShouldPass() bool {
	return s.WantPass == nil || *s.WantPass
}

// Plot returns a PlotFunc that builds the scenario's figure from scratch on
// every call, sampling referenced rasters.
func (s *Scenario) Plot() PlotFunc {
	return func() (scene.Scene, error) {
		var (
			fig     *scene.Figure
			err     error
			baseDir = s.dir
		)
		if s.Figure != nil {
			fig, err = scene.DecodeFigure(s.Figure)
		} else {
			path := s.resolve(s.FigureFile)
			baseDir = filepath.Dir(path)
			fig, err = scene.LoadFigure(path)
		}
		if err != nil {
			return nil, err
		}
		if err := fig.ResolveRasters(baseDir, scene.DefaultRasterCells); err != nil {
			return nil, err
		}
		return fig, nil
	}
}

// Spec loads the scenario's expectation. Its name defaults to the
// scenario name.
func (s *Scenario) Spec() (*expect.Spec, error) {
	var (
		spec *expect.Spec
		err  error
	)
	switch {
	case s.Expect != nil:
		spec, err = expect.DecodeYAML(s.Expect)
	case s.ExpectFile != "":
		spec, err = expect.Load(s.resolve(s.ExpectFile))
	default:
		spec = &expect.Spec{}
	}
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = s.Name
	}
	return spec, nil
}

func (s *Scenario) resolve(path string) string {
	if filepath.IsAbs(path) || s.dir == "" {
		return path
	}
	return filepath.Join(s.dir, path)
}

// ScenarioOutcome is the result of running one scenario.
type ScenarioOutcome struct {
	Scenario *Scenario
	Report   *Report

	// Err is the abort error of the run, if any.
	Err error
}

// Matched reports whether the run finished with the outcome the scenario
// expects. A run aborted before producing a report never matches.
func (o *ScenarioOutcome) Matched() bool {
	if o.Report == nil {
		return false
	}
	return o.Report.Passed() == o.Scenario.ShouldPass()
}

// RunScenario verifies one scenario. The returned error reports problems
// loading the expectation; verification aborts are recorded in the outcome.
func (h *Harness) RunScenario(s *Scenario) (*ScenarioOutcome, error) {
	spec, err := s.Spec()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	rep, err := h.Run(s.Plot(), spec)
	return &ScenarioOutcome{Scenario: s, Report: rep, Err: err}, nil
}
