package harness

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plotcheck/internal/scene"
	"github.com/roach88/plotcheck/internal/verify"
)

func TestLoadScenario_Inline(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/scatter_pass.yaml")
	require.NoError(t, err)
	assert.Equal(t, "scatter_pass", sc.Name)
	assert.True(t, sc.ShouldPass())

	spec, err := sc.Spec()
	require.NoError(t, err)
	assert.Equal(t, "scatter_pass", spec.Name, "expectation name defaults to the scenario name")
	assert.Equal(t, 3, spec.Threshold())

	out, err := New().RunScenario(sc)
	require.NoError(t, err)
	require.NoError(t, out.Err)
	assert.True(t, out.Report.Passed(), out.Report.Result.Message)
	assert.True(t, out.Matched())
}

func TestLoadScenario_FilesAndCUE(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/combined_legend.yaml")
	require.NoError(t, err)
	assert.False(t, sc.ShouldPass())

	out, err := New().RunScenario(sc)
	require.NoError(t, err)
	require.NoError(t, out.Err)
	assert.False(t, out.Report.Passed())
	assert.True(t, out.Matched(), "expected failure is a match")

	st := out.Report.Result.Find("strategy/split")
	require.NotNil(t, st)
	assert.Equal(t, true, st.Details["strategy_mismatch"])
}

func TestScenario_PlotBuildsFreshFigures(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/scatter_pass.yaml")
	require.NoError(t, err)

	plot := sc.Plot()
	a, err := plot()
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := plot()
	require.NoError(t, err)
	assert.False(t, b.(*scene.Figure).Closed())
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no name", "figure: {subplots: []}\n", "name is required"},
		{"no figure", "name: x\n", "exactly one of figure and figure_file"},
		{"both figures", "name: x\nfigure: {subplots: []}\nfigure_file: f.yaml\n", "exactly one of figure and figure_file"},
		{"both expects", "name: x\nfigure: {subplots: []}\nexpect: {}\nexpect_file: e.yaml\n", "mutually exclusive"},
		{"unknown field", "name: x\nfigure: {subplots: []}\nwant_passes: true\n", "want_passes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunScenario_BadExpectation(t *testing.T) {
	sc, err := ParseScenario([]byte(`
name: typo
figure: {subplots: [{id: ax0}]}
expect: {tolerence: 0.1}
`))
	require.NoError(t, err)

	_, err = New().RunScenario(sc)
	require.Error(t, err)
	assert.True(t, verify.IsConfigurationError(err))
}

func TestRunScenario_BadFigureIsInvocationFailure(t *testing.T) {
	sc, err := ParseScenario([]byte(`
name: bad_kind
figure: {subplots: [{id: ax0, groups: [{kind: hexbin}]}]}
want_pass: false
`))
	require.NoError(t, err)

	out, err := New().RunScenario(sc)
	require.NoError(t, err)
	assert.True(t, verify.IsInvocationError(out.Err))
	assert.Equal(t, InvocationCheck, out.Report.Result.Name)
	assert.True(t, out.Matched())
}

func writeStripes(t *testing.T, path string, colors ...color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4*len(colors), 4))
	for x := 0; x < img.Bounds().Dx(); x++ {
		for y := 0; y < 4; y++ {
			img.SetNRGBA(x, y, colors[x/4])
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRunScenario_RasterImage(t *testing.T) {
	dir := t.TempDir()
	writeStripes(t, filepath.Join(dir, "heat.png"),
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{G: 255, A: 255},
		color.NRGBA{B: 255, A: 255})

	scenarioPath := filepath.Join(dir, "heatmap.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(`
name: heatmap
figure:
  canvas: {x: 0, y: 0, width: 100, height: 100}
  subplots:
    - id: ax0
      groups:
        - kind: image
          raster: heat.png
expect:
  expected_channels:
    ax0: [color]
  min_unique_threshold: 3
`), 0o644))

	sc, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	out, err := New().RunScenario(sc)
	require.NoError(t, err)
	require.NoError(t, out.Err)
	assert.True(t, out.Report.Passed(), out.Report.Result.Message)
	assert.Equal(t, 3, out.Report.Result.Find("ax0/color/variation").Details["unique_count"])
}
