package extract

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plotcheck/internal/scene"
	"github.com/roach88/plotcheck/internal/tolerance"
)

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want tolerance.Vector
	}{
		{"rgb slice", []float64{1, 0.5, 0}, tolerance.Vector{1, 0.5, 0, 1}},
		{"rgba slice", []float64{1, 0.5, 0, 0.25}, tolerance.Vector{1, 0.5, 0, 0.25}},
		{"rgb array", [3]float64{0, 0, 1}, tolerance.Vector{0, 0, 1, 1}},
		{"rgba array", [4]float64{0, 0, 1, 0}, tolerance.Vector{0, 0, 1, 0}},
		{"yaml ints", []any{1, 0, 0}, tolerance.Vector{1, 0, 0, 1}},
		{"yaml floats", []any{0.5, 0.5, 0.5, 1.0}, tolerance.Vector{0.5, 0.5, 0.5, 1}},
		{"short hex", "#f00", tolerance.Vector{1, 0, 0, 1}},
		{"long hex", "#0000ff", tolerance.Vector{0, 0, 1, 1}},
		{"hex with alpha", "#00ff0000", tolerance.Vector{0, 1, 0, 0}},
		{"color.Color", color.NRGBA{R: 255, B: 255, A: 255}, tolerance.Vector{1, 0, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeColor_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "missing"},
		{"two components", []float64{1, 1}, "3 or 4 components"},
		{"five components", []any{1, 1, 1, 1, 1}, "3 or 4 components"},
		{"out of range", []float64{1.2, 0, 0}, "outside [0,1]"},
		{"negative", []float64{0, -0.1, 0}, "outside [0,1]"},
		{"nan", []float64{math.NaN(), 0, 0}, "not finite"},
		{"non-numeric component", []any{"red", 0, 0}, "not a number"},
		{"named color", "red", "not a hex color"},
		{"bad hex length", "#12345", "3, 6 or 8 digits"},
		{"bad hex digit", "#gg0000", "hex color"},
		{"unsupported type", 42, "unsupported color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeColor(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSequence_Distinct(t *testing.T) {
	s := Sequence{
		Channel: scene.ChannelSize,
		Numeric: []tolerance.Vector{{1}, {1.01}, {5}, {1}, {9}},
	}
	assert.Equal(t, []int{0, 2, 4}, s.Distinct(0.1))
	assert.Equal(t, []int{0, 1, 2, 4}, s.Distinct(0))

	d := Sequence{Channel: scene.ChannelMarker, Discrete: []string{"o", "o", "s"}}
	assert.Equal(t, []int{0, 2}, d.Distinct(0))
}

func TestSequence_Samples(t *testing.T) {
	s := Sequence{
		Channel: scene.ChannelAlpha,
		Numeric: []tolerance.Vector{{0.1}, {0.2}, {0.3}},
	}
	assert.Equal(t, []string{"0.1", "0.2"}, s.Samples(2))
	assert.Equal(t, []string{"0.1", "0.2", "0.3"}, s.Samples(0))
	assert.Equal(t, []string{"0.1", "0.2", "0.3"}, s.Samples(10))
}

func TestSequence_Contains(t *testing.T) {
	plotted := Sequence{Channel: scene.ChannelColor, Numeric: []tolerance.Vector{{1, 0, 0, 1}}}
	legend := Sequence{Channel: scene.ChannelColor, Numeric: []tolerance.Vector{{0, 0, 1, 1}, {0.999, 0, 0, 1}}}

	assert.True(t, plotted.Contains(legend, 0, 0.01))
	assert.False(t, plotted.Contains(legend, 0, 0))
}
