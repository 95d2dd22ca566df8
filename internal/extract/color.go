package extract

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/plotcheck/internal/tolerance"
)

var (
	errComponentCount = errors.New("color must have 3 or 4 components")
	errOutOfRange     = errors.New("color component outside [0,1]")
	errNotFinite      = errors.New("value is not finite")
)

// NormalizeColor converts a raw color into a 4-component RGBA vector with
// components in [0,1]. Three-component inputs get alpha 1.
//
// Accepted shapes: []float64, [3]float64, [4]float64, []any of numbers,
// color.Color and hex strings (#rgb, #rrggbb, #rrggbbaa).
func NormalizeColor(v any) (tolerance.Vector, error) {
	switch c := v.(type) {
	case nil:
		return nil, errors.New("color is missing")
	case []float64:
		return fromComponents(c)
	case [3]float64:
		return fromComponents(c[:])
	case [4]float64:
		return fromComponents(c[:])
	case []any:
		comps := make([]float64, len(c))
		for i, x := range c {
			f, ok := toFloat(x)
			if !ok {
				return nil, fmt.Errorf("color component %d is %T, not a number", i, x)
			}
			comps[i] = f
		}
		return fromComponents(comps)
	case string:
		return parseHex(c)
	case color.Color:
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return tolerance.Vector{
			float64(n.R) / 255,
			float64(n.G) / 255,
			float64(n.B) / 255,
			float64(n.A) / 255,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported color value of type %T", v)
	}
}

func fromComponents(comps []float64) (tolerance.Vector, error) {
	if len(comps) != 3 && len(comps) != 4 {
		return nil, fmt.Errorf("%w, got %d", errComponentCount, len(comps))
	}
	out := make(tolerance.Vector, 4)
	out[3] = 1
	for i, f := range comps {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errNotFinite
		}
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("%w: %v", errOutOfRange, f)
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func parseHex(s string) (tolerance.Vector, error) {
	h, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return nil, fmt.Errorf("color string %q is not a hex color", s)
	}
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return nil, fmt.Errorf("hex color %q must have 3, 6 or 8 digits", s)
	}
	out := tolerance.Vector{0, 0, 0, 1}
	for i := 0; i < len(h)/2; i++ {
		b, err := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("hex color %q: %w", s, err)
		}
		out[i] = float64(b) / 255
	}
	return out, nil
}

func checkScalar(ch string, f float64, upper float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%s: %w", ch, errNotFinite)
	}
	if f < 0 {
		return fmt.Errorf("%s must be non-negative, got %v", ch, f)
	}
	if upper > 0 && f > upper {
		return fmt.Errorf("%s must be at most %v, got %v", ch, upper, f)
	}
	return nil
}
