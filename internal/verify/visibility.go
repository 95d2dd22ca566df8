package verify

import (
	"fmt"

	"github.com/roach88/plotcheck/internal/scene"
)

// LegendStatus classifies a legend's presence.
type LegendStatus string

const (
	// StatusAbsent means no legend object exists.
	StatusAbsent LegendStatus = "absent"

	// StatusVisible means the legend is drawn with entries on the canvas.
	StatusVisible LegendStatus = "visible"

	// StatusNotVisible means a legend object exists but is not drawn in a
	// usable way. Reason says why.
	StatusNotVisible LegendStatus = "not_visible"
)

// Reasons for StatusNotVisible.
const (
	ReasonHidden     = "hidden"
	ReasonEmpty      = "empty"
	ReasonZeroExtent = "zero_extent"
	ReasonOffCanvas  = "off_canvas"
)

// LegendVisibility is the visibility of one legend.
type LegendVisibility struct {
	Source  string       `json:"source"`
	Status  LegendStatus `json:"status"`
	Reason  string       `json:"reason,omitempty"`
	Entries int          `json:"entries"`

	// Figure marks a figure-level legend.
	Figure bool `json:"figure,omitempty"`

	// Clipped marks a visible legend that extends past the canvas.
	Clipped bool `json:"clipped,omitempty"`
}

// Visibility is the visibility of every legend slot in a scene.
type Visibility struct {
	// Legends holds one entry per subplot, sourced by subplot ID, followed
	// by one per figure-level legend, sourced "figure[i]".
	Legends []LegendVisibility

	// Visible is the number of legends with StatusVisible.
	Visible int
}

// ClassifyLegend determines whether lg is actually visible on canvas. A
// nil legend is absent. An empty canvas disables the off-canvas test.
func ClassifyLegend(source string, lg *scene.Legend, canvas scene.Rect) LegendVisibility {
	v := LegendVisibility{Source: source}
	if lg == nil {
		v.Status = StatusAbsent
		return v
	}
	v.Entries = len(lg.Entries)
	v.Status = StatusNotVisible

	switch {
	case lg.Hidden:
		v.Reason = ReasonHidden
	case len(lg.Entries) == 0:
		v.Reason = ReasonEmpty
	case lg.Bounds.Empty():
		v.Reason = ReasonZeroExtent
	case !canvas.Empty() && !canvas.Intersects(lg.Bounds):
		v.Reason = ReasonOffCanvas
	default:
		v.Status = StatusVisible
		v.Clipped = !canvas.Empty() && !canvas.Contains(lg.Bounds)
	}
	return v
}

// InspectVisibility classifies every subplot legend and figure legend of sc.
func InspectVisibility(sc scene.Scene) Visibility {
	canvas := sc.Canvas()
	var vis Visibility
	for _, sp := range sc.Subplots() {
		vis.Legends = append(vis.Legends, ClassifyLegend(sp.ID, sp.Legend, canvas))
	}
	for i := range sc.FigureLegends() {
		lg := sc.FigureLegends()[i]
		v := ClassifyLegend(fmt.Sprintf("figure[%d]", i), &lg, canvas)
		v.Figure = true
		vis.Legends = append(vis.Legends, v)
	}
	for _, l := range vis.Legends {
		if l.Status == StatusVisible {
			vis.Visible++
		}
	}
	return vis
}

// CheckVisibility checks that legends are actually visible.
//
// With an expected count, the number of visible legends must equal it.
// Without one, every legend that exists must be visible.
//
// Details list subplot legends under "legends" keyed by subplot ID and
// figure legends under "figure_legends" keyed "figure[i]".
func CheckVisibility(sc scene.Scene, expected *int) *Result {
	const name = "visibility"
	vis := InspectVisibility(sc)

	legends := make(map[string]any, len(vis.Legends))
	figure := make(map[string]any)
	var notVisible []string
	for _, l := range vis.Legends {
		entry := map[string]any{"status": string(l.Status), "entries": l.Entries}
		if l.Reason != "" {
			entry["reason"] = l.Reason
		}
		if l.Clipped {
			entry["clipped"] = true
		}
		if l.Figure {
			figure[l.Source] = entry
		} else {
			legends[l.Source] = entry
		}
		if l.Status == StatusNotVisible {
			notVisible = append(notVisible, fmt.Sprintf("%s (%s)", l.Source, l.Reason))
		}
	}
	details := map[string]any{
		"legends":       legends,
		"visible_count": vis.Visible,
	}
	if len(figure) > 0 {
		details["figure_legends"] = figure
	}

	if expected != nil {
		details["expected_count"] = *expected
		if vis.Visible != *expected {
			msg := fmt.Sprintf("%d visible legends, expected %d", vis.Visible, *expected)
			if len(notVisible) > 0 {
				msg += fmt.Sprintf("; present but not visible: %v", notVisible)
			}
			return Fail(name, KindCountMismatch, msg, details)
		}
		return Pass(name, fmt.Sprintf("%d visible legends as expected", vis.Visible), details)
	}

	if len(notVisible) > 0 {
		return Fail(name, KindMissingStructure,
			fmt.Sprintf("legends present but not visible: %v", notVisible), details)
	}
	return Pass(name, fmt.Sprintf("%d visible legends", vis.Visible), details)
}
