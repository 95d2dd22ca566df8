// Package testutil builds scene fixtures for tests.
package testutil

import (
	"github.com/roach88/plotcheck/internal/scene"
)

// DefaultCanvas is the canvas used by NewFigure.
var DefaultCanvas = scene.Rect{Width: 640, Height: 480}

// FigureBuilder assembles a scene.Figure.
//
// Builders are not safe for concurrent use. Build returns a fresh copy, so
// one builder can back a PlotFunc that is called repeatedly.
type FigureBuilder struct {
	fig scene.Figure
}

// NewFigure starts a figure on DefaultCanvas.
func NewFigure() *FigureBuilder {
	return &FigureBuilder{fig: scene.Figure{Bounds: DefaultCanvas}}
}

// Canvas sets the canvas bounds.
func (b *FigureBuilder) Canvas(r scene.Rect) *FigureBuilder {
	b.fig.Bounds = r
	return b
}

// Subplot appends a subplot holding groups.
func (b *FigureBuilder) Subplot(id string, groups ...scene.ArtifactGroup) *FigureBuilder {
	b.fig.Plots = append(b.fig.Plots, scene.Subplot{ID: id, Groups: groups})
	return b
}

// Legend attaches lg to the most recently added subplot.
func (b *FigureBuilder) Legend(lg scene.Legend) *FigureBuilder {
	if n := len(b.fig.Plots); n > 0 {
		b.fig.Plots[n-1].Legend = &lg
	}
	return b
}

// FigureLegend appends a figure-level legend.
func (b *FigureBuilder) FigureLegend(lg scene.Legend) *FigureBuilder {
	b.fig.Legends = append(b.fig.Legends, lg)
	return b
}

// Build returns a deep enough copy of the figure that mutating it does not
// affect later builds.
func (b *FigureBuilder) Build() *scene.Figure {
	fig := scene.Figure{Bounds: b.fig.Bounds}
	for _, sp := range b.fig.Plots {
		cp := scene.Subplot{ID: sp.ID, Groups: append([]scene.ArtifactGroup(nil), sp.Groups...)}
		if sp.Legend != nil {
			lg := *sp.Legend
			lg.Entries = append([]scene.Entry(nil), sp.Legend.Entries...)
			cp.Legend = &lg
		}
		fig.Plots = append(fig.Plots, cp)
	}
	fig.Legends = append(fig.Legends, b.fig.Legends...)
	return &fig
}

// Group returns an artifact group of kind.
func Group(kind scene.Kind, elements ...scene.Element) scene.ArtifactGroup {
	return scene.ArtifactGroup{Kind: kind, Elements: elements}
}

// Points returns a point cloud with one element per color, all drawn with
// marker.
func Points(marker string, colors ...string) scene.ArtifactGroup {
	g := scene.ArtifactGroup{Kind: scene.KindPointCloud}
	for _, c := range colors {
		g.Elements = append(g.Elements, scene.Element{Raw: scene.Raw{Color: c, Marker: marker}})
	}
	return g
}

// Lines returns a line set with one line per color.
func Lines(colors ...string) scene.ArtifactGroup {
	g := scene.ArtifactGroup{Kind: scene.KindLineSet}
	for _, c := range colors {
		g.Elements = append(g.Elements, scene.Element{Raw: scene.Raw{Color: c, Style: "solid"}})
	}
	return g
}

// Elem returns an element carrying raw.
func Elem(label string, raw scene.Raw) scene.Element {
	return scene.Element{Label: label, Raw: raw}
}

// Entry returns a legend entry carrying raw.
func Entry(label string, raw scene.Raw) scene.Entry {
	return scene.Entry{Label: label, Raw: raw}
}

// ColorEntries returns one legend entry per color, labeled by the color.
func ColorEntries(colors ...string) []scene.Entry {
	out := make([]scene.Entry, len(colors))
	for i, c := range colors {
		out[i] = scene.Entry{Label: c, Raw: scene.Raw{Color: c}}
	}
	return out
}

// LegendAt returns a legend with entries placed at bounds.
func LegendAt(bounds scene.Rect, entries ...scene.Entry) scene.Legend {
	return scene.Legend{Entries: entries, Bounds: bounds}
}

// Corner is a legend placement inside DefaultCanvas.
var Corner = scene.Rect{X: 520, Y: 20, Width: 100, Height: 60}
