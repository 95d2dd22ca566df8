// Package gochart adapts go-chart renders into verifiable scenes.
//
// Charts are rendered to SVG so that render errors surface as invocation
// failures. Artifacts are read back from the chart's series and styles; the
// legend's bounds and the canvas come from the rendered SVG.
package gochart

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/roach88/plotcheck/internal/harness"
	"github.com/roach88/plotcheck/internal/scene"
)

// SubplotID is the ID of the single subplot every adapted chart produces.
const SubplotID = "chart"

// PointMarker is the marker reported for dot series. go-chart only draws
// circles.
const PointMarker = "o"

// Plot wraps a chart builder as a harness.PlotFunc. build is called on every
// invocation so that each verification renders from scratch.
func Plot(build func() (*chart.Chart, error)) harness.PlotFunc {
	return func() (scene.Scene, error) {
		if build == nil {
			return nil, fmt.Errorf("chart builder is nil")
		}
		ch, err := build()
		if err != nil {
			return nil, err
		}
		if ch == nil {
			return nil, fmt.Errorf("chart builder returned no chart")
		}
		return FromChart(ch)
	}
}

// FromChart renders ch and describes it as a scene.
func FromChart(ch *chart.Chart) (*scene.Figure, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	l, err := inspectSVG(&buf)
	if err != nil {
		return nil, err
	}

	sp := scene.Subplot{ID: SubplotID}
	var entries []scene.Entry
	for i, s := range ch.Series {
		st := s.GetStyle()
		if st.Hidden {
			continue
		}
		sp.Groups = append(sp.Groups, seriesGroups(i, s)...)
		entries = append(entries, seriesEntry(i, s))
	}

	if len(ch.Elements) > 0 && len(entries) > 0 {
		labels := make([]string, len(entries))
		for i, e := range entries {
			labels[i] = e.Label
		}
		sp.Legend = &scene.Legend{
			Entries: entries,
			Bounds:  l.locate(labels),
		}
	}

	return &scene.Figure{
		Bounds: canvas(l, ch.GetWidth(), ch.GetHeight()),
		Plots:  []scene.Subplot{sp},
	}, nil
}

// PlotBar wraps a bar chart as a harness.PlotFunc.
func PlotBar(build func() (*chart.BarChart, error)) harness.PlotFunc {
	return func() (scene.Scene, error) {
		if build == nil {
			return nil, fmt.Errorf("chart builder is nil")
		}
		bc, err := build()
		if err != nil {
			return nil, err
		}
		if bc == nil {
			return nil, fmt.Errorf("chart builder returned no chart")
		}
		return FromBarChart(bc)
	}
}

// FromBarChart renders bc and describes its bars as one bar group.
func FromBarChart(bc *chart.BarChart) (*scene.Figure, error) {
	var buf bytes.Buffer
	if err := bc.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render bar chart: %w", err)
	}
	l, err := inspectSVG(&buf)
	if err != nil {
		return nil, err
	}

	g := scene.ArtifactGroup{Kind: scene.KindBarGroup}
	for i, v := range bc.Bars {
		g.Elements = append(g.Elements, valueElement(i, v))
	}
	return &scene.Figure{
		Bounds: canvas(l, bc.GetWidth(), bc.GetHeight()),
		Plots:  []scene.Subplot{{ID: SubplotID, Groups: []scene.ArtifactGroup{g}}},
	}, nil
}

// PlotPie wraps a pie chart as a harness.PlotFunc.
func PlotPie(build func() (*chart.PieChart, error)) harness.PlotFunc {
	return func() (scene.Scene, error) {
		if build == nil {
			return nil, fmt.Errorf("chart builder is nil")
		}
		pc, err := build()
		if err != nil {
			return nil, err
		}
		if pc == nil {
			return nil, fmt.Errorf("chart builder returned no chart")
		}
		return FromPieChart(pc)
	}
}

// FromPieChart renders pc and describes its slices as one polygon group.
func FromPieChart(pc *chart.PieChart) (*scene.Figure, error) {
	var buf bytes.Buffer
	if err := pc.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render pie chart: %w", err)
	}
	l, err := inspectSVG(&buf)
	if err != nil {
		return nil, err
	}

	g := scene.ArtifactGroup{Kind: scene.KindPolygonGroup}
	for i, v := range pc.Values {
		g.Elements = append(g.Elements, valueElement(i, v))
	}
	return &scene.Figure{
		Bounds: canvas(l, pc.GetWidth(), pc.GetHeight()),
		Plots:  []scene.Subplot{{ID: SubplotID, Groups: []scene.ArtifactGroup{g}}},
	}, nil
}

// seriesGroups maps one series to its artifact groups. Dots become a point
// cloud and the stroke becomes a line. go-chart draws a stroke unless the
// width is negative (chart.Disabled), so a zero width still yields a line.
func seriesGroups(index int, s chart.Series) []scene.ArtifactGroup {
	st := s.GetStyle()
	name := s.GetName()
	var groups []scene.ArtifactGroup

	if st.DotWidth > 0 {
		n := 1
		if vp, ok := s.(chart.ValuesProvider); ok {
			n = vp.Len()
		}
		c := dotColor(index, st)
		g := scene.ArtifactGroup{Kind: scene.KindPointCloud, Label: name}
		for i := 0; i < n; i++ {
			g.Elements = append(g.Elements, scene.Element{
				Label: name,
				Raw: scene.Raw{
					Color:  c,
					Marker: PointMarker,
					Size:   scene.Float(st.DotWidth),
				},
			})
		}
		groups = append(groups, g)
	}

	if st.StrokeWidth >= 0 {
		groups = append(groups, scene.ArtifactGroup{
			Kind:  scene.KindLineSet,
			Label: name,
			Elements: []scene.Element{{
				Label: name,
				Raw: scene.Raw{
					Color: strokeColor(index, st),
					Style: lineStyle(st),
				},
			}},
		})
	}
	return groups
}

// seriesEntry is the legend entry go-chart draws for a series.
func seriesEntry(index int, s chart.Series) scene.Entry {
	st := s.GetStyle()
	if st.DotWidth > 0 && st.StrokeWidth < 0 {
		return scene.Entry{
			Label: s.GetName(),
			Raw:   scene.Raw{Color: dotColor(index, st), Marker: PointMarker},
		}
	}
	return scene.Entry{
		Label: s.GetName(),
		Raw:   scene.Raw{Color: strokeColor(index, st), Style: lineStyle(st)},
	}
}

func valueElement(index int, v chart.Value) scene.Element {
	c := v.Style.FillColor
	if c.IsZero() {
		c = chart.GetDefaultColor(index)
	}
	return scene.Element{Label: v.Label, Raw: scene.Raw{Color: rgba(c)}}
}

func strokeColor(index int, st chart.Style) []float64 {
	if !st.StrokeColor.IsZero() {
		return rgba(st.StrokeColor)
	}
	return rgba(chart.GetDefaultColor(index))
}

func dotColor(index int, st chart.Style) []float64 {
	if !st.DotColor.IsZero() {
		return rgba(st.DotColor)
	}
	return strokeColor(index, st)
}

func lineStyle(st chart.Style) string {
	if len(st.StrokeDashArray) > 0 {
		return "dashed"
	}
	return "solid"
}

func rgba(c drawing.Color) []float64 {
	return []float64{
		float64(c.R) / 255,
		float64(c.G) / 255,
		float64(c.B) / 255,
		float64(c.A) / 255,
	}
}

// canvas prefers the size declared by the rendered SVG root.
func canvas(l *layout, width, height int) scene.Rect {
	if l.Canvas.Width > 0 && l.Canvas.Height > 0 {
		return l.Canvas
	}
	return scene.Rect{Width: float64(width), Height: float64(height)}
}
