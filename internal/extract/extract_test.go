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

func points(id string, els ...scene.Element) scene.Subplot {
	return scene.Subplot{
		ID:     id,
		Groups: []scene.ArtifactGroup{{Kind: scene.KindPointCloud, Label: "pts", Elements: els}},
	}
}

func el(c any, marker string, size float64) scene.Element {
	return scene.Element{Raw: scene.Raw{Color: c, Marker: marker, Size: scene.Float(size)}}
}

func TestSubplot_PointCloud(t *testing.T) {
	sp := points("ax0",
		el("#ff0000", "o", 10),
		el([]float64{0, 0, 1}, "s", 20),
		el(color.NRGBA{G: 255, A: 128}, "o", 10),
	)

	ex := Subplot(sp, scene.KindPointCloud)
	require.Empty(t, ex.Errors)
	require.Empty(t, ex.Misses)
	assert.Equal(t, 3, ex.Cardinality)

	col := ex.Sequence(scene.ChannelColor)
	require.Equal(t, 3, col.Len())
	assert.Equal(t, tolerance.Vector{1, 0, 0, 1}, col.Numeric[0])
	assert.Equal(t, tolerance.Vector{0, 0, 1, 1}, col.Numeric[1])

	assert.Equal(t, []string{"o", "s", "o"}, ex.Sequence(scene.ChannelMarker).Discrete)
	assert.Equal(t, 2, ex.Sequence(scene.ChannelSize).UniqueCount(0))

	alpha := ex.Sequence(scene.ChannelAlpha)
	require.Equal(t, 3, alpha.Len(), "alpha falls back to the color alpha")
	assert.Equal(t, 1.0, alpha.Numeric[0][0])
	assert.InDelta(t, 128.0/255, alpha.Numeric[2][0], 1e-9)

	assert.True(t, ex.Sequence(scene.ChannelStyle).Empty(), "point clouds carry no style")
}

func TestSubplot_ConcatenatesGroups(t *testing.T) {
	sp := scene.Subplot{
		ID: "ax0",
		Groups: []scene.ArtifactGroup{
			{Kind: scene.KindLineSet, Label: "a", Elements: []scene.Element{{Raw: scene.Raw{Color: "#f00", Style: "solid"}}}},
			{Kind: scene.KindPointCloud, Label: "p", Elements: []scene.Element{el("#0f0", "o", 1)}},
			{Kind: scene.KindLineSet, Label: "b", Elements: []scene.Element{{Raw: scene.Raw{Color: "#00f", Style: "dashed"}}}},
		},
	}

	ex := Subplot(sp, scene.KindLineSet)
	assert.Equal(t, 2, ex.Cardinality)
	assert.Equal(t, []string{"solid", "dashed"}, ex.Sequence(scene.ChannelStyle).Discrete)
	assert.Equal(t, 2, ex.Sequence(scene.ChannelColor).Len())
	assert.True(t, ex.Sequence(scene.ChannelAlpha).Empty(), "no element sets alpha")
	assert.True(t, ex.Sequence(scene.ChannelMarker).Empty())
}

func TestSubplot_AbsentKind(t *testing.T) {
	ex := Subplot(points("ax0", el("#f00", "o", 1)), scene.KindBarGroup)

	require.Len(t, ex.Misses, 1)
	assert.Equal(t, scene.KindBarGroup, ex.Misses[0].Kind)
	assert.True(t, ex.Missing())
	assert.Empty(t, ex.Errors)
	for _, ch := range scene.AllChannels() {
		assert.True(t, ex.Sequence(ch).Empty(), "channel %s", ch)
	}
}

func TestSubplot_MalformedValueEmptiesChannel(t *testing.T) {
	sp := points("ax0",
		el("#ff0000", "o", 10),
		el([]float64{0.5, 0.5}, "s", 20),
		el("#0000ff", "^", 30),
		el("not-a-color", "o", 40),
	)

	ex := Subplot(sp, scene.KindPointCloud)

	var colorErrs []ValueError
	for _, ve := range ex.Errors {
		if ve.Channel == scene.ChannelColor {
			colorErrs = append(colorErrs, ve)
		}
	}
	require.Len(t, colorErrs, 2, "every malformed value is reported")
	assert.Equal(t, 1, colorErrs[0].Index)
	assert.Equal(t, 3, colorErrs[1].Index)
	assert.Equal(t, "pts", colorErrs[0].Group)

	assert.True(t, ex.Failed(scene.ChannelColor))
	assert.True(t, ex.Sequence(scene.ChannelColor).Empty(), "never a partial prefix")
	assert.True(t, ex.Sequence(scene.ChannelAlpha).Empty(), "alpha derives from the same colors")

	assert.Equal(t, 4, ex.Sequence(scene.ChannelMarker).Len(), "sibling channels are unaffected")
	assert.Equal(t, 4, ex.Sequence(scene.ChannelSize).Len())
}

func TestSubplot_PartiallyPresentChannel(t *testing.T) {
	sp := points("ax0",
		el("#ff0000", "o", 10),
		scene.Element{Raw: scene.Raw{Color: "#00ff00", Size: scene.Float(5)}},
	)

	ex := Subplot(sp, scene.KindPointCloud)
	require.True(t, ex.Failed(scene.ChannelMarker))
	assert.True(t, ex.Sequence(scene.ChannelMarker).Empty())
	assert.Equal(t, 2, ex.Sequence(scene.ChannelColor).Len())
}

func TestSubplot_InvalidScalars(t *testing.T) {
	sp := points("ax0",
		scene.Element{Raw: scene.Raw{Size: scene.Float(math.NaN()), Alpha: scene.Float(1.5)}},
		scene.Element{Raw: scene.Raw{Size: scene.Float(3), Alpha: scene.Float(0.5)}},
	)

	ex := Subplot(sp, scene.KindPointCloud)
	assert.True(t, ex.Failed(scene.ChannelSize))
	assert.True(t, ex.Failed(scene.ChannelAlpha))
	assert.True(t, ex.Sequence(scene.ChannelSize).Empty())
	assert.True(t, ex.Sequence(scene.ChannelAlpha).Empty())
}

func TestSubplot_PolygonPlaceholders(t *testing.T) {
	sp := scene.Subplot{
		ID: "ax0",
		Groups: []scene.ArtifactGroup{{
			Kind: scene.KindPolygonGroup,
			Elements: []scene.Element{
				{Raw: scene.Raw{Color: "#f00", Alpha: scene.Float(0.3), Style: "//"}},
				{Raw: scene.Raw{Color: "#0f0", Alpha: scene.Float(0.6), Style: "xx"}},
			},
		}},
	}

	ex := Subplot(sp, scene.KindPolygonGroup)
	require.Empty(t, ex.Errors)
	assert.Equal(t, []string{PlaceholderMarker, PlaceholderMarker}, ex.Sequence(scene.ChannelMarker).Discrete)
	assert.Equal(t, 1, ex.Sequence(scene.ChannelSize).UniqueCount(0))
	assert.Equal(t, 2, ex.Sequence(scene.ChannelAlpha).UniqueCount(0))
	assert.Equal(t, 2, ex.Sequence(scene.ChannelStyle).UniqueCount(0))
}

func TestPool_PlaceholdersYieldToRealValues(t *testing.T) {
	sp := scene.Subplot{
		ID: "ax0",
		Groups: []scene.ArtifactGroup{
			{Kind: scene.KindPointCloud, Elements: []scene.Element{el("#f00", "o", 5), el("#00f", "o", 5)}},
			{Kind: scene.KindPolygonGroup, Elements: []scene.Element{{Raw: scene.Raw{Color: "#0f0"}}}},
		},
	}
	pts := Subplot(sp, scene.KindPointCloud)
	poly := Subplot(sp, scene.KindPolygonGroup)

	assert.True(t, poly.Synthesized(scene.ChannelMarker))
	assert.False(t, poly.Reads(scene.ChannelMarker))
	assert.True(t, poly.Reads(scene.ChannelColor))
	assert.False(t, pts.Synthesized(scene.ChannelMarker))

	marker := Pool(scene.ChannelMarker, pts, poly)
	assert.Equal(t, []string{"o", "o"}, marker.Discrete)
	assert.Equal(t, 1, Pool(scene.ChannelSize, pts, poly).UniqueCount(0))
	assert.Equal(t, 3, Pool(scene.ChannelColor, pts, poly).Len(), "real channels still pool")

	alone := Pool(scene.ChannelMarker, poly)
	assert.Equal(t, []string{PlaceholderMarker}, alone.Discrete, "placeholders stand when nothing else carries the channel")
	assert.Equal(t, []*Extraction{pts}, Contributors(scene.ChannelMarker, []*Extraction{pts, poly}))
}

func TestSubplot_BarGroupCarriesOnlyColor(t *testing.T) {
	sp := scene.Subplot{
		ID: "ax0",
		Groups: []scene.ArtifactGroup{{
			Kind: scene.KindBarGroup,
			Elements: []scene.Element{
				{Raw: scene.Raw{Color: "#f00", Style: "//", Alpha: scene.Float(0.5)}},
			},
		}},
	}

	ex := Subplot(sp, scene.KindBarGroup)
	assert.Equal(t, 1, ex.Sequence(scene.ChannelColor).Len())
	assert.True(t, ex.Sequence(scene.ChannelStyle).Empty())
	assert.True(t, ex.Sequence(scene.ChannelAlpha).Empty())
}

func TestSubplot_ImageColormap(t *testing.T) {
	sp := scene.Subplot{
		ID: "ax0",
		Groups: []scene.ArtifactGroup{{
			Kind:     scene.KindImage,
			Label:    "heat",
			Colormap: []any{"#000000", "#808080", []any{1, 1, 1}},
		}},
	}

	ex := Subplot(sp, scene.KindImage)
	require.Empty(t, ex.Errors)
	assert.Equal(t, 3, ex.Cardinality)
	assert.Equal(t, 3, ex.Sequence(scene.ChannelColor).UniqueCount(0))
	assert.Equal(t, []string{"heat", "heat", "heat"}, ex.Sequence(scene.ChannelColor).Labels)
}

func TestLegend(t *testing.T) {
	lg := &scene.Legend{
		Entries: []scene.Entry{
			{Label: "a", Raw: scene.Raw{Color: "#f00", Marker: "o"}},
			{Label: "b", Raw: scene.Raw{Color: "#0f0"}},
			{Label: "c", Raw: scene.Raw{Marker: "s"}},
		},
	}

	ex := Legend(lg, "ax0 legend")
	require.Empty(t, ex.Errors)
	assert.Equal(t, 3, ex.Cardinality)

	col := ex.Sequence(scene.ChannelColor)
	assert.Equal(t, 2, col.Len())
	assert.Equal(t, []string{"a", "b"}, col.Labels)

	mk := ex.Sequence(scene.ChannelMarker)
	assert.Equal(t, []string{"o", "s"}, mk.Discrete)
	assert.Equal(t, []string{"a", "c"}, mk.Labels)

	alpha := ex.Sequence(scene.ChannelAlpha)
	assert.Equal(t, []string{"a", "b"}, alpha.Labels, "alpha falls back to the entry color")
	assert.Equal(t, 1, alpha.UniqueCount(0))
}

func TestLegend_AlphaMatchesPlottedSide(t *testing.T) {
	red, blue := []float64{1, 0, 0, 0.3}, []float64{0, 0, 1, 0.7}
	sp := points("ax0", el(red, "o", 1), el(blue, "o", 1))
	lg := &scene.Legend{Entries: []scene.Entry{
		{Label: "red", Raw: scene.Raw{Color: red}},
		{Label: "blue", Raw: scene.Raw{Color: blue, Alpha: scene.Float(0.7)}},
	}}

	plotted := Subplot(sp, scene.KindPointCloud).Sequence(scene.ChannelAlpha)
	legend := Legend(lg, "legend").Sequence(scene.ChannelAlpha)
	require.Equal(t, 2, legend.Len())
	for i := 0; i < plotted.Len(); i++ {
		assert.True(t, plotted.Contains(legend, i, 1e-9), "plotted alpha %s", plotted.Format(i))
	}
}

func TestLegend_Nil(t *testing.T) {
	ex := Legend(nil, "ax0")
	assert.True(t, ex.Missing())
	assert.Equal(t, 0, ex.Cardinality)
}

func TestLegend_MalformedEntry(t *testing.T) {
	lg := &scene.Legend{Entries: []scene.Entry{
		{Label: "a", Raw: scene.Raw{Color: "#f00"}},
		{Label: "b", Raw: scene.Raw{Color: 42}},
	}}

	ex := Legend(lg, "legend")
	require.Len(t, ex.Errors, 2, "color and the alpha derived from it")
	assert.Equal(t, "b", ex.Errors[0].Group)
	assert.Equal(t, scene.ChannelColor, ex.Errors[0].Channel)
	assert.Equal(t, scene.ChannelAlpha, ex.Errors[1].Channel)
	assert.True(t, ex.Sequence(scene.ChannelColor).Empty())
	assert.True(t, ex.Sequence(scene.ChannelAlpha).Empty())
	assert.Contains(t, ex.Errors[0].Error(), "legend/b[1] color")
}

func TestTable(t *testing.T) {
	assert.True(t, DefaultTable.Supports(scene.KindPointCloud, scene.ChannelMarker))
	assert.False(t, DefaultTable.Supports(scene.KindBarGroup, scene.ChannelMarker))
	assert.Equal(t,
		[]scene.Kind{scene.KindPointCloud, scene.KindLineSet, scene.KindPolygonGroup},
		DefaultTable.KindsFor(scene.ChannelAlpha))

	for _, k := range scene.AllKinds() {
		assert.NotEmpty(t, DefaultTable.Rules(k), "kind %s has no rules", k)
	}
}
