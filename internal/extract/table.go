// Package extract normalizes rendered artifact groups and legends into
// uniform per-channel value sequences.
//
// Dispatch is driven by an explicit table keyed by artifact kind. Each kind
// lists the channels it carries and where each value comes from, so the set
// of supported (kind, channel) pairs is visible in one place:
//
//	point-cloud    color, marker, size, alpha (alpha falls back to the color's alpha)
//	line-set       color, style, alpha
//	bar-group      color
//	polygon-group  color, alpha, style; marker and size are constant placeholders
//	image          color, sampled from the colormap
//
// A channel that a kind does not carry yields an empty sequence, not an
// error.
package extract

import "github.com/roach88/plotcheck/internal/scene"

// ValueSource says where a rule reads its value from.
type ValueSource int

const (
	// FromElement reads the element's own raw value.
	FromElement ValueSource = iota

	// FromElementOrColorAlpha reads the element's alpha, falling back to the
	// alpha component of its color.
	FromElementOrColorAlpha

	// FromColormap reads the group's colormap instead of its elements.
	FromColormap

	// Placeholder emits Rule.Constant once per element.
	Placeholder
)

// Rule maps one channel of an artifact kind to its value source.
type Rule struct {
	Channel scene.Channel
	Source  ValueSource

	// Constant is the placeholder value: a string for discrete channels,
	// a float64 for numeric ones.
	Constant any
}

// Table lists the extraction rules of every artifact kind.
type Table map[scene.Kind][]Rule

// Placeholder values synthesized for polygon groups.
const (
	PlaceholderMarker = "none"
	PlaceholderSize   = 0.0
)

// DefaultTable is the extraction table used by Subplot.
var DefaultTable = Table{
	scene.KindPointCloud: {
		{Channel: scene.ChannelColor, Source: FromElement},
		{Channel: scene.ChannelMarker, Source: FromElement},
		{Channel: scene.ChannelSize, Source: FromElement},
		{Channel: scene.ChannelAlpha, Source: FromElementOrColorAlpha},
	},
	scene.KindLineSet: {
		{Channel: scene.ChannelColor, Source: FromElement},
		{Channel: scene.ChannelStyle, Source: FromElement},
		{Channel: scene.ChannelAlpha, Source: FromElement},
	},
	scene.KindBarGroup: {
		{Channel: scene.ChannelColor, Source: FromElement},
	},
	scene.KindPolygonGroup: {
		{Channel: scene.ChannelColor, Source: FromElement},
		{Channel: scene.ChannelAlpha, Source: FromElement},
		{Channel: scene.ChannelStyle, Source: FromElement},
		{Channel: scene.ChannelMarker, Source: Placeholder, Constant: PlaceholderMarker},
		{Channel: scene.ChannelSize, Source: Placeholder, Constant: PlaceholderSize},
	},
	scene.KindImage: {
		{Channel: scene.ChannelColor, Source: FromColormap},
	},
}

// Rules returns the rules for kind k, or nil when the table has none.
func (t Table) Rules(k scene.Kind) []Rule {
	return t[k]
}

// Supports reports whether kind k carries channel ch.
func (t Table) Supports(k scene.Kind, ch scene.Channel) bool {
	for _, r := range t[k] {
		if r.Channel == ch {
			return true
		}
	}
	return false
}

// KindsFor returns the kinds that carry ch, in scene.AllKinds order.
func (t Table) KindsFor(ch scene.Channel) []scene.Kind {
	var kinds []scene.Kind
	for _, k := range scene.AllKinds() {
		if t.Supports(k, ch) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
