package scene

import (
	"fmt"
	"strings"
)

// Kind identifies the drawable shape of an artifact group.
type Kind string

const (
	KindPointCloud   Kind = "point-cloud"
	KindLineSet      Kind = "line-set"
	KindBarGroup     Kind = "bar-group"
	KindPolygonGroup Kind = "polygon-group"
	KindImage        Kind = "image"
)

// AllKinds returns every artifact kind in a stable order.
func AllKinds() []Kind {
	return []Kind{KindPointCloud, KindLineSet, KindBarGroup, KindPolygonGroup, KindImage}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPointCloud, KindLineSet, KindBarGroup, KindPolygonGroup, KindImage:
		return true
	default:
		return false
	}
}

// ParseKind parses an artifact kind name.
// Underscores are accepted in place of dashes ("point_cloud").
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	if !k.Valid() {
		return "", fmt.Errorf("unknown artifact kind %q (valid kinds: %s)", s, joinKinds(AllKinds()))
	}
	return k, nil
}

func joinKinds(kinds []Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

// Channel is a visual encoding dimension.
type Channel string

const (
	ChannelColor  Channel = "color"
	ChannelMarker Channel = "marker"
	ChannelSize   Channel = "size"
	ChannelAlpha  Channel = "alpha"
	ChannelStyle  Channel = "style"
)

// AllChannels returns every channel in a stable order.
func AllChannels() []Channel {
	return []Channel{ChannelColor, ChannelMarker, ChannelSize, ChannelAlpha, ChannelStyle}
}

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelColor, ChannelMarker, ChannelSize, ChannelAlpha, ChannelStyle:
		return true
	default:
		return false
	}
}

// Discrete reports whether values of c are symbol identifiers compared by
// exact equality rather than numerically.
func (c Channel) Discrete() bool {
	return c == ChannelMarker || c == ChannelStyle
}

// ParseChannel parses a channel name.
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		names := make([]string, 0, 5)
		for _, ch := range AllChannels() {
			names = append(names, string(ch))
		}
		return "", fmt.Errorf("unknown channel %q (valid channels: %s)", s, strings.Join(names, ", "))
	}
	return c, nil
}
