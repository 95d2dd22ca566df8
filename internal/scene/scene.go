package scene

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scene is a navigable handle to one completed rendering pass.
//
// Implementations are not required to be safe for concurrent use; the
// collaborator's rendering object model usually is not.
type Scene interface {
	// Subplots returns the plotting regions in layout order.
	Subplots() []Subplot

	// FigureLegends returns legends attached to the figure rather than to a
	// single subplot.
	FigureLegends() []Legend

	// Canvas returns the visible drawing area in canvas units.
	Canvas() Rect

	// Close releases the scene. It must be safe to call more than once.
	Close() error
}

// Raw holds the raw channel values of one element or legend entry, exactly
// as the collaborator produced them.
type Raw struct {
	// Color is nil when absent. The extractor accepts 3 or 4 component
	// float tuples in [0,1], color.Color values and hex strings.
	Color any `yaml:"color,omitempty" json:"color,omitempty"`

	// Marker is the marker symbol identifier ("" when absent).
	Marker string `yaml:"marker,omitempty" json:"marker,omitempty"`

	// Size is the marker or line size (nil when absent).
	Size *float64 `yaml:"size,omitempty" json:"size,omitempty"`

	// Alpha is the opacity in [0,1] (nil when absent).
	Alpha *float64 `yaml:"alpha,omitempty" json:"alpha,omitempty"`

	// Style is the dash or hatch pattern identifier ("" when absent).
	Style string `yaml:"style,omitempty" json:"style,omitempty"`
}

// Has reports whether the raw value for ch is present.
func (r Raw) Has(ch Channel) bool {
	switch ch {
	case ChannelColor:
		return r.Color != nil
	case ChannelMarker:
		return r.Marker != ""
	case ChannelSize:
		return r.Size != nil
	case ChannelAlpha:
		return r.Alpha != nil
	case ChannelStyle:
		return r.Style != ""
	default:
		return false
	}
}

// Element is one drawable produced by a plotting call.
type Element struct {
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	Raw   `yaml:",inline"`
}

// ArtifactGroup is the set of drawables produced by one plotting call.
type ArtifactGroup struct {
	Kind     Kind      `yaml:"kind" json:"kind"`
	Label    string    `yaml:"label,omitempty" json:"label,omitempty"`
	Elements []Element `yaml:"elements,omitempty" json:"elements,omitempty"`

	// Colormap holds the sampled colors of an image group. It is ignored
	// for every other kind.
	Colormap []any `yaml:"colormap,omitempty" json:"colormap,omitempty"`

	// Raster optionally names a PNG file that is sampled into Colormap by
	// Figure.ResolveRasters.
	Raster string `yaml:"raster,omitempty" json:"raster,omitempty"`
}

// Len returns the group's cardinality: the number of elements, or the number
// of colormap samples for image groups.
func (g ArtifactGroup) Len() int {
	if g.Kind == KindImage {
		return len(g.Colormap)
	}
	return len(g.Elements)
}

// Entry is one labeled representative drawable inside a legend.
type Entry struct {
	Label string `yaml:"label" json:"label"`
	Raw   `yaml:",inline"`
}

// Legend is an ordered list of entries plus its rendered placement.
type Legend struct {
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Channel optionally names the single channel this legend explains.
	// Split-strategy figures set it per legend; combined legends leave it empty.
	Channel Channel `yaml:"channel,omitempty" json:"channel,omitempty"`

	Entries []Entry `yaml:"entries" json:"entries"`
	Bounds  Rect    `yaml:"bounds" json:"bounds"`
	Hidden  bool    `yaml:"hidden,omitempty" json:"hidden,omitempty"`
}

// Subplot is one plotting region of a scene.
type Subplot struct {
	ID     string          `yaml:"id" json:"id"`
	Groups []ArtifactGroup `yaml:"groups,omitempty" json:"groups,omitempty"`
	Legend *Legend         `yaml:"legend,omitempty" json:"legend,omitempty"`
}

// GroupsOf returns the subplot's groups of kind k in declaration order.
func (s Subplot) GroupsOf(k Kind) []ArtifactGroup {
	var groups []ArtifactGroup
	for _, g := range s.Groups {
		if g.Kind == k {
			groups = append(groups, g)
		}
	}
	return groups
}

// Kinds returns the distinct artifact kinds present in the subplot, in
// order of first appearance.
func (s Subplot) Kinds() []Kind {
	seen := make(map[Kind]bool)
	var kinds []Kind
	for _, g := range s.Groups {
		if !seen[g.Kind] {
			seen[g.Kind] = true
			kinds = append(kinds, g.Kind)
		}
	}
	return kinds
}

// Figure is the in-memory Scene implementation.
type Figure struct {
	Bounds  Rect      `yaml:"canvas" json:"canvas"`
	Plots   []Subplot `yaml:"subplots" json:"subplots"`
	Legends []Legend  `yaml:"legends,omitempty" json:"legends,omitempty"`
	closed  bool
}

// Subplots implements Scene.
func (f *Figure) Subplots() []Subplot { return f.Plots }

// FigureLegends implements Scene.
func (f *Figure) FigureLegends() []Legend { return f.Legends }

// Canvas implements Scene.
func (f *Figure) Canvas() Rect { return f.Bounds }

// Close implements Scene.
func (f *Figure) Close() error {
	f.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (f *Figure) Closed() bool { return f.closed }

// Validate checks structural well-formedness: known kinds, unique subplot
// IDs and known legend channels. Channel values are not checked here;
// malformed values are reported per element during extraction.
func (f *Figure) Validate() error {
	seen := make(map[string]bool, len(f.Plots))
	for i, sp := range f.Plots {
		if sp.ID == "" {
			return fmt.Errorf("subplots[%d]: id is required", i)
		}
		if seen[sp.ID] {
			return fmt.Errorf("subplots[%d]: duplicate id %q", i, sp.ID)
		}
		seen[sp.ID] = true
		for j, g := range sp.Groups {
			if !g.Kind.Valid() {
				return fmt.Errorf("subplots[%d].groups[%d]: unknown kind %q", i, j, g.Kind)
			}
		}
		if sp.Legend != nil && sp.Legend.Channel != "" && !sp.Legend.Channel.Valid() {
			return fmt.Errorf("subplots[%d].legend: unknown channel %q", i, sp.Legend.Channel)
		}
	}
	for i, lg := range f.Legends {
		if lg.Channel != "" && !lg.Channel.Valid() {
			return fmt.Errorf("legends[%d]: unknown channel %q", i, lg.Channel)
		}
	}
	return nil
}

// DecodeFigure parses a YAML figure fixture embedded in another document.
// Unknown fields are rejected so that typos surface immediately.
func DecodeFigure(node *yaml.Node) (*Figure, error) {
	// yaml.Node.Decode has no strict mode, so round-trip through the
	// strict decoder.
	data, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode figure: %w", err)
	}
	return ParseFigure(data)
}

// ParseFigure parses a YAML figure fixture.
func ParseFigure(data []byte) (*Figure, error) {
	var fig Figure
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fig); err != nil {
		return nil, fmt.Errorf("failed to parse figure YAML: %w", err)
	}
	if err := fig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid figure: %w", err)
	}
	return &fig, nil
}

// LoadFigure reads a YAML figure fixture from path.
func LoadFigure(path string) (*Figure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read figure file: %w", err)
	}
	return ParseFigure(data)
}

// Float returns a pointer to v, for building Raw values.
func Float(v float64) *float64 {
	return &v
}
