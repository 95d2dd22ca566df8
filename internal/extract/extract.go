package extract

import (
	"fmt"

	"github.com/roach88/plotcheck/internal/scene"
	"github.com/roach88/plotcheck/internal/tolerance"
)

// Miss records a requested artifact kind or legend that was absent.
type Miss struct {
	Source string     `json:"source"`
	Kind   scene.Kind `json:"kind,omitempty"`
	Reason string     `json:"reason"`
}

// ValueError records one raw value that could not be normalized.
type ValueError struct {
	Source  string        `json:"source"`
	Group   string        `json:"group,omitempty"`
	Index   int           `json:"index"`
	Channel scene.Channel `json:"channel"`
	Reason  string        `json:"reason"`
}

// Error implements the error interface.
func (e ValueError) Error() string {
	where := fmt.Sprintf("%s[%d]", e.Source, e.Index)
	if e.Group != "" {
		where = fmt.Sprintf("%s/%s[%d]", e.Source, e.Group, e.Index)
	}
	return fmt.Sprintf("%s %s: %s", where, e.Channel, e.Reason)
}

// Extraction holds the channel sequences of one source: the groups of one
// kind in a subplot, or the entries of one legend.
type Extraction struct {
	Source string
	Kind   scene.Kind

	// Cardinality is the number of elements (or legend entries) read.
	Cardinality int

	Channels map[scene.Channel]Sequence
	Misses   []Miss
	Errors   []ValueError

	// sources records the rule source of every channel the kind declares.
	sources map[scene.Channel]ValueSource
}

// Sequence returns the sequence of ch, which is empty when the channel is
// absent, unsupported or failed to extract.
func (e *Extraction) Sequence(ch scene.Channel) Sequence {
	if s, ok := e.Channels[ch]; ok {
		return s
	}
	return Sequence{Channel: ch}
}

// Synthesized reports whether ch holds placeholder values instead of
// values read from the elements.
func (e *Extraction) Synthesized(ch scene.Channel) bool {
	src, ok := e.sources[ch]
	return ok && src == Placeholder
}

// Reads reports whether ch is read from the elements or their colormap.
// Legend extractions read every channel.
func (e *Extraction) Reads(ch scene.Channel) bool {
	if e.sources == nil {
		return true
	}
	src, ok := e.sources[ch]
	return ok && src != Placeholder
}

// Missing reports whether the requested structure was absent.
func (e *Extraction) Missing() bool { return len(e.Misses) > 0 }

// Failed reports whether extraction of ch recorded value errors.
func (e *Extraction) Failed(ch scene.Channel) bool {
	for _, ve := range e.Errors {
		if ve.Channel == ch {
			return true
		}
	}
	return false
}

// Extractor reads scenes through a Table.
type Extractor struct {
	table Table
}

// New returns an extractor using table, or DefaultTable when table is nil.
func New(table Table) *Extractor {
	if table == nil {
		table = DefaultTable
	}
	return &Extractor{table: table}
}

// Supports reports whether the extractor reads ch from kind.
func (x *Extractor) Supports(k scene.Kind, ch scene.Channel) bool {
	return x.table.Supports(k, ch)
}

// Subplot extracts every channel of kind from sp using DefaultTable.
func Subplot(sp scene.Subplot, kind scene.Kind) *Extraction {
	return New(nil).Subplot(sp, kind)
}

// Legend extracts the entries of lg.
func Legend(lg *scene.Legend, source string) *Extraction {
	return New(nil).Legend(lg, source)
}

// Subplot extracts every channel of kind from sp. Groups of that kind are
// concatenated in declaration order.
//
// When sp has no group of kind the result has empty sequences and one Miss.
// Malformed values are recorded in Errors; extraction continues over the
// remaining elements, and the affected channel ends up empty.
func (x *Extractor) Subplot(sp scene.Subplot, kind scene.Kind) *Extraction {
	ex := &Extraction{
		Source:   sp.ID,
		Kind:     kind,
		Channels: make(map[scene.Channel]Sequence),
		sources:  make(map[scene.Channel]ValueSource),
	}
	for _, rule := range x.table.Rules(kind) {
		ex.sources[rule.Channel] = rule.Source
	}

	groups := sp.GroupsOf(kind)
	if len(groups) == 0 {
		ex.Misses = append(ex.Misses, Miss{
			Source: sp.ID,
			Kind:   kind,
			Reason: fmt.Sprintf("no %s artifacts", kind),
		})
		return ex
	}
	for _, g := range groups {
		ex.Cardinality += g.Len()
	}

	for _, rule := range x.table.Rules(kind) {
		seq, errs := extractRule(sp.ID, groups, rule)
		ex.Errors = append(ex.Errors, errs...)
		if len(errs) > 0 || seq.Len() != ex.Cardinality {
			continue
		}
		ex.Channels[rule.Channel] = seq
	}
	return ex
}

// extractRule reads one channel across groups. A channel that no element
// carries yields an empty sequence and no error. A channel that only some
// elements carry is reported per missing element.
func extractRule(source string, groups []scene.ArtifactGroup, rule Rule) (Sequence, []ValueError) {
	seq := Sequence{Channel: rule.Channel}
	var errs []ValueError
	fail := func(g scene.ArtifactGroup, i int, reason string) {
		errs = append(errs, ValueError{
			Source: source, Group: g.Label, Index: i,
			Channel: rule.Channel, Reason: reason,
		})
	}

	switch rule.Source {
	case Placeholder:
		for _, g := range groups {
			for _, el := range g.Elements {
				num, disc := placeholderValue(rule)
				seq.append(el.Label, num, disc)
			}
		}
		return seq, nil

	case FromColormap:
		for _, g := range groups {
			for i, raw := range g.Colormap {
				v, err := NormalizeColor(raw)
				if err != nil {
					fail(g, i, err.Error())
					continue
				}
				seq.append(g.Label, v, "")
			}
		}
		return seq, errs
	}

	var present, absent int
	type missing struct {
		g scene.ArtifactGroup
		i int
	}
	var gaps []missing
	for _, g := range groups {
		for i, el := range g.Elements {
			num, disc, ok, err := elementValue(el.Raw, rule)
			switch {
			case err != nil:
				present++
				fail(g, i, err.Error())
			case !ok:
				absent++
				gaps = append(gaps, missing{g, i})
			default:
				present++
				seq.append(el.Label, num, disc)
			}
		}
	}
	if present == 0 {
		return Sequence{Channel: rule.Channel}, nil
	}
	if absent > 0 {
		for _, m := range gaps {
			fail(m.g, m.i, "value missing while other elements carry it")
		}
	}
	return seq, errs
}

func placeholderValue(rule Rule) (tolerance.Vector, string) {
	switch c := rule.Constant.(type) {
	case string:
		return nil, c
	case float64:
		return tolerance.Scalar(c), ""
	default:
		return tolerance.Scalar(0), fmt.Sprint(c)
	}
}

// elementValue reads one raw value. ok is false when the value is absent.
func elementValue(raw scene.Raw, rule Rule) (tolerance.Vector, string, bool, error) {
	switch rule.Channel {
	case scene.ChannelColor:
		if raw.Color == nil {
			return nil, "", false, nil
		}
		v, err := NormalizeColor(raw.Color)
		return v, "", err == nil, err

	case scene.ChannelMarker:
		return nil, raw.Marker, raw.Marker != "", nil

	case scene.ChannelStyle:
		return nil, raw.Style, raw.Style != "", nil

	case scene.ChannelSize:
		if raw.Size == nil {
			return nil, "", false, nil
		}
		if err := checkScalar("size", *raw.Size, 0); err != nil {
			return nil, "", false, err
		}
		return tolerance.Scalar(*raw.Size), "", true, nil

	case scene.ChannelAlpha:
		if raw.Alpha != nil {
			if err := checkScalar("alpha", *raw.Alpha, 1); err != nil {
				return nil, "", false, err
			}
			return tolerance.Scalar(*raw.Alpha), "", true, nil
		}
		if rule.Source != FromElementOrColorAlpha || raw.Color == nil {
			return nil, "", false, nil
		}
		c, err := NormalizeColor(raw.Color)
		if err != nil {
			return nil, "", false, fmt.Errorf("alpha from color: %w", err)
		}
		return tolerance.Scalar(c[3]), "", true, nil
	}
	return nil, "", false, fmt.Errorf("unsupported channel %q", rule.Channel)
}

// Legend extracts the entries of lg. Each channel sequence holds only the
// entries exposing that channel, so a color-only legend has an empty marker
// sequence. Alpha falls back to the entry color's alpha, as it does for
// point clouds.
//
// A nil legend yields empty sequences and one Miss.
func (x *Extractor) Legend(lg *scene.Legend, source string) *Extraction {
	ex := &Extraction{
		Source:   source,
		Channels: make(map[scene.Channel]Sequence),
	}
	if lg == nil {
		ex.Misses = append(ex.Misses, Miss{Source: source, Reason: "no legend"})
		return ex
	}
	ex.Cardinality = len(lg.Entries)

	for _, ch := range scene.AllChannels() {
		seq := Sequence{Channel: ch}
		failed := false
		rule := Rule{Channel: ch, Source: FromElement}
		if ch == scene.ChannelAlpha {
			rule.Source = FromElementOrColorAlpha
		}
		for i, e := range lg.Entries {
			num, disc, ok, err := elementValue(e.Raw, rule)
			if err != nil {
				failed = true
				ex.Errors = append(ex.Errors, ValueError{
					Source: source, Group: e.Label, Index: i,
					Channel: ch, Reason: err.Error(),
				})
				continue
			}
			if ok {
				seq.append(e.Label, num, disc)
			}
		}
		if !failed && !seq.Empty() {
			ex.Channels[ch] = seq
		}
	}
	return ex
}

// Contributors returns the extractions whose ch values take part when ch
// is pooled across exs. Placeholder values only take part when none of exs
// reads ch for real.
func Contributors(ch scene.Channel, exs []*Extraction) []*Extraction {
	reads := false
	for _, ex := range exs {
		if ex.Reads(ch) {
			reads = true
			break
		}
	}
	if !reads {
		return exs
	}
	out := make([]*Extraction, 0, len(exs))
	for _, ex := range exs {
		if !ex.Synthesized(ch) {
			out = append(out, ex)
		}
	}
	return out
}

// Pool concatenates the ch sequences of the contributors among exs.
func Pool(ch scene.Channel, exs ...*Extraction) Sequence {
	seq := Sequence{Channel: ch}
	for _, ex := range Contributors(ch, exs) {
		seq = seq.Concat(ex.Sequence(ch))
	}
	return seq
}
