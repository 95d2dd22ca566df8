// Package expect defines the caller-declared expectation a figure is
// verified against, and loads it from YAML or CUE files.
package expect

import (
	"fmt"
	"sort"

	"github.com/roach88/plotcheck/internal/scene"
	"github.com/roach88/plotcheck/internal/verify"
)

// AllSubplots is the expected_channels key that applies to every subplot.
const AllSubplots = "*"

// Default values applied by Merge and by the accessors when a field is unset.
const (
	DefaultMinUniqueThreshold = 2
	DefaultTolerance          = 1e-3
	DefaultSampleLimit        = verify.DefaultSampleLimit
)

// Spec is an expectation for one rendered figure.
//
// Pointer fields distinguish "unset" from an explicit zero: a tolerance of
// 0 means exact comparison, not "use the default".
type Spec struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// ExpectedChannels maps a subplot ID (or "*") to the channels that must
	// vary in it.
	ExpectedChannels map[string][]string `yaml:"expected_channels,omitempty" json:"expected_channels,omitempty"`

	MinUniqueThreshold *int     `yaml:"min_unique_threshold,omitempty" json:"min_unique_threshold,omitempty"`
	Tolerance          *float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`

	// FailOnMissing escalates absent expected structure to a fatal error.
	FailOnMissing bool `yaml:"fail_on_missing,omitempty" json:"fail_on_missing,omitempty"`

	// ExpectedLegendCount is the number of legends that must be visible.
	ExpectedLegendCount *int `yaml:"expected_legend_count,omitempty" json:"expected_legend_count,omitempty"`

	// ExpectedTotalEntries is the unified legend's entry count.
	ExpectedTotalEntries int `yaml:"expected_total_entries,omitempty" json:"expected_total_entries,omitempty"`

	// ExpectedChannelEntries holds split legend entry counts per channel.
	ExpectedChannelEntries map[string]int `yaml:"expected_channel_entries,omitempty" json:"expected_channel_entries,omitempty"`

	LegendStrategy          string `yaml:"legend_strategy,omitempty" json:"legend_strategy,omitempty"`
	VerifyLegendConsistency bool   `yaml:"verify_legend_consistency,omitempty" json:"verify_legend_consistency,omitempty"`

	// OptionalChannels may be absent without failing their variation check.
	OptionalChannels []string `yaml:"optional_channels,omitempty" json:"optional_channels,omitempty"`

	SampleLimit int `yaml:"sample_limit,omitempty" json:"sample_limit,omitempty"`
}

// Defaults carries configuration-level defaults merged into a Spec.
type Defaults struct {
	MinUniqueThreshold int
	Tolerance          float64
	FailOnMissing      bool
	SampleLimit        int
}

// BuiltinDefaults returns the defaults used when no configuration is given.
func BuiltinDefaults() Defaults {
	return Defaults{
		MinUniqueThreshold: DefaultMinUniqueThreshold,
		Tolerance:          DefaultTolerance,
		SampleLimit:        DefaultSampleLimit,
	}
}

// Merge fills unset fields from d. Explicit values in s win; FailOnMissing
// is enabled when either side enables it.
func (s *Spec) Merge(d Defaults) {
	if s.MinUniqueThreshold == nil && d.MinUniqueThreshold > 0 {
		v := d.MinUniqueThreshold
		s.MinUniqueThreshold = &v
	}
	if s.Tolerance == nil && d.Tolerance >= 0 {
		v := d.Tolerance
		s.Tolerance = &v
	}
	if s.SampleLimit == 0 {
		s.SampleLimit = d.SampleLimit
	}
	s.FailOnMissing = s.FailOnMissing || d.FailOnMissing
}

// Validate checks channel and strategy names and numeric ranges. Every
// problem is a configuration error.
func (s *Spec) Validate() error {
	for _, key := range sortedKeys(s.ExpectedChannels) {
		for _, name := range s.ExpectedChannels[key] {
			if _, err := scene.ParseChannel(name); err != nil {
				return verify.NewConfigurationError(
					fmt.Sprintf("expected_channels.%s", key), "%v", err)
			}
		}
	}
	for _, name := range s.OptionalChannels {
		if _, err := scene.ParseChannel(name); err != nil {
			return verify.NewConfigurationError("optional_channels", "%v", err)
		}
	}
	for name, n := range s.ExpectedChannelEntries {
		if _, err := scene.ParseChannel(name); err != nil {
			return verify.NewConfigurationError("expected_channel_entries", "%v", err)
		}
		if n < 0 {
			return verify.NewConfigurationError("expected_channel_entries",
				"%s entry count must be non-negative, got %d", name, n)
		}
	}
	if s.LegendStrategy != "" {
		st, err := verify.ParseStrategy(s.LegendStrategy)
		if err != nil {
			return err
		}
		if st == verify.StrategySplit && len(s.AllChannels()) == 0 {
			return verify.NewConfigurationError("legend_strategy",
				"split strategy needs expected_channels or expected_channel_entries")
		}
	}
	if s.MinUniqueThreshold != nil && *s.MinUniqueThreshold < 1 {
		return verify.NewConfigurationError("min_unique_threshold",
			"must be at least 1, got %d", *s.MinUniqueThreshold)
	}
	if s.Tolerance != nil && !(*s.Tolerance >= 0) {
		return verify.NewConfigurationError("tolerance",
			"must be non-negative, got %v", *s.Tolerance)
	}
	if s.ExpectedLegendCount != nil && *s.ExpectedLegendCount < 0 {
		return verify.NewConfigurationError("expected_legend_count",
			"must be non-negative, got %d", *s.ExpectedLegendCount)
	}
	if s.ExpectedTotalEntries < 0 {
		return verify.NewConfigurationError("expected_total_entries",
			"must be non-negative, got %d", s.ExpectedTotalEntries)
	}
	if s.SampleLimit < 0 {
		return verify.NewConfigurationError("sample_limit",
			"must be non-negative, got %d", s.SampleLimit)
	}
	return nil
}

// Threshold returns the minimum distinct-value count.
func (s *Spec) Threshold() int {
	if s.MinUniqueThreshold == nil {
		return DefaultMinUniqueThreshold
	}
	return *s.MinUniqueThreshold
}

// Tol returns the comparison tolerance.
func (s *Spec) Tol() float64 {
	if s.Tolerance == nil {
		return DefaultTolerance
	}
	return *s.Tolerance
}

// Samples returns the diagnostic sample cap.
func (s *Spec) Samples() int {
	if s.SampleLimit <= 0 {
		return DefaultSampleLimit
	}
	return s.SampleLimit
}

// Strategy returns the declared legend strategy, or "" when none is set.
// It assumes Validate has passed.
func (s *Spec) Strategy() verify.Strategy {
	if s.LegendStrategy == "" {
		return ""
	}
	st, _ := verify.ParseStrategy(s.LegendStrategy)
	return st
}

// ChannelsFor returns the channels expected to vary in subplot id: the
// subplot's own list followed by the "*" list, without duplicates. It
// assumes Validate has passed.
func (s *Spec) ChannelsFor(id string) []scene.Channel {
	return dedupeChannels(append(
		append([]string(nil), s.ExpectedChannels[id]...),
		s.ExpectedChannels[AllSubplots]...))
}

// Subplots returns the subplot IDs named in ExpectedChannels, sorted,
// excluding "*".
func (s *Spec) Subplots() []string {
	var ids []string
	for _, k := range sortedKeys(s.ExpectedChannels) {
		if k != AllSubplots {
			ids = append(ids, k)
		}
	}
	return ids
}

// AllChannels returns every channel named anywhere in ExpectedChannels or
// ExpectedChannelEntries, in scene.AllChannels order.
func (s *Spec) AllChannels() []scene.Channel {
	named := make(map[scene.Channel]bool)
	for _, names := range s.ExpectedChannels {
		for _, ch := range dedupeChannels(names) {
			named[ch] = true
		}
	}
	for name := range s.ExpectedChannelEntries {
		if ch, err := scene.ParseChannel(name); err == nil {
			named[ch] = true
		}
	}
	var out []scene.Channel
	for _, ch := range scene.AllChannels() {
		if named[ch] {
			out = append(out, ch)
		}
	}
	return out
}

// ChannelEntries returns ExpectedChannelEntries keyed by channel.
func (s *Spec) ChannelEntries() map[scene.Channel]int {
	out := make(map[scene.Channel]int, len(s.ExpectedChannelEntries))
	for name, n := range s.ExpectedChannelEntries {
		if ch, err := scene.ParseChannel(name); err == nil {
			out[ch] = n
		}
	}
	return out
}

// Optional reports whether ch may be absent.
func (s *Spec) Optional(ch scene.Channel) bool {
	for _, name := range s.OptionalChannels {
		if c, err := scene.ParseChannel(name); err == nil && c == ch {
			return true
		}
	}
	return false
}

// LegendExpected reports whether any legend expectation was declared,
// which enables the visibility check.
func (s *Spec) LegendExpected() bool {
	return s.ExpectedLegendCount != nil || s.LegendStrategy != "" ||
		s.ExpectedTotalEntries > 0 || len(s.ExpectedChannelEntries) > 0
}

func dedupeChannels(names []string) []scene.Channel {
	seen := make(map[scene.Channel]bool)
	var out []scene.Channel
	for _, name := range names {
		ch, err := scene.ParseChannel(name)
		if err != nil || seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
