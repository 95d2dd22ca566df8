package verify

import (
	"fmt"
	"strings"

	"github.com/roach88/plotcheck/internal/extract"
	"github.com/roach88/plotcheck/internal/scene"
)

// Strategy is a whole-figure legend arrangement.
type Strategy string

const (
	// StrategyUnified is one legend for the whole figure.
	StrategyUnified Strategy = "unified"

	// StrategySplit is one legend per visual channel.
	StrategySplit Strategy = "split"
)

// ParseStrategy parses a strategy name. Unknown names are configuration
// errors.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyUnified, StrategySplit:
		return st, nil
	default:
		return "", NewConfigurationError("legend_strategy",
			"unknown legend strategy %q (valid: unified, split)", s)
	}
}

// Counts holds distinct-value counts derived from plotted data.
type Counts struct {
	// PerChannel is the distinct count of each channel pooled over every
	// contributing extraction.
	PerChannel map[scene.Channel]int

	// Combined is the number of distinct channel-value tuples actually
	// rendered.
	Combined int
}

// DeriveCounts computes per-channel and combined distinct counts over exs.
//
// Combined counts the tuples that were actually drawn, not the product of
// the per-channel counts: a group that changes color and marker together
// contributes one tuple. Elements carrying none of the channels are
// ignored. Placeholder values only count for a channel that no extraction
// reads for real.
func DeriveCounts(exs []*extract.Extraction, channels []scene.Channel, tol float64) Counts {
	c := Counts{PerChannel: make(map[scene.Channel]int, len(channels))}
	views := make(map[*extract.Extraction]map[scene.Channel]extract.Sequence, len(exs))
	for _, ex := range exs {
		views[ex] = make(map[scene.Channel]extract.Sequence, len(channels))
	}
	for _, ch := range channels {
		contrib := extract.Contributors(ch, exs)
		for _, ex := range contrib {
			views[ex][ch] = ex.Sequence(ch)
		}
		c.PerChannel[ch] = extract.Pool(ch, exs...).UniqueCount(tol)
	}

	type combo struct {
		view map[scene.Channel]extract.Sequence
		i    int
	}
	var reps []combo
	for _, ex := range exs {
		view := views[ex]
		for i := 0; i < ex.Cardinality; i++ {
			carries := false
			for _, ch := range channels {
				if i < view[ch].Len() {
					carries = true
					break
				}
			}
			if !carries {
				continue
			}
			found := false
			for _, r := range reps {
				if sameTuple(r.view, r.i, view, i, channels, tol) {
					found = true
					break
				}
			}
			if !found {
				reps = append(reps, combo{view, i})
			}
		}
	}
	c.Combined = len(reps)
	return c
}

func sameTuple(a map[scene.Channel]extract.Sequence, i int, b map[scene.Channel]extract.Sequence, j int, channels []scene.Channel, tol float64) bool {
	for _, ch := range channels {
		sa, sb := a[ch], b[ch]
		pa, pb := i < sa.Len(), j < sb.Len()
		if pa != pb {
			return false
		}
		eps := tol
		if ch.Discrete() {
			eps = 0
		}
		if pa && !sa.ValueEqual(i, sb, j, eps) {
			return false
		}
	}
	return true
}

// StrategyExpectation describes the expected legend arrangement.
type StrategyExpectation struct {
	Strategy Strategy

	// Channels are the channels the legends are expected to explain.
	Channels []scene.Channel

	// ExpectedTotal is the unified legend's entry count. 0 derives it from
	// Derived.Combined.
	ExpectedTotal int

	// ExpectedPerChannel holds split legend entry counts. Missing channels
	// fall back to Derived.PerChannel.
	ExpectedPerChannel map[scene.Channel]int

	// Derived holds counts computed from the plotted data.
	Derived Counts

	Tolerance float64
}

// CheckStrategy verifies legends against the expected arrangement. An
// unrecognized strategy returns a configuration error; every rendering
// discrepancy is a failing result.
func CheckStrategy(legends []scene.Legend, exp StrategyExpectation) (*Result, error) {
	switch exp.Strategy {
	case StrategyUnified:
		return checkUnified(legends, exp), nil
	case StrategySplit:
		return checkSplit(legends, exp), nil
	default:
		return nil, NewConfigurationError("legend_strategy",
			"unknown legend strategy %q (valid: unified, split)", exp.Strategy)
	}
}

func checkUnified(legends []scene.Legend, exp StrategyExpectation) *Result {
	const name = "strategy/unified"
	expected := exp.ExpectedTotal
	derived := expected == 0
	if derived {
		expected = exp.Derived.Combined
	}
	details := map[string]any{
		"strategy":         string(StrategyUnified),
		"legend_count":     len(legends),
		"expected_entries": expected,
		"derived":          derived,
	}

	if len(legends) != 1 {
		counts := make([]int, len(legends))
		for i, lg := range legends {
			counts[i] = len(lg.Entries)
		}
		details["observed_entries"] = counts
		kind := KindCountMismatch
		if len(legends) == 0 {
			kind = KindMissingStructure
		}
		return Fail(name, kind,
			fmt.Sprintf("expected one unified legend, found %d", len(legends)), details)
	}

	got := len(legends[0].Entries)
	details["observed_entries"] = got
	if got != expected {
		return Fail(name, KindCountMismatch,
			fmt.Sprintf("unified legend has %d entries, expected %d", got, expected), details)
	}
	return Pass(name, fmt.Sprintf("unified legend has the expected %d entries", got), details)
}

func checkSplit(legends []scene.Legend, exp StrategyExpectation) *Result {
	const name = "strategy/split"
	channels := exp.Channels
	expected := make(map[scene.Channel]int, len(channels))
	for _, ch := range channels {
		if n, ok := exp.ExpectedPerChannel[ch]; ok && n > 0 {
			expected[ch] = n
		} else {
			expected[ch] = exp.Derived.PerChannel[ch]
		}
	}

	// A single legend that explains several channels at once is the
	// classic mistake: a combined legend built where split legends were
	// expected.
	if len(legends) == 1 && len(channels) > 1 {
		if _, ok := legendChannel(&legends[0], channels, exp.Tolerance); !ok {
			return Fail(name, KindCountMismatch,
				fmt.Sprintf("strategy mismatch: expected split legends with per-channel counts %s, found one combined legend with %d entries",
					formatCounts(channels, expected), len(legends[0].Entries)),
				map[string]any{
					"strategy":          string(StrategySplit),
					"strategy_mismatch": true,
					"expected_counts":   countsMap(channels, expected),
					"observed_unified":  len(legends[0].Entries),
				})
		}
	}

	assigned := make(map[scene.Channel][]int)
	var unassigned []int
	for i := range legends {
		ch, ok := legendChannel(&legends[i], channels, exp.Tolerance)
		if !ok {
			unassigned = append(unassigned, i)
			continue
		}
		assigned[ch] = append(assigned[ch], i)
	}

	var checks []*Result
	for _, ch := range channels {
		cname := fmt.Sprintf("%s/%s", name, ch)
		d := map[string]any{"channel": string(ch), "expected_entries": expected[ch]}
		idx := assigned[ch]
		switch len(idx) {
		case 0:
			checks = append(checks, Fail(cname, KindMissingStructure,
				fmt.Sprintf("no legend explains %s (expected %d entries)", ch, expected[ch]), d))
		case 1:
			got := len(legends[idx[0]].Entries)
			d["observed_entries"] = got
			if got == expected[ch] {
				checks = append(checks, Pass(cname,
					fmt.Sprintf("%s legend has the expected %d entries", ch, got), d))
			} else {
				checks = append(checks, Fail(cname, KindCountMismatch,
					fmt.Sprintf("%s legend has %d entries, expected %d", ch, got, expected[ch]), d))
			}
		default:
			d["legend_count"] = len(idx)
			checks = append(checks, Fail(cname, KindCountMismatch,
				fmt.Sprintf("%d legends explain %s, expected one", len(idx), ch), d))
		}
	}
	for _, i := range unassigned {
		checks = append(checks, Fail(fmt.Sprintf("%s/legend[%d]", name, i), KindCountMismatch,
			fmt.Sprintf("legend %d does not explain a single expected channel", i),
			map[string]any{"entries": len(legends[i].Entries)}))
	}
	return Compose(name, checks...)
}

// legendChannel resolves the channel a split legend explains: the declared
// channel, else the only expected channel whose values vary across the
// entries, else the only expected channel the entries expose at all.
func legendChannel(lg *scene.Legend, channels []scene.Channel, tol float64) (scene.Channel, bool) {
	if lg.Channel != "" {
		for _, ch := range channels {
			if ch == lg.Channel {
				return ch, true
			}
		}
		return "", false
	}

	ex := extract.Legend(lg, "")
	var varying, exposed []scene.Channel
	for _, ch := range channels {
		seq := ex.Sequence(ch)
		if seq.Empty() {
			continue
		}
		exposed = append(exposed, ch)
		if seq.UniqueCount(tol) > 1 {
			varying = append(varying, ch)
		}
	}
	switch {
	case len(varying) == 1:
		return varying[0], true
	case len(varying) == 0 && len(exposed) == 1:
		return exposed[0], true
	default:
		return "", false
	}
}

func formatCounts(channels []scene.Channel, counts map[scene.Channel]int) string {
	parts := make([]string, len(channels))
	for i, ch := range channels {
		parts[i] = fmt.Sprintf("%s=%d", ch, counts[ch])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func countsMap(channels []scene.Channel, counts map[scene.Channel]int) map[string]any {
	m := make(map[string]any, len(channels))
	for _, ch := range channels {
		m[string(ch)] = counts[ch]
	}
	return m
}
