package verify

import (
	"fmt"

	"github.com/roach88/plotcheck/internal/extract"
)

// ConsistencyOptions configures CheckConsistency.
type ConsistencyOptions struct {
	// Tolerance applies to color, size and alpha. Marker and style always
	// compare exactly.
	Tolerance float64

	SampleLimit int

	// Source names the subplot the sequences came from.
	Source string
}

// CheckConsistency compares the plotted values of one channel with the
// legend's values of the same channel.
//
// Two sub-checks must both pass:
//
//   - count: the number of distinct plotted values equals the number of
//     legend entries exposing the channel
//   - values: every distinct plotted value has an equivalent legend entry
//     (set containment, legend order is irrelevant)
//
// Both unmatched plotted values and unmatched legend entries are listed in
// the details.
func CheckConsistency(plotted, legend extract.Sequence, opts ConsistencyOptions) *Result {
	name := CheckName(opts.Source, plotted, "consistency")
	limit := opts.SampleLimit
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	tol := opts.Tolerance
	if plotted.Channel.Discrete() {
		tol = 0
	}

	base := func() map[string]any {
		d := map[string]any{"channel": string(plotted.Channel)}
		if !plotted.Channel.Discrete() {
			d["tolerance"] = tol
		}
		return d
	}

	if plotted.Empty() {
		return Fail(name, KindMissingStructure,
			fmt.Sprintf("no plotted %s values to compare with the legend", plotted.Channel), base())
	}
	if legend.Empty() {
		d := base()
		d["plotted_unique"] = plotted.UniqueCount(tol)
		return Fail(name, KindMissingStructure,
			fmt.Sprintf("legend has no entries exposing %s", plotted.Channel), d)
	}

	distinct := plotted.Distinct(tol)

	countDetails := base()
	countDetails["plotted_unique"] = len(distinct)
	countDetails["legend_entries"] = legend.Len()
	var count *Result
	if len(distinct) == legend.Len() {
		count = Pass(name+"/count",
			fmt.Sprintf("%d distinct plotted values match %d legend entries", len(distinct), legend.Len()),
			countDetails)
	} else {
		count = Fail(name+"/count", KindCountMismatch,
			fmt.Sprintf("%d distinct plotted %s values but %d legend entries",
				len(distinct), plotted.Channel, legend.Len()),
			countDetails)
	}

	var unmatchedPlotted []int
	for _, i := range distinct {
		if !plotted.Contains(legend, i, tol) {
			unmatchedPlotted = append(unmatchedPlotted, i)
		}
	}
	var unmatchedLegend []string
	for j := 0; j < legend.Len(); j++ {
		if !legend.Contains(plotted, j, tol) {
			unmatchedLegend = append(unmatchedLegend, describeEntry(legend, j))
		}
	}

	valueDetails := base()
	valueDetails["unmatched_plotted"] = formatAt(plotted, unmatchedPlotted, limit)
	valueDetails["unmatched_legend"] = capStrings(unmatchedLegend, limit)
	var values *Result
	if len(unmatchedPlotted) == 0 {
		msg := fmt.Sprintf("every plotted %s value has a legend entry", plotted.Channel)
		if len(unmatchedLegend) > 0 {
			msg += fmt.Sprintf(" (%d legend entries match no plotted value)", len(unmatchedLegend))
		}
		values = Pass(name+"/values", msg, valueDetails)
	} else {
		values = Fail(name+"/values", KindToleranceMismatch,
			fmt.Sprintf("%d plotted %s values have no matching legend entry",
				len(unmatchedPlotted), plotted.Channel),
			valueDetails)
	}

	return Compose(name, count, values)
}

func describeEntry(seq extract.Sequence, i int) string {
	if i < len(seq.Labels) && seq.Labels[i] != "" {
		return fmt.Sprintf("%s=%s", seq.Labels[i], seq.Format(i))
	}
	return seq.Format(i)
}

func capStrings(s []string, limit int) []string {
	if s == nil {
		return []string{}
	}
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
