package verify

import (
	"fmt"

	"github.com/roach88/plotcheck/internal/extract"
)

// DefaultSampleLimit caps the number of sample values in diagnostics.
const DefaultSampleLimit = 5

// VariationOptions configures CheckVariation.
type VariationOptions struct {
	// Threshold is the minimum number of distinct values. Values below 1
	// are treated as 1.
	Threshold int

	Tolerance float64

	// Mandatory makes an empty sequence fail instead of being skipped.
	Mandatory bool

	// SampleLimit caps the samples listed in details. 0 means
	// DefaultSampleLimit.
	SampleLimit int

	// Source names the subplot the sequence came from.
	Source string
}

// CheckName returns the conventional name of a per-channel check.
func CheckName(source string, seq extract.Sequence, check string) string {
	if source == "" {
		return fmt.Sprintf("%s/%s", seq.Channel, check)
	}
	return fmt.Sprintf("%s/%s/%s", source, seq.Channel, check)
}

// CheckVariation passes when seq has at least opts.Threshold distinct values
// under opts.Tolerance.
func CheckVariation(seq extract.Sequence, opts VariationOptions) *Result {
	threshold := opts.Threshold
	if threshold < 1 {
		threshold = 1
	}
	limit := opts.SampleLimit
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	name := CheckName(opts.Source, seq, "variation")

	details := map[string]any{
		"channel":   string(seq.Channel),
		"threshold": threshold,
		"tolerance": opts.Tolerance,
	}
	if opts.Source != "" {
		details["source"] = opts.Source
	}

	if seq.Empty() {
		details["unique_count"] = 0
		if !opts.Mandatory {
			details["skipped"] = true
			return Pass(name, fmt.Sprintf("%s not present, skipped (optional)", seq.Channel), details)
		}
		return Fail(name, KindMissingStructure,
			fmt.Sprintf("%s has no values; expected at least %d distinct", seq.Channel, threshold), details)
	}

	distinct := seq.Distinct(opts.Tolerance)
	details["unique_count"] = len(distinct)
	details["samples"] = formatAt(seq, distinct, limit)

	if len(distinct) >= threshold {
		return Pass(name, fmt.Sprintf("%s varies: %d distinct values (threshold %d)",
			seq.Channel, len(distinct), threshold), details)
	}
	return Fail(name, KindCountMismatch,
		fmt.Sprintf("%s shows %d distinct values, expected at least %d",
			seq.Channel, len(distinct), threshold), details)
}

// formatAt formats the values of seq at indices, up to limit of them.
func formatAt(seq extract.Sequence, indices []int, limit int) []string {
	if limit > 0 && len(indices) > limit {
		indices = indices[:limit]
	}
	out := make([]string, len(indices))
	for i, idx := range indices {
		out[i] = seq.Format(idx)
	}
	return out
}
