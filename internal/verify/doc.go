// Package verify holds the verifiers of the plot verification engine and
// the result contract they share.
//
// Every verifier returns a *Result. Results compose by logical AND via
// Compose, keeping each child under its own name, so a figure-level result
// carries the full tree of subplot and channel checks.
//
// Failed checks are soft: they are returned as failing results so that one
// run reports every discrepancy. Only caller mistakes (KindConfiguration)
// and plotting-call failures (KindInvocation) are returned as errors.
//
// The verifiers:
//
//   - CheckVariation: a channel shows at least a threshold of distinct values
//   - CheckConsistency: plotted values and legend values agree
//   - CheckStrategy: the figure's legends follow the unified or split layout
//   - CheckVisibility: legends that exist are actually drawn
//
// Values are never normalized or clustered here; that is done by the
// extract and tolerance packages.
package verify
