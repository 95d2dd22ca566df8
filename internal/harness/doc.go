// Package harness wraps plot-producing calls and verifies the scenes they
// render against a declared expectation.
//
// A verification call moves through three states:
//
//   - Invoking: the plot function is called. A returned error or panic
//     aborts the call with a single failed "invocation" result.
//   - Verifying: the checks implied by the expectation run. Variation runs
//     for every declared subplot and channel, consistency when
//     verify_legend_consistency is set, figure strategy when a legend
//     strategy is declared, and visibility when any legend expectation is
//     declared.
//   - Reporting: every check is combined with logical AND, fingerprinted
//     and optionally written as a text report.
//
// The scene is closed on every path before the call returns.
//
// # Scenario Format
//
// Scenarios pair a figure fixture with an expectation:
//
//	name: scatter_color
//	description: "Three colors, one legend"
//	figure:
//	  canvas: {x: 0, y: 0, width: 640, height: 480}
//	  subplots:
//	    - id: ax0
//	      groups:
//	        - kind: point-cloud
//	          elements:
//	            - {color: "#ff0000", marker: o}
//	            - {color: "#00ff00", marker: o}
//	expect:
//	  expected_channels:
//	    ax0: [color]
//	want_pass: true
//
// figure_file and expect_file may replace the inline blocks; expectation
// files ending in .cue are validated against the embedded CUE schema.
//
// # Determinism
//
// Reports carry a fingerprint (domain-separated SHA-256 of the canonical
// result) and a name-based UUID derived from it, so verifying the same
// scene twice yields identical reports. Golden snapshots rely on this.
package harness
