package harness

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/roach88/plotcheck/internal/verify"
)

// TextOptions configures WriteText.
type TextOptions struct {
	Color bool
}

// detailLines are the detail keys listed under a failed check, in order.
var detailLines = []string{"samples", "unmatched_plotted", "unmatched_legend", "errors"}

// WriteText writes the human-readable report:
//
//	FAIL scatter (3 checks, 1 failed)
//	  ✓ ax0/color/variation: color varies: 3 distinct values (threshold 2)
//	  ✗ ax0/marker/variation: marker shows 1 distinct values, expected at least 2
//	      samples: o
func WriteText(w io.Writer, rep *Report, opts TextOptions) error {
	if rep == nil || rep.Result == nil {
		return fmt.Errorf("no result to report")
	}
	res := rep.Result

	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{pass, fail, dim} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	leaves := res.Leaves()
	failed := 0
	for _, l := range leaves {
		if !l.Passed {
			failed++
		}
	}

	var b strings.Builder
	status := pass.Sprint("PASS")
	if !res.Passed {
		status = fail.Sprint("FAIL")
	}
	fmt.Fprintf(&b, "%s %s (%d checks, %d failed)\n", status, res.Name, len(leaves), failed)

	for _, l := range leaves {
		if l.Passed {
			fmt.Fprintf(&b, "  %s %s: %s\n", pass.Sprint("✓"), l.Name, l.Message)
			continue
		}
		fmt.Fprintf(&b, "  %s %s: %s\n", fail.Sprint("✗"), l.Name, l.Message)
		for _, key := range detailLines {
			values, ok := l.Details[key].([]string)
			if !ok || len(values) == 0 {
				continue
			}
			fmt.Fprintf(&b, "      %s %s\n", dim.Sprintf("%s:", key), strings.Join(values, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Summary returns the report's header line without colors.
func Summary(res *verify.Result) string {
	leaves := res.Leaves()
	failed := len(res.Failures())
	status := "PASS"
	if !res.Passed {
		status = "FAIL"
	}
	return fmt.Sprintf("%s %s (%d checks, %d failed)", status, res.Name, len(leaves), failed)
}
