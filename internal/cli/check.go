package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/plotcheck/internal/harness"
)

// CheckResult is the JSON form of one verified scenario.
type CheckResult struct {
	Scenario    string         `json:"scenario"`
	File        string         `json:"file"`
	Passed      bool           `json:"passed"`
	ReportID    string         `json:"report_id,omitempty"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// CheckSummary holds the results of a check run.
type CheckSummary struct {
	Results []CheckResult `json:"results"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
	Total   int           `json:"total"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>...",
		Short: "Verify scenarios and print their reports",
		Long: `Verify each scenario's figure against its expectation and print the
report. The scenario's want_pass field is ignored: check reports what the
figure does, not what the scenario predicts.

Exit codes:
  0 - Every scenario passed verification
  1 - One or more checks failed
  2 - Command error (missing files, invalid expectation or configuration)

Examples:
  plotcheck check scenarios/scatter.yaml
  plotcheck check scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.resolve(); err != nil {
				return err
			}
			return runCheck(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	h := opts.newHarness(cmd.ErrOrStderr())
	summary := CheckSummary{Results: make([]CheckResult, 0, len(files)), Total: len(files)}

	for _, file := range files {
		res, err := checkScenario(h, file)
		if err != nil {
			if formatter.JSON() {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), map[string]string{"file": file})
			}
			return WrapExitError(ExitCommandError, "check aborted", err)
		}
		summary.Results = append(summary.Results, res.result)
		if res.result.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}

		if !formatter.JSON() {
			if err := harness.WriteText(cmd.OutOrStdout(), res.report, harness.TextOptions{Color: opts.colorEnabled()}); err != nil {
				return err
			}
			if res.result.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  error: %s\n", res.result.Error)
			}
		}
	}

	var failed *CLIError
	if summary.Failed > 0 {
		failed = &CLIError{
			Code:    ErrCodeCheckFailed,
			Message: fmt.Sprintf("%d of %d scenario(s) failed verification", summary.Failed, summary.Total),
		}
	}
	if err := formatter.Result(summary, failed); err != nil {
		return err
	}
	if failed != nil {
		return NewExitError(ExitFailure, failed.Message)
	}
	return nil
}

type checked struct {
	report *harness.Report
	result CheckResult
}

// checkScenario verifies one scenario file. Errors loading the scenario or
// its expectation abort the command; an aborted verification is a failed
// result.
func checkScenario(h *harness.Harness, file string) (*checked, error) {
	sc, err := harness.LoadScenario(file)
	if err != nil {
		return nil, err
	}
	out, err := h.RunScenario(sc)
	if err != nil {
		return nil, err
	}
	if out.Report == nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, out.Err)
	}

	res := CheckResult{
		Scenario:    sc.Name,
		File:        file,
		Passed:      out.Report.Passed(),
		ReportID:    out.Report.ID,
		Fingerprint: out.Report.Fingerprint,
		Result:      out.Report.Result.Map(),
	}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	return &checked{report: out.Report, result: res}, nil
}
