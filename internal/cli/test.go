package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/plotcheck/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	Parallel  int    // concurrent scenarios (0 = from config)
	GoldenDir string // golden directory (empty = from config)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Pass     bool     `json:"pass"`
	ReportID string   `json:"report_id,omitempty"`
	Golden   string   `json:"golden,omitempty"` // "matched", "updated" or "missing"
	Errors   []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files against their golden reports",
		Long: `Run every scenario file in a directory.

Scenario files are the .yaml and .yml files directly inside the directory.
A scenario passes when its verification outcome matches want_pass and,
if a golden report exists, the report snapshot matches it byte for byte.
Golden files live in golden_dir (relative to the scenarios directory).

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, configuration, etc.)

Examples:
  plotcheck test ./scenarios
  plotcheck test ./scenarios --filter "legend-*"
  plotcheck test ./scenarios --update
  plotcheck test ./scenarios --parallel 8 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.resolve(); err != nil {
				return err
			}
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", 0, "scenarios verified concurrently (default from config)")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default from config)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if formatter.JSON() {
			return formatter.Result(TestResult{Scenarios: []ScenarioResult{}}, nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	goldenDir := opts.goldenDir(scenariosDir)
	formatter.VerboseLog("Running %d scenario(s), golden files in %s", len(scenarioFiles), goldenDir)

	// Each scenario owns its harness and scene; results land at their
	// file's index so output order is stable.
	results := make([]ScenarioResult, len(scenarioFiles))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.parallel())
	for i, file := range scenarioFiles {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h := opts.newHarness(cmd.ErrOrStderr())
			results[i] = runScenario(h, file, goldenDir, opts.Update)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "test run interrupted", err)
	}

	result := TestResult{Scenarios: results, Total: len(results)}
	for _, r := range results {
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.JSON() {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(cmd, result)
}

func (o *TestOptions) parallel() int {
	if o.Parallel > 0 {
		return o.Parallel
	}
	return o.Config.Parallel
}

func (o *TestOptions) goldenDir(scenariosDir string) string {
	dir := o.GoldenDir
	if dir == "" {
		dir = o.Config.GoldenDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(scenariosDir, dir)
}

// findScenarioFiles lists the YAML files directly inside dir, sorted by
// name. Subdirectories hold the figures and expectations scenarios refer to
// and are not scanned.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		if filter != "" {
			name := strings.TrimSuffix(entry.Name(), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}

		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// runScenario verifies a single scenario file and checks its golden report.
func runScenario(h *harness.Harness, file, goldenDir string, update bool) ScenarioResult {
	res := ScenarioResult{Name: filepath.Base(file), File: file}

	sc, err := harness.LoadScenario(file)
	if err != nil {
		res.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return res
	}
	res.Name = sc.Name

	out, err := h.RunScenario(sc)
	if err != nil {
		res.Errors = []string{err.Error()}
		return res
	}
	if out.Report == nil {
		res.Errors = []string{fmt.Sprintf("verification aborted: %v", out.Err)}
		return res
	}
	res.ReportID = out.Report.ID

	if !out.Matched() {
		res.Errors = append(res.Errors, fmt.Sprintf("expected pass=%t, got pass=%t: %s",
			sc.ShouldPass(), out.Report.Passed(), out.Report.Result.Message))
		for _, f := range out.Report.Result.Failures() {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", f.Name, f.Message))
		}
	}

	snap, err := harness.Snapshot(out.Report.Result)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("failed to snapshot report: %v", err))
		return res
	}

	err = harness.CompareGolden(goldenDir, sc.Name, snap, update)
	switch {
	case err == nil && update:
		res.Golden = "updated"
	case err == nil:
		res.Golden = "matched"
	case errors.Is(err, fs.ErrNotExist):
		res.Golden = "missing"
	case errors.Is(err, harness.ErrGoldenMismatch):
		res.Errors = append(res.Errors, "report does not match golden file (run with --update to regenerate)")
	default:
		res.Errors = append(res.Errors, err.Error())
	}

	res.Pass = len(res.Errors) == 0
	return res
}

func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	var failed *CLIError
	if result.Failed > 0 {
		failed = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}
	if err := formatter.Result(result, failed); err != nil {
		return err
	}
	if failed != nil {
		return NewExitError(ExitFailure, failed.Message)
	}
	return nil
}

func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	for _, r := range result.Scenarios {
		mark := "✓"
		if !r.Pass {
			mark = "✗"
		}
		suffix := ""
		if r.Golden == "updated" {
			suffix = " (golden updated)"
		}
		fmt.Fprintf(w, "%s %s%s\n", mark, r.Name, suffix)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
