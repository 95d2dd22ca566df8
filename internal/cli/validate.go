package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/plotcheck/internal/expect"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	File      string   `json:"file"`
	Name      string   `json:"name,omitempty"`
	Subplots  []string `json:"subplots,omitempty"`
	Channels  []string `json:"channels,omitempty"`
	Threshold int      `json:"min_unique_threshold,omitempty"`
	Tolerance float64  `json:"tolerance,omitempty"`
	Strategy  string   `json:"legend_strategy,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <expectation.(yaml|cue)>",
		Short: "Validate an expectation file without rendering anything",
		Long: `Validate an expectation file.

YAML files are decoded strictly; CUE files are checked against the
embedded #Expectation schema. The effective settings, with configured
defaults applied, are printed on success.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.resolve(); err != nil {
				return err
			}
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); err != nil {
		if formatter.JSON() {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("expectation file not found: %s", path), nil)
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("expectation file not found: %s", path))
	}

	spec, err := expect.Load(path)
	if err != nil {
		return outputValidationFailure(formatter, ValidationResult{File: path, Errors: []string{err.Error()}})
	}

	spec.Merge(opts.Config.Defaults())
	if err := spec.Validate(); err != nil {
		return outputValidationFailure(formatter, ValidationResult{File: path, Errors: []string{err.Error()}})
	}

	result := ValidationResult{
		Valid:     true,
		File:      path,
		Name:      spec.Name,
		Subplots:  spec.Subplots(),
		Threshold: spec.Threshold(),
		Tolerance: spec.Tol(),
		Strategy:  spec.LegendStrategy,
	}
	for _, ch := range spec.AllChannels() {
		result.Channels = append(result.Channels, string(ch))
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %s valid\n", path)
	if len(result.Subplots) > 0 {
		fmt.Fprintf(w, "  subplots: %v\n", result.Subplots)
	}
	if len(result.Channels) > 0 {
		fmt.Fprintf(w, "  channels: %v\n", result.Channels)
	}
	fmt.Fprintf(w, "  min_unique_threshold: %d, tolerance: %g\n", result.Threshold, result.Tolerance)
	if result.Strategy != "" {
		fmt.Fprintf(w, "  legend_strategy: %s\n", result.Strategy)
	}
	return nil
}

// outputValidationFailure reports an invalid expectation. Invalid
// expectations are verification failures (exit code 1).
func outputValidationFailure(formatter *OutputFormatter, result ValidationResult) error {
	message := fmt.Sprintf("%s is not a valid expectation", result.File)
	if formatter.JSON() {
		if err := formatter.Result(result, &CLIError{
			Code:    ErrCodeInvalidExpect,
			Message: result.Errors[0],
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s\n", e)
	}
	return NewExitError(ExitFailure, message)
}
