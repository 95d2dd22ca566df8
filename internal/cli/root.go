package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/plotcheck/internal/config"
	"github.com/roach88/plotcheck/internal/harness"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	NoColor    bool
	ConfigPath string

	// ProjectDir is searched for project config files. Defaults to ".".
	ProjectDir string

	// Config is resolved before any subcommand runs. Subcommands built on
	// their own resolve it on first use.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the plotcheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "plotcheck",
		Short: "plotcheck - post-render plot verification",
		Long: `Verify that rendered plots encode what they claim to.

plotcheck wraps a plotting call, extracts the visual properties of the
rendered artifacts and checks them against a declared expectation: channels
that must vary, legends that must agree with the data, a figure legend
strategy and legend visibility.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (json|text, default from config or text)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: .plotcheck.yaml in the working directory)")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))

	return cmd
}

// resolve loads the configuration and folds it into the flags. Flags set on
// the command line win over configured values.
func (o *RootOptions) resolve() error {
	if o.Config == nil {
		cfg, err := config.Load(config.LoadOptions{
			ProjectDir: o.ProjectDir,
			ConfigPath: o.ConfigPath,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid configuration", err)
		}
		o.Config = cfg
	}

	if o.Format == "" {
		o.Format = o.Config.Format
	}
	o.NoColor = o.NoColor || o.Config.NoColor

	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	return nil
}

// colorEnabled reports whether text output may use colors: not disabled by
// flag or config, and stdout is a terminal.
func (o *RootOptions) colorEnabled() bool {
	return !o.NoColor && !color.NoColor
}

// logger returns a text logger on w when verbose, otherwise a discarding one.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newHarness builds a harness configured from the resolved settings.
func (o *RootOptions) newHarness(logs io.Writer) *harness.Harness {
	return harness.New(
		harness.WithLogger(o.logger(logs)),
		harness.WithDefaults(o.Config.Defaults()),
	)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// Execute runs the CLI with args and returns the process exit code. Command
// errors are printed to stderr; verification failures were already reported
// on stdout.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	code := GetExitCode(err)
	if code == ExitCommandError {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}
