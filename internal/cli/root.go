package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/elfpeek/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "yaml"

	// Config is loaded before any subcommand runs.
	Config *config.Config

	// MainFunc is the binary's main function, reported by layout.
	MainFunc any

	loadConfig func() (*config.Config, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// Option customises the root command.
type Option func(*RootOptions)

// WithMain records the binary's main function for the layout command.
func WithMain(fn any) Option {
	return func(o *RootOptions) { o.MainFunc = fn }
}

// WithConfigLoader replaces config.Load, for tests and embedding.
func WithConfigLoader(load func() (*config.Config, error)) Option {
	return func(o *RootOptions) { o.loadConfig = load }
}

// NewRootCommand creates the root command for the elfpeek CLI.
func NewRootCommand(options ...Option) *cobra.Command {
	opts := &RootOptions{loadConfig: config.Load}
	for _, o := range options {
		o(opts)
	}

	cmd := &cobra.Command{
		Use:   "elfpeek",
		Short: "elfpeek - look inside ELF64 objects",
		Long: `Inspect ELF64 little-endian objects: headers, segments, sections,
symbols, relocations and dynamic linking information.

Inspections can be recorded to a SQLite history and checked against CUE
policies. The layout command checks that the running binary really maps its
own ELF header at 0x400000.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewLayoutCommand(opts))

	return cmd
}

// prepare loads configuration, lets it supply the format when the flag was
// not given, validates the format, and installs the slog handler.
func (opts *RootOptions) prepare(cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	opts.Config = cfg

	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		opts.Format = cfg.Format
	}
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	setupLogging(cmd.ErrOrStderr(), opts.Verbose)
	return nil
}

// setupLogging sends slog output to w, at debug level when verbose.
func setupLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// formatter builds the output formatter for a command.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
