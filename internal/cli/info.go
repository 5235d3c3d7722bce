package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/elfpeek/internal/digest"
	"github.com/roach88/elfpeek/internal/report"
	"github.com/roach88/elfpeek/internal/store"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
	Sections report.Sections
	Database string
}

// InfoResult is the structured output of the info command.
type InfoResult struct {
	Path     string         `json:"path" yaml:"path"`
	Digest   string         `json:"digest" yaml:"digest"`
	Report   *report.Report `json:"report" yaml:"report"`
	Recorded *RecordResult  `json:"recorded,omitempty" yaml:"recorded,omitempty"`
}

// RecordResult describes the history row written for an inspection.
type RecordResult struct {
	ID      string `json:"id" yaml:"id"`
	Digest  string `json:"digest" yaml:"digest"`
	Created bool   `json:"created" yaml:"created"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Display information about an ELF object",
		Long: `Display the parts of an ELF64 little-endian object selected by flags.

With no section flag, the sections from the config file are shown, or the
file header when the config names none.

Example:
  elfpeek info -a ./hello
  elfpeek info --symbols --dyn-syms /usr/bin/true
  elfpeek info -p --db ~/.elfpeek.db --format json ./hello`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, args[0], cmd)
		},
	}

	s := &opts.Sections
	cmd.Flags().BoolVarP(&s.All, "all", "a", false, "display everything")
	cmd.Flags().BoolVarP(&s.FileHeader, "file-header", "f", false, "display the ELF file header")
	cmd.Flags().BoolVarP(&s.ProgramHeaders, "program-headers", "p", false, "display the ELF program headers")
	cmd.Flags().BoolVarP(&s.SectionHeaders, "section-headers", "s", false, "display the ELF section headers")
	cmd.Flags().BoolVar(&s.Symbols, "symbols", false, "display the symbol table")
	cmd.Flags().BoolVar(&s.DynSyms, "dyn-syms", false, "display the dynamic linking symbol table")
	cmd.Flags().BoolVarP(&s.Relocations, "relocations", "r", false, "display the relocations")
	cmd.Flags().BoolVarP(&s.Dynamic, "dynamic", "d", false, "display dynamic linking information")
	cmd.Flags().BoolVar(&s.SectionMapping, "section-mapping", false, "display section-to-segment mapping")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the inspection in this SQLite database")

	return cmd
}

func runInfo(opts *InfoOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	sel := opts.Sections
	if !sel.Any() && opts.Config != nil {
		sel = opts.Config.SectionSelection()
	}

	ins, cerr := inspect(path, sel)
	if cerr != nil {
		return cerr.fail(formatter, ExitCommandError)
	}
	formatter.VerboseLog("Digest: %s", ins.Digest)

	result := InfoResult{Path: path, Digest: ins.Digest, Report: ins.Report}

	dbPath := opts.Database
	if dbPath == "" && opts.Config != nil {
		dbPath = opts.Config.DB
	}
	if dbPath != "" {
		// History rows always hold the full report, so the digest names the
		// object and not the sections shown.
		full := ins
		if all := (report.Sections{All: true}); ins.Report.Selected != all {
			if full, cerr = inspect(path, all); cerr != nil {
				return cerr.fail(formatter, ExitCommandError)
			}
		}
		rec, err := record(cmd.Context(), dbPath, full)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to record inspection", err)
		}
		result.Recorded = rec
		if rec.Created {
			formatter.VerboseLog("Recorded inspection %s in %s", rec.ID, dbPath)
		} else {
			formatter.VerboseLog("Inspection already recorded as %s", rec.ID)
		}
	}

	if formatter.Structured() {
		return formatter.Success(result)
	}
	return report.WriteText(cmd.OutOrStdout(), ins.Report)
}

// record stores ins in the history database at dbPath.
func record(ctx context.Context, dbPath string, ins *inspection) (*RecordResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	canonical, err := digest.CanonicalJSON(ins.Report)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(ins.Path)
	if err != nil {
		abs = ins.Path
	}

	slog.Debug("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	stored, created, err := st.RecordInspection(ctx, store.Inspection{
		Path:    abs,
		Digest:  ins.Digest,
		Type:    ins.Header.Type.String(),
		Machine: ins.Header.Machine.String(),
		Entry:   ins.Header.Entry,
		Report:  string(canonical),
	})
	if err != nil {
		return nil, err
	}
	return &RecordResult{ID: stored.ID, Digest: stored.Digest, Created: created}, nil
}
