package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/elfpeek/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Path     string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded inspections",
		Long: `List inspections recorded by "elfpeek info --db", newest first.

Example:
  elfpeek history --db ~/.elfpeek.db --limit 5
  elfpeek history --db ~/.elfpeek.db --path ./hello`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to the config's db)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of inspections to list (0 for all)")
	cmd.Flags().StringVar(&opts.Path, "path", "", "show only the latest inspection of this file")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	dbPath := opts.Database
	if dbPath == "" && opts.Config != nil {
		dbPath = opts.Config.DB
	}
	if dbPath == "" {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "no database: pass --db or set db in the config", nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var rows []store.Inspection
	if opts.Path != "" {
		abs, err := filepath.Abs(opts.Path)
		if err != nil {
			abs = opts.Path
		}
		latest, err := st.LatestByPath(ctx, abs)
		switch {
		case errors.Is(err, store.ErrNotFound):
			rows = []store.Inspection{}
		case err != nil:
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read history", err)
		default:
			rows = []store.Inspection{latest}
		}
	} else {
		rows, err = st.ListInspections(ctx, opts.Limit)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read history", err)
		}
	}
	formatter.VerboseLog("%d inspection(s) in %s", len(rows), dbPath)

	if formatter.Structured() {
		return formatter.Success(rows)
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No inspections recorded.")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-20s  %-6s  %-8s  %-18s  %s\n", "ID", "Inspected", "Type", "Machine", "Entry", "Path")
	for _, r := range rows {
		fmt.Fprintf(out, "%-36s  %-20s  %-6s  %-8s  0x%016x  %s\n",
			r.ID, r.InspectedAt.Format(time.RFC3339), r.Type, r.Machine, r.Entry, r.Path)
	}
	return nil
}
