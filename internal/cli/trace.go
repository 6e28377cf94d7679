package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openvtb/fifovh/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	DB       string // SQLite database holding persisted runs
	Scenario string // filter run listing by canonical scenario name
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Inspect persisted runs",
		Long: `List persisted runs, or dump the full event trace of one run.

Without a run ID, lists run summaries newest first. With a run ID,
prints the run's merged monitor trace in arrival order plus any
recorded failures.

Examples:
  fifovh trace --db runs.db
  fifovh trace --db runs.db --scenario fifo-basic
  fifovh trace --db runs.db 0198c0de-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return traceRun(opts, args[0], cmd)
			}
			return listRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database holding persisted runs (required)")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "filter listing by scenario name")
	cmd.MarkFlagRequired("db")

	return cmd
}

func openRunDB(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open run database", err)
	}
	return st, nil
}

func listRuns(opts *TraceOptions, cmd *cobra.Command) error {
	st, err := openRunDB(opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}
	for _, r := range runs {
		mark := "✓"
		if !r.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s  writes=%d reads=%d pending=%d\n",
			mark, r.ID, r.Scenario, r.Writes, r.Reads, r.Pending)
	}
	return nil
}

func traceRun(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	st, err := openRunDB(opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.ReadRun(cmd.Context(), runID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	} else if err != nil {
		return WrapExitError(ExitCommandError, "read run", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: run})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (%s)\n", run.ID, run.Scenario)
	fmt.Fprintf(w, "  writes=%d reads=%d pending=%d\n\n", run.Writes, run.Reads, run.Pending)

	for _, ev := range run.Events {
		fmt.Fprintf(w, "  [%d] %s data=0x%02x\n", ev.Seq, ev.Kind, ev.Data)
	}

	if len(run.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failures:")
		for _, msg := range run.Failures {
			fmt.Fprintf(w, "  %s\n", indentLines(msg))
		}
	}

	if !run.Pass {
		return NewExitError(ExitFailure, "run failed")
	}
	return nil
}
