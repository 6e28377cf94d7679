package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openvtb/fifovh/internal/config"
	"github.com/openvtb/fifovh/internal/harness"
	"github.com/openvtb/fifovh/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
	Config string // CUE bench configuration file
	DB     string // SQLite database to persist runs into
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name    string   `json:"name"`
	Pass    bool     `json:"pass"`
	Writes  int      `json:"writes"`
	Reads   int      `json:"reads"`
	Pending int      `json:"pending"`
	RunID   string   `json:"run_id,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// RunResult holds the overall result across scenarios.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenarios-dir-or-file>",
		Short: "Run verification scenarios",
		Long: `Run YAML scenario files against a freshly wired bench each.

Every scenario gets its own scheduler, clock domains, device model and
scoreboard, so runs are isolated and deterministic.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, bad config, etc.)

Examples:
  fifovh run ./scenarios
  fifovh run ./scenarios --filter "reset-*"
  fifovh run ./scenarios --config bench.cue
  fifovh run ./scenarios --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Config, "config", "", "CUE bench configuration file")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database to persist runs into")

	return cmd
}

func runScenarios(opts *RunOptions, path string, cmd *cobra.Command) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", path))
	} else if err != nil {
		return WrapExitError(ExitCommandError, "stat scenario path", err)
	}

	var files []string
	if info.IsDir() {
		files, err = findScenarioFiles(path, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
	} else {
		files = []string{path}
	}

	runnerOpts := []harness.RunnerOption{}
	if opts.Config != "" {
		base, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "load configuration", err)
		}
		runnerOpts = append(runnerOpts, harness.WithBaseConfig(base))
	}
	if opts.Verbose {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		runnerOpts = append(runnerOpts, harness.WithRunnerLogger(logger))
	}
	runner := harness.NewRunner(runnerOpts...)

	var st *store.Store
	if opts.DB != "" {
		st, err = store.Open(opts.DB)
		if err != nil {
			return WrapExitError(ExitCommandError, "open run database", err)
		}
		defer st.Close()
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return outputRunJSON(cmd, RunResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}

	for _, file := range files {
		sr := runScenarioFile(cmd, runner, st, file, opts)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, result)
	}
	return outputRunText(cmd, result)
}

// runScenarioFile loads, executes and (optionally) persists one scenario.
func runScenarioFile(cmd *cobra.Command, runner *harness.Runner, st *store.Store, file string, opts *RunOptions) ScenarioResult {
	w := cmd.OutOrStdout()

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", filepath.Base(file))
			fmt.Fprintf(w, "  Load error: %v\n", err)
		}
		return ScenarioResult{
			Name:   filepath.Base(file),
			Pass:   false,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := runner.Run(scenario)
	if err != nil {
		if opts.Format != "json" {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			fmt.Fprintf(w, "  Execution error: %v\n", err)
		}
		return ScenarioResult{
			Name:   scenario.Name,
			Pass:   false,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	sr := ScenarioResult{
		Name:    scenario.Name,
		Pass:    result.Pass,
		Writes:  result.Writes,
		Reads:   result.Reads,
		Pending: result.Pending,
		Errors:  result.Errors,
	}

	if st != nil {
		runID, err := persistRun(cmd.Context(), st, scenario, result)
		if err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("persist run: %v", err))
		} else {
			sr.RunID = runID
		}
	}

	if opts.Format != "json" {
		if sr.Pass {
			fmt.Fprintf(w, "✓ %s\n", scenario.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", indentLines(e))
			}
		}
	}

	return sr
}

// persistRun converts a harness result into a store record and writes it.
func persistRun(ctx context.Context, st *store.Store, scenario *harness.Scenario, result *harness.Result) (string, error) {
	run := store.Run{
		Scenario: harness.CanonicalName(scenario.Name),
		Pass:     result.Pass,
		Writes:   result.Writes,
		Reads:    result.Reads,
		Pending:  result.Pending,
		Failures: result.Errors,
	}
	for _, ev := range result.Trace {
		run.Events = append(run.Events, store.Event{
			Seq:  ev.Seq,
			Kind: ev.Kind,
			Data: ev.Data,
		})
	}
	return st.WriteRun(ctx, run)
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// indentLines keeps multi-line failure messages aligned under the scenario.
func indentLines(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}

// outputRunJSON outputs the run result as JSON.
func outputRunJSON(cmd *cobra.Command, result RunResult) error {
	status := "ok"
	resp := CLIResponse{Status: status, Data: result}

	if result.Failed > 0 {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    "E_SCENARIO_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputRunText outputs the run result as text.
func outputRunText(cmd *cobra.Command, result RunResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
