package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openvtb/fifovh/internal/config"
	"github.com/openvtb/fifovh/internal/harness"
)

// ValidationIssue is one scenario or config file that failed validation.
type ValidationIssue struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir-or-file>",
		Short: "Validate scenario files without running them",
		Long: `Validate YAML scenario files (and optionally a CUE bench configuration)
without executing anything.

Performs strict YAML decoding, flow step checks and assertion checks.
Faster than run for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], configPath, cmd)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "CUE bench configuration file to validate")

	return cmd
}

func runValidate(opts *RootOptions, path, configPath string, cmd *cobra.Command) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", path))
	} else if err != nil {
		return WrapExitError(ExitCommandError, "stat scenario path", err)
	}

	var files []string
	if info.IsDir() {
		files, err = findScenarioFiles(path, "")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
	} else {
		files = []string{path}
	}

	if len(files) == 0 && configPath == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("no scenario files found in %s", path))
	}

	result := ValidationResult{Files: len(files)}

	if configPath != "" {
		result.Files++
		if _, err := config.Load(configPath); err != nil {
			result.Issues = append(result.Issues, ValidationIssue{
				File:    configPath,
				Message: err.Error(),
			})
		}
	}

	for _, file := range files {
		if _, err := harness.LoadScenario(file); err != nil {
			result.Issues = append(result.Issues, ValidationIssue{
				File:    file,
				Message: err.Error(),
			})
		}
	}

	result.Valid = len(result.Issues) == 0
	return outputValidation(cmd, opts, result)
}

func outputValidation(cmd *cobra.Command, opts *RootOptions, result ValidationResult) error {
	w := cmd.OutOrStdout()

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    "E_VALIDATION",
				Message: fmt.Sprintf("%d file(s) failed validation", len(result.Issues)),
			}
		}
		if err := writeJSON(w, resp); err != nil {
			return err
		}
		if !result.Valid {
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(result.Issues)))
		}
		return nil
	}

	if result.Valid {
		fmt.Fprintf(w, "✓ %d file(s) valid\n", result.Files)
		return nil
	}

	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "%s\n  %s\n\n", issue.File, issue.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(result.Issues)))
}
