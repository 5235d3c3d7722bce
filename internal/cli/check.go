package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/elfpeek/internal/policy"
	"github.com/roach88/elfpeek/internal/report"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	PolicyFile string
	Builtin    string
}

// CheckResult is the structured output of the check command.
type CheckResult struct {
	Path   string        `json:"path" yaml:"path"`
	Digest string        `json:"digest" yaml:"digest"`
	Result policy.Result `json:"result" yaml:"result"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check an ELF object against a CUE policy",
		Long: `Build a full report for an ELF object and validate it against a CUE
policy. The report is available to the policy under "report".

Without --policy or --builtin, the config's policy file is used, or the
built-in "nonpie" policy when none is configured.

Exit codes:
  0 - policy satisfied
  1 - policy violated
  2 - command error (unreadable file, bad policy)

Example:
  elfpeek check ./hello
  elfpeek check --policy ./policies/static.cue ./hello`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PolicyFile, "policy", "", "path to a CUE policy file")
	cmd.Flags().StringVar(&opts.Builtin, "builtin", "", fmt.Sprintf("built-in policy name %v", policy.Builtins()))
	cmd.MarkFlagsMutuallyExclusive("policy", "builtin")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	pol, err := opts.loadPolicy()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodePolicy, "failed to load policy", err)
	}
	formatter.VerboseLog("Policy: %s", pol.Name)

	ins, cerr := inspect(path, report.Sections{All: true})
	if cerr != nil {
		return cerr.fail(formatter, ExitCommandError)
	}

	res := pol.Check(ins.Report)
	slog.Debug("policy checked", "policy", res.Policy, "passed", res.Passed, "violations", len(res.Violations))

	if formatter.Structured() {
		if err := formatter.Success(CheckResult{Path: path, Digest: ins.Digest, Result: res}); err != nil {
			return err
		}
	} else {
		writeCheckText(cmd, path, res)
	}

	if !res.Passed {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%s violates policy %s", path, res.Policy),
			Reported: true,
		}
	}
	return nil
}

func (opts *CheckOptions) loadPolicy() (*policy.Policy, error) {
	switch {
	case opts.PolicyFile != "":
		return policy.LoadFile(opts.PolicyFile)
	case opts.Builtin != "":
		return policy.Builtin(opts.Builtin)
	case opts.Config != nil && opts.Config.Policy != "":
		return policy.LoadFile(opts.Config.Policy)
	}
	return policy.Builtin("nonpie")
}

func writeCheckText(cmd *cobra.Command, path string, res policy.Result) {
	out := cmd.OutOrStdout()
	status := "PASS"
	if !res.Passed {
		status = "FAIL"
	}
	fmt.Fprintf(out, "%s %s: %s\n", status, res.Policy, path)
	for _, v := range res.Violations {
		fmt.Fprintf(out, "\t%s\n", v)
	}
}
