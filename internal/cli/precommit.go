package cli

import (
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/xsvn/internal/hook"
)

var preCommitCmd = &cobra.Command{
	Use:   "pre-commit <config file> REPO_PATH TX_NAME",
	Short: "Check a commit transaction against the policy authority",
	Long: `Check a pending commit transaction.

Subversion runs the pre-commit hook with the repository path and the
transaction name. A non-zero exit aborts the commit and the text written to
stderr is shown to the committer.

Exit codes:
  0  commit allowed
  1  internal error
  3  usage error
  4  configuration error
  5  svnlook unavailable
  6  access denied
  7  malformed svnlook output
  8  duplicate changed path
  9  policy authority unavailable`,
	// Arguments are passed through untouched so that repository paths
	// starting with "-" never reach the flag parser.
	DisableFlagParsing: true,
	RunE:               runPreCommit,
}

func runPreCommit(cmd *cobra.Command, args []string) error {
	controller := hook.NewController(cmd.CommandPath(), cmd.ErrOrStderr(), hookWiring())
	if code := controller.Run(cmd.Context(), args); code != hook.ExitAllowed {
		return exitCodeError{code: code}
	}
	return nil
}
