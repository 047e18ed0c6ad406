package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xsvn",
	Short: "Policy-gated Subversion pre-commit hook",
	Long: `xsvn checks Subversion commits against an external policy authority.

Install "xsvn pre-commit" as the repository pre-commit hook. Users outside the
configured allow-list may only commit paths the authority grants them write
access to.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// exitCodeError carries a hook exit code out of a command without printing.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(preCommitCmd)
	rootCmd.AddCommand(hookScriptCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(migrateCmd)
}
