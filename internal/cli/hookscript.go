package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var hookScriptCmd = &cobra.Command{
	Use:   "hook-script <config file>",
	Short: "Print a pre-commit hook script",
	Long: `Print a shell script suitable for <repository>/hooks/pre-commit.

The script execs "xsvn pre-commit" with the given configuration file and the
repository path and transaction name supplied by Subversion.

Examples:
  xsvn hook-script /etc/xsvn/project.yaml > /srv/svn/project/hooks/pre-commit
  xsvn hook-script --binary /usr/local/bin/xsvn /etc/xsvn/project.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runHookScript,
}

var hookScriptBinary string

func init() {
	hookScriptCmd.Flags().StringVar(&hookScriptBinary, "binary", "", "Path of the xsvn binary (default: this executable)")
}

func runHookScript(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	binary := hookScriptBinary
	if binary == "" {
		binary, err = os.Executable()
		if err != nil {
			return fmt.Errorf("locating xsvn binary: %w", err)
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), renderHookScript(binary, configPath))
	return nil
}

func renderHookScript(binary, configPath string) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Subversion pre-commit hook: generated by \"xsvn hook-script\".\n")
	b.WriteString("# Arguments: $1 repository path, $2 transaction name.\n")
	fmt.Fprintf(&b, "exec %s pre-commit %s \"$1\" \"$2\"\n", shellQuote(binary), shellQuote(configPath))
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
