package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and captures its output. Flag
// variables are reset afterwards since cobra commands are package globals.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		auditLimit, auditUser, auditRepo = 20, "", ""
		hookScriptBinary = ""
		for _, name := range []string{"limit", "user", "repo"} {
			if f := auditListCmd.Flags().Lookup(name); f != nil {
				f.Changed = false
			}
		}
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

type testConfig struct {
	dir          string
	authorityURL string
	svnlookPath  string
	audit        bool
	allowed      []string
}

// writeConfig writes a YAML hook configuration rooted in tc.dir.
func writeConfig(t *testing.T, tc testConfig) string {
	t.Helper()

	authorityURL := tc.authorityURL
	if authorityURL == "" {
		authorityURL = "http://127.0.0.1:1"
	}
	svnlookPath := tc.svnlookPath
	if svnlookPath == "" {
		svnlookPath = "svnlook"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "temp_dir: %s\n", filepath.Join(tc.dir, "tmp"))
	b.WriteString("repo_id: project\n")
	if len(tc.allowed) == 0 {
		b.WriteString("allowed_users: []\n")
	} else {
		b.WriteString("allowed_users:\n")
		for _, u := range tc.allowed {
			fmt.Fprintf(&b, "  - %s\n", u)
		}
	}
	fmt.Fprintf(&b, "svnlook:\n  path: %s\n", svnlookPath)
	fmt.Fprintf(&b, "authority:\n  url: %s\n  timeout: 5s\n", authorityURL)
	if tc.audit {
		fmt.Fprintf(&b, "audit:\n  enabled: true\n  database_url: file:%s\n", filepath.Join(tc.dir, "audit.db"))
	}

	path := filepath.Join(tc.dir, "xsvn.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// writeSvnlook installs a stand-in svnlook script that reports author and
// changed paths for any transaction.
func writeSvnlook(t *testing.T, dir, author, changed string) string {
	t.Helper()

	script := fmt.Sprintf(`#!/bin/sh
case "$1" in
author) printf '%%s\n' %s ;;
changed) printf '%%s' %s ;;
*) echo "unexpected subcommand $1" >&2; exit 1 ;;
esac
`, shellQuote(author), shellQuote(changed))

	path := filepath.Join(dir, "svnlook")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Failed to write svnlook script: %v", err)
	}
	return path
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
