package cli

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestHookScript(t *testing.T) {
	stdout, _, err := execute(t, "hook-script", "--binary", "/usr/local/bin/xsvn", "/etc/xsvn/project.yaml")
	if err != nil {
		t.Fatalf("hook-script failed: %v", err)
	}

	expected := "#!/bin/sh\n" +
		"# Subversion pre-commit hook: generated by \"xsvn hook-script\".\n" +
		"# Arguments: $1 repository path, $2 transaction name.\n" +
		"exec '/usr/local/bin/xsvn' pre-commit '/etc/xsvn/project.yaml' \"$1\" \"$2\"\n"
	assertEqual(t, "script", expected, stdout)
}

func TestHookScript_RelativeConfigBecomesAbsolute(t *testing.T) {
	stdout, _, err := execute(t, "hook-script", "--binary", "xsvn", "project.yaml")
	if err != nil {
		t.Fatalf("hook-script failed: %v", err)
	}

	abs, _ := filepath.Abs("project.yaml")
	if !strings.Contains(stdout, shellQuote(abs)) {
		t.Errorf("expected absolute config path %s in script:\n%s", abs, stdout)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
	}

	for _, tt := range tests {
		assertEqual(t, tt.in, tt.want, shellQuote(tt.in))
	}
}

func TestMigrate_UpAndDown(t *testing.T) {
	cfg := writeConfig(t, testConfig{dir: t.TempDir(), audit: true})

	stdout, _, err := execute(t, "migrate", cfg)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(stdout, "Current version: 0") || !strings.Contains(stdout, "Migrated to version 1") {
		t.Errorf("unexpected migrate output:\n%s", stdout)
	}

	stdout, _, err = execute(t, "migrate", cfg)
	if err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
	if !strings.Contains(stdout, "Already at target version") {
		t.Errorf("expected no-op migrate, got:\n%s", stdout)
	}

	stdout, _, err = execute(t, "migrate", cfg, "0")
	if err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if !strings.Contains(stdout, "down 1_decisions") {
		t.Errorf("expected down migration, got:\n%s", stdout)
	}
}

func TestMigrate_InvalidVersion(t *testing.T) {
	cfg := writeConfig(t, testConfig{dir: t.TempDir(), audit: true})

	_, _, err := execute(t, "migrate", cfg, "latest")
	if err == nil || !strings.Contains(err.Error(), "invalid version number") {
		t.Errorf("expected invalid version error, got %v", err)
	}
}

func TestAuditCommands_RequireAuditEnabled(t *testing.T) {
	cfg := writeConfig(t, testConfig{dir: t.TempDir()})

	for _, args := range [][]string{
		{"audit", "list", cfg},
		{"migrate", cfg},
	} {
		_, _, err := execute(t, args...)
		if !errors.Is(err, errAuditDisabled) {
			t.Errorf("%v: expected errAuditDisabled, got %v", args, err)
		}
	}
}

func TestAuditList_Empty(t *testing.T) {
	cfg := writeConfig(t, testConfig{dir: t.TempDir(), audit: true})

	stdout, _, err := execute(t, "audit", "list", cfg, "--user", "nobody")
	if err != nil {
		t.Fatalf("audit list failed: %v", err)
	}
	assertEqual(t, "stdout", "No decisions found\n", stdout)
}

func TestFirstLine(t *testing.T) {
	assertEqual(t, "multi-line", "first", firstLine("first\nsecond"))
	long := strings.Repeat("x", 80)
	assertEqual(t, "truncated length", 60, len(firstLine(long)))
}
