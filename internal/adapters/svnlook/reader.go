// Package svnlook reads pending commit transactions through the svnlook CLI.
// Every subcommand targets one transaction of one repository with
// "svnlook <subcommand> -t <tx> <repo>".
package svnlook

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/emiliopalmerini/xsvn/internal/domain"
)

const defaultBinary = "svnlook"

// Runner executes the inspection tool and returns its stdout. Stderr is
// folded into the returned error.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// ExecRunner runs the tool as a child process.
func ExecRunner(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, name, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w (stderr: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

type Config struct {
	// Binary is the svnlook executable; defaults to "svnlook" on PATH.
	Binary string
	// CopyInfo asks svnlook for copy history so added items carry their source.
	CopyInfo bool
}

// Reader implements ports.TransactionReader for one repository.
type Reader struct {
	repoPath string
	cfg      Config
	run      Runner
}

// NewReader returns a Reader for the repository at repoPath. A nil runner
// uses ExecRunner.
func NewReader(repoPath string, cfg Config, run Runner) *Reader {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if run == nil {
		run = ExecRunner
	}
	return &Reader{repoPath: repoPath, cfg: cfg, run: run}
}

func (r *Reader) Author(ctx context.Context, tx string) (string, error) {
	out, err := r.run(ctx, r.cfg.Binary, "author", "-t", tx, r.repoPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading author of %s: %v", domain.ErrBackendUnavailable, tx, err)
	}
	return strings.TrimSpace(out), nil
}

func (r *Reader) Changes(ctx context.Context, tx string) ([]domain.ChangeEntry, error) {
	args := []string{"changed"}
	if r.cfg.CopyInfo {
		args = append(args, "--copy-info")
	}
	args = append(args, "-t", tx, r.repoPath)

	out, err := r.run(ctx, r.cfg.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing changes of %s: %v", domain.ErrBackendUnavailable, tx, err)
	}

	entries, err := ParseChanged(out, r.cfg.CopyInfo)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", tx, err)
	}
	return entries, nil
}
