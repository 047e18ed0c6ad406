// Package hook implements the Subversion pre-commit access check.
//
// A Controller runs one invocation: it validates its arguments, loads the
// configuration, resolves the committing user, lets allow-listed users
// through, and otherwise asks the policy authority about every changed path.
// Each outcome maps to a fixed process exit code (see exit.go).
package hook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emiliopalmerini/xsvn/internal/config"
	"github.com/emiliopalmerini/xsvn/internal/domain"
	"github.com/emiliopalmerini/xsvn/internal/ports"
)

const metricsFlushTimeout = 5 * time.Second

// Wiring builds the collaborators of a run from the loaded configuration.
// NewAuthority is only called for users outside the allow-list.
type Wiring struct {
	NewLogger    func(cfg *config.Config) (*slog.Logger, func() error, error)
	NewReader    func(cfg *config.Config, repoPath string) ports.TransactionReader
	NewAuthority func(cfg *config.Config) (ports.PolicyAuthority, error)
	NewDecisions func(ctx context.Context, cfg *config.Config) (ports.DecisionRepository, func() error, error)
	NewMetrics   func(ctx context.Context, cfg *config.Config) (ports.MetricsExporter, error)
}

type Controller struct {
	prog   string
	stderr io.Writer
	wiring Wiring
	now    func() time.Time
}

// NewController returns a controller that reports to stderr. prog is the
// command name shown in the usage text.
func NewController(prog string, stderr io.Writer, wiring Wiring) *Controller {
	return &Controller{
		prog:   prog,
		stderr: stderr,
		wiring: wiring,
		now:    time.Now,
	}
}

// Usage writes the invocation synopsis.
func (c *Controller) Usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <config file> REPO_PATH TX_NAME\n\n", c.prog)
}

// run carries the state of one invocation for auditing.
type run struct {
	cfg       *config.Config
	repoPath  string
	tx        string
	username  string
	itemCount int64
	reasons   []string
	started   time.Time
	logger    *slog.Logger
	decisions ports.DecisionRepository
	metrics   ports.MetricsExporter
}

// Run executes the hook for args = [config-file, repo-path, transaction] and
// returns the process exit code.
func (c *Controller) Run(ctx context.Context, args []string) int {
	if len(args) < 3 {
		c.Usage(c.stderr)
		return ExitUsage
	}
	configPath, repoPath, tx := args[0], args[1], args[2]

	if !config.Exists(configPath) {
		fmt.Fprint(c.stderr, "Error: failed to load configuration file.\n")
		return ExitConfig
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: failed to load configuration file: %v\n", err)
		return ExitConfig
	}

	if err := cfg.PrepareTempDir(); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return ExitConfig
	}

	logger, closeLog, err := c.wiring.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: setting up logging: %v\n", err)
		return ExitConfig
	}
	defer func() { _ = closeLog() }()

	r := &run{
		cfg:      cfg,
		repoPath: repoPath,
		tx:       tx,
		started:  c.now(),
		logger:   logger.With("repo_id", cfg.RepoID, "tx", tx),
	}
	closeDecisions := r.openSinks(ctx, c.wiring)
	defer closeDecisions()

	code := c.decide(ctx, r)
	r.record(ctx, code, c.now())
	return code
}

func (c *Controller) decide(ctx context.Context, r *run) int {
	reader := c.wiring.NewReader(r.cfg, r.repoPath)

	username, err := reader.Author(ctx, r.tx)
	if err != nil {
		return c.fail(r, err)
	}
	if username == "" {
		return c.fail(r, fmt.Errorf("%w: transaction %s has no author", domain.ErrBackendUnavailable, r.tx))
	}
	r.username = username
	r.logger = r.logger.With("user", username)

	// Privileged users skip policy evaluation entirely.
	if r.cfg.IsAllowedUser(username) {
		r.logger.Info("allow-listed user, skipping access check")
		return ExitAllowed
	}

	entries, err := reader.Changes(ctx, r.tx)
	if err != nil {
		return c.fail(r, err)
	}

	op, err := domain.BuildOperation(r.cfg.RepoID, username, entries)
	if err != nil {
		return c.fail(r, err)
	}
	r.itemCount = int64(len(op.Items))
	r.logger.Debug("checking write access", "paths", op.Paths())

	authority, err := c.wiring.NewAuthority(r.cfg)
	if err != nil {
		return c.fail(r, fmt.Errorf("%w: %v", domain.ErrAuthorityUnavailable, err))
	}

	verdict, err := NewGate(authority).Check(ctx, op)
	if err != nil {
		return c.fail(r, err)
	}

	if !verdict.Allowed {
		r.reasons = verdict.Reasons
		r.logger.Info("commit denied", "items", r.itemCount, "reasons", len(verdict.Reasons))
		c.writeReasons(verdict.Reasons)
		return ExitDenied
	}

	r.logger.Info("commit allowed", "items", r.itemCount)
	return ExitAllowed
}

func (c *Controller) fail(r *run, err error) int {
	r.reasons = []string{err.Error()}
	r.logger.Error("access check failed", "error", err)
	fmt.Fprintf(c.stderr, "Error: %v\n", err)
	return ExitCodeFor(err)
}

func (c *Controller) writeReasons(reasons []string) {
	if len(reasons) == 0 {
		reasons = []string{"Access denied."}
	}
	fmt.Fprint(c.stderr, strings.Join(reasons, "\n\n")+"\n\n")
}

// openSinks sets up the audit log and metrics. Neither may change the
// verdict, so failures only downgrade them to no-ops.
func (r *run) openSinks(ctx context.Context, w Wiring) func() {
	closeFn := func() error { return nil }

	if w.NewDecisions != nil {
		decisions, closeDecisions, err := w.NewDecisions(ctx, r.cfg)
		if err != nil {
			r.logger.Warn("audit log unavailable", "error", err)
		} else {
			r.decisions = decisions
			closeFn = closeDecisions
		}
	}

	if w.NewMetrics != nil {
		metrics, err := w.NewMetrics(ctx, r.cfg)
		if err != nil {
			r.logger.Warn("metrics exporter unavailable", "error", err)
		} else {
			r.metrics = metrics
		}
	}

	return func() {
		if err := closeFn(); err != nil {
			r.logger.Warn("closing audit log", "error", err)
		}
	}
}

func (r *run) record(ctx context.Context, code int, end time.Time) {
	outcome := outcomeFor(code, r.cfg.IsAllowedUser(r.username))
	duration := end.Sub(r.started)

	if r.decisions != nil {
		err := r.decisions.Create(ctx, &domain.Decision{
			RepositoryID: r.cfg.RepoID,
			RepoPath:     r.repoPath,
			Transaction:  r.tx,
			Username:     r.username,
			Outcome:      outcome,
			ItemCount:    r.itemCount,
			Reasons:      r.reasons,
			ExitCode:     code,
			DurationMs:   duration.Milliseconds(),
			DecidedAt:    end.UTC(),
		})
		if err != nil {
			r.logger.Warn("failed to record decision", "error", err)
		}
	}

	if r.metrics != nil {
		err := r.metrics.ExportDecision(ctx, &ports.DecisionMetrics{
			RepositoryID: r.cfg.RepoID,
			Outcome:      string(outcome),
			ExitCode:     code,
			ItemCount:    r.itemCount,
			Duration:     duration,
		})
		if err != nil {
			r.logger.Warn("failed to export metrics", "error", err)
		}

		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsFlushTimeout)
		defer cancel()
		if err := r.metrics.Close(flushCtx); err != nil {
			r.logger.Warn("failed to flush metrics", "error", err)
		}
	}
}

func outcomeFor(code int, allowlisted bool) domain.DecisionOutcome {
	switch {
	case code == ExitAllowed && allowlisted:
		return domain.OutcomeAllowlisted
	case code == ExitAllowed:
		return domain.OutcomeAllowed
	case code == ExitDenied:
		return domain.OutcomeDenied
	default:
		return domain.OutcomeError
	}
}
