package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/emiliopalmerini/xsvn/internal/adapters/authority"
	"github.com/emiliopalmerini/xsvn/internal/adapters/otel"
	"github.com/emiliopalmerini/xsvn/internal/adapters/svnlook"
	"github.com/emiliopalmerini/xsvn/internal/adapters/turso"
	"github.com/emiliopalmerini/xsvn/internal/config"
	"github.com/emiliopalmerini/xsvn/internal/hook"
	"github.com/emiliopalmerini/xsvn/internal/logging"
	"github.com/emiliopalmerini/xsvn/internal/ports"
)

// hookWiring connects the hook controller to the production adapters.
func hookWiring() hook.Wiring {
	return hook.Wiring{
		NewLogger: func(cfg *config.Config) (*slog.Logger, func() error, error) {
			// The committer sees stderr, so logs only ever go to the log file.
			return logging.New(cfg.Log, io.Discard)
		},
		NewReader: func(cfg *config.Config, repoPath string) ports.TransactionReader {
			return svnlook.NewReader(repoPath, svnlook.Config{
				Binary:   cfg.Svnlook.Path,
				CopyInfo: cfg.Svnlook.CopyInfo,
			}, nil)
		},
		NewAuthority: newAuthority,
		NewDecisions: openDecisions,
		NewMetrics:   newMetrics,
	}
}

func newAuthority(cfg *config.Config) (ports.PolicyAuthority, error) {
	client, err := authority.NewClient(authority.Config{
		URL:     cfg.Authority.URL,
		Token:   cfg.Authority.Token,
		Timeout: cfg.Authority.Timeout.Duration,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func openDecisions(ctx context.Context, cfg *config.Config) (ports.DecisionRepository, func() error, error) {
	if !cfg.Audit.Enabled {
		return turso.NewNoOpDecisionRepository(), func() error { return nil }, nil
	}

	db, err := turso.NewDB(ctx, auditDBConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return turso.NewDecisionRepository(db.DB), db.Close, nil
}

func newMetrics(ctx context.Context, cfg *config.Config) (ports.MetricsExporter, error) {
	if !cfg.Telemetry.Enabled {
		return otel.NewNoOpExporter(), nil
	}

	exporter, err := otel.NewExporter(ctx, otel.Config{
		Endpoint: cfg.Telemetry.Endpoint,
		Enabled:  cfg.Telemetry.Enabled,
		Insecure: cfg.Telemetry.Insecure,
	})
	if err != nil {
		return nil, err
	}
	return exporter, nil
}

func auditDBConfig(cfg *config.Config) turso.Config {
	return turso.Config{
		URL:       cfg.Audit.DatabaseURL,
		AuthToken: cfg.Audit.AuthToken,
	}
}
