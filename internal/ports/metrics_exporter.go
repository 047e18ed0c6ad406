package ports

import (
	"context"
	"time"
)

// MetricsExporter exports hook decision metrics to an external observability system.
type MetricsExporter interface {
	// ExportDecision records the outcome of one hook invocation.
	ExportDecision(ctx context.Context, m *DecisionMetrics) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// DecisionMetrics describes one hook invocation.
type DecisionMetrics struct {
	RepositoryID string
	Outcome      string
	ExitCode     int
	ItemCount    int64
	Duration     time.Duration
}
