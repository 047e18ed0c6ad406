package otel

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/xsvn/internal/ports"
)

const (
	serviceName    = "xsvn"
	serviceVersion = "1.0.0"
)

// Exporter exports hook decision metrics to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	decisionTotal metric.Int64Counter
	durationHist  metric.Float64Histogram
	itemsHist     metric.Int64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	// The hook exits right after one decision; Close flushes the reader.
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	decisionTotal, err := meter.Int64Counter(
		"xsvn_commit_decisions_total",
		metric.WithDescription("Pre-commit hook decisions by outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decisions counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"xsvn_decision_duration_seconds",
		metric.WithDescription("Time spent deciding a commit"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	itemsHist, err := meter.Int64Histogram(
		"xsvn_commit_items",
		metric.WithDescription("Number of changed paths per checked commit"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating items histogram: %w", err)
	}

	return &Exporter{
		provider:      provider,
		decisionTotal: decisionTotal,
		durationHist:  durationHist,
		itemsHist:     itemsHist,
	}, nil
}

// ExportDecision records the outcome of one hook invocation.
func (e *Exporter) ExportDecision(ctx context.Context, m *ports.DecisionMetrics) error {
	opt := metric.WithAttributes(
		attribute.String("repo_id", m.RepositoryID),
		attribute.String("outcome", m.Outcome),
		attribute.String("exit_code", strconv.Itoa(m.ExitCode)),
	)

	e.decisionTotal.Add(ctx, 1, opt)
	e.durationHist.Record(ctx, m.Duration.Seconds(), opt)
	e.itemsHist.Record(ctx, m.ItemCount, opt)

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
