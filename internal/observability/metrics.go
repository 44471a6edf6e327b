// Package observability provides OpenTelemetry metrics for the automation
// workflows, exposed in Prometheus format on the serve surface.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes the OpenTelemetry metrics provider with a
// Prometheus exporter. It returns the HTTP handler for the /metrics endpoint
// and a shutdown function to call on application exit.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// Metrics holds the automation counters.
type Metrics struct {
	workflowRuns     metric.Int64Counter
	downloadAttempts metric.Int64Counter
}

// NewMetrics registers the counters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("portalsync")

	runs, err := meter.Int64Counter("portalsync_workflow_runs_total",
		metric.WithDescription("Completed workflow runs by workflow and outcome."))
	if err != nil {
		return nil, err
	}
	attempts, err := meter.Int64Counter("portalsync_download_attempts_total",
		metric.WithDescription("Sales report download attempts."))
	if err != nil {
		return nil, err
	}
	return &Metrics{workflowRuns: runs, downloadAttempts: attempts}, nil
}

// RecordRun counts one finished workflow run.
func (m *Metrics) RecordRun(ctx context.Context, workflow string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.workflowRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("workflow", workflow),
		attribute.String("outcome", outcome),
	))
}

// RecordDownloadAttempt counts one sales download attempt.
func (m *Metrics) RecordDownloadAttempt(ctx context.Context) {
	m.downloadAttempts.Add(ctx, 1)
}
