package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LimiterMetrics records admission waits and completion outcomes for the
// rate limiter. It implements ratelimit.MetricsSink.
type LimiterMetrics struct {
	wait        metric.Float64Histogram
	admissions  metric.Int64Counter
	completions metric.Int64Counter
}

// NewLimiterMetrics creates the limiter instrumentation on the global meter
// provider. Call after Setup so the measurements reach the Prometheus
// exporter.
func NewLimiterMetrics() (*LimiterMetrics, error) {
	meter := otel.Meter("kord/ratelimit")

	wait, err := meter.Float64Histogram(
		"ratelimit.admission.wait",
		metric.WithDescription("Time callers spent waiting for admission in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	admissions, err := meter.Int64Counter(
		"ratelimit.admissions",
		metric.WithDescription("Number of admission attempts by outcome"),
		metric.WithUnit("{admission}"),
	)
	if err != nil {
		return nil, err
	}

	completions, err := meter.Int64Counter(
		"ratelimit.completions",
		metric.WithDescription("Number of completed calls by outcome kind"),
		metric.WithUnit("{completion}"),
	)
	if err != nil {
		return nil, err
	}

	return &LimiterMetrics{
		wait:        wait,
		admissions:  admissions,
		completions: completions,
	}, nil
}

// ObserveAdmission records one admission attempt and how long it waited.
func (m *LimiterMetrics) ObserveAdmission(wait time.Duration, outcome string) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.wait.Record(context.Background(), wait.Seconds(), attrs)
	m.admissions.Add(context.Background(), 1, attrs)
}

// ObserveCompletion records the outcome kind one completed call reported.
func (m *LimiterMetrics) ObserveCompletion(kind string) {
	m.completions.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("kind", kind)))
}
