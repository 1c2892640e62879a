package instance

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments the controller records against. A nil
// *Metrics disables recording everywhere it's threaded through — every
// record* helper below checks for that first.
type Metrics struct {
	createDuration    metric.Float64Histogram
	startDuration     metric.Float64Histogram
	stopDuration      metric.Float64Histogram
	readinessWaitSecs metric.Float64Histogram
	operationsTotal   metric.Int64Counter
}

// NewMetrics registers the instance lifecycle's instruments against meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	createDuration, err := meter.Float64Histogram(
		"ciel_instance_create_duration_seconds",
		metric.WithDescription("Time to materialize an instance's overlay layers"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	startDuration, err := meter.Float64Histogram(
		"ciel_instance_start_duration_seconds",
		metric.WithDescription("Time to spawn and await readiness of an instance"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	stopDuration, err := meter.Float64Histogram(
		"ciel_instance_stop_duration_seconds",
		metric.WithDescription("Time to terminate an instance, graceful or forceful"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	readinessWaitSecs, err := meter.Float64Histogram(
		"ciel_instance_readiness_wait_seconds",
		metric.WithDescription("Time spent polling for container bus readiness"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	operationsTotal, err := meter.Int64Counter(
		"ciel_instance_operations_total",
		metric.WithDescription("Count of instance lifecycle operations by name and outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		createDuration:    createDuration,
		startDuration:     startDuration,
		stopDuration:      stopDuration,
		readinessWaitSecs: readinessWaitSecs,
		operationsTotal:   operationsTotal,
	}, nil
}

func (m *Metrics) recordDuration(ctx context.Context, h metric.Float64Histogram, start time.Time, status string) {
	if m == nil {
		return
	}
	h.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) recordOperation(ctx context.Context, op, status string) {
	if m == nil {
		return
	}
	m.operationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
	))
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
