// Package instance implements the instance lifecycle engine: the
// orchestration layer that sequences the layer manager (pkg/overlay) and
// the machine broker (pkg/machinebroker) into the create/mount/start/exec/
// stop/inspect/list/destroy/rollback operations a caller actually wants.
//
// The controller does not serialize concurrent calls against the same
// instance itself (SPEC_FULL.md §5); callers that need that guarantee hold
// a *workspace.Lock for the duration of a call.
package instance

import (
	"log/slog"

	"github.com/cthbleachbit/ciel-rs/pkg/machinebroker"
	"github.com/cthbleachbit/ciel-rs/pkg/overlay"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Controller is the instance lifecycle engine. It is safe for concurrent
// use by independent goroutines operating on different instances; two
// concurrent calls against the *same* instance name race exactly the way
// two separate ciel processes touching the same instance would.
type Controller struct {
	layers  overlay.Manager
	broker  *machinebroker.Broker
	log     *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New builds a Controller. log and tracer may be nil, in which case
// slog.Default() and a no-op tracer are used; metrics may be nil to disable
// metrics entirely, in which case instruments from a no-op meter are used.
func New(layers overlay.Manager, broker *machinebroker.Broker, log *slog.Logger, tracer trace.Tracer, metrics *Metrics) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	if metrics == nil {
		metrics, _ = NewMetrics(metricnoop.NewMeterProvider().Meter(""))
	}
	return &Controller{layers: layers, broker: broker, log: log, tracer: tracer, metrics: metrics}
}
