package instance

import (
	"context"
	"fmt"
	"time"

	"github.com/cthbleachbit/ciel-rs/pkg/nsname"
	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
)

// Stop runs the graceful-then-forceful termination protocol against a
// started instance. It is a no-op (not an error) if the instance was never
// started.
func (c *Controller) Stop(ctx context.Context, ws *workspace.Workspace, name string) (err error) {
	start := time.Now()
	defer func() { c.metrics.recordDuration(ctx, c.metrics.stopDuration, start, statusOf(err)) }()
	defer func() { c.metrics.recordOperation(ctx, "stop", statusOf(err)) }()

	var span trace.Span
	ctx, span = c.tracer.Start(ctx, "Stop")
	defer span.End()

	ns, err := nsname.Derive(ws.AbsPath(), name, ws.Layout())
	if err != nil {
		return fmt.Errorf("instance: stop %s: %w", name, err)
	}

	if err := c.broker.Terminate(ctx, ns); err != nil {
		return fmt.Errorf("instance: stop %s: %w", name, err)
	}
	c.log.InfoContext(ctx, "instance stopped", "instance", name)
	return nil
}
