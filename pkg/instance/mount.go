package instance

import (
	"context"
	"fmt"

	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
)

// Mount ensures the instance's overlay is composed at its merged mount
// point. Idempotent: calling it on an already-mounted instance is a no-op.
func (c *Controller) Mount(ctx context.Context, ws *workspace.Workspace, name string) error {
	var span trace.Span
	ctx, span = c.tracer.Start(ctx, "Mount")
	defer span.End()

	if !created(ws, name) {
		return fmt.Errorf("%w: %s", ErrNotExists, name)
	}

	layers := layersFor(ws, name)
	if err := c.layers.Mount(layers); err != nil {
		return fmt.Errorf("instance: mount %s: %w", name, err)
	}
	c.log.DebugContext(ctx, "instance mounted", "instance", name)
	return nil
}
