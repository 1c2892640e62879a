package instance

import (
	"context"
	"fmt"

	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
)

// Rollback discards an instance's writable diff, restoring it to exactly
// the shared lower layer. The instance must not be mounted; Rollback
// returns overlay.ErrMounted (wrapped) if it is.
func (c *Controller) Rollback(ctx context.Context, ws *workspace.Workspace, name string) error {
	var span trace.Span
	ctx, span = c.tracer.Start(ctx, "Rollback")
	defer span.End()

	layers := layersFor(ws, name)
	if err := c.layers.Rollback(layers); err != nil {
		return fmt.Errorf("instance: rollback %s: %w", name, err)
	}
	c.log.InfoContext(ctx, "instance rolled back", "instance", name)
	return nil
}
