package instance

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cthbleachbit/ciel-rs/pkg/overlay"
	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
)

// Destroy ensures the instance is stopped, unmounts its overlay, and
// removes its upper/work/merged directories. The shared lower layer is
// never touched. ErrBusy is returned (and nothing is removed) if the
// instance could not be stopped or its mount point is busy; any other
// unmount failure is returned wrapped, also before anything is removed.
func (c *Controller) Destroy(ctx context.Context, ws *workspace.Workspace, name string) error {
	var span trace.Span
	ctx, span = c.tracer.Start(ctx, "Destroy")
	defer span.End()

	if err := c.Stop(ctx, ws, name); err != nil {
		return fmt.Errorf("%w: could not stop %s before destroy: %v", ErrBusy, name, err)
	}

	layers := layersFor(ws, name)
	if err := c.layers.Unmount(layers.Merged); err != nil {
		if errors.Is(err, overlay.ErrBusy) {
			return fmt.Errorf("%w: %s", ErrBusy, name)
		}
		return fmt.Errorf("instance: destroy %s: %w", name, err)
	}

	for _, dir := range []string{layers.Upper, layers.Work, layers.Merged} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("instance: destroy %s: remove %s: %w", name, dir, err)
		}
	}

	c.metrics.recordOperation(ctx, "destroy", "ok")
	c.log.InfoContext(ctx, "instance destroyed", "instance", name)
	return nil
}
