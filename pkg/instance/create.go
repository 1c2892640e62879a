package instance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cthbleachbit/ciel-rs/pkg/overlay"
	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
	"gvisor.dev/gvisor/pkg/cleanup"
)

// Create materializes an instance's upper/work/merged directories. The
// shared lower layer must already exist; Create never touches it.
func (c *Controller) Create(ctx context.Context, ws *workspace.Workspace, name string) (err error) {
	start := time.Now()
	defer func() { c.metrics.recordDuration(ctx, c.metrics.createDuration, start, statusOf(err)) }()
	defer func() { c.metrics.recordOperation(ctx, "create", statusOf(err)) }()

	var span trace.Span
	ctx, span = c.tracer.Start(ctx, "Create")
	defer span.End()

	layers := layersFor(ws, name)

	if _, statErr := os.Stat(layers.Lower); statErr != nil {
		return fmt.Errorf("instance: create %s: lower layer missing: %w", name, statErr)
	}

	mounted, mountErr := c.layers.IsMounted(layers.Merged)
	if mountErr != nil {
		return fmt.Errorf("instance: create %s: %w", name, mountErr)
	}
	if mounted {
		return fmt.Errorf("%w: %s (already mounted)", ErrAlreadyExists, name)
	}
	if dirNonEmpty(layers.Upper) || dirNonEmpty(layers.Merged) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	cu := cleanup.Make(func() {
		c.log.WarnContext(ctx, "cleaning up partially created instance", "instance", name)
		os.RemoveAll(layers.Upper)
		os.RemoveAll(layers.Work)
		os.RemoveAll(layers.Merged)
	})
	defer cu.Clean()

	for _, dir := range []string{layers.Upper, layers.Work, layers.Merged} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("instance: create %s: %w", name, err)
		}
	}

	cu.Release()
	c.log.InfoContext(ctx, "instance created", "instance", name)
	return nil
}

func dirNonEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	return len(entries) > 0
}

// created reports whether Create has ever materialized this instance's
// directory tree. This persists across Rollback (which only clears Upper
// and Work), so it is the right check for "does this instance exist at
// all" as distinct from "is its overlay currently mounted."
func created(ws *workspace.Workspace, name string) bool {
	_, err := os.Stat(ws.InstanceDir(name))
	return err == nil
}

// layersFor resolves the four sibling overlay directories for a named
// instance under ws.
func layersFor(ws *workspace.Workspace, name string) overlay.Layers {
	root := ws.InstanceDir(name)
	return overlay.Layers{
		Lower:  ws.LowerDir(),
		Upper:  filepath.Join(root, "upper"),
		Work:   filepath.Join(root, "work"),
		Merged: filepath.Join(root, "merged"),
	}
}
