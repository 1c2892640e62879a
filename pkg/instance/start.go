package instance

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cthbleachbit/ciel-rs/pkg/nsname"
	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
)

// baseNspawnArgs are the fixed systemd-nspawn options every instance is
// spawned with, regardless of caller-supplied extras: a boot into the
// container's own init (-b), quiet output (-q), the one capability ciel's
// build tooling has always needed (CAP_IPC_LOCK, which permits locking
// memory with mlock(2)), and a syscall filter entry that permits
// swapcontext, which nspawn's default seccomp profile otherwise blocks.
var baseNspawnArgs = []string{
	"-qb",
	"--capability=CAP_IPC_LOCK",
	"--system-call-filter=swapcontext",
}

// Start ensures the instance is mounted, spawns it via systemd-nspawn,
// waits for its bus to become reachable, and then installs the requested
// bind mounts best-effort. Ordering is load-bearing: mount, then spawn,
// then wait-ready, then bind-mount. Reordering breaks the readiness
// protocol or hands the container bind mounts it can't yet see.
func (c *Controller) Start(ctx context.Context, ws *workspace.Workspace, name string, extraOpts []string, mounts []BindMountSpec) (err error) {
	start := time.Now()
	defer func() { c.metrics.recordDuration(ctx, c.metrics.startDuration, start, statusOf(err)) }()
	defer func() { c.metrics.recordOperation(ctx, "start", statusOf(err)) }()

	var span trace.Span
	ctx, span = c.tracer.Start(ctx, "Start")
	defer span.End()

	if err := c.Mount(ctx, ws, name); err != nil {
		return err
	}

	ns, err := nsname.Derive(ws.AbsPath(), name, ws.Layout())
	if err != nil {
		return fmt.Errorf("instance: start %s: %w", name, err)
	}

	layers := layersFor(ws, name)
	args := append(append([]string{}, baseNspawnArgs...), "-D", layers.Merged, "-M", ns)
	args = append(args, extraOpts...)

	cmd := exec.CommandContext(ctx, "systemd-nspawn", args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Env = append(os.Environ(), "SYSTEMD_NSPAWN_TMPFS_TMP=0")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("instance: start %s: spawn systemd-nspawn: %w", name, err)
	}
	exited := waitForExit(cmd)

	readinessStart := time.Now()
	err = c.broker.AwaitReady(ctx, exited, ns, 0)
	c.metrics.recordDuration(ctx, c.metrics.readinessWaitSecs, readinessStart, statusOf(err))
	if err != nil {
		return fmt.Errorf("instance: start %s: %w", name, err)
	}

	for _, spec := range mounts {
		if bindErr := c.installBindMount(ctx, ns, spec); bindErr != nil {
			c.log.WarnContext(ctx, "bind mount setup failed, continuing without it",
				"instance", name, "host_path", spec.HostPath, "container_path", spec.ContainerPath, "error", bindErr)
		}
	}

	c.log.InfoContext(ctx, "instance started", "instance", name, "ns_name", ns)
	return nil
}

// installBindMount canonicalizes hostPath and asks the broker to set up
// the cross-namespace bind mount. Per SPEC_FULL.md §4.3 this failure is
// non-fatal to Start: the caller only gets a warning log, never an error.
func (c *Controller) installBindMount(ctx context.Context, ns string, spec BindMountSpec) error {
	if err := os.MkdirAll(spec.HostPath, 0o755); err != nil {
		return fmt.Errorf("mkdir host path: %w", err)
	}
	abs, err := filepath.Abs(spec.HostPath)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fmt.Errorf("resolve symlinks: %w", err)
	}
	return c.broker.BindMount(ctx, ns, resolved, spec.ContainerPath, spec.ReadOnly, true)
}
