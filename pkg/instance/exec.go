package instance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/cthbleachbit/ciel-rs/pkg/nsname"
	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
)

// exitCodeSignalKilled is returned when the in-container command could not
// report a real exit status, e.g. because it was signal-killed or
// systemd-run itself could not be run.
const exitCodeSignalKilled = 127

// Exec runs argv inside a started instance via an attached, PTY-backed
// transient unit, and returns its exit code. The instance must already be
// started; Exec does not spawn or mount anything itself.
func (c *Controller) Exec(ctx context.Context, ws *workspace.Workspace, name string, argv []string) (int, error) {
	var span trace.Span
	ctx, span = c.tracer.Start(ctx, "Exec")
	defer span.End()

	if !created(ws, name) {
		return exitCodeSignalKilled, fmt.Errorf("%w: %s", ErrNotExists, name)
	}

	ns, err := nsname.Derive(ws.AbsPath(), name, ws.Layout())
	if err != nil {
		return exitCodeSignalKilled, fmt.Errorf("instance: exec %s: %w", name, err)
	}

	args := []string{"--machine", ns, "--quiet", "--pty", "--setenv=HOME=/root"}
	if os.Getenv("CIEL_STAGE2") != "" {
		args = append(args, "--setenv=ABSTAGE2=1")
	}
	args = append(args, "--")
	args = append(args, argv...)

	cmd := exec.CommandContext(ctx, "systemd-run", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	runErr := cmd.Run()
	if runErr == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if exitErr.ExitCode() >= 0 {
			return exitErr.ExitCode(), nil
		}
	}

	c.log.WarnContext(ctx, "exec could not determine exit status, reporting signal-killed",
		"instance", name, "error", runErr)
	return exitCodeSignalKilled, nil
}
