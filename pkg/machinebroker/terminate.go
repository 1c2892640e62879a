package machinebroker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

// pollInterval and pollRetries govern both the graceful and forceful
// disappearance polls of Terminate: once a second, ten times, matching the
// teacher's termination protocol.
const (
	pollInterval = time.Second
	pollRetries  = 10
)

// Terminate stops the named machine, first gracefully and then forcefully.
// It never blocks on the container's own shutdown sequencer: poweroff is
// requested as a non-blocking transient unit so a hung container cannot
// wedge the caller.
//
// If the container has not disappeared ~pollRetries seconds after the
// graceful request, Terminate escalates to SIGKILL of every process in the
// machine's cgroup followed by an explicit machine1 Terminate call, then
// polls again. ErrTerminationFailed is returned only if the machine
// object is still present after both phases; it is a fatal condition the
// caller should surface rather than retry.
func (b *Broker) Terminate(ctx context.Context, nsName string) error {
	requestPoweroff(ctx, nsName)
	if b.awaitGone(ctx, nsName, pollRetries) {
		return nil
	}
	slog.Default().WarnContext(ctx, "graceful poweroff did not complete, escalating to SIGKILL", "machine", nsName)

	m, err := b.GetMachine(ctx, nsName)
	if err != nil {
		if errors.Is(err, ErrNoSuchMachine) {
			return nil
		}
		return fmt.Errorf("machinebroker: terminate %s: %w", nsName, err)
	}
	_ = m.Kill(ctx, "all", int32(unix.SIGKILL))
	_ = m.Terminate(ctx)

	if b.awaitGone(ctx, nsName, pollRetries) {
		return nil
	}
	return ErrTerminationFailed
}

// requestPoweroff asks the container's own init to shut down, via a
// transient unit run inside the machine so the call returns immediately
// regardless of how long the container takes to actually stop.
func requestPoweroff(ctx context.Context, nsName string) {
	cmd := exec.CommandContext(ctx, "systemd-run",
		"--machine", nsName,
		"--quiet",
		"--no-block",
		"--",
		"poweroff")
	_ = cmd.Run()
}

// awaitGone polls GetMachine once a second for up to retries seconds
// (retries+1 checks, the last one after the final wait) and reports
// whether the machine object disappeared.
func (b *Broker) awaitGone(ctx context.Context, nsName string, retries int) bool {
	for i := 0; i < retries; i++ {
		if _, err := b.GetMachine(ctx, nsName); errors.Is(err, ErrNoSuchMachine) {
			return true
		}
		timer := time.NewTimer(pollInterval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return false
		}
	}
	_, err := b.GetMachine(ctx, nsName)
	return errors.Is(err, ErrNoSuchMachine)
}
