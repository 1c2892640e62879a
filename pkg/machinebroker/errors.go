package machinebroker

import (
	"errors"
	"fmt"
)

// ErrNoSuchMachine is returned when the host init system has no machine
// object for a given namespace name. It is mapped from the bus error name
// org.freedesktop.machine1.NoSuchMachine.
var ErrNoSuchMachine = errors.New("machinebroker: no such machine")

// ErrReadinessTimeout is returned by AwaitReady when the bounded retry loop
// is exhausted without the container's private bus becoming reachable.
var ErrReadinessTimeout = errors.New("machinebroker: timed out waiting for container to become ready")

// ErrTerminationFailed is the fatal error Terminate returns when a
// container is still present after both the graceful (poweroff) and
// forceful (SIGKILL + Terminate) paths have been exhausted.
var ErrTerminationFailed = errors.New("machinebroker: failed to terminate container; check kernel logs (dmesg/journalctl)")

// NspawnExitedEarlyError is returned by AwaitReady when the spawned
// nspawn child process exits before the container becomes ready.
type NspawnExitedEarlyError struct {
	// ExitCode is the child's exit code, or -1 if it was signal-killed.
	ExitCode int
}

func (e *NspawnExitedEarlyError) Error() string {
	return fmt.Sprintf("machinebroker: nspawn exited early (status %d)", e.ExitCode)
}
