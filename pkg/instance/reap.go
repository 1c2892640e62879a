package instance

import (
	"os/exec"

	"github.com/cthbleachbit/ciel-rs/pkg/machinebroker"
)

// waitForExit launches a goroutine that blocks on cmd.Wait() and delivers
// exactly one ExitNotice on the returned channel. cmd.Wait() may only be
// called once and blocks until the child exits, so this is the idiomatic
// way to let Start poll "has my nspawn child exited yet?" without itself
// blocking on Wait: AwaitReady's select loop treats the channel as a
// non-blocking signal, read opportunistically between readiness probes.
// This is ciel's analogue of a reaper goroutine: it is the only thing that
// ever calls Wait on a spawned nspawn child, so no zombie accumulates
// regardless of how AwaitReady's own loop behaves.
func waitForExit(cmd *exec.Cmd) <-chan machinebroker.ExitNotice {
	out := make(chan machinebroker.ExitNotice, 1)
	go func() {
		err := cmd.Wait()
		code := 0
		if err != nil {
			code = -1
			if exitErr, ok := err.(*exec.ExitError); ok {
				code = exitErr.ExitCode()
			}
		}
		out <- machinebroker.ExitNotice{ExitCode: code}
		close(out)
	}()
	return out
}
