package machinebroker

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// IsBooted reports whether the process identified by pid (as seen from the
// host PID namespace) is an init process: its cmdline's first argument's
// basename is "systemd" or "init". Inspect uses it to tell a container
// whose process 1 is a full init from one running a plain command.
// Absence of the process file is not an error: the container may have just
// died between the caller reading its leader PID and this call, and that is
// reported as not-booted rather than propagated.
func IsBooted(pid int32) (bool, error) {
	raw, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("machinebroker: read cmdline for pid %d: %w", pid, err)
	}
	argv0, _, _ := bytes.Cut(raw, []byte{0})
	if len(argv0) == 0 {
		return false, nil
	}
	name := filepath.Base(string(argv0))
	return name == "systemd" || name == "init", nil
}
