package machinebroker

import (
	"os"
	"strconv"
	"testing"
)

func TestIsBootedSelf(t *testing.T) {
	// The test binary itself is not an init process.
	booted, err := IsBooted(int32(os.Getpid()))
	if err != nil {
		t.Fatal(err)
	}
	if booted {
		t.Fatal("IsBooted(test process) = true, want false")
	}
}

func TestIsBootedNoSuchProcess(t *testing.T) {
	// A PID that (almost certainly) never exists: absence of the cmdline
	// file means not-booted, not an error — the container may have just
	// died.
	const improbable = 1 << 30
	if _, err := os.Stat("/proc/" + strconv.Itoa(improbable)); err == nil {
		t.Skip("pid unexpectedly exists")
	}
	booted, err := IsBooted(improbable)
	if err != nil {
		t.Fatalf("IsBooted() = %v error, want nil for a vanished process", err)
	}
	if booted {
		t.Fatal("IsBooted(nonexistent pid) = true, want false")
	}
}
