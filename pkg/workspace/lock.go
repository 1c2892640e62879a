package workspace

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock is a held flock(2) on the workspace root. Operations on the core do
// not serialize themselves (SPEC_FULL.md §5); callers that need to
// serialize concurrent invocations across separate processes acquire this
// lock for the duration of an instance operation, analogous to the
// per-instance in-process sync.Map of locks the teacher uses to guard
// concurrent manager calls, but scoped to flock since our callers are
// separate OS processes rather than goroutines in one daemon.
type Lock struct {
	file *os.File
}

// Lock acquires an exclusive, blocking flock on the workspace root. The
// returned Lock must be released with Unlock.
func (w *Workspace) Lock() (*Lock, error) {
	f, err := os.OpenFile(w.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("workspace: open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("workspace: flock: %w", err)
	}
	return &Lock{file: f}, nil
}

// Unlock releases the lock and closes the underlying file descriptor.
func (l *Lock) Unlock() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("workspace: unflock: %w", err)
	}
	return l.file.Close()
}
