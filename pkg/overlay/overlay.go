// Package overlay composes and decomposes an instance's root filesystem as
// an overlay mount with a fixed lower/upper/work/merged layout. It is the
// layer manager described in the ciel instance lifecycle design: the
// instance controller depends only on this package's Manager interface,
// never on a concrete backend.
package overlay

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fsType is the filesystem type string the kernel reports for an overlay
// mount in /proc/self/mountinfo. Detection matches on this string, never on
// the presence of child files under the mount point.
const fsType = "overlay"

var (
	// ErrAlreadyMountedDifferent is returned by Mount when target already
	// has an overlay mounted whose lower/upper/work do not match the
	// requested layers.
	ErrAlreadyMountedDifferent = errors.New("overlay: already mounted with different layers")
	// ErrMissingLayer is returned by Mount when a required layer directory
	// does not exist.
	ErrMissingLayer = errors.New("overlay: required layer directory is missing")
	// ErrBusy is returned by Unmount when the kernel reports the mount
	// point is busy.
	ErrBusy = errors.New("overlay: mount point is busy")
	// ErrMounted is returned by Rollback when the target is still mounted;
	// rollback requires the overlay to have been unmounted first.
	ErrMounted = errors.New("overlay: cannot roll back a mounted instance")
)

// Layers names the four sibling directories that make up one instance's
// overlay: the shared read-only buildkit (Lower), the instance's private
// writable diff (Upper), overlay bookkeeping (Work), and the mount target
// (Merged).
type Layers struct {
	Lower  string
	Upper  string
	Work   string
	Merged string
}

// Manager is the abstract layer-manager capability the instance controller
// depends on. Implementations may back it with any host overlay facility;
// Linux provides the only implementation this module ships.
type Manager interface {
	// IsMounted reports whether an overlay filesystem is currently mounted
	// at target.
	IsMounted(target string) (bool, error)
	// Mount composes the overlay described by layers at layers.Merged. It
	// is idempotent when an identical overlay is already mounted there.
	Mount(layers Layers) error
	// Unmount tears down the overlay at target. It is idempotent when
	// nothing is mounted there.
	Unmount(target string) error
	// Rollback discards Upper and Work. The caller must ensure Merged is
	// not mounted.
	Rollback(layers Layers) error
}

// linuxManager implements Manager using the kernel's overlay(8) filesystem.
type linuxManager struct{}

// New returns the Linux overlay(8)-backed layer manager.
func New() Manager {
	return linuxManager{}
}

func (linuxManager) IsMounted(target string) (bool, error) {
	entry, err := findMount(target)
	if err != nil {
		return false, fmt.Errorf("overlay: read mount table: %w", err)
	}
	return entry != nil && entry.fsType == fsType, nil
}

func (m linuxManager) Mount(layers Layers) error {
	for _, dir := range []string{layers.Lower, layers.Upper, layers.Work} {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMissingLayer, dir, err)
		}
	}

	entry, err := findMount(layers.Merged)
	if err != nil {
		return fmt.Errorf("overlay: read mount table: %w", err)
	}
	if entry != nil {
		if entry.fsType != fsType {
			return fmt.Errorf("%w: %s is mounted with fstype %q", ErrAlreadyMountedDifferent, layers.Merged, entry.fsType)
		}
		if !entry.matchesLayers(layers) {
			return fmt.Errorf("%w: %s", ErrAlreadyMountedDifferent, layers.Merged)
		}
		// Idempotent: already mounted with identical parameters.
		return nil
	}

	if err := os.MkdirAll(layers.Merged, 0o755); err != nil {
		return fmt.Errorf("overlay: create mount point: %w", err)
	}

	options := fmt.Sprintf("lowerdir=%s,upperdir=%s,workdir=%s", layers.Lower, layers.Upper, layers.Work)
	if err := unix.Mount(fsType, layers.Merged, fsType, 0, options); err != nil {
		return fmt.Errorf("overlay: mount %s: %w", layers.Merged, err)
	}
	return nil
}

func (linuxManager) Unmount(target string) error {
	entry, err := findMount(target)
	if err != nil {
		return fmt.Errorf("overlay: read mount table: %w", err)
	}
	if entry == nil {
		// Idempotent: nothing mounted.
		return nil
	}

	if err := unix.Unmount(target, 0); err != nil {
		if errors.Is(err, unix.EBUSY) {
			return ErrBusy
		}
		return fmt.Errorf("overlay: unmount %s: %w", target, err)
	}
	return nil
}

func (m linuxManager) Rollback(layers Layers) error {
	mounted, err := m.IsMounted(layers.Merged)
	if err != nil {
		return err
	}
	if mounted {
		return ErrMounted
	}

	if err := os.RemoveAll(layers.Upper); err != nil {
		return fmt.Errorf("overlay: remove upper: %w", err)
	}
	if err := os.RemoveAll(layers.Work); err != nil {
		return fmt.Errorf("overlay: remove work: %w", err)
	}
	return nil
}
