// Package nsname derives the stable namespace name ciel uses to identify an
// instance to the host init system. The name is a pure function of a
// workspace's absolute path, an instance's human name, and the workspace's
// on-disk layout.
package nsname

import (
	"errors"
	"fmt"
	"hash/adler32"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// Layout is the on-disk scheme a workspace uses, fixed at discovery time.
type Layout int

const (
	// LayoutCurrent is the ciel 3+ on-disk layout.
	LayoutCurrent Layout = iota
	// LayoutLegacy is the ciel 1/2 on-disk layout.
	LayoutLegacy
)

var (
	// ErrInvalidName is returned when an instance name is not valid Unicode.
	ErrInvalidName = errors.New("nsname: instance name is not valid unicode")
	// ErrInvalidPath is returned when the workspace path has no terminal
	// (base) component to derive a name from.
	ErrInvalidPath = errors.New("nsname: path has no terminal component")
)

// Derive computes the namespace name for an instance. workspaceAbsPath must
// already be absolute (callers typically pass the result of
// workspace.Workspace.AbsPath). instanceName is the human-assigned name of
// the instance, which doubles as its basename under the instances directory.
func Derive(workspaceAbsPath, instanceName string, layout Layout) (string, error) {
	if !utf8.ValidString(instanceName) {
		return "", ErrInvalidName
	}
	base := filepath.Base(workspaceAbsPath)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", ErrInvalidPath
	}

	switch layout {
	case LayoutLegacy:
		key, err := ftok(workspaceAbsPath, 0)
		if err != nil {
			return "", fmt.Errorf("nsname: legacy key derivation: %w", err)
		}
		return fmt.Sprintf("%s-%x", instanceName, key), nil
	default:
		// The checksum covers the path with a trailing separator, so
		// "/tmp" hashes as "/tmp/".
		checksum := adler32.Checksum([]byte(filepath.Clean(workspaceAbsPath) + string(filepath.Separator)))
		return fmt.Sprintf("%s-%x", instanceName, checksum), nil
	}
}

// ftok reproduces the glibc System V IPC key derivation: it combines the
// low 16 bits of the inode number, the low 8 bits of the device number, and
// the low 8 bits of the project id into a single 32-bit key. Reimplemented
// in pure Go (rather than cgo'd onto libc's ftok(3)) so the rest of the
// module stays cgo-free.
func ftok(path string, projID int32) (int32, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	key := (int64(st.Ino) & 0xffff) |
		((int64(st.Dev) & 0xff) << 16) |
		((int64(projID) & 0xff) << 24)
	return int32(key), nil
}
