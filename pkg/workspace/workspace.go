// Package workspace locates a ciel workspace on disk and classifies its
// layout. It is deliberately thin: parsing and persisting the contents of
// config.toml belongs to an external collaborator (see SPEC_FULL.md §4.5);
// this package only resolves the well-known paths the instance lifecycle
// engine needs and reads far enough to tell current layout from legacy.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cthbleachbit/ciel-rs/pkg/nsname"
)

// Layout is re-exported from nsname so callers needn't import both packages
// just to compare a workspace's layout against nsname.LayoutCurrent/Legacy.
type Layout = nsname.Layout

const (
	LayoutCurrent = nsname.LayoutCurrent
	LayoutLegacy  = nsname.LayoutLegacy
)

// markerDirName is the hidden directory whose presence defines "this is a
// workspace".
const markerDirName = ".ciel"

// ErrNotAWorkspace is returned by Discover when the marker directory does
// not exist at the given path.
var ErrNotAWorkspace = errors.New("workspace: not a ciel workspace (no .ciel directory)")

// Workspace is a discovered ciel workspace: an absolute root path plus its
// immutable on-disk layout.
type Workspace struct {
	root   string
	layout Layout
}

// Discover locates a workspace rooted at path. An empty path means the
// current working directory. The returned Workspace's layout is read once,
// here, and never re-probed.
func Discover(path string) (*Workspace, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("workspace: getwd: %w", err)
		}
		path = cwd
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve %s: %w", path, err)
	}

	if _, err := os.Stat(filepath.Join(abs, markerDirName)); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAWorkspace
		}
		return nil, fmt.Errorf("workspace: stat marker: %w", err)
	}

	return &Workspace{root: abs, layout: detectLayout(abs)}, nil
}

// detectLayout classifies a workspace's on-disk scheme. Current layout
// nests instances and the lower layer under .ciel/container/; legacy
// layout keeps them directly under .ciel/. A brand-new workspace with
// neither subdirectory yet is treated as current, since current is what
// every path-construction helper in this package produces.
func detectLayout(root string) Layout {
	if dirExists(filepath.Join(root, markerDirName, "container")) {
		return LayoutCurrent
	}
	if dirExists(filepath.Join(root, markerDirName, "instances")) {
		return LayoutLegacy
	}
	return LayoutCurrent
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// AbsPath returns the workspace's absolute root path.
func (w *Workspace) AbsPath() string { return w.root }

// Layout returns the workspace's immutable on-disk layout.
func (w *Workspace) Layout() Layout { return w.layout }

// MarkerDir returns the path to the .ciel marker directory.
func (w *Workspace) MarkerDir() string {
	return filepath.Join(w.root, markerDirName)
}

// DataDir returns the workspace's configuration/data directory.
func (w *Workspace) DataDir() string {
	return filepath.Join(w.MarkerDir(), "data")
}

// ConfigPath returns the path to the opaque workspace configuration file.
func (w *Workspace) ConfigPath() string {
	return filepath.Join(w.DataDir(), "config.toml")
}

// InstancesDir returns the directory holding one subdirectory per instance.
func (w *Workspace) InstancesDir() string {
	if w.layout == LayoutLegacy {
		return filepath.Join(w.MarkerDir(), "instances")
	}
	return filepath.Join(w.MarkerDir(), "container", "instances")
}

// InstanceDir returns the root directory for a single named instance.
func (w *Workspace) InstanceDir(name string) string {
	return filepath.Join(w.InstancesDir(), name)
}

// LogsDir returns the directory per-instance log files are split into.
func (w *Workspace) LogsDir() string {
	return filepath.Join(w.DataDir(), "logs")
}

// LowerDir returns the shared, read-only buildkit directory.
func (w *Workspace) LowerDir() string {
	if w.layout == LayoutLegacy {
		return filepath.Join(w.MarkerDir(), "dist")
	}
	return filepath.Join(w.MarkerDir(), "container", "dist")
}

// OutputDir returns the local package repository directory.
func (w *Workspace) OutputDir() string {
	return filepath.Join(w.root, "OUTPUT")
}

// TreeDir returns the recipe checkout directory.
func (w *Workspace) TreeDir() string {
	return filepath.Join(w.root, "TREE")
}

// lockPath is the flock(2) target guarding per-instance operations across
// separate ciel processes working the same workspace.
func (w *Workspace) lockPath() string {
	return filepath.Join(w.MarkerDir(), ".lock")
}
