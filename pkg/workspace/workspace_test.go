package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverNotAWorkspace(t *testing.T) {
	dir := t.TempDir()
	_, err := Discover(dir)
	if err != ErrNotAWorkspace {
		t.Fatalf("Discover() = %v, want ErrNotAWorkspace", err)
	}
}

func TestDiscoverCurrentLayout(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, ".ciel", "container", "instances"))
	mustMkdirAll(t, filepath.Join(dir, ".ciel", "container", "dist"))

	ws, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Layout() != LayoutCurrent {
		t.Fatalf("Layout() = %v, want LayoutCurrent", ws.Layout())
	}
	if want := filepath.Join(dir, ".ciel", "container", "instances"); ws.InstancesDir() != want {
		t.Fatalf("InstancesDir() = %q, want %q", ws.InstancesDir(), want)
	}
}

func TestDiscoverLegacyLayout(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, ".ciel", "instances"))
	mustMkdirAll(t, filepath.Join(dir, ".ciel", "dist"))

	ws, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Layout() != LayoutLegacy {
		t.Fatalf("Layout() = %v, want LayoutLegacy", ws.Layout())
	}
	if want := filepath.Join(dir, ".ciel", "instances"); ws.InstancesDir() != want {
		t.Fatalf("InstancesDir() = %q, want %q", ws.InstancesDir(), want)
	}
}

func TestLockRoundTrips(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, ".ciel", "container", "instances"))

	ws, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	lock, err := ws.Lock()
	if err != nil {
		t.Fatal(err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatal(err)
	}
}

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}
