package instance

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
)

func newTestWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, ".ciel", "container", "instances"))
	mustMkdirAll(t, filepath.Join(dir, ".ciel", "container", "dist"))
	ws, err := workspace.Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func newTestController() *Controller {
	return New(newFakeOverlay(), nil, nil, nil, nil)
}

func TestCreateMaterializesLayers(t *testing.T) {
	ws := newTestWorkspace(t)
	c := newTestController()

	if err := c.Create(context.Background(), ws, "stable"); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{"upper", "work", "merged"} {
		if _, err := os.Stat(filepath.Join(ws.InstanceDir("stable"), dir)); err != nil {
			t.Fatalf("expected %s to exist: %v", dir, err)
		}
	}
}

func TestCreateFailsWithoutLowerLayer(t *testing.T) {
	dir := t.TempDir()
	mustMkdirAll(t, filepath.Join(dir, ".ciel", "container", "instances"))
	ws, err := workspace.Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	c := newTestController()

	if err := c.Create(context.Background(), ws, "stable"); err == nil {
		t.Fatal("expected error when lower layer is missing")
	}
}

func TestCreateTwiceFails(t *testing.T) {
	ws := newTestWorkspace(t)
	c := newTestController()
	ctx := context.Background()

	if err := c.Create(ctx, ws, "stable"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws.InstanceDir("stable"), "upper", "marker"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := c.Create(ctx, ws, "stable")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("Create() (second time) = %v, want ErrAlreadyExists", err)
	}
}
