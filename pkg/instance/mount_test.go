package instance

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMountOfUncreatedInstanceFails(t *testing.T) {
	ws := newTestWorkspace(t)
	c := newTestController()

	err := c.Mount(context.Background(), ws, "never-created")
	if !errors.Is(err, ErrNotExists) {
		t.Fatalf("Mount() on uncreated instance = %v, want ErrNotExists", err)
	}
}

func TestExecOfUncreatedInstanceFails(t *testing.T) {
	ws := newTestWorkspace(t)
	c := newTestController()

	_, err := c.Exec(context.Background(), ws, "never-created", []string{"true"})
	if !errors.Is(err, ErrNotExists) {
		t.Fatalf("Exec() on uncreated instance = %v, want ErrNotExists", err)
	}
}

func TestMountIsIdempotent(t *testing.T) {
	ws := newTestWorkspace(t)
	c := newTestController()
	ctx := context.Background()

	if err := c.Create(ctx, ws, "stable"); err != nil {
		t.Fatal(err)
	}
	if err := c.Mount(ctx, ws, "stable"); err != nil {
		t.Fatal(err)
	}
	if err := c.Mount(ctx, ws, "stable"); err != nil {
		t.Fatalf("second Mount() = %v, want nil (idempotent)", err)
	}
}

func TestRollbackRequiresUnmounted(t *testing.T) {
	ws := newTestWorkspace(t)
	c := newTestController()
	ctx := context.Background()

	if err := c.Create(ctx, ws, "stable"); err != nil {
		t.Fatal(err)
	}
	if err := c.Mount(ctx, ws, "stable"); err != nil {
		t.Fatal(err)
	}
	if err := c.Rollback(ctx, ws, "stable"); err == nil {
		t.Fatal("expected Rollback to fail while mounted")
	}

	merged := filepath.Join(ws.InstanceDir("stable"), "merged")
	if err := c.layers.Unmount(merged); err != nil {
		t.Fatal(err)
	}
	upperMarker := filepath.Join(ws.InstanceDir("stable"), "upper", "marker")
	if err := os.WriteFile(upperMarker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Rollback(ctx, ws, "stable"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(upperMarker); !os.IsNotExist(err) {
		t.Fatal("expected rollback to remove upper contents")
	}
}
