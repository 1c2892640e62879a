package overlay

import (
	"os"
	"path/filepath"
	"testing"
)

func withFakeMountInfo(t *testing.T, contents string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mountinfo")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	old := mountInfoPath
	mountInfoPath = path
	t.Cleanup(func() { mountInfoPath = old })
}

func TestFindMountNoEntry(t *testing.T) {
	withFakeMountInfo(t, "36 35 98:0 / / rw,relatime - ext4 /dev/sda1 rw\n")
	entry, err := findMount("/instances/x/merged")
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Fatalf("expected no entry, got %+v", entry)
	}
}

func TestFindMountOverlayEntry(t *testing.T) {
	line := "37 35 0:35 / /instances/x/merged rw,relatime shared:1 - overlay overlay rw,lowerdir=/dist,upperdir=/instances/x/upper,workdir=/instances/x/work\n"
	withFakeMountInfo(t, line)
	entry, err := findMount("/instances/x/merged")
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil {
		t.Fatal("expected an entry")
	}
	if entry.fsType != "overlay" {
		t.Fatalf("fsType = %q, want overlay", entry.fsType)
	}
	layers := Layers{Lower: "/dist", Upper: "/instances/x/upper", Work: "/instances/x/work"}
	if !entry.matchesLayers(layers) {
		t.Fatalf("matchesLayers = false, want true for %+v", entry)
	}
	if entry.matchesLayers(Layers{Lower: "/other", Upper: layers.Upper, Work: layers.Work}) {
		t.Fatal("matchesLayers = true for mismatched lower, want false")
	}
}

func TestIsMountedDoesNotInspectChildFiles(t *testing.T) {
	// Regression guard: a directory with files under it but no mountinfo
	// entry must report not-mounted, proving detection is table-based.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	withFakeMountInfo(t, "36 35 98:0 / / rw,relatime - ext4 /dev/sda1 rw\n")
	mounted, err := New().IsMounted(dir)
	if err != nil {
		t.Fatal(err)
	}
	if mounted {
		t.Fatal("IsMounted reported true for a plain directory with files in it")
	}
}

func TestUnmountIdempotentWhenNothingMounted(t *testing.T) {
	withFakeMountInfo(t, "")
	if err := New().Unmount(filepath.Join(t.TempDir(), "merged")); err != nil {
		t.Fatalf("Unmount on unmounted target: %v", err)
	}
}
