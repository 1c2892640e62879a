package instance

import (
	"fmt"
	"os"
	"sync"

	"github.com/cthbleachbit/ciel-rs/pkg/overlay"
)

// fakeOverlay is an in-memory overlay.Manager used to exercise Create,
// Mount, Destroy, and Rollback without touching the kernel's real overlay
// filesystem.
type fakeOverlay struct {
	mu      sync.Mutex
	mounted map[string]overlay.Layers
}

func newFakeOverlay() *fakeOverlay {
	return &fakeOverlay{mounted: make(map[string]overlay.Layers)}
}

func (f *fakeOverlay) IsMounted(target string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.mounted[target]
	return ok, nil
}

func (f *fakeOverlay) Mount(layers overlay.Layers) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.mounted[layers.Merged]; ok {
		if existing != layers {
			return fmt.Errorf("%w: %s", overlay.ErrAlreadyMountedDifferent, layers.Merged)
		}
		return nil
	}
	f.mounted[layers.Merged] = layers
	return nil
}

func (f *fakeOverlay) Unmount(target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.mounted, target)
	return nil
}

func (f *fakeOverlay) Rollback(layers overlay.Layers) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.mounted[layers.Merged]; ok {
		return overlay.ErrMounted
	}
	if err := os.RemoveAll(layers.Upper); err != nil {
		return err
	}
	return os.RemoveAll(layers.Work)
}
