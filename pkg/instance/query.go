package instance

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"

	"github.com/cthbleachbit/ciel-rs/pkg/machinebroker"
	"github.com/cthbleachbit/ciel-rs/pkg/nsname"
	"github.com/cthbleachbit/ciel-rs/pkg/workspace"
)

// Inspect fills in an instance's observable status. An absent machine
// object is not an error: it means started=false, running=false,
// booted=BootUnknown, which Inspect reports rather than propagating
// machinebroker.ErrNoSuchMachine.
func (c *Controller) Inspect(ctx context.Context, ws *workspace.Workspace, name string) (Status, error) {
	ns, err := nsname.Derive(ws.AbsPath(), name, ws.Layout())
	if err != nil {
		return Status{}, fmt.Errorf("instance: inspect %s: %w", name, err)
	}
	status := Status{Name: name, NSName: ns}

	layers := layersFor(ws, name)
	mounted, err := c.layers.IsMounted(layers.Merged)
	if err != nil {
		return Status{}, fmt.Errorf("instance: inspect %s: %w", name, err)
	}
	status.Mounted = mounted

	machine, err := c.broker.GetMachine(ctx, ns)
	if err != nil {
		if errors.Is(err, machinebroker.ErrNoSuchMachine) {
			return status, nil
		}
		return Status{}, fmt.Errorf("instance: inspect %s: %w", name, err)
	}
	status.Started = true

	state, err := machine.State(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("instance: inspect %s: %w", name, err)
	}
	status.StateName = state
	status.Running = state == "running" || state == "degraded"

	pid, err := machine.LeaderPID(ctx)
	if err != nil {
		status.Booted = BootUnknown
		return status, nil
	}
	booted, err := machinebroker.IsBooted(pid)
	switch {
	case err != nil:
		status.Booted = BootUnknown
	case booted:
		status.Booted = BootTrue
	default:
		status.Booted = BootFalse
	}
	return status, nil
}

// List enumerates every instance directory under the workspace and
// inspects each one.
func (c *Controller) List(ctx context.Context, ws *workspace.Workspace) ([]Status, error) {
	entries, err := os.ReadDir(ws.InstancesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("instance: list: %w", err)
	}

	names := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		return entry.Name(), entry.IsDir()
	})

	statuses := make([]Status, 0, len(names))
	for _, name := range names {
		status, err := c.Inspect(ctx, ws, name)
		if err != nil {
			return nil, fmt.Errorf("instance: list: inspect %s: %w", name, err)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
