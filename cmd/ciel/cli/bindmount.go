package cli

import (
	"fmt"
	"strings"

	"github.com/cthbleachbit/ciel-rs/pkg/instance"
)

// parseBindMount parses one --bind flag value of the form
// host:container or host:container:ro.
func parseBindMount(s string) (instance.BindMountSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return instance.BindMountSpec{}, fmt.Errorf("ciel: invalid --bind %q, want host:container[:ro]", s)
	}
	spec := instance.BindMountSpec{HostPath: parts[0], ContainerPath: parts[1]}
	if len(parts) == 3 {
		if parts[2] != "ro" {
			return instance.BindMountSpec{}, fmt.Errorf("ciel: invalid --bind %q, third field must be \"ro\"", s)
		}
		spec.ReadOnly = true
	}
	return spec, nil
}
