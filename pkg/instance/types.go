package instance

import "encoding/json"

// BootState is a tri-valued observation of a container's process 1.
// It is only meaningful when the instance is Started; Inspect reports
// BootUnknown whenever the machine object does not exist.
type BootState int

const (
	BootUnknown BootState = iota
	BootTrue
	BootFalse
)

func (s BootState) String() string {
	switch s {
	case BootTrue:
		return "booted"
	case BootFalse:
		return "not-booted"
	default:
		return "unknown"
	}
}

// MarshalJSON renders a BootState as its String() form rather than the
// underlying int, so `ciel inspect --json` reads naturally.
func (s BootState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Status is the four-valued observable status of one instance, filled in
// by Inspect. Running⇒Started holds by construction: Inspect sets Running
// only after it has found the machine object and set Started. Mounted and
// Started are read independently (the mount table and the machine object
// respectively); Inspect does not cross-check them.
type Status struct {
	Name      string
	NSName    string
	Mounted   bool
	Started   bool
	Running   bool
	Booted    BootState
	StateName string // raw machine1 State string, empty if not Started
}

// BindMountSpec names one host directory to expose inside a started
// container.
type BindMountSpec struct {
	HostPath      string
	ContainerPath string
	ReadOnly      bool
}
