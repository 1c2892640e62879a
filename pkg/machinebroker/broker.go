// Package machinebroker is a thin façade over systemd-machined's
// org.freedesktop.machine1 object model on the system bus. It encapsulates
// the race-prone "wait until the spawned container is ready" protocol and
// the graceful-then-forceful termination protocol; the instance controller
// is the only caller.
package machinebroker

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName          = "org.freedesktop.machine1"
	managerPath      = dbus.ObjectPath("/org/freedesktop/machine1")
	managerIface     = "org.freedesktop.machine1.Manager"
	machineIface     = "org.freedesktop.machine1.Machine"
	noSuchMachineErr = "org.freedesktop.machine1.NoSuchMachine"
)

// Broker is a connection to the host's machine-management bus.
type Broker struct {
	conn *dbus.Conn
}

// New connects to the system bus and returns a Broker. The connection is
// shared by all operations the Broker performs; callers should keep one
// Broker per process rather than reconnecting per call.
func New() (*Broker, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("machinebroker: connect to system bus: %w", err)
	}
	return &Broker{conn: conn}, nil
}

// Close releases the underlying bus connection.
func (b *Broker) Close() error {
	return b.conn.Close()
}

func (b *Broker) managerObject() dbus.BusObject {
	return b.conn.Object(busName, managerPath)
}

// Machine is a handle to a single container's machine1 object.
type Machine struct {
	broker *Broker
	path   dbus.ObjectPath
	name   string
}

func (m Machine) object() dbus.BusObject {
	return m.broker.conn.Object(busName, m.path)
}

// GetMachine resolves a namespace name to its machine1 object. Returns
// ErrNoSuchMachine if the host init system has no such object.
func (b *Broker) GetMachine(ctx context.Context, nsName string) (Machine, error) {
	var path dbus.ObjectPath
	call := b.managerObject().CallWithContext(ctx, managerIface+".GetMachine", 0, nsName)
	if call.Err != nil {
		if isNoSuchMachine(call.Err) {
			return Machine{}, ErrNoSuchMachine
		}
		return Machine{}, fmt.Errorf("machinebroker: GetMachine(%s): %w", nsName, call.Err)
	}
	if err := call.Store(&path); err != nil {
		return Machine{}, fmt.Errorf("machinebroker: GetMachine(%s): decode reply: %w", nsName, err)
	}
	return Machine{broker: b, path: path, name: nsName}, nil
}

// BindMount sets up a cross-namespace bind mount from hostPath to
// containerPath inside the named machine.
func (b *Broker) BindMount(ctx context.Context, nsName, hostPath, containerPath string, readOnly, mkdir bool) error {
	call := b.managerObject().CallWithContext(ctx, managerIface+".BindMountMachine", 0,
		nsName, hostPath, containerPath, readOnly, mkdir)
	if call.Err != nil {
		return fmt.Errorf("machinebroker: BindMount(%s, %s -> %s): %w", nsName, hostPath, containerPath, call.Err)
	}
	return nil
}

// State returns the machine's reported state string ("running",
// "degraded", "closing", ...).
func (m Machine) State(ctx context.Context) (string, error) {
	v, err := m.getProperty(ctx, "State")
	if err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("machinebroker: State property has unexpected type %T", v.Value())
	}
	return s, nil
}

// IsRunning reports whether State() is "running" or "degraded"; both count
// as running because a misconfigured in-container init can report degraded
// without the container being any less usable.
func (m Machine) IsRunning(ctx context.Context) (bool, error) {
	state, err := m.State(ctx)
	if err != nil {
		return false, err
	}
	return state == "running" || state == "degraded", nil
}

// LeaderPID returns the PID of the machine's leader process (its process 1
// as seen from the host PID namespace).
func (m Machine) LeaderPID(ctx context.Context) (int32, error) {
	v, err := m.getProperty(ctx, "Leader")
	if err != nil {
		return 0, err
	}
	pid, ok := v.Value().(uint32)
	if !ok {
		return 0, fmt.Errorf("machinebroker: Leader property has unexpected type %T", v.Value())
	}
	return int32(pid), nil
}

func (m Machine) getProperty(ctx context.Context, name string) (dbus.Variant, error) {
	var v dbus.Variant
	call := m.object().CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, machineIface, name)
	if call.Err != nil {
		return dbus.Variant{}, fmt.Errorf("machinebroker: get %s.%s: %w", m.name, name, call.Err)
	}
	if err := call.Store(&v); err != nil {
		return dbus.Variant{}, fmt.Errorf("machinebroker: get %s.%s: decode: %w", m.name, name, err)
	}
	return v, nil
}

// Kill sends signal to the processes identified by who ("leader" or "all")
// inside the machine.
func (m Machine) Kill(ctx context.Context, who string, signal int32) error {
	call := m.object().CallWithContext(ctx, machineIface+".Kill", 0, who, signal)
	if call.Err != nil {
		return fmt.Errorf("machinebroker: kill %s (%s): %w", m.name, who, call.Err)
	}
	return nil
}

// Terminate asks the host init system to immediately tear down the
// machine object (stop its scope, release its resources).
func (m Machine) Terminate(ctx context.Context) error {
	call := m.object().CallWithContext(ctx, machineIface+".Terminate", 0)
	if call.Err != nil {
		return fmt.Errorf("machinebroker: terminate %s: %w", m.name, call.Err)
	}
	return nil
}

func isNoSuchMachine(err error) bool {
	dbusErr, ok := err.(dbus.Error)
	return ok && dbusErr.Name == noSuchMachineErr
}
