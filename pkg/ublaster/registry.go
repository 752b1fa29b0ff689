package ublaster

import "fmt"

// BackendFactory constructs a fresh, unopened Backend instance.
type BackendFactory func() Backend

var (
	backendRegistry = map[string]BackendFactory{}
	backendOrder    []string
)

// RegisterBackend adds a named backend factory to the registry. Called from
// each backend's init() function, mirroring the teacher pack's driver
// registries (periph's driverreg.MustRegister, OpenOCD's
// lowlevel_drivers_map).
func RegisterBackend(name string, factory BackendFactory) {
	if _, exists := backendRegistry[name]; !exists {
		backendOrder = append(backendOrder, name)
	}
	backendRegistry[name] = factory
}

// NewBackend looks up a registered backend by name. An empty name returns
// the first backend in registration order. The backend is not opened here,
// so an empty name does not fall back to a later backend when the first
// one's device is absent.
func NewBackend(name string) (Backend, error) {
	if name != "" {
		factory, ok := backendRegistry[name]
		if !ok {
			return nil, &DeviceError{Msg: fmt.Sprintf("no backend registered for %q", name)}
		}
		return factory(), nil
	}
	if len(backendOrder) == 0 {
		return nil, &DeviceError{Msg: "no backends registered"}
	}
	return backendRegistry[backendOrder[0]](), nil
}

// BackendNames returns the names of all registered backends, for CLI
// discovery/help output.
func BackendNames() []string {
	names := make([]string, 0, len(backendRegistry))
	for name := range backendRegistry {
		names = append(names, name)
	}
	return names
}
