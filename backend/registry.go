// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Device name constants.
const (
	// BackendSoftware is the CPU rasterizer.
	BackendSoftware = "software"
	// BackendWGPU is the gogpu/wgpu HAL device.
	BackendWGPU = "wgpu"
)

// Factory creates a new, uninitialized device.
type Factory func() Device

// registry holds registered devices.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for device selection (first that initializes wins).
	priority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in device packages.
// If a device with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a device from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered device names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a device with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get returns a new, uninitialized device by name.
// Returns nil if the name is not registered.
func Get(name string) Device {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// Open creates and initializes the named device.
func Open(name string) (Device, error) {
	d := Get(name)
	if d == nil {
		return nil, fmt.Errorf("%w: %q is not registered", ErrNotAvailable, name)
	}
	if err := d.Init(); err != nil {
		return nil, fmt.Errorf("backend: init %s: %w", name, err)
	}
	return d, nil
}

// candidates returns registered names in selection order: the priority
// list first, then everything else alphabetically.
func candidates() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool, len(factories))
	names := make([]string, 0, len(factories))
	for _, name := range priority {
		if _, ok := factories[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(factories))
	for name := range factories {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Default returns a new, uninitialized device of the highest priority.
// Returns nil if nothing is registered.
func Default() Device {
	for _, name := range candidates() {
		if d := Get(name); d != nil {
			return d
		}
	}
	return nil
}

// InitDefault initializes devices in priority order and returns the first
// that succeeds. A device that fails to initialize is skipped with a warning,
// so importing a GPU device on a machine without a GPU still falls back to
// the software device.
func InitDefault() (Device, error) {
	for _, name := range candidates() {
		d := Get(name)
		if d == nil {
			continue
		}
		if err := d.Init(); err != nil {
			Logger().Warn("backend: device unavailable, trying next", "device", name, "err", err)
			continue
		}
		Logger().Debug("backend: device selected", "device", name)
		return d, nil
	}
	return nil, ErrNotAvailable
}
