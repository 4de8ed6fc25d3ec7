// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import "github.com/gogpu/textmode/backend"

// Option configures a Renderer during construction.
//
// Example:
//
//	// Registry default (GPU when registered and usable, otherwise software)
//	r, err := textmode.New(25, 80, textmode.DefaultPalette(), atlas)
//
//	// Explicit device
//	r, err := textmode.New(25, 80, pal, atlas, textmode.WithDevice(dev))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	device      backend.Device
	backendName string
	source      backend.ProgramSource
	slots       *backend.SlotAllocator
	crossfade   float64
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		source: backend.DefaultProgramSource(),
	}
}

// WithDevice makes the renderer draw on dev. dev must be initialized.
// The renderer does not close a device it was given.
func WithDevice(dev backend.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithBackend selects a registered device by name, for example
// backend.BackendSoftware. The renderer opens and later closes it.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithShaderSource replaces the embedded WGSL program. The program must
// export vs_main and fs_main and use the bindings of the embedded one.
func WithShaderSource(vertex, fragment string) Option {
	return func(o *options) {
		o.source = backend.ProgramSource{Vertex: vertex, Fragment: fragment}
	}
}

// WithSlotAllocator assigns texture slots from a. By default every renderer
// gets its own allocator, so its textures use slots 0, 1 and 2.
func WithSlotAllocator(a *backend.SlotAllocator) Option {
	return func(o *options) {
		o.slots = a
	}
}

// WithCrossfade sets the initial crossfade factor. The default is 0.
func WithCrossfade(f float64) Option {
	return func(o *options) {
		o.crossfade = f
	}
}
