// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/textmode/backend"
	"github.com/gogpu/wgpu/hal"
)

// Errors returned by the wgpu device.
var (
	// ErrNoAdapter is returned when no registered HAL backend exposes an adapter.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

	// ErrNotHAL is returned by NewFromProvider when the provider does not
	// expose hal.Device and hal.Queue.
	ErrNotHAL = errors.New("wgpu: provider does not expose HAL types")
)

// preferred lists the HAL backends Init tries, in order.
var preferred = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
}

// Device renders text grids with a HAL render pipeline.
// It implements backend.Device and is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool // device and queue belong to someone else
	adapter  string
	limits   gputypes.Limits

	initialized bool
	closed      bool

	uniforms hal.Buffer
	textures map[*texture]struct{}
	programs map[*program]struct{}
	frame    *frame
}

// init registers the wgpu device on package import.
func init() {
	backend.Register(backend.BackendWGPU, func() backend.Device {
		return New()
	})
}

// New returns a device that opens its own GPU on Init.
func New() *Device {
	return &Device{limits: gputypes.DefaultLimits()}
}

// NewWithHAL returns a device that renders on an existing HAL device and
// queue. Close leaves them open.
func NewWithHAL(device hal.Device, queue hal.Queue) *Device {
	return &Device{
		device:   device,
		queue:    queue,
		external: true,
		adapter:  "shared",
		limits:   gputypes.DefaultLimits(),
	}
}

// NewFromProvider returns a device sharing the GPU of provider. The
// provider's concrete type must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNotHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNotHAL, hp.HalQueue())
	}

	info := provider.AdapterInfo()
	d := NewWithHAL(device, queue)
	d.adapter = info.Name
	backend.Logger().Info("wgpu: using shared device", "adapter", info.Name, "type", info.Type.String())
	return d, nil
}

// Name returns the device identifier.
func (d *Device) Name() string {
	return backend.BackendWGPU
}

// Adapter returns the name of the GPU adapter in use.
func (d *Device) Adapter() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.adapter
}

// Init opens a GPU if the device does not have one yet and allocates the
// uniform buffer. Init on an initialized device is a no-op.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return backend.ErrClosed
	}
	if d.initialized {
		return nil
	}
	if d.device == nil {
		if err := d.open(); err != nil {
			return fmt.Errorf("%w: %w", backend.ErrNotAvailable, err)
		}
	}

	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "textmode-grid-uniforms",
		Size:  backend.UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		d.releaseGPU()
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	d.uniforms = buf
	d.textures = make(map[*texture]struct{})
	d.programs = make(map[*program]struct{})
	d.initialized = true

	backend.Logger().Info("wgpu: device initialized", "adapter", d.adapter)
	return nil
}

// open picks the first HAL backend with an adapter, preferring discrete
// and integrated GPUs over the rest.
func (d *Device) open() error {
	var errs []error
	for _, variant := range preferred {
		b, ok := hal.GetBackend(variant)
		if !ok {
			continue
		}
		instance, err := b.CreateInstance(&hal.InstanceDescriptor{})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: create instance: %w", variant, err))
			continue
		}
		adapters := instance.EnumerateAdapters(nil)
		if len(adapters) == 0 {
			instance.Destroy()
			errs = append(errs, fmt.Errorf("%s: %w", variant, ErrNoAdapter))
			continue
		}

		selected := &adapters[0]
		for i := range adapters {
			t := adapters[i].Info.DeviceType
			if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}

		open, err := selected.Adapter.Open(gputypes.Features(0), d.limits)
		if err != nil {
			instance.Destroy()
			errs = append(errs, fmt.Errorf("%s: open %s: %w", variant, selected.Info.Name, err))
			continue
		}
		d.instance = instance
		d.device = open.Device
		d.queue = open.Queue
		d.adapter = selected.Info.Name
		backend.Logger().Debug("wgpu: adapter opened", "backend", variant.String(), "adapter", selected.Info.Name)
		return nil
	}
	if len(errs) == 0 {
		return ErrNoAdapter
	}
	return errors.Join(errs...)
}

func (d *Device) ready() error {
	if d.closed {
		return backend.ErrClosed
	}
	if !d.initialized {
		return backend.ErrNotInitialized
	}
	return nil
}

// releaseGPU destroys the HAL device and instance unless they are shared.
func (d *Device) releaseGPU() {
	if !d.external && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
	d.instance, d.device, d.queue = nil, nil, nil
}

// Close releases every resource the device created. A shared HAL device is
// left open. The device cannot be reused.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if d.device == nil {
		return
	}
	if d.initialized {
		_ = d.device.WaitIdle()
	}

	d.destroyFrame()
	for p := range d.programs {
		d.destroyProgram(p)
	}
	for t := range d.textures {
		d.destroyTexture(t)
	}
	if d.uniforms != nil {
		d.device.DestroyBuffer(d.uniforms)
		d.uniforms = nil
	}
	d.initialized = false
	d.releaseGPU()
}

// Compile-time interface check.
var _ backend.Device = (*Device)(nil)
