// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/textmode/backend"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice opens the noop HAL backend.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("noop backend has no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return open.Device, open.Queue
}

func newNoopDevice(t *testing.T) *Device {
	t.Helper()
	d := NewWithHAL(createNoopDevice(t))
	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

type grid struct {
	program  backend.Program
	bindings backend.Bindings
	uniforms backend.GridUniforms
}

// setupGrid builds a 2x3 grid of 8x8 glyphs on d.
func setupGrid(t *testing.T, d *Device) grid {
	t.Helper()
	cp, err := backend.CompileProgram("test-grid", backend.DefaultProgramSource())
	if err != nil {
		t.Fatalf("CompileProgram() error = %v", err)
	}
	prog, err := d.CreateProgram(cp)
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}

	u := backend.GridUniforms{
		Columns: 3, Rows: 2,
		GlyphWidth: 8, GlyphHeight: 8, HeightPixels: 16,
		GlyphCount: 4, GlyphTexels: 2, PaletteSize: 2,
		Fader: 1,
	}
	mk := func(label string, slot int, format backend.TextureFormat, texels int) backend.Texture {
		tex, err := d.CreateTexture(backend.TextureDescriptor{Label: label, Slot: slot, Format: format, Texels: texels})
		if err != nil {
			t.Fatalf("CreateTexture(%s) error = %v", label, err)
		}
		return tex
	}
	b := backend.Bindings{
		State:   mk("state", 0, backend.FormatRGBA8Uint, 6),
		Font:    mk("font", 1, backend.FormatRGBA8Uint, 8),
		Palette: mk("palette", 2, backend.FormatRGB8Srgb, 2),
	}
	if err := d.SetViewport(u.Width(), u.Height()); err != nil {
		t.Fatalf("SetViewport() error = %v", err)
	}
	return grid{program: prog, bindings: b, uniforms: u}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendWGPU) {
		t.Fatal("wgpu device not registered")
	}
	if dev := backend.Get(backend.BackendWGPU); dev == nil || dev.Name() != backend.BackendWGPU {
		t.Errorf("Get(%q) = %v", backend.BackendWGPU, dev)
	}
}

func TestRGBToRGBA(t *testing.T) {
	got := rgbToRGBA([]byte{1, 2, 3, 4, 5, 6})
	want := []byte{1, 2, 3, 255, 4, 5, 6, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("rgbToRGBA() = %v, want %v", got, want)
	}
}

func TestAlignPitch(t *testing.T) {
	tests := []struct{ width, want uint32 }{
		{1, 256}, {64, 256}, {65, 512}, {784, 3328},
	}
	for _, tt := range tests {
		if got := alignPitch(tt.width); got != tt.want {
			t.Errorf("alignPitch(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestHalFormat(t *testing.T) {
	if f, err := halFormat(backend.FormatRGBA8Uint); err != nil || f != gputypes.TextureFormatRGBA8Uint {
		t.Errorf("halFormat(RGBA8Uint) = %v, %v", f, err)
	}
	if f, err := halFormat(backend.FormatRGB8Srgb); err != nil || f != gputypes.TextureFormatRGBA8UnormSrgb {
		t.Errorf("halFormat(RGB8Srgb) = %v, %v", f, err)
	}
	if _, err := halFormat(backend.TextureFormat(99)); err == nil {
		t.Error("halFormat(99) succeeded")
	}
}

func TestDrawAndReadPixels(t *testing.T) {
	d := newNoopDevice(t)
	g := setupGrid(t, d)

	if err := d.WriteTexture(g.bindings.Palette, []byte{0, 0, 0, 255, 255, 255}); err != nil {
		t.Fatalf("WriteTexture() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := d.Draw(g.program, g.bindings, g.uniforms); err != nil {
			t.Fatalf("Draw() #%d error = %v", i, err)
		}
	}
	if d.frame.held != 0 {
		t.Errorf("held target = %d after two draws, want 0", d.frame.held)
	}

	dst := make([]byte, g.uniforms.Width()*g.uniforms.Height()*4)
	if err := d.ReadPixels(dst); err != nil {
		t.Fatalf("ReadPixels() error = %v", err)
	}
	if err := d.ReadPixels(dst[:4]); err == nil {
		t.Error("ReadPixels() with a short buffer succeeded")
	}
}

func TestDrawErrors(t *testing.T) {
	d := newNoopDevice(t)
	g := setupGrid(t, d)

	t.Run("viewport mismatch", func(t *testing.T) {
		u := g.uniforms
		u.Rows, u.HeightPixels = 1, 8
		b := g.bindings
		state, _ := d.CreateTexture(backend.TextureDescriptor{Label: "state", Format: backend.FormatRGBA8Uint, Texels: 3})
		b.State = state
		if err := d.Draw(g.program, b, u); !errors.Is(err, backend.ErrInvalidViewport) {
			t.Errorf("Draw() error = %v, want ErrInvalidViewport", err)
		}
	})

	t.Run("destroyed texture", func(t *testing.T) {
		b := g.bindings
		font, _ := d.CreateTexture(backend.TextureDescriptor{Label: "font", Format: backend.FormatRGBA8Uint, Texels: 8})
		d.DestroyTexture(font)
		b.Font = font
		if err := d.Draw(g.program, b, g.uniforms); !errors.Is(err, backend.ErrInvalidTexture) {
			t.Errorf("Draw() error = %v, want ErrInvalidTexture", err)
		}
	})

	t.Run("destroyed program", func(t *testing.T) {
		cp, _ := backend.CompileProgram("other", backend.DefaultProgramSource())
		p, err := d.CreateProgram(cp)
		if err != nil {
			t.Fatalf("CreateProgram() error = %v", err)
		}
		d.DestroyProgram(p)
		if err := d.Draw(p, g.bindings, g.uniforms); !errors.Is(err, backend.ErrInvalidProgram) {
			t.Errorf("Draw() error = %v, want ErrInvalidProgram", err)
		}
	})

	t.Run("binding mismatch", func(t *testing.T) {
		b := g.bindings
		b.State, b.Palette = b.Palette, b.State
		if err := d.Draw(g.program, b, g.uniforms); !errors.Is(err, backend.ErrBindingMismatch) {
			t.Errorf("Draw() error = %v, want ErrBindingMismatch", err)
		}
	})
}

func TestTextureErrors(t *testing.T) {
	d := newNoopDevice(t)

	_, err := d.CreateTexture(backend.TextureDescriptor{Label: "huge", Format: backend.FormatRGBA8Uint, Texels: 8193})
	if !errors.Is(err, backend.ErrTextureSize) {
		t.Errorf("CreateTexture(8193 texels) error = %v, want ErrTextureSize", err)
	}

	tex, err := d.CreateTexture(backend.TextureDescriptor{Label: "palette", Format: backend.FormatRGB8Srgb, Texels: 4})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if err := d.WriteTexture(tex, make([]byte, 16)); !errors.Is(err, backend.ErrTextureSize) {
		t.Errorf("WriteTexture(RGBA-sized data) error = %v, want ErrTextureSize", err)
	}
	if err := d.WriteTexture(tex, make([]byte, 12)); err != nil {
		t.Errorf("WriteTexture() error = %v", err)
	}
	if got := tex.Descriptor().Label; got != "palette" {
		t.Errorf("Descriptor().Label = %q", got)
	}
}

func TestViewportErrors(t *testing.T) {
	d := newNoopDevice(t)
	for _, size := range [][2]int{{0, 10}, {10, -1}, {8193, 1}} {
		if err := d.SetViewport(size[0], size[1]); !errors.Is(err, backend.ErrInvalidViewport) {
			t.Errorf("SetViewport(%d, %d) error = %v", size[0], size[1], err)
		}
	}
	if err := d.ReadPixels(make([]byte, 4)); !errors.Is(err, backend.ErrInvalidViewport) {
		t.Errorf("ReadPixels() without viewport error = %v", err)
	}
}

func TestViewportErrorKeepsFrame(t *testing.T) {
	d := newNoopDevice(t)
	g := setupGrid(t, d)
	if err := d.Draw(g.program, g.bindings, g.uniforms); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	held := d.frame

	if err := d.SetViewport(9600, 32); !errors.Is(err, backend.ErrInvalidViewport) {
		t.Fatalf("SetViewport(9600, 32) error = %v", err)
	}
	if d.frame != held || d.frame.width != 24 || d.frame.height != 16 {
		t.Errorf("rejected viewport replaced the frame: %+v", d.frame)
	}
	if err := d.Draw(g.program, g.bindings, g.uniforms); err != nil {
		t.Errorf("Draw() after rejected viewport error = %v", err)
	}
	if err := d.ReadPixels(make([]byte, 24*16*4)); err != nil {
		t.Errorf("ReadPixels() after rejected viewport error = %v", err)
	}
}

func TestCreateProgramInvalid(t *testing.T) {
	d := newNoopDevice(t)
	if _, err := d.CreateProgram(nil); !errors.Is(err, backend.ErrInvalidProgram) {
		t.Errorf("CreateProgram(nil) error = %v", err)
	}
	if _, err := d.CreateProgram(&backend.CompiledProgram{Label: "empty"}); !errors.Is(err, backend.ErrInvalidProgram) {
		t.Errorf("CreateProgram(empty) error = %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	dev, queue := createNoopDevice(t)
	d := NewWithHAL(dev, queue)

	if _, err := d.CreateTexture(backend.TextureDescriptor{Label: "x", Format: backend.FormatRGBA8Uint, Texels: 1}); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateTexture() before Init error = %v", err)
	}
	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := d.Init(); err != nil {
		t.Errorf("second Init() error = %v", err)
	}
	d.Close()
	d.Close()
	if err := d.Init(); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("Init() after Close error = %v, want ErrClosed", err)
	}
	if err := d.SetViewport(1, 1); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("SetViewport() after Close error = %v, want ErrClosed", err)
	}
}

// halProvider is a DeviceProvider that exposes HAL objects.
type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p *halProvider) Device() gpucontext.Device { return p.device }
func (p *halProvider) Queue() gpucontext.Queue { return p.queue }
func (p *halProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8UnormSrgb }
func (p *halProvider) Adapter() gpucontext.Adapter { return nil }
func (p *halProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "noop", Type: gpucontext.AdapterTypeSoftware}
}
func (p *halProvider) HalDevice() any { return p.device }
func (p *halProvider) HalQueue() any { return p.queue }

// plainProvider hides its HAL objects.
type plainProvider struct{ halProvider }

func (p *plainProvider) HalDevice() {}

func TestNewFromProvider(t *testing.T) {
	dev, queue := createNoopDevice(t)

	d, err := NewFromProvider(&halProvider{device: dev, queue: queue})
	if err != nil {
		t.Fatalf("NewFromProvider() error = %v", err)
	}
	if d.Adapter() != "noop" || !d.external {
		t.Errorf("adapter = %q, external = %v", d.Adapter(), d.external)
	}
	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	d.Close()

	if _, err := NewFromProvider(&plainProvider{}); !errors.Is(err, ErrNotHAL) {
		t.Errorf("NewFromProvider(plain) error = %v, want ErrNotHAL", err)
	}
	if _, err := NewFromProvider(&halProvider{}); !errors.Is(err, ErrNotHAL) {
		t.Errorf("NewFromProvider(nil HAL) error = %v, want ErrNotHAL", err)
	}
}
