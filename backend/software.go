// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBandRows is the smallest number of surface rows handed to one worker.
const minBandRows = 16

// SoftwareDevice is a CPU device that runs ComposeRows.
//
// Textures keep private copies of uploaded bytes, so the device has the
// same visibility rules as a GPU: edits to a caller's buffer show up only
// after WriteTexture.
type SoftwareDevice struct {
	initialized bool
	closed      bool
	workers     int

	textures map[*softwareTexture]struct{}
	programs map[*softwareProgram]struct{}

	width, height int
	held          []byte
}

type softwareTexture struct {
	desc TextureDescriptor
	data []byte
}

func (t *softwareTexture) Descriptor() TextureDescriptor { return t.desc }

type softwareProgram struct {
	label string
}

func (p *softwareProgram) Label() string { return p.label }

// init registers the software device on package import.
func init() {
	Register(BackendSoftware, func() Device {
		return NewSoftwareDevice()
	})
}

// NewSoftwareDevice creates a software device that splits draws across
// GOMAXPROCS workers.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{workers: runtime.GOMAXPROCS(0)}
}

// SetWorkers sets the number of goroutines a draw may use. n < 1 means one.
func (d *SoftwareDevice) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	d.workers = n
}

// Name returns the device identifier.
func (d *SoftwareDevice) Name() string {
	return BackendSoftware
}

// Init initializes the device.
func (d *SoftwareDevice) Init() error {
	if d.closed {
		return ErrClosed
	}
	if d.textures == nil {
		d.textures = make(map[*softwareTexture]struct{})
		d.programs = make(map[*softwareProgram]struct{})
	}
	d.initialized = true
	return nil
}

func (d *SoftwareDevice) ready() error {
	if d.closed {
		return ErrClosed
	}
	if !d.initialized {
		return ErrNotInitialized
	}
	return nil
}

// CreateTexture allocates a zeroed texture.
func (d *SoftwareDevice) CreateTexture(desc TextureDescriptor) (Texture, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	t := &softwareTexture{desc: desc, data: make([]byte, desc.Size())}
	d.textures[t] = struct{}{}
	return t, nil
}

func (d *SoftwareDevice) texture(tex Texture) (*softwareTexture, error) {
	t, ok := tex.(*softwareTexture)
	if !ok || t == nil {
		return nil, ErrInvalidTexture
	}
	if _, live := d.textures[t]; !live {
		return nil, ErrInvalidTexture
	}
	return t, nil
}

// WriteTexture copies data into tex.
func (d *SoftwareDevice) WriteTexture(tex Texture, data []byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if len(data) != len(t.data) {
		return fmt.Errorf("%w: %q got %d bytes, want %d", ErrTextureSize, t.desc.Label, len(data), len(t.data))
	}
	copy(t.data, data)
	return nil
}

// DestroyTexture releases tex.
func (d *SoftwareDevice) DestroyTexture(tex Texture) {
	if t, ok := tex.(*softwareTexture); ok && t != nil {
		delete(d.textures, t)
	}
}

// CreateProgram accepts a compiled program. The software device executes
// ComposeRows, which implements the same decode as the embedded WGSL.
func (d *SoftwareDevice) CreateProgram(p *CompiledProgram) (Program, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrInvalidProgram
	}
	prog := &softwareProgram{label: p.Label}
	d.programs[prog] = struct{}{}
	return prog, nil
}

// DestroyProgram releases p.
func (d *SoftwareDevice) DestroyProgram(p Program) {
	if prog, ok := p.(*softwareProgram); ok && prog != nil {
		delete(d.programs, prog)
	}
}

// SetViewport resizes the surface. The held frame is reset to opaque black.
func (d *SoftwareDevice) SetViewport(width, height int) error {
	if err := d.ready(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	d.width, d.height = width, height
	d.held = make([]byte, width*height*4)
	for i := 3; i < len(d.held); i += 4 {
		d.held[i] = 0xFF
	}
	return nil
}

// Draw composes a frame into the held buffer.
func (d *SoftwareDevice) Draw(p Program, b Bindings, u GridUniforms) error {
	if err := d.ready(); err != nil {
		return err
	}
	if prog, ok := p.(*softwareProgram); !ok || prog == nil {
		return ErrInvalidProgram
	} else if _, live := d.programs[prog]; !live {
		return ErrInvalidProgram
	}
	if err := u.Check(b); err != nil {
		return err
	}
	if u.Width() != d.width || u.Height() != d.height {
		return fmt.Errorf("%w: grid is %dx%d, viewport %dx%d",
			ErrInvalidViewport, u.Width(), u.Height(), d.width, d.height)
	}

	var src Sources
	for _, bind := range []struct {
		tex Texture
		dst *[]byte
	}{{b.State, &src.State}, {b.Font, &src.Font}, {b.Palette, &src.Palette}} {
		t, err := d.texture(bind.tex)
		if err != nil {
			return err
		}
		*bind.dst = t.data
	}

	band := (d.height + d.workers - 1) / d.workers
	if band < minBandRows {
		band = minBandRows
	}
	var g errgroup.Group
	g.SetLimit(d.workers)
	for y0 := 0; y0 < d.height; y0 += band {
		y1 := min(y0+band, d.height)
		g.Go(func() error {
			ComposeRows(d.held, src, u, y0, y1)
			return nil
		})
	}
	return g.Wait()
}

// ReadPixels copies the held frame into dst.
func (d *SoftwareDevice) ReadPixels(dst []byte) error {
	if err := d.ready(); err != nil {
		return err
	}
	if d.held == nil {
		return fmt.Errorf("%w: no viewport", ErrInvalidViewport)
	}
	if len(dst) != len(d.held) {
		return fmt.Errorf("backend: read pixels: got %d bytes, want %d", len(dst), len(d.held))
	}
	copy(dst, d.held)
	return nil
}

// Close releases all resources. The device cannot be reused.
func (d *SoftwareDevice) Close() {
	d.textures = nil
	d.programs = nil
	d.held = nil
	d.initialized = false
	d.closed = true
}

// Compile-time interface check.
var _ Device = (*SoftwareDevice)(nil)
