// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import (
	"errors"
	"fmt"

	"github.com/gogpu/textmode/backend"
)

// Renderer draws a text grid on a device.
//
// The renderer owns the grid state, palette and atlas buffers and mirrors
// each in a device texture. Edits to the buffers become visible only after
// the matching Upload call; Render never uploads.
//
// A Renderer is not safe for concurrent use. Resize in particular must not
// overlap any other call.
type Renderer struct {
	dev     backend.Device
	ownsDev bool
	slots   *backend.SlotAllocator
	program backend.Program

	state   *State
	palette Palette
	atlas   *Atlas

	stateTex   *binding
	fontTex    *binding
	paletteTex *binding

	crossfade float64
	disposed  bool
}

// New creates a renderer for a rows x columns grid.
//
// The palette and atlas are copied. The grid starts zeroed, the crossfade
// factor starts at 0 (or the WithCrossfade value) and one frame is rendered
// before New returns. On any failure every resource created so far is
// released and no renderer is returned; shader failures are reported as
// *CompilationError or *LinkError.
func New(rows, columns int, palette Palette, atlas *Atlas, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	state, err := NewState(rows, columns)
	if err != nil {
		return nil, err
	}
	if err := palette.validate(); err != nil {
		return nil, err
	}
	if atlas == nil {
		return nil, fmt.Errorf("%w: nil atlas", ErrInvalidAtlas)
	}

	r := &Renderer{
		state:     state,
		palette:   palette.Clone(),
		atlas:     atlas.Clone(),
		slots:     o.slots,
		crossfade: o.crossfade,
	}
	if r.slots == nil {
		r.slots = backend.NewSlotAllocator(0)
	}

	if err := r.init(o); err != nil {
		r.release()
		return nil, err
	}
	Logger().Debug("textmode: renderer created",
		"rows", rows, "columns", columns, "device", r.dev.Name(),
		"glyph", fmt.Sprintf("%dx%d", r.atlas.Width(), r.atlas.Height()))
	return r, nil
}

func (r *Renderer) init(o options) error {
	compiled, err := backend.CompileProgram("textmode-grid", o.source)
	if err != nil {
		return err
	}

	switch {
	case o.device != nil:
		r.dev = o.device
	case o.backendName != "":
		r.dev, err = backend.Open(o.backendName)
		r.ownsDev = err == nil
	default:
		r.dev, err = backend.InitDefault()
		r.ownsDev = err == nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	if r.stateTex, err = newBinding(r.dev, r.slots, "state", backend.FormatRGBA8Uint, r.state.Bytes); err != nil {
		return err
	}
	if r.fontTex, err = newBinding(r.dev, r.slots, "font", backend.FormatRGBA8Uint, r.atlas.Bytes); err != nil {
		return err
	}
	if r.paletteTex, err = newBinding(r.dev, r.slots, "palette", backend.FormatRGB8Srgb, r.paletteBytes); err != nil {
		return err
	}

	if r.program, err = r.dev.CreateProgram(compiled); err != nil {
		return fmt.Errorf("textmode: create program: %w", err)
	}
	if err := r.setViewport(); err != nil {
		return err
	}
	return r.draw()
}

func (r *Renderer) paletteBytes() []byte { return r.palette }

// release frees everything the renderer holds, in reverse creation order.
func (r *Renderer) release() {
	if r.program != nil {
		r.dev.DestroyProgram(r.program)
		r.program = nil
	}
	for _, b := range []*binding{r.paletteTex, r.fontTex, r.stateTex} {
		if b != nil {
			b.release()
		}
	}
	r.paletteTex, r.fontTex, r.stateTex = nil, nil, nil
	if r.dev != nil && r.ownsDev {
		r.dev.Close()
	}
	r.dev = nil
}

func (r *Renderer) uniforms() backend.GridUniforms {
	//nolint:gosec // grid, glyph and palette sizes are validated positive and small
	var (
		gw   = uint32(r.atlas.Width())
		gh   = uint32(r.atlas.Height())
		rows = uint32(r.state.Rows())
		cols = uint32(r.state.Columns())
	)
	return backend.GridUniforms{
		Columns:      cols,
		Rows:         rows,
		GlyphWidth:   gw,
		GlyphHeight:  gh,
		HeightPixels: rows * gh,
		GlyphCount:   uint32(r.atlas.Glyphs()),      //nolint:gosec // <= 256
		GlyphTexels:  uint32(r.atlas.GlyphTexels()), //nolint:gosec // small
		PaletteSize:  uint32(r.palette.Len()),       //nolint:gosec // <= 256
		Fader:        float32(r.crossfade),
	}
}

func (r *Renderer) bindings() backend.Bindings {
	return backend.Bindings{State: r.stateTex.tex, Font: r.fontTex.tex, Palette: r.paletteTex.tex}
}

func (r *Renderer) setViewport() error {
	w, h := r.Size()
	if err := r.dev.SetViewport(w, h); err != nil {
		return fmt.Errorf("textmode: viewport %dx%d: %w", w, h, err)
	}
	return nil
}

func (r *Renderer) draw() error {
	if err := r.dev.Draw(r.program, r.bindings(), r.uniforms()); err != nil {
		return fmt.Errorf("textmode: render: %w", err)
	}
	return nil
}

// Rows returns the number of grid rows, or 0 after Dispose.
func (r *Renderer) Rows() int {
	if r.disposed {
		return 0
	}
	return r.state.Rows()
}

// Columns returns the number of grid columns, or 0 after Dispose.
func (r *Renderer) Columns() int {
	if r.disposed {
		return 0
	}
	return r.state.Columns()
}

// Size returns the render surface size in pixels, or 0x0 after Dispose.
func (r *Renderer) Size() (width, height int) {
	if r.disposed {
		return 0, 0
	}
	return r.state.Columns() * r.atlas.Width(), r.state.Rows() * r.atlas.Height()
}

// Crossfade returns the current crossfade factor, or 0 after Dispose.
func (r *Renderer) Crossfade() float64 {
	if r.disposed {
		return 0
	}
	return r.crossfade
}

// Disposed reports whether Dispose has been called.
func (r *Renderer) Disposed() bool { return r.disposed }

// SetCrossfade sets the factor used by the next Render. 1 shows the composed
// frame, 0 keeps the previous one. Values outside [0,1] extrapolate.
func (r *Renderer) SetCrossfade(f float64) error {
	if r.disposed {
		return ErrDisposed
	}
	r.crossfade = f
	return nil
}

// Set writes the cell at index. The change is not visible until UploadState.
func (r *Renderer) Set(index int, c Cell) error {
	if r.disposed {
		return ErrDisposed
	}
	return r.state.Set(index, c)
}

// SetAt writes the cell at (row, column).
func (r *Renderer) SetAt(row, column int, c Cell) error {
	if r.disposed {
		return ErrDisposed
	}
	index, err := r.state.Index(row, column)
	if err != nil {
		return err
	}
	return r.state.Set(index, c)
}

// Cell reads the CPU-side cell at index.
func (r *Renderer) Cell(index int) (Cell, error) {
	if r.disposed {
		return Cell{}, ErrDisposed
	}
	return r.state.At(index)
}

// Poke writes raw state bytes at a byte offset.
func (r *Renderer) Poke(offset int, b ...byte) error {
	if r.disposed {
		return ErrDisposed
	}
	return r.state.Poke(offset, b...)
}

// WriteString writes s into consecutive cells starting at index.
// See State.WriteString.
func (r *Renderer) WriteString(index int, s string, ink, paper, tint byte) (int, error) {
	if r.disposed {
		return 0, ErrDisposed
	}
	return r.state.WriteString(index, s, ink, paper, tint)
}

// Clear zeroes the CPU-side grid.
func (r *Renderer) Clear() error {
	if r.disposed {
		return ErrDisposed
	}
	r.state.Clear()
	return nil
}

// Palette returns the renderer's palette for in-place edits. Edits take
// effect after UploadPalette. It returns nil after Dispose.
func (r *Renderer) Palette() Palette {
	if r.disposed {
		return nil
	}
	return r.palette
}

// Atlas returns the renderer's glyph atlas for in-place edits. Edits take
// effect after UploadFont. It returns nil after Dispose.
func (r *Renderer) Atlas() *Atlas {
	if r.disposed {
		return nil
	}
	return r.atlas
}

// UploadState pushes the grid to the device.
func (r *Renderer) UploadState() error {
	if r.disposed {
		return ErrDisposed
	}
	return r.stateTex.upload()
}

// UploadPalette pushes the palette to the device.
func (r *Renderer) UploadPalette() error {
	if r.disposed {
		return ErrDisposed
	}
	return r.paletteTex.upload()
}

// UploadFont pushes the glyph atlas to the device.
func (r *Renderer) UploadFont() error {
	if r.disposed {
		return ErrDisposed
	}
	return r.fontTex.upload()
}

// Render draws a frame from the uploaded textures with the current
// crossfade factor.
func (r *Renderer) Render() error {
	if r.disposed {
		return ErrDisposed
	}
	return r.draw()
}

// RenderCrossfade sets the crossfade factor to f and draws a frame.
func (r *Renderer) RenderCrossfade(f float64) error {
	if r.disposed {
		return ErrDisposed
	}
	r.crossfade = f
	return r.draw()
}

// Resize replaces the grid with a zeroed rows x columns grid, recreates the
// state texture, resizes the surface and renders. Font and palette
// textures are kept. If the grid, the state texture or the surface cannot
// be created the renderer keeps its old grid, textures and frame.
func (r *Renderer) Resize(rows, columns int) error {
	if r.disposed {
		return ErrDisposed
	}
	state, err := NewState(rows, columns)
	if err != nil {
		return err
	}
	tex, err := r.stateTex.replacement(state.Bytes)
	if err != nil {
		return err
	}
	w, h := columns*r.atlas.Width(), rows*r.atlas.Height()
	if err := r.dev.SetViewport(w, h); err != nil {
		tex.destroy()
		return fmt.Errorf("textmode: viewport %dx%d: %w", w, h, err)
	}

	r.state = state
	r.stateTex.adopt(tex)
	Logger().Debug("textmode: renderer resized", "rows", rows, "columns", columns)
	return r.draw()
}

// Snapshot reads back the last rendered frame.
func (r *Renderer) Snapshot() (*Pixmap, error) {
	if r.disposed {
		return nil, ErrDisposed
	}
	w, h := r.Size()
	pm := NewPixmap(w, h)
	if err := r.dev.ReadPixels(pm.data); err != nil {
		return nil, fmt.Errorf("textmode: read pixels: %w", err)
	}
	return pm, nil
}

// Dispose releases every device resource. Later calls, including a second
// Dispose, return ErrDisposed.
func (r *Renderer) Dispose() error {
	if r.disposed {
		return ErrDisposed
	}
	r.release()
	r.disposed = true
	Logger().Debug("textmode: renderer disposed")
	return nil
}

// IsShaderError reports whether err came from compiling or linking the
// grid program.
func IsShaderError(err error) bool {
	var ce *CompilationError
	var le *LinkError
	return errors.As(err, &ce) || errors.As(err, &le)
}
