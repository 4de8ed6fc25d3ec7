// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Package errors.
var (
	// ErrNotAvailable is returned when no device can be created.
	ErrNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when a device is used before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrClosed is returned when a device is used after Close.
	ErrClosed = errors.New("backend: device closed")

	// ErrInvalidTexture is returned for handles that belong to another
	// device or were already destroyed.
	ErrInvalidTexture = errors.New("backend: invalid texture")

	// ErrTextureSize is returned when upload data does not match the
	// texture's texel count and stride.
	ErrTextureSize = errors.New("backend: texture size mismatch")

	// ErrInvalidProgram is returned for program handles that belong to
	// another device or were already destroyed.
	ErrInvalidProgram = errors.New("backend: invalid program")

	// ErrInvalidViewport is returned for empty or oversized viewports.
	ErrInvalidViewport = errors.New("backend: invalid viewport")

	// ErrBindingMismatch is returned when the bound textures do not agree
	// with the grid uniforms.
	ErrBindingMismatch = errors.New("backend: bindings do not match grid")

	// ErrNoSlots is returned when a slot allocator is exhausted.
	ErrNoSlots = errors.New("backend: no free texture slots")
)

// TextureFormat describes how texels of a 1-D texture are laid out and sampled.
type TextureFormat uint8

// Texture formats used by the grid renderer.
const (
	// FormatRGBA8Uint stores four raw bytes per texel, read back as integers.
	// Used for the cell state and the glyph atlas.
	FormatRGBA8Uint TextureFormat = iota + 1

	// FormatRGB8Srgb stores an RGB triple per texel, decoded from sRGB to
	// linear on sampling. Used for the palette.
	FormatRGB8Srgb
)

// Stride returns the number of source bytes per texel.
func (f TextureFormat) Stride() int {
	switch f {
	case FormatRGBA8Uint:
		return 4
	case FormatRGB8Srgb:
		return 3
	default:
		return 0
	}
}

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA8Uint:
		return "RGBA8Uint"
	case FormatRGB8Srgb:
		return "RGB8Srgb"
	default:
		return fmt.Sprintf("TextureFormat(%d)", uint8(f))
	}
}

// TextureDescriptor describes a 1-D texture.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Slot is the texture unit assigned by the owner's SlotAllocator.
	Slot int

	// Format selects stride and sampling mode.
	Format TextureFormat

	// Texels is the texture width.
	Texels int
}

// Size returns the number of source bytes a full upload carries.
func (d TextureDescriptor) Size() int {
	return d.Texels * d.Format.Stride()
}

// Validate checks the format, texel count and slot.
func (d TextureDescriptor) Validate() error {
	if d.Format.Stride() == 0 {
		return fmt.Errorf("backend: texture %q: unknown format %v", d.Label, d.Format)
	}
	if d.Texels <= 0 {
		return fmt.Errorf("backend: texture %q: %d texels: %w", d.Label, d.Texels, ErrTextureSize)
	}
	if d.Slot < 0 {
		return fmt.Errorf("backend: texture %q: negative slot %d", d.Label, d.Slot)
	}
	return nil
}

// Texture is an opaque device texture handle.
type Texture interface {
	// Descriptor returns the descriptor the texture was created with.
	Descriptor() TextureDescriptor
}

// Program is an opaque handle to a program created on a device.
type Program interface {
	// Label returns the program's debug label.
	Label() string
}

// Bindings groups the three textures a draw samples.
type Bindings struct {
	State   Texture
	Font    Texture
	Palette Texture
}

// GridUniforms carries the grid shape and crossfade factor to the program.
type GridUniforms struct {
	Columns      uint32
	Rows         uint32
	GlyphWidth   uint32
	GlyphHeight  uint32
	HeightPixels uint32
	GlyphCount   uint32
	GlyphTexels  uint32
	PaletteSize  uint32
	Fader        float32
}

// UniformSize is the size of the encoded uniform block in bytes.
const UniformSize = 48

// Bytes encodes u with the layout of the WGSL Grid struct.
func (u GridUniforms) Bytes() []byte {
	b := make([]byte, UniformSize)
	binary.LittleEndian.PutUint32(b[0:], u.Columns)
	binary.LittleEndian.PutUint32(b[4:], u.Rows)
	binary.LittleEndian.PutUint32(b[8:], u.GlyphWidth)
	binary.LittleEndian.PutUint32(b[12:], u.GlyphHeight)
	binary.LittleEndian.PutUint32(b[16:], u.HeightPixels)
	binary.LittleEndian.PutUint32(b[20:], u.GlyphCount)
	binary.LittleEndian.PutUint32(b[24:], u.GlyphTexels)
	binary.LittleEndian.PutUint32(b[28:], u.PaletteSize)
	binary.LittleEndian.PutUint32(b[32:], math.Float32bits(u.Fader))
	return b
}

// Width returns the surface width in pixels.
func (u GridUniforms) Width() int { return int(u.Columns * u.GlyphWidth) }

// Height returns the surface height in pixels.
func (u GridUniforms) Height() int { return int(u.Rows * u.GlyphHeight) }

// Check verifies that b is consistent with u.
func (u GridUniforms) Check(b Bindings) error {
	if b.State == nil || b.Font == nil || b.Palette == nil {
		return fmt.Errorf("%w: missing texture", ErrBindingMismatch)
	}
	if u.Columns == 0 || u.Rows == 0 || u.GlyphWidth == 0 || u.GlyphHeight == 0 {
		return fmt.Errorf("%w: empty grid", ErrBindingMismatch)
	}
	if u.GlyphCount == 0 || u.GlyphTexels == 0 || u.PaletteSize == 0 {
		return fmt.Errorf("%w: empty font or palette", ErrBindingMismatch)
	}
	if rowBytes := (u.GlyphWidth + 7) / 8; u.GlyphTexels*4 < rowBytes*u.GlyphHeight {
		return fmt.Errorf("%w: %d texels per glyph cannot hold %dx%d", ErrBindingMismatch,
			u.GlyphTexels, u.GlyphWidth, u.GlyphHeight)
	}
	if u.HeightPixels != u.Rows*u.GlyphHeight {
		return fmt.Errorf("%w: height %d, want %d", ErrBindingMismatch, u.HeightPixels, u.Rows*u.GlyphHeight)
	}
	sd, fd, pd := b.State.Descriptor(), b.Font.Descriptor(), b.Palette.Descriptor()
	if sd.Format != FormatRGBA8Uint || fd.Format != FormatRGBA8Uint || pd.Format != FormatRGB8Srgb {
		return fmt.Errorf("%w: formats %v/%v/%v", ErrBindingMismatch, sd.Format, fd.Format, pd.Format)
	}
	if sd.Texels != int(u.Columns*u.Rows) {
		return fmt.Errorf("%w: state has %d cells, grid has %d", ErrBindingMismatch, sd.Texels, u.Columns*u.Rows)
	}
	if fd.Texels < int(u.GlyphCount*u.GlyphTexels) {
		return fmt.Errorf("%w: font has %d texels, need %d", ErrBindingMismatch, fd.Texels, u.GlyphCount*u.GlyphTexels)
	}
	if pd.Texels < int(u.PaletteSize) {
		return fmt.Errorf("%w: palette has %d entries, need %d", ErrBindingMismatch, pd.Texels, u.PaletteSize)
	}
	return nil
}

// Device is the primitive set the grid renderer draws with.
//
// A Device is owned by one renderer and is not safe for concurrent use.
// WriteTexture copies its input: later changes to the caller's buffer are
// not visible until the next WriteTexture.
type Device interface {
	// Name returns the registry name of the device.
	Name() string

	// Init prepares the device. It must be called before any other method.
	Init() error

	// CreateTexture allocates a zeroed 1-D texture.
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture replaces the full contents of tex with data.
	WriteTexture(tex Texture, data []byte) error

	// DestroyTexture releases tex. Destroying a nil or released texture is a no-op.
	DestroyTexture(tex Texture)

	// CreateProgram turns a compiled program into a device program.
	CreateProgram(p *CompiledProgram) (Program, error)

	// DestroyProgram releases p.
	DestroyProgram(p Program)

	// SetViewport resizes the render surface and clears the held frame.
	// On error the previous surface and held frame are kept.
	SetViewport(width, height int) error

	// Draw composes one frame from the bound textures and blends it with
	// the held frame by u.Fader. The result becomes the new held frame.
	Draw(p Program, b Bindings, u GridUniforms) error

	// ReadPixels copies the held frame into dst as RGBA8, row major.
	// len(dst) must be width*height*4.
	ReadPixels(dst []byte) error

	// Close releases every resource owned by the device.
	Close()
}
