// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import (
	"fmt"
	"image"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Default glyph cell size.
const (
	DefaultGlyphWidth  = 16
	DefaultGlyphHeight = 32
)

// MaxGlyphs is the number of ordinals a cell can address.
const MaxGlyphs = 256

// Atlas is a set of monochrome glyph bitmaps indexed by ordinal.
//
// Each glyph row takes ceil(width/8) bytes with the most significant bit as
// the leftmost pixel. Glyphs are padded to a multiple of four bytes so that
// a glyph is a whole number of texels.
type Atlas struct {
	width, height int
	glyphs        int
	rowBytes      int
	glyphSize     int
	data          []byte
}

func glyphLayout(w, h int) (rowBytes, glyphSize int) {
	rowBytes = (w + 7) / 8
	glyphSize = (rowBytes*h + 3) / 4 * 4
	return rowBytes, glyphSize
}

// AtlasSize returns the number of bytes NewAtlas expects for n glyphs of w x h.
func AtlasSize(w, h, n int) int {
	_, size := glyphLayout(w, h)
	return size * n
}

// NewAtlas validates the geometry and returns an atlas holding a copy of data.
// A nil data allocates a blank atlas.
func NewAtlas(w, h, n int, data []byte) (*Atlas, error) {
	if w <= 0 || h <= 0 || n <= 0 || n > MaxGlyphs {
		return nil, fmt.Errorf("%w: %d glyphs of %dx%d", ErrInvalidAtlas, n, w, h)
	}
	rowBytes, glyphSize := glyphLayout(w, h)
	a := &Atlas{width: w, height: h, glyphs: n, rowBytes: rowBytes, glyphSize: glyphSize}
	if data == nil {
		a.data = make([]byte, glyphSize*n)
		return a, nil
	}
	if len(data) != glyphSize*n {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidAtlas, len(data), glyphSize*n)
	}
	a.data = append([]byte(nil), data...)
	return a, nil
}

// Width returns the glyph width in pixels.
func (a *Atlas) Width() int { return a.width }

// Height returns the glyph height in pixels.
func (a *Atlas) Height() int { return a.height }

// Glyphs returns the number of glyphs.
func (a *Atlas) Glyphs() int { return a.glyphs }

// GlyphTexels returns the number of 4 byte texels per glyph.
func (a *Atlas) GlyphTexels() int { return a.glyphSize / 4 }

// Bytes returns the live glyph data. It is the source a font texture uploads.
func (a *Atlas) Bytes() []byte { return a.data }

// Clone returns an independent copy of a.
func (a *Atlas) Clone() *Atlas {
	c := *a
	c.data = append([]byte(nil), a.data...)
	return &c
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func (a *Atlas) bit(ordinal, x, y int) (int, byte) {
	ordinal, x, y = wrap(ordinal, a.glyphs), wrap(x, a.width), wrap(y, a.height)
	return ordinal*a.glyphSize + y*a.rowBytes + x/8, 0x80 >> uint(x%8)
}

// Lit reports whether the pixel (x, y) of glyph ordinal is set.
// All three coordinates wrap.
func (a *Atlas) Lit(ordinal, x, y int) bool {
	off, mask := a.bit(ordinal, x, y)
	return a.data[off]&mask != 0
}

// SetPixel sets or clears one pixel of a glyph.
func (a *Atlas) SetPixel(ordinal, x, y int, on bool) error {
	if ordinal < 0 || ordinal >= a.glyphs || x < 0 || x >= a.width || y < 0 || y >= a.height {
		return fmt.Errorf("%w: pixel (%d,%d) of glyph %d", ErrInvalidAtlas, x, y, ordinal)
	}
	off, mask := a.bit(ordinal, x, y)
	if on {
		a.data[off] |= mask
	} else {
		a.data[off] &^= mask
	}
	return nil
}

// FromFace rasterizes the 256 code page 437 characters of face into
// w x h cells. Glyphs are centred horizontally and placed on a shared
// baseline; coverage of at least one half counts as lit. Control codes
// and characters the face lacks stay blank.
func FromFace(face font.Face, w, h int) (*Atlas, error) {
	a, err := NewAtlas(w, h, MaxGlyphs, nil)
	if err != nil {
		return nil, err
	}

	m := face.Metrics()
	extent := (m.Ascent + m.Descent).Ceil()
	baseline := m.Ascent.Ceil() + (h-extent)/2

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face}

	for ord := 0; ord < MaxGlyphs; ord++ {
		r := DecodeCP437(byte(ord))
		if !unicode.IsGraphic(r) || r == ' ' {
			continue
		}
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		clear(mask.Pix)
		d.Dot = fixed.Point26_6{X: (fixed.I(w) - adv) / 2, Y: fixed.I(baseline)}
		d.DrawString(string(r))

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if mask.AlphaAt(x, y).A >= 0x80 {
					off, bit := a.bit(ord, x, y)
					a.data[off] |= bit
				}
			}
		}
	}
	return a, nil
}

var (
	defaultAtlasOnce sync.Once
	defaultAtlas     *Atlas
	defaultAtlasErr  error
)

// DefaultAtlas returns a 16x32 atlas rendered from Go Mono. The atlas is
// built once; each call returns a fresh copy.
func DefaultAtlas() (*Atlas, error) {
	defaultAtlasOnce.Do(func() {
		f, err := opentype.Parse(gomono.TTF)
		if err != nil {
			defaultAtlasErr = fmt.Errorf("textmode: parse go mono: %w", err)
			return
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    26,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			defaultAtlasErr = fmt.Errorf("textmode: go mono face: %w", err)
			return
		}
		defer func() { _ = face.Close() }()
		defaultAtlas, defaultAtlasErr = FromFace(face, DefaultGlyphWidth, DefaultGlyphHeight)
	})
	if defaultAtlasErr != nil {
		return nil, defaultAtlasErr
	}
	return defaultAtlas.Clone(), nil
}
