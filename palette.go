// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import (
	"fmt"
	"image/color"
)

// MaxPaletteEntries is the largest palette a cell byte can index.
const MaxPaletteEntries = 256

// Palette is a table of RGB triples in sRGB, indexed by a cell's Ink and
// Paper bytes. Indexes past the end wrap around.
type Palette []byte

// NewPalette validates rgb and returns a copy of it as a Palette.
func NewPalette(rgb []byte) (Palette, error) {
	if len(rgb) == 0 || len(rgb)%3 != 0 || len(rgb) > MaxPaletteEntries*3 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidPalette, len(rgb))
	}
	return Palette(append([]byte(nil), rgb...)), nil
}

// Len returns the number of entries.
func (p Palette) Len() int { return len(p) / 3 }

func (p Palette) wrap(index int) int {
	n := p.Len()
	index %= n
	if index < 0 {
		index += n
	}
	return index
}

// RGB returns the entry at index, wrapping.
func (p Palette) RGB(index int) (r, g, b uint8) {
	i := p.wrap(index) * 3
	return p[i], p[i+1], p[i+2]
}

// Color returns the entry at index as an opaque color.
func (p Palette) Color(index int) color.RGBA {
	r, g, b := p.RGB(index)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// Set replaces the entry at index. The index must exist.
func (p Palette) Set(index int, r, g, b uint8) error {
	if index < 0 || index >= p.Len() {
		return fmt.Errorf("%w: entry %d of %d", ErrInvalidPalette, index, p.Len())
	}
	p[index*3], p[index*3+1], p[index*3+2] = r, g, b
	return nil
}

// Clone returns an independent copy of p.
func (p Palette) Clone() Palette {
	return append(Palette(nil), p...)
}

func (p Palette) validate() error {
	if len(p) == 0 || len(p)%3 != 0 || len(p) > MaxPaletteEntries*3 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidPalette, len(p))
	}
	return nil
}

// vgaColors are the sixteen text mode colours as 6-bit DAC values.
var vgaColors = [16][3]uint8{
	{0, 0, 0},    // black
	{0, 0, 42},   // blue
	{0, 42, 0},   // green
	{0, 42, 42},  // cyan
	{42, 0, 0},   // red
	{42, 0, 42},  // magenta
	{42, 21, 0},  // brown
	{42, 42, 42}, // light grey
	{21, 21, 21}, // dark grey
	{21, 21, 63}, // light blue
	{21, 63, 21}, // light green
	{21, 63, 63}, // light cyan
	{63, 21, 21}, // light red
	{63, 21, 63}, // light magenta
	{63, 63, 21}, // yellow
	{63, 63, 63}, // white
}

// DefaultPalette returns a 256 entry palette: the sixteen VGA text colours,
// a 6x6x6 colour cube and a 24 step grey ramp.
func DefaultPalette() Palette {
	p := make(Palette, 0, MaxPaletteEntries*3)
	dac := func(v int) uint8 { return uint8(v * 255 / 63) } //nolint:gosec // v <= 63

	for _, c := range vgaColors {
		p = append(p, dac(int(c[0])), dac(int(c[1])), dac(int(c[2])))
	}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p = append(p, uint8(r*255/5), uint8(g*255/5), uint8(b*255/5)) //nolint:gosec // <= 255
			}
		}
	}
	for i := 0; i < 24; i++ {
		gray := uint8(i * 255 / 23) //nolint:gosec // <= 255
		p = append(p, gray, gray, gray)
	}
	return p
}
