// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

// Sources holds texture contents in upload layout.
type Sources struct {
	State   []byte // 4 bytes per cell: ordinal, ink, paper, tint
	Font    []byte // 1 bpp glyph rows, MSB leftmost
	Palette []byte // RGB triples, sRGB
}

// TintAttenuation returns the factor applied to the foreground of a cell
// with the given tint: 1 at tint 0, falling linearly to about 0.5 at 255.
func TintAttenuation(tint uint8) float64 {
	return 1 - float64(tint)/510
}

// ComposeRows runs the grid program for surface rows [y0, y1).
//
// held is the RGBA8 sRGB frame of u.Width() x u.Height() pixels. Each pixel
// is replaced by mix(held, composed, u.Fader), computed in linear light.
// Cell, glyph and palette indices wrap, so no read leaves the sources as
// long as u passed Check against the textures they came from.
func ComposeRows(held []byte, src Sources, u GridUniforms, y0, y1 int) {
	var (
		width     = int(u.Columns * u.GlyphWidth)
		gw        = int(u.GlyphWidth)
		gh        = int(u.GlyphHeight)
		columns   = int(u.Columns)
		cells     = int(u.Columns * u.Rows)
		glyphs    = int(u.GlyphCount)
		glyphSize = int(u.GlyphTexels) * 4
		entries   = int(u.PaletteSize)
		rowBytes  = (gw + 7) / 8
		fader     = float64(u.Fader)
	)

	for y := y0; y < y1; y++ {
		row, ly := y/gh, y%gh
		line := held[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			column, lx := x/gw, x%gw
			idx := (row*columns + column) % cells
			cell := src.State[idx*4 : idx*4+4]

			ordinal := int(cell[0]) % glyphs
			bits := src.Font[ordinal*glyphSize+ly*rowBytes+lx/8]
			lit := bits>>(7-uint(lx%8))&1 == 1

			var entry int
			scale := 1.0
			if lit {
				entry = int(cell[1]) % entries
				scale = TintAttenuation(cell[3])
			} else {
				entry = int(cell[2]) % entries
			}
			rgb := src.Palette[entry*3 : entry*3+3]

			px := line[x*4 : x*4+4]
			for c := 0; c < 3; c++ {
				composed := srgbToLinear[rgb[c]] * scale
				prev := srgbToLinear[px[c]]
				px[c] = LinearToSRGB(prev*(1-fader) + composed*fader)
			}
			px[3] = 0xFF
		}
	}
}
