// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

// CellSize is the number of bytes one cell occupies in the grid state.
const CellSize = 4

// Cell is the state of one grid position.
//
// The byte layout is fixed: Ordinal, Ink, Paper, Tint.
type Cell struct {
	// Ordinal selects the glyph (character code).
	Ordinal byte
	// Ink is the foreground palette index.
	Ink byte
	// Paper is the background palette index.
	Paper byte
	// Tint dims the foreground: 0 leaves it untouched, 255 roughly halves it.
	Tint byte
}

// Bytes returns the packed form of c.
func (c Cell) Bytes() [CellSize]byte {
	return [CellSize]byte{c.Ordinal, c.Ink, c.Paper, c.Tint}
}

// CellFromBytes decodes the first CellSize bytes of b.
func CellFromBytes(b []byte) Cell {
	_ = b[CellSize-1]
	return Cell{Ordinal: b[0], Ink: b[1], Paper: b[2], Tint: b[3]}
}
