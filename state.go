// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// unmappable is written for runes code page 437 cannot represent.
const unmappable = '?'

// State is the packed grid buffer: rows*columns cells of CellSize bytes,
// row major, cell i at byte offset i*CellSize.
//
// Every write is bounds checked; a rejected write leaves the buffer as it was.
type State struct {
	rows, columns int
	data          []byte
}

// NewState allocates a zero-filled grid.
func NewState(rows, columns int) (*State, error) {
	s := &State{}
	if err := s.Reset(rows, columns); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset reallocates the buffer for a new grid size. Prior contents are
// discarded, not reflowed.
func (s *State) Reset(rows, columns int) error {
	if rows <= 0 || columns <= 0 {
		return fmt.Errorf("%w: %dx%d grid", ErrDimensionMismatch, rows, columns)
	}
	s.rows, s.columns = rows, columns
	s.data = make([]byte, rows*columns*CellSize)
	return nil
}

// Rows returns the number of rows.
func (s *State) Rows() int { return s.rows }

// Columns returns the number of columns.
func (s *State) Columns() int { return s.columns }

// Len returns the number of cells.
func (s *State) Len() int { return s.rows * s.columns }

// Bytes returns the live buffer. It is the source a state texture uploads.
func (s *State) Bytes() []byte { return s.data }

// Index converts a row and column to a cell index.
func (s *State) Index(row, column int) (int, error) {
	if row < 0 || row >= s.rows || column < 0 || column >= s.columns {
		return 0, fmt.Errorf("%w: row %d column %d in %dx%d grid",
			ErrDimensionMismatch, row, column, s.rows, s.columns)
	}
	return row*s.columns + column, nil
}

func (s *State) checkIndex(index int) error {
	if index < 0 || index >= s.Len() {
		return fmt.Errorf("%w: cell %d of %d", ErrDimensionMismatch, index, s.Len())
	}
	return nil
}

// Set writes all four fields of the cell at index.
func (s *State) Set(index int, c Cell) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	b := c.Bytes()
	copy(s.data[index*CellSize:], b[:])
	return nil
}

// At reads the cell at index.
func (s *State) At(index int) (Cell, error) {
	if err := s.checkIndex(index); err != nil {
		return Cell{}, err
	}
	return CellFromBytes(s.data[index*CellSize:]), nil
}

// Poke writes raw bytes starting at a byte offset. The whole write must fit.
func (s *State) Poke(offset int, b ...byte) error {
	if offset < 0 || offset > len(s.data)-len(b) {
		return fmt.Errorf("%w: %d bytes at offset %d of %d",
			ErrDimensionMismatch, len(b), offset, len(s.data))
	}
	copy(s.data[offset:], b)
	return nil
}

// Peek reads the byte at offset.
func (s *State) Peek(offset int) (byte, error) {
	if offset < 0 || offset >= len(s.data) {
		return 0, fmt.Errorf("%w: offset %d of %d", ErrDimensionMismatch, offset, len(s.data))
	}
	return s.data[offset], nil
}

// WriteString writes str one cell per character starting at index, with
// the given colours and tint. Characters are mapped through code page 437;
// runes outside it become '?'. If str does not fit before the end of the
// grid nothing is written.
func (s *State) WriteString(index int, str string, ink, paper, tint byte) (int, error) {
	if err := s.checkIndex(index); err != nil {
		return 0, err
	}
	codes := EncodeCP437(str)
	if end := index + len(codes); end > s.Len() {
		return 0, fmt.Errorf("%w: %d characters at cell %d of %d",
			ErrDimensionMismatch, len(codes), index, s.Len())
	}
	for i, code := range codes {
		off := (index + i) * CellSize
		s.data[off], s.data[off+1], s.data[off+2], s.data[off+3] = code, ink, paper, tint
	}
	return len(codes), nil
}

// Fill sets every cell to c.
func (s *State) Fill(c Cell) {
	b := c.Bytes()
	for off := 0; off < len(s.data); off += CellSize {
		copy(s.data[off:], b[:])
	}
}

// Clear zeroes every cell.
func (s *State) Clear() {
	clear(s.data)
}

// EncodeCP437 maps str to code page 437 ordinals, one per rune.
func EncodeCP437(str string) []byte {
	out := make([]byte, 0, len(str))
	for _, r := range str {
		b, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			b = unmappable
		}
		out = append(out, b)
	}
	return out
}

// DecodeCP437 returns the rune code page 437 assigns to ordinal.
func DecodeCP437(ordinal byte) rune {
	return charmap.CodePage437.DecodeByte(ordinal)
}
