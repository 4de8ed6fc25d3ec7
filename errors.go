// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import (
	"errors"

	"github.com/gogpu/textmode/backend"
)

// Package errors.
var (
	// ErrDisposed is returned by every Renderer method called after Dispose.
	ErrDisposed = errors.New("textmode: renderer disposed")

	// ErrDimensionMismatch is returned when a cell index, byte offset or
	// grid size falls outside the grid. The grid is left unchanged.
	ErrDimensionMismatch = errors.New("textmode: outside grid dimensions")

	// ErrInvalidPalette is returned for palettes that are empty, longer than
	// 256 entries or not made of whole RGB triples.
	ErrInvalidPalette = errors.New("textmode: invalid palette")

	// ErrInvalidAtlas is returned for glyph atlases whose geometry and data
	// disagree.
	ErrInvalidAtlas = errors.New("textmode: invalid glyph atlas")

	// ErrNoDevice is returned when no rendering device could be opened.
	ErrNoDevice = errors.New("textmode: no device available")
)

// CompilationError reports a shader stage that failed to compile.
// Its Log field carries the compiler diagnostic verbatim.
type CompilationError = backend.CompilationError

// LinkError reports a program that failed to link.
// Its Log field carries the linker diagnostic verbatim.
type LinkError = backend.LinkError
