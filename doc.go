// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package textmode renders a grid of text cells as an image.
//
// # Overview
//
// Every cell is four bytes: a character ordinal, an ink (foreground) and a
// paper (background) palette index, and a tint that dims the foreground.
// A [Renderer] keeps the grid, a [Palette] and a glyph [Atlas] on the CPU
// and mirrors each of them in a one-dimensional device texture. A program
// decodes the cell under every output pixel, looks up the glyph bit and the
// two palette colours and blends the result with the previous frame.
//
// # Quick Start
//
//	atlas, err := textmode.DefaultAtlas()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := textmode.New(25, 80, textmode.DefaultPalette(), atlas)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Dispose()
//
//	r.WriteString(0, "Hello, World", 15, 1, 0)
//	r.UploadState()
//	r.RenderCrossfade(1)
//
//	frame, _ := r.Snapshot()
//	frame.SavePNG("hello.png")
//
// # Upload and render
//
// Mutations change CPU memory only. UploadState, UploadPalette and
// UploadFont copy a whole buffer to its texture; Render draws from whatever
// was last uploaded. Rendering after a mutation without an upload
// reproduces the previous frame.
//
// # Crossfade
//
// Each draw computes mix(previous, composed, f) per pixel in linear light
// and keeps the result as the next previous frame. f = 1 shows the composed
// frame, f = 0 repeats the previous one. The previous frame is black after
// construction and after Resize.
//
// # Devices
//
// Rendering goes through a [backend.Device]. The software device is always
// available; importing github.com/gogpu/textmode/backend/wgpu registers a
// GPU device that takes priority when it initializes. Use [WithDevice] or
// [WithBackend] to choose explicitly.
//
// # Logging
//
// The package is silent by default. See [SetLogger].
package textmode
