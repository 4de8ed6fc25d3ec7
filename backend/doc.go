// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend defines the device layer used by textmode renderers.
//
// A [Device] exposes the handful of primitives the grid renderer needs:
// one-dimensional textures with full uploads, a compiled program, a
// resizable viewport, a draw call and pixel readback. Two implementations
// ship with the module:
//
//   - [SoftwareDevice]: a CPU rasterizer that runs the decode and compose
//     routine in Go. Always registered.
//   - backend/wgpu: a GPU device on gogpu/wgpu HAL, registered when the
//     package is imported.
//
// Devices are selected through a small registry:
//
//	dev, err := backend.InitDefault()
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
// Shader sources are WGSL. [CompileProgram] runs them through the naga front
// end so every device reports the same compiler diagnostics.
package backend
