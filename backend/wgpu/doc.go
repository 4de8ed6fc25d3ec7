// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides a GPU device for textmode built on the gogpu/wgpu
// hardware abstraction layer.
//
// Importing the package registers the device under backend.BackendWGPU,
// which backend.InitDefault tries before the software device:
//
//	import (
//	    _ "github.com/gogpu/textmode/backend/wgpu"
//	    _ "github.com/gogpu/textmode/backend/wgpu/vulkan"
//	)
//
// The second import links the Vulkan HAL. Without a registered HAL backend
// Init fails and the registry falls back to software.
//
// # Resources
//
// Grid state, font and palette are 1-D textures. State and font use
// RGBA8Uint; the palette is expanded to RGBA8UnormSrgb so the shader reads
// linear colour. The output alternates between two RGBA8UnormSrgb targets:
// each draw samples the previous one as the held frame and renders into the
// other.
//
// # Sharing a device
//
// NewWithHAL wraps an existing hal.Device and queue. NewFromProvider takes a
// gpucontext.DeviceProvider whose concrete type also exposes HalDevice and
// HalQueue. A shared device is not destroyed by Close.
package wgpu
