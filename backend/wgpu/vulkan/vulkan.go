// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !android && !js

// Package vulkan links the Vulkan HAL so the wgpu device can open a GPU.
//
//	import _ "github.com/gogpu/textmode/backend/wgpu/vulkan"
package vulkan

import (
	// Registers the Vulkan backend via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)
