// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import "fmt"

// DefaultSlotLimit matches the minimum number of sampled textures per shader
// stage guaranteed by WebGPU.
const DefaultSlotLimit = 16

// SlotAllocator hands out texture unit slots to one owner.
//
// Acquire always returns the lowest free slot, so a fresh allocator gives
// 0, 1, 2 to the first three textures. Allocators are not shared between
// renderers and are not safe for concurrent use.
type SlotAllocator struct {
	used []bool
}

// NewSlotAllocator returns an allocator with limit slots.
// A non-positive limit selects DefaultSlotLimit.
func NewSlotAllocator(limit int) *SlotAllocator {
	if limit <= 0 {
		limit = DefaultSlotLimit
	}
	return &SlotAllocator{used: make([]bool, limit)}
}

// Acquire reserves the lowest free slot.
func (a *SlotAllocator) Acquire() (int, error) {
	for i, used := range a.used {
		if !used {
			a.used[i] = true
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w (limit %d)", ErrNoSlots, len(a.used))
}

// Release frees slot. Releasing a free or out-of-range slot is a no-op.
func (a *SlotAllocator) Release(slot int) {
	if slot >= 0 && slot < len(a.used) {
		a.used[slot] = false
	}
}

// InUse returns the number of reserved slots.
func (a *SlotAllocator) InUse() int {
	n := 0
	for _, used := range a.used {
		if used {
			n++
		}
	}
	return n
}

// Limit returns the total number of slots.
func (a *SlotAllocator) Limit() int { return len(a.used) }
