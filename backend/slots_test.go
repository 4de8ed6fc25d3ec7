// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"testing"
)

func TestSlotAllocatorLowestFirst(t *testing.T) {
	a := NewSlotAllocator(0)
	if a.Limit() != DefaultSlotLimit {
		t.Fatalf("Limit() = %d, want %d", a.Limit(), DefaultSlotLimit)
	}
	for want := 0; want < 3; want++ {
		got, err := a.Acquire()
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		if got != want {
			t.Errorf("Acquire() = %d, want %d", got, want)
		}
	}

	a.Release(0)
	if got, _ := a.Acquire(); got != 0 {
		t.Errorf("Acquire() after Release(0) = %d, want 0", got)
	}
	if a.InUse() != 3 {
		t.Errorf("InUse() = %d, want 3", a.InUse())
	}
}

func TestSlotAllocatorIndependent(t *testing.T) {
	a, b := NewSlotAllocator(3), NewSlotAllocator(3)
	for i := 0; i < 3; i++ {
		sa, _ := a.Acquire()
		sb, _ := b.Acquire()
		if sa != sb {
			t.Errorf("slot %d: allocators diverged (%d vs %d)", i, sa, sb)
		}
	}
}

func TestSlotAllocatorExhausted(t *testing.T) {
	a := NewSlotAllocator(1)
	if _, err := a.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := a.Acquire(); !errors.Is(err, ErrNoSlots) {
		t.Errorf("Acquire() error = %v, want ErrNoSlots", err)
	}
	a.Release(5)
	a.Release(-1)
	if a.InUse() != 1 {
		t.Errorf("InUse() = %d after out-of-range releases, want 1", a.InUse())
	}
}
