// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import (
	"testing"

	"github.com/gogpu/textmode/backend"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.device != nil || o.backendName != "" || o.slots != nil {
		t.Errorf("defaultOptions() selects a device: %+v", o)
	}
	if o.source != backend.DefaultProgramSource() {
		t.Errorf("defaultOptions() source is not the embedded program")
	}
	if o.crossfade != 0 {
		t.Errorf("crossfade = %v, want 0", o.crossfade)
	}
}

func TestOptionsApply(t *testing.T) {
	dev := backend.NewSoftwareDevice()
	slots := backend.NewSlotAllocator(4)

	o := defaultOptions()
	for _, opt := range []Option{
		WithDevice(dev),
		WithBackend(backend.BackendSoftware),
		WithShaderSource("v", "f"),
		WithSlotAllocator(slots),
		WithCrossfade(0.5),
	} {
		opt(&o)
	}

	if o.device != dev {
		t.Errorf("device not applied")
	}
	if o.backendName != backend.BackendSoftware {
		t.Errorf("backendName = %q", o.backendName)
	}
	if o.source.Vertex != "v" || o.source.Fragment != "f" {
		t.Errorf("source = %+v", o.source)
	}
	if o.slots != slots || o.crossfade != 0.5 {
		t.Errorf("slots or crossfade not applied")
	}
}

func TestWithDeviceTakesPrecedence(t *testing.T) {
	dev := newRecordingDevice(t)
	r, err := New(1, 1, DefaultPalette(), testAtlas(t), WithBackend("nonexistent"), WithDevice(dev))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = r.Dispose() }()
	if len(dev.created) != 3 {
		t.Errorf("given device created %d textures, want 3", len(dev.created))
	}
}

func TestWithCrossfadeInitial(t *testing.T) {
	r := newTestRenderer(t, 1, 1, WithCrossfade(0.75))
	if r.Crossfade() != 0.75 {
		t.Errorf("Crossfade() = %v, want 0.75", r.Crossfade())
	}
}
