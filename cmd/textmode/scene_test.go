// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"path/filepath"
	"testing"

	"github.com/gogpu/textmode/backend"
)

func newTestScene(t *testing.T, cfg Config) *Scene {
	t.Helper()
	cfg.Backend = backend.BackendSoftware
	s, err := NewScene(cfg)
	if err != nil {
		t.Fatalf("NewScene() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPaletteScene(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "palette.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg.Fader = 1
	s := newTestScene(t, cfg)

	frame, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if frame.Width() != 20*16 || frame.Height() != 10*32 {
		t.Fatalf("frame = %dx%d", frame.Width(), frame.Height())
	}
	if got := frame.Pixel(100, 100); got.R != 200 || got.G != 0 || got.B != 0 {
		t.Errorf("background = %v, want (200,0,0)", got)
	}
}

func TestBannerSceneRetint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fader = 1
	s := newTestScene(t, cfg)

	before, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if err := s.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	same, _ := s.Snapshot()
	if !before.Equal(same) {
		t.Errorf("Step at fader 1 changed the frame")
	}

	if err := s.Retint(); err != nil {
		t.Fatalf("Retint() error = %v", err)
	}
	after, _ := s.Snapshot()
	if before.Equal(after) {
		t.Errorf("Retint did not change the frame")
	}
}

func TestSceneDeterministic(t *testing.T) {
	a := newTestScene(t, DefaultConfig())
	b := newTestScene(t, DefaultConfig())
	fa, _ := a.Snapshot()
	fb, _ := b.Snapshot()
	if !fa.Equal(fb) {
		t.Errorf("same seed produced different frames")
	}
}
