// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/textmode"
)

// Scene is a renderer populated from a Config.
type Scene struct {
	cfg Config
	r   *textmode.Renderer
	rng *rand.Rand
}

// NewScene creates the renderer, applies palette overrides and messages,
// uploads everything and renders one frame at cfg.Fader.
func NewScene(cfg Config) (*Scene, error) {
	atlas, err := textmode.DefaultAtlas()
	if err != nil {
		return nil, err
	}
	var opts []textmode.Option
	if cfg.Backend != "" {
		opts = append(opts, textmode.WithBackend(cfg.Backend))
	}
	r, err := textmode.New(cfg.Rows, cfg.Columns, textmode.DefaultPalette(), atlas, opts...)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	s := &Scene{cfg: cfg, r: r, rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))}
	if err := s.populate(); err != nil {
		_ = r.Dispose()
		return nil, err
	}
	return s, nil
}

func (s *Scene) populate() error {
	pal := s.r.Palette()
	for _, p := range s.cfg.Palette {
		if err := pal.Set(p.Index, p.RGB[0], p.RGB[1], p.RGB[2]); err != nil {
			return err
		}
	}
	if err := s.r.UploadPalette(); err != nil {
		return err
	}
	if err := s.writeMessages(); err != nil {
		return err
	}
	return s.r.RenderCrossfade(s.cfg.Fader)
}

// writeMessages writes every message, drawing fresh random tints, and
// uploads the grid.
func (s *Scene) writeMessages() error {
	for _, m := range s.cfg.Messages {
		start := m.Row*s.cfg.Columns + m.Column
		if _, err := s.r.WriteString(start, m.Text, m.Ink, m.Paper, m.Tint); err != nil {
			return fmt.Errorf("message %q: %w", m.Text, err)
		}
		if !m.RandomTint {
			continue
		}
		for i := range textmode.EncodeCP437(m.Text) {
			if err := s.r.Poke((start+i)*textmode.CellSize+3, byte(s.rng.IntN(256))); err != nil {
				return err
			}
		}
	}
	return s.r.UploadState()
}

// Retint draws new random tints and renders a crossfaded frame.
func (s *Scene) Retint() error {
	if err := s.writeMessages(); err != nil {
		return err
	}
	return s.r.RenderCrossfade(s.cfg.Fader)
}

// Step renders one more frame with the current contents.
func (s *Scene) Step() error {
	return s.r.RenderCrossfade(s.cfg.Fader)
}

// Snapshot reads back the current frame.
func (s *Scene) Snapshot() (*textmode.Pixmap, error) {
	return s.r.Snapshot()
}

// Size returns the frame size in pixels.
func (s *Scene) Size() (width, height int) {
	return s.r.Size()
}

// Close releases the renderer.
func (s *Scene) Close() error {
	return s.r.Dispose()
}
