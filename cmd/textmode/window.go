// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !headless

package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// preview shows a scene in an ebiten window, retinting on a timer or
// when space is pressed.
type preview struct {
	scene  *Scene
	opts   Window
	canvas *ebiten.Image
	ticks  int
	err    error
}

func runWindow(scene *Scene, opts Window) error {
	scale := max(opts.Scale, 1)
	w, h := scene.Size()

	ebiten.SetWindowSize(w*scale, h*scale)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetVsyncEnabled(true)

	p := &preview{scene: scene, opts: opts}
	if err := ebiten.RunGame(p); err != nil {
		return err
	}
	return p.err
}

func (p *preview) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	p.ticks++

	var err error
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace),
		p.opts.Retint > 0 && p.ticks%p.opts.Retint == 0:
		err = p.scene.Retint()
	default:
		err = p.scene.Step()
	}
	if err != nil {
		p.err = err
		return ebiten.Termination
	}
	return nil
}

func (p *preview) Draw(screen *ebiten.Image) {
	frame, err := p.scene.Snapshot()
	if err != nil {
		p.err = err
		return
	}
	if p.canvas == nil {
		p.canvas = ebiten.NewImage(frame.Width(), frame.Height())
	}
	p.canvas.WritePixels(frame.Data())
	screen.DrawImage(p.canvas, nil)
}

func (p *preview) Layout(_, _ int) (int, int) {
	return p.scene.Size()
}
