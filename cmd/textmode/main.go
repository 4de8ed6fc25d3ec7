// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command textmode renders a text grid scene to a PNG file or a window.
//
// Without -config it renders the default banner scene. Scenes are YAML:
//
//	rows: 10
//	columns: 20
//	fader: 0.5
//	palette:
//	  - {index: 0, rgb: [200, 0, 0]}
//	messages:
//	  - {text: "hello", row: 4, column: 7, ink: 15, paper: 0}
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/textmode"

	// GPU device, tried before the software device.
	_ "github.com/gogpu/textmode/backend/wgpu"
	_ "github.com/gogpu/textmode/backend/wgpu/vulkan"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML scene file")
		output     = flag.String("output", "", "PNG output file (overrides the scene)")
		backend    = flag.String("backend", "", "device name: wgpu or software (default: best available)")
		fader      = flag.Float64("fader", -1, "crossfade factor (overrides the scene when >= 0)")
		window     = flag.Bool("window", false, "open a preview window")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		textmode.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			log.Fatalf("textmode: %v", err)
		}
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *fader >= 0 {
		cfg.Fader = *fader
	}
	if *window {
		cfg.Window.Enabled = true
	}

	scene, err := NewScene(cfg)
	if err != nil {
		log.Fatalf("textmode: %v", err)
	}
	defer func() { _ = scene.Close() }()

	if cfg.Output != "" {
		frame, err := scene.Snapshot()
		if err != nil {
			log.Fatalf("textmode: %v", err)
		}
		if err := frame.SavePNG(cfg.Output); err != nil {
			log.Fatalf("textmode: save: %v", err)
		}
		log.Printf("textmode: saved %s (%dx%d)", cfg.Output, frame.Width(), frame.Height())
	}

	if cfg.Window.Enabled {
		if err := runWindow(scene, cfg.Window); err != nil {
			log.Fatalf("textmode: window: %v", err)
		}
	}
}
