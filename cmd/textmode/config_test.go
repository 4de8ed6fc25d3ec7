// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(DefaultBanner) != cfg.Columns {
		t.Errorf("banner has %d characters, grid has %d columns", len(DefaultBanner), cfg.Columns)
	}
	if cfg.Fader != 0.4 || !cfg.Messages[0].RandomTint {
		t.Errorf("default scene = %+v", cfg)
	}
}

func TestLoadConfigTestdata(t *testing.T) {
	tests := []struct {
		file     string
		rows     int
		columns  int
		messages int
	}{
		{"palette.yaml", 10, 20, 0},
		{"banner.yaml", 3, 49, 1},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			cfg, err := LoadConfig(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Rows != tt.rows || cfg.Columns != tt.columns || len(cfg.Messages) != tt.messages {
				t.Errorf("got %dx%d with %d messages", cfg.Rows, cfg.Columns, len(cfg.Messages))
			}
		})
	}

	cfg, _ := LoadConfig(filepath.Join("testdata", "palette.yaml"))
	if len(cfg.Palette) != 1 || cfg.Palette[0].RGB != [3]uint8{200, 0, 0} {
		t.Errorf("palette = %+v", cfg.Palette)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("fader: 1\n"))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Fader != 1 || cfg.Rows != 1 || cfg.Columns != 49 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Messages) != 1 || cfg.Messages[0].Text != DefaultBanner {
		t.Errorf("omitted messages did not keep the banner: %+v", cfg.Messages)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "rows: [", "parse config"},
		{"empty grid", "rows: 0", "must be positive"},
		{"palette index", "palette: [{index: 256, rgb: [0, 0, 0]}]", "palette[0]"},
		{"message outside", "messages: [{text: x, row: 5}]", "outside the grid"},
		{"message too long", "columns: 3\nmessages: [{text: abcd}]", "runs past the end"},
		{"negative scale", "window: {scale: -1}", "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseConfig() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig() of a missing file succeeded")
	}
}
