// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/textmode"
	"gopkg.in/yaml.v3"
)

// DefaultBanner is the message of the default scene.
const DefaultBanner = " [8-bit, High-Definition, Bitmapped, Textmode] "

// Config describes one scene.
type Config struct {
	Rows     int            `yaml:"rows"`
	Columns  int            `yaml:"columns"`
	Backend  string         `yaml:"backend"`
	Fader    float64        `yaml:"fader"`
	Seed     uint64         `yaml:"seed"`
	Output   string         `yaml:"output"`
	Palette  []PaletteEntry `yaml:"palette"`
	Messages []Message      `yaml:"messages"`
	Window   Window         `yaml:"window"`
}

// Message is a run of text written into the grid.
type Message struct {
	Text       string `yaml:"text"`
	Row        int    `yaml:"row"`
	Column     int    `yaml:"column"`
	Ink        uint8  `yaml:"ink"`
	Paper      uint8  `yaml:"paper"`
	Tint       uint8  `yaml:"tint"`
	RandomTint bool   `yaml:"random_tint"`
}

// PaletteEntry overrides one colour of the default palette.
type PaletteEntry struct {
	Index int      `yaml:"index"`
	RGB   [3]uint8 `yaml:"rgb"`
}

// Window configures the interactive preview.
type Window struct {
	Enabled bool   `yaml:"enabled"`
	Scale   int    `yaml:"scale"`
	Title   string `yaml:"title"`
	// Retint is the number of ticks between random tint changes. 0 keeps
	// the tints fixed.
	Retint int `yaml:"retint"`
}

// DefaultConfig returns the banner scene: one row of 49 columns, white on
// black with random tints, crossfaded at 0.4.
func DefaultConfig() Config {
	return Config{
		Rows:    1,
		Columns: 49,
		Fader:   0.4,
		Seed:    1,
		Output:  "textmode.png",
		Messages: []Message{{
			Text:       DefaultBanner,
			Ink:        15,
			Paper:      0,
			RandomTint: true,
		}},
		Window: Window{Scale: 2, Title: "textmode", Retint: 30},
	}
}

// LoadConfig reads a YAML scene. Fields the file leaves out keep their
// DefaultConfig values; a file that lists messages replaces the banner.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML scene over DefaultConfig and validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	cfg.Messages = nil

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Messages == nil {
		cfg.Messages = DefaultConfig().Messages
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the grid is non-empty and every message and palette
// entry fits.
func (c Config) Validate() error {
	var errs []error
	if c.Rows <= 0 || c.Columns <= 0 {
		errs = append(errs, fmt.Errorf("grid %dx%d must be positive", c.Rows, c.Columns))
	}
	for i, p := range c.Palette {
		if p.Index < 0 || p.Index >= textmode.MaxPaletteEntries {
			errs = append(errs, fmt.Errorf("palette[%d]: index %d out of range", i, p.Index))
		}
	}
	for i, m := range c.Messages {
		if m.Row < 0 || m.Row >= c.Rows || m.Column < 0 || m.Column >= c.Columns {
			errs = append(errs, fmt.Errorf("messages[%d]: position %d,%d outside the grid", i, m.Row, m.Column))
			continue
		}
		if end := m.Row*c.Columns + m.Column + len(textmode.EncodeCP437(m.Text)); end > c.Rows*c.Columns {
			errs = append(errs, fmt.Errorf("messages[%d]: %q runs past the end of the grid", i, m.Text))
		}
	}
	if c.Window.Scale < 0 {
		errs = append(errs, fmt.Errorf("window scale %d is negative", c.Window.Scale))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
