// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestPixmapPixel(t *testing.T) {
	pm := NewPixmap(3, 2)
	copy(pm.Data()[(1*3+2)*4:], []byte{10, 20, 30, 255})

	if got := pm.Pixel(2, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("Pixel(2,1) = %v", got)
	}
	if got := pm.At(2, 1); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("At(2,1) = %v", got)
	}
	for _, p := range [][2]int{{-1, 0}, {3, 0}, {0, 2}} {
		if got := pm.Pixel(p[0], p[1]); got != (color.RGBA{}) {
			t.Errorf("Pixel(%d,%d) outside = %v", p[0], p[1], got)
		}
	}
	if b := pm.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("Bounds() = %v", b)
	}
	if pm.ColorModel() != color.RGBAModel {
		t.Errorf("ColorModel() is not RGBA")
	}
}

func TestPixmapEqual(t *testing.T) {
	a, b := NewPixmap(2, 2), NewPixmap(2, 2)
	if !a.Equal(b) {
		t.Errorf("zero pixmaps differ")
	}
	b.Data()[5] = 1
	if a.Equal(b) {
		t.Errorf("differing pixmaps compare equal")
	}
	if a.Equal(NewPixmap(4, 1)) {
		t.Errorf("pixmaps of different shape compare equal")
	}
}

func TestPixmapSavePNG(t *testing.T) {
	r := newTestRenderer(t, 1, 2)
	_, _ = r.WriteString(0, "ok", 15, 4, 0)
	_ = r.UploadState()
	_ = r.RenderCrossfade(1)
	pm := snapshot(t, r)

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := pm.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds() != pm.Bounds() {
		t.Fatalf("decoded bounds = %v, want %v", img.Bounds(), pm.Bounds())
	}
	want := color.RGBAModel.Convert(pm.At(1, 1))
	if got := color.RGBAModel.Convert(img.At(1, 1)); got != want {
		t.Errorf("decoded pixel = %v, want %v", got, want)
	}
}
