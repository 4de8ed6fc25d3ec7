// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import "math"

// srgbToLinear maps an 8-bit sRGB channel to linear light.
var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		c := float64(i) / 255
		if c <= 0.04045 {
			srgbToLinear[i] = c / 12.92
		} else {
			srgbToLinear[i] = math.Pow((c+0.055)/1.055, 2.4)
		}
	}
}

// SRGBToLinear decodes an 8-bit sRGB channel.
func SRGBToLinear(c uint8) float64 { return srgbToLinear[c] }

// LinearToSRGB encodes a linear channel to 8-bit sRGB, clamping to [0,1].
// The result is the byte whose decoded value is nearest to v, so
// LinearToSRGB(SRGBToLinear(c)) == c for every c.
func LinearToSRGB(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	var s float64
	if v <= 0.0031308 {
		s = v * 12.92
	} else {
		s = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	c := int(s*255 + 0.5)
	if c > 255 {
		c = 255
	}
	best := c
	for _, n := range [2]int{c - 1, c + 1} {
		if n < 0 || n > 255 {
			continue
		}
		if math.Abs(srgbToLinear[n]-v) < math.Abs(srgbToLinear[best]-v) {
			best = n
		}
	}
	return uint8(best) //nolint:gosec // best is clamped to [0,255]
}
