// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/textmode/backend"
	"github.com/gogpu/wgpu/hal"
)

// texture is a 1-D data texture and its view.
type texture struct {
	desc backend.TextureDescriptor
	tex  hal.Texture
	view hal.TextureView
}

func (t *texture) Descriptor() backend.TextureDescriptor { return t.desc }

// halFormat maps a source format to the GPU format it is stored in.
func halFormat(f backend.TextureFormat) (gputypes.TextureFormat, error) {
	switch f {
	case backend.FormatRGBA8Uint:
		return gputypes.TextureFormatRGBA8Uint, nil
	case backend.FormatRGB8Srgb:
		return gputypes.TextureFormatRGBA8UnormSrgb, nil
	default:
		return 0, fmt.Errorf("wgpu: unsupported texture format %v", f)
	}
}

// rgbToRGBA expands packed RGB triples to opaque RGBA texels.
func rgbToRGBA(rgb []byte) []byte {
	n := len(rgb) / 3
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		out[i*4] = rgb[i*3]
		out[i*4+1] = rgb[i*3+1]
		out[i*4+2] = rgb[i*3+2]
		out[i*4+3] = 0xFF
	}
	return out
}

// CreateTexture allocates a zero-filled 1-D texture.
func (d *Device) CreateTexture(desc backend.TextureDescriptor) (backend.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if uint64(desc.Texels) > uint64(d.limits.MaxTextureDimension1D) {
		return nil, fmt.Errorf("%w: %q has %d texels, device limit is %d",
			backend.ErrTextureSize, desc.Label, desc.Texels, d.limits.MaxTextureDimension1D)
	}
	format, err := halFormat(desc.Format)
	if err != nil {
		return nil, err
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "textmode-" + desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Texels), Height: 1, DepthOrArrayLayers: 1}, //nolint:gosec // checked against the 1-D limit
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension1D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "textmode-" + desc.Label + "-view",
		Format:          format,
		Dimension:       gputypes.TextureViewDimension1D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create view %q: %w", desc.Label, err)
	}

	t := &texture{desc: desc, tex: tex, view: view}
	if err := d.upload(t, make([]byte, desc.Size())); err != nil {
		d.destroyTexture(t)
		return nil, err
	}
	d.textures[t] = struct{}{}
	return t, nil
}

func (d *Device) lookup(tex backend.Texture) (*texture, error) {
	t, ok := tex.(*texture)
	if !ok || t == nil {
		return nil, backend.ErrInvalidTexture
	}
	if _, live := d.textures[t]; !live {
		return nil, backend.ErrInvalidTexture
	}
	return t, nil
}

// WriteTexture uploads the full contents of tex.
func (d *Device) WriteTexture(tex backend.Texture, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(); err != nil {
		return err
	}
	t, err := d.lookup(tex)
	if err != nil {
		return err
	}
	if len(data) != t.desc.Size() {
		return fmt.Errorf("%w: %q got %d bytes, want %d", backend.ErrTextureSize, t.desc.Label, len(data), t.desc.Size())
	}
	return d.upload(t, data)
}

func (d *Device) upload(t *texture, data []byte) error {
	if t.desc.Format == backend.FormatRGB8Srgb {
		data = rgbToRGBA(data)
	}
	width := uint32(t.desc.Texels) //nolint:gosec // checked against the 1-D limit
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{BytesPerRow: width * 4, RowsPerImage: 1},
		&hal.Extent3D{Width: width, Height: 1, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture %q: %w", t.desc.Label, err)
	}
	return nil
}

// DestroyTexture releases tex.
func (d *Device) DestroyTexture(tex backend.Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == nil {
		return
	}
	if t, err := d.lookup(tex); err == nil {
		d.destroyTexture(t)
	}
}

func (d *Device) destroyTexture(t *texture) {
	delete(d.textures, t)
	if t.view != nil {
		d.device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		d.device.DestroyTexture(t.tex)
	}
	t.view, t.tex = nil, nil
}
