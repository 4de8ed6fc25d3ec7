// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/textmode/backend"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlign is the row alignment texture to buffer copies require.
const copyPitchAlign = 256

// frame holds the two output targets and the readback buffer of one
// viewport size. targets[held] is the last rendered frame.
type frame struct {
	width, height uint32
	targets       [2]hal.Texture
	views         [2]hal.TextureView
	held          int

	staging  hal.Buffer
	rowPitch uint32
}

var opaqueBlack = gputypes.Color{R: 0, G: 0, B: 0, A: 1}

func alignPitch(width uint32) uint32 {
	return (width*4 + copyPitchAlign - 1) / copyPitchAlign * copyPitchAlign
}

// SetViewport recreates the output targets at width x height and clears
// both to opaque black. The old targets are kept until the new ones exist.
func (d *Device) SetViewport(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(); err != nil {
		return err
	}
	limit := int(d.limits.MaxTextureDimension2D)
	if width <= 0 || height <= 0 || width > limit || height > limit {
		return fmt.Errorf("%w: %dx%d (limit %d)", backend.ErrInvalidViewport, width, height, limit)
	}

	f := &frame{width: uint32(width), height: uint32(height)} //nolint:gosec // checked against the 2-D limit
	f.rowPitch = alignPitch(f.width)
	if err := d.createFrame(f); err != nil {
		d.releaseFrame(f)
		return err
	}
	if err := d.clearFrame(f); err != nil {
		d.releaseFrame(f)
		return err
	}
	d.destroyFrame()
	d.frame = f
	return nil
}

func (d *Device) createFrame(f *frame) error {
	for i := range f.targets {
		tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
			Label:         fmt.Sprintf("textmode-target-%d", i),
			Size:          hal.Extent3D{Width: f.width, Height: f.height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        targetFormat,
			Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
				gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create target: %w", err)
		}
		f.targets[i] = tex
		view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:           fmt.Sprintf("textmode-target-%d-view", i),
			Format:          targetFormat,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			ArrayLayerCount: 1,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create target view: %w", err)
		}
		f.views[i] = view
	}

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "textmode-readback",
		Size:  uint64(f.rowPitch) * uint64(f.height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create readback buffer: %w", err)
	}
	f.staging = staging
	return nil
}

// clearFrame fills both targets with opaque black and leaves them ready
// for sampling.
func (d *Device) clearFrame(f *frame) error {
	return d.submit("textmode-clear", func(enc hal.CommandEncoder) {
		for i := range f.targets {
			transition(enc, f.targets[i], gputypes.TextureUsageNone, gputypes.TextureUsageRenderAttachment)
			pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
				Label: "textmode-clear",
				ColorAttachments: []hal.RenderPassColorAttachment{{
					View:       f.views[i],
					LoadOp:     gputypes.LoadOpClear,
					StoreOp:    gputypes.StoreOpStore,
					ClearValue: opaqueBlack,
				}},
			})
			pass.End()
			transition(enc, f.targets[i], gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding)
		}
	})
}

// Draw renders one frame into the target that is not held, sampling the
// held target, then swaps them.
func (d *Device) Draw(p backend.Program, b backend.Bindings, u backend.GridUniforms) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(); err != nil {
		return err
	}
	prog, err := d.lookupProgram(p)
	if err != nil {
		return err
	}
	if err := u.Check(b); err != nil {
		return err
	}
	f := d.frame
	if f == nil {
		return fmt.Errorf("%w: no viewport", backend.ErrInvalidViewport)
	}
	if u.Width() != int(f.width) || u.Height() != int(f.height) {
		return fmt.Errorf("%w: grid is %dx%d, viewport %dx%d",
			backend.ErrInvalidViewport, u.Width(), u.Height(), f.width, f.height)
	}

	var views [3]hal.TextureView
	for i, tex := range []backend.Texture{b.State, b.Font, b.Palette} {
		t, err := d.lookup(tex)
		if err != nil {
			return err
		}
		views[i] = t.view
	}

	if err := d.queue.WriteBuffer(d.uniforms, 0, u.Bytes()); err != nil {
		return fmt.Errorf("wgpu: write uniforms: %w", err)
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "textmode-grid-bind",
		Layout: prog.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: d.uniforms.NativeHandle(), Size: backend.UniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: views[0].NativeHandle()}},
			{Binding: 2, Resource: gputypes.TextureViewBinding{TextureView: views[1].NativeHandle()}},
			{Binding: 3, Resource: gputypes.TextureViewBinding{TextureView: views[2].NativeHandle()}},
			{Binding: 4, Resource: gputypes.TextureViewBinding{TextureView: f.views[f.held].NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(group)

	dst := 1 - f.held
	err = d.submit("textmode-draw", func(enc hal.CommandEncoder) {
		transition(enc, f.targets[dst], gputypes.TextureUsageTextureBinding, gputypes.TextureUsageRenderAttachment)
		pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "textmode-grid",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       f.views[dst],
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: opaqueBlack,
			}},
		})
		pass.SetPipeline(prog.pipeline)
		pass.SetBindGroup(0, group, nil)
		pass.Draw(3, 1, 0, 0)
		pass.End()
		transition(enc, f.targets[dst], gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding)
	})
	if err != nil {
		return err
	}
	f.held = dst
	return nil
}

// ReadPixels copies the held frame into dst.
func (d *Device) ReadPixels(dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(); err != nil {
		return err
	}
	f := d.frame
	if f == nil {
		return fmt.Errorf("%w: no viewport", backend.ErrInvalidViewport)
	}
	rowBytes := int(f.width) * 4
	if len(dst) != rowBytes*int(f.height) {
		return fmt.Errorf("wgpu: read pixels: got %d bytes, want %d", len(dst), rowBytes*int(f.height))
	}

	src := f.targets[f.held]
	err := d.submit("textmode-readback", func(enc hal.CommandEncoder) {
		transition(enc, src, gputypes.TextureUsageTextureBinding, gputypes.TextureUsageCopySrc)
		enc.CopyTextureToBuffer(src, f.staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{BytesPerRow: f.rowPitch, RowsPerImage: f.height},
			TextureBase:  hal.ImageCopyTexture{Texture: src, Aspect: gputypes.TextureAspectAll},
			Size:         hal.Extent3D{Width: f.width, Height: f.height, DepthOrArrayLayers: 1},
		}})
		transition(enc, src, gputypes.TextureUsageCopySrc, gputypes.TextureUsageTextureBinding)
	})
	if err != nil {
		return err
	}

	size := uint64(f.rowPitch) * uint64(f.height)
	mapping, err := d.device.MapBuffer(f.staging, 0, size)
	if err != nil {
		return fmt.Errorf("wgpu: map readback buffer: %w", err)
	}
	mapped := unsafe.Slice((*byte)(mapping.Ptr), size)
	for y := 0; y < int(f.height); y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], mapped[y*int(f.rowPitch):])
	}
	if err := d.device.UnmapBuffer(f.staging); err != nil {
		return fmt.Errorf("wgpu: unmap readback buffer: %w", err)
	}
	return nil
}

// submit records one command buffer, submits it and waits for the GPU.
func (d *Device) submit(label string, record func(enc hal.CommandEncoder)) error {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	record(enc)
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmd)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("wgpu: submit %s: %w", label, err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait %s: %w", label, err)
	}
	return nil
}

func transition(enc hal.CommandEncoder, tex hal.Texture, from, to gputypes.TextureUsage) {
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll, MipLevelCount: 1, ArrayLayerCount: 1},
		Usage:   hal.TextureUsageTransition{OldUsage: from, NewUsage: to},
	}})
}

func (d *Device) destroyFrame() {
	if d.frame != nil {
		d.releaseFrame(d.frame)
		d.frame = nil
	}
}

func (d *Device) releaseFrame(f *frame) {
	if f.staging != nil {
		d.device.DestroyBuffer(f.staging)
	}
	for i := range f.targets {
		if f.views[i] != nil {
			d.device.DestroyTextureView(f.views[i])
		}
		if f.targets[i] != nil {
			d.device.DestroyTexture(f.targets[i])
		}
	}
	*f = frame{}
}
