// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textmode

import (
	"fmt"

	"github.com/gogpu/textmode/backend"
)

// binding mirrors one CPU buffer in a device texture. The texture only
// changes on upload.
type binding struct {
	dev    backend.Device
	slots  *backend.SlotAllocator
	label  string
	format backend.TextureFormat
	source func() []byte

	slot int
	tex  backend.Texture
}

// newBinding reserves a slot, creates a texture sized for the current
// source and uploads it.
func newBinding(dev backend.Device, slots *backend.SlotAllocator, label string,
	format backend.TextureFormat, source func() []byte,
) (*binding, error) {
	data := source()
	stride := format.Stride()
	if stride == 0 || len(data) == 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("textmode: %s: %d bytes is not a whole number of %v texels", label, len(data), format)
	}

	slot, err := slots.Acquire()
	if err != nil {
		return nil, fmt.Errorf("textmode: %s: %w", label, err)
	}
	b := &binding{dev: dev, slots: slots, label: label, format: format, source: source, slot: slot}
	if err := b.create(); err != nil {
		slots.Release(slot)
		return nil, err
	}
	return b, nil
}

// create allocates the texture on b's slot and uploads the source.
func (b *binding) create() error {
	tex, err := b.dev.CreateTexture(backend.TextureDescriptor{
		Label:  b.label,
		Slot:   b.slot,
		Format: b.format,
		Texels: len(b.source()) / b.format.Stride(),
	})
	if err != nil {
		return fmt.Errorf("textmode: create %s texture: %w", b.label, err)
	}
	b.tex = tex
	if err := b.upload(); err != nil {
		b.destroy()
		return err
	}
	return nil
}

// replacement creates a texture for source on the same slot, leaving b
// untouched. The caller either commits it with adopt or drops it with
// destroy.
func (b *binding) replacement(source func() []byte) (*binding, error) {
	nb := &binding{dev: b.dev, slots: b.slots, label: b.label, format: b.format, source: source, slot: b.slot}
	if err := nb.create(); err != nil {
		return nil, err
	}
	return nb, nil
}

// adopt destroys b's texture and takes over nb's texture and source.
func (b *binding) adopt(nb *binding) {
	b.destroy()
	b.tex, b.source = nb.tex, nb.source
	nb.tex = nil
}

// upload pushes the whole source buffer to the texture.
func (b *binding) upload() error {
	if err := b.dev.WriteTexture(b.tex, b.source()); err != nil {
		return fmt.Errorf("textmode: upload %s: %w", b.label, err)
	}
	return nil
}

// destroy destroys the texture and keeps the slot.
func (b *binding) destroy() {
	if b.tex != nil {
		b.dev.DestroyTexture(b.tex)
		b.tex = nil
	}
}

// release destroys the texture and returns the slot.
func (b *binding) release() {
	if b.tex == nil {
		return
	}
	b.destroy()
	b.slots.Release(b.slot)
}
