// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/textmode/backend"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the format of both output targets.
const targetFormat = gputypes.TextureFormatRGBA8UnormSrgb

// program is the grid render pipeline and the objects it was built from.
type program struct {
	label    string
	vertex   hal.ShaderModule
	fragment hal.ShaderModule
	layout   hal.BindGroupLayout
	pipeLay  hal.PipelineLayout
	pipeline hal.RenderPipeline
}

func (p *program) Label() string { return p.label }

// gridLayout matches the bindings declared by the embedded WGSL.
var gridLayout = []gputypes.BindGroupLayoutEntry{
	{Binding: 0, Visibility: gputypes.ShaderStageFragment, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
	{Binding: 1, Visibility: gputypes.ShaderStageFragment, Texture: &gputypes.TextureBindingLayout{SampleType: gputypes.TextureSampleTypeUint, ViewDimension: gputypes.TextureViewDimension1D}},
	{Binding: 2, Visibility: gputypes.ShaderStageFragment, Texture: &gputypes.TextureBindingLayout{SampleType: gputypes.TextureSampleTypeUint, ViewDimension: gputypes.TextureViewDimension1D}},
	{Binding: 3, Visibility: gputypes.ShaderStageFragment, Texture: &gputypes.TextureBindingLayout{SampleType: gputypes.TextureSampleTypeUnfilterableFloat, ViewDimension: gputypes.TextureViewDimension1D}},
	{Binding: 4, Visibility: gputypes.ShaderStageFragment, Texture: &gputypes.TextureBindingLayout{SampleType: gputypes.TextureSampleTypeUnfilterableFloat, ViewDimension: gputypes.TextureViewDimension2D}},
}

// CreateProgram builds the render pipeline from compiled SPIR-V.
// A shader module the driver rejects is a *backend.CompilationError; a
// layout or pipeline failure is a *backend.LinkError.
func (d *Device) CreateProgram(cp *backend.CompiledProgram) (backend.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(); err != nil {
		return nil, err
	}
	if cp == nil || len(cp.Vertex) == 0 || len(cp.Fragment) == 0 {
		return nil, backend.ErrInvalidProgram
	}

	p := &program{label: cp.Label}
	var err error
	if p.vertex, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  cp.Label + "-vertex",
		Source: hal.ShaderSource{SPIRV: cp.Vertex},
	}); err != nil {
		return nil, &backend.CompilationError{Stage: backend.StageVertex, Log: err.Error()}
	}
	if p.fragment, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  cp.Label + "-fragment",
		Source: hal.ShaderSource{SPIRV: cp.Fragment},
	}); err != nil {
		d.destroyProgram(p)
		return nil, &backend.CompilationError{Stage: backend.StageFragment, Log: err.Error()}
	}

	if p.layout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   cp.Label + "-bind-layout",
		Entries: gridLayout,
	}); err != nil {
		d.destroyProgram(p)
		return nil, &backend.LinkError{Log: err.Error()}
	}
	if p.pipeLay, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            cp.Label + "-pipe-layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.layout},
	}); err != nil {
		d.destroyProgram(p)
		return nil, &backend.LinkError{Log: err.Error()}
	}
	if p.pipeline, err = d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  cp.Label,
		Layout: p.pipeLay,
		Vertex: hal.VertexState{Module: p.vertex, EntryPoint: backend.VertexEntry},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: ^uint64(0)},
		Fragment: &hal.FragmentState{
			Module:     p.fragment,
			EntryPoint: backend.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{Format: targetFormat, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
	}); err != nil {
		d.destroyProgram(p)
		return nil, &backend.LinkError{Log: err.Error()}
	}

	d.programs[p] = struct{}{}
	return p, nil
}

func (d *Device) lookupProgram(p backend.Program) (*program, error) {
	prog, ok := p.(*program)
	if !ok || prog == nil {
		return nil, backend.ErrInvalidProgram
	}
	if _, live := d.programs[prog]; !live {
		return nil, backend.ErrInvalidProgram
	}
	return prog, nil
}

// DestroyProgram releases p.
func (d *Device) DestroyProgram(p backend.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == nil {
		return
	}
	if prog, err := d.lookupProgram(p); err == nil {
		d.destroyProgram(prog)
	}
}

// destroyProgram releases whatever part of p was created, in reverse order.
func (d *Device) destroyProgram(p *program) {
	delete(d.programs, p)
	if p.pipeline != nil {
		d.device.DestroyRenderPipeline(p.pipeline)
	}
	if p.pipeLay != nil {
		d.device.DestroyPipelineLayout(p.pipeLay)
	}
	if p.layout != nil {
		d.device.DestroyBindGroupLayout(p.layout)
	}
	if p.fragment != nil {
		d.device.DestroyShaderModule(p.fragment)
	}
	if p.vertex != nil {
		d.device.DestroyShaderModule(p.vertex)
	}
	*p = program{label: p.label}
}
