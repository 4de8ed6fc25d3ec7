// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// Entry point names the grid program must export.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

//go:embed shaders/grid_vert.wgsl
var gridVertexSource string

//go:embed shaders/grid_frag.wgsl
var gridFragmentSource string

// Stage identifies a shader stage.
type Stage uint8

// Shader stages.
const (
	StageVertex Stage = iota
	StageFragment
)

// String returns the stage name.
func (s Stage) String() string {
	if s == StageVertex {
		return "vertex"
	}
	return "fragment"
}

// CompilationError reports a shader stage that failed to compile.
// Log holds the compiler diagnostic unchanged.
type CompilationError struct {
	Stage Stage
	Log   string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("backend: %s shader compilation failed: %s", e.Stage, e.Log)
}

// LinkError reports a program whose stages could not be linked.
// Log holds the linker diagnostic unchanged.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "backend: program link failed: " + e.Log
}

// ProgramSource holds the WGSL text of both stages.
type ProgramSource struct {
	Vertex   string
	Fragment string
}

// DefaultProgramSource returns the embedded grid program.
func DefaultProgramSource() ProgramSource {
	return ProgramSource{Vertex: gridVertexSource, Fragment: gridFragmentSource}
}

// CompiledProgram is a linked program ready for CreateProgram.
type CompiledProgram struct {
	Label    string
	Source   ProgramSource
	Vertex   []uint32 // SPIR-V words
	Fragment []uint32 // SPIR-V words
}

// CompileProgram compiles and links src.
//
// Each stage runs through the naga front end (parse, lower, validate) and
// SPIR-V generation. Failures are returned as *CompilationError; a vertex
// module without a vs_main vertex entry point or a fragment module without
// an fs_main fragment entry point is a *LinkError.
//
// Successful results are cached by source; a cached program is returned as
// a copy carrying label. Failures are not cached.
func CompileProgram(label string, src ProgramSource) (*CompiledProgram, error) {
	if p, ok := compiledPrograms.get(src); ok {
		Logger().Debug("backend: program cache hit", "label", label)
		cp := *p
		cp.Label = label
		return &cp, nil
	}

	vsModule, vs, err := compileStage(StageVertex, src.Vertex)
	if err != nil {
		return nil, err
	}
	fsModule, fs, err := compileStage(StageFragment, src.Fragment)
	if err != nil {
		return nil, err
	}

	var missing []string
	if !hasEntryPoint(vsModule, VertexEntry, ir.StageVertex) {
		missing = append(missing, "vertex entry point "+VertexEntry)
	}
	if !hasEntryPoint(fsModule, FragmentEntry, ir.StageFragment) {
		missing = append(missing, "fragment entry point "+FragmentEntry)
	}
	if len(missing) > 0 {
		return nil, &LinkError{Log: "missing " + strings.Join(missing, ", ")}
	}

	Logger().Debug("backend: program compiled",
		"label", label, "vertex_words", len(vs), "fragment_words", len(fs))
	p := &CompiledProgram{Label: label, Source: src, Vertex: vs, Fragment: fs}
	compiledPrograms.put(src, p)
	return p, nil
}

func compileStage(stage Stage, source string) (*ir.Module, []uint32, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, &CompilationError{Stage: stage, Log: "empty source"}
	}
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, nil, &CompilationError{Stage: stage, Log: err.Error()}
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, nil, &CompilationError{Stage: stage, Log: err.Error()}
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, nil, &CompilationError{Stage: stage, Log: err.Error()}
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i := range verrs {
			msgs[i] = verrs[i].Error()
		}
		return nil, nil, &CompilationError{Stage: stage, Log: strings.Join(msgs, "\n")}
	}
	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, nil, &CompilationError{Stage: stage, Log: err.Error()}
	}
	return module, spirvWords(code), nil
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}

func hasEntryPoint(m *ir.Module, name string, stage ir.ShaderStage) bool {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Name == name && m.EntryPoints[i].Stage == stage {
			return true
		}
	}
	return false
}
