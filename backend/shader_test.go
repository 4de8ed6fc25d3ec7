// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

func TestCompileDefaultProgram(t *testing.T) {
	p, err := CompileProgram("grid", DefaultProgramSource())
	if err != nil {
		t.Fatalf("CompileProgram() error = %v", err)
	}
	for name, words := range map[string][]uint32{"vertex": p.Vertex, "fragment": p.Fragment} {
		if len(words) == 0 {
			t.Fatalf("%s: empty SPIR-V", name)
		}
		if words[0] != 0x07230203 {
			t.Errorf("%s: magic = 0x%08x, want 0x07230203", name, words[0])
		}
	}
}

func TestCompileFailureKeepsDiagnostic(t *testing.T) {
	const bad = "@fragment fn fs_main( -> @location(0) vec4<f32> { return 1.0; }"

	_, parseErr := naga.Parse(bad)
	if parseErr == nil {
		t.Fatalf("naga accepted invalid source")
	}

	src := DefaultProgramSource()
	src.Fragment = bad
	_, err := CompileProgram("grid", src)

	var ce *CompilationError
	if !errors.As(err, &ce) {
		t.Fatalf("CompileProgram() error = %v, want *CompilationError", err)
	}
	if ce.Stage != StageFragment {
		t.Errorf("Stage = %v, want fragment", ce.Stage)
	}
	if ce.Log != parseErr.Error() {
		t.Errorf("Log = %q, want compiler output %q", ce.Log, parseErr.Error())
	}
	if !strings.Contains(err.Error(), parseErr.Error()) {
		t.Errorf("Error() = %q does not carry the diagnostic", err.Error())
	}
}

func TestCompileEmptyStage(t *testing.T) {
	_, err := CompileProgram("grid", ProgramSource{Fragment: gridFragmentSource})
	var ce *CompilationError
	if !errors.As(err, &ce) || ce.Stage != StageVertex {
		t.Fatalf("CompileProgram() error = %v, want vertex *CompilationError", err)
	}
}

func TestLinkFailureMissingEntryPoint(t *testing.T) {
	src := DefaultProgramSource()
	src.Vertex = strings.Replace(src.Vertex, "fn vs_main", "fn main", 1)

	_, err := CompileProgram("grid", src)
	var le *LinkError
	if !errors.As(err, &le) {
		t.Fatalf("CompileProgram() error = %v, want *LinkError", err)
	}
	if !strings.Contains(le.Log, VertexEntry) {
		t.Errorf("Log = %q, want mention of %s", le.Log, VertexEntry)
	}
}
