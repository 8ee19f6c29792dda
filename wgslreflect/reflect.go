// Package wgslreflect reports the resources a WGSL entry point uses in the
// shape the program linker consumes.
//
// Each var<uniform> becomes a uniform block and each var<storage> a shader
// storage block, named after the variable. Textures become sampler or image
// uniforms. Samplers have no counterpart and are not reported.
package wgslreflect

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"fortio.org/safecast"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/wgsl"

	"github.com/richinsley/goshaderlink/program"
	"github.com/richinsley/goshaderlink/sh"
	"github.com/richinsley/goshaderlink/shadertype"
)

// DefaultGroupStride is the binding distance between two bind groups.
const DefaultGroupStride = 16

var (
	ErrUnsupportedStage = errors.New("stage has no WGSL equivalent")
	ErrNoEntryPoint     = errors.New("entry point not found")
	ErrUnsupportedType  = errors.New("type has no GL equivalent")
)

type Options struct {
	// GroupStride maps @group(g) @binding(b) to binding g*GroupStride+b.
	// Zero means DefaultGroupStride.
	GroupStride int

	// Logger receives warnings. Nil means log.Default().
	Logger *log.Logger
}

func (o Options) logf(format string, args ...any) {
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

func (o Options) binding(rb *ir.ResourceBinding) (int, error) {
	if rb == nil {
		return -1, nil
	}
	stride := o.GroupStride
	if stride <= 0 {
		stride = DefaultGroupStride
	}
	group, err := safecast.Conv[int](rb.Group)
	if err != nil {
		return -1, err
	}
	binding, err := safecast.Conv[int](rb.Binding)
	if err != nil {
		return -1, err
	}
	return group*stride + binding, nil
}

// EntryPoint names one entry point of a WGSL module.
type EntryPoint struct {
	Name  string
	Stage shadertype.Type
}

// EntryPoints lists the entry points declared in source.
func EntryPoints(source string) ([]EntryPoint, error) {
	mod, _, err := compile(source)
	if err != nil {
		return nil, err
	}
	out := make([]EntryPoint, 0, len(mod.EntryPoints))
	for _, ep := range mod.EntryPoints {
		out = append(out, EntryPoint{Name: ep.Name, Stage: stageOf(ep.Stage)})
	}
	return out, nil
}

// Reflect compiles source and reports the resources reachable from the named
// entry point. An empty entryPoint selects the first entry point of stage.
func Reflect(source string, stage shadertype.Type, entryPoint string, opts Options) (program.StageReflection, error) {
	want, ok := irStage(stage)
	if !ok {
		return program.StageReflection{}, fmt.Errorf("wgslreflect: %w: %s", ErrUnsupportedStage, stage)
	}
	mod, decls, err := compile(source)
	if err != nil {
		return program.StageReflection{}, err
	}

	ep, err := findEntryPoint(mod, want, entryPoint)
	if err != nil {
		return program.StageReflection{}, fmt.Errorf("wgslreflect: %s stage: %w", stage, err)
	}
	used := usedGlobals(mod, ep.Function)

	r := reflector{mod: mod, opts: opts}
	out := program.StageReflection{
		Stage:   stage,
		Layouts: make(map[string]sh.BlockLayout),
	}
	for i, g := range mod.GlobalVariables {
		h := ir.GlobalVariableHandle(i)
		decl, ok := decls[g.Name]
		if !ok {
			decl.sampleKind = ir.ScalarFloat
		}
		if err := r.global(&out, g, h, used[h], decl); err != nil {
			return program.StageReflection{}, fmt.Errorf("wgslreflect: %s: %w", g.Name, err)
		}
	}
	return out, nil
}

// declaration keeps what lowering drops from a global's declaration: the
// access mode of storage variables and the texel type of sampled textures.
type declaration struct {
	access     string
	sampleKind ir.ScalarKind
}

func compile(source string) (*ir.Module, map[string]declaration, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, nil, fmt.Errorf("wgslreflect: %w", err)
	}
	mod, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, nil, fmt.Errorf("wgslreflect: %w", err)
	}
	decls := make(map[string]declaration, len(ast.GlobalVars))
	for _, v := range ast.GlobalVars {
		decls[v.Name] = declaration{
			access:     v.AccessMode,
			sampleKind: sampleKind(v.Type),
		}
	}
	return mod, decls, nil
}

// sampleKind is the texel type of a sampled texture declaration, looking
// through arrays. Everything else samples floats.
func sampleKind(t wgsl.Type) ir.ScalarKind {
	for {
		switch tt := t.(type) {
		case *wgsl.ArrayType:
			t = tt.Element
		case *wgsl.BindingArrayType:
			t = tt.Element
		case *wgsl.NamedType:
			if tt.Name == "binding_array" && len(tt.TypeParams) > 0 {
				t = tt.TypeParams[0]
				continue
			}
			if !strings.HasPrefix(tt.Name, "texture_") || len(tt.TypeParams) == 0 {
				return ir.ScalarFloat
			}
			if param, ok := tt.TypeParams[0].(*wgsl.NamedType); ok {
				switch param.Name {
				case "i32":
					return ir.ScalarSint
				case "u32":
					return ir.ScalarUint
				}
			}
			return ir.ScalarFloat
		default:
			return ir.ScalarFloat
		}
	}
}

func findEntryPoint(mod *ir.Module, stage ir.ShaderStage, name string) (ir.EntryPoint, error) {
	for _, ep := range mod.EntryPoints {
		if ep.Stage != stage {
			continue
		}
		if name == "" || ep.Name == name {
			return ep, nil
		}
	}
	if name == "" {
		return ir.EntryPoint{}, ErrNoEntryPoint
	}
	return ir.EntryPoint{}, fmt.Errorf("%w: %q", ErrNoEntryPoint, name)
}

func irStage(t shadertype.Type) (ir.ShaderStage, bool) {
	switch t {
	case shadertype.Vertex:
		return ir.StageVertex, true
	case shadertype.Fragment:
		return ir.StageFragment, true
	case shadertype.Compute:
		return ir.StageCompute, true
	}
	return 0, false
}

func stageOf(s ir.ShaderStage) shadertype.Type {
	switch s {
	case ir.StageVertex:
		return shadertype.Vertex
	case ir.StageFragment:
		return shadertype.Fragment
	case ir.StageCompute:
		return shadertype.Compute
	}
	return shadertype.InvalidEnum
}
