// Package program links per-stage reflection into the reflection table of a
// program: its uniforms, buffer variables, blocks and atomic counter buffers.
package program

import (
	"strings"

	"github.com/richinsley/goshaderlink/sh"
	"github.com/richinsley/goshaderlink/shadertype"
	"github.com/richinsley/goshaderlink/uniform"
)

// StageReflection is what one compiled stage reports.
type StageReflection struct {
	Stage shadertype.Type `json:"stage"`

	// Uniforms are the default-block uniforms, unflattened.
	Uniforms      []sh.ShaderVariable `json:"uniforms,omitempty"`
	UniformBlocks []sh.InterfaceBlock `json:"uniform_blocks,omitempty"`
	StorageBlocks []sh.InterfaceBlock `json:"storage_blocks,omitempty"`

	// Layouts holds the computed layout of each block, keyed by block name.
	Layouts map[string]sh.BlockLayout `json:"layouts,omitempty"`
}

// Range is a half-open range of indexes into a table.
type Range struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Len returns the number of indexes in r.
func (r Range) Len() int {
	return r.High - r.Low
}

// Contains reports whether i lies in [Low, High).
func (r Range) Contains(i int) bool {
	return i >= r.Low && i < r.High
}

// Program is the reflection table of a linked program. It is not modified
// after Link returns.
type Program struct {
	LinkedStages shadertype.Set `json:"linked_stages"`

	// Uniforms lists default-block uniforms (basic types, then samplers,
	// images and atomic counters) followed by uniform block members.
	Uniforms             []uniform.LinkedUniform        `json:"uniforms"`
	BufferVariables      []uniform.BufferVariable       `json:"buffer_variables"`
	UniformBlocks        []uniform.InterfaceBlock       `json:"uniform_blocks"`
	ShaderStorageBlocks  []uniform.InterfaceBlock       `json:"shader_storage_blocks"`
	AtomicCounterBuffers []uniform.ShaderVariableBuffer `json:"atomic_counter_buffers"`

	SamplerRange       Range `json:"sampler_range"`
	ImageRange         Range `json:"image_range"`
	AtomicCounterRange Range `json:"atomic_counter_range"`

	// DefaultBlockEnd is the index of the first uniform block member.
	DefaultBlockEnd int `json:"default_block_end"`
}

// UniformIndex finds a uniform by name. Array uniforms may also be named with
// a "[0]" suffix.
func (p *Program) UniformIndex(name string) (int, bool) {
	for i := range p.Uniforms {
		if p.Uniforms[i].Name == name {
			return i, true
		}
	}
	if base, ok := strings.CutSuffix(name, "[0]"); ok {
		for i := range p.Uniforms {
			if p.Uniforms[i].IsArray() && p.Uniforms[i].Name == base {
				return i, true
			}
		}
	}
	return -1, false
}

// BufferVariableIndex finds a buffer variable by name, with the same array
// rules as UniformIndex.
func (p *Program) BufferVariableIndex(name string) (int, bool) {
	for i := range p.BufferVariables {
		if p.BufferVariables[i].Name == name {
			return i, true
		}
	}
	if base, ok := strings.CutSuffix(name, "[0]"); ok {
		for i := range p.BufferVariables {
			if p.BufferVariables[i].IsArray() && p.BufferVariables[i].Name == base {
				return i, true
			}
		}
	}
	return -1, false
}

// UniformBlockIndex finds a uniform block element by its name with array
// index, e.g. "Lights" or "Lights[2]".
func (p *Program) UniformBlockIndex(name string) (int, bool) {
	return blockIndex(p.UniformBlocks, name)
}

// ShaderStorageBlockIndex is UniformBlockIndex for shader storage blocks.
func (p *Program) ShaderStorageBlockIndex(name string) (int, bool) {
	return blockIndex(p.ShaderStorageBlocks, name)
}

func blockIndex(blocks []uniform.InterfaceBlock, name string) (int, bool) {
	for i := range blocks {
		if blocks[i].NameWithArrayIndex() == name {
			return i, true
		}
	}
	return -1, false
}

// UniformsActiveIn lists the indexes of uniforms used by stage.
func (p *Program) UniformsActiveIn(stage shadertype.Type) []int {
	var out []int
	for i := range p.Uniforms {
		if p.Uniforms[i].Usage.IsActive(stage) {
			out = append(out, i)
		}
	}
	return out
}

// BlockMembers returns the uniforms belonging to uniform block element i.
func (p *Program) BlockMembers(i int) []*uniform.LinkedUniform {
	if i < 0 || i >= len(p.UniformBlocks) {
		return nil
	}
	members := make([]*uniform.LinkedUniform, 0, p.UniformBlocks[i].NumActiveVariables())
	for _, idx := range p.UniformBlocks[i].MemberIndexes {
		members = append(members, &p.Uniforms[idx])
	}
	return members
}

// Clone returns a deep copy of p.
func (p *Program) Clone() *Program {
	out := *p
	out.Uniforms = cloneAll(p.Uniforms, uniform.LinkedUniform.Clone)
	out.BufferVariables = cloneAll(p.BufferVariables, uniform.BufferVariable.Clone)
	out.UniformBlocks = cloneAll(p.UniformBlocks, uniform.InterfaceBlock.Clone)
	out.ShaderStorageBlocks = cloneAll(p.ShaderStorageBlocks, uniform.InterfaceBlock.Clone)
	out.AtomicCounterBuffers = cloneAll(p.AtomicCounterBuffers, uniform.ShaderVariableBuffer.Clone)
	return &out
}

func cloneAll[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i := range in {
		out[i] = clone(in[i])
	}
	return out
}
