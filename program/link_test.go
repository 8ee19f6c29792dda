package program

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderlink/gltype"
	"github.com/richinsley/goshaderlink/sh"
	"github.com/richinsley/goshaderlink/shadertype"
	"github.com/richinsley/goshaderlink/uniform"
)

func usedVar(typ gltype.Enum, name string, id uint32, arraySizes ...uint32) sh.ShaderVariable {
	v := sh.NewShaderVariable(typ, name, arraySizes...)
	v.StaticUse = true
	v.Active = true
	v.ID = id
	return v
}

func quietLinker() (*Linker, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Linker{Logger: log.New(&buf, "", 0)}, &buf
}

func TestLinkMergesUsageAcrossStages(t *testing.T) {
	vs := StageReflection{
		Stage:    shadertype.Vertex,
		Uniforms: []sh.ShaderVariable{usedVar(gltype.FloatMat4, "mvp", 3)},
	}
	unused := sh.NewShaderVariable(gltype.FloatMat4, "mvp")
	unused.ID = 9
	fs := StageReflection{
		Stage: shadertype.Fragment,
		Uniforms: []sh.ShaderVariable{
			unused,
			usedVar(gltype.FloatVec4, "tint", 4),
		},
	}

	l, _ := quietLinker()
	p, err := l.Link(fs, vs)
	require.NoError(t, err)

	assert.Equal(t, shadertype.SetOf(shadertype.Vertex, shadertype.Fragment), p.LinkedStages)
	require.Len(t, p.Uniforms, 2)

	mvp := p.Uniforms[0]
	assert.Equal(t, "mvp", mvp.Name)
	assert.True(t, mvp.Usage.IsActive(shadertype.Vertex))
	assert.False(t, mvp.Usage.IsActive(shadertype.Fragment))
	assert.Equal(t, uint32(3), mvp.Usage.StageID(shadertype.Vertex))
	assert.Equal(t, uint32(9), mvp.Usage.StageID(shadertype.Fragment))
	assert.True(t, mvp.IsInDefaultBlock())

	tint := p.Uniforms[1]
	assert.Equal(t, shadertype.SetOf(shadertype.Fragment), tint.Usage.ActiveStages())

	assert.Equal(t, []int{0}, p.UniformsActiveIn(shadertype.Vertex))
	assert.Equal(t, []int{1}, p.UniformsActiveIn(shadertype.Fragment))
	assert.Equal(t, 2, p.DefaultBlockEnd)
}

func TestLinkTypeMismatch(t *testing.T) {
	vs := StageReflection{Stage: shadertype.Vertex, Uniforms: []sh.ShaderVariable{usedVar(gltype.FloatVec3, "c", 1)}}
	fs := StageReflection{Stage: shadertype.Fragment, Uniforms: []sh.ShaderVariable{usedVar(gltype.FloatVec4, "c", 1)}}

	l, _ := quietLinker()
	_, err := l.Link(vs, fs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, shadertype.Fragment, linkErr.Stage)
	assert.Equal(t, "c", linkErr.Name)
}

func TestLinkArraySizeMismatch(t *testing.T) {
	vs := StageReflection{Stage: shadertype.Vertex, Uniforms: []sh.ShaderVariable{usedVar(gltype.Float, "w", 1, 4)}}
	fs := StageReflection{Stage: shadertype.Fragment, Uniforms: []sh.ShaderVariable{usedVar(gltype.Float, "w", 1, 8)}}
	l, _ := quietLinker()
	_, err := l.Link(vs, fs)
	assert.ErrorIs(t, err, ErrArraySizeMismatch)
}

func TestLinkBindingMerge(t *testing.T) {
	a := usedVar(gltype.Sampler2D, "tex", 1)
	b := usedVar(gltype.Sampler2D, "tex", 2)
	b.Binding = 5

	l, _ := quietLinker()
	p, err := l.Link(
		StageReflection{Stage: shadertype.Vertex, Uniforms: []sh.ShaderVariable{a}},
		StageReflection{Stage: shadertype.Fragment, Uniforms: []sh.ShaderVariable{b}},
	)
	require.NoError(t, err)
	require.Len(t, p.Uniforms, 1)
	assert.Equal(t, 5, p.Uniforms[0].Binding)

	a.Binding = 4
	_, err = l.Link(
		StageReflection{Stage: shadertype.Vertex, Uniforms: []sh.ShaderVariable{a}},
		StageReflection{Stage: shadertype.Fragment, Uniforms: []sh.ShaderVariable{b}},
	)
	assert.ErrorIs(t, err, ErrBindingMismatch)
}

func TestLinkConflictingStageIDs(t *testing.T) {
	// The same stage declares one uniform twice with different ids.
	st := StageReflection{
		Stage: shadertype.Vertex,
		Uniforms: []sh.ShaderVariable{
			usedVar(gltype.Float, "x", 1),
			usedVar(gltype.Float, "x", 2),
		},
	}
	l, _ := quietLinker()
	_, err := l.Link(st)
	require.Error(t, err)
	assert.ErrorIs(t, err, uniform.ErrConflictingStageID)
}

func TestLinkStageValidation(t *testing.T) {
	l, _ := quietLinker()

	_, err := l.Link()
	assert.ErrorIs(t, err, ErrNoStages)

	_, err = l.Link(StageReflection{Stage: shadertype.InvalidEnum})
	assert.ErrorIs(t, err, ErrInvalidStage)

	_, err = l.Link(StageReflection{Stage: shadertype.Vertex}, StageReflection{Stage: shadertype.Vertex})
	assert.ErrorIs(t, err, ErrDuplicateStage)
}

func TestLinkFlattensStructArrays(t *testing.T) {
	light := sh.NewStructVariable("lights", "Light", []sh.ShaderVariable{
		sh.NewShaderVariable(gltype.FloatVec3, "position"),
		sh.NewShaderVariable(gltype.FloatVec3, "color"),
	}, 2)
	light.Active = true
	light.ID = 6

	l, _ := quietLinker()
	p, err := l.Link(StageReflection{Stage: shadertype.Fragment, Uniforms: []sh.ShaderVariable{light}})
	require.NoError(t, err)
	require.Len(t, p.Uniforms, 4)

	idx, ok := p.UniformIndex("lights[1].color")
	require.True(t, ok)
	u := p.Uniforms[idx]
	assert.Equal(t, []uint32{2}, u.OuterArraySizes)
	assert.Equal(t, uint32(1), u.OuterArrayOffset)
	assert.False(t, u.IsArray())
	assert.False(t, u.IsStruct())
	assert.Equal(t, uint32(6), u.Usage.StageID(shadertype.Fragment))
	assert.Same(t, gltype.GetUniformTypeInfo(gltype.FloatVec3), u.TypeInfo)
}

func TestLinkExpandsArraysOfArrays(t *testing.T) {
	l, _ := quietLinker()
	p, err := l.Link(StageReflection{
		Stage:    shadertype.Vertex,
		Uniforms: []sh.ShaderVariable{usedVar(gltype.Float, "grid", 1, 4, 3)},
	})
	require.NoError(t, err)
	require.Len(t, p.Uniforms, 3)
	for i, u := range p.Uniforms {
		assert.False(t, u.IsArrayOfArrays())
		assert.Equal(t, []uint32{4}, u.ArraySizes)
		assert.Equal(t, uint32(i), u.OuterArrayOffset)
	}
	_, ok := p.UniformIndex("grid[2]")
	assert.True(t, ok)
	_, ok = p.UniformIndex("grid[2][0]")
	assert.True(t, ok)
}

func TestLinkOrdersOpaqueUniforms(t *testing.T) {
	counter := usedVar(gltype.UnsignedIntAtomicCounter, "hits", 1)
	counter.Binding = 2
	st := StageReflection{
		Stage: shadertype.Fragment,
		Uniforms: []sh.ShaderVariable{
			counter,
			usedVar(gltype.Image2D, "img", 2),
			usedVar(gltype.SamplerCube, "env", 3),
			usedVar(gltype.Float, "time", 4),
			usedVar(gltype.Sampler2D, "albedo", 5),
		},
	}
	l, _ := quietLinker()
	p, err := l.Link(st)
	require.NoError(t, err)

	names := make([]string, len(p.Uniforms))
	for i := range p.Uniforms {
		names[i] = p.Uniforms[i].Name
	}
	assert.Equal(t, []string{"time", "env", "albedo", "img", "hits"}, names)
	assert.Equal(t, Range{Low: 1, High: 3}, p.SamplerRange)
	assert.Equal(t, Range{Low: 3, High: 4}, p.ImageRange)
	assert.Equal(t, Range{Low: 4, High: 5}, p.AtomicCounterRange)
	assert.Equal(t, 2, p.SamplerRange.Len())
	assert.True(t, p.ImageRange.Contains(3))
	assert.False(t, p.ImageRange.Contains(4))
}

func TestLinkAtomicCounterBuffers(t *testing.T) {
	a := usedVar(gltype.UnsignedIntAtomicCounter, "a", 1)
	a.Binding = 0
	b := usedVar(gltype.UnsignedIntAtomicCounter, "b", 2, 3)
	b.Binding = 0
	c := usedVar(gltype.UnsignedIntAtomicCounter, "c", 3)
	c.Binding = 1
	c.Offset = 8

	l, _ := quietLinker()
	p, err := l.Link(StageReflection{Stage: shadertype.Compute, Uniforms: []sh.ShaderVariable{a, b, c}})
	require.NoError(t, err)
	require.Len(t, p.AtomicCounterBuffers, 2)

	buf0 := p.AtomicCounterBuffers[0]
	assert.Equal(t, 0, buf0.Binding)
	assert.Equal(t, uint32(16), buf0.DataSize)
	assert.Equal(t, 2, buf0.NumActiveVariables())
	assert.True(t, buf0.Usage.IsActive(shadertype.Compute))

	buf1 := p.AtomicCounterBuffers[1]
	assert.Equal(t, 1, buf1.Binding)
	assert.Equal(t, uint32(12), buf1.DataSize)

	bi, ok := p.UniformIndex("b")
	require.True(t, ok)
	bu := p.Uniforms[bi]
	assert.Equal(t, 4, bu.BlockInfo.Offset)
	assert.Equal(t, 4, bu.BlockInfo.ArrayStride)
	assert.Equal(t, 0, bu.BufferIndex.Raw())
	assert.False(t, bu.IsInDefaultBlock())

	c.Offset = 6
	_, err = l.Link(StageReflection{Stage: shadertype.Compute, Uniforms: []sh.ShaderVariable{c}})
	assert.ErrorIs(t, err, ErrCounterOffsetAlign)
}

func cameraBlock(id uint32) sh.InterfaceBlock {
	return sh.InterfaceBlock{
		Name:         "Camera",
		MappedName:   "_uCamera",
		InstanceName: "cam",
		Layout:       sh.LayoutStd140,
		Binding:      -1,
		StaticUse:    true,
		Active:       true,
		BlockType:    sh.BlockUniform,
		ID:           id,
		Fields: []sh.ShaderVariable{
			sh.NewShaderVariable(gltype.FloatMat4, "view"),
			sh.NewShaderVariable(gltype.FloatVec4, "planes", 6),
		},
	}
}

var cameraLayout = sh.BlockLayout{
	DataSize: 160,
	Members: map[string]sh.BlockMemberInfo{
		"view":   {Offset: 0, ArrayStride: 0, MatrixStride: 16, TopLevelArrayStride: 0},
		"planes": {Offset: 64, ArrayStride: 16, MatrixStride: 0, TopLevelArrayStride: 16},
	},
}

func TestLinkUniformBlocks(t *testing.T) {
	vs := StageReflection{
		Stage:         shadertype.Vertex,
		UniformBlocks: []sh.InterfaceBlock{cameraBlock(10)},
		Layouts:       map[string]sh.BlockLayout{"Camera": cameraLayout},
	}
	fsBlock := cameraBlock(20)
	fsBlock.Binding = 3
	fs := StageReflection{
		Stage:         shadertype.Fragment,
		Uniforms:      []sh.ShaderVariable{usedVar(gltype.Float, "exposure", 1)},
		UniformBlocks: []sh.InterfaceBlock{fsBlock},
	}

	l, logs := quietLinker()
	p, err := l.Link(vs, fs)
	require.NoError(t, err)
	assert.Empty(t, logs.String())

	require.Len(t, p.UniformBlocks, 1)
	block := p.UniformBlocks[0]
	assert.Equal(t, "Camera", block.NameWithArrayIndex())
	assert.Equal(t, "_uCamera", block.MappedNameWithArrayIndex())
	assert.Equal(t, 3, block.Binding)
	assert.Equal(t, uint32(160), block.DataSize)
	assert.Equal(t, uint32(0), block.FirstFieldArraySize)
	assert.Equal(t, uint32(10), block.Usage.StageID(shadertype.Vertex))
	assert.Equal(t, uint32(20), block.Usage.StageID(shadertype.Fragment))
	assert.Equal(t, 2, block.NumActiveVariables())

	assert.Equal(t, 1, p.DefaultBlockEnd)
	members := p.BlockMembers(0)
	require.Len(t, members, 2)
	assert.Equal(t, "Camera.view", members[0].Name)
	assert.Equal(t, "_uCamera.view", members[0].MappedName)
	assert.Equal(t, 16, members[0].BlockInfo.MatrixStride)
	assert.Equal(t, "Camera.planes", members[1].Name)
	assert.Equal(t, 64, members[1].BlockInfo.Offset)
	assert.Equal(t, 0, members[1].BufferIndex.Raw())
	assert.Equal(t, shadertype.SetOf(shadertype.Vertex, shadertype.Fragment), members[1].Usage.ActiveStages())

	idx, ok := p.UniformIndex("Camera.planes[0]")
	require.True(t, ok)
	assert.Equal(t, p.UniformBlocks[0].MemberIndexes[1], idx)
}

func TestLinkArrayedUniformBlock(t *testing.T) {
	decl := cameraBlock(1)
	decl.ArraySize = 3
	decl.Binding = 4
	decl.Fields[1].ArraySizes = []uint32{2}

	l, _ := quietLinker()
	p, err := l.Link(StageReflection{
		Stage:         shadertype.Vertex,
		UniformBlocks: []sh.InterfaceBlock{decl},
		Layouts:       map[string]sh.BlockLayout{"Camera": cameraLayout},
	})
	require.NoError(t, err)
	require.Len(t, p.UniformBlocks, 3)

	for i, b := range p.UniformBlocks {
		assert.True(t, b.IsArray)
		assert.Equal(t, uint32(i), b.ArrayElement)
		assert.Equal(t, 4+i, b.Binding)
		assert.Equal(t, p.UniformBlocks[0].MemberIndexes, b.MemberIndexes)
	}
	assert.Equal(t, uint32(0), p.UniformBlocks[0].FirstFieldArraySize)

	idx, ok := p.UniformBlockIndex("Camera[2]")
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = p.UniformBlockIndex("Camera")
	assert.False(t, ok)

	// Members are listed once and point at the first element.
	require.Len(t, p.Uniforms, 2)
	for _, u := range p.Uniforms {
		assert.Equal(t, 0, u.BufferIndex.Raw())
	}

	// Mutating one element's member list does not affect the others.
	p.UniformBlocks[1].MemberIndexes[0] = 99
	assert.NotEqual(t, 99, p.UniformBlocks[0].MemberIndexes[0])
}

func TestLinkBlockMismatch(t *testing.T) {
	a := cameraBlock(1)
	b := cameraBlock(2)
	b.Fields = b.Fields[:1]

	l, _ := quietLinker()
	_, err := l.Link(
		StageReflection{Stage: shadertype.Vertex, UniformBlocks: []sh.InterfaceBlock{a}},
		StageReflection{Stage: shadertype.Fragment, UniformBlocks: []sh.InterfaceBlock{b}},
	)
	assert.ErrorIs(t, err, ErrBlockMismatch)

	c := cameraBlock(2)
	c.Fields[0].Type = gltype.FloatMat3
	_, err = l.Link(
		StageReflection{Stage: shadertype.Vertex, UniformBlocks: []sh.InterfaceBlock{a}},
		StageReflection{Stage: shadertype.Fragment, UniformBlocks: []sh.InterfaceBlock{c}},
	)
	assert.ErrorIs(t, err, ErrBlockMismatch)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestLinkBlockWithoutLayoutWarns(t *testing.T) {
	l, logs := quietLinker()
	p, err := l.Link(StageReflection{Stage: shadertype.Vertex, UniformBlocks: []sh.InterfaceBlock{cameraBlock(1)}})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `no layout for uniform block "Camera"`)
	for _, u := range p.Uniforms {
		assert.True(t, u.BlockInfo.IsDefault())
	}
	assert.Equal(t, uint32(0), p.UniformBlocks[0].DataSize)
}

func particlesBlock(readOnly bool) sh.InterfaceBlock {
	particle := sh.NewStructVariable("particles", "Particle", []sh.ShaderVariable{
		sh.NewShaderVariable(gltype.FloatVec4, "position"),
		sh.NewShaderVariable(gltype.FloatVec4, "velocity"),
	}, 0)
	return sh.InterfaceBlock{
		Name:      "Particles",
		Layout:    sh.LayoutStd430,
		Binding:   1,
		ReadOnly:  readOnly,
		Active:    true,
		BlockType: sh.BlockStorage,
		ID:        7,
		Fields: []sh.ShaderVariable{
			sh.NewShaderVariable(gltype.UnsignedInt, "count"),
			particle,
		},
	}
}

func TestLinkShaderStorageBlocks(t *testing.T) {
	layout := sh.BlockLayout{
		DataSize: 16,
		Members: map[string]sh.BlockMemberInfo{
			"count":                 {Offset: 0, ArrayStride: 0, MatrixStride: 0, TopLevelArrayStride: 0},
			"particles[0].position": {Offset: 16, ArrayStride: 0, MatrixStride: 0, TopLevelArrayStride: 32},
			"particles[0].velocity": {Offset: 32, ArrayStride: 0, MatrixStride: 0, TopLevelArrayStride: 32},
		},
	}
	cs := StageReflection{
		Stage:         shadertype.Compute,
		StorageBlocks: []sh.InterfaceBlock{particlesBlock(false)},
		Layouts:       map[string]sh.BlockLayout{"Particles": layout},
	}

	l, logs := quietLinker()
	p, err := l.Link(cs)
	require.NoError(t, err)
	assert.Empty(t, logs.String())

	require.Len(t, p.ShaderStorageBlocks, 1)
	block := p.ShaderStorageBlocks[0]
	assert.False(t, block.IsReadOnly)
	assert.Equal(t, 1, block.Binding)
	assert.Equal(t, uint32(0), block.FirstFieldArraySize)
	assert.Equal(t, 3, block.NumActiveVariables())

	require.Len(t, p.BufferVariables, 3)
	count := p.BufferVariables[0]
	assert.Equal(t, "count", count.Name)
	assert.Equal(t, 1, count.TopLevelArraySize.Raw())

	vi, ok := p.BufferVariableIndex("particles[0].velocity")
	require.True(t, ok)
	vel := p.BufferVariables[vi]
	size, set := vel.TopLevelArraySize.Get()
	assert.True(t, set)
	assert.Equal(t, 0, size)
	assert.Equal(t, 32, vel.BlockInfo.Offset)
	assert.Equal(t, 0, vel.BufferIndex.Raw())
	assert.True(t, vel.Usage.IsActive(shadertype.Compute))
	assert.Equal(t, uint32(7), vel.Usage.StageID(shadertype.Compute))

	_, ok = p.ShaderStorageBlockIndex("Particles")
	assert.True(t, ok)
	assert.Empty(t, p.Uniforms)
}

func TestLinkStorageBlockReadOnlyRequiresAllStages(t *testing.T) {
	l, _ := quietLinker()
	p, err := l.Link(
		StageReflection{Stage: shadertype.Vertex, StorageBlocks: []sh.InterfaceBlock{particlesBlock(true)}},
		StageReflection{Stage: shadertype.Fragment, StorageBlocks: []sh.InterfaceBlock{particlesBlock(true)}},
	)
	require.NoError(t, err)
	assert.True(t, p.ShaderStorageBlocks[0].IsReadOnly)

	p, err = l.Link(
		StageReflection{Stage: shadertype.Vertex, StorageBlocks: []sh.InterfaceBlock{particlesBlock(true)}},
		StageReflection{Stage: shadertype.Fragment, StorageBlocks: []sh.InterfaceBlock{particlesBlock(false)}},
	)
	require.NoError(t, err)
	assert.False(t, p.ShaderStorageBlocks[0].IsReadOnly)
}

func TestLinkLimits(t *testing.T) {
	decl := cameraBlock(1)
	decl.ArraySize = 4
	l, _ := quietLinker()
	l.Limits = Limits{MaxCombinedUniformBlocks: 3}
	_, err := l.Link(StageReflection{Stage: shadertype.Vertex, UniformBlocks: []sh.InterfaceBlock{decl}})
	assert.ErrorIs(t, err, ErrTooManyBlocks)

	l.Limits = Limits{MaxCombinedUniformBlocks: 4}
	_, err = l.Link(StageReflection{Stage: shadertype.Vertex, UniformBlocks: []sh.InterfaceBlock{decl}})
	assert.NoError(t, err)
}

func TestLinkDropsInactiveResources(t *testing.T) {
	dead := sh.NewShaderVariable(gltype.FloatVec4, "dead")
	dead.ID = 1
	unusedBlock := cameraBlock(2)
	unusedBlock.Active = false
	unusedBlock.StaticUse = false
	unusedStorage := particlesBlock(true)
	unusedStorage.Active = false

	l, logs := quietLinker()
	p, err := l.Link(StageReflection{
		Stage:         shadertype.Vertex,
		Uniforms:      []sh.ShaderVariable{dead},
		UniformBlocks: []sh.InterfaceBlock{unusedBlock},
		StorageBlocks: []sh.InterfaceBlock{unusedStorage},
	})
	require.NoError(t, err)
	assert.Empty(t, p.Uniforms)
	assert.Empty(t, p.UniformBlocks)
	assert.Empty(t, p.ShaderStorageBlocks)
	assert.Empty(t, p.BufferVariables)
	assert.Zero(t, p.DefaultBlockEnd)
	assert.Empty(t, logs.String())

	_, ok := p.UniformIndex("dead")
	assert.False(t, ok)
	_, ok = p.UniformBlockIndex("Camera")
	assert.False(t, ok)

	// Used in any one stage keeps it.
	fs := StageReflection{Stage: shadertype.Fragment, Uniforms: []sh.ShaderVariable{usedVar(gltype.FloatVec4, "dead", 5)}}
	p, err = l.Link(StageReflection{Stage: shadertype.Vertex, Uniforms: []sh.ShaderVariable{dead}}, fs)
	require.NoError(t, err)
	idx, ok := p.UniformIndex("dead")
	require.True(t, ok)
	assert.Equal(t, shadertype.SetOf(shadertype.Fragment), p.Uniforms[idx].Usage.ActiveStages())
	assert.Equal(t, uint32(1), p.Uniforms[idx].Usage.StageID(shadertype.Vertex))
}

func TestLinkSkipsBuiltIns(t *testing.T) {
	l, _ := quietLinker()
	p, err := l.Link(StageReflection{
		Stage:    shadertype.Vertex,
		Uniforms: []sh.ShaderVariable{usedVar(gltype.FloatVec3, "gl_DepthRange", 1)},
	})
	require.NoError(t, err)
	assert.Empty(t, p.Uniforms)
}

func TestProgramCloneIndependent(t *testing.T) {
	l, _ := quietLinker()
	p, err := l.Link(StageReflection{
		Stage:         shadertype.Vertex,
		Uniforms:      []sh.ShaderVariable{usedVar(gltype.Float, "w", 1, 4)},
		UniformBlocks: []sh.InterfaceBlock{cameraBlock(2)},
	})
	require.NoError(t, err)

	c := p.Clone()
	require.Equal(t, p, c)

	c.Uniforms[0].ArraySizes[0] = 1
	c.UniformBlocks[0].MemberIndexes[0] = 42
	c.Uniforms[0].Usage.SetActive(shadertype.Fragment, true, 3)

	assert.Equal(t, []uint32{4}, p.Uniforms[0].ArraySizes)
	assert.NotEqual(t, 42, p.UniformBlocks[0].MemberIndexes[0])
	assert.False(t, p.Uniforms[0].Usage.IsActive(shadertype.Fragment))
}

func TestLinkErrorMessage(t *testing.T) {
	err := &LinkError{Stage: shadertype.Fragment, Name: "tint", Err: ErrTypeMismatch}
	assert.Equal(t, "link: fragment stage: tint: type differs between stages", err.Error())

	err = &LinkError{Stage: shadertype.InvalidEnum, Err: ErrNoStages}
	assert.Equal(t, "link: no stages to link", err.Error())
}
