package program

import (
	"fmt"
	"log"
	"slices"

	"fortio.org/safecast"

	"github.com/richinsley/goshaderlink/sh"
	"github.com/richinsley/goshaderlink/shadertype"
	"github.com/richinsley/goshaderlink/uniform"
)

// atomicCounterSize is the size in bytes of one atomic counter.
const atomicCounterSize = 4

// Limits caps the resources a linked program may use. Zero means unlimited.
type Limits struct {
	MaxCombinedUniformBlocks       int `toml:"max_combined_uniform_blocks" json:"max_combined_uniform_blocks"`
	MaxCombinedShaderStorageBlocks int `toml:"max_combined_shader_storage_blocks" json:"max_combined_shader_storage_blocks"`
	MaxAtomicCounterBuffers        int `toml:"max_atomic_counter_buffers" json:"max_atomic_counter_buffers"`
}

// Linker merges the reflection of separately compiled stages into a Program.
//
// Variables are matched across stages by name. Once matched, their per-stage
// usage is merged with ActiveVariable.UnionReferencesWith; any disagreement
// fails the link with a *LinkError.
type Linker struct {
	Limits Limits

	// Logger receives warnings. Nil means log.Default().
	Logger *log.Logger
}

func (l *Linker) logf(format string, args ...any) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

// Link builds the reflection table for the given stages. Each stage may
// appear at most once; the order of the arguments does not matter.
func (l *Linker) Link(stages ...StageReflection) (*Program, error) {
	if len(stages) == 0 {
		return nil, linkErr(shadertype.InvalidEnum, "", ErrNoStages)
	}

	p := &Program{}
	for _, st := range stages {
		if !st.Stage.Valid() {
			return nil, linkErr(shadertype.InvalidEnum, "", fmt.Errorf("%w: %d", ErrInvalidStage, st.Stage))
		}
		if p.LinkedStages.Test(st.Stage) {
			return nil, linkErr(st.Stage, "", ErrDuplicateStage)
		}
		p.LinkedStages.Set(st.Stage, true)
	}
	ordered := slices.Clone(stages)
	slices.SortFunc(ordered, func(a, b StageReflection) int {
		return int(a.Stage) - int(b.Stage)
	})

	defaults, err := l.linkDefaultUniforms(ordered)
	if err != nil {
		return nil, err
	}
	if err := l.placeDefaultUniforms(p, defaults); err != nil {
		return nil, err
	}
	if err := l.linkBlocks(p, ordered, sh.BlockUniform); err != nil {
		return nil, err
	}
	if err := l.linkBlocks(p, ordered, sh.BlockStorage); err != nil {
		return nil, err
	}
	if err := l.checkLimits(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Linker) linkDefaultUniforms(stages []StageReflection) ([]uniform.LinkedUniform, error) {
	var merged []uniform.LinkedUniform
	byName := make(map[string]int)

	for _, st := range stages {
		for _, v := range st.Uniforms {
			if v.IsBuiltIn() {
				continue
			}
			used := v.Active || v.StaticUse
			var ferr error
			sh.Flatten(v, "", "", func(leaf sh.Leaf) {
				if ferr != nil {
					return
				}
				name := leaf.Var.Name
				if i, ok := byName[name]; ok {
					ferr = mergeDefaultUniform(&merged[i], leaf.Var, st.Stage, used, v.ID)
					return
				}
				u, err := uniform.LinkedUniformFromVariable(leaf.Var)
				if err != nil {
					ferr = linkErr(st.Stage, name, err)
					return
				}
				u.OuterArraySizes = leaf.OuterArraySizes
				u.OuterArrayOffset = leaf.OuterArrayOffset
				u.Usage.SetActive(st.Stage, used, v.ID)
				byName[name] = len(merged)
				merged = append(merged, u)
			})
			if ferr != nil {
				return nil, ferr
			}
		}
	}
	return merged, nil
}

func mergeDefaultUniform(u *uniform.LinkedUniform, v sh.ShaderVariable, stage shadertype.Type, used bool, id uint32) error {
	if err := checkCompatible(u.ShaderVariable, v); err != nil {
		return linkErr(stage, v.Name, err)
	}
	binding, err := mergeSlot(u.Binding, v.Binding, ErrBindingMismatch)
	if err != nil {
		return linkErr(stage, v.Name, err)
	}
	location, err := mergeSlot(u.Location, v.Location, ErrLocationMismatch)
	if err != nil {
		return linkErr(stage, v.Name, err)
	}

	var usage uniform.ActiveVariable
	usage.SetActive(stage, used, id)
	if err := u.Usage.UnionReferencesWith(&usage); err != nil {
		return linkErr(stage, v.Name, err)
	}
	u.Binding = binding
	u.Location = location
	u.StaticUse = u.StaticUse || v.StaticUse
	u.Active = u.Active || v.Active
	return nil
}

// mergeSlot reconciles an optional binding or location, where a negative
// value means unspecified.
func mergeSlot(have, other int, mismatch error) (int, error) {
	switch {
	case other < 0:
		return have, nil
	case have < 0:
		return other, nil
	case have != other:
		return have, fmt.Errorf("%w: %d vs %d", mismatch, have, other)
	}
	return have, nil
}

func checkCompatible(a, b sh.ShaderVariable) error {
	if a.Type != b.Type {
		return fmt.Errorf("%w: %s vs %s", ErrTypeMismatch, a.Type, b.Type)
	}
	if a.Precision != 0 && b.Precision != 0 && a.Precision != b.Precision {
		return fmt.Errorf("%w: %s vs %s", ErrPrecisionMismatch, a.Precision, b.Precision)
	}
	if !slices.Equal(a.ArraySizes, b.ArraySizes) {
		return fmt.Errorf("%w: %v vs %v", ErrArraySizeMismatch, a.ArraySizes, b.ArraySizes)
	}
	if len(a.Fields) != len(b.Fields) {
		return fmt.Errorf("%w: struct has %d fields vs %d", ErrTypeMismatch, len(a.Fields), len(b.Fields))
	}
	for i := range a.Fields {
		if a.Fields[i].Name != b.Fields[i].Name {
			return fmt.Errorf("%w: field %d is %q vs %q", ErrTypeMismatch, i, a.Fields[i].Name, b.Fields[i].Name)
		}
		if err := checkCompatible(a.Fields[i], b.Fields[i]); err != nil {
			return fmt.Errorf("field %s: %w", a.Fields[i].Name, err)
		}
	}
	return nil
}

// placeDefaultUniforms orders the default block as basic uniforms, samplers,
// images, then atomic counters, and assigns atomic counter buffers. Uniforms
// no stage uses are left out.
func (l *Linker) placeDefaultUniforms(p *Program, defaults []uniform.LinkedUniform) error {
	var basic, samplers, images, counters []uniform.LinkedUniform
	for _, u := range defaults {
		switch {
		case !u.Usage.ActiveStages().Any():
			continue
		case u.IsSampler():
			samplers = append(samplers, u)
		case u.IsImage():
			images = append(images, u)
		case u.IsAtomicCounter():
			counters = append(counters, u)
		default:
			basic = append(basic, u)
		}
	}

	p.Uniforms = append(p.Uniforms, basic...)
	p.SamplerRange = appendRange(&p.Uniforms, samplers)
	p.ImageRange = appendRange(&p.Uniforms, images)
	p.AtomicCounterRange = appendRange(&p.Uniforms, counters)
	p.DefaultBlockEnd = len(p.Uniforms)

	return assignAtomicCounterBuffers(p)
}

func appendRange(dst *[]uniform.LinkedUniform, src []uniform.LinkedUniform) Range {
	r := Range{Low: len(*dst)}
	*dst = append(*dst, src...)
	r.High = len(*dst)
	return r
}

// assignAtomicCounterBuffers groups atomic counters by binding. Counters
// without an explicit offset are packed after the previous counter on the
// same binding.
func assignAtomicCounterBuffers(p *Program) error {
	byBinding := make(map[int]int)
	nextOffset := make(map[int]int)

	for i := p.AtomicCounterRange.Low; i < p.AtomicCounterRange.High; i++ {
		u := &p.Uniforms[i]
		binding := max(u.Binding, 0)

		bufIdx, ok := byBinding[binding]
		if !ok {
			bufIdx = len(p.AtomicCounterBuffers)
			byBinding[binding] = bufIdx
			p.AtomicCounterBuffers = append(p.AtomicCounterBuffers, uniform.ShaderVariableBuffer{Binding: binding})
		}
		buf := &p.AtomicCounterBuffers[bufIdx]

		offset := u.Offset
		if offset < 0 {
			offset = nextOffset[binding]
		}
		if offset%atomicCounterSize != 0 {
			return linkErr(shadertype.InvalidEnum, u.Name, fmt.Errorf("%w: %d", ErrCounterOffsetAlign, offset))
		}
		count, err := safecast.Conv[int](u.BasicTypeElementCount())
		if err != nil {
			return linkErr(shadertype.InvalidEnum, u.Name, err)
		}
		end := offset + atomicCounterSize*count
		dataSize, err := safecast.Conv[uint32](end)
		if err != nil {
			return linkErr(shadertype.InvalidEnum, u.Name, err)
		}

		arrayStride := 0
		if u.IsArray() {
			arrayStride = atomicCounterSize
		}
		u.Offset = offset
		u.BufferIndex = uniform.Some(bufIdx)
		u.BlockInfo = sh.BlockMemberInfo{
			Offset:              offset,
			ArrayStride:         arrayStride,
			MatrixStride:        0,
			TopLevelArrayStride: -1,
		}

		nextOffset[binding] = max(nextOffset[binding], end)
		buf.DataSize = max(buf.DataSize, dataSize)
		buf.MemberIndexes = append(buf.MemberIndexes, i)
		markActive(&buf.Usage, u.Usage.ActiveStages())
	}
	return nil
}

// markActive flags stages as active without touching recorded identifiers.
func markActive(a *uniform.ActiveVariable, stages shadertype.Set) {
	for _, stage := range stages.Types() {
		a.SetActive(stage, true, a.StageID(stage))
	}
}

func (l *Linker) checkLimits(p *Program) error {
	lim := l.Limits
	if lim.MaxCombinedUniformBlocks > 0 && len(p.UniformBlocks) > lim.MaxCombinedUniformBlocks {
		return linkErr(shadertype.InvalidEnum, "", fmt.Errorf("%w: %d uniform blocks, limit is %d",
			ErrTooManyBlocks, len(p.UniformBlocks), lim.MaxCombinedUniformBlocks))
	}
	if lim.MaxCombinedShaderStorageBlocks > 0 && len(p.ShaderStorageBlocks) > lim.MaxCombinedShaderStorageBlocks {
		return linkErr(shadertype.InvalidEnum, "", fmt.Errorf("%w: %d shader storage blocks, limit is %d",
			ErrTooManyBlocks, len(p.ShaderStorageBlocks), lim.MaxCombinedShaderStorageBlocks))
	}
	if lim.MaxAtomicCounterBuffers > 0 && len(p.AtomicCounterBuffers) > lim.MaxAtomicCounterBuffers {
		return linkErr(shadertype.InvalidEnum, "", fmt.Errorf("%w: %d buffers, limit is %d",
			ErrTooManyCounterBuffers, len(p.AtomicCounterBuffers), lim.MaxAtomicCounterBuffers))
	}
	return nil
}
