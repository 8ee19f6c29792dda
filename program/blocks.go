package program

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"github.com/richinsley/goshaderlink/sh"
	"github.com/richinsley/goshaderlink/shadertype"
	"github.com/richinsley/goshaderlink/uniform"
)

type blockUse struct {
	stage shadertype.Type
	used  bool
	id    uint32
}

// linkedBlock is one block declaration merged across stages.
type linkedBlock struct {
	decl      sh.InterfaceBlock
	layout    sh.BlockLayout
	hasLayout bool
	readOnly  bool
	uses      []blockUse
}

func (l *Linker) linkBlocks(p *Program, stages []StageReflection, kind sh.BlockType) error {
	blocks, err := gatherBlocks(stages, kind)
	if err != nil {
		return err
	}
	for _, lb := range blocks {
		if err := l.emitBlock(p, lb, kind); err != nil {
			return err
		}
	}
	return nil
}

// gatherBlocks matches block declarations across stages by name, in order of
// first appearance.
func gatherBlocks(stages []StageReflection, kind sh.BlockType) ([]*linkedBlock, error) {
	var blocks []*linkedBlock
	byName := make(map[string]*linkedBlock)

	for _, st := range stages {
		decls := st.UniformBlocks
		if kind == sh.BlockStorage {
			decls = st.StorageBlocks
		}
		for _, decl := range decls {
			layout, hasLayout := st.Layouts[decl.Name]
			use := blockUse{stage: st.Stage, used: decl.Active || decl.StaticUse, id: decl.ID}

			lb, ok := byName[decl.Name]
			if !ok {
				lb = &linkedBlock{
					decl:      decl.Clone(),
					layout:    layout,
					hasLayout: hasLayout,
					readOnly:  decl.ReadOnly,
				}
				byName[decl.Name] = lb
				blocks = append(blocks, lb)
				lb.uses = append(lb.uses, use)
				continue
			}

			if err := checkBlockCompatible(lb.decl, decl); err != nil {
				return nil, linkErr(st.Stage, decl.Name, err)
			}
			binding, err := mergeSlot(lb.decl.Binding, decl.Binding, ErrBindingMismatch)
			if err != nil {
				return nil, linkErr(st.Stage, decl.Name, err)
			}
			lb.decl.Binding = binding
			if hasLayout {
				switch {
				case !lb.hasLayout:
					lb.layout, lb.hasLayout = layout, true
				case lb.layout.DataSize != layout.DataSize:
					return nil, linkErr(st.Stage, decl.Name, fmt.Errorf("%w: data size %d vs %d",
						ErrBlockMismatch, lb.layout.DataSize, layout.DataSize))
				}
			}
			lb.readOnly = lb.readOnly && decl.ReadOnly
			lb.uses = append(lb.uses, use)
		}
	}
	return blocks, nil
}

func checkBlockCompatible(a, b sh.InterfaceBlock) error {
	if a.ArraySize != b.ArraySize {
		return fmt.Errorf("%w: array size %d vs %d", ErrBlockMismatch, a.ArraySize, b.ArraySize)
	}
	if a.Layout != b.Layout {
		return fmt.Errorf("%w: layout %s vs %s", ErrBlockMismatch, a.Layout, b.Layout)
	}
	if len(a.Fields) != len(b.Fields) {
		return fmt.Errorf("%w: %d members vs %d", ErrBlockMismatch, len(a.Fields), len(b.Fields))
	}
	for i := range a.Fields {
		if a.Fields[i].Name != b.Fields[i].Name {
			return fmt.Errorf("%w: member %d is %q vs %q", ErrBlockMismatch, i, a.Fields[i].Name, b.Fields[i].Name)
		}
		if err := checkCompatible(a.Fields[i], b.Fields[i]); err != nil {
			return fmt.Errorf("%w: member %s: %w", ErrBlockMismatch, a.Fields[i].Name, err)
		}
	}
	return nil
}

// emitBlock appends the members of lb once, then one InterfaceBlock per array
// element. Every element lists the same members; the members point at the
// first element. A block no stage uses is dropped.
func (l *Linker) emitBlock(p *Program, lb *linkedBlock, kind sh.BlockType) error {
	decl := lb.decl
	table := &p.UniformBlocks
	if kind == sh.BlockStorage {
		table = &p.ShaderStorageBlocks
	}
	first := len(*table)

	var usage uniform.ActiveVariable
	for _, use := range lb.uses {
		var stageUsage uniform.ActiveVariable
		stageUsage.SetActive(use.stage, use.used, use.id)
		if err := usage.UnionReferencesWith(&stageUsage); err != nil {
			return linkErr(use.stage, decl.Name, err)
		}
	}
	if !usage.ActiveStages().Any() {
		return nil
	}

	if !lb.hasLayout {
		l.logf("warning: no layout for %s block %q; members use the default layout", kind, decl.Name)
	}

	var members []int
	prefix, mappedPrefix := decl.FieldPrefix(), decl.MappedFieldPrefix()
	for _, field := range decl.Fields {
		topLevelSize := uniform.Some(1)
		if field.IsArray() {
			size, err := safecast.Conv[int](field.OutermostArraySize())
			if err != nil {
				return linkErr(shadertype.InvalidEnum, decl.Name, err)
			}
			topLevelSize = uniform.Some(size)
		}

		var ferr error
		sh.Flatten(field, "", "", func(leaf sh.Leaf) {
			if ferr != nil {
				return
			}
			path := leaf.Var.Name
			info, ok := lb.layout.Member(path)
			if !ok {
				if lb.hasLayout {
					l.logf("warning: %s block %q has no layout for member %q", kind, decl.Name, path)
				}
				info = sh.DefaultBlockMemberInfo
			}
			v := leaf.Var
			name := prefix + path
			rowMajor := v.IsRowMajorLayout || decl.IsRowMajorLayout

			if kind == sh.BlockStorage {
				bv := uniform.NewBufferVariable(v.Type, v.Precision, name, v.ArraySizes, uniform.Some(first), info)
				bv.MappedName = mappedPrefix + v.MappedName
				bv.StaticUse = true
				bv.Active = true
				bv.IsRowMajorLayout = rowMajor
				bv.Usage = usage
				bv.TopLevelArraySize = topLevelSize
				members = append(members, len(p.BufferVariables))
				p.BufferVariables = append(p.BufferVariables, bv)
				return
			}

			u, err := uniform.NewLinkedUniform(v.Type, v.Precision, name, v.ArraySizes, -1, -1, -1, uniform.Some(first), info)
			if err != nil {
				ferr = linkErr(shadertype.InvalidEnum, name, err)
				return
			}
			u.MappedName = mappedPrefix + v.MappedName
			u.StaticUse = true
			u.Active = true
			u.IsRowMajorLayout = rowMajor
			u.OuterArraySizes = leaf.OuterArraySizes
			u.OuterArrayOffset = leaf.OuterArrayOffset
			u.Usage = usage
			members = append(members, len(p.Uniforms))
			p.Uniforms = append(p.Uniforms, u)
		})
		if ferr != nil {
			return ferr
		}
	}

	mappedName := decl.MappedName
	if mappedName == "" {
		mappedName = decl.Name
	}
	var firstFieldArraySize uint32
	if len(decl.Fields) > 0 {
		firstFieldArraySize = decl.Fields[0].OutermostArraySize()
	}
	readOnly := kind == sh.BlockStorage && lb.readOnly

	for e := range max(decl.ArraySize, 1) {
		binding := 0
		if decl.Binding >= 0 {
			offset, err := safecast.Conv[int](e)
			if err != nil {
				return linkErr(shadertype.InvalidEnum, decl.Name, err)
			}
			binding = decl.Binding + offset
		}
		ib := uniform.NewInterfaceBlock(decl.Name, mappedName, decl.IsArray(), readOnly, e, firstFieldArraySize, binding)
		ib.DataSize = lb.layout.DataSize
		ib.MemberIndexes = slices.Clone(members)
		ib.Usage = usage
		*table = append(*table, ib)
	}
	return nil
}
