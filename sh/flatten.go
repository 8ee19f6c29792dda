package sh

import (
	"slices"
	"strconv"
)

// Leaf is one basic-typed variable reached by Flatten.
type Leaf struct {
	// Var is the leaf with its full name. It has at most one array
	// dimension and no fields.
	Var ShaderVariable

	// OuterArraySizes lists the sizes of the arrays that were expanded to
	// reach the leaf, outermost first. Empty for a leaf reached without
	// expanding any array.
	OuterArraySizes []uint32

	// OuterArrayOffset is the row-major index of the leaf's element among
	// the expanded arrays.
	OuterArrayOffset uint32
}

// Flatten walks v down to basic-typed leaves and calls fn for each one.
//
// Struct members are joined with ".", every dimension of a struct array is
// expanded into "[i]", and every dimension of a basic-typed array except the
// innermost is expanded. A runtime-sized dimension is expanded as a single
// element. prefix and mappedPrefix are prepended to the names.
func Flatten(v ShaderVariable, prefix, mappedPrefix string, fn func(Leaf)) {
	mapped := v.MappedName
	if mapped == "" {
		mapped = v.Name
	}
	flatten(v, prefix+v.Name, mappedPrefix+mapped, nil, 0, fn)
}

func flatten(v ShaderVariable, name, mapped string, outer []uint32, offset uint32, fn func(Leaf)) {
	expandCount := len(v.ArraySizes)
	if !v.IsStruct() && expandCount > 0 {
		expandCount--
	}
	// ArraySizes is innermost first; expand from the outermost end.
	dims := make([]uint32, expandCount)
	for i := range dims {
		dims[i] = v.ArraySizes[len(v.ArraySizes)-1-i]
	}

	expand(dims, name, mapped, outer, offset, func(name, mapped string, outer []uint32, offset uint32) {
		if v.IsStruct() {
			for _, f := range v.Fields {
				fm := f.MappedName
				if fm == "" {
					fm = f.Name
				}
				flatten(f, name+"."+f.Name, mapped+"."+fm, outer, offset, fn)
			}
			return
		}
		leaf := v.Clone()
		leaf.Name = name
		leaf.MappedName = mapped
		leaf.ArraySizes = nil
		if len(v.ArraySizes) > 0 {
			leaf.ArraySizes = []uint32{v.ArraySizes[0]}
		}
		fn(Leaf{
			Var:              leaf,
			OuterArraySizes:  slices.Clone(outer),
			OuterArrayOffset: offset,
		})
	})
}

func expand(dims []uint32, name, mapped string, outer []uint32, offset uint32, fn func(string, string, []uint32, uint32)) {
	if len(dims) == 0 {
		fn(name, mapped, outer, offset)
		return
	}
	size := dims[0]
	n := max(size, 1)
	outer = append(slices.Clip(outer), size)
	for i := uint32(0); i < n; i++ {
		idx := "[" + strconv.FormatUint(uint64(i), 10) + "]"
		expand(dims[1:], name+idx, mapped+idx, outer, offset*n+i, fn)
	}
}
