// Package sh holds the per-stage variable descriptions a shader compiler
// reports: variables, interface blocks and the layout of block members.
//
// Values in this package describe what one compiled stage sees. Merging them
// into a linked program is the job of package program.
package sh

import (
	"fmt"
	"slices"
	"strings"

	"github.com/richinsley/goshaderlink/gltype"
)

// ShaderVariable describes a variable declared by a shader stage.
//
// ArraySizes stores the innermost dimension first, so a GLSL declaration
// "float a[2][3]" has ArraySizes [3 2]. A size of 0 marks a runtime-sized
// array.
type ShaderVariable struct {
	Type       gltype.Enum `json:"type"`
	Precision  gltype.Enum `json:"precision,omitempty"`
	Name       string      `json:"name"`
	MappedName string      `json:"mapped_name,omitempty"`
	ArraySizes []uint32    `json:"array_sizes,omitempty"`

	// Fields is non-empty for struct variables. The struct itself has no
	// basic type.
	Fields     []ShaderVariable `json:"fields,omitempty"`
	StructName string           `json:"struct_name,omitempty"`

	StaticUse        bool `json:"static_use"`
	Active           bool `json:"active"`
	IsRowMajorLayout bool `json:"is_row_major,omitempty"`

	Location int `json:"location"`
	Binding  int `json:"binding"`
	Offset   int `json:"offset"`

	// ID is the stage-local identifier of the variable. Zero means none was
	// assigned.
	ID uint32 `json:"id,omitempty"`
}

// NewShaderVariable returns a variable with no explicit location, binding or
// offset.
func NewShaderVariable(typ gltype.Enum, name string, arraySizes ...uint32) ShaderVariable {
	return ShaderVariable{
		Type:       typ,
		Name:       name,
		MappedName: name,
		ArraySizes: arraySizes,
		Location:   -1,
		Binding:    -1,
		Offset:     -1,
	}
}

// NewStructVariable returns a struct-typed variable.
func NewStructVariable(name, structName string, fields []ShaderVariable, arraySizes ...uint32) ShaderVariable {
	v := NewShaderVariable(gltype.None, name, arraySizes...)
	v.StructName = structName
	v.Fields = fields
	return v
}

func (v ShaderVariable) IsArray() bool {
	return len(v.ArraySizes) > 0
}

func (v ShaderVariable) IsArrayOfArrays() bool {
	return len(v.ArraySizes) >= 2
}

func (v ShaderVariable) IsStruct() bool {
	return len(v.Fields) > 0
}

// ArraySizeProduct is the total number of elements across all dimensions, 1
// for non-arrays.
func (v ShaderVariable) ArraySizeProduct() uint32 {
	n := uint32(1)
	for _, s := range v.ArraySizes {
		n *= s
	}
	return n
}

// OutermostArraySize returns the size of the outermost dimension, 0 when v is
// not an array.
func (v ShaderVariable) OutermostArraySize() uint32 {
	if !v.IsArray() {
		return 0
	}
	return v.ArraySizes[len(v.ArraySizes)-1]
}

// InnermostArraySize returns the size of the innermost dimension, 0 when v is
// not an array.
func (v ShaderVariable) InnermostArraySize() uint32 {
	if !v.IsArray() {
		return 0
	}
	return v.ArraySizes[0]
}

// BasicTypeElementCount is the number of basic-typed elements v occupies.
func (v ShaderVariable) BasicTypeElementCount() uint32 {
	if !v.IsArray() {
		return 1
	}
	return v.ArraySizeProduct()
}

// IsBuiltIn reports whether v is a GLSL built-in.
func (v ShaderVariable) IsBuiltIn() bool {
	return strings.HasPrefix(v.Name, "gl_")
}

// Clone returns a deep copy of v.
func (v ShaderVariable) Clone() ShaderVariable {
	out := v
	out.ArraySizes = slices.Clone(v.ArraySizes)
	if v.Fields != nil {
		out.Fields = make([]ShaderVariable, len(v.Fields))
		for i := range v.Fields {
			out.Fields[i] = v.Fields[i].Clone()
		}
	}
	return out
}

func (v ShaderVariable) String() string {
	var b strings.Builder
	if v.IsStruct() {
		fmt.Fprintf(&b, "struct %s", v.StructName)
	} else {
		b.WriteString(v.Type.String())
	}
	b.WriteByte(' ')
	b.WriteString(v.Name)
	for i := len(v.ArraySizes) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "[%d]", v.ArraySizes[i])
	}
	return b.String()
}
