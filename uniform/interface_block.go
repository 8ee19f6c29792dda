package uniform

import (
	"slices"
	"strconv"
)

// ShaderVariableBuffer is one buffer instance backing a set of linked
// variables: a uniform block element, a shader storage block element, or an
// atomic counter buffer.
type ShaderVariableBuffer struct {
	Binding  int    `json:"binding"`
	DataSize uint32 `json:"data_size"`

	// MemberIndexes index into the program's uniform table, or its buffer
	// variable table for shader storage blocks.
	MemberIndexes []int `json:"member_indexes"`

	Usage ActiveVariable `json:"usage"`
}

// NumActiveVariables returns the number of members.
func (b *ShaderVariableBuffer) NumActiveVariables() int {
	return len(b.MemberIndexes)
}

// Clone returns a deep copy of b.
func (b ShaderVariableBuffer) Clone() ShaderVariableBuffer {
	out := b
	out.MemberIndexes = slices.Clone(b.MemberIndexes)
	return out
}

// InterfaceBlock is one element of a uniform or shader storage block. An
// array of blocks is reflected as one InterfaceBlock per element.
type InterfaceBlock struct {
	ShaderVariableBuffer

	Name       string `json:"name"`
	MappedName string `json:"mapped_name"`
	IsArray    bool   `json:"is_array"`
	IsReadOnly bool   `json:"is_read_only"`

	// ArrayElement is this element's index when IsArray is set.
	ArrayElement uint32 `json:"array_element"`

	// FirstFieldArraySize is the outermost array size of the block's first
	// member, 0 when it is runtime sized or not an array.
	FirstFieldArraySize uint32 `json:"first_field_array_size"`
}

// NewInterfaceBlock builds a block element with no members.
func NewInterfaceBlock(name, mappedName string, isArray, isReadOnly bool, arrayElement, firstFieldArraySize uint32, binding int) InterfaceBlock {
	return InterfaceBlock{
		ShaderVariableBuffer: ShaderVariableBuffer{Binding: binding},
		Name:                 name,
		MappedName:           mappedName,
		IsArray:              isArray,
		IsReadOnly:           isReadOnly,
		ArrayElement:         arrayElement,
		FirstFieldArraySize:  firstFieldArraySize,
	}
}

// NameWithArrayIndex returns Name, followed by "[ArrayElement]" for array
// blocks.
func (b *InterfaceBlock) NameWithArrayIndex() string {
	return withArrayIndex(b.Name, b.IsArray, b.ArrayElement)
}

// MappedNameWithArrayIndex is NameWithArrayIndex for MappedName.
func (b *InterfaceBlock) MappedNameWithArrayIndex() string {
	return withArrayIndex(b.MappedName, b.IsArray, b.ArrayElement)
}

func withArrayIndex(name string, isArray bool, element uint32) string {
	if !isArray {
		return name
	}
	return name + "[" + strconv.FormatUint(uint64(element), 10) + "]"
}

// Clone returns a deep copy of b.
func (b InterfaceBlock) Clone() InterfaceBlock {
	out := b
	out.ShaderVariableBuffer = b.ShaderVariableBuffer.Clone()
	return out
}
