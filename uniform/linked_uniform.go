package uniform

import (
	"slices"

	"github.com/richinsley/goshaderlink/gltype"
	"github.com/richinsley/goshaderlink/sh"
)

// Shape is what the representation checks need to know about a variable.
type Shape interface {
	IsArray() bool
	IsArrayOfArrays() bool
	IsStruct() bool
}

// CheckShape verifies the representation invariants of a linked variable: it
// is not an array of arrays, and not both an array and a struct.
func CheckShape(s Shape) error {
	if s.IsArrayOfArrays() {
		return ErrArrayOfArrays
	}
	if s.IsArray() && s.IsStruct() {
		return ErrArrayOfStructs
	}
	return nil
}

// LinkedUniform is a uniform of a linked program, either in the default
// uniform block or a member of a uniform block.
type LinkedUniform struct {
	sh.ShaderVariable

	Usage ActiveVariable `json:"usage"`

	TypeInfo *gltype.UniformTypeInfo `json:"-" msgpack:"-"`

	// BufferIndex is the index of the owning uniform block, or of the atomic
	// counter buffer for atomic counters. Unset for default-block uniforms.
	BufferIndex MaybeInt           `json:"buffer_index"`
	BlockInfo   sh.BlockMemberInfo `json:"block_info"`

	// OuterArraySizes holds the sizes of the enclosing arrays that were
	// expanded to produce this uniform, outermost first.
	OuterArraySizes  []uint32 `json:"outer_array_sizes,omitempty"`
	OuterArrayOffset uint32   `json:"outer_array_offset"`
}

// NewLinkedUniform builds a linked uniform from its fields.
func NewLinkedUniform(
	typ, precision gltype.Enum,
	name string,
	arraySizes []uint32,
	binding, offset, location int,
	bufferIndex MaybeInt,
	blockInfo sh.BlockMemberInfo,
) (LinkedUniform, error) {
	v := sh.NewShaderVariable(typ, name, slices.Clone(arraySizes)...)
	v.Precision = precision
	v.Binding = binding
	v.Offset = offset
	v.Location = location
	u := LinkedUniform{
		ShaderVariable: v,
		TypeInfo:       gltype.GetUniformTypeInfo(typ),
		BufferIndex:    bufferIndex,
		BlockInfo:      blockInfo,
	}
	if err := CheckShape(u); err != nil {
		return LinkedUniform{}, err
	}
	return u, nil
}

// LinkedUniformFromVariable promotes a default-block uniform.
func LinkedUniformFromVariable(v sh.ShaderVariable) (LinkedUniform, error) {
	u := LinkedUniform{
		ShaderVariable: v.Clone(),
		TypeInfo:       gltype.GetUniformTypeInfo(v.Type),
		BufferIndex:    Unset,
		BlockInfo:      sh.DefaultBlockMemberInfo,
	}
	if err := CheckShape(u); err != nil {
		return LinkedUniform{}, err
	}
	return u, nil
}

// Clone returns a deep copy of u. TypeInfo points into an immutable table and
// is shared.
func (u LinkedUniform) Clone() LinkedUniform {
	out := u
	out.ShaderVariable = u.ShaderVariable.Clone()
	out.OuterArraySizes = slices.Clone(u.OuterArraySizes)
	return out
}

func (u *LinkedUniform) typeInfo() *gltype.UniformTypeInfo {
	if u.TypeInfo == nil {
		return gltype.GetUniformTypeInfo(u.Type)
	}
	return u.TypeInfo
}

func (u *LinkedUniform) IsSampler() bool {
	return u.typeInfo().IsSampler
}

func (u *LinkedUniform) IsImage() bool {
	return u.typeInfo().IsImageType
}

func (u *LinkedUniform) IsAtomicCounter() bool {
	return gltype.IsAtomicCounterType(u.Type)
}

// IsInDefaultBlock reports whether u is stored directly by the uniform API
// rather than in a block.
func (u *LinkedUniform) IsInDefaultBlock() bool {
	return !u.BufferIndex.IsSet()
}
