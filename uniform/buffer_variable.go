package uniform

import (
	"slices"

	"github.com/richinsley/goshaderlink/gltype"
	"github.com/richinsley/goshaderlink/sh"
)

// BufferVariable is a member of a shader storage block.
type BufferVariable struct {
	sh.ShaderVariable

	Usage ActiveVariable `json:"usage"`

	BufferIndex MaybeInt           `json:"buffer_index"`
	BlockInfo   sh.BlockMemberInfo `json:"block_info"`

	// TopLevelArraySize is the array size of the top-level block member this
	// variable belongs to: 1 when that member is not an array, 0 when it is
	// runtime sized. Unset until the variable is placed in a block.
	TopLevelArraySize MaybeInt `json:"top_level_array_size"`
}

// NewBufferVariable builds a buffer variable from its fields.
func NewBufferVariable(
	typ, precision gltype.Enum,
	name string,
	arraySizes []uint32,
	bufferIndex MaybeInt,
	blockInfo sh.BlockMemberInfo,
) BufferVariable {
	v := sh.NewShaderVariable(typ, name, slices.Clone(arraySizes)...)
	v.Precision = precision
	return BufferVariable{
		ShaderVariable:    v,
		BufferIndex:       bufferIndex,
		BlockInfo:         blockInfo,
		TopLevelArraySize: Unset,
	}
}

// Clone returns a deep copy of v.
func (v BufferVariable) Clone() BufferVariable {
	out := v
	out.ShaderVariable = v.ShaderVariable.Clone()
	return out
}
