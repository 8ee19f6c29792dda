package uniform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/richinsley/goshaderlink/gltype"
	"github.com/richinsley/goshaderlink/sh"
	"github.com/richinsley/goshaderlink/shadertype"
)

func TestNewLinkedUniform(t *testing.T) {
	info := sh.BlockMemberInfo{Offset: 16, ArrayStride: 16, MatrixStride: -1, TopLevelArrayStride: -1}
	u, err := NewLinkedUniform(gltype.FloatVec4, gltype.HighFloat, "colors", []uint32{4}, -1, -1, 3, Some(2), info)
	require.NoError(t, err)

	assert.Equal(t, "colors", u.Name)
	assert.Equal(t, gltype.FloatVec4, u.Type)
	assert.Equal(t, gltype.HighFloat, u.Precision)
	assert.Equal(t, 3, u.Location)
	assert.Same(t, gltype.GetUniformTypeInfo(gltype.FloatVec4), u.TypeInfo)
	idx, ok := u.BufferIndex.Get()
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, info, u.BlockInfo)
	assert.Empty(t, u.OuterArraySizes)
	assert.Equal(t, uint32(0), u.OuterArrayOffset)
	assert.False(t, u.IsInDefaultBlock())
}

func TestNewLinkedUniformArrayOfArrays(t *testing.T) {
	_, err := NewLinkedUniform(gltype.Float, gltype.HighFloat, "a", []uint32{2, 3}, -1, -1, -1, Unset, sh.DefaultBlockMemberInfo)
	assert.ErrorIs(t, err, ErrArrayOfArrays)
}

func TestLinkedUniformFromVariable(t *testing.T) {
	v := sh.NewShaderVariable(gltype.Sampler2D, "tex", 2)
	v.Binding = 4
	u, err := LinkedUniformFromVariable(v)
	require.NoError(t, err)

	assert.True(t, u.IsInDefaultBlock())
	assert.Equal(t, -1, u.BufferIndex.Raw())
	assert.True(t, u.BlockInfo.IsDefault())
	assert.True(t, u.IsSampler())
	assert.False(t, u.IsImage())
	assert.False(t, u.IsAtomicCounter())
	assert.Equal(t, 4, u.Binding)

	// The promoted descriptor does not alias the input.
	v.ArraySizes[0] = 9
	assert.Equal(t, []uint32{2}, u.ArraySizes)
}

func TestLinkedUniformFromVariableInvariants(t *testing.T) {
	aoa := sh.NewShaderVariable(gltype.Float, "a", 2, 2)
	_, err := LinkedUniformFromVariable(aoa)
	assert.ErrorIs(t, err, ErrArrayOfArrays)

	structArray := sh.NewStructVariable("s", "S", []sh.ShaderVariable{
		sh.NewShaderVariable(gltype.Float, "x"),
	}, 3)
	_, err = LinkedUniformFromVariable(structArray)
	assert.ErrorIs(t, err, ErrArrayOfStructs)

	plainStruct := sh.NewStructVariable("s", "S", []sh.ShaderVariable{
		sh.NewShaderVariable(gltype.Float, "x"),
	})
	_, err = LinkedUniformFromVariable(plainStruct)
	assert.NoError(t, err)
}

type fakeShape struct{ array, aoa, strct bool }

func (f fakeShape) IsArray() bool { return f.array }
func (f fakeShape) IsArrayOfArrays() bool { return f.aoa }
func (f fakeShape) IsStruct() bool { return f.strct }

func TestCheckShape(t *testing.T) {
	assert.NoError(t, CheckShape(fakeShape{}))
	assert.NoError(t, CheckShape(fakeShape{array: true}))
	assert.NoError(t, CheckShape(fakeShape{strct: true}))
	assert.ErrorIs(t, CheckShape(fakeShape{array: true, aoa: true}), ErrArrayOfArrays)
	assert.ErrorIs(t, CheckShape(fakeShape{array: true, strct: true}), ErrArrayOfStructs)
}

func TestLinkedUniformCloneIndependent(t *testing.T) {
	u, err := LinkedUniformFromVariable(sh.NewShaderVariable(gltype.FloatVec2, "offsets", 8))
	require.NoError(t, err)
	u.OuterArraySizes = []uint32{2, 3}
	u.OuterArrayOffset = 4
	u.Usage.SetActive(shadertype.Vertex, true, 1)

	c := u.Clone()
	require.Equal(t, u, c)

	c.Name = "other"
	c.ArraySizes[0] = 1
	c.OuterArraySizes[0] = 7
	c.Usage.SetActive(shadertype.Fragment, true, 2)
	c.BufferIndex = Some(3)

	assert.Equal(t, "offsets", u.Name)
	assert.Equal(t, []uint32{8}, u.ArraySizes)
	assert.Equal(t, []uint32{2, 3}, u.OuterArraySizes)
	assert.False(t, u.Usage.IsActive(shadertype.Fragment))
	assert.False(t, u.BufferIndex.IsSet())
}

func TestNewBufferVariable(t *testing.T) {
	info := sh.BlockMemberInfo{Offset: 0, ArrayStride: 4, MatrixStride: -1, TopLevelArrayStride: 4}
	v := NewBufferVariable(gltype.UnsignedInt, gltype.HighInt, "Particles.ids", []uint32{0}, Some(1), info)

	assert.Equal(t, "Particles.ids", v.Name)
	assert.Equal(t, []uint32{0}, v.ArraySizes)
	assert.Equal(t, 1, v.BufferIndex.Raw())
	assert.Equal(t, info, v.BlockInfo)
	assert.False(t, v.TopLevelArraySize.IsSet())
	assert.Equal(t, -1, v.TopLevelArraySize.Raw())
}

func TestBufferVariableSentinelsAreNotZero(t *testing.T) {
	v := NewBufferVariable(gltype.Float, gltype.HighFloat, "x", nil, Unset, sh.DefaultBlockMemberInfo)
	v.TopLevelArraySize = Some(0)
	size, ok := v.TopLevelArraySize.Get()
	assert.True(t, ok)
	assert.Equal(t, 0, size)
	assert.Equal(t, 0, v.TopLevelArraySize.Raw())
	assert.Equal(t, -1, v.BufferIndex.Raw())

	c := v.Clone()
	c.TopLevelArraySize = Unset
	assert.True(t, v.TopLevelArraySize.IsSet())
}

func TestNumActiveVariables(t *testing.T) {
	var b ShaderVariableBuffer
	assert.Equal(t, 0, b.NumActiveVariables())

	b.MemberIndexes = append(b.MemberIndexes, 3, 4, 5)
	assert.Equal(t, 3, b.NumActiveVariables())

	b.MemberIndexes = b.MemberIndexes[:1]
	assert.Equal(t, 1, b.NumActiveVariables())
}

func TestNameWithArrayIndex(t *testing.T) {
	foo := NewInterfaceBlock("Foo", "_uFoo", false, false, 0, 0, 0)
	assert.Equal(t, "Foo", foo.NameWithArrayIndex())
	assert.Equal(t, "_uFoo", foo.MappedNameWithArrayIndex())

	bar := NewInterfaceBlock("Bar", "_uBar", true, false, 3, 0, 1)
	assert.Equal(t, "Bar[3]", bar.NameWithArrayIndex())
	assert.Equal(t, "_uBar[3]", bar.MappedNameWithArrayIndex())

	bar.ArrayElement = 10
	assert.Equal(t, "Bar[10]", bar.NameWithArrayIndex())

	// ArrayElement is ignored for non-array blocks.
	foo.ArrayElement = 2
	assert.Equal(t, "Foo", foo.NameWithArrayIndex())
}

func TestInterfaceBlockSharesBinding(t *testing.T) {
	b := NewInterfaceBlock("Lights", "Lights", false, true, 0, 4, 7)
	assert.Equal(t, 7, b.Binding)
	assert.Equal(t, 7, b.ShaderVariableBuffer.Binding)
	assert.True(t, b.IsReadOnly)
	assert.Equal(t, uint32(4), b.FirstFieldArraySize)
}

func TestInterfaceBlockCloneIndependent(t *testing.T) {
	b := NewInterfaceBlock("Bar", "_uBar", true, false, 1, 0, 2)
	b.DataSize = 64
	b.MemberIndexes = []int{0, 1}
	b.Usage.SetActive(shadertype.Fragment, true, 5)

	c := b.Clone()
	require.Equal(t, b, c)

	c.MemberIndexes[0] = 9
	c.MemberIndexes = append(c.MemberIndexes, 2)
	c.Name = "Baz"
	c.Binding = 8

	assert.Equal(t, []int{0, 1}, b.MemberIndexes)
	assert.Equal(t, "Bar", b.Name)
	assert.Equal(t, 2, b.Binding)
}

func TestMaybeInt(t *testing.T) {
	assert.False(t, Unset.IsSet())
	assert.Equal(t, -1, Unset.Raw())
	assert.Equal(t, "unset", Unset.String())

	zero := Some(0)
	assert.True(t, zero.IsSet())
	assert.NotEqual(t, Unset, zero)
	assert.Equal(t, "0", zero.String())

	assert.PanicsWithValue(t, "uniform: Some(-3): negative value", func() { Some(-3) })
	assert.Equal(t, Unset, MaybeFromRaw(-3))
	assert.Equal(t, Unset, MaybeFromRaw(-1))
	assert.Equal(t, Some(12), MaybeFromRaw(12))
}

func TestMaybeIntEncodesRawSentinel(t *testing.T) {
	type holder struct {
		A MaybeInt `json:"a" msgpack:"a"`
		B MaybeInt `json:"b" msgpack:"b"`
	}
	h := holder{A: Unset, B: Some(0)}

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":-1,"b":0}`, string(data))

	var back holder
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, h, back)

	packed, err := msgpack.Marshal(h)
	require.NoError(t, err)
	var fromPack holder
	require.NoError(t, msgpack.Unmarshal(packed, &fromPack))
	assert.Equal(t, h, fromPack)
}
