package wgslreflect

import (
	"fmt"
	"strconv"

	"github.com/gogpu/naga/ir"

	"github.com/richinsley/goshaderlink/gltype"
	"github.com/richinsley/goshaderlink/program"
	"github.com/richinsley/goshaderlink/sh"
)

type reflector struct {
	mod  *ir.Module
	opts Options
}

func (r *reflector) global(out *program.StageReflection, g ir.GlobalVariable, h ir.GlobalVariableHandle, used bool, decl declaration) error {
	id := uint32(h) + 1
	binding, err := r.opts.binding(g.Binding)
	if err != nil {
		return err
	}

	switch g.Space {
	case ir.SpaceUniform:
		block, layout, err := r.block(g, sh.BlockUniform, sh.LayoutStd140)
		if err != nil {
			return err
		}
		block.Binding, block.ID = binding, id
		block.StaticUse, block.Active = used, used
		out.UniformBlocks = append(out.UniformBlocks, block)
		out.Layouts[block.Name] = layout

	case ir.SpaceStorage:
		block, layout, err := r.block(g, sh.BlockStorage, sh.LayoutStd430)
		if err != nil {
			return err
		}
		block.Binding, block.ID = binding, id
		block.StaticUse, block.Active = used, used
		// Storage defaults to read access.
		block.ReadOnly = decl.access == "" || decl.access == "read"
		out.StorageBlocks = append(out.StorageBlocks, block)
		out.Layouts[block.Name] = layout

	case ir.SpaceHandle:
		typ, arraySizes, ok := r.opaque(g.Type, decl.sampleKind)
		if !ok {
			if _, sampler := r.inner(g.Type).(ir.SamplerType); !sampler {
				r.opts.logf("warning: %s: resource type has no GL uniform; skipped", g.Name)
			}
			return nil
		}
		v := sh.NewShaderVariable(typ, g.Name, arraySizes...)
		v.Binding, v.ID = binding, id
		v.StaticUse, v.Active = used, used
		out.Uniforms = append(out.Uniforms, v)

	case ir.SpacePushConstant:
		r.opts.logf("warning: %s: push constants are not reflected", g.Name)
	}
	return nil
}

func (r *reflector) inner(th ir.TypeHandle) ir.TypeInner {
	if int(th) >= len(r.mod.Types) {
		return nil
	}
	return r.mod.Types[th].Inner
}

// block describes a buffer variable as an interface block named after the
// variable. A struct-typed buffer contributes its members; any other type
// becomes a block with a single member of the variable's name.
func (r *reflector) block(g ir.GlobalVariable, kind sh.BlockType, layoutType sh.BlockLayoutType) (sh.InterfaceBlock, sh.BlockLayout, error) {
	block := sh.InterfaceBlock{
		Name:      g.Name,
		Layout:    layoutType,
		Binding:   -1,
		BlockType: kind,
	}
	layout := sh.BlockLayout{Members: make(map[string]sh.BlockMemberInfo)}

	if st, ok := r.inner(g.Type).(ir.StructType); ok {
		block.InstanceName = g.Name
		block.MappedName = r.mod.Types[g.Type].Name
		layout.DataSize = st.Span
		for _, m := range st.Members {
			field, err := r.variable(m.Name, m.Type)
			if err != nil {
				return block, layout, fmt.Errorf("member %s: %w", m.Name, err)
			}
			block.Fields = append(block.Fields, field)
			r.layout(layout.Members, m.Name, m.Type, m.Offset, r.topLevelStride(m.Type))
		}
		return block, layout, nil
	}

	field, err := r.variable(g.Name, g.Type)
	if err != nil {
		return block, layout, err
	}
	block.Fields = []sh.ShaderVariable{field}
	layout.DataSize = r.size(g.Type)
	r.layout(layout.Members, g.Name, g.Type, 0, r.topLevelStride(g.Type))
	return block, layout, nil
}

// variable converts a buffer member type.
func (r *reflector) variable(name string, th ir.TypeHandle) (sh.ShaderVariable, error) {
	switch t := r.inner(th).(type) {
	case ir.ArrayType:
		elem, err := r.variable(name, t.Base)
		if err != nil {
			return elem, err
		}
		elem.ArraySizes = append(elem.ArraySizes, arrayLen(t))
		return elem, nil

	case ir.StructType:
		fields := make([]sh.ShaderVariable, 0, len(t.Members))
		for _, m := range t.Members {
			f, err := r.variable(m.Name, m.Type)
			if err != nil {
				return f, fmt.Errorf("%s: %w", m.Name, err)
			}
			fields = append(fields, f)
		}
		return sh.NewStructVariable(name, r.mod.Types[th].Name, fields), nil
	}

	typ, err := r.basic(th)
	if err != nil {
		return sh.ShaderVariable{}, err
	}
	return sh.NewShaderVariable(typ, name), nil
}

func (r *reflector) basic(th ir.TypeHandle) (gltype.Enum, error) {
	switch t := r.inner(th).(type) {
	case ir.ScalarType:
		return scalarType(t.Kind), nil
	case ir.AtomicType:
		return scalarType(t.Scalar.Kind), nil
	case ir.VectorType:
		if typ, ok := vectorTypes[vectorKey{t.Scalar.Kind, t.Size}]; ok {
			return typ, nil
		}
	case ir.MatrixType:
		if t.Scalar.Kind == ir.ScalarFloat {
			if typ, ok := matrixTypes[[2]ir.VectorSize{t.Columns, t.Rows}]; ok {
				return typ, nil
			}
		}
	}
	return gltype.None, fmt.Errorf("%w: %T", ErrUnsupportedType, r.inner(th))
}

func scalarType(k ir.ScalarKind) gltype.Enum {
	switch k {
	case ir.ScalarSint:
		return gltype.Int
	case ir.ScalarUint:
		return gltype.UnsignedInt
	case ir.ScalarBool:
		return gltype.Bool
	}
	return gltype.Float
}

type vectorKey struct {
	kind ir.ScalarKind
	size ir.VectorSize
}

var vectorTypes = map[vectorKey]gltype.Enum{
	{ir.ScalarFloat, ir.Vec2}: gltype.FloatVec2,
	{ir.ScalarFloat, ir.Vec3}: gltype.FloatVec3,
	{ir.ScalarFloat, ir.Vec4}: gltype.FloatVec4,
	{ir.ScalarSint, ir.Vec2}:  gltype.IntVec2,
	{ir.ScalarSint, ir.Vec3}:  gltype.IntVec3,
	{ir.ScalarSint, ir.Vec4}:  gltype.IntVec4,
	{ir.ScalarUint, ir.Vec2}:  gltype.UnsignedIntVec2,
	{ir.ScalarUint, ir.Vec3}:  gltype.UnsignedIntVec3,
	{ir.ScalarUint, ir.Vec4}:  gltype.UnsignedIntVec4,
	{ir.ScalarBool, ir.Vec2}:  gltype.BoolVec2,
	{ir.ScalarBool, ir.Vec3}:  gltype.BoolVec3,
	{ir.ScalarBool, ir.Vec4}:  gltype.BoolVec4,
}

// matrixTypes is keyed by columns, rows.
var matrixTypes = map[[2]ir.VectorSize]gltype.Enum{
	{ir.Vec2, ir.Vec2}: gltype.FloatMat2,
	{ir.Vec3, ir.Vec3}: gltype.FloatMat3,
	{ir.Vec4, ir.Vec4}: gltype.FloatMat4,
	{ir.Vec2, ir.Vec3}: gltype.FloatMat2x3,
	{ir.Vec2, ir.Vec4}: gltype.FloatMat2x4,
	{ir.Vec3, ir.Vec2}: gltype.FloatMat3x2,
	{ir.Vec3, ir.Vec4}: gltype.FloatMat3x4,
	{ir.Vec4, ir.Vec2}: gltype.FloatMat4x2,
	{ir.Vec4, ir.Vec3}: gltype.FloatMat4x3,
}

// opaque maps a texture type, or an array of them, to a sampler or image
// uniform type. kind is the texel type of sampled textures.
func (r *reflector) opaque(th ir.TypeHandle, kind ir.ScalarKind) (gltype.Enum, []uint32, bool) {
	var sizes []uint32
	for {
		arr, ok := r.inner(th).(ir.ArrayType)
		if !ok {
			break
		}
		sizes = append([]uint32{arrayLen(arr)}, sizes...)
		th = arr.Base
	}
	img, ok := r.inner(th).(ir.ImageType)
	if !ok {
		return gltype.None, nil, false
	}
	if img.Class != ir.ImageClassSampled {
		kind = ir.ScalarFloat
	}
	typ, ok := imageTypes[imageKey{img.Class, kind, img.Dim, img.Arrayed, img.Multisampled}]
	return typ, sizes, ok
}

type imageKey struct {
	class        ir.ImageClass
	kind         ir.ScalarKind
	dim          ir.ImageDimension
	arrayed      bool
	multisampled bool
}

var imageTypes = map[imageKey]gltype.Enum{
	{ir.ImageClassSampled, ir.ScalarFloat, ir.Dim2D, false, false}:   gltype.Sampler2D,
	{ir.ImageClassSampled, ir.ScalarFloat, ir.Dim2D, true, false}:    gltype.Sampler2DArray,
	{ir.ImageClassSampled, ir.ScalarFloat, ir.Dim2D, false, true}:    gltype.Sampler2DMultisample,
	{ir.ImageClassSampled, ir.ScalarFloat, ir.Dim3D, false, false}:   gltype.Sampler3D,
	{ir.ImageClassSampled, ir.ScalarFloat, ir.DimCube, false, false}: gltype.SamplerCube,
	{ir.ImageClassSampled, ir.ScalarSint, ir.Dim2D, false, false}:    gltype.IntSampler2D,
	{ir.ImageClassSampled, ir.ScalarSint, ir.Dim2D, true, false}:     gltype.IntSampler2DArray,
	{ir.ImageClassSampled, ir.ScalarSint, ir.Dim3D, false, false}:    gltype.IntSampler3D,
	{ir.ImageClassSampled, ir.ScalarSint, ir.DimCube, false, false}:  gltype.IntSamplerCube,
	{ir.ImageClassSampled, ir.ScalarUint, ir.Dim2D, false, false}:    gltype.UnsignedIntSampler2D,
	{ir.ImageClassSampled, ir.ScalarUint, ir.Dim2D, true, false}:     gltype.UnsignedIntSampler2DArray,
	{ir.ImageClassSampled, ir.ScalarUint, ir.Dim3D, false, false}:    gltype.UnsignedIntSampler3D,
	{ir.ImageClassSampled, ir.ScalarUint, ir.DimCube, false, false}:  gltype.UnsignedIntSamplerCube,
	{ir.ImageClassDepth, ir.ScalarFloat, ir.Dim2D, false, false}:     gltype.Sampler2DShadow,
	{ir.ImageClassDepth, ir.ScalarFloat, ir.Dim2D, true, false}:      gltype.Sampler2DArrayShadow,
	{ir.ImageClassDepth, ir.ScalarFloat, ir.DimCube, false, false}:   gltype.SamplerCubeShadow,
	{ir.ImageClassStorage, ir.ScalarFloat, ir.Dim2D, false, false}:   gltype.Image2D,
	{ir.ImageClassStorage, ir.ScalarFloat, ir.Dim2D, true, false}:    gltype.Image2DArray,
	{ir.ImageClassStorage, ir.ScalarFloat, ir.Dim3D, false, false}:   gltype.Image3D,
	{ir.ImageClassStorage, ir.ScalarFloat, ir.DimCube, false, false}: gltype.ImageCube,
}

// arrayLen is the declared size of an array, 0 when runtime-sized.
func arrayLen(a ir.ArrayType) uint32 {
	if a.Size.Constant == nil {
		return 0
	}
	return *a.Size.Constant
}

// layout records the member layout of a block member of type th at offset.
// Names follow sh.Flatten: struct arrays expand every dimension and basic
// arrays every dimension but the innermost.
func (r *reflector) layout(out map[string]sh.BlockMemberInfo, path string, th ir.TypeHandle, offset, topStride uint32) {
	switch t := r.inner(th).(type) {
	case ir.StructType:
		for _, m := range t.Members {
			r.layout(out, path+"."+m.Name, m.Type, offset+m.Offset, topStride)
		}
		return

	case ir.ArrayType:
		if r.isBasicArray(th) {
			r.leaf(out, path, t.Base, offset, t.Stride, topStride)
			return
		}
		for i := range max(arrayLen(t), 1) {
			idx := "[" + strconv.FormatUint(uint64(i), 10) + "]"
			r.layout(out, path+idx, t.Base, offset+i*t.Stride, topStride)
		}
		return
	}
	r.leaf(out, path, th, offset, 0, topStride)
}

func (r *reflector) leaf(out map[string]sh.BlockMemberInfo, path string, th ir.TypeHandle, offset, arrayStride, topStride uint32) {
	var matrixStride uint32
	if m, ok := r.inner(th).(ir.MatrixType); ok {
		matrixStride = 16
		if m.Rows == ir.Vec2 {
			matrixStride = 8
		}
	}
	out[path] = sh.BlockMemberInfo{
		Offset:              int(offset),
		ArrayStride:         int(arrayStride),
		MatrixStride:        int(matrixStride),
		IsRowMajorMatrix:    false,
		TopLevelArrayStride: int(topStride),
	}
}

// isBasicArray reports whether th is an array whose element is neither an
// array nor a struct.
func (r *reflector) isBasicArray(th ir.TypeHandle) bool {
	arr, ok := r.inner(th).(ir.ArrayType)
	if !ok {
		return false
	}
	switch r.inner(arr.Base).(type) {
	case ir.ArrayType, ir.StructType:
		return false
	}
	return true
}

func (r *reflector) topLevelStride(th ir.TypeHandle) uint32 {
	if arr, ok := r.inner(th).(ir.ArrayType); ok {
		return arr.Stride
	}
	return 0
}

// size is the byte size of a non-struct buffer, counting one element of a
// runtime-sized array.
func (r *reflector) size(th ir.TypeHandle) uint32 {
	switch t := r.inner(th).(type) {
	case ir.ArrayType:
		return max(arrayLen(t), 1) * t.Stride
	case ir.StructType:
		return t.Span
	case ir.VectorType:
		return 4 * uint32(t.Size)
	case ir.MatrixType:
		col := uint32(16)
		if t.Rows == ir.Vec2 {
			col = 8
		}
		return col * uint32(t.Columns)
	}
	return 4
}
