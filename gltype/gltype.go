// Package gltype classifies GL uniform types.
//
// The table mirrors what the GL and GLES specifications define for active
// uniform types. Lookups return pointers into an immutable table so callers can
// keep them for the lifetime of a linked program.
package gltype

import "fmt"

// Enum is a GL enumerant.
type Enum uint32

// Basic types.
const (
	None Enum = 0

	Float     Enum = 0x1406
	FloatVec2 Enum = 0x8B50
	FloatVec3 Enum = 0x8B51
	FloatVec4 Enum = 0x8B52

	Int     Enum = 0x1404
	IntVec2 Enum = 0x8B53
	IntVec3 Enum = 0x8B54
	IntVec4 Enum = 0x8B55

	UnsignedInt     Enum = 0x1405
	UnsignedIntVec2 Enum = 0x8DC6
	UnsignedIntVec3 Enum = 0x8DC7
	UnsignedIntVec4 Enum = 0x8DC8

	Bool     Enum = 0x8B56
	BoolVec2 Enum = 0x8B57
	BoolVec3 Enum = 0x8B58
	BoolVec4 Enum = 0x8B59

	FloatMat2   Enum = 0x8B5A
	FloatMat3   Enum = 0x8B5B
	FloatMat4   Enum = 0x8B5C
	FloatMat2x3 Enum = 0x8B65
	FloatMat2x4 Enum = 0x8B66
	FloatMat3x2 Enum = 0x8B67
	FloatMat3x4 Enum = 0x8B68
	FloatMat4x2 Enum = 0x8B69
	FloatMat4x3 Enum = 0x8B6A
)

// Opaque types.
const (
	Sampler2D                 Enum = 0x8B5E
	Sampler3D                 Enum = 0x8B5F
	SamplerCube               Enum = 0x8B60
	Sampler2DShadow           Enum = 0x8B62
	Sampler2DArray            Enum = 0x8DC1
	Sampler2DArrayShadow      Enum = 0x8DC4
	SamplerCubeShadow         Enum = 0x8DC5
	Sampler2DMultisample      Enum = 0x9108
	IntSampler2D              Enum = 0x8DCA
	IntSampler3D              Enum = 0x8DCB
	IntSamplerCube            Enum = 0x8DCC
	IntSampler2DArray         Enum = 0x8DCF
	UnsignedIntSampler2D      Enum = 0x8DD2
	UnsignedIntSampler3D      Enum = 0x8DD3
	UnsignedIntSamplerCube    Enum = 0x8DD4
	UnsignedIntSampler2DArray Enum = 0x8DD7

	Image2D      Enum = 0x904D
	Image3D      Enum = 0x904E
	ImageCube    Enum = 0x9050
	Image2DArray Enum = 0x9053

	UnsignedIntAtomicCounter Enum = 0x92DB
)

// Texture targets.
const (
	Texture2D            Enum = 0x0DE1
	Texture3D            Enum = 0x806F
	TextureCubeMap       Enum = 0x8513
	Texture2DArray       Enum = 0x8C1A
	Texture2DMultisample Enum = 0x9100
)

// Precisions.
const (
	LowFloat    Enum = 0x8DF0
	MediumFloat Enum = 0x8DF1
	HighFloat   Enum = 0x8DF2
	LowInt      Enum = 0x8DF3
	MediumInt   Enum = 0x8DF4
	HighInt     Enum = 0x8DF5
)

// UniformTypeInfo describes the storage and classification of a uniform type.
type UniformTypeInfo struct {
	Type                 Enum
	ComponentType        Enum
	TextureType          Enum
	TransposedMatrixType Enum
	BoolVectorType       Enum
	RowCount             int
	ColumnCount          int
	ComponentCount       int
	ComponentSize        int
	InternalSize         int
	ExternalSize         int
	IsSampler            bool
	IsMatrixType         bool
	IsImageType          bool
}

func basic(t, component, boolVec Enum, rows, cols int) UniformTypeInfo {
	return UniformTypeInfo{
		Type:                 t,
		ComponentType:        component,
		TransposedMatrixType: t,
		BoolVectorType:       boolVec,
		RowCount:             rows,
		ColumnCount:          cols,
		ComponentCount:       rows * cols,
		ComponentSize:        4,
		InternalSize:         4 * rows * 4,
		ExternalSize:         4 * rows * cols,
	}
}

// matrix builds a CxR matrix entry: cols columns of rows components.
func matrix(t, transposed Enum, cols, rows int) UniformTypeInfo {
	info := basic(t, Float, None, rows, cols)
	info.TransposedMatrixType = transposed
	info.IsMatrixType = true
	return info
}

func sampler(t, component, texture Enum) UniformTypeInfo {
	info := basic(t, component, None, 1, 1)
	info.TransposedMatrixType = t
	info.TextureType = texture
	info.IsSampler = true
	return info
}

func image(t, texture Enum) UniformTypeInfo {
	info := basic(t, Int, None, 1, 1)
	info.TextureType = texture
	info.IsImageType = true
	return info
}

var typeInfos = func() map[Enum]*UniformTypeInfo {
	infos := []UniformTypeInfo{
		{Type: None},

		basic(Float, Float, Bool, 1, 1),
		basic(FloatVec2, Float, BoolVec2, 1, 2),
		basic(FloatVec3, Float, BoolVec3, 1, 3),
		basic(FloatVec4, Float, BoolVec4, 1, 4),
		basic(Int, Int, Bool, 1, 1),
		basic(IntVec2, Int, BoolVec2, 1, 2),
		basic(IntVec3, Int, BoolVec3, 1, 3),
		basic(IntVec4, Int, BoolVec4, 1, 4),
		basic(UnsignedInt, UnsignedInt, Bool, 1, 1),
		basic(UnsignedIntVec2, UnsignedInt, BoolVec2, 1, 2),
		basic(UnsignedIntVec3, UnsignedInt, BoolVec3, 1, 3),
		basic(UnsignedIntVec4, UnsignedInt, BoolVec4, 1, 4),
		basic(Bool, Bool, Bool, 1, 1),
		basic(BoolVec2, Bool, BoolVec2, 1, 2),
		basic(BoolVec3, Bool, BoolVec3, 1, 3),
		basic(BoolVec4, Bool, BoolVec4, 1, 4),

		matrix(FloatMat2, FloatMat2, 2, 2),
		matrix(FloatMat3, FloatMat3, 3, 3),
		matrix(FloatMat4, FloatMat4, 4, 4),
		matrix(FloatMat2x3, FloatMat3x2, 2, 3),
		matrix(FloatMat2x4, FloatMat4x2, 2, 4),
		matrix(FloatMat3x2, FloatMat2x3, 3, 2),
		matrix(FloatMat3x4, FloatMat4x3, 3, 4),
		matrix(FloatMat4x2, FloatMat2x4, 4, 2),
		matrix(FloatMat4x3, FloatMat3x4, 4, 3),

		sampler(Sampler2D, Int, Texture2D),
		sampler(Sampler3D, Int, Texture3D),
		sampler(SamplerCube, Int, TextureCubeMap),
		sampler(Sampler2DShadow, Int, Texture2D),
		sampler(Sampler2DArray, Int, Texture2DArray),
		sampler(Sampler2DArrayShadow, Int, Texture2DArray),
		sampler(SamplerCubeShadow, Int, TextureCubeMap),
		sampler(Sampler2DMultisample, Int, Texture2DMultisample),
		sampler(IntSampler2D, Int, Texture2D),
		sampler(IntSampler3D, Int, Texture3D),
		sampler(IntSamplerCube, Int, TextureCubeMap),
		sampler(IntSampler2DArray, Int, Texture2DArray),
		sampler(UnsignedIntSampler2D, Int, Texture2D),
		sampler(UnsignedIntSampler3D, Int, Texture3D),
		sampler(UnsignedIntSamplerCube, Int, TextureCubeMap),
		sampler(UnsignedIntSampler2DArray, Int, Texture2DArray),

		image(Image2D, Texture2D),
		image(Image3D, Texture3D),
		image(ImageCube, TextureCubeMap),
		image(Image2DArray, Texture2DArray),

		basic(UnsignedIntAtomicCounter, UnsignedInt, None, 1, 1),
	}
	m := make(map[Enum]*UniformTypeInfo, len(infos))
	for i := range infos {
		m[infos[i].Type] = &infos[i]
	}
	return m
}()

// GetUniformTypeInfo returns the static description of t. Unknown types
// resolve to the entry for None.
func GetUniformTypeInfo(t Enum) *UniformTypeInfo {
	if info, ok := typeInfos[t]; ok {
		return info
	}
	return typeInfos[None]
}

// Known reports whether t has a table entry.
func Known(t Enum) bool {
	_, ok := typeInfos[t]
	return ok && t != None
}

// IsSamplerType reports whether t is a sampler type.
func IsSamplerType(t Enum) bool {
	return GetUniformTypeInfo(t).IsSampler
}

// IsImageType reports whether t is an image type.
func IsImageType(t Enum) bool {
	return GetUniformTypeInfo(t).IsImageType
}

// IsAtomicCounterType reports whether t is an atomic counter.
func IsAtomicCounterType(t Enum) bool {
	return t == UnsignedIntAtomicCounter
}

// IsOpaqueType reports whether values of t cannot live in a buffer.
func IsOpaqueType(t Enum) bool {
	return IsSamplerType(t) || IsImageType(t) || IsAtomicCounterType(t)
}

var enumNames = map[Enum]string{
	None:                      "GL_NONE",
	Float:                     "GL_FLOAT",
	FloatVec2:                 "GL_FLOAT_VEC2",
	FloatVec3:                 "GL_FLOAT_VEC3",
	FloatVec4:                 "GL_FLOAT_VEC4",
	Int:                       "GL_INT",
	IntVec2:                   "GL_INT_VEC2",
	IntVec3:                   "GL_INT_VEC3",
	IntVec4:                   "GL_INT_VEC4",
	UnsignedInt:               "GL_UNSIGNED_INT",
	UnsignedIntVec2:           "GL_UNSIGNED_INT_VEC2",
	UnsignedIntVec3:           "GL_UNSIGNED_INT_VEC3",
	UnsignedIntVec4:           "GL_UNSIGNED_INT_VEC4",
	Bool:                      "GL_BOOL",
	BoolVec2:                  "GL_BOOL_VEC2",
	BoolVec3:                  "GL_BOOL_VEC3",
	BoolVec4:                  "GL_BOOL_VEC4",
	FloatMat2:                 "GL_FLOAT_MAT2",
	FloatMat3:                 "GL_FLOAT_MAT3",
	FloatMat4:                 "GL_FLOAT_MAT4",
	FloatMat2x3:               "GL_FLOAT_MAT2x3",
	FloatMat2x4:               "GL_FLOAT_MAT2x4",
	FloatMat3x2:               "GL_FLOAT_MAT3x2",
	FloatMat3x4:               "GL_FLOAT_MAT3x4",
	FloatMat4x2:               "GL_FLOAT_MAT4x2",
	FloatMat4x3:               "GL_FLOAT_MAT4x3",
	Sampler2D:                 "GL_SAMPLER_2D",
	Sampler3D:                 "GL_SAMPLER_3D",
	SamplerCube:               "GL_SAMPLER_CUBE",
	Sampler2DShadow:           "GL_SAMPLER_2D_SHADOW",
	Sampler2DArray:            "GL_SAMPLER_2D_ARRAY",
	Sampler2DArrayShadow:      "GL_SAMPLER_2D_ARRAY_SHADOW",
	SamplerCubeShadow:         "GL_SAMPLER_CUBE_SHADOW",
	Sampler2DMultisample:      "GL_SAMPLER_2D_MULTISAMPLE",
	IntSampler2D:              "GL_INT_SAMPLER_2D",
	IntSampler3D:              "GL_INT_SAMPLER_3D",
	IntSamplerCube:            "GL_INT_SAMPLER_CUBE",
	IntSampler2DArray:         "GL_INT_SAMPLER_2D_ARRAY",
	UnsignedIntSampler2D:      "GL_UNSIGNED_INT_SAMPLER_2D",
	UnsignedIntSampler3D:      "GL_UNSIGNED_INT_SAMPLER_3D",
	UnsignedIntSamplerCube:    "GL_UNSIGNED_INT_SAMPLER_CUBE",
	UnsignedIntSampler2DArray: "GL_UNSIGNED_INT_SAMPLER_2D_ARRAY",
	Image2D:                   "GL_IMAGE_2D",
	Image3D:                   "GL_IMAGE_3D",
	ImageCube:                 "GL_IMAGE_CUBE",
	Image2DArray:              "GL_IMAGE_2D_ARRAY",
	UnsignedIntAtomicCounter:  "GL_UNSIGNED_INT_ATOMIC_COUNTER",
	LowFloat:                  "GL_LOW_FLOAT",
	MediumFloat:               "GL_MEDIUM_FLOAT",
	HighFloat:                 "GL_HIGH_FLOAT",
	LowInt:                    "GL_LOW_INT",
	MediumInt:                 "GL_MEDIUM_INT",
	HighInt:                   "GL_HIGH_INT",
}

func (e Enum) String() string {
	if name, ok := enumNames[e]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint32(e))
}
