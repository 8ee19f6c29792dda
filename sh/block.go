package sh

import "strconv"

// BlockMemberInfo is the memory layout of one block member. Offsets and
// strides are in bytes; -1 means "not applicable".
type BlockMemberInfo struct {
	Offset              int  `json:"offset"`
	ArrayStride         int  `json:"array_stride"`
	MatrixStride        int  `json:"matrix_stride"`
	IsRowMajorMatrix    bool `json:"is_row_major_matrix"`
	TopLevelArrayStride int  `json:"top_level_array_stride"`
}

// DefaultBlockMemberInfo is the layout of a variable that does not live in a
// block.
var DefaultBlockMemberInfo = BlockMemberInfo{
	Offset:              -1,
	ArrayStride:         -1,
	MatrixStride:        -1,
	IsRowMajorMatrix:    false,
	TopLevelArrayStride: -1,
}

// IsDefault reports whether i is DefaultBlockMemberInfo.
func (i BlockMemberInfo) IsDefault() bool {
	return i == DefaultBlockMemberInfo
}

// BlockLayout is the computed layout of one block declaration. Members is
// keyed by the member path relative to the block, as produced by Flatten with
// an empty prefix.
type BlockLayout struct {
	DataSize uint32                     `json:"data_size"`
	Members  map[string]BlockMemberInfo `json:"members"`
}

// Member looks up the layout of a member.
func (l BlockLayout) Member(path string) (BlockMemberInfo, bool) {
	info, ok := l.Members[path]
	return info, ok
}

// BlockType distinguishes uniform blocks from shader storage blocks.
type BlockType uint8

const (
	BlockUniform BlockType = iota
	BlockStorage
)

func (t BlockType) String() string {
	if t == BlockStorage {
		return "buffer"
	}
	return "uniform"
}

// BlockLayoutType is the declared layout qualifier of a block.
type BlockLayoutType uint8

const (
	LayoutShared BlockLayoutType = iota
	LayoutPacked
	LayoutStd140
	LayoutStd430
)

var layoutNames = [...]string{"shared", "packed", "std140", "std430"}

func (t BlockLayoutType) String() string {
	if int(t) < len(layoutNames) {
		return layoutNames[t]
	}
	return "layout(" + strconv.Itoa(int(t)) + ")"
}

// InterfaceBlock is a block declaration as one stage reports it.
type InterfaceBlock struct {
	Name         string `json:"name"`
	MappedName   string `json:"mapped_name,omitempty"`
	InstanceName string `json:"instance_name,omitempty"`

	// ArraySize is 0 for a block that is not an array.
	ArraySize uint32 `json:"array_size,omitempty"`

	Layout           BlockLayoutType `json:"layout"`
	IsRowMajorLayout bool            `json:"is_row_major,omitempty"`
	Binding          int             `json:"binding"`
	ReadOnly         bool            `json:"read_only,omitempty"`
	StaticUse        bool            `json:"static_use"`
	Active           bool            `json:"active"`
	BlockType        BlockType       `json:"block_type"`

	Fields []ShaderVariable `json:"fields"`

	ID uint32 `json:"id,omitempty"`
}

func (b InterfaceBlock) IsArray() bool {
	return b.ArraySize > 0
}

// FieldPrefix is prepended to member names when reflecting them. Members of a
// block with an instance name are qualified by the block name.
func (b InterfaceBlock) FieldPrefix() string {
	if b.InstanceName == "" {
		return ""
	}
	return b.Name + "."
}

// MappedFieldPrefix is FieldPrefix for mapped names.
func (b InterfaceBlock) MappedFieldPrefix() string {
	if b.InstanceName == "" {
		return ""
	}
	if b.MappedName != "" {
		return b.MappedName + "."
	}
	return b.Name + "."
}

// Clone returns a deep copy of b.
func (b InterfaceBlock) Clone() InterfaceBlock {
	out := b
	if b.Fields != nil {
		out.Fields = make([]ShaderVariable, len(b.Fields))
		for i := range b.Fields {
			out.Fields[i] = b.Fields[i].Clone()
		}
	}
	return out
}
