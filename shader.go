package goshaderlink

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/richinsley/goshaderlink/gltype"
	"github.com/richinsley/goshaderlink/program"
	"github.com/richinsley/goshaderlink/sh"
	"github.com/richinsley/goshaderlink/shadertype"
)

// Variable categories reported by the translator.
const (
	CategoryUniforms            = "uniforms"
	CategoryUniformBlocks       = "uniform_blocks"
	CategoryShaderStorageBlocks = "shader_storage_blocks"
)

// Variable is an active variable together with the category it was listed
// under, e.g. "uniforms" or "attributes".
type Variable struct {
	sh.ShaderVariable
	Category string `json:"category"`
}

type Shader struct {
	Code          string              `json:"code"`
	Variables     map[string]Variable `json:"variables,omitempty"`
	UniformBlocks []sh.InterfaceBlock `json:"uniform_blocks,omitempty"`
	StorageBlocks []sh.InterfaceBlock `json:"storage_blocks,omitempty"`
}

// Reflection returns what the linker needs from this stage. Uniforms are
// sorted by name. The translator does not report block layouts, so blocks
// link with default member layouts.
func (s *Shader) Reflection(stage shadertype.Type) program.StageReflection {
	out := program.StageReflection{
		Stage:         stage,
		UniformBlocks: slices.Clone(s.UniformBlocks),
		StorageBlocks: slices.Clone(s.StorageBlocks),
	}
	for _, v := range s.Variables {
		if v.Category == CategoryUniforms {
			out.Uniforms = append(out.Uniforms, v.Clone())
		}
	}
	slices.SortFunc(out.Uniforms, func(a, b sh.ShaderVariable) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// TranslationError is returned when the translator rejects a shader.
type TranslationError struct {
	Message string
	InfoLog string
}

func (e *TranslationError) Error() string {
	if e.InfoLog == "" {
		return e.Message
	}
	return e.Message + "\n" + e.InfoLog
}

type rpcResponse struct {
	Result *struct {
		ObjectCode      string                     `json:"object_code"`
		ActiveVariables map[string]json.RawMessage `json:"active_variables"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
		Data    struct {
			InfoLog string `json:"info_log"`
		} `json:"data"`
	} `json:"error"`
}

type wireVariable struct {
	Active     bool           `json:"active"`
	IsRowMajor bool           `json:"is_row_major"`
	MappedName string         `json:"mapped_name"`
	Name       string         `json:"name"`
	Precision  uint32         `json:"precision_enum"`
	StaticUse  bool           `json:"static_use"`
	Type       uint32         `json:"type_enum"`
	ArraySizes []uint32       `json:"array_sizes"`
	StructName string         `json:"struct_name"`
	Fields     []wireVariable `json:"fields"`
	Location   *int           `json:"location"`
	Binding    *int           `json:"binding"`
	Offset     *int           `json:"offset"`
	ID         uint32         `json:"id"`
}

func (w wireVariable) variable() sh.ShaderVariable {
	v := sh.NewShaderVariable(gltype.Enum(w.Type), w.Name, w.ArraySizes...)
	v.Precision = gltype.Enum(w.Precision)
	if w.MappedName != "" {
		v.MappedName = w.MappedName
	}
	v.StructName = w.StructName
	v.StaticUse = w.StaticUse
	v.Active = w.Active
	v.IsRowMajorLayout = w.IsRowMajor
	v.ID = w.ID
	if w.Location != nil {
		v.Location = *w.Location
	}
	if w.Binding != nil {
		v.Binding = *w.Binding
	}
	if w.Offset != nil {
		v.Offset = *w.Offset
	}
	for _, f := range w.Fields {
		v.Fields = append(v.Fields, f.variable())
	}
	return v
}

type wireBlock struct {
	Name         string         `json:"name"`
	MappedName   string         `json:"mapped_name"`
	InstanceName string         `json:"instance_name"`
	ArraySize    uint32         `json:"array_size"`
	Layout       string         `json:"layout"`
	IsRowMajor   bool           `json:"is_row_major"`
	Binding      *int           `json:"binding"`
	ReadOnly     bool           `json:"read_only"`
	StaticUse    bool           `json:"static_use"`
	Active       bool           `json:"active"`
	ID           uint32         `json:"id"`
	Fields       []wireVariable `json:"fields"`
}

var blockLayouts = map[string]sh.BlockLayoutType{
	"":       sh.LayoutShared,
	"shared": sh.LayoutShared,
	"packed": sh.LayoutPacked,
	"std140": sh.LayoutStd140,
	"std430": sh.LayoutStd430,
}

func (w wireBlock) block(kind sh.BlockType) (sh.InterfaceBlock, error) {
	layout, ok := blockLayouts[w.Layout]
	if !ok {
		return sh.InterfaceBlock{}, fmt.Errorf("block %s: unknown layout %q", w.Name, w.Layout)
	}
	b := sh.InterfaceBlock{
		Name:             w.Name,
		MappedName:       w.MappedName,
		InstanceName:     w.InstanceName,
		ArraySize:        w.ArraySize,
		Layout:           layout,
		IsRowMajorLayout: w.IsRowMajor,
		Binding:          -1,
		ReadOnly:         w.ReadOnly,
		StaticUse:        w.StaticUse,
		Active:           w.Active,
		BlockType:        kind,
		ID:               w.ID,
	}
	if w.Binding != nil {
		b.Binding = *w.Binding
	}
	for _, f := range w.Fields {
		b.Fields = append(b.Fields, f.variable())
	}
	return b, nil
}

// decodeResponse turns a translator JSON-RPC response into a Shader.
func decodeResponse(data []byte) (*Shader, error) {
	var resp rpcResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wasm response: %w", err)
	}
	if resp.Error != nil {
		return nil, &TranslationError{Message: resp.Error.Message, InfoLog: resp.Error.Data.InfoLog}
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("wasm response has neither result nor error")
	}

	s := &Shader{
		Code:      resp.Result.ObjectCode,
		Variables: make(map[string]Variable),
	}
	for category, raw := range resp.Result.ActiveVariables {
		switch category {
		case CategoryUniformBlocks, CategoryShaderStorageBlocks:
			var blocks []wireBlock
			if err := json.Unmarshal(raw, &blocks); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", category, err)
			}
			kind := sh.BlockUniform
			if category == CategoryShaderStorageBlocks {
				kind = sh.BlockStorage
			}
			for _, w := range blocks {
				b, err := w.block(kind)
				if err != nil {
					return nil, err
				}
				if kind == sh.BlockStorage {
					s.StorageBlocks = append(s.StorageBlocks, b)
				} else {
					s.UniformBlocks = append(s.UniformBlocks, b)
				}
			}
		default:
			var vars []wireVariable
			if err := json.Unmarshal(raw, &vars); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", category, err)
			}
			for _, w := range vars {
				s.Variables[w.Name] = Variable{ShaderVariable: w.variable(), Category: category}
			}
		}
	}
	return s, nil
}
