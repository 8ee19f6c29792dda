// Package goshaderlink reflects GLSL and ESSL shaders through the ANGLE
// translator compiled to WebAssembly, and hands the result to the program
// linker.
package goshaderlink

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"fortio.org/safecast"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/richinsley/goshaderlink/shadertype"
)

type ShaderSpec string

const (
	ShaderSpecGLES2  ShaderSpec = "gles2"
	ShaderSpecGLES3  ShaderSpec = "gles3"
	ShaderSpecGLES31 ShaderSpec = "gles31"
	ShaderSpecGLES32 ShaderSpec = "gles32"
	ShaderSpecWebGL  ShaderSpec = "webgl"
	ShaderSpecWebGL2 ShaderSpec = "webgl2"
	ShaderSpecWebGL3 ShaderSpec = "webgl3"
	ShaderSpecWebGLN ShaderSpec = "webgln" // WebGL 1.0 no highp
)

type OutputFormat string

const (
	OutputFormatESSL    OutputFormat = "essl"
	OutputFormatGLSL    OutputFormat = "glsl"
	OutputFormatGLSL130 OutputFormat = "glsl130"
	OutputFormatGLSL140 OutputFormat = "glsl140"
	OutputFormatGLSL150 OutputFormat = "glsl150"
	OutputFormatGLSL330 OutputFormat = "glsl330"
	OutputFormatGLSL400 OutputFormat = "glsl400"
	OutputFormatGLSL410 OutputFormat = "glsl410"
	OutputFormatGLSL420 OutputFormat = "glsl420"
	OutputFormatGLSL430 OutputFormat = "glsl430"
	OutputFormatGLSL440 OutputFormat = "glsl440"
	OutputFormatGLSL450 OutputFormat = "glsl450"
)

var (
	ErrClosed        = errors.New("translator has been closed")
	ErrMissingExport = errors.New("required function not exported from wasm module")
)

// ShaderTranslator wraps the wazero runtime and the ANGLE module. Calls are
// serialized; the module has a single linear memory.
type ShaderTranslator struct {
	mu          sync.Mutex
	runtime     wazero.Runtime
	module      api.Module
	ctx         context.Context
	closed      bool
	initializer api.Function
	finalizer   api.Function
	invoker     api.Function
	malloc      api.Function
	free        api.Function
}

type translateRequestParams struct {
	ShaderCodeBase64     string          `json:"shader_code_base64"`
	ShaderType           string          `json:"shader_type"`
	Spec                 ShaderSpec      `json:"spec"`
	Output               OutputFormat    `json:"output"`
	PrintActiveVariables bool            `json:"print_active_variables"`
	CompileOptions       map[string]bool `json:"compile_options"`
}

type jsonRPCRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	ID      int                    `json:"id"`
	Method  string                 `json:"method"`
	Params  translateRequestParams `json:"params"`
}

// NewShaderTranslatorFromFile reads the ANGLE module from path.
func NewShaderTranslatorFromFile(ctx context.Context, path string) (*ShaderTranslator, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wasm module: %w", err)
	}
	return NewShaderTranslator(ctx, wasm)
}

// NewShaderTranslator initializes the wazero runtime, loads the ANGLE module
// and prepares it for use.
func NewShaderTranslator(ctx context.Context, wasm []byte) (*ShaderTranslator, error) {
	r := wazero.NewRuntime(ctx)

	// The module was built against WASI for its libc.
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	compiledModule, err := r.CompileModule(ctx, wasm)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("failed to compile wasm module: %w", err)
	}

	moduleConfig := wazero.NewModuleConfig().WithStartFunctions()

	module, err := r.InstantiateModule(ctx, compiledModule, moduleConfig)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate wasm module: %w", err)
	}

	st := &ShaderTranslator{
		runtime:     r,
		module:      module,
		ctx:         ctx,
		initializer: module.ExportedFunction("initialize"),
		finalizer:   module.ExportedFunction("finalize"),
		invoker:     module.ExportedFunction("invoke"),
		malloc:      module.ExportedFunction("malloc"),
		free:        module.ExportedFunction("free"),
	}
	for name, fn := range map[string]api.Function{
		"initialize": st.initializer,
		"finalize":   st.finalizer,
		"invoke":     st.invoker,
		"malloc":     st.malloc,
		"free":       st.free,
	} {
		if fn == nil {
			r.Close(ctx)
			return nil, fmt.Errorf("%w: %s", ErrMissingExport, name)
		}
	}

	result, err := st.initializer.Call(ctx)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("failed to call 'initialize' function: %w", err)
	}
	if result[0] == 0 {
		r.Close(ctx)
		return nil, fmt.Errorf("the ANGLE library's 'initialize' function failed")
	}
	return st, nil
}

// Close finalizes the ANGLE library and releases wazero resources.
func (st *ShaderTranslator) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil
	}
	if _, err := st.finalizer.Call(st.ctx); err != nil {
		log.Printf("warning: call to wasm finalizer failed: %v", err)
	}
	if err := st.runtime.Close(st.ctx); err != nil {
		return fmt.Errorf("failed to close wazero runtime: %w", err)
	}
	st.closed = true
	return nil
}

// TranslateShader compiles one stage and returns its object code and active
// variables.
func (st *ShaderTranslator) TranslateShader(shaderCode string, stage shadertype.Type, spec ShaderSpec, output OutputFormat) (*Shader, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("invalid shader stage %d", stage)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil, ErrClosed
	}

	requestBytes, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "translate",
		Params: translateRequestParams{
			ShaderCodeBase64:     base64.StdEncoding.EncodeToString([]byte(shaderCode)),
			ShaderType:           stage.String(),
			Spec:                 spec,
			Output:               output,
			PrintActiveVariables: true,
			CompileOptions:       map[string]bool{"objectCode": true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	requestPtr, err := st.writeStringToMemory(requestBytes)
	if err != nil {
		return nil, err
	}
	defer st.free.Call(st.ctx, requestPtr)

	result, err := st.invoker.Call(st.ctx, requestPtr)
	if err != nil {
		return nil, fmt.Errorf("wasm invoke call failed: %w", err)
	}
	if result[0] == 0 {
		return nil, fmt.Errorf("wasm invoke function returned a null pointer")
	}
	responsePtr, err := safecast.Conv[uint32](result[0])
	if err != nil {
		return nil, fmt.Errorf("wasm response pointer: %w", err)
	}

	responseBytes, err := st.readStringFromMemory(responsePtr)
	if err != nil {
		return nil, err
	}
	return decodeResponse(responseBytes)
}

func (st *ShaderTranslator) writeStringToMemory(data []byte) (uint64, error) {
	byteCount := uint64(len(data))
	results, err := st.malloc.Call(st.ctx, byteCount+1)
	if err != nil {
		return 0, fmt.Errorf("wasm malloc call failed: %w", err)
	}
	ptr := results[0]
	if ptr == 0 {
		return 0, fmt.Errorf("wasm malloc failed to allocate memory")
	}
	offset, err := safecast.Conv[uint32](ptr)
	if err != nil {
		return 0, fmt.Errorf("wasm malloc pointer: %w", err)
	}
	end, err := safecast.Conv[uint32](ptr + byteCount)
	if err != nil {
		return 0, fmt.Errorf("wasm malloc pointer: %w", err)
	}
	if !st.module.Memory().Write(offset, data) {
		return 0, fmt.Errorf("failed to write to wasm memory")
	}
	if !st.module.Memory().WriteByte(end, 0) {
		return 0, fmt.Errorf("failed to write null terminator to wasm memory")
	}
	return ptr, nil
}

func (st *ShaderTranslator) readStringFromMemory(ptr uint32) ([]byte, error) {
	mem := st.module.Memory()
	memBuffer, ok := mem.Read(ptr, mem.Size()-ptr)
	if !ok {
		return nil, fmt.Errorf("failed to read from wasm memory")
	}
	for i, b := range memBuffer {
		if b == 0 {
			return memBuffer[:i], nil
		}
	}
	return nil, fmt.Errorf("string from wasm is not null-terminated")
}
