package shader

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is a vertex shader; its entry point is the @vertex function, conventionally VS.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a pixel shader; its entry point is the @fragment function, conventionally PS.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	if t == ShaderTypeFragment {
		return "fragment"
	}
	return "vertex"
}

// ShaderBuilderOption is a functional option applied to a shader during construction via NewShader.
type ShaderBuilderOption func(*shader)

// WithStruct registers a struct definition that the source can pull in with
// //@oxy:include <key> or bind with //@oxy:group.
//
// Parameters:
//   - key: the annotation key
//   - typeName: the WGSL type name declared by source
//   - source: the WGSL struct definition
//
// Returns:
//   - ShaderBuilderOption: a function that registers the struct on a shader
func WithStruct(key, typeName, source string) ShaderBuilderOption {
	return func(s *shader) {
		s.structs[AnnotationArg(key)] = StructSource{Source: source, Type: typeName}
	}
}

// WithEntryPoint overrides the entry point found in the source.
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}

// shader is the implementation of the Shader interface.
// It holds the processed source and the layout data parsed from it.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexInputs               []VertexInput
	structSizes                map[string]wgslTypeLayout

	structs map[AnnotationArg]StructSource
	pp      PreProcessor
}

// Shader is a pre-processed and parsed WGSL shader for one pipeline stage. It exposes what the
// renderer backend needs to build shader modules, bind group layouts and pipelines.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and diagnostics.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source with every @oxy: annotation expanded
	Source() string

	// ShaderType returns the stage this shader was created for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point function name.
	//
	// Returns:
	//   - string: the entry point name, e.g. "VS"
	EntryPoint() string

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors.
	// Entries are visible to this shader's stage only; the backend merges the layouts of the
	// vertex and pixel shader of a pipeline.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if nothing is declared there
	BindGroupVarName(group, binding int) string

	// VertexInputs returns the @location attributes of the vertex input structs, ordered by
	// location. Pixel shaders return nil.
	//
	// Returns:
	//   - []VertexInput: the vertex attributes consumed by the shader
	VertexInputs() []VertexInput

	// StructSize returns the uniform address space size of a struct declared in the source.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - uint64: the size in bytes, rounded to the struct alignment
	//   - bool: false if no such struct could be resolved
	StructSize(name string) (uint64, bool)

	// Declarations returns the @oxy:group annotations expanded by the pre-processor.
	//
	// Returns:
	//   - []Annotation: the group declarations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and parses WGSL source for one stage.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader is compiled for
//   - source: the raw WGSL source
//   - opts: builder options such as WithStruct
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails or the source has no entry point for the stage
func NewShader(key string, shaderType ShaderType, source string, opts ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:        key,
		shaderType: shaderType,
		structs:    make(map[AnnotationArg]StructSource),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pp = NewPreProcessor(s.structs)

	processed, err := s.pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to pre-process source: %w", key, err)
	}
	s.source = processed

	if s.entryPoint == "" {
		s.entryPoint = parseEntryPoint(s.source, shaderType)
	}
	if s.entryPoint == "" {
		return nil, fmt.Errorf("shader %s: no %s entry point found", key, shaderType)
	}

	visibility := wgpu.ShaderStageVertex
	if shaderType == ShaderTypeFragment {
		visibility = wgpu.ShaderStageFragment
	} else {
		s.vertexInputs = parseVertexInputs(s.source)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(s.source, visibility)
	s.structSizes = computeStructSizes(parseStructBlocks(stripComments(s.source)))

	common.Logger().Debug("parsed shader", "key", key, "stage", shaderType.String(), "entry", s.entryPoint, "groups", len(s.bindGroupLayoutDescriptors))
	return s, nil
}

// NewShaderFromPath reads WGSL source from a file and passes it to NewShader.
func NewShaderFromPath(key string, shaderType ShaderType, path string, opts ...ShaderBuilderOption) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read source file %q: %w", key, path, err)
	}
	return NewShader(key, shaderType, string(data), opts...)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) VertexInputs() []VertexInput {
	return s.vertexInputs
}

func (s *shader) StructSize(name string) (uint64, bool) {
	l, ok := s.structSizes[name]
	return l.size, ok
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}
