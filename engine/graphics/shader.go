package graphics

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// VertexShader is a compiled vertex stage. The entry point is the @vertex function, VS by
// convention.
type VertexShader struct {
	stageShader
}

// PixelShader is a compiled fragment stage. The entry point is the @fragment function, PS by
// convention.
type PixelShader struct {
	stageShader
}

type stageShader struct {
	r      renderer.Renderer
	h      renderer.ShaderHandle
	stage  renderer.ShaderStage
	source shader.Shader
}

// NewVertexShader parses and compiles the vertex stage of source. Failure is fatal: the
// diagnostics are logged and the call panics.
//
// Parameters:
//   - r: the renderer that compiles the shader
//   - key: a unique name used in labels and diagnostics
//   - source: WGSL source containing a @vertex entry point
//   - opts: shader options such as shader.WithStruct
//
// Returns:
//   - *VertexShader: the compiled shader
func NewVertexShader(r renderer.Renderer, key, source string, opts ...shader.ShaderBuilderOption) *VertexShader {
	return &VertexShader{compileStage(r, renderer.StageVertex, key, source, opts)}
}

// NewPixelShader parses and compiles the fragment stage of source. Failure is fatal.
func NewPixelShader(r renderer.Renderer, key, source string, opts ...shader.ShaderBuilderOption) *PixelShader {
	return &PixelShader{compileStage(r, renderer.StagePixel, key, source, opts)}
}

func compileStage(r renderer.Renderer, stage renderer.ShaderStage, key, source string, opts []shader.ShaderBuilderOption) stageShader {
	shaderType := shader.ShaderTypeVertex
	if stage == renderer.StagePixel {
		shaderType = shader.ShaderTypeFragment
	}

	parsed, err := shader.NewShader(key, shaderType, source, opts...)
	if err != nil {
		common.Logger().Error("shader parse failed", "key", key, "stage", stage.String(), "error", err)
		panic(fmt.Sprintf("graphics: failed to parse %s shader %s: %v", stage, key, err))
	}
	h, err := r.CreateShader(stage, parsed)
	if err != nil {
		common.Logger().Error("shader compile failed", "key", key, "stage", stage.String(), "error", err)
		panic(fmt.Sprintf("graphics: failed to compile %s shader %s: %v", stage, key, err))
	}
	return stageShader{r: r, h: h, stage: stage, source: parsed}
}

// Bind makes the shader the active shader of its stage.
func (s *stageShader) Bind() {
	s.r.BindShader(s.stage, s.h)
}

// Handle returns the renderer handle of the shader.
func (s *stageShader) Handle() renderer.ShaderHandle { return s.h }

// Source returns the parsed shader.
func (s *stageShader) Source() shader.Shader { return s.source }

// Terminate releases the shader.
func (s *stageShader) Terminate() {
	if s == nil || s.h == 0 {
		return
	}
	s.r.DestroyShader(s.h)
	s.h = 0
}
