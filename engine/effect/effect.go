// Package effect holds the render passes built on the graphics primitives. Each effect owns its
// shaders, samplers and constant buffers, and follows the same protocol: Begin binds the pass
// state, Render may be called any number of times, and End undoes whatever Begin left bound that
// would conflict with the next pass.
//
// Effects run on the render thread and are not safe for concurrent use.
package effect

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

var (
	//go:embed assets/standard.wgsl
	standardSource string

	//go:embed assets/shadow.wgsl
	shadowSource string

	//go:embed assets/post_processing.wgsl
	postProcessingSource string

	//go:embed assets/simple_texture.wgsl
	simpleTextureSource string

	//go:embed assets/standard_transform.wgsl
	standardTransformSource string

	//go:embed assets/standard_settings.wgsl
	standardSettingsSource string

	//go:embed assets/wvp_transform.wgsl
	wvpTransformSource string

	//go:embed assets/post_process_params.wgsl
	postProcessParamsSource string
)

// TextureBinder is anything that can attach itself to a pixel stage texture slot, such as a
// graphics.Texture or a graphics.RenderTarget.
type TextureBinder interface {
	// BindPS attaches the texture to a pixel stage slot.
	//
	// Parameters:
	//   - slot: the texture slot (WGSL group 1, binding = slot)
	BindPS(slot int)
}

var (
	_ TextureBinder = (*graphics.Texture)(nil)
	_ TextureBinder = (*graphics.RenderTarget)(nil)
)

// bindMap attaches t to a texture slot of stage, or clears the slot when t is nil so a missing
// texture never samples what an earlier draw left bound. It reports whether t was bound.
func bindMap(r renderer.Renderer, stage renderer.ShaderStage, slot int, t *graphics.Texture) bool {
	if t == nil {
		r.UnbindTexture(stage, slot)
		return false
	}
	if stage == renderer.StageVertex {
		t.BindVS(slot)
	} else {
		t.BindPS(slot)
	}
	return true
}

// wvpTransform is the constant buffer of the shadow and simple texture passes. Size: 64 bytes.
type wvpTransform struct {
	WVP common.Matrix4
}

// wvpStruct registers WVPTransform under the "transform" key.
func wvpStruct() shader.ShaderBuilderOption {
	return shader.WithStruct("transform", "WVPTransform", wvpTransformSource)
}

// transposedWVP composes world, view and projection and transposes the result for upload.
func transposedWVP(world, view, proj common.Matrix4) common.Matrix4 {
	return world.Mul(view).Mul(proj).Transpose()
}
