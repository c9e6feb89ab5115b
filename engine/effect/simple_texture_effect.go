package effect

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
)

// RenderData is an unlit textured mesh drawn by a SimpleTextureEffect. Texture, when set, takes
// precedence over TextureId, so render targets can be drawn directly.
type RenderData struct {
	MeshBuffer *graphics.MeshBuffer
	Texture    TextureBinder
	TextureId  resource.TextureId
	World      common.Matrix4
}

// simpleTextureEffect is the implementation of the SimpleTextureEffect interface.
type simpleTextureEffect struct {
	r        renderer.Renderer
	textures resource.TextureManager

	vs              *graphics.VertexShader
	ps              *graphics.PixelShader
	sampler         *graphics.Sampler
	transformBuffer *graphics.TypedConstantBuffer[wvpTransform]

	camera camera.Camera
}

// SimpleTextureEffect draws position and texture coordinate meshes with one texture and no
// lighting.
type SimpleTextureEffect interface {
	// Begin binds the shaders, the sampler and the transform buffer. A camera must be set.
	Begin()

	// End finishes the pass.
	End()

	// Render draws one mesh with its texture. When neither Texture nor a resident TextureId is
	// given, the texture slot is cleared.
	Render(d RenderData)

	// SetCamera sets the camera used by following Render calls.
	SetCamera(c camera.Camera)

	// Terminate releases the effect's GPU resources.
	Terminate()
}

var _ SimpleTextureEffect = &simpleTextureEffect{}

// NewSimpleTextureEffect compiles the simple texture shaders.
//
// Parameters:
//   - r: the renderer
//   - textures: the manager that resolves texture ids
//
// Returns:
//   - SimpleTextureEffect: the new effect
func NewSimpleTextureEffect(r renderer.Renderer, textures resource.TextureManager) SimpleTextureEffect {
	return &simpleTextureEffect{
		r:               r,
		textures:        textures,
		vs:              graphics.NewVertexShader(r, "simple_texture", simpleTextureSource, wvpStruct()),
		ps:              graphics.NewPixelShader(r, "simple_texture", simpleTextureSource, wvpStruct()),
		sampler:         graphics.NewSampler(r, renderer.FilterLinear, renderer.AddressWrap),
		transformBuffer: graphics.NewTypedConstantBuffer[wvpTransform](r),
	}
}

func (e *simpleTextureEffect) Begin() {
	if e.camera == nil {
		panic("effect: SimpleTextureEffect has no camera")
	}
	e.vs.Bind()
	e.ps.Bind()
	e.sampler.BindPS(0)
	e.transformBuffer.BindVS(0)
}

func (e *simpleTextureEffect) End() {}

func (e *simpleTextureEffect) Render(d RenderData) {
	e.transformBuffer.Update(wvpTransform{
		WVP: transposedWVP(d.World, e.camera.ViewMatrix(), e.camera.ProjectionMatrix()),
	})
	if d.Texture != nil {
		d.Texture.BindPS(0)
	} else {
		bindMap(e.r, renderer.StagePixel, 0, e.textures.GetTexture(d.TextureId))
	}
	d.MeshBuffer.Render()
}

func (e *simpleTextureEffect) SetCamera(c camera.Camera) {
	e.camera = c
}

func (e *simpleTextureEffect) Terminate() {
	e.transformBuffer.Terminate()
	e.sampler.Terminate()
	e.ps.Terminate()
	e.vs.Terminate()
}
