package effect

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/debug_ui"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

const (
	defaultShadowMapSize = 4096
	defaultShadowSize    = 100

	// lightDistance places the light camera this far behind the focus position
	lightDistance = 1000
)

// shadowEffect is the implementation of the ShadowEffect interface.
type shadowEffect struct {
	r renderer.Renderer

	vs              *graphics.VertexShader
	transformBuffer *graphics.TypedConstantBuffer[wvpTransform]
	depthMap        *graphics.RenderTarget
	lightCamera     camera.Camera

	light         *graphics.DirectionalLight
	focus         common.Vector3
	size          float32
	shadowMapSize uint32
}

// ShadowEffectBuilderOption is a functional option applied to a shadow effect during
// construction via NewShadowEffect.
type ShadowEffectBuilderOption func(*shadowEffect)

// WithShadowMapSize sets the resolution of the square depth map. Defaults to 4096.
func WithShadowMapSize(size uint32) ShadowEffectBuilderOption {
	return func(e *shadowEffect) {
		e.shadowMapSize = size
	}
}

// WithShadowFocus sets the point the light camera is centered on.
func WithShadowFocus(focus common.Vector3) ShadowEffectBuilderOption {
	return func(e *shadowEffect) {
		e.focus = focus
	}
}

// WithShadowSize sets the width and height of the area covered by the depth map, in world units.
// Defaults to 100.
func WithShadowSize(size float32) ShadowEffectBuilderOption {
	return func(e *shadowEffect) {
		e.size = size
	}
}

// ShadowEffect renders scene depth from a directional light into a depth map. It runs before the
// StandardEffect pass of the same frame, which samples the map through LightCamera and DepthMap.
type ShadowEffect interface {
	// Begin aims the light camera along the light, makes the depth map the active target and
	// binds the depth-only shader. A directional light must be set.
	Begin()

	// End restores the render target that was active at Begin.
	End()

	// Render draws the depth of one object.
	Render(o *render_object.RenderObject)

	// RenderGroup draws the depth of every part of a group with the group's transform.
	RenderGroup(g *render_object.RenderGroup)

	// SetDirectionalLight sets the light whose direction the light camera follows.
	SetDirectionalLight(l *graphics.DirectionalLight)

	// SetFocus sets the point the light camera is centered on.
	SetFocus(focus common.Vector3)

	// Focus returns the point the light camera is centered on.
	Focus() common.Vector3

	// SetSize sets the size of the area covered by the depth map, in world units.
	SetSize(size float32)

	// Size returns the size of the area covered by the depth map.
	Size() float32

	// LightCamera returns the orthographic camera the depth map is rendered from.
	LightCamera() camera.Camera

	// DepthMap returns the depth target.
	DepthMap() *graphics.RenderTarget

	// DebugUI draws the focus, the size and a preview of the depth map.
	DebugUI(ui debug_ui.UI)

	// Terminate releases the effect's GPU resources.
	Terminate()
}

var _ ShadowEffect = &shadowEffect{}

// NewShadowEffect creates the depth map, the light camera and the depth-only shader.
//
// Parameters:
//   - r: the renderer
//   - options: builder options such as WithShadowMapSize
//
// Returns:
//   - ShadowEffect: the new effect
func NewShadowEffect(r renderer.Renderer, options ...ShadowEffectBuilderOption) ShadowEffect {
	e := &shadowEffect{
		r:             r,
		size:          defaultShadowSize,
		shadowMapSize: defaultShadowMapSize,
	}
	for _, option := range options {
		option(e)
	}

	e.vs = graphics.NewVertexShader(r, "shadow", shadowSource, wvpStruct())
	e.transformBuffer = graphics.NewTypedConstantBuffer[wvpTransform](r)
	e.depthMap = graphics.NewRenderTarget(r, e.shadowMapSize, e.shadowMapSize, renderer.TextureFormatDepth32,
		graphics.WithLabel("Shadow Map"))
	e.lightCamera = camera.NewCamera(
		camera.WithMode(camera.ProjectionOrthographic),
		camera.WithNear(1),
		camera.WithFar(lightDistance*1.5),
		camera.WithSize(e.size, e.size),
	)
	common.Logger().Debug("shadow effect initialized", "mapSize", e.shadowMapSize)
	return e
}

// updateLightCamera places the light camera behind the focus position, looking along the light.
func (e *shadowEffect) updateLightCamera() {
	dir := e.light.Direction.Normalize()
	e.lightCamera.SetDirection(dir)
	e.lightCamera.SetPosition(e.focus.Sub(dir.Scale(lightDistance)))
	e.lightCamera.SetSize(e.size, e.size)
}

func (e *shadowEffect) Begin() {
	if e.light == nil {
		panic("effect: ShadowEffect has no directional light")
	}
	e.updateLightCamera()

	e.depthMap.BeginRender()
	e.vs.Bind()
	e.r.BindShader(renderer.StagePixel, 0)
	e.transformBuffer.BindVS(0)
}

func (e *shadowEffect) End() {
	e.depthMap.EndRender()
}

func (e *shadowEffect) draw(world common.Matrix4, meshes ...*graphics.MeshBuffer) {
	e.transformBuffer.Update(wvpTransform{
		WVP: transposedWVP(world, e.lightCamera.ViewMatrix(), e.lightCamera.ProjectionMatrix()),
	})
	for _, m := range meshes {
		m.Render()
	}
}

func (e *shadowEffect) Render(o *render_object.RenderObject) {
	e.draw(o.Transform.Matrix(), o.MeshBuffer)
}

func (e *shadowEffect) RenderGroup(g *render_object.RenderGroup) {
	meshes := make([]*graphics.MeshBuffer, len(g.RenderObjects))
	for i := range g.RenderObjects {
		meshes[i] = g.RenderObjects[i].MeshBuffer
	}
	e.draw(g.Transform.Matrix(), meshes...)
}

func (e *shadowEffect) SetDirectionalLight(l *graphics.DirectionalLight) {
	e.light = l
}

func (e *shadowEffect) SetFocus(focus common.Vector3) {
	e.focus = focus
}

func (e *shadowEffect) Focus() common.Vector3 {
	return e.focus
}

func (e *shadowEffect) SetSize(size float32) {
	e.size = max(size, 1)
}

func (e *shadowEffect) Size() float32 {
	return e.size
}

func (e *shadowEffect) LightCamera() camera.Camera {
	return e.lightCamera
}

func (e *shadowEffect) DepthMap() *graphics.RenderTarget {
	return e.depthMap
}

func (e *shadowEffect) DebugUI(ui debug_ui.UI) {
	if !ui.CollapsingHeader("ShadowEffect", true) {
		return
	}
	ui.Text("Depth Map")
	ui.Image(e.depthMap.RawData(), 144, 144)
	ui.DragFloat3("Focus", &e.focus, 0.1)
	if ui.DragFloat("Size", &e.size, 1, 1, 1000) {
		e.SetSize(e.size)
	}
}

func (e *shadowEffect) Terminate() {
	e.depthMap.Terminate()
	e.transformBuffer.Terminate()
	e.vs.Terminate()
}
