package effect

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/debug_ui"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
)

// Constant buffer, texture and sampler slots of the standard pass.
const (
	standardTransformSlot = 0
	standardLightSlot     = 1
	standardMaterialSlot  = 2
	standardSettingsSlot  = 3

	diffuseMapSlot = 0
	specMapSlot    = 1
	normalMapSlot  = 2
	bumpMapSlot    = 3
	shadowMapSlot  = 4

	textureSamplerSlot = 0
	shadowSamplerSlot  = 1
)

// standardTransform mirrors StandardTransform. Size: 208 bytes.
type standardTransform struct {
	WVP          common.Matrix4 // offset   0
	World        common.Matrix4 // offset  64
	LWVP         common.Matrix4 // offset 128: light space transform, zero without a shadow map
	ViewPosition common.Vector3 // offset 192
	_pad         float32        // offset 204
}

// standardSettings mirrors StandardSettings. Flags are 0 or 1. Size: 32 bytes.
type standardSettings struct {
	UseDiffuseMap int32   // offset  0
	UseSpecMap    int32   // offset  4
	UseNormalMap  int32   // offset  8
	UseBumpMap    int32   // offset 12
	UseShadowMap  int32   // offset 16
	BumpWeight    float32 // offset 20
	DepthBias     float32 // offset 24
	_pad          float32 // offset 28
}

// standardEffect is the implementation of the StandardEffect interface.
type standardEffect struct {
	r        renderer.Renderer
	textures resource.TextureManager

	vs            *graphics.VertexShader
	ps            *graphics.PixelShader
	sampler       *graphics.Sampler
	shadowSampler *graphics.Sampler

	transformBuffer *graphics.TypedConstantBuffer[standardTransform]
	lightBuffer     *graphics.TypedConstantBuffer[graphics.DirectionalLight]
	materialBuffer  *graphics.TypedConstantBuffer[graphics.Material]
	settingsBuffer  *graphics.TypedConstantBuffer[standardSettings]

	camera      camera.Camera
	lightCamera camera.Camera
	light       *graphics.DirectionalLight
	shadowMap   *graphics.RenderTarget

	// settings holds the toggles; per object flags are derived from them in Render
	settings standardSettings
	active   bool
}

// StandardEffect is the lit pass: directional Phong lighting with diffuse, specular, normal and
// bump maps, and an optional shadow map produced by a ShadowEffect.
//
// Per object the effect uploads the transposed world-view-projection, the material and the map
// flags. A map flag is on only when its toggle is on and the object carries a texture for it.
type StandardEffect interface {
	// Begin binds the shaders, samplers and constant buffers of the pass. A camera and a
	// directional light must be set.
	Begin()

	// End unbinds the shadow map so the next shadow pass can render into it.
	End()

	// Render draws one object.
	//
	// Parameters:
	//   - o: the object to draw; its textures are resolved through the texture manager
	Render(o *render_object.RenderObject)

	// RenderGroup draws every part of a group with the group's transform. The transform and the
	// light are uploaded once; the material and map flags are uploaded per part.
	//
	// Parameters:
	//   - g: the group to draw
	RenderGroup(g *render_object.RenderGroup)

	// SetCamera sets the camera the scene is viewed from.
	SetCamera(c camera.Camera)

	// SetLightCamera sets the camera the shadow map was rendered from.
	SetLightCamera(c camera.Camera)

	// SetDirectionalLight sets the light. The effect reads it on every Render, so edits to the
	// light are picked up without setting it again.
	SetDirectionalLight(l *graphics.DirectionalLight)

	// SetShadowMap sets the depth target sampled for shadows. Nil disables shadows.
	SetShadowMap(t *graphics.RenderTarget)

	// SetBumpWeight sets the displacement scale of the bump map.
	SetBumpWeight(w float32)

	// SetDepthBias sets the bias subtracted from the light space depth before the shadow test.
	SetDepthBias(b float32)

	// SetUseDiffuseMap toggles the diffuse map.
	SetUseDiffuseMap(on bool)

	// SetUseSpecMap toggles the specular map.
	SetUseSpecMap(on bool)

	// SetUseNormalMap toggles the normal map.
	SetUseNormalMap(on bool)

	// SetUseBumpMap toggles the bump map.
	SetUseBumpMap(on bool)

	// SetUseShadowMap toggles shadows.
	SetUseShadowMap(on bool)

	// DebugUI draws the effect's settings.
	//
	// Parameters:
	//   - ui: the debug interface of the current frame
	DebugUI(ui debug_ui.UI)

	// Terminate releases the effect's GPU resources.
	Terminate()
}

var _ StandardEffect = &standardEffect{}

// NewStandardEffect compiles the standard shaders and creates the pass resources. Every map and
// shadows start enabled, with a bump weight of 0.1 and a depth bias of 0.000003.
//
// Parameters:
//   - r: the renderer
//   - textures: the manager that resolves the texture ids of rendered objects
//
// Returns:
//   - StandardEffect: the new effect
func NewStandardEffect(r renderer.Renderer, textures resource.TextureManager) StandardEffect {
	opts := []shader.ShaderBuilderOption{
		shader.WithStruct("transform", "StandardTransform", standardTransformSource),
		shader.WithStruct("directional_light", "DirectionalLight", graphics.DirectionalLightSource),
		shader.WithStruct("material", "Material", graphics.MaterialSource),
		shader.WithStruct("settings", "StandardSettings", standardSettingsSource),
	}
	e := &standardEffect{
		r:        r,
		textures: textures,

		vs:            graphics.NewVertexShader(r, "standard", standardSource, opts...),
		ps:            graphics.NewPixelShader(r, "standard", standardSource, opts...),
		sampler:       graphics.NewSampler(r, renderer.FilterLinear, renderer.AddressWrap),
		shadowSampler: graphics.NewComparisonSampler(r),

		transformBuffer: graphics.NewTypedConstantBuffer[standardTransform](r),
		lightBuffer:     graphics.NewTypedConstantBuffer[graphics.DirectionalLight](r),
		materialBuffer:  graphics.NewTypedConstantBuffer[graphics.Material](r),
		settingsBuffer:  graphics.NewTypedConstantBuffer[standardSettings](r),

		settings: standardSettings{
			UseDiffuseMap: 1,
			UseSpecMap:    1,
			UseNormalMap:  1,
			UseBumpMap:    1,
			UseShadowMap:  1,
			BumpWeight:    0.1,
			DepthBias:     0.000003,
		},
	}
	common.Logger().Debug("standard effect initialized")
	return e
}

func (e *standardEffect) Begin() {
	if e.camera == nil {
		panic("effect: StandardEffect has no camera")
	}
	if e.light == nil {
		panic("effect: StandardEffect has no directional light")
	}

	e.vs.Bind()
	e.ps.Bind()

	e.sampler.BindVS(textureSamplerSlot)
	e.sampler.BindPS(textureSamplerSlot)
	e.shadowSampler.BindPS(shadowSamplerSlot)

	e.transformBuffer.BindVS(standardTransformSlot)
	e.lightBuffer.BindVS(standardLightSlot)
	e.lightBuffer.BindPS(standardLightSlot)
	e.materialBuffer.BindPS(standardMaterialSlot)
	e.settingsBuffer.BindVS(standardSettingsSlot)
	e.settingsBuffer.BindPS(standardSettingsSlot)
	e.active = true
}

func (e *standardEffect) End() {
	if e.shadowMap != nil {
		graphics.UnbindPS(e.r, shadowMapSlot)
	}
	e.active = false
}

// shadowsActive reports whether the light space transform and shadow map are used this pass.
func (e *standardEffect) shadowsActive() bool {
	return e.settings.UseShadowMap > 0 && e.shadowMap != nil && e.lightCamera != nil
}

// updateTransform uploads the transform of world and binds the shadow map when shadows are on.
func (e *standardEffect) updateTransform(world common.Matrix4) {
	data := standardTransform{
		WVP:          transposedWVP(world, e.camera.ViewMatrix(), e.camera.ProjectionMatrix()),
		World:        world.Transpose(),
		ViewPosition: e.camera.Position(),
	}
	if e.shadowsActive() {
		data.LWVP = transposedWVP(world, e.lightCamera.ViewMatrix(), e.lightCamera.ProjectionMatrix())
		e.shadowMap.BindPS(shadowMapSlot)
	}
	e.transformBuffer.Update(data)
}

// updatePart uploads the flags and material of one object and binds its textures. Ids are
// resolved on every draw; a map counts as available only while its texture is resident.
func (e *standardEffect) updatePart(o *render_object.RenderObject) {
	hasDiffuse := bindMap(e.r, renderer.StagePixel, diffuseMapSlot, e.textures.GetTexture(o.DiffuseMapId))
	hasSpec := bindMap(e.r, renderer.StagePixel, specMapSlot, e.textures.GetTexture(o.SpecMapId))
	hasNormal := bindMap(e.r, renderer.StagePixel, normalMapSlot, e.textures.GetTexture(o.NormalMapId))
	hasBump := bindMap(e.r, renderer.StageVertex, bumpMapSlot, e.textures.GetTexture(o.BumpMapId))

	s := e.settings
	s.UseDiffuseMap = common.BoolToFlag(e.settings.UseDiffuseMap > 0 && hasDiffuse)
	s.UseSpecMap = common.BoolToFlag(e.settings.UseSpecMap > 0 && hasSpec)
	s.UseNormalMap = common.BoolToFlag(e.settings.UseNormalMap > 0 && hasNormal)
	s.UseBumpMap = common.BoolToFlag(e.settings.UseBumpMap > 0 && hasBump)
	s.UseShadowMap = common.BoolToFlag(e.shadowsActive())
	e.settingsBuffer.Update(s)
	e.materialBuffer.Update(o.Material)
}

func (e *standardEffect) mustBeActive() {
	if !e.active {
		panic("effect: StandardEffect Render called outside of Begin/End")
	}
}

func (e *standardEffect) Render(o *render_object.RenderObject) {
	e.mustBeActive()
	e.updateTransform(o.Transform.Matrix())
	e.lightBuffer.Update(*e.light)
	e.updatePart(o)
	o.MeshBuffer.Render()
}

func (e *standardEffect) RenderGroup(g *render_object.RenderGroup) {
	e.mustBeActive()
	e.updateTransform(g.Transform.Matrix())
	e.lightBuffer.Update(*e.light)
	for i := range g.RenderObjects {
		part := &g.RenderObjects[i]
		e.updatePart(part)
		part.MeshBuffer.Render()
	}
}

func (e *standardEffect) SetCamera(c camera.Camera) {
	e.camera = c
}

func (e *standardEffect) SetLightCamera(c camera.Camera) {
	e.lightCamera = c
}

func (e *standardEffect) SetDirectionalLight(l *graphics.DirectionalLight) {
	e.light = l
}

func (e *standardEffect) SetShadowMap(t *graphics.RenderTarget) {
	e.shadowMap = t
}

func (e *standardEffect) SetBumpWeight(w float32) {
	e.settings.BumpWeight = w
}

func (e *standardEffect) SetDepthBias(b float32) {
	e.settings.DepthBias = b
}

func (e *standardEffect) SetUseDiffuseMap(on bool) {
	e.settings.UseDiffuseMap = common.BoolToFlag(on)
}

func (e *standardEffect) SetUseSpecMap(on bool) {
	e.settings.UseSpecMap = common.BoolToFlag(on)
}

func (e *standardEffect) SetUseNormalMap(on bool) {
	e.settings.UseNormalMap = common.BoolToFlag(on)
}

func (e *standardEffect) SetUseBumpMap(on bool) {
	e.settings.UseBumpMap = common.BoolToFlag(on)
}

func (e *standardEffect) SetUseShadowMap(on bool) {
	e.settings.UseShadowMap = common.BoolToFlag(on)
}

func (e *standardEffect) DebugUI(ui debug_ui.UI) {
	if !ui.CollapsingHeader("StandardEffect", true) {
		return
	}
	debug_ui.BoolFlag(ui, "UseDiffuseMap", &e.settings.UseDiffuseMap)
	debug_ui.BoolFlag(ui, "UseSpecMap", &e.settings.UseSpecMap)
	debug_ui.BoolFlag(ui, "UseNormalMap", &e.settings.UseNormalMap)
	debug_ui.BoolFlag(ui, "UseBumpMap", &e.settings.UseBumpMap)
	ui.DragFloat("BumpWeight", &e.settings.BumpWeight, 0.01, 0, 100)
	debug_ui.BoolFlag(ui, "UseShadowMap", &e.settings.UseShadowMap)
	ui.DragFloat("DepthBias", &e.settings.DepthBias, 0.00001, 0, 1)
}

func (e *standardEffect) Terminate() {
	e.settingsBuffer.Terminate()
	e.materialBuffer.Terminate()
	e.lightBuffer.Terminate()
	e.transformBuffer.Terminate()
	e.shadowSampler.Terminate()
	e.sampler.Terminate()
	e.ps.Terminate()
	e.vs.Terminate()
}
