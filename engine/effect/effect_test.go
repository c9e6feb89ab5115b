package effect

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/debug_ui"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/mesh_builder"
	"github.com/Carmen-Shannon/oxy-fx/engine/render_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	r        renderer.Renderer
	backend  *renderertest.Backend
	textures resource.TextureManager
	camera   camera.Camera
	light    graphics.DirectionalLight
}

// newFixture starts a frame on a recording renderer with two textures, brick.png and stone.png,
// on disk.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	for _, name := range []string{"brick.png", "stone.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
	}

	r, backend := renderertest.NewRenderer()
	textures := resource.NewTextureManager(r)
	textures.Initialize(dir)
	require.NoError(t, r.BeginFrame())

	light := graphics.DefaultDirectionalLight()
	light.SetDirection(common.Vec3(1, -1, 1))

	return &fixture{
		r:        r,
		backend:  backend,
		textures: textures,
		camera: camera.NewCamera(
			camera.WithPosition(common.Vec3(0, 1, -3)),
			camera.WithLookAt(common.Vec3(0, 0, 0)),
		),
		light: light,
	}
}

func (f *fixture) standardEffect() StandardEffect {
	e := NewStandardEffect(f.r, f.textures)
	e.SetCamera(f.camera)
	e.SetDirectionalLight(&f.light)
	return e
}

func (f *fixture) sphere() render_object.RenderObject {
	return render_object.NewRenderObject(f.r, mesh_builder.CreateSphere(8, 4, 1))
}

// decode reads a constant buffer snapshot back into its CPU struct.
func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.Len(t, b, int(unsafe.Sizeof(v)))
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), len(b)), b)
	return v
}

func lastSettings(t *testing.T, f *fixture) standardSettings {
	t.Helper()
	return decode[standardSettings](t, f.backend.LastDraw().ConstantBytes(renderer.StagePixel, standardSettingsSlot))
}

func lastTransform(t *testing.T, f *fixture) standardTransform {
	t.Helper()
	return decode[standardTransform](t, f.backend.LastDraw().ConstantBytes(renderer.StageVertex, standardTransformSlot))
}

func TestStandardEffect_ZeroTextureIdDisablesMap(t *testing.T) {
	f := newFixture(t)
	e := f.standardEffect()
	obj := f.sphere()

	e.Begin()
	e.Render(&obj)
	s := lastSettings(t, f)
	assert.Equal(t, int32(0), s.UseDiffuseMap, "no diffuse texture means no diffuse map")
	assert.Equal(t, int32(0), s.UseNormalMap)
	assert.InDelta(t, 0.1, s.BumpWeight, 1e-6)
	assert.InDelta(t, 0.000003, s.DepthBias, 1e-9)

	obj.DiffuseMapId = f.textures.LoadTexture("brick.png", true)
	e.Render(&obj)
	assert.Equal(t, int32(1), lastSettings(t, f).UseDiffuseMap)
	assert.Equal(t, f.textures.GetTexture(obj.DiffuseMapId).RawData(),
		f.backend.LastDraw().Call.Textures[renderer.StagePixel][diffuseMapSlot])

	e.SetUseDiffuseMap(false)
	e.Render(&obj)
	assert.Equal(t, int32(0), lastSettings(t, f).UseDiffuseMap, "the toggle turns the map off")
	e.End()
}

func TestStandardEffect_ReleasedTextureClearsSlot(t *testing.T) {
	f := newFixture(t)
	e := f.standardEffect()

	a := f.sphere()
	a.DiffuseMapId = f.textures.LoadTexture("brick.png", true)
	a.BumpMapId = a.DiffuseMapId
	b := f.sphere()
	b.DiffuseMapId = f.textures.LoadTexture("stone.png", true)
	b.BumpMapId = b.DiffuseMapId
	f.textures.ReleaseTexture(b.DiffuseMapId)
	require.Nil(t, f.textures.GetTexture(b.DiffuseMapId))

	e.Begin()
	e.Render(&a)
	call := f.backend.LastDraw().Call
	assert.Equal(t, f.textures.GetTexture(a.DiffuseMapId).RawData(), call.Textures[renderer.StagePixel][diffuseMapSlot])
	assert.Equal(t, int32(1), lastSettings(t, f).UseBumpMap)

	e.Render(&b)
	e.End()

	s := lastSettings(t, f)
	assert.Equal(t, int32(0), s.UseDiffuseMap, "a released texture is not available")
	assert.Equal(t, int32(0), s.UseBumpMap)
	call = f.backend.LastDraw().Call
	assert.Zero(t, call.Textures[renderer.StagePixel][diffuseMapSlot], "the previous object's map must not stay bound")
	assert.Zero(t, call.Textures[renderer.StageVertex][bumpMapSlot])

	f.textures.ReleaseTexture(a.DiffuseMapId)
}

func TestStandardEffect_BindsPassState(t *testing.T) {
	f := newFixture(t)
	e := f.standardEffect()
	obj := f.sphere()
	obj.BumpMapId = f.textures.LoadTexture("brick.png", true)

	e.Begin()
	e.Render(&obj)
	e.End()

	call := f.backend.LastDraw().Call
	assert.NotZero(t, call.VertexShader)
	assert.NotZero(t, call.PixelShader)
	for _, slot := range []int{standardTransformSlot, standardLightSlot, standardSettingsSlot} {
		assert.NotZero(t, call.ConstantBuffers[renderer.StageVertex][slot], "vertex slot %d", slot)
	}
	for _, slot := range []int{standardLightSlot, standardMaterialSlot, standardSettingsSlot} {
		assert.NotZero(t, call.ConstantBuffers[renderer.StagePixel][slot], "pixel slot %d", slot)
	}
	assert.NotZero(t, call.Samplers[renderer.StageVertex][textureSamplerSlot])
	assert.NotZero(t, call.Samplers[renderer.StagePixel][shadowSamplerSlot])
	assert.Equal(t, f.textures.GetTexture(obj.BumpMapId).RawData(), call.Textures[renderer.StageVertex][bumpMapSlot])

	light := decode[graphics.DirectionalLight](t, f.backend.LastDraw().ConstantBytes(renderer.StagePixel, standardLightSlot))
	assert.Equal(t, f.light, light)
}

func TestStandardEffect_Transform(t *testing.T) {
	f := newFixture(t)
	e := f.standardEffect()
	obj := f.sphere()
	obj.Transform.Position = common.Vec3(2, 0, 1)
	world := obj.Transform.Matrix()

	e.Begin()
	e.Render(&obj)
	e.End()

	tr := lastTransform(t, f)
	assert.Equal(t, world.Mul(f.camera.ViewMatrix()).Mul(f.camera.ProjectionMatrix()).Transpose(), tr.WVP)
	assert.Equal(t, world.Transpose(), tr.World)
	assert.Equal(t, f.camera.Position(), tr.ViewPosition)
	assert.Equal(t, common.Matrix4{}, tr.LWVP, "no shadow map, no light transform")
	assert.Equal(t, int32(0), lastSettings(t, f).UseShadowMap)
}

func TestStandardEffect_ShadowMap(t *testing.T) {
	f := newFixture(t)
	shadow := NewShadowEffect(f.r, WithShadowMapSize(256))
	shadow.SetDirectionalLight(&f.light)
	e := f.standardEffect()
	e.SetLightCamera(shadow.LightCamera())
	e.SetShadowMap(shadow.DepthMap())
	obj := f.sphere()

	shadow.Begin()
	shadow.Render(&obj)
	shadow.End()

	e.Begin()
	e.Render(&obj)
	light := shadow.LightCamera()
	tr := lastTransform(t, f)
	assert.Equal(t, transposedWVP(obj.Transform.Matrix(), light.ViewMatrix(), light.ProjectionMatrix()), tr.LWVP)
	assert.Equal(t, int32(1), lastSettings(t, f).UseShadowMap)
	assert.Equal(t, shadow.DepthMap().Texture(), f.backend.LastDraw().Call.Textures[renderer.StagePixel][shadowMapSlot])
	e.End()
	assert.Zero(t, f.r.BoundTexture(renderer.StagePixel, shadowMapSlot), "End unbinds the shadow map")

	e.SetUseShadowMap(false)
	e.Begin()
	e.Render(&obj)
	e.End()
	assert.Equal(t, common.Matrix4{}, lastTransform(t, f).LWVP)
	assert.Equal(t, int32(0), lastSettings(t, f).UseShadowMap)
}

func TestStandardEffect_RenderGroupSharesTransform(t *testing.T) {
	f := newFixture(t)
	e := f.standardEffect()

	a, b := f.sphere(), f.sphere()
	a.Transform.Position = common.Vec3(5, 5, 5)
	b.Material.Diffuse = common.ColorRed
	g := &render_object.RenderGroup{
		Transform:     common.NewTransform(),
		RenderObjects: []render_object.RenderObject{a, b},
	}
	g.Transform.Position = common.Vec3(0, 2, 0)

	e.Begin()
	e.RenderGroup(g)
	e.End()

	require.Len(t, f.backend.Draws, 2)
	first, second := f.backend.Draws[0], f.backend.Draws[1]
	assert.Equal(t, first.ConstantBytes(renderer.StageVertex, standardTransformSlot),
		second.ConstantBytes(renderer.StageVertex, standardTransformSlot))

	tr := decode[standardTransform](t, first.ConstantBytes(renderer.StageVertex, standardTransformSlot))
	assert.Equal(t, g.Transform.Matrix().Transpose(), tr.World, "parts use the group transform")

	m0 := decode[graphics.Material](t, first.ConstantBytes(renderer.StagePixel, standardMaterialSlot))
	m1 := decode[graphics.Material](t, second.ConstantBytes(renderer.StagePixel, standardMaterialSlot))
	assert.Equal(t, common.ColorWhite, m0.Diffuse)
	assert.Equal(t, common.ColorRed, m1.Diffuse)
}

func TestStandardEffect_Preconditions(t *testing.T) {
	f := newFixture(t)
	e := NewStandardEffect(f.r, f.textures)
	assert.Panics(t, e.Begin, "no camera")
	e.SetCamera(f.camera)
	assert.Panics(t, e.Begin, "no light")

	e.SetDirectionalLight(&f.light)
	obj := f.sphere()
	assert.Panics(t, func() { e.Render(&obj) }, "Render outside Begin/End")
}

func TestStandardEffect_DebugUI(t *testing.T) {
	f := newFixture(t)
	e := f.standardEffect()
	obj := f.sphere()
	obj.NormalMapId = f.textures.LoadTexture("brick.png", true)

	ui := debug_ui.NewRecorder()
	ui.Set("UseNormalMap", false)
	ui.Set("BumpWeight", float32(500))
	e.DebugUI(ui)

	assert.Equal(t, []string{"UseDiffuseMap", "UseSpecMap", "UseNormalMap", "UseBumpMap", "UseShadowMap"},
		ui.Labels(debug_ui.KindCheckbox))
	assert.Equal(t, []string{"BumpWeight", "DepthBias"}, ui.Labels(debug_ui.KindDragFloat))

	e.Begin()
	e.Render(&obj)
	e.End()
	s := lastSettings(t, f)
	assert.Equal(t, int32(0), s.UseNormalMap)
	assert.Equal(t, float32(100), s.BumpWeight)

	ui = debug_ui.NewRecorder()
	ui.Collapse("StandardEffect")
	e.DebugUI(ui)
	assert.Empty(t, ui.Labels(debug_ui.KindCheckbox))
}

func TestShadowEffect_RendersDepthFromLight(t *testing.T) {
	f := newFixture(t)
	e := NewShadowEffect(f.r, WithShadowMapSize(512), WithShadowFocus(common.Vec3(1, 0, 0)), WithShadowSize(50))
	assert.Panics(t, e.Begin, "no light")
	e.SetDirectionalLight(&f.light)

	desc := f.backend.Targets[e.DepthMap().Handle()]
	assert.Equal(t, renderer.TextureFormatDepth32, desc.Format)
	assert.Equal(t, uint32(512), desc.Width)

	obj := f.sphere()
	e.Begin()
	assert.Equal(t, e.DepthMap().Handle(), f.r.RenderTarget())
	e.Render(&obj)
	e.End()
	assert.Equal(t, renderer.BackBuffer, f.r.RenderTarget())

	require.Len(t, f.backend.Clears, 1)
	assert.Equal(t, e.DepthMap().Handle(), f.backend.Clears[0].Target)

	call := f.backend.LastDraw().Call
	assert.Equal(t, e.DepthMap().Handle(), call.Target)
	assert.Zero(t, call.PixelShader, "the shadow pass writes depth only")

	light := e.LightCamera()
	assert.Equal(t, camera.ProjectionOrthographic, light.Mode())
	dir := f.light.Direction.Normalize()
	want := common.Vec3(1, 0, 0).Sub(dir.Scale(lightDistance))
	assert.InDelta(t, want.X, light.Position().X, 1e-3)
	assert.InDelta(t, want.Y, light.Position().Y, 1e-3)
	assert.InDelta(t, want.Z, light.Position().Z, 1e-3)
	w, h := light.Size()
	assert.Equal(t, float32(50), w)
	assert.Equal(t, float32(50), h)

	wvp := decode[wvpTransform](t, f.backend.LastDraw().ConstantBytes(renderer.StageVertex, 0))
	assert.Equal(t, transposedWVP(obj.Transform.Matrix(), light.ViewMatrix(), light.ProjectionMatrix()), wvp.WVP)
}

func TestShadowEffect_StraightDownLight(t *testing.T) {
	f := newFixture(t)
	f.light.SetDirection(common.Vec3(0, -1, 0))
	e := NewShadowEffect(f.r, WithShadowMapSize(64))
	e.SetDirectionalLight(&f.light)
	obj := f.sphere()

	e.Begin()
	e.Render(&obj)
	e.End()

	for _, v := range e.LightCamera().ViewMatrix() {
		assert.False(t, math32.IsNaN(v), "view matrix has no NaN")
	}
}

func TestShadowEffect_DebugUI(t *testing.T) {
	f := newFixture(t)
	e := NewShadowEffect(f.r, WithShadowMapSize(64))

	ui := debug_ui.NewRecorder()
	ui.Set("Size", float32(0))
	ui.Set("Focus", common.Vec3(0, 1, 0))
	e.DebugUI(ui)

	assert.Equal(t, float32(1), e.Size())
	assert.Equal(t, common.Vec3(0, 1, 0), e.Focus())
	img, ok := ui.Find("image")
	require.True(t, ok)
	assert.Equal(t, e.DepthMap().RawData(), img.Value)
}

func postProcessPass(t *testing.T, f *fixture, e PostProcessingEffect, quad *render_object.RenderObject, time float32) postProcessParams {
	t.Helper()
	e.Begin(time)
	e.Render(quad)
	e.End()
	return decode[postProcessParams](t, f.backend.LastDraw().ConstantBytes(renderer.StagePixel, 0))
}

func TestPostProcessingEffect_BlurScalesWithResolution(t *testing.T) {
	f := newFixture(t)
	e := NewPostProcessingEffect(f.r)
	e.SetMode(ModeBlur)
	e.SetBlurStrength(10)
	quad := render_object.NewRenderObject(f.r, mesh_builder.CreateScreenQuadPX())

	p := postProcessPass(t, f, e, &quad, 0)
	assert.Equal(t, int32(ModeBlur), p.Mode)
	assert.InDelta(t, 10.0/1280, p.Param0, 1e-7)
	assert.InDelta(t, 10.0/720, p.Param1, 1e-7)

	f.r.Resize(640, 480)
	p = postProcessPass(t, f, e, &quad, 0)
	assert.InDelta(t, 10.0/640, p.Param0, 1e-7)
	assert.InDelta(t, 10.0/480, p.Param1, 1e-7)
}

func TestPostProcessingEffect_ModeParameters(t *testing.T) {
	tests := []struct {
		mode PostProcessMode
		time float32
		want postProcessParams
	}{
		{ModeNone, 1, postProcessParams{}},
		{ModeMonochrome, 1, postProcessParams{Mode: int32(ModeMonochrome)}},
		{ModeInvert, 1, postProcessParams{Mode: int32(ModeInvert)}},
		{ModeMirror, 1, postProcessParams{Mode: int32(ModeMirror), Param0: -1, Param1: 1}},
		{ModeCombine2, 1, postProcessParams{Mode: int32(ModeCombine2), Param0: 0.5}},
		{ModeChromaticAberration, 1, postProcessParams{Mode: int32(ModeChromaticAberration), Param0: 0.005, Param1: 0.005}},
		{ModeWave, 1, postProcessParams{Mode: int32(ModeWave), Param0: 0.05, Param1: 10}},
		{ModeInfrared, 2.5, postProcessParams{Mode: int32(ModeInfrared), Param0: 2.5, Param1: 1, Param2: float32(3) / 1280}},
	}

	f := newFixture(t)
	e := NewPostProcessingEffect(f.r)
	quad := render_object.NewRenderObject(f.r, mesh_builder.CreateScreenQuadPX())
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			e.SetMode(tt.mode)
			assert.Equal(t, tt.want, postProcessPass(t, f, e, &quad, tt.time))
		})
	}
}

func TestPostProcessingEffect_Inputs(t *testing.T) {
	f := newFixture(t)
	e := NewPostProcessingEffect(f.r)
	scene := graphics.NewRenderTarget(f.r, 64, 64, renderer.TextureFormatRGBA8)
	overlay := graphics.NewRenderTarget(f.r, 64, 64, renderer.TextureFormatRGBA8)
	e.SetTexture(scene, 0)
	e.SetTexture(overlay, 1)
	quad := render_object.NewRenderObject(f.r, mesh_builder.CreateScreenQuadPX())

	e.Begin(0)
	e.Render(&quad)
	call := f.backend.LastDraw().Call
	assert.Equal(t, scene.Texture(), call.Textures[renderer.StagePixel][0])
	assert.Equal(t, overlay.Texture(), call.Textures[renderer.StagePixel][1])
	assert.Equal(t, renderer.FilterPoint, f.backend.Samplers[call.Samplers[renderer.StagePixel][0]].Filter)
	e.End()

	assert.Zero(t, f.r.BoundTexture(renderer.StagePixel, 0))
	assert.Zero(t, f.r.BoundTexture(renderer.StagePixel, 1))

	assert.Panics(t, func() { e.SetTexture(scene, PostProcessInputs) })
	assert.Panics(t, func() { e.SetMode(modeCount) })
}

func TestPostProcessingEffect_DebugUI(t *testing.T) {
	f := newFixture(t)
	e := NewPostProcessingEffect(f.r)

	ui := debug_ui.NewRecorder()
	ui.Set("Mode", int(ModeWave))
	ui.Set("NumWaves", float32(4))
	e.DebugUI(ui)

	assert.Equal(t, ModeWave, e.Mode())
	assert.Equal(t, []string{"WaveLength", "NumWaves"}, ui.Labels(debug_ui.KindDragFloat))

	quad := render_object.NewRenderObject(f.r, mesh_builder.CreateScreenQuadPX())
	assert.Equal(t, float32(4), postProcessPass(t, f, e, &quad, 0).Param1)
}

func TestPostProcessMode_String(t *testing.T) {
	assert.Equal(t, "ChromaticAberration", ModeChromaticAberration.String())
	assert.Equal(t, "Infrared", ModeInfrared.String())
	assert.Equal(t, "PostProcessMode(42)", PostProcessMode(42).String())
}

func TestSimpleTextureEffect(t *testing.T) {
	f := newFixture(t)
	e := NewSimpleTextureEffect(f.r, f.textures)
	assert.Panics(t, e.Begin, "no camera")
	e.SetCamera(f.camera)

	mesh := graphics.NewMeshBuffer(f.r, mesh_builder.CreateSpherePX(8, 4, 1))
	id := f.textures.LoadTexture("brick.png", true)
	world := common.Translation(common.Vec3(0, 1, 0))

	e.Begin()
	e.Render(RenderData{MeshBuffer: mesh, TextureId: id, World: world})
	e.End()

	rec := f.backend.LastDraw()
	assert.Equal(t, f.textures.GetTexture(id).RawData(), rec.Call.Textures[renderer.StagePixel][0])
	tr := decode[wvpTransform](t, rec.ConstantBytes(renderer.StageVertex, 0))
	assert.Equal(t, transposedWVP(world, f.camera.ViewMatrix(), f.camera.ProjectionMatrix()), tr.WVP)

	e.Terminate()
	mesh.Terminate()
}

func TestSimpleTextureEffect_TextureSources(t *testing.T) {
	f := newFixture(t)
	e := NewSimpleTextureEffect(f.r, f.textures)
	e.SetCamera(f.camera)
	mesh := graphics.NewMeshBuffer(f.r, mesh_builder.CreateScreenQuadPX())

	id := f.textures.LoadTexture("brick.png", true)
	released := f.textures.LoadTexture("stone.png", true)
	f.textures.ReleaseTexture(released)

	preview := graphics.NewRenderTarget(f.r, 8, 8, renderer.TextureFormatRGBA8)

	e.Begin()
	e.Render(RenderData{MeshBuffer: mesh, Texture: preview, TextureId: id, World: common.Identity4()})
	assert.Equal(t, preview.RawData(), f.backend.LastDraw().Call.Textures[renderer.StagePixel][0],
		"a texture binder takes precedence over the id")

	e.Render(RenderData{MeshBuffer: mesh, TextureId: id, World: common.Identity4()})
	assert.Equal(t, f.textures.GetTexture(id).RawData(), f.backend.LastDraw().Call.Textures[renderer.StagePixel][0])

	e.Render(RenderData{MeshBuffer: mesh, TextureId: released, World: common.Identity4()})
	assert.Zero(t, f.backend.LastDraw().Call.Textures[renderer.StagePixel][0])

	e.Render(RenderData{MeshBuffer: mesh, World: common.Identity4()})
	assert.Zero(t, f.backend.LastDraw().Call.Textures[renderer.StagePixel][0])
	e.End()

	f.textures.ReleaseTexture(id)
	preview.Terminate()
	mesh.Terminate()
	e.Terminate()
}

func TestStructLayoutsMatchShaders(t *testing.T) {
	f := newFixture(t)
	std := NewStandardEffect(f.r, f.textures).(*standardEffect)
	shadow := NewShadowEffect(f.r, WithShadowMapSize(64)).(*shadowEffect)
	post := NewPostProcessingEffect(f.r).(*postProcessingEffect)

	tests := []struct {
		name   string
		source interface{ StructSize(string) (uint64, bool) }
		size   uintptr
	}{
		{"StandardTransform", std.vs.Source(), unsafe.Sizeof(standardTransform{})},
		{"StandardSettings", std.ps.Source(), unsafe.Sizeof(standardSettings{})},
		{"Material", std.ps.Source(), unsafe.Sizeof(graphics.Material{})},
		{"DirectionalLight", std.ps.Source(), unsafe.Sizeof(graphics.DirectionalLight{})},
		{"WVPTransform", shadow.vs.Source(), unsafe.Sizeof(wvpTransform{})},
		{"PostProcessParams", post.ps.Source(), unsafe.Sizeof(postProcessParams{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, ok := tt.source.StructSize(tt.name)
			require.True(t, ok)
			assert.Equal(t, uint64(tt.size), size)
		})
	}

	std.Terminate()
	shadow.Terminate()
	post.Terminate()
}

func TestEffects_TerminateReleasesResources(t *testing.T) {
	f := newFixture(t)
	buffers, shaders, samplers := len(f.backend.Buffers), len(f.backend.Shaders), len(f.backend.Samplers)

	NewStandardEffect(f.r, f.textures).Terminate()
	NewShadowEffect(f.r, WithShadowMapSize(64)).Terminate()
	NewPostProcessingEffect(f.r).Terminate()
	NewSimpleTextureEffect(f.r, f.textures).Terminate()

	assert.Len(t, f.backend.Buffers, buffers)
	assert.Len(t, f.backend.Shaders, shaders)
	assert.Len(t, f.backend.Samplers, samplers)
	assert.Empty(t, f.backend.Targets)
}
