package graphics_test

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorShader = `
struct VSInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec4<f32>,
}
struct VSOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}
@vertex fn VS(in: VSInput) -> VSOutput {
    var out: VSOutput;
    out.position = vec4<f32>(in.position, 1.0);
    out.color = in.color;
    return out;
}
@fragment fn PS(in: VSOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

func triangle() graphics.MeshPC {
	return graphics.MeshPC{
		Vertices: []graphics.VertexPC{
			{Position: common.Vec3(0, 1, 0), Color: common.ColorRed},
			{Position: common.Vec3(1, 0, 0), Color: common.ColorGreen},
			{Position: common.Vec3(-1, 0, 0), Color: common.ColorBlue},
		},
		Indices: []uint32{0, 1, 2},
	}
}

func TestVertexLayouts_MatchStructs(t *testing.T) {
	tests := []struct {
		name   string
		layout renderer.VertexLayout
		size   uintptr
	}{
		{"VertexPC", graphics.VertexPC{}.Layout(), unsafe.Sizeof(graphics.VertexPC{})},
		{"VertexPX", graphics.VertexPX{}.Layout(), unsafe.Sizeof(graphics.VertexPX{})},
		{"Vertex", graphics.Vertex{}.Layout(), unsafe.Sizeof(graphics.Vertex{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, uint32(tt.size), tt.layout.Stride)
			last := tt.layout.Attributes[len(tt.layout.Attributes)-1]
			assert.Equal(t, tt.layout.Stride, last.Offset+last.Format.Size())
		})
	}
	assert.Equal(t, uint32(unsafe.Offsetof(graphics.Vertex{}.UV)), graphics.Vertex{}.Layout().Attributes[3].Offset)
}

func TestGPUStructs_MatchWGSLDeclarations(t *testing.T) {
	src := graphics.MaterialSource + graphics.DirectionalLightSource +
		"@vertex fn VS() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }\n"
	s, err := shader.NewShader("layouts", shader.ShaderTypeVertex, src)
	require.NoError(t, err)

	size, ok := s.StructSize("Material")
	require.True(t, ok)
	assert.Equal(t, uint64(unsafe.Sizeof(graphics.Material{})), size)
	assert.Equal(t, uint64(80), size)

	size, ok = s.StructSize("DirectionalLight")
	require.True(t, ok)
	assert.Equal(t, uint64(unsafe.Sizeof(graphics.DirectionalLight{})), size)
	assert.Equal(t, uint64(64), size)
}

func TestMeshBuffer_IndexedDraw(t *testing.T) {
	r, b := renderertest.NewRenderer()
	vs := graphics.NewVertexShader(r, "color", colorShader)
	ps := graphics.NewPixelShader(r, "color", colorShader)
	mb := graphics.NewMeshBuffer(r, triangle())

	require.NoError(t, r.BeginFrame())
	vs.Bind()
	ps.Bind()
	mb.Render()
	r.EndFrame()

	require.Len(t, b.Draws, 1)
	call := b.LastDraw().Call
	assert.Equal(t, uint32(3), call.Count)
	assert.NotZero(t, call.IndexBuffer)
	assert.Equal(t, vs.Handle(), call.VertexShader)
	assert.Equal(t, ps.Handle(), call.PixelShader)
	assert.Equal(t, uint32(28), call.Layout.Stride)
	assert.Equal(t, renderer.BufferKindIndex, b.BufferKinds[call.IndexBuffer])
	assert.Len(t, b.Buffers[call.VertexBuffer], 3*28)

	mb.Terminate()
	assert.Empty(t, b.Buffers)
	mb.Terminate()
}

func TestMeshBuffer_RenderAfterTerminatePanics(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	mb := graphics.NewMeshBuffer(r, triangle())
	require.NoError(t, r.BeginFrame())

	mb.Terminate()
	assert.PanicsWithValue(t, "graphics: Render called on a terminated mesh buffer", mb.Render)

	var missing *graphics.MeshBuffer
	assert.PanicsWithValue(t, "graphics: Render called on a terminated mesh buffer", missing.Render)
}

func TestMeshBuffer_NonIndexedUsesVertexCount(t *testing.T) {
	r, b := renderertest.NewRenderer()
	vs := graphics.NewVertexShader(r, "color", colorShader)
	mesh := triangle()
	mesh.Indices = nil
	mb := graphics.NewMeshBuffer(r, mesh)
	mb.SetTopology(renderer.TopologyLineList)

	require.NoError(t, r.BeginFrame())
	vs.Bind()
	mb.Render()

	call := b.LastDraw().Call
	assert.Zero(t, call.IndexBuffer)
	assert.Equal(t, uint32(3), call.Count)
	assert.Equal(t, renderer.TopologyLineList, call.Topology)
	assert.Zero(t, mb.IndexCount())
}

func TestMeshBuffer_UpdateVertices(t *testing.T) {
	r, b := renderertest.NewRenderer()
	mesh := triangle()
	mesh.Indices = nil
	mb := graphics.NewMeshBuffer(r, mesh)

	graphics.UpdateVertices(mb, mesh.Vertices[:2])
	assert.Equal(t, uint32(2), mb.VertexCount())
	for _, data := range b.Buffers {
		assert.Len(t, data, 2*28)
	}
}

func TestMeshBuffer_EmptyMeshPanics(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	assert.Panics(t, func() {
		graphics.NewMeshBuffer(r, graphics.MeshPC{})
	})
}

func TestMeshBuffer_RenderOutsideFramePanics(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	mb := graphics.NewMeshBuffer(r, triangle())
	assert.Panics(t, mb.Render)
}

func TestTypedConstantBuffer_UpdateUploadsStruct(t *testing.T) {
	r, b := renderertest.NewRenderer()
	cb := graphics.NewTypedConstantBuffer[graphics.Material](r)
	require.Len(t, b.Buffers[cb.Handle()], 80)

	m := graphics.DefaultMaterial()
	m.Shininess = 32
	cb.Update(m)
	assert.Equal(t, common.StructToBytes(&m), b.Buffers[cb.Handle()])

	cb.BindPS(2)
	assert.Equal(t, cb.Handle(), r.BoundConstantBuffer(renderer.StagePixel, 2))
	assert.Zero(t, r.BoundConstantBuffer(renderer.StageVertex, 2))

	cb.Terminate()
	assert.Zero(t, r.BoundConstantBuffer(renderer.StagePixel, 2))
}

func TestConstantBuffer_UpdateLargerThanSizePanics(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	cb := graphics.NewConstantBuffer(r, 16)
	assert.NotPanics(t, func() { cb.Update(make([]byte, 16)) })

	assert.PanicsWithValue(t, "graphics: constant buffer update of 32 bytes exceeds its size of 16", func() {
		cb.Update(make([]byte, 32))
	})
	assert.Panics(t, func() { graphics.NewConstantBuffer(r, 0) })
}

func TestShader_FailuresAreFatal(t *testing.T) {
	r, b := renderertest.NewRenderer()
	assert.Panics(t, func() {
		graphics.NewVertexShader(r, "broken", "@fragment fn PS() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }")
	})

	b.FailCreate = errors.New("compile error")
	assert.Panics(t, func() {
		graphics.NewPixelShader(r, "color", colorShader)
	})
}

func TestSampler_Bind(t *testing.T) {
	r, b := renderertest.NewRenderer()
	s := graphics.NewSampler(r, renderer.FilterPoint, renderer.AddressWrap)
	cmp := graphics.NewComparisonSampler(r)
	assert.True(t, b.Samplers[cmp.Handle()].Compare)
	assert.False(t, b.Samplers[s.Handle()].Compare)

	vs := graphics.NewVertexShader(r, "color", colorShader)
	mb := graphics.NewMeshBuffer(r, triangle())
	require.NoError(t, r.BeginFrame())
	vs.Bind()
	s.BindPS(0)
	cmp.BindPS(1)
	mb.Render()

	call := b.LastDraw().Call
	assert.Equal(t, s.Handle(), call.Samplers[renderer.StagePixel][0])
	assert.Equal(t, cmp.Handle(), call.Samplers[renderer.StagePixel][1])
}

func rgbaDesc(label string, w, h uint32) renderer.TextureDesc {
	return renderer.TextureDesc{Label: label, Width: w, Height: h, Mips: [][]byte{make([]byte, w*h*4)}}
}

func TestTexture_ReplaceKeepsOldOnFailure(t *testing.T) {
	r, b := renderertest.NewRenderer()
	tex := graphics.NewTexture(r, rgbaDesc("brick", 4, 4))
	first := tex.RawData()

	b.FailCreate = errors.New("out of memory")
	require.Error(t, tex.Replace(rgbaDesc("brick", 8, 8)))
	assert.Equal(t, first, tex.RawData())
	w, _ := tex.Size()
	assert.Equal(t, uint32(4), w)

	require.NoError(t, tex.Replace(rgbaDesc("brick", 8, 8)))
	assert.NotEqual(t, first, tex.RawData())
	assert.NotContains(t, b.Textures, first)
	w, _ = tex.Size()
	assert.Equal(t, uint32(8), w)
}

func TestTexture_BindAndUnbind(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	tex := graphics.NewTexture(r, rgbaDesc("bump", 2, 2))

	tex.BindVS(3)
	tex.BindPS(0)
	assert.Equal(t, tex.RawData(), r.BoundTexture(renderer.StageVertex, 3))
	assert.Equal(t, tex.RawData(), r.BoundTexture(renderer.StagePixel, 0))

	graphics.UnbindPS(r, 0)
	graphics.UnbindVS(r, 3)
	assert.Zero(t, r.BoundTexture(renderer.StagePixel, 0))
	assert.Zero(t, r.BoundTexture(renderer.StageVertex, 3))

	tex.Terminate()
	assert.Zero(t, tex.RawData())
}

func TestTexture_CreateFailurePanics(t *testing.T) {
	r, _ := renderertest.NewRenderer()
	assert.Panics(t, func() {
		graphics.NewTexture(r, renderer.TextureDesc{Label: "empty"})
	})
}

func TestMaterialFromImported(t *testing.T) {
	assert.Equal(t, graphics.DefaultMaterial(), graphics.MaterialFromImported(nil))

	m := graphics.MaterialFromImported(&common.ImportedMaterial{
		Diffuse:   common.ColorRed,
		Shininess: 64,
	})
	assert.Equal(t, common.ColorRed, m.Diffuse)
	assert.Equal(t, common.ColorWhite, m.Ambient)
	assert.Equal(t, float32(64), m.Shininess)
	assert.Equal(t, common.Color{}, m.Emissive)
}

func TestDirectionalLight_SetDirectionNormalizes(t *testing.T) {
	l := graphics.DefaultDirectionalLight()
	l.SetDirection(common.Vec3(0, -2, 0))
	assert.InDelta(t, -1, l.Direction.Y, 1e-6)
	assert.InDelta(t, 1, l.Direction.Length(), 1e-6)
}
