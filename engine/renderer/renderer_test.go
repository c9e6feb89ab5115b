package renderer_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShaderSource = `
struct VSInput { @location(0) position: vec3f }
struct VSOutput { @builtin(position) position: vec4f }
@vertex fn VS(in: VSInput) -> VSOutput { var out: VSOutput; out.position = vec4f(in.position, 1.0); return out; }
@fragment fn PS(in: VSOutput) -> @location(0) vec4f { return vec4f(1.0); }
`

var positionLayout = renderer.VertexLayout{
	Stride:     12,
	Attributes: []renderer.VertexAttribute{{Format: renderer.VertexFormatFloat32x3, Offset: 0, Location: 0}},
}

type fixture struct {
	r       renderer.Renderer
	backend *renderertest.Backend
	vs, ps  renderer.ShaderHandle
	vb      renderer.BufferHandle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r, b := renderertest.NewRenderer()

	vsSrc, err := shader.NewShader("test", shader.ShaderTypeVertex, testShaderSource)
	require.NoError(t, err)
	psSrc, err := shader.NewShader("test", shader.ShaderTypeFragment, testShaderSource)
	require.NoError(t, err)

	f := &fixture{r: r, backend: b}
	f.vs, err = r.CreateShader(renderer.StageVertex, vsSrc)
	require.NoError(t, err)
	f.ps, err = r.CreateShader(renderer.StagePixel, psSrc)
	require.NoError(t, err)
	f.vb, err = r.CreateBuffer(renderer.BufferKindVertex, "triangle", make([]byte, 36))
	require.NoError(t, err)

	r.BindShader(renderer.StageVertex, f.vs)
	r.BindShader(renderer.StagePixel, f.ps)
	return f
}

func (f *fixture) draw(t *testing.T) {
	t.Helper()
	require.NoError(t, f.r.Draw(f.vb, 0, 3, positionLayout, renderer.TopologyTriangleList))
}

func TestRenderer_HandlesAreUniqueAndNonZero(t *testing.T) {
	f := newFixture(t)
	seen := map[uint32]bool{}
	for _, h := range []uint32{uint32(f.vs), uint32(f.ps), uint32(f.vb)} {
		assert.NotZero(t, h)
		assert.False(t, seen[h])
		seen[h] = true
	}
}

func TestRenderer_SurfaceSize(t *testing.T) {
	f := newFixture(t)
	w, h := f.r.Size()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	f.r.Resize(0, 100)
	w, _ = f.r.Size()
	assert.Equal(t, 1280, w)

	f.r.Resize(640, 480)
	assert.Equal(t, 640, f.backend.Width)
	assert.Equal(t, 480, f.backend.Height)
}

func TestRenderer_DrawRequiresFrame(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.r.Draw(f.vb, 0, 3, positionLayout, renderer.TopologyTriangleList))
	assert.Error(t, f.r.Clear(common.ColorBlack))

	require.NoError(t, f.r.BeginFrame())
	assert.Error(t, f.r.BeginFrame())
	f.draw(t)
	f.r.EndFrame()
	f.r.Present()

	assert.Len(t, f.backend.Draws, 1)
	assert.Equal(t, 1, f.backend.Frames)
	assert.Equal(t, 1, f.backend.Presents)
}

func TestRenderer_DrawRequiresVertexShader(t *testing.T) {
	f := newFixture(t)
	f.r.BindShader(renderer.StageVertex, 0)
	require.NoError(t, f.r.BeginFrame())
	assert.Error(t, f.r.Draw(f.vb, 0, 3, positionLayout, renderer.TopologyTriangleList))
}

func TestRenderer_ZeroCountDrawIsSkipped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.r.BeginFrame())
	require.NoError(t, f.r.Draw(f.vb, 0, 0, positionLayout, renderer.TopologyTriangleList))
	assert.Empty(t, f.backend.Draws)
}

func TestRenderer_ConstantBufferWritesApplyPerDraw(t *testing.T) {
	f := newFixture(t)
	cb, err := f.r.CreateBuffer(renderer.BufferKindConstant, "params", []byte{0, 0, 0, 0})
	require.NoError(t, err)
	f.r.BindConstantBuffer(renderer.StagePixel, 2, cb)

	require.NoError(t, f.r.BeginFrame())
	f.r.WriteBuffer(cb, []byte{1, 0, 0, 0})
	f.draw(t)
	f.r.WriteBuffer(cb, []byte{2, 0, 0, 0})
	f.draw(t)
	f.r.EndFrame()

	require.Len(t, f.backend.Draws, 2)
	assert.Equal(t, []byte{1, 0, 0, 0}, f.backend.Draws[0].ConstantBytes(renderer.StagePixel, 2))
	assert.Equal(t, []byte{2, 0, 0, 0}, f.backend.Draws[1].ConstantBytes(renderer.StagePixel, 2))
	assert.Nil(t, f.backend.Draws[1].ConstantBytes(renderer.StageVertex, 2))
}

func TestRenderer_DrawCapturesBindings(t *testing.T) {
	f := newFixture(t)
	tex, err := f.r.CreateTexture(renderer.TextureDesc{Width: 1, Height: 1, Mips: [][]byte{{255, 255, 255, 255}}})
	require.NoError(t, err)
	smp, err := f.r.CreateSampler(renderer.SamplerDesc{Filter: renderer.FilterLinear})
	require.NoError(t, err)

	f.r.BindTexture(renderer.StagePixel, 1, tex)
	f.r.BindSampler(renderer.StagePixel, 0, smp)
	assert.Equal(t, tex, f.r.BoundTexture(renderer.StagePixel, 1))

	require.NoError(t, f.r.BeginFrame())
	f.draw(t)

	call := f.backend.LastDraw().Call
	assert.Equal(t, f.vs, call.VertexShader)
	assert.Equal(t, f.ps, call.PixelShader)
	assert.Equal(t, tex, call.Textures[renderer.StagePixel][1])
	assert.Equal(t, smp, call.Samplers[renderer.StagePixel][0])
	assert.Equal(t, renderer.BackBuffer, call.Target)
	assert.Equal(t, uint32(3), call.Count)

	f.r.UnbindTexture(renderer.StagePixel, 1)
	assert.Zero(t, f.r.BoundTexture(renderer.StagePixel, 1))
}

func TestRenderer_SlotOutOfRangePanics(t *testing.T) {
	f := newFixture(t)
	assert.Panics(t, func() { f.r.BindTexture(renderer.StagePixel, renderer.MaxSlots, 1) })
	assert.Panics(t, func() { f.r.BindSampler(renderer.StageVertex, -1, 1) })
	assert.Panics(t, func() { f.r.BindConstantBuffer(renderer.StagePixel, renderer.MaxSlots, 1) })
	assert.NotPanics(t, func() { f.r.UnbindTexture(renderer.StagePixel, renderer.MaxSlots) })
}

func TestRenderer_RenderTargets(t *testing.T) {
	f := newFixture(t)
	target, tex, err := f.r.CreateRenderTarget(renderer.RenderTargetDesc{Label: "scene", Width: 64, Height: 64})
	require.NoError(t, err)
	assert.NotZero(t, target)
	assert.NotZero(t, tex)

	f.r.BindTexture(renderer.StagePixel, 0, tex)
	f.r.SetRenderTarget(target)
	assert.Equal(t, target, f.r.RenderTarget())
	assert.Zero(t, f.r.BoundTexture(renderer.StagePixel, 0), "a target cannot stay bound for sampling while it is written")

	require.NoError(t, f.r.BeginFrame())
	assert.Equal(t, renderer.BackBuffer, f.r.RenderTarget())

	f.r.SetRenderTarget(target)
	require.NoError(t, f.r.Clear(common.ColorRed))
	f.draw(t)
	assert.Equal(t, []renderertest.ClearRecord{{Target: target, Color: common.ColorRed}}, f.backend.Clears)
	assert.Equal(t, target, f.backend.LastDraw().Call.Target)

	f.r.DestroyTexture(tex)
	assert.Contains(t, f.backend.Textures, tex, "target textures are owned by their target")

	f.r.DestroyRenderTarget(target)
	assert.Equal(t, renderer.BackBuffer, f.r.RenderTarget())
	assert.NotContains(t, f.backend.Targets, target)
	assert.NotContains(t, f.backend.Textures, tex)

	assert.Panics(t, func() { f.r.SetRenderTarget(target) })
}

func TestRenderer_DestroyUnbinds(t *testing.T) {
	f := newFixture(t)
	cb, err := f.r.CreateBuffer(renderer.BufferKindConstant, "cb", make([]byte, 16))
	require.NoError(t, err)
	tex, err := f.r.CreateTexture(renderer.TextureDesc{Width: 1, Height: 1, Mips: [][]byte{{0, 0, 0, 255}}})
	require.NoError(t, err)

	f.r.BindConstantBuffer(renderer.StageVertex, 0, cb)
	f.r.BindTexture(renderer.StageVertex, 3, tex)
	f.r.DestroyBuffer(cb)
	f.r.DestroyTexture(tex)

	assert.Zero(t, f.r.BoundConstantBuffer(renderer.StageVertex, 0))
	assert.Zero(t, f.r.BoundTexture(renderer.StageVertex, 3))
	assert.NotContains(t, f.backend.Buffers, cb)
}

func TestRenderer_CreateErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.r.CreateBuffer(renderer.BufferKindVertex, "empty", nil)
	assert.Error(t, err)

	_, err = f.r.CreateTexture(renderer.TextureDesc{Width: 1, Height: 1, Format: renderer.TextureFormatDepth32, Mips: [][]byte{{0, 0, 0, 0}}})
	assert.Error(t, err)

	_, _, err = f.r.CreateRenderTarget(renderer.RenderTargetDesc{Width: 0, Height: 16})
	assert.Error(t, err)

	_, err = f.r.CreateShader(renderer.StageVertex, nil)
	assert.Error(t, err)

	f.backend.FailCreate = errors.New("device lost")
	_, err = f.r.CreateSampler(renderer.SamplerDesc{})
	assert.ErrorContains(t, err, "device lost")
}

func TestRenderer_Release(t *testing.T) {
	f := newFixture(t)
	f.r.Release()
	assert.True(t, f.backend.Released)
}

func TestSlotTable_Resolve(t *testing.T) {
	var table renderer.SlotTable[renderer.TextureHandle]
	table[renderer.StageVertex][3] = 7
	assert.Equal(t, renderer.TextureHandle(7), table.Resolve(3, renderer.StagePixel))

	table[renderer.StagePixel][3] = 9
	assert.Equal(t, renderer.TextureHandle(9), table.Resolve(3, renderer.StagePixel))
	assert.Equal(t, renderer.TextureHandle(7), table.Resolve(3, renderer.StageVertex))
	assert.Zero(t, table.Resolve(renderer.MaxSlots, renderer.StagePixel))
}
