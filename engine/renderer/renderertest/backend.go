// Package renderertest provides a recording RendererBackend so code built on the renderer can be
// tested without a GPU.
package renderertest

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// DrawRecord is one recorded draw: the pipeline state plus a snapshot of every bound constant
// buffer's contents at the time of the draw.
type DrawRecord struct {
	Call renderer.DrawCall

	// Constants holds the bytes of the constant buffer bound at each stage and slot.
	Constants map[renderer.ShaderStage]map[int][]byte
}

// ConstantBytes returns the snapshot of the constant buffer bound at stage and slot, or nil.
func (d DrawRecord) ConstantBytes(stage renderer.ShaderStage, slot int) []byte {
	return d.Constants[stage][slot]
}

// ClearRecord is one recorded clear.
type ClearRecord struct {
	Target renderer.TargetHandle
	Color  common.Color
}

// Backend records every call made by a Renderer.
type Backend struct {
	Width, Height int
	PresentMode   renderer.PresentMode

	Buffers     map[renderer.BufferHandle][]byte
	BufferKinds map[renderer.BufferHandle]renderer.BufferKind
	Shaders     map[renderer.ShaderHandle]shader.Shader
	Textures    map[renderer.TextureHandle]renderer.TextureDesc
	Samplers    map[renderer.SamplerHandle]renderer.SamplerDesc
	Targets     map[renderer.TargetHandle]renderer.RenderTargetDesc

	Draws  []DrawRecord
	Clears []ClearRecord

	Frames   int
	Presents int
	Released bool

	// FailCreate, when set, is returned by the next Create* call and then cleared.
	FailCreate error

	inFrame bool
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend creates an empty recording backend.
func NewBackend() *Backend {
	return &Backend{
		Buffers:     make(map[renderer.BufferHandle][]byte),
		BufferKinds: make(map[renderer.BufferHandle]renderer.BufferKind),
		Shaders:     make(map[renderer.ShaderHandle]shader.Shader),
		Textures:    make(map[renderer.TextureHandle]renderer.TextureDesc),
		Samplers:    make(map[renderer.SamplerHandle]renderer.SamplerDesc),
		Targets:     make(map[renderer.TargetHandle]renderer.RenderTargetDesc),
	}
}

// NewRenderer creates a Renderer driving a new recording backend with a 1280x720 surface.
func NewRenderer(opts ...renderer.RendererBuilderOption) (renderer.Renderer, *Backend) {
	b := NewBackend()
	opts = append([]renderer.RendererBuilderOption{renderer.WithSurfaceSize(1280, 720)}, opts...)
	opts = append(opts, renderer.WithBackend(b))
	return renderer.NewRenderer(renderer.BackendTypeWGPU, nil, opts...), b
}

func (b *Backend) fail() error {
	err := b.FailCreate
	b.FailCreate = nil
	return err
}

func (b *Backend) ConfigureSurface(width, height int) {
	b.Width, b.Height = width, height
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.PresentMode = mode
}

func (b *Backend) CreateBuffer(h renderer.BufferHandle, kind renderer.BufferKind, _ string, data []byte) error {
	if err := b.fail(); err != nil {
		return err
	}
	b.Buffers[h] = append([]byte(nil), data...)
	b.BufferKinds[h] = kind
	return nil
}

func (b *Backend) WriteBuffer(h renderer.BufferHandle, data []byte) {
	if _, ok := b.Buffers[h]; ok {
		b.Buffers[h] = append(b.Buffers[h][:0], data...)
	}
}

func (b *Backend) DestroyBuffer(h renderer.BufferHandle) {
	delete(b.Buffers, h)
	delete(b.BufferKinds, h)
}

func (b *Backend) CreateShader(h renderer.ShaderHandle, _ renderer.ShaderStage, s shader.Shader) error {
	if err := b.fail(); err != nil {
		return err
	}
	b.Shaders[h] = s
	return nil
}

func (b *Backend) DestroyShader(h renderer.ShaderHandle) {
	delete(b.Shaders, h)
}

func (b *Backend) CreateTexture(h renderer.TextureHandle, desc renderer.TextureDesc) error {
	if err := b.fail(); err != nil {
		return err
	}
	b.Textures[h] = desc
	return nil
}

func (b *Backend) DestroyTexture(h renderer.TextureHandle) {
	delete(b.Textures, h)
}

func (b *Backend) CreateSampler(h renderer.SamplerHandle, desc renderer.SamplerDesc) error {
	if err := b.fail(); err != nil {
		return err
	}
	b.Samplers[h] = desc
	return nil
}

func (b *Backend) DestroySampler(h renderer.SamplerHandle) {
	delete(b.Samplers, h)
}

func (b *Backend) CreateRenderTarget(h renderer.TargetHandle, tex renderer.TextureHandle, desc renderer.RenderTargetDesc) error {
	if err := b.fail(); err != nil {
		return err
	}
	b.Targets[h] = desc
	b.Textures[tex] = renderer.TextureDesc{Label: desc.Label, Width: desc.Width, Height: desc.Height, Format: desc.Format}
	return nil
}

func (b *Backend) DestroyRenderTarget(h renderer.TargetHandle, tex renderer.TextureHandle) {
	delete(b.Targets, h)
	delete(b.Textures, tex)
}

func (b *Backend) BeginFrame() error {
	if b.inFrame {
		return fmt.Errorf("frame already in progress")
	}
	b.inFrame = true
	b.Frames++
	return nil
}

func (b *Backend) Clear(target renderer.TargetHandle, color common.Color) error {
	if !b.inFrame {
		return fmt.Errorf("clear outside of a frame")
	}
	b.Clears = append(b.Clears, ClearRecord{Target: target, Color: color})
	return nil
}

func (b *Backend) Draw(call renderer.DrawCall) error {
	if !b.inFrame {
		return fmt.Errorf("draw outside of a frame")
	}
	rec := DrawRecord{Call: call, Constants: make(map[renderer.ShaderStage]map[int][]byte)}
	for _, stage := range []renderer.ShaderStage{renderer.StageVertex, renderer.StagePixel} {
		for slot, h := range call.ConstantBuffers[stage] {
			data, ok := b.Buffers[h]
			if h == 0 || !ok {
				continue
			}
			if rec.Constants[stage] == nil {
				rec.Constants[stage] = make(map[int][]byte)
			}
			rec.Constants[stage][slot] = append([]byte(nil), data...)
		}
	}
	b.Draws = append(b.Draws, rec)
	return nil
}

func (b *Backend) EndFrame() {
	b.inFrame = false
}

func (b *Backend) Present() {
	b.Presents++
}

func (b *Backend) Release() {
	b.Released = true
}

// Reset clears the recorded draws and clears, keeping resources.
func (b *Backend) Reset() {
	b.Draws = nil
	b.Clears = nil
}

// LastDraw returns the most recent draw. It panics when nothing was drawn.
func (b *Backend) LastDraw() DrawRecord {
	if len(b.Draws) == 0 {
		panic("renderertest: no draws recorded")
	}
	return b.Draws[len(b.Draws)-1]
}
