package renderer

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA)
// of the back buffer. Off-screen render targets are always single sampled so they can be
// sampled by later passes.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU API specific half of the Renderer. The Renderer allocates every
// handle and tracks all binding state; the backend owns the GPU objects behind the handles and
// turns DrawCall snapshots into GPU commands.
//
// All methods are called from the render thread.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swap chain and back buffer attachments for the given size.
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode. Takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// CreateBuffer creates a buffer of the given kind. Vertex and index buffers are
	// initialized with data; constant buffers are sized by len(data).
	CreateBuffer(h BufferHandle, kind BufferKind, label string, data []byte) error

	// WriteBuffer replaces the contents of a buffer. Constant buffer writes are visible to
	// every draw issued after the write and to none issued before it.
	WriteBuffer(h BufferHandle, data []byte)

	DestroyBuffer(h BufferHandle)

	// CreateShader compiles a shader for the given stage. Compilation failures are returned
	// with the compiler diagnostics.
	CreateShader(h ShaderHandle, stage ShaderStage, s shader.Shader) error

	DestroyShader(h ShaderHandle)

	CreateTexture(h TextureHandle, desc TextureDesc) error

	DestroyTexture(h TextureHandle)

	CreateSampler(h SamplerHandle, desc SamplerDesc) error

	DestroySampler(h SamplerHandle)

	// CreateRenderTarget creates an off-screen target whose contents are sampled through tex.
	CreateRenderTarget(h TargetHandle, tex TextureHandle, desc RenderTargetDesc) error

	DestroyRenderTarget(h TargetHandle, tex TextureHandle)

	// BeginFrame acquires the next swap chain image and starts command recording.
	BeginFrame() error

	// Clear clears the color and depth of the given target.
	Clear(target TargetHandle, color common.Color) error

	// Draw records a draw with the given pipeline state.
	Draw(call DrawCall) error

	// EndFrame finishes command recording and submits the frame to the GPU.
	EndFrame()

	// Present presents the back buffer.
	Present()

	// Release destroys every GPU object owned by the backend.
	Release()
}
