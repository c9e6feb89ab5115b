package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend

	width, height int
	nextHandle    uint32
	inFrame       bool

	buffers        map[BufferHandle]BufferKind
	shaders        map[ShaderHandle]ShaderStage
	textures       map[TextureHandle]TextureFormat
	samplers       map[SamplerHandle]struct{}
	targets        map[TargetHandle]TextureHandle
	targetTextures map[TextureHandle]TargetHandle

	vertexShader ShaderHandle
	pixelShader  ShaderHandle
	constants    SlotTable[BufferHandle]
	slotTextures SlotTable[TextureHandle]
	slotSamplers SlotTable[SamplerHandle]
	target       TargetHandle

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer is the graphics device. It owns the GPU device, the swap chain and the back buffer,
// creates GPU resources, and holds the immediate-mode binding state (bound shaders, per-stage
// constant buffer, texture and sampler slots, and the active render target) that every Draw
// captures.
//
// Resources are referenced through typed handles. Handle zero is never issued and always means
// "nothing bound". The Renderer is used from the render thread only.
type Renderer interface {
	// Resize reconfigures the swap chain for a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Size returns the current back buffer size in pixels.
	Size() (width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required after
	// changing this for the new mode to take effect.
	SetPresentMode(mode PresentMode)

	// CreateBuffer creates a vertex, index or constant buffer.
	//
	// Parameters:
	//   - kind: the buffer usage
	//   - label: a debug label
	//   - data: initial contents; for constant buffers its length is the buffer size
	//
	// Returns:
	//   - BufferHandle: the new buffer
	//   - error: an error if the GPU buffer could not be created
	CreateBuffer(kind BufferKind, label string, data []byte) (BufferHandle, error)

	// WriteBuffer replaces the contents of a buffer. For constant buffers the new contents
	// apply to every following Draw.
	WriteBuffer(h BufferHandle, data []byte)

	// DestroyBuffer releases a buffer and unbinds it from every slot.
	DestroyBuffer(h BufferHandle)

	// CreateShader compiles a parsed shader for a pipeline stage.
	//
	// Returns:
	//   - ShaderHandle: the compiled shader
	//   - error: the compiler diagnostics when compilation fails
	CreateShader(stage ShaderStage, s shader.Shader) (ShaderHandle, error)

	// DestroyShader releases a shader and unbinds it if bound.
	DestroyShader(h ShaderHandle)

	// CreateTexture creates a sampled texture from CPU pixel data.
	CreateTexture(desc TextureDesc) (TextureHandle, error)

	// DestroyTexture releases a texture and unbinds it from every slot.
	DestroyTexture(h TextureHandle)

	// CreateSampler creates a sampler.
	CreateSampler(desc SamplerDesc) (SamplerHandle, error)

	// DestroySampler releases a sampler and unbinds it from every slot.
	DestroySampler(h SamplerHandle)

	// CreateRenderTarget creates an off-screen render target together with the texture
	// handle used to sample its contents.
	//
	// Returns:
	//   - TargetHandle: the target to pass to SetRenderTarget
	//   - TextureHandle: the texture to pass to BindTexture
	//   - error: an error if the GPU resources could not be created
	CreateRenderTarget(desc RenderTargetDesc) (TargetHandle, TextureHandle, error)

	// DestroyRenderTarget releases a render target and its texture. If the target is active
	// the back buffer becomes active.
	DestroyRenderTarget(h TargetHandle)

	// BindShader binds a shader to a stage. Passing zero unbinds the stage.
	BindShader(stage ShaderStage, h ShaderHandle)

	// BindConstantBuffer attaches a constant buffer to a stage slot (WGSL group 0, binding = slot).
	BindConstantBuffer(stage ShaderStage, slot int, h BufferHandle)

	// BindTexture attaches a texture to a stage slot (WGSL group 1, binding = slot).
	BindTexture(stage ShaderStage, slot int, h TextureHandle)

	// UnbindTexture clears a texture slot.
	UnbindTexture(stage ShaderStage, slot int)

	// BindSampler attaches a sampler to a stage slot (WGSL group 2, binding = slot).
	BindSampler(stage ShaderStage, slot int, h SamplerHandle)

	// BoundTexture returns the texture currently attached to a stage slot.
	BoundTexture(stage ShaderStage, slot int) TextureHandle

	// BoundConstantBuffer returns the constant buffer currently attached to a stage slot.
	BoundConstantBuffer(stage ShaderStage, slot int) BufferHandle

	// SetRenderTarget makes a target the destination of following draws. BackBuffer selects
	// the swap chain.
	SetRenderTarget(h TargetHandle)

	// RenderTarget returns the active render target.
	RenderTarget() TargetHandle

	// Clear clears the color and depth of the active render target.
	Clear(color common.Color) error

	// Draw issues a draw with the currently bound state.
	//
	// Parameters:
	//   - vb: the vertex buffer
	//   - ib: the index buffer, or zero for a non-indexed draw
	//   - count: the index count, or the vertex count for non-indexed draws
	//   - layout: the vertex layout of vb
	//   - topology: the primitive topology
	//
	// Returns:
	//   - error: an error if no frame is in progress or the pipeline cannot be built
	Draw(vb, ib BufferHandle, count uint32, layout VertexLayout, topology Topology) error

	// BeginFrame acquires the swap chain image and starts recording. The back buffer becomes
	// the active render target.
	BeginFrame() error

	// EndFrame submits all work recorded since BeginFrame.
	EndFrame()

	// Present presents the back buffer. Must be called once per frame after EndFrame.
	Present()

	// Release destroys the device and every resource still alive.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend type, rendering to the given window.
// The window may be nil when a backend is injected with WithBackend.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window whose surface is presented to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		backendType:    backendType,
		buffers:        make(map[BufferHandle]BufferKind),
		shaders:        make(map[ShaderHandle]ShaderStage),
		textures:       make(map[TextureHandle]TextureFormat),
		samplers:       make(map[SamplerHandle]struct{}),
		targets:        make(map[TargetHandle]TextureHandle),
		targetTextures: make(map[TextureHandle]TargetHandle),
		target:         BackBuffer,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if win != nil {
		r.width, r.height = win.Width(), win.Height()
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	if r.backend == nil {
		if win == nil {
			panic("renderer: a window is required when no backend is injected")
		}
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
		}
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(r.width, r.height)
	return r
}

func (r *renderer) allocate() uint32 {
	r.nextHandle++
	return r.nextHandle
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) CreateBuffer(kind BufferKind, label string, data []byte) (BufferHandle, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("renderer: buffer %q has no data", label)
	}
	h := BufferHandle(r.allocate())
	if err := r.backend.CreateBuffer(h, kind, label, data); err != nil {
		return 0, fmt.Errorf("renderer: failed to create buffer %q: %w", label, err)
	}
	r.buffers[h] = kind
	return h, nil
}

func (r *renderer) WriteBuffer(h BufferHandle, data []byte) {
	if _, ok := r.buffers[h]; !ok {
		return
	}
	r.backend.WriteBuffer(h, data)
}

func (r *renderer) DestroyBuffer(h BufferHandle) {
	if _, ok := r.buffers[h]; !ok {
		return
	}
	for stage := range r.constants {
		for slot := range r.constants[stage] {
			if r.constants[stage][slot] == h {
				r.constants[stage][slot] = 0
			}
		}
	}
	delete(r.buffers, h)
	r.backend.DestroyBuffer(h)
}

func (r *renderer) CreateShader(stage ShaderStage, s shader.Shader) (ShaderHandle, error) {
	if s == nil {
		return 0, fmt.Errorf("renderer: shader is nil")
	}
	h := ShaderHandle(r.allocate())
	if err := r.backend.CreateShader(h, stage, s); err != nil {
		return 0, fmt.Errorf("renderer: failed to compile %s shader %q: %w", stage, s.Key(), err)
	}
	r.shaders[h] = stage
	return h, nil
}

func (r *renderer) DestroyShader(h ShaderHandle) {
	if _, ok := r.shaders[h]; !ok {
		return
	}
	if r.vertexShader == h {
		r.vertexShader = 0
	}
	if r.pixelShader == h {
		r.pixelShader = 0
	}
	delete(r.shaders, h)
	r.backend.DestroyShader(h)
}

func (r *renderer) CreateTexture(desc TextureDesc) (TextureHandle, error) {
	if desc.Width == 0 || desc.Height == 0 || len(desc.Mips) == 0 {
		return 0, fmt.Errorf("renderer: texture %q has no pixel data", desc.Label)
	}
	if desc.Format.IsDepth() {
		return 0, fmt.Errorf("renderer: texture %q: depth textures are only created as render targets", desc.Label)
	}
	h := TextureHandle(r.allocate())
	if err := r.backend.CreateTexture(h, desc); err != nil {
		return 0, fmt.Errorf("renderer: failed to create texture %q: %w", desc.Label, err)
	}
	r.textures[h] = desc.Format
	return h, nil
}

func (r *renderer) DestroyTexture(h TextureHandle) {
	if _, ok := r.textures[h]; !ok {
		return
	}
	if _, isTarget := r.targetTextures[h]; isTarget {
		return
	}
	r.unbindTexture(h)
	delete(r.textures, h)
	r.backend.DestroyTexture(h)
}

func (r *renderer) unbindTexture(h TextureHandle) {
	for stage := range r.slotTextures {
		for slot := range r.slotTextures[stage] {
			if r.slotTextures[stage][slot] == h {
				r.slotTextures[stage][slot] = 0
			}
		}
	}
}

func (r *renderer) CreateSampler(desc SamplerDesc) (SamplerHandle, error) {
	h := SamplerHandle(r.allocate())
	if err := r.backend.CreateSampler(h, desc); err != nil {
		return 0, fmt.Errorf("renderer: failed to create sampler %q: %w", desc.Label, err)
	}
	r.samplers[h] = struct{}{}
	return h, nil
}

func (r *renderer) DestroySampler(h SamplerHandle) {
	if _, ok := r.samplers[h]; !ok {
		return
	}
	for stage := range r.slotSamplers {
		for slot := range r.slotSamplers[stage] {
			if r.slotSamplers[stage][slot] == h {
				r.slotSamplers[stage][slot] = 0
			}
		}
	}
	delete(r.samplers, h)
	r.backend.DestroySampler(h)
}

func (r *renderer) CreateRenderTarget(desc RenderTargetDesc) (TargetHandle, TextureHandle, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return 0, 0, fmt.Errorf("renderer: render target %q has zero size", desc.Label)
	}
	h := TargetHandle(r.allocate())
	tex := TextureHandle(r.allocate())
	if err := r.backend.CreateRenderTarget(h, tex, desc); err != nil {
		return 0, 0, fmt.Errorf("renderer: failed to create render target %q: %w", desc.Label, err)
	}
	r.targets[h] = tex
	r.targetTextures[tex] = h
	r.textures[tex] = desc.Format
	return h, tex, nil
}

func (r *renderer) DestroyRenderTarget(h TargetHandle) {
	tex, ok := r.targets[h]
	if !ok {
		return
	}
	if r.target == h {
		r.target = BackBuffer
	}
	r.unbindTexture(tex)
	delete(r.targets, h)
	delete(r.targetTextures, tex)
	delete(r.textures, tex)
	r.backend.DestroyRenderTarget(h, tex)
}

func (r *renderer) BindShader(stage ShaderStage, h ShaderHandle) {
	switch stage {
	case StageVertex:
		r.vertexShader = h
	case StagePixel:
		r.pixelShader = h
	}
}

func validSlot(stage ShaderStage, slot int) bool {
	return stage >= 0 && stage < stageCount && slot >= 0 && slot < MaxSlots
}

func (r *renderer) BindConstantBuffer(stage ShaderStage, slot int, h BufferHandle) {
	if !validSlot(stage, slot) {
		panic(fmt.Sprintf("renderer: constant buffer slot %d out of range for %s stage", slot, stage))
	}
	r.constants[stage][slot] = h
}

func (r *renderer) BindTexture(stage ShaderStage, slot int, h TextureHandle) {
	if !validSlot(stage, slot) {
		panic(fmt.Sprintf("renderer: texture slot %d out of range for %s stage", slot, stage))
	}
	r.slotTextures[stage][slot] = h
}

func (r *renderer) UnbindTexture(stage ShaderStage, slot int) {
	if !validSlot(stage, slot) {
		return
	}
	r.slotTextures[stage][slot] = 0
}

func (r *renderer) BindSampler(stage ShaderStage, slot int, h SamplerHandle) {
	if !validSlot(stage, slot) {
		panic(fmt.Sprintf("renderer: sampler slot %d out of range for %s stage", slot, stage))
	}
	r.slotSamplers[stage][slot] = h
}

func (r *renderer) BoundTexture(stage ShaderStage, slot int) TextureHandle {
	if !validSlot(stage, slot) {
		return 0
	}
	return r.slotTextures[stage][slot]
}

func (r *renderer) BoundConstantBuffer(stage ShaderStage, slot int) BufferHandle {
	if !validSlot(stage, slot) {
		return 0
	}
	return r.constants[stage][slot]
}

func (r *renderer) SetRenderTarget(h TargetHandle) {
	if h != BackBuffer {
		if _, ok := r.targets[h]; !ok {
			panic(fmt.Sprintf("renderer: unknown render target %d", h))
		}
		// A target cannot be sampled while it is being written.
		r.unbindTexture(r.targets[h])
	}
	r.target = h
}

func (r *renderer) RenderTarget() TargetHandle {
	return r.target
}

func (r *renderer) Clear(color common.Color) error {
	if !r.inFrame {
		return fmt.Errorf("renderer: Clear called outside of a frame")
	}
	return r.backend.Clear(r.target, color)
}

func (r *renderer) Draw(vb, ib BufferHandle, count uint32, layout VertexLayout, topology Topology) error {
	if !r.inFrame {
		return fmt.Errorf("renderer: Draw called outside of a frame")
	}
	if r.vertexShader == 0 {
		return fmt.Errorf("renderer: Draw called without a vertex shader bound")
	}
	if count == 0 {
		return nil
	}
	return r.backend.Draw(DrawCall{
		VertexShader:    r.vertexShader,
		PixelShader:     r.pixelShader,
		VertexBuffer:    vb,
		IndexBuffer:     ib,
		Count:           count,
		Layout:          layout,
		Topology:        topology,
		Target:          r.target,
		ConstantBuffers: r.constants,
		Textures:        r.slotTextures,
		Samplers:        r.slotSamplers,
	})
}

func (r *renderer) BeginFrame() error {
	if r.inFrame {
		return fmt.Errorf("renderer: BeginFrame called twice without EndFrame")
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.inFrame = true
	r.target = BackBuffer
	return nil
}

func (r *renderer) EndFrame() {
	if !r.inFrame {
		return
	}
	r.backend.EndFrame()
	r.inFrame = false
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
	r.buffers = make(map[BufferHandle]BufferKind)
	r.shaders = make(map[ShaderHandle]ShaderStage)
	r.textures = make(map[TextureHandle]TextureFormat)
	r.samplers = make(map[SamplerHandle]struct{})
	r.targets = make(map[TargetHandle]TextureHandle)
	r.targetTextures = make(map[TextureHandle]TargetHandle)
}
