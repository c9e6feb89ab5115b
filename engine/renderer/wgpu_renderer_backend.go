package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuRendererBackend implements RendererBackend on WebGPU.
//
// Constant buffers are CPU shadows. Every draw snapshots the bytes of its bound constant
// buffers into a per-frame uniform arena and binds them with dynamic offsets, so writes
// between draws behave as they would on an immediate-mode device.
type wgpuRendererBackend struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	msaaTextureView  *wgpu.TextureView
	depthTextureView *wgpu.TextureView
	width, height    uint32

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	buffers  map[BufferHandle]*wgpuBuffer
	shaders  map[ShaderHandle]*wgpuShader
	textures map[TextureHandle]*wgpuTexture
	samplers map[SamplerHandle]*wgpuSampler
	targets  map[TargetHandle]*wgpuTarget

	pipelines  map[pipelineKey]*wgpuPipeline
	bindGroups map[bindGroupKey]*wgpu.BindGroup
	arena      *uniformArena
	fallbacks  *fallbackResources

	// Frame state
	frameEncoder      *wgpu.CommandEncoder
	frameSurface      *wgpu.Texture
	frameView         *wgpu.TextureView
	pass              *wgpu.RenderPassEncoder
	passTarget        TargetHandle
	backBufferStarted bool
}

var _ RendererBackend = &wgpuRendererBackend{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) RendererBackend {
	runtime.LockOSThread()
	b := &wgpuRendererBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		buffers:     make(map[BufferHandle]*wgpuBuffer),
		shaders:     make(map[ShaderHandle]*wgpuShader),
		textures:    make(map[TextureHandle]*wgpuTexture),
		samplers:    make(map[SamplerHandle]*wgpuSampler),
		targets:     make(map[TargetHandle]*wgpuTarget),
		pipelines:   make(map[pipelineKey]*wgpuPipeline),
		bindGroups:  make(map[bindGroupKey]*wgpu.BindGroup),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request adapter: %v", err))
	}
	b.adapter = a
	common.Logger().Info("GPU adapter acquired", "fallback", forceFallbackAdapter, "msaa", uint32(sampleCount))

	// Constant buffers, textures and samplers each get their own group.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request device: %v", err))
	}
	b.device = d
	b.queue = d.GetQueue()
	b.arena = newUniformArena(d)
	b.fallbacks = &fallbackResources{}

	return b
}

func (b *wgpuRendererBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	b.width, b.height = uint32(width), uint32(height)

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       b.width,
		Height:      b.height,
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}

	count := uint32(b.sampleCount)
	if count > 1 {
		// The pass draws into the MSAA texture and resolves into the swap chain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          wgpu.Extent3D{Width: b.width, Height: b.height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(fmt.Sprintf("renderer: failed to create MSAA texture: %v", err))
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(fmt.Sprintf("renderer: failed to create MSAA texture view: %v", err))
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          wgpu.Extent3D{Width: b.width, Height: b.height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create depth texture: %v", err))
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create depth texture view: %v", err))
	}
}

func (b *wgpuRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A previous frame's surface texture is still held; acquiring another one fails in wgpu-native.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.backBufferStarted = false
	return nil
}

func (b *wgpuRendererBackend) Clear(target TargetHandle, color common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return fmt.Errorf("clear outside of a frame")
	}
	return b.beginPass(target, &color)
}

func (b *wgpuRendererBackend) Draw(call DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return fmt.Errorf("draw outside of a frame")
	}
	if b.pass == nil || b.passTarget != call.Target {
		if err := b.beginPass(call.Target, nil); err != nil {
			return err
		}
	}

	p, err := b.pipeline(call)
	if err != nil {
		return err
	}
	b.pass.SetPipeline(p.pipeline)

	for group := range p.layouts {
		bg, offsets, err := b.bindGroup(p, group, call)
		if err != nil {
			return err
		}
		b.pass.SetBindGroup(uint32(group), bg, offsets)
	}

	vb, ok := b.buffers[call.VertexBuffer]
	if !ok || vb.buffer == nil {
		return fmt.Errorf("draw with unknown vertex buffer %d", call.VertexBuffer)
	}
	b.pass.SetVertexBuffer(0, vb.buffer, 0, wgpu.WholeSize)

	if call.IndexBuffer == 0 {
		b.pass.Draw(call.Count, 1, 0, 0)
		return nil
	}
	ib, ok := b.buffers[call.IndexBuffer]
	if !ok || ib.buffer == nil {
		return fmt.Errorf("draw with unknown index buffer %d", call.IndexBuffer)
	}
	b.pass.SetIndexBuffer(ib.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.pass.DrawIndexed(call.Count, 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}
	if !b.backBufferStarted {
		if err := b.beginPass(BackBuffer, nil); err != nil {
			common.Logger().Warn("failed to clear back buffer", "error", err)
		}
	}
	b.endPass()

	// Queue writes are ordered before the submit that follows them.
	b.arena.flush(b.queue)

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		common.Logger().Warn("failed to finish frame command buffer", "error", err)
		b.frameEncoder.Release()
		b.frameEncoder = nil
		return
	}
	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
}

func (b *wgpuRendererBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseBindGroups(func(bindGroupKey) bool { return true })
	for k, p := range b.pipelines {
		p.release()
		delete(b.pipelines, k)
	}
	for h, buf := range b.buffers {
		buf.release()
		delete(b.buffers, h)
	}
	for h, s := range b.shaders {
		s.module.Release()
		delete(b.shaders, h)
	}
	for h, t := range b.targets {
		t.release()
		delete(b.targets, h)
	}
	for h, t := range b.textures {
		t.release()
		delete(b.textures, h)
	}
	for h, s := range b.samplers {
		s.sampler.Release()
		delete(b.samplers, h)
	}
	b.fallbacks.release()
	b.arena.release()

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

// beginPass ends the open pass and begins one on target. A nil color loads the existing
// contents; the first back buffer pass of a frame and the first pass on a new target always
// clear depth, and the back buffer is also cleared to ClearColor.
func (b *wgpuRendererBackend) beginPass(target TargetHandle, clear *common.Color) error {
	b.endPass()

	colorLoad, depthLoad := wgpu.LoadOpLoad, wgpu.LoadOpLoad
	var clearValue wgpu.Color
	if clear != nil {
		colorLoad, depthLoad = wgpu.LoadOpClear, wgpu.LoadOpClear
		clearValue = toWGPUColor(*clear)
	}

	desc := &wgpu.RenderPassDescriptor{}
	if target == BackBuffer {
		if !b.backBufferStarted {
			b.backBufferStarted = true
			if clear == nil {
				colorLoad, depthLoad = wgpu.LoadOpClear, wgpu.LoadOpClear
				clearValue = toWGPUColor(ClearColor)
			}
		}
		attachment := wgpu.RenderPassColorAttachment{
			View:       b.frameView,
			LoadOp:     colorLoad,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearValue,
		}
		if b.sampleCount > 1 {
			attachment.View = b.msaaTextureView
			attachment.ResolveTarget = b.frameView
		}
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{attachment}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	} else {
		t, ok := b.targets[target]
		if !ok {
			return fmt.Errorf("unknown render target %d", target)
		}
		if t.fresh {
			depthLoad = wgpu.LoadOpClear
			t.fresh = false
		}
		if t.colorView != nil {
			desc.ColorAttachments = []wgpu.RenderPassColorAttachment{{
				View:       t.colorView,
				LoadOp:     colorLoad,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearValue,
			}}
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}

	b.pass = b.frameEncoder.BeginRenderPass(desc)
	b.passTarget = target
	return nil
}

func (b *wgpuRendererBackend) endPass() {
	if b.pass == nil {
		return
	}
	b.pass.End()
	b.pass.Release()
	b.pass = nil
}

// attachmentFormats returns the color format (undefined for depth-only targets), depth format
// and sample count of a target.
func (b *wgpuRendererBackend) attachmentFormats(target TargetHandle) (wgpu.TextureFormat, wgpu.TextureFormat, uint32, error) {
	if target == BackBuffer {
		return b.surfaceFormat, wgpu.TextureFormatDepth24Plus, uint32(b.sampleCount), nil
	}
	t, ok := b.targets[target]
	if !ok {
		return 0, 0, 0, fmt.Errorf("unknown render target %d", target)
	}
	if t.colorView == nil {
		return wgpu.TextureFormatUndefined, wgpu.TextureFormatDepth32Float, 1, nil
	}
	return wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatDepth24Plus, 1, nil
}

func toWGPUColor(c common.Color) wgpu.Color {
	return wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}
