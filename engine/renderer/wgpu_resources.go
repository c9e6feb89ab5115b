package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBuffer struct {
	kind   BufferKind
	label  string
	buffer *wgpu.Buffer // nil for constant buffers
	size   uint64
	shadow []byte // constant buffer contents
}

func (b *wgpuBuffer) release() {
	if b.buffer != nil {
		b.buffer.Release()
	}
}

type wgpuShader struct {
	stage  ShaderStage
	shader shader.Shader
	module *wgpu.ShaderModule
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	depth   bool
	target  bool // owned by a wgpuTarget
}

func (t *wgpuTexture) release() {
	if t.target {
		return
	}
	t.view.Release()
	t.texture.Release()
}

type wgpuSampler struct {
	sampler *wgpu.Sampler
	compare bool
}

type wgpuTarget struct {
	desc      RenderTargetDesc
	tex       TextureHandle
	colorView *wgpu.TextureView // nil for depth-only targets
	depthView *wgpu.TextureView
	owned     []*wgpu.Texture
	views     []*wgpu.TextureView

	// fresh targets have never been rendered to and get their depth cleared on first use.
	fresh bool
}

func (t *wgpuTarget) release() {
	for _, v := range t.views {
		v.Release()
	}
	for _, tex := range t.owned {
		tex.Release()
	}
}

// padTo4 pads data to the 4-byte multiple required by WriteBuffer.
func padTo4(data []byte) []byte {
	if rem := len(data) % 4; rem != 0 {
		return append(append([]byte(nil), data...), make([]byte, 4-rem)...)
	}
	return data
}

func (b *wgpuRendererBackend) CreateBuffer(h BufferHandle, kind BufferKind, label string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if kind == BufferKindConstant {
		b.buffers[h] = &wgpuBuffer{kind: kind, label: label, size: uint64(len(data)), shadow: append([]byte(nil), data...)}
		return nil
	}

	buf, err := b.createGPUBuffer(kind, label, padTo4(data))
	if err != nil {
		return err
	}
	b.buffers[h] = buf
	return nil
}

func (b *wgpuRendererBackend) createGPUBuffer(kind BufferKind, label string, data []byte) (*wgpuBuffer, error) {
	usage := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if kind == BufferKindIndex {
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return &wgpuBuffer{kind: kind, label: label, buffer: buf, size: uint64(len(data))}, nil
}

func (b *wgpuRendererBackend) WriteBuffer(h BufferHandle, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.buffers[h]
	if !ok {
		return
	}
	if buf.kind == BufferKindConstant {
		buf.shadow = append(buf.shadow[:0], data...)
		return
	}

	data = padTo4(data)
	if uint64(len(data)) > buf.size {
		grown, err := b.createGPUBuffer(buf.kind, buf.label, data)
		if err != nil {
			common.Logger().Warn("failed to grow buffer", "label", buf.label, "error", err)
			return
		}
		buf.release()
		b.buffers[h] = grown
		return
	}
	b.queue.WriteBuffer(buf.buffer, 0, data)
}

func (b *wgpuRendererBackend) DestroyBuffer(h BufferHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf, ok := b.buffers[h]; ok {
		buf.release()
		delete(b.buffers, h)
	}
}

func (b *wgpuRendererBackend) CreateShader(h ShaderHandle, stage ShaderStage, s shader.Shader) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := shader.Validate(s.Source()); err != nil {
		common.Logger().Warn("shader validation reported diagnostics", "shader", s.Key(), "stage", stage.String(), "error", err)
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
	if err != nil {
		return err
	}
	b.shaders[h] = &wgpuShader{stage: stage, shader: s, module: module}
	return nil
}

func (b *wgpuRendererBackend) DestroyShader(h ShaderHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.shaders[h]
	if !ok {
		return
	}
	for k, p := range b.pipelines {
		if k.vs == h || k.ps == h {
			b.releaseBindGroups(func(bk bindGroupKey) bool { return bk.pipeline == p })
			p.release()
			delete(b.pipelines, k)
		}
	}
	s.module.Release()
	delete(b.shaders, h)
}

func (b *wgpuRendererBackend) CreateTexture(h TextureHandle, desc TextureDesc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	format := wgpu.TextureFormatRGBA8Unorm
	if desc.Format == TextureFormatRGBA8Srgb {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		Format:        format,
		MipLevelCount: uint32(len(desc.Mips)),
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	for level, pixels := range desc.Mips {
		w, h := max(desc.Width>>level, 1), max(desc.Height>>level, 1)
		if uint32(len(pixels)) < w*h*4 {
			tex.Release()
			return fmt.Errorf("mip level %d has %d bytes, want %d", level, len(pixels), w*h*4)
		}
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: uint32(level),
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  w * 4,
				RowsPerImage: h,
			},
			&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	b.textures[h] = &wgpuTexture{texture: tex, view: view}
	return nil
}

func (b *wgpuRendererBackend) DestroyTexture(h TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[h]
	if !ok {
		return
	}
	b.releaseResourceBindGroups()
	t.release()
	delete(b.textures, h)
}

func (b *wgpuRendererBackend) CreateSampler(h SamplerHandle, desc SamplerDesc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.device.CreateSampler(samplerDescriptor(desc))
	if err != nil {
		return err
	}
	b.samplers[h] = &wgpuSampler{sampler: s, compare: desc.Compare}
	return nil
}

func samplerDescriptor(desc SamplerDesc) *wgpu.SamplerDescriptor {
	address := wgpu.AddressModeRepeat
	switch desc.Address {
	case AddressClamp:
		address = wgpu.AddressModeClampToEdge
	case AddressMirror:
		address = wgpu.AddressModeMirrorRepeat
	}

	filter, mipFilter := wgpu.FilterModeLinear, wgpu.MipmapFilterModeLinear
	anisotropy := uint16(1)
	switch desc.Filter {
	case FilterPoint:
		filter, mipFilter = wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest
	case FilterAnisotropic:
		anisotropy = 16
	}

	sd := &wgpu.SamplerDescriptor{
		Label:         common.Coalesce(desc.Label, "Sampler"),
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mipFilter,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: anisotropy,
	}
	if desc.Compare {
		// Shadow lookups: clamp outside the map and compare without mip filtering.
		sd.AddressModeU = wgpu.AddressModeClampToEdge
		sd.AddressModeV = wgpu.AddressModeClampToEdge
		sd.AddressModeW = wgpu.AddressModeClampToEdge
		sd.MipmapFilter = wgpu.MipmapFilterModeNearest
		sd.MaxAnisotropy = 1
		sd.Compare = wgpu.CompareFunctionLessEqual
	}
	return sd
}

func (b *wgpuRendererBackend) DestroySampler(h SamplerHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.samplers[h]
	if !ok {
		return
	}
	b.releaseResourceBindGroups()
	s.sampler.Release()
	delete(b.samplers, h)
}

func (b *wgpuRendererBackend) CreateRenderTarget(h TargetHandle, tex TextureHandle, desc RenderTargetDesc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := wgpu.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1}
	t := &wgpuTarget{desc: desc, tex: tex, fresh: true}

	create := func(label string, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.TextureView, error) {
		texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         label,
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         usage,
		})
		if err != nil {
			return nil, err
		}
		t.owned = append(t.owned, texture)
		view, err := texture.CreateView(nil)
		if err != nil {
			return nil, err
		}
		t.views = append(t.views, view)
		return view, nil
	}

	var sampled *wgpuTexture
	if desc.Format.IsDepth() {
		view, err := create(desc.Label+" Depth", wgpu.TextureFormatDepth32Float, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
		if err != nil {
			t.release()
			return err
		}
		t.depthView = view
		sampled = &wgpuTexture{texture: t.owned[0], view: view, depth: true, target: true}
	} else {
		color, err := create(desc.Label+" Color", wgpu.TextureFormatRGBA8Unorm, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopySrc)
		if err != nil {
			t.release()
			return err
		}
		depth, err := create(desc.Label+" Depth", wgpu.TextureFormatDepth24Plus, wgpu.TextureUsageRenderAttachment)
		if err != nil {
			t.release()
			return err
		}
		t.colorView, t.depthView = color, depth
		sampled = &wgpuTexture{texture: t.owned[0], view: color, target: true}
	}

	b.targets[h] = t
	b.textures[tex] = sampled
	return nil
}

func (b *wgpuRendererBackend) DestroyRenderTarget(h TargetHandle, tex TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.targets[h]
	if !ok {
		return
	}
	if b.pass != nil && b.passTarget == h {
		b.endPass()
	}
	b.releaseResourceBindGroups()
	t.release()
	delete(b.targets, h)
	delete(b.textures, tex)
}

// uniformChunkSize is the size of one uniform arena buffer.
const uniformChunkSize = 1 << 20

// uniformAlignment is the WebGPU default minUniformBufferOffsetAlignment.
const uniformAlignment = 256

type uniformChunk struct {
	buffer *wgpu.Buffer
	data   []byte
	used   uint64
}

// uniformArena holds the constant buffer snapshots of one frame. Chunks are reused across
// frames and uploaded once per frame before submission.
type uniformArena struct {
	device  *wgpu.Device
	chunks  []*uniformChunk
	current int
}

func newUniformArena(device *wgpu.Device) *uniformArena {
	return &uniformArena{device: device}
}

// push copies data into the arena, zero padded to size, and returns the chunk index and the
// dynamic offset of the copy.
func (a *uniformArena) push(data []byte, size uint64) (int, uint32, error) {
	if size > uniformChunkSize {
		return 0, 0, fmt.Errorf("constant buffer of %d bytes exceeds the arena chunk size", size)
	}
	for {
		if a.current == len(a.chunks) {
			if err := a.grow(); err != nil {
				return 0, 0, err
			}
		}
		c := a.chunks[a.current]
		offset := (c.used + uniformAlignment - 1) &^ (uniformAlignment - 1)
		if offset+size > uniformChunkSize {
			a.current++
			continue
		}
		n := copy(c.data[offset:offset+size], data)
		clear(c.data[offset+uint64(n) : offset+size])
		c.used = offset + size
		return a.current, uint32(offset), nil
	}
}

// reserve moves to a fresh chunk when the current one cannot hold n more bytes, so the
// buffers of one bind group always share a chunk.
func (a *uniformArena) reserve(n uint64) error {
	if n > uniformChunkSize {
		return fmt.Errorf("constant buffers of %d bytes exceed the arena chunk size", n)
	}
	if a.current == len(a.chunks) {
		return a.grow()
	}
	if a.chunks[a.current].used+n > uniformChunkSize {
		a.current++
		if a.current == len(a.chunks) {
			return a.grow()
		}
	}
	return nil
}

func (a *uniformArena) grow() error {
	buf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Uniform Arena %d", len(a.chunks)),
		Size:  uniformChunkSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to grow uniform arena: %w", err)
	}
	a.chunks = append(a.chunks, &uniformChunk{buffer: buf, data: make([]byte, uniformChunkSize)})
	common.Logger().Debug("uniform arena grown", "chunks", len(a.chunks))
	return nil
}

func (a *uniformArena) flush(queue *wgpu.Queue) {
	for _, c := range a.chunks {
		if c.used == 0 {
			continue
		}
		queue.WriteBuffer(c.buffer, 0, c.data[:(c.used+3)&^3])
		c.used = 0
	}
	a.current = 0
}

func (a *uniformArena) release() {
	for _, c := range a.chunks {
		c.buffer.Release()
	}
	a.chunks = nil
}

// fallbackResources fill texture and sampler bindings that have nothing compatible bound.
type fallbackResources struct {
	white, depth       *wgpuTexture
	linear, comparison *wgpu.Sampler
}

func (f *fallbackResources) texture(b *wgpuRendererBackend, depth bool) (*wgpuTexture, error) {
	if depth && f.depth != nil {
		return f.depth, nil
	}
	if !depth && f.white != nil {
		return f.white, nil
	}

	format, usage := wgpu.TextureFormatRGBA8Unorm, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst
	if depth {
		format, usage = wgpu.TextureFormatDepth32Float, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageRenderAttachment
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Fallback Texture",
		Usage:         usage,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	if !depth {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{Texture: tex, Aspect: wgpu.TextureAspectAll},
			[]byte{255, 255, 255, 255},
			&wgpu.TextureDataLayout{BytesPerRow: 4, RowsPerImage: 1},
			&wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	t := &wgpuTexture{texture: tex, view: view, depth: depth}
	if depth {
		f.depth = t
	} else {
		f.white = t
	}
	return t, nil
}

func (f *fallbackResources) sampler(b *wgpuRendererBackend, compare bool) (*wgpu.Sampler, error) {
	if compare && f.comparison != nil {
		return f.comparison, nil
	}
	if !compare && f.linear != nil {
		return f.linear, nil
	}
	s, err := b.device.CreateSampler(samplerDescriptor(SamplerDesc{Label: "Fallback Sampler", Filter: FilterLinear, Compare: compare}))
	if err != nil {
		return nil, err
	}
	if compare {
		f.comparison = s
	} else {
		f.linear = s
	}
	return s, nil
}

func (f *fallbackResources) release() {
	for _, t := range []*wgpuTexture{f.white, f.depth} {
		if t != nil {
			t.release()
		}
	}
	for _, s := range []*wgpu.Sampler{f.linear, f.comparison} {
		if s != nil {
			s.Release()
		}
	}
	*f = fallbackResources{}
}
