package renderer

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type pipelineKey struct {
	vs, ps   ShaderHandle
	layout   string
	topology Topology
	color    wgpu.TextureFormat
	depth    wgpu.TextureFormat
	samples  uint32
}

type wgpuPipeline struct {
	label          string
	pipeline       *wgpu.RenderPipeline
	pipelineLayout *wgpu.PipelineLayout
	layouts        []*wgpu.BindGroupLayout
	entries        [][]wgpu.BindGroupLayoutEntry
}

func (p *wgpuPipeline) release() {
	p.pipeline.Release()
	p.pipelineLayout.Release()
	for _, l := range p.layouts {
		l.Release()
	}
}

// bindGroupKey identifies a cached bind group: the uniform arena chunk it points into and the
// texture and sampler handles per binding (zero where a fallback is bound).
type bindGroupKey struct {
	pipeline  *wgpuPipeline
	group     int
	chunk     int
	handles   [MaxSlots]uint32
	resources bool
}

var vertexFormats = map[VertexFormat]wgpu.VertexFormat{
	VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
}

var topologies = map[Topology]wgpu.PrimitiveTopology{
	TopologyTriangleList:  wgpu.PrimitiveTopologyTriangleList,
	TopologyTriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
	TopologyLineList:      wgpu.PrimitiveTopologyLineList,
	TopologyPointList:     wgpu.PrimitiveTopologyPointList,
}

// pipeline returns the cached render pipeline for a draw, building it on first use.
func (b *wgpuRendererBackend) pipeline(call DrawCall) (*wgpuPipeline, error) {
	color, depth, samples, err := b.attachmentFormats(call.Target)
	if err != nil {
		return nil, err
	}

	vs, ok := b.shaders[call.VertexShader]
	if !ok || vs.stage != StageVertex {
		return nil, fmt.Errorf("shader %d is not a vertex shader", call.VertexShader)
	}
	var ps *wgpuShader
	psHandle := ShaderHandle(0)
	if color != wgpu.TextureFormatUndefined {
		if ps, ok = b.shaders[call.PixelShader]; !ok || ps.stage != StagePixel {
			return nil, fmt.Errorf("draw to a color target requires a pixel shader")
		}
		psHandle = call.PixelShader
	}

	key := pipelineKey{
		vs:       call.VertexShader,
		ps:       psHandle,
		layout:   fmt.Sprint(call.Layout),
		topology: call.Topology,
		color:    color,
		depth:    depth,
		samples:  samples,
	}
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}

	for _, in := range vs.shader.VertexInputs() {
		if !call.Layout.HasLocation(in.Location) {
			return nil, fmt.Errorf("vertex shader %s reads @location(%d) %s which the mesh layout does not supply", vs.shader.Key(), in.Location, in.Name)
		}
	}

	descriptors := vs.shader.BindGroupLayoutDescriptors()
	if ps != nil {
		descriptors = mergeBindGroupLayouts(descriptors, ps.shader.BindGroupLayoutDescriptors())
	}
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}

	label := vs.shader.Key()
	if ps != nil {
		label += "+" + ps.shader.Key()
	}
	p := &wgpuPipeline{
		label:   label,
		layouts: make([]*wgpu.BindGroupLayout, maxGroup+1),
		entries: make([][]wgpu.BindGroupLayoutEntry, maxGroup+1),
	}
	for g := 0; g <= maxGroup; g++ {
		// Unused groups below the highest one still need an (empty) layout.
		desc := descriptors[g]
		desc.Label = fmt.Sprintf("%s Group %d", label, g)
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		p.layouts[g] = layout
		p.entries[g] = desc.Entries
	}

	p.pipelineLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: p.layouts,
	})
	if err != nil {
		return nil, err
	}

	attributes := make([]wgpu.VertexAttribute, 0, len(call.Layout.Attributes))
	for _, a := range call.Layout.Attributes {
		attributes = append(attributes, wgpu.VertexAttribute{
			Format:         vertexFormats[a.Format],
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		})
	}

	primitive := wgpu.PrimitiveState{
		Topology:  topologies[call.Topology],
		FrontFace: wgpu.FrontFaceCW,
		CullMode:  wgpu.CullModeBack,
	}
	if call.Topology == TopologyTriangleStrip && call.IndexBuffer != 0 {
		primitive.StripIndexFormat = wgpu.IndexFormatUint32
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  label + " Render Pipeline",
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: vs.shader.EntryPoint(),
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(call.Layout.Stride),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  attributes,
			}},
		},
		Primitive: primitive,
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depth,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	}
	if ps != nil {
		desc.Fragment = &wgpu.FragmentState{
			Module:     ps.module,
			EntryPoint: ps.shader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{{
				Format:    color,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		}
	}

	p.pipeline, err = b.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, err
	}
	b.pipelines[key] = p
	common.Logger().Debug("render pipeline created", "label", label, "target", uint32(call.Target), "groups", maxGroup+1)
	return p, nil
}

// bindGroup resolves the bind group of one group for a draw. Uniform entries are snapshotted
// into the arena and returned as dynamic offsets in binding order; texture and sampler entries
// resolve from the slot tables, preferring the pixel stage for fragment-visible bindings.
func (b *wgpuRendererBackend) bindGroup(p *wgpuPipeline, group int, call DrawCall) (*wgpu.BindGroup, []uint32, error) {
	entries := p.entries[group]
	key := bindGroupKey{pipeline: p, group: group, chunk: -1}

	var total uint64
	for _, e := range entries {
		if e.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			total += uniformAlignment + bindingSize(e)
		}
	}
	if total > 0 {
		if err := b.arena.reserve(total); err != nil {
			return nil, nil, err
		}
	}

	var offsets []uint32
	bgEntries := make([]wgpu.BindGroupEntry, 0, len(entries))
	for _, e := range entries {
		slot := int(e.Binding)
		if slot >= MaxSlots {
			return nil, nil, fmt.Errorf("%s: binding %d in group %d exceeds the %d available slots", p.label, e.Binding, group, MaxSlots)
		}
		prefer := StageVertex
		if e.Visibility&wgpu.ShaderStageFragment != 0 {
			prefer = StagePixel
		}

		switch {
		case e.Buffer.Type != wgpu.BufferBindingTypeUndefined:
			var data []byte
			if cb, ok := b.buffers[call.ConstantBuffers.Resolve(slot, prefer)]; ok && cb.kind == BufferKindConstant {
				data = cb.shadow
			}
			size := bindingSize(e)
			chunk, offset, err := b.arena.push(data, size)
			if err != nil {
				return nil, nil, err
			}
			key.chunk = chunk
			offsets = append(offsets, offset)
			bgEntries = append(bgEntries, wgpu.BindGroupEntry{
				Binding: e.Binding,
				Buffer:  b.arena.chunks[chunk].buffer,
				Offset:  0,
				Size:    size,
			})

		case e.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			key.resources = true
			wantDepth := e.Texture.SampleType == wgpu.TextureSampleTypeDepth
			h := call.Textures.Resolve(slot, prefer)
			t, ok := b.textures[h]
			if !ok || t.depth != wantDepth {
				h = 0
				var err error
				if t, err = b.fallbacks.texture(b, wantDepth); err != nil {
					return nil, nil, err
				}
			}
			key.handles[slot] = uint32(h)
			bgEntries = append(bgEntries, wgpu.BindGroupEntry{Binding: e.Binding, TextureView: t.view})

		case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			key.resources = true
			wantCompare := e.Sampler.Type == wgpu.SamplerBindingTypeComparison
			h := call.Samplers.Resolve(slot, prefer)
			var sampler *wgpu.Sampler
			if s, ok := b.samplers[h]; ok && s.compare == wantCompare {
				sampler = s.sampler
			} else {
				h = 0
				var err error
				if sampler, err = b.fallbacks.sampler(b, wantCompare); err != nil {
					return nil, nil, err
				}
			}
			key.handles[slot] = uint32(h)
			bgEntries = append(bgEntries, wgpu.BindGroupEntry{Binding: e.Binding, Sampler: sampler})
		}
	}

	if bg, ok := b.bindGroups[key]; ok {
		return bg, offsets, nil
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s Group %d", p.label, group),
		Layout:  p.layouts[group],
		Entries: bgEntries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bind group %d for %s: %w", group, p.label, err)
	}
	b.bindGroups[key] = bg
	common.Logger().Debug("bind group created", "pipeline", p.label, "group", group, "cached", len(b.bindGroups))
	return bg, offsets, nil
}

// bindingSize is the bound range of a buffer entry: the declared struct size, or one aligned
// block when the struct could not be sized.
func bindingSize(e wgpu.BindGroupLayoutEntry) uint64 {
	if e.Buffer.MinBindingSize > 0 {
		return e.Buffer.MinBindingSize
	}
	return uniformAlignment
}

func (b *wgpuRendererBackend) releaseBindGroups(match func(bindGroupKey) bool) {
	for k, bg := range b.bindGroups {
		if match(k) {
			bg.Release()
			delete(b.bindGroups, k)
		}
	}
}

// releaseResourceBindGroups drops every cached bind group that references textures or samplers.
func (b *wgpuRendererBackend) releaseResourceBindGroups() {
	b.releaseBindGroups(func(k bindGroupKey) bool { return k.resources })
}

// mergeBindGroupLayouts merges the bind group layout descriptors of a vertex and a fragment
// shader. Entries with the same binding in both stages have their visibility ORed together.
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	groupIndices := make(map[int]bool)
	for g := range vertexLayouts {
		groupIndices[g] = true
	}
	for g := range fragmentLayouts {
		groupIndices[g] = true
	}

	for g := range groupIndices {
		entryMap := make(map[uint32]wgpu.BindGroupLayoutEntry)
		for _, e := range vertexLayouts[g].Entries {
			entryMap[e.Binding] = e
		}
		for _, e := range fragmentLayouts[g].Entries {
			if existing, ok := entryMap[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				entryMap[e.Binding] = existing
			} else {
				entryMap[e.Binding] = e
			}
		}

		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return merged
}
