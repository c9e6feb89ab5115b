package renderer

import "github.com/Carmen-Shannon/oxy-fx/common"

// MaxSlots is the number of constant buffer, texture and sampler slots available per shader stage.
const MaxSlots = 8

// BufferHandle identifies a vertex, index or constant buffer owned by the Renderer. Zero means none.
type BufferHandle uint32

// ShaderHandle identifies a compiled vertex or pixel shader. Zero means none.
type ShaderHandle uint32

// TextureHandle identifies a sampled texture. Zero means none.
type TextureHandle uint32

// SamplerHandle identifies a sampler. Zero means none.
type SamplerHandle uint32

// TargetHandle identifies an off-screen render target. The zero handle is the back buffer.
type TargetHandle uint32

// BackBuffer is the TargetHandle of the swap chain back buffer.
const BackBuffer TargetHandle = 0

// ShaderStage selects the pipeline stage a binding is attached to.
type ShaderStage int

const (
	// StageVertex binds resources for the vertex shader.
	StageVertex ShaderStage = iota

	// StagePixel binds resources for the pixel (fragment) shader.
	StagePixel

	stageCount
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	default:
		return "unknown"
	}
}

// BufferKind identifies how a buffer is used by the pipeline.
type BufferKind int

const (
	BufferKindVertex BufferKind = iota
	BufferKindIndex
	BufferKindConstant
)

// Topology is the primitive topology used by a draw.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyPointList
)

// VertexFormat is the data format of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// Size returns the byte size of the format.
func (f VertexFormat) Size() uint32 {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}

// VertexAttribute describes one attribute inside an interleaved vertex.
type VertexAttribute struct {
	Format   VertexFormat
	Offset   uint32
	Location uint32
}

// VertexLayout describes an interleaved vertex buffer.
type VertexLayout struct {
	Stride     uint32
	Attributes []VertexAttribute
}

// HasLocation reports whether the layout supplies the given shader location.
func (l VertexLayout) HasLocation(location uint32) bool {
	for _, a := range l.Attributes {
		if a.Location == location {
			return true
		}
	}
	return false
}

// TextureFormat is the pixel format of a texture or render target.
type TextureFormat int

const (
	// TextureFormatRGBA8 is 8-bit RGBA color.
	TextureFormatRGBA8 TextureFormat = iota

	// TextureFormatRGBA8Srgb is 8-bit RGBA color sampled with sRGB decoding.
	TextureFormatRGBA8Srgb

	// TextureFormatDepth32 is a 32-bit float depth buffer that can also be sampled.
	TextureFormatDepth32
)

// IsDepth reports whether the format is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth32
}

// TextureDesc describes a texture created from CPU pixel data.
type TextureDesc struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat

	// Mips holds tightly packed RGBA8 pixels for each mip level, level 0 first.
	Mips [][]byte
}

// RenderTargetDesc describes an off-screen render target.
type RenderTargetDesc struct {
	Label  string
	Width  uint32
	Height uint32
	Format TextureFormat
}

// Filter is the sampler filter mode.
type Filter int

const (
	FilterPoint Filter = iota
	FilterLinear
	FilterAnisotropic
)

// AddressMode is the sampler address mode for coordinates outside [0, 1].
type AddressMode int

const (
	AddressWrap AddressMode = iota
	AddressClamp
	AddressMirror
)

// SamplerDesc describes a sampler.
type SamplerDesc struct {
	Label   string
	Filter  Filter
	Address AddressMode

	// Compare creates a depth comparison sampler (less-equal) used for shadow lookups.
	Compare bool
}

// SlotTable holds one handle per slot for each shader stage.
type SlotTable[H ~uint32] [stageCount][MaxSlots]H

// Resolve returns the handle bound at slot for the preferred stage, falling back to the other
// stage when the preferred slot is empty.
func (t *SlotTable[H]) Resolve(slot int, prefer ShaderStage) H {
	if slot < 0 || slot >= MaxSlots {
		return 0
	}
	other := StageVertex
	if prefer == StageVertex {
		other = StagePixel
	}
	if h := t[prefer][slot]; h != 0 {
		return h
	}
	return t[other][slot]
}

// DrawCall is the complete pipeline state captured by the Renderer for one draw.
type DrawCall struct {
	VertexShader ShaderHandle
	PixelShader  ShaderHandle

	VertexBuffer BufferHandle
	IndexBuffer  BufferHandle

	// Count is the number of indices when IndexBuffer is set, otherwise the number of vertices.
	Count uint32

	Layout   VertexLayout
	Topology Topology
	Target   TargetHandle

	ConstantBuffers SlotTable[BufferHandle]
	Textures        SlotTable[TextureHandle]
	Samplers        SlotTable[SamplerHandle]
}

// ClearColor is the default color used when clearing targets.
var ClearColor = common.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}
