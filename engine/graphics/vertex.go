// Package graphics holds the GPU resource primitives built on top of the renderer: mesh buffers,
// constant buffers, shaders, samplers, textures and render targets, together with the vertex,
// mesh, material and light types they carry.
//
// Every primitive has exactly one owner. Construction failures are fatal and panic with the
// underlying renderer error; Terminate releases the GPU resource and is safe to call twice.
package graphics

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// VertexPC is a position and color vertex.
type VertexPC struct {
	Position common.Vector3 // offset  0
	Color    common.Color   // offset 12
}

// VertexPX is a position and texture coordinate vertex.
type VertexPX struct {
	Position common.Vector3 // offset  0
	UV       common.Vector2 // offset 12
}

// Vertex is the full lit vertex: position, normal, tangent and texture coordinate.
type Vertex struct {
	Position common.Vector3 // offset  0
	Normal   common.Vector3 // offset 12
	Tangent  common.Vector3 // offset 24
	UV       common.Vector2 // offset 36
}

var (
	layoutPC = renderer.VertexLayout{
		Stride: 28,
		Attributes: []renderer.VertexAttribute{
			{Format: renderer.VertexFormatFloat32x3, Offset: 0, Location: 0},
			{Format: renderer.VertexFormatFloat32x4, Offset: 12, Location: 1},
		},
	}

	layoutPX = renderer.VertexLayout{
		Stride: 20,
		Attributes: []renderer.VertexAttribute{
			{Format: renderer.VertexFormatFloat32x3, Offset: 0, Location: 0},
			{Format: renderer.VertexFormatFloat32x2, Offset: 12, Location: 1},
		},
	}

	layoutFull = renderer.VertexLayout{
		Stride: 44,
		Attributes: []renderer.VertexAttribute{
			{Format: renderer.VertexFormatFloat32x3, Offset: 0, Location: 0},
			{Format: renderer.VertexFormatFloat32x3, Offset: 12, Location: 1},
			{Format: renderer.VertexFormatFloat32x3, Offset: 24, Location: 2},
			{Format: renderer.VertexFormatFloat32x2, Offset: 36, Location: 3},
		},
	}
)

// Layout returns the interleaved layout of VertexPC: location 0 position, location 1 color.
func (VertexPC) Layout() renderer.VertexLayout { return layoutPC }

// Layout returns the interleaved layout of VertexPX: location 0 position, location 1 uv.
func (VertexPX) Layout() renderer.VertexLayout { return layoutPX }

// Layout returns the interleaved layout of Vertex: locations 0 to 3 are position, normal,
// tangent and uv.
func (Vertex) Layout() renderer.VertexLayout { return layoutFull }

// VertexType is the set of vertex formats a MeshBuffer can be built from.
type VertexType interface {
	VertexPC | VertexPX | Vertex
	Layout() renderer.VertexLayout
}

// Mesh is CPU-side geometry: vertices plus an optional triangle index list.
type Mesh[V VertexType] struct {
	Vertices []V
	Indices  []uint32
}

type (
	MeshPC   = Mesh[VertexPC]
	MeshPX   = Mesh[VertexPX]
	MeshFull = Mesh[Vertex]
)
