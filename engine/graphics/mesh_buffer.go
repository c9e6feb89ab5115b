package graphics

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// MeshBuffer owns the GPU vertex buffer and optional index buffer of one mesh.
type MeshBuffer struct {
	r        renderer.Renderer
	vb, ib   renderer.BufferHandle
	vertices uint32
	indices  uint32
	layout   renderer.VertexLayout
	topology renderer.Topology
}

// NewMeshBuffer uploads a mesh. Meshes without indices are drawn as a plain vertex list.
// It panics if the buffers cannot be created or the mesh has no vertices.
//
// Parameters:
//   - r: the renderer that owns the buffers
//   - mesh: the geometry to upload
//
// Returns:
//   - *MeshBuffer: the uploaded mesh, drawn as a triangle list until SetTopology is called
func NewMeshBuffer[V VertexType](r renderer.Renderer, mesh Mesh[V]) *MeshBuffer {
	var zero V
	return NewMeshBufferFromBytes(r, common.SliceToBytes(mesh.Vertices), uint32(len(mesh.Vertices)), zero.Layout(), mesh.Indices)
}

// NewMeshBufferFromBytes uploads pre-packed vertex data described by layout.
func NewMeshBufferFromBytes(r renderer.Renderer, vertices []byte, count uint32, layout renderer.VertexLayout, indices []uint32) *MeshBuffer {
	if count == 0 || len(vertices) == 0 {
		panic("graphics: mesh buffer has no vertices")
	}

	m := &MeshBuffer{
		r:        r,
		vertices: count,
		layout:   layout,
		topology: renderer.TopologyTriangleList,
	}

	var err error
	if m.vb, err = r.CreateBuffer(renderer.BufferKindVertex, "Mesh Vertices", vertices); err != nil {
		panic(fmt.Sprintf("graphics: failed to create vertex buffer: %v", err))
	}
	if len(indices) > 0 {
		if m.ib, err = r.CreateBuffer(renderer.BufferKindIndex, "Mesh Indices", common.SliceToBytes(indices)); err != nil {
			r.DestroyBuffer(m.vb)
			panic(fmt.Sprintf("graphics: failed to create index buffer: %v", err))
		}
		m.indices = uint32(len(indices))
	}
	return m
}

// SetTopology changes how the buffer's vertices are assembled into primitives.
func (m *MeshBuffer) SetTopology(t renderer.Topology) {
	m.topology = t
}

// UpdateVertices replaces the vertex data, for meshes rebuilt every frame such as debug lines.
// The vertex count follows the new data.
func UpdateVertices[V VertexType](m *MeshBuffer, vertices []V) {
	if len(vertices) == 0 {
		m.vertices = 0
		return
	}
	m.r.WriteBuffer(m.vb, common.SliceToBytes(vertices))
	m.vertices = uint32(len(vertices))
}

// Render draws the mesh with the currently bound state. It panics if the buffer was terminated
// or the renderer rejects the draw.
func (m *MeshBuffer) Render() {
	if m == nil || m.vb == 0 {
		panic("graphics: Render called on a terminated mesh buffer")
	}
	count := m.vertices
	if m.ib != 0 {
		count = m.indices
	}
	if err := m.r.Draw(m.vb, m.ib, count, m.layout, m.topology); err != nil {
		panic(fmt.Sprintf("graphics: draw failed: %v", err))
	}
}

// VertexCount returns the number of vertices in the buffer.
func (m *MeshBuffer) VertexCount() uint32 { return m.vertices }

// IndexCount returns the number of indices, zero for non-indexed meshes.
func (m *MeshBuffer) IndexCount() uint32 { return m.indices }

// Layout returns the vertex layout the buffer was created with.
func (m *MeshBuffer) Layout() renderer.VertexLayout { return m.layout }

// Terminate releases the GPU buffers.
func (m *MeshBuffer) Terminate() {
	if m == nil || m.r == nil {
		return
	}
	m.r.DestroyBuffer(m.vb)
	m.r.DestroyBuffer(m.ib)
	m.vb, m.ib = 0, 0
}
