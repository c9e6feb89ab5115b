package loader

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
)

// Format identifies a model file format.
type Format int

const (
	FormatUnknown Format = iota

	// FormatGLTF is glTF 2.0 JSON (.gltf).
	FormatGLTF

	// FormatGLB is binary glTF 2.0 (.glb).
	FormatGLB

	// FormatOBJ is Wavefront OBJ (.obj) with an optional MTL material library.
	FormatOBJ
)

func (f Format) String() string {
	switch f {
	case FormatGLTF:
		return "gltf"
	case FormatGLB:
		return "glb"
	case FormatOBJ:
		return "obj"
	default:
		return "unknown"
	}
}

// ImportedMesh is one drawable part of a model: a triangle list in the engine's left-handed
// space plus the index of the material it is drawn with.
type ImportedMesh struct {
	// Name is the mesh or object name from the source file.
	Name string

	Vertices []graphics.Vertex
	Indices  []uint32

	// MaterialIndex indexes ImportedModel.Materials. -1 means the default material.
	MaterialIndex int

	// BoundingMin and BoundingMax are the axis-aligned bounds of the vertex positions.
	BoundingMin common.Vector3
	BoundingMax common.Vector3

	hasNormals  bool
	hasTangents bool
}

// Mesh returns the part as a graphics mesh ready for upload.
func (m *ImportedMesh) Mesh() graphics.MeshFull {
	return graphics.MeshFull{Vertices: m.Vertices, Indices: m.Indices}
}

// ImportedModel is the CPU-side result of decoding a model file.
type ImportedModel struct {
	Name      string
	Meshes    []ImportedMesh
	Materials []common.ImportedMaterial
}

// Material returns the material of a mesh, or nil when the mesh uses the default material.
func (m *ImportedModel) Material(mesh *ImportedMesh) *common.ImportedMaterial {
	if mesh.MaterialIndex < 0 || mesh.MaterialIndex >= len(m.Materials) {
		return nil
	}
	return &m.Materials[mesh.MaterialIndex]
}

// VertexCount returns the total number of vertices across all meshes.
func (m *ImportedModel) VertexCount() int {
	n := 0
	for i := range m.Meshes {
		n += len(m.Meshes[i].Vertices)
	}
	return n
}
