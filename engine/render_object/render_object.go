// Package render_object pairs GPU meshes with the transform, material and texture ids an effect
// needs to draw them.
package render_object

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
)

// RenderObject is one drawable: an owned mesh buffer plus the state an effect reads per draw.
// The texture ids are borrowed from a TextureManager; 0 means the map is unset.
type RenderObject struct {
	Transform  common.Transform
	MeshBuffer *graphics.MeshBuffer
	Material   graphics.Material

	DiffuseMapId resource.TextureId
	SpecMapId    resource.TextureId
	NormalMapId  resource.TextureId
	BumpMapId    resource.TextureId
}

// NewRenderObject uploads mesh and returns a RenderObject at the origin with the default material
// and no texture maps. It panics if the mesh cannot be uploaded.
//
// Parameters:
//   - r: the renderer that owns the mesh buffer
//   - mesh: the geometry to upload
//
// Returns:
//   - RenderObject: the new object, owning its mesh buffer
func NewRenderObject[V graphics.VertexType](r renderer.Renderer, mesh graphics.Mesh[V]) RenderObject {
	return RenderObject{
		Transform:  common.NewTransform(),
		MeshBuffer: graphics.NewMeshBuffer(r, mesh),
		Material:   graphics.DefaultMaterial(),
	}
}

// Terminate releases the mesh buffer. Texture ids are borrowed and must be released by whoever
// loaded them.
func (o *RenderObject) Terminate() {
	o.MeshBuffer.Terminate()
	o.MeshBuffer = nil
}

// TextureIds returns the four texture map ids in diffuse, spec, normal, bump order.
func (o *RenderObject) TextureIds() [4]resource.TextureId {
	return [4]resource.TextureId{o.DiffuseMapId, o.SpecMapId, o.NormalMapId, o.BumpMapId}
}
