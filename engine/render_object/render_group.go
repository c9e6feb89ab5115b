package render_object

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
)

// RenderGroup is every part of one model, drawn together under a shared transform.
type RenderGroup struct {
	ModelId       resource.ModelId
	Transform     common.Transform
	RenderObjects []RenderObject

	textures resource.TextureManager
}

// NewRenderGroup loads a model and builds one RenderObject per mesh. Each part gets the model's
// material for that mesh and references to its diffuse, specular, normal and bump textures.
// Textures that cannot be loaded are left unset. It panics if the model cannot be loaded.
//
// Parameters:
//   - r: the renderer that owns the mesh buffers
//   - models: the model cache the file is loaded through, relative to its root
//   - textures: the texture manager the material maps are loaded through
//   - path: the model file path
//
// Returns:
//   - *RenderGroup: the group at the origin
func NewRenderGroup(r renderer.Renderer, models resource.ModelManager, textures resource.TextureManager, path string) *RenderGroup {
	g := &RenderGroup{Transform: common.NewTransform()}
	g.Initialize(r, models, textures, path)
	return g
}

// Initialize loads the model at path and replaces the group's parts. The transform is kept.
func (g *RenderGroup) Initialize(r renderer.Renderer, models resource.ModelManager, textures resource.TextureManager, path string) {
	g.Terminate()
	g.ModelId = models.LoadModel(path)
	g.textures = textures
	if g.Transform == (common.Transform{}) {
		g.Transform = common.NewTransform()
	}

	model := models.GetModel(g.ModelId)
	g.RenderObjects = make([]RenderObject, 0, len(model.Meshes))
	for i := range model.Meshes {
		mesh := &model.Meshes[i]
		obj := NewRenderObject(r, mesh.Mesh())

		imported := model.Material(mesh)
		obj.Material = graphics.MaterialFromImported(imported)
		if imported != nil {
			obj.DiffuseMapId = textures.LoadTextureData(imported.DiffuseTexture)
			obj.SpecMapId = textures.LoadTextureData(imported.SpecularTexture)
			obj.NormalMapId = textures.LoadTextureData(imported.NormalTexture)
			obj.BumpMapId = textures.LoadTextureData(imported.BumpTexture)
		}
		g.RenderObjects = append(g.RenderObjects, obj)
	}
	common.Logger().Debug("render group initialized", "model", model.Name, "parts", len(g.RenderObjects))
}

// Terminate releases every part's mesh buffer and texture references. The model stays cached in
// the ModelManager.
func (g *RenderGroup) Terminate() {
	for i := range g.RenderObjects {
		obj := &g.RenderObjects[i]
		if g.textures != nil {
			for _, id := range obj.TextureIds() {
				g.textures.ReleaseTexture(id)
			}
		}
		obj.Terminate()
	}
	g.RenderObjects = nil
}
