package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF primitives into ImportedMesh parts.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index, one ImportedMesh per primitive,
	// with vertices transformed by world.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//   - world: the node's world matrix
	//
	// Returns:
	//   - []ImportedMesh: one ImportedMesh per triangle primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int, world common.Matrix4) ([]ImportedMesh, error)

	// ExtractScene walks the default scene's node hierarchy and extracts every mesh instance
	// with its accumulated world transform. Documents without nodes fall back to extracting
	// every mesh untransformed.
	//
	// Returns:
	//   - []ImportedMesh: all mesh parts, flattened
	//   - error: error if extraction fails
	ExtractScene() ([]ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractScene() ([]ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}

	if len(doc.Nodes) == 0 {
		var result []ImportedMesh
		for i := range doc.Meshes {
			parts, err := e.ExtractMesh(i, common.Identity4())
			if err != nil {
				return nil, err
			}
			result = append(result, parts...)
		}
		return result, nil
	}

	var result []ImportedMesh
	visited := make([]bool, len(doc.Nodes))
	var walk func(nodeIndex int, parent common.Matrix4) error
	walk = func(nodeIndex int, parent common.Matrix4) error {
		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", nodeIndex)
		}
		if visited[nodeIndex] {
			return fmt.Errorf("node %d is referenced more than once", nodeIndex)
		}
		visited[nodeIndex] = true

		node := &doc.Nodes[nodeIndex]
		world := gltfNodeLocalMatrix(node).Mul(parent)
		if node.Mesh != nil {
			parts, err := e.ExtractMesh(*node.Mesh, world)
			if err != nil {
				return err
			}
			for i := range parts {
				if node.Name != "" && parts[i].Name == "" {
					parts[i].Name = node.Name
				}
			}
			result = append(result, parts...)
		}
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range gltfSceneRoots(doc) {
		if err := walk(root, common.Identity4()); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int, world common.Matrix4) ([]ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	var result []ImportedMesh
	for primIdx := range mesh.Primitives {
		prim := &mesh.Primitives[primIdx]
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			common.Logger().Warn("skipping non-triangle primitive", "mesh", mesh.Name, "primitive", primIdx, "mode", *prim.Mode)
			continue
		}
		imported, err := e.extractPrimitive(prim, mesh.Name)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		transformMesh(imported, world)
		result = append(result, *imported)
	}
	return result, nil
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, name string) (*ImportedMesh, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, errors.New("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posIdx)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	imported := &ImportedMesh{
		Name:          name,
		Vertices:      make([]graphics.Vertex, len(positions)),
		MaterialIndex: -1,
	}
	for i, p := range positions {
		imported.Vertices[i].Position = common.Vec3(p[0], p[1], p[2])
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := e.parser.ReadVec3Accessor(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		if len(normals) == len(positions) {
			for i, n := range normals {
				imported.Vertices[i].Normal = common.Vec3(n[0], n[1], n[2])
			}
			imported.hasNormals = true
		}
	}

	if idx, ok := prim.Attributes["TANGENT"]; ok {
		tangents, err := e.parser.ReadVec4Accessor(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to read tangents: %w", err)
		}
		if len(tangents) == len(positions) {
			// the w handedness sign is dropped, bitangents are derived in the shader
			for i, t := range tangents {
				imported.Vertices[i].Tangent = common.Vec3(t[0], t[1], t[2])
			}
			imported.hasTangents = true
		}
	}

	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := e.parser.ReadVec2Accessor(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
		for i := 0; i < len(uvs) && i < len(imported.Vertices); i++ {
			imported.Vertices[i].UV = common.Vector2{X: uvs[i][0], Y: uvs[i][1]}
		}
	}

	if prim.Indices != nil {
		indices, err := e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(imported.Vertices) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(imported.Vertices))
			}
		}
		imported.Indices = indices
	} else {
		imported.Indices = make([]uint32, len(positions))
		for i := range imported.Indices {
			imported.Indices[i] = uint32(i)
		}
	}
	imported.Indices = imported.Indices[:len(imported.Indices)-len(imported.Indices)%3]

	if prim.Material != nil {
		imported.MaterialIndex = *prim.Material
	}
	return imported, nil
}

// transformMesh bakes a world matrix into the mesh. Normals and tangents use the inverse
// transpose so non-uniform scale keeps them perpendicular to the surface.
func transformMesh(mesh *ImportedMesh, world common.Matrix4) {
	if world == common.Identity4() {
		return
	}
	normalMatrix := world
	if inv, ok := world.Inverse(); ok {
		normalMatrix = inv.Transpose()
	}
	for i := range mesh.Vertices {
		v := &mesh.Vertices[i]
		v.Position = world.TransformCoord(v.Position)
		if mesh.hasNormals {
			v.Normal = normalMatrix.TransformNormal(v.Normal).Normalize()
		}
		if mesh.hasTangents {
			v.Tangent = world.TransformNormal(v.Tangent).Normalize()
		}
	}
	// a mirroring transform flips the facing of every triangle
	if determinant3(world) < 0 {
		reverseWinding(mesh.Indices)
	}
}

func determinant3(m common.Matrix4) float32 {
	return m[0]*(m[5]*m[10]-m[6]*m[9]) -
		m[1]*(m[4]*m[10]-m[6]*m[8]) +
		m[2]*(m[4]*m[9]-m[5]*m[8])
}

// gltfNodeLocalMatrix returns the node's local transform, from its matrix or its TRS triple.
func gltfNodeLocalMatrix(node *gltfNode) common.Matrix4 {
	if node.Matrix != nil {
		return common.Matrix4(*node.Matrix)
	}
	t := common.NewTransform()
	if node.Translation != nil {
		t.Position = common.Vec3(node.Translation[0], node.Translation[1], node.Translation[2])
	}
	if node.Rotation != nil {
		t.Rotation = common.Quaternion{X: node.Rotation[0], Y: node.Rotation[1], Z: node.Rotation[2], W: node.Rotation[3]}
	}
	if node.Scale != nil {
		t.Scale = common.Vec3(node.Scale[0], node.Scale[1], node.Scale[2])
	}
	return t.Matrix()
}

// gltfSceneRoots returns the root nodes of the default scene, or every parentless node when
// the document declares no scenes.
func gltfSceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for i := range doc.Nodes {
		for _, c := range doc.Nodes[i].Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}
