package loader_test

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad in the XY plane
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func assertVec3(t *testing.T, expected, actual common.Vector3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, 1e-5, "x")
	assert.InDelta(t, expected.Y, actual.Y, 1e-5, "y")
	assert.InDelta(t, expected.Z, actual.Z, 1e-5, "z")
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		format loader.Format
	}{
		{"models/box.gltf", loader.FormatGLTF},
		{"models/BOX.GLB", loader.FormatGLB},
		{"box.obj", loader.FormatOBJ},
		{"box.fbx", loader.FormatUnknown},
		{"box", loader.FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.format, loader.FormatFromPath(tt.path))
		})
	}

	l := loader.NewLoader()
	assert.True(t, l.Supports("a.obj"))
	assert.False(t, l.Supports("a.fbx"))
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := loader.NewLoader().Load("model.fbx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model format")

	_, err = loader.NewLoader().LoadReader("m", strings.NewReader(""), loader.FormatUnknown, "")
	require.Error(t, err)
}

func TestOBJ_QuadWithoutConversion(t *testing.T) {
	l := loader.NewLoader(loader.WithHandednessConversion(false))
	model, err := l.LoadReader("quad", strings.NewReader(quadOBJ), loader.FormatOBJ, "")
	require.NoError(t, err)

	require.Len(t, model.Meshes, 1)
	mesh := model.Meshes[0]
	assert.Equal(t, "quad", model.Name)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
	assert.Equal(t, -1, mesh.MaterialIndex)
	assert.Nil(t, model.Material(&mesh))

	// V is flipped so the first vertex samples the top left of the image
	assert.Equal(t, common.Vector2{X: 0, Y: 1}, mesh.Vertices[0].UV)

	for _, v := range mesh.Vertices {
		assertVec3(t, common.Vec3(0, 0, 1), v.Normal)
		assertVec3(t, common.Vec3(1, 0, 0), v.Tangent)
	}
	assertVec3(t, common.Vec3(0, 0, 0), mesh.BoundingMin)
	assertVec3(t, common.Vec3(1, 1, 0), mesh.BoundingMax)
}

func TestOBJ_HandednessConversion(t *testing.T) {
	src := "v 0 0 1\nv 1 0 1\nv 0 1 1\nf 1 2 3\n"
	model, err := loader.NewLoader().LoadReader("tri", strings.NewReader(src), loader.FormatOBJ, "")
	require.NoError(t, err)

	mesh := model.Meshes[0]
	assertVec3(t, common.Vec3(0, 0, -1), mesh.Vertices[0].Position)
	assert.Equal(t, []uint32{0, 2, 1}, mesh.Indices)
	// the generated normal faces -Z, the mirror of the right-handed +Z
	for _, v := range mesh.Vertices {
		assertVec3(t, common.Vec3(0, 0, -1), v.Normal)
	}
}

func TestOBJ_Scale(t *testing.T) {
	l := loader.NewLoader(loader.WithScale(2), loader.WithHandednessConversion(false))
	model, err := l.LoadReader("quad", strings.NewReader(quadOBJ), loader.FormatOBJ, "")
	require.NoError(t, err)
	assertVec3(t, common.Vec3(2, 2, 0), model.Meshes[0].BoundingMax)
}

func TestOBJ_FileWithMaterials(t *testing.T) {
	dir := t.TempDir()
	obj := `mtllib box.mtl
o Box
v -1 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
usemtl red
f -3//1 -2//1 -1//1
usemtl blue
f 1//1 2//1 3//1
usemtl missing
f 1//1 2//1 3//1
`
	mtl := `newmtl red
Kd 1 0 0
Ns 32
map_Kd -bm 1 textures/red.png
newmtl blue
Kd 0 0 1
d 0.5
norm blue_n.png
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "box.obj"), []byte(obj), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "box.mtl"), []byte(mtl), 0o644))

	model, err := loader.NewLoader().Load(filepath.Join(dir, "box.obj"))
	require.NoError(t, err)

	assert.Equal(t, "box", model.Name)
	require.Len(t, model.Materials, 2)
	require.Len(t, model.Meshes, 3)

	red := model.Materials[0]
	assert.Equal(t, "red", red.Name)
	assert.Equal(t, common.Color{R: 1, G: 0, B: 0, A: 1}, red.Diffuse)
	assert.Equal(t, float32(32), red.Shininess)
	require.NotNil(t, red.DiffuseTexture)
	assert.Equal(t, filepath.Join(dir, "textures", "red.png"), red.DiffuseTexture.Path)
	assert.False(t, red.DiffuseTexture.Embedded())

	blue := model.Materials[1]
	assert.Equal(t, float32(0.5), blue.Diffuse.A)
	require.NotNil(t, blue.NormalTexture)
	assert.Equal(t, filepath.Join(dir, "blue_n.png"), blue.NormalTexture.Path)

	assert.Equal(t, 0, model.Meshes[0].MaterialIndex)
	assert.Equal(t, 1, model.Meshes[1].MaterialIndex)
	assert.Equal(t, -1, model.Meshes[2].MaterialIndex)
	assert.Equal(t, "Box", model.Meshes[0].Name)
	assert.Same(t, &model.Materials[1], model.Material(&model.Meshes[1]))

	// source normals are kept and mirrored
	assertVec3(t, common.Vec3(0, 0, -1), model.Meshes[0].Vertices[0].Normal)
	assert.Equal(t, 9, model.VertexCount())
}

func TestOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"bad number", "v 0 x 0\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.NewLoader().LoadReader("bad", strings.NewReader(tt.src), loader.FormatOBJ, "")
			assert.Error(t, err)
		})
	}
}

// triangleBuffer returns three VEC3 positions followed by three uint16 indices, padded to 44 bytes.
func triangleBuffer(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2}))
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

const triangleAccessors = `
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ]`

func TestGLTF_SceneHierarchyAndMaterial(t *testing.T) {
	data := triangleBuffer(t)
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"name": "Tri", "nodes": [0]}],
  "nodes": [
    {"children": [1], "scale": [2, 2, 2]},
    {"name": "child", "mesh": 0, "translation": [0, 0, 5]}
  ],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{
    "name": "red",
    "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "metallicFactor": 0, "roughnessFactor": 1},
    "emissiveFactor": [0, 1, 0]
  }],
  %s,
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{"uri": %q, "byteLength": %d}]
}`, triangleAccessors, uri, len(data))

	l := loader.NewLoader(loader.WithHandednessConversion(false))
	model, err := l.LoadReader("tri.gltf", strings.NewReader(doc), loader.FormatGLTF, "")
	require.NoError(t, err)

	assert.Equal(t, "Tri", model.Name)
	require.Len(t, model.Meshes, 1)
	mesh := model.Meshes[0]
	assert.Equal(t, "child", mesh.Name)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)

	// child translation then parent scale
	assertVec3(t, common.Vec3(0, 0, 10), mesh.Vertices[0].Position)
	assertVec3(t, common.Vec3(2, 0, 10), mesh.Vertices[1].Position)
	assertVec3(t, common.Vec3(0, 2, 10), mesh.Vertices[2].Position)
	assertVec3(t, common.Vec3(0, 0, 1), mesh.Vertices[0].Normal)

	mat := model.Material(&mesh)
	require.NotNil(t, mat)
	assert.Equal(t, "red", mat.Name)
	assert.Equal(t, common.ColorRed, mat.Diffuse)
	assert.Equal(t, common.ColorRed, mat.Ambient)
	assert.Equal(t, common.ColorGray, mat.Specular)
	assert.Equal(t, common.Color{R: 0, G: 1, B: 0, A: 1}, mat.Emissive)
	assert.Equal(t, float32(1), mat.Shininess)
	assert.Nil(t, mat.DiffuseTexture)
}

func TestGLTF_ConvertsToLeftHanded(t *testing.T) {
	data := triangleBuffer(t)
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  %s,
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{"uri": %q, "byteLength": %d}]
}`, triangleAccessors, uri, len(data))

	model, err := loader.NewLoader().LoadReader("tri", strings.NewReader(doc), loader.FormatGLTF, "")
	require.NoError(t, err)

	mesh := model.Meshes[0]
	assert.Equal(t, []uint32{0, 2, 1}, mesh.Indices)
	assertVec3(t, common.Vec3(0, 0, -1), mesh.Vertices[0].Normal)
	assert.Equal(t, -1, mesh.MaterialIndex)
	assert.Equal(t, 3, len(mesh.Mesh().Vertices))
}

func TestGLTF_InvalidVersion(t *testing.T) {
	_, err := loader.NewLoader().LoadReader("old", strings.NewReader(`{"asset": {"version": "1.0"}}`), loader.FormatGLTF, "")
	assert.Error(t, err)
}

func buildGLB(t *testing.T, doc string, bin []byte) []byte {
	t.Helper()
	jsonChunk := []byte(doc)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(bin)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, []uint32{0x46546C67, 2, uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, []uint32{uint32(len(jsonChunk)), 0x4E4F534A}))
	out.Write(jsonChunk)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, []uint32{uint32(len(bin)), 0x004E4942}))
	out.Write(bin)
	return out.Bytes()
}

func TestGLB_EmbeddedTexture(t *testing.T) {
	image := []byte("not really a png")
	bin := append(triangleBuffer(t), image...)
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}}],
  "textures": [{"source": 0}],
  "images": [{"name": "albedo", "bufferView": 2, "mimeType": "image/png"}],
  %s,
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6},
    {"buffer": 0, "byteOffset": 44, "byteLength": %d}
  ],
  "buffers": [{"byteLength": %d}]
}`, triangleAccessors, len(image), len(bin))

	model, err := loader.NewLoader().LoadReader("crate", bytes.NewReader(buildGLB(t, doc, bin)), loader.FormatGLB, "")
	require.NoError(t, err)

	require.Len(t, model.Materials, 1)
	tex := model.Materials[0].DiffuseTexture
	require.NotNil(t, tex)
	assert.True(t, tex.Embedded())
	assert.Equal(t, image, tex.Data)
	assert.Equal(t, "crate#albedo", tex.Path)
	assert.Equal(t, "image/png", tex.MimeType)
	// untextured factors fall back to white, fully rough
	assert.Equal(t, common.ColorWhite, model.Materials[0].Diffuse)
}

func TestGLB_BadMagic(t *testing.T) {
	data := buildGLB(t, `{"asset": {"version": "2.0"}}`, nil)
	data[0] = 'x'
	_, err := loader.NewLoader().LoadReader("bad", bytes.NewReader(data), loader.FormatGLB, "")
	assert.Error(t, err)
}
