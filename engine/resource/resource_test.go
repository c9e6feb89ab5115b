package resource_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-fx/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, pngBytes(t, w, h), 0o644))
}

func newTextureManager(t *testing.T, root string, opts ...resource.TextureManagerBuilderOption) (resource.TextureManager, *renderertest.Backend) {
	t.Helper()
	r, backend := renderertest.NewRenderer()
	tm := resource.NewTextureManager(r, opts...)
	tm.Initialize(root)
	return tm, backend
}

func TestTextureManager_LoadTwiceSharesEntry(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "brick.png"), 4, 2)
	tm, backend := newTextureManager(t, dir)

	first := tm.LoadTexture("brick.png", true)
	second := tm.LoadTexture("brick.png", true)

	assert.NotZero(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, tm.Len())
	assert.Equal(t, 2, tm.RefCount(first))
	assert.Len(t, backend.Textures, 1)

	tex := tm.GetTexture(first)
	require.NotNil(t, tex)
	w, h := tex.Size()
	assert.Equal(t, [2]uint32{4, 2}, [2]uint32{w, h})

	tm.ReleaseTexture(first)
	assert.Equal(t, 1, tm.RefCount(first))
	assert.NotNil(t, tm.GetTexture(first))

	tm.ReleaseTexture(first)
	assert.Nil(t, tm.GetTexture(first))
	assert.Zero(t, tm.Len())
	assert.Empty(t, backend.Textures)

	tm.Terminate()
}

func TestTextureManager_MipChain(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 4, 2)

	tm, backend := newTextureManager(t, dir)
	id := tm.LoadTexture("a.png", true)

	desc := backend.Textures[tm.GetTexture(id).RawData()]
	require.Len(t, desc.Mips, 3)
	assert.Len(t, desc.Mips[0], 4*2*4)
	assert.Len(t, desc.Mips[1], 2*1*4)
	assert.Len(t, desc.Mips[2], 1*1*4)
	assert.Equal(t, renderer.TextureFormatRGBA8, desc.Format)
	tm.ReleaseTexture(id)

	tm2, backend2 := newTextureManager(t, dir, resource.WithMipmaps(false), resource.WithTextureFormat(renderer.TextureFormatRGBA8Srgb))
	id = tm2.LoadTexture("a.png", true)
	desc = backend2.Textures[tm2.GetTexture(id).RawData()]
	assert.Len(t, desc.Mips, 1)
	assert.Equal(t, renderer.TextureFormatRGBA8Srgb, desc.Format)
	tm2.ReleaseTexture(id)
}

func TestTextureManager_RootFlagGivesDistinctIds(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)
	writePNG(t, filepath.Join(dir, "assets", "a.png"), 2, 2)
	t.Chdir(dir)

	tm, _ := newTextureManager(t, "assets")
	rooted := tm.LoadTexture("a.png", true)
	plain := tm.LoadTexture("a.png", false)

	assert.NotEqual(t, rooted, plain)
	assert.Equal(t, 2, tm.Len())
	assert.Equal(t, tm.Id("a.png", true), rooted)
	assert.Equal(t, tm.Id("a.png", false), plain)

	tm.ReleaseTexture(rooted)
	tm.ReleaseTexture(plain)
	tm.Terminate()
}

func TestTextureManager_UnknownIds(t *testing.T) {
	tm, _ := newTextureManager(t, t.TempDir())

	assert.Nil(t, tm.GetTexture(resource.TextureId(12345)))
	assert.Nil(t, tm.GetTexture(0))
	assert.Zero(t, tm.RefCount(12345))
	assert.NotPanics(t, func() { tm.ReleaseTexture(12345) })
	assert.NotPanics(t, func() { tm.BindPS(12345, 0) })
}

func TestTextureManager_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)

	r, _ := renderertest.NewRenderer()
	tm := resource.NewTextureManager(r)
	assert.Panics(t, func() { tm.LoadTexture("a.png", true) }, "use before Initialize")

	tm.Initialize(dir)
	assert.Panics(t, func() { tm.Initialize(dir) }, "second Initialize")

	id := tm.LoadTexture("a.png", true)
	assert.Panics(t, func() { tm.Terminate() }, "outstanding reference")

	tm.ReleaseTexture(id)
	assert.NotPanics(t, func() { tm.Terminate() })
	assert.Panics(t, func() { tm.LoadTexture("a.png", true) }, "use after Terminate")
}

func TestTextureManager_MissingFilePanics(t *testing.T) {
	tm, _ := newTextureManager(t, t.TempDir())
	assert.Panics(t, func() { tm.LoadTexture("missing.png", true) })
	assert.Zero(t, tm.Len())
}

func TestTextureManager_LoadTextureData(t *testing.T) {
	tm, backend := newTextureManager(t, t.TempDir())

	assert.Zero(t, tm.LoadTextureData(nil))
	assert.Zero(t, tm.LoadTextureData(&common.ImportedTexture{Path: "broken.glb#0", Data: []byte("garbage")}))
	assert.Zero(t, tm.Len())

	tex := &common.ImportedTexture{Name: "diffuse", Path: "crate.glb#albedo", Data: pngBytes(t, 2, 2), MimeType: "image/png"}
	id := tm.LoadTextureData(tex)
	again := tm.LoadTextureData(tex)

	assert.Equal(t, id, again)
	assert.Equal(t, 2, tm.RefCount(id))
	assert.Equal(t, tm.Id("crate.glb#albedo", false), id)
	assert.Len(t, backend.Textures, 1)

	tm.ReleaseTexture(id)
	tm.ReleaseTexture(id)
	tm.Terminate()
}

func TestTextureManager_LoadTextures(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)
	writePNG(t, filepath.Join(dir, "b.png"), 8, 8)
	tm, backend := newTextureManager(t, dir, resource.WithTextureWorkers(2))

	preloaded := tm.LoadTexture("b.png", true)
	ids := tm.LoadTextures([]string{"a.png", "a.png", "missing.png", "b.png"}, true)

	require.Len(t, ids, 4)
	assert.NotZero(t, ids[0])
	assert.Equal(t, ids[0], ids[1])
	assert.Zero(t, ids[2])
	assert.Equal(t, preloaded, ids[3])

	assert.Equal(t, 2, tm.RefCount(ids[0]))
	assert.Equal(t, 2, tm.RefCount(preloaded))
	assert.Len(t, backend.Textures, 2)
}

func TestTextureManager_HotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.png")
	writePNG(t, path, 2, 2)

	tm, _ := newTextureManager(t, dir)
	id := tm.LoadTexture("live.png", true)
	require.NoError(t, tm.WatchTextures())
	assert.Zero(t, tm.ReloadChanged())

	writePNG(t, path, 4, 4)
	require.Eventually(t, func() bool {
		tm.ReloadChanged()
		w, _ := tm.GetTexture(id).Size()
		return w == 4
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 1, tm.RefCount(id))
	tm.ReleaseTexture(id)
	tm.Terminate()
}

const triangleOBJ = `o tri
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func TestModelManager_LoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(triangleOBJ), 0o644))

	mm := resource.NewModelManager()
	assert.Panics(t, func() { mm.LoadModel("tri.obj") })

	mm.Initialize(dir)
	id := mm.LoadModel("tri.obj")
	assert.Equal(t, id, mm.LoadModel("tri.obj"))
	assert.Equal(t, mm.Id("tri.obj"), id)
	assert.Equal(t, 1, mm.Len())

	m := mm.GetModel(id)
	require.NotNil(t, m)
	assert.Equal(t, id, m.Id)
	assert.Equal(t, filepath.Join(dir, "tri.obj"), m.Path)
	require.Len(t, m.Meshes, 1)
	assert.Len(t, m.Meshes[0].Vertices, 3)

	assert.Nil(t, mm.GetModel(resource.ModelId(42)))
	assert.Panics(t, func() { mm.LoadModel("missing.obj") })

	mm.Terminate()
	assert.Zero(t, mm.Len())
	assert.NotPanics(t, func() { mm.Initialize(dir) })
}

func TestModelManager_LoadModels(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.obj"), []byte(triangleOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.obj"), []byte(triangleOBJ), 0o644))

	mm := resource.NewModelManager(resource.WithModelWorkers(2))
	mm.Initialize(dir)
	ids := mm.LoadModels([]string{"a.obj", "b.obj", "nope.obj", "a.obj"})

	require.Len(t, ids, 4)
	assert.NotZero(t, ids[0])
	assert.NotZero(t, ids[1])
	assert.NotEqual(t, ids[0], ids[1])
	assert.Zero(t, ids[2])
	assert.Equal(t, ids[0], ids[3])
	assert.Equal(t, 2, mm.Len())
}
