package resource

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/fsnotify/fsnotify"
)

// textureEntry is one resident texture with its reference count and the source it reloads from.
type textureEntry struct {
	texture  *graphics.Texture
	refCount int
	source   *common.ImportedTexture
}

// textureManager is the implementation of the TextureManager interface.
type textureManager struct {
	r           renderer.Renderer
	root        string
	initialized bool
	entries     map[TextureId]*textureEntry

	generateMips bool
	format       renderer.TextureFormat
	workers      int
	pool         worker.DynamicWorkerPool

	watcher     *fsnotify.Watcher
	watchedDirs map[string]struct{}
	watchDone   chan struct{}

	changedMu sync.Mutex
	changed   map[string]struct{}
}

// TextureManager owns every shared texture. Entries are keyed by a hash of the file path and
// reference counted: each load adds a reference and each release removes one, destroying the GPU
// texture when the count reaches zero.
//
// All methods must be called from the render thread.
type TextureManager interface {
	// Initialize sets the root directory used by root-relative loads. It panics when the manager
	// is already initialized.
	//
	// Parameters:
	//   - root: the directory root-relative paths are joined to
	Initialize(root string)

	// Terminate stops hot reload and shuts the manager down. It panics when textures are still
	// referenced; every consumer must release its ids first.
	Terminate()

	// Root returns the root directory.
	Root() string

	// Id returns the id a path would load under, without loading it.
	//
	// Parameters:
	//   - path: the texture file path
	//   - useRoot: true to resolve the path against the root directory
	//
	// Returns:
	//   - TextureId: hash(root/path) with the root flag, hash(path) without
	Id(path string, useRoot bool) TextureId

	// LoadTexture loads a texture file, or adds a reference to the resident entry with the same id.
	// The same file loaded with and without the root flag yields two ids and two entries.
	// It panics when the file cannot be decoded or uploaded.
	//
	// Parameters:
	//   - path: the texture file path
	//   - useRoot: true to resolve the path against the root directory
	//
	// Returns:
	//   - TextureId: the id of the texture
	LoadTexture(path string, useRoot bool) TextureId

	// LoadTextureData loads a texture referenced by an imported model. Embedded images are decoded
	// from their bytes and keyed by their synthetic path; external images load from their path.
	// A reference that cannot be decoded is logged and yields 0, so the map is skipped.
	//
	// Parameters:
	//   - tex: the imported texture reference, nil yields 0
	//
	// Returns:
	//   - TextureId: the id of the texture, 0 for a nil or undecodable reference
	LoadTextureData(tex *common.ImportedTexture) TextureId

	// LoadTextures loads many texture files at once. Images decode in parallel on the worker pool
	// and upload serially on the calling thread. Files that fail to decode are logged and get id 0.
	//
	// Parameters:
	//   - paths: the texture file paths
	//   - useRoot: true to resolve the paths against the root directory
	//
	// Returns:
	//   - []TextureId: one id per path, in order
	LoadTextures(paths []string, useRoot bool) []TextureId

	// GetTexture returns the texture for an id, or nil when the id is not resident.
	GetTexture(id TextureId) *graphics.Texture

	// RefCount returns the reference count of an id, 0 when not resident.
	RefCount(id TextureId) int

	// Len returns the number of resident textures.
	Len() int

	// ReleaseTexture removes one reference and destroys the texture at zero. Unknown ids are ignored.
	ReleaseTexture(id TextureId)

	// BindVS binds a texture to a vertex stage slot. Unknown ids are ignored.
	BindVS(id TextureId, slot int)

	// BindPS binds a texture to a pixel stage slot. Unknown ids are ignored.
	BindPS(id TextureId, slot int)

	// WatchTextures starts watching the directories of file-backed textures for changes,
	// including textures loaded later.
	//
	// Returns:
	//   - error: error if the file watcher cannot be created
	WatchTextures() error

	// ReloadChanged re-decodes every watched texture whose file changed since the last call and
	// swaps it in place. Ids and reference counts are unchanged. Failed reloads are logged and the
	// previous texture is kept.
	//
	// Returns:
	//   - int: the number of textures reloaded
	ReloadChanged() int
}

var _ TextureManager = &textureManager{}

// NewTextureManager creates a TextureManager that uploads through r. Call Initialize before use.
//
// Parameters:
//   - r: the renderer textures are created on
//   - options: a variadic list of TextureManagerBuilderOption functions
//
// Returns:
//   - TextureManager: the new manager
func NewTextureManager(r renderer.Renderer, options ...TextureManagerBuilderOption) TextureManager {
	m := &textureManager{
		r:            r,
		entries:      make(map[TextureId]*textureEntry),
		generateMips: true,
		format:       renderer.TextureFormatRGBA8,
		workers:      defaultWorkers(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *textureManager) Initialize(root string) {
	if m.initialized {
		panic("TextureManager: is already initialized")
	}
	m.root = root
	m.initialized = true
	m.pool = worker.NewDynamicWorkerPool(m.workers, poolQueueSize, 1*time.Second)
	common.Logger().Info("texture manager initialized", "root", root)
}

func (m *textureManager) Terminate() {
	m.mustBeInitialized()
	m.stopWatching()
	if n := len(m.entries); n > 0 {
		panic(fmt.Sprintf("TextureManager: not all textures are cleared (%d remaining)", n))
	}
	m.initialized = false
	common.Logger().Info("texture manager terminated")
}

func (m *textureManager) mustBeInitialized() {
	if !m.initialized {
		panic("TextureManager: is not initialized")
	}
}

func (m *textureManager) Root() string {
	return m.root
}

func (m *textureManager) resolve(path string, useRoot bool) string {
	if useRoot {
		return filepath.Join(m.root, path)
	}
	return path
}

func (m *textureManager) Id(path string, useRoot bool) TextureId {
	return TextureId(hashPath(m.resolve(path, useRoot)))
}

func (m *textureManager) LoadTexture(path string, useRoot bool) TextureId {
	m.mustBeInitialized()
	resolved := m.resolve(path, useRoot)
	id, err := m.load(TextureId(hashPath(resolved)), &common.ImportedTexture{Name: path, Path: resolved})
	if err != nil {
		common.Logger().Error("texture load failed", "path", resolved, "error", err)
		panic(fmt.Sprintf("TextureManager: failed to load %s: %v", resolved, err))
	}
	return id
}

func (m *textureManager) LoadTextureData(tex *common.ImportedTexture) TextureId {
	m.mustBeInitialized()
	if tex == nil {
		return 0
	}
	id, err := m.load(TextureId(hashPath(tex.Path)), tex)
	if err != nil {
		common.Logger().Warn("skipping model texture", "path", tex.Path, "error", err)
		return 0
	}
	return id
}

// load adds a reference to a resident entry or decodes and uploads src under id.
func (m *textureManager) load(id TextureId, src *common.ImportedTexture) (TextureId, error) {
	if entry, ok := m.entries[id]; ok {
		entry.refCount++
		return id, nil
	}
	desc, err := decodeTexture(src, m.generateMips, m.format)
	if err != nil {
		return 0, err
	}
	m.insert(id, src, desc, 1)
	return id, nil
}

func (m *textureManager) insert(id TextureId, src *common.ImportedTexture, desc renderer.TextureDesc, refs int) {
	m.entries[id] = &textureEntry{
		texture:  graphics.NewTexture(m.r, desc),
		refCount: refs,
		source:   src,
	}
	m.watchSource(src)
	common.Logger().Info("texture loaded", "path", src.Path, "width", desc.Width, "height", desc.Height, "mips", len(desc.Mips))
}

// textureJob is one texture decoded on the worker pool by LoadTextures.
type textureJob struct {
	id     TextureId
	source *common.ImportedTexture
	refs   int
	desc   renderer.TextureDesc
	err    error
}

func (m *textureManager) LoadTextures(paths []string, useRoot bool) []TextureId {
	m.mustBeInitialized()

	ids := make([]TextureId, len(paths))
	pending := make(map[TextureId]*textureJob)
	var jobs []*textureJob
	for i, path := range paths {
		resolved := m.resolve(path, useRoot)
		id := TextureId(hashPath(resolved))
		ids[i] = id
		if entry, ok := m.entries[id]; ok {
			entry.refCount++
			continue
		}
		if job, ok := pending[id]; ok {
			job.refs++
			continue
		}
		job := &textureJob{id: id, source: &common.ImportedTexture{Name: path, Path: resolved}, refs: 1}
		pending[id] = job
		jobs = append(jobs, job)
	}

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		m.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				job.desc, job.err = decodeTexture(job.source, m.generateMips, m.format)
				return nil, nil
			},
		})
	}
	wg.Wait()

	// GPU upload stays on the calling thread
	for _, job := range jobs {
		if job.err != nil {
			common.Logger().Warn("skipping texture in batch load", "path", job.source.Path, "error", job.err)
			for i := range ids {
				if ids[i] == job.id {
					ids[i] = 0
				}
			}
			continue
		}
		m.insert(job.id, job.source, job.desc, job.refs)
	}
	return ids
}

func (m *textureManager) GetTexture(id TextureId) *graphics.Texture {
	if entry, ok := m.entries[id]; ok {
		return entry.texture
	}
	return nil
}

func (m *textureManager) RefCount(id TextureId) int {
	if entry, ok := m.entries[id]; ok {
		return entry.refCount
	}
	return 0
}

func (m *textureManager) Len() int {
	return len(m.entries)
}

func (m *textureManager) ReleaseTexture(id TextureId) {
	entry, ok := m.entries[id]
	if !ok {
		return
	}
	entry.refCount--
	if entry.refCount > 0 {
		return
	}
	entry.texture.Terminate()
	delete(m.entries, id)
	common.Logger().Debug("texture released", "path", entry.source.Path)
}

func (m *textureManager) BindVS(id TextureId, slot int) {
	if entry, ok := m.entries[id]; ok {
		entry.texture.BindVS(slot)
	}
}

func (m *textureManager) BindPS(id TextureId, slot int) {
	if entry, ok := m.entries[id]; ok {
		entry.texture.BindPS(slot)
	}
}
