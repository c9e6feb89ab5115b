package resource

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/loader"
)

// Model is a decoded model file owned by a ModelManager. Its meshes and materials are CPU data;
// render groups upload their own mesh buffers from it.
type Model struct {
	*loader.ImportedModel

	Id   ModelId
	Path string
}

// modelManager is the implementation of the ModelManager interface.
type modelManager struct {
	root        string
	initialized bool
	models      map[ModelId]*Model

	loader  loader.Loader
	workers int
	pool    worker.DynamicWorkerPool
}

// ModelManager caches decoded models by a hash of their root-relative path. Loading is
// idempotent: a resident model is returned by id without decoding again. Models live until the
// manager terminates.
type ModelManager interface {
	// Initialize sets the root directory model paths are resolved against. It panics when the
	// manager is already initialized.
	Initialize(root string)

	// Terminate drops every model.
	Terminate()

	// Root returns the root directory.
	Root() string

	// Id returns hash(root/path).
	Id(path string) ModelId

	// LoadModel decodes a model file once and returns its id. It panics when the file cannot be
	// decoded.
	//
	// Parameters:
	//   - path: the model path relative to the root directory
	//
	// Returns:
	//   - ModelId: the id of the model
	LoadModel(path string) ModelId

	// LoadModels decodes many model files in parallel on the worker pool. Files that fail to
	// decode are logged and get id 0.
	//
	// Parameters:
	//   - paths: the model paths relative to the root directory
	//
	// Returns:
	//   - []ModelId: one id per path, in order
	LoadModels(paths []string) []ModelId

	// GetModel returns the model for an id, or nil when the id is not resident.
	GetModel(id ModelId) *Model

	// Len returns the number of resident models.
	Len() int
}

var _ ModelManager = &modelManager{}

// NewModelManager creates a ModelManager. Call Initialize before use.
//
// Parameters:
//   - options: a variadic list of ModelManagerBuilderOption functions
//
// Returns:
//   - ModelManager: the new manager
func NewModelManager(options ...ModelManagerBuilderOption) ModelManager {
	m := &modelManager{
		models:  make(map[ModelId]*Model),
		loader:  loader.NewLoader(),
		workers: defaultWorkers(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *modelManager) Initialize(root string) {
	if m.initialized {
		panic("ModelManager: is already initialized")
	}
	m.root = root
	m.initialized = true
	m.pool = worker.NewDynamicWorkerPool(m.workers, poolQueueSize, 1*time.Second)
	common.Logger().Info("model manager initialized", "root", root)
}

func (m *modelManager) Terminate() {
	m.mustBeInitialized()
	clear(m.models)
	m.initialized = false
	common.Logger().Info("model manager terminated")
}

func (m *modelManager) mustBeInitialized() {
	if !m.initialized {
		panic("ModelManager: is not initialized")
	}
}

func (m *modelManager) Root() string {
	return m.root
}

func (m *modelManager) Id(path string) ModelId {
	return ModelId(hashPath(filepath.Join(m.root, path)))
}

func (m *modelManager) LoadModel(path string) ModelId {
	m.mustBeInitialized()
	id := m.Id(path)
	if _, ok := m.models[id]; ok {
		return id
	}

	fullPath := filepath.Join(m.root, path)
	imported, err := m.loader.Load(fullPath)
	if err != nil {
		common.Logger().Error("model load failed", "path", fullPath, "error", err)
		panic(fmt.Sprintf("ModelManager: failed to load %s: %v", fullPath, err))
	}
	m.insert(id, fullPath, imported)
	return id
}

func (m *modelManager) insert(id ModelId, path string, imported *loader.ImportedModel) {
	m.models[id] = &Model{ImportedModel: imported, Id: id, Path: path}
	common.Logger().Info("model loaded", "path", path, "meshes", len(imported.Meshes), "materials", len(imported.Materials))
}

// modelJob is one model decoded on the worker pool by LoadModels.
type modelJob struct {
	id       ModelId
	path     string
	imported *loader.ImportedModel
	err      error
}

func (m *modelManager) LoadModels(paths []string) []ModelId {
	m.mustBeInitialized()

	ids := make([]ModelId, len(paths))
	pending := make(map[ModelId]*modelJob)
	var jobs []*modelJob
	for i, path := range paths {
		id := m.Id(path)
		ids[i] = id
		if _, ok := m.models[id]; ok {
			continue
		}
		if _, ok := pending[id]; ok {
			continue
		}
		job := &modelJob{id: id, path: filepath.Join(m.root, path)}
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
				job.imported, job.err = m.loader.Load(job.path)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, job := range jobs {
		if job.err != nil {
			common.Logger().Warn("skipping model in batch load", "path", job.path, "error", job.err)
			for i := range ids {
				if ids[i] == job.id {
					ids[i] = 0
				}
			}
			continue
		}
		m.insert(job.id, job.path, job.imported)
	}
	return ids
}

func (m *modelManager) GetModel(id ModelId) *Model {
	return m.models[id]
}

func (m *modelManager) Len() int {
	return len(m.models)
}
