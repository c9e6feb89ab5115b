package resource

import (
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/fsnotify/fsnotify"
)

func (m *textureManager) WatchTextures() error {
	m.mustBeInitialized()
	if m.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create texture watcher: %w", err)
	}
	m.watcher = w
	m.watchedDirs = make(map[string]struct{})
	m.changed = make(map[string]struct{})
	m.watchDone = make(chan struct{})
	for _, entry := range m.entries {
		m.watchSource(entry.source)
	}

	go m.watchLoop(w, m.watchDone)
	return nil
}

// watchLoop records changed files until the watcher is closed. Reloading happens later on the
// render thread in ReloadChanged.
func (m *textureManager) watchLoop(w *fsnotify.Watcher, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			m.changedMu.Lock()
			m.changed[filepath.Clean(event.Name)] = struct{}{}
			m.changedMu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			common.Logger().Warn("texture watcher error", "error", err)
		}
	}
}

// watchSource adds the directory of a file-backed texture to the watcher.
func (m *textureManager) watchSource(src *common.ImportedTexture) {
	if m.watcher == nil || src.Embedded() {
		return
	}
	dir := filepath.Dir(src.Path)
	if _, ok := m.watchedDirs[dir]; ok {
		return
	}
	if err := m.watcher.Add(dir); err != nil {
		common.Logger().Warn("cannot watch texture directory", "dir", dir, "error", err)
		return
	}
	m.watchedDirs[dir] = struct{}{}
}

func (m *textureManager) stopWatching() {
	if m.watcher == nil {
		return
	}
	m.watcher.Close()
	<-m.watchDone
	m.watcher = nil
	m.watchedDirs = nil
}

func (m *textureManager) ReloadChanged() int {
	m.mustBeInitialized()
	if m.watcher == nil {
		return 0
	}

	m.changedMu.Lock()
	changed := m.changed
	m.changed = make(map[string]struct{})
	m.changedMu.Unlock()
	if len(changed) == 0 {
		return 0
	}

	reloaded := 0
	for id, entry := range m.entries {
		if entry.source.Embedded() {
			continue
		}
		if _, ok := changed[filepath.Clean(entry.source.Path)]; !ok {
			continue
		}
		desc, err := decodeTexture(entry.source, m.generateMips, m.format)
		if err == nil {
			err = entry.texture.Replace(desc)
		}
		if err != nil {
			common.Logger().Warn("texture reload failed", "path", entry.source.Path, "id", uint64(id), "error", err)
			continue
		}
		reloaded++
		common.Logger().Info("texture reloaded", "path", entry.source.Path)
	}
	return reloaded
}
