// Package resource holds the managers that own shared GPU assets. Textures and models are keyed
// by a hash of their file path; consumers hold ids and resolve them every frame.
package resource

import (
	"hash/fnv"
	"path/filepath"
)

// TextureId identifies a texture owned by a TextureManager. 0 means unset.
type TextureId uint64

// ModelId identifies a model owned by a ModelManager. 0 means unset.
type ModelId uint64

// hashPath returns the FNV-1a hash of a cleaned, slash-separated path. Never 0.
// Distinct paths that collide alias the same entry.
func hashPath(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(filepath.ToSlash(filepath.Clean(path))))
	if sum := h.Sum64(); sum != 0 {
		return sum
	}
	return 1
}

// poolQueueSize bounds the decode queue of a manager's worker pool.
const poolQueueSize = 256
