// Package asset loads named blobs such as compiled shaders.
package asset

import (
	"io/fs"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Loader hands out the bytes of a named asset. Bytes returned by Load stay
// valid until Free is called with the same name.
type Loader interface {
	Load(name string) ([]byte, error)
	Free(name string)
}

// FS loads assets from a file system and keeps them until they are freed.
type FS struct {
	fsys fs.FS

	mu     sync.Mutex
	loaded map[string][]byte
}

var _ Loader = (*FS)(nil)

func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys, loaded: map[string][]byte{}}
}

// Dir loads assets from a directory on disk.
func Dir(path string) *FS {
	return NewFS(os.DirFS(path))
}

func (a *FS) Load(name string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if b, ok := a.loaded[name]; ok {
		return b, nil
	}
	b, err := fs.ReadFile(a.fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "load asset %s", name)
	}
	a.loaded[name] = b
	return b, nil
}

func (a *FS) Free(name string) {
	a.mu.Lock()
	delete(a.loaded, name)
	a.mu.Unlock()
}

// Loaded reports how many assets are held.
func (a *FS) Loaded() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.loaded)
}
