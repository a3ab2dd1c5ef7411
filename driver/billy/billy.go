// Package billy provides a go-billy backed storage engine.
package billy

import (
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/internal/fsengine"
)

// Auto-register billy storage driver.
func init() {
	lfsdfs.Register("billy", func(cfg *lfsdfs.Config) (lfsdfs.Engine, error) {
		blockSize, blockCount := cfg.Geometry()
		if cfg.BasePath == "" {
			return NewMemory(blockSize, blockCount), nil
		}
		if err := os.MkdirAll(cfg.BasePath, 0750); err != nil {
			return nil, err
		}
		return New(osfs.New(cfg.BasePath), blockSize, blockCount), nil
	})
}

// Engine implements lfsdfs.Engine on a billy.Filesystem.
type Engine struct {
	*fsengine.Engine
	bfs billy.Filesystem
}

// New creates an Engine backed by bfs.
func New(bfs billy.Filesystem, blockSize, blockCount uint32) *Engine {
	return &Engine{
		Engine: fsengine.New(backend{bfs: bfs}, blockSize, blockCount),
		bfs:    bfs,
	}
}

// NewMemory creates an Engine backed by an empty billy memfs.
func NewMemory(blockSize, blockCount uint32) *Engine {
	return New(memfs.New(), blockSize, blockCount)
}

// Unwrap returns the underlying billy.Filesystem.
func (e *Engine) Unwrap() billy.Filesystem {
	return e.bfs
}

type backend struct {
	bfs billy.Filesystem
}

func (b backend) OpenFile(name string, flag int, perm os.FileMode) (fsengine.File, error) {
	f, err := b.bfs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Mkdir relies on the engine having checked that the parent exists and
// name does not, so MkdirAll creates exactly one directory.
func (b backend) Mkdir(name string, perm os.FileMode) error {
	return b.bfs.MkdirAll(name, perm)
}

func (b backend) Remove(name string) error {
	return b.bfs.Remove(name)
}

func (b backend) RemoveAll(name string) error {
	return util.RemoveAll(b.bfs, name)
}

func (b backend) Rename(oldName, newName string) error {
	return b.bfs.Rename(oldName, newName)
}

func (b backend) Stat(name string) (os.FileInfo, error) {
	return b.bfs.Stat(name)
}

func (b backend) ReadDir(name string) ([]os.FileInfo, error) {
	return b.bfs.ReadDir(name)
}

// Compile-time interface checks.
var (
	_ lfsdfs.Engine    = (*Engine)(nil)
	_ fsengine.Backend = backend{}
)
