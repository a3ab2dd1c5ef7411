// Package absfs provides an absfs backed storage engine.
package absfs

import (
	"fmt"
	"os"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/internal/fsengine"
)

// Auto-register absfs storage driver.
func init() {
	lfsdfs.Register("absfs", func(cfg *lfsdfs.Config) (lfsdfs.Engine, error) {
		if cfg.BasePath != "" {
			return nil, fmt.Errorf("lfsdfs/absfs: only in-memory storage is supported (got basePath %q)", cfg.BasePath)
		}
		blockSize, blockCount := cfg.Geometry()
		return NewMemory(blockSize, blockCount)
	})
}

// Engine implements lfsdfs.Engine on an absfs.FileSystem.
type Engine struct {
	*fsengine.Engine
	fs absfs.FileSystem
}

// New creates an Engine backed by fs.
func New(fs absfs.FileSystem, blockSize, blockCount uint32) *Engine {
	return &Engine{
		Engine: fsengine.New(backend{fs: fs}, blockSize, blockCount),
		fs:     fs,
	}
}

// NewMemory creates an Engine backed by an empty absfs memfs.
func NewMemory(blockSize, blockCount uint32) (*Engine, error) {
	fs, err := memfs.NewFS()
	if err != nil {
		return nil, err
	}
	return New(fs, blockSize, blockCount), nil
}

type backend struct {
	fs absfs.FileSystem
}

func (b backend) OpenFile(name string, flag int, perm os.FileMode) (fsengine.File, error) {
	f, err := b.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (b backend) Mkdir(name string, perm os.FileMode) error {
	return b.fs.Mkdir(name, perm)
}

func (b backend) Remove(name string) error {
	return b.fs.Remove(name)
}

func (b backend) RemoveAll(name string) error {
	return b.fs.RemoveAll(name)
}

func (b backend) Rename(oldName, newName string) error {
	return b.fs.Rename(oldName, newName)
}

func (b backend) Stat(name string) (os.FileInfo, error) {
	return b.fs.Stat(name)
}

// ReadDir lists name. absfs directories may report "." and "..", which
// the engine drops.
func (b backend) ReadDir(name string) ([]os.FileInfo, error) {
	f, err := b.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.Readdir(-1)
}

// Compile-time interface checks.
var (
	_ lfsdfs.Engine    = (*Engine)(nil)
	_ fsengine.Backend = backend{}
)
