package local

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/internal/fsengine"
)

// Auto-register local storage driver.
func init() {
	lfsdfs.Register("local", func(cfg *lfsdfs.Config) (lfsdfs.Engine, error) {
		blockSize, blockCount := cfg.Geometry()
		if cfg.BasePath == "" {
			return NewWithFs(afero.NewMemMapFs(), blockSize, blockCount), nil
		}
		return New(cfg.BasePath, blockSize, blockCount)
	})
}

// Engine implements lfsdfs.Engine on an afero.Fs.
type Engine struct {
	*fsengine.Engine
	fs afero.Fs
}

// New creates a local Engine storing its data below root.
func New(root string, blockSize, blockCount uint32) (*Engine, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0750); err != nil {
		return nil, err
	}
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), absRoot), blockSize, blockCount), nil
}

// NewWithFs creates a local Engine backed by a custom afero.Fs.
// This is useful for testing with afero.MemMapFs.
func NewWithFs(fs afero.Fs, blockSize, blockCount uint32) *Engine {
	return &Engine{
		Engine: fsengine.New(backend{fs: fs}, blockSize, blockCount),
		fs:     fs,
	}
}

// Fs returns the afero.Fs holding the engine's data.
func (e *Engine) Fs() afero.Fs {
	return e.fs
}

type backend struct {
	fs afero.Fs
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

func (b backend) ReadDir(name string) ([]os.FileInfo, error) {
	return afero.ReadDir(b.fs, name)
}

// Compile-time interface checks.
var (
	_ lfsdfs.Engine    = (*Engine)(nil)
	_ fsengine.Backend = backend{}
	_ fsengine.Syncer  = afero.File(nil)
)
