// Package littlefs mounts an lfsdfs.Engine behind a dfs.Dispatcher.
//
// The adapter translates dispatcher open flags to native engine flags,
// native status codes to syscall.Errno values and engine directory cursors
// to fixed-size dfs.Dirent records. It keeps no state of its own beyond the
// placeholder block device and relies on the engine to serialize calls.
package littlefs

import (
	"log/slog"
	"sync"
	"syscall"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/dfs"
)

// Name is the filesystem type name registered with the dispatcher.
const Name = "littlefs"

// Defaults used by Init.
const (
	DefaultDeviceName = "littlefs"
	DefaultMountPoint = "/"
)

type options struct {
	logger     *slog.Logger
	deviceName string
	mountPoint string
}

// Option configures an FS.
type Option func(*options)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDeviceName sets the name the placeholder device is registered under.
func WithDeviceName(name string) Option {
	return func(o *options) {
		o.deviceName = name
	}
}

// WithMountPoint sets where Init mounts the filesystem.
func WithMountPoint(p string) Option {
	return func(o *options) {
		o.mountPoint = p
	}
}

// FS implements dfs.FileOps and dfs.FilesystemOps on top of an engine.
type FS struct {
	engine lfsdfs.Engine
	opts   options
	fsType *dfs.FilesystemType

	devOnce sync.Once
	dev     *nopDevice
}

// New returns an adapter for engine.
func New(engine lfsdfs.Engine, opts ...Option) *FS {
	o := options{
		logger:     slog.Default(),
		deviceName: DefaultDeviceName,
		mountPoint: DefaultMountPoint,
	}
	for _, opt := range opts {
		opt(&o)
	}
	f := &FS{engine: engine, opts: o}
	f.fsType = &dfs.FilesystemType{
		Name:  Name,
		Flags: dfs.FSFlagDefault,
		Fops:  f,
		Ops:   f,
	}
	return f
}

// Type returns the operations table to register with a dispatcher.
func (f *FS) Type() *dfs.FilesystemType {
	return f.fsType
}

// Engine returns the wrapped engine.
func (f *FS) Engine() lfsdfs.Engine {
	return f.engine
}

// Mount mounts the engine read-write. The requested rwflag is ignored and
// any engine failure is reported as EIO.
func (f *FS) Mount(fs *dfs.Filesystem, rwflag uint32, data any) error {
	if err := f.engine.Mount(false); err != nil {
		f.opts.logger.Debug("littlefs: engine mount failed", "path", fs.Path, "err", err)
		return syscall.EIO
	}
	return nil
}

// Unmount detaches the engine. The engine's result is logged, not
// returned.
func (f *FS) Unmount(fs *dfs.Filesystem) error {
	err := f.engine.Unmount()
	fs.Data = nil
	if err != nil {
		f.opts.logger.Warn("littlefs: engine unmount failed", "path", fs.Path, "err", err)
	}
	return nil
}

// Mkfs formats the engine. dev is not used.
func (f *FS) Mkfs(dev dfs.Device) error {
	return translate(f.engine.Format())
}

// Statfs reports block geometry. It panics if buf is nil.
func (f *FS) Statfs(fs *dfs.Filesystem, buf *dfs.StatFS) error {
	if buf == nil {
		panic("littlefs: Statfs called with nil buffer")
	}
	var st lfsdfs.FSStat
	if err := f.engine.FSStat(&st); err != nil {
		return translate(err)
	}
	buf.BlockSize = uint64(st.BlockSize)
	buf.Blocks = uint64(st.BlockCount)
	buf.BlocksFree = uint64(st.BlockCount) - uint64(st.BlocksUsed)
	return nil
}

func (f *FS) Unlink(fs *dfs.Filesystem, path string) error {
	return translate(f.engine.Remove(path))
}

func (f *FS) Rename(fs *dfs.Filesystem, oldPath, newPath string) error {
	return translate(f.engine.Rename(oldPath, newPath))
}

// Stat fills st for path. Every entry is readable and writable by all;
// only regular files carry SIFREG, and there are no timestamps.
func (f *FS) Stat(fs *dfs.Filesystem, path string, st *dfs.Stat) error {
	var info lfsdfs.Info
	if err := f.engine.Stat(path, &info); err != nil {
		return translate(err)
	}
	st.Mode = dfs.SIRUSR | dfs.SIRGRP | dfs.SIROTH |
		dfs.SIWUSR | dfs.SIWGRP | dfs.SIWOTH
	if info.Type == lfsdfs.TypeReg {
		st.Mode |= dfs.SIFREG
	}
	st.Size = info.Size
	st.Mtime = 0
	return nil
}

var (
	_ dfs.FileOps       = (*FS)(nil)
	_ dfs.FilesystemOps = (*FS)(nil)
)
