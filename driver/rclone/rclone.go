// Package rclone provides a storage engine on any rclone remote.
package rclone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/rclone/rclone/fs"
	"github.com/rclone/rclone/fs/operations"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/internal/fsengine"
)

// Auto-register rclone storage driver.
func init() {
	lfsdfs.Register("rclone", func(cfg *lfsdfs.Config) (lfsdfs.Engine, error) {
		remote, _ := cfg.StringOption("remote")
		if remote == "" {
			remote = cfg.BasePath
		}
		if remote == "" {
			return nil, fmt.Errorf("lfsdfs/rclone: remote path is required (set Options[\"remote\"] or BasePath)")
		}
		blockSize, blockCount := cfg.Geometry()
		return New(remote, blockSize, blockCount)
	})
}

// Engine implements lfsdfs.Engine using rclone's fs.Fs.
type Engine struct {
	*fsengine.Engine
	remote fs.Fs
}

// New creates a new rclone Engine from a remote path (e.g., "gdrive:backup").
func New(remotePath string, blockSize, blockCount uint32) (*Engine, error) {
	remote, err := fs.NewFs(context.Background(), remotePath)
	if err != nil {
		return nil, err
	}
	return NewWithFs(remote, blockSize, blockCount), nil
}

// NewWithFs creates an Engine on an already configured remote.
func NewWithFs(remote fs.Fs, blockSize, blockCount uint32) *Engine {
	b := &backend{ctx: context.Background(), remote: remote}
	return &Engine{
		Engine: fsengine.New(b, blockSize, blockCount),
		remote: remote,
	}
}

// Remote returns the rclone filesystem holding the engine's data.
func (e *Engine) Remote() fs.Fs {
	return e.remote
}

type backend struct {
	ctx    context.Context
	remote fs.Fs
}

// rel converts an engine path into a remote-relative one.
func rel(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func (b *backend) OpenFile(name string, flag int, _ os.FileMode) (fsengine.File, error) {
	remote := rel(name)
	f := &file{b: b, remote: remote}

	obj, err := b.remote.NewObject(b.ctx, remote)
	switch {
	case err == nil:
		if flag&os.O_TRUNC != 0 {
			f.dirty = true
			break
		}
		rc, err := obj.Open(b.ctx)
		if err != nil {
			return nil, convertError(err)
		}
		f.buf, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrorObjectNotFound) && flag&os.O_CREATE != 0:
		f.dirty = true
	default:
		return nil, convertError(err)
	}

	// Upload right away so the new file shows up in listings.
	if f.dirty {
		if err := f.Sync(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (b *backend) Mkdir(name string, _ os.FileMode) error {
	return convertError(b.remote.Mkdir(b.ctx, rel(name)))
}

func (b *backend) Remove(name string) error {
	remote := rel(name)
	obj, err := b.remote.NewObject(b.ctx, remote)
	if err != nil {
		// Try as directory
		return convertError(b.remote.Rmdir(b.ctx, remote))
	}
	return convertError(obj.Remove(b.ctx))
}

func (b *backend) RemoveAll(name string) error {
	remote := rel(name)
	obj, err := b.remote.NewObject(b.ctx, remote)
	if err != nil {
		return convertError(operations.Purge(b.ctx, b.remote, remote))
	}
	return convertError(obj.Remove(b.ctx))
}

func (b *backend) Rename(oldName, newName string) error {
	src, dst := rel(oldName), rel(newName)
	fi, err := b.Stat(oldName)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return convertError(operations.MoveFile(b.ctx, b.remote, b.remote, dst, src))
	}
	dirMove := b.remote.Features().DirMove
	if dirMove == nil {
		return fmt.Errorf("lfsdfs/rclone: %s: directory move: %w", b.remote.Name(), lfsdfs.ErrNotSupported)
	}
	return convertError(dirMove(b.ctx, b.remote, src, dst))
}

func (b *backend) Stat(name string) (os.FileInfo, error) {
	remote := rel(name)
	if remote == "" {
		return &fileInfo{name: "/", dir: true}, nil
	}
	obj, err := b.remote.NewObject(b.ctx, remote)
	if err == nil {
		return entryInfo(b.ctx, obj), nil
	}

	// Might be a directory
	entries, errDir := b.remote.List(b.ctx, parentOf(remote))
	if errors.Is(errDir, fs.ErrorIsFile) || errors.Is(errDir, fs.ErrorDirNotFound) {
		return nil, os.ErrNotExist
	}
	if errDir != nil {
		return nil, convertError(errDir)
	}
	for _, entry := range entries {
		if entry.Remote() != remote {
			continue
		}
		return entryInfo(b.ctx, entry), nil
	}
	return nil, os.ErrNotExist
}

func (b *backend) ReadDir(name string) ([]os.FileInfo, error) {
	entries, err := b.remote.List(b.ctx, rel(name))
	if err != nil {
		return nil, convertError(err)
	}
	infos := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, entryInfo(b.ctx, entry))
	}
	return infos, nil
}

func parentOf(remote string) string {
	dir := path.Dir(remote)
	if dir == "." {
		return ""
	}
	return dir
}

// file buffers an object in memory and uploads it on Sync and Close.
// Rclone objects don't support random-access writes.
type file struct {
	b        *backend
	remote   string
	buf      []byte
	off      int64
	dirty    bool
	detached bool
}

func (f *file) Read(p []byte) (int, error) {
	if f.off >= int64(len(f.buf)) {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.off:])
	f.off += int64(n)
	return n, nil
}

func (f *file) Write(p []byte) (int, error) {
	end := f.off + int64(len(p))
	if end > int64(len(f.buf)) {
		grown := make([]byte, end)
		copy(grown, f.buf)
		f.buf = grown
	}
	copy(f.buf[f.off:], p)
	f.off = end
	f.dirty = true
	return len(p), nil
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	var npos int64
	switch whence {
	case io.SeekStart:
		npos = offset
	case io.SeekCurrent:
		npos = f.off + offset
	case io.SeekEnd:
		npos = int64(len(f.buf)) + offset
	default:
		return 0, os.ErrInvalid
	}
	if npos < 0 {
		return 0, os.ErrInvalid
	}
	f.off = npos
	return npos, nil
}

func (f *file) Sync() error {
	if !f.dirty || f.detached {
		return nil
	}
	rc := io.NopCloser(bytes.NewReader(f.buf))
	if _, err := operations.Rcat(f.b.ctx, f.b.remote, f.remote, rc, time.Now(), nil); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

func (f *file) Close() error {
	return f.Sync()
}

// Renamed points later uploads at the object's new name.
func (f *file) Renamed(newName string) {
	f.remote = rel(newName)
}

// Detach drops pending data so a removed object is not uploaded again.
func (f *file) Detach() {
	f.detached = true
	f.dirty = false
}

// fileInfo adapts an rclone directory entry to os.FileInfo.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func entryInfo(ctx context.Context, entry fs.DirEntry) *fileInfo {
	fi := &fileInfo{
		name:    path.Base(entry.Remote()),
		modTime: entry.ModTime(ctx),
	}
	if _, ok := entry.(fs.Directory); ok {
		fi.dir = true
	} else {
		fi.size = entry.Size()
	}
	return fi
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.dir }
func (fi *fileInfo) Sys() any           { return nil }

func (fi *fileInfo) Mode() os.FileMode {
	if fi.dir {
		return os.ModeDir | 0o755
	}
	return 0o644
}

// Helpers

func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrorObjectNotFound), errors.Is(err, fs.ErrorDirNotFound):
		return os.ErrNotExist
	case errors.Is(err, fs.ErrorDirExists):
		return os.ErrExist
	case errors.Is(err, fs.ErrorDirectoryNotEmpty):
		return syscall.ENOTEMPTY
	case errors.Is(err, fs.ErrorIsDir):
		return syscall.EISDIR
	case errors.Is(err, fs.ErrorNotAFile):
		return syscall.ENOTDIR
	default:
		return err
	}
}

// Compile-time interface checks.
var (
	_ lfsdfs.Engine     = (*Engine)(nil)
	_ fsengine.Backend  = (*backend)(nil)
	_ fsengine.Syncer   = (*file)(nil)
	_ fsengine.Renamer  = (*file)(nil)
	_ fsengine.Detacher = (*file)(nil)
	_ os.FileInfo       = (*fileInfo)(nil)
)
