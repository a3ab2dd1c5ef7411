// Package fsengine implements lfsdfs.Engine on top of a file-tree backend,
// reproducing littlefs semantics: integer handles, native flags, parent
// checks, "." and ".." directory entries, block accounting and littlefs
// status codes.
package fsengine

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/nuln/lfsdfs"
)

// File is an open backend file.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// Syncer is implemented by backend files that can commit buffered data.
type Syncer interface {
	Sync() error
}

// Renamer is implemented by backend files that address their entry by
// name and must follow it when the entry, or a directory above it, is
// renamed while the file is open.
type Renamer interface {
	Renamed(newName string)
}

// Detacher is implemented by backend files that must stop writing back
// once their entry has been removed while they are open.
type Detacher interface {
	Detach()
}

// Backend is the file tree an Engine stores its data in. Paths are clean
// and absolute ("/", "/a/b"). The engine performs existence, parent and
// emptiness checks itself, so backends only need plain semantics.
type Backend interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Mkdir(name string, perm os.FileMode) error
	Remove(name string) error
	RemoveAll(name string) error
	Rename(oldName, newName string) error
	Stat(name string) (os.FileInfo, error)
	ReadDir(name string) ([]os.FileInfo, error)
}

// fromOS converts a backend error into a native status code.
func fromOS(err error) error {
	if err == nil {
		return nil
	}
	var native lfsdfs.Error
	if errors.As(err, &native) {
		return native
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return lfsdfs.ErrNoEnt
	case errors.Is(err, fs.ErrExist):
		return lfsdfs.ErrExist
	case errors.Is(err, fs.ErrInvalid):
		return lfsdfs.ErrInval
	case errors.Is(err, syscall.ENOTDIR):
		return lfsdfs.ErrNotDir
	case errors.Is(err, syscall.EISDIR):
		return lfsdfs.ErrIsDir
	case errors.Is(err, syscall.ENOTEMPTY):
		return lfsdfs.ErrNotEmpty
	case errors.Is(err, syscall.ENOSPC):
		return lfsdfs.ErrNoSpc
	case errors.Is(err, syscall.ENAMETOOLONG):
		return lfsdfs.ErrNameTooLong
	case errors.Is(err, syscall.EFBIG):
		return lfsdfs.ErrFBig
	case errors.Is(err, syscall.ENOMEM):
		return lfsdfs.ErrNoMem
	default:
		return lfsdfs.ErrIO
	}
}
