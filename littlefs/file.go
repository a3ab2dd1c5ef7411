package littlefs

import (
	"syscall"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/dfs"
)

// fileHandle and dirHandle tag the engine handle stored in dfs.FD.Data.
// A nil Data means the descriptor is closed.
type (
	fileHandle int
	dirHandle  int
)

func fileOf(fd *dfs.FD) (int, bool) {
	h, ok := fd.Data.(fileHandle)
	return int(h), ok
}

// Open opens fd.Path. A directory descriptor with OCreat creates the
// directory and leaves fd closed.
func (f *FS) Open(fd *dfs.FD) error {
	if fd.IsDir() {
		if fd.Flags&dfs.OCreat != 0 {
			return translate(f.engine.Mkdir(fd.Path))
		}
		h, err := f.engine.DirOpen(fd.Path)
		if err != nil {
			return translate(err)
		}
		pos, _ := f.engine.Tell(h)
		size, _ := f.engine.Size(h)
		fd.Data = dirHandle(h)
		fd.Pos = pos
		fd.Size = size
		return nil
	}

	h, err := f.engine.Open(fd.Path, toNativeFlags(fd.Flags))
	if err != nil {
		return translate(err)
	}
	pos, _ := f.engine.Tell(h)
	size, _ := f.engine.Size(h)
	fd.Data = fileHandle(h)
	fd.Pos = pos
	fd.Size = size
	return nil
}

// Close closes the engine handle and always clears fd.Data, then reports
// the engine's result.
func (f *FS) Close(fd *dfs.FD) error {
	err := f.closeHandle(fd.Data)
	fd.Data = nil
	return translate(err)
}

func (f *FS) closeHandle(data any) error {
	switch h := data.(type) {
	case dirHandle:
		return f.engine.DirClose(int(h))
	case fileHandle:
		return f.engine.Close(int(h))
	default:
		return lfsdfs.ErrBadF
	}
}

// Ioctl is not supported.
func (f *FS) Ioctl(fd *dfs.FD, cmd int, args any) error {
	return syscall.EIO
}

func (f *FS) Read(fd *dfs.FD, buf []byte) (int, error) {
	h, ok := fileOf(fd)
	if !ok {
		return 0, syscall.EBADF
	}
	n, err := f.engine.Read(h, buf)
	f.syncPos(fd, h)
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (f *FS) Write(fd *dfs.FD, buf []byte) (int, error) {
	h, ok := fileOf(fd)
	if !ok {
		return 0, syscall.EBADF
	}
	n, err := f.engine.Write(h, buf)
	f.syncPos(fd, h)
	if err != nil {
		return 0, translate(err)
	}
	if fd.Pos > fd.Size {
		fd.Size = fd.Pos
	}
	return n, nil
}

// syncPos reloads fd.Pos from the engine's cursor.
func (f *FS) syncPos(fd *dfs.FD, h int) {
	if pos, err := f.engine.Tell(h); err == nil {
		fd.Pos = pos
	}
}

func (f *FS) Flush(fd *dfs.FD) error {
	h, ok := fileOf(fd)
	if !ok {
		return syscall.EBADF
	}
	return translate(f.engine.Flush(h))
}

// Lseek moves fd to the absolute offset. fd is unchanged on failure.
func (f *FS) Lseek(fd *dfs.FD, offset int64) (int64, error) {
	h, ok := fileOf(fd)
	if !ok {
		return 0, syscall.EBADF
	}
	pos, err := f.engine.Seek(h, offset, lfsdfs.SeekSet)
	if err != nil {
		return 0, translate(err)
	}
	fd.Pos = pos
	return pos, nil
}
