package dfs

// FileOps are the per-descriptor callbacks of a filesystem. Errors are
// syscall.Errno values.
type FileOps interface {
	Open(fd *FD) error
	Close(fd *FD) error
	Ioctl(fd *FD, cmd int, args any) error
	Read(fd *FD, buf []byte) (int, error)
	Write(fd *FD, buf []byte) (int, error)
	Flush(fd *FD) error
	// Lseek moves to the absolute offset and returns it.
	Lseek(fd *FD, offset int64) (int64, error)
	// Getdents fills buf with whole DirentSize records and returns the
	// number of bytes used.
	Getdents(fd *FD, buf []byte) (int, error)
}

// FilesystemOps are the per-filesystem callbacks of a filesystem.
type FilesystemOps interface {
	Mount(fs *Filesystem, rwflag uint32, data any) error
	Unmount(fs *Filesystem) error
	Mkfs(dev Device) error
	// Statfs fills buf, which must not be nil.
	Statfs(fs *Filesystem, buf *StatFS) error
	Unlink(fs *Filesystem, path string) error
	Stat(fs *Filesystem, path string, st *Stat) error
	Rename(fs *Filesystem, oldPath, newPath string) error
}

// FilesystemType is the operations table a filesystem registers with the
// dispatcher.
type FilesystemType struct {
	Name  string
	Flags int
	Fops  FileOps
	Ops   FilesystemOps
}
