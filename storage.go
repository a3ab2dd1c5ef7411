package lfsdfs

// Engine is the native API of a littlefs-style storage engine.
// All driver implementations must satisfy this interface.
//
// Failures are reported as [Error] values (possibly wrapped). Handles are
// small non-negative integers; file and directory handles share one
// namespace, so a handle returned by DirOpen is never also a file handle.
type Engine interface {
	// Mount attaches the engine to its backing storage.
	Mount(readOnly bool) error

	// Unmount detaches the engine and releases every open handle.
	Unmount() error

	// Format erases the backing storage, leaving an empty root directory.
	Format() error

	// FSStat fills st with the block geometry and current usage.
	FSStat(st *FSStat) error

	// Open opens a file with native flags and returns its handle.
	Open(path string, flags Flag) (int, error)

	// Close closes a file handle, flushing pending writes.
	Close(handle int) error

	// Read reads up to len(p) bytes at the handle's position.
	// A short read at end of file is not an error.
	Read(handle int, p []byte) (int, error)

	// Write writes p at the handle's position (or at the end in append mode).
	Write(handle int, p []byte) (int, error)

	// Seek moves the handle's position and returns the new position.
	Seek(handle int, offset int64, whence Whence) (int64, error)

	// Tell returns the current position of a file or directory handle.
	Tell(handle int) (int64, error)

	// Size returns the size of the file behind a handle. Directory
	// handles report zero.
	Size(handle int) (int64, error)

	// Flush commits pending writes of a file handle.
	Flush(handle int) error

	// Mkdir creates a directory. The parent must exist.
	Mkdir(path string) error

	// DirOpen opens a directory for enumeration.
	DirOpen(path string) (int, error)

	// DirRead fills info with the next entry. It returns false once the
	// directory is exhausted, in which case info.Type is zero.
	DirRead(handle int, info *Info) (bool, error)

	// DirClose closes a directory handle.
	DirClose(handle int) error

	// Remove deletes a file or an empty directory.
	Remove(path string) error

	// Rename moves oldPath to newPath, replacing a file at newPath.
	Rename(oldPath, newPath string) error

	// Stat fills info for the entry at path.
	Stat(path string, info *Info) error
}
