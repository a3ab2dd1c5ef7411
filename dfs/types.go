package dfs

// Open flags understood by the dispatcher. Values follow Linux.
const (
	ORdOnly    = 0x0
	OWrOnly    = 0x1
	ORdWr      = 0x2
	OAccMode   = 0x3
	OCreat     = 0x40
	OExcl      = 0x80
	OTrunc     = 0x200
	OAppend    = 0x400
	ODirectory = 0x10000
)

// Mode bits reported by Stat.
const (
	SIFMT  = 0o170000
	SIFDIR = 0o040000
	SIFREG = 0o100000

	SIRUSR = 0o400
	SIWUSR = 0o200
	SIRGRP = 0o040
	SIWGRP = 0o020
	SIROTH = 0o004
	SIWOTH = 0o002
)

// FSFlagDefault is the default FilesystemType flag set.
const FSFlagDefault = 0

// FD is an open descriptor. The dispatcher allocates it before calling a
// filesystem's Open; the filesystem fills in Pos, Size and Data.
type FD struct {
	// Path is the path inside the mounted filesystem, always rooted at "/".
	Path  string
	Flags int
	Pos   int64
	Size  int64

	// Data is private to the filesystem that opened the descriptor.
	// Nil means the descriptor holds no native handle.
	Data any

	FS *Filesystem
}

// IsDir reports whether the descriptor was opened with ODirectory.
func (fd *FD) IsDir() bool {
	return fd.Flags&ODirectory != 0
}

// Filesystem is a mounted filesystem instance.
type Filesystem struct {
	Path   string
	Type   *FilesystemType
	Device Device

	// Data is private to the filesystem implementation.
	Data any
}

// Stat describes a file as reported by FilesystemOps.Stat.
type Stat struct {
	Mode  uint32
	Size  int64
	Mtime int64
}

// IsDir reports whether the mode describes a directory. Filesystems that
// only set SIFREG for regular files leave every other entry a directory.
func (s *Stat) IsDir() bool {
	return s.Mode&SIFMT == SIFDIR || s.Mode&SIFREG == 0
}

// StatFS describes filesystem capacity.
type StatFS struct {
	BlockSize  uint64
	Blocks     uint64
	BlocksFree uint64
}
