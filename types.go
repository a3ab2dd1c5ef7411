package lfsdfs

import "fmt"

// NameMax is the longest entry name, in bytes, the engine stores.
const NameMax = 255

// FileMax is the largest file size the engine supports.
const FileMax = 2147483647

// EntryType classifies an entry returned by Stat or DirRead.
type EntryType uint8

const (
	// TypeNone marks an empty Info; DirRead reports it at end of directory.
	TypeNone EntryType = 0
	// TypeReg is a regular file.
	TypeReg EntryType = 1
	// TypeDir is a directory.
	TypeDir EntryType = 2
)

func (t EntryType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeReg:
		return "reg"
	case TypeDir:
		return "dir"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Info describes a file or directory in a storage engine.
type Info struct {
	Type EntryType `json:"type"`
	Size int64     `json:"size"`
	Name string    `json:"name"`
}

// FSStat is the engine's block geometry and usage.
type FSStat struct {
	BlockSize  uint32 `json:"blockSize"`
	BlockCount uint32 `json:"blockCount"`
	BlocksUsed uint32 `json:"blocksUsed"`
}

// BlocksFree returns BlockCount minus BlocksUsed.
func (s *FSStat) BlocksFree() uint32 {
	return s.BlockCount - s.BlocksUsed
}

// Whence selects the origin of a Seek.
type Whence int

const (
	SeekSet Whence = 0
	SeekCur Whence = 1
	SeekEnd Whence = 2
)
