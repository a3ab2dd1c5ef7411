package lfsdfs

import "strings"

// Flag is a set of native open flags.
type Flag int

const (
	ORdOnly Flag = 1      // Open a file as read only
	OWrOnly Flag = 2      // Open a file as write only
	ORdWr   Flag = 3      // Open a file as read and write
	OCreat  Flag = 0x0100 // Create a file if it does not exist
	OExcl   Flag = 0x0200 // Fail if a file already exists
	OTrunc  Flag = 0x0400 // Truncate the existing file to zero size
	OAppend Flag = 0x0800 // Move to end of file on every write
)

// CanRead reports whether the flags grant read access.
func (f Flag) CanRead() bool { return f&ORdOnly != 0 }

// CanWrite reports whether the flags grant write access.
func (f Flag) CanWrite() bool { return f&OWrOnly != 0 }

func (f Flag) String() string {
	var parts []string
	switch f & ORdWr {
	case ORdWr:
		parts = append(parts, "RDWR")
	case ORdOnly:
		parts = append(parts, "RDONLY")
	case OWrOnly:
		parts = append(parts, "WRONLY")
	}
	for _, b := range []struct {
		f    Flag
		name string
	}{{OCreat, "CREAT"}, {OExcl, "EXCL"}, {OTrunc, "TRUNC"}, {OAppend, "APPEND"}} {
		if f&b.f != 0 {
			parts = append(parts, b.name)
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}
