package lfsdfs

import (
	"errors"
	"fmt"
)

// Error is a native engine status code. Values are negative and match
// the littlefs error numbering.
type Error int

// Native engine status codes.
const (
	ErrIO          Error = -5  // Error during device operation
	ErrCorrupt     Error = -84 // Corrupted
	ErrNoEnt       Error = -2  // No directory entry
	ErrExist       Error = -17 // Entry already exists
	ErrNotDir      Error = -20 // Entry is not a dir
	ErrIsDir       Error = -21 // Entry is a dir
	ErrNotEmpty    Error = -39 // Dir is not empty
	ErrBadF        Error = -9  // Bad file number
	ErrFBig        Error = -27 // File too large
	ErrInval       Error = -22 // Invalid parameter
	ErrNoSpc       Error = -28 // No space left on device
	ErrNoMem       Error = -12 // No more memory available
	ErrNoAttr      Error = -61 // No data/attr available
	ErrNameTooLong Error = -36 // File name too long
)

var errorNames = map[Error]string{
	ErrIO:          "i/o error",
	ErrCorrupt:     "corrupted",
	ErrNoEnt:       "no directory entry",
	ErrExist:       "entry already exists",
	ErrNotDir:      "entry is not a dir",
	ErrIsDir:       "entry is a dir",
	ErrNotEmpty:    "dir is not empty",
	ErrBadF:        "bad file number",
	ErrFBig:        "file too large",
	ErrInval:       "invalid parameter",
	ErrNoSpc:       "no space left on device",
	ErrNoMem:       "no more memory available",
	ErrNoAttr:      "no data/attr available",
	ErrNameTooLong: "file name too long",
}

func (e Error) Error() string {
	if s, ok := errorNames[e]; ok {
		return "lfsdfs: " + s
	}
	return fmt.Sprintf("lfsdfs: error %d", int(e))
}

// Code extracts the native status code carried by err. It returns 0 for a
// nil error and ErrIO for errors that carry no native code.
func Code(err error) Error {
	if err == nil {
		return 0
	}
	var e Error
	if errors.As(err, &e) {
		return e
	}
	return ErrIO
}

// ErrNotSupported is returned by drivers for operations their backend
// cannot perform. It carries no native code, so it surfaces as ErrIO.
var ErrNotSupported = errors.New("lfsdfs: operation not supported by this backend")
