package littlefs

import (
	"syscall"

	"github.com/nuln/lfsdfs"
)

var errnoTable = map[lfsdfs.Error]syscall.Errno{
	lfsdfs.ErrIO:          syscall.EIO,
	lfsdfs.ErrCorrupt:     syscall.EIO,
	lfsdfs.ErrNoEnt:       syscall.ENOENT,
	lfsdfs.ErrExist:       syscall.EEXIST,
	lfsdfs.ErrNotDir:      syscall.ENOTDIR,
	lfsdfs.ErrIsDir:       syscall.EISDIR,
	lfsdfs.ErrNotEmpty:    syscall.ENOTEMPTY,
	lfsdfs.ErrBadF:        syscall.EBADF,
	lfsdfs.ErrFBig:        syscall.EFBIG,
	lfsdfs.ErrInval:       syscall.EINVAL,
	lfsdfs.ErrNoSpc:       syscall.ENOSPC,
	lfsdfs.ErrNoMem:       syscall.ENOMEM,
	lfsdfs.ErrNoAttr:      syscall.EIO,
	lfsdfs.ErrNameTooLong: syscall.ENAMETOOLONG,
}

// toErrno maps a native status code to its errno. Unknown codes are EIO.
func toErrno(code lfsdfs.Error) syscall.Errno {
	if errno, ok := errnoTable[code]; ok {
		return errno
	}
	return syscall.EIO
}

// translate converts an engine error for the dispatcher. Every error the
// adapter returns goes through here.
func translate(err error) error {
	if err == nil {
		return nil
	}
	return toErrno(lfsdfs.Code(err))
}
