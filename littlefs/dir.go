package littlefs

import (
	"syscall"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/dfs"
)

// dirStep is the outcome of reading one directory entry.
type dirStep int

const (
	stepMore dirStep = iota
	stepEnd
	stepFailed
)

func (s dirStep) String() string {
	switch s {
	case stepMore:
		return "more"
	case stepEnd:
		return "end"
	case stepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// nextEntry reads the next entry of the directory open on fd.
func (f *FS) nextEntry(fd *dfs.FD, info *lfsdfs.Info) (dirStep, error) {
	h, ok := fd.Data.(dirHandle)
	if !ok {
		return stepFailed, lfsdfs.ErrBadF
	}
	more, err := f.engine.DirRead(int(h), info)
	switch {
	case err != nil:
		return stepFailed, err
	case !more || info.Type == lfsdfs.TypeNone:
		return stepEnd, nil
	default:
		return stepMore, nil
	}
}

// Getdents fills buf with as many whole dfs.DirentSize records as fit and
// returns the bytes used. Both the end of the directory and an engine
// failure stop the batch early without an error.
func (f *FS) Getdents(fd *dfs.FD, buf []byte) (int, error) {
	count := len(buf) / dfs.DirentSize
	if count == 0 {
		return 0, syscall.EINVAL
	}

	filled := 0
	for i := 0; i < count; i++ {
		var info lfsdfs.Info
		step, err := f.nextEntry(fd, &info)
		if step != stepMore {
			if step == stepFailed {
				f.opts.logger.Debug("littlefs: directory read failed", "path", fd.Path, "err", err)
			}
			break
		}

		d := dfs.Dirent{
			Type:    dfs.DTDir,
			NameLen: uint8(min(len(info.Name), lfsdfs.NameMax)),
			RecLen:  dfs.DirentSize,
			Name:    info.Name,
		}
		if info.Type == lfsdfs.TypeReg {
			d.Type = dfs.DTReg
		}
		dfs.PutDirent(buf[filled:], &d)

		filled += dfs.DirentSize
		fd.Pos += dfs.DirentSize
	}
	return filled, nil
}
