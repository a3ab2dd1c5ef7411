package fsengine

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/nuln/lfsdfs"
)

type openFile struct {
	f     File
	path  string
	flags lfsdfs.Flag
	pos   int64
	size  int64

	// detached is set once the entry at path was removed. The handle
	// stays usable but no longer names or sizes anything in the tree.
	detached bool
}

type openDir struct {
	path    string
	entries []lfsdfs.Info
	pos     int
}

// Engine implements lfsdfs.Engine over a Backend.
type Engine struct {
	mu         sync.Mutex
	backend    Backend
	blockSize  uint32
	blockCount uint32
	mounted    bool
	readOnly   bool
	handles    *lfsdfs.HandleTable[any]
}

// New creates an unmounted Engine. Zero geometry values select the
// lfsdfs defaults.
func New(b Backend, blockSize, blockCount uint32) *Engine {
	if blockSize == 0 {
		blockSize = lfsdfs.DefaultBlockSize
	}
	if blockCount == 0 {
		blockCount = lfsdfs.DefaultBlockCount
	}
	return &Engine{
		backend:    b,
		blockSize:  blockSize,
		blockCount: blockCount,
		handles:    lfsdfs.NewHandleTable[any](),
	}
}

// Backend returns the backend the engine stores its data in.
func (e *Engine) Backend() Backend {
	return e.backend
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}

func checkName(p string) error {
	for _, part := range strings.Split(p, "/") {
		if len(part) > lfsdfs.NameMax {
			return lfsdfs.ErrNameTooLong
		}
	}
	return nil
}

func toOSFlags(flags lfsdfs.Flag) int {
	var osFlags int
	switch {
	case flags&lfsdfs.ORdWr == lfsdfs.ORdWr:
		osFlags = os.O_RDWR
	case flags&lfsdfs.OWrOnly != 0:
		osFlags = os.O_WRONLY
	default:
		osFlags = os.O_RDONLY
	}
	if flags&lfsdfs.OCreat != 0 {
		osFlags |= os.O_CREATE
	}
	if flags&lfsdfs.OTrunc != 0 {
		osFlags |= os.O_TRUNC
	}
	return osFlags
}

func (e *Engine) blocksFor(size int64) int64 {
	bs := int64(e.blockSize)
	return (size + bs - 1) / bs
}

func (e *Engine) checkMounted() error {
	if !e.mounted {
		return lfsdfs.ErrInval
	}
	return nil
}

func (e *Engine) checkWritable() error {
	if err := e.checkMounted(); err != nil {
		return err
	}
	if e.readOnly {
		return lfsdfs.ErrInval
	}
	return nil
}

// openFiles returns the open file handles still attached to the tree.
func (e *Engine) openFiles() []*openFile {
	var files []*openFile
	for _, h := range e.handles.Handles() {
		v, _ := e.handles.Get(h)
		if f, ok := v.(*openFile); ok && !f.detached {
			files = append(files, f)
		}
	}
	return files
}

// openSize returns the largest size tracked by an open handle on p.
func (e *Engine) openSize(p string) (int64, bool) {
	var size int64
	found := false
	for _, f := range e.openFiles() {
		if f.path != p {
			continue
		}
		if !found || f.size > size {
			size = f.size
		}
		found = true
	}
	return size, found
}

// detachHandles cuts open files on p loose from the tree after p was
// removed.
func (e *Engine) detachHandles(p string) {
	for _, f := range e.openFiles() {
		if f.path != p {
			continue
		}
		f.detached = true
		if d, ok := f.f.(Detacher); ok {
			d.Detach()
		}
	}
}

// moveHandles repoints open files at or below oldPath after a rename.
func (e *Engine) moveHandles(oldPath, newPath string) {
	for _, f := range e.openFiles() {
		var moved string
		switch {
		case f.path == oldPath:
			moved = newPath
		case strings.HasPrefix(f.path, oldPath+"/"):
			moved = newPath + strings.TrimPrefix(f.path, oldPath)
		default:
			continue
		}
		f.path = moved
		if r, ok := f.f.(Renamer); ok {
			r.Renamed(moved)
		}
	}
}

// stat looks p up in the backend. The root always exists.
func (e *Engine) stat(p string) (lfsdfs.Info, error) {
	if p == "/" {
		return lfsdfs.Info{Type: lfsdfs.TypeDir, Name: "/"}, nil
	}
	fi, err := e.backend.Stat(p)
	if err != nil {
		if size, ok := e.openSize(p); ok && errors.Is(err, fs.ErrNotExist) {
			return lfsdfs.Info{Type: lfsdfs.TypeReg, Size: size, Name: path.Base(p)}, nil
		}
		return lfsdfs.Info{}, fromOS(err)
	}
	info := lfsdfs.Info{Name: path.Base(p)}
	if fi.IsDir() {
		info.Type = lfsdfs.TypeDir
	} else {
		info.Type = lfsdfs.TypeReg
		info.Size = fi.Size()
		if size, ok := e.openSize(p); ok {
			info.Size = size
		}
	}
	return info, nil
}

// checkParent requires the parent of p to be an existing directory.
func (e *Engine) checkParent(p string) error {
	parent, err := e.stat(path.Dir(p))
	if err != nil {
		return err
	}
	if parent.Type != lfsdfs.TypeDir {
		return lfsdfs.ErrNotDir
	}
	return nil
}

func (e *Engine) readDir(p string) ([]lfsdfs.Info, error) {
	infos, err := e.backend.ReadDir(p)
	if err != nil {
		if p == "/" && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fromOS(err)
	}
	entries := make([]lfsdfs.Info, 0, len(infos))
	for _, fi := range infos {
		name := fi.Name()
		if name == "." || name == ".." || name == "" {
			continue
		}
		info := lfsdfs.Info{Name: name, Type: lfsdfs.TypeReg, Size: fi.Size()}
		if fi.IsDir() {
			info.Type = lfsdfs.TypeDir
			info.Size = 0
		}
		entries = append(entries, info)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// usage counts used blocks: one per non-root directory plus the blocks
// holding each file's data. Sizes of open files come from their handles.
func (e *Engine) usage() (int64, error) {
	sizes := make(map[string]int64)
	var dirs int64

	var walk func(p string) error
	walk = func(p string) error {
		entries, err := e.readDir(p)
		if err != nil {
			return err
		}
		for _, ent := range entries {
			child := path.Join(p, ent.Name)
			if ent.Type == lfsdfs.TypeDir {
				dirs++
				if err := walk(child); err != nil {
					return err
				}
				continue
			}
			sizes[child] = ent.Size
		}
		return nil
	}
	if err := walk("/"); err != nil {
		return 0, err
	}

	for _, f := range e.openFiles() {
		if f.size > sizes[f.path] {
			sizes[f.path] = f.size
		}
	}

	used := dirs
	for _, size := range sizes {
		used += e.blocksFor(size)
	}
	return used, nil
}

func (e *Engine) file(handle int) (*openFile, error) {
	v, ok := e.handles.Get(handle)
	if !ok {
		return nil, lfsdfs.ErrBadF
	}
	f, ok := v.(*openFile)
	if !ok {
		return nil, lfsdfs.ErrBadF
	}
	return f, nil
}

func (e *Engine) dir(handle int) (*openDir, error) {
	v, ok := e.handles.Get(handle)
	if !ok {
		return nil, lfsdfs.ErrBadF
	}
	d, ok := v.(*openDir)
	if !ok {
		return nil, lfsdfs.ErrBadF
	}
	return d, nil
}

func syncFile(f *openFile) error {
	if s, ok := f.f.(Syncer); ok {
		return s.Sync()
	}
	return nil
}

// closeAll closes every open handle and returns the first error.
func (e *Engine) closeAll() error {
	var first error
	for _, h := range e.handles.Handles() {
		v, _ := e.handles.Release(h)
		f, ok := v.(*openFile)
		if !ok {
			continue
		}
		err := syncFile(f)
		if cerr := f.f.Close(); err == nil {
			err = cerr
		}
		if err != nil && first == nil {
			first = fromOS(err)
		}
	}
	e.handles.Reset()
	return first
}

// Mount attaches the engine. Mounting an attached engine is a no-op.
func (e *Engine) Mount(readOnly bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mounted {
		return nil
	}
	if _, err := e.backend.ReadDir("/"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return lfsdfs.ErrCorrupt
	}
	e.mounted = true
	e.readOnly = readOnly
	return nil
}

// Unmount closes every handle and detaches the engine.
func (e *Engine) Unmount() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMounted(); err != nil {
		return err
	}
	err := e.closeAll()
	e.mounted = false
	e.readOnly = false
	return err
}

// Format removes everything below the root. Open handles are dropped.
func (e *Engine) Format() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_ = e.closeAll()
	entries, err := e.readDir("/")
	if err != nil {
		return lfsdfs.ErrIO
	}
	for _, ent := range entries {
		if err := e.backend.RemoveAll(path.Join("/", ent.Name)); err != nil {
			return fromOS(err)
		}
	}
	return nil
}

// FSStat reports block geometry and usage.
func (e *Engine) FSStat(st *lfsdfs.FSStat) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMounted(); err != nil {
		return err
	}
	used, err := e.usage()
	if err != nil {
		return err
	}
	st.BlockSize = e.blockSize
	st.BlockCount = e.blockCount
	st.BlocksUsed = uint32(used)
	return nil
}

// Open opens a file.
func (e *Engine) Open(p string, flags lfsdfs.Flag) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMounted(); err != nil {
		return -1, err
	}
	if flags&lfsdfs.ORdWr == 0 {
		return -1, lfsdfs.ErrInval
	}
	if flags.CanWrite() || flags&(lfsdfs.OCreat|lfsdfs.OTrunc) != 0 {
		if err := e.checkWritable(); err != nil {
			return -1, err
		}
	}
	p = cleanPath(p)
	if err := checkName(p); err != nil {
		return -1, err
	}

	info, err := e.stat(p)
	switch {
	case err == nil:
		if info.Type == lfsdfs.TypeDir {
			return -1, lfsdfs.ErrIsDir
		}
		if flags&lfsdfs.OCreat != 0 && flags&lfsdfs.OExcl != 0 {
			return -1, lfsdfs.ErrExist
		}
	case errors.Is(err, lfsdfs.ErrNoEnt):
		if flags&lfsdfs.OCreat == 0 {
			return -1, lfsdfs.ErrNoEnt
		}
		if err := e.checkParent(p); err != nil {
			return -1, err
		}
	default:
		return -1, err
	}

	bf, err := e.backend.OpenFile(p, toOSFlags(flags), 0o666)
	if err != nil {
		return -1, fromOS(err)
	}
	f := &openFile{f: bf, path: p, flags: flags}
	if flags&lfsdfs.OTrunc == 0 {
		f.size = info.Size
	}
	return e.handles.Allocate(f), nil
}

// Close syncs and closes a file handle.
func (e *Engine) Close(handle int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.file(handle)
	if err != nil {
		return err
	}
	e.handles.Release(handle)
	err = syncFile(f)
	if cerr := f.f.Close(); err == nil {
		err = cerr
	}
	return fromOS(err)
}

// Read reads from the handle's position.
func (e *Engine) Read(handle int, p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.file(handle)
	if err != nil {
		return -1, err
	}
	if !f.flags.CanRead() {
		return -1, lfsdfs.ErrBadF
	}
	if f.pos >= f.size || len(p) == 0 {
		return 0, nil
	}
	want := int64(len(p))
	if rem := f.size - f.pos; rem < want {
		want = rem
	}
	if _, err := f.f.Seek(f.pos, io.SeekStart); err != nil {
		return -1, fromOS(err)
	}
	n, err := io.ReadFull(f.f, p[:want])
	f.pos += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fromOS(err)
	}
	return n, nil
}

// Write writes at the handle's position, zero filling any gap between the
// current size and the position.
func (e *Engine) Write(handle int, p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.file(handle)
	if err != nil {
		return -1, err
	}
	if !f.flags.CanWrite() {
		return -1, lfsdfs.ErrBadF
	}
	if f.flags&lfsdfs.OAppend != 0 {
		f.pos = f.size
	}
	end := f.pos + int64(len(p))
	if end > lfsdfs.FileMax {
		return -1, lfsdfs.ErrFBig
	}
	if need := e.blocksFor(end) - e.blocksFor(f.size); need > 0 {
		used, err := e.usage()
		if err != nil {
			return -1, err
		}
		if used+need > int64(e.blockCount) {
			return -1, lfsdfs.ErrNoSpc
		}
	}

	if f.pos > f.size {
		if _, err := f.f.Seek(f.size, io.SeekStart); err != nil {
			return -1, fromOS(err)
		}
		if _, err := f.f.Write(make([]byte, f.pos-f.size)); err != nil {
			return -1, fromOS(err)
		}
		f.size = f.pos
	}
	if _, err := f.f.Seek(f.pos, io.SeekStart); err != nil {
		return -1, fromOS(err)
	}
	n, err := f.f.Write(p)
	f.pos += int64(n)
	if f.pos > f.size {
		f.size = f.pos
	}
	if err != nil {
		if n > 0 {
			return n, nil
		}
		return -1, fromOS(err)
	}
	return n, nil
}

// Seek moves the position of a file handle. Seeking does not change the
// file size.
func (e *Engine) Seek(handle int, offset int64, whence lfsdfs.Whence) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.file(handle)
	if err != nil {
		return -1, err
	}
	var npos int64
	switch whence {
	case lfsdfs.SeekSet:
		npos = offset
	case lfsdfs.SeekCur:
		npos = f.pos + offset
	case lfsdfs.SeekEnd:
		npos = f.size + offset
	default:
		return -1, lfsdfs.ErrInval
	}
	if npos < 0 || npos > lfsdfs.FileMax {
		return -1, lfsdfs.ErrInval
	}
	f.pos = npos
	return npos, nil
}

// Tell returns the position of a file or directory handle.
func (e *Engine) Tell(handle int) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.handles.Get(handle)
	if !ok {
		return -1, lfsdfs.ErrBadF
	}
	switch h := v.(type) {
	case *openFile:
		return h.pos, nil
	case *openDir:
		return int64(h.pos), nil
	default:
		return -1, lfsdfs.ErrBadF
	}
}

// Size returns the size of the file behind a handle.
func (e *Engine) Size(handle int) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.handles.Get(handle)
	if !ok {
		return -1, lfsdfs.ErrBadF
	}
	if f, ok := v.(*openFile); ok {
		return f.size, nil
	}
	return 0, nil
}

// Flush commits buffered writes to the backend.
func (e *Engine) Flush(handle int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.file(handle)
	if err != nil {
		return err
	}
	return fromOS(syncFile(f))
}

// Mkdir creates a directory whose parent exists.
func (e *Engine) Mkdir(p string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}
	p = cleanPath(p)
	if err := checkName(p); err != nil {
		return err
	}
	if _, err := e.stat(p); err == nil {
		return lfsdfs.ErrExist
	} else if !errors.Is(err, lfsdfs.ErrNoEnt) {
		return err
	}
	if err := e.checkParent(p); err != nil {
		return err
	}
	used, err := e.usage()
	if err != nil {
		return err
	}
	if used+1 > int64(e.blockCount) {
		return lfsdfs.ErrNoSpc
	}
	return fromOS(e.backend.Mkdir(p, 0o755))
}

// DirOpen snapshots a directory for enumeration.
func (e *Engine) DirOpen(p string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMounted(); err != nil {
		return -1, err
	}
	p = cleanPath(p)
	if err := checkName(p); err != nil {
		return -1, err
	}
	info, err := e.stat(p)
	if err != nil {
		return -1, err
	}
	if info.Type != lfsdfs.TypeDir {
		return -1, lfsdfs.ErrNotDir
	}
	entries, err := e.readDir(p)
	if err != nil {
		return -1, err
	}
	dots := []lfsdfs.Info{
		{Type: lfsdfs.TypeDir, Name: "."},
		{Type: lfsdfs.TypeDir, Name: ".."},
	}
	return e.handles.Allocate(&openDir{path: p, entries: append(dots, entries...)}), nil
}

// DirRead returns the next entry of a directory handle.
func (e *Engine) DirRead(handle int, info *lfsdfs.Info) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.dir(handle)
	if err != nil {
		return false, err
	}
	if d.pos >= len(d.entries) {
		*info = lfsdfs.Info{}
		return false, nil
	}
	*info = d.entries[d.pos]
	d.pos++
	return true, nil
}

// DirClose closes a directory handle.
func (e *Engine) DirClose(handle int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.dir(handle); err != nil {
		return err
	}
	e.handles.Release(handle)
	return nil
}

// Remove deletes a file or an empty directory.
func (e *Engine) Remove(p string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}
	p = cleanPath(p)
	if p == "/" {
		return lfsdfs.ErrInval
	}
	info, err := e.stat(p)
	if err != nil {
		return err
	}
	if info.Type == lfsdfs.TypeDir {
		entries, err := e.readDir(p)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return lfsdfs.ErrNotEmpty
		}
	}
	if err := e.backend.Remove(p); err != nil {
		return fromOS(err)
	}
	e.detachHandles(p)
	return nil
}

// Rename moves oldPath to newPath. An existing file or empty directory at
// newPath is replaced when its type matches.
func (e *Engine) Rename(oldPath, newPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(); err != nil {
		return err
	}
	oldPath, newPath = cleanPath(oldPath), cleanPath(newPath)
	if err := checkName(newPath); err != nil {
		return err
	}
	if oldPath == "/" || newPath == "/" {
		return lfsdfs.ErrInval
	}
	src, err := e.stat(oldPath)
	if err != nil {
		return err
	}
	if oldPath == newPath {
		return nil
	}
	if src.Type == lfsdfs.TypeDir && strings.HasPrefix(newPath, oldPath+"/") {
		return lfsdfs.ErrInval
	}
	if err := e.checkParent(newPath); err != nil {
		return err
	}

	dst, err := e.stat(newPath)
	switch {
	case err == nil:
		if dst.Type != src.Type {
			if dst.Type == lfsdfs.TypeDir {
				return lfsdfs.ErrIsDir
			}
			return lfsdfs.ErrNotDir
		}
		if dst.Type == lfsdfs.TypeDir {
			entries, err := e.readDir(newPath)
			if err != nil {
				return err
			}
			if len(entries) > 0 {
				return lfsdfs.ErrNotEmpty
			}
		}
		if err := e.backend.Remove(newPath); err != nil {
			return fromOS(err)
		}
		e.detachHandles(newPath)
	case !errors.Is(err, lfsdfs.ErrNoEnt):
		return err
	}

	if err := e.backend.Rename(oldPath, newPath); err != nil {
		return fromOS(err)
	}
	e.moveHandles(oldPath, newPath)
	return nil
}

// Stat describes the entry at p.
func (e *Engine) Stat(p string, info *lfsdfs.Info) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkMounted(); err != nil {
		return err
	}
	p = cleanPath(p)
	if err := checkName(p); err != nil {
		return err
	}
	got, err := e.stat(p)
	if err != nil {
		return err
	}
	*info = got
	return nil
}

var _ lfsdfs.Engine = (*Engine)(nil)
