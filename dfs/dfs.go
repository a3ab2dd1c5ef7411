// Package dfs is a small in-process VFS dispatcher. Filesystems register an
// operations table, devices register under a name, and the dispatcher
// routes path and descriptor calls to the filesystem mounted at the longest
// matching mount point.
//
// The dispatcher serializes its own tables. It does not serialize calls on
// a single descriptor: an FD must not be used from two goroutines at once.
package dfs

import (
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
)

// Dispatcher routes VFS calls to registered filesystems.
type Dispatcher struct {
	mu      sync.RWMutex
	types   map[string]*FilesystemType
	devices map[string]*registeredDevice
	mounts  []*Filesystem
	logger  *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for mount table changes.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// New returns an empty dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		types:   make(map[string]*FilesystemType),
		devices: make(map[string]*registeredDevice),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func pathErr(op, p string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: p, Err: err}
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}

// RegisterFilesystem adds a filesystem type. Names must be unique.
func (d *Dispatcher) RegisterFilesystem(t *FilesystemType) error {
	if t == nil || t.Name == "" || t.Fops == nil || t.Ops == nil {
		return syscall.EINVAL
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.types[t.Name]; exists {
		return syscall.EEXIST
	}
	d.types[t.Name] = t
	return nil
}

// Filesystems returns the registered filesystem type names, sorted.
func (d *Dispatcher) Filesystems() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.types))
	for name := range d.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDevice adds a device under name.
func (d *Dispatcher) RegisterDevice(name string, dev Device, flags uint16) error {
	if name == "" || dev == nil {
		return syscall.EINVAL
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.devices[name]; exists {
		return syscall.EEXIST
	}
	d.devices[name] = &registeredDevice{dev: dev, flags: flags}
	return nil
}

// LookupDevice returns the device registered under name.
func (d *Dispatcher) LookupDevice(name string) (Device, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rd, ok := d.devices[name]
	if !ok {
		return nil, false
	}
	return rd.dev, true
}

// Mount mounts a filesystem of type fsType at mountPath. devName may be
// empty for filesystems without a device.
func (d *Dispatcher) Mount(devName, mountPath, fsType string, rwflag uint32, data any) error {
	mountPath = cleanPath(mountPath)

	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.types[fsType]
	if !ok {
		return pathErr("mount", mountPath, syscall.ENODEV)
	}
	var dev Device
	if devName != "" {
		rd, ok := d.devices[devName]
		if !ok {
			return pathErr("mount", mountPath, syscall.ENODEV)
		}
		dev = rd.dev
	}
	for _, m := range d.mounts {
		if m.Path == mountPath {
			return pathErr("mount", mountPath, syscall.EBUSY)
		}
	}

	if dev != nil {
		if err := dev.Open(DeviceFlagRdWr); err != nil {
			return pathErr("mount", mountPath, err)
		}
	}
	mnt := &Filesystem{Path: mountPath, Type: t, Device: dev}
	if err := t.Ops.Mount(mnt, rwflag, data); err != nil {
		if dev != nil {
			_ = dev.Close()
		}
		return pathErr("mount", mountPath, err)
	}

	d.mounts = append(d.mounts, mnt)
	sort.Slice(d.mounts, func(i, j int) bool {
		return len(d.mounts[i].Path) > len(d.mounts[j].Path)
	})
	d.logger.Debug("dfs: mounted", "path", mountPath, "type", fsType, "device", devName)
	return nil
}

// Unmount unmounts the filesystem mounted exactly at mountPath.
func (d *Dispatcher) Unmount(mountPath string) error {
	mountPath = cleanPath(mountPath)

	d.mu.Lock()
	defer d.mu.Unlock()

	for i, m := range d.mounts {
		if m.Path != mountPath {
			continue
		}
		if err := m.Type.Ops.Unmount(m); err != nil {
			return pathErr("unmount", mountPath, err)
		}
		if m.Device != nil {
			_ = m.Device.Close()
		}
		d.mounts = append(d.mounts[:i], d.mounts[i+1:]...)
		d.logger.Debug("dfs: unmounted", "path", mountPath, "type", m.Type.Name)
		return nil
	}
	return pathErr("unmount", mountPath, syscall.EINVAL)
}

// Mkfs formats the device devName with a filesystem of type fsType.
func (d *Dispatcher) Mkfs(fsType, devName string) error {
	d.mu.RLock()
	t, ok := d.types[fsType]
	rd, devOK := d.devices[devName]
	d.mu.RUnlock()

	if !ok || !devOK {
		return pathErr("mkfs", devName, syscall.ENODEV)
	}
	return pathErr("mkfs", devName, t.Ops.Mkfs(rd.dev))
}

// resolve finds the filesystem owning p and returns p relative to it.
func (d *Dispatcher) resolve(p string) (*Filesystem, string, error) {
	p = cleanPath(p)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, m := range d.mounts {
		if m.Path == "/" || p == m.Path || strings.HasPrefix(p, m.Path+"/") {
			rel := strings.TrimPrefix(p, m.Path)
			if m.Path == "/" {
				rel = p
			}
			if rel == "" {
				rel = "/"
			}
			return m, rel, nil
		}
	}
	return nil, "", syscall.ENOENT
}

// Open opens path and returns a descriptor. With ODirectory|OCreat the
// directory is created and the returned descriptor holds no handle; it
// must not be passed to Close.
func (d *Dispatcher) Open(p string, flags int) (*FD, error) {
	mnt, rel, err := d.resolve(p)
	if err != nil {
		return nil, pathErr("open", p, err)
	}
	fd := &FD{Path: rel, Flags: flags, FS: mnt}
	if err := mnt.Type.Fops.Open(fd); err != nil {
		return nil, pathErr("open", p, err)
	}
	return fd, nil
}

// Mkdir creates a directory.
func (d *Dispatcher) Mkdir(p string) error {
	_, err := d.Open(p, ODirectory|OCreat)
	if err != nil {
		return pathErr("mkdir", p, unwrapPathErr(err))
	}
	return nil
}

func unwrapPathErr(err error) error {
	if pe, ok := err.(*fs.PathError); ok {
		return pe.Err
	}
	return err
}

// Close closes fd.
func (d *Dispatcher) Close(fd *FD) error {
	return pathErr("close", fd.Path, fd.FS.Type.Fops.Close(fd))
}

// Read reads from a file descriptor.
func (d *Dispatcher) Read(fd *FD, buf []byte) (int, error) {
	if fd.IsDir() {
		return 0, pathErr("read", fd.Path, syscall.EISDIR)
	}
	n, err := fd.FS.Type.Fops.Read(fd, buf)
	return n, pathErr("read", fd.Path, err)
}

// Write writes to a file descriptor.
func (d *Dispatcher) Write(fd *FD, buf []byte) (int, error) {
	if fd.IsDir() {
		return 0, pathErr("write", fd.Path, syscall.EISDIR)
	}
	n, err := fd.FS.Type.Fops.Write(fd, buf)
	return n, pathErr("write", fd.Path, err)
}

// Flush commits pending writes of fd.
func (d *Dispatcher) Flush(fd *FD) error {
	return pathErr("flush", fd.Path, fd.FS.Type.Fops.Flush(fd))
}

// Ioctl forwards a control request to the filesystem.
func (d *Dispatcher) Ioctl(fd *FD, cmd int, args any) error {
	return pathErr("ioctl", fd.Path, fd.FS.Type.Fops.Ioctl(fd, cmd, args))
}

// Lseek resolves whence against fd and seeks to the resulting absolute
// offset.
func (d *Dispatcher) Lseek(fd *FD, offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += fd.Pos
	case io.SeekEnd:
		offset += fd.Size
	default:
		return 0, pathErr("seek", fd.Path, syscall.EINVAL)
	}
	if offset < 0 {
		return 0, pathErr("seek", fd.Path, syscall.EINVAL)
	}
	pos, err := fd.FS.Type.Fops.Lseek(fd, offset)
	return pos, pathErr("seek", fd.Path, err)
}

// Getdents fills buf with directory entry records.
func (d *Dispatcher) Getdents(fd *FD, buf []byte) (int, error) {
	if !fd.IsDir() {
		return 0, pathErr("getdents", fd.Path, syscall.ENOTDIR)
	}
	n, err := fd.FS.Type.Fops.Getdents(fd, buf)
	return n, pathErr("getdents", fd.Path, err)
}

// ReadDir reads up to n entries from a directory descriptor. An empty
// result means the directory is exhausted.
func (d *Dispatcher) ReadDir(fd *FD, n int) ([]Dirent, error) {
	buf := make([]byte, n*DirentSize)
	k, err := d.Getdents(fd, buf)
	if err != nil {
		return nil, err
	}
	return ParseDirents(buf[:k]), nil
}

// Stat fills st for path.
func (d *Dispatcher) Stat(p string, st *Stat) error {
	mnt, rel, err := d.resolve(p)
	if err != nil {
		return pathErr("stat", p, err)
	}
	return pathErr("stat", p, mnt.Type.Ops.Stat(mnt, rel, st))
}

// Statfs fills buf for the filesystem holding path.
func (d *Dispatcher) Statfs(p string, buf *StatFS) error {
	mnt, _, err := d.resolve(p)
	if err != nil {
		return pathErr("statfs", p, err)
	}
	return pathErr("statfs", p, mnt.Type.Ops.Statfs(mnt, buf))
}

// Unlink removes a file or an empty directory.
func (d *Dispatcher) Unlink(p string) error {
	mnt, rel, err := d.resolve(p)
	if err != nil {
		return pathErr("unlink", p, err)
	}
	return pathErr("unlink", p, mnt.Type.Ops.Unlink(mnt, rel))
}

// Rename moves oldPath to newPath within one filesystem.
func (d *Dispatcher) Rename(oldPath, newPath string) error {
	oldMnt, oldRel, err := d.resolve(oldPath)
	if err != nil {
		return pathErr("rename", oldPath, err)
	}
	newMnt, newRel, err := d.resolve(newPath)
	if err != nil {
		return pathErr("rename", newPath, err)
	}
	if oldMnt != newMnt {
		return pathErr("rename", newPath, syscall.EXDEV)
	}
	return pathErr("rename", oldPath, oldMnt.Type.Ops.Rename(oldMnt, oldRel, newRel))
}
