package dfs_test

import (
	"io"
	"io/fs"
	"log/slog"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuln/lfsdfs/dfs"
	"github.com/nuln/lfsdfs/driver/local"
	"github.com/nuln/lfsdfs/littlefs"
)

// recordFS is a filesystem that remembers the paths it was handed.
type recordFS struct {
	mounted  int
	paths    []string
	mountErr error
}

func (r *recordFS) Open(fd *dfs.FD) error {
	r.paths = append(r.paths, fd.Path)
	fd.Data = len(r.paths)
	fd.Size = 100
	return nil
}

func (r *recordFS) Close(fd *dfs.FD) error {
	fd.Data = nil
	return nil
}

func (r *recordFS) Ioctl(fd *dfs.FD, cmd int, args any) error    { return syscall.ENOSYS }
func (r *recordFS) Read(fd *dfs.FD, buf []byte) (int, error)     { return 0, nil }
func (r *recordFS) Write(fd *dfs.FD, buf []byte) (int, error)    { return len(buf), nil }
func (r *recordFS) Flush(fd *dfs.FD) error                       { return nil }
func (r *recordFS) Getdents(fd *dfs.FD, buf []byte) (int, error) { return 0, nil }

func (r *recordFS) Lseek(fd *dfs.FD, offset int64) (int64, error) {
	fd.Pos = offset
	return offset, nil
}

func (r *recordFS) Mount(fs *dfs.Filesystem, rwflag uint32, data any) error {
	if r.mountErr != nil {
		return r.mountErr
	}
	r.mounted++
	return nil
}

func (r *recordFS) Unmount(fs *dfs.Filesystem) error {
	r.mounted--
	return nil
}

func (r *recordFS) Mkfs(dev dfs.Device) error { return nil }

func (r *recordFS) Statfs(fs *dfs.Filesystem, buf *dfs.StatFS) error {
	buf.BlockSize = 1
	return nil
}

func (r *recordFS) Unlink(fs *dfs.Filesystem, path string) error {
	r.paths = append(r.paths, path)
	return nil
}

func (r *recordFS) Stat(fs *dfs.Filesystem, path string, st *dfs.Stat) error {
	r.paths = append(r.paths, path)
	st.Mode = dfs.SIFREG
	return nil
}

func (r *recordFS) Rename(fs *dfs.Filesystem, oldPath, newPath string) error {
	r.paths = append(r.paths, oldPath, newPath)
	return nil
}

func newDispatcher() *dfs.Dispatcher {
	return dfs.New(dfs.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func register(t *testing.T, d *dfs.Dispatcher, name string) *recordFS {
	t.Helper()
	r := &recordFS{}
	require.NoError(t, d.RegisterFilesystem(&dfs.FilesystemType{Name: name, Fops: r, Ops: r}))
	return r
}

func TestRegisterFilesystem(t *testing.T) {
	d := newDispatcher()
	register(t, d, "b")
	register(t, d, "a")

	r := &recordFS{}
	assert.Equal(t, syscall.EEXIST, d.RegisterFilesystem(&dfs.FilesystemType{Name: "a", Fops: r, Ops: r}))
	assert.Equal(t, syscall.EINVAL, d.RegisterFilesystem(&dfs.FilesystemType{Name: "c"}))
	assert.Equal(t, syscall.EINVAL, d.RegisterFilesystem(nil))
	assert.Equal(t, []string{"a", "b"}, d.Filesystems())
}

func TestMount_Errors(t *testing.T) {
	d := newDispatcher()
	r := register(t, d, "rec")

	assert.ErrorIs(t, d.Mount("", "/", "unknown", 0, nil), syscall.ENODEV)
	assert.ErrorIs(t, d.Mount("nodev", "/", "rec", 0, nil), syscall.ENODEV)

	require.NoError(t, d.Mount("", "/", "rec", 0, nil))
	assert.ErrorIs(t, d.Mount("", "/", "rec", 0, nil), syscall.EBUSY)
	assert.Equal(t, 1, r.mounted)

	assert.ErrorIs(t, d.Unmount("/other"), syscall.EINVAL)
	require.NoError(t, d.Unmount("/"))
	assert.Equal(t, 0, r.mounted)

	var st dfs.Stat
	err := d.Stat("/x", &st)
	assert.ErrorIs(t, err, syscall.ENOENT)
	var pe *fs.PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "stat", pe.Op)
}

func TestMount_FailureClosesDevice(t *testing.T) {
	d := newDispatcher()
	r := register(t, d, "rec")
	r.mountErr = syscall.EIO

	dev := &countingDevice{}
	require.NoError(t, d.RegisterDevice("dev0", dev, dfs.DeviceFlagRdWr))
	assert.Equal(t, syscall.EEXIST, d.RegisterDevice("dev0", dev, dfs.DeviceFlagRdWr))

	assert.ErrorIs(t, d.Mount("dev0", "/", "rec", 0, nil), syscall.EIO)
	assert.Equal(t, 1, dev.opens)
	assert.Equal(t, 1, dev.closes)
}

type countingDevice struct {
	opens, closes int
}

func (c *countingDevice) Open(oflag uint16) error {
	c.opens++
	return nil
}

func (c *countingDevice) Close() error {
	c.closes++
	return nil
}

func (c *countingDevice) Class() int                      { return dfs.DeviceClassBlock }
func (c *countingDevice) Init() error                     { return nil }
func (c *countingDevice) Read(pos int64, buf []byte) int  { return 0 }
func (c *countingDevice) Write(pos int64, buf []byte) int { return 0 }
func (c *countingDevice) Control(cmd int, args any) error { return nil }

func TestResolve_LongestPrefix(t *testing.T) {
	d := newDispatcher()
	root := register(t, d, "root")
	data := register(t, d, "data")
	require.NoError(t, d.Mount("", "/", "root", 0, nil))
	require.NoError(t, d.Mount("", "/data", "data", 0, nil))

	var st dfs.Stat
	require.NoError(t, d.Stat("/data/logs/a.txt", &st))
	require.NoError(t, d.Stat("/data", &st))
	require.NoError(t, d.Stat("/database", &st))
	require.NoError(t, d.Stat("data/../etc//x", &st))

	assert.Equal(t, []string{"/logs/a.txt", "/"}, data.paths)
	assert.Equal(t, []string{"/database", "/etc/x"}, root.paths)
}

func TestRename_CrossMount(t *testing.T) {
	d := newDispatcher()
	register(t, d, "root")
	data := register(t, d, "data")
	require.NoError(t, d.Mount("", "/", "root", 0, nil))
	require.NoError(t, d.Mount("", "/data", "data", 0, nil))

	assert.ErrorIs(t, d.Rename("/a", "/data/a"), syscall.EXDEV)
	require.NoError(t, d.Rename("/data/a", "/data/b"))
	assert.Equal(t, []string{"/a", "/b"}, data.paths)
}

func TestLseek_Whence(t *testing.T) {
	d := newDispatcher()
	register(t, d, "rec")
	require.NoError(t, d.Mount("", "/", "rec", 0, nil))

	fd, err := d.Open("/f", dfs.ORdWr)
	require.NoError(t, err)

	pos, err := d.Lseek(fd, 10, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos)

	pos, err = d.Lseek(fd, 5, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(15), pos)

	pos, err = d.Lseek(fd, -20, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(80), pos)

	_, err = d.Lseek(fd, -1, io.SeekStart)
	assert.ErrorIs(t, err, syscall.EINVAL)
	_, err = d.Lseek(fd, 0, 42)
	assert.ErrorIs(t, err, syscall.EINVAL)
	assert.Equal(t, int64(80), fd.Pos)
}

func TestDescriptorKinds(t *testing.T) {
	d := newDispatcher()
	register(t, d, "rec")
	require.NoError(t, d.Mount("", "/", "rec", 0, nil))

	dir, err := d.Open("/d", dfs.ODirectory)
	require.NoError(t, err)
	_, err = d.Read(dir, make([]byte, 1))
	assert.ErrorIs(t, err, syscall.EISDIR)
	_, err = d.Write(dir, make([]byte, 1))
	assert.ErrorIs(t, err, syscall.EISDIR)

	file, err := d.Open("/f", dfs.ORdOnly)
	require.NoError(t, err)
	_, err = d.Getdents(file, make([]byte, dfs.DirentSize))
	assert.ErrorIs(t, err, syscall.ENOTDIR)
	assert.ErrorIs(t, d.Ioctl(file, 1, nil), syscall.ENOSYS)
}

func TestDirent_Encoding(t *testing.T) {
	buf := make([]byte, 2*dfs.DirentSize)
	dfs.PutDirent(buf, &dfs.Dirent{Type: dfs.DTReg, NameLen: 5, RecLen: dfs.DirentSize, Name: "a.txt"})

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	dfs.PutDirent(buf[dfs.DirentSize:], &dfs.Dirent{Type: dfs.DTDir, NameLen: 255, RecLen: dfs.DirentSize, Name: string(long)})

	got := dfs.ParseDirents(buf)
	require.Len(t, got, 2)
	assert.Equal(t, dfs.Dirent{Type: dfs.DTReg, NameLen: 5, RecLen: dfs.DirentSize, Name: "a.txt"}, got[0])
	assert.Len(t, got[1].Name, dfs.DirentNameSize-1)
	assert.Equal(t, uint8(dfs.DTDir), got[1].Type)
	assert.Equal(t, byte(0), buf[2*dfs.DirentSize-1], "name field is NUL terminated")
}

func TestReadDir_Littlefs(t *testing.T) {
	d := newDispatcher()
	engine := local.NewWithFs(afero.NewMemMapFs(), 512, 64)
	_, err := littlefs.Init(d, engine, littlefs.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	require.NoError(t, d.Mkdir("/etc"))
	fd, err := d.Open("/etc/hosts", dfs.OWrOnly|dfs.OCreat)
	require.NoError(t, err)
	require.NoError(t, d.Close(fd))

	dir, err := d.Open("/etc", dfs.ODirectory)
	require.NoError(t, err)
	defer func() { _ = d.Close(dir) }()

	var names []string
	for {
		batch, err := d.ReadDir(dir, 2)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		for _, e := range batch {
			names = append(names, e.Name)
		}
	}
	assert.Equal(t, []string{".", "..", "hosts"}, names)

	var sfs dfs.StatFS
	require.NoError(t, d.Statfs("/etc", &sfs))
	assert.Equal(t, uint64(64), sfs.Blocks)
}
