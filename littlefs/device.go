package littlefs

import "github.com/nuln/lfsdfs/dfs"

// nopDevice is the block device the filesystem is mounted from. The
// engine owns its storage, so every call succeeds without doing anything.
type nopDevice struct{}

func (*nopDevice) Class() int                      { return dfs.DeviceClassBlock }
func (*nopDevice) Init() error                     { return nil }
func (*nopDevice) Open(oflag uint16) error         { return nil }
func (*nopDevice) Close() error                    { return nil }
func (*nopDevice) Read(pos int64, buf []byte) int  { return len(buf) }
func (*nopDevice) Write(pos int64, buf []byte) int { return len(buf) }
func (*nopDevice) Control(cmd int, args any) error { return nil }

// Device returns the placeholder device. It is created on first use and
// the same instance is returned afterwards.
func (f *FS) Device() dfs.Device {
	f.devOnce.Do(func() {
		f.dev = &nopDevice{}
	})
	return f.dev
}
