package littlefs

import (
	"fmt"

	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/dfs"
)

// Init registers the filesystem type and the placeholder device with d and
// mounts the device at the configured mount point ("/" by default).
//
// A failed mount is logged and does not make Init fail; the returned FS
// can be mounted again later through d. Registration errors are returned.
func Init(d *dfs.Dispatcher, engine lfsdfs.Engine, opts ...Option) (*FS, error) {
	f := New(engine, opts...)

	if err := d.RegisterFilesystem(f.Type()); err != nil {
		return nil, fmt.Errorf("littlefs: register filesystem: %w", err)
	}
	dev := f.Device()
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("littlefs: init device: %w", err)
	}
	if err := d.RegisterDevice(f.opts.deviceName, dev, dfs.DeviceFlagRdWr|dfs.DeviceFlagStandalone); err != nil {
		return nil, fmt.Errorf("littlefs: register device %q: %w", f.opts.deviceName, err)
	}

	log := f.opts.logger.With("device", f.opts.deviceName, "path", f.opts.mountPoint)
	if err := d.Mount(f.opts.deviceName, f.opts.mountPoint, Name, 0, nil); err != nil {
		log.Error("littlefs: file system initialization failed", "err", err)
	} else {
		log.Info("littlefs: file system initialized")
	}
	return f, nil
}
