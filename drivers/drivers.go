// Package drivers is a convenience package that registers all built-in
// storage drivers. Import it with a blank identifier to make all drivers
// available:
//
//	import _ "github.com/nuln/lfsdfs/drivers"
package drivers

import (
	"github.com/nuln/lfsdfs"
	_ "github.com/nuln/lfsdfs/driver/absfs"
	_ "github.com/nuln/lfsdfs/driver/billy"
	_ "github.com/nuln/lfsdfs/driver/local"
	_ "github.com/nuln/lfsdfs/driver/rclone"
)

// List returns a list of all registered storage drivers.
func List() []string {
	return lfsdfs.List()
}
