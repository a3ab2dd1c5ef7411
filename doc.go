// Package lfsdfs defines the native API of a littlefs-style storage engine
// and the pieces needed to mount one behind a POSIX-like VFS dispatcher.
//
// The [Engine] interface is the engine's native, non-POSIX contract: integer
// handles, native open flags ([Flag]) and small negative status codes
// ([Error]). Engines are created through a driver registration mechanism,
// in the same way database/sql drivers are.
//
// # Supported Drivers
//
//   - local  - afero backed engine, in memory or under a directory (import _ "github.com/nuln/lfsdfs/driver/local")
//   - billy  - go-billy backed engine (import _ "github.com/nuln/lfsdfs/driver/billy")
//   - absfs  - absfs backed engine (import _ "github.com/nuln/lfsdfs/driver/absfs")
//   - rclone - any rclone remote (import _ "github.com/nuln/lfsdfs/driver/rclone")
//
// # Quick Start
//
//	import (
//	    "github.com/nuln/lfsdfs"
//	    "github.com/nuln/lfsdfs/dfs"
//	    "github.com/nuln/lfsdfs/littlefs"
//	    _ "github.com/nuln/lfsdfs/driver/local"
//	)
//
//	engine, err := lfsdfs.Open(&lfsdfs.Config{Type: "local", BasePath: "./data"})
//	d := dfs.New()
//	littlefs.Init(d, engine)
//	fd, err := d.Open("/hello.txt", dfs.OWrOnly|dfs.OCreat)
//
// # Import All Drivers
//
//	import _ "github.com/nuln/lfsdfs/drivers"
package lfsdfs
