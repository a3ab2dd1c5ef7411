package dfs

// Device classes.
const (
	DeviceClassChar  = 0
	DeviceClassBlock = 1
)

// Device registration flags.
const (
	DeviceFlagRdOnly     = 0x001
	DeviceFlagWrOnly     = 0x002
	DeviceFlagRdWr       = 0x003
	DeviceFlagStandalone = 0x008
)

// Device is a registered device a filesystem can be mounted from.
type Device interface {
	Class() int
	Init() error
	Open(oflag uint16) error
	Close() error
	Read(pos int64, buf []byte) int
	Write(pos int64, buf []byte) int
	Control(cmd int, args any) error
}

type registeredDevice struct {
	dev   Device
	flags uint16
}
