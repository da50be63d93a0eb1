package hook

import (
	"github.com/wippyai/asset-redirect/resource"
)

// AssetManager is the opaque native asset manager. Zero is null.
type AssetManager uintptr

// Native whence values accepted by Seek and Seek64.
const (
	SeekSet int32 = 0
	SeekCur int32 = 1
	SeekEnd int32 = 2
)

// ModeBuffer is the open mode used when reading whole assets.
const ModeBuffer int32 = 3

// AssetAPI is the real native asset API. The Interceptor delegates every
// call on a handle it does not own to it, unchanged.
type AssetAPI interface {
	Open(mgr AssetManager, name string, mode int32) resource.Handle
	Read(h resource.Handle, dst []byte) int32
	Seek(h resource.Handle, offset int32, whence int32) int32
	Seek64(h resource.Handle, offset int64, whence int32) int64
	Length(h resource.Handle) int32
	Length64(h resource.Handle) int64
	Remaining(h resource.Handle) int32
	Remaining64(h resource.Handle) int64
	Close(h resource.Handle)
	// Buffer returns the whole asset, or nil when it cannot be mapped.
	Buffer(h resource.Handle) []byte
	OpenFileDescriptor(h resource.Handle) (fd int32, start, length int32)
	OpenFileDescriptor64(h resource.Handle) (fd int32, start, length int64)
	IsAllocated(h resource.Handle) bool
}

// Installer routes a native symbol to a replacement function. How it
// patches the client is outside this package.
type Installer interface {
	Install(symbol string, fn any) error
}

// InstallerFunc adapts a function to Installer.
type InstallerFunc func(symbol string, fn any) error

func (f InstallerFunc) Install(symbol string, fn any) error { return f(symbol, fn) }

// Symbols lists the intercepted native entry points in install order.
var Symbols = []string{
	"AAssetManager_open",
	"AAsset_read",
	"AAsset_seek",
	"AAsset_seek64",
	"AAsset_getLength",
	"AAsset_getLength64",
	"AAsset_getRemainingLength",
	"AAsset_getRemainingLength64",
	"AAsset_close",
	"AAsset_getBuffer",
	"AAsset_openFileDescriptor",
	"AAsset_openFileDescriptor64",
	"AAsset_isAllocated",
}
