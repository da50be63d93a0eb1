// Package hook implements the intercepted native asset entry points.
//
// Every entry point first looks the handle up in the registry. A
// registered handle is served from its buffer.Buffer; anything else is
// passed to the real AssetAPI unchanged. Errors and panics never cross
// an entry point: they become the native error value.
package hook

import (
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/asset-redirect/autofix"
	"github.com/wippyai/asset-redirect/buffer"
	"github.com/wippyai/asset-redirect/config"
	"github.com/wippyai/asset-redirect/errors"
	"github.com/wippyai/asset-redirect/redirect"
	"github.com/wippyai/asset-redirect/resource"
)

// Config assembles an Interceptor.
type Config struct {
	// Rules overrides redirect.DefaultRules.
	Rules []redirect.Rule
	// Loader is the pack loader. It may be set later through
	// Redirector().SetLoader.
	Loader redirect.Loader
	// Options holds the transform toggles. Nil uses config.Default.
	Options *config.Store
	// Detector overrides the client version detector.
	Detector *autofix.Detector
}

// Interceptor serves redirected assets in place of the real API.
type Interceptor struct {
	real       AssetAPI
	source     *RealSource
	redirector *redirect.Redirector
	assets     *resource.Table[*buffer.Buffer]
}

// New builds an Interceptor over the real API. The version detector reads
// its probe material through real, never through the interceptor.
func New(real AssetAPI, cfg Config) *Interceptor {
	source := NewRealSource(real)
	tr := autofix.NewTransformer(cfg.Detector, source, cfg.Options)

	ic := &Interceptor{
		real:       real,
		source:     source,
		redirector: redirect.New(cfg.Rules, cfg.Loader, tr),
		assets:     resource.NewTable[*buffer.Buffer](),
	}
	ic.assets.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		buf, _ := e.Value.(*buffer.Buffer)
		name := ""
		if buf != nil {
			name = buf.Name()
		}
		Logger().Debug("asset handle",
			zap.Stringer("event", e.Type),
			zap.Uintptr("handle", uintptr(e.Handle)),
			zap.String("path", name))
	}))
	return ic
}

// Redirector returns the redirector behind Open.
func (ic *Interceptor) Redirector() *redirect.Redirector {
	return ic.redirector
}

// Registry returns the table of handles served by the interceptor.
func (ic *Interceptor) Registry() *resource.Table[*buffer.Buffer] {
	return ic.assets
}

// guard converts a panic in an entry point into the native error value.
func guard[T any](op string, ret *T, sentinel T) {
	if r := recover(); r != nil {
		logPanic(op, r)
		*ret = sentinel
	}
}

// shield swallows a panic in an entry point that returns nothing.
func shield(op string) {
	if r := recover(); r != nil {
		logPanic(op, r)
	}
}

func logPanic(op string, r any) {
	Logger().Warn("recovered panic in asset entry point",
		zap.String("op", op),
		zap.Any("panic", r),
		zap.Stack("stack"))
}

// Open opens name through the real API and, if the path is redirected,
// registers a buffer for the returned handle. The real handle is always
// returned.
func (ic *Interceptor) Open(mgr AssetManager, name string, mode int32) resource.Handle {
	h := ic.real.Open(mgr, name, mode)
	if mgr == 0 || h == 0 {
		return h
	}

	func() {
		defer shield("open")

		ic.source.SetManager(mgr)
		if buf, ok := ic.redirector.Resolve(name); ok {
			ic.assets.Register(h, buf)
		}
	}()
	return h
}

// Read copies from the asset into dst. It returns the byte count, 0 at
// end of data, or -1.
func (ic *Interceptor) Read(h resource.Handle, dst []byte) (n int32) {
	defer guard("read", &n, -1)

	buf, ok := ic.assets.Lookup(h)
	if !ok {
		return ic.real.Read(h, dst)
	}
	if len(dst) > math.MaxInt32 {
		dst = dst[:math.MaxInt32]
	}
	got, err := buf.Read(dst)
	if err != nil && err != io.EOF {
		return -1
	}
	return int32(got)
}

// Seek moves the cursor. It returns the new offset or -1, including when
// the offset does not fit 32 bits.
func (ic *Interceptor) Seek(h resource.Handle, offset int32, whence int32) (pos int32) {
	defer guard("seek", &pos, -1)

	buf, ok := ic.assets.Lookup(h)
	if !ok {
		return ic.real.Seek(h, offset, whence)
	}
	p, err := seek(buf, int64(offset), whence)
	if err != nil {
		return -1
	}
	return narrow(p)
}

// Seek64 moves the cursor. It returns the new offset or -1.
func (ic *Interceptor) Seek64(h resource.Handle, offset int64, whence int32) (pos int64) {
	defer guard("seek64", &pos, -1)

	buf, ok := ic.assets.Lookup(h)
	if !ok {
		return ic.real.Seek64(h, offset, whence)
	}
	p, err := seek(buf, offset, whence)
	if err != nil {
		return -1
	}
	return p
}

// Length returns the asset size, or -1 when it does not fit 32 bits.
func (ic *Interceptor) Length(h resource.Handle) (n int32) {
	defer guard("length", &n, -1)

	buf, ok := ic.assets.Lookup(h)
	if !ok {
		return ic.real.Length(h)
	}
	return narrow(buf.Len())
}

// Length64 returns the asset size.
func (ic *Interceptor) Length64(h resource.Handle) (n int64) {
	defer guard("length64", &n, -1)

	buf, ok := ic.assets.Lookup(h)
	if !ok {
		return ic.real.Length64(h)
	}
	return buf.Len()
}

// Remaining returns the bytes left after the cursor, or -1 when the count
// does not fit 32 bits.
func (ic *Interceptor) Remaining(h resource.Handle) (n int32) {
	defer guard("remaining", &n, -1)

	buf, ok := ic.assets.Lookup(h)
	if !ok {
		return ic.real.Remaining(h)
	}
	return narrow(buf.Remaining())
}

// Remaining64 returns the bytes left after the cursor.
func (ic *Interceptor) Remaining64(h resource.Handle) (n int64) {
	defer guard("remaining64", &n, -1)

	buf, ok := ic.assets.Lookup(h)
	if !ok {
		return ic.real.Remaining64(h)
	}
	return buf.Remaining()
}

// Close retires the handle, hands its buffer to the redirector cache and
// closes the real asset.
func (ic *Interceptor) Close(h resource.Handle) {
	func() {
		defer shield("close")

		if buf, ok := ic.assets.Retire(h); ok {
			ic.redirector.Retire(buf)
		}
	}()
	ic.real.Close(h)
}

// Buffer returns the whole asset content.
func (ic *Interceptor) Buffer(h resource.Handle) (data []byte) {
	defer guard("buffer", &data, nil)

	buf, ok := ic.assets.Lookup(h)
	if !ok {
		return ic.real.Buffer(h)
	}
	return buf.Bytes()
}

// OpenFileDescriptor fails for redirected assets: they have no backing
// file.
func (ic *Interceptor) OpenFileDescriptor(h resource.Handle) (fd int32, start, length int32) {
	if ic.assets.Contains(h) {
		return -1, 0, 0
	}
	return ic.real.OpenFileDescriptor(h)
}

// OpenFileDescriptor64 fails for redirected assets.
func (ic *Interceptor) OpenFileDescriptor64(h resource.Handle) (fd int32, start, length int64) {
	if ic.assets.Contains(h) {
		return -1, 0, 0
	}
	return ic.real.OpenFileDescriptor64(h)
}

// IsAllocated reports false for redirected assets.
func (ic *Interceptor) IsAllocated(h resource.Handle) bool {
	if ic.assets.Contains(h) {
		return false
	}
	return ic.real.IsAllocated(h)
}

// Install routes every symbol in Symbols to the matching entry point. All
// symbols are attempted; failures are returned together.
func (ic *Interceptor) Install(inst Installer) error {
	entries := ic.entries()

	var failed errors.RegistrationErrors
	for _, sym := range Symbols {
		if err := inst.Install(sym, entries[sym]); err != nil {
			Logger().Warn("install interception", zap.String("symbol", sym), zap.Error(err))
			failed.Failures = append(failed.Failures, errors.Registration(sym, err))
			continue
		}
		Logger().Debug("interception installed", zap.String("symbol", sym))
	}
	if len(failed.Failures) > 0 {
		return &failed
	}
	return nil
}

func (ic *Interceptor) entries() map[string]any {
	return map[string]any{
		"AAssetManager_open":          ic.Open,
		"AAsset_read":                 ic.Read,
		"AAsset_seek":                 ic.Seek,
		"AAsset_seek64":               ic.Seek64,
		"AAsset_getLength":            ic.Length,
		"AAsset_getLength64":          ic.Length64,
		"AAsset_getRemainingLength":   ic.Remaining,
		"AAsset_getRemainingLength64": ic.Remaining64,
		"AAsset_close":                ic.Close,
		"AAsset_getBuffer":            ic.Buffer,
		"AAsset_openFileDescriptor":   ic.OpenFileDescriptor,
		"AAsset_openFileDescriptor64": ic.OpenFileDescriptor64,
		"AAsset_isAllocated":          ic.IsAllocated,
	}
}

func seek(buf *buffer.Buffer, offset int64, whence int32) (int64, error) {
	var w int
	switch whence {
	case SeekSet:
		w = io.SeekStart
	case SeekCur:
		w = io.SeekCurrent
	case SeekEnd:
		w = io.SeekEnd
	default:
		return 0, errors.InvalidInput(errors.PhaseSeek, "unknown whence")
	}
	return buf.Seek(offset, w)
}

func narrow(v int64) int32 {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return -1
	}
	return int32(v)
}
