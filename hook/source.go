package hook

import (
	"sync/atomic"

	"github.com/wippyai/asset-redirect/resource"
)

// RealSource reads built-in assets straight from the real API, bypassing
// interception. It reads through the most recently seen asset manager.
type RealSource struct {
	api     AssetAPI
	manager atomic.Uintptr
}

// NewRealSource creates a source over api.
func NewRealSource(api AssetAPI) *RealSource {
	return &RealSource{api: api}
}

// SetManager records the asset manager used for reads. Null is ignored.
func (s *RealSource) SetManager(mgr AssetManager) {
	if mgr != 0 {
		s.manager.Store(uintptr(mgr))
	}
}

// ReadAsset opens path through the real API and reads it whole.
func (s *RealSource) ReadAsset(path string) ([]byte, bool) {
	mgr := AssetManager(s.manager.Load())
	if mgr == 0 {
		return nil, false
	}
	h := s.api.Open(mgr, path, ModeBuffer)
	if h == 0 {
		return nil, false
	}
	defer s.api.Close(h)

	return readAll(s.api, h)
}

func readAll(api AssetAPI, h resource.Handle) ([]byte, bool) {
	size := api.Length64(h)
	if size < 0 {
		return nil, false
	}
	data := make([]byte, 0, size)
	chunk := make([]byte, 64*1024)
	for {
		n := api.Read(h, chunk)
		if n < 0 {
			return nil, false
		}
		if n == 0 {
			return data, true
		}
		data = append(data, chunk[:n]...)
	}
}
