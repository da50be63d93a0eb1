package autofix

import (
	"bytes"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/asset-redirect/materialbin"
)

// ProbePaths are the built-in materials read to detect the client
// version, in lookup order. The first one that opens is used.
var ProbePaths = []string{
	"assets/renderer/materials/RenderChunk.material.bin",
	"renderer/materials/RenderChunk.material.bin",
}

// DitheringMarker in the probe material indicates a client whose chunk
// shaders pack lightmap coordinates into a single component.
const DitheringMarker = "v_dithering"

// AssetSource reads a whole built-in asset. ok is false when the asset
// cannot be opened.
type AssetSource interface {
	ReadAsset(path string) (data []byte, ok bool)
}

// AssetSourceFunc adapts a function to AssetSource.
type AssetSourceFunc func(path string) ([]byte, bool)

func (f AssetSourceFunc) ReadAsset(path string) ([]byte, bool) { return f(path) }

// Detection is the running client's material layout. It never changes
// once published.
type Detection struct {
	Version   materialbin.Version
	Dithering bool
	Path      string
}

// Detector memoizes the result of probing the client. The first Detect
// call performs the probe; every later call returns the same *Detection
// (or nil) without touching the source.
type Detector struct {
	once   sync.Once
	done   atomic.Bool
	result *Detection
}

// NewDetector returns a detector that has not probed yet.
func NewDetector() *Detector {
	return &Detector{}
}

// Preset returns a detector that reports d without probing.
func Preset(v materialbin.Version, dithering bool) *Detector {
	det := &Detector{}
	det.once.Do(func() {
		det.result = &Detection{Version: v, Dithering: dithering, Path: "preset"}
		det.done.Store(true)
	})
	return det
}

// Detect returns the client's layout, probing src on the first call.
// A nil result means no known layout parsed the probe material; callers
// must then leave materials alone.
func (d *Detector) Detect(src AssetSource) *Detection {
	d.once.Do(func() {
		d.result = probe(src)
		d.done.Store(true)
		if d.result == nil {
			Logger().Warn("client material version not detected")
			return
		}
		Logger().Debug("client material version detected",
			zap.Stringer("version", d.result.Version),
			zap.Bool("dithering", d.result.Dithering),
			zap.String("probe", d.result.Path))
	})
	return d.result
}

// Detected reports the memoized result without probing.
func (d *Detector) Detected() (*Detection, bool) {
	if !d.done.Load() {
		return nil, false
	}
	return d.result, true
}

func probe(src AssetSource) *Detection {
	if src == nil {
		return nil
	}

	var (
		data []byte
		path string
	)
	for _, p := range ProbePaths {
		if b, ok := src.ReadAsset(p); ok {
			data, path = b, p
			break
		}
	}
	if path == "" {
		return nil
	}

	v, _, err := materialbin.Probe(data)
	if err != nil {
		Logger().Debug("probe material unreadable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return &Detection{
		Version:   v,
		Dithering: bytes.Contains(data, []byte(DitheringMarker)),
		Path:      path,
	}
}
