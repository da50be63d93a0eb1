package autofix

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/wippyai/asset-redirect/materialbin"
	"github.com/wippyai/asset-redirect/materialbin/bgfx"
)

// Lightmap fix: unpack the single-component lightmap coordinate used by
// dithering clients into the two-component form older shaders expect.
const (
	LightmapMarker      = "void main"
	LightmapReplacement = "\n#define a_texcoord1 vec2(fract(a_texcoord1.x*15.9375)+0.0001,floor(a_texcoord1.x*15.9375)*0.0625+0.0001)\nvoid main"
)

// Sampler fix: force explicit LOD sampling in fragment shaders compiled
// before sampler states existed.
const (
	SamplerMarker      = "void main ()"
	SamplerReplacement = "\n#if __VERSION__ >= 300\n #define texture(tex,uv) textureLod(tex,uv,0.0)\n#else\n #define texture2D(tex,uv) texture2DLod(tex,uv,0.0)\n#endif\nvoid main ()"
)

// Material names the fixes are gated on.
const (
	RenderChunk        = "RenderChunk"
	RenderChunkPrepass = "RenderChunkPrepass"
)

// samplerPlatform is the only platform the sampler fix touches.
const samplerPlatform = "ESSL_100"

// samplerPasses are the passes the sampler fix touches.
var samplerPasses = map[string]bool{"AlphaTest": true, "Opaque": true}

// fix is a text insertion applied to selected shader stages.
type fix struct {
	name        string
	marker      []byte
	replacement []byte
	selects     func(pass string, key materialbin.ShaderKey) bool
}

var lightmapFix = fix{
	name:        "lightmap",
	marker:      []byte(LightmapMarker),
	replacement: []byte(LightmapReplacement),
	selects: func(_ string, key materialbin.ShaderKey) bool {
		return key.Stage == materialbin.StageVertex
	},
}

var samplerFix = fix{
	name:        "sampler",
	marker:      []byte(SamplerMarker),
	replacement: []byte(SamplerReplacement),
	selects: func(pass string, key materialbin.ShaderKey) bool {
		return samplerPasses[pass] &&
			key.Stage == materialbin.StageFragment &&
			key.PlatformName == samplerPlatform
	},
}

// Splice replaces the first occurrence of marker in code with
// replacement. It reports false and returns code unchanged when marker is
// absent.
func Splice(code, marker, replacement []byte) ([]byte, bool) {
	i := bytes.Index(code, marker)
	if i < 0 {
		return code, false
	}
	out := make([]byte, 0, len(code)-len(marker)+len(replacement))
	out = append(out, code[:i]...)
	out = append(out, replacement...)
	out = append(out, code[i+len(marker):]...)
	return out, true
}

// applyFix patches every selected stage of m and returns how many shader
// blobs changed. Blobs that are not bgfx shaders, or lack the marker, are
// left as they are.
func applyFix(m *materialbin.Material, f fix) int {
	changed := 0
	for pi := range m.Passes {
		pass := &m.Passes[pi]
		for vi := range pass.Variants {
			shaders := pass.Variants[vi].Shaders
			for si := range shaders {
				s := &shaders[si]
				if !f.selects(pass.Name, s.Key) {
					continue
				}

				sh, err := bgfx.Parse(s.Blob)
				if err != nil {
					Logger().Debug("skip non-bgfx shader blob",
						zap.String("fix", f.name),
						zap.String("pass", pass.Name),
						zap.String("platform", s.Key.PlatformName),
						zap.Error(err))
					continue
				}

				code, ok := Splice(sh.Code, f.marker, f.replacement)
				if !ok {
					continue
				}
				sh.Code = code

				blob, err := sh.Encode()
				if err != nil {
					Logger().Debug("re-encode shader blob",
						zap.String("fix", f.name),
						zap.String("pass", pass.Name),
						zap.Error(err))
					continue
				}
				s.Blob = blob
				changed++
			}
		}
	}
	return changed
}
