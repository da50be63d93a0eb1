package autofix

import (
	"go.uber.org/zap"

	"github.com/wippyai/asset-redirect/config"
	"github.com/wippyai/asset-redirect/errors"
	"github.com/wippyai/asset-redirect/materialbin"
)

// Result describes one transform.
type Result struct {
	Material *materialbin.Material
	Source   materialbin.Version
	Target   materialbin.Version
	Lightmap bool
	Sampler  bool
	// Patched counts the shader blobs whose code changed.
	Patched int
	// Output is nil when the material needs no change.
	Output []byte
}

// Transformer rewrites materials for the running client. It is safe for
// concurrent use.
type Transformer struct {
	detector *Detector
	source   AssetSource
	options  *config.Store
}

// NewTransformer creates a transformer. src is read by the detector the
// first time a material is transformed; opts is consulted on every call.
// A nil opts uses config.Default.
func NewTransformer(det *Detector, src AssetSource, opts *config.Store) *Transformer {
	if det == nil {
		det = NewDetector()
	}
	if opts == nil {
		opts = config.NewStore(nil)
	}
	return &Transformer{detector: det, source: src, options: opts}
}

// Detector returns the detector used for the target version.
func (t *Transformer) Detector() *Detector {
	return t.detector
}

// Apply runs the transform and reports what it did. An error means the
// material must be served unchanged.
func (t *Transformer) Apply(raw []byte) (*Result, error) {
	det := t.detector.Detect(t.source)
	if det == nil {
		return nil, errors.NotInitialized(errors.PhaseTransform, "client version")
	}
	opts := t.options.Get()
	if len(opts.AutofixVersions) == 0 {
		return nil, errors.InvalidInput(errors.PhaseTransform, "no autofix versions configured")
	}

	source, m, err := materialbin.Probe(raw, opts.AutofixVersions...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseTransform, errors.KindUnsupported, err, "detect material version")
	}

	res := &Result{
		Material: m,
		Source:   source,
		Target:   det.Version,
		Lightmap: det.Dithering &&
			source != materialbin.V1_21_110 &&
			(m.Name == RenderChunk || m.Name == RenderChunkPrepass) &&
			opts.ApplyLightmapFix,
		Sampler: m.Name == RenderChunk &&
			det.Version >= materialbin.V1_20_80 &&
			source <= materialbin.V1_19_60 &&
			opts.ApplySamplerFix,
	}

	if source == det.Version && !res.Lightmap && !res.Sampler {
		return res, nil
	}

	if res.Lightmap {
		res.Patched += applyFix(m, lightmapFix)
	}
	if res.Sampler {
		res.Patched += applyFix(m, samplerFix)
	}

	out, err := m.Encode(det.Version)
	if err != nil {
		return nil, errors.New(errors.PhaseTransform, errors.KindInvalidData).
			Asset(m.Name).
			Version(det.Version.String()).
			Cause(err).
			Detail("re-encode material").
			Build()
	}
	res.Output = out
	return res, nil
}

// Transform returns the patched material, or false when raw should be
// served unchanged.
func (t *Transformer) Transform(raw []byte) ([]byte, bool) {
	res, err := t.Apply(raw)
	if err != nil {
		Logger().Debug("material passthrough", zap.Error(err))
		return nil, false
	}
	if res.Output == nil {
		Logger().Debug("material already matches client",
			zap.String("material", res.Material.Name),
			zap.Stringer("version", res.Source))
		return nil, false
	}

	Logger().Debug("material transformed",
		zap.String("material", res.Material.Name),
		zap.Stringer("source", res.Source),
		zap.Stringer("target", res.Target),
		zap.Bool("lightmap", res.Lightmap),
		zap.Bool("sampler", res.Sampler),
		zap.Int("patched", res.Patched),
		zap.String("blake3", materialbin.Fingerprint(res.Output)))
	return res.Output, true
}
