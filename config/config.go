// Package config holds the toggles that drive the material compatibility
// transform.
//
// Options are read from a single YAML file:
//
//	apply_lightmap_fix: true
//	apply_sampler_fix: true
//	autofix_versions: ["1.21.110", "1.21.20", "1.20.80", "1.19.60", "1.18.30"]
//
// Keys that are absent keep their default value. A Store publishes the
// current Options to readers; Watch keeps a Store in sync with the file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/asset-redirect/errors"
	"github.com/wippyai/asset-redirect/materialbin"
)

// Options are the compatibility transform toggles.
type Options struct {
	// ApplyLightmapFix enables the lightmap coordinate fix for
	// RenderChunk and RenderChunkPrepass.
	ApplyLightmapFix bool `yaml:"apply_lightmap_fix"`

	// ApplySamplerFix enables the explicit-LOD sampler fix for
	// RenderChunk on old source layouts.
	ApplySamplerFix bool `yaml:"apply_sampler_fix"`

	// AutofixVersions lists the layouts tried when detecting the source
	// version of a material, in priority order.
	AutofixVersions []materialbin.Version `yaml:"autofix_versions"`
}

// Default returns options with both fixes enabled and every known version
// tried newest first.
func Default() *Options {
	return &Options{
		ApplyLightmapFix: true,
		ApplySamplerFix:  true,
		AutofixVersions:  materialbin.NewestFirst(),
	}
}

// Clone returns a deep copy.
func (o *Options) Clone() *Options {
	c := *o
	c.AutofixVersions = append([]materialbin.Version(nil), o.AutofixVersions...)
	return &c
}

// Validate checks that the version list is non-empty, known and free of
// duplicates.
func (o *Options) Validate() error {
	if len(o.AutofixVersions) == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "autofix_versions is empty")
	}
	seen := make(map[materialbin.Version]bool, len(o.AutofixVersions))
	for i, v := range o.AutofixVersions {
		if !v.Valid() {
			return errors.InvalidEnum(errors.PhaseConfig, []string{"autofix_versions", fmt.Sprint(i)}, uint8(v), "Version")
		}
		if seen[v] {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Path("autofix_versions", fmt.Sprint(i)).
				Value(v.String()).
				Detail("duplicate version %s", v).
				Build()
		}
		seen[v] = true
	}
	return nil
}

// Parse decodes YAML on top of Default. Unknown keys are rejected.
func Parse(data []byte) (*Options, error) {
	opts := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return opts, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode options")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Load reads and parses the options file at path.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(errors.PhaseConfig, "options file", path, err)
		}
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read "+path)
	}

	opts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

// Marshal renders the options as YAML.
func (o *Options) Marshal() ([]byte, error) {
	return yaml.Marshal(o)
}

// Store publishes the current Options. Readers receive an immutable
// snapshot; it must not be modified.
type Store struct {
	current atomic.Pointer[Options]
}

// NewStore creates a store holding opts, or Default when opts is nil.
func NewStore(opts *Options) *Store {
	s := &Store{}
	if opts == nil {
		opts = Default()
	}
	s.current.Store(opts)
	return s
}

// Get returns the current snapshot.
func (s *Store) Get() *Options {
	return s.current.Load()
}

// Set replaces the snapshot. A nil opts resets to Default.
func (s *Store) Set(opts *Options) {
	if opts == nil {
		opts = Default()
	}
	s.current.Store(opts)
}
