// Package redirect serves client assets from a resource pack.
//
// A Redirector rewrites logical asset paths through an ordered prefix
// table, loads the rewritten path from a pack Loader and wraps the bytes
// in a buffer.Buffer. Compiled materials go through a Transformer first.
// The most recently closed buffer is kept in a single cache slot so a
// file that is closed and immediately reopened skips the loader.
package redirect

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/asset-redirect/buffer"
)

// Loader supplies pack bytes for a rewritten path. An empty result means
// the pack does not have the file.
type Loader interface {
	Load(path string) []byte
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) []byte

func (f LoaderFunc) Load(path string) []byte { return f(path) }

// Transformer rewrites compiled materials. It returns false when the
// original bytes should be served.
type Transformer interface {
	Transform(raw []byte) ([]byte, bool)
}

// Stats counts Redirector activity.
type Stats struct {
	Resolves    uint64
	CacheHits   uint64
	LoaderCalls uint64
	Transforms  uint64
	Retired     uint64
}

// Redirector resolves logical asset paths to pack content. The cache slot
// and the loader share one lock, so resolve-and-cache is atomic with
// respect to other opens.
type Redirector struct {
	mu          sync.Mutex
	rules       []Rule
	loader      Loader
	transformer Transformer
	cache       *buffer.Buffer
	stats       Stats
}

// New creates a Redirector. A nil rules uses DefaultRules; a nil
// transformer serves materials unchanged. The loader may be published
// later with SetLoader.
func New(rules []Rule, loader Loader, transformer Transformer) *Redirector {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Redirector{
		rules:       append([]Rule(nil), rules...),
		loader:      loader,
		transformer: transformer,
	}
}

// SetLoader publishes the pack loader. Until it is set every resolve
// misses.
func (r *Redirector) SetLoader(l Loader) {
	r.mu.Lock()
	r.loader = l
	r.mu.Unlock()
}

// Rules returns a copy of the redirect table.
func (r *Redirector) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Resolve returns a buffer serving path, or false when the path is not
// redirected or the pack does not have it. The buffer is named after path
// as given, so a later reopen of the same path can hit the cache.
func (r *Redirector) Resolve(path string) (*buffer.Buffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Resolves++

	if IsMaterial(path) {
		r.cache = nil
	} else if r.cache != nil && r.cache.Name() == path {
		buf := r.cache
		r.cache = nil
		buf.Rewind()
		r.stats.CacheHits++
		Logger().Debug("asset cache hit", zap.String("path", path))
		return buf, true
	}

	target, ok := Rewrite(r.rules, path)
	if !ok {
		return nil, false
	}
	if r.loader == nil {
		Logger().Debug("pack loader unavailable", zap.String("path", path))
		return nil, false
	}

	r.stats.LoaderCalls++
	data := r.loader.Load(target)
	if len(data) == 0 {
		Logger().Debug("asset not in pack", zap.String("path", path), zap.String("pack_path", target))
		return nil, false
	}

	var content buffer.Content = buffer.Borrow(data)
	if IsMaterial(target) && r.transformer != nil {
		if patched, ok := r.transformer.Transform(data); ok {
			content = buffer.Owned(patched)
			r.stats.Transforms++
		}
	}

	Logger().Debug("asset redirected",
		zap.String("path", path),
		zap.String("pack_path", target),
		zap.Int("size", len(content.Bytes())),
		zap.Bool("owned", content.IsOwned()))
	return buffer.New(path, content), true
}

// Retire stores a closed buffer in the cache slot, evicting the previous
// occupant. Material buffers are dropped.
func (r *Redirector) Retire(buf *buffer.Buffer) {
	if buf == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.Retired++
	if IsMaterial(buf.Name()) {
		return
	}
	r.cache = buf
}

// Cached returns the name of the buffer in the cache slot.
func (r *Redirector) Cached() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		return "", false
	}
	return r.cache.Name(), true
}

// Stats returns a snapshot of the counters.
func (r *Redirector) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
