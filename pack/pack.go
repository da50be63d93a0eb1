// Package pack provides pack loaders backed by a directory or a zip
// archive (.zip, .mcpack). They plug into redirect.Redirector for tools
// and tests that run outside the client.
package pack

import (
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/asset-redirect/errors"
)

// manifest marks the root of a resource pack.
const manifest = "manifest.json"

// Loader supplies pack bytes for a pack-relative path; empty means absent.
type Loader interface {
	Load(name string) []byte
}

// FSLoader reads pack files from an fs.FS.
type FSLoader struct {
	fsys fs.FS
}

// FS returns a loader over fsys.
func FS(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// Dir returns a loader over the directory at root.
func Dir(root string) *FSLoader {
	return FS(os.DirFS(root))
}

// Load implements Loader.
func (l *FSLoader) Load(name string) []byte {
	name = clean(name)
	if name == "" {
		return nil
	}
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		Logger().Debug("pack file unavailable", zap.String("path", name), zap.Error(err))
		return nil
	}
	return data
}

// Open returns a directory or zip loader for p, whichever it is. The
// returned closer releases the archive and is a no-op for directories.
func Open(p string) (Loader, io.Closer, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, nil, errors.NotFound(errors.PhaseLoad, "pack", p, err)
	}
	if info.IsDir() {
		return Dir(p), nopCloser{}, nil
	}
	z, err := OpenZip(p)
	if err != nil {
		return nil, nil, err
	}
	return z, z, nil
}

// Chain tries each loader in order and returns the first non-empty result.
func Chain(loaders ...Loader) Loader {
	return chain(loaders)
}

type chain []Loader

func (c chain) Load(name string) []byte {
	for _, l := range c {
		if data := l.Load(name); len(data) > 0 {
			return data
		}
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// clean normalizes a pack path to fs.FS form. Paths that escape the pack
// root yield "".
func clean(name string) string {
	name = path.Clean(strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/"))
	if name == "." || !fs.ValidPath(name) {
		return ""
	}
	return name
}
