package pack

import (
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/wippyai/asset-redirect/errors"
)

// ZipLoader reads pack files from a zip archive. Archives whose manifest
// sits in a single top-level directory are served from that directory.
// It is safe for concurrent use.
type ZipLoader struct {
	files  map[string]*zip.File
	root   string
	closer io.Closer
	mu     sync.Mutex
	closed bool
}

// OpenZip opens the archive at p.
func OpenZip(p string) (*ZipLoader, error) {
	rc, err := zip.OpenReader(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(errors.PhaseLoad, "archive", p, err)
		}
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).Asset(p).Cause(err).Detail("open archive").Build()
	}
	z := newZip(&rc.Reader)
	z.closer = rc
	Logger().Debug("pack archive opened",
		zap.String("path", p),
		zap.Int("files", len(z.files)),
		zap.String("root", z.root))
	return z, nil
}

// NewZip reads an archive of the given size from r.
func NewZip(r io.ReaderAt, size int64) (*ZipLoader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read archive")
	}
	return newZip(zr), nil
}

func newZip(zr *zip.Reader) *ZipLoader {
	z := &ZipLoader{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		z.files[path.Clean(f.Name)] = f
	}
	z.root = findRoot(z.files)
	return z
}

// findRoot returns the directory holding the manifest when the archive
// wraps the pack in exactly one top-level directory.
func findRoot(files map[string]*zip.File) string {
	if _, ok := files[manifest]; ok {
		return ""
	}
	root := ""
	for name := range files {
		dir, _, ok := strings.Cut(name, "/")
		if !ok {
			return ""
		}
		if root != "" && dir != root {
			return ""
		}
		root = dir
	}
	if _, ok := files[root+"/"+manifest]; !ok {
		return ""
	}
	return root
}

// Load implements Loader.
func (z *ZipLoader) Load(name string) []byte {
	name = clean(name)
	if name == "" {
		return nil
	}
	if z.root != "" {
		name = z.root + "/" + name
	}

	f, ok := z.files[name]
	if !ok {
		return nil
	}

	z.mu.Lock()
	closed := z.closed
	z.mu.Unlock()
	if closed {
		return nil
	}

	rc, err := f.Open()
	if err != nil {
		Logger().Debug("open archive entry", zap.String("path", name), zap.Error(err))
		return nil
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		Logger().Debug("read archive entry", zap.String("path", name), zap.Error(err))
		return nil
	}
	return data
}

// Len returns the number of files in the archive.
func (z *ZipLoader) Len() int {
	return len(z.files)
}

// Root returns the top-level directory the pack is served from, or "".
func (z *ZipLoader) Root() string {
	return z.root
}

// Close releases the archive. Later loads return nothing.
func (z *ZipLoader) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.closed {
		return nil
	}
	z.closed = true
	if z.closer != nil {
		return z.closer.Close()
	}
	return nil
}
