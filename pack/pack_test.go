package pack

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zip"

	"github.com/wippyai/asset-redirect/errors"
	"github.com/wippyai/asset-redirect/redirect"
)

func writeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFSLoader(t *testing.T) {
	l := FS(fstest.MapFS{
		"manifest.json":   {Data: []byte("{}")},
		"hbui/index.html": {Data: []byte("<html>")},
	})

	tests := []struct {
		name string
		want string
	}{
		{"hbui/index.html", "<html>"},
		{"/hbui/index.html", "<html>"},
		{"hbui\\index.html", "<html>"},
		{"hbui/missing.html", ""},
		{"../hbui/index.html", ""},
		{"", ""},
		{"hbui", ""},
	}
	for _, tt := range tests {
		if got := string(l.Load(tt.name)); got != tt.want {
			t.Errorf("Load(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDirLoader(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "persona"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "persona", "skins.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, closer, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closer.Close()

	if got := string(l.Load("persona/skins.json")); got != "[]" {
		t.Errorf("Load = %q", got)
	}
}

func TestZipLoader(t *testing.T) {
	data := writeZip(t, map[string]string{
		"manifest.json":                         "{}",
		"renderer/materials/Sky.material.bin":   "sky",
		"vanilla_cameras/first_person.json":     "cam",
		"renderer/materials/empty.material.bin": "",
	})
	z, err := NewZip(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewZip: %v", err)
	}
	if z.Root() != "" || z.Len() != 4 {
		t.Errorf("Root = %q, Len = %d", z.Root(), z.Len())
	}

	if got := string(z.Load("renderer/materials/Sky.material.bin")); got != "sky" {
		t.Errorf("Load = %q", got)
	}
	if got := z.Load("renderer/materials/empty.material.bin"); len(got) != 0 {
		t.Errorf("empty entry = %q", got)
	}
	if got := z.Load("nope"); got != nil {
		t.Errorf("missing entry = %q", got)
	}

	if err := z.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := z.Load("vanilla_cameras/first_person.json"); got != nil {
		t.Error("Load after Close returned data")
	}
	if err := z.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestZipLoaderWrappedPack(t *testing.T) {
	data := writeZip(t, map[string]string{
		"MyPack/manifest.json":   "{}",
		"MyPack/hbui/index.html": "<html>",
	})
	z, err := NewZip(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewZip: %v", err)
	}
	if z.Root() != "MyPack" {
		t.Errorf("Root = %q", z.Root())
	}
	if got := string(z.Load("hbui/index.html")); got != "<html>" {
		t.Errorf("Load = %q", got)
	}
}

func TestZipLoaderNoRootWithoutManifest(t *testing.T) {
	data := writeZip(t, map[string]string{"dir/a.txt": "a"})
	z, err := NewZip(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewZip: %v", err)
	}
	if z.Root() != "" {
		t.Errorf("Root = %q", z.Root())
	}
	if got := string(z.Load("dir/a.txt")); got != "a" {
		t.Errorf("Load = %q", got)
	}
}

func TestOpenArchive(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pack.mcpack")
	if err := os.WriteFile(p, writeZip(t, map[string]string{"hbui/a.js": "a"}), 0o644); err != nil {
		t.Fatal(err)
	}

	l, closer, err := Open(p)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closer.Close()
	if got := string(l.Load("hbui/a.js")); got != "a" {
		t.Errorf("Load = %q", got)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := Open(filepath.Join(dir, "missing"))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindNotFound}) {
		t.Errorf("missing = %v", err)
	}

	bad := filepath.Join(dir, "bad.zip")
	if err := os.WriteFile(bad, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err = Open(bad)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData}) {
		t.Errorf("bad archive = %v", err)
	}

	if _, err := NewZip(bytes.NewReader(nil), 0); err == nil {
		t.Error("NewZip on empty input should fail")
	}
}

func TestChain(t *testing.T) {
	first := FS(fstest.MapFS{"a.txt": {Data: []byte("first")}})
	second := FS(fstest.MapFS{"a.txt": {Data: []byte("second")}, "b.txt": {Data: []byte("b")}})
	c := Chain(first, second)

	if got := string(c.Load("a.txt")); got != "first" {
		t.Errorf("a.txt = %q", got)
	}
	if got := string(c.Load("b.txt")); got != "b" {
		t.Errorf("b.txt = %q", got)
	}
	if got := c.Load("c.txt"); got != nil {
		t.Errorf("c.txt = %q", got)
	}
}

func TestRedirectorOverZip(t *testing.T) {
	data := writeZip(t, map[string]string{
		"manifest.json":   "{}",
		"hbui/index.html": "<html>",
	})
	z, err := NewZip(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}

	r := redirect.New(nil, z, nil)
	buf, ok := r.Resolve("assets/gui/dist/hbui/index.html")
	if !ok || string(buf.Bytes()) != "<html>" {
		t.Fatalf("Resolve = %v", ok)
	}
}
