// Command matfix inspects and converts compiled material files.
//
//	matfix --info RenderChunk.material.bin
//	matfix --target 1.21.110 --dithering -o out.material.bin RenderChunk.material.bin
//	matfix --pack pack.mcpack --path assets/renderer/materials/RenderChunk.material.bin --info
//	matfix -i RenderChunk.material.bin
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/asset-redirect/autofix"
	"github.com/wippyai/asset-redirect/config"
	"github.com/wippyai/asset-redirect/materialbin"
	"github.com/wippyai/asset-redirect/materialbin/bgfx"
	"github.com/wippyai/asset-redirect/pack"
	"github.com/wippyai/asset-redirect/redirect"
)

type options struct {
	info        bool
	target      string
	dithering   bool
	lightmap    bool
	sampler     bool
	versions    []string
	configFile  string
	output      string
	packPath    string
	assetPath   string
	interactive bool
	verbose     bool
}

func main() {
	var o options
	fs := flag.NewFlagSet("matfix", flag.ExitOnError)
	fs.BoolVar(&o.info, "info", false, "Print material structure")
	fs.StringVar(&o.target, "target", "", "Convert to this client version (e.g. 1.21.110)")
	fs.BoolVar(&o.dithering, "dithering", false, "Target client has dithering shaders")
	fs.BoolVar(&o.lightmap, "lightmap", true, "Apply the lightmap fix when needed")
	fs.BoolVar(&o.sampler, "sampler", true, "Apply the sampler fix when needed")
	fs.StringSliceVar(&o.versions, "versions", nil, "Source versions to try, in order")
	fs.StringVar(&o.configFile, "config", "", "Options YAML file")
	fs.StringVarP(&o.output, "output", "o", "", "Write the converted material here")
	fs.StringVar(&o.packPath, "pack", "", "Resource pack directory or archive")
	fs.StringVar(&o.assetPath, "path", "", "Logical asset path to resolve in --pack")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "Browse the material in a TUI")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Debug logging to stderr")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: matfix [flags] <file.material.bin>")
		fmt.Fprintln(os.Stderr, "       matfix [flags] --pack <dir|zip> --path <asset path>")
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if o.verbose {
		setupLogging()
	}

	if err := run(fs, &o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	l, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	autofix.SetLogger(l)
	config.SetLogger(l)
	pack.SetLogger(l)
	redirect.SetLogger(l)
}

func run(fs *flag.FlagSet, o *options) error {
	name, data, err := readInput(fs, o)
	if err != nil {
		return err
	}

	if o.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(name, data)
	}

	if o.target == "" || o.info {
		if err := printInfo(name, data); err != nil {
			return err
		}
	}
	if o.target == "" {
		return nil
	}

	opts, err := buildOptions(fs, o)
	if err != nil {
		return err
	}
	return convert(data, o, opts)
}

func readInput(fs *flag.FlagSet, o *options) (string, []byte, error) {
	if o.packPath != "" {
		if o.assetPath == "" {
			return "", nil, fmt.Errorf("--pack needs --path")
		}
		loader, closer, err := pack.Open(o.packPath)
		if err != nil {
			return "", nil, err
		}
		defer closer.Close()

		buf, ok := redirect.New(nil, loader, nil).Resolve(o.assetPath)
		if !ok {
			return "", nil, fmt.Errorf("%s: not redirected or not in pack", o.assetPath)
		}
		// the archive is closed on return
		return o.assetPath, append([]byte(nil), buf.Bytes()...), nil
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return "", nil, fmt.Errorf("expected one material file")
	}
	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read file: %w", err)
	}
	return path, data, nil
}

func buildOptions(fs *flag.FlagSet, o *options) (*config.Options, error) {
	opts := config.Default()
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}
	if fs.Changed("lightmap") {
		opts.ApplyLightmapFix = o.lightmap
	}
	if fs.Changed("sampler") {
		opts.ApplySamplerFix = o.sampler
	}
	if len(o.versions) > 0 {
		opts.AutofixVersions = opts.AutofixVersions[:0]
		for _, s := range o.versions {
			v, err := materialbin.ParseVersion(s)
			if err != nil {
				return nil, err
			}
			opts.AutofixVersions = append(opts.AutofixVersions, v)
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func convert(data []byte, o *options, opts *config.Options) error {
	target, err := materialbin.ParseVersion(o.target)
	if err != nil {
		return err
	}

	tr := autofix.NewTransformer(autofix.Preset(target, o.dithering), nil, config.NewStore(opts))
	res, err := tr.Apply(data)
	if err != nil {
		return err
	}

	fmt.Printf("\nSource %s -> target %s\n", res.Source, res.Target)
	fmt.Printf("Lightmap fix: %v\n", res.Lightmap)
	fmt.Printf("Sampler fix:  %v\n", res.Sampler)
	if res.Output == nil {
		fmt.Println("No change needed.")
		return nil
	}
	fmt.Printf("Patched blobs: %d\n", res.Patched)
	fmt.Printf("Output: %d bytes, blake3 %s\n", len(res.Output), materialbin.Fingerprint(res.Output))

	if o.output == "" {
		return nil
	}
	if err := os.WriteFile(o.output, res.Output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Wrote %s\n", o.output)
	return nil
}

func printInfo(name string, data []byte) error {
	v, m, err := materialbin.Probe(data)
	if err != nil {
		return err
	}

	fmt.Printf("Material: %s (%s)\n", m.Name, name)
	if m.HasParent {
		fmt.Printf("Parent: %s\n", m.ParentName)
	}
	fmt.Printf("Version: %s\n", v)
	fmt.Printf("Size: %d bytes, blake3 %s\n", len(data), materialbin.Fingerprint(data))
	fmt.Printf("Samplers: %d, properties: %d, uniform overrides: %d\n",
		len(m.Samplers), len(m.Properties), len(m.UniformOverrides))

	fmt.Printf("\nPasses:\n")
	for _, p := range m.Passes {
		fmt.Printf("  %s (%d variants)\n", p.Name, len(p.Variants))
		for _, line := range stageSummary(p) {
			fmt.Printf("    %s\n", line)
		}
	}
	return nil
}

// stageSummary counts shaders per stage/platform across a pass's variants.
func stageSummary(p materialbin.Pass) []string {
	counts := make(map[string]int)
	code := make(map[string]int)
	for _, vr := range p.Variants {
		for _, s := range vr.Shaders {
			key := s.Key.StageName + "/" + s.Key.PlatformName
			counts[key]++
			if sh, err := bgfx.Parse(s.Blob); err == nil {
				code[key] += len(sh.Code)
			}
		}
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-24s x%-4d code %d bytes", k, counts[k], code[k]))
	}
	return lines
}

func shaderLabel(s materialbin.Shader) string {
	return strings.Join([]string{s.Key.StageName, s.Key.PlatformName}, "/")
}
