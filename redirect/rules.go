package redirect

import "strings"

// MaterialExt marks compiled material files, which are routed through the
// transform and never cached.
const MaterialExt = ".material.bin"

// assetsPrefix is the top-level directory stripped before matching.
const assetsPrefix = "assets/"

// Rule maps a client asset prefix to a resource pack prefix.
type Rule struct {
	From string
	To   string
}

// DefaultRules returns the built-in redirect table. Order matters: the
// first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{From: "gui/dist/hbui/", To: "hbui/"},
		{From: "skin_packs/persona/", To: "persona/"},
		{From: "renderer/", To: "renderer/"},
		{From: "resource_packs/vanilla/cameras/", To: "vanilla_cameras/"},
	}
}

// Rewrite maps a logical asset path to its pack path using rules. The
// "assets/" prefix is ignored for matching.
func Rewrite(rules []Rule, path string) (string, bool) {
	stripped := strings.TrimPrefix(path, assetsPrefix)
	for _, r := range rules {
		if rest, ok := strings.CutPrefix(stripped, r.From); ok {
			return r.To + rest, true
		}
	}
	return "", false
}

// IsMaterial reports whether path names a compiled material.
func IsMaterial(path string) bool {
	return strings.HasSuffix(path, MaterialExt)
}
