package codegen

import (
	"strconv"
	"strings"
)

const fallbackName = "obj"

// reservedIdents cannot be used as object identifiers: JavaScript keywords and
// the names the emitted scene function declares itself.
var reservedIdents = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true, "let": true, "static": true, "await": true,
	"implements": true, "interface": true, "package": true, "private": true,
	"protected": true, "public": true, "arguments": true, "eval": true,
	"undefined": true, "self": true, "refs": true, "dt": true,
	localViewport: true, localLifecycle: true,
	// Runtime functions called by the generated code.
	"add": true, "rect": true, "circle": true, "text": true, "sprite": true,
	"color": true, "opacity": true, "pos": true, "anchor": true, "rotate": true,
	"area": true, "body": true, "vec2": true, "width": true, "height": true,
	"scene": true,
}

// Allocator derives generated-code identifiers and runtime tags from display
// names. One Allocator covers one generation pass over a whole scene, so
// identifiers are pairwise distinct, and so are tags.
type Allocator struct {
	idents map[string]bool
	tags   map[string]bool
}

func NewAllocator() *Allocator {
	return &Allocator{
		idents: make(map[string]bool),
		tags:   make(map[string]bool),
	}
}

// Allocate returns a fresh identifier and a fresh tag for name.
func (a *Allocator) Allocate(name string) (ident, tag string) {
	ident = claim(a.idents, sanitize(name, '_'), "_")
	tag = claim(a.tags, sanitize(name, '-'), "-")
	return ident, tag
}

// ReserveTags marks tags as taken so Allocate never hands them out.
func (a *Allocator) ReserveTags(tags ...string) {
	for _, t := range tags {
		if t != "" {
			a.tags[t] = true
		}
	}
}

// claim returns base, or base+sep+n with the smallest n >= 2 that is free,
// and records the result as taken.
func claim(taken map[string]bool, base, sep string) string {
	name := base
	for n := 2; taken[name] || (sep == "_" && reservedIdents[name]); n++ {
		name = base + sep + strconv.Itoa(n)
	}
	taken[name] = true
	return name
}

// sanitize lowercases name, keeps ASCII letters and digits and turns every
// other run of characters into a single sep. A result that does not start
// with a letter gets the fallback prefix.
func sanitize(name string, sep byte) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte(sep)
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	out := b.String()
	if out == "" {
		return fallbackName
	}
	if out[0] >= '0' && out[0] <= '9' {
		return fallbackName + string(sep) + out
	}
	return out
}

// SceneFileName returns the generated file name for a scene, e.g.
// "main_menu.js" for "Main Menu".
func SceneFileName(sceneName string) string {
	return sanitize(sceneName, '_') + ".js"
}
