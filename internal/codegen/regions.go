package codegen

import "strings"

// RegionKind names a marker-delimited span of a generated file.
type RegionKind string

const (
	RegionAutoImports RegionKind = "auto-imports"
	RegionUserImports RegionKind = "user-imports"
	RegionAutoBody    RegionKind = "auto-body"
	RegionUserBody    RegionKind = "user-body"
)

const markerPrefix = "// @scenestudio:"

// userOwned reports whether a region's content survives regeneration.
func (k RegionKind) userOwned() bool {
	return k == RegionUserImports || k == RegionUserBody
}

func (k RegionKind) begin() string { return markerPrefix + string(k) + ":begin" }

func (k RegionKind) end() string { return markerPrefix + string(k) + ":end" }

var placeholders = map[RegionKind]string{
	RegionUserImports: "// Add your own imports here. This region is kept when the scene is regenerated.\n",
	RegionUserBody:    "  // Add your own scene code here. This region is kept when the scene is regenerated.\n",
}

// ScanRegions returns the content of every complete user-owned region found
// in a previously generated file. Content runs from the line after the begin
// marker up to the end marker, without the end marker's indentation.
func ScanRegions(prior string) map[RegionKind]string {
	found := make(map[RegionKind]string)
	for _, kind := range []RegionKind{RegionUserImports, RegionUserBody} {
		if content, ok := regionContent(prior, kind); ok {
			found[kind] = content
		}
	}
	return found
}

func regionContent(text string, kind RegionKind) (string, bool) {
	b := strings.Index(text, kind.begin())
	if b < 0 {
		return "", false
	}
	nl := strings.IndexByte(text[b:], '\n')
	if nl < 0 {
		return "", false
	}
	start := b + nl + 1
	e := strings.Index(text[start:], kind.end())
	if e < 0 {
		return "", false
	}
	content := text[start : start+e]
	// Only the end marker's own indentation is dropped.
	last := strings.LastIndexByte(content, '\n') + 1
	if strings.TrimLeft(content[last:], " \t") == "" {
		content = content[:last]
	}
	return content, true
}

// userRegion returns what goes between a user region's markers: the prior
// content when there is one, the placeholder otherwise.
func userRegion(kind RegionKind, prior map[RegionKind]string) string {
	content, ok := prior[kind]
	if !ok {
		return placeholders[kind]
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content
}
