package engine

import "sort"

// Viewport is the logical canvas a scene is authored against. It is the
// denominator of every relative coordinate in generated code.
type Viewport struct {
	Width  float32
	Height float32
	Preset string
}

// CustomPreset marks a viewport whose size was entered by hand.
const CustomPreset = "custom"

// ViewportPresets are the named sizes offered by the editor.
var ViewportPresets = map[string]Viewport{
	"mobile-portrait":  {Width: 360, Height: 640, Preset: "mobile-portrait"},
	"mobile-landscape": {Width: 640, Height: 360, Preset: "mobile-landscape"},
	"tablet":           {Width: 768, Height: 1024, Preset: "tablet"},
	"desktop-hd":       {Width: 1280, Height: 720, Preset: "desktop-hd"},
	"desktop-fhd":      {Width: 1920, Height: 1080, Preset: "desktop-fhd"},
	"square":           {Width: 800, Height: 800, Preset: "square"},
}

// DefaultPreset is used when a scene does not name a usable viewport.
const DefaultPreset = "mobile-portrait"

// PresetNames returns the preset names sorted alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(ViewportPresets))
	for name := range ViewportPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveViewport returns the viewport for a preset name. A custom or unknown
// preset keeps the given size; a non-positive size falls back to the default
// preset.
func ResolveViewport(preset string, width, height float32) Viewport {
	if vp, ok := ViewportPresets[preset]; ok {
		return vp
	}
	if width > 0 && height > 0 {
		if preset == "" {
			preset = CustomPreset
		}
		return Viewport{Width: width, Height: height, Preset: preset}
	}
	return ViewportPresets[DefaultPreset]
}

// Scene is one named document of objects plus its viewport.
type Scene struct {
	Name     string
	Viewport Viewport
	Objects  []*GameObject
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:     name,
		Viewport: ViewportPresets[DefaultPreset],
		Objects:  make([]*GameObject, 0),
	}
}

// Walk visits every object of the scene depth-first, pre-order.
func (s *Scene) Walk(fn func(n *GameObject) bool) {
	for _, g := range s.Objects {
		g.Walk(fn)
	}
}

// FindByID returns the object with the given id anywhere in the tree.
func (s *Scene) FindByID(id string) *GameObject {
	var found *GameObject
	s.Walk(func(n *GameObject) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByTag returns every object carrying the author tag.
func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	s.Walk(func(n *GameObject) bool {
		if n.HasTag(tag) {
			result = append(result, n)
		}
		return true
	})
	return result
}
