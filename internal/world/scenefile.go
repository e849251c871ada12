package world

import (
	"encoding/json"
	"fmt"
	"os"
	"scenestudio/internal/engine"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// --- JSON types ---

type SceneFile struct {
	Name     string      `json:"name"`
	Viewport ViewportDef `json:"viewport"`
	Objects  []ObjectDef `json:"objects"`
}

type ViewportDef struct {
	Preset string  `json:"preset"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

type TransformDef struct {
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Width    float32 `json:"width"`
	Height   float32 `json:"height"`
	Rotation float32 `json:"rotation"`
	Anchor   string  `json:"anchor"`
}

type ObjectDef struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Transform  TransformDef      `json:"transform"`
	Visible    *bool             `json:"visible,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Components []json.RawMessage `json:"components"`
	Children   []ObjectDef       `json:"children,omitempty"`
}

// --- Color mapping ---

var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Pink":      rl.Pink,
	"SkyBlue":   rl.SkyBlue,
	"Lime":      rl.Lime,
	"Magenta":   rl.Magenta,
	"White":     rl.White,
	"LightGray": rl.LightGray,
	"Gray":      rl.Gray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"Maroon":    rl.Maroon,
	"Gold":      rl.Gold,
}

var nameByColor map[rl.Color]string

func init() {
	nameByColor = make(map[rl.Color]string, len(colorByName))
	for name, c := range colorByName {
		nameByColor[c] = name
	}
}

// lookupColor accepts a palette name or #rrggbb / #rrggbbaa. Anything else is white.
func lookupColor(name string) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	if c, ok := parseHexColor(name); ok {
		return c
	}
	return rl.White
}

func lookupColorName(c rl.Color) string {
	if name, ok := nameByColor[c]; ok {
		return name
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func parseHexColor(s string) (rl.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return rl.Color{}, false
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rl.Color{}, false
	}
	return rl.NewColor(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), true
}

// --- Loading ---

// ReadScene loads a scene document from disk. Warnings list records that were
// skipped or repaired; they never fail the load.
func ReadScene(path string) (*engine.Scene, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read scene: %w", err)
	}
	return DecodeScene(data)
}

// DecodeScene parses a scene document and normalizes every object.
func DecodeScene(data []byte) (*engine.Scene, []string, error) {
	var sf SceneFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, nil, fmt.Errorf("parse scene: %w", err)
	}

	scene := engine.NewScene(sf.Name)
	scene.Viewport = engine.ResolveViewport(sf.Viewport.Preset, sf.Viewport.Width, sf.Viewport.Height)

	var warnings []string
	for _, objDef := range sf.Objects {
		scene.Objects = append(scene.Objects, decodeObject(objDef, &warnings))
	}
	for _, g := range scene.Objects {
		engine.NormalizeObject(g)
	}
	return scene, warnings, nil
}

func decodeObject(def ObjectDef, warnings *[]string) *engine.GameObject {
	g := engine.NewGameObject(def.ID, def.Name, engine.Kind(def.Kind))
	g.Visible = def.Visible == nil || *def.Visible
	g.Transform = engine.Transform{
		Position: rl.Vector2{X: def.Transform.X, Y: def.Transform.Y},
		Size:     rl.Vector2{X: def.Transform.Width, Y: def.Transform.Height},
		Rotation: def.Transform.Rotation,
		Anchor:   engine.Anchor(def.Transform.Anchor),
	}
	if def.Tags != nil {
		g.Tags = append(g.Tags, def.Tags...)
	}

	for i, raw := range def.Components {
		c, err := decodeComponent(raw)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("object %q component %d skipped: %v", def.Name, i, err))
			continue
		}
		g.AddComponent(c)
	}

	for _, childDef := range def.Children {
		g.Children = append(g.Children, decodeObject(childDef, warnings))
	}
	return g
}

// --- Saving ---

// WriteScene saves s as indented JSON.
func WriteScene(path string, s *engine.Scene) error {
	data, err := EncodeScene(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

// EncodeScene serializes s. Script and sprite components backed by project
// files keep only the path.
func EncodeScene(s *engine.Scene) ([]byte, error) {
	sf := SceneFile{
		Name: s.Name,
		Viewport: ViewportDef{
			Preset: s.Viewport.Preset,
			Width:  s.Viewport.Width,
			Height: s.Viewport.Height,
		},
		Objects: make([]ObjectDef, 0, len(s.Objects)),
	}
	for _, g := range s.Objects {
		def, err := encodeObject(g)
		if err != nil {
			return nil, err
		}
		sf.Objects = append(sf.Objects, def)
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return append(data, '\n'), nil
}

func encodeObject(g *engine.GameObject) (ObjectDef, error) {
	visible := g.Visible
	def := ObjectDef{
		ID:   g.ID,
		Name: g.Name,
		Kind: string(g.Kind),
		Transform: TransformDef{
			X:        g.Transform.Position.X,
			Y:        g.Transform.Position.Y,
			Width:    g.Transform.Size.X,
			Height:   g.Transform.Size.Y,
			Rotation: g.Transform.Rotation,
			Anchor:   string(g.Transform.Anchor),
		},
		Visible:    &visible,
		Tags:       g.Tags,
		Components: make([]json.RawMessage, 0, len(g.Components)),
	}

	for _, c := range g.Components {
		raw, err := encodeComponent(c)
		if err != nil {
			return ObjectDef{}, fmt.Errorf("object %q: %w", g.Name, err)
		}
		def.Components = append(def.Components, raw)
	}
	for _, child := range g.Children {
		childDef, err := encodeObject(child)
		if err != nil {
			return ObjectDef{}, err
		}
		def.Children = append(def.Children, childDef)
	}
	return def, nil
}
