package engine

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Defaults applied by Normalize.
const (
	DefaultTextSize    = 16
	DefaultTextAlign   = "left"
	DefaultFriction    = 1
	DefaultRestitution = 0
	DefaultMass        = 1
	ShapeAuto          = "auto"
)

// Normalize returns a canonical copy of c with every optional field filled in.
// It never fails and Normalize(Normalize(c)) equals Normalize(c).
func Normalize(c Component) Component {
	if c == nil {
		return nil
	}
	out := c.Clone()
	switch comp := out.(type) {
	case *Shape:
		if comp.ShapeType != ShapeCircle {
			comp.ShapeType = ShapeRectangle
		}
	case *Sprite:
		if comp.OriginX == nil {
			comp.OriginX = Float(comp.Width / 2)
		}
		if comp.OriginY == nil {
			comp.OriginY = Float(comp.Height / 2)
		}
	case *Text:
		if comp.Size <= 0 {
			comp.Size = DefaultTextSize
		}
		if comp.Align == "" {
			comp.Align = DefaultTextAlign
		}
	case *Area:
		normalizeArea(comp)
	case *Body:
		if comp.Mass <= 0 {
			comp.Mass = DefaultMass
		}
	case *Script:
		if comp.Meta == nil {
			comp.Meta = &ScriptMeta{IncludeReady: true, IncludeUpdate: true}
		}
		if comp.Meta.References == nil {
			comp.Meta.References = []string{}
		}
	}
	return out
}

func normalizeArea(a *Area) {
	if a.Shape != nil && *a.Shape != ShapeRectangle && *a.Shape != ShapeCircle {
		a.Shape = nil
	}
	if a.Offset == nil {
		a.Offset = &rl.Vector2{}
	}
	if a.Scale == nil {
		a.Scale = &rl.Vector2{X: 1, Y: 1}
	}
	a.CollisionIgnoreTags = uniqueSorted(a.CollisionIgnoreTags)
	if a.Restitution == nil {
		a.Restitution = Float(DefaultRestitution)
	}
	if a.Friction == nil {
		a.Friction = Float(DefaultFriction)
	}
}

// uniqueSorted treats tags as a set: sorted, without duplicates or empties,
// never nil.
func uniqueSorted(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// NormalizeObject normalizes every component of g and its descendants in place
// and fills structural defaults (kind, anchor, non-nil slices).
func NormalizeObject(g *GameObject) {
	g.Walk(func(n *GameObject) bool {
		if !n.Kind.Valid() {
			n.Kind = KindEmpty
		}
		if !n.Transform.Anchor.Valid() {
			n.Transform.Anchor = AnchorTopLeft
		}
		if n.Tags == nil {
			n.Tags = make([]string, 0)
		}
		if n.Children == nil {
			n.Children = make([]*GameObject, 0)
		}
		comps := make([]Component, 0, len(n.Components))
		for _, c := range n.Components {
			if c == nil {
				continue
			}
			comps = append(comps, Normalize(c))
		}
		n.Components = comps
		return true
	})
}

// NormalizeScene normalizes every object of s in place.
func NormalizeScene(s *Scene) {
	for _, g := range s.Objects {
		NormalizeObject(g)
	}
}
