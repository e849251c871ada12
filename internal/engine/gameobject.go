package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind is the visual kind of a GameObject.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindText      Kind = "text"
	KindSprite    Kind = "sprite"
	KindEmpty     Kind = "empty"
)

// Kinds lists every kind in menu order.
var Kinds = []Kind{KindRectangle, KindCircle, KindText, KindSprite, KindEmpty}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Anchor names the point of an object that Transform.Position refers to.
type Anchor string

const (
	AnchorTopLeft  Anchor = "topleft"
	AnchorTop      Anchor = "top"
	AnchorTopRight Anchor = "topright"
	AnchorLeft     Anchor = "left"
	AnchorCenter   Anchor = "center"
	AnchorRight    Anchor = "right"
	AnchorBotLeft  Anchor = "botleft"
	AnchorBot      Anchor = "bot"
	AnchorBotRight Anchor = "botright"
)

var anchorFractions = map[Anchor]rl.Vector2{
	AnchorTopLeft:  {X: 0, Y: 0},
	AnchorTop:      {X: 0.5, Y: 0},
	AnchorTopRight: {X: 1, Y: 0},
	AnchorLeft:     {X: 0, Y: 0.5},
	AnchorCenter:   {X: 0.5, Y: 0.5},
	AnchorRight:    {X: 1, Y: 0.5},
	AnchorBotLeft:  {X: 0, Y: 1},
	AnchorBot:      {X: 0.5, Y: 1},
	AnchorBotRight: {X: 1, Y: 1},
}

// Fraction returns the anchor as a fraction of the object's size, (0,0) being
// the top-left corner. Unknown anchors behave like topleft.
func (a Anchor) Fraction() rl.Vector2 {
	if f, ok := anchorFractions[a]; ok {
		return f
	}
	return rl.Vector2{}
}

// Valid reports whether a is a known anchor name.
func (a Anchor) Valid() bool {
	_, ok := anchorFractions[a]
	return ok
}

// Transform places an object in absolute editor pixels.
// Position is the anchor point, not necessarily the top-left corner.
type Transform struct {
	Position rl.Vector2
	Size     rl.Vector2
	Rotation float32 // degrees
	Anchor   Anchor
}

// TopLeft returns the rendering corner derived from anchor and size.
func (t Transform) TopLeft() rl.Vector2 {
	f := t.Anchor.Fraction()
	return rl.Vector2Subtract(t.Position, rl.Vector2{X: f.X * t.Size.X, Y: f.Y * t.Size.Y})
}

// Center returns the visual center of the object.
func (t Transform) Center() rl.Vector2 {
	return rl.Vector2Add(t.TopLeft(), rl.Vector2Scale(t.Size, 0.5))
}

// GameObject is one node of the scene tree. Children are owned exclusively by
// their parent; there is no back-pointer.
type GameObject struct {
	ID         string
	Name       string
	Kind       Kind
	Transform  Transform
	Visible    bool
	Tags       []string
	Components []Component
	Children   []*GameObject
}

// NewGameObject creates a visible object with a 100x100 centered transform and
// no components.
func NewGameObject(id, name string, kind Kind) *GameObject {
	return &GameObject{
		ID:      id,
		Name:    name,
		Kind:    kind,
		Visible: true,
		Transform: Transform{
			Size:   rl.Vector2{X: 100, Y: 100},
			Anchor: AnchorCenter,
		},
		Tags:       make([]string, 0),
		Components: make([]Component, 0),
		Children:   make([]*GameObject, 0),
	}
}

// GetComponent returns the first component of type T, enabled or not.
func GetComponent[T Component](g *GameObject) T {
	var zero T
	for _, c := range g.Components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (g *GameObject) AddComponent(c Component) {
	g.Components = append(g.Components, c)
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone deep-copies the subtree rooted at g, ids included.
func (g *GameObject) Clone() *GameObject {
	out := &GameObject{
		ID:         g.ID,
		Name:       g.Name,
		Kind:       g.Kind,
		Transform:  g.Transform,
		Visible:    g.Visible,
		Tags:       append([]string{}, g.Tags...),
		Components: make([]Component, 0, len(g.Components)),
		Children:   make([]*GameObject, 0, len(g.Children)),
	}
	for _, c := range g.Components {
		out.Components = append(out.Components, c.Clone())
	}
	for _, child := range g.Children {
		out.Children = append(out.Children, child.Clone())
	}
	return out
}

// Walk visits g and its descendants depth-first, pre-order. Returning false
// from fn skips the node's children.
func (g *GameObject) Walk(fn func(n *GameObject) bool) {
	if !fn(g) {
		return
	}
	for _, child := range g.Children {
		child.Walk(fn)
	}
}

// IDs returns the ids of g and all its descendants in pre-order.
func (g *GameObject) IDs() []string {
	var ids []string
	g.Walk(func(n *GameObject) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Translate moves g and its whole subtree by delta.
func (g *GameObject) Translate(delta rl.Vector2) {
	g.Walk(func(n *GameObject) bool {
		n.Transform.Position = rl.Vector2Add(n.Transform.Position, delta)
		return true
	})
}
