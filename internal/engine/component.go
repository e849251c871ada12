package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ComponentType identifies a component variant. It is also the persisted
// "type" value of a component record.
type ComponentType string

const (
	TypeShape  ComponentType = "shape"
	TypeSprite ComponentType = "sprite"
	TypeText   ComponentType = "text"
	TypeArea   ComponentType = "area"
	TypeBody   ComponentType = "body"
	TypeScript ComponentType = "script"
)

// Component is a closed set of variants: *Shape, *Sprite, *Text, *Area, *Body
// and *Script. Code that branches on components uses an exhaustive type switch.
type Component interface {
	Type() ComponentType
	IsEnabled() bool
	SetEnabled(enabled bool)
	// Clone returns a deep copy sharing no slices or pointers with the receiver.
	Clone() Component
	component()
}

// BaseComponent carries the state common to every variant.
type BaseComponent struct {
	Enabled bool
}

func (b *BaseComponent) IsEnabled() bool {
	return b.Enabled
}

func (b *BaseComponent) SetEnabled(enabled bool) {
	b.Enabled = enabled
}

func (b *BaseComponent) component() {}

// ShapeType is the geometric primitive of a Shape or an Area.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
)

type Shape struct {
	BaseComponent
	ShapeType ShapeType
	Color     rl.Color
	Filled    bool
}

func (c *Shape) Type() ComponentType { return TypeShape }

func (c *Shape) Clone() Component {
	out := *c
	return &out
}

// Sprite references an image either by project-relative path or by inline
// data (a data URL). Width and Height are the intrinsic image size; the
// origin is measured in those pixels.
type Sprite struct {
	BaseComponent
	ImagePath       string
	InlineImageData string
	Width           float32
	Height          float32
	OriginX         *float32
	OriginY         *float32
}

func (c *Sprite) Type() ComponentType { return TypeSprite }

func (c *Sprite) Clone() Component {
	out := *c
	out.OriginX = cloneFloat(c.OriginX)
	out.OriginY = cloneFloat(c.OriginY)
	return &out
}

type Text struct {
	BaseComponent
	Text  string
	Size  float32
	Align string
	Color rl.Color
}

func (c *Text) Type() ComponentType { return TypeText }

func (c *Text) Clone() Component {
	out := *c
	return &out
}

// Area is a collider. A nil Shape means the collision shape is inferred from
// the object's visual shape.
type Area struct {
	BaseComponent
	Shape               *ShapeType
	Width               *float32
	Height              *float32
	Radius              *float32
	Offset              *rl.Vector2
	Scale               *rl.Vector2
	CollisionIgnoreTags []string
	Restitution         *float32
	Friction            *float32
}

func (c *Area) Type() ComponentType { return TypeArea }

func (c *Area) Clone() Component {
	out := *c
	if c.Shape != nil {
		s := *c.Shape
		out.Shape = &s
	}
	out.Width = cloneFloat(c.Width)
	out.Height = cloneFloat(c.Height)
	out.Radius = cloneFloat(c.Radius)
	out.Offset = cloneVec(c.Offset)
	out.Scale = cloneVec(c.Scale)
	if c.CollisionIgnoreTags != nil {
		out.CollisionIgnoreTags = append([]string{}, c.CollisionIgnoreTags...)
	}
	out.Restitution = cloneFloat(c.Restitution)
	out.Friction = cloneFloat(c.Friction)
	return &out
}

// Body is a physics body. Gravity is a multiplier of the runtime's gravity.
type Body struct {
	BaseComponent
	Mass         float32
	Gravity      float32
	IsStatic     bool
	Velocity     rl.Vector2
	Acceleration rl.Vector2
}

func (c *Body) Type() ComponentType { return TypeBody }

func (c *Body) Clone() Component {
	out := *c
	return &out
}

// ScriptMeta controls which lifecycle sections are extracted from a script
// and which other objects (by id) it references.
type ScriptMeta struct {
	IncludeReady  bool
	IncludeUpdate bool
	References    []string
}

// Script holds behaviour code. When ScriptPath is set the code lives in that
// project file and Code is only a hydrated copy.
type Script struct {
	BaseComponent
	ScriptPath string
	Code       string
	Meta       *ScriptMeta
}

func (c *Script) Type() ComponentType { return TypeScript }

func (c *Script) Clone() Component {
	out := *c
	if c.Meta != nil {
		meta := *c.Meta
		if c.Meta.References != nil {
			meta.References = append([]string{}, c.Meta.References...)
		}
		out.Meta = &meta
	}
	return &out
}

func cloneFloat(v *float32) *float32 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneVec(v *rl.Vector2) *rl.Vector2 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Float returns a pointer to v, for optional component fields.
func Float(v float32) *float32 {
	return &v
}

// Vec returns a pointer to the vector (x, y), for optional component fields.
func Vec(x, y float32) *rl.Vector2 {
	return &rl.Vector2{X: x, Y: y}
}

// NewComponent returns the editor default for a component type, as offered in
// the Add Component menu. Unknown types return nil.
func NewComponent(t ComponentType) Component {
	switch t {
	case TypeShape:
		return &Shape{BaseComponent: BaseComponent{Enabled: true}, ShapeType: ShapeRectangle, Color: rl.White, Filled: true}
	case TypeSprite:
		return &Sprite{BaseComponent: BaseComponent{Enabled: true}, Width: 64, Height: 64}
	case TypeText:
		return &Text{BaseComponent: BaseComponent{Enabled: true}, Text: "Text", Size: 16, Align: "left", Color: rl.White}
	case TypeArea:
		return &Area{BaseComponent: BaseComponent{Enabled: true}}
	case TypeBody:
		return &Body{BaseComponent: BaseComponent{Enabled: true}, Mass: 1, Gravity: 1}
	case TypeScript:
		return &Script{BaseComponent: BaseComponent{Enabled: true}}
	}
	return nil
}

// defaultComponents returns the components a freshly created object of kind k
// starts with.
func defaultComponents(k Kind) []Component {
	switch k {
	case KindRectangle:
		return []Component{NewComponent(TypeShape)}
	case KindCircle:
		shape := NewComponent(TypeShape).(*Shape)
		shape.ShapeType = ShapeCircle
		return []Component{shape}
	case KindText:
		return []Component{NewComponent(TypeText)}
	case KindSprite:
		return []Component{NewComponent(TypeSprite)}
	}
	return []Component{}
}
