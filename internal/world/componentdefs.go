package world

import (
	"encoding/json"
	"fmt"
	"scenestudio/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// --- Component JSON records ---
//
// Records written by older editor versions may lack optional fields or use
// legacy keys; decodeComponent accepts both and hands the result to
// engine.Normalize.

type componentHeader struct {
	Type    string `json:"type"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type vec2Def struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type shapeDef struct {
	Type      string `json:"type"`
	Enabled   *bool  `json:"enabled,omitempty"`
	ShapeType string `json:"shapeType"`
	Color     string `json:"color"`
	Filled    *bool  `json:"filled,omitempty"`
}

type spriteDef struct {
	Type            string   `json:"type"`
	Enabled         *bool    `json:"enabled,omitempty"`
	ImagePath       string   `json:"imagePath,omitempty"`
	Image           string   `json:"image,omitempty"` // legacy name of imagePath
	InlineImageData string   `json:"inlineImageData,omitempty"`
	Width           float32  `json:"width"`
	Height          float32  `json:"height"`
	OriginX         *float32 `json:"originX,omitempty"`
	OriginY         *float32 `json:"originY,omitempty"`
}

type textDef struct {
	Type    string  `json:"type"`
	Enabled *bool   `json:"enabled,omitempty"`
	Text    string  `json:"text"`
	Size    float32 `json:"size,omitempty"`
	Align   string  `json:"align,omitempty"`
	Color   string  `json:"color,omitempty"`
}

type areaDef struct {
	Type                string          `json:"type"`
	Enabled             *bool           `json:"enabled,omitempty"`
	Shape               *string         `json:"shape,omitempty"`
	Width               *float32        `json:"width,omitempty"`
	Height              *float32        `json:"height,omitempty"`
	Radius              *float32        `json:"radius,omitempty"`
	Offset              *vec2Def        `json:"offset,omitempty"`
	Scale               json.RawMessage `json:"scale,omitempty"`
	CollisionIgnoreTags []string        `json:"collisionIgnoreTags,omitempty"`
	Restitution         *float32        `json:"restitution,omitempty"`
	Friction            *float32        `json:"friction,omitempty"`
}

type bodyDef struct {
	Type         string   `json:"type"`
	Enabled      *bool    `json:"enabled,omitempty"`
	Mass         float32  `json:"mass,omitempty"`
	Gravity      *float32 `json:"gravity,omitempty"`
	IsStatic     bool     `json:"isStatic,omitempty"`
	Velocity     *vec2Def `json:"velocity,omitempty"`
	Acceleration *vec2Def `json:"acceleration,omitempty"`
}

type scriptMetaDef struct {
	IncludeReady  *bool    `json:"includeReady,omitempty"`
	IncludeUpdate *bool    `json:"includeUpdate,omitempty"`
	References    []string `json:"references"`
}

type scriptDef struct {
	Type       string         `json:"type"`
	Enabled    *bool          `json:"enabled,omitempty"`
	ScriptPath string         `json:"scriptPath,omitempty"`
	InlineCode string         `json:"inlineCode,omitempty"`
	Code       string         `json:"code,omitempty"` // legacy name of inlineCode
	Metadata   *scriptMetaDef `json:"metadata,omitempty"`
	ScriptMeta *scriptMetaDef `json:"scriptMeta,omitempty"` // legacy name of metadata
}

// --- Decoding ---

// decodeComponent turns a persisted record into a normalized component.
func decodeComponent(raw json.RawMessage) (engine.Component, error) {
	var header componentHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("parse component: %w", err)
	}
	base := engine.BaseComponent{Enabled: header.Enabled == nil || *header.Enabled}

	var c engine.Component
	switch engine.ComponentType(header.Type) {
	case engine.TypeShape:
		var def shapeDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("parse shape: %w", err)
		}
		c = &engine.Shape{
			BaseComponent: base,
			ShapeType:     engine.ShapeType(def.ShapeType),
			Color:         lookupColor(def.Color),
			Filled:        def.Filled == nil || *def.Filled,
		}

	case engine.TypeSprite:
		var def spriteDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("parse sprite: %w", err)
		}
		path := def.ImagePath
		if path == "" {
			path = def.Image
		}
		c = &engine.Sprite{
			BaseComponent:   base,
			ImagePath:       path,
			InlineImageData: def.InlineImageData,
			Width:           def.Width,
			Height:          def.Height,
			OriginX:         def.OriginX,
			OriginY:         def.OriginY,
		}

	case engine.TypeText:
		var def textDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("parse text: %w", err)
		}
		c = &engine.Text{
			BaseComponent: base,
			Text:          def.Text,
			Size:          def.Size,
			Align:         def.Align,
			Color:         lookupColor(def.Color),
		}

	case engine.TypeArea:
		var def areaDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("parse area: %w", err)
		}
		area := &engine.Area{
			BaseComponent:       base,
			Width:               def.Width,
			Height:              def.Height,
			Radius:              def.Radius,
			CollisionIgnoreTags: def.CollisionIgnoreTags,
			Restitution:         def.Restitution,
			Friction:            def.Friction,
		}
		if def.Shape != nil && *def.Shape != engine.ShapeAuto {
			s := engine.ShapeType(*def.Shape)
			area.Shape = &s
		}
		if def.Offset != nil {
			area.Offset = engine.Vec(def.Offset.X, def.Offset.Y)
		}
		scale, err := decodeScale(def.Scale)
		if err != nil {
			return nil, err
		}
		area.Scale = scale
		c = area

	case engine.TypeBody:
		var def bodyDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("parse body: %w", err)
		}
		body := &engine.Body{
			BaseComponent: base,
			Mass:          def.Mass,
			Gravity:       1,
			IsStatic:      def.IsStatic,
		}
		if def.Gravity != nil {
			body.Gravity = *def.Gravity
		}
		if def.Velocity != nil {
			body.Velocity = rl.Vector2{X: def.Velocity.X, Y: def.Velocity.Y}
		}
		if def.Acceleration != nil {
			body.Acceleration = rl.Vector2{X: def.Acceleration.X, Y: def.Acceleration.Y}
		}
		c = body

	case engine.TypeScript:
		var def scriptDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("parse script: %w", err)
		}
		code := def.InlineCode
		if code == "" {
			code = def.Code
		}
		script := &engine.Script{BaseComponent: base, ScriptPath: def.ScriptPath, Code: code}
		meta := def.Metadata
		if meta == nil {
			meta = def.ScriptMeta
		}
		if meta != nil {
			script.Meta = &engine.ScriptMeta{
				IncludeReady:  meta.IncludeReady == nil || *meta.IncludeReady,
				IncludeUpdate: meta.IncludeUpdate == nil || *meta.IncludeUpdate,
				References:    meta.References,
			}
		}
		c = script

	default:
		return nil, fmt.Errorf("unknown component type %q", header.Type)
	}

	return engine.Normalize(c), nil
}

// decodeScale accepts either a number (uniform scale) or {"x":..,"y":..}.
func decodeScale(raw json.RawMessage) (*rl.Vector2, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var uniform float32
	if err := json.Unmarshal(raw, &uniform); err == nil {
		return engine.Vec(uniform, uniform), nil
	}
	var v vec2Def
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse area scale: %w", err)
	}
	return engine.Vec(v.X, v.Y), nil
}

// --- Encoding ---

func encodeComponent(c engine.Component) (json.RawMessage, error) {
	enabled := c.IsEnabled()
	var def any

	switch comp := c.(type) {
	case *engine.Shape:
		filled := comp.Filled
		def = shapeDef{
			Type:      string(engine.TypeShape),
			Enabled:   &enabled,
			ShapeType: string(comp.ShapeType),
			Color:     lookupColorName(comp.Color),
			Filled:    &filled,
		}

	case *engine.Sprite:
		d := spriteDef{
			Type:    string(engine.TypeSprite),
			Enabled: &enabled,
			Width:   comp.Width,
			Height:  comp.Height,
			OriginX: comp.OriginX,
			OriginY: comp.OriginY,
		}
		// A project asset wins over inline pixels.
		if comp.ImagePath != "" {
			d.ImagePath = comp.ImagePath
		} else {
			d.InlineImageData = comp.InlineImageData
		}
		def = d

	case *engine.Text:
		def = textDef{
			Type:    string(engine.TypeText),
			Enabled: &enabled,
			Text:    comp.Text,
			Size:    comp.Size,
			Align:   comp.Align,
			Color:   lookupColorName(comp.Color),
		}

	case *engine.Area:
		d := areaDef{
			Type:                string(engine.TypeArea),
			Enabled:             &enabled,
			Width:               comp.Width,
			Height:              comp.Height,
			Radius:              comp.Radius,
			CollisionIgnoreTags: comp.CollisionIgnoreTags,
			Restitution:         comp.Restitution,
			Friction:            comp.Friction,
		}
		if comp.Shape != nil {
			s := string(*comp.Shape)
			d.Shape = &s
		}
		if comp.Offset != nil {
			d.Offset = &vec2Def{X: comp.Offset.X, Y: comp.Offset.Y}
		}
		if comp.Scale != nil {
			scale, err := json.Marshal(vec2Def{X: comp.Scale.X, Y: comp.Scale.Y})
			if err != nil {
				return nil, err
			}
			d.Scale = scale
		}
		def = d

	case *engine.Body:
		gravity := comp.Gravity
		def = bodyDef{
			Type:         string(engine.TypeBody),
			Enabled:      &enabled,
			Mass:         comp.Mass,
			Gravity:      &gravity,
			IsStatic:     comp.IsStatic,
			Velocity:     &vec2Def{X: comp.Velocity.X, Y: comp.Velocity.Y},
			Acceleration: &vec2Def{X: comp.Acceleration.X, Y: comp.Acceleration.Y},
		}

	case *engine.Script:
		d := scriptDef{Type: string(engine.TypeScript), Enabled: &enabled}
		// A script backed by a file stores only the path.
		if comp.ScriptPath != "" {
			d.ScriptPath = comp.ScriptPath
		} else {
			d.InlineCode = comp.Code
		}
		if comp.Meta != nil {
			ready, update := comp.Meta.IncludeReady, comp.Meta.IncludeUpdate
			d.Metadata = &scriptMetaDef{
				IncludeReady:  &ready,
				IncludeUpdate: &update,
				References:    comp.Meta.References,
			}
		}
		def = d

	default:
		return nil, fmt.Errorf("unsupported component %T", c)
	}

	return json.Marshal(def)
}
