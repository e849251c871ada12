package codegen

import (
	"fmt"
	"math"
	"scenestudio/internal/engine"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Ref is the viewport dimension a pixel quantity is expressed against.
type Ref int

const (
	// RefWidth is used for horizontal and vertical quantities alike so that
	// generated scenes scale uniformly.
	RefWidth Ref = iota
	RefHeight
	// RefMin is used for radii.
	RefMin
)

// ratioScale keeps four decimal digits of a ratio.
const ratioScale = 1e4

// Tolerance bounds |Decode(Encode(v)) - v| as a fraction of the reference
// dimension.
const Tolerance = 1e-4

func (r Ref) expr() string {
	switch r {
	case RefHeight:
		return localViewport + ".height"
	case RefMin:
		return "Math.min(" + localViewport + ".width, " + localViewport + ".height)"
	}
	return localViewport + ".width"
}

func (r Ref) value(vp engine.Viewport) float64 {
	switch r {
	case RefHeight:
		return float64(vp.Height)
	case RefMin:
		return math.Min(float64(vp.Width), float64(vp.Height))
	}
	return float64(vp.Width)
}

var refs = []Ref{RefMin, RefWidth, RefHeight}

// Encode expresses the pixel value v relative to ref: "0", the reference
// itself, its negation, or the reference times a ratio rounded to four
// decimals. A degenerate viewport falls back to the literal pixel value.
func Encode(v float64, ref Ref, vp engine.Viewport) string {
	d := ref.value(vp)
	switch {
	case v == 0:
		return "0"
	case d <= 0:
		return formatNumber(v)
	case v == d:
		return ref.expr()
	case v == -d:
		return "-" + ref.expr()
	}
	f := math.Round(v/d*ratioScale) / ratioScale
	if f == 0 {
		f = 0 // drop the sign of negative zero
	}
	return ref.expr() + " * " + formatNumber(f)
}

// Decode evaluates an expression produced by Encode against vp.
func Decode(expr string, vp engine.Viewport) (float64, error) {
	s := strings.TrimSpace(expr)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	sign := 1.0
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign = -1
		s = rest
	}
	for _, ref := range refs {
		e := ref.expr()
		if s == e {
			return sign * ref.value(vp), nil
		}
		if rest, ok := strings.CutPrefix(s, e+" * "); ok {
			f, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				return 0, fmt.Errorf("decode %q: bad ratio: %w", expr, err)
			}
			return sign * ref.value(vp) * f, nil
		}
	}
	return 0, fmt.Errorf("decode %q: not a viewport expression", expr)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Transformer turns authoring-space pixels into viewport-relative source
// expressions for one scene.
type Transformer struct {
	Viewport engine.Viewport
}

// Scalar encodes a horizontal or vertical length.
func (t Transformer) Scalar(v float32) string {
	return Encode(float64(v), RefWidth, t.Viewport)
}

// Radius encodes a radius against the smaller viewport side.
func (t Transformer) Radius(v float32) string {
	return Encode(float64(v), RefMin, t.Viewport)
}

// Pair encodes x and y as "X, Y".
func (t Transformer) Pair(v rl.Vector2) string {
	return t.Scalar(v.X) + ", " + t.Scalar(v.Y)
}

// Vec2 encodes a vector as a vec2(...) call.
func (t Transformer) Vec2(v rl.Vector2) string {
	return "vec2(" + t.Pair(v) + ")"
}

// Pos encodes a position component.
func (t Transformer) Pos(v rl.Vector2) string {
	return "pos(" + t.Pair(v) + ")"
}

// LocalPosition returns g's anchor point relative to its parent's anchor
// point, or g's absolute position for a root object.
func LocalPosition(g, parent *engine.GameObject) rl.Vector2 {
	if parent == nil {
		return g.Transform.Position
	}
	return rl.Vector2Subtract(g.Transform.Position, parent.Transform.Position)
}

// SpriteOrigin returns the sprite origin scaled to the object's size, relative
// to the object's anchor point, in pixels.
func SpriteOrigin(s *engine.Sprite, tr engine.Transform) rl.Vector2 {
	fx, fy := float32(0.5), float32(0.5)
	if s.Width > 0 && s.OriginX != nil {
		fx = *s.OriginX / s.Width
	}
	if s.Height > 0 && s.OriginY != nil {
		fy = *s.OriginY / s.Height
	}
	a := tr.Anchor.Fraction()
	return rl.Vector2{X: (fx - a.X) * tr.Size.X, Y: (fy - a.Y) * tr.Size.Y}
}

// visualCenter returns the object's center relative to its anchor point.
func visualCenter(tr engine.Transform) rl.Vector2 {
	return rl.Vector2Subtract(tr.Center(), tr.Position)
}

// ColliderRect returns the top-left corner, relative to the anchor point, of
// a w x h collider centered on the object.
func ColliderRect(tr engine.Transform, w, h float32) rl.Vector2 {
	return rl.Vector2Subtract(visualCenter(tr), rl.Vector2{X: w / 2, Y: h / 2})
}

// ColliderCenter returns the center of a circular collider relative to the
// anchor point.
func ColliderCenter(tr engine.Transform) rl.Vector2 {
	return visualCenter(tr)
}
