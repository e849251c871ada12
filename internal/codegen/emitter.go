package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"scenestudio/internal/engine"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Locals declared by every generated scene function.
const (
	localViewport  = "viewport"
	localLifecycle = "lifecycle"
)

const indentUnit = "  "

// Options configure a generation pass.
type Options struct {
	// RuntimeImport is the module imported for its side effects in the
	// auto-owned import region, e.g. "kaboom/global". Empty emits no import.
	RuntimeImport string
}

// Diagnostic is a non-fatal problem found while generating.
type Diagnostic struct {
	ObjectID string
	Message  string
}

func (d Diagnostic) String() string {
	if d.ObjectID == "" {
		return d.Message
	}
	return d.ObjectID + ": " + d.Message
}

// Output is the result of one generation pass.
type Output struct {
	Source      []byte
	FuncName    string
	Idents      map[string]string // object id -> identifier
	Tags        map[string]string // object id -> runtime tag
	Diagnostics []Diagnostic
}

// emitter holds the state of one pass over one scene.
type emitter struct {
	buf    bytes.Buffer
	indent int

	tr        Transformer
	alloc     *Allocator
	objects   map[string]*engine.GameObject
	out       *Output
	hasReady  bool
	hasUpdate bool
}

// Generate compiles scene into scene-definition source. prior is the
// previously generated file, or nil; its user-owned regions are carried over
// verbatim. The scene is not modified.
func Generate(scene *engine.Scene, prior []byte, opts Options) (*Output, error) {
	if scene == nil {
		return nil, fmt.Errorf("generate: nil scene")
	}

	roots := make([]*engine.GameObject, 0, len(scene.Objects))
	for _, g := range scene.Objects {
		clone := g.Clone()
		engine.NormalizeObject(clone)
		roots = append(roots, clone)
	}

	e := &emitter{
		tr:      Transformer{Viewport: scene.Viewport},
		alloc:   NewAllocator(),
		objects: make(map[string]*engine.GameObject),
		out: &Output{
			FuncName: SceneFuncName(scene.Name),
			Idents:   make(map[string]string),
			Tags:     make(map[string]string),
		},
	}
	e.allocate(roots)

	userRegions := ScanRegions(string(prior))

	e.region(RegionAutoImports, userRegions, func() {
		if opts.RuntimeImport != "" {
			e.linef("import %s;", jsString(opts.RuntimeImport))
		}
	})
	e.region(RegionUserImports, userRegions, nil)
	e.line("")
	e.linef("export function %s() {", e.out.FuncName)
	e.indent++
	e.region(RegionAutoBody, userRegions, func() { e.sceneBody(scene, roots) })
	e.region(RegionUserBody, userRegions, nil)
	e.indent--
	e.line("}")

	e.out.Source = e.buf.Bytes()
	return e.out, nil
}

// allocate names every object in depth-first pre-order, so the same tree
// always gets the same names.
func (e *emitter) allocate(roots []*engine.GameObject) {
	// Author tags are taken first so no generated tag can collide with one.
	for _, root := range roots {
		root.Walk(func(n *engine.GameObject) bool {
			e.alloc.ReserveTags(n.Tags...)
			return true
		})
	}
	for _, root := range roots {
		root.Walk(func(n *engine.GameObject) bool {
			ident, tag := e.alloc.Allocate(n.Name)
			e.out.Idents[n.ID] = ident
			e.out.Tags[n.ID] = tag
			e.objects[n.ID] = n
			return true
		})
	}
}

func (e *emitter) region(kind RegionKind, prior map[RegionKind]string, body func()) {
	e.line(kind.begin())
	if kind.userOwned() {
		e.buf.WriteString(userRegion(kind, prior))
	} else if body != nil {
		body()
	}
	e.line(kind.end())
}

func (e *emitter) sceneBody(scene *engine.Scene, roots []*engine.GameObject) {
	vp := scene.Viewport
	e.linef("// Authored at %sx%s (%s).", formatNumber(float64(vp.Width)), formatNumber(float64(vp.Height)), vp.Preset)
	e.linef("const %s = { width: width(), height: height() };", localViewport)

	// Scripts are extracted up front: whether the lifecycle runner is
	// needed is only known after looking at all of them.
	scripts := make(map[*engine.Script]ScriptParts)
	for _, root := range roots {
		root.Walk(func(n *engine.GameObject) bool {
			for _, c := range n.Components {
				s, ok := c.(*engine.Script)
				if !ok || !s.IsEnabled() {
					continue
				}
				parts := ExtractScript(s.Code, *s.Meta)
				if parts.Opaque {
					e.diag(n.ID, "script could not be parsed; emitted as setup code")
				}
				e.hasReady = e.hasReady || parts.HasReady
				e.hasUpdate = e.hasUpdate || parts.HasUpdate
				scripts[s] = parts
			}
			return true
		})
	}
	if e.hasReady || e.hasUpdate {
		e.linef("const %s = [];", localLifecycle)
	}

	e.spriteLoads(roots)
	for _, root := range roots {
		e.object(root, nil, scripts)
	}

	if e.hasReady {
		e.line("")
		e.linef("%s.forEach((entry) => entry.ready && entry.ready());", localLifecycle)
	}
	if e.hasUpdate {
		e.line("")
		e.linef("onUpdate(() => %s.forEach((entry) => entry.update && entry.update(dt())));", localLifecycle)
	}
}

// spriteLoads registers every sprite image under its object's runtime tag.
func (e *emitter) spriteLoads(roots []*engine.GameObject) {
	for _, root := range roots {
		root.Walk(func(n *engine.GameObject) bool {
			s := engine.GetComponent[*engine.Sprite](n)
			if s == nil || !s.IsEnabled() {
				return true
			}
			src := s.ImagePath
			if src == "" {
				src = s.InlineImageData
			}
			if src == "" {
				e.diag(n.ID, "sprite has no image")
				return true
			}
			e.linef("loadSprite(%s, %s);", jsString(e.out.Tags[n.ID]), jsString(src))
			return true
		})
	}
}

func (e *emitter) object(g, parent *engine.GameObject, scripts map[*engine.Script]ScriptParts) {
	ident := e.out.Idents[g.ID]
	adder := "add"
	if parent != nil {
		adder = e.out.Idents[parent.ID] + ".add"
	}

	e.line("")
	e.linef("// %s", oneLine(g.Name))
	e.linef("const %s = %s([", ident, adder)
	e.indent++
	for _, expr := range e.componentExprs(g, parent) {
		e.line(expr + ",")
	}
	for _, tag := range e.objectTags(g) {
		e.line(jsString(tag) + ",")
	}
	e.indent--
	e.line("]);")

	if !g.Visible {
		e.linef("%s.hidden = true;", ident)
	}
	if body := engine.GetComponent[*engine.Body](g); body != nil && body.IsEnabled() {
		if body.Velocity != (rl.Vector2{}) {
			e.linef("%s.vel = %s;", ident, e.tr.Vec2(body.Velocity))
		}
		if body.Acceleration != (rl.Vector2{}) {
			e.linef("%s.acc = %s;", ident, e.tr.Vec2(body.Acceleration))
		}
	}

	for _, c := range g.Components {
		if s, ok := c.(*engine.Script); ok && s.IsEnabled() {
			e.script(g, s, scripts[s])
		}
	}

	for _, child := range g.Children {
		e.object(child, g, scripts)
	}
}

// componentExprs returns the component calls of g in a fixed order: visual,
// color, position, anchor, rotation, collider, body.
func (e *emitter) componentExprs(g, parent *engine.GameObject) []string {
	var visual, paint, physics []string
	tr := g.Transform

	for _, c := range g.Components {
		if !c.IsEnabled() {
			continue
		}
		switch comp := c.(type) {
		case *engine.Shape:
			fill := ""
			if !comp.Filled {
				fill = ", { fill: false }"
			}
			if comp.ShapeType == engine.ShapeCircle {
				visual = append(visual, fmt.Sprintf("circle(%s%s)", e.tr.Radius(min(tr.Size.X, tr.Size.Y)/2), fill))
			} else {
				visual = append(visual, fmt.Sprintf("rect(%s%s)", e.tr.Pair(tr.Size), fill))
			}
			paint = append(paint, colorExprs(comp.Color)...)
		case *engine.Text:
			visual = append(visual, fmt.Sprintf("text(%s, { size: %s, align: %s })",
				jsString(comp.Text), e.tr.Scalar(comp.Size), jsString(comp.Align)))
			paint = append(paint, colorExprs(comp.Color)...)
		case *engine.Sprite:
			if comp.ImagePath == "" && comp.InlineImageData == "" {
				continue
			}
			opts := fmt.Sprintf("width: %s, height: %s", e.tr.Scalar(tr.Size.X), e.tr.Scalar(tr.Size.Y))
			if origin := SpriteOrigin(comp, tr); origin != (rl.Vector2{}) {
				opts += ", origin: " + e.tr.Vec2(origin)
			}
			visual = append(visual, fmt.Sprintf("sprite(%s, { %s })", jsString(e.out.Tags[g.ID]), opts))
		case *engine.Area:
			physics = append(physics, e.areaExpr(g, comp))
		case *engine.Body:
			physics = append(physics, bodyExpr(comp))
		case *engine.Script:
			// emitted after construction
		}
	}

	exprs := append(visual, paint...)
	exprs = append(exprs, e.tr.Pos(LocalPosition(g, parent)))
	exprs = append(exprs, fmt.Sprintf("anchor(%s)", jsString(string(tr.Anchor))))
	if tr.Rotation != 0 {
		exprs = append(exprs, fmt.Sprintf("rotate(%s)", formatNumber(float64(tr.Rotation))))
	}
	return append(exprs, physics...)
}

func colorExprs(c rl.Color) []string {
	exprs := []string{fmt.Sprintf("color(%d, %d, %d)", c.R, c.G, c.B)}
	if c.A < 255 {
		exprs = append(exprs, fmt.Sprintf("opacity(%s)", formatNumber(roundRatio(float64(c.A)/255))))
	}
	return exprs
}

func (e *emitter) areaExpr(g *engine.GameObject, a *engine.Area) string {
	tr := g.Transform
	var opts []string

	shape := a.Shape
	if shape == nil && (a.Width != nil || a.Height != nil || a.Radius != nil) {
		inferred := visualShape(g)
		shape = &inferred
	}
	if shape != nil {
		switch *shape {
		case engine.ShapeCircle:
			r := min(tr.Size.X, tr.Size.Y) / 2
			if a.Radius != nil {
				r = *a.Radius
			}
			opts = append(opts, fmt.Sprintf("shape: new Circle(%s, %s)", e.tr.Vec2(ColliderCenter(tr)), e.tr.Radius(r)))
		default:
			w, h := tr.Size.X, tr.Size.Y
			if a.Width != nil {
				w = *a.Width
			}
			if a.Height != nil {
				h = *a.Height
			}
			opts = append(opts, fmt.Sprintf("shape: new Rect(%s, %s, %s)", e.tr.Vec2(ColliderRect(tr, w, h)), e.tr.Scalar(w), e.tr.Scalar(h)))
		}
	}
	if a.Offset != nil && *a.Offset != (rl.Vector2{}) {
		opts = append(opts, "offset: "+e.tr.Vec2(*a.Offset))
	}
	if a.Scale != nil && *a.Scale != (rl.Vector2{X: 1, Y: 1}) {
		opts = append(opts, fmt.Sprintf("scale: vec2(%s, %s)", formatNumber(float64(a.Scale.X)), formatNumber(float64(a.Scale.Y))))
	}
	if len(a.CollisionIgnoreTags) > 0 {
		quoted := make([]string, len(a.CollisionIgnoreTags))
		for i, t := range a.CollisionIgnoreTags {
			quoted[i] = jsString(t)
		}
		opts = append(opts, "collisionIgnore: ["+strings.Join(quoted, ", ")+"]")
	}
	if a.Restitution != nil && *a.Restitution != engine.DefaultRestitution {
		opts = append(opts, "restitution: "+formatNumber(float64(*a.Restitution)))
	}
	if a.Friction != nil && *a.Friction != engine.DefaultFriction {
		opts = append(opts, "friction: "+formatNumber(float64(*a.Friction)))
	}
	if len(opts) == 0 {
		return "area()"
	}
	return "area({ " + strings.Join(opts, ", ") + " })"
}

// visualShape infers a collider shape from what the object draws.
func visualShape(g *engine.GameObject) engine.ShapeType {
	if s := engine.GetComponent[*engine.Shape](g); s != nil && s.IsEnabled() {
		return s.ShapeType
	}
	if g.Kind == engine.KindCircle {
		return engine.ShapeCircle
	}
	return engine.ShapeRectangle
}

func bodyExpr(b *engine.Body) string {
	var opts []string
	if b.Mass != engine.DefaultMass {
		opts = append(opts, "mass: "+formatNumber(float64(b.Mass)))
	}
	if b.Gravity != 1 {
		opts = append(opts, "gravityScale: "+formatNumber(float64(b.Gravity)))
	}
	if b.IsStatic {
		opts = append(opts, "isStatic: true")
	}
	if len(opts) == 0 {
		return "body()"
	}
	return "body({ " + strings.Join(opts, ", ") + " })"
}

// objectTags returns the generated runtime tag followed by the author tags.
func (e *emitter) objectTags(g *engine.GameObject) []string {
	generated := e.out.Tags[g.ID]
	tags := []string{generated}
	seen := map[string]bool{generated: true}
	for _, t := range g.Tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

// script emits one script inside its own block. Setup code runs at
// construction and shares the block scope with the lifecycle methods, so
// setup declarations are visible in ready and update.
func (e *emitter) script(g *engine.GameObject, s *engine.Script, parts ScriptParts) {
	if parts.Setup == "" && !parts.HasLifecycle() {
		return
	}
	e.line("{")
	e.indent++
	e.linef("const self = %s;", e.out.Idents[g.ID])
	if parts.Setup != "" {
		e.block(parts.Setup)
	}
	if parts.HasLifecycle() {
		refs := e.references(g, s.Meta.References)
		e.linef("%s.push({", localLifecycle)
		e.indent++
		if parts.HasReady {
			e.linef("%sready() {", asyncPrefix(parts.ReadyAsync))
			e.lifecycleBody(refs, parts.Ready)
			e.line("},")
		}
		if parts.HasUpdate {
			e.linef("%supdate(%s) {", asyncPrefix(parts.UpdateAsync), parts.UpdateParam)
			e.lifecycleBody(refs, parts.Update)
			e.line("},")
		}
		e.indent--
		e.line("});")
	}
	e.indent--
	e.line("}")
}

func asyncPrefix(async bool) string {
	if async {
		return "async "
	}
	return ""
}

func (e *emitter) lifecycleBody(refs, body string) {
	e.indent++
	if refs != "" {
		e.linef("const refs = %s;", refs)
	}
	e.block(body)
	e.indent--
}

// references renders the objects a script refers to as an object literal
// keyed by display name. Repeated names fall back to the identifier.
func (e *emitter) references(g *engine.GameObject, ids []string) string {
	var entries []string
	used := make(map[string]bool)
	for _, id := range ids {
		target, ok := e.objects[id]
		if !ok {
			e.diag(g.ID, fmt.Sprintf("script references missing object %s", id))
			continue
		}
		key := target.Name
		if key == "" || used[key] {
			key = e.out.Idents[id]
		}
		if used[key] {
			continue
		}
		used[key] = true
		entries = append(entries, fmt.Sprintf("%s: %s", jsString(key), e.out.Idents[id]))
	}
	if len(entries) == 0 {
		return ""
	}
	return "{ " + strings.Join(entries, ", ") + " }"
}

func (e *emitter) diag(id, msg string) {
	e.out.Diagnostics = append(e.out.Diagnostics, Diagnostic{ObjectID: id, Message: msg})
}

// --- output helpers ---

func (e *emitter) line(s string) {
	if s != "" {
		e.buf.WriteString(strings.Repeat(indentUnit, e.indent))
		e.buf.WriteString(s)
	}
	e.buf.WriteByte('\n')
}

func (e *emitter) linef(format string, args ...any) {
	e.line(fmt.Sprintf(format, args...))
}

// block writes multi-line user code at the current indentation.
func (e *emitter) block(text string) {
	for _, l := range strings.Split(text, "\n") {
		e.line(l)
	}
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(data)
}

func oneLine(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func roundRatio(v float64) float64 {
	return float64(int64(v*ratioScale+0.5)) / ratioScale
}

// SceneFuncName turns a scene name into "createXxxScene".
func SceneFuncName(name string) string {
	var b strings.Builder
	b.WriteString("create")
	for _, word := range strings.Split(sanitize(name, '_'), "_") {
		if word == "" {
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]) + word[1:])
	}
	b.WriteString("Scene")
	return b.String()
}
