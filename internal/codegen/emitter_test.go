package codegen

import (
	"bytes"
	"scenestudio/internal/engine"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func testObject(id, name string, kind engine.Kind, x, y float32) *engine.GameObject {
	g := engine.NewGameObject(id, name, kind)
	g.Transform.Position = rl.Vector2{X: x, Y: y}
	for _, c := range defaultTestComponents(kind) {
		g.AddComponent(c)
	}
	return g
}

func defaultTestComponents(kind engine.Kind) []engine.Component {
	switch kind {
	case engine.KindRectangle:
		return []engine.Component{engine.NewComponent(engine.TypeShape)}
	case engine.KindCircle:
		shape := engine.NewComponent(engine.TypeShape).(*engine.Shape)
		shape.ShapeType = engine.ShapeCircle
		return []engine.Component{shape}
	case engine.KindText:
		return []engine.Component{engine.NewComponent(engine.TypeText)}
	}
	return nil
}

func generate(t *testing.T, scene *engine.Scene, prior []byte) (string, *Output) {
	t.Helper()
	out, err := Generate(scene, prior, Options{RuntimeImport: "kaboom/global"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return string(out.Source), out
}

func assertContains(t *testing.T, src string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(src, w) {
			t.Errorf("Expected output to contain %q\n%s", w, src)
		}
	}
}

// plainScript turns a generated module into a classic script: the import line
// and the export keyword are dropped.
func plainScript(src string) string {
	var lines []string
	for _, l := range strings.Split(src, "\n") {
		if strings.HasPrefix(l, "import ") {
			continue
		}
		lines = append(lines, strings.Replace(l, "export function", "function", 1))
	}
	return strings.Join(lines, "\n")
}

func assertParses(t *testing.T, src string) {
	t.Helper()
	if _, err := parser.ParseFile(nil, "", plainScript(src), 0); err != nil {
		t.Fatalf("Generated source does not parse: %v\n%s", err, src)
	}
}

func scriptObject(id, name, code string) *engine.GameObject {
	g := testObject(id, name, engine.KindEmpty, 0, 0)
	g.AddComponent(&engine.Script{
		BaseComponent: engine.BaseComponent{Enabled: true},
		Code:          code,
		Meta:          &engine.ScriptMeta{IncludeReady: true, IncludeUpdate: true},
	})
	return g
}

func TestGenerateRectangle(t *testing.T) {
	scene := engine.NewScene("Level")
	scene.Objects = append(scene.Objects, testObject("obj-1", "Box", engine.KindRectangle, 180, 288))

	src, out := generate(t, scene, nil)

	if out.FuncName != "createLevelScene" {
		t.Errorf("Expected createLevelScene, got %s", out.FuncName)
	}
	assertContains(t, src,
		`import "kaboom/global";`,
		"export function createLevelScene() {",
		"// Authored at 360x640 (mobile-portrait).",
		"const viewport = { width: width(), height: height() };",
		"// Box\n",
		"const box = add([",
		"rect(viewport.width * 0.2778, viewport.width * 0.2778),",
		"color(255, 255, 255),",
		"pos(viewport.width * 0.5, viewport.width * 0.8),",
		`anchor("center"),`,
		`"box",`,
		"]);",
	)
	if strings.Contains(src, "opacity(") {
		t.Error("opaque colors should not emit opacity")
	}
	if strings.Contains(src, "lifecycle") {
		t.Error("scene without scripts should not declare the lifecycle list")
	}
	if len(out.Diagnostics) != 0 {
		t.Errorf("Unexpected diagnostics: %v", out.Diagnostics)
	}
}

func TestGenerateComponentOrder(t *testing.T) {
	scene := engine.NewScene("Level")
	g := testObject("obj-1", "Box", engine.KindRectangle, 180, 288)
	g.Transform.Rotation = 45
	g.AddComponent(engine.NewComponent(engine.TypeArea))
	g.AddComponent(engine.NewComponent(engine.TypeBody))
	scene.Objects = append(scene.Objects, g)

	src, _ := generate(t, scene, nil)

	order := []string{"rect(", "color(", "pos(", "anchor(", "rotate(45)", "area()", "body()", `"box"`}
	last := -1
	for _, w := range order {
		i := strings.Index(src, w)
		if i < 0 {
			t.Fatalf("Expected %q in output\n%s", w, src)
		}
		if i < last {
			t.Errorf("%q emitted out of order", w)
		}
		last = i
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	scene := engine.NewScene("Level")
	scene.Objects = append(scene.Objects,
		testObject("a", "Player", engine.KindRectangle, 10, 10),
		testObject("b", "Player", engine.KindCircle, 20, 20),
		testObject("c", "Label", engine.KindText, 30, 30))

	first, _ := generate(t, scene, nil)
	second, _ := generate(t, scene, nil)
	if first != second {
		t.Fatal("Generate is not deterministic")
	}

	// Regenerating over its own output changes nothing.
	third, _ := generate(t, scene, []byte(first))
	if third != first {
		t.Errorf("Regeneration over unchanged output is not idempotent:\n%s\n---\n%s", first, third)
	}
}

func TestGenerateDoesNotModifyScene(t *testing.T) {
	scene := engine.NewScene("Level")
	g := testObject("a", "Hero", engine.KindEmpty, 0, 0)
	g.AddComponent(&engine.Script{BaseComponent: engine.BaseComponent{Enabled: true}, Code: "function update(dt) {}"})
	scene.Objects = append(scene.Objects, g)

	generate(t, scene, nil)

	if s := engine.GetComponent[*engine.Script](g); s.Meta != nil {
		t.Error("Generate normalized the caller's components")
	}
}

func TestGenerateChildRelativePosition(t *testing.T) {
	scene := engine.NewScene("Level")
	parent := testObject("p", "Parent", engine.KindRectangle, 100, 100)
	child := testObject("c", "Child", engine.KindRectangle, 150, 120)
	parent.Children = append(parent.Children, child)
	scene.Objects = append(scene.Objects, parent)

	src, _ := generate(t, scene, nil)

	assertContains(t, src,
		"const parent = add([",
		"pos(viewport.width * 0.2778, viewport.width * 0.2778),",
		"const child = parent.add([",
		"pos(viewport.width * 0.1389, viewport.width * 0.0556),",
	)
	if strings.Index(src, "const child") < strings.Index(src, "const parent") {
		t.Error("child emitted before its parent")
	}
}

func TestGenerateDuplicateNames(t *testing.T) {
	scene := engine.NewScene("Level")
	scene.Objects = append(scene.Objects,
		testObject("a", "Player", engine.KindRectangle, 0, 0),
		testObject("b", "Player", engine.KindRectangle, 0, 0))

	src, out := generate(t, scene, nil)

	if out.Idents["a"] != "player" || out.Idents["b"] != "player_2" {
		t.Errorf("Expected player/player_2, got %s/%s", out.Idents["a"], out.Idents["b"])
	}
	if out.Tags["a"] != "player" || out.Tags["b"] != "player-2" {
		t.Errorf("Expected player/player-2, got %s/%s", out.Tags["a"], out.Tags["b"])
	}
	assertContains(t, src, "const player = add([", "const player_2 = add([", `"player-2",`)
}

func TestGenerateAuthorTags(t *testing.T) {
	scene := engine.NewScene("Level")
	g := testObject("a", "Enemy", engine.KindRectangle, 0, 0)
	g.Tags = []string{"hostile", "enemy", "", "hostile"}
	scene.Objects = append(scene.Objects, g)

	src, _ := generate(t, scene, nil)

	if strings.Count(src, `"enemy",`) != 1 {
		t.Error("generated tag repeated by author tag")
	}
	if strings.Count(src, `"hostile",`) != 1 {
		t.Error("author tags should be emitted once")
	}
}

func TestGenerateTagsAvoidAuthorTags(t *testing.T) {
	scene := engine.NewScene("Level")
	player := testObject("a", "Player", engine.KindRectangle, 0, 0)
	player.Tags = []string{"enemy"}
	scene.Objects = append(scene.Objects, player, testObject("b", "Enemy", engine.KindRectangle, 0, 0))

	src, out := generate(t, scene, nil)

	if out.Tags["b"] != "enemy-2" {
		t.Errorf("Expected enemy-2 for Enemy, got %s", out.Tags["b"])
	}
	if strings.Count(src, `"enemy",`) != 1 {
		t.Error("author tag shared with a generated tag")
	}
}

func TestGenerateLifecycle(t *testing.T) {
	scene := engine.NewScene("Level")
	hero := testObject("h", "Hero", engine.KindRectangle, 0, 0)
	hero.AddComponent(&engine.Script{
		BaseComponent: engine.BaseComponent{Enabled: true},
		Code:          "let speed = 2;\nfunction update(dt) {\n  self.move(speed, 0);\n}\n",
		Meta: &engine.ScriptMeta{
			IncludeReady:  true,
			IncludeUpdate: true,
			References:    []string{"g", "ghost"},
		},
	})
	goal := testObject("g", "Goal", engine.KindRectangle, 0, 0)
	scene.Objects = append(scene.Objects, hero, goal)

	src, out := generate(t, scene, nil)

	assertContains(t, src,
		"const lifecycle = [];",
		"  {\n"+
			"    const self = hero;\n"+
			"    let speed = 2;\n"+
			"    lifecycle.push({\n"+
			"      update(dt) {\n"+
			"        const refs = { \"Goal\": goal };\n"+
			"        self.move(speed, 0);\n"+
			"      },\n"+
			"    });\n"+
			"  }\n",
		"onUpdate(() => lifecycle.forEach((entry) => entry.update && entry.update(dt())));",
	)
	assertParses(t, src)
	if strings.Contains(src, "entry.ready()") {
		t.Error("ready runner emitted without any ready section")
	}
	if strings.Index(src, "const lifecycle") > strings.Index(src, "const hero") {
		t.Error("lifecycle list must be declared before the objects")
	}

	if len(out.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %v", out.Diagnostics)
	}
	d := out.Diagnostics[0]
	if d.ObjectID != "h" || !strings.Contains(d.Message, "ghost") {
		t.Errorf("Unexpected diagnostic %v", d)
	}
}

func TestGenerateOpaqueScript(t *testing.T) {
	scene := engine.NewScene("Level")
	g := testObject("a", "Hero", engine.KindEmpty, 0, 0)
	g.AddComponent(&engine.Script{BaseComponent: engine.BaseComponent{Enabled: true}, Code: "let x = ;"})
	scene.Objects = append(scene.Objects, g)

	src, out := generate(t, scene, nil)

	assertContains(t, src, "let x = ;")
	if strings.Contains(src, "lifecycle") {
		t.Error("opaque script should not produce lifecycle code")
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].ObjectID != "a" {
		t.Errorf("Expected a parse diagnostic, got %v", out.Diagnostics)
	}
}

func TestGenerateSetupOnlyScript(t *testing.T) {
	scene := engine.NewScene("Level")
	scene.Objects = append(scene.Objects, scriptObject("a", "Hero", "self.hp = 3;\n"))

	src, out := generate(t, scene, nil)

	assertContains(t, src, "  {\n    const self = hero;\n    self.hp = 3;\n  }\n")
	if strings.Contains(src, "lifecycle") {
		t.Error("setup-only script should not produce lifecycle code")
	}
	if len(out.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %v", out.Diagnostics)
	}
	assertParses(t, src)
}

func TestGenerateAsyncLifecycle(t *testing.T) {
	scene := engine.NewScene("Level")
	scene.Objects = append(scene.Objects, scriptObject("a", "Hero",
		"async function ready() {\n  await load();\n}\nasync function update(dt) {\n  await tick(dt);\n}\n"))

	src, _ := generate(t, scene, nil)

	assertContains(t, src, "async ready() {", "async update(dt) {", "await load();")
	assertParses(t, src)
}

// Stand-ins for the runtime functions the generated code calls.
const runtimeStubs = `
const objects = [];
const updates = [];
function add(comps) { const o = { x: 0, add: add }; objects.push(o); return o; }
function pos() { return "pos"; }
function anchor() { return "anchor"; }
function vec2(x, y) { return { x: x, y: y }; }
function width() { return 360; }
function height() { return 640; }
function dt() { return 0.5; }
function onUpdate(f) { updates.push(f); }
`

func TestGeneratedScriptRuns(t *testing.T) {
	scene := engine.NewScene("Level")
	scene.Objects = append(scene.Objects, scriptObject("a", "Hero",
		"let speed = 2;\nfunction ready() {\n  self.x = 1;\n}\nfunction update(dt) {\n  self.x += speed * dt;\n}\n"))

	src, _ := generate(t, scene, nil)

	vm := goja.New()
	program := runtimeStubs + plainScript(src) + "\ncreateLevelScene();\nupdates.forEach((f) => f());\n"
	if _, err := vm.RunString(program); err != nil {
		t.Fatalf("Generated scene failed to run: %v\n%s", err, src)
	}
	x, err := vm.RunString("objects[0].x")
	if err != nil {
		t.Fatalf("RunString failed: %v", err)
	}
	if got := x.ToFloat(); got != 2 {
		t.Errorf("Expected x 2 after ready and one update, got %v", got)
	}
}

func TestGenerateKeepsUserRegions(t *testing.T) {
	scene := engine.NewScene("Level")
	scene.Objects = append(scene.Objects, testObject("a", "Box", engine.KindRectangle, 0, 0))

	first, _ := generate(t, scene, nil)
	edited := strings.Replace(first, placeholders[RegionUserBody], "  custom();\n", 1)
	edited = strings.Replace(edited, placeholders[RegionUserImports], "import { sfx } from \"./audio\";\n", 1)

	scene.Objects[0].Name = "Crate"
	src, _ := generate(t, scene, []byte(edited))

	assertContains(t, src,
		"// @scenestudio:user-body:begin\n  custom();\n  // @scenestudio:user-body:end",
		"// @scenestudio:user-imports:begin\nimport { sfx } from \"./audio\";\n// @scenestudio:user-imports:end",
		"const crate = add([",
	)
	if strings.Contains(src, "const box") {
		t.Error("auto-owned region was not regenerated")
	}
}

func TestGeneratePhysicsAndVisibility(t *testing.T) {
	scene := engine.NewScene("Level")
	g := testObject("a", "Crate", engine.KindRectangle, 0, 0)
	g.Visible = false
	g.Components[0].SetEnabled(false)
	g.AddComponent(&engine.Area{
		BaseComponent:       engine.BaseComponent{Enabled: true},
		CollisionIgnoreTags: []string{"wall", "floor", "wall"},
		Friction:            engine.Float(0.5),
	})
	g.AddComponent(&engine.Body{
		BaseComponent: engine.BaseComponent{Enabled: true},
		Mass:          2,
		Gravity:       1,
		IsStatic:      true,
		Velocity:      rl.Vector2{X: 36},
	})
	scene.Objects = append(scene.Objects, g)

	src, _ := generate(t, scene, nil)

	assertContains(t, src,
		`area({ collisionIgnore: ["floor", "wall"], friction: 0.5 }),`,
		"body({ mass: 2, isStatic: true }),",
		"crate.hidden = true;",
		"crate.vel = vec2(viewport.width * 0.1, 0);",
	)
	if strings.Contains(src, "rect(") || strings.Contains(src, "color(") {
		t.Error("disabled shape was emitted")
	}
	if strings.Contains(src, "crate.acc") {
		t.Error("zero acceleration should not be emitted")
	}
}

func TestGenerateVisuals(t *testing.T) {
	scene := engine.NewScene("Level")
	ball := testObject("a", "Ball", engine.KindCircle, 0, 0)
	ball.Components[0].(*engine.Shape).Color = rl.NewColor(255, 0, 0, 128)
	label := testObject("b", "Label", engine.KindText, 0, 0)
	coin := engine.NewGameObject("c", "Coin", engine.KindSprite)
	coin.AddComponent(&engine.Sprite{
		BaseComponent: engine.BaseComponent{Enabled: true},
		ImagePath:     "assets/coin.png",
		Width:         16,
		Height:        16,
	})
	blank := engine.NewGameObject("d", "Blank", engine.KindSprite)
	blank.AddComponent(engine.NewComponent(engine.TypeSprite))
	scene.Objects = append(scene.Objects, ball, label, coin, blank)

	src, out := generate(t, scene, nil)

	assertContains(t, src,
		"circle(Math.min(viewport.width, viewport.height) * 0.1389),",
		"color(255, 0, 0),",
		"opacity(0.502),",
		`text("Text", { size: viewport.width * 0.0444, align: "left" }),`,
		`loadSprite("coin", "assets/coin.png");`,
		`sprite("coin", { width: viewport.width * 0.2778, height: viewport.width * 0.2778 }),`,
	)
	if strings.Contains(src, `sprite("blank"`) {
		t.Error("sprite without image should not be emitted")
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].ObjectID != "d" {
		t.Errorf("Expected a missing-image diagnostic, got %v", out.Diagnostics)
	}
}

func TestGenerateNilScene(t *testing.T) {
	if _, err := Generate(nil, nil, Options{}); err == nil {
		t.Error("Expected error for nil scene")
	}
}

func TestGenerateWithoutRuntimeImport(t *testing.T) {
	out, err := Generate(engine.NewScene("Empty"), nil, Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if bytes.Contains(out.Source, []byte("import \"")) {
		t.Error("no import expected without a runtime module")
	}
	if !bytes.Contains(out.Source, []byte("export function createEmptyScene() {")) {
		t.Errorf("scene function missing:\n%s", out.Source)
	}
}
