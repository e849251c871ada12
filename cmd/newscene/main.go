package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"scenestudio/internal/codegen"
	"scenestudio/internal/engine"
	"scenestudio/internal/world"
	"strings"
)

const scriptTmpl = `// Runs once when the scene starts, after every object exists.
function ready() {
}

// Runs every frame.
function update(dt) {
}
`

func main() {
	root := flag.String("root", ".", "project directory containing scenestudio.json")
	preset := flag.String("preset", "", "viewport preset ("+strings.Join(engine.PresetNames(), ", ")+")")
	withScript := flag.Bool("script", false, "also scaffold a script file attached to the scene root")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: go run ./cmd/newscene [flags] <SceneName>\n")
		fmt.Fprintf(os.Stderr, "Example: go run ./cmd/newscene -preset desktop-hd \"Main Menu\"\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || strings.TrimSpace(flag.Arg(0)) == "" {
		flag.Usage()
		os.Exit(1)
	}
	name := strings.TrimSpace(flag.Arg(0))

	w, err := world.Open(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *preset != "" {
		if _, ok := engine.ViewportPresets[*preset]; !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown preset %q\n", *preset)
			os.Exit(1)
		}
		w.Config.DefaultPreset = *preset
	}

	outPath := filepath.Join(w.ScenesDir(), world.SceneDocName(name))
	if _, err := os.Stat(outPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", outPath)
		os.Exit(1)
	}

	scene := w.NewScene(name)
	doc := engine.NewDocument(scene)
	rootObj, err := doc.Create("", engine.KindEmpty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	rootName := "Root"
	doc.Update(rootObj.ID, engine.Patch{Name: &rootName})

	if *withScript {
		scriptPath := path.Join(filepath.ToSlash(w.Config.ScenesDir), "scripts", codegen.SceneFileName(name))
		if err := w.Assets.WriteScript(scriptPath, scriptTmpl); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		doc.AddComponent(rootObj.ID, &engine.Script{
			BaseComponent: engine.BaseComponent{Enabled: true},
			ScriptPath:    scriptPath,
		})
		fmt.Printf("Created %s\n", scriptPath)
	}

	if err := os.MkdirAll(w.ScenesDir(), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := world.WriteScene(outPath, doc.Scene()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	vp := scene.Viewport
	fmt.Printf("Created %s (%s, %gx%g)\n", outPath, vp.Preset, vp.Width, vp.Height)
	fmt.Printf("Generate its code with: go run ./cmd/gen-scenes\n")
}
