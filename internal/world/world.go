package world

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"scenestudio/internal/assets"
	"scenestudio/internal/codegen"
	"scenestudio/internal/engine"
	"sort"
	"strings"
)

// World is an opened project: its configuration, its asset directory and the
// scene documents found in the scenes directory.
type World struct {
	Root   string
	Config Config
	Assets *assets.Manager
	Scenes []*engine.Scene
	Paths  map[*engine.Scene]string // scene -> document path

	Warnings []string
}

// Open loads the project rooted at root.
func Open(root string) (*World, error) {
	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}
	return New(root, cfg), nil
}

func New(root string, cfg Config) *World {
	return &World{
		Root:   root,
		Config: cfg,
		Assets: assets.NewManager(root),
		Paths:  make(map[*engine.Scene]string),
	}
}

func (w *World) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(w.Root, rel)
}

// ScenesDir returns the absolute scenes directory.
func (w *World) ScenesDir() string {
	return w.path(w.Config.ScenesDir)
}

// OutputDir returns the absolute generated-code directory.
func (w *World) OutputDir() string {
	return w.path(w.Config.OutputDir)
}

// LoadScenes reads every *.json document in the scenes directory, sorted by
// file name. Decoding warnings are collected in Warnings prefixed with the
// file name.
func (w *World) LoadScenes() error {
	files, err := filepath.Glob(filepath.Join(w.ScenesDir(), "*.json"))
	if err != nil {
		return fmt.Errorf("list scenes: %w", err)
	}
	sort.Strings(files)

	w.Scenes = w.Scenes[:0]
	w.Paths = make(map[*engine.Scene]string)
	w.Warnings = nil
	for _, file := range files {
		s, warnings, err := ReadScene(file)
		if err != nil {
			return err
		}
		if s.Name == "" {
			s.Name = strings.TrimSuffix(filepath.Base(file), ".json")
		}
		// Opening a document repairs missing and duplicate ids.
		warnings = append(warnings, engine.NewDocument(s).Repairs()...)
		for _, warn := range warnings {
			w.Warnings = append(w.Warnings, filepath.Base(file)+": "+warn)
		}
		w.Scenes = append(w.Scenes, s)
		w.Paths[s] = file
	}
	return nil
}

// SaveScene writes s back to the document it was loaded from, or to a new
// document in the scenes directory.
func (w *World) SaveScene(s *engine.Scene) error {
	path, ok := w.Paths[s]
	if !ok {
		path = filepath.Join(w.ScenesDir(), SceneDocName(s.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("save scene: %w", err)
		}
		w.Paths[s] = path
	}
	return WriteScene(path, s)
}

// NewScene creates an empty scene sized to the configured default preset.
func (w *World) NewScene(name string) *engine.Scene {
	s := engine.NewScene(name)
	s.Viewport = engine.ResolveViewport(w.Config.DefaultPreset, 0, 0)
	return s
}

// Exporter returns an exporter configured for this project.
func (w *World) Exporter() *Exporter {
	return &Exporter{
		OutputDir: w.OutputDir(),
		IndexFile: w.Config.IndexFile,
		Options:   codegen.Options{RuntimeImport: w.Config.RuntimeImport},
		Scripts:   w.Assets,
		Images:    w.Assets,
	}
}

// Export compiles every loaded scene.
func (w *World) Export(ctx context.Context) (*ExportReport, error) {
	return w.Exporter().ExportAll(ctx, w.Scenes)
}

// SceneDocName returns the document file name for a scene, e.g.
// "main_menu.json" for "Main Menu".
func SceneDocName(name string) string {
	return strings.TrimSuffix(codegen.SceneFileName(name), ".js") + ".json"
}
