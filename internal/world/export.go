package world

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"scenestudio/internal/assets"
	"scenestudio/internal/codegen"
	"scenestudio/internal/engine"
	"strings"
)

// Exporter compiles scenes into source files in OutputDir.
type Exporter struct {
	OutputDir string
	IndexFile string // companion file name; empty disables it
	Options   codegen.Options

	Scripts assets.ScriptSource // nil leaves scriptPath components without code
	Images  assets.ImageSource  // nil skips sprite size probing
}

// ExportResult describes one file handled by an export.
type ExportResult struct {
	Scene       string
	Path        string
	Diagnostics []codegen.Diagnostic
}

// ExportFailure is a scene that could not be exported.
type ExportFailure struct {
	Scene string
	Err   error
}

// ExportReport collects the outcome of a batch.
type ExportReport struct {
	Written []ExportResult
	Skipped []ExportResult // output already up to date
	Failed  []ExportFailure
}

// OK reports whether every scene was exported.
func (r *ExportReport) OK() bool {
	return len(r.Failed) == 0
}

type exportedScene struct {
	name     string
	file     string
	funcName string
}

// ExportAll generates every scene and writes the files one at a time. A
// failing scene is recorded and the batch continues; files already written
// stay written. The index file is written last, listing the scenes that have
// an up to date file.
func (x *Exporter) ExportAll(ctx context.Context, scenes []*engine.Scene) (*ExportReport, error) {
	if err := os.MkdirAll(x.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report := &ExportReport{}
	files := make(map[string]string) // file name -> scene name
	var exported []exportedScene

	for _, s := range scenes {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		name := codegen.SceneFileName(s.Name)
		if other, taken := files[name]; taken {
			report.Failed = append(report.Failed, ExportFailure{
				Scene: s.Name,
				Err:   fmt.Errorf("output file %s already used by scene %q", name, other),
			})
			continue
		}
		files[name] = s.Name

		result, written, err := x.ExportScene(s, filepath.Join(x.OutputDir, name))
		if err != nil {
			report.Failed = append(report.Failed, ExportFailure{Scene: s.Name, Err: err})
			continue
		}
		if written {
			report.Written = append(report.Written, result)
		} else {
			report.Skipped = append(report.Skipped, result)
		}
		exported = append(exported, exportedScene{
			name:     s.Name,
			file:     name,
			funcName: codegen.SceneFuncName(s.Name),
		})
	}

	if x.IndexFile != "" && len(exported) > 0 {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		path := filepath.Join(x.OutputDir, x.IndexFile)
		written, err := writeIfChanged(path, indexSource(exported))
		switch {
		case err != nil:
			report.Failed = append(report.Failed, ExportFailure{Scene: x.IndexFile, Err: err})
		case written:
			report.Written = append(report.Written, ExportResult{Path: path})
		default:
			report.Skipped = append(report.Skipped, ExportResult{Path: path})
		}
	}
	return report, nil
}

// ExportScene generates one scene into path and reports whether the file was
// rewritten.
func (x *Exporter) ExportScene(s *engine.Scene, path string) (ExportResult, bool, error) {
	result := ExportResult{Scene: s.Name, Path: path}

	hydrated, diags := x.Hydrate(s)
	result.Diagnostics = diags

	prior, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, false, fmt.Errorf("read previous output: %w", err)
	}

	out, err := codegen.Generate(hydrated, prior, x.Options)
	if err != nil {
		return result, false, err
	}
	result.Diagnostics = append(result.Diagnostics, out.Diagnostics...)

	written, err := writeIfChanged(path, out.Source)
	if err != nil {
		return result, false, err
	}
	return result, written, nil
}

// Hydrate returns a copy of s ready for generation: external scripts are
// read into Code and sprites without a size get the size of their image. A
// script that cannot be read is dropped from the copy and reported.
func (x *Exporter) Hydrate(s *engine.Scene) (*engine.Scene, []codegen.Diagnostic) {
	out := &engine.Scene{
		Name:     s.Name,
		Viewport: s.Viewport,
		Objects:  make([]*engine.GameObject, 0, len(s.Objects)),
	}
	for _, g := range s.Objects {
		out.Objects = append(out.Objects, g.Clone())
	}

	var diags []codegen.Diagnostic
	out.Walk(func(n *engine.GameObject) bool {
		kept := n.Components[:0]
		for _, c := range n.Components {
			switch comp := c.(type) {
			case *engine.Script:
				if comp.ScriptPath != "" && x.Scripts != nil {
					code, err := x.Scripts.ReadScript(comp.ScriptPath)
					if err != nil {
						diags = append(diags, codegen.Diagnostic{ObjectID: n.ID, Message: err.Error()})
						continue
					}
					comp.Code = code
				}
			case *engine.Sprite:
				x.sizeSprite(n, comp, &diags)
			}
			kept = append(kept, c)
		}
		n.Components = kept
		return true
	})
	return out, diags
}

func (x *Exporter) sizeSprite(n *engine.GameObject, s *engine.Sprite, diags *[]codegen.Diagnostic) {
	if x.Images == nil || (s.Width > 0 && s.Height > 0) {
		return
	}
	img, err := x.Images.Image(assets.ImageRef{Path: s.ImagePath, Data: s.InlineImageData})
	if err != nil {
		*diags = append(*diags, codegen.Diagnostic{ObjectID: n.ID, Message: err.Error()})
		return
	}
	// An origin recorded against an unknown size is meaningless; recenter it.
	s.Width, s.Height = float32(img.Width), float32(img.Height)
	s.OriginX = engine.Float(s.Width / 2)
	s.OriginY = engine.Float(s.Height / 2)
}

// writeIfChanged writes data unless the file already holds the same bytes.
func writeIfChanged(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && sha256.Sum256(existing) == sha256.Sum256(data) {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func indexSource(scenes []exportedScene) []byte {
	var b bytes.Buffer
	for _, s := range scenes {
		fmt.Fprintf(&b, "import { %s } from \"./%s\";\n", s.funcName, s.file)
	}
	b.WriteString("\nexport function registerScenes() {\n")
	for _, s := range scenes {
		fmt.Fprintf(&b, "  scene(%q, %s);\n", strings.ReplaceAll(s.name, "\n", " "), s.funcName)
	}
	b.WriteString("}\n")
	return b.Bytes()
}
