package main

import (
	"bytes"
	"errors"
	"scenestudio/internal/codegen"
	"scenestudio/internal/world"
	"strings"
	"testing"
)

func TestOverrideConfig(t *testing.T) {
	cfg := world.DefaultConfig()

	got := overrideConfig(cfg, "", "build", "")
	if got.OutputDir != "build" {
		t.Errorf("Expected outputDir 'build', got '%s'", got.OutputDir)
	}
	if got.ScenesDir != cfg.ScenesDir || got.RuntimeImport != cfg.RuntimeImport {
		t.Errorf("Empty flags should keep config values, got %+v", got)
	}

	got = overrideConfig(cfg, "levels", "", "kaplay/global")
	if got.ScenesDir != "levels" || got.RuntimeImport != "kaplay/global" {
		t.Errorf("Flags not applied: %+v", got)
	}
}

func TestPrintReport(t *testing.T) {
	report := &world.ExportReport{
		Written: []world.ExportResult{{
			Scene: "Main Menu",
			Path:  "src/scenes/main_menu.js",
			Diagnostics: []codegen.Diagnostic{
				{ObjectID: "obj-3", Message: "sprite has no image"},
			},
		}},
		Skipped: []world.ExportResult{{Scene: "Level", Path: "src/scenes/level.js"}},
		Failed:  []world.ExportFailure{{Scene: "Broken", Err: errors.New("disk full")}},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"✓ main_menu.js",
		"Main Menu: obj-3: sprite has no image",
		"✗ Broken: disk full",
		"Generated 1, skipped 1 (unchanged)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in report:\n%s", want, out)
		}
	}
	if strings.Contains(out, "level.js") {
		t.Error("skipped files should not be listed as written")
	}
}

func TestPrintReportAllWritten(t *testing.T) {
	report := &world.ExportReport{
		Written: []world.ExportResult{{Scene: "Level", Path: "out/level.js"}, {Path: "out/index.js"}},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	if !strings.Contains(buf.String(), "Generated 2 file(s)") {
		t.Errorf("Unexpected summary:\n%s", buf.String())
	}
}
