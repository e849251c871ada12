package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"scenestudio/internal/world"
)

func main() {
	root := flag.String("root", ".", "project directory containing scenestudio.json")
	scenesDir := flag.String("scenes", "", "scene documents directory (overrides config)")
	outputDir := flag.String("out", "", "generated code directory (overrides config)")
	runtime := flag.String("runtime", "", "runtime module imported by every scene (overrides config)")
	flag.Parse()

	cfg, err := world.LoadConfig(*root)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	cfg = overrideConfig(cfg, *scenesDir, *outputDir, *runtime)

	w := world.New(*root, cfg)
	if _, err := os.Stat(w.ScenesDir()); os.IsNotExist(err) {
		fmt.Printf("❌ Scenes directory not found: %s\n", w.ScenesDir())
		fmt.Println("   Create it with: go run ./cmd/newscene <SceneName>")
		os.Exit(1)
	}
	if err := w.LoadScenes(); err != nil {
		fmt.Printf("❌ Failed to load scenes: %v\n", err)
		os.Exit(1)
	}
	for _, warn := range w.Warnings {
		fmt.Printf("⚠️  %s\n", warn)
	}
	if len(w.Scenes) == 0 {
		fmt.Printf("⚠️  No scene documents found in %s\n", w.ScenesDir())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("🔧 Generating scenes from %s...\n", cfg.ScenesDir)
	report, err := w.Export(ctx)
	if report != nil {
		printReport(os.Stdout, report)
	}
	if err != nil {
		fmt.Printf("❌ Export stopped: %v\n", err)
		os.Exit(1)
	}
	if !report.OK() {
		os.Exit(1)
	}
}

// overrideConfig applies the non-empty command line flags on top of the
// project file.
func overrideConfig(cfg world.Config, scenesDir, outputDir, runtime string) world.Config {
	if scenesDir != "" {
		cfg.ScenesDir = scenesDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if runtime != "" {
		cfg.RuntimeImport = runtime
	}
	return cfg
}

func printReport(out io.Writer, report *world.ExportReport) {
	for _, r := range report.Written {
		fmt.Fprintf(out, "   ✓ %s\n", filepath.Base(r.Path))
		printDiagnostics(out, r)
	}
	for _, r := range report.Skipped {
		printDiagnostics(out, r)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(out, "   ✗ %s: %v\n", f.Scene, f.Err)
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(out, "✅ Generated %d, skipped %d (unchanged)\n", len(report.Written), len(report.Skipped))
	} else {
		fmt.Fprintf(out, "✅ Generated %d file(s)\n", len(report.Written))
	}
}

func printDiagnostics(out io.Writer, r world.ExportResult) {
	for _, d := range r.Diagnostics {
		fmt.Fprintf(out, "     ⚠️  %s: %s\n", r.Scene, d)
	}
}
