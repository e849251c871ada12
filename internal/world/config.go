package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"scenestudio/internal/engine"
)

// ConfigFile is the project configuration file looked up in the project root.
const ConfigFile = "scenestudio.json"

// Config holds the per-project settings shared by the CLIs and the editor.
type Config struct {
	ScenesDir     string `json:"scenesDir"`
	OutputDir     string `json:"outputDir"`
	RuntimeImport string `json:"runtimeImport"`
	DefaultPreset string `json:"defaultPreset"`
	IndexFile     string `json:"indexFile"`
}

// DefaultConfig returns the settings used when no project file exists.
func DefaultConfig() Config {
	return Config{
		ScenesDir:     "assets/scenes",
		OutputDir:     "src/scenes",
		RuntimeImport: "kaboom/global",
		DefaultPreset: engine.DefaultPreset,
		IndexFile:     "index.js",
	}
}

// LoadConfig reads the project file in dir. A missing file yields the
// defaults; fields left empty in the file keep their default values.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if file.ScenesDir != "" {
		cfg.ScenesDir = file.ScenesDir
	}
	if file.OutputDir != "" {
		cfg.OutputDir = file.OutputDir
	}
	if file.RuntimeImport != "" {
		cfg.RuntimeImport = file.RuntimeImport
	}
	if file.IndexFile != "" {
		cfg.IndexFile = file.IndexFile
	}
	if file.DefaultPreset != "" {
		if _, ok := engine.ViewportPresets[file.DefaultPreset]; !ok {
			return cfg, fmt.Errorf("config: unknown viewport preset %q", file.DefaultPreset)
		}
		cfg.DefaultPreset = file.DefaultPreset
	}
	return cfg, nil
}

// Save writes cfg to the project file in dir.
func (c Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
