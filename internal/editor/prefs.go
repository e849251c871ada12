package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Prefs holds editor session state saved between runs of one project.
type Prefs struct {
	ScenePath string   `json:"scenePath"`
	Selected  string   `json:"selected,omitempty"`
	Expanded  []string `json:"expanded,omitempty"`
}

const PrefsFile = ".scenestudio_prefs.json"

// LoadPrefs reads the prefs file in dir. A missing file returns nil, nil.
func LoadPrefs(dir string) (*Prefs, error) {
	data, err := os.ReadFile(filepath.Join(dir, PrefsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read editor prefs: %w", err)
	}

	var prefs Prefs
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parse editor prefs: %w", err)
	}
	return &prefs, nil
}

func (p *Prefs) Save(dir string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal editor prefs: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, PrefsFile), data, 0644); err != nil {
		return fmt.Errorf("save editor prefs: %w", err)
	}
	return nil
}

// Prefs captures the current session for scenePath.
func (e *Editor) Prefs(scenePath string) *Prefs {
	prefs := &Prefs{ScenePath: scenePath, Selected: e.Selected}
	for id := range e.expanded {
		prefs.Expanded = append(prefs.Expanded, id)
	}
	sort.Strings(prefs.Expanded)
	return prefs
}

// ApplyPrefs restores a saved session. Ids no longer in the document are
// ignored.
func (e *Editor) ApplyPrefs(prefs *Prefs) {
	if prefs == nil {
		return
	}
	for _, id := range prefs.Expanded {
		if _, ok := e.doc.Find(id); ok {
			e.expanded[id] = true
		}
	}
	if prefs.Selected != "" {
		e.Select(prefs.Selected)
	}
}
