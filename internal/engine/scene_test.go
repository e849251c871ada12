package engine

import "testing"

func TestNewSceneDefaults(t *testing.T) {
	scene := NewScene("Test")

	if scene.Viewport.Preset != DefaultPreset {
		t.Errorf("Expected preset %s, got %s", DefaultPreset, scene.Viewport.Preset)
	}
	if scene.Viewport.Width != 360 || scene.Viewport.Height != 640 {
		t.Errorf("Expected 360x640, got %vx%v", scene.Viewport.Width, scene.Viewport.Height)
	}
	if scene.Objects == nil {
		t.Error("Objects should be initialized")
	}
}

func TestResolveViewport(t *testing.T) {
	vp := ResolveViewport("desktop-hd", 0, 0)
	if vp.Width != 1280 || vp.Height != 720 {
		t.Errorf("Expected 1280x720, got %vx%v", vp.Width, vp.Height)
	}

	// A preset name wins over the stored size.
	vp = ResolveViewport("square", 10, 10)
	if vp.Width != 800 {
		t.Errorf("Expected preset size 800, got %v", vp.Width)
	}

	vp = ResolveViewport(CustomPreset, 500, 300)
	if vp.Width != 500 || vp.Height != 300 || vp.Preset != CustomPreset {
		t.Errorf("Expected custom 500x300, got %+v", vp)
	}

	vp = ResolveViewport("", 0, -1)
	if vp.Preset != DefaultPreset {
		t.Errorf("Expected fallback to %s, got %s", DefaultPreset, vp.Preset)
	}
}

func TestPresetNamesSorted(t *testing.T) {
	names := PresetNames()
	if len(names) != len(ViewportPresets) {
		t.Fatalf("Expected %d presets, got %d", len(ViewportPresets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Preset names not sorted: %v", names)
		}
	}
}

func TestSceneFindByID(t *testing.T) {
	scene := NewScene("Test")
	parent := NewGameObject("p", "Parent", KindEmpty)
	child := NewGameObject("c", "Child", KindEmpty)
	parent.Children = append(parent.Children, child)
	scene.Objects = append(scene.Objects, parent)

	if scene.FindByID("c") != child {
		t.Error("FindByID should find nested objects")
	}
	if scene.FindByID("missing") != nil {
		t.Error("FindByID should return nil for unknown id")
	}
}

func TestSceneFindByTag(t *testing.T) {
	scene := NewScene("Test")
	a := NewGameObject("a", "A", KindEmpty)
	a.Tags = []string{"enemy"}
	b := NewGameObject("b", "B", KindEmpty)
	b.Tags = []string{"enemy", "boss"}
	c := NewGameObject("c", "C", KindEmpty)
	a.Children = append(a.Children, b)
	scene.Objects = append(scene.Objects, a, c)

	enemies := scene.FindByTag("enemy")
	if len(enemies) != 2 {
		t.Errorf("Expected 2 enemies, got %d", len(enemies))
	}
	if len(scene.FindByTag("none")) != 0 {
		t.Error("Expected no objects for unknown tag")
	}
}
