package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestScriptReadWrite(t *testing.T) {
	m := NewManager(t.TempDir())

	if err := m.WriteScript("scenes/scripts/player.js", "function ready() {}\n"); err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}
	code, err := m.ReadScript("scenes/scripts/player.js")
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if code != "function ready() {}\n" {
		t.Errorf("Unexpected script %q", code)
	}

	if _, err := m.ReadScript("scenes/scripts/missing.js"); err == nil {
		t.Error("Expected error for missing script")
	}
}

func TestImageFromFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "coin.png"), pngBytes(t, 24, 12), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	m := NewManager(root)

	h, err := m.Image(ImageRef{Path: "coin.png"})
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if h.Width != 24 || h.Height != 12 || h.Format != "png" {
		t.Errorf("Expected 24x12 png, got %+v", h)
	}

	// Cached: the probe survives the file going away.
	os.Remove(filepath.Join(root, "coin.png"))
	if _, err := m.Image(ImageRef{Path: "coin.png"}); err != nil {
		t.Errorf("Expected cached probe, got %v", err)
	}
}

func TestImageFromDataURL(t *testing.T) {
	m := NewManager("")
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 8, 4))

	h, err := m.Image(ImageRef{Data: url})
	if err != nil {
		t.Fatalf("Image failed: %v", err)
	}
	if h.Width != 8 || h.Height != 4 {
		t.Errorf("Expected 8x4, got %dx%d", h.Width, h.Height)
	}
}

func TestImageErrors(t *testing.T) {
	m := NewManager(t.TempDir())

	if _, err := m.Image(ImageRef{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("Expected ErrNoImage, got %v", err)
	}
	if _, err := m.Image(ImageRef{Path: "nope.png"}); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := m.Image(ImageRef{Data: "data:text/plain,hello"}); err == nil {
		t.Error("Expected error for non-image data")
	}
}

func TestDecodeDataURL(t *testing.T) {
	data, err := DecodeDataURL("data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi")))
	if err != nil || string(data) != "hi" {
		t.Errorf("Expected 'hi', got %q (%v)", data, err)
	}
	data, err = DecodeDataURL("data:text/plain,raw")
	if err != nil || string(data) != "raw" {
		t.Errorf("Expected 'raw', got %q (%v)", data, err)
	}
	if _, err := DecodeDataURL("http://example.com/a.png"); err == nil {
		t.Error("Expected error for non-data URL")
	}
	if _, err := DecodeDataURL("data:image/png;base64"); err == nil {
		t.Error("Expected error for missing payload")
	}
}
