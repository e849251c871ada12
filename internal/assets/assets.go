package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ScriptSource reads external script files referenced by script components.
type ScriptSource interface {
	ReadScript(path string) (string, error)
}

// ScriptWriter stores script text back to an external file.
type ScriptWriter interface {
	WriteScript(path, code string) error
}

// ImageRef points at a sprite image: a file path, or inline data URL.
// Path wins when both are set.
type ImageRef struct {
	Path string
	Data string
}

// ImageHandle describes a probed image.
type ImageHandle struct {
	Width  int
	Height int
	Format string
}

// ImageSource resolves sprite images to their dimensions.
type ImageSource interface {
	Image(ref ImageRef) (ImageHandle, error)
}

var ErrNoImage = errors.New("image reference is empty")

// Manager serves scripts and images from a project directory, caching image
// probes by path.
type Manager struct {
	root   string
	images map[string]ImageHandle
}

func NewManager(root string) *Manager {
	return &Manager{
		root:   root,
		images: make(map[string]ImageHandle),
	}
}

// Root returns the directory relative paths are resolved against.
func (m *Manager) Root() string {
	return m.root
}

func (m *Manager) resolve(path string) string {
	if filepath.IsAbs(path) || m.root == "" {
		return path
	}
	return filepath.Join(m.root, filepath.FromSlash(path))
}

func (m *Manager) ReadScript(path string) (string, error) {
	data, err := os.ReadFile(m.resolve(path))
	if err != nil {
		return "", fmt.Errorf("read script %s: %w", path, err)
	}
	return string(data), nil
}

func (m *Manager) WriteScript(path, code string) error {
	full := m.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("write script %s: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(code), 0644); err != nil {
		return fmt.Errorf("write script %s: %w", path, err)
	}
	return nil
}

// Image reads only the image header to find its size.
func (m *Manager) Image(ref ImageRef) (ImageHandle, error) {
	if ref.Path != "" {
		if h, ok := m.images[ref.Path]; ok {
			return h, nil
		}
		f, err := os.Open(m.resolve(ref.Path))
		if err != nil {
			return ImageHandle{}, fmt.Errorf("open image %s: %w", ref.Path, err)
		}
		defer f.Close()
		cfg, format, err := image.DecodeConfig(f)
		if err != nil {
			return ImageHandle{}, fmt.Errorf("decode image %s: %w", ref.Path, err)
		}
		h := ImageHandle{Width: cfg.Width, Height: cfg.Height, Format: format}
		m.images[ref.Path] = h
		return h, nil
	}
	if ref.Data != "" {
		data, err := DecodeDataURL(ref.Data)
		if err != nil {
			return ImageHandle{}, err
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return ImageHandle{}, fmt.Errorf("decode inline image: %w", err)
		}
		return ImageHandle{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
	}
	return ImageHandle{}, ErrNoImage
}

// DecodeDataURL returns the payload of a "data:<mime>;base64,<data>" URL.
func DecodeDataURL(url string) ([]byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URL has no payload")
	}
	if !strings.HasSuffix(header, ";base64") {
		return []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL: %w", err)
	}
	return data, nil
}
