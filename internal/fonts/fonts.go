// Package fonts resolves font families to renderable faces. The provider is
// injectable so the rendering engine never touches the OS filesystem layout
// directly; callers that cannot resolve a family fall back to the built-in
// faces, which are always available.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrNotFound is returned by a Provider when the requested family cannot be
// resolved. Callers are expected to recover by using Builtin.
var ErrNotFound = errors.New("font not found")

// A Provider maps a font family name and point size to a renderable face.
type Provider interface {
	Resolve(family string, size int) (font.Face, error)
}

// Dir is a Provider backed by a directory of .ttf/.otf files. A family "foo"
// matches foo.ttf or foo.otf (case-insensitive).
type Dir struct {
	Root string
}

func (d Dir) Resolve(family string, size int) (font.Face, error) {
	family = strings.TrimSpace(family)
	if family == "" || d.Root == "" {
		return nil, ErrNotFound
	}

	path, err := d.find(family)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("make face %s: %w", path, err)
	}
	return face, nil
}

func (d Dir) find(family string) (string, error) {
	for _, ext := range []string{".ttf", ".otf"} {
		p := filepath.Join(d.Root, family+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return "", ErrNotFound
	}
	want := strings.ToLower(family)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		if strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name))) == want {
			return filepath.Join(d.Root, name), nil
		}
	}
	return "", ErrNotFound
}

// Builtin returns a face for the embedded Go Regular font at the given size.
// If the embedded font cannot be used it degrades to the fixed 7x13 bitmap
// face, so the returned face is always usable.
func Builtin(size int) font.Face {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}
