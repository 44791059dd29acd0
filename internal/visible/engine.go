// Package visible implements the visible-watermark engine: it plans a
// repeating grid (or single anchor) of text stamps over a canvas, renders
// each stamp with optional rotation into a transparent layer, and
// alpha-composites the layer onto the source image.
package visible

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"strings"

	"github.com/hueining/watermarkd/internal/fonts"
	"golang.org/x/image/font"
)

// ErrInvalidSpec reports a watermark spec that cannot be rendered (empty
// text, non-positive font size).
var ErrInvalidSpec = errors.New("invalid watermark spec")

// Options is the fully-resolved description of one visible watermark
// operation. Every field is validated before any pixel is written.
type Options struct {
	Text       string
	Position   Position
	Color      string // hex fill color
	Opacity    int    // 0-100, clamped
	FontSize   int
	FontFamily string
	Angle      int // degrees, clockwise-positive, 0 = no rotation
	Grid       GridLayout
}

// Engine renders visible watermarks. The font provider is injected; when it
// cannot resolve the requested family the engine falls back to the built-in
// face instead of failing the operation.
type Engine struct {
	Fonts fonts.Provider
}

// Apply stamps the watermark described by o over src and returns the
// flattened, opaque result. The source image is never mutated.
func (e *Engine) Apply(src image.Image, o Options) (*image.RGBA, error) {
	if strings.TrimSpace(o.Text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidSpec)
	}
	if o.FontSize <= 0 {
		return nil, fmt.Errorf("%w: font size %d", ErrInvalidSpec, o.FontSize)
	}
	fill, err := ResolveFill(o.Color, o.Opacity)
	if err != nil {
		return nil, err
	}
	if o.Position == Grid {
		if err := o.Grid.validate(); err != nil {
			return nil, err
		}
	}

	face := e.face(o.FontFamily, o.FontSize)
	textW, textH := Measure(face, o.Text)

	b := src.Bounds()
	canvasW, canvasH := b.Dx(), b.Dy()

	var tiles []Tile
	if o.Position == Grid {
		tiles = planGrid(o.Grid, canvasW, canvasH, textW, textH)
	} else {
		t := anchorTile(o.Position, canvasW, canvasH, textW, textH)
		if t.X >= 0 && t.Y >= 0 && t.X+t.W <= canvasW && t.Y+t.H <= canvasH {
			tiles = append(tiles, t)
		}
	}

	layer := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))
	for _, t := range tiles {
		placeStamp(layer, face, t, o.Text, fill, o.Angle, textW, textH)
	}

	return compositeOver(src, layer), nil
}

// face resolves the requested family, falling back to the built-in default
// when the provider has no usable font. Fallback is a recovery, not an
// error: the watermark must still be produced.
func (e *Engine) face(family string, size int) font.Face {
	if e.Fonts != nil {
		face, err := e.Fonts.Resolve(family, size)
		if err == nil {
			return face
		}
		if !errors.Is(err, fonts.ErrNotFound) {
			slog.Warn("font resolve failed, using builtin", "family", family, "error", err)
		}
	}
	return fonts.Builtin(size)
}

// compositeOver merges the watermark layer onto src with the standard "over"
// operator and flattens the result to an opaque image.
func compositeOver(src image.Image, layer *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
	draw.Draw(out, out.Bounds(), layer, image.Point{}, draw.Over)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
