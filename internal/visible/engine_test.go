package visible

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/hueining/watermarkd/internal/fonts"
)

func whiteCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func TestApplyValidation(t *testing.T) {
	e := &Engine{}
	src := whiteCanvas(100, 100)

	cases := []struct {
		name string
		opts Options
		want error
	}{
		{"empty text", Options{Text: "  ", FontSize: 12, Color: "#000", Opacity: 50}, ErrInvalidSpec},
		{"zero font size", Options{Text: "x", FontSize: 0, Color: "#000", Opacity: 50}, ErrInvalidSpec},
		{"bad color", Options{Text: "x", FontSize: 12, Color: "oops", Opacity: 50}, ErrInvalidColor},
		{"bad layout", Options{Text: "x", FontSize: 12, Color: "#000", Opacity: 50, Position: Grid,
			Grid: GridLayout{OriginX: -1}}, ErrInvalidLayout},
	}
	for _, c := range cases {
		if _, err := e.Apply(src, c.opts); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

// Compositing a zero-opacity watermark must leave the source pixels
// untouched.
func TestApplyZeroOpacityIdempotent(t *testing.T) {
	e := &Engine{}
	src := whiteCanvas(200, 120)

	out, err := e.Apply(src, Options{
		Text: "WATERMARK", Position: Center, Color: "#ff0000", Opacity: 0, FontSize: 24,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	b := out.Bounds()
	if b.Dx() != 200 || b.Dy() != 120 {
		t.Fatalf("output %dx%d, want 200x120", b.Dx(), b.Dy())
	}
	for y := 0; y < 120; y++ {
		for x := 0; x < 200; x++ {
			r, g, bl, a := out.At(x, y).RGBA()
			if r>>8 != 0xff || g>>8 != 0xff || bl>>8 != 0xff || a>>8 != 0xff {
				t.Fatalf("pixel (%d,%d) changed by zero-opacity watermark", x, y)
			}
		}
	}
}

// A full-opacity stamp pixel must land as exactly the fill color.
func TestCompositeOverFullOpacity(t *testing.T) {
	src := whiteCanvas(10, 10)
	layer := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	layer.SetNRGBA(4, 5, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff})

	out := compositeOver(src, layer)
	got := out.RGBAAt(4, 5)
	if got.R != 0x12 || got.G != 0x34 || got.B != 0x56 || got.A != 0xff {
		t.Errorf("composited pixel = %+v, want {12 34 56 ff}", got)
	}
	if p := out.RGBAAt(0, 0); p.R != 0xff || p.A != 0xff {
		t.Errorf("untouched pixel = %+v, want opaque white", p)
	}
}

// A zero rotation angle must take the direct rendering path: the layer is
// bit-identical to drawing the stamp without the rotation machinery.
func TestPlaceStampZeroAngleExact(t *testing.T) {
	face := fonts.Builtin(18)
	textW, textH := Measure(face, "MARK")
	fill := color.NRGBA{A: 0xff}

	direct := image.NewNRGBA(image.Rect(0, 0, 300, 200))
	drawStamp(direct, face, 40, 60, "MARK", fill)

	placed := image.NewNRGBA(image.Rect(0, 0, 300, 200))
	placeStamp(placed, face, Tile{X: 40, Y: 60, W: textW, H: textH}, "MARK", fill, 0, textW, textH)

	for i := range direct.Pix {
		if direct.Pix[i] != placed.Pix[i] {
			t.Fatalf("zero-angle placement differs from direct rendering at offset %d", i)
		}
	}
}

// For any angle the rotated stamp's ink centroid stays on the unrotated
// stamp's center.
func TestRotationCenterInvariance(t *testing.T) {
	face := fonts.Builtin(24)
	const text = "OO"
	textW, textH := Measure(face, text)
	fill := color.NRGBA{A: 0xff}

	for _, angle := range []int{0, 15, 45, 90, 180, -30} {
		layer := image.NewNRGBA(image.Rect(0, 0, 400, 400))
		tile := Tile{X: 180, Y: 180, W: textW, H: textH}
		placeStamp(layer, face, tile, text, fill, angle, textW, textH)

		var sumX, sumY, n float64
		for y := 0; y < 400; y++ {
			for x := 0; x < 400; x++ {
				if layer.Pix[layer.PixOffset(x, y)+3] > 0 {
					sumX += float64(x)
					sumY += float64(y)
					n++
				}
			}
		}
		if n == 0 {
			t.Fatalf("angle %d: no ink rendered", angle)
		}
		wantX := float64(tile.X) + float64(textW)/2
		wantY := float64(tile.Y) + float64(textH)/2
		dx, dy := sumX/n-wantX, sumY/n-wantY
		if math.Hypot(dx, dy) > 1.5 {
			t.Errorf("angle %d: centroid off center by (%.2f, %.2f)", angle, dx, dy)
		}
	}
}

// End to end: anchored bottom-right stamp marks the bottom-right region and
// leaves the top-left quadrant untouched.
func TestApplyBottomRightAnchor(t *testing.T) {
	e := &Engine{}
	src := whiteCanvas(800, 600)

	out, err := e.Apply(src, Options{
		Text: "CONFIDENTIAL", Position: BottomRight, Color: "#000000", Opacity: 50, FontSize: 36,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("output %dx%d, want 800x600", b.Dx(), b.Dy())
	}

	marked := false
	for y := 300; y < 600 && !marked; y++ {
		for x := 400; x < 800; x++ {
			if p := out.RGBAAt(x, y); p.R != 0xff || p.G != 0xff || p.B != 0xff {
				marked = true
				break
			}
		}
	}
	if !marked {
		t.Error("bottom-right region carries no watermark ink")
	}

	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			if p := out.RGBAAt(x, y); p.R != 0xff || p.G != 0xff || p.B != 0xff {
				t.Fatalf("top-left quadrant changed at (%d,%d)", x, y)
			}
		}
	}
}

// Grid mode on a large canvas fills it with multiple stamps.
func TestApplyGridMode(t *testing.T) {
	e := &Engine{}
	src := whiteCanvas(600, 400)

	out, err := e.Apply(src, Options{
		Text: "wm", Position: Grid, Color: "#0000ff", Opacity: 80, FontSize: 16,
		Grid: GridLayout{OriginX: 20, OriginY: 20, SpaceX: 50, SpaceY: 50},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	inked := 0
	for y := 0; y < 400; y++ {
		for x := 0; x < 600; x++ {
			if p := out.RGBAAt(x, y); p.B > p.R {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("grid mode rendered no stamps")
	}
}

// An unknown family must fall back to the builtin face, not fail.
func TestApplyUnknownFontFallsBack(t *testing.T) {
	e := &Engine{Fonts: fonts.Dir{Root: t.TempDir()}}
	src := whiteCanvas(300, 200)

	if _, err := e.Apply(src, Options{
		Text: "x", Position: Center, Color: "#000", Opacity: 100, FontSize: 20, FontFamily: "no-such-font",
	}); err != nil {
		t.Fatalf("Apply with unknown font: %v", err)
	}
}
