package stego_test

import (
	"image"
	"math"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/hueining/watermarkd/internal/stego"
)

// makeTextured builds a non-periodic pattern that survives resampling, so
// template matching has an unambiguous peak.
func makeTextured(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 30 + 0.5*float64(x) + 0.4*float64(y) +
				40*math.Sin(0.15*float64(x)) + 40*math.Cos(0.11*float64(y))
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			off := img.PixOffset(x, y)
			img.Pix[off] = uint8(v)
			img.Pix[off+1] = uint8(v)
			img.Pix[off+2] = uint8(v)
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

func TestEstimateCropFindsRegion(t *testing.T) {
	original := makeTextured(200, 150)
	template := imaging.Crop(original, image.Rect(40, 30, 140, 105))

	est, err := stego.EstimateCrop(original, template)
	if err != nil {
		t.Fatalf("EstimateCrop: %v", err)
	}

	const tol = 10
	for name, got := range map[string][2]int{
		"x1": {est.X1, 40}, "y1": {est.Y1, 30}, "x2": {est.X2, 140}, "y2": {est.Y2, 105},
	} {
		if d := got[0] - got[1]; d < -tol || d > tol {
			t.Errorf("%s = %d, want %d +/- %d", name, got[0], got[1], tol)
		}
	}
	if est.ShapeW != 200 || est.ShapeH != 150 {
		t.Errorf("shape = %dx%d, want 200x150", est.ShapeW, est.ShapeH)
	}
	if est.Score < 0.8 {
		t.Errorf("score = %v, want > 0.8", est.Score)
	}
	if est.Scale < 0.85 || est.Scale > 1.15 {
		t.Errorf("scale = %v, want about 1.0", est.Scale)
	}
}

func TestEstimateCropTooSmall(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if _, err := stego.EstimateCrop(a, b); err == nil {
		t.Error("expected error for tiny inputs")
	}
}

func TestRecoverCrop(t *testing.T) {
	template := makeTextured(100, 75)

	out, err := stego.RecoverCrop(template, 40, 30, 140, 105, 200, 150)
	if err != nil {
		t.Fatalf("RecoverCrop: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Fatalf("canvas = %dx%d, want 200x150", b.Dx(), b.Dy())
	}

	// Outside the box the canvas stays black.
	for _, p := range []image.Point{{0, 0}, {199, 149}, {10, 140}} {
		off := out.PixOffset(p.X, p.Y)
		if out.Pix[off] != 0 || out.Pix[off+1] != 0 || out.Pix[off+2] != 0 {
			t.Errorf("pixel %v not black outside the recovered box", p)
		}
	}

	// Inside the box the template content lands at its offset; the box and
	// template have the same size, so values match up to resampling rounding.
	srcOff := template.PixOffset(10, 10)
	dstOff := out.PixOffset(50, 40)
	if d := int(out.Pix[dstOff]) - int(template.Pix[srcOff]); d < -2 || d > 2 {
		t.Errorf("recovered pixel = %d, want %d +/- 2", out.Pix[dstOff], template.Pix[srcOff])
	}
}

func TestRecoverCropValidation(t *testing.T) {
	template := makeTextured(16, 16)
	cases := [][6]int{
		{-1, 0, 10, 10, 100, 100},
		{0, 0, 0, 10, 100, 100},
		{0, 0, 120, 10, 100, 100},
		{0, 0, 10, 10, 0, 0},
	}
	for _, c := range cases {
		if _, err := stego.RecoverCrop(template, c[0], c[1], c[2], c[3], c[4], c[5]); err == nil {
			t.Errorf("expected error for box %v", c)
		}
	}
}
