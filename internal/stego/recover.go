package stego

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// ErrNoMatch reports that template matching found no usable correlation
// between the original and the attacked image.
var ErrNoMatch = errors.New("no crop match found")

// CropEstimate locates an attacked image inside its original: the crop box
// in original coordinates, the original dimensions, the correlation score of
// the best match and the scale the template was resized by.
type CropEstimate struct {
	X1, Y1, X2, Y2 int
	ShapeW, ShapeH int
	Score          float64
	Scale          float64
}

// searchMaxDim bounds the coarse search plane; matching runs on a
// downsampled copy and the result is mapped back to full resolution.
const searchMaxDim = 128

// EstimateCrop finds where template (a cropped, possibly rescaled copy) sits
// inside original. It slides the template over a downsampled grayscale of
// the original at scales 0.5 to 2.0 and keeps the placement with the highest
// normalized cross-correlation.
func EstimateCrop(original, template image.Image) (CropEstimate, error) {
	ob := original.Bounds()
	tb := template.Bounds()
	if ob.Dx() < 8 || ob.Dy() < 8 || tb.Dx() < 8 || tb.Dy() < 8 {
		return CropEstimate{}, fmt.Errorf("%w: images too small", ErrNoMatch)
	}

	f := 1.0
	if m := max(ob.Dx(), ob.Dy()); m > searchMaxDim {
		f = float64(searchMaxDim) / float64(m)
	}
	searchW := max(1, int(math.Round(float64(ob.Dx())*f)))
	searchH := max(1, int(math.Round(float64(ob.Dy())*f)))
	search, sw, sh := grayPlane(imaging.Resize(original, searchW, searchH, imaging.Linear))

	best := CropEstimate{Score: -2}
	for s := 0.5; s <= 2.0001; s += 0.1 {
		// Undo a presumed rescale of s before sliding over the original.
		tw := int(math.Round(f * float64(tb.Dx()) / s))
		th := int(math.Round(f * float64(tb.Dy()) / s))
		if tw < 4 || th < 4 || tw > sw || th > sh {
			continue
		}
		tmpl, _, _ := grayPlane(imaging.Resize(template, tw, th, imaging.Linear))

		x, y, score := matchTemplate(search, sw, sh, tmpl, tw, th)
		if score > best.Score {
			best = CropEstimate{
				X1:     int(math.Round(float64(x) / f)),
				Y1:     int(math.Round(float64(y) / f)),
				X2:     int(math.Round(float64(x+tw) / f)),
				Y2:     int(math.Round(float64(y+th) / f)),
				ShapeW: ob.Dx(),
				ShapeH: ob.Dy(),
				Score:  score,
				Scale:  s,
			}
		}
	}

	if best.Score <= -2 {
		return CropEstimate{}, ErrNoMatch
	}
	best.X2 = min(best.X2, ob.Dx())
	best.Y2 = min(best.Y2, ob.Dy())
	return best, nil
}

// RecoverCrop re-embeds an attacked crop into a canvas of the original
// dimensions: the template is resized into the estimated box and the rest of
// the canvas stays black, restoring the geometry the extractor expects.
func RecoverCrop(template image.Image, x1, y1, x2, y2, origW, origH int) (*image.NRGBA, error) {
	if origW <= 0 || origH <= 0 {
		return nil, fmt.Errorf("recover: invalid original shape %dx%d", origW, origH)
	}
	if x1 < 0 || y1 < 0 || x2 > origW || y2 > origH || x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("recover: crop box (%d,%d)-(%d,%d) outside %dx%d", x1, y1, x2, y2, origW, origH)
	}

	patch := imaging.Resize(template, x2-x1, y2-y1, imaging.Linear)
	canvas := imaging.New(origW, origH, color.NRGBA{A: 0xff})
	return imaging.Paste(canvas, patch, image.Pt(x1, y1)), nil
}

// matchTemplate returns the position and score of the best normalized
// cross-correlation of tmpl inside search. Scores are in [-1,1]; flat
// windows score 0.
func matchTemplate(search []float64, sw, sh int, tmpl []float64, tw, th int) (int, int, float64) {
	n := float64(tw * th)
	meanT := stat.Mean(tmpl, nil)
	stdT := stat.StdDev(tmpl, nil)

	window := make([]float64, tw*th)
	bestX, bestY, bestScore := 0, 0, -2.0
	for y := 0; y+th <= sh; y++ {
		for x := 0; x+tw <= sw; x++ {
			for r := 0; r < th; r++ {
				copy(window[r*tw:(r+1)*tw], search[(y+r)*sw+x:(y+r)*sw+x+tw])
			}
			meanW := stat.Mean(window, nil)
			stdW := stat.StdDev(window, nil)
			if stdW == 0 || stdT == 0 {
				continue
			}
			var cross float64
			for i := range window {
				cross += (window[i] - meanW) * (tmpl[i] - meanT)
			}
			score := cross / ((n - 1) * stdW * stdT)
			if score > bestScore {
				bestX, bestY, bestScore = x, y, score
			}
		}
	}
	return bestX, bestY, bestScore
}

// grayPlane flattens img to a row-major luminance plane.
func grayPlane(img image.Image) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
		}
	}
	return out, w, h
}
