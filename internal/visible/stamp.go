package visible

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// rotationMargin is added to the stamp diagonal when sizing the intermediate
// rotation buffer, so no ink is lost for any angle.
const rotationMargin = 50

// Measure returns the tight pixel bounding box of text rendered with face.
func Measure(face font.Face, text string) (w, h int) {
	bounds, _ := font.BoundString(face, text)
	w = (bounds.Max.X - bounds.Min.X).Ceil()
	h = (bounds.Max.Y - bounds.Min.Y).Ceil()
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// drawStamp renders text so the top-left corner of its tight bounding box
// lands exactly at (x, y).
func drawStamp(dst draw.Image, face font.Face, x, y int, text string, col color.NRGBA) {
	bounds, _ := font.BoundString(face, text)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x) - bounds.Min.X,
			Y: fixed.I(y) - bounds.Min.Y,
		},
	}
	d.DrawString(text)
}

// placeStamp renders one stamp for tile t into the watermark layer. The
// public angle is clockwise-positive; the rotation primitive rotates
// counter-clockwise, so the angle is negated before use.
//
// For a non-zero angle the stamp is rendered centered in a square buffer
// large enough that rotation cannot clip it, rotated, cropped back to the
// same size, and pasted so the rotated stamp's center coincides with the
// unrotated stamp's geometric center.
func placeStamp(layer *image.NRGBA, face font.Face, t Tile, text string, col color.NRGBA, angle int, textW, textH int) {
	if angle == 0 {
		drawStamp(layer, face, t.X, t.Y, text, col)
		return
	}

	margin := int(math.Ceil(math.Hypot(float64(textW), float64(textH)))) + rotationMargin
	tempSize := max(textW, textH) + 2*margin

	tmp := image.NewNRGBA(image.Rect(0, 0, tempSize, tempSize))
	drawStamp(tmp, face, (tempSize-textW)/2, (tempSize-textH)/2, text, col)

	rotated := imaging.Rotate(tmp, float64(-angle), color.NRGBA{})
	rotated = imaging.CropCenter(rotated, tempSize, tempSize)

	centerX := t.X + textW/2
	centerY := t.Y + textH/2
	pasteOver(layer, rotated, centerX-tempSize/2, centerY-tempSize/2)
}

// pasteOver merges src onto dst at (x, y) using src's alpha as the mask, so
// transparent source pixels leave dst untouched.
func pasteOver(dst *image.NRGBA, src image.Image, x, y int) {
	r := image.Rect(x, y, x+src.Bounds().Dx(), y+src.Bounds().Dy())
	draw.DrawMask(dst, r, src, src.Bounds().Min, src, src.Bounds().Min, draw.Over)
}
