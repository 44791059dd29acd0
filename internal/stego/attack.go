package stego

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// AttackKind names a simulated distortion applied to a stego image to test
// watermark robustness.
type AttackKind string

const (
	AttackCut        AttackKind = "cut"         // crop a region, optionally rescale
	AttackResize     AttackKind = "resize"      // rescale to a fixed size
	AttackBright     AttackKind = "bright"      // multiply brightness
	AttackShelter    AttackKind = "shelter"     // occlude with random rectangles
	AttackSaltPepper AttackKind = "salt_pepper" // flip random pixels to white
	AttackRotate     AttackKind = "rot"         // rotate about the center, same bounds
)

// ErrUnknownAttack reports an attack type outside the supported set.
var ErrUnknownAttack = errors.New("unknown attack type")

// ParseAttackKind validates a client-supplied attack type.
func ParseAttackKind(s string) (AttackKind, error) {
	switch k := AttackKind(s); k {
	case AttackCut, AttackResize, AttackBright, AttackShelter, AttackSaltPepper, AttackRotate:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAttack, s)
	}
}

// AttackParams carries the per-kind knobs. Zero values select the defaults
// documented on each field; kinds ignore fields they do not use.
type AttackParams struct {
	// Region is the relative crop box x1,y1,x2,y2 in [0,1] for cut.
	// Default 0.3,0.1,0.7,0.9.
	Region [4]float64
	// Scale rescales the cut result; 0 or 1 keeps the cropped size.
	Scale float64
	// Width and Height are the resize target. Default 500x500.
	Width, Height int
	// Ratio is the brightness factor for bright (default 0.8), the
	// rectangle side fraction for shelter (default 0.1), and the pixel
	// fraction for salt_pepper (default 0.01).
	Ratio float64
	// Count is the rectangle count for shelter. Default 3.
	Count int
	// Angle is the rotation in degrees for rot. Default 45.
	Angle float64
	// Seed drives the randomness of shelter and salt_pepper so attacks
	// can be replayed.
	Seed int64
}

// Attack returns a distorted copy of img. The input is never mutated.
func Attack(img image.Image, kind AttackKind, p AttackParams) (image.Image, error) {
	switch kind {
	case AttackCut:
		return cutAttack(img, p)
	case AttackResize:
		return resizeAttack(img, p), nil
	case AttackBright:
		return brightAttack(img, p), nil
	case AttackShelter:
		return shelterAttack(img, p), nil
	case AttackSaltPepper:
		return saltPepperAttack(img, p), nil
	case AttackRotate:
		return rotateAttack(img, p), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttack, kind)
	}
}

func cutAttack(img image.Image, p AttackParams) (image.Image, error) {
	r := p.Region
	if r == ([4]float64{}) {
		r = [4]float64{0.3, 0.1, 0.7, 0.9}
	}
	if r[0] < 0 || r[1] < 0 || r[2] > 1 || r[3] > 1 || r[0] >= r[2] || r[1] >= r[3] {
		return nil, fmt.Errorf("cut: invalid region %v", r)
	}

	b := img.Bounds()
	x1 := b.Min.X + int(r[0]*float64(b.Dx()))
	y1 := b.Min.Y + int(r[1]*float64(b.Dy()))
	x2 := b.Min.X + int(r[2]*float64(b.Dx()))
	y2 := b.Min.Y + int(r[3]*float64(b.Dy()))

	out := imaging.Crop(img, image.Rect(x1, y1, x2, y2))
	if p.Scale > 0 && p.Scale != 1 {
		w := int(float64(out.Bounds().Dx()) * p.Scale)
		h := int(float64(out.Bounds().Dy()) * p.Scale)
		return transform.Resize(out, w, h, transform.Linear), nil
	}
	return out, nil
}

func resizeAttack(img image.Image, p AttackParams) image.Image {
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		w, h = 500, 500
	}
	return transform.Resize(img, w, h, transform.Linear)
}

func brightAttack(img image.Image, p AttackParams) image.Image {
	ratio := p.Ratio
	if ratio <= 0 {
		ratio = 0.8
	}
	// adjust.Brightness takes the relative change, not the factor.
	return adjust.Brightness(img, ratio-1.0)
}

func shelterAttack(img image.Image, p AttackParams) image.Image {
	ratio := p.Ratio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.1
	}
	n := p.Count
	if n <= 0 {
		n = 3
	}

	out := cloneNRGBA(img)
	b := out.Bounds()
	rw := int(ratio * float64(b.Dx()))
	rh := int(ratio * float64(b.Dy()))
	if rw < 1 || rh < 1 {
		return out
	}

	rng := rand.New(rand.NewSource(p.Seed))
	for i := 0; i < n; i++ {
		x := rng.Intn(b.Dx() - rw + 1)
		y := rng.Intn(b.Dy() - rh + 1)
		box := image.Rect(x, y, x+rw, y+rh)
		draw.Draw(out, box, image.NewUniform(color.NRGBA{A: 0xff}), image.Point{}, draw.Src)
	}
	return out
}

func saltPepperAttack(img image.Image, p AttackParams) image.Image {
	ratio := p.Ratio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.01
	}

	out := cloneNRGBA(img)
	b := out.Bounds()
	rng := rand.New(rand.NewSource(p.Seed))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if rng.Float64() < ratio {
				off := out.PixOffset(x, y)
				out.Pix[off] = 0xff
				out.Pix[off+1] = 0xff
				out.Pix[off+2] = 0xff
			}
		}
	}
	return out
}

func rotateAttack(img image.Image, p AttackParams) image.Image {
	angle := p.Angle
	if angle == 0 {
		angle = 45
	}
	// Same bounds, rotated about the center; the corners fall off.
	return transform.Rotate(img, angle, nil)
}

// cloneNRGBA copies img into a fresh NRGBA with a zero-origin bounds.
func cloneNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
