// Package stego implements the concealed-watermark subsystem: a DWT-DCT-SVD
// quantization embedding keyed by two integer passwords, the simulated
// attacks used to test its robustness, and crop estimation/recovery.
//
// Embedding pipeline, per channel plane:
//  1. Trim the image to dimensions divisible by 4 and convert to YUV.
//  2. Single-level 2D Haar DWT of the U plane; take the LL subband.
//  3. For each 4x4 LL block (in the order given by the image password):
//     DCT the block, SVD the result, quantize the leading singular value to
//     carry one watermark bit, reconstruct, inverse DCT.
//     s0 = (floor(s0/scale) + 0.25 + 0.5*bit) * scale, scale = 36.
//  4. Inverse DWT with the original LH/HL/HH, convert back to RGB.
//
// The watermark password permutes the bit sequence before it is spread over
// the blocks; the image password permutes which block carries which bit.
// Extraction reverses both permutations, so mismatched passwords yield
// garbage rather than an error.
package stego

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hueining/watermarkd/internal/stego/dct"
	"github.com/hueining/watermarkd/internal/stego/dwt"
)

const (
	// embedScale is the quantization step for the leading singular value.
	embedScale = 36.0
	// blockSize is the side of the LL blocks that each carry one bit.
	blockSize = 4
)

// ErrImageTooSmall reports an image without enough 4x4 LL blocks to carry
// the requested payload.
var ErrImageTooSmall = errors.New("image too small for payload")

// Embed hides the UTF-8 text in a copy of img and returns the stego image
// together with the embedded bit length, which the caller must retain for
// extraction.
func Embed(img image.Image, text string, imgPassword, wmPassword int64) (*image.NRGBA, int, error) {
	bits := TextToBits(text)
	if len(bits) == 0 {
		return nil, 0, fmt.Errorf("embed: empty watermark text")
	}
	bits = shuffle(bits, wmPassword)
	wmLen := len(bits)

	src := toNRGBA(img)
	h, w, err := trimmedSize(src, wmLen)
	if err != nil {
		return nil, 0, err
	}

	yP, uP, vP := rgbToYUV(src, h, w)

	sb := dwt.Forward(uP)
	spreadBits(sb.LL, bits, imgPassword)
	modified := dwt.Inverse(sb)

	out := image.NewNRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	yuvToRGB(out, yP, modified, vP, h, w)
	return out, wmLen, nil
}

// Extract recovers a bitLength-bit watermark from img and decodes it as
// UTF-8 text. The passwords must match the ones used at embed time.
func Extract(img image.Image, bitLength int, imgPassword, wmPassword int64) (string, error) {
	if bitLength <= 0 {
		return "", fmt.Errorf("extract: bit length must be positive")
	}

	src := toNRGBA(img)
	h, w, err := trimmedSize(src, 1)
	if err != nil {
		return "", err
	}

	_, uP, _ := rgbToYUV(src, h, w)
	sb := dwt.Forward(uP)

	// Average the per-block scores for each bit position, then threshold.
	sums := make([]float64, bitLength)
	counts := make([]int, bitLength)
	collectBits(sb.LL, bitLength, imgPassword, func(pos int, score float64) {
		sums[pos] += score
		counts[pos]++
	})

	bits := make([]int, bitLength)
	for k := range bits {
		if counts[k] > 0 && sums[k]/float64(counts[k]) > 0.5 {
			bits[k] = 1
		}
	}
	return BitsToText(unshuffle(bits, wmPassword)), nil
}

// Capacity returns the number of watermark bits img can carry.
func Capacity(img image.Image) int {
	b := img.Bounds()
	h := (b.Dy() / 4) * 4
	w := (b.Dx() / 4) * 4
	if h < 8 || w < 8 {
		return 0
	}
	return (h / 2 / blockSize) * (w / 2 / blockSize)
}

// spreadBits walks the 4x4 blocks of ll in row-major order and rewrites each
// with the bit assigned to it by the image-password block permutation.
func spreadBits(ll [][]float64, bits []int, imgPassword int64) {
	rows := len(ll) / blockSize
	cols := len(ll[0]) / blockSize
	order := permutation(imgPassword, rows*cols)
	plan := dct.NewPlan(blockSize)

	num := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			bit := bits[order[num]%len(bits)]
			block := readBlock(ll, i*blockSize, j*blockSize)
			writeBlock(ll, embedBlock(plan, block, bit), i*blockSize, j*blockSize)
			num++
		}
	}
}

// collectBits walks the blocks in the same keyed order as spreadBits and
// reports each block's score to the bit position it carries.
func collectBits(ll [][]float64, bitLength int, imgPassword int64, report func(pos int, score float64)) {
	rows := len(ll) / blockSize
	cols := len(ll[0]) / blockSize
	order := permutation(imgPassword, rows*cols)
	plan := dct.NewPlan(blockSize)

	num := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			block := readBlock(ll, i*blockSize, j*blockSize)
			report(order[num]%bitLength, inferBlock(plan, block))
			num++
		}
	}
}

// embedBlock quantizes the leading singular value of the block's DCT to
// carry one bit, then reconstructs the block.
func embedBlock(plan *dct.Plan, block []float64, bit int) []float64 {
	n := plan.Size()
	m := mat.NewDense(n, n, plan.Forward(block))

	var svd mat.SVD
	svd.Factorize(m, mat.SVDThin)
	s := svd.Values(nil)
	s[0] = (math.Floor(s[0]/embedScale) + 0.25 + 0.5*float64(bit)) * embedScale

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var tmp, rec mat.Dense
	tmp.Mul(&u, mat.NewDiagDense(n, s))
	rec.Mul(&tmp, v.T())

	flat := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			flat[i*n+j] = rec.At(i, j)
		}
	}
	return plan.Inverse(flat)
}

// inferBlock reads the bit score carried by a block: 1 when the leading
// singular value sits in the upper half of its quantization cell.
func inferBlock(plan *dct.Plan, block []float64) float64 {
	n := plan.Size()
	m := mat.NewDense(n, n, plan.Forward(block))

	var svd mat.SVD
	svd.Factorize(m, mat.SVDThin)
	s := svd.Values(nil)

	mod := math.Mod(s[0], embedScale)
	if mod < 0 {
		mod += embedScale
	}
	if mod > embedScale*0.5 {
		return 1.0
	}
	return 0.0
}

func readBlock(plane [][]float64, row, col int) []float64 {
	block := make([]float64, blockSize*blockSize)
	for i := 0; i < blockSize; i++ {
		copy(block[i*blockSize:(i+1)*blockSize], plane[row+i][col:col+blockSize])
	}
	return block
}

func writeBlock(plane [][]float64, block []float64, row, col int) {
	for i := 0; i < blockSize; i++ {
		copy(plane[row+i][col:col+blockSize], block[i*blockSize:(i+1)*blockSize])
	}
}

// trimmedSize returns the image dimensions trimmed to multiples of 4 and
// verifies the trimmed area carries at least wmLen blocks.
func trimmedSize(img *image.NRGBA, wmLen int) (h, w int, err error) {
	b := img.Bounds()
	h = (b.Dy() / 4) * 4
	w = (b.Dx() / 4) * 4
	if h < 8 || w < 8 {
		return 0, 0, fmt.Errorf("%w: %dx%d, need at least 8x8", ErrImageTooSmall, b.Dx(), b.Dy())
	}
	numBlocks := (h / 2 / blockSize) * (w / 2 / blockSize)
	if numBlocks < wmLen {
		return 0, 0, fmt.Errorf("%w: %d blocks available for %d bits", ErrImageTooSmall, numBlocks, wmLen)
	}
	return h, w, nil
}

// rgbToYUV extracts Y, U, V float64 planes for the first h rows and w
// columns of img, using the OpenCV BT.601 coefficients.
func rgbToYUV(img *image.NRGBA, h, w int) (yP, uP, vP [][]float64) {
	minX, minY := img.Rect.Min.X, img.Rect.Min.Y
	yP = make([][]float64, h)
	uP = make([][]float64, h)
	vP = make([][]float64, h)
	for y := 0; y < h; y++ {
		yP[y] = make([]float64, w)
		uP[y] = make([]float64, w)
		vP[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			off := img.PixOffset(minX+x, minY+y)
			r := float64(img.Pix[off])
			g := float64(img.Pix[off+1])
			b := float64(img.Pix[off+2])

			yP[y][x] = 0.299*r + 0.587*g + 0.114*b
			uP[y][x] = -0.14713*r - 0.28886*g + 0.436*b + 128.0
			vP[y][x] = 0.615*r - 0.51499*g - 0.10001*b + 128.0
		}
	}
	return yP, uP, vP
}

// yuvToRGB writes the planes back into the first h rows and w columns of
// img, clamping to [0,255]. Pixels outside the trimmed region keep their
// original values; alpha is untouched.
func yuvToRGB(img *image.NRGBA, yP, uP, vP [][]float64, h, w int) {
	minX, minY := img.Rect.Min.X, img.Rect.Min.Y
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			yv, uv, vv := yP[y][x], uP[y][x], vP[y][x]

			r := yv + 1.13983*(vv-128.0)
			g := yv - 0.39465*(uv-128.0) - 0.58060*(vv-128.0)
			b := yv + 2.03211*(uv-128.0)

			off := img.PixOffset(minX+x, minY+y)
			img.Pix[off] = clampU8(r)
			img.Pix[off+1] = clampU8(g)
			img.Pix[off+2] = clampU8(b)
		}
	}
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// toNRGBA normalizes any decoded image to NRGBA.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}
