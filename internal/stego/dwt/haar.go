// Package dwt implements a single-level 2D Haar discrete wavelet transform
// over float64 planes with even dimensions.
package dwt

// Subbands holds the four quarter-size subbands of a single-level 2D Haar
// decomposition:
//
//	[ LL | LH ]
//	[ HL | HH ]
type Subbands struct {
	LL, LH, HL, HH [][]float64
}

// Forward decomposes src (h×w, both even) into its four subbands, each
// (h/2)×(w/2). src is not modified.
func Forward(src [][]float64) Subbands {
	h := len(src)
	w := len(src[0])
	halfH, halfW := h/2, w/2

	// Rows first: averages into the left half, differences into the right.
	rows := make([][]float64, h)
	for y := 0; y < h; y++ {
		rows[y] = haar1D(src[y])
	}

	sb := Subbands{
		LL: grid(halfH, halfW),
		LH: grid(halfH, halfW),
		HL: grid(halfH, halfW),
		HH: grid(halfH, halfW),
	}

	// Columns second, splitting directly into subbands.
	col := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = rows[y][x]
		}
		t := haar1D(col)
		for y := 0; y < halfH; y++ {
			if x < halfW {
				sb.LL[y][x] = t[y]
				sb.HL[y][x] = t[halfH+y]
			} else {
				sb.LH[y][x-halfW] = t[y]
				sb.HH[y][x-halfW] = t[halfH+y]
			}
		}
	}
	return sb
}

// Inverse reconstructs the (2h)×(2w) plane from four h×w subbands.
func Inverse(sb Subbands) [][]float64 {
	halfH := len(sb.LL)
	halfW := len(sb.LL[0])
	h, w := halfH*2, halfW*2

	// Undo the column pass.
	cols := make([][]float64, h)
	for y := 0; y < h; y++ {
		cols[y] = make([]float64, w)
	}
	col := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < halfH; y++ {
			if x < halfW {
				col[y] = sb.LL[y][x]
				col[halfH+y] = sb.HL[y][x]
			} else {
				col[y] = sb.LH[y][x-halfW]
				col[halfH+y] = sb.HH[y][x-halfW]
			}
		}
		t := unhaar1D(col)
		for y := 0; y < h; y++ {
			cols[y][x] = t[y]
		}
	}

	// Undo the row pass.
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = unhaar1D(cols[y])
	}
	return out
}

// haar1D transforms one even-length signal: the first half of the result
// holds pairwise averages, the second half pairwise half-differences.
func haar1D(src []float64) []float64 {
	n := len(src)
	half := n / 2
	out := make([]float64, n)
	for i := 0; i < half; i++ {
		out[i] = (src[2*i] + src[2*i+1]) / 2.0
		out[half+i] = (src[2*i] - src[2*i+1]) / 2.0
	}
	return out
}

func unhaar1D(src []float64) []float64 {
	n := len(src)
	half := n / 2
	out := make([]float64, n)
	for i := 0; i < half; i++ {
		out[2*i] = src[i] + src[half+i]
		out[2*i+1] = src[i] - src[half+i]
	}
	return out
}

func grid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}
