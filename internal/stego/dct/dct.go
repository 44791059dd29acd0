// Package dct implements the orthonormal 2D Type-II discrete cosine
// transform and its inverse (Type-III) on square blocks, matching the
// scipy/OpenCV norm='ortho' convention:
//
//	X[k] = scale(k) * sum_{i=0}^{N-1} x[i] * cos(pi * k * (2i+1) / (2N))
//	scale(0) = sqrt(1/N), scale(k>0) = sqrt(2/N)
//
// Blocks are row-major flat slices. A Plan precomputes the cosine basis for
// one block size so the per-block transforms reduce to matrix products.
package dct

import "math"

// Plan holds the precomputed basis for n×n blocks.
type Plan struct {
	n     int
	basis []float64 // basis[k*n+i] = scale(k) * cos(pi*k*(2i+1)/(2n))
}

// NewPlan builds a transform plan for n×n blocks.
func NewPlan(n int) *Plan {
	p := &Plan{n: n, basis: make([]float64, n*n)}
	scale0 := math.Sqrt(1.0 / float64(n))
	scaleK := math.Sqrt(2.0 / float64(n))
	for k := 0; k < n; k++ {
		scale := scaleK
		if k == 0 {
			scale = scale0
		}
		for i := 0; i < n; i++ {
			p.basis[k*n+i] = scale * math.Cos(math.Pi*float64(k)*float64(2*i+1)/(2.0*float64(n)))
		}
	}
	return p
}

// Size returns the block side length the plan was built for.
func (p *Plan) Size() int { return p.n }

// Forward applies the 2D DCT-II to a row-major n×n block and returns a new
// block of the same size.
func (p *Plan) Forward(block []float64) []float64 {
	rows := p.apply(block, p.forward1D)
	return p.applyCols(rows, p.forward1D)
}

// Inverse applies the 2D DCT-III (the inverse of Forward) to a row-major
// n×n block and returns a new block of the same size.
func (p *Plan) Inverse(block []float64) []float64 {
	cols := p.applyCols(block, p.inverse1D)
	return p.apply(cols, p.inverse1D)
}

func (p *Plan) forward1D(x, out []float64) {
	n := p.n
	for k := 0; k < n; k++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += x[i] * p.basis[k*n+i]
		}
		out[k] = sum
	}
}

func (p *Plan) inverse1D(x, out []float64) {
	n := p.n
	for i := 0; i < n; i++ {
		sum := 0.0
		for k := 0; k < n; k++ {
			sum += x[k] * p.basis[k*n+i]
		}
		out[i] = sum
	}
}

// apply runs a 1D transform over every row of a flat n×n block.
func (p *Plan) apply(block []float64, f func(in, out []float64)) []float64 {
	n := p.n
	out := make([]float64, n*n)
	for y := 0; y < n; y++ {
		f(block[y*n:(y+1)*n], out[y*n:(y+1)*n])
	}
	return out
}

// applyCols runs a 1D transform over every column of a flat n×n block.
func (p *Plan) applyCols(block []float64, f func(in, out []float64)) []float64 {
	n := p.n
	out := make([]float64, n*n)
	col := make([]float64, n)
	res := make([]float64, n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			col[y] = block[y*n+x]
		}
		f(col, res)
		for y := 0; y < n; y++ {
			out[y*n+x] = res[y]
		}
	}
	return out
}
