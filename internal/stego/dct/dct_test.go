package dct_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/hueining/watermarkd/internal/stego/dct"
)

const roundTripEpsilon = 1e-9

func makeBlock(n int, rng *rand.Rand) []float64 {
	b := make([]float64, n*n)
	for i := range b {
		b[i] = rng.Float64()*512.0 - 256.0
	}
	return b
}

func maxAbsDiff(a, b []float64) float64 {
	max := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}

func TestRoundTrip4x4(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := dct.NewPlan(4)
	b := makeBlock(4, rng)
	rec := p.Inverse(p.Forward(b))
	if d := maxAbsDiff(b, rec); d > roundTripEpsilon {
		t.Errorf("4x4 round-trip max diff = %e, want < %e", d, roundTripEpsilon)
	}
}

func TestRoundTrip8x8(t *testing.T) {
	rng := rand.New(rand.NewSource(1337))
	p := dct.NewPlan(8)
	b := makeBlock(8, rng)
	rec := p.Inverse(p.Forward(b))
	if d := maxAbsDiff(b, rec); d > roundTripEpsilon {
		t.Errorf("8x8 round-trip max diff = %e, want < %e", d, roundTripEpsilon)
	}
}

// For a constant n×n input c, the orthonormal 2D DCT-II concentrates all the
// energy in the DC coefficient: X[0][0] = c * n, everything else zero.
func TestConstantInput(t *testing.T) {
	const c = 10.0
	const n = 4
	p := dct.NewPlan(n)

	b := make([]float64, n*n)
	for i := range b {
		b[i] = c
	}
	out := p.Forward(b)

	if want := c * float64(n); math.Abs(out[0]-want) > 1e-9 {
		t.Errorf("DC coefficient = %v, want %v", out[0], want)
	}
	for i := 1; i < n*n; i++ {
		if math.Abs(out[i]) > 1e-9 {
			t.Errorf("out[%d] = %v, want ~0 for constant input", i, out[i])
		}
	}
}

// The DC coefficient of the orthonormal 2D DCT equals sum/n for an n×n
// block: scale(0)^2 * sum = (1/n) * sum.
func TestKnownDC(t *testing.T) {
	input := []float64{
		16, 11, 10, 16,
		12, 12, 14, 19,
		14, 13, 16, 24,
		14, 17, 22, 29,
	}
	sum := 0.0
	for _, v := range input {
		sum += v
	}

	p := dct.NewPlan(4)
	out := p.Forward(input)
	if want := sum / 4.0; math.Abs(out[0]-want) > 1e-9 {
		t.Errorf("DC = %v, want %v", out[0], want)
	}

	rec := p.Inverse(out)
	if d := maxAbsDiff(input, rec); d > roundTripEpsilon {
		t.Errorf("round-trip max diff = %e, want < %e", d, roundTripEpsilon)
	}
}

// Orthonormal transforms preserve energy (Parseval).
func TestEnergyPreserved(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := dct.NewPlan(4)
	b := makeBlock(4, rng)
	out := p.Forward(b)

	var eIn, eOut float64
	for i := range b {
		eIn += b[i] * b[i]
		eOut += out[i] * out[i]
	}
	if math.Abs(eIn-eOut) > 1e-6 {
		t.Errorf("energy changed: in %v, out %v", eIn, eOut)
	}
}
