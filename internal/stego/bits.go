package stego

import "math/rand"

// TextToBits expands the UTF-8 bytes of text into a bit slice, MSB first
// within each byte.
func TextToBits(text string) []int {
	b := []byte(text)
	bits := make([]int, len(b)*8)
	for i, byt := range b {
		for bit := 0; bit < 8; bit++ {
			if byt&(1<<uint(7-bit)) != 0 {
				bits[i*8+bit] = 1
			}
		}
	}
	return bits
}

// BitsToText packs a bit slice (MSB first) back into a UTF-8 string.
func BitsToText(bits []int) string {
	nBytes := len(bits) / 8
	out := make([]byte, nBytes)
	for i := 0; i < nBytes*8; i++ {
		if bits[i] != 0 {
			out[i/8] |= 1 << uint(7-(i%8))
		}
	}
	return string(out)
}

// permutation returns a deterministic pseudo-random permutation of [0,n)
// derived from the given key. The same key always yields the same order, so
// embed and extract agree without sharing state.
func permutation(key int64, n int) []int {
	return rand.New(rand.NewSource(key)).Perm(n)
}

// shuffle reorders bits by the permutation derived from key.
func shuffle(bits []int, key int64) []int {
	perm := permutation(key, len(bits))
	out := make([]int, len(bits))
	for i, p := range perm {
		out[i] = bits[p]
	}
	return out
}

// unshuffle inverts shuffle for the same key.
func unshuffle(bits []int, key int64) []int {
	perm := permutation(key, len(bits))
	out := make([]int, len(bits))
	for i, p := range perm {
		out[p] = bits[i]
	}
	return out
}
