package visible

import (
	"errors"
	"math/rand"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in      string
		r, g, b uint8
	}{
		{"#000000", 0, 0, 0},
		{"#ffffff", 0xff, 0xff, 0xff},
		{"#FF8000", 0xff, 0x80, 0x00},
		{"ff8000", 0xff, 0x80, 0x00},
		{"#f80", 0xff, 0x88, 0x00},
		{"abc", 0xaa, 0xbb, 0xcc},
	}
	for _, c := range cases {
		r, g, b, err := ParseHexColor(c.in)
		if err != nil {
			t.Errorf("ParseHexColor(%q): %v", c.in, err)
			continue
		}
		if r != c.r || g != c.g || b != c.b {
			t.Errorf("ParseHexColor(%q) = %02x%02x%02x, want %02x%02x%02x", c.in, r, g, b, c.r, c.g, c.b)
		}
	}
}

func TestParseHexColorInvalid(t *testing.T) {
	cases := []string{
		"", "#", "#ff", "#fffff", "#ggg", "zzzzzz", "#1234567",
		// Non-hex tails must not parse as a shorter valid prefix.
		"0000fg", "fffffg", "12345z", "12 456", "#00000-",
	}
	for _, in := range cases {
		if _, _, _, err := ParseHexColor(in); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseHexColor(%q) err = %v, want ErrInvalidColor", in, err)
		}
	}
}

// Formatting then parsing must reproduce every channel value exactly.
func TestHexColorRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	for i := 0; i < 200; i++ {
		r := uint8(rng.Intn(256))
		g := uint8(rng.Intn(256))
		b := uint8(rng.Intn(256))

		gotR, gotG, gotB, err := ParseHexColor(FormatHexColor(r, g, b))
		if err != nil {
			t.Fatalf("round trip %02x%02x%02x: %v", r, g, b, err)
		}
		if gotR != r || gotG != g || gotB != b {
			t.Fatalf("round trip %02x%02x%02x -> %02x%02x%02x", r, g, b, gotR, gotG, gotB)
		}
	}
}

func TestResolveFillOpacity(t *testing.T) {
	cases := []struct {
		opacity int
		alpha   uint8
	}{
		{0, 0},
		{50, 128},
		{100, 255},
		{-10, 0},   // clamped
		{150, 255}, // clamped
	}
	for _, c := range cases {
		got, err := ResolveFill("#123456", c.opacity)
		if err != nil {
			t.Fatalf("ResolveFill: %v", err)
		}
		if got.A != c.alpha {
			t.Errorf("opacity %d -> alpha %d, want %d", c.opacity, got.A, c.alpha)
		}
		if got.R != 0x12 || got.G != 0x34 || got.B != 0x56 {
			t.Errorf("opacity %d changed the color channels: %v", c.opacity, got)
		}
	}
}

func TestResolveFillInvalidColor(t *testing.T) {
	if _, err := ResolveFill("not-a-color", 50); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("err = %v, want ErrInvalidColor", err)
	}
}

func TestFormatHexColor(t *testing.T) {
	if got := FormatHexColor(0xff, 0x80, 0x00); got != "#ff8000" {
		t.Errorf("FormatHexColor = %q, want #ff8000", got)
	}
}
