package visible

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidColor reports a malformed hex color string.
var ErrInvalidColor = errors.New("invalid color")

// ParseHexColor parses a 3- or 6-digit hex color with an optional leading
// '#'. 3-digit colors expand by doubling each digit (f0a -> ff00aa).
func ParseHexColor(s string) (r, g, b uint8, err error) {
	str := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(str) {
	case 3:
		str = fmt.Sprintf("%c%c%c%c%c%c", str[0], str[0], str[1], str[1], str[2], str[2])
	case 6:
	default:
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(str[2*i:2*i+2], 16, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		ch[i] = uint8(v)
	}
	return ch[0], ch[1], ch[2], nil
}

// FormatHexColor renders an RGB triple as a 6-digit hex string with a
// leading '#'.
func FormatHexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ResolveFill combines a hex fill color with an opacity percentage into the
// NRGBA stamp color. Opacity is clamped to [0,100] and converted to an alpha
// byte by rounding 255*opacity/100.
func ResolveFill(hex string, opacity int) (color.NRGBA, error) {
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 100 {
		opacity = 100
	}
	a := uint8(math.Round(255.0 * float64(opacity) / 100.0))
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
