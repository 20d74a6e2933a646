package facegraph

import (
	"math"
	"strconv"
	"strings"
)

// A Color represents a color, containing R, G, B, and A components, each expected to range from 0 to 1.
type Color struct {
	R, G, B, A float32
}

// NewColor returns a new Color, with the provided R, G, B, and A components expected to range from 0 to 1.
func NewColor(r, g, b, a float32) *Color {
	return &Color{r, g, b, a}
}

// NewColorFromHex parses a "#rrggbb" or "rrggbb" string (as stored in the demo presets) into an opaque Color.
// Malformed input yields white.
func NewColorFromHex(hex string) *Color {

	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")

	value, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 6 || err != nil {
		return NewColor(1, 1, 1, 1)
	}

	return NewColor(
		float32((value>>16)&0xff)/255,
		float32((value>>8)&0xff)/255,
		float32(value&0xff)/255,
		1,
	)

}

// Clone returns a copy of the Color.
func (color *Color) Clone() *Color {
	return NewColor(color.R, color.G, color.B, color.A)
}

func (color *Color) SetRGBA(r, g, b, a float32) {
	color.R = r
	color.G = g
	color.B = b
	color.A = a
}

// Hex returns the color's RGB components as a "#rrggbb" string.
func (color Color) Hex() string {
	toByte := func(v float32) uint64 {
		return uint64(clamp(v, 0, 1)*255 + 0.5)
	}
	value := toByte(color.R)<<16 | toByte(color.G)<<8 | toByte(color.B)
	s := strconv.FormatUint(value, 16)
	return "#" + strings.Repeat("0", 6-len(s)) + s
}

func (color Color) RGBA64() (float64, float64, float64, float64) {
	return float64(color.R), float64(color.G), float64(color.B), float64(color.A)
}

// ConvertTosRGB converts the color from linear space to sRGB in place. Alpha is left untouched.
func (color *Color) ConvertTosRGB() {
	color.R = linearTosRGB(color.R)
	color.G = linearTosRGB(color.G)
	color.B = linearTosRGB(color.B)
}

func linearTosRGB(c float32) float32 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return float32(1.055*math.Pow(float64(c), 1/2.4) - 0.055)
}
