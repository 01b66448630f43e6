package util

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrBadColor is returned when a colour string cannot be parsed.
var ErrBadColor = errors.New("util: bad colour")

// Color is an 8-bit ARGB colour. Its string form is the KML order aabbggrr.
type Color struct {
	A, R, G, B uint8
}

var namedColors = map[string]Color{
	"aqua":    {0xff, 0x00, 0xff, 0xff},
	"black":   {0xff, 0x00, 0x00, 0x00},
	"blue":    {0xff, 0x00, 0x00, 0xff},
	"fuchsia": {0xff, 0xff, 0x00, 0xff},
	"gray":    {0xff, 0x80, 0x80, 0x80},
	"green":   {0xff, 0x00, 0x80, 0x00},
	"lime":    {0xff, 0x00, 0xff, 0x00},
	"maroon":  {0xff, 0x80, 0x00, 0x00},
	"navy":    {0xff, 0x00, 0x00, 0x80},
	"olive":   {0xff, 0x80, 0x80, 0x00},
	"purple":  {0xff, 0x80, 0x00, 0x80},
	"red":     {0xff, 0xff, 0x00, 0x00},
	"silver":  {0xff, 0xc0, 0xc0, 0xc0},
	"teal":    {0xff, 0x00, 0x80, 0x80},
	"white":   {0xff, 0xff, 0xff, 0xff},
	"yellow":  {0xff, 0xff, 0xff, 0x00},
}

// RGB creates an opaque Color.
func RGB(r, g, b uint8) Color {
	return Color{A: 0xff, R: r, G: g, B: b}
}

// ParseColor accepts a colour name, an HTML colour (#rrggbb or #rgb, the hash
// is optional) or a KML colour (aabbggrr).
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 8:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		return Color{
			A: uint8(v >> 24),
			B: uint8(v >> 16),
			G: uint8(v >> 8),
			R: uint8(v),
		}, nil
	case 6, 3:
		c, err := colorful.Hex("#" + hex)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		r, g, b := c.RGB255()
		return RGB(r, g, b), nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

// String formats c as a KML colour.
func (c Color) String() string {
	return fmt.Sprintf("%02x%02x%02x%02x", c.A, c.B, c.G, c.R)
}

// Colorful converts c to a colorful.Color, dropping alpha.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromColorful converts a colorful.Color to a Color with the given alpha.
func FromColorful(c colorful.Color, alpha uint8) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{A: alpha, R: r, G: g, B: b}
}

// Blend mixes c1 towards c2 by fraction, channel by channel, truncating each
// channel down to an integer.
func Blend(c1, c2 Color, fraction float64) Color {
	return Color{
		A: blendChannel(c1.A, c2.A, fraction),
		R: blendChannel(c1.R, c2.R, fraction),
		G: blendChannel(c1.G, c2.G, fraction),
		B: blendChannel(c1.B, c2.B, fraction),
	}
}

func blendChannel(a, b uint8, fraction float64) uint8 {
	v := math.Floor((float64(b)-float64(a))*fraction + float64(a))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
