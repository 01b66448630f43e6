package stream

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledfx/fx"
)

// GradientTable stores a look-up table of colours interpolated by hue.
type GradientTable []struct {
	Hue float64
	Pos float64
}

// RainbowGradient runs pink, red, orange, yellow, green, turquoise, blue,
// violet and back to pink.
var RainbowGradient = GradientTable{
	{0.0, 0.0},
	{6.0, 0.04},
	{87.0, 0.14},
	{88.0, 0.28},
	{98.0, 0.42},
	{180.0, 0.56},
	{190.0, 0.70},
	{320.0, 0.84},
	{328.0, 0.91},
	{360.0, 1.0},
}

// Color gets a colour at the specified point on the look-up table.
func (g GradientTable) Color(t, s, l float64) colorful.Color {
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			h := (((t - c1.Pos) / (c2.Pos - c1.Pos)) * (c2.Hue - c1.Hue)) + c1.Hue
			return colorful.Hcl(h, s, l)
		}
	}

	// Past the last key point.
	return colorful.Hcl(g[len(g)-1].Hue, s, l)
}

// A GradientTrail is a Backdrop that lays a gradient along the strip, repeating
// every length pixels. Animating its offset makes the gradient flow.
type GradientTrail struct {
	gradient  GradientTable
	length    float64
	luminance float64
	offset    float64
}

// NewGradientTrail creates an instance of a GradientTrail.
func NewGradientTrail(gradient GradientTable, length int) *GradientTrail {
	g := new(GradientTrail)
	g.gradient = gradient
	g.length = math.Max(1, float64(length))
	g.luminance = 0.05
	return g
}

// Pixel colours pixel i.
func (g *GradientTrail) Pixel(i int, _ Point) colorful.Color {
	t := math.Mod(float64(i)-g.offset, g.length)
	if t < 0 {
		t += g.length
	}
	return g.gradient.Color(t/g.length, 1.0, g.luminance)
}

// Property exposes offset.
func (g *GradientTrail) Property(name string) (fx.Property, bool) {
	if name != "offset" {
		return fx.Property{}, false
	}
	return fx.Property{
		Get: func() float64 { return g.offset },
		Set: func(v float64) { g.offset = math.Mod(v, g.length) },
	}, true
}

// Flow returns an animation that moves the gradient speed pixels per second
// until it is stopped.
func (g *GradientTrail) Flow(m *fx.Manager, speed float64) *fx.Animation {
	start := g.offset
	return fx.NewAnimation(m, func(t time.Duration) error {
		g.offset = math.Mod(start+speed*t.Seconds(), g.length)
		return nil
	}, nil)
}
