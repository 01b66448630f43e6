package stream

import (
	"math"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledfx/fx"
	"github.com/matt-g-everett/ledfx/util"
)

const twinkleLuminance = 0.6

type spark struct {
	colour  colorful.Color
	next    colorful.Color
	started time.Duration
	running bool
}

// A Twinkle is a Backdrop where random pixels brighten and fade, taking a new
// colour from the palette as they do.
type Twinkle struct {
	palette []colorful.Color
	chance  float64
	period  time.Duration
	rng     *rand.Rand
	lut     []float64
	sparks  []spark
	now     time.Duration
}

// NewTwinkle creates an instance of a Twinkle. Each update a resting pixel
// starts to twinkle with probability chance; a twinkle lasts period.
func NewTwinkle(pixels int, palette []colorful.Color, chance float64, period time.Duration, seed int64) *Twinkle {
	t := new(Twinkle)
	t.palette = palette
	if len(t.palette) == 0 {
		t.palette = []colorful.Color{{R: 0.25, G: 0.25, B: 0.25}}
	}
	t.chance = chance
	t.period = period
	t.rng = rand.New(rand.NewSource(seed))
	t.lut = util.GenerateFalloff(32)

	t.sparks = make([]spark, pixels)
	for i := range t.sparks {
		c := t.pick()
		t.sparks[i] = spark{colour: c, next: c}
	}
	return t
}

func (t *Twinkle) pick() colorful.Color {
	return t.palette[t.rng.Intn(len(t.palette))]
}

// Update moves the twinkle to time now.
func (t *Twinkle) Update(now time.Duration) {
	t.now = now
	for i := range t.sparks {
		s := &t.sparks[i]
		if s.running && now-s.started >= t.period {
			s.running = false
			s.colour = s.next
		}
		if !s.running && t.rng.Float64() < t.chance {
			s.running = true
			s.started = now
			s.next = t.pick()
		}
	}
}

// Gain returns how far pixel i is lifted towards full brightness, from 0 to 1.
func (t *Twinkle) Gain(i int) float64 {
	s := t.sparks[i]
	if !s.running || t.period <= 0 {
		return 0
	}
	p := float64(t.now-s.started) / float64(t.period)
	return util.Sample(t.lut, math.Abs(2*p-1))
}

// Pixel colours pixel i.
func (t *Twinkle) Pixel(i int, _ Point) colorful.Color {
	if i >= len(t.sparks) {
		return colorful.Color{}
	}

	s := t.sparks[i]
	c := s.colour
	if s.running && t.now-s.started > t.period/2 {
		c = s.next
	}

	gain := t.Gain(i)
	if gain == 0 {
		return c
	}
	h, ch, l := c.Hcl()
	return colorful.Hcl(h, ch, l+(twinkleLuminance-l)*gain)
}

// Sparkle returns an animation that keeps the twinkle updating until it is
// stopped.
func (t *Twinkle) Sparkle(m *fx.Manager) *fx.Animation {
	return fx.NewAnimation(m, func(elapsed time.Duration) error {
		t.Update(elapsed)
		return nil
	}, nil)
}
