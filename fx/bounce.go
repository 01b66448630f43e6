package fx

import (
	"fmt"
	"math"
	"time"
)

// AltitudeProperty is the property a bounce animates.
const AltitudeProperty = "altitude"

// ReferenceMode says what a Point's altitude is measured from.
type ReferenceMode int

const (
	// ClampToGround pins the point to the ground; altitude is ignored.
	ClampToGround ReferenceMode = iota
	RelativeToGround
	Absolute
	// ClampToFloor pins the point to the floor; altitude is ignored.
	ClampToFloor
	RelativeToFloor
)

// Effective returns the mode in which altitude is visible, and whether it
// differs from m.
func (m ReferenceMode) Effective() (ReferenceMode, bool) {
	switch m {
	case ClampToGround:
		return RelativeToGround, true
	case ClampToFloor:
		return RelativeToFloor, true
	}
	return m, false
}

// Point is the geometry a bounce moves. It must expose AltitudeProperty.
type Point interface {
	Animatable
	Altitude() float64
	SetAltitude(float64)
	ReferenceMode() ReferenceMode
	SetReferenceMode(ReferenceMode)
}

// Feature is an entity with a geometry.
type Feature interface {
	Geometry() any
}

// Phase selects which half of a bounce to play.
type Phase int

const (
	PhaseBoth Phase = iota
	PhaseAscend
	PhaseDescend
)

const (
	DefaultBounceDuration = 300 * time.Millisecond
	DefaultDampen         = 0.3
)

type bounceConfig struct {
	duration time.Duration
	start    *float64
	peak     *float64
	phase    Phase
	repeat   int
	dampen   float64
	callback Callback
}

// BounceOption configures Bounce.
type BounceOption func(*bounceConfig)

// BounceDuration sets the length of one full bounce, split evenly between
// going up and coming down.
func BounceDuration(d time.Duration) BounceOption {
	return func(c *bounceConfig) { c.duration = d }
}

// BounceStart sets the resting altitude. The current altitude is used when
// omitted.
func BounceStart(altitude float64) BounceOption {
	return func(c *bounceConfig) { c.start = &altitude }
}

// BouncePeak sets how far above the start the point rises. The default is a
// fifth of the view distance.
func BouncePeak(height float64) BounceOption {
	return func(c *bounceConfig) { c.peak = &height }
}

// BouncePhase plays only one half of the bounce.
func BouncePhase(p Phase) BounceOption {
	return func(c *bounceConfig) { c.phase = p }
}

// BounceRepeat sets how many extra bounces follow the first.
func BounceRepeat(n int) BounceOption {
	return func(c *bounceConfig) { c.repeat = n }
}

// BounceDampen scales the peak of each repeat; durations scale by its square
// root.
func BounceDampen(f float64) BounceOption {
	return func(c *bounceConfig) { c.dampen = f }
}

// BounceCallback is called once the whole effect, repeats included, has
// finished or been cancelled. Its Event.Target is the feature.
func BounceCallback(fn Callback) BounceOption {
	return func(c *bounceConfig) { c.callback = fn }
}

// Bounce makes the point geometry of feature rise and fall. Any animation
// already running on feature is rewound first. Cancel and Rewind on feature
// reach both halves of the bounce.
func (e *Effects) Bounce(feature any, opts ...BounceOption) error {
	cfg := bounceConfig{
		duration: DefaultBounceDuration,
		dampen:   DefaultDampen,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case cfg.duration < 0:
		return fmt.Errorf("%w: negative bounce duration %v", ErrInvalidConfig, cfg.duration)
	case cfg.repeat < 0:
		return fmt.Errorf("%w: negative repeat %d", ErrInvalidConfig, cfg.repeat)
	case cfg.dampen <= 0 || cfg.dampen > 1:
		return fmt.Errorf("%w: dampen %v outside (0, 1]", ErrInvalidConfig, cfg.dampen)
	case cfg.phase < PhaseBoth || cfg.phase > PhaseDescend:
		return fmt.Errorf("%w: unknown phase %d", ErrInvalidConfig, cfg.phase)
	}

	if cfg.peak == nil {
		if e.viewer == nil {
			return fmt.Errorf("%w: no peak and no viewer", ErrInvalidConfig)
		}
		peak := e.viewer.ViewDistance() / 5
		cfg.peak = &peak
	}

	return e.bounce(feature, cfg)
}

func (e *Effects) bounce(feature any, cfg bounceConfig) error {
	pt, err := bouncePoint(feature)
	if err != nil {
		return err
	}
	if err := e.Rewind(feature); err != nil {
		return err
	}

	origMode := pt.ReferenceMode()
	if mode, changed := origMode.Effective(); changed {
		pt.SetAltitude(0)
		pt.SetReferenceMode(mode)
	}

	if cfg.start == nil {
		start := pt.Altitude()
		cfg.start = &start
	}
	start := *cfg.start
	top := start + *cfg.peak
	half := cfg.duration / 2

	finish := func(cancelled bool) {
		pt.SetReferenceMode(origMode)
		if cfg.callback != nil {
			cfg.callback(Event{Target: feature, Cancelled: cancelled})
		}
	}

	// The next repeat starts on the next tick. Until then a placeholder holds
	// its place in the registry so Cancel, Rewind and a new Bounce on feature
	// still reach the effect.
	again := func() {
		pt.SetReferenceMode(origMode)

		next := cfg
		next.repeat--
		peak := *cfg.peak * cfg.dampen
		next.peak = &peak
		next.duration = time.Duration(float64(cfg.duration) * math.Sqrt(cfg.dampen))
		next.phase = PhaseBoth

		var pending *Animation
		pending = NewAnimation(e.manager, func(time.Duration) error { return nil },
			func(cancelled bool) {
				e.registry.remove(feature, pending)
				if cancelled {
					finish(true)
				}
			})
		e.registry.add(feature, pending)

		e.manager.Defer(func() {
			if pending.State() != Idle {
				return
			}
			pending.Stop(true)

			if err := e.bounce(feature, next); err != nil {
				e.log.Error().Err(err).Msg("bounce repeat failed")
				if next.callback != nil {
					next.callback(Event{Target: feature, Cancelled: true})
				}
			}
		})
	}

	descend := func() error {
		_, err := e.AnimateProperty(pt, AltitudeProperty,
			Over(half),
			From(top),
			To(start),
			WithEasing(EaseIn),
			WithProxy(feature),
			OnComplete(func(ev Event) {
				if ev.Cancelled || cfg.repeat < 1 {
					finish(ev.Cancelled)
					return
				}
				again()
			}))
		return err
	}

	ascend := func() error {
		_, err := e.AnimateProperty(pt, AltitudeProperty,
			Over(half),
			From(start),
			To(top),
			WithEasing(EaseOut),
			WithProxy(feature),
			OnComplete(func(ev Event) {
				if ev.Cancelled || cfg.phase == PhaseAscend {
					finish(ev.Cancelled)
					return
				}
				if err := descend(); err != nil {
					e.log.Error().Err(err).Msg("bounce descend failed")
					finish(true)
				}
			}))
		return err
	}

	e.log.Debug().
		Float64("start", start).
		Float64("peak", *cfg.peak).
		Int("repeat", cfg.repeat).
		Msg("bouncing")

	if cfg.phase == PhaseDescend {
		err = descend()
	} else {
		err = ascend()
	}
	if err != nil {
		pt.SetReferenceMode(origMode)
	}
	return err
}

func bouncePoint(feature any) (Point, error) {
	f, ok := feature.(Feature)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no geometry", ErrTargetType, feature)
	}
	pt, ok := f.Geometry().(Point)
	if !ok {
		return nil, fmt.Errorf("%w: %T geometry is not a point", ErrTargetType, feature)
	}
	if p, ok := pt.Property(AltitudeProperty); !ok || p.Get == nil || p.Set == nil {
		return nil, fmt.Errorf("%w: point has no %s property", ErrTargetType, AltitudeProperty)
	}
	return pt, nil
}
