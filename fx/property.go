package fx

import (
	"fmt"
	"time"

	"github.com/matt-g-everett/ledfx/util"
)

// DefaultPropertyDuration is used when AnimateProperty is given no duration.
const DefaultPropertyDuration = 500 * time.Millisecond

// Property is the accessor pair for one numeric property.
type Property struct {
	Get func() float64
	Set func(float64)
}

// Animatable is implemented by entities with numeric properties.
type Animatable interface {
	Property(name string) (Property, bool)
}

// ColorProperty reads and writes one colour property.
type ColorProperty interface {
	Get() util.Color
	Set(util.Color)
}

// Colorable is implemented by entities with colour properties.
type Colorable interface {
	ColorProperty(name string) (ColorProperty, bool)
}

// Event is passed to completion callbacks.
type Event struct {
	Target    any
	Cancelled bool
}

// Callback is called when an effect finishes or is cancelled.
type Callback func(Event)

type propertyConfig struct {
	duration   time.Duration
	start      *float64
	end        *float64
	delta      *float64
	startColor *util.Color
	endColor   *util.Color
	easing     Easing
	proxy      any
	callback   Callback
	err        error
}

// PropertyOption configures AnimateProperty.
type PropertyOption func(*propertyConfig)

// Over sets the duration of the animation.
func Over(d time.Duration) PropertyOption {
	return func(s *propertyConfig) { s.duration = d }
}

// From sets the start value. The current value is used when omitted.
func From(v float64) PropertyOption {
	return func(s *propertyConfig) { s.start = &v }
}

// To sets the end value. The current value is used when omitted.
func To(v float64) PropertyOption {
	return func(s *propertyConfig) { s.end = &v }
}

// By animates from the current value to the current value plus delta. It
// cannot be combined with From or To.
func By(delta float64) PropertyOption {
	return func(s *propertyConfig) { s.delta = &delta }
}

// FromColor sets the start colour.
func FromColor(c util.Color) PropertyOption {
	return func(s *propertyConfig) { s.startColor = &c }
}

// ToColor sets the end colour.
func ToColor(c util.Color) PropertyOption {
	return func(s *propertyConfig) { s.endColor = &c }
}

// WithEasing sets the easing curve.
func WithEasing(e Easing) PropertyOption {
	return func(s *propertyConfig) { s.easing = e }
}

// WithEasingName sets the easing curve by name, see EasingByName.
func WithEasingName(name string) PropertyOption {
	return func(s *propertyConfig) {
		e, err := EasingByName(name)
		if err != nil {
			s.err = err
			return
		}
		s.easing = e
	}
}

// WithProxy registers the animation under proxy instead of the animated
// target, so Cancel and Rewind on proxy reach it.
func WithProxy(proxy any) PropertyOption {
	return func(s *propertyConfig) { s.proxy = proxy }
}

// OnComplete sets the completion callback. Its Event.Target is the animated
// target.
func OnComplete(fn Callback) PropertyOption {
	return func(s *propertyConfig) { s.callback = fn }
}

// AnimateProperty starts a timed animation of the named property of target.
// Start and end values are resolved immediately; configuration problems are
// reported before anything is rendered.
func (e *Effects) AnimateProperty(target any, name string, opts ...PropertyOption) (*Animation, error) {
	cfg := propertyConfig{
		duration: DefaultPropertyDuration,
		easing:   EaseNone,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}
	if cfg.duration < 0 {
		return nil, fmt.Errorf("%w: negative duration %v", ErrInvalidConfig, cfg.duration)
	}
	if cfg.easing == nil {
		return nil, fmt.Errorf("%w: nil easing", ErrInvalidConfig)
	}

	owner := target
	if cfg.proxy != nil {
		owner = cfg.proxy
	}
	if !identifiable(owner) {
		return nil, fmt.Errorf("%w: %T cannot own animations", ErrTargetType, owner)
	}

	apply, err := resolveProperty(target, name, &cfg)
	if err != nil {
		return nil, err
	}

	var anim *Animation
	render := func(t time.Duration) error {
		f := 1.0
		if cfg.duration > 0 {
			f = float64(t) / float64(cfg.duration)
		}
		apply(cfg.easing(f))
		return nil
	}
	done := func(cancelled bool) {
		e.registry.remove(owner, anim)
		if cfg.callback != nil {
			cfg.callback(Event{Target: target, Cancelled: cancelled})
		}
	}
	anim = NewTimedAnimation(e.manager, cfg.duration, render, done)

	e.registry.add(owner, anim)
	e.log.Debug().
		Str("property", name).
		Dur("duration", cfg.duration).
		Msg("animating property")

	if err := anim.Start(); err != nil {
		return anim, err
	}
	return anim, nil
}

// resolveProperty validates the target and addressing mode and returns a
// function that writes the property at eased progress p.
func resolveProperty(target any, name string, cfg *propertyConfig) (func(p float64), error) {
	if c, ok := target.(Colorable); ok {
		if cp, ok := c.ColorProperty(name); ok && cp != nil {
			return resolveColor(cp, name, cfg)
		}
	}

	a, ok := target.(Animatable)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no animatable properties", ErrTargetType, target)
	}
	p, ok := a.Property(name)
	if !ok || p.Get == nil || p.Set == nil {
		return nil, fmt.Errorf("%w: %T has no property %q", ErrTargetType, target, name)
	}
	if cfg.startColor != nil || cfg.endColor != nil {
		return nil, fmt.Errorf("%w: colour values for numeric property %q", ErrInvalidConfig, name)
	}

	var start, end float64
	switch {
	case cfg.delta != nil && (cfg.start != nil || cfg.end != nil):
		return nil, fmt.Errorf("%w: delta combined with start or end for %q", ErrInvalidConfig, name)
	case cfg.start == nil && cfg.end == nil:
		delta := 0.0
		if cfg.delta != nil {
			delta = *cfg.delta
		}
		start = p.Get()
		end = start + delta
	default:
		start = p.Get()
		end = start
		if cfg.start != nil {
			start = *cfg.start
		}
		if cfg.end != nil {
			end = *cfg.end
		}
	}

	return func(f float64) {
		p.Set(start + f*(end-start))
	}, nil
}

func resolveColor(cp ColorProperty, name string, cfg *propertyConfig) (func(p float64), error) {
	if cfg.delta != nil {
		return nil, fmt.Errorf("%w: delta on colour property %q", ErrInvalidConfig, name)
	}
	if cfg.start != nil || cfg.end != nil {
		return nil, fmt.Errorf("%w: numeric values for colour property %q", ErrInvalidConfig, name)
	}

	start := cp.Get()
	end := start
	if cfg.startColor != nil {
		start = *cfg.startColor
	}
	if cfg.endColor != nil {
		end = *cfg.endColor
	}

	return func(f float64) {
		cp.Set(util.Blend(start, end, f))
	}, nil
}
