package fx

import (
	"fmt"
	"sort"

	"github.com/fogleman/ease"
	gease "github.com/tanema/gween/ease"
)

// Easing maps progress in time, in [0, 1], to progress in value.
type Easing func(x float64) float64

// The built-in curves. All of them map 0 to 0 and 1 to 1.
var (
	EaseNone Easing = ease.Linear
	EaseIn   Easing = ease.InCubic
	EaseOut  Easing = ease.OutCubic
	EaseBoth Easing = func(x float64) float64 {
		x3 := x * x * x
		return 6*x3*x*x - 15*x3*x + 10*x3
	}
)

var easings = map[string]Easing{
	"none": EaseNone,
	"in":   EaseIn,
	"out":  EaseOut,
	"both": EaseBoth,

	"quad-in":    ease.InQuad,
	"quad-out":   ease.OutQuad,
	"quad-both":  ease.InOutQuad,
	"cubic-both": ease.InOutCubic,
	"quint-both": ease.InOutQuint,
	"sine-in":    ease.InSine,
	"sine-out":   ease.OutSine,
	"sine-both":  ease.InOutSine,
	"bounce-out": ease.OutBounce,

	"back-out":    FromTween(gease.OutBack),
	"elastic-out": FromTween(gease.OutElastic),
}

// EasingByName looks up a named curve. The empty name is "none".
func EasingByName(name string) (Easing, error) {
	if name == "" {
		return EaseNone, nil
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown easing %q", ErrInvalidConfig, name)
	}
	return fn, nil
}

// EasingNames returns every name EasingByName accepts, sorted.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromTween adapts a gween tween function to an Easing.
func FromTween(fn gease.TweenFunc) Easing {
	return func(x float64) float64 {
		return float64(fn(float32(x), 0, 1, 1))
	}
}
