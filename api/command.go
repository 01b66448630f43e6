package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledfx/fx"
	"github.com/matt-g-everett/ledfx/stream"
	"github.com/matt-g-everett/ledfx/util"
)

var (
	ErrUnknownMarker  = errors.New("api: unknown marker")
	ErrUnknownCommand = errors.New("api: unknown command")
)

// Command is one effect request, as JSON.
type Command struct {
	Type       string   `json:"type"`
	Marker     string   `json:"marker"`
	Property   string   `json:"property,omitempty"`
	DurationMs *int     `json:"durationMs,omitempty"`
	From       *float64 `json:"from,omitempty"`
	To         *float64 `json:"to,omitempty"`
	By         *float64 `json:"by,omitempty"`
	FromColor  string   `json:"fromColor,omitempty"`
	ToColor    string   `json:"toColor,omitempty"`
	Easing     string   `json:"easing,omitempty"`
	Start      *float64 `json:"start,omitempty"`
	Peak       *float64 `json:"peak,omitempty"`
	Phase      string   `json:"phase,omitempty"`
	Repeat     int      `json:"repeat,omitempty"`
	Dampen     *float64 `json:"dampen,omitempty"`
}

func (c *Command) duration() (time.Duration, bool) {
	if c.DurationMs == nil {
		return 0, false
	}
	return time.Duration(*c.DurationMs) * time.Millisecond, true
}

var phases = map[string]fx.Phase{
	"":        fx.PhaseBoth,
	"both":    fx.PhaseBoth,
	"ascend":  fx.PhaseAscend,
	"descend": fx.PhaseDescend,
}

// Dispatcher applies commands to a scene. Execute must run on the loop that
// owns the scene.
type Dispatcher struct {
	scene   *stream.Scene
	effects *fx.Effects
	log     zerolog.Logger
}

// NewDispatcher creates an instance of a Dispatcher.
func NewDispatcher(scene *stream.Scene, effects *fx.Effects, log zerolog.Logger) *Dispatcher {
	d := new(Dispatcher)
	d.scene = scene
	d.effects = effects
	d.log = log
	return d
}

// Execute runs cmd.
func (d *Dispatcher) Execute(cmd Command) error {
	m, ok := d.scene.Marker(cmd.Marker)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMarker, cmd.Marker)
	}

	d.log.Info().
		Str("type", cmd.Type).
		Str("marker", cmd.Marker).
		Str("property", cmd.Property).
		Msg("command")

	switch cmd.Type {
	case "animate":
		opts, err := propertyOptions(cmd)
		if err != nil {
			return err
		}
		_, err = d.effects.AnimateProperty(m, cmd.Property, opts...)
		return err
	case "bounce":
		opts, err := bounceOptions(cmd)
		if err != nil {
			return err
		}
		return d.effects.Bounce(m, opts...)
	case "cancel":
		d.effects.Cancel(m)
		return nil
	case "rewind":
		return d.effects.Rewind(m)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

func propertyOptions(cmd Command) ([]fx.PropertyOption, error) {
	var opts []fx.PropertyOption
	if d, ok := cmd.duration(); ok {
		opts = append(opts, fx.Over(d))
	}
	if cmd.From != nil {
		opts = append(opts, fx.From(*cmd.From))
	}
	if cmd.To != nil {
		opts = append(opts, fx.To(*cmd.To))
	}
	if cmd.By != nil {
		opts = append(opts, fx.By(*cmd.By))
	}
	if cmd.FromColor != "" {
		c, err := util.ParseColor(cmd.FromColor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", fx.ErrInvalidConfig, err)
		}
		opts = append(opts, fx.FromColor(c))
	}
	if cmd.ToColor != "" {
		c, err := util.ParseColor(cmd.ToColor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", fx.ErrInvalidConfig, err)
		}
		opts = append(opts, fx.ToColor(c))
	}
	opts = append(opts, fx.WithEasingName(cmd.Easing))
	return opts, nil
}

func bounceOptions(cmd Command) ([]fx.BounceOption, error) {
	phase, ok := phases[cmd.Phase]
	if !ok {
		return nil, fmt.Errorf("%w: unknown phase %q", fx.ErrInvalidConfig, cmd.Phase)
	}

	opts := []fx.BounceOption{fx.BouncePhase(phase), fx.BounceRepeat(cmd.Repeat)}
	if d, ok := cmd.duration(); ok {
		opts = append(opts, fx.BounceDuration(d))
	}
	if cmd.Start != nil {
		opts = append(opts, fx.BounceStart(*cmd.Start))
	}
	if cmd.Peak != nil {
		opts = append(opts, fx.BouncePeak(*cmd.Peak))
	}
	if cmd.Dampen != nil {
		opts = append(opts, fx.BounceDampen(*cmd.Dampen))
	}
	return opts, nil
}
