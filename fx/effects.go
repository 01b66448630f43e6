package fx

import (
	"errors"

	"github.com/rs/zerolog"
)

// Viewer reports how far the observer is from the scene. Bounce uses it to
// pick a default height.
type Viewer interface {
	ViewDistance() float64
}

// Effects is the per-context entry point for animating entities. It owns a
// Manager and the Registry of animations per entity.
type Effects struct {
	manager  *Manager
	registry *Registry
	viewer   Viewer
	log      zerolog.Logger
}

// Option configures Effects.
type Option func(*Effects)

// WithViewer sets the Viewer used for default bounce heights.
func WithViewer(v Viewer) Option {
	return func(e *Effects) { e.viewer = v }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Effects) { e.log = log }
}

// WithRegistry replaces the registry. A fresh one is created otherwise.
func WithRegistry(r *Registry) Option {
	return func(e *Effects) { e.registry = r }
}

// New creates an instance of Effects on top of m.
func New(m *Manager, opts ...Option) *Effects {
	e := new(Effects)
	e.manager = m
	e.log = zerolog.Nop()
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	return e
}

// Manager returns the manager driving these effects.
func (e *Effects) Manager() *Manager {
	return e.manager
}

// Registry returns the per-entity registry.
func (e *Effects) Registry() *Registry {
	return e.registry
}

// Cancel stops every animation registered on entity, leaving each property
// at its current value.
func (e *Effects) Cancel(entity any) {
	anims := e.registry.List(entity)
	for _, a := range anims {
		a.Stop(false)
	}
	if len(anims) > 0 {
		e.log.Debug().Int("animations", len(anims)).Msg("cancelled")
	}
}

// Rewind stops every animation registered on entity after resetting its
// property to the start value.
func (e *Effects) Rewind(entity any) error {
	anims := e.registry.List(entity)
	var errs []error
	for _, a := range anims {
		if err := a.Rewind(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(anims) > 0 {
		e.log.Debug().Int("animations", len(anims)).Msg("rewound")
	}
	return errors.Join(errs...)
}
