package fx

import (
	"time"

	"github.com/rs/zerolog"
)

type activeEntry struct {
	animation *Animation
	startTime time.Duration
}

// Manager renders every running animation on each clock tick. The clock runs
// only while there is something to render or deferred work to do.
type Manager struct {
	clock  Clock
	active []activeEntry
	next   []func()
	log    zerolog.Logger
}

// NewManager creates an instance of a Manager driven by clock.
func NewManager(clock Clock, log zerolog.Logger) *Manager {
	m := new(Manager)
	m.clock = clock
	m.log = log
	return m
}

// StartAnimation adds a to the active set and renders its first frame
// immediately.
func (m *Manager) StartAnimation(a *Animation) error {
	m.active = append(m.active, activeEntry{
		animation: a,
		startTime: m.clock.Elapsed(),
	})
	m.startClock()

	return a.RenderFrame(0)
}

// StopAnimation removes a from the active set. Stopping an animation that is
// not active does nothing.
func (m *Manager) StopAnimation(a *Animation) {
	for i, e := range m.active {
		if e.animation == a {
			m.active = append(m.active[:i], m.active[i+1:]...)
			return
		}
	}
}

// Defer queues fn to run at the start of the next tick.
func (m *Manager) Defer(fn func()) {
	m.next = append(m.next, fn)
	m.startClock()
}

// Active returns the number of running animations.
func (m *Manager) Active() int {
	return len(m.active)
}

// Tick runs deferred work and then renders every active animation, most
// recently started first, so an animation can stop itself while rendering.
// The first render error aborts the tick and is returned.
func (m *Manager) Tick() error {
	elapsed := m.clock.Elapsed()

	deferred := m.next
	m.next = nil
	for _, fn := range deferred {
		fn()
	}

	for i := len(m.active) - 1; i >= 0; i-- {
		if i >= len(m.active) {
			// An earlier render stopped more than itself.
			continue
		}
		e := m.active[i]
		if err := e.animation.RenderFrame(elapsed - e.startTime); err != nil {
			return err
		}
	}

	if len(m.active) == 0 && len(m.next) == 0 {
		m.clock.Stop()
		m.log.Debug().Dur("elapsed", elapsed).Msg("animations idle")
	}
	return nil
}

func (m *Manager) startClock() {
	if m.clock.Running() {
		return
	}
	m.clock.Start(m.Tick)
	m.log.Debug().Msg("animations running")
}
