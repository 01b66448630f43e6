package fx

import (
	"time"
)

// State is the lifecycle position of an Animation.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// RenderFunc renders the frame t after the animation started.
type RenderFunc func(t time.Duration) error

// CompletionFunc is called once when an animation stops.
type CompletionFunc func(cancelled bool)

// An Animation renders frames from the time it is started until it is
// stopped. Unbounded animations run until Stop is called; timed animations
// stop themselves once their duration has been rendered. A stopped animation
// cannot be started again.
type Animation struct {
	manager  *Manager
	render   RenderFunc
	done     CompletionFunc
	state    State
	duration time.Duration
	timed    bool
}

// NewAnimation creates an unbounded Animation. done may be nil.
func NewAnimation(m *Manager, render RenderFunc, done CompletionFunc) *Animation {
	a := new(Animation)
	a.manager = m
	a.render = render
	a.done = done
	return a
}

// NewTimedAnimation creates an Animation that completes after duration.
func NewTimedAnimation(m *Manager, duration time.Duration, render RenderFunc, done CompletionFunc) *Animation {
	a := NewAnimation(m, render, done)
	a.duration = duration
	a.timed = true
	return a
}

// Duration returns the length of a timed animation, or -1 if unbounded.
func (a *Animation) Duration() time.Duration {
	if !a.timed {
		return -1
	}
	return a.duration
}

// State returns the current lifecycle state.
func (a *Animation) State() State {
	return a.state
}

// Start registers the animation with its manager and renders the first frame.
func (a *Animation) Start() error {
	if a.state != Idle {
		return ErrAlreadyStarted
	}
	a.state = Running
	return a.manager.StartAnimation(a)
}

// Stop deregisters the animation and reports completion. completed is false
// when the animation is being cancelled. Only the first call has an effect.
func (a *Animation) Stop(completed bool) {
	if a.state == Stopped {
		return
	}
	a.state = Stopped
	a.manager.StopAnimation(a)

	if a.done != nil {
		a.done(!completed)
	}
}

// Rewind renders the frame at t=0 and stops the animation as cancelled.
func (a *Animation) Rewind() error {
	if a.state == Stopped {
		return nil
	}

	err := a.render(0)
	a.Stop(false)
	return err
}

// RenderFrame renders the frame t after start. Timed animations render
// exactly their final frame once t reaches the duration, then stop.
func (a *Animation) RenderFrame(t time.Duration) error {
	if !a.timed {
		return a.render(t)
	}
	if a.state == Stopped {
		return nil
	}

	if t >= a.duration {
		if err := a.render(a.duration); err != nil {
			return err
		}
		a.Stop(true)
		return nil
	}
	return a.render(t)
}
