package fx

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameLog struct {
	frames map[string][]time.Duration
	order  []string
}

func newFrameLog() *frameLog {
	return &frameLog{frames: make(map[string][]time.Duration)}
}

func (l *frameLog) render(name string) RenderFunc {
	return func(t time.Duration) error {
		l.frames[name] = append(l.frames[name], t)
		l.order = append(l.order, name)
		return nil
	}
}

func TestManagerRendersAtOwnOffset(t *testing.T) {
	clock := NewManualClock()
	m := NewManager(clock, zerolog.Nop())
	log := newFrameLog()

	a1 := NewAnimation(m, log.render("a1"), nil)
	require.NoError(t, a1.Start())

	clock.Set(10 * time.Millisecond)
	a2 := NewAnimation(m, log.render("a2"), nil)
	require.NoError(t, a2.Start())

	log.order = nil
	require.NoError(t, clock.Fire())

	assert.Equal(t, []time.Duration{0, 10 * time.Millisecond}, log.frames["a1"])
	assert.Equal(t, []time.Duration{0, 0}, log.frames["a2"])
	assert.Equal(t, []string{"a2", "a1"}, log.order)
}

func TestManagerOffsetsPerAnimation(t *testing.T) {
	clock := NewManualClock()
	m := NewManager(clock, zerolog.Nop())
	log := newFrameLog()

	names := []string{"a", "b", "c", "d"}
	for i, name := range names {
		clock.Set(time.Duration(i) * 5 * time.Millisecond)
		require.NoError(t, NewAnimation(m, log.render(name), nil).Start())
	}

	require.NoError(t, clock.Advance(5*time.Millisecond))
	for i, name := range names {
		got := log.frames[name]
		require.Len(t, got, 2)
		assert.Equal(t, time.Duration(4-i)*5*time.Millisecond, got[1], name)
	}
}

func TestManagerClockFollowsActiveSet(t *testing.T) {
	clock := NewManualClock()
	m := NewManager(clock, zerolog.Nop())
	assert.False(t, clock.Running())

	a := NewAnimation(m, func(time.Duration) error { return nil }, nil)
	require.NoError(t, a.Start())
	assert.True(t, clock.Running())
	assert.Equal(t, 1, m.Active())

	require.NoError(t, clock.Advance(20*time.Millisecond))
	assert.True(t, clock.Running())

	a.Stop(true)
	require.NoError(t, clock.Advance(20*time.Millisecond))
	assert.False(t, clock.Running())
	assert.Equal(t, time.Duration(0), clock.Elapsed())
	assert.Equal(t, 1, clock.Starts())
	assert.Equal(t, 1, clock.Stops())
}

func TestManagerStopIsIdempotent(t *testing.T) {
	m := NewManager(NewManualClock(), zerolog.Nop())
	a := NewAnimation(m, func(time.Duration) error { return nil }, nil)
	require.NoError(t, a.Start())

	m.StopAnimation(a)
	m.StopAnimation(a)
	assert.Equal(t, 0, m.Active())
}

func TestManagerSelfStopDuringRender(t *testing.T) {
	clock := NewManualClock()
	m := NewManager(clock, zerolog.Nop())
	log := newFrameLog()

	require.NoError(t, NewAnimation(m, log.render("old"), nil).Start())

	var self *Animation
	self = NewAnimation(m, func(t time.Duration) error {
		if t > 0 {
			self.Stop(true)
		}
		return nil
	}, nil)
	require.NoError(t, self.Start())
	require.NoError(t, NewAnimation(m, log.render("new"), nil).Start())

	require.NoError(t, clock.Advance(time.Millisecond))
	assert.Len(t, log.frames["old"], 2)
	assert.Len(t, log.frames["new"], 2)
	assert.Equal(t, 2, m.Active())
}

func TestManagerRenderErrorAbortsTick(t *testing.T) {
	clock := NewManualClock()
	m := NewManager(clock, zerolog.Nop())
	log := newFrameLog()
	boom := errors.New("boom")

	require.NoError(t, NewAnimation(m, log.render("first"), nil).Start())
	require.NoError(t, NewAnimation(m, func(t time.Duration) error {
		if t > 0 {
			return boom
		}
		return nil
	}, nil).Start())

	err := clock.Advance(time.Millisecond)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, log.frames["first"], 1)
}

func TestManagerDeferRunsNextTick(t *testing.T) {
	clock := NewManualClock()
	m := NewManager(clock, zerolog.Nop())

	ran := 0
	m.Defer(func() { ran++ })
	assert.True(t, clock.Running())
	assert.Equal(t, 0, ran)

	require.NoError(t, clock.Advance(time.Millisecond))
	assert.Equal(t, 1, ran)
	assert.False(t, clock.Running())
}

func TestManagerDeferKeepsClockAlive(t *testing.T) {
	clock := NewManualClock()
	m := NewManager(clock, zerolog.Nop())

	a := NewTimedAnimation(m, 10*time.Millisecond, func(time.Duration) error { return nil },
		func(bool) {
			m.Defer(func() {})
		})
	require.NoError(t, a.Start())

	require.NoError(t, clock.Advance(10*time.Millisecond))
	assert.Equal(t, Stopped, a.State())
	assert.True(t, clock.Running())

	require.NoError(t, clock.Advance(time.Millisecond))
	assert.False(t, clock.Running())
}
