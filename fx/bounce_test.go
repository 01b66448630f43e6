package fx

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounceRepeatDampens(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{mode: RelativeToGround}
	f := &testFeature{point: pt}

	var events []Event
	err := fx.Bounce(f,
		BounceDuration(time.Second),
		BouncePeak(10),
		BounceRepeat(1),
		BounceDampen(0.3),
		BounceCallback(func(ev Event) { events = append(events, ev) }))
	require.NoError(t, err)

	first := fx.Registry().List(f)
	require.Len(t, first, 1)
	assert.Equal(t, 500*time.Millisecond, first[0].Duration())

	require.NoError(t, clock.Advance(500*time.Millisecond))
	assert.InDelta(t, 10.0, pt.altitude, 1e-9)
	require.NoError(t, clock.Advance(500*time.Millisecond))
	assert.InDelta(t, 0.0, pt.altitude, 1e-9)
	assert.Empty(t, events)
	assert.True(t, clock.Running())

	// The pending repeat is registered so it can still be cancelled.
	waiting := fx.Registry().List(f)
	require.Len(t, waiting, 1)
	assert.Equal(t, time.Duration(-1), waiting[0].Duration())

	// The repeat starts on the next tick.
	require.NoError(t, clock.Advance(0))
	second := fx.Registry().List(f)
	require.Len(t, second, 1)
	half := second[0].Duration()
	assert.InDelta(t, 0.5*math.Sqrt(0.3), half.Seconds(), 1e-6)

	require.NoError(t, clock.Advance(half))
	assert.InDelta(t, 10*0.3, pt.altitude, 1e-9)
	require.NoError(t, clock.Advance(half))
	assert.InDelta(t, 0.0, pt.altitude, 1e-9)

	require.Len(t, events, 1)
	assert.False(t, events[0].Cancelled)
	assert.Same(t, f, events[0].Target)
	assert.Equal(t, RelativeToGround, pt.mode)
	assert.False(t, clock.Running())
}

func TestBounceCancelDuringAscendRestoresMode(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{altitude: 7, mode: ClampToGround}
	f := &testFeature{point: pt}

	var events []Event
	err := fx.Bounce(f, BounceDuration(time.Second), BouncePeak(10),
		BounceCallback(func(ev Event) {
			assert.Equal(t, ClampToGround, pt.mode)
			events = append(events, ev)
		}))
	require.NoError(t, err)
	assert.Equal(t, RelativeToGround, pt.mode)
	assert.Equal(t, 0.0, pt.altitude)

	require.NoError(t, clock.Advance(100*time.Millisecond))
	lifted := pt.altitude
	assert.InDelta(t, EaseOut(0.2)*10, lifted, 1e-9)

	fx.Cancel(f)
	require.Len(t, events, 1)
	assert.True(t, events[0].Cancelled)
	assert.Equal(t, ClampToGround, pt.mode)

	require.NoError(t, clock.Advance(time.Second))
	assert.Equal(t, lifted, pt.altitude)
	assert.Nil(t, fx.Registry().List(f))
	assert.Len(t, events, 1)
}

func startRepeatingBounce(t *testing.T, fx *Effects, clock *ManualClock, f *testFeature, events *[]Event) {
	t.Helper()
	require.NoError(t, fx.Bounce(f,
		BounceDuration(time.Second),
		BouncePeak(10),
		BounceRepeat(1),
		BounceCallback(func(ev Event) { *events = append(*events, ev) })))
	require.NoError(t, clock.Advance(500*time.Millisecond))
	require.NoError(t, clock.Advance(500*time.Millisecond))
	require.Empty(t, *events)
}

func TestBounceCancelBetweenRepeats(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{altitude: 4, mode: ClampToGround}
	f := &testFeature{point: pt}

	var events []Event
	startRepeatingBounce(t, fx, clock, f, &events)

	fx.Cancel(f)
	require.Len(t, events, 1)
	assert.True(t, events[0].Cancelled)
	assert.Equal(t, ClampToGround, pt.mode)

	require.NoError(t, clock.Advance(0))
	require.NoError(t, clock.Advance(100*time.Millisecond))
	assert.Len(t, events, 1)
	assert.Equal(t, 0, fx.Registry().Len())
	assert.InDelta(t, 0.0, pt.altitude, 1e-9)
	assert.Equal(t, ClampToGround, pt.mode)
	assert.False(t, clock.Running())
}

func TestBounceRewindBetweenRepeats(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{mode: ClampToFloor}
	f := &testFeature{point: pt}

	var events []Event
	startRepeatingBounce(t, fx, clock, f, &events)

	require.NoError(t, fx.Rewind(f))
	require.Len(t, events, 1)
	assert.True(t, events[0].Cancelled)

	require.NoError(t, clock.Advance(0))
	require.NoError(t, clock.Advance(100*time.Millisecond))
	assert.Len(t, events, 1)
	assert.Equal(t, 0, fx.Registry().Len())
	assert.InDelta(t, 0.0, pt.altitude, 1e-9)
	assert.Equal(t, ClampToFloor, pt.mode)
	assert.False(t, clock.Running())
}

func TestBounceReplacedBetweenRepeats(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{mode: RelativeToGround}
	f := &testFeature{point: pt}

	var events []Event
	startRepeatingBounce(t, fx, clock, f, &events)

	var replaced []Event
	require.NoError(t, fx.Bounce(f, BounceDuration(time.Second), BouncePeak(2),
		BounceCallback(func(ev Event) { replaced = append(replaced, ev) })))
	require.Len(t, events, 1)
	assert.True(t, events[0].Cancelled)

	// The stale repeat must not rewind the new bounce.
	require.NoError(t, clock.Advance(0))
	require.Len(t, fx.Registry().List(f), 1)
	require.NoError(t, clock.Advance(500*time.Millisecond))
	assert.InDelta(t, 2.0, pt.altitude, 1e-9)
	require.NoError(t, clock.Advance(500*time.Millisecond))

	require.Len(t, replaced, 1)
	assert.False(t, replaced[0].Cancelled)
	assert.Len(t, events, 1)
	assert.False(t, clock.Running())
}

func TestBounceAscendsFromStart(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{altitude: 5, mode: Absolute}
	f := &testFeature{point: pt}

	require.NoError(t, fx.Bounce(f, BounceDuration(time.Second), BounceStart(2), BouncePeak(3)))
	assert.InDelta(t, 2.0, pt.altitude, 1e-9)

	require.NoError(t, clock.Advance(500*time.Millisecond))
	assert.InDelta(t, 5.0, pt.altitude, 1e-9)
	require.NoError(t, clock.Advance(500*time.Millisecond))
	assert.InDelta(t, 2.0, pt.altitude, 1e-9)
}

func TestBounceRewindDuringDescend(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{altitude: 2, mode: Absolute}
	f := &testFeature{point: pt}

	var events []Event
	require.NoError(t, fx.Bounce(f, BounceDuration(time.Second), BouncePeak(4),
		BounceCallback(func(ev Event) { events = append(events, ev) })))

	require.NoError(t, clock.Advance(600*time.Millisecond))
	require.NoError(t, fx.Rewind(f))

	assert.Equal(t, 6.0, pt.altitude)
	require.Len(t, events, 1)
	assert.True(t, events[0].Cancelled)
	assert.Equal(t, Absolute, pt.mode)
}

func TestBounceSwitchesClampedFloorMode(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{mode: ClampToFloor}
	f := &testFeature{point: pt}

	require.NoError(t, fx.Bounce(f, BouncePeak(1)))
	assert.Equal(t, RelativeToFloor, pt.mode)

	require.NoError(t, clock.Advance(DefaultBounceDuration))
	require.NoError(t, clock.Advance(DefaultBounceDuration))
	assert.Equal(t, ClampToFloor, pt.mode)
	assert.False(t, clock.Running())
}

func TestBounceDefaultPeakFromViewer(t *testing.T) {
	fx, clock := newTestEffects(WithViewer(fixedViewer(500)))
	pt := &testPoint{altitude: 1, mode: RelativeToGround}
	f := &testFeature{point: pt}

	require.NoError(t, fx.Bounce(f))
	require.NoError(t, clock.Advance(DefaultBounceDuration/2))
	assert.InDelta(t, 101.0, pt.altitude, 1e-9)
}

func TestBouncePhases(t *testing.T) {
	t.Run("ascend only", func(t *testing.T) {
		fx, clock := newTestEffects()
		pt := &testPoint{mode: RelativeToGround}
		f := &testFeature{point: pt}

		var events []Event
		require.NoError(t, fx.Bounce(f, BouncePeak(10), BouncePhase(PhaseAscend),
			BounceCallback(func(ev Event) { events = append(events, ev) })))

		require.NoError(t, clock.Advance(DefaultBounceDuration/2))
		assert.InDelta(t, 10.0, pt.altitude, 1e-9)
		require.Len(t, events, 1)
		assert.False(t, events[0].Cancelled)
		assert.Nil(t, fx.Registry().List(f))
		assert.False(t, clock.Running())
	})

	t.Run("descend only", func(t *testing.T) {
		fx, clock := newTestEffects()
		pt := &testPoint{altitude: 3, mode: RelativeToGround}
		f := &testFeature{point: pt}

		var events []Event
		require.NoError(t, fx.Bounce(f, BouncePeak(10), BounceStart(0), BouncePhase(PhaseDescend),
			BounceCallback(func(ev Event) { events = append(events, ev) })))
		assert.InDelta(t, 10.0, pt.altitude, 1e-9)

		require.NoError(t, clock.Advance(DefaultBounceDuration/2))
		assert.InDelta(t, 0.0, pt.altitude, 1e-9)
		require.Len(t, events, 1)
		assert.False(t, events[0].Cancelled)
	})
}

func TestBounceRewindsRunningAnimations(t *testing.T) {
	fx, _ := newTestEffects()
	pt := &testPoint{altitude: 5, mode: RelativeToGround}
	f := &testFeature{point: pt}

	var cancelled []bool
	_, err := fx.AnimateProperty(pt, AltitudeProperty, To(50), WithProxy(f),
		OnComplete(func(ev Event) { cancelled = append(cancelled, ev.Cancelled) }))
	require.NoError(t, err)

	require.NoError(t, fx.Bounce(f, BouncePeak(1)))
	assert.Equal(t, []bool{true}, cancelled)
	assert.Len(t, fx.Registry().List(f), 1)
}

func TestBounceManyRepeatsRunIteratively(t *testing.T) {
	fx, clock := newTestEffects()
	pt := &testPoint{mode: RelativeToGround}
	f := &testFeature{point: pt}

	const repeats = 200
	completed := 0
	require.NoError(t, fx.Bounce(f,
		BounceDuration(2*time.Millisecond),
		BouncePeak(1),
		BounceRepeat(repeats),
		BounceDampen(1),
		BounceCallback(func(ev Event) {
			assert.False(t, ev.Cancelled)
			completed++
		})))

	ticks := 0
	for clock.Running() && ticks < 10*repeats {
		require.NoError(t, clock.Advance(time.Millisecond))
		ticks++
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 3*(repeats+1)-1, ticks)
}

func TestBounceInvalid(t *testing.T) {
	pt := &testPoint{mode: RelativeToGround}
	f := &testFeature{point: pt}

	tests := []struct {
		name   string
		target any
		opts   []BounceOption
		want   error
	}{
		{"no geometry", &testEntity{}, []BounceOption{BouncePeak(1)}, ErrTargetType},
		{"nil geometry", &testFeature{}, []BounceOption{BouncePeak(1)}, ErrTargetType},
		{"negative duration", f, []BounceOption{BouncePeak(1), BounceDuration(-1)}, ErrInvalidConfig},
		{"negative repeat", f, []BounceOption{BouncePeak(1), BounceRepeat(-1)}, ErrInvalidConfig},
		{"zero dampen", f, []BounceOption{BouncePeak(1), BounceDampen(0)}, ErrInvalidConfig},
		{"large dampen", f, []BounceOption{BouncePeak(1), BounceDampen(1.5)}, ErrInvalidConfig},
		{"bad phase", f, []BounceOption{BouncePeak(1), BouncePhase(7)}, ErrInvalidConfig},
		{"no peak", f, nil, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, clock := newTestEffects()
			err := fx.Bounce(tt.target, tt.opts...)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, clock.Running())
			assert.Equal(t, RelativeToGround, pt.mode)
		})
	}
}

func TestReferenceModeEffective(t *testing.T) {
	m, changed := ClampToGround.Effective()
	assert.Equal(t, RelativeToGround, m)
	assert.True(t, changed)

	m, changed = Absolute.Effective()
	assert.Equal(t, Absolute, m)
	assert.False(t, changed)
}
