package fx

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// A Clock delivers ticks to a Manager and reports the time since it started.
type Clock interface {
	// Start begins delivering ticks to onTick. Errors returned from onTick
	// are the clock's to report.
	Start(onTick func() error)
	// Stop stops delivering ticks and resets Elapsed to zero.
	Stop()
	Running() bool
	// Elapsed is the time since Start. It never decreases while running.
	Elapsed() time.Duration
}

// A TickSource produces tick notifications until the subscription is
// cancelled. The notification may arrive on any goroutine.
type TickSource interface {
	Subscribe(fn func()) (cancel func())
}

// Poster runs functions on a single goroutine. Loop is the usual Poster.
type Poster interface {
	Post(fn func())
}

// IntervalSource ticks at a fixed interval.
type IntervalSource struct {
	interval time.Duration
}

// NewIntervalSource creates an instance of an IntervalSource.
func NewIntervalSource(interval time.Duration) *IntervalSource {
	s := new(IntervalSource)
	s.interval = interval
	return s
}

// Subscribe starts a ticker goroutine that calls fn on every interval.
func (s *IntervalSource) Subscribe(fn func()) func() {
	ticker := time.NewTicker(s.interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// FrameEvents is a TickSource fed by a host that knows when a frame has
// actually been displayed. The host calls Notify after each frame.
type FrameEvents struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// NewFrameEvents creates an instance of a FrameEvents.
func NewFrameEvents() *FrameEvents {
	e := new(FrameEvents)
	e.subs = make(map[int]func())
	return e
}

// Subscribe registers fn for every Notify.
func (e *FrameEvents) Subscribe(fn func()) func() {
	e.mu.Lock()
	id := e.next
	e.next++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Notify signals that a frame was displayed.
func (e *FrameEvents) Notify() {
	e.mu.Lock()
	subs := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// SourceClock merges several tick sources into one stream of ticks delivered
// on a Poster. A tick arriving within the de-duplication window of the last
// delivered tick is dropped, so a timer and a frame event firing together
// only advance animations once.
type SourceClock struct {
	poster  Poster
	sources []TickSource
	dedupe  time.Duration
	now     func() time.Time
	log     zerolog.Logger

	running  bool
	gen      uint64
	started  time.Time
	elapsed  time.Duration
	lastTick time.Duration
	ticked   bool
	cancels  []func()
	onTick   func() error
}

// ClockOption configures a SourceClock.
type ClockOption func(*SourceClock)

// WithDedupe sets the window within which a second tick is dropped.
func WithDedupe(d time.Duration) ClockOption {
	return func(c *SourceClock) { c.dedupe = d }
}

// WithNow replaces the wall clock used for Elapsed.
func WithNow(now func() time.Time) ClockOption {
	return func(c *SourceClock) { c.now = now }
}

// WithClockLogger sets the logger used to report tick errors.
func WithClockLogger(log zerolog.Logger) ClockOption {
	return func(c *SourceClock) { c.log = log }
}

// NewSourceClock creates an instance of a SourceClock that delivers ticks
// from sources on poster.
func NewSourceClock(poster Poster, sources []TickSource, opts ...ClockOption) *SourceClock {
	c := new(SourceClock)
	c.poster = poster
	c.sources = sources
	c.now = time.Now
	c.log = zerolog.Nop()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to every source. Calling Start on a running clock does
// nothing.
func (c *SourceClock) Start(onTick func() error) {
	if c.running {
		return
	}

	c.running = true
	c.gen++
	c.started = c.now()
	c.elapsed = 0
	c.ticked = false
	c.onTick = onTick

	gen := c.gen
	for _, src := range c.sources {
		cancel := src.Subscribe(func() {
			c.poster.Post(func() { c.fire(gen) })
		})
		c.cancels = append(c.cancels, cancel)
	}
	c.log.Debug().Int("sources", len(c.sources)).Msg("clock started")
}

// Stop cancels every subscription and resets the elapsed time. Ticks already
// posted before Stop are ignored.
func (c *SourceClock) Stop() {
	if !c.running {
		return
	}

	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	c.running = false
	c.elapsed = 0
	c.onTick = nil
	c.log.Debug().Msg("clock stopped")
}

// Running reports whether the clock is delivering ticks.
func (c *SourceClock) Running() bool {
	return c.running
}

// Elapsed returns the time since Start, or zero when stopped.
func (c *SourceClock) Elapsed() time.Duration {
	if !c.running {
		return 0
	}

	if d := c.now().Sub(c.started); d > c.elapsed {
		c.elapsed = d
	}
	return c.elapsed
}

func (c *SourceClock) fire(gen uint64) {
	if !c.running || gen != c.gen {
		return
	}

	now := c.Elapsed()
	if c.ticked && now-c.lastTick < c.dedupe {
		return
	}
	c.lastTick = now
	c.ticked = true

	if err := c.onTick(); err != nil {
		c.log.Error().Err(err).Dur("elapsed", now).Msg("tick failed")
	}
}

// ManualClock is a Clock that only moves when told to. It exists for
// deterministic tests of code built on a Manager.
type ManualClock struct {
	running bool
	elapsed time.Duration
	onTick  func() error
	starts  int
	stops   int
}

// NewManualClock creates an instance of a ManualClock.
func NewManualClock() *ManualClock {
	return new(ManualClock)
}

// Start records onTick and marks the clock running.
func (c *ManualClock) Start(onTick func() error) {
	if c.running {
		return
	}
	c.running = true
	c.onTick = onTick
	c.starts++
}

// Stop marks the clock stopped and resets Elapsed.
func (c *ManualClock) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.elapsed = 0
	c.onTick = nil
	c.stops++
}

// Running reports whether the clock has been started and not stopped.
func (c *ManualClock) Running() bool { return c.running }

// Elapsed returns the current manual time.
func (c *ManualClock) Elapsed() time.Duration { return c.elapsed }

// Starts returns how many times the clock has been started.
func (c *ManualClock) Starts() int { return c.starts }

// Stops returns how many times the clock has been stopped.
func (c *ManualClock) Stops() int { return c.stops }

// Set moves the clock to elapsed without ticking. Time never moves backwards
// and does not move at all while stopped.
func (c *ManualClock) Set(elapsed time.Duration) {
	if c.running && elapsed > c.elapsed {
		c.elapsed = elapsed
	}
}

// Fire delivers one tick and returns its error.
func (c *ManualClock) Fire() error {
	if !c.running {
		return nil
	}
	return c.onTick()
}

// Advance moves the clock forward by d and ticks.
func (c *ManualClock) Advance(d time.Duration) error {
	c.Set(c.elapsed + d)
	return c.Fire()
}
