package fx

import (
	"context"
	"sync"
)

// Loop runs posted functions one at a time on a single goroutine. Every
// Manager and Effects call in a running program goes through a Loop.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates an instance of a Loop.
func NewLoop() *Loop {
	l := new(Loop)
	l.wake = make(chan struct{}, 1)
	return l
}

// Post queues fn to run on the loop goroutine. It never blocks and may be
// called from any goroutine, including the loop itself.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call posts fn and waits for its result. It must not be called from the loop
// goroutine.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	l.Post(func() { done <- fn() })

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted functions until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for _, fn := range l.drain() {
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	q := l.queue
	l.queue = nil
	return q
}
