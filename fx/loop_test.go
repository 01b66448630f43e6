package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsPostedInOrder(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() {
			got = append(got, i)
			if i == 2 {
				l.Post(func() { got = append(got, 10) })
			}
		})
	}

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.NoError(t, l.Call(ctx, func() error { return nil }))
	require.NoError(t, l.Call(ctx, func() error { return nil }))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 10}, got)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoopCallReturnsError(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	boom := errors.New("boom")
	assert.ErrorIs(t, l.Call(ctx, func() error { return boom }), boom)
}

func TestLoopCallHonoursContext(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Call(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
