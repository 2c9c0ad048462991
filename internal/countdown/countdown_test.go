package countdown

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 5 * time.Millisecond

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("countdown did not finish")
	}
}

func TestCountdown_CompletesOnceAfterAllTicks(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	var completed int32

	c := New(3, tick,
		OnTick(func(remaining int) {
			mu.Lock()
			seen = append(seen, remaining)
			mu.Unlock()
		}),
		OnComplete(func() { atomic.AddInt32(&completed, 1) }),
	)

	h := c.Start(context.Background())
	waitDone(t, h)

	assert.Equal(t, []int{2, 1, 0}, seen)
	assert.Equal(t, int32(1), atomic.LoadInt32(&completed))
	assert.Equal(t, StateCompleted, h.State())
	assert.False(t, h.Cancel())
}

func TestCountdown_CancelPreventsCompletion(t *testing.T) {
	var completed int32
	ticked := make(chan int, 3)

	c := New(3, 50*time.Millisecond,
		OnTick(func(remaining int) { ticked <- remaining }),
		OnComplete(func() { atomic.AddInt32(&completed, 1) }),
	)

	h := c.Start(context.Background())
	require.Equal(t, 2, <-ticked)
	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel())
	waitDone(t, h)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&completed))
	assert.Equal(t, StateCancelled, h.State())
	assert.Equal(t, 2, h.Remaining())
}

func TestCountdown_ContextCancel(t *testing.T) {
	var completed int32
	ctx, cancel := context.WithCancel(context.Background())

	h := New(3, time.Hour, OnComplete(func() { atomic.AddInt32(&completed, 1) })).Start(ctx)
	cancel()
	waitDone(t, h)

	assert.Equal(t, StateCancelled, h.State())
	assert.Equal(t, int32(0), atomic.LoadInt32(&completed))
}

func TestCountdown_TickPanicDoesNotStopTimer(t *testing.T) {
	var completed int32
	c := New(3, tick,
		OnTick(func(remaining int) {
			if remaining == 2 {
				panic("vibration unavailable")
			}
		}),
		OnComplete(func() { atomic.AddInt32(&completed, 1) }),
	)

	h := c.Start(context.Background())
	waitDone(t, h)

	assert.Equal(t, int32(1), atomic.LoadInt32(&completed))
}

func TestCountdown_MinimumOneTick(t *testing.T) {
	var completed int32
	h := New(0, tick, OnComplete(func() { atomic.AddInt32(&completed, 1) })).Start(context.Background())
	waitDone(t, h)

	assert.Equal(t, int32(1), atomic.LoadInt32(&completed))
	assert.Equal(t, 0, h.Remaining())
}
