// Package countdown runs fixed-tick timers that end in a single terminal
// action unless cancelled first.
package countdown

import (
	"context"
	"sync"
	"time"

	"arogya-app-server/internal/logger"
)

// State of a running countdown
type State string

const (
	StateRunning   State = "running"
	StateCancelled State = "cancelled"
	StateCompleted State = "completed"
)

// Countdown describes a timer of Ticks steps spaced by Interval
type Countdown struct {
	ticks      int
	interval   time.Duration
	onTick     func(remaining int)
	onComplete func()
	log        *logger.Logger
}

// Option configures a Countdown
type Option func(*Countdown)

// OnTick is called after every tick with the ticks left
func OnTick(fn func(remaining int)) Option {
	return func(c *Countdown) { c.onTick = fn }
}

// OnComplete is called exactly once when the last tick elapses
func OnComplete(fn func()) Option {
	return func(c *Countdown) { c.onComplete = fn }
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(c *Countdown) { c.log = log }
}

// New creates a countdown. ticks below 1 completes on the first interval.
func New(ticks int, interval time.Duration, opts ...Option) *Countdown {
	if ticks < 1 {
		ticks = 1
	}
	c := &Countdown{ticks: ticks, interval: interval, log: logger.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle controls one run of a countdown
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	state     State
	remaining int
}

// Start begins counting. Cancelling ctx is the same as calling Cancel.
func (c *Countdown) Start(ctx context.Context) *Handle {
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StateRunning,
		remaining: c.ticks,
	}
	go c.run(runCtx, h)
	return h
}

// Cancel stops the countdown. It returns false when the countdown had already
// completed or been cancelled.
func (h *Handle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateRunning {
		return false
	}
	h.state = StateCancelled
	h.cancel()
	return true
}

// Remaining returns the ticks left
func (h *Handle) Remaining() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.remaining
}

// State returns the current state
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done is closed once the countdown goroutine exits
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (c *Countdown) run(ctx context.Context, h *Handle) {
	defer close(h.done)
	defer h.cancel()

	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			if h.state == StateRunning {
				h.state = StateCancelled
			}
			h.mu.Unlock()
			return
		case <-timer.C:
		}

		h.mu.Lock()
		if h.state != StateRunning {
			h.mu.Unlock()
			return
		}
		h.remaining--
		remaining := h.remaining
		if remaining == 0 {
			h.state = StateCompleted
		}
		h.mu.Unlock()

		c.safeCall("tick", func() {
			if c.onTick != nil {
				c.onTick(remaining)
			}
		})

		if remaining == 0 {
			c.safeCall("complete", func() {
				if c.onComplete != nil {
					c.onComplete()
				}
			})
			return
		}
		timer.Reset(c.interval)
	}
}

func (c *Countdown) safeCall(stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithComponent("countdown").WithField("stage", stage).WithField("panic", r).Error("Countdown callback panicked")
		}
	}()
	fn()
}
