// Package vitals produces the heart-rate feed shown on the dashboard. The
// sampler is a stand-in for a sensor: a pausable periodic producer writing
// into the store's bounded series.
package vitals

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/metrics"
	"arogya-app-server/internal/models"
)

// ErrRunning is returned by Start when a sampling loop is already active
var ErrRunning = errors.New("sampler already running")

// Recorder appends a sample and returns the stored series
type Recorder interface {
	AddVitalSample(ctx context.Context, value float64) ([]models.VitalSample, error)
}

// Observer receives the newest sample after every successful tick
type Observer interface {
	Observe(sample models.VitalSample)
}

// Sampler writes one synthetic sample per interval while running
type Sampler struct {
	recorder  Recorder
	interval  time.Duration
	min, max  int
	rng       *rand.Rand
	log       *logger.Logger
	metrics   *metrics.Collector
	observers []Observer

	mu      sync.Mutex
	current *Handle
	subs    map[int]chan []models.VitalSample
	nextSub int
}

// Option configures a Sampler
type Option func(*Sampler)

// WithInterval sets the tick interval
func WithInterval(d time.Duration) Option {
	return func(s *Sampler) { s.interval = d }
}

// WithRange sets the inclusive sample range
func WithRange(min, max int) Option {
	return func(s *Sampler) { s.min, s.max = min, max }
}

// WithRand overrides the random source
func WithRand(rng *rand.Rand) Option {
	return func(s *Sampler) { s.rng = rng }
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(s *Sampler) { s.log = log }
}

// WithMetrics counts ticks on the collector
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Sampler) { s.metrics = m }
}

// WithObserver adds an observer notified with each stored sample
func WithObserver(o Observer) Option {
	return func(s *Sampler) { s.observers = append(s.observers, o) }
}

// NewSampler creates a stopped sampler. Defaults are a 2s interval over 60..99.
func NewSampler(recorder Recorder, opts ...Option) *Sampler {
	s := &Sampler{
		recorder: recorder,
		interval: 2 * time.Second,
		min:      60,
		max:      99,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      logger.Discard(),
		subs:     make(map[int]chan []models.VitalSample),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle controls one sampling loop
type Handle struct {
	sampler *Sampler
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Stop cancels the loop and blocks until it has exited. No tick runs after
// Stop returns. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
		h.sampler.release(h)
	})
}

// Done is closed when the loop exits
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start launches the sampling loop. The loop also ends when ctx is cancelled.
func (s *Sampler) Start(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, ErrRunning
	}
	return s.start(ctx)
}

func (s *Sampler) start(ctx context.Context) (*Handle, error) {
	if s.interval <= 0 {
		return nil, fmt.Errorf("invalid sampler interval %s", s.interval)
	}
	if s.max < s.min {
		return nil, fmt.Errorf("invalid sampler range %d..%d", s.min, s.max)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{sampler: s, cancel: cancel, done: make(chan struct{})}
	s.current = h

	go s.loop(loopCtx, h)

	s.log.WithComponent("vitals").WithField("interval", s.interval.String()).Info("Sampler started")
	return h, nil
}

// Pause stops the active loop, if any, and reports whether one was running
func (s *Sampler) Pause() bool {
	s.mu.Lock()
	h := s.current
	s.mu.Unlock()

	if h == nil {
		return false
	}
	h.Stop()
	s.log.WithComponent("vitals").Info("Sampler paused")
	return true
}

// Resume starts a loop unless one is already running
func (s *Sampler) Resume(ctx context.Context) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.current, nil
	}
	return s.start(ctx)
}

// Running reports whether a loop is active
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Subscribe registers for the series republished after every tick. A
// subscriber that falls behind misses updates; the producer never blocks.
func (s *Sampler) Subscribe(buffer int) (<-chan []models.VitalSample, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan []models.VitalSample, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Sampler) release(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == h {
		s.current = nil
	}
}

// loop releases its handle before closing done, so a loop ended by its parent
// ctx leaves the sampler stopped and resumable
func (s *Sampler) loop(ctx context.Context, h *Handle) {
	defer close(h.done)
	defer s.release(h)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			s.tick(ctx)
		}
	}
}

// tick is isolated: a failing or panicking tick leaves the loop running
func (s *Sampler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithComponent("vitals").WithField("panic", r).Error("Sampler tick panicked")
		}
	}()

	value := float64(s.min + s.rng.Intn(s.max-s.min+1))
	series, err := s.recorder.AddVitalSample(ctx, value)
	if s.metrics != nil {
		s.metrics.RecordVitalSample(err)
	}
	if err != nil {
		s.log.WithComponent("vitals").WithError(err).Warn("Failed to store vital sample")
		return
	}
	if len(series) == 0 {
		return
	}

	newest := series[len(series)-1]
	for _, o := range s.observers {
		o.Observe(newest)
	}
	s.broadcast(series)
}

func (s *Sampler) broadcast(series []models.VitalSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		snapshot := append([]models.VitalSample(nil), series...)
		select {
		case ch <- snapshot:
		default:
		}
	}
}
