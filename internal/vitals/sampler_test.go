package vitals

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"arogya-app-server/internal/models"
	"arogya-app-server/internal/store"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testInterval = 5 * time.Millisecond

type countingRecorder struct {
	mu     sync.Mutex
	values []float64
	err    error
	panics bool
}

func (r *countingRecorder) AddVitalSample(_ context.Context, value float64) ([]models.VitalSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panics {
		r.panics = false
		panic("sensor glitch")
	}
	if r.err != nil {
		return nil, r.err
	}
	r.values = append(r.values, value)
	series := make([]models.VitalSample, len(r.values))
	for i, v := range r.values {
		series[i] = models.VitalSample{Timestamp: int64(i), Value: v}
	}
	return series, nil
}

func (r *countingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

func TestSampler_ProducesValuesInRange(t *testing.T) {
	rec := &countingRecorder{}
	s := NewSampler(rec, WithInterval(testInterval), WithRand(rand.New(rand.NewSource(7))))

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() >= 10 }, time.Second, time.Millisecond)
	h.Stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, v := range rec.values {
		assert.GreaterOrEqual(t, v, 60.0)
		assert.LessOrEqual(t, v, 99.0)
		assert.Equal(t, float64(int(v)), v)
	}
}

func TestSampler_StopPreventsFurtherTicks(t *testing.T) {
	rec := &countingRecorder{}
	s := NewSampler(rec, WithInterval(testInterval))

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() >= 2 }, time.Second, time.Millisecond)

	h.Stop()
	stopped := rec.count()
	time.Sleep(10 * testInterval)

	assert.Equal(t, stopped, rec.count())
	assert.False(t, s.Running())
	h.Stop()
}

func TestSampler_StartTwiceFails(t *testing.T) {
	s := NewSampler(&countingRecorder{}, WithInterval(testInterval))

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	defer h.Stop()

	_, err = s.Start(context.Background())
	assert.ErrorIs(t, err, ErrRunning)
}

func TestSampler_PauseResume(t *testing.T) {
	rec := &countingRecorder{}
	s := NewSampler(rec, WithInterval(testInterval))

	_, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, time.Millisecond)

	assert.True(t, s.Pause())
	assert.False(t, s.Pause())
	paused := rec.count()
	time.Sleep(10 * testInterval)
	assert.Equal(t, paused, rec.count())

	h, err := s.Resume(context.Background())
	require.NoError(t, err)
	again, err := s.Resume(context.Background())
	require.NoError(t, err)
	assert.Same(t, h, again)

	require.Eventually(t, func() bool { return rec.count() > paused }, time.Second, time.Millisecond)
	h.Stop()
}

func TestSampler_ContextCancelEndsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSampler(&countingRecorder{}, WithInterval(testInterval))

	h, err := s.Start(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after context cancel")
	}
}

func TestSampler_ResumesAfterParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &countingRecorder{}
	s := NewSampler(rec, WithInterval(testInterval))

	h, err := s.Start(ctx)
	require.NoError(t, err)
	cancel()
	<-h.Done()

	assert.False(t, s.Running())

	resumed, err := s.Resume(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, h, resumed)
	assert.True(t, s.Running())

	before := rec.count()
	require.Eventually(t, func() bool { return rec.count() > before }, time.Second, time.Millisecond)
	resumed.Stop()
	h.Stop()
	assert.False(t, s.Running())
}

func TestSampler_TickFailuresDoNotKillLoop(t *testing.T) {
	rec := &countingRecorder{err: errors.New("quota exceeded"), panics: true}
	s := NewSampler(rec, WithInterval(testInterval))

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	defer h.Stop()

	time.Sleep(5 * testInterval)
	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()

	require.Eventually(t, func() bool { return rec.count() >= 1 }, time.Second, time.Millisecond)
}

func TestSampler_SubscribersReceiveSeries(t *testing.T) {
	s := NewSampler(&countingRecorder{}, WithInterval(testInterval))
	updates, unsubscribe := s.Subscribe(4)

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	defer h.Stop()

	select {
	case series := <-updates:
		assert.NotEmpty(t, series)
	case <-time.After(time.Second):
		t.Fatal("no series published")
	}

	unsubscribe()
	unsubscribe()
	for range updates {
	}
}

func TestSampler_SlowSubscriberDoesNotBlock(t *testing.T) {
	rec := &countingRecorder{}
	s := NewSampler(rec, WithInterval(testInterval))
	_, unsubscribe := s.Subscribe(1)
	defer unsubscribe()

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() >= 5 }, time.Second, time.Millisecond)
	h.Stop()
}

func TestSampler_WritesBoundedSeriesToStore(t *testing.T) {
	st := store.New(store.NewMemoryBackend())
	s := NewSampler(st, WithInterval(time.Millisecond))

	updates, unsubscribe := s.Subscribe(64)
	defer unsubscribe()

	h, err := s.Start(context.Background())
	require.NoError(t, err)

	var last []models.VitalSample
	for i := 0; i < 40; i++ {
		select {
		case last = <-updates:
		case <-time.After(time.Second):
			t.Fatal("sampler stalled")
		}
	}
	h.Stop()

	assert.LessOrEqual(t, len(last), store.MaxVitalSamples)
	stored, err := st.Vitals(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(stored), store.MaxVitalSamples)
}

type recordingObserver struct {
	mu      sync.Mutex
	samples []models.VitalSample
}

func (o *recordingObserver) Observe(sample models.VitalSample) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.samples = append(o.samples, sample)
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.samples)
}

func TestSampler_NotifiesObservers(t *testing.T) {
	obs := &recordingObserver{}
	s := NewSampler(&countingRecorder{}, WithInterval(testInterval), WithObserver(obs))

	h, err := s.Start(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return obs.count() >= 2 }, time.Second, time.Millisecond)
	h.Stop()
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(mqtt.Token)
}

type fakeToken struct {
	completed bool
	err       error
}

func (t *fakeToken) Wait() bool                     { return t.completed }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.completed }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestMQTTPublisher_PublishesJSON(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("Publish", "arogya/vitals/heart_rate", byte(1), false,
		[]byte(`{"timestamp":1700000000000,"value":72,"unit":"bpm"}`)).
		Return(&fakeToken{completed: true})

	p := NewMQTTPublisher(pub, "arogya/vitals/heart_rate", 1, nil)
	p.Observe(models.VitalSample{Timestamp: 1700000000000, Value: 72})

	pub.AssertExpectations(t)
}

func TestMQTTPublisher_BrokerFailureIsDropped(t *testing.T) {
	pub := &MockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&fakeToken{completed: true, err: errors.New("not connected")}).Once()
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&fakeToken{completed: false}).Once()

	p := NewMQTTPublisher(pub, "t", 0, nil)
	assert.NotPanics(t, func() {
		p.Observe(models.VitalSample{Timestamp: 1, Value: 60})
		p.Observe(models.VitalSample{Timestamp: 2, Value: 61})
	})
	pub.AssertNumberOfCalls(t, "Publish", 2)
}
