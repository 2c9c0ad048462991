package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"arogya-app-server/internal/countdown"
	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/metrics"
	"arogya-app-server/internal/models"
)

// EmergencyMessage is the alert text sent when the SOS countdown completes
const EmergencyMessage = "EMERGENCY CONTACTS NOTIFIED & AMBULANCE DISPATCHED TO LOCATION"

// ErrSOSActive is returned when an SOS countdown is already running
var ErrSOSActive = errors.New("sos countdown already active")

// Haptics is an optional device capability
type Haptics interface {
	Vibrate(pattern ...time.Duration)
}

func vibrate(h Haptics, pattern ...time.Duration) {
	if h != nil {
		h.Vibrate(pattern...)
	}
}

// Alert is one dispatched emergency
type Alert struct {
	ArogyaID         string    `json:"arogyaId"`
	Name             string    `json:"name"`
	EmergencyContact string    `json:"emergencyContact,omitempty"`
	Message          string    `json:"message"`
	DispatchedAt     time.Time `json:"dispatchedAt"`
}

// Dispatcher delivers an emergency alert
type Dispatcher interface {
	Dispatch(ctx context.Context, alert Alert) error
}

// NotificationDispatcher simulates notifying contacts and emergency services
type NotificationDispatcher struct {
	logger *logger.Logger
}

// NewNotificationDispatcher creates a new NotificationDispatcher
func NewNotificationDispatcher(log *logger.Logger) *NotificationDispatcher {
	if log == nil {
		log = logger.Discard()
	}
	return &NotificationDispatcher{logger: log}
}

// Dispatch logs the alert
func (n *NotificationDispatcher) Dispatch(_ context.Context, alert Alert) error {
	n.logger.WithComponent("sos").WithFields(logrus.Fields{
		"arogya_id":         alert.ArogyaID,
		"emergency_contact": alert.EmergencyContact,
	}).Warn(alert.Message)
	return nil
}

// SOSStatus is a snapshot of the emergency flow
type SOSStatus struct {
	Active    bool   `json:"active"`
	Remaining int    `json:"remaining"`
	LastAlert *Alert `json:"lastAlert,omitempty"`
}

// Emergency runs the cancellable SOS countdown
type Emergency struct {
	ticks      int
	interval   time.Duration
	dispatcher Dispatcher
	haptics    Haptics
	metrics    *metrics.Collector
	log        *logger.Logger
	now        func() time.Time

	mu     sync.Mutex
	handle *countdown.Handle
	run    int
	last   *Alert
}

// NewEmergency creates the SOS flow. haptics and m may be nil.
func NewEmergency(ticks int, interval time.Duration, dispatcher Dispatcher, haptics Haptics, m *metrics.Collector, log *logger.Logger) *Emergency {
	if log == nil {
		log = logger.Discard()
	}
	return &Emergency{
		ticks:      ticks,
		interval:   interval,
		dispatcher: dispatcher,
		haptics:    haptics,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// Start begins the countdown on behalf of profile. The countdown outlives ctx
// cancellation; only Cancel stops it.
func (e *Emergency) Start(ctx context.Context, profile models.UserProfile) (SOSStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handle != nil {
		return e.status(), ErrSOSActive
	}

	e.run++
	run := e.run
	background := context.WithoutCancel(ctx)
	cd := countdown.New(e.ticks, e.interval,
		countdown.WithLogger(e.log),
		countdown.OnTick(func(int) { vibrate(e.haptics, 100*time.Millisecond) }),
		countdown.OnComplete(func() { e.complete(background, run, profile) }),
	)
	e.handle = cd.Start(background)

	e.record("started")
	e.log.WithComponent("sos").WithField("arogya_id", profile.ArogyaID).Info("SOS countdown started")
	return e.status(), nil
}

// Cancel stops a running countdown before dispatch
func (e *Emergency) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.handle == nil || !e.handle.Cancel() {
		return false
	}
	e.handle = nil
	e.record("cancelled")
	e.log.WithComponent("sos").Info("SOS countdown cancelled")
	return true
}

// Status returns the current state
func (e *Emergency) Status() SOSStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status()
}

func (e *Emergency) status() SOSStatus {
	s := SOSStatus{Remaining: e.ticks}
	if e.handle != nil {
		s.Active = true
		s.Remaining = e.handle.Remaining()
	}
	if e.last != nil {
		a := *e.last
		s.LastAlert = &a
	}
	return s
}

func (e *Emergency) complete(ctx context.Context, run int, profile models.UserProfile) {
	alert := Alert{
		ArogyaID:         profile.ArogyaID,
		Name:             profile.FullName(),
		EmergencyContact: profile.EmergencyContact,
		Message:          EmergencyMessage,
		DispatchedAt:     e.now(),
	}
	if err := e.dispatcher.Dispatch(ctx, alert); err != nil {
		e.log.WithComponent("sos").WithError(err).Error("Failed to dispatch emergency alert")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == run {
		e.handle = nil
	}
	e.last = &alert
	e.record("dispatched")
}

func (e *Emergency) record(event string) {
	if e.metrics != nil {
		e.metrics.RecordSOSEvent(event)
	}
}
