package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"arogya-app-server/internal/models"
)

const (
	// TeleconsultDoctor is the doctor on every simulated call
	TeleconsultDoctor = "Dr. Anjali Gupta"
	// TeleconsultGreeting opens the call chat
	TeleconsultGreeting = "Hi! I'm Dr. Anjali. I'm reviewing your vitals now."
	// TeleconsultReply is the doctor's canned answer
	TeleconsultReply = "I see. Let me check your latest report."
)

// ErrNoActiveCall is returned when the call has not been started
var ErrNoActiveCall = errors.New("no active teleconsult call")

// Consult is a snapshot of the call
type Consult struct {
	Active   bool                 `json:"active"`
	Doctor   string               `json:"doctor"`
	Duration int                  `json:"durationSeconds"`
	Messages []models.ChatMessage `json:"messages"`
}

// Teleconsult simulates a video call with a doctor chat
type Teleconsult struct {
	replyDelay time.Duration
	haptics    Haptics
	now        func() time.Time

	mu       sync.Mutex
	active   bool
	started  time.Time
	messages []models.ChatMessage
	pending  []*time.Timer
	// call is bumped on every start and end so replies from a previous call
	// are dropped
	call int
}

// NewTeleconsult creates a teleconsult whose doctor answers after replyDelay
func NewTeleconsult(replyDelay time.Duration, haptics Haptics) *Teleconsult {
	return &Teleconsult{replyDelay: replyDelay, haptics: haptics, now: time.Now}
}

// Start opens a call with the doctor's greeting. Starting while in a call
// restarts it.
func (t *Teleconsult) Start() Consult {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopPending()
	t.call++
	t.active = true
	t.started = t.now()
	t.messages = []models.ChatMessage{t.message(models.ChatRoleDoctor, TeleconsultGreeting)}
	return t.snapshot()
}

// Send posts a user message and schedules the doctor's reply
func (t *Teleconsult) Send(text string) (Consult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Consult{}, ErrEmptyMessage
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return t.snapshot(), ErrNoActiveCall
	}
	t.messages = append(t.messages, t.message(models.ChatRoleUser, text))
	vibrate(t.haptics, 50*time.Millisecond)

	call := t.call
	t.pending = append(t.pending, time.AfterFunc(t.replyDelay, func() { t.reply(call) }))
	return t.snapshot(), nil
}

// End hangs up, drops pending replies and returns the final snapshot
func (t *Teleconsult) End() (Consult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return t.snapshot(), ErrNoActiveCall
	}
	final := t.snapshot()
	t.stopPending()
	t.call++
	t.active = false
	t.messages = nil
	return final, nil
}

// Current returns the call snapshot
func (t *Teleconsult) Current() Consult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Teleconsult) reply(call int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || call != t.call {
		return
	}
	t.messages = append(t.messages, t.message(models.ChatRoleDoctor, TeleconsultReply))
	vibrate(t.haptics, 50*time.Millisecond, 50*time.Millisecond)
}

func (t *Teleconsult) stopPending() {
	for _, timer := range t.pending {
		timer.Stop()
	}
	t.pending = nil
}

func (t *Teleconsult) snapshot() Consult {
	c := Consult{Active: t.active, Doctor: TeleconsultDoctor, Messages: append([]models.ChatMessage{}, t.messages...)}
	if t.active {
		c.Duration = int(t.now().Sub(t.started) / time.Second)
	}
	return c
}

func (t *Teleconsult) message(role models.ChatRole, text string) models.ChatMessage {
	return models.ChatMessage{ID: uuid.NewString(), Role: role, Text: text, Timestamp: t.now()}
}
