package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"arogya-app-server/internal/genai"
	"arogya-app-server/internal/models"
)

const (
	// AssistantInstruction sets the assistant's voice
	AssistantInstruction = "You are ArogyaPlus Assistant, an advanced medical AI. Your voice is professional, futuristic, and empathetic. Keep answers concise. Use medical terminology but explain it simply."
	// AssistantGreeting opens every conversation
	AssistantGreeting = "ArogyaPlus AI Online. How can I assist you?"
	// ConnectionInterrupted is appended when a reply fails
	ConnectionInterrupted = "Connection interrupted. Check vitals link."
)

var (
	// ErrTurnInProgress is returned when a message is sent while a reply streams
	ErrTurnInProgress = errors.New("assistant is still replying")
	// ErrEmptyMessage is returned for blank prompts
	ErrEmptyMessage = errors.New("message is empty")
)

// Assistant holds one conversation with the model
type Assistant struct {
	ai  Collaboration
	now func() time.Time

	mu       sync.Mutex
	messages []models.ChatMessage
	active   *Turn
}

// NewAssistant creates an assistant with a greeting-only conversation
func NewAssistant(ai Collaboration) *Assistant {
	a := &Assistant{ai: ai, now: time.Now}
	a.messages = []models.ChatMessage{a.message(models.ChatRoleModel, AssistantGreeting)}
	return a
}

// Messages returns a copy of the conversation
func (a *Assistant) Messages() []models.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ChatMessage(nil), a.messages...)
}

// Reset cancels any reply and restores the greeting-only conversation
func (a *Assistant) Reset() {
	a.mu.Lock()
	active := a.active
	a.mu.Unlock()
	if active != nil {
		active.Cancel()
		<-active.done
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = []models.ChatMessage{a.message(models.ChatRoleModel, AssistantGreeting)}
}

// Turn is one streamed reply
type Turn struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	cancelled bool
	reply     []models.ChatMessage
}

// Cancel stops the reply. After Cancel returns no further chunks are
// delivered.
func (t *Turn) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
	t.cancel()
}

// Wait blocks until the turn ends and returns the messages it added
func (t *Turn) Wait() []models.ChatMessage {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.ChatMessage(nil), t.reply...)
}

// Done is closed when the turn ends
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Begin records prompt and starts streaming the reply. onChunk receives each
// piece of text as it arrives.
func (a *Assistant) Begin(ctx context.Context, prompt string, onChunk func(chunk string)) (*Turn, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyMessage
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active != nil {
		return nil, ErrTurnInProgress
	}

	history := append([]models.ChatMessage(nil), a.messages...)
	a.messages = append(a.messages, a.message(models.ChatRoleUser, prompt))

	turnCtx, cancel := context.WithCancel(ctx)
	turn := &Turn{cancel: cancel, done: make(chan struct{})}
	a.active = turn

	go a.run(turnCtx, turn, genai.Request{
		Task:              TaskAssistant,
		Prompt:            prompt,
		History:           history,
		SystemInstruction: AssistantInstruction,
	}, onChunk)
	return turn, nil
}

// Send is Begin followed by Wait
func (a *Assistant) Send(ctx context.Context, prompt string, onChunk func(chunk string)) ([]models.ChatMessage, error) {
	turn, err := a.Begin(ctx, prompt, onChunk)
	if err != nil {
		return nil, err
	}
	return turn.Wait(), nil
}

// CancelActive cancels the streaming reply, if any
func (a *Assistant) CancelActive() bool {
	a.mu.Lock()
	active := a.active
	a.mu.Unlock()
	if active == nil {
		return false
	}
	active.Cancel()
	return true
}

func (a *Assistant) run(ctx context.Context, turn *Turn, req genai.Request, onChunk func(string)) {
	defer close(turn.done)
	defer turn.cancel()

	started := time.Now()
	var text strings.Builder

	err := genai.ErrUnavailable
	if a.ai.Collaborator != nil {
		err = a.ai.Collaborator.Stream(ctx, req, func(chunk string) error {
			turn.mu.Lock()
			defer turn.mu.Unlock()
			if turn.cancelled {
				return context.Canceled
			}
			text.WriteString(chunk)
			if onChunk != nil {
				onChunk(chunk)
			}
			return nil
		})
	}

	turn.mu.Lock()
	cancelled := turn.cancelled
	turn.mu.Unlock()

	var added []models.ChatMessage
	if text.Len() > 0 {
		added = append(added, a.message(models.ChatRoleModel, text.String()))
	}
	failed := err != nil && !cancelled
	if failed {
		added = append(added, a.message(models.ChatRoleModel, ConnectionInterrupted))
	}
	if !cancelled {
		a.ai.record(req.Task, failed, err, started)
	}

	a.mu.Lock()
	a.messages = append(a.messages, added...)
	if a.active == turn {
		a.active = nil
	}
	a.mu.Unlock()

	turn.mu.Lock()
	turn.reply = added
	turn.mu.Unlock()
}

func (a *Assistant) message(role models.ChatRole, text string) models.ChatMessage {
	return models.ChatMessage{ID: uuid.NewString(), Role: role, Text: text, Timestamp: a.now()}
}
