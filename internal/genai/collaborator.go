// Package genai is the boundary to the external text-generation model. Callers
// build a Request and get back raw text, either whole or as a stream.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"arogya-app-server/internal/models"
)

var (
	// ErrUnavailable is returned when the model cannot be reached or is not configured
	ErrUnavailable = errors.New("text generation unavailable")
	// ErrInvalidResponse is returned when the model answers with an unusable payload
	ErrInvalidResponse = errors.New("invalid text generation response")
)

// Request is one call to the collaborator
type Request struct {
	// Task names the calling flow for logs and metrics
	Task              string
	Prompt            string
	History           []models.ChatMessage
	SystemInstruction string
	// JSON asks for a structured result instead of prose
	JSON bool
}

// Collaborator generates text for a request
type Collaborator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request, onChunk func(chunk string) error) error
}

// DecodeJSON parses a structured model answer into dst. Markdown code fences
// around the payload are tolerated.
func DecodeJSON(raw string, dst any) error {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return fmt.Errorf("%w: empty payload", ErrInvalidResponse)
	}
	if err := json.Unmarshal([]byte(text), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
