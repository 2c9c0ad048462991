package genai

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	gemini "google.golang.org/genai"

	"arogya-app-server/internal/config"
	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/models"
)

// contentGenerator is the part of the Gemini models API the client uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) iter.Seq2[*gemini.GenerateContentResponse, error]
}

// GeminiClient implements Collaborator over the Gemini API
type GeminiClient struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	log     *logger.Logger
}

// NewGeminiClient connects to Gemini. Without an API key the client is
// returned unconfigured and every call fails with ErrUnavailable.
func NewGeminiClient(ctx context.Context, cfg config.AIConfig, log *logger.Logger) (*GeminiClient, error) {
	if log == nil {
		log = logger.Discard()
	}
	g := &GeminiClient{model: cfg.Model, timeout: cfg.Timeout, log: log}
	if cfg.APIKey == "" {
		log.WithComponent("genai").Warn("GEMINI_API_KEY not set, AI features will use fallback results")
		return g, nil
	}

	client, err := gemini.NewClient(ctx, &gemini.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: gemini.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.models = client.Models
	return g, nil
}

// Configured reports whether calls can reach the model
func (g *GeminiClient) Configured() bool {
	return g.models != nil
}

// Generate returns the full answer for req
func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if !g.Configured() {
		return "", ErrUnavailable
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, buildContents(req), buildConfig(req))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}
	return text, nil
}

// Stream delivers the answer incrementally. Returning an error from onChunk
// stops consumption.
func (g *GeminiClient) Stream(ctx context.Context, req Request, onChunk func(chunk string) error) error {
	if !g.Configured() {
		return ErrUnavailable
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	for resp, err := range g.models.GenerateContentStream(ctx, g.model, buildContents(req), buildConfig(req)) {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if text := responseText(resp); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func buildContents(req Request) []*gemini.Content {
	contents := make([]*gemini.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		var role string
		switch msg.Role {
		case models.ChatRoleUser:
			role = "user"
		case models.ChatRoleModel:
			role = "model"
		default:
			continue
		}
		contents = append(contents, &gemini.Content{Role: role, Parts: []*gemini.Part{{Text: msg.Text}}})
	}
	return append(contents, &gemini.Content{Role: "user", Parts: []*gemini.Part{{Text: req.Prompt}}})
}

func buildConfig(req Request) *gemini.GenerateContentConfig {
	cfg := &gemini.GenerateContentConfig{}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &gemini.Content{Parts: []*gemini.Part{{Text: req.SystemInstruction}}}
	}
	return cfg
}

func responseText(resp *gemini.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
