package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/option"
)

type Provider struct {
	apiKey string
	model  string
}

// NewProvider creates a new Gemini provider
func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "gemini"
}

// AvailableModels returns the models this provider offers
func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

// DefaultModel returns the configured model or the package default
func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

// IsConfigured reports whether an API key is set
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// splitTurns separates system instructions from the chat turns. The last turn
// is returned on its own since it is the message being sent.
func splitTurns(messages []domain.ChatMessage) (system string, history []*genai.Content, last genai.Text) {
	var instructions []string
	var turns []domain.ChatMessage
	for _, m := range messages {
		if m.Role == string(domain.RoleSystem) {
			instructions = append(instructions, m.Content)
			continue
		}
		turns = append(turns, m)
	}

	if len(turns) > 0 {
		last = genai.Text(turns[len(turns)-1].Content)
		turns = turns[:len(turns)-1]
	}

	for _, m := range turns {
		role := "user"
		if m.Role == string(domain.RoleAssistant) {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	return strings.Join(instructions, "\n\n"), history, last
}

// upstreamError maps a Gemini API failure onto llm.UpstreamError
func (p *Provider) upstreamError(err error) error {
	var ae *apierror.APIError
	if !errors.As(err, &ae) {
		if parsed, ok := apierror.FromError(err); ok {
			ae = parsed
		}
	}
	if ae == nil {
		return fmt.Errorf("gemini generation error: %w", err)
	}
	code := ae.HTTPCode()
	if code <= 0 {
		code = http.StatusBadGateway
	}
	return &llm.UpstreamError{Provider: p.Name(), StatusCode: code, Body: ae.Error()}
}

// Complete sends the conversation as a chat session and returns the reply
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	system, history, last := splitTurns(req.Messages)

	generativeModel := client.GenerativeModel(model)
	generativeModel.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		generativeModel.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if system != "" {
		generativeModel.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	session := generativeModel.StartChat()
	session.History = history

	start := time.Now()
	resp, err := session.SendMessage(ctx, last)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, p.upstreamError(err)
	}

	var content llm.Content
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var b strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
				content.Valid = true
			}
		}
		content.Text = b.String()
	}

	tokensUsed := 0
	if resp.UsageMetadata != nil {
		tokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Content:    content,
		Model:      model,
		TokensUsed: tokensUsed,
		LatencyMs:  latency,
	}, nil
}
