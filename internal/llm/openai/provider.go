package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Provider implements llm.Provider for OpenAI-compatible chat completion APIs
type Provider struct {
	name         string
	apiKey       string
	defaultModel string
	models       []string
	client       *http.Client
	baseURL      string
}

// NewProvider creates a new OpenAI provider. A zero timeout leaves the
// upstream call bounded only by the request context.
func NewProvider(cfg config.ProviderConfig, timeout time.Duration) llm.Provider {
	return NewCompatible("openai", cfg, []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-4",
		"gpt-3.5-turbo",
	}, timeout)
}

// NewCompatible creates a provider for any API speaking the chat completions protocol
func NewCompatible(name string, cfg config.ProviderConfig, models []string, timeout time.Duration) *Provider {
	defaultModel := cfg.Model
	if defaultModel == "" && len(models) > 0 {
		defaultModel = models[0]
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		name:         name,
		apiKey:       cfg.APIKey,
		defaultModel: defaultModel,
		models:       models,
		client:       &http.Client{Timeout: timeout},
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return p.name
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return p.models
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Temperature float64              `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// content extracts the first choice's text, marking it invalid when absent
func (r *chatResponse) content() llm.Content {
	if len(r.Choices) == 0 {
		return llm.Content{}
	}
	msg := r.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return llm.Content{}
	}
	return llm.Content{Text: *msg.Content, Valid: true}
}

// Complete sends the conversation to the chat completions endpoint
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	chatReq := chatRequest{
		Model:       model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if !llm.IsSuccess(resp.StatusCode) {
		return nil, llm.NewUpstreamError(p.name, resp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if chatResp.Model != "" {
		model = chatResp.Model
	}

	return &llm.Response{
		Content:    chatResp.content(),
		Model:      model,
		TokensUsed: chatResp.Usage.TotalTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
