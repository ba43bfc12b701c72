package llm

import (
	"context"

	"github.com/Rrens/routine-advisor/internal/domain"
)

// Request contains chat completion parameters
type Request struct {
	Model       string
	Messages    []domain.ChatMessage
	MaxTokens   int
	Temperature float64
}

// Content is the assistant text of the first completion choice. Valid is
// false when the upstream body did not carry that field at all.
type Content struct {
	Text  string
	Valid bool
}

// Response contains LLM completion result
type Response struct {
	Content    Content
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete sends the conversation upstream and returns the assistant reply.
	// A non-2xx upstream answer is reported as *UpstreamError.
	Complete(ctx context.Context, req Request) (*Response, error)
}
