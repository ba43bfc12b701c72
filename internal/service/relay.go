package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/llm"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// ReplyCache stores replies for identical outbound requests
type ReplyCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, reply string) error
}

// RelayService forwards a conversation to the configured language model
type RelayService struct {
	llmRouter   *llm.Router
	provider    string
	model       string
	brand       string
	maxTokens   int
	temperature float64
	cache       ReplyCache
}

// NewRelayService creates a new relay service. cache may be nil.
func NewRelayService(llmRouter *llm.Router, cfg config.RelayConfig, cache ReplyCache) *RelayService {
	return &RelayService{
		llmRouter:   llmRouter,
		provider:    cfg.Provider,
		model:       cfg.Model,
		brand:       cfg.Brand,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		cache:       cache,
	}
}

// Relay builds the outbound conversation and returns the model's reply.
// Upstream failures come back as *llm.UpstreamError.
func (s *RelayService) Relay(ctx context.Context, req domain.RelayRequest) (*domain.RelayReply, error) {
	provider, err := s.llmRouter.GetProvider(s.provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM provider: %w", err)
	}

	model := s.model
	if model == "" {
		model = provider.DefaultModel()
	}

	llmReq := llm.Request{
		Model:       model,
		Messages:    llm.BuildMessages(s.brand, req.Messages, req.Products),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	logger := log.With().
		Str("request_id", middleware.GetReqID(ctx)).
		Str("provider", provider.Name()).
		Str("model", model).
		Logger()

	var cacheKey string
	if s.cache != nil {
		cacheKey = requestKey(provider.Name(), llmReq)
		if reply, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			logger.Warn().Err(err).Msg("reply cache read failed")
		} else if ok {
			logger.Debug().Msg("reply served from cache")
			return newReply(reply), nil
		}
	}

	resp, err := provider.Complete(ctx, llmReq)
	if err != nil {
		return nil, err
	}

	if !resp.Content.Valid {
		logger.Warn().Msg("upstream response carried no message content")
	}

	logger.Info().
		Int("messages", len(llmReq.Messages)).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("relay completed")

	if s.cache != nil && resp.Content.Valid && resp.Content.Text != "" {
		if err := s.cache.Set(ctx, cacheKey, resp.Content.Text); err != nil {
			logger.Warn().Err(err).Msg("reply cache write failed")
		}
	}

	return newReply(resp.Content.Text), nil
}

func newReply(text string) *domain.RelayReply {
	return &domain.RelayReply{
		Reply:     text,
		Citations: llm.ExtractCitations(text),
	}
}

// requestKey hashes everything that determines the upstream answer
func requestKey(provider string, req llm.Request) string {
	data, _ := json.Marshal(struct {
		Provider string `json:"provider"`
		llm.Request
	}{provider, req})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
