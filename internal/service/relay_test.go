package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var relayConfig = config.RelayConfig{
	Provider:    "openai",
	Brand:       "L'Oréal",
	MaxTokens:   800,
	Temperature: 0.7,
}

func newMockProvider() *MockProvider {
	p := new(MockProvider)
	p.On("Name").Return("openai")
	p.On("IsConfigured").Return(true)
	p.On("DefaultModel").Return("gpt-4o").Maybe()
	return p
}

func newRouter(p llm.Provider) *llm.Router {
	router := llm.NewRouter("openai")
	router.RegisterProvider(p)
	return router
}

func TestRelayService_Relay(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		provider := newMockProvider()
		svc := NewRelayService(newRouter(provider), relayConfig, nil)

		provider.On("Complete", ctx, mock.MatchedBy(func(req llm.Request) bool {
			return req.Model == "gpt-4o" &&
				req.MaxTokens == 800 &&
				req.Temperature == 0.7 &&
				len(req.Messages) == 3 &&
				req.Messages[0].Role == "system" &&
				req.Messages[1] == domain.ChatMessage{Role: "user", Content: "Hi"} &&
				req.Messages[2].Content == "Product data:\n- CeraVe Cleanser (CeraVe): Gentle"
		})).Return(&llm.Response{Content: llm.Content{Text: "hello", Valid: true}}, nil)

		reply, err := svc.Relay(ctx, domain.RelayRequest{
			Messages: []domain.ChatMessage{{Role: "user", Content: "Hi"}},
			Products: []domain.ProductSummary{{Name: "CeraVe Cleanser", Brand: "CeraVe", Description: "Gentle"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello", reply.Reply)
		assert.Empty(t, reply.Citations)

		provider.AssertExpectations(t)
	})

	t.Run("absent content yields empty reply", func(t *testing.T) {
		provider := newMockProvider()
		svc := NewRelayService(newRouter(provider), relayConfig, nil)

		provider.On("Complete", ctx, mock.Anything).Return(&llm.Response{}, nil)

		reply, err := svc.Relay(ctx, domain.RelayRequest{})
		require.NoError(t, err)
		assert.Equal(t, "", reply.Reply)
	})

	t.Run("upstream error passes through", func(t *testing.T) {
		provider := newMockProvider()
		svc := NewRelayService(newRouter(provider), relayConfig, nil)

		upstream := &llm.UpstreamError{Provider: "openai", StatusCode: 500, Body: "boom"}
		provider.On("Complete", ctx, mock.Anything).Return(nil, upstream)

		_, err := svc.Relay(ctx, domain.RelayRequest{})

		var got *llm.UpstreamError
		require.True(t, errors.As(err, &got))
		assert.Equal(t, "boom", got.Body)
	})

	t.Run("configured model overrides provider default", func(t *testing.T) {
		provider := newMockProvider()
		cfg := relayConfig
		cfg.Model = "gpt-4o-mini"
		svc := NewRelayService(newRouter(provider), cfg, nil)

		provider.On("Complete", ctx, mock.MatchedBy(func(req llm.Request) bool {
			return req.Model == "gpt-4o-mini"
		})).Return(&llm.Response{Content: llm.Content{Text: "ok", Valid: true}}, nil)

		_, err := svc.Relay(ctx, domain.RelayRequest{})
		require.NoError(t, err)
		provider.AssertExpectations(t)
		provider.AssertNotCalled(t, "DefaultModel")
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("Name").Return("openai")
		provider.On("IsConfigured").Return(false)
		svc := NewRelayService(newRouter(provider), relayConfig, nil)

		_, err := svc.Relay(ctx, domain.RelayRequest{})
		assert.ErrorContains(t, err, "provider not configured")
		provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})
}

func TestRelayService_Cache(t *testing.T) {
	ctx := context.Background()
	req := domain.RelayRequest{Messages: []domain.ChatMessage{{Role: "user", Content: "Hi"}}}

	t.Run("hit skips upstream", func(t *testing.T) {
		provider := newMockProvider()
		cache := new(MockReplyCache)
		svc := NewRelayService(newRouter(provider), relayConfig, cache)

		cache.On("Get", ctx, mock.AnythingOfType("string")).Return("cached", true, nil)

		reply, err := svc.Relay(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "cached", reply.Reply)
		provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("miss stores reply", func(t *testing.T) {
		provider := newMockProvider()
		cache := new(MockReplyCache)
		svc := NewRelayService(newRouter(provider), relayConfig, cache)

		cache.On("Get", ctx, mock.AnythingOfType("string")).Return("", false, nil)
		cache.On("Set", ctx, mock.AnythingOfType("string"), "fresh").Return(nil)
		provider.On("Complete", ctx, mock.Anything).Return(&llm.Response{Content: llm.Content{Text: "fresh", Valid: true}}, nil)

		reply, err := svc.Relay(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "fresh", reply.Reply)
		cache.AssertExpectations(t)
	})

	t.Run("read failure falls through", func(t *testing.T) {
		provider := newMockProvider()
		cache := new(MockReplyCache)
		svc := NewRelayService(newRouter(provider), relayConfig, cache)

		cache.On("Get", ctx, mock.AnythingOfType("string")).Return("", false, errors.New("conn refused"))
		cache.On("Set", ctx, mock.AnythingOfType("string"), "fresh").Return(errors.New("conn refused"))
		provider.On("Complete", ctx, mock.Anything).Return(&llm.Response{Content: llm.Content{Text: "fresh", Valid: true}}, nil)

		reply, err := svc.Relay(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "fresh", reply.Reply)
	})
}

func TestRequestKey(t *testing.T) {
	a := llm.Request{Model: "gpt-4o", Messages: []domain.ChatMessage{{Role: "user", Content: "a"}}}
	b := llm.Request{Model: "gpt-4o", Messages: []domain.ChatMessage{{Role: "user", Content: "b"}}}

	assert.Equal(t, requestKey("openai", a), requestKey("openai", a))
	assert.NotEqual(t, requestKey("openai", a), requestKey("openai", b))
	assert.NotEqual(t, requestKey("openai", a), requestKey("deepseek", a))
	assert.Len(t, requestKey("openai", a), 64)
}
