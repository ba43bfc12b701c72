package api

import (
	"net/http"

	"github.com/Rrens/routine-advisor/internal/api/handler"
	customMiddleware "github.com/Rrens/routine-advisor/internal/api/middleware"
	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/llm"
	"github.com/Rrens/routine-advisor/internal/llm/anthropic"
	"github.com/Rrens/routine-advisor/internal/llm/deepseek"
	"github.com/Rrens/routine-advisor/internal/llm/gemini"
	"github.com/Rrens/routine-advisor/internal/llm/ollama"
	"github.com/Rrens/routine-advisor/internal/llm/openai"
	"github.com/Rrens/routine-advisor/internal/repository/redis"
	"github.com/Rrens/routine-advisor/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewLLMRouter registers every provider and selects the configured default
func NewLLMRouter(cfg config.RelayConfig) *llm.Router {
	llmRouter := llm.NewRouter(cfg.Provider)

	llmRouter.RegisterProvider(openai.NewProvider(cfg.OpenAI, cfg.UpstreamTimeout))
	llmRouter.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek, cfg.UpstreamTimeout))
	llmRouter.RegisterProvider(anthropic.NewProvider(cfg.Anthropic, cfg.UpstreamTimeout))
	llmRouter.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	llmRouter.RegisterProvider(ollama.NewProvider(cfg.Ollama, cfg.UpstreamTimeout))

	log.Info().
		Str("default", cfg.Provider).
		Strs("configured", llmRouter.ListProviders()).
		Msg("LLM providers initialized")

	return llmRouter
}

// NewRouter creates and configures the HTTP router. redisClient may be nil,
// in which case caching and rate limiting stay off.
func NewRouter(cfg *config.Config, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(customMiddleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS; the relay's own preflight handler writes the final headers
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:     []string{"Content-Type"},
		ExposedHeaders:     []string{"X-Request-ID"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))

	llmRouter := NewLLMRouter(cfg.Relay)

	var (
		replyCache *redis.ReplyCache
		cache      service.ReplyCache
		ready      handler.Pinger
	)
	if redisClient != nil {
		ready = redisClient
		if cfg.Relay.Cache.Enabled {
			replyCache = redis.NewReplyCache(redisClient, cfg.Relay.Cache.TTL)
			cache = replyCache
		}
	}

	relayService := service.NewRelayService(llmRouter, cfg.Relay, cache)
	relayHandler := handler.NewRelayHandler(relayService)

	// Operational routes
	r.Get("/healthz", handler.HealthCheck)
	r.Get("/readyz", handler.ReadyCheck(ready))
	r.Get("/providers", handler.ListLLMProviders(llmRouter))
	if replyCache != nil {
		r.Post("/cache/flush", handler.FlushCache(replyCache))
	}

	// Relay endpoint. The catch-all goes first so POST and OPTIONS override it.
	r.HandleFunc("/", relayHandler.MethodNotAllowed)
	r.Options("/", relayHandler.Preflight)
	r.Group(func(r chi.Router) {
		if redisClient != nil && cfg.Relay.RateLimit.Enabled {
			rateLimiter := redis.NewRateLimiter(
				redisClient,
				cfg.Relay.RateLimit.RequestsPerMinute,
				cfg.Relay.RateLimit.Burst,
			)
			r.Use(customMiddleware.NewRateLimitMiddleware(rateLimiter).Limit)
		}
		r.Post("/", relayHandler.Relay)
	})

	return r
}
