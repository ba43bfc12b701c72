package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/routine-advisor/internal/api/response"
	"github.com/Rrens/routine-advisor/internal/llm"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheFlusher drops every cached relay reply
type CacheFlusher interface {
	FlushAll(ctx context.Context) (int64, error)
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including Redis connectivity.
// A nil pinger means the relay has no backing services.
func ReadyCheck(redis Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "redis not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListLLMProviders returns the registered LLM providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}

// FlushCache clears all cached replies from Redis
func FlushCache(cache CacheFlusher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := cache.FlushAll(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "failed to flush cache: "+err.Error())
			return
		}

		response.OK(w, map[string]any{
			"message":      "cache flushed successfully",
			"keys_deleted": deleted,
		})
	}
}
