package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Rrens/routine-advisor/internal/api/response"
	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/llm"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds the relay request body
const maxBodyBytes = 1 << 20

// Relayer forwards a conversation upstream
type Relayer interface {
	Relay(ctx context.Context, req domain.RelayRequest) (*domain.RelayReply, error)
}

// RelayHandler serves the chat relay endpoint
type RelayHandler struct {
	relayService Relayer
}

// NewRelayHandler creates a new relay handler
func NewRelayHandler(relayService Relayer) *RelayHandler {
	return &RelayHandler{relayService: relayService}
}

// Relay handles POST /
func (h *RelayHandler) Relay(w http.ResponseWriter, r *http.Request) {
	var req domain.RelayRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON")
		return
	}
	// The body must hold exactly one JSON value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid JSON")
		return
	}

	reply, err := h.relayService.Relay(r.Context(), req)
	if err != nil {
		var upstream *llm.UpstreamError
		if errors.As(err, &upstream) {
			log.Warn().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("provider", upstream.Provider).
				Int("status", upstream.StatusCode).
				Msg("upstream rejected relay request")
			response.BadGateway(w, fmt.Sprintf("%s error: %s", upstream.Provider, upstream.Body))
			return
		}

		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("relay failed")
		response.InternalError(w, "Relay error: "+err.Error())
		return
	}

	response.Raw(w, http.StatusOK, reply)
}

// Preflight answers CORS preflight requests on the relay endpoint
func (h *RelayHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	response.NoContent(w)
}

// MethodNotAllowed rejects every other method on the relay endpoint
func (h *RelayHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	response.MethodNotAllowed(w, "Only POST allowed")
}
