package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Rrens/routine-advisor/internal/api/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Recoverer turns a panic into a 500 carrying a descriptive message
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			log.Error().
				Str("request_id", middleware.GetReqID(r.Context())).
				Interface("panic", rvr).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")

			response.InternalError(w, fmt.Sprintf("Relay error: %v", rvr))
		}()

		next.ServeHTTP(w, r)
	})
}
