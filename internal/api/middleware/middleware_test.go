package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/routine-advisor/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Int(1), args.Get(2).(time.Time), args.Error(3)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit(t *testing.T) {
	reset := time.Date(2025, 1, 1, 12, 1, 0, 0, time.UTC)

	tests := []struct {
		name       string
		allowed    bool
		err        error
		wantStatus int
	}{
		{"allowed", true, nil, http.StatusOK},
		{"limited", false, nil, http.StatusTooManyRequests},
		{"limiter failure lets request through", false, errors.New("redis down"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := new(MockRateLimiter)
			limiter.On("Allow", mock.Anything, "10.0.0.1").Return(tt.allowed, 0, reset, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = "10.0.0.1:52100"
			rec := httptest.NewRecorder()

			middleware.NewRateLimitMiddleware(limiter).Limit(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			limiter.AssertExpectations(t)
		})
	}
}

func TestRateLimit_Headers(t *testing.T) {
	limiter := new(MockRateLimiter)
	reset := time.Date(2025, 1, 1, 12, 1, 0, 0, time.UTC)
	limiter.On("Allow", mock.Anything, "10.0.0.2").Return(true, 12, reset, nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.2"
	rec := httptest.NewRecorder()

	middleware.NewRateLimitMiddleware(limiter).Limit(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, "12", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2025-01-01T12:01:00Z", rec.Header().Get("X-RateLimit-Reset"))
}

func TestRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil catalog")
	})

	rec := httptest.NewRecorder()
	middleware.Recoverer(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Relay error: nil catalog", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogger_PassesThrough(t *testing.T) {
	teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	middleware.Logger(teapot).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
