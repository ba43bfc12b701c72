package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/routine-advisor/internal/api/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()

	response.OK(rec, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, map[string]any{"status": "ok"}, body.Data)
}

func TestRaw(t *testing.T) {
	rec := httptest.NewRecorder()

	response.Raw(rec, http.StatusOK, map[string]string{"reply": "hello"})

	assert.JSONEq(t, `{"reply":"hello"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestTextHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string)
		status int
	}{
		{"bad request", response.BadRequest, http.StatusBadRequest},
		{"method not allowed", response.MethodNotAllowed, http.StatusMethodNotAllowed},
		{"too many requests", response.TooManyRequests, http.StatusTooManyRequests},
		{"bad gateway", response.BadGateway, http.StatusBadGateway},
		{"internal error", response.InternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			tt.write(rec, "msg")

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "msg", rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()

	response.NoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
