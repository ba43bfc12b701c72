package llm

import (
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of an upstream error body is kept
const maxErrorBody = 64 << 10

// UpstreamError reports a non-2xx answer from the language-model API
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// NewUpstreamError drains the response body into an UpstreamError
func NewUpstreamError(provider string, resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("failed to read %s error body: %w", provider, err)
	}
	return &UpstreamError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

// IsSuccess reports whether the status code is 2xx
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
