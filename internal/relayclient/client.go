// Package relayclient posts conversation state to the relay and interprets its answer.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrEndpointNotConfigured is returned before any network call when the
// relay URL is empty or still a placeholder
var ErrEndpointNotConfigured = errors.New("relay endpoint not set: update client.relay_endpoint or RELAY_ENDPOINT with your relay URL")

const (
	// placeholderMarker flags an endpoint copied from a template and never filled in
	placeholderMarker = "REPLACE_WITH"

	// timestampLayout is RFC 3339 with millisecond precision
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// APIError is a non-2xx answer from the relay
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Request is one exchange's payload
type Request struct {
	Messages []domain.ChatMessage
	Products []domain.Product
	Now      time.Time
}

type payload struct {
	Messages []domain.ChatMessage `json:"messages"`
	Products []domain.Product     `json:"products"`
	Now      string               `json:"now"`
}

// Reply is the relay's success body. Present is false when the body carried
// no string "reply" field.
type Reply struct {
	Text      string
	Present   bool
	Citations []domain.Citation
}

// Client talks to the relay endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a relay client. A zero timeout leaves requests bounded only
// by their context.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the endpoint looks usable
func (c *Client) Configured() bool {
	return c.endpoint != "" && !strings.Contains(c.endpoint, placeholderMarker)
}

// Exchange posts the payload and returns the relay's reply. Non-2xx answers
// come back as *APIError; transport and decoding failures as plain errors.
func (c *Client) Exchange(ctx context.Context, req Request) (*Reply, error) {
	if !c.Configured() {
		return nil, ErrEndpointNotConfigured
	}

	messages := req.Messages
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	products := req.Products
	if products == nil {
		products = []domain.Product{}
	}

	body, err := json.Marshal(payload{
		Messages: messages,
		Products: products,
		Now:      req.Now.UTC().Format(timestampLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	requestID := uuid.New().String()
	logger := log.With().Str("request_id", requestID).Logger()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Int("messages", len(messages)).
		Int("products", len(products)).
		Dur("duration", time.Since(start)).
		Msg("relay exchange")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(resp.StatusCode, text),
		}
		logger.Error().Int("status", resp.StatusCode).Bytes("body", text).Msg("relay returned error")
		return nil, apiErr
	}

	return parseReply(text)
}

// parseReply reads {reply, citations}. An empty body carries no reply; a
// body that is not a JSON object is a decoding failure.
func parseReply(text []byte) (*Reply, error) {
	if len(bytes.TrimSpace(text)) == 0 {
		return &Reply{}, nil
	}

	var body struct {
		Reply     json.RawMessage   `json:"reply"`
		Citations []domain.Citation `json:"citations"`
	}
	if err := json.Unmarshal(text, &body); err != nil {
		return nil, fmt.Errorf("invalid relay response: %w", err)
	}

	reply := &Reply{Citations: body.Citations}
	var s *string
	if len(body.Reply) > 0 && json.Unmarshal(body.Reply, &s) == nil && s != nil {
		reply.Text = *s
		reply.Present = true
	}
	return reply, nil
}
