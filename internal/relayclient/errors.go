package relayclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// extractMessage picks the most useful text out of an error body. In order:
// error.body when it is a string, error.body.error.message, the JSON of
// error.body (or of error), a top-level message, the raw body, and finally
// the HTTP status text.
func extractMessage(status int, text []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if json.Unmarshal(text, &envelope) == nil {
		if truthy(envelope.Error) {
			return fromErrorField(envelope.Error)
		}
		if truthy(envelope.Message) {
			return stringOf(envelope.Message)
		}
	}

	if len(text) > 0 {
		return string(text)
	}

	if statusText := http.StatusText(status); statusText != "" {
		return statusText
	}
	return fmt.Sprintf("HTTP %d", status)
}

func fromErrorField(errField json.RawMessage) string {
	var errObj struct {
		Body json.RawMessage `json:"body"`
	}
	if json.Unmarshal(errField, &errObj) != nil {
		errObj.Body = nil
	}

	var s string
	if len(errObj.Body) > 0 && json.Unmarshal(errObj.Body, &s) == nil {
		return s
	}

	var nested struct {
		Error struct {
			Message json.RawMessage `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(errObj.Body, &nested) == nil && truthy(nested.Error.Message) {
		return stringOf(nested.Error.Message)
	}

	if truthy(errObj.Body) {
		return compact(errObj.Body)
	}
	return compact(errField)
}

// truthy mirrors loose truthiness: absent, null, false, 0 and "" are false
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

// stringOf unquotes JSON strings and renders anything else as compact JSON
func stringOf(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return compact(raw)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
