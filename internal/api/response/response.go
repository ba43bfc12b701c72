package response

import (
	"encoding/json"
	"net/http"
)

// Response represents the envelope used by the operational endpoints
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// allowAnyOrigin marks every response as readable from any origin
func allowAnyOrigin(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// JSON sends an enveloped JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	Raw(w, status, Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// Error sends an enveloped error response
func Error(w http.ResponseWriter, status int, message any) {
	Raw(w, status, Response{
		Success: false,
		Error:   message,
	})
}

// Raw sends v as the JSON body without the envelope
func Raw(w http.ResponseWriter, status int, v any) {
	allowAnyOrigin(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(v)
}

// Text sends a plain text response
func Text(w http.ResponseWriter, status int, message string) {
	allowAnyOrigin(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)

	w.Write([]byte(message))
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	allowAnyOrigin(w)
	w.WriteHeader(http.StatusNoContent)
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// BadRequest sends a 400 Bad Request text response
func BadRequest(w http.ResponseWriter, message string) {
	Text(w, http.StatusBadRequest, message)
}

// MethodNotAllowed sends a 405 Method Not Allowed text response
func MethodNotAllowed(w http.ResponseWriter, message string) {
	Text(w, http.StatusMethodNotAllowed, message)
}

// TooManyRequests sends a 429 Too Many Requests text response
func TooManyRequests(w http.ResponseWriter, message string) {
	Text(w, http.StatusTooManyRequests, message)
}

// BadGateway sends a 502 Bad Gateway text response
func BadGateway(w http.ResponseWriter, message string) {
	Text(w, http.StatusBadGateway, message)
}

// InternalError sends a 500 Internal Server Error text response
func InternalError(w http.ResponseWriter, message string) {
	Text(w, http.StatusInternalServerError, message)
}
