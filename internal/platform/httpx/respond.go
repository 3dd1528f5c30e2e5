// Package httpx provides the JSON response envelope shared by every
// aggregation endpoint.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape returned by every aggregation endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK wraps data in a success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Fail wraps an upstream error in a failure envelope. Store errors are
// surfaced, never retried and never fatal to the process.
func Fail(w http.ResponseWriter, status int, err error) {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	JSON(w, status, Envelope{Success: false, Error: msg})
}

// DecodeJSON decodes a JSON request body into target. Callers tolerate a
// malformed body by falling back to zero-value filters.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
