package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// envelope is the uniform response wrapper used by every endpoint:
// {success, data|error} plus optional count (lists) and message (deletes).
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// respond writes v as JSON with the given status code.
// Encoding failures are logged rather than surfaced — by the time encoding
// runs, the status line has already been written.
func respond(w http.ResponseWriter, status int, v envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}

// respondData writes a {success:true, data} envelope.
func respondData(w http.ResponseWriter, status int, data any) {
	respond(w, status, envelope{Success: true, Data: data})
}

// respondList writes a {success:true, data, count} envelope.
func respondList(w http.ResponseWriter, data any, count int) {
	respond(w, http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

// respondError writes a {success:false, error} envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{Success: false, Error: message})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.LocationService.Create: validation error: Name must be a
// non-empty string" → "Name must be a non-empty string".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
