package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// apiResponse is the envelope every API endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// ErrorDetail decides how much of an internal error reaches the client.
// Detail is only exposed in development mode.
type ErrorDetail struct {
	Development bool
}

// of returns the error text in development and an empty object otherwise.
func (d ErrorDetail) of(err error) any {
	if d.Development && err != nil {
		return err.Error()
	}
	return struct{}{}
}
