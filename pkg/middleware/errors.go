package middleware

import (
	"encoding/json"
	"net/http"

	"mercator-hq/portico/pkg/telemetry/logging"
)

// ErrorResponse is the JSON body written for errors produced by middleware.
type ErrorResponse struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError writes a JSON error response carrying the request ID.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     message,
		Status:    status,
		RequestID: logging.GetRequestID(r.Context()),
	})
}
