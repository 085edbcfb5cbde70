package web

import (
	"encoding/json"
	"net/http"

	"beet-backend/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a business error kind onto an HTTP status; anything
// without a kind is an infrastructure failure and stays opaque to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch core.KindOf(err) {
	case core.KindNotFound:
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case core.KindAlreadyExists:
		writeError(w, r, err.Error(), "ALREADY_EXISTS", http.StatusConflict)
	case core.KindTypeMismatch:
		writeError(w, r, err.Error(), "TYPE_MISMATCH", http.StatusUnprocessableEntity)
	case core.KindInvalidArgument:
		writeError(w, r, err.Error(), "INVALID_ARGUMENT", http.StatusBadRequest)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
