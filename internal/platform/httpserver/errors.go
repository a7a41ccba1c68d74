package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
)

// ValidationError is one field-level failure inside the error envelope.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope every error leaves the server in.
type ErrorResponse struct {
	Code             string            `json:"code"`
	Message          string            `json:"message"`
	TraceID          string            `json:"traceId"`
	ValidationErrors []ValidationError `json:"validationErrors,omitempty"`
}

type traceIDKey struct{}

func withTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func traceIDFrom(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey{}).(string); ok {
		return traceID
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
		TraceID: traceIDFrom(r.Context()),
	})
}

func respondValidationError(w http.ResponseWriter, r *http.Request, code string, message string, details []ValidationError) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:             code,
		Message:          message,
		TraceID:          traceIDFrom(r.Context()),
		ValidationErrors: details,
	})
}
