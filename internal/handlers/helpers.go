package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	logpkg "github.com/benvon/smart-scheduler/internal/logger"
	"go.uber.org/zap"
)

// maxErrorMessageLength caps messages returned to clients
const maxErrorMessageLength = 200

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statusForKind maps an error kind to its HTTP status
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondAppError maps an operation error onto the error envelope. Only
// caller-safe messages leave the process; the cause is logged.
func respondAppError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	kind := apperrors.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request_failed",
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("kind", string(kind)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	respondJSONError(w, status, string(kind), apperrors.PublicMessage(err))
}
