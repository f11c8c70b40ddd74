package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	logpkg "github.com/benvon/smart-scheduler/internal/logger"
	"github.com/benvon/smart-scheduler/internal/request"
	"go.uber.org/zap"
)

// ErrorResponse is the error envelope written by middleware. It matches the
// handlers' envelope plus the request path.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

// ErrorHandler recovers from panics in later handlers and answers with an
// Internal error envelope
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, trackedUser := request.Track(r.Context())
			r = r.WithContext(ctx)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				fields := []zap.Field{
					zap.Any("panic", rec),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("method", r.Method),
					zap.Stack("stack"),
				}
				if user := trackedUser(); user != nil {
					fields = append(fields, zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())))
				}
				logger.Error("panic_recovered", fields...)

				writeError(w, r, http.StatusInternalServerError, string(apperrors.KindInternal), "An unexpected error occurred", logger)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// writeError sends the error envelope
func writeError(w http.ResponseWriter, r *http.Request, status int, errorType, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		)
	}
}
