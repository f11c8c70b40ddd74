package middleware

import (
	"net/http"
	"time"

	logpkg "github.com/benvon/smart-scheduler/internal/logger"
	"github.com/benvon/smart-scheduler/internal/request"
	"go.uber.org/zap"
)

// Logging writes one http_request entry per request, tagged with the
// authenticated user when an inner handler attached one
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := newStatusRecorder(w)

			ctx, trackedUser := request.Track(r.Context())
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", wrapped.statusCode),
				zap.Int64("duration_ms", duration.Milliseconds()),
			}
			if user := trackedUser(); user != nil {
				fields = append(fields, zap.String("user_id", user.ID.String()))
			}
			logger.Info("http_request", fields...)
		})
	}
}
