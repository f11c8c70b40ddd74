package middleware

import (
	"net/http"

	logpkg "github.com/benvon/smart-scheduler/internal/logger"
	"github.com/benvon/smart-scheduler/internal/request"
	"go.uber.org/zap"
)

// auditEvents maps the statuses worth a security log line to their event name
var auditEvents = map[int]string{
	http.StatusUnauthorized:    "auth_failure",
	http.StatusForbidden:       "auth_failure",
	http.StatusTooManyRequests: "rate_limit_violation",
}

// Audit logs rejected authentication and throttled requests
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			ctx, trackedUser := request.Track(r.Context())

			next.ServeHTTP(rec, r.WithContext(ctx))

			event, ok := auditEvents[rec.statusCode]
			if !ok {
				return
			}
			fields := []zap.Field{
				zap.Int("status_code", rec.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			}
			if user := trackedUser(); user != nil {
				fields = append(fields, zap.String("user_id", user.ID.String()))
			}
			logger.Warn(event, fields...)
		})
	}
}

// statusRecorder remembers the status code written through it
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.statusCode = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
