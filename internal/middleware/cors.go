package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// DefaultAllowedOrigin is used when no origins are configured
const DefaultAllowedOrigin = "http://localhost:3000"

// ParseOrigins splits a comma-separated origin list, trimming blanks and duplicates.
// fallback is used when raw yields nothing.
func ParseOrigins(raw, fallback string) []string {
	var origins []string
	seen := map[string]bool{}
	for _, source := range []string{raw, fallback} {
		for _, o := range strings.Split(source, ",") {
			o = strings.TrimSpace(o)
			if o == "" || seen[o] {
				continue
			}
			seen[o] = true
			origins = append(origins, o)
		}
		if len(origins) > 0 {
			return origins
		}
	}
	return []string{DefaultAllowedOrigin}
}

// CORS creates CORS middleware that handles CORS headers and OPTIONS preflight requests
func CORS(allowedOrigins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	logger.Info("cors_configured", zap.Strings("allowed_origins", allowedOrigins))
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		MaxAge:           86400,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})
	return c.Handler
}
