// Package request carries per-request values shared by middleware and handlers.
package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/benvon/smart-scheduler/internal/models"
)

type contextKey int

const (
	userKey contextKey = iota
	slotKey
)

// slot lets middleware wrapping the router see a user attached further in
type slot struct {
	user *models.User
}

// ClientIP returns the caller's address without port. The first
// X-Forwarded-For hop wins over X-Real-IP, which wins over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// WithUser returns a context carrying the authenticated user. The user
// is also recorded in any slot opened by Track.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if s, ok := ctx.Value(slotKey).(*slot); ok {
		s.user = user
	}
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or nil outside protected routes
func UserFromContext(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}

// Track opens a slot on ctx and returns a func reporting the user attached
// by WithUser anywhere below it. Nested calls share the outermost slot.
func Track(ctx context.Context) (context.Context, func() *models.User) {
	s, ok := ctx.Value(slotKey).(*slot)
	if !ok {
		s = &slot{}
		s.user, _ = ctx.Value(userKey).(*models.User)
		ctx = context.WithValue(ctx, slotKey, s)
	}
	return ctx, func() *models.User { return s.user }
}
