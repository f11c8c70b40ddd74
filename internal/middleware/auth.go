package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/request"
	"go.uber.org/zap"
)

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.JWTClaims, error)
}

// UserStore resolves the local account behind a token subject
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByProviderID(ctx context.Context, providerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// Auth creates authentication middleware that validates JWT tokens and
// provisions a user on first sight of a subject
func Auth(verifier TokenVerifier, users UserStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Missing Authorization header", logger)
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid Authorization header format", logger)
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, tokenString)
			if err != nil {
				logger.Info("token_verification_failed", zap.Error(err))
				writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", logger)
				return
			}

			user, err := resolveUser(ctx, users, claims, logger)
			if err != nil {
				logger.Error("failed_to_resolve_user", zap.Error(err))
				writeError(w, r, http.StatusInternalServerError, string(apperrors.KindInternal), "An unexpected error occurred", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

func resolveUser(ctx context.Context, users UserStore, claims *models.JWTClaims, logger *zap.Logger) (*models.User, error) {
	user, err := users.GetByProviderID(ctx, claims.Subject)
	if apperrors.Is(err, apperrors.KindNotFound) {
		user = models.NewUserFromClaims(claims)
		if err := users.Create(ctx, user); err != nil {
			return nil, err
		}
		logger.Info("user_provisioned", zap.String("user_id", user.ID.String()))
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	if user.SyncProfile(claims) {
		if err := users.Update(ctx, user); err != nil {
			logger.Warn("failed_to_update_user_profile",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}
	return user, nil
}
