package oidc

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier verifies bearer tokens issued by the identity provider
type Verifier struct {
	keys     KeySource
	issuer   string
	audience string
	skew     time.Duration
}

// NewVerifier creates a new JWT verifier. An empty audience skips the audience check.
func NewVerifier(keys KeySource, issuer, audience string) *Verifier {
	return &Verifier{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		skew:     30 * time.Second,
	}
}

// Verify verifies a JWT token and extracts claims
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	keys, err := v.keys.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAcceptableSkew(v.skew),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}
	if token.Subject() == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}

	claims := &models.JWTClaims{
		Subject:   token.Subject(),
		Issuer:    token.Issuer(),
		Audience:  token.Audience(),
		IssuedAt:  token.IssuedAt(),
		ExpiresAt: token.Expiration(),
	}
	if email, ok := token.PrivateClaims()["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := token.PrivateClaims()["name"].(string); ok {
		claims.Name = name
	}

	return claims, nil
}
