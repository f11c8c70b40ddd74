package oidc

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// KeySource provides the keys tokens are verified against
type KeySource interface {
	Keys(ctx context.Context) (jwk.Set, error)
}

// JWKSManager fetches and caches the identity provider's key set
type JWKSManager struct {
	url     string
	ttl     time.Duration
	client  *http.Client
	mu      sync.RWMutex
	keys    jwk.Set
	expires time.Time
}

// NewJWKSManager creates a new JWKS manager for jwksURL, caching keys for ttl
func NewJWKSManager(jwksURL string, ttl time.Duration) *JWKSManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWKSManager{
		url:    jwksURL,
		ttl:    ttl,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Keys returns the cached key set, fetching it when the cache is cold or stale
func (m *JWKSManager) Keys(ctx context.Context) (jwk.Set, error) {
	m.mu.RLock()
	if m.keys != nil && time.Now().Before(m.expires) {
		keys := m.keys
		m.mu.RUnlock()
		return keys, nil
	}
	m.mu.RUnlock()

	keys, err := jwk.Fetch(ctx, m.url, jwk.WithHTTPClient(m.client))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	m.mu.Lock()
	m.keys = keys
	m.expires = time.Now().Add(m.ttl)
	m.mu.Unlock()

	return keys, nil
}

// StaticKeys serves a fixed key set
type StaticKeys struct {
	Set jwk.Set
}

// Keys returns the fixed key set
func (s StaticKeys) Keys(context.Context) (jwk.Set, error) {
	return s.Set, nil
}

var (
	_ KeySource = (*JWKSManager)(nil)
	_ KeySource = StaticKeys{}
)
