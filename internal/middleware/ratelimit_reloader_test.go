package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/benvon/smart-scheduler/internal/models"
	"go.uber.org/zap"
)

type mockRatelimitSource struct {
	mu      sync.Mutex
	getFunc func(ctx context.Context, key string) (*models.RatelimitConfig, error)
	saved   []*models.RatelimitConfig
}

func (m *mockRatelimitSource) Get(ctx context.Context, key string) (*models.RatelimitConfig, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return nil, nil
}

func (m *mockRatelimitSource) Set(ctx context.Context, c *models.RatelimitConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, c)
	return nil
}

var _ RatelimitConfigSource = (*mockRatelimitSource)(nil)

func TestRateLimitReloader_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		source       *mockRatelimitSource
		expectedRate string
		expectSeeded bool
	}{
		{
			name: "configured rate",
			source: &mockRatelimitSource{getFunc: func(ctx context.Context, key string) (*models.RatelimitConfig, error) {
				return &models.RatelimitConfig{ConfigKey: key, Rate: "100-M"}, nil
			}},
			expectedRate: "100-M",
		},
		{
			name:         "missing config seeds default",
			source:       &mockRatelimitSource{},
			expectedRate: "2-S",
			expectSeeded: true,
		},
		{
			name: "store error uses default",
			source: &mockRatelimitSource{getFunc: func(ctx context.Context, key string) (*models.RatelimitConfig, error) {
				return nil, errors.New("connection refused")
			}},
			expectedRate: "2-S",
		},
		{
			name: "unparseable rate uses default",
			source: &mockRatelimitSource{getFunc: func(ctx context.Context, key string) (*models.RatelimitConfig, error) {
				return &models.RatelimitConfig{ConfigKey: key, Rate: "lots"}, nil
			}},
			expectedRate: "2-S",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := NewRateLimitReloader(nil, tt.source, "default", "2-S", zap.NewNop(), 0)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			r.Load(context.Background())

			if r.Rate() != tt.expectedRate {
				t.Errorf("Expected rate %s, got %s", tt.expectedRate, r.Rate())
			}
			if tt.expectSeeded && (len(tt.source.saved) != 1 || tt.source.saved[0].Rate != "2-S") {
				t.Errorf("Expected default rate to be seeded, got %v", tt.source.saved)
			}
		})
	}
}

func TestRateLimitReloader_Limits(t *testing.T) {
	t.Parallel()

	source := &mockRatelimitSource{getFunc: func(ctx context.Context, key string) (*models.RatelimitConfig, error) {
		return &models.RatelimitConfig{ConfigKey: key, Rate: "2-M"}, nil
	}}
	r, err := NewRateLimitReloader(nil, source, "slots", "", zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	r.Load(context.Background())

	handler := r.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/v1/slots", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("Expected first two requests to pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("Expected third request to be limited, got %d", statuses[2])
	}
}

func TestRateLimitReloader_PassesThroughBeforeLoad(t *testing.T) {
	t.Parallel()

	r, err := NewRateLimitReloader(nil, &mockRatelimitSource{}, "default", "1-M", zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	handler := r.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
	}
}
