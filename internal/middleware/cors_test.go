package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		fallback string
		expected []string
	}{
		{"configured list", "https://a.example.com, https://b.example.com", "http://localhost:3000", []string{"https://a.example.com", "https://b.example.com"}},
		{"duplicates and blanks", "https://a.example.com,,https://a.example.com ", "", []string{"https://a.example.com"}},
		{"fallback", "", "https://app.example.com", []string{"https://app.example.com"}},
		{"default", "", "", []string{DefaultAllowedOrigin}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseOrigins(tt.raw, tt.fallback); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := CORS([]string{"https://app.example.com"}, zap.NewNop())(handler)

	tests := []struct {
		name         string
		method       string
		origin       string
		expectOrigin string
	}{
		{"allowed origin", http.MethodGet, "https://app.example.com", "https://app.example.com"},
		{"disallowed origin", http.MethodGet, "https://evil.example.com", ""},
		{"allowed preflight", http.MethodOptions, "https://app.example.com", "https://app.example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/api/v1/slots", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.expectOrigin {
				t.Errorf("Expected Access-Control-Allow-Origin %q, got %q", tt.expectOrigin, got)
			}
		})
	}
}
