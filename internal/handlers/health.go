package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// checkTimeout bounds each dependency check in extended mode
const checkTimeout = 5 * time.Second

// Checker reports whether one dependency is reachable
type Checker func(ctx context.Context) error

// HealthChecker handles health check requests
type HealthChecker struct {
	checks map[string]Checker
}

// NewHealthChecker creates a new health checker. Nil checkers are skipped.
func NewHealthChecker(checks map[string]Checker) *HealthChecker {
	hc := &HealthChecker{checks: make(map[string]Checker, len(checks))}
	for name, c := range checks {
		if c != nil {
			hc.checks[name] = c
		}
	}
	return hc
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		writeHealth(w, http.StatusOK, response)
		return
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	response.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := h.run(r.Context(), h.checks[name]); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = "unhealthy: " + sanitizeErrorMessage(err.Error())
			continue
		}
		response.Checks[name] = "healthy"
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeHealth(w, statusCode, response)
}

func writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthChecker) run(ctx context.Context, c Checker) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return c(ctx)
}
