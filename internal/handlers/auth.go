package handlers

import (
	"net/http"

	"github.com/benvon/smart-scheduler/internal/request"
	"github.com/benvon/smart-scheduler/internal/services/oidc"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// LoginConfigSource builds the login configuration handed to the frontend
type LoginConfigSource interface {
	Configured() bool
	LoginConfig(state string) oidc.LoginConfig
}

var _ LoginConfigSource = (*oidc.Client)(nil)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	client LoginConfigSource
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(client LoginConfigSource) *AuthHandler {
	return &AuthHandler{client: client}
}

// RegisterRoutes registers auth routes on the given router
// The router should already have the /api/v1/auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/oidc/login", h.GetOIDCLogin).Methods("GET")
}

// RegisterProtectedRoutes registers the auth routes that require a user
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// GetOIDCLogin returns OIDC configuration for frontend
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	if h.client == nil || !h.client.Configured() {
		respondJSONError(w, http.StatusServiceUnavailable, "UpstreamUnavailable", "Login is not configured")
		return
	}
	respondJSON(w, http.StatusOK, h.client.LoginConfig(uuid.NewString()))
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
