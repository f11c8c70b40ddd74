package oidc

import (
	"context"

	"golang.org/x/oauth2"
)

// DefaultScopes are requested on every login
var DefaultScopes = []string{"openid", "email", "profile"}

// ClientConfig describes the identity provider endpoints and the registered client
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
}

// Client wraps OAuth2 client functionality
type Client struct {
	config *oauth2.Config
}

// NewClient creates a new OAuth2 client. An empty ClientSecret makes it a public client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{config: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}}
}

// Configured reports whether the login flow can be started
func (c *Client) Configured() bool {
	return c != nil && c.config.ClientID != "" && c.config.Endpoint.AuthURL != ""
}

// ExchangeCode exchanges an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.config.Exchange(ctx, code)
}

// AuthCodeURL returns the authorization URL
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// LoginConfig contains the login configuration handed to the frontend
type LoginConfig struct {
	AuthorizationURL string `json:"authorization_url"`
	TokenEndpoint    string `json:"token_endpoint"`
	ClientID         string `json:"client_id"`
	RedirectURI      string `json:"redirect_uri"`
	Scope            string `json:"scope"`
	State            string `json:"state"`
}

// LoginConfig builds the login configuration for a state value
func (c *Client) LoginConfig(state string) LoginConfig {
	return LoginConfig{
		AuthorizationURL: c.AuthCodeURL(state),
		TokenEndpoint:    c.config.Endpoint.TokenURL,
		ClientID:         c.config.ClientID,
		RedirectURI:      c.config.RedirectURL,
		Scope:            "openid email profile",
		State:            state,
	}
}
