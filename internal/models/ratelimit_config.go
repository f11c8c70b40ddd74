package models

import "time"

// Rate limit configuration keys. Each key is limited independently.
const (
	RatelimitKeyAPI   = "default"
	RatelimitKeyLogin = "login"
)

// RatelimitConfig is a named request rate in limiter notation, e.g. "10-S"
// or "100-M". The API key limits per user, the login key per client address.
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
