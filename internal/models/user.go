package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Preferences, meetings and reminders are owned
// by User.ID; ProviderID links the account to the identity provider subject.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	ProviderID    *string   `json:"provider_id,omitempty"`
	Name          *string   `json:"name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// JWTClaims are the verified claims of a bearer token
type JWTClaims struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Issuer    string    `json:"iss"`
	Audience  []string  `json:"aud,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// NewUserFromClaims builds the account provisioned on first sight of a subject
func NewUserFromClaims(c *JWTClaims) *User {
	sub := c.Subject
	u := &User{
		ID:            uuid.New(),
		Email:         c.Email,
		ProviderID:    &sub,
		EmailVerified: c.Email != "",
	}
	if c.Name != "" {
		name := c.Name
		u.Name = &name
	}
	return u
}

// SyncProfile copies the provider's email and name onto u and reports whether anything changed
func (u *User) SyncProfile(c *JWTClaims) bool {
	changed := false
	if c.Email != "" && u.Email != c.Email {
		u.Email = c.Email
		u.EmailVerified = true
		changed = true
	}
	if c.Name != "" && (u.Name == nil || *u.Name != c.Name) {
		name := c.Name
		u.Name = &name
		changed = true
	}
	return changed
}
