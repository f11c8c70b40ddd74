package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
)

// UserRepository stores accounts provisioned from identity-provider tokens
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, provider_id, name, email_verified, created_at, updated_at`

// Create provisions user. When another request already provisioned the same
// provider subject, user is overwritten with the stored row instead.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (provider_id) DO UPDATE SET provider_id = EXCLUDED.provider_id
		RETURNING `+userColumns,
		user.ID, user.Email, user.ProviderID, user.Name, user.EmailVerified, now,
	)
	if err := scanUser(row, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "UserRepository.GetByID", "id", id)
}

// GetByProviderID retrieves a user by the identity provider's subject
func (r *UserRepository) GetByProviderID(ctx context.Context, providerID string) (*models.User, error) {
	return r.getOne(ctx, "UserRepository.GetByProviderID", "provider_id", providerID)
}

// column is a fixed identifier, never user input
func (r *UserRepository) getOne(ctx context.Context, op, column string, arg any) (*models.User, error) {
	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, arg), user)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, apperrors.NotFound(op, "user")
	case err != nil:
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update writes the profile fields synced from the latest token
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET email = $2, name = $3, email_verified = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at`,
		user.ID, user.Email, user.Name, user.EmailVerified, time.Now(),
	).Scan(&user.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperrors.NotFound("UserRepository.Update", "user")
	case err != nil:
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.ProviderID, &u.Name, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
}
