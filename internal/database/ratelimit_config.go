package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
)

// DefaultRatelimitConfigKey is the rate applied to every API route without its own entry
const DefaultRatelimitConfigKey = models.RatelimitKeyAPI

// RatelimitConfigRepository handles rate limit configuration in the database.
type RatelimitConfigRepository struct {
	db *DB
}

// NewRatelimitConfigRepository creates a new ratelimit config repository.
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get retrieves the rate limit config for a key. A missing key yields (nil, nil).
func (r *RatelimitConfigRepository) Get(ctx context.Context, key string) (*models.RatelimitConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config WHERE config_key = $1
	`, key)
	c := &models.RatelimitConfig{}
	err := row.Scan(&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config: %w", err)
	}
	return c, nil
}

// List returns every configured rate ordered by key
func (r *RatelimitConfigRepository) List(ctx context.Context) ([]models.RatelimitConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config ORDER BY config_key
	`)
	if err != nil {
		return nil, fmt.Errorf("list ratelimit config: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var configs []models.RatelimitConfig
	for rows.Next() {
		var c models.RatelimitConfig
		if err := rows.Scan(&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ratelimit config: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// Set upserts a rate limit config. Rate format: e.g. "5-S", "100-M".
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	key := strings.TrimSpace(c.ConfigKey)
	if key == "" {
		key = DefaultRatelimitConfigKey
	}
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return fmt.Errorf("rate cannot be empty")
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, key, rate, now, now)
	if err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	return nil
}
