// Package app wires the stores, caches and queue shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/smart-scheduler/internal/cache"
	"github.com/benvon/smart-scheduler/internal/config"
	"github.com/benvon/smart-scheduler/internal/database"
	"github.com/benvon/smart-scheduler/internal/metrics"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/benvon/smart-scheduler/internal/services/assistant"
	"github.com/benvon/smart-scheduler/internal/services/preferences"
	"github.com/benvon/smart-scheduler/internal/weights"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// rabbitMQDialRetries covers broker startup delays
const rabbitMQDialRetries = 10

// App holds the long-lived connections and the assistant built on them
type App struct {
	Config      *config.Config
	DB          *database.DB
	Redis       *cache.Redis
	Queue       *queue.RabbitMQQueue
	Metrics     *metrics.Metrics
	Weights     *weights.Weights
	Preferences *preferences.Accessor
	Assistant   *assistant.Assistant
	Logger      *zap.Logger

	Meetings         *database.MeetingRepository
	Users            *database.UserRepository
	RatelimitConfigs *database.RatelimitConfigRepository
}

// New connects to Postgres, Redis and RabbitMQ and builds the assistant.
// Redis is optional: without it slot results are not cached.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	w, err := weights.Load(cfg.WeightsFile)
	if err != nil {
		return nil, err
	}

	m, err := metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected_to_database")

	a := &App{Config: cfg, DB: db, Metrics: m, Weights: w, Logger: logger}

	if err := db.Migrate(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	if cfg.RedisURL != "" {
		r, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis_unavailable_slot_cache_disabled", zap.Error(err))
		} else {
			a.Redis = r
			logger.Info("connected_to_redis")
		}
	}

	q, err := queue.Dial(ctx, cfg.RabbitMQURL, rabbitMQDialRetries, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to connect to RabbitMQ after %d retries: %w", rabbitMQDialRetries, err)
	}
	a.Queue = q
	logger.Info("connected_to_rabbitmq")

	a.Meetings = database.NewMeetingRepository(db)
	a.Users = database.NewUserRepository(db)
	a.RatelimitConfigs = database.NewRatelimitConfigRepository(db)

	deps := assistant.Deps{
		Meetings:    a.Meetings,
		CRM:         database.NewCRMRepository(db),
		Predictions: database.NewRiskPredictionRepository(db),
		Preps:       database.NewMeetingPrepRepository(db),
		Reminders:   database.NewReminderRepository(db),
		Queue:       q,
		Metrics:     m,
		Weights:     w,
		Logger:      logger,
		Workers:     cfg.WorkerPoolSize,
	}

	var invalidator preferences.SlotInvalidator
	if a.Redis != nil {
		slots := cache.NewSlotCache(a.Redis.Client(), cfg.SlotCacheTTL)
		deps.SlotCache = slots
		invalidator = slots
	}

	a.Preferences = preferences.NewAccessor(
		database.NewPreferenceRepository(db),
		invalidator,
		cfg.PreferenceCacheMax,
		cfg.PreferenceCacheTTL,
		logger,
	)
	deps.Preferences = a.Preferences
	a.Assistant = assistant.New(deps)

	return a, nil
}

// Close releases every connection that was opened
func (a *App) Close() error {
	var errs []error
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close RabbitMQ connection: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis connection: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
