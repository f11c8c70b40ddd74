package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// DefaultRatelimitRate applies when no rate is configured
const DefaultRatelimitRate = "10-S"

// RatelimitConfigSource reads and seeds rate limit configuration
type RatelimitConfigSource interface {
	Get(ctx context.Context, key string) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// RateLimitReloader wraps ulule/limiter and periodically reloads the rate for one config key.
type RateLimitReloader struct {
	store       limiter.Store
	repo        RatelimitConfigSource
	key         string
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	mu          sync.RWMutex
	current     *stdlibmw.Middleware
	rate        string
}

// NewRateLimitReloader creates a rate limit middleware that loads config from the DB and hot-reloads it.
// Counters live in Redis when a client is given and in process memory otherwise.
func NewRateLimitReloader(redisClient *redis.Client, repo RatelimitConfigSource, key, defaultRate string, log *zap.Logger, reloadInterval time.Duration) (*RateLimitReloader, error) {
	if defaultRate == "" {
		defaultRate = DefaultRatelimitRate
	}

	var store limiter.Store
	if redisClient != nil {
		s, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "scheduler_ratelimit_" + key})
		if err != nil {
			return nil, err
		}
		store = s
	} else {
		store = memorystore.NewStoreWithOptions(limiter.StoreOptions{Prefix: "scheduler_ratelimit_" + key, CleanUpInterval: time.Minute})
	}

	return &RateLimitReloader{
		store:       store,
		repo:        repo,
		key:         key,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}, nil
}

// Middleware returns a middleware that limits with whichever rate is currently loaded.
// Requests pass through until the first Load.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			mw := r.current
			r.mu.RUnlock()
			if mw == nil {
				next.ServeHTTP(w, req)
				return
			}
			mw.Handler(next).ServeHTTP(w, req)
		})
	}
}

// Start runs the reload loop until ctx is cancelled
func (r *RateLimitReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Load(ctx)
		}
	}
}

// Rate returns the rate currently enforced
func (r *RateLimitReloader) Rate() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rate
}

// Load reads the configured rate, seeding the default when none exists
func (r *RateLimitReloader) Load(ctx context.Context) {
	rateStr := r.defaultRate
	cfg, err := r.repo.Get(ctx, r.key)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("key", r.key),
			zap.String("default_rate", r.defaultRate),
		)
	case cfg != nil && cfg.Rate != "":
		rateStr = cfg.Rate
	default:
		// Save default config if none exists
		if err := r.repo.Set(ctx, &models.RatelimitConfig{ConfigKey: r.key, Rate: r.defaultRate}); err != nil {
			r.log.Error("failed_to_save_default_ratelimit_config",
				zap.Error(err),
				zap.String("key", r.key),
			)
		}
	}

	if rateStr == r.Rate() {
		return
	}

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", r.defaultRate),
		)
		rateStr = r.defaultRate
		if rate, err = limiter.NewRateFromFormatted(rateStr); err != nil {
			r.log.Error("failed_to_parse_default_rate_limit", zap.Error(err))
			return
		}
	}

	// Reuse the store, only the limiter instance carries the rate
	instance := limiter.New(r.store, rate)
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(limitKey))

	r.mu.Lock()
	r.current = mw
	r.rate = rateStr
	r.mu.Unlock()

	r.log.Info("ratelimit_loaded", zap.String("key", r.key), zap.String("rate", rateStr))
}

// limitKey counts authenticated requests per user and the rest per client IP
func limitKey(req *http.Request) string {
	if user := request.UserFromContext(req); user != nil {
		return "user:" + user.ID.String()
	}
	return "ip:" + request.ClientIP(req)
}
