package preferences

import (
	"context"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/database"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/validation"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// SlotInvalidator drops cached slot searches for a user
type SlotInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

// Accessor reads and writes scheduling preferences through a read-mostly LRU.
// Writes are last-write-wins.
type Accessor struct {
	repo   database.PreferenceRepositoryInterface
	cache  *expirable.LRU[uuid.UUID, *models.Preference]
	slots  SlotInvalidator
	logger *zap.Logger
	now    func() time.Time
}

// NewAccessor creates a new preference accessor. slots may be nil.
func NewAccessor(repo database.PreferenceRepositoryInterface, slots SlotInvalidator, size int, ttl time.Duration, logger *zap.Logger) *Accessor {
	if size <= 0 {
		size = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accessor{
		repo:   repo,
		cache:  expirable.NewLRU[uuid.UUID, *models.Preference](size, nil, ttl),
		slots:  slots,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the stored preferences, or a NotFound error when the user never saved any
func (a *Accessor) Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	if p, ok := a.cache.Get(userID); ok {
		return clone(p), nil
	}

	p, err := a.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	a.cache.Add(userID, p)
	return clone(p), nil
}

// Resolve returns the stored preferences, falling back to defaults for users who never saved any
func (a *Accessor) Resolve(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	p, err := a.Get(ctx, userID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return models.DefaultPreference(userID), nil
	}
	return p, err
}

// Set validates and stores preferences, then invalidates cached slot searches
func (a *Accessor) Set(ctx context.Context, p *models.Preference) (*models.Preference, error) {
	if err := validation.ValidatePreference(p); err != nil {
		return nil, apperrors.InvalidInput("setPreferences", "%v", err)
	}

	stored := clone(p)
	stored.UpdatedAt = a.now().UTC()
	if err := a.repo.Upsert(ctx, stored); err != nil {
		return nil, err
	}
	a.cache.Add(stored.UserID, stored)

	if a.slots != nil {
		if err := a.slots.InvalidateUser(ctx, stored.UserID); err != nil {
			// Stale slots expire with the cache TTL
			a.logger.Warn("slot_cache_invalidation_failed",
				zap.String("user_id", stored.UserID.String()),
				zap.Error(err),
			)
		}
	}

	return clone(stored), nil
}

// Forget drops a user's cached preferences
func (a *Accessor) Forget(userID uuid.UUID) {
	a.cache.Remove(userID)
}

func clone(p *models.Preference) *models.Preference {
	c := *p
	c.PreferredDurations = append([]int(nil), p.PreferredDurations...)
	c.WorkingDays = append([]int(nil), p.WorkingDays...)
	c.MeetingTypePreferences = make(map[string]models.MeetingTypePreference, len(p.MeetingTypePreferences))
	for k, v := range p.MeetingTypePreferences {
		c.MeetingTypePreferences[k] = v
	}
	return &c
}
