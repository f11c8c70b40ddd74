package assistant

import (
	"context"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/cache"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/services/scheduling"
	"github.com/benvon/smart-scheduler/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxDurationMinutes is the longest meeting a slot search accepts
const maxDurationMinutes = 24 * 60

// SlotQuery describes a findOptimalSlots request
type SlotQuery struct {
	// Date is a calendar date; only its year, month and day are used
	Date            time.Time
	DurationMinutes int
	MeetingType     string
	TopK            int
	Distinct        bool
}

// GetPreferences returns the user's saved preferences, or NotFound when none were saved
func (a *Assistant) GetPreferences(ctx context.Context, userID uuid.UUID) (p *models.Preference, err error) {
	defer a.observe("getPreferences", time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, "getPreferences", attribute.String("user_id", userID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	return retry(ctx, a, func() (*models.Preference, error) {
		return a.prefs.Get(ctx, userID)
	})
}

// SetPreferences validates and stores the user's preferences
func (a *Assistant) SetPreferences(ctx context.Context, userID uuid.UUID, p *models.Preference) (saved *models.Preference, err error) {
	defer a.observe("setPreferences", time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, "setPreferences", attribute.String("user_id", userID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if p == nil {
		return nil, apperrors.InvalidInput("setPreferences", "preferences are required")
	}
	p.UserID = userID
	return a.prefs.Set(ctx, p)
}

// FindOptimalSlots returns the best slots for a meeting on the given date.
// An empty slot list is a valid result and carries a reason.
func (a *Assistant) FindOptimalSlots(ctx context.Context, userID uuid.UUID, q SlotQuery) (result *models.SlotResult, err error) {
	const op = "findOptimalSlots"
	defer a.observe(op, time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, op,
		attribute.String("user_id", userID.String()),
		attribute.Int("duration_minutes", q.DurationMinutes),
		attribute.String("meeting_type", q.MeetingType),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if q.DurationMinutes <= 0 || q.DurationMinutes > maxDurationMinutes {
		return nil, apperrors.InvalidInput(op, "duration must be between 1 and %d minutes", maxDurationMinutes)
	}
	if q.TopK < 0 {
		return nil, apperrors.InvalidInput(op, "top_k must not be negative")
	}
	if q.Date.IsZero() {
		return nil, apperrors.InvalidInput(op, "date is required")
	}

	pref, err := retry(ctx, a, func() (*models.Preference, error) {
		return a.prefs.Resolve(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	loc := pref.Location()
	now := a.now()
	day := scheduling.StartOfDay(q.Date, loc)
	today := scheduling.StartOfDay(now.In(loc), loc)
	if day.Before(today) {
		return nil, apperrors.InvalidInput(op, "date %s is in the past", day.Format(time.DateOnly))
	}

	existing, err := retry(ctx, a, func() ([]models.Meeting, error) {
		return a.meetings.ListByOwnerBetween(ctx, userID, day, day.AddDate(0, 0, 1))
	})
	if err != nil {
		return nil, err
	}

	// Results for today depend on the current time. The calendar is owned
	// elsewhere, so the key carries its fingerprint.
	cacheable := a.slotCache != nil && day.After(today)
	key := cache.SlotKey{
		UserID:          userID,
		Date:            day.Format(time.DateOnly),
		DurationMinutes: q.DurationMinutes,
		MeetingType:     q.MeetingType,
		TopK:            q.TopK,
		Distinct:        q.Distinct,
		Calendar:        cache.CalendarFingerprint(existing),
	}
	if cacheable {
		cached, hit, cacheErr := a.slotCache.Get(ctx, key)
		if cacheErr != nil {
			a.logger.Warn("slot_cache_read_failed", zap.String("user_id", userID.String()), zap.Error(cacheErr))
		}
		a.metrics.SlotCacheLookup(hit)
		if hit {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
	}

	found := a.finder.Find(scheduling.FindRequest{
		Preference:      pref,
		Date:            day,
		DurationMinutes: q.DurationMinutes,
		MeetingType:     q.MeetingType,
		TopK:            q.TopK,
		Distinct:        q.Distinct,
		Existing:        existing,
		Now:             now,
	})
	a.metrics.SlotSearch(string(found.Reason))
	span.SetAttributes(attribute.Int("slots", len(found.Slots)))

	if cacheable {
		if cacheErr := a.slotCache.Set(ctx, key, &found); cacheErr != nil {
			a.logger.Warn("slot_cache_write_failed", zap.String("user_id", userID.String()), zap.Error(cacheErr))
		}
	}

	return &found, nil
}
