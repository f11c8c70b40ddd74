package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PreferenceRepository handles scheduling preference database operations
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUserID retrieves a user's preferences
func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	query := `
		SELECT user_id, work_start_hour, work_end_hour, max_meetings_per_day, buffer_minutes,
			avoid_back_to_back, focus_time_blocks, preferred_durations, working_days, timezone,
			meeting_type_preferences, updated_at
		FROM scheduling_preferences
		WHERE user_id = $1
	`

	p := &models.Preference{}
	var durations, days pq.Int64Array
	var typePrefsJSON []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.WorkStartHour,
		&p.WorkEndHour,
		&p.MaxMeetingsPerDay,
		&p.BufferMinutes,
		&p.AvoidBackToBack,
		&p.FocusTimeBlocks,
		&durations,
		&days,
		&p.Timezone,
		&typePrefsJSON,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("PreferenceRepository.GetByUserID", "preferences")
	}
	if err != nil {
		return nil, apperrors.Upstream("PreferenceRepository.GetByUserID", fmt.Errorf("failed to get preferences: %w", err))
	}

	p.PreferredDurations = toInts(durations)
	p.WorkingDays = toInts(days)
	p.MeetingTypePreferences = map[string]models.MeetingTypePreference{}
	if len(typePrefsJSON) > 0 {
		if err := json.Unmarshal(typePrefsJSON, &p.MeetingTypePreferences); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meeting type preferences: %w", err)
		}
	}

	return p, nil
}

// Upsert writes a user's preferences. Concurrent writers are last-write-wins.
func (r *PreferenceRepository) Upsert(ctx context.Context, p *models.Preference) error {
	typePrefsJSON, err := json.Marshal(p.MeetingTypePreferences)
	if err != nil {
		return fmt.Errorf("failed to marshal meeting type preferences: %w", err)
	}

	query := `
		INSERT INTO scheduling_preferences (user_id, work_start_hour, work_end_hour, max_meetings_per_day,
			buffer_minutes, avoid_back_to_back, focus_time_blocks, preferred_durations, working_days,
			timezone, meeting_type_preferences, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			work_start_hour = EXCLUDED.work_start_hour,
			work_end_hour = EXCLUDED.work_end_hour,
			max_meetings_per_day = EXCLUDED.max_meetings_per_day,
			buffer_minutes = EXCLUDED.buffer_minutes,
			avoid_back_to_back = EXCLUDED.avoid_back_to_back,
			focus_time_blocks = EXCLUDED.focus_time_blocks,
			preferred_durations = EXCLUDED.preferred_durations,
			working_days = EXCLUDED.working_days,
			timezone = EXCLUDED.timezone,
			meeting_type_preferences = EXCLUDED.meeting_type_preferences,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		p.UserID,
		p.WorkStartHour,
		p.WorkEndHour,
		p.MaxMeetingsPerDay,
		p.BufferMinutes,
		p.AvoidBackToBack,
		p.FocusTimeBlocks,
		pq.Array(p.PreferredDurations),
		pq.Array(p.WorkingDays),
		p.Timezone,
		typePrefsJSON,
		now,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return apperrors.Upstream("PreferenceRepository.Upsert", fmt.Errorf("failed to upsert preferences: %w", err))
	}

	return nil
}

func toInts(values pq.Int64Array) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}
