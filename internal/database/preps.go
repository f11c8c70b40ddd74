package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
)

// MeetingPrepRepository stores one preparation brief per meeting
type MeetingPrepRepository struct {
	db *DB
}

// NewMeetingPrepRepository creates a new meeting prep repository
func NewMeetingPrepRepository(db *DB) *MeetingPrepRepository {
	return &MeetingPrepRepository{db: db}
}

// Replace stores the brief, discarding any previous version for the meeting
func (r *MeetingPrepRepository) Replace(ctx context.Context, p *models.MeetingPrep) error {
	briefJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal meeting prep: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meeting_preps (meeting_id, brief, degraded, prepared_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (meeting_id) DO UPDATE SET
			brief = EXCLUDED.brief,
			degraded = EXCLUDED.degraded,
			prepared_at = EXCLUDED.prepared_at
	`, p.MeetingID, briefJSON, p.Degraded, p.PreparedAt)
	if err != nil {
		return apperrors.Upstream("MeetingPrepRepository.Replace", fmt.Errorf("failed to replace meeting prep: %w", err))
	}
	return nil
}

// GetByMeetingID retrieves the current brief for a meeting
func (r *MeetingPrepRepository) GetByMeetingID(ctx context.Context, meetingID uuid.UUID) (*models.MeetingPrep, error) {
	var briefJSON []byte
	err := r.db.QueryRowContext(ctx, `SELECT brief FROM meeting_preps WHERE meeting_id = $1`, meetingID).Scan(&briefJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("MeetingPrepRepository.GetByMeetingID", "meeting prep")
	}
	if err != nil {
		return nil, apperrors.Upstream("MeetingPrepRepository.GetByMeetingID", fmt.Errorf("failed to get meeting prep: %w", err))
	}

	p := &models.MeetingPrep{}
	if err := json.Unmarshal(briefJSON, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meeting prep: %w", err)
	}
	return p, nil
}
