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

// MeetingRepository reads the calendar service's meetings. It never writes.
type MeetingRepository struct {
	db *DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

const meetingColumns = `id, owner_id, title, start_at, end_at, attendee_id, meeting_type, status, confirmation, reschedule_count`

// GetByID retrieves a meeting by ID
func (r *MeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	m, err := scanMeeting(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("MeetingRepository.GetByID", "meeting")
	}
	if err != nil {
		return nil, apperrors.Upstream("MeetingRepository.GetByID", err)
	}
	return m, nil
}

// ListByOwnerBetween returns the owner's meetings overlapping [from, to), ordered by start
func (r *MeetingRepository) ListByOwnerBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]models.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings
		WHERE owner_id = $1 AND start_at < $3 AND end_at > $2
		ORDER BY start_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, apperrors.Upstream("MeetingRepository.ListByOwnerBetween", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	meetings := []models.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, apperrors.Upstream("MeetingRepository.ListByOwnerBetween", err)
		}
		meetings = append(meetings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream("MeetingRepository.ListByOwnerBetween", err)
	}
	return meetings, nil
}

// ListOwnersWithMeetingsBetween returns owners that have scheduled meetings starting in [from, to)
func (r *MeetingRepository) ListOwnersWithMeetingsBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT owner_id
		FROM meetings
		WHERE status = $1 AND start_at >= $2 AND start_at < $3
	`

	rows, err := r.db.QueryContext(ctx, query, models.MeetingStatusScheduled, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting owners: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var owners []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan meeting owner: %w", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meeting owners: %w", err)
	}
	return owners, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*models.Meeting, error) {
	m := &models.Meeting{}
	err := row.Scan(
		&m.ID,
		&m.OwnerID,
		&m.Title,
		&m.Start,
		&m.End,
		&m.AttendeeID,
		&m.MeetingType,
		&m.Status,
		&m.Confirmation,
		&m.RescheduleCount,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
