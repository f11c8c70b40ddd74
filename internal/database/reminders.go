package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ReminderRepository handles reminder database operations
type ReminderRepository struct {
	db *DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `id, meeting_id, user_id, type, content, scheduled_for, status, sent_at, created_at`

// ReplaceUnsent deletes the meeting's scheduled reminders and inserts the new set atomically.
// Sent and cancelled reminders are kept as history.
func (r *ReminderRepository) ReplaceUnsent(ctx context.Context, meetingID uuid.UUID, reminders []models.Reminder) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Upstream("ReminderRepository.ReplaceUnsent", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM reminders WHERE meeting_id = $1 AND status = $2`,
		meetingID, models.ReminderStatusScheduled,
	); err != nil {
		return apperrors.Upstream("ReminderRepository.ReplaceUnsent", fmt.Errorf("failed to delete unsent reminders: %w", err))
	}

	for i := range reminders {
		rem := &reminders[i]
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO reminders (`+reminderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, rem.ID, rem.MeetingID, rem.UserID, rem.Type, rem.Content, rem.ScheduledFor, rem.Status, rem.SentAt, rem.CreatedAt); err != nil {
			return apperrors.Upstream("ReminderRepository.ReplaceUnsent", fmt.Errorf("failed to insert reminder: %w", err))
		}
	}

	if err = tx.Commit(); err != nil {
		return apperrors.Upstream("ReminderRepository.ReplaceUnsent", fmt.Errorf("failed to commit reminders: %w", err))
	}
	return nil
}

// CancelUnsentByMeeting moves every scheduled reminder of the meeting to cancelled
func (r *ReminderRepository) CancelUnsentByMeeting(ctx context.Context, meetingID uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET status = $3 WHERE meeting_id = $1 AND status = $2`,
		meetingID, models.ReminderStatusScheduled, models.ReminderStatusCancelled,
	)
	if err != nil {
		return 0, apperrors.Upstream("ReminderRepository.CancelUnsentByMeeting", fmt.Errorf("failed to cancel reminders: %w", err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// ListByUser returns the user's reminders ordered by scheduled time.
// Cancelled reminders are never returned; sent ones only with includeSent.
func (r *ReminderRepository) ListByUser(ctx context.Context, userID uuid.UUID, includeSent bool) ([]models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 AND status = ANY($2) ORDER BY scheduled_for ASC, id ASC`
	statuses := []string{string(models.ReminderStatusScheduled)}
	if includeSent {
		statuses = append(statuses, string(models.ReminderStatusSent))
	}

	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(statuses))
	if err != nil {
		return nil, apperrors.Upstream("ReminderRepository.ListByUser", fmt.Errorf("failed to list reminders: %w", err))
	}
	defer func() {
		_ = rows.Close()
	}()

	reminders := []models.Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, *rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}
	return reminders, nil
}

// GetByID retrieves a reminder by ID
func (r *ReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	rem, err := scanReminder(r.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("ReminderRepository.GetByID", "reminder")
	}
	if err != nil {
		return nil, apperrors.Upstream("ReminderRepository.GetByID", fmt.Errorf("failed to get reminder: %w", err))
	}
	return rem, nil
}

// UpdateStatus persists a transition out of scheduled. The row must still be scheduled.
func (r *ReminderRepository) UpdateStatus(ctx context.Context, rem *models.Reminder) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET status = $2, sent_at = $3 WHERE id = $1 AND status = $4`,
		rem.ID, rem.Status, rem.SentAt, models.ReminderStatusScheduled,
	)
	if err != nil {
		return apperrors.Upstream("ReminderRepository.UpdateStatus", fmt.Errorf("failed to update reminder: %w", err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("reminder %s: %w", rem.ID, models.ErrInvalidReminderTransition)
	}
	return nil
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	rem := &models.Reminder{}
	var sentAt sql.NullTime
	err := row.Scan(
		&rem.ID,
		&rem.MeetingID,
		&rem.UserID,
		&rem.Type,
		&rem.Content,
		&rem.ScheduledFor,
		&rem.Status,
		&sentAt,
		&rem.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		rem.SentAt = &sentAt.Time
		rem.Sent = true
	}
	return rem, nil
}
