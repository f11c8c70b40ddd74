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

// CRMRepository reads CRM contact snapshots and interaction history.
// Every failure other than a missing row is reported as upstream unavailability.
type CRMRepository struct {
	db *DB
}

// NewCRMRepository creates a new CRM repository
func NewCRMRepository(db *DB) *CRMRepository {
	return &CRMRepository{db: db}
}

// GetContact retrieves a contact with its open opportunities
func (r *CRMRepository) GetContact(ctx context.Context, contactID uuid.UUID) (*models.ContactSnapshot, error) {
	const op = "CRMRepository.GetContact"

	c := &models.ContactSnapshot{}
	var growth sql.NullFloat64
	var renewal sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, tenure_days, plan_tier, primary_role, usage_growth_pct, renewal_date, open_feature_requests
		FROM crm_contacts
		WHERE id = $1
	`, contactID).Scan(
		&c.ContactID,
		&c.Name,
		&c.TenureDays,
		&c.PlanTier,
		&c.PrimaryRole,
		&growth,
		&renewal,
		&c.OpenFeatureRequests,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound(op, "contact")
	}
	if err != nil {
		return nil, apperrors.Upstream(op, err)
	}
	if growth.Valid {
		c.UsageGrowthPct = &growth.Float64
	}
	if renewal.Valid {
		c.RenewalDate = &renewal.Time
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, value, stage
		FROM crm_opportunities
		WHERE contact_id = $1 AND is_open
		ORDER BY value DESC, name ASC
	`, contactID)
	if err != nil {
		return nil, apperrors.Upstream(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	c.OpenOpportunities = []models.Opportunity{}
	for rows.Next() {
		var o models.Opportunity
		if err := rows.Scan(&o.Name, &o.Value, &o.Stage); err != nil {
			return nil, apperrors.Upstream(op, fmt.Errorf("failed to scan opportunity: %w", err))
		}
		c.OpenOpportunities = append(c.OpenOpportunities, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream(op, err)
	}

	return c, nil
}

// GetHistory retrieves the contact's recent interactions and attendance aggregates.
// A contact with no history yields (nil, nil).
func (r *CRMRepository) GetHistory(ctx context.Context, contactID uuid.UUID, limit int) (*models.InteractionHistory, error) {
	const op = "CRMRepository.GetHistory"

	h := &models.InteractionHistory{}
	var slotsJSON []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT prior_no_shows, prior_reschedules, last_confirmation_status, total_meetings, no_show_slots
		FROM crm_attendance
		WHERE contact_id = $1
	`, contactID).Scan(
		&h.PriorNoShows,
		&h.PriorReschedules,
		&h.LastConfirmationStatus,
		&h.TotalMeetings,
		&slotsJSON,
	)
	hasAttendance := true
	if errors.Is(err, sql.ErrNoRows) {
		hasAttendance = false
	} else if err != nil {
		return nil, apperrors.Upstream(op, err)
	}
	if len(slotsJSON) > 0 {
		if err := json.Unmarshal(slotsJSON, &h.NoShowSlots); err != nil {
			return nil, apperrors.Upstream(op, fmt.Errorf("failed to unmarshal no-show slots: %w", err))
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT type, occurred_at, summary
		FROM crm_interactions
		WHERE contact_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, contactID, limit)
	if err != nil {
		return nil, apperrors.Upstream(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var i models.Interaction
		if err := rows.Scan(&i.Type, &i.Date, &i.Summary); err != nil {
			return nil, apperrors.Upstream(op, fmt.Errorf("failed to scan interaction: %w", err))
		}
		h.Interactions = append(h.Interactions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream(op, err)
	}

	if !hasAttendance && len(h.Interactions) == 0 {
		return nil, nil
	}
	return h, nil
}
