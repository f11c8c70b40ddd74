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

// RiskPredictionRepository stores no-show predictions. The newest row per meeting wins.
type RiskPredictionRepository struct {
	db *DB
}

// NewRiskPredictionRepository creates a new risk prediction repository
func NewRiskPredictionRepository(db *DB) *RiskPredictionRepository {
	return &RiskPredictionRepository{db: db}
}

// Create stores a prediction
func (r *RiskPredictionRepository) Create(ctx context.Context, p *models.RiskPrediction) error {
	factorsJSON, err := json.Marshal(p.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to marshal risk factors: %w", err)
	}
	actionsJSON, err := json.Marshal(p.RecommendedActions)
	if err != nil {
		return fmt.Errorf("failed to marshal recommended actions: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO risk_predictions (id, meeting_id, probability, risk_factors, recommended_actions, confidence, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.MeetingID, p.Probability, factorsJSON, actionsJSON, p.Confidence, p.PredictedAt)
	if err != nil {
		return apperrors.Upstream("RiskPredictionRepository.Create", fmt.Errorf("failed to create risk prediction: %w", err))
	}
	return nil
}

// GetLatestByMeetingID returns the newest prediction for a meeting
func (r *RiskPredictionRepository) GetLatestByMeetingID(ctx context.Context, meetingID uuid.UUID) (*models.RiskPrediction, error) {
	p := &models.RiskPrediction{}
	var factorsJSON, actionsJSON []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, meeting_id, probability, risk_factors, recommended_actions, confidence, predicted_at
		FROM risk_predictions
		WHERE meeting_id = $1
		ORDER BY predicted_at DESC
		LIMIT 1
	`, meetingID).Scan(&p.ID, &p.MeetingID, &p.Probability, &factorsJSON, &actionsJSON, &p.Confidence, &p.PredictedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("RiskPredictionRepository.GetLatestByMeetingID", "risk prediction")
	}
	if err != nil {
		return nil, apperrors.Upstream("RiskPredictionRepository.GetLatestByMeetingID", fmt.Errorf("failed to get risk prediction: %w", err))
	}
	if err := json.Unmarshal(factorsJSON, &p.RiskFactors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal risk factors: %w", err)
	}
	if err := json.Unmarshal(actionsJSON, &p.RecommendedActions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommended actions: %w", err)
	}
	return p, nil
}
