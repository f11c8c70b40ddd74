package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel groups predictions for display
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

const (
	// MediumRiskThreshold is the lowest probability classified as medium risk
	MediumRiskThreshold = 0.3
	// HighRiskThreshold is the lowest probability classified as high risk
	HighRiskThreshold = 0.6
)

// RiskPrediction is a no-show prediction for one meeting.
// A newer prediction for the same meeting supersedes older ones.
type RiskPrediction struct {
	ID                 uuid.UUID `json:"id"`
	MeetingID          uuid.UUID `json:"meeting_id"`
	Probability        float64   `json:"probability"`
	RiskFactors        []string  `json:"risk_factors"`
	RecommendedActions []string  `json:"recommended_actions"`
	Confidence         float64   `json:"confidence"`
	PredictedAt        time.Time `json:"predicted_at"`
}

// Level classifies the probability. It is derived, never stored.
func (p *RiskPrediction) Level() RiskLevel {
	return ClassifyRisk(p.Probability)
}

// ClassifyRisk maps a probability onto a display band
func ClassifyRisk(probability float64) RiskLevel {
	switch {
	case probability >= HighRiskThreshold:
		return RiskLevelHigh
	case probability >= MediumRiskThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// AtLeast reports whether the level is at or above other
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.rank() >= other.rank()
}

func (l RiskLevel) rank() int {
	switch l {
	case RiskLevelHigh:
		return 2
	case RiskLevelMedium:
		return 1
	default:
		return 0
	}
}
