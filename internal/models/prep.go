package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingPrep is the preparation brief for an upcoming meeting.
// Regenerating a prep replaces the previous one.
type MeetingPrep struct {
	MeetingID          uuid.UUID     `json:"meeting_id"`
	ContactSummary     string        `json:"contact_summary"`
	TalkingPoints      []string      `json:"talking_points"`
	RecentInteractions []Interaction `json:"recent_interactions"`
	OpenOpportunities  []Opportunity `json:"open_opportunities"`
	SuggestedAgenda    []string      `json:"suggested_agenda"`
	RiskAlerts         []string      `json:"risk_alerts"`
	Degraded           bool          `json:"degraded"`
	PreparedAt         time.Time     `json:"prepared_at"`
}

// TopTalkingPoint returns the first talking point, or an empty string
func (p *MeetingPrep) TopTalkingPoint() string {
	if p == nil || len(p.TalkingPoints) == 0 {
		return ""
	}
	return p.TalkingPoints[0]
}
