package models

import (
	"time"

	"github.com/google/uuid"
)

// Opportunity is an open sales opportunity attached to a contact
type Opportunity struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Stage string  `json:"stage"`
}

// Interaction is a single entry of a contact's interaction log
type Interaction struct {
	Type    string    `json:"type"`
	Date    time.Time `json:"date"`
	Summary string    `json:"summary"`
}

// ContactSnapshot is the CRM view of a meeting attendee
type ContactSnapshot struct {
	ContactID           uuid.UUID     `json:"contact_id"`
	Name                string        `json:"name"`
	TenureDays          int           `json:"tenure_days"`
	PlanTier            string        `json:"plan_tier"`
	PrimaryRole         string        `json:"primary_role"`
	UsageGrowthPct      *float64      `json:"usage_growth_pct,omitempty"`
	RenewalDate         *time.Time    `json:"renewal_date,omitempty"`
	OpenFeatureRequests int           `json:"open_feature_requests"`
	OpenOpportunities   []Opportunity `json:"open_opportunities"`
}

// AttendanceSlot is a weekday/hour bucket where the attendee missed a meeting
type AttendanceSlot struct {
	Weekday time.Weekday `json:"weekday"`
	Hour    int          `json:"hour"`
}

// LastConfirmationNoResponse is the history value for an unanswered confirmation request
const LastConfirmationNoResponse = "no_response"

// InteractionHistory is the attendee's interaction log plus attendance aggregates
type InteractionHistory struct {
	Interactions           []Interaction    `json:"interactions"`
	PriorNoShows           int              `json:"prior_no_shows"`
	PriorReschedules       int              `json:"prior_reschedules"`
	LastConfirmationStatus string           `json:"last_confirmation_status,omitempty"`
	TotalMeetings          int              `json:"total_meetings"`
	NoShowSlots            []AttendanceSlot `json:"no_show_slots,omitempty"`
}

// SignalVolume is the amount of historical signal available for predictions
func (h *InteractionHistory) SignalVolume() int {
	if h == nil {
		return 0
	}
	return len(h.Interactions) + h.TotalMeetings
}
