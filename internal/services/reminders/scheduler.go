package reminders

import (
	"fmt"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/weights"
	"github.com/google/uuid"
)

const confirmationCallToAction = "Confirm attendance with the attendee beforehand."

// Scheduler derives reminder timing and content for a meeting
type Scheduler struct {
	weights weights.ReminderWeights
}

// NewScheduler creates a new reminder scheduler
func NewScheduler(w weights.ReminderWeights) *Scheduler {
	return &Scheduler{weights: w}
}

// Input is the snapshot reminders are planned from
type Input struct {
	Meeting *models.Meeting
	Risk    *models.RiskPrediction
	Prep    *models.MeetingPrep
	// Opportunities are the attendee's open opportunities; the prep's list is used when empty
	Opportunities []models.Opportunity
	Now           time.Time
}

// Plan returns the reminders the meeting should have. A cancelled meeting gets none.
func (s *Scheduler) Plan(in Input) []models.Reminder {
	m := in.Meeting
	if m.Status == models.MeetingStatusCancelled {
		return []models.Reminder{}
	}

	planned := []models.Reminder{}
	if r, ok := s.preparation(in); ok {
		planned = append(planned, r)
	}
	if r, ok := s.followUp(in); ok {
		planned = append(planned, r)
	}
	return planned
}

// LeadTime returns how long before the meeting the preparation reminder fires
func (s *Scheduler) LeadTime(risk *models.RiskPrediction) time.Duration {
	if risk == nil {
		return s.weights.PreparationLead
	}
	switch risk.Level() {
	case models.RiskLevelHigh:
		return s.weights.HighRiskLead
	case models.RiskLevelMedium:
		return s.weights.MediumRiskLead
	default:
		return s.weights.PreparationLead
	}
}

func (s *Scheduler) preparation(in Input) (models.Reminder, bool) {
	m := in.Meeting
	if in.Prep == nil || m.Status != models.MeetingStatusScheduled || !in.Now.Before(m.Start) {
		return models.Reminder{}, false
	}

	scheduledFor := m.Start.Add(-s.LeadTime(in.Risk))
	if scheduledFor.Before(in.Now) {
		scheduledFor = in.Now
	}

	content := in.Prep.TopTalkingPoint()
	if content == "" {
		content = fmt.Sprintf("Prepare for %s", m.Title)
	}
	if in.Risk != nil && in.Risk.Level().AtLeast(models.RiskLevelMedium) {
		content = fmt.Sprintf("%s. %s", content, confirmationCallToAction)
	}

	return s.newReminder(m, models.ReminderTypePreparation, content, scheduledFor, in.Now), true
}

func (s *Scheduler) followUp(in Input) (models.Reminder, bool) {
	m := in.Meeting
	if m.Status != models.MeetingStatusCompleted {
		return models.Reminder{}, false
	}
	opps := in.Opportunities
	if len(opps) == 0 && in.Prep != nil {
		opps = in.Prep.OpenOpportunities
	}
	if len(opps) == 0 {
		return models.Reminder{}, false
	}

	top := opps[0]
	for _, o := range opps[1:] {
		if o.Value > top.Value {
			top = o
		}
	}
	content := fmt.Sprintf("Follow up on %s (%s) after %s", top.Name, top.Stage, m.Title)
	return s.newReminder(m, models.ReminderTypeFollowUp, content, m.End.Add(s.weights.FollowUpDelay), in.Now), true
}

func (s *Scheduler) newReminder(m *models.Meeting, t models.ReminderType, content string, at, now time.Time) models.Reminder {
	return models.Reminder{
		ID:           uuid.New(),
		MeetingID:    m.ID,
		UserID:       m.OwnerID,
		Type:         t,
		Content:      content,
		ScheduledFor: at,
		Status:       models.ReminderStatusScheduled,
		CreatedAt:    now,
	}
}

// Visible reports whether a reminder belongs in a listing
func Visible(r *models.Reminder, includeSent bool) bool {
	switch r.Status {
	case models.ReminderStatusScheduled:
		return true
	case models.ReminderStatusSent:
		return includeSent
	default:
		return false
	}
}
