package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus represents the lifecycle state of a calendar meeting
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// ConfirmationState represents whether the attendee confirmed attendance
type ConfirmationState string

const (
	ConfirmationConfirmed   ConfirmationState = "confirmed"
	ConfirmationUnconfirmed ConfirmationState = "unconfirmed"
	ConfirmationNone        ConfirmationState = "none"
)

// Meeting is a read-only snapshot of a calendar meeting owned by a user
type Meeting struct {
	ID              uuid.UUID         `json:"id"`
	OwnerID         uuid.UUID         `json:"owner_id"`
	Title           string            `json:"title"`
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	AttendeeID      uuid.UUID         `json:"attendee_id"`
	MeetingType     string            `json:"meeting_type,omitempty"`
	Status          MeetingStatus     `json:"status"`
	Confirmation    ConfirmationState `json:"confirmation"`
	RescheduleCount int               `json:"reschedule_count"`
}

// Duration returns the meeting length
func (m *Meeting) Duration() time.Duration {
	return m.End.Sub(m.Start)
}

// IsActive reports whether the meeting still occupies calendar time
func (m *Meeting) IsActive() bool {
	return m.Status != MeetingStatusCancelled
}
