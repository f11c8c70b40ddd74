package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderType represents when a reminder fires relative to its meeting
type ReminderType string

const (
	ReminderTypePreparation ReminderType = "preparation"
	ReminderTypeFollowUp    ReminderType = "follow_up"
)

// ReminderStatus represents the reminder delivery state
type ReminderStatus string

const (
	ReminderStatusScheduled ReminderStatus = "scheduled"
	ReminderStatusSent      ReminderStatus = "sent"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// ErrInvalidReminderTransition is returned for any transition other than
// scheduled -> sent or scheduled -> cancelled
var ErrInvalidReminderTransition = errors.New("invalid reminder transition")

// Reminder is a notification the transport delivers for a meeting
type Reminder struct {
	ID           uuid.UUID      `json:"id"`
	MeetingID    uuid.UUID      `json:"meeting_id"`
	UserID       uuid.UUID      `json:"user_id"`
	Type         ReminderType   `json:"type"`
	Content      string         `json:"content"`
	ScheduledFor time.Time      `json:"scheduled_for"`
	Status       ReminderStatus `json:"status"`
	Sent         bool           `json:"sent"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// MarkSent moves a scheduled reminder to sent. Sent reminders are immutable.
func (r *Reminder) MarkSent(at time.Time) error {
	if r.Status != ReminderStatusScheduled {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidReminderTransition, r.Status, ReminderStatusSent)
	}
	r.Status = ReminderStatusSent
	r.Sent = true
	r.SentAt = &at
	return nil
}

// Cancel moves a scheduled reminder to cancelled, which is terminal
func (r *Reminder) Cancel() error {
	if r.Status != ReminderStatusScheduled {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidReminderTransition, r.Status, ReminderStatusCancelled)
	}
	r.Status = ReminderStatusCancelled
	return nil
}

// IsPending reports whether the reminder still awaits delivery
func (r *Reminder) IsPending() bool {
	return r.Status == ReminderStatusScheduled
}
