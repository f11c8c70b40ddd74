package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeReminderDelivery delivers a single reminder at its scheduled time
	JobTypeReminderDelivery JobType = "reminder_delivery"
	// JobTypePrepareUpcoming computes risk, prep and reminders for a user's upcoming meetings
	JobTypePrepareUpcoming JobType = "prepare_upcoming"
)

// MetadataWindow is the metadata key carrying the prepare_upcoming look-ahead window
const MetadataWindow = "window"

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	UserID     uuid.UUID      `json:"user_id"`
	ReminderID *uuid.UUID     `json:"reminder_id,omitempty"` // Set for reminder delivery jobs
	NotBefore  *time.Time     `json:"not_before,omitempty"`  // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`   // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`    // Job-specific data
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// NewReminderDeliveryJob creates a delivery job that becomes visible at scheduledFor
func NewReminderDeliveryJob(userID, reminderID uuid.UUID, scheduledFor time.Time) *Job {
	job := NewJob(JobTypeReminderDelivery, userID)
	job.ReminderID = &reminderID
	notBefore := scheduledFor
	job.NotBefore = &notBefore
	return job
}

// NewPrepareUpcomingJob creates a job that prepares the user's meetings within window
func NewPrepareUpcomingJob(userID uuid.UUID, window time.Duration) *Job {
	job := NewJob(JobTypePrepareUpcoming, userID)
	job.Metadata[MetadataWindow] = window.String()
	return job
}

// Window returns the look-ahead window of a prepare_upcoming job
func (j *Job) Window() (time.Duration, error) {
	raw, ok := j.Metadata[MetadataWindow].(string)
	if !ok {
		return 0, fmt.Errorf("job %s has no %s metadata", j.ID, MetadataWindow)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid window %q: %w", raw, err)
	}
	return d, nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

	// Check NotBefore
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}

	// Check NotAfter
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}

	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
