package database

import (
	"context"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
)

// PreferenceRepositoryInterface defines the interface for preference repository operations
// This interface enables better testability by allowing mock implementations
type PreferenceRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	Upsert(ctx context.Context, p *models.Preference) error
}

// MeetingRepositoryInterface defines the read-only calendar operations
type MeetingRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	ListByOwnerBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]models.Meeting, error)
	ListOwnersWithMeetingsBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

// CRMRepositoryInterface defines the read-only CRM operations
type CRMRepositoryInterface interface {
	GetContact(ctx context.Context, contactID uuid.UUID) (*models.ContactSnapshot, error)
	GetHistory(ctx context.Context, contactID uuid.UUID, limit int) (*models.InteractionHistory, error)
}

// RiskPredictionRepositoryInterface defines the interface for prediction storage
type RiskPredictionRepositoryInterface interface {
	Create(ctx context.Context, p *models.RiskPrediction) error
	GetLatestByMeetingID(ctx context.Context, meetingID uuid.UUID) (*models.RiskPrediction, error)
}

// MeetingPrepRepositoryInterface defines the interface for prep storage
type MeetingPrepRepositoryInterface interface {
	Replace(ctx context.Context, p *models.MeetingPrep) error
	GetByMeetingID(ctx context.Context, meetingID uuid.UUID) (*models.MeetingPrep, error)
}

// ReminderRepositoryInterface defines the interface for reminder storage
type ReminderRepositoryInterface interface {
	ReplaceUnsent(ctx context.Context, meetingID uuid.UUID, reminders []models.Reminder) error
	CancelUnsentByMeeting(ctx context.Context, meetingID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID, includeSent bool) ([]models.Reminder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error)
	UpdateStatus(ctx context.Context, r *models.Reminder) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByProviderID(ctx context.Context, providerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// RatelimitConfigRepositoryInterface defines the interface for rate limit configuration
type RatelimitConfigRepositoryInterface interface {
	Get(ctx context.Context, key string) (*models.RatelimitConfig, error)
	List(ctx context.Context) ([]models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ PreferenceRepositoryInterface      = (*PreferenceRepository)(nil)
	_ MeetingRepositoryInterface         = (*MeetingRepository)(nil)
	_ CRMRepositoryInterface             = (*CRMRepository)(nil)
	_ RiskPredictionRepositoryInterface  = (*RiskPredictionRepository)(nil)
	_ MeetingPrepRepositoryInterface     = (*MeetingPrepRepository)(nil)
	_ ReminderRepositoryInterface        = (*ReminderRepository)(nil)
	_ UserRepositoryInterface            = (*UserRepository)(nil)
	_ RatelimitConfigRepositoryInterface = (*RatelimitConfigRepository)(nil)
)
