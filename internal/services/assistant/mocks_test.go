package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/cache"
	"github.com/benvon/smart-scheduler/internal/database"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/google/uuid"
)

type mockPreferences struct {
	getFunc     func(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	resolveFunc func(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	setFunc     func(ctx context.Context, p *models.Preference) (*models.Preference, error)
}

var _ PreferenceStore = (*mockPreferences)(nil)

func (m *mockPreferences) Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID)
	}
	return nil, apperrors.NotFound("Get", "preferences")
}

func (m *mockPreferences) Resolve(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, userID)
	}
	return models.DefaultPreference(userID), nil
}

func (m *mockPreferences) Set(ctx context.Context, p *models.Preference) (*models.Preference, error) {
	if m.setFunc != nil {
		return m.setFunc(ctx, p)
	}
	return p, nil
}

type mockMeetings struct {
	mu              sync.Mutex
	calls           int
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	listBetweenFunc func(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]models.Meeting, error)
}

var _ database.MeetingRepositoryInterface = (*mockMeetings)(nil)

func (m *mockMeetings) count() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *mockMeetings) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	m.count()
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFound("GetByID", "meeting")
}

func (m *mockMeetings) ListByOwnerBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]models.Meeting, error) {
	m.count()
	if m.listBetweenFunc != nil {
		return m.listBetweenFunc(ctx, ownerID, from, to)
	}
	return nil, nil
}

func (m *mockMeetings) ListOwnersWithMeetingsBetween(context.Context, time.Time, time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

type mockCRM struct {
	getContactFunc func(ctx context.Context, contactID uuid.UUID) (*models.ContactSnapshot, error)
	getHistoryFunc func(ctx context.Context, contactID uuid.UUID, limit int) (*models.InteractionHistory, error)
}

var _ database.CRMRepositoryInterface = (*mockCRM)(nil)

func (m *mockCRM) GetContact(ctx context.Context, contactID uuid.UUID) (*models.ContactSnapshot, error) {
	if m.getContactFunc != nil {
		return m.getContactFunc(ctx, contactID)
	}
	return nil, apperrors.NotFound("GetContact", "contact")
}

func (m *mockCRM) GetHistory(ctx context.Context, contactID uuid.UUID, limit int) (*models.InteractionHistory, error) {
	if m.getHistoryFunc != nil {
		return m.getHistoryFunc(ctx, contactID, limit)
	}
	return nil, nil
}

type mockPredictions struct {
	mu        sync.Mutex
	created    []models.RiskPrediction
	createFunc func(ctx context.Context, p *models.RiskPrediction) error
	latestFor  func(ctx context.Context, meetingID uuid.UUID) (*models.RiskPrediction, error)
}

var _ database.RiskPredictionRepositoryInterface = (*mockPredictions)(nil)

func (m *mockPredictions) Create(ctx context.Context, p *models.RiskPrediction) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *p)
	return nil
}

func (m *mockPredictions) GetLatestByMeetingID(ctx context.Context, meetingID uuid.UUID) (*models.RiskPrediction, error) {
	if m.latestFor != nil {
		return m.latestFor(ctx, meetingID)
	}
	return nil, apperrors.NotFound("GetLatestByMeetingID", "risk prediction")
}

type mockPreps struct {
	mu       sync.Mutex
	replaced []models.MeetingPrep
	getFunc  func(ctx context.Context, meetingID uuid.UUID) (*models.MeetingPrep, error)
}

var _ database.MeetingPrepRepositoryInterface = (*mockPreps)(nil)

func (m *mockPreps) Replace(_ context.Context, p *models.MeetingPrep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaced = append(m.replaced, *p)
	return nil
}

func (m *mockPreps) GetByMeetingID(ctx context.Context, meetingID uuid.UUID) (*models.MeetingPrep, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, meetingID)
	}
	return nil, apperrors.NotFound("GetByMeetingID", "meeting prep")
}

type mockReminders struct {
	mu               sync.Mutex
	replaced         map[uuid.UUID][]models.Reminder
	cancelled        []uuid.UUID
	updated          []models.Reminder
	listFunc         func(ctx context.Context, userID uuid.UUID, includeSent bool) ([]models.Reminder, error)
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.Reminder, error)
	updateStatusFunc func(ctx context.Context, r *models.Reminder) error
}

var _ database.ReminderRepositoryInterface = (*mockReminders)(nil)

func (m *mockReminders) ReplaceUnsent(_ context.Context, meetingID uuid.UUID, reminders []models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaced == nil {
		m.replaced = map[uuid.UUID][]models.Reminder{}
	}
	m.replaced[meetingID] = reminders
	return nil
}

func (m *mockReminders) CancelUnsentByMeeting(_ context.Context, meetingID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, meetingID)
	return 1, nil
}

func (m *mockReminders) ListByUser(ctx context.Context, userID uuid.UUID, includeSent bool) ([]models.Reminder, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, includeSent)
	}
	return nil, nil
}

func (m *mockReminders) GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFound("GetByID", "reminder")
}

func (m *mockReminders) UpdateStatus(ctx context.Context, r *models.Reminder) error {
	m.mu.Lock()
	m.updated = append(m.updated, *r)
	m.mu.Unlock()
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, r)
	}
	return nil
}

type mockSlotCache struct {
	mu      sync.Mutex
	entries map[string]models.SlotResult
	sets    int
}

var _ SlotCache = (*mockSlotCache)(nil)

func (m *mockSlotCache) Get(_ context.Context, key cache.SlotKey) (*models.SlotResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.entries[key.String()]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (m *mockSlotCache) Set(_ context.Context, key cache.SlotKey, result *models.SlotResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string]models.SlotResult{}
	}
	m.entries[key.String()] = *result
	m.sets++
	return nil
}

type mockQueue struct {
	mu   sync.Mutex
	jobs []*queue.Job
}

var _ queue.Enqueuer = (*mockQueue)(nil)

func (m *mockQueue) Enqueue(_ context.Context, job *queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}
