package workers

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/notify"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/benvon/smart-scheduler/internal/services/assistant"
	"github.com/google/uuid"
)

// mockMessage records how a delivery was settled
type mockMessage struct {
	job          *queue.Job
	acked        bool
	deadLettered bool
	requeued     bool
}

func (m *mockMessage) Job() *queue.Job { return m.job }

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) DeadLetter() error {
	m.deadLettered = true
	return nil
}

func (m *mockMessage) Requeue() error {
	m.requeued = true
	return nil
}

func (m *mockMessage) Redelivered() bool { return false }

var _ queue.Delivery = (*mockMessage)(nil)

type mockAssistant struct {
	getReminderFunc      func(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error)
	markReminderSentFunc func(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error)
	prepareUpcomingFunc  func(ctx context.Context, userID uuid.UUID, window time.Duration) (assistant.PrepareSummary, error)
}

func (m *mockAssistant) GetReminder(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error) {
	if m.getReminderFunc != nil {
		return m.getReminderFunc(ctx, reminderID)
	}
	return &models.Reminder{ID: reminderID, Status: models.ReminderStatusScheduled}, nil
}

func (m *mockAssistant) MarkReminderSent(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error) {
	if m.markReminderSentFunc != nil {
		return m.markReminderSentFunc(ctx, reminderID)
	}
	return &models.Reminder{ID: reminderID, Status: models.ReminderStatusSent}, nil
}

func (m *mockAssistant) PrepareUpcoming(ctx context.Context, userID uuid.UUID, window time.Duration) (assistant.PrepareSummary, error) {
	if m.prepareUpcomingFunc != nil {
		return m.prepareUpcomingFunc(ctx, userID, window)
	}
	return assistant.PrepareSummary{UserID: userID}, nil
}

var _ Assistant = (*mockAssistant)(nil)

type mockTransport struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, n notify.Notification) error
	sent     []notify.Notification
}

func (m *mockTransport) Send(ctx context.Context, n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, n); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, n)
	return nil
}

var _ notify.Transport = (*mockTransport)(nil)

type mockEnqueuer struct {
	mu          sync.Mutex
	enqueueFunc func(ctx context.Context, job *queue.Job) error
	jobs        []*queue.Job
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, job *queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueFunc != nil {
		if err := m.enqueueFunc(ctx, job); err != nil {
			return err
		}
	}
	m.jobs = append(m.jobs, job)
	return nil
}

var _ queue.Enqueuer = (*mockEnqueuer)(nil)

type mockOwnerLister struct {
	listFunc func(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

func (m *mockOwnerLister) ListOwnersWithMeetingsBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, from, to)
	}
	return []uuid.UUID{}, nil
}

var _ OwnerLister = (*mockOwnerLister)(nil)
