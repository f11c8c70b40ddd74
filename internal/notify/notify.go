package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification is the payload handed to a transport for one reminder
type Notification struct {
	ReminderID   uuid.UUID           `json:"reminder_id"`
	MeetingID    uuid.UUID           `json:"meeting_id"`
	UserID       uuid.UUID           `json:"user_id"`
	Type         models.ReminderType `json:"type"`
	Content      string              `json:"content"`
	ScheduledFor time.Time           `json:"scheduled_for"`
}

// FromReminder builds the notification for a reminder
func FromReminder(r *models.Reminder) Notification {
	return Notification{
		ReminderID:   r.ID,
		MeetingID:    r.MeetingID,
		UserID:       r.UserID,
		Type:         r.Type,
		Content:      r.Content,
		ScheduledFor: r.ScheduledFor,
	}
}

// Transport delivers notifications to the user. Delivery is at least once.
type Transport interface {
	Send(ctx context.Context, n Notification) error
}

// LogTransport writes notifications to the structured log
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport creates a transport that only logs
func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs the notification
func (t *LogTransport) Send(_ context.Context, n Notification) error {
	t.logger.Info("reminder_notification",
		zap.String("reminder_id", n.ReminderID.String()),
		zap.String("meeting_id", n.MeetingID.String()),
		zap.String("user_id", n.UserID.String()),
		zap.String("type", string(n.Type)),
		zap.Time("scheduled_for", n.ScheduledFor),
		zap.String("content", n.Content),
	)
	return nil
}

// WebhookTransport POSTs notifications as JSON to a fixed URL
type WebhookTransport struct {
	url    string
	client *http.Client
}

// NewWebhookTransport creates a webhook transport with the given request timeout
func NewWebhookTransport(url string, timeout time.Duration) *WebhookTransport {
	return &WebhookTransport{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts the notification. Any non-2xx response is an error. A reminder
// may be posted more than once; Idempotency-Key carries the reminder id so
// receivers can drop repeats.
func (t *WebhookTransport) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", n.ReminderID.String())

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// New picks the webhook transport when a URL is configured and the log transport otherwise
func New(webhookURL string, timeout time.Duration, logger *zap.Logger) Transport {
	if webhookURL == "" {
		return NewLogTransport(logger)
	}
	return NewWebhookTransport(webhookURL, timeout)
}

var (
	_ Transport = (*LogTransport)(nil)
	_ Transport = (*WebhookTransport)(nil)
)
