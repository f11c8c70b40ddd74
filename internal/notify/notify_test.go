package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testReminder() *models.Reminder {
	return &models.Reminder{
		ID:           uuid.New(),
		MeetingID:    uuid.New(),
		UserID:       uuid.New(),
		Type:         models.ReminderTypePreparation,
		Content:      "Renewal due in 20 days: confirm renewal plans",
		ScheduledFor: time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC),
		Status:       models.ReminderStatusScheduled,
	}
}

func TestLogTransport_Send(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	transport := NewLogTransport(zap.New(core))

	r := testReminder()
	if err := transport.Send(context.Background(), FromReminder(r)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	entries := logs.FilterMessage("reminder_notification").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["reminder_id"]; got != r.ID.String() {
		t.Errorf("Expected reminder_id %s, got %v", r.ID, got)
	}
}

func TestWebhookTransport_Send(t *testing.T) {
	t.Parallel()

	var received Notification
	var idempotencyKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idempotencyKey = r.Header.Get("Idempotency-Key")
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected application/json, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	r := testReminder()
	transport := NewWebhookTransport(server.URL, time.Second)
	if err := transport.Send(context.Background(), FromReminder(r)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if received.ReminderID != r.ID || received.Content != r.Content {
		t.Errorf("Expected notification for %s, got %+v", r.ID, received)
	}
	if idempotencyKey != r.ID.String() {
		t.Errorf("Expected Idempotency-Key %s, got %q", r.ID, idempotencyKey)
	}
}

func TestWebhookTransport_SendErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	transport := NewWebhookTransport(server.URL, time.Second)
	if err := transport.Send(context.Background(), FromReminder(testReminder())); err == nil {
		t.Error("Expected error for 502 response")
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, ok := New("", time.Second, zap.NewNop()).(*LogTransport); !ok {
		t.Error("Expected log transport without a webhook URL")
	}
	if _, ok := New("http://example.invalid/hook", time.Second, zap.NewNop()).(*WebhookTransport); !ok {
		t.Error("Expected webhook transport with a webhook URL")
	}
}
