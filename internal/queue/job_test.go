package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	job := NewJob(JobTypePrepareUpcoming, userID)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypePrepareUpcoming {
		t.Errorf("Expected job type to be %s, got %s", JobTypePrepareUpcoming, job.Type)
	}
	if job.UserID != userID {
		t.Errorf("Expected user ID to be %s, got %s", userID, job.UserID)
	}
	if job.Metadata == nil {
		t.Error("Expected metadata to be initialized")
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries to be 3, got %d", job.MaxRetries)
	}
}

func TestNewReminderDeliveryJob(t *testing.T) {
	t.Parallel()

	userID, reminderID := uuid.New(), uuid.New()
	at := time.Now().Add(2 * time.Hour)
	job := NewReminderDeliveryJob(userID, reminderID, at)

	if job.Type != JobTypeReminderDelivery {
		t.Errorf("Expected job type to be %s, got %s", JobTypeReminderDelivery, job.Type)
	}
	if job.ReminderID == nil || *job.ReminderID != reminderID {
		t.Errorf("Expected reminder ID %s, got %v", reminderID, job.ReminderID)
	}
	if job.NotBefore == nil || !job.NotBefore.Equal(at) {
		t.Errorf("Expected not_before %v, got %v", at, job.NotBefore)
	}
	if job.ShouldProcess() {
		t.Error("Expected future reminder job not to be processable yet")
	}
}

func TestJob_Window(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		metadata    map[string]any
		want        time.Duration
		expectError bool
	}{
		{"valid", map[string]any{MetadataWindow: "48h0m0s"}, 48 * time.Hour, false},
		{"missing", map[string]any{}, 0, true},
		{"wrong type", map[string]any{MetadataWindow: 48}, 0, true},
		{"unparseable", map[string]any{MetadataWindow: "two days"}, 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := &Job{ID: uuid.New(), Metadata: tt.metadata}
			got, err := job.Window()
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if w, err := NewPrepareUpcomingJob(uuid.New(), 36*time.Hour).Window(); err != nil || w != 36*time.Hour {
		t.Errorf("Expected 36h round trip, got %v (%v)", w, err)
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{"no time constraints", &Job{}, true},
		{"not before in past", &Job{NotBefore: &past}, true},
		{"not before in future", &Job{NotBefore: &future}, false},
		{"not after in future", &Job{NotAfter: &future}, true},
		{"not after in past", &Job{NotAfter: &past}, false},
		{"within window", &Job{NotBefore: &past, NotAfter: &future}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Minute)

	if (&Job{}).IsExpired() {
		t.Error("Expected job without not_after not to expire")
	}
	if !(&Job{NotAfter: &past}).IsExpired() {
		t.Error("Expected job past not_after to be expired")
	}
	if (&Job{NotAfter: &future}).IsExpired() {
		t.Error("Expected job before not_after not to be expired")
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeReminderDelivery, uuid.New())
	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("Expected retries to be exhausted")
	}
	if job.RetryCount != 3 {
		t.Errorf("Expected retry count 3, got %d", job.RetryCount)
	}
}
