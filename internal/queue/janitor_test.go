package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockDLQPurger struct {
	purgeFunc func(ctx context.Context, retention time.Duration) (int, error)
}

var _ DLQPurger = (*mockDLQPurger)(nil)

func (m *mockDLQPurger) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if m.purgeFunc != nil {
		return m.purgeFunc(ctx, retention)
	}
	return 0, nil
}

func TestDLQJanitor_Collect(t *testing.T) {
	t.Parallel()

	retention := 72 * time.Hour

	tests := []struct {
		name        string
		purger      DLQPurger
		wantCount   int
		expectError bool
		expectLogs  int
	}{
		{name: "nil purger is a no-op"},
		{
			name: "purge uses configured retention",
			purger: &mockDLQPurger{purgeFunc: func(ctx context.Context, got time.Duration) (int, error) {
				if got != retention {
					return 0, errors.New("unexpected retention")
				}
				if _, ok := ctx.Deadline(); !ok {
					return 0, errors.New("expected a deadline on the purge context")
				}
				return 3, nil
			}},
			wantCount:  3,
			expectLogs: 1,
		},
		{name: "empty DLQ is quiet", purger: &mockDLQPurger{}},
		{
			name: "partial purge reports count with error",
			purger: &mockDLQPurger{purgeFunc: func(context.Context, time.Duration) (int, error) {
				return 2, errors.New("channel closed")
			}},
			wantCount:   2,
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.InfoLevel)
			j := NewDLQJanitor(tt.purger, retention, zap.New(core))

			n, err := j.Collect(context.Background())
			if tt.expectError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if n != tt.wantCount {
				t.Errorf("Expected %d purged, got %d", tt.wantCount, n)
			}
			if got := logs.FilterMessage("dlq_purged").Len(); got != tt.expectLogs {
				t.Errorf("Expected %d purge log entries, got %d", tt.expectLogs, got)
			}
		})
	}
}

func TestDLQJanitor_Run(t *testing.T) {
	t.Parallel()

	t.Run("stops on cancel before first tick", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		j := NewDLQJanitor(&mockDLQPurger{purgeFunc: func(context.Context, time.Duration) (int, error) {
			calls.Add(1)
			return 0, nil
		}}, time.Hour, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := j.Run(ctx, 24*time.Hour); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("Expected no purge before the first tick, got %d", calls.Load())
		}
	})

	t.Run("keeps running after a failed pass", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		j := NewDLQJanitor(&mockDLQPurger{purgeFunc: func(context.Context, time.Duration) (int, error) {
			if calls.Add(1) >= 2 {
				cancel()
			}
			return 0, errors.New("broker unavailable")
		}}, time.Hour, nil)

		done := make(chan error, 1)
		go func() { done <- j.Run(ctx, time.Millisecond) }()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Expected context.Canceled, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Expected janitor to stop after cancel")
		}
		if calls.Load() < 2 {
			t.Errorf("Expected at least 2 passes, got %d", calls.Load())
		}
	})
}
