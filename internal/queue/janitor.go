package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// purgeTimeout bounds a single pass over the DLQ
const purgeTimeout = 2 * time.Minute

// DLQJanitor drops dead-lettered jobs once they are older than retention.
// Failed reminder deliveries stay inspectable for that long.
type DLQJanitor struct {
	purger    DLQPurger
	retention time.Duration
	logger    *zap.Logger
}

// NewDLQJanitor creates a janitor. A nil purger makes every pass a no-op.
func NewDLQJanitor(purger DLQPurger, retention time.Duration, logger *zap.Logger) *DLQJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DLQJanitor{purger: purger, retention: retention, logger: logger}
}

// Run purges once per interval until ctx is cancelled. Failed passes are
// logged and retried on the next tick.
func (j *DLQJanitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.Collect(ctx); err != nil {
				j.logger.Error("dlq_purge_failed", zap.Error(err))
			}
		}
	}
}

// Collect runs one purge pass and returns how many jobs were dropped
func (j *DLQJanitor) Collect(ctx context.Context) (int, error) {
	if j.purger == nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := j.purger.PurgeOlderThan(ctx, j.retention)
	if err != nil {
		return n, fmt.Errorf("DLQ purge: %w", err)
	}
	if n > 0 {
		j.logger.Info("dlq_purged",
			zap.Int("count", n),
			zap.Duration("retention", j.retention),
		)
	}
	return n, nil
}
