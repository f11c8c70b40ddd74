package queue

import (
	"context"
	"time"
)

// JobQueue is the interface for job queues
type JobQueue interface {
	// Enqueue adds a job to the queue. Jobs with a future NotBefore are
	// published through the delayed exchange.
	Enqueue(ctx context.Context, job *Job) error

	// Consume streams deliveries until ctx is cancelled or the broker
	// channel fails. At most prefetchCount deliveries are unsettled at once.
	Consume(ctx context.Context, prefetchCount int) (<-chan Delivery, <-chan error, error)

	Close() error
	HealthCheck(ctx context.Context) error
}

// Enqueuer is the publishing half of JobQueue
type Enqueuer interface {
	Enqueue(ctx context.Context, job *Job) error
}

// DLQPurger removes dead-lettered messages older than retention and reports how many
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
