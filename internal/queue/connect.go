package queue

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Dial connects to RabbitMQ, retrying with exponential backoff while the
// broker is starting up
func Dial(ctx context.Context, amqpURL string, maxRetries uint64, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0

	attempt := 0
	return backoff.RetryNotifyWithData(
		func() (*RabbitMQQueue, error) {
			attempt++
			return NewRabbitMQQueue(amqpURL, logger)
		},
		backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx),
		func(err error, delay time.Duration) {
			logger.Warn("failed_to_connect_to_rabbitmq_retrying",
				zap.Int("attempt", attempt),
				zap.Uint64("max_retries", maxRetries),
				zap.Duration("retry_delay", delay),
				zap.Error(err),
			)
		},
	)
}
