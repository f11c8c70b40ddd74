package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SweepHours are the local hours at which upcoming meetings are prepared
var SweepHours = []int{8, 20}

// OwnerLister finds users that own meetings in a time range
type OwnerLister interface {
	ListOwnersWithMeetingsBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

// Sweeper enqueues prepare_upcoming jobs for every user with upcoming meetings
type Sweeper struct {
	jobQueue queue.Enqueuer
	owners   OwnerLister
	window   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweeper creates a new sweeper looking window ahead of each run
func NewSweeper(jobQueue queue.Enqueuer, owners OwnerLister, window time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		jobQueue: jobQueue,
		owners:   owners,
		window:   window,
		logger:   logger,
		now:      time.Now,
	}
}

// NextRun returns the first sweep time strictly after now
func NextRun(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for offset := 0; offset < 2; offset++ {
		d := day.AddDate(0, 0, offset)
		for _, h := range SweepHours {
			at := time.Date(d.Year(), d.Month(), d.Day(), h, 0, 0, 0, now.Location())
			if at.After(now) {
				return at
			}
		}
	}
	return day.AddDate(0, 0, 1)
}

// Sweep enqueues one prepare_upcoming job per owner and returns how many were enqueued
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	owners, err := s.owners.ListOwnersWithMeetingsBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return 0, fmt.Errorf("failed to list meeting owners: %w", err)
	}

	// A job left over from one sweep is superseded by the next
	notAfter := now.Add(12 * time.Hour)
	enqueued := 0
	for _, userID := range owners {
		job := queue.NewPrepareUpcomingJob(userID, s.window)
		job.NotAfter = &notAfter
		if err := s.jobQueue.Enqueue(ctx, job); err != nil {
			s.logger.Warn("failed_to_schedule_prepare_job",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			// Continue with other users
			continue
		}
		enqueued++
	}

	s.logger.Info("scheduled_prepare_jobs",
		zap.Int("user_count", len(owners)),
		zap.Int("enqueued", enqueued),
		zap.Duration("window", s.window),
	)
	return enqueued, nil
}

// Run sweeps at every sweep hour until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	for {
		next := NextRun(s.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("sweep_failed", zap.Error(err))
			}
		}
	}
}
