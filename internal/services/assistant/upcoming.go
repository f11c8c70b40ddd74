package assistant

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PrepareSummary reports what a PrepareUpcoming run did
type PrepareSummary struct {
	UserID   uuid.UUID `json:"user_id"`
	Meetings int       `json:"meetings"`
	Prepared int       `json:"prepared"`
	Failed   int       `json:"failed"`
}

// PrepareUpcoming runs risk, prep and reminder planning for every scheduled
// meeting of the user starting within window. Meetings are processed by a
// bounded pool; a failure on one meeting is logged and counted, while
// cancelling ctx stops the run and discards pending work.
func (a *Assistant) PrepareUpcoming(ctx context.Context, userID uuid.UUID, window time.Duration) (summary PrepareSummary, err error) {
	const op = "prepareUpcoming"
	defer a.observe(op, time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, op,
		attribute.String("user_id", userID.String()),
		attribute.String("window", window.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	summary.UserID = userID
	if window <= 0 {
		return summary, apperrors.InvalidInput(op, "window must be positive")
	}

	now := a.now()
	meetings, err := retry(ctx, a, func() ([]models.Meeting, error) {
		return a.meetings.ListByOwnerBetween(ctx, userID, now, now.Add(window))
	})
	if err != nil {
		return summary, err
	}

	loc := a.location(ctx, userID)

	var prepared, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i := range meetings {
		m := meetings[i]
		if m.Status != models.MeetingStatusScheduled || !m.Start.After(now) {
			continue
		}
		summary.Meetings++

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := a.prepareMeeting(gctx, &m, loc); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				a.logger.Warn("prepare_meeting_failed",
					zap.String("meeting_id", m.ID.String()),
					zap.Error(err),
				)
				return nil
			}
			prepared.Add(1)
			return nil
		})
	}

	err = g.Wait()
	summary.Prepared = int(prepared.Load())
	summary.Failed = int(failed.Load())
	span.SetAttributes(
		attribute.Int("prepared", summary.Prepared),
		attribute.Int("failed", summary.Failed),
	)
	if err != nil {
		return summary, err
	}

	a.logger.Info("upcoming_meetings_prepared",
		zap.String("user_id", userID.String()),
		zap.Int("meetings", summary.Meetings),
		zap.Int("prepared", summary.Prepared),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// prepareMeeting runs risk then prep then reminders for one meeting
func (a *Assistant) prepareMeeting(ctx context.Context, m *models.Meeting, loc *time.Location) error {
	h := a.fetchHistory(ctx, m.AttendeeID)

	prediction, err := a.predict(ctx, m, h, loc)
	if err != nil {
		return err
	}

	brief, err := a.prepare(ctx, m, h, prediction.Value)
	if err != nil {
		return err
	}

	var opportunities []models.Opportunity
	if brief.Value != nil {
		opportunities = brief.Value.OpenOpportunities
	}
	_, err = a.plan(ctx, m, prediction.Value, brief.Value, opportunities)
	return err
}
