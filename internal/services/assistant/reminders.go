package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/benvon/smart-scheduler/internal/services/reminders"
	"github.com/benvon/smart-scheduler/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ScheduleReminder (re)plans the reminders of the user's meeting. Unsent
// reminders are replaced; a cancelled meeting has its unsent reminders cancelled.
func (a *Assistant) ScheduleReminder(ctx context.Context, userID, meetingID uuid.UUID) (planned []models.Reminder, err error) {
	const op = "scheduleReminder"
	defer a.observe(op, time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, op, attribute.String("meeting_id", meetingID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	m, err := a.loadMeeting(ctx, op, userID, meetingID)
	if err != nil {
		return nil, err
	}

	prediction, err := optional(ctx, a, func() (*models.RiskPrediction, error) {
		return a.predictions.GetLatestByMeetingID(ctx, m.ID)
	})
	if err != nil {
		return nil, err
	}

	brief, err := optional(ctx, a, func() (*models.MeetingPrep, error) {
		return a.preps.GetByMeetingID(ctx, m.ID)
	})
	if err != nil {
		return nil, err
	}

	return a.plan(ctx, m, prediction, brief, nil)
}

// optional runs a store read where NotFound means absent
func optional[T any](ctx context.Context, a *Assistant, read func() (*T, error)) (*T, error) {
	v, err := retry(ctx, a, read)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return nil, nil
	}
	return v, err
}

// plan computes and commits the reminders for a meeting
func (a *Assistant) plan(ctx context.Context, m *models.Meeting, prediction *models.RiskPrediction, brief *models.MeetingPrep, opportunities []models.Opportunity) ([]models.Reminder, error) {
	if m.Status == models.MeetingStatusCancelled {
		n, err := retry(ctx, a, func() (int, error) {
			return a.reminders.CancelUnsentByMeeting(ctx, m.ID)
		})
		if err != nil {
			return nil, err
		}
		a.logger.Info("reminders_cancelled",
			zap.String("meeting_id", m.ID.String()),
			zap.Int("count", n),
		)
		return []models.Reminder{}, nil
	}

	if opportunities == nil && m.Status == models.MeetingStatusCompleted {
		contact, err := retry(ctx, a, func() (*models.ContactSnapshot, error) {
			return a.crm.GetContact(ctx, m.AttendeeID)
		})
		if err == nil {
			opportunities = contact.OpenOpportunities
		} else {
			a.logger.Warn("contact_unavailable", zap.String("meeting_id", m.ID.String()), zap.Error(err))
		}
	}

	planned := a.scheduler.Plan(reminders.Input{
		Meeting:       m,
		Risk:          prediction,
		Prep:          brief,
		Opportunities: opportunities,
		Now:           a.now(),
	})

	if _, err := retry(ctx, a, func() (struct{}, error) {
		return struct{}{}, a.reminders.ReplaceUnsent(ctx, m.ID, planned)
	}); err != nil {
		return nil, err
	}

	a.enqueueDeliveries(ctx, planned)
	return planned, nil
}

// enqueueDeliveries publishes a delayed delivery job per reminder. Failures are
// logged; the sweep re-plans and re-enqueues.
func (a *Assistant) enqueueDeliveries(ctx context.Context, planned []models.Reminder) {
	if a.queue == nil {
		return
	}
	for i := range planned {
		r := &planned[i]
		job := queue.NewReminderDeliveryJob(r.UserID, r.ID, r.ScheduledFor)
		if err := a.queue.Enqueue(ctx, job); err != nil {
			a.logger.Error("reminder_enqueue_failed",
				zap.String("reminder_id", r.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// ListReminders returns the user's reminders. Cancelled reminders are never
// listed; sent ones only when includeSent is set.
func (a *Assistant) ListReminders(ctx context.Context, userID uuid.UUID, includeSent bool) (list []models.Reminder, err error) {
	const op = "listReminders"
	defer a.observe(op, time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, op, attribute.Bool("include_sent", includeSent))
	defer func() { telemetry.EndSpan(span, err) }()

	all, err := retry(ctx, a, func() ([]models.Reminder, error) {
		return a.reminders.ListByUser(ctx, userID, includeSent)
	})
	if err != nil {
		return nil, err
	}

	list = make([]models.Reminder, 0, len(all))
	for i := range all {
		if reminders.Visible(&all[i], includeSent) {
			list = append(list, all[i])
		}
	}
	return list, nil
}

// GetReminder returns a reminder by id
func (a *Assistant) GetReminder(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error) {
	return retry(ctx, a, func() (*models.Reminder, error) {
		return a.reminders.GetByID(ctx, reminderID)
	})
}

// MarkReminderSent records delivery of a scheduled reminder. Reminders that
// are already sent or cancelled are rejected with ErrInvalidReminderTransition.
func (a *Assistant) MarkReminderSent(ctx context.Context, reminderID uuid.UUID) (r *models.Reminder, err error) {
	const op = "markReminderSent"
	defer a.observe(op, time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, op, attribute.String("reminder_id", reminderID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	r, err = a.GetReminder(ctx, reminderID)
	if err != nil {
		return nil, err
	}

	if err := r.MarkSent(a.now().UTC()); err != nil {
		return nil, invalidTransition(op, err)
	}

	if _, err := retry(ctx, a, func() (struct{}, error) {
		return struct{}{}, a.reminders.UpdateStatus(ctx, r)
	}); err != nil {
		if errors.Is(err, models.ErrInvalidReminderTransition) {
			return nil, invalidTransition(op, err)
		}
		return nil, err
	}
	return r, nil
}

func invalidTransition(op string, err error) error {
	return &apperrors.Error{
		Kind:    apperrors.KindInvalidInput,
		Op:      op,
		Message: "reminder is no longer scheduled",
		Err:     err,
	}
}
