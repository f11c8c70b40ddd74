package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/metrics"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/notify"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/benvon/smart-scheduler/internal/services/assistant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	retryBaseDelay = 30 * time.Second
	retryMaxDelay  = 30 * time.Minute
)

// Assistant is the part of the orchestrator the worker drives
type Assistant interface {
	GetReminder(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error)
	MarkReminderSent(ctx context.Context, reminderID uuid.UUID) (*models.Reminder, error)
	PrepareUpcoming(ctx context.Context, userID uuid.UUID, window time.Duration) (assistant.PrepareSummary, error)
}

var _ Assistant = (*assistant.Assistant)(nil)

// errPermanent marks job failures that a retry cannot fix
var errPermanent = errors.New("permanent job failure")

// Dispatcher processes reminder delivery and prepare_upcoming jobs
type Dispatcher struct {
	assistant Assistant
	transport notify.Transport
	jobQueue  queue.Enqueuer // For re-enqueueing jobs with delays
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewDispatcher creates a new job dispatcher
func NewDispatcher(a Assistant, transport notify.Transport, jobQueue queue.Enqueuer, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		assistant: a,
		transport: transport,
		jobQueue:  jobQueue,
		metrics:   m,
		logger:    logger,
	}
}

// ProcessJob processes a job based on its type and settles the message
func (d *Dispatcher) ProcessJob(ctx context.Context, msg queue.Delivery) error {
	job := msg.Job()

	switch job.Type {
	case queue.JobTypeReminderDelivery:
		if err := d.deliverReminder(ctx, job); err != nil {
			return d.handleJobError(ctx, msg, job, err)
		}
	case queue.JobTypePrepareUpcoming:
		if err := d.prepareUpcoming(ctx, job); err != nil {
			return d.handleJobError(ctx, msg, job, err)
		}
	default:
		if nackErr := msg.DeadLetter(); nackErr != nil {
			d.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

// deliverReminder sends a scheduled reminder and marks it sent. Reminders
// that were re-planned, sent or cancelled in the meantime are skipped.
func (d *Dispatcher) deliverReminder(ctx context.Context, job *queue.Job) error {
	if job.ReminderID == nil {
		return fmt.Errorf("%w: reminder_id is required for reminder delivery", errPermanent)
	}
	reminderID := *job.ReminderID

	r, err := d.assistant.GetReminder(ctx, reminderID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		d.skip(reminderID, "reminder_replaced")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load reminder: %w", err)
	}
	if !r.IsPending() {
		d.skip(reminderID, "reminder_"+string(r.Status))
		return nil
	}

	// Send precedes the state change, so a failed mark retries the job and
	// the reminder goes out again. Receivers dedupe on the reminder id.
	if err := d.transport.Send(ctx, notify.FromReminder(r)); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	if _, err := d.assistant.MarkReminderSent(ctx, reminderID); err != nil {
		if errors.Is(err, models.ErrInvalidReminderTransition) {
			d.skip(reminderID, "reminder_already_settled")
			return nil
		}
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	d.metrics.ReminderDelivery("sent")
	d.logger.Info("reminder_delivered",
		zap.String("reminder_id", reminderID.String()),
		zap.String("meeting_id", r.MeetingID.String()),
		zap.String("type", string(r.Type)),
	)
	return nil
}

func (d *Dispatcher) skip(reminderID uuid.UUID, reason string) {
	d.metrics.ReminderDelivery("skipped")
	d.logger.Info("reminder_delivery_skipped",
		zap.String("reminder_id", reminderID.String()),
		zap.String("reason", reason),
	)
}

func (d *Dispatcher) prepareUpcoming(ctx context.Context, job *queue.Job) error {
	window, err := job.Window()
	if err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}

	summary, err := d.assistant.PrepareUpcoming(ctx, job.UserID, window)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		d.logger.Warn("prepare_upcoming_partial",
			zap.String("user_id", job.UserID.String()),
			zap.Int("failed", summary.Failed),
			zap.Int("prepared", summary.Prepared),
		)
	}
	return nil
}

// retryable reports whether a failed job may succeed later
func retryable(err error) bool {
	if errors.Is(err, errPermanent) {
		return false
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput, apperrors.KindNotFound:
		return false
	default:
		return true
	}
}

// handleJobError settles a failed job: permanent failures and exhausted
// retries are dead-lettered, the rest are re-enqueued with a growing delay.
func (d *Dispatcher) handleJobError(ctx context.Context, msg queue.Delivery, job *queue.Job, err error) error {
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	}

	if !retryable(err) || !job.CanRetry() {
		d.logger.Error("job_dead_lettered", fields...)
		d.deadLetter(job)
		if nackErr := msg.DeadLetter(); nackErr != nil {
			d.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("job failed permanently: %w", err)
	}

	if d.jobQueue != nil {
		retryDelay := apperrors.GetRetryDelay(retryBaseDelay, job.RetryCount, retryMaxDelay)
		notBefore := time.Now().Add(retryDelay)
		delayed := *job
		delayed.NotBefore = &notBefore
		delayed.RetryCount = job.RetryCount + 1

		if enqueueErr := d.jobQueue.Enqueue(ctx, &delayed); enqueueErr == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				d.logger.Error("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
			}
			d.retried(job)
			d.logger.Warn("job_rescheduled", append(fields, zap.Time("not_before", notBefore))...)
			return fmt.Errorf("job failed (retry at %s): %w", notBefore.Format(time.RFC3339), err)
		} else {
			d.logger.Error("job_reenqueue_failed", zap.String("job_id", job.ID.String()), zap.Error(enqueueErr))
		}
	}

	// Fall back to an immediate redelivery
	job.IncrementRetry()
	if nackErr := msg.Requeue(); nackErr != nil {
		d.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	d.retried(job)
	return fmt.Errorf("job failed (will retry): %w", err)
}

func (d *Dispatcher) retried(job *queue.Job) {
	if job.Type == queue.JobTypeReminderDelivery {
		d.metrics.ReminderDelivery("retried")
	}
}

func (d *Dispatcher) deadLetter(job *queue.Job) {
	if job.Type == queue.JobTypeReminderDelivery {
		d.metrics.ReminderDelivery("dead_lettered")
	}
}
