package assistant

import (
	"context"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/cache"
	"github.com/benvon/smart-scheduler/internal/database"
	"github.com/benvon/smart-scheduler/internal/metrics"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/benvon/smart-scheduler/internal/services/prep"
	"github.com/benvon/smart-scheduler/internal/services/reminders"
	"github.com/benvon/smart-scheduler/internal/services/risk"
	"github.com/benvon/smart-scheduler/internal/services/scheduling"
	"github.com/benvon/smart-scheduler/internal/weights"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// historyLimit bounds the interactions read per contact
const historyLimit = 100

// PreferenceStore is the preference accessor the assistant reads through
type PreferenceStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	Resolve(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	Set(ctx context.Context, p *models.Preference) (*models.Preference, error)
}

// SlotCache stores scored slot searches
type SlotCache interface {
	Get(ctx context.Context, key cache.SlotKey) (*models.SlotResult, bool, error)
	Set(ctx context.Context, key cache.SlotKey, result *models.SlotResult) error
}

// Deps are the collaborators of an Assistant. SlotCache, Queue and Metrics are optional.
type Deps struct {
	Preferences PreferenceStore
	Meetings    database.MeetingRepositoryInterface
	CRM         database.CRMRepositoryInterface
	Predictions database.RiskPredictionRepositoryInterface
	Preps       database.MeetingPrepRepositoryInterface
	Reminders   database.ReminderRepositoryInterface
	SlotCache   SlotCache
	Queue       queue.Enqueuer
	Metrics     *metrics.Metrics
	Weights     *weights.Weights
	Logger      *zap.Logger
	Clock       func() time.Time
	// Workers bounds PrepareUpcoming concurrency
	Workers int
	// Backoff builds the retry policy for upstream failures
	Backoff func() backoff.BackOff
}

// Assistant is the scheduling orchestrator. Computations run on snapshots
// read from the stores; results are written only after they complete.
type Assistant struct {
	prefs       PreferenceStore
	meetings    database.MeetingRepositoryInterface
	crm         database.CRMRepositoryInterface
	predictions database.RiskPredictionRepositoryInterface
	preps       database.MeetingPrepRepositoryInterface
	reminders   database.ReminderRepositoryInterface
	slotCache   SlotCache
	queue       queue.Enqueuer
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
	workers     int
	newBackoff  func() backoff.BackOff

	finder    *scheduling.Finder
	predictor *risk.Predictor
	generator *prep.Generator
	scheduler *reminders.Scheduler
}

// New creates a new Assistant
func New(d Deps) *Assistant {
	w := d.Weights
	if w == nil {
		w = weights.Default()
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	workers := d.Workers
	if workers < 1 {
		workers = 4
	}
	newBackoff := d.Backoff
	if newBackoff == nil {
		newBackoff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 2 * time.Second
			return b
		}
	}

	return &Assistant{
		prefs:       d.Preferences,
		meetings:    d.Meetings,
		crm:         d.CRM,
		predictions: d.Predictions,
		preps:       d.Preps,
		reminders:   d.Reminders,
		slotCache:   d.SlotCache,
		queue:       d.Queue,
		metrics:     d.Metrics,
		logger:      logger,
		now:         clock,
		workers:     workers,
		newBackoff:  newBackoff,
		finder:      scheduling.NewFinder(w.Slots),
		predictor:   risk.NewPredictor(w.Risk),
		generator:   prep.NewGenerator(w.Prep),
		scheduler:   reminders.NewScheduler(w.Reminders),
	}
}

// retry runs fn, retrying once with backoff when it fails with UpstreamUnavailable
func retry[T any](ctx context.Context, a *Assistant, fn func() (T, error)) (T, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(a.newBackoff(), 1), ctx)
	return backoff.RetryWithData(func() (T, error) {
		v, err := fn()
		if err != nil && !apperrors.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy)
}

// loadMeeting returns the meeting when it exists and belongs to userID.
// Someone else's meeting is reported as not found.
func (a *Assistant) loadMeeting(ctx context.Context, op string, userID, meetingID uuid.UUID) (*models.Meeting, error) {
	m, err := retry(ctx, a, func() (*models.Meeting, error) {
		return a.meetings.GetByID(ctx, meetingID)
	})
	if err != nil {
		return nil, err
	}
	if m.OwnerID != userID {
		return nil, apperrors.NotFound(op, "meeting")
	}
	return m, nil
}

// location resolves the user's timezone, falling back to UTC when preferences cannot be read
func (a *Assistant) location(ctx context.Context, userID uuid.UUID) *time.Location {
	p, err := a.prefs.Resolve(ctx, userID)
	if err != nil {
		a.logger.Warn("preference_lookup_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return time.UTC
	}
	return p.Location()
}

func (a *Assistant) observe(operation string, start time.Time, err *error) {
	a.metrics.ObserveOperation(operation, *err, time.Since(start))
}
