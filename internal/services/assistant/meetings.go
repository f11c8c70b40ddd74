package assistant

import (
	"context"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/services/prep"
	"github.com/benvon/smart-scheduler/internal/services/risk"
	"github.com/benvon/smart-scheduler/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// history is an attendee's history plus whether the CRM could be reached
type history struct {
	value       *models.InteractionHistory
	unavailable bool
}

// fetchHistory reads the attendee history. An unreachable CRM degrades
// rather than fails.
func (a *Assistant) fetchHistory(ctx context.Context, contactID uuid.UUID) history {
	h, err := retry(ctx, a, func() (*models.InteractionHistory, error) {
		return a.crm.GetHistory(ctx, contactID, historyLimit)
	})
	if err != nil {
		a.logger.Warn("interaction_history_unavailable",
			zap.String("contact_id", contactID.String()),
			zap.Error(err),
		)
		return history{unavailable: true}
	}
	return history{value: h}
}

// PredictNoShow computes and stores a no-show prediction for the user's meeting
func (a *Assistant) PredictNoShow(ctx context.Context, userID, meetingID uuid.UUID) (result models.Result[*models.RiskPrediction], err error) {
	const op = "predictNoShow"
	defer a.observe(op, time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, op, attribute.String("meeting_id", meetingID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	m, err := a.loadMeeting(ctx, op, userID, meetingID)
	if err != nil {
		return result, err
	}

	result, err = a.predict(ctx, m, a.fetchHistory(ctx, m.AttendeeID), a.location(ctx, userID))
	if err == nil {
		span.SetAttributes(attribute.Float64("probability", result.Value.Probability))
	}
	return result, err
}

func (a *Assistant) predict(ctx context.Context, m *models.Meeting, h history, loc *time.Location) (models.Result[*models.RiskPrediction], error) {
	prediction := a.predictor.Predict(risk.Input{
		Meeting:            m,
		History:            h.value,
		HistoryUnavailable: h.unavailable,
		Location:           loc,
		Now:                a.now(),
	})

	if _, err := retry(ctx, a, func() (struct{}, error) {
		return struct{}{}, a.predictions.Create(ctx, &prediction)
	}); err != nil {
		return models.Result[*models.RiskPrediction]{}, err
	}

	result := models.Live(&prediction)
	if h.unavailable {
		result = models.Fallback(&prediction)
		a.metrics.Fallback("risk")
	}
	a.metrics.Prediction(string(prediction.Level()), string(result.Kind))
	return result, nil
}

// GenerateMeetingPrep builds and stores the preparation brief for the user's meeting
func (a *Assistant) GenerateMeetingPrep(ctx context.Context, userID, meetingID uuid.UUID) (result models.Result[*models.MeetingPrep], err error) {
	const op = "generateMeetingPrep"
	defer a.observe(op, time.Now(), &err)
	ctx, span := telemetry.StartSpan(ctx, op, attribute.String("meeting_id", meetingID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	m, err := a.loadMeeting(ctx, op, userID, meetingID)
	if err != nil {
		return result, err
	}

	return a.prepare(ctx, m, a.fetchHistory(ctx, m.AttendeeID), nil)
}

// prepare builds the brief. A nil prediction is read from the store, or
// computed when none exists yet.
func (a *Assistant) prepare(ctx context.Context, m *models.Meeting, h history, prediction *models.RiskPrediction) (models.Result[*models.MeetingPrep], error) {
	var empty models.Result[*models.MeetingPrep]
	degraded := h.unavailable

	contact, err := retry(ctx, a, func() (*models.ContactSnapshot, error) {
		return a.crm.GetContact(ctx, m.AttendeeID)
	})
	if err != nil {
		a.logger.Warn("contact_unavailable",
			zap.String("meeting_id", m.ID.String()),
			zap.String("contact_id", m.AttendeeID.String()),
			zap.Error(err),
		)
		contact = nil
		degraded = true
	}

	if prediction == nil {
		prediction, err = a.latestPrediction(ctx, m, h)
		if err != nil {
			return empty, err
		}
	}

	brief := a.generator.Generate(prep.Input{
		Meeting:  m,
		Contact:  contact,
		History:  h.value,
		Risk:     prediction,
		Degraded: degraded,
		Now:      a.now(),
	})

	if _, err := retry(ctx, a, func() (struct{}, error) {
		return struct{}{}, a.preps.Replace(ctx, &brief)
	}); err != nil {
		return empty, err
	}

	if brief.Degraded {
		a.metrics.Fallback("prep")
		return models.Fallback(&brief), nil
	}
	return models.Live(&brief), nil
}

func (a *Assistant) latestPrediction(ctx context.Context, m *models.Meeting, h history) (*models.RiskPrediction, error) {
	stored, err := retry(ctx, a, func() (*models.RiskPrediction, error) {
		return a.predictions.GetLatestByMeetingID(ctx, m.ID)
	})
	if err == nil {
		return stored, nil
	}
	if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	fresh, err := a.predict(ctx, m, h, a.location(ctx, m.OwnerID))
	if err != nil {
		return nil, err
	}
	return fresh.Value, nil
}
