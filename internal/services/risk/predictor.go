package risk

import (
	"math"
	"sort"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/weights"
	"github.com/google/uuid"
)

// Predictor estimates the probability that a meeting ends as a no-show
type Predictor struct {
	weights weights.RiskWeights
}

// NewPredictor creates a new no-show risk predictor
func NewPredictor(w weights.RiskWeights) *Predictor {
	return &Predictor{weights: w}
}

// Input is the snapshot a prediction is computed from
type Input struct {
	Meeting *models.Meeting
	// History is nil when the attendee has no recorded history
	History *models.InteractionHistory
	// HistoryUnavailable marks that the history store could not be reached;
	// only structural signals are used and confidence is reduced
	HistoryUnavailable bool
	// Location is the timezone used for day/time signals, defaulting to the meeting's own
	Location *time.Location
	Now      time.Time
}

// Signals returns the risk signals that fire for the input, in declaration order
func (p *Predictor) Signals(in Input) []weights.RiskSignal {
	m := in.Meeting
	history := in.History
	if in.HistoryUnavailable {
		history = nil
	}

	start := m.Start
	if in.Location != nil {
		start = start.In(in.Location)
	}

	fired := map[weights.RiskSignal]bool{}

	if !in.HistoryUnavailable && (history == nil || history.TotalMeetings == 0) {
		fired[weights.SignalFirstMeeting] = true
	}

	if m.Confirmation != models.ConfirmationConfirmed ||
		(history != nil && history.LastConfirmationStatus == models.LastConfirmationNoResponse) {
		fired[weights.SignalNoConfirmation] = true
	}

	reschedules := m.RescheduleCount
	if history != nil && history.PriorReschedules > reschedules {
		reschedules = history.PriorReschedules
	}
	if p.weights.RescheduleThreshold > 0 && reschedules >= p.weights.RescheduleThreshold {
		fired[weights.SignalMultipleReschedules] = true
	}

	if history != nil && history.PriorNoShows > 0 {
		fired[weights.SignalPriorNoShows] = true
	}

	if p.lowAttendance(start, history) {
		fired[weights.SignalLowAttendanceSlot] = true
	}

	signals := make([]weights.RiskSignal, 0, len(fired))
	for _, s := range weights.AllSignals {
		if fired[s] {
			signals = append(signals, s)
		}
	}
	return signals
}

func (p *Predictor) lowAttendance(start time.Time, history *models.InteractionHistory) bool {
	if history != nil {
		for _, slot := range history.NoShowSlots {
			if slot.Weekday == start.Weekday() && slot.Hour == start.Hour() {
				return true
			}
		}
	}
	for _, w := range p.weights.LowAttendance {
		if w.Contains(start) {
			return true
		}
	}
	return false
}

// Predict computes a risk prediction. It never fails: missing history only
// lowers confidence.
func (p *Predictor) Predict(in Input) models.RiskPrediction {
	signals := p.Signals(in)

	// stable sort keeps declaration order on equal contributions
	sort.SliceStable(signals, func(i, j int) bool {
		return p.weights.SignalWeight(signals[i]) > p.weights.SignalWeight(signals[j])
	})

	score := 0.0
	factors := make([]string, 0, len(signals))
	contributing := make([]weights.RiskSignal, 0, len(signals))
	for _, s := range signals {
		w := p.weights.SignalWeight(s)
		if w <= 0 {
			continue
		}
		score += w
		factors = append(factors, p.weights.Label(s))
		contributing = append(contributing, s)
	}

	return models.RiskPrediction{
		ID:                 uuid.New(),
		MeetingID:          in.Meeting.ID,
		Probability:        round4(1 - math.Exp(-score)),
		RiskFactors:        factors,
		RecommendedActions: p.actions(contributing),
		Confidence:         round4(p.confidence(in)),
		PredictedAt:        in.Now,
	}
}

// actions looks up the rule table for the top contributing signals
func (p *Predictor) actions(ranked []weights.RiskSignal) []string {
	limit := p.weights.MaxActionFactors
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	seen := map[string]bool{}
	actions := make([]string, 0, limit)
	for _, s := range ranked[:limit] {
		action := p.weights.Actions[s]
		if action == "" || seen[action] {
			continue
		}
		seen[action] = true
		actions = append(actions, action)
	}
	return actions
}

// confidence saturates with the amount of history available
func (p *Predictor) confidence(in Input) float64 {
	base := p.weights.BaseConfidence
	if in.HistoryUnavailable {
		return clamp01(base * p.weights.DegradedFactor)
	}
	n := float64(in.History.SignalVolume())
	c := base + (p.weights.MaxConfidence-base)*(1-math.Exp(-n/p.weights.ConfidenceScale))
	return clamp01(c)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
