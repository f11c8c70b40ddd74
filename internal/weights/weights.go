package weights

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Weights holds every tunable coefficient of the assistant. None of these are
// business truths; they are defaults meant to be tuned from a YAML file.
type Weights struct {
	Slots     SlotWeights     `yaml:"slots"`
	Risk      RiskWeights     `yaml:"risk"`
	Prep      PrepWeights     `yaml:"prep"`
	Reminders ReminderWeights `yaml:"reminders"`
}

// SlotWeights configures availability and slot scoring
type SlotWeights struct {
	GranularityMinutes  int     `yaml:"granularity_minutes"`
	MinFocusMinutes     int     `yaml:"min_focus_minutes"`
	TimeOfDayWeight     float64 `yaml:"time_of_day_weight"`
	PeakScore           float64 `yaml:"peak_score"`
	BoundaryScore       float64 `yaml:"boundary_score"`
	PeakLabelAbove      float64 `yaml:"peak_label_above"`
	GoodLabelAbove      float64 `yaml:"good_label_above"`
	AdjacencyPenalty    float64 `yaml:"adjacency_penalty"`
	TypeAlignmentBonus  float64 `yaml:"type_alignment_bonus"`
	LoadPenaltyPerRatio float64 `yaml:"load_penalty_per_ratio"`
	LoadPenaltyFloor    float64 `yaml:"load_penalty_floor"`
	DefaultTopK         int     `yaml:"default_top_k"`
	MaxTopK             int     `yaml:"max_top_k"`
}

// RiskSignal names a no-show risk signal
type RiskSignal string

const (
	SignalFirstMeeting        RiskSignal = "first_meeting"
	SignalNoConfirmation      RiskSignal = "no_confirmation"
	SignalLowAttendanceSlot   RiskSignal = "low_attendance_slot"
	SignalMultipleReschedules RiskSignal = "multiple_reschedules"
	SignalPriorNoShows        RiskSignal = "prior_no_shows"
)

// AllSignals lists signals in declaration order, used to break contribution ties
var AllSignals = []RiskSignal{
	SignalNoConfirmation,
	SignalMultipleReschedules,
	SignalFirstMeeting,
	SignalPriorNoShows,
	SignalLowAttendanceSlot,
}

// AttendanceWindow is a structural low-attendance window, e.g. Friday from 16:00
type AttendanceWindow struct {
	Weekday   time.Weekday `yaml:"weekday"`
	StartHour int          `yaml:"start_hour"`
	EndHour   int          `yaml:"end_hour"`
}

// Contains reports whether t falls inside the window
func (w AttendanceWindow) Contains(t time.Time) bool {
	return t.Weekday() == w.Weekday && t.Hour() >= w.StartHour && t.Hour() < w.EndHour
}

// RiskWeights configures the no-show predictor
type RiskWeights struct {
	Signals             map[RiskSignal]float64 `yaml:"signals"`
	Labels              map[RiskSignal]string  `yaml:"labels"`
	Actions             map[RiskSignal]string  `yaml:"actions"`
	RescheduleThreshold int                    `yaml:"reschedule_threshold"`
	MaxActionFactors    int                    `yaml:"max_action_factors"`
	LowAttendance       []AttendanceWindow     `yaml:"low_attendance_windows"`
	BaseConfidence      float64                `yaml:"base_confidence"`
	MaxConfidence       float64                `yaml:"max_confidence"`
	ConfidenceScale     float64                `yaml:"confidence_scale"`
	DegradedFactor      float64                `yaml:"degraded_confidence_factor"`
}

// PrepWeights configures the talking-point rules
type PrepWeights struct {
	MaxRecentInteractions int     `yaml:"max_recent_interactions"`
	RenewalThresholdDays  int     `yaml:"renewal_threshold_days"`
	GrowthHighPct         float64 `yaml:"growth_high_pct"`
	GrowthLowPct          float64 `yaml:"growth_low_pct"`
}

// ReminderWeights configures reminder lead times
type ReminderWeights struct {
	PreparationLead time.Duration `yaml:"preparation_lead"`
	MediumRiskLead  time.Duration `yaml:"medium_risk_lead"`
	HighRiskLead    time.Duration `yaml:"high_risk_lead"`
	FollowUpDelay   time.Duration `yaml:"follow_up_delay"`
}

// Default returns the built-in weights
func Default() *Weights {
	return &Weights{
		Slots: SlotWeights{
			GranularityMinutes:  15,
			MinFocusMinutes:     90,
			TimeOfDayWeight:     0.85,
			PeakScore:           1.0,
			BoundaryScore:       0.3,
			PeakLabelAbove:      0.85,
			GoodLabelAbove:      0.6,
			AdjacencyPenalty:    0.3,
			TypeAlignmentBonus:  0.15,
			LoadPenaltyPerRatio: 0.1,
			LoadPenaltyFloor:    0.3,
			DefaultTopK:         5,
			MaxTopK:             50,
		},
		Risk: RiskWeights{
			Signals: map[RiskSignal]float64{
				SignalFirstMeeting:        0.4,
				SignalNoConfirmation:      0.5,
				SignalLowAttendanceSlot:   0.3,
				SignalMultipleReschedules: 0.4,
				SignalPriorNoShows:        0.35,
			},
			Labels: map[RiskSignal]string{
				SignalFirstMeeting:        "First meeting with this attendee",
				SignalNoConfirmation:      "No confirmation response",
				SignalLowAttendanceSlot:   "Historically low-attendance day and time",
				SignalMultipleReschedules: "Multiple prior reschedules",
				SignalPriorNoShows:        "Prior no-shows",
			},
			Actions: map[RiskSignal]string{
				SignalFirstMeeting:        "Send an introduction and agenda ahead of the meeting",
				SignalNoConfirmation:      "Call to confirm attendance",
				SignalLowAttendanceSlot:   "Offer a mid-week morning alternative",
				SignalMultipleReschedules: "Propose a shorter or more flexible format",
				SignalPriorNoShows:        "Send an SMS reminder one hour before",
			},
			RescheduleThreshold: 2,
			MaxActionFactors:    3,
			LowAttendance: []AttendanceWindow{
				{Weekday: time.Friday, StartHour: 16, EndHour: 24},
				{Weekday: time.Monday, StartHour: 0, EndHour: 10},
			},
			BaseConfidence:  0.1,
			MaxConfidence:   0.95,
			ConfidenceScale: 10,
			DegradedFactor:  0.5,
		},
		Prep: PrepWeights{
			MaxRecentInteractions: 5,
			RenewalThresholdDays:  60,
			GrowthHighPct:         20,
			GrowthLowPct:          -10,
		},
		Reminders: ReminderWeights{
			PreparationLead: time.Hour,
			MediumRiskLead:  90 * time.Minute,
			HighRiskLead:    2 * time.Hour,
			FollowUpDelay:   15 * time.Minute,
		},
	}
}

// Load reads weights from a YAML file layered over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Weights, error) {
	w := Default()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	if err := yaml.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("failed to parse weights file: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights file: %w", err)
	}
	return w, nil
}

// Validate checks the invariants the components rely on
func (w *Weights) Validate() error {
	var errs []error
	s := w.Slots
	if s.GranularityMinutes <= 0 {
		errs = append(errs, errors.New("slots.granularity_minutes must be positive"))
	}
	if s.BoundaryScore < 0 || s.BoundaryScore > s.PeakScore {
		errs = append(errs, errors.New("slots.boundary_score must be within [0, peak_score]"))
	}
	if s.AdjacencyPenalty < 0 || s.TypeAlignmentBonus < 0 || s.LoadPenaltyPerRatio < 0 || s.LoadPenaltyFloor < 0 {
		errs = append(errs, errors.New("slots penalties and bonuses must be non-negative magnitudes"))
	}
	if s.DefaultTopK <= 0 || s.MaxTopK < s.DefaultTopK {
		errs = append(errs, errors.New("slots.default_top_k must be positive and not exceed max_top_k"))
	}
	for signal, weight := range w.Risk.Signals {
		// Negative weights would break monotonicity of the predictor
		if weight < 0 {
			errs = append(errs, fmt.Errorf("risk.signals.%s must be non-negative", signal))
		}
	}
	r := w.Risk
	if r.BaseConfidence < 0 || r.MaxConfidence > 1 || r.BaseConfidence > r.MaxConfidence {
		errs = append(errs, errors.New("risk confidence bounds must satisfy 0 <= base <= max <= 1"))
	}
	if r.ConfidenceScale <= 0 {
		errs = append(errs, errors.New("risk.confidence_scale must be positive"))
	}
	if r.DegradedFactor < 0 || r.DegradedFactor > 1 {
		errs = append(errs, errors.New("risk.degraded_confidence_factor must be within [0, 1]"))
	}
	if w.Prep.MaxRecentInteractions <= 0 || w.Prep.MaxRecentInteractions > 5 {
		errs = append(errs, errors.New("prep.max_recent_interactions must be within [1, 5]"))
	}
	rm := w.Reminders
	if rm.PreparationLead < 0 || rm.MediumRiskLead < 0 || rm.HighRiskLead < 0 || rm.FollowUpDelay < 0 {
		errs = append(errs, errors.New("reminder durations must be non-negative"))
	}
	return errors.Join(errs...)
}

// SignalWeight returns the configured weight for a signal, zero if unset
func (r RiskWeights) SignalWeight(s RiskSignal) float64 {
	return r.Signals[s]
}

// Label returns the display label for a signal
func (r RiskWeights) Label(s RiskSignal) string {
	if label, ok := r.Labels[s]; ok && label != "" {
		return label
	}
	return string(s)
}
