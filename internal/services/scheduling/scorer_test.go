package scheduling

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/weights"
	"github.com/google/uuid"
)

func slotAt(hour, minute, length int) models.Interval {
	start := at(monday, hour, minute)
	return models.Interval{Start: start, End: start.Add(time.Duration(length) * time.Minute)}
}

func TestScorer_Score(t *testing.T) {
	t.Parallel()

	demoPref := func(p *models.Preference) {
		p.MeetingTypePreferences["demo"] = models.MeetingTypePreference{
			MaxPerDay:          4,
			PreferredTimeOfDay: models.TimeOfDayMorning,
		}
	}

	tests := []struct {
		name        string
		pref        func(*models.Preference)
		in          ScoreInput
		wantScore   float64
		wantFactors []string
	}{
		{
			name:        "midpoint of working hours is peak",
			in:          ScoreInput{Candidate: slotAt(12, 45, 30)},
			wantScore:   0.85,
			wantFactors: []string{FactorPeakProductivity},
		},
		{
			name:        "start of day scores low",
			in:          ScoreInput{Candidate: slotAt(9, 0, 30)},
			wantScore:   0.2922,
			wantFactors: []string{FactorLowProductivity},
		},
		{
			name: "touching an accepted meeting is penalized",
			in: ScoreInput{
				Candidate: slotAt(12, 30, 30),
				Accepted:  []models.Interval{slotAt(13, 0, 30)},
			},
			wantScore:   0.5128,
			wantFactors: []string{FactorPeakProductivity, FactorBufferConflict},
		},
		{
			name: "adjacency ignored when back-to-back is allowed",
			pref: func(p *models.Preference) { p.AvoidBackToBack = false },
			in: ScoreInput{
				Candidate: slotAt(12, 30, 30),
				Accepted:  []models.Interval{slotAt(13, 0, 30)},
			},
			wantScore:   0.8128,
			wantFactors: []string{FactorPeakProductivity},
		},
		{
			name: "gap equal to buffer is not a conflict",
			in: ScoreInput{
				Candidate: slotAt(12, 30, 30),
				Accepted:  []models.Interval{slotAt(13, 15, 30)},
			},
			wantScore:   0.8128,
			wantFactors: []string{FactorPeakProductivity},
		},
		{
			name:        "meeting type aligned with preferred half",
			pref:        demoPref,
			in:          ScoreInput{Candidate: slotAt(11, 0, 60), MeetingType: "demo"},
			wantScore:   0.7769,
			wantFactors: []string{FactorGoodProductivity, "Matches preferred morning time for demo meetings"},
		},
		{
			name:        "load of the meeting type reduces score",
			pref:        demoPref,
			in:          ScoreInput{Candidate: slotAt(14, 0, 60), MeetingType: "demo", TypeCount: 2},
			wantScore:   0.5769,
			wantFactors: []string{FactorGoodProductivity, "Daily demo load: 2 of 4"},
		},
		{
			name:        "load penalty is floored",
			pref:        demoPref,
			in:          ScoreInput{Candidate: slotAt(14, 0, 60), MeetingType: "demo", TypeCount: 40},
			wantScore:   0.3269,
			wantFactors: []string{FactorGoodProductivity, "Daily demo load: 40 of 4"},
		},
	}

	scorer := NewScorer(weights.Default().Slots)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pref := models.DefaultPreference(uuid.New())
			if tt.pref != nil {
				tt.pref(pref)
			}
			in := tt.in
			in.Preference = pref

			got := scorer.Score(in)
			if math.Abs(got.Score-tt.wantScore) > 1e-4 {
				t.Errorf("Expected score %v, got %v", tt.wantScore, got.Score)
			}
			if !slices.Equal(got.Factors, tt.wantFactors) {
				t.Errorf("Expected factors %v, got %v", tt.wantFactors, got.Factors)
			}
			if !got.Start.Equal(in.Candidate.Start) || !got.End.Equal(in.Candidate.End) {
				t.Errorf("Expected slot to keep candidate bounds")
			}
		})
	}
}

func TestScorer_ScoreIsClamped(t *testing.T) {
	t.Parallel()

	w := weights.Default().Slots
	w.TimeOfDayWeight = 1
	w.TypeAlignmentBonus = 0.5
	w.AdjacencyPenalty = 5
	scorer := NewScorer(w)

	pref := models.DefaultPreference(uuid.New())
	pref.MeetingTypePreferences["review"] = models.MeetingTypePreference{MaxPerDay: 1, PreferredTimeOfDay: models.TimeOfDayAfternoon}

	high := scorer.Score(ScoreInput{Candidate: slotAt(12, 45, 30), Preference: pref, MeetingType: "review"})
	if high.Score != 1 {
		t.Errorf("Expected score clamped to 1, got %v", high.Score)
	}

	low := scorer.Score(ScoreInput{
		Candidate:  slotAt(9, 0, 30),
		Accepted:   []models.Interval{slotAt(9, 30, 30)},
		Preference: pref,
	})
	if low.Score != 0 {
		t.Errorf("Expected score clamped to 0, got %v", low.Score)
	}
}
