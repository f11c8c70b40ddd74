package scheduling

import (
	"fmt"
	"math"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/weights"
)

const (
	FactorPeakProductivity = "Peak productivity time"
	FactorGoodProductivity = "Good productivity time"
	FactorLowProductivity  = "Low productivity time"
	FactorBufferConflict   = "Buffer conflict with adjacent meeting"
)

// Scorer assigns a desirability score to a single candidate slot
type Scorer struct {
	weights weights.SlotWeights
}

// NewScorer creates a new slot scorer
func NewScorer(w weights.SlotWeights) *Scorer {
	return &Scorer{weights: w}
}

// ScoreInput is everything the scorer looks at for one candidate
type ScoreInput struct {
	Candidate   models.Interval
	Accepted    []models.Interval
	Preference  *models.Preference
	MeetingType string
	// TypeCount is the number of meetings of MeetingType already accepted that day
	TypeCount int
}

// Score returns the candidate as a slot with a score in [0, 1] and its non-zero factors
func (s *Scorer) Score(in ScoreInput) models.Slot {
	pref := in.Preference
	loc := pref.Location()
	var factors []string

	tod := s.timeOfDay(in.Candidate, pref, loc)
	score := s.weights.TimeOfDayWeight * tod
	switch {
	case tod >= s.weights.PeakLabelAbove:
		factors = append(factors, FactorPeakProductivity)
	case tod >= s.weights.GoodLabelAbove:
		factors = append(factors, FactorGoodProductivity)
	default:
		factors = append(factors, FactorLowProductivity)
	}

	if pref.AvoidBackToBack && s.adjacent(in.Candidate, in.Accepted, pref.BufferMinutes) {
		score -= s.weights.AdjacencyPenalty
		factors = append(factors, FactorBufferConflict)
	}

	if tp, ok := pref.TypePreference(in.MeetingType); ok {
		half := models.TimeOfDayAfternoon
		if in.Candidate.Start.In(loc).Hour() < 12 {
			half = models.TimeOfDayMorning
		}
		if tp.PreferredTimeOfDay == half && s.weights.TypeAlignmentBonus > 0 {
			score += s.weights.TypeAlignmentBonus
			factors = append(factors, fmt.Sprintf("Matches preferred %s time for %s meetings", half, in.MeetingType))
		}

		if tp.MaxPerDay > 0 && in.TypeCount > 0 {
			penalty := s.weights.LoadPenaltyPerRatio * float64(in.TypeCount) / float64(tp.MaxPerDay)
			if penalty > s.weights.LoadPenaltyFloor {
				penalty = s.weights.LoadPenaltyFloor
			}
			if penalty > 0 {
				score -= penalty
				factors = append(factors, fmt.Sprintf("Daily %s load: %d of %d", in.MeetingType, in.TypeCount, tp.MaxPerDay))
			}
		}
	}

	return models.Slot{
		Start:   in.Candidate.Start,
		End:     in.Candidate.End,
		Score:   round4(clamp01(score)),
		Factors: factors,
	}
}

// timeOfDay is a linear bell peaking at the working-hours midpoint
func (s *Scorer) timeOfDay(candidate models.Interval, pref *models.Preference, loc *time.Location) float64 {
	mid := candidate.Start.Add(candidate.Duration() / 2).In(loc)
	hours := float64(mid.Hour()) + float64(mid.Minute())/60 + float64(mid.Second())/3600

	peak := float64(pref.WorkStartHour+pref.WorkEndHour) / 2
	half := float64(pref.WorkEndHour-pref.WorkStartHour) / 2
	if half <= 0 {
		return s.weights.BoundaryScore
	}

	distance := math.Abs(hours-peak) / half
	if distance > 1 {
		distance = 1
	}
	return s.weights.PeakScore - (s.weights.PeakScore-s.weights.BoundaryScore)*distance
}

// adjacent reports whether the candidate touches or sits within buffer of an accepted interval
func (s *Scorer) adjacent(candidate models.Interval, accepted []models.Interval, bufferMinutes int) bool {
	buffer := time.Duration(bufferMinutes) * time.Minute
	for _, a := range accepted {
		if candidate.Overlaps(a) {
			return true
		}
		var gap time.Duration
		if !a.End.After(candidate.Start) {
			gap = candidate.Start.Sub(a.End)
		} else {
			gap = a.Start.Sub(candidate.End)
		}
		if gap == 0 || gap < buffer {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
