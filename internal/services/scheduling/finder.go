package scheduling

import (
	"sort"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/weights"
)

// Finder enumerates and ranks candidate slots for a day
type Finder struct {
	calculator *Calculator
	scorer     *Scorer
	weights    weights.SlotWeights
}

// NewFinder creates a new optimal slot finder
func NewFinder(w weights.SlotWeights) *Finder {
	return &Finder{
		calculator: NewCalculator(w),
		scorer:     NewScorer(w),
		weights:    w,
	}
}

// FindRequest describes one slot search
type FindRequest struct {
	Preference      *models.Preference
	Date            time.Time
	DurationMinutes int
	MeetingType     string
	TopK            int
	// Distinct makes returned slots mutually non-overlapping, buffer included
	// when the user avoids back-to-back meetings
	Distinct bool
	Existing []models.Meeting
	Now      time.Time
}

// Find returns the top-K slots. An empty result is a valid outcome and carries a reason.
func (f *Finder) Find(req FindRequest) models.SlotResult {
	availability := f.calculator.Calculate(req.Preference, req.Date, req.Existing, req.Now)
	if availability.Reason != "" {
		return models.SlotResult{Slots: []models.Slot{}, Focus: availability.Focus, Reason: availability.Reason}
	}
	if req.DurationMinutes <= 0 {
		return models.SlotResult{Slots: []models.Slot{}, Reason: models.SlotReasonNoAvailability}
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	granularity := time.Duration(f.weights.GranularityMinutes) * time.Minute

	day := StartOfDay(req.Date, req.Preference.Location())
	active := meetingsOnDay(req.Existing, day)
	accepted := make([]models.Interval, 0, len(active))
	typeCount := 0
	for _, m := range active {
		accepted = append(accepted, models.Interval{Start: m.Start, End: m.End})
		if req.MeetingType != "" && m.MeetingType == req.MeetingType {
			typeCount++
		}
	}

	var candidates []models.Slot
	for _, free := range availability.Free {
		for start := alignUp(free.Start, granularity); !start.Add(duration).After(free.End); start = start.Add(granularity) {
			candidates = append(candidates, f.scorer.Score(ScoreInput{
				Candidate:   models.Interval{Start: start, End: start.Add(duration)},
				Accepted:    accepted,
				Preference:  req.Preference,
				MeetingType: req.MeetingType,
				TypeCount:   typeCount,
			}))
		}
	}

	if len(candidates) == 0 {
		return models.SlotResult{Slots: []models.Slot{}, Focus: availability.Focus, Reason: models.SlotReasonNoAvailability}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Start.Before(candidates[j].Start)
	})

	topK := f.topK(req.TopK)
	var slots []models.Slot
	if req.Distinct {
		buffer := time.Duration(0)
		if req.Preference.AvoidBackToBack {
			buffer = time.Duration(req.Preference.BufferMinutes) * time.Minute
		}
		slots = selectDistinct(candidates, topK, buffer)
	} else {
		if len(candidates) > topK {
			candidates = candidates[:topK]
		}
		slots = candidates
	}

	return models.SlotResult{Slots: slots, Focus: availability.Focus}
}

func (f *Finder) topK(requested int) int {
	if requested <= 0 {
		return f.weights.DefaultTopK
	}
	if requested > f.weights.MaxTopK {
		return f.weights.MaxTopK
	}
	return requested
}

// selectDistinct greedily keeps the best slots whose buffered ranges do not overlap
func selectDistinct(ranked []models.Slot, topK int, buffer time.Duration) []models.Slot {
	chosen := make([]models.Slot, 0, topK)
	for _, s := range ranked {
		if len(chosen) == topK {
			break
		}
		expanded := models.Interval{Start: s.Start.Add(-buffer), End: s.End.Add(buffer)}
		conflict := false
		for _, c := range chosen {
			if expanded.Overlaps(c.Interval()) {
				conflict = true
				break
			}
		}
		if !conflict {
			chosen = append(chosen, s)
		}
	}
	return chosen
}

// alignUp rounds t up to the next multiple of step
func alignUp(t time.Time, step time.Duration) time.Time {
	if step <= 0 {
		return t
	}
	aligned := t.Truncate(step)
	if aligned.Before(t) {
		aligned = aligned.Add(step)
	}
	return aligned
}
