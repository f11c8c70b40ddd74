package scheduling

import (
	"sort"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/weights"
)

// Calculator turns a user's preferences and existing meetings into bookable intervals
type Calculator struct {
	weights weights.SlotWeights
}

// NewCalculator creates a new availability calculator
func NewCalculator(w weights.SlotWeights) *Calculator {
	return &Calculator{weights: w}
}

// Calculate returns the free intervals for the calendar day of date, interpreted
// in the preference timezone. A zero now disables past-time trimming.
func (c *Calculator) Calculate(pref *models.Preference, date time.Time, meetings []models.Meeting, now time.Time) models.Availability {
	day := StartOfDay(date, pref.Location())
	if !pref.IsWorkingDay(day.Weekday()) {
		return models.Availability{Free: []models.Interval{}, Reason: models.SlotReasonNoWorkingDay}
	}

	window := models.Interval{
		Start: wallClock(day, pref.WorkStartHour),
		End:   wallClock(day, pref.WorkEndHour),
	}

	active := meetingsOnDay(meetings, day)
	if pref.MaxMeetingsPerDay > 0 && len(active) >= pref.MaxMeetingsPerDay {
		return models.Availability{Free: []models.Interval{}, Reason: models.SlotReasonNoAvailability}
	}

	buffer := time.Duration(pref.BufferMinutes) * time.Minute
	free := []models.Interval{window}
	for _, m := range active {
		free = subtract(free, models.Interval{Start: m.Start.Add(-buffer), End: m.End.Add(buffer)})
	}

	if !now.IsZero() {
		free = trimBefore(free, now)
	}

	var focus *models.Interval
	if pref.FocusTimeBlocks {
		free, focus = reserveFocus(free, time.Duration(c.weights.MinFocusMinutes)*time.Minute)
	}

	result := models.Availability{Free: free, Focus: focus}
	if len(free) == 0 {
		result.Free = []models.Interval{}
		result.Reason = models.SlotReasonNoAvailability
	}
	return result
}

// StartOfDay returns midnight of date's calendar day in loc
func StartOfDay(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// wallClock returns hour:00 on day's date in day's location. Hours are
// wall-clock so the window holds on DST transition days.
func wallClock(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, day.Location())
}

// meetingsOnDay returns the non-cancelled meetings touching the day, sorted by start
func meetingsOnDay(meetings []models.Meeting, day time.Time) []models.Meeting {
	dayRange := models.Interval{Start: day, End: day.AddDate(0, 0, 1)}
	var active []models.Meeting
	for _, m := range meetings {
		if !m.IsActive() {
			continue
		}
		if (models.Interval{Start: m.Start, End: m.End}).Overlaps(dayRange) {
			active = append(active, m)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Start.Before(active[j].Start) })
	return active
}

// subtract removes block from every interval in free
func subtract(free []models.Interval, block models.Interval) []models.Interval {
	out := make([]models.Interval, 0, len(free)+1)
	for _, f := range free {
		if !f.Overlaps(block) {
			out = append(out, f)
			continue
		}
		if block.Start.After(f.Start) {
			out = append(out, models.Interval{Start: f.Start, End: block.Start})
		}
		if block.End.Before(f.End) {
			out = append(out, models.Interval{Start: block.End, End: f.End})
		}
	}
	return out
}

func trimBefore(free []models.Interval, now time.Time) []models.Interval {
	out := make([]models.Interval, 0, len(free))
	for _, f := range free {
		if !f.End.After(now) {
			continue
		}
		if f.Start.Before(now) {
			f.Start = now
		}
		out = append(out, f)
	}
	return out
}

// reserveFocus removes the largest interval of at least minLength; the earliest wins ties
func reserveFocus(free []models.Interval, minLength time.Duration) ([]models.Interval, *models.Interval) {
	best := -1
	for i, f := range free {
		if f.Duration() < minLength {
			continue
		}
		if best == -1 || f.Duration() > free[best].Duration() {
			best = i
		}
	}
	if best == -1 {
		return free, nil
	}
	focus := free[best]
	out := make([]models.Interval, 0, len(free)-1)
	out = append(out, free[:best]...)
	out = append(out, free[best+1:]...)
	return out, &focus
}
