package models

import "time"

// SlotReason explains an empty slot result. Empty results are valid outcomes, not errors.
type SlotReason string

const (
	SlotReasonNoAvailability SlotReason = "NoAvailability"
	SlotReasonNoWorkingDay   SlotReason = "NoWorkingDay"
)

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the interval length
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether two intervals share any time
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Availability is the bookable time for one day
type Availability struct {
	Free   []Interval `json:"free"`
	Focus  *Interval  `json:"focus,omitempty"`
	Reason SlotReason `json:"reason,omitempty"`
}

// Slot is a scored candidate meeting time
type Slot struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Score   float64   `json:"score"`
	Factors []string  `json:"factors"`
}

// Interval returns the slot's time range
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// SlotResult is the response of a slot search
type SlotResult struct {
	Slots  []Slot     `json:"slots"`
	Focus  *Interval  `json:"focus,omitempty"`
	Reason SlotReason `json:"reason,omitempty"`
}
