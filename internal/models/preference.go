package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is the half of the working day a meeting type prefers
type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayAny       TimeOfDay = "any"
)

// MeetingTypePreference holds per-meeting-type scheduling limits
type MeetingTypePreference struct {
	MaxPerDay          int       `json:"max_per_day" yaml:"max_per_day" validate:"min=1"`
	PreferredTimeOfDay TimeOfDay `json:"preferred_time_of_day" yaml:"preferred_time_of_day" validate:"omitempty,time_of_day"`
}

// Preference represents a user's scheduling preferences
type Preference struct {
	UserID                 uuid.UUID                        `json:"user_id"`
	WorkStartHour          int                              `json:"work_start_hour" validate:"min=0,max=23"`
	WorkEndHour            int                              `json:"work_end_hour" validate:"min=0,max=23,gtfield=WorkStartHour"`
	MaxMeetingsPerDay      int                              `json:"max_meetings_per_day" validate:"min=1"`
	BufferMinutes          int                              `json:"buffer_minutes" validate:"min=0,max=240"`
	AvoidBackToBack        bool                             `json:"avoid_back_to_back"`
	FocusTimeBlocks        bool                             `json:"focus_time_blocks"`
	PreferredDurations     []int                            `json:"preferred_durations" validate:"dive,min=1,max=1440"`
	WorkingDays            []int                            `json:"working_days" validate:"required,min=1,max=7,dive,weekday"`
	Timezone               string                           `json:"timezone" validate:"required"`
	MeetingTypePreferences map[string]MeetingTypePreference `json:"meeting_type_preferences" validate:"dive,keys,min=1,max=64,endkeys"`
	UpdatedAt              time.Time                        `json:"updated_at"`
}

// DefaultPreference returns the preferences used when a user has never saved any
func DefaultPreference(userID uuid.UUID) *Preference {
	return &Preference{
		UserID:                 userID,
		WorkStartHour:          9,
		WorkEndHour:            17,
		MaxMeetingsPerDay:      8,
		BufferMinutes:          15,
		AvoidBackToBack:        true,
		FocusTimeBlocks:        false,
		PreferredDurations:     []int{30, 60},
		WorkingDays:            []int{1, 2, 3, 4, 5},
		Timezone:               "UTC",
		MeetingTypePreferences: map[string]MeetingTypePreference{},
	}
}

// IsWorkingDay reports whether the weekday is one of the user's working days
func (p *Preference) IsWorkingDay(day time.Weekday) bool {
	for _, d := range p.WorkingDays {
		if time.Weekday(d) == day {
			return true
		}
	}
	return false
}

// Location resolves the preference timezone, falling back to UTC
func (p *Preference) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TypePreference returns the preference for a meeting type, if configured
func (p *Preference) TypePreference(meetingType string) (MeetingTypePreference, bool) {
	if meetingType == "" || p.MeetingTypePreferences == nil {
		return MeetingTypePreference{}, false
	}
	tp, ok := p.MeetingTypePreferences[meetingType]
	return tp, ok
}
