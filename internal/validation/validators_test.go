package validation

import (
	"testing"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
)

func TestValidatePreference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*models.Preference)
		expectError bool
	}{
		{"defaults are valid", func(*models.Preference) {}, false},
		{"start equal to end", func(p *models.Preference) { p.WorkEndHour = p.WorkStartHour }, true},
		{"start after end", func(p *models.Preference) { p.WorkStartHour, p.WorkEndHour = 18, 9 }, true},
		{"hour out of range", func(p *models.Preference) { p.WorkEndHour = 24 }, true},
		{"zero max meetings", func(p *models.Preference) { p.MaxMeetingsPerDay = 0 }, true},
		{"negative buffer", func(p *models.Preference) { p.BufferMinutes = -5 }, true},
		{"empty working days", func(p *models.Preference) { p.WorkingDays = nil }, true},
		{"weekday out of range", func(p *models.Preference) { p.WorkingDays = []int{1, 7} }, true},
		{"duplicate working day", func(p *models.Preference) { p.WorkingDays = []int{1, 1} }, true},
		{"sunday allowed", func(p *models.Preference) { p.WorkingDays = []int{0} }, false},
		{"non-positive duration", func(p *models.Preference) { p.PreferredDurations = []int{30, 0} }, true},
		{"unknown timezone", func(p *models.Preference) { p.Timezone = "Mars/Olympus" }, true},
		{"missing timezone", func(p *models.Preference) { p.Timezone = "" }, true},
		{
			name: "valid meeting type preference",
			mutate: func(p *models.Preference) {
				p.MeetingTypePreferences["demo"] = models.MeetingTypePreference{MaxPerDay: 2, PreferredTimeOfDay: models.TimeOfDayMorning}
			},
		},
		{
			name: "invalid time of day",
			mutate: func(p *models.Preference) {
				p.MeetingTypePreferences["demo"] = models.MeetingTypePreference{MaxPerDay: 2, PreferredTimeOfDay: "evening"}
			},
			expectError: true,
		},
		{
			name: "zero per-type max",
			mutate: func(p *models.Preference) {
				p.MeetingTypePreferences["demo"] = models.MeetingTypePreference{MaxPerDay: 0}
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := models.DefaultPreference(uuid.New())
			tt.mutate(p)
			err := ValidatePreference(p)
			if tt.expectError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	if got := SanitizeText("  demo\x00 call\t\n "); got != "demo call" {
		t.Errorf("Expected sanitized text, got %q", got)
	}
}

func TestValidateTimeOfDay(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"morning", "afternoon", "any"} {
		if err := ValidateTimeOfDay(v); err != nil {
			t.Errorf("Expected %q to be valid, got %v", v, err)
		}
	}
	if err := ValidateTimeOfDay("night"); err == nil {
		t.Error("Expected error for invalid value")
	}
}
