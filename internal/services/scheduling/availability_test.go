package scheduling

import (
	"testing"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/benvon/smart-scheduler/internal/weights"
	"github.com/google/uuid"
)

// monday is a working day well in the future
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func meeting(start, end time.Time) models.Meeting {
	return models.Meeting{
		ID:     uuid.New(),
		Start:  start,
		End:    end,
		Status: models.MeetingStatusScheduled,
	}
}

func TestCalculator_Calculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pref       func(*models.Preference)
		date       time.Time
		meetings   []models.Meeting
		now        time.Time
		wantFree   []models.Interval
		wantFocus  *models.Interval
		wantReason models.SlotReason
	}{
		{
			name:     "empty day is the working window",
			date:     monday,
			wantFree: []models.Interval{{Start: at(monday, 9, 0), End: at(monday, 17, 0)}},
		},
		{
			name:     "meeting is removed with buffer on both sides",
			date:     monday,
			meetings: []models.Meeting{meeting(at(monday, 10, 0), at(monday, 10, 30))},
			wantFree: []models.Interval{
				{Start: at(monday, 9, 0), End: at(monday, 9, 45)},
				{Start: at(monday, 10, 45), End: at(monday, 17, 0)},
			},
		},
		{
			name: "cancelled meetings do not block time",
			date: monday,
			meetings: []models.Meeting{func() models.Meeting {
				m := meeting(at(monday, 10, 0), at(monday, 11, 0))
				m.Status = models.MeetingStatusCancelled
				return m
			}()},
			wantFree: []models.Interval{{Start: at(monday, 9, 0), End: at(monday, 17, 0)}},
		},
		{
			name:       "weekend is not a working day",
			date:       monday.AddDate(0, 0, 5),
			wantFree:   []models.Interval{},
			wantReason: models.SlotReasonNoWorkingDay,
		},
		{
			name: "daily meeting cap reached",
			pref: func(p *models.Preference) { p.MaxMeetingsPerDay = 1 },
			date: monday,
			meetings: []models.Meeting{
				meeting(at(monday, 13, 0), at(monday, 13, 30)),
			},
			wantFree:   []models.Interval{},
			wantReason: models.SlotReasonNoAvailability,
		},
		{
			name: "largest block reserved as focus time",
			pref: func(p *models.Preference) { p.FocusTimeBlocks = true },
			date: monday,
			meetings: []models.Meeting{
				meeting(at(monday, 11, 0), at(monday, 11, 30)),
			},
			wantFree:  []models.Interval{{Start: at(monday, 9, 0), End: at(monday, 10, 45)}},
			wantFocus: &models.Interval{Start: at(monday, 11, 45), End: at(monday, 17, 0)},
		},
		{
			name:     "past time trimmed",
			date:     monday,
			now:      at(monday, 14, 20),
			wantFree: []models.Interval{{Start: at(monday, 14, 20), End: at(monday, 17, 0)}},
		},
		{
			name:       "whole day in the past",
			date:       monday,
			now:        at(monday, 18, 0),
			wantFree:   []models.Interval{},
			wantReason: models.SlotReasonNoAvailability,
		},
	}

	calc := NewCalculator(weights.Default().Slots)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pref := models.DefaultPreference(uuid.New())
			if tt.pref != nil {
				tt.pref(pref)
			}

			got := calc.Calculate(pref, tt.date, tt.meetings, tt.now)
			if got.Reason != tt.wantReason {
				t.Errorf("Expected reason %q, got %q", tt.wantReason, got.Reason)
			}
			if len(got.Free) != len(tt.wantFree) {
				t.Fatalf("Expected %d free intervals, got %d: %+v", len(tt.wantFree), len(got.Free), got.Free)
			}
			for i := range tt.wantFree {
				if !got.Free[i].Start.Equal(tt.wantFree[i].Start) || !got.Free[i].End.Equal(tt.wantFree[i].End) {
					t.Errorf("Interval %d: expected %v-%v, got %v-%v", i,
						tt.wantFree[i].Start, tt.wantFree[i].End, got.Free[i].Start, got.Free[i].End)
				}
			}
			switch {
			case tt.wantFocus == nil && got.Focus != nil:
				t.Errorf("Expected no focus block, got %+v", got.Focus)
			case tt.wantFocus != nil && got.Focus == nil:
				t.Error("Expected a focus block, got none")
			case tt.wantFocus != nil && (!got.Focus.Start.Equal(tt.wantFocus.Start) || !got.Focus.End.Equal(tt.wantFocus.End)):
				t.Errorf("Expected focus %v-%v, got %v-%v", tt.wantFocus.Start, tt.wantFocus.End, got.Focus.Start, got.Focus.End)
			}
		})
	}
}

func TestCalculator_Timezone(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	pref := models.DefaultPreference(uuid.New())
	pref.Timezone = "America/New_York"

	got := NewCalculator(weights.Default().Slots).Calculate(pref, monday, nil, time.Time{})
	if len(got.Free) != 1 {
		t.Fatalf("Expected one free interval, got %d", len(got.Free))
	}
	want := time.Date(2026, 10, 19, 9, 0, 0, 0, loc)
	if !got.Free[0].Start.Equal(want) {
		t.Errorf("Expected free time to start at %v, got %v", want, got.Free[0].Start)
	}
}

func TestSubtract(t *testing.T) {
	t.Parallel()

	free := []models.Interval{{Start: at(monday, 9, 0), End: at(monday, 12, 0)}}

	got := subtract(free, models.Interval{Start: at(monday, 8, 0), End: at(monday, 9, 30)})
	if len(got) != 1 || !got[0].Start.Equal(at(monday, 9, 30)) {
		t.Errorf("Expected leading overlap trimmed, got %+v", got)
	}

	got = subtract(free, models.Interval{Start: at(monday, 8, 0), End: at(monday, 13, 0)})
	if len(got) != 0 {
		t.Errorf("Expected covering block to remove everything, got %+v", got)
	}

	got = subtract(free, models.Interval{Start: at(monday, 12, 0), End: at(monday, 13, 0)})
	if len(got) != 1 || !got[0].End.Equal(at(monday, 12, 0)) {
		t.Errorf("Expected touching block to leave the interval intact, got %+v", got)
	}
}

func TestCalculator_WindowUsesWallClockHours(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	pref := models.DefaultPreference(uuid.New())
	pref.Timezone = "America/New_York"
	pref.WorkingDays = []int{0}

	// 2026-11-01 has 25 hours, 2026-03-08 has 23
	for _, day := range []time.Time{
		time.Date(2026, 11, 1, 0, 0, 0, 0, loc),
		time.Date(2026, 3, 8, 0, 0, 0, 0, loc),
	} {
		got := NewCalculator(weights.Default().Slots).Calculate(pref, day, nil, time.Time{})
		if len(got.Free) != 1 {
			t.Fatalf("Expected one free interval on %s, got %d", day.Format("2006-01-02"), len(got.Free))
		}
		if want := at(day, 9, 0); !got.Free[0].Start.Equal(want) {
			t.Errorf("Expected window start %v, got %v", want, got.Free[0].Start.In(loc))
		}
		if want := at(day, 17, 0); !got.Free[0].End.Equal(want) {
			t.Errorf("Expected window end %v, got %v", want, got.Free[0].End.In(loc))
		}
	}
}
