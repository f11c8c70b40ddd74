package cache

import (
	"testing"
	"time"

	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
)

func TestSlotKey_String(t *testing.T) {
	t.Parallel()

	userID := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

	tests := []struct {
		name string
		key  SlotKey
		want string
	}{
		{
			name: "without meeting type",
			key:  SlotKey{UserID: userID, Date: "2026-10-19", DurationMinutes: 30, TopK: 5},
			want: "slots:7d444840-9dc0-11d1-b245-5ffdce74fad2:2026-10-19:30:-:5:false:-",
		},
		{
			name: "with meeting type and distinct",
			key:  SlotKey{UserID: userID, Date: "2026-10-19", DurationMinutes: 60, MeetingType: "demo", TopK: 3, Distinct: true, Calendar: "00ff"},
			want: "slots:7d444840-9dc0-11d1-b245-5ffdce74fad2:2026-10-19:60:demo:3:true:00ff",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIndexKey(t *testing.T) {
	t.Parallel()

	userID := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	if got := indexKey(userID); got != "slots:index:7d444840-9dc0-11d1-b245-5ffdce74fad2" {
		t.Errorf("Unexpected index key %q", got)
	}
}

func TestCalendarFingerprint(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	a := models.Meeting{ID: uuid.New(), Start: start, End: start.Add(30 * time.Minute), Status: models.MeetingStatusScheduled}
	b := models.Meeting{ID: uuid.New(), Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), Status: models.MeetingStatusScheduled}

	base := CalendarFingerprint([]models.Meeting{a, b})

	moved := b
	moved.Start = moved.Start.Add(time.Hour)
	moved.End = moved.End.Add(time.Hour)
	cancelled := b
	cancelled.Status = models.MeetingStatusCancelled

	tests := []struct {
		name     string
		meetings []models.Meeting
		same     bool
	}{
		{name: "order does not matter", meetings: []models.Meeting{b, a}, same: true},
		{name: "booked meeting", meetings: []models.Meeting{a, b, {ID: uuid.New(), Start: start.Add(5 * time.Hour), End: start.Add(6 * time.Hour)}}},
		{name: "moved meeting", meetings: []models.Meeting{a, moved}},
		{name: "cancelled meeting", meetings: []models.Meeting{a, cancelled}},
		{name: "removed meeting", meetings: []models.Meeting{a}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalendarFingerprint(tt.meetings)
			if (got == base) != tt.same {
				t.Errorf("Expected same=%v, got %q vs %q", tt.same, got, base)
			}
		})
	}

	if CalendarFingerprint(nil) != CalendarFingerprint([]models.Meeting{}) {
		t.Error("Expected nil and empty calendars to fingerprint the same")
	}
}
