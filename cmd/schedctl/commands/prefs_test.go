package commands

import (
	"strings"
	"testing"
)

func TestDecodePreference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantErr  string
		wantTZ   string
		wantDays int
	}{
		{
			name: "yaml",
			input: `work_start_hour: 9
work_end_hour: 17
max_meetings_per_day: 6
working_days: [1, 2, 3, 4, 5]
timezone: America/New_York
`,
			wantTZ:   "America/New_York",
			wantDays: 5,
		},
		{
			name:     "json",
			input:    `{"work_start_hour": 8, "work_end_hour": 16, "working_days": [1, 3], "timezone": "UTC"}`,
			wantTZ:   "UTC",
			wantDays: 2,
		},
		{
			name:    "unknown field",
			input:   "timezone: UTC\nlunch_hour: 12\n",
			wantErr: "invalid preferences file",
		},
		{
			name:    "malformed",
			input:   "timezone: [UTC\n",
			wantErr: "failed to parse preferences file",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := decodePreference([]byte(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.Timezone != tt.wantTZ {
				t.Errorf("Expected timezone %s, got %s", tt.wantTZ, p.Timezone)
			}
			if len(p.WorkingDays) != tt.wantDays {
				t.Errorf("Expected %d working days, got %d", tt.wantDays, len(p.WorkingDays))
			}
		})
	}
}
