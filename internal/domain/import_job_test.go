package domain

import (
	"testing"
	"time"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name      string
		processed int
		total     int
		want      int
	}{
		{"zero total", 10, 0, 0},
		{"negative total", 10, -1, 0},
		{"empty", 0, 100, 0},
		{"halfway", 50, 100, 50},
		{"rounds up", 2, 3, 67},
		{"rounds down", 1, 3, 33},
		{"complete", 100, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := ImportJob{ProcessedRecords: tt.processed, TotalRecords: tt.total}
			if got := j.Percent(); got != tt.want {
				t.Errorf("Percent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDurationString(t *testing.T) {
	start := time.Date(2015, 6, 2, 10, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		end := start.Add(d)
		return &end
	}

	tests := []struct {
		name string
		end  *time.Time
		want string
	}{
		{"seconds", at(42 * time.Second), "42s"},
		{"zero", at(0), "0s"},
		{"minutes", at(3*time.Minute + 5*time.Second), "3m 5s"},
		{"hours", at(2*time.Hour + 30*time.Minute), "2h 30m"},
		{"clock skew clamps to zero", at(-5 * time.Second), "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := ImportJob{StartedAt: &start, CompletedAt: tt.end}
			if got := j.DurationString(); got != tt.want {
				t.Errorf("DurationString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDurationStringBeforeStart(t *testing.T) {
	var j ImportJob
	if got := j.DurationString(); got != "" {
		t.Errorf("DurationString() = %q, want empty before the job starts", got)
	}
}

func TestIsTerminal(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		JobStatusPending:    false,
		JobStatusProcessing: false,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
		JobStatusCancelled:  true,
	} {
		j := ImportJob{Status: status}
		if got := j.IsTerminal(); got != want {
			t.Errorf("IsTerminal() for %q = %v, want %v", status, got, want)
		}
	}
}
