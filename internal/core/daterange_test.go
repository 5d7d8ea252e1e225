package core

import (
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		input string
		want  DateRange
	}{
		{"today", RangeToday},
		{"week", RangeWeek},
		{"month", RangeMonth},
		{"year", RangeYear},
		{"", RangeToday},
		{"quarter", RangeToday},
		{"TODAY", RangeToday},
	}
	for _, tt := range tests {
		if got := ParseDateRange(tt.input); got != tt.want {
			t.Errorf("ParseDateRange(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDateRange_ResolveAt(t *testing.T) {
	// A Wednesday mid-afternoon.
	now := time.Date(2024, time.March, 13, 15, 4, 5, 123456789, time.UTC)

	t.Run("today is closed on both ends", func(t *testing.T) {
		start, end := RangeToday.ResolveAt(now)
		wantStart := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
		if !start.Equal(wantStart) {
			t.Errorf("start = %v, want %v", start, wantStart)
		}
		if !end.Equal(wantEnd) {
			t.Errorf("end = %v, want %v", end, wantEnd)
		}
	})

	t.Run("week starts on Sunday and ends now", func(t *testing.T) {
		start, end := RangeWeek.ResolveAt(now)
		wantStart := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) {
			t.Errorf("start = %v, want %v", start, wantStart)
		}
		if !end.Equal(now) {
			t.Errorf("end = %v, want now %v", end, now)
		}
	})

	t.Run("week start on a Sunday is the same day", func(t *testing.T) {
		sunday := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
		start, _ := RangeWeek.ResolveAt(sunday)
		wantStart := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) {
			t.Errorf("start = %v, want %v", start, wantStart)
		}
	})

	t.Run("month starts on the first", func(t *testing.T) {
		start, end := RangeMonth.ResolveAt(now)
		wantStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) {
			t.Errorf("start = %v, want %v", start, wantStart)
		}
		if !end.Equal(now) {
			t.Errorf("end = %v, want now %v", end, now)
		}
	})

	t.Run("year starts on January first", func(t *testing.T) {
		start, end := RangeYear.ResolveAt(now)
		wantStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) {
			t.Errorf("start = %v, want %v", start, wantStart)
		}
		if !end.Equal(now) {
			t.Errorf("end = %v, want now %v", end, now)
		}
	})

	t.Run("start never exceeds end", func(t *testing.T) {
		for _, rng := range []DateRange{RangeToday, RangeWeek, RangeMonth, RangeYear} {
			start, end := rng.ResolveAt(now)
			if start.After(end) {
				t.Errorf("%s: start %v after end %v", rng, start, end)
			}
		}
	})
}
