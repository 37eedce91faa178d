package model

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2026-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %s", d.Weekday())
	}
	if _, err := ParseDay("06/01/2026"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
	if _, err := ParseDay(""); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2026-06-28", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2026-07-03" {
		t.Fatalf("expected 2026-07-03, got %s", got)
	}
}

func TestClockRoundTrip(t *testing.T) {
	tests := []struct {
		s    string
		h, m int
	}{
		{"5:00", 5, 0},
		{"12:30", 12, 30},
		{"23:59", 23, 59},
	}
	for _, tc := range tests {
		h, m, err := ParseClock(tc.s)
		if err != nil {
			t.Fatalf("%s: %v", tc.s, err)
		}
		if h != tc.h || m != tc.m {
			t.Fatalf("%s: got %d:%d", tc.s, h, m)
		}
		if got := FormatClock(h, m); got != tc.s {
			t.Fatalf("round trip %s: got %s", tc.s, got)
		}
	}
	if _, _, err := ParseClock("25:00"); err == nil {
		t.Fatal("expected error for hour out of range")
	}
}

func TestClockMinutes(t *testing.T) {
	if got := ClockMinutes("6:30"); got != 390 {
		t.Fatalf("expected 390, got %d", got)
	}
	// Unparseable values sort after any real time.
	if got := ClockMinutes("noonish"); got != 24*60 {
		t.Fatalf("expected sentinel, got %d", got)
	}
}

func TestFrequencyNextDate(t *testing.T) {
	last := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		freq Frequency
		want string
	}{
		{FrequencyWeekly, "2026-06-10"},
		{FrequencyBiweekly, "2026-06-17"},
		{FrequencyMonthly, "2026-07-03"},
	}
	for _, tc := range tests {
		next, err := tc.freq.NextDate(last)
		if err != nil {
			t.Fatalf("%s: %v", tc.freq, err)
		}
		if FormatDay(next) != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.freq, tc.want, FormatDay(next))
		}
	}
	if _, err := Frequency("fortnightly").NextDate(last); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}

func TestJobValidate(t *testing.T) {
	ok := Job{CustomerID: "c1", Date: "2026-06-01", Status: StatusScheduled}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []Job{
		{Date: "2026-06-01", Status: StatusScheduled},
		{CustomerID: "c1", Date: "nope", Status: StatusScheduled},
		{CustomerID: "c1", Date: "2026-06-01", Status: "paused"},
	}
	for i, j := range bad {
		if err := j.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestJobElapsed(t *testing.T) {
	start := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	j := Job{Status: StatusInProgress, StartTime: &start}
	if got := j.Elapsed(start.Add(25 * time.Minute)); got != 25*time.Minute {
		t.Fatalf("expected 25m, got %s", got)
	}
	// A clock that moved backwards never reports negative elapsed.
	if got := j.Elapsed(start.Add(-time.Minute)); got != 0 {
		t.Fatalf("expected 0, got %s", got)
	}
	j.Status = StatusScheduled
	if got := j.Elapsed(start.Add(time.Hour)); got != 0 {
		t.Fatalf("scheduled job has no elapsed time, got %s", got)
	}
}
