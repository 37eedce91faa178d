package model

import (
	"fmt"
	"time"
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

// ParseDay parses a "YYYY-MM-DD" calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return t, nil
}

// FormatDay renders t as a "YYYY-MM-DD" calendar day.
func FormatDay(t time.Time) string { return t.Format(DayLayout) }

// AddDays shifts a calendar day string by n days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return FormatDay(t.AddDate(0, 0, n)), nil
}

// ParseClock parses a 24h "H:MM" string into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	if _, err = fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock %q out of range", s)
	}
	return hour, minute, nil
}

// FormatClock renders hour and minute as a 24h "H:MM" string.
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%d:%02d", hour, minute)
}

// ClockMinutes converts an "H:MM" string to minutes since midnight.
// Unparseable input sorts last.
func ClockMinutes(s string) int {
	h, m, err := ParseClock(s)
	if err != nil {
		return 24 * 60
	}
	return h*60 + m
}
