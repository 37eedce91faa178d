package model

import (
	"fmt"
	"time"
)

// JobStatus tracks the lifecycle of a visit.
type JobStatus string

const (
	StatusScheduled  JobStatus = "scheduled"
	StatusInProgress JobStatus = "in-progress"
	StatusCompleted  JobStatus = "completed"
)

// Job represents a single service visit for a customer on a calendar day.
type Job struct {
	ID         string
	CustomerID string
	// Date is the local calendar day in "YYYY-MM-DD" form, no timezone.
	Date   string
	Status JobStatus
	// Order is the 1-based position within the day's route. Nil means
	// unordered, which sorts after every ordered job.
	Order *int
	// ScheduledTime is a 24h "H:MM" clock string, nil when unset.
	ScheduledTime *string
	StartTime     *time.Time
	EndTime       *time.Time
	TotalTime     int // minutes
	DriveTime     int // minutes
	Notes         string
}

// Validate checks the fields a store would reject.
func (j Job) Validate() error {
	if j.CustomerID == "" {
		return fmt.Errorf("job requires a customer id")
	}
	if _, err := ParseDay(j.Date); err != nil {
		return fmt.Errorf("job date: %w", err)
	}
	switch j.Status {
	case StatusScheduled, StatusInProgress, StatusCompleted:
	default:
		return fmt.Errorf("unknown job status %q", j.Status)
	}
	return nil
}

// Elapsed returns the running duration of an in-progress job, derived from
// the absolute start timestamp on every call rather than accumulated.
func (j Job) Elapsed(now time.Time) time.Duration {
	if j.Status != StatusInProgress || j.StartTime == nil {
		return 0
	}
	d := now.Sub(*j.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// OrderValue returns the route order, or fallback when unordered.
func (j Job) OrderValue(fallback int) int {
	if j.Order == nil {
		return fallback
	}
	return *j.Order
}

// IntPtr is a convenience for building Order values.
func IntPtr(v int) *int { return &v }

// StringPtr is a convenience for building ScheduledTime values.
func StringPtr(v string) *string { return &v }
