// Package events defines the messages the engine publishes on the event
// bus for the presentation layer. Triggers flow the other way as explicit
// method calls; the engine never subscribes to UI events.
package events

import "time"

// DriftDetected is published when the job collection no longer matches
// the last optimized snapshot, re-enabling manual optimization.
type DriftDetected struct {
	JobID string
	Date  string
	Time  time.Time
}

// OptimizationCompleted is published after a full optimization pass.
type OptimizationCompleted struct {
	RunID         string
	DaysOptimized int
	JobsPersisted int
	JobsFailed    int
	Time          time.Time
}

// SuggestionsRefreshed is published after a suggestion recompute.
type SuggestionsRefreshed struct {
	Moves      int
	StartTimes int
	Time       time.Time
}

// DriveTimeBatchResolved is published once per fully resolved address-pair
// batch, prompting a single display refresh.
type DriveTimeBatchResolved struct {
	Date  string
	Pairs int
	Time  time.Time
}
