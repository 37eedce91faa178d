// Package metrics defines the observability ports implemented by the
// infra sinks.
package metrics

import "time"

// OptimizationResult captures one day's outcome within an optimization run.
type OptimizationResult struct {
	RunID        string
	Date         string
	JobsOrdered  int
	DriveMinutes int
	Persisted    int
	Failed       int
	Offline      bool // true when the deterministic fallback ordered the day
	Time         time.Time
}

// MetricsSink records optimization results for observability purposes.
type MetricsSink interface {
	RecordOptimization(results []OptimizationResult) error
}

// SuggestionEvent captures one emitted suggestion.
type SuggestionEvent struct {
	Date     string
	Kind     string // "move" or "start-time"
	JobCount int
	Severity string
	Time     time.Time
}

// SuggestionRecorder records emitted suggestions.
type SuggestionRecorder interface {
	RecordSuggestion(ev SuggestionEvent) error
}

// DriveTimeLookup captures one resolved travel estimate.
type DriveTimeLookup struct {
	Source  string // "provider" or "fallback"
	Minutes int
	Time    time.Time
}

// DriveTimeRecorder records travel estimate resolutions.
type DriveTimeRecorder interface {
	RecordDriveTimeLookup(ev DriveTimeLookup) error
}

// NopSink discards every event.
type NopSink struct{}

// RecordOptimization implements MetricsSink.
func (NopSink) RecordOptimization([]OptimizationResult) error { return nil }
