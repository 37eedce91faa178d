package metrics

import coremetrics "github.com/branchnm/cutplan/core/metrics"

// MultiSink fans engine events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOptimization forwards the results to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordOptimization(results []coremetrics.OptimizationResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordOptimization(results); err != nil {
			return err
		}
	}
	return nil
}

// RecordSuggestion forwards suggestion events to sinks that record them.
func (m *MultiSink) RecordSuggestion(ev coremetrics.SuggestionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.SuggestionRecorder); ok {
			if err := rec.RecordSuggestion(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDriveTimeLookup forwards lookup events to sinks that record them.
func (m *MultiSink) RecordDriveTimeLookup(ev coremetrics.DriveTimeLookup) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.DriveTimeRecorder); ok {
			if err := rec.RecordDriveTimeLookup(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
