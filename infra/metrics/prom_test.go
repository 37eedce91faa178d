package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/branchnm/cutplan/core/metrics"
)

func TestPromSinkRecordOptimization(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	now := time.Now()
	results := []coremetrics.OptimizationResult{
		{RunID: "r1", Date: "2026-06-01", JobsOrdered: 3, DriveMinutes: 45, Persisted: 3, Time: now},
		{RunID: "r1", Date: "2026-06-02", JobsOrdered: 2, DriveMinutes: 20, Persisted: 1, Failed: 1, Offline: true, Time: now},
	}
	if err := sink.RecordOptimization(results); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP route_optimized_days_total Days ordered per optimization pass
# TYPE route_optimized_days_total counter
route_optimized_days_total{offline="false"} 1
route_optimized_days_total{offline="true"} 1
`
	if err := testutil.CollectAndCompare(sink.optimizedDays, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	expected = `
# HELP route_persisted_jobs_total Jobs persisted during optimization
# TYPE route_persisted_jobs_total counter
route_persisted_jobs_total{outcome="failed"} 1
route_persisted_jobs_total{outcome="persisted"} 4
`
	if err := testutil.CollectAndCompare(sink.persistedJobs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	if c := testutil.CollectAndCount(sink.driveMinutes); c == 0 {
		t.Errorf("drive minutes not recorded")
	}
}

func TestPromSinkRecordSuggestion(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordSuggestion(coremetrics.SuggestionEvent{Kind: "move", Severity: "heavy"}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP weather_suggestions_total Suggestions emitted by kind
# TYPE weather_suggestions_total counter
weather_suggestions_total{kind="move",severity="heavy"} 1
`
	if err := testutil.CollectAndCompare(sink.suggestions, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	// A second sink on the same registry reuses the existing collectors.
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if err := sink.RecordDriveTimeLookup(coremetrics.DriveTimeLookup{Source: "heuristic"}); err != nil {
		t.Fatalf("record error: %v", err)
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	s1, err := NewPromSinkWithRegistry(reg1)
	if err != nil {
		t.Fatalf("sink 1: %v", err)
	}
	s2, err := NewPromSinkWithRegistry(reg2)
	if err != nil {
		t.Fatalf("sink 2: %v", err)
	}

	multi := NewMultiSink(s1, s2)
	res := []coremetrics.OptimizationResult{{RunID: "r1", Date: "2026-06-01", Persisted: 2}}
	if err := multi.RecordOptimization(res); err != nil {
		t.Fatalf("record error: %v", err)
	}
	for i, s := range []*PromSink{s1, s2} {
		if c := testutil.CollectAndCount(s.optimizedDays); c == 0 {
			t.Errorf("sink %d did not record", i+1)
		}
	}

	if err := multi.RecordSuggestion(coremetrics.SuggestionEvent{Kind: "start-time"}); err != nil {
		t.Fatalf("suggestion error: %v", err)
	}
}

func TestMultiSinkSkipsNonRecorders(t *testing.T) {
	multi := NewMultiSink(coremetrics.NopSink{})
	if err := multi.RecordSuggestion(coremetrics.SuggestionEvent{Kind: "move"}); err != nil {
		t.Fatalf("nop sink should be skipped: %v", err)
	}
	if err := multi.RecordDriveTimeLookup(coremetrics.DriveTimeLookup{Source: "provider"}); err != nil {
		t.Fatalf("nop sink should be skipped: %v", err)
	}
}
