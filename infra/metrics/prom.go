package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/branchnm/cutplan/core/metrics"
)

// PromSink records engine events in Prometheus metrics.
type PromSink struct {
	optimizedDays *prometheus.CounterVec
	persistedJobs *prometheus.CounterVec
	driveMinutes  prometheus.Histogram
	suggestions   *prometheus.CounterVec
	lookups       *prometheus.CounterVec
}

// NewPromSink registers the engine metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	optimizedDays := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_optimized_days_total",
		Help: "Days ordered per optimization pass",
	}, []string{"offline"})
	persistedJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_persisted_jobs_total",
		Help: "Jobs persisted during optimization",
	}, []string{"outcome"})
	driveMinutes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_day_drive_minutes",
		Help:    "Total drive minutes per optimized day",
		Buckets: []float64{15, 30, 60, 90, 120, 180, 240},
	})
	suggestions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_suggestions_total",
		Help: "Suggestions emitted by kind",
	}, []string{"kind", "severity"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drivetime_lookups_total",
		Help: "Drive time resolutions by source",
	}, []string{"source"})

	collectors := []prometheus.Collector{optimizedDays, persistedJobs, driveMinutes, suggestions, lookups}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				collectors[i] = are.ExistingCollector
				continue
			}
			return nil, err
		}
	}
	return &PromSink{
		optimizedDays: collectors[0].(*prometheus.CounterVec),
		persistedJobs: collectors[1].(*prometheus.CounterVec),
		driveMinutes:  collectors[2].(prometheus.Histogram),
		suggestions:   collectors[3].(*prometheus.CounterVec),
		lookups:       collectors[4].(*prometheus.CounterVec),
	}, nil
}

// RecordOptimization increments the pass counters per optimized day.
func (s *PromSink) RecordOptimization(results []coremetrics.OptimizationResult) error {
	for _, r := range results {
		s.optimizedDays.WithLabelValues(strconv.FormatBool(r.Offline)).Inc()
		s.persistedJobs.WithLabelValues("persisted").Add(float64(r.Persisted))
		s.persistedJobs.WithLabelValues("failed").Add(float64(r.Failed))
		s.driveMinutes.Observe(float64(r.DriveMinutes))
	}
	return nil
}

// RecordSuggestion counts an emitted suggestion.
func (s *PromSink) RecordSuggestion(ev coremetrics.SuggestionEvent) error {
	s.suggestions.WithLabelValues(ev.Kind, ev.Severity).Inc()
	return nil
}

// RecordDriveTimeLookup counts a travel estimate resolution.
func (s *PromSink) RecordDriveTimeLookup(ev coremetrics.DriveTimeLookup) error {
	s.lookups.WithLabelValues(ev.Source).Inc()
	return nil
}

// StartPromServer serves /metrics until the context is cancelled.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
