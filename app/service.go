// Package app wires the engine components together for the reference CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/branchnm/cutplan/config"
	"github.com/branchnm/cutplan/core/drivetime"
	"github.com/branchnm/cutplan/core/events"
	coremetrics "github.com/branchnm/cutplan/core/metrics"
	"github.com/branchnm/cutplan/core/model"
	"github.com/branchnm/cutplan/core/reorder"
	"github.com/branchnm/cutplan/core/route"
	"github.com/branchnm/cutplan/core/schedule"
	"github.com/branchnm/cutplan/core/slots"
	"github.com/branchnm/cutplan/core/storage"
	"github.com/branchnm/cutplan/core/suggest"
	coreweather "github.com/branchnm/cutplan/core/weather"
	"github.com/branchnm/cutplan/infra/logger"
	"github.com/branchnm/cutplan/infra/metrics"
	"github.com/branchnm/cutplan/infra/notify"
	"github.com/branchnm/cutplan/infra/routing"
	"github.com/branchnm/cutplan/infra/store"
	infraweather "github.com/branchnm/cutplan/infra/weather"
	"github.com/branchnm/cutplan/internal/eventbus"
)

// Service exposes the engine operations to the presentation layer.
type Service struct {
	cfg       *config.Config
	Jobs      storage.JobStore
	Customers storage.CustomerStore
	Lifecycle *schedule.Service
	Suggest   *suggest.Engine
	Route     *route.Orchestrator
	Reorder   *reorder.Controller
	Undo      *reorder.UndoController
	Estimator *drivetime.Estimator
	Overrides *slots.Overrides

	weather coreweather.Provider
	bus     eventbus.EventBus
	drift   *eventbus.TypedBus[events.DriftDetected]
	log     logger.Logger
	pub     notify.Publisher
	closers []func() error
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	svc := &Service{
		cfg:   cfg,
		bus:   eventbus.New(),
		drift: eventbus.NewTyped[events.DriftDetected](),
		log:   logg,
	}

	switch cfg.Storage.Backend {
	case "sqlite":
		db, err := store.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		svc.Jobs, svc.Customers = db, db
		svc.closers = append(svc.closers, db.Close)
	default:
		svc.Jobs = storage.NewMemoryJobStore()
		svc.Customers = storage.NewMemoryCustomerStore()
	}

	sink := buildSink(cfg.Metrics)

	svc.Overrides = slots.NewOverrides()
	svc.weather = infraweather.NewClient(cfg.Weather)

	heur := cfg.DriveTime
	if len(heur.SameStreet) == 0 {
		heur = drivetime.DefaultHeuristic()
	}

	var driveProvider drivetime.Provider
	var optimizer route.Optimizer = route.NewOfflineOptimizer(heur)
	if cfg.Routing.BaseURL != "" {
		rc, err := routing.NewClient(cfg.Routing)
		if err != nil {
			return nil, fmt.Errorf("routing client: %w", err)
		}
		driveProvider = rc
		optimizer = rc
	}
	var driveRec coremetrics.DriveTimeRecorder
	if rec, ok := sink.(coremetrics.DriveTimeRecorder); ok {
		driveRec = rec
	}
	svc.Estimator = drivetime.NewEstimator(driveProvider, heur, logger.New("drivetime"), driveRec)

	classifier := coreweather.New(cfg.Classifier)
	var sugSink coremetrics.SuggestionRecorder
	if rec, ok := sink.(coremetrics.SuggestionRecorder); ok {
		sugSink = rec
	}
	svc.Suggest = suggest.NewEngine(cfg.Suggest, classifier, svc.Jobs, svc.Overrides, logger.New("suggest"), sugSink)

	orch, err := route.NewOrchestrator(cfg.Route, optimizer, svc.Jobs, svc.Customers, svc.Overrides, svc.Estimator, logger.New("route-orchestrator"), sink, svc.bus)
	if err != nil {
		return nil, fmt.Errorf("route orchestrator: %w", err)
	}
	svc.Route = orch

	svc.Lifecycle = schedule.NewService(cfg.Schedule, svc.Jobs, svc.Customers, logger.New("schedule"))
	svc.Undo = reorder.NewUndoController(svc.Jobs, logger.New("undo"))
	svc.Reorder = reorder.NewController(svc.Jobs, svc.Overrides, svc.Undo, logger.New("reorder"))

	if cfg.Notify.Enabled {
		pub, err := notify.NewPahoPublisher(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("notify publisher: %w", err)
		}
		svc.pub = pub
	}

	// The argument subscribes before New returns, so no drift event
	// published afterwards can be missed.
	go svc.forwardDrift(svc.bus.Subscribe())
	return svc, nil
}

func buildSink(cfg config.MetricsConfig) coremetrics.MetricsSink {
	var sinks []coremetrics.MetricsSink
	if cfg.PrometheusEnabled {
		if sink, err := metrics.NewPromSink(); err == nil {
			sinks = append(sinks, sink)
		}
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}
	case 1:
		return sinks[0]
	default:
		return metrics.NewMultiSink(sinks...)
	}
}

// Suggestions fetches the forecast for the configured service area and
// computes the current suggestion set. Weather failures are non-fatal and
// yield an empty set.
func (s *Service) Suggestions(ctx context.Context) (model.SuggestionSet, error) {
	var set model.SuggestionSet
	coords, err := s.weather.Geocode(ctx, s.cfg.ServiceArea)
	if err != nil || coords == nil {
		if err != nil {
			s.log.Warnf("geocode %q: %v", s.cfg.ServiceArea, err)
		}
		return set, nil
	}
	forecast, err := s.weather.Forecast(ctx, *coords)
	if err != nil {
		s.log.Warnf("forecast: %v", err)
		return set, nil
	}
	jobs, err := s.Jobs.FetchJobs(ctx)
	if err != nil {
		return set, fmt.Errorf("fetch jobs: %w", err)
	}
	byDate := make(map[string][]model.Job)
	for _, j := range jobs {
		byDate[j.Date] = append(byDate[j.Date], j)
	}
	set = s.Suggest.Generate(forecast, byDate)
	s.bus.Publish(events.SuggestionsRefreshed{
		Moves:      len(set.Moves),
		StartTimes: len(set.StartTimes),
		Time:       time.Now(),
	})
	return set, nil
}

// Optimize ensures upcoming jobs exist, runs a full optimization pass and
// rechecks drift state.
func (s *Service) Optimize(ctx context.Context) (route.Summary, error) {
	if _, err := s.Lifecycle.EnsureJobs(ctx); err != nil {
		return route.Summary{}, err
	}
	return s.Route.OptimizeAll(ctx, s.cfg.HomeBase)
}

// MoveJob applies a manual reorder and reports drift to the orchestrator.
func (s *Service) MoveJob(ctx context.Context, jobID, targetDate string, targetIndex int) error {
	if err := s.Reorder.Move(ctx, jobID, targetDate, targetIndex); err != nil {
		return err
	}
	jobs, err := s.Jobs.FetchJobs(ctx)
	if err != nil {
		return err
	}
	s.Route.CheckDrift(jobs)
	return nil
}

// DriftEvents returns the typed drift stream. The serve loop consumes it
// to re-optimize promptly after a manual reorder instead of waiting for
// the next tick.
func (s *Service) DriftEvents() <-chan events.DriftDetected {
	return s.drift.Subscribe()
}

// forwardDrift bridges drift events from the engine bus onto the typed
// stream. It exits when the bus closes.
func (s *Service) forwardDrift(sub <-chan eventbus.Event) {
	for ev := range sub {
		if d, ok := ev.(events.DriftDetected); ok {
			s.drift.Publish(d)
		}
	}
}

// Run serves background concerns until the context is cancelled: the
// Prometheus endpoint and the MQTT relay when enabled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.pub != nil {
		go notify.Relay(ctx, s.bus, s.pub, s.cfg.Notify.TopicPrefix, s.log)
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	s.drift.Close()
	if s.pub != nil {
		s.pub.Close()
	}
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
