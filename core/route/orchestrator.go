package route

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/branchnm/cutplan/core/drivetime"
	"github.com/branchnm/cutplan/core/events"
	"github.com/branchnm/cutplan/core/logger"
	"github.com/branchnm/cutplan/core/metrics"
	"github.com/branchnm/cutplan/core/model"
	"github.com/branchnm/cutplan/core/slots"
	"github.com/branchnm/cutplan/core/storage"
	"github.com/branchnm/cutplan/internal/eventbus"
)

// State is the orchestrator's optimization state.
type State int

const (
	StateIdle State = iota
	StateOptimizing
	StateOptimized
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOptimizing:
		return "optimizing"
	case StateOptimized:
		return "optimized"
	default:
		return "unknown"
	}
}

// Config carries the optimization parameters.
type Config struct {
	// HorizonDays is the rolling window optimized per pass.
	HorizonDays int `json:"horizon_days"`
	// ServiceMinutes is the fixed on-site time added between stops.
	ServiceMinutes int `json:"service_minutes"`
	// DefaultLegMinutes substitutes for a missing leg duration.
	DefaultLegMinutes int `json:"default_leg_minutes"`
	// MaxParallelDays bounds concurrent per-day optimizer calls.
	MaxParallelDays int `json:"max_parallel_days"`
	// OfflineFallback orders a failed day with the deterministic
	// nearest-neighbor fallback instead of skipping it.
	OfflineFallback bool `json:"offline_fallback"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		HorizonDays:       30,
		ServiceMinutes:    60,
		DefaultLegMinutes: 10,
		MaxParallelDays:   4,
	}
}

// Summary aggregates one optimization pass for the caller. Persistence is
// per-job: failed counts are surfaced for retry decisions, never rolled back.
type Summary struct {
	RunID         string
	DaysOptimized int
	DaysSkipped   int
	JobsPersisted int
	JobsFailed    int
	Stale         bool // a newer pass superseded this one
}

// Orchestrator runs the rolling-horizon optimization passes and tracks
// the optimized snapshot for drift detection.
type Orchestrator struct {
	cfg       Config
	optimizer Optimizer
	offline   *OfflineOptimizer
	jobs      storage.JobStore
	customers storage.CustomerStore
	overrides *slots.Overrides
	estimator *drivetime.Estimator
	log       logger.Logger
	sink      metrics.MetricsSink // optional
	bus       eventbus.EventBus   // optional
	now       func() time.Time

	// generation guards against a stale pass overwriting a newer one.
	generation atomic.Uint64

	mu       sync.Mutex
	state    State
	snapshot map[string]int // job ID -> order captured after a full pass
}

// NewOrchestrator creates an Orchestrator. sink and bus may be nil.
func NewOrchestrator(cfg Config, optimizer Optimizer, jobs storage.JobStore, customers storage.CustomerStore, overrides *slots.Overrides, est *drivetime.Estimator, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus) (*Orchestrator, error) {
	if optimizer == nil || jobs == nil || customers == nil || overrides == nil || est == nil {
		return nil, fmt.Errorf("route: nil parameter provided to NewOrchestrator")
	}
	def := DefaultConfig()
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = def.HorizonDays
	}
	if cfg.ServiceMinutes <= 0 {
		cfg.ServiceMinutes = def.ServiceMinutes
	}
	if cfg.DefaultLegMinutes <= 0 {
		cfg.DefaultLegMinutes = def.DefaultLegMinutes
	}
	if cfg.MaxParallelDays <= 0 {
		cfg.MaxParallelDays = def.MaxParallelDays
	}
	return &Orchestrator{
		cfg:       cfg,
		optimizer: optimizer,
		offline:   NewOfflineOptimizer(drivetime.DefaultHeuristic()),
		jobs:      jobs,
		customers: customers,
		overrides: overrides,
		estimator: est,
		log:       log,
		sink:      sink,
		bus:       bus,
		now:       time.Now,
	}, nil
}

// SetClock overrides the time source, for tests.
func (o *Orchestrator) SetClock(now func() time.Time) { o.now = now }

// State returns the current optimization state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// dayResult carries one day's outcome back to the aggregating pass.
type dayResult struct {
	date      string
	optimized bool
	offline   bool
	persisted int
	failed    int
	ordered   map[string]int // job ID -> new order
	driveMin  int
}

// OptimizeAll runs a full pass over the rolling horizon starting from
// startingAddress. Days run with bounded parallelism; each day's
// renumbering happens strictly after its optimizer response. A pass that
// is superseded by a newer invocation leaves state and snapshot alone and
// reports Stale.
func (o *Orchestrator) OptimizeAll(ctx context.Context, startingAddress string) (Summary, error) {
	gen := o.generation.Add(1)
	sum := Summary{RunID: uuid.NewString()}

	o.mu.Lock()
	o.state = StateOptimizing
	o.mu.Unlock()

	// Stale provider estimates from the previous pass must not leak in.
	o.estimator.ClearCache()

	jobs, err := o.jobs.FetchJobs(ctx)
	if err != nil {
		o.toIdle()
		return sum, fmt.Errorf("optimize: fetch jobs: %w", err)
	}
	customers, err := o.customers.FetchCustomers(ctx)
	if err != nil {
		o.toIdle()
		return sum, fmt.Errorf("optimize: fetch customers: %w", err)
	}
	addrByCustomer := make(map[string]string, len(customers))
	for _, c := range customers {
		addrByCustomer[c.ID] = c.Address
	}

	byDate := make(map[string][]model.Job)
	for _, j := range jobs {
		byDate[j.Date] = append(byDate[j.Date], j)
	}

	today := o.now()
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.cfg.MaxParallelDays)
	results := make([]dayResult, o.cfg.HorizonDays)
	for i := 0; i < o.cfg.HorizonDays; i++ {
		date := model.FormatDay(today.AddDate(0, 0, i))
		dayJobs := byDate[date]
		if len(dayJobs) == 0 {
			continue
		}
		wg.Add(1)
		go func(i int, date string, dayJobs []model.Job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = o.optimizeDay(ctx, gen, startingAddress, date, dayJobs, addrByCustomer)
		}(i, date, dayJobs)
	}
	wg.Wait()

	snapshot := make(map[string]int)
	var recs []metrics.OptimizationResult
	for _, r := range results {
		if r.date == "" {
			continue
		}
		sum.JobsPersisted += r.persisted
		sum.JobsFailed += r.failed
		for id, ord := range r.ordered {
			snapshot[id] = ord
		}
		if !r.optimized {
			sum.DaysSkipped++
			continue
		}
		sum.DaysOptimized++
		recs = append(recs, metrics.OptimizationResult{
			RunID:        sum.RunID,
			Date:         r.date,
			JobsOrdered:  len(r.ordered),
			DriveMinutes: r.driveMin,
			Persisted:    r.persisted,
			Failed:       r.failed,
			Offline:      r.offline,
			Time:         o.now(),
		})
	}

	if o.generation.Load() != gen {
		// A newer pass started while this one ran; its result owns the
		// snapshot and state.
		sum.Stale = true
		return sum, nil
	}

	o.mu.Lock()
	o.snapshot = snapshot
	o.state = StateOptimized
	o.mu.Unlock()

	if o.sink != nil && len(recs) > 0 {
		if err := o.sink.RecordOptimization(recs); err != nil {
			o.log.Errorf("optimization metrics: %v", err)
		}
	}
	if o.bus != nil {
		o.bus.Publish(events.OptimizationCompleted{
			RunID:         sum.RunID,
			DaysOptimized: sum.DaysOptimized,
			JobsPersisted: sum.JobsPersisted,
			JobsFailed:    sum.JobsFailed,
			Time:          o.now(),
		})
	}
	o.log.Infof("optimized %d days (%d skipped), persisted %d jobs (%d failed)",
		sum.DaysOptimized, sum.DaysSkipped, sum.JobsPersisted, sum.JobsFailed)
	return sum, nil
}

func (o *Orchestrator) toIdle() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
}

// optimizeDay orders one day. Days with fewer than two scheduled jobs
// bypass the optimizer entirely; their unordered jobs are appended after
// the current maximum order.
func (o *Orchestrator) optimizeDay(ctx context.Context, gen uint64, origin, date string, dayJobs []model.Job, addrByCustomer map[string]string) dayResult {
	res := dayResult{date: date, ordered: make(map[string]int)}

	var scheduled, rest []model.Job
	for _, j := range dayJobs {
		if j.Status == model.StatusScheduled {
			scheduled = append(scheduled, j)
		} else {
			rest = append(rest, j)
		}
	}

	if len(scheduled) < 2 {
		// The day is left untouched apart from giving unordered
		// non-scheduled jobs a position after the current maximum.
		o.appendUnordered(ctx, date, dayJobs, rest, &res)
		return res
	}

	stops := make([]Stop, 0, len(scheduled))
	for _, j := range slots.SortForDay(scheduled) {
		addr := addrByCustomer[j.CustomerID]
		if addr == "" {
			o.log.Warnf("optimize %s: job %s has no customer address, skipping day", date, j.ID)
			return res
		}
		stops = append(stops, Stop{ID: j.ID, Address: addr, Order: j.OrderValue(len(stops) + 1)})
	}

	result, err := o.optimizer.OptimizeRoute(ctx, origin, stops)
	if err != nil || result == nil {
		if err != nil {
			o.log.Warnf("optimize %s: %v", date, err)
		}
		if !o.cfg.OfflineFallback {
			return res
		}
		result, err = o.offline.OptimizeRoute(ctx, origin, stops)
		if err != nil {
			o.log.Errorf("offline optimize %s: %v", date, err)
			return res
		}
		res.offline = true
	}
	if len(result.Stops) != len(stops) {
		o.log.Warnf("optimize %s: optimizer returned %d of %d stops, skipping day", date, len(result.Stops), len(stops))
		return res
	}

	if o.generation.Load() != gen {
		// A newer pass owns the horizon now; do not persist stale orders.
		return res
	}

	legByDest := make(map[string]Leg, len(result.Legs))
	for _, l := range result.Legs {
		legByDest[l.ToAddress] = l
	}

	byID := make(map[string]model.Job, len(scheduled))
	for _, j := range scheduled {
		byID[j.ID] = j
	}

	clock := o.overrides.Get(date).StartHour * 60
	for i, stop := range result.Stops {
		j, ok := byID[stop.ID]
		if !ok {
			o.log.Warnf("optimize %s: unknown stop %s", date, stop.ID)
			continue
		}
		if i > 0 {
			legMin := o.cfg.DefaultLegMinutes
			if leg, ok := legByDest[stop.Address]; ok && leg.DurationMinutes > 0 {
				legMin = leg.DurationMinutes
			}
			clock += o.cfg.ServiceMinutes + legMin
			j.DriveTime = legMin
			res.driveMin += legMin
		}
		j.Order = model.IntPtr(i + 1)
		j.ScheduledTime = model.StringPtr(model.FormatClock(clock/60, clock%60))
		if _, err := o.jobs.UpdateJob(ctx, j); err != nil {
			o.log.Errorf("optimize %s: persist job %s: %v", date, j.ID, err)
			res.failed++
			continue
		}
		res.ordered[j.ID] = i + 1
		res.persisted++
	}

	next := len(result.Stops)
	for _, j := range slots.SortForDay(rest) {
		if j.Order != nil {
			continue
		}
		next++
		j.Order = model.IntPtr(next)
		if _, err := o.jobs.UpdateJob(ctx, j); err != nil {
			o.log.Errorf("optimize %s: persist job %s: %v", date, j.ID, err)
			res.failed++
			continue
		}
		res.ordered[j.ID] = next
		res.persisted++
	}
	o.warmDriveTimes(ctx, origin, date, result.Stops)
	res.optimized = true
	return res
}

// warmDriveTimes resolves the day's leg pairs in the background and
// announces the batch once every pair has settled, prompting a single
// display refresh per optimized day.
func (o *Orchestrator) warmDriveTimes(ctx context.Context, origin, date string, ordered []Stop) {
	pairs := make([]drivetime.Pair, 0, len(ordered))
	prev := origin
	for _, s := range ordered {
		pairs = append(pairs, drivetime.Pair{From: prev, To: s.Address})
		prev = s.Address
	}
	o.estimator.ResolveBatch(context.WithoutCancel(ctx), pairs, func() {
		if o.bus == nil {
			return
		}
		o.bus.Publish(events.DriveTimeBatchResolved{
			Date:  date,
			Pairs: len(pairs),
			Time:  o.now(),
		})
	})
}

// appendUnordered gives unordered non-scheduled jobs an order after the
// day's current maximum without touching anything else.
func (o *Orchestrator) appendUnordered(ctx context.Context, date string, dayJobs, unscheduled []model.Job, res *dayResult) {
	maxOrder := 0
	for _, j := range dayJobs {
		if j.Order != nil && *j.Order > maxOrder {
			maxOrder = *j.Order
		}
	}
	for _, j := range slots.SortForDay(unscheduled) {
		if j.Order != nil {
			continue
		}
		maxOrder++
		j.Order = model.IntPtr(maxOrder)
		if _, err := o.jobs.UpdateJob(ctx, j); err != nil {
			o.log.Errorf("optimize %s: persist job %s: %v", date, j.ID, err)
			res.failed++
			continue
		}
		res.ordered[j.ID] = maxOrder
		res.persisted++
	}
}
