// Package drivetime resolves travel times between job addresses. An
// external routing service is preferred; a deterministic street heuristic
// answers immediately and offline. Cache entries are directional: the
// A→B estimate is cached separately from B→A.
package drivetime

import (
	"context"
	"sync"
	"time"

	"github.com/branchnm/cutplan/core/logger"
	"github.com/branchnm/cutplan/core/metrics"
)

// DriveTime is a resolved travel estimate between two addresses.
type DriveTime struct {
	DurationMinutes int
	DurationText    string
}

// Provider is the external routing collaborator. A nil result with nil
// error means the service could not estimate the pair.
type Provider interface {
	DriveTime(ctx context.Context, from, to string) (*DriveTime, error)
}

// Pair identifies one directional address pair.
type Pair struct {
	From string
	To   string
}

func (p Pair) key() string { return p.From + "|" + p.To }

// Estimator caches provider results and falls back to the street
// heuristic so callers always get a value immediately.
type Estimator struct {
	provider Provider // nil means offline only
	heur     Heuristic
	log      logger.Logger
	sink     metrics.DriveTimeRecorder // optional

	mu       sync.Mutex
	cache    map[string]DriveTime
	inflight map[string]chan struct{} // closed when the fetch settles
}

// NewEstimator creates an Estimator. provider may be nil for offline use;
// sink may be nil.
func NewEstimator(provider Provider, heur Heuristic, log logger.Logger, sink metrics.DriveTimeRecorder) *Estimator {
	return &Estimator{
		provider: provider,
		heur:     heur,
		log:      log,
		sink:     sink,
		cache:    make(map[string]DriveTime),
		inflight: make(map[string]chan struct{}),
	}
}

// Get returns the travel estimate for a directional pair. A cached
// provider result wins; otherwise the heuristic answers and, when a
// provider is configured, a background fetch upgrades the cache for the
// next caller.
func (e *Estimator) Get(ctx context.Context, from, to string) DriveTime {
	p := Pair{From: from, To: to}
	e.mu.Lock()
	if v, ok := e.cache[p.key()]; ok {
		e.mu.Unlock()
		return v
	}
	launch := false
	if e.provider != nil {
		_, launch = e.markInflight(p)
	}
	e.mu.Unlock()

	if launch {
		go e.resolve(context.WithoutCancel(ctx), p)
	}
	dt := e.heur.Estimate(from, to)
	e.record("fallback", dt.DurationMinutes)
	return dt
}

// Lookup returns the cached provider result, if any.
func (e *Estimator) Lookup(from, to string) (DriveTime, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.cache[Pair{From: from, To: to}.key()]
	return v, ok
}

// ClearCache drops every cached entry. The orchestrator calls this at the
// start of each full re-optimization pass.
func (e *Estimator) ClearCache() {
	e.mu.Lock()
	e.cache = make(map[string]DriveTime)
	e.mu.Unlock()
}

// markInflight registers the pair as being fetched and returns the channel
// closed once the fetch settles. launched reports whether this caller owns
// the fetch. Callers hold e.mu.
func (e *Estimator) markInflight(p Pair) (ch chan struct{}, launched bool) {
	if ch, busy := e.inflight[p.key()]; busy {
		return ch, false
	}
	ch = make(chan struct{})
	e.inflight[p.key()] = ch
	return ch, true
}

// record reports one resolution to the metrics sink, if any.
func (e *Estimator) record(source string, minutes int) {
	if e.sink == nil {
		return
	}
	if err := e.sink.RecordDriveTimeLookup(metrics.DriveTimeLookup{
		Source:  source,
		Minutes: minutes,
		Time:    time.Now(),
	}); err != nil {
		e.log.Debugf("drive time metrics: %v", err)
	}
}

// resolve fetches one pair from the provider and upgrades the cache.
// Provider failures are swallowed: the heuristic value already served the
// caller.
func (e *Estimator) resolve(ctx context.Context, p Pair) bool {
	defer func() {
		e.mu.Lock()
		if ch, ok := e.inflight[p.key()]; ok {
			delete(e.inflight, p.key())
			close(ch)
		}
		e.mu.Unlock()
	}()
	dt, err := e.provider.DriveTime(ctx, p.From, p.To)
	if err != nil || dt == nil {
		if err != nil {
			e.log.Debugf("drive time %s -> %s: %v", p.From, p.To, err)
		}
		return false
	}
	e.mu.Lock()
	e.cache[p.key()] = *dt
	e.mu.Unlock()
	e.record("provider", dt.DurationMinutes)
	return true
}

// ResolveBatch resolves every pair concurrently and invokes done exactly
// once when every pair has settled, regardless of per-pair outcomes.
// Pairs already being fetched by a concurrent Get are waited on rather
// than skipped. With no provider or no pairs, done fires immediately.
func (e *Estimator) ResolveBatch(ctx context.Context, pairs []Pair, done func()) {
	var once sync.Once
	fire := func() {
		if done != nil {
			once.Do(done)
		}
	}
	if e.provider == nil || len(pairs) == 0 {
		fire()
		return
	}

	var wg sync.WaitGroup
	for _, p := range pairs {
		e.mu.Lock()
		if _, cached := e.cache[p.key()]; cached {
			e.mu.Unlock()
			continue
		}
		ch, launched := e.markInflight(p)
		e.mu.Unlock()

		wg.Add(1)
		if launched {
			go func(p Pair) {
				defer wg.Done()
				e.resolve(ctx, p)
			}(p)
			continue
		}
		// Another caller owns the fetch; its completion still counts
		// toward this batch.
		go func(ch <-chan struct{}) {
			defer wg.Done()
			<-ch
		}(ch)
	}
	go func() {
		wg.Wait()
		fire()
	}()
}
