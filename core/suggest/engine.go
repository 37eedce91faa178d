// Package suggest turns classified forecasts into schedule suggestions.
// Generation is deterministic and stateless: identical inputs produce the
// identical suggestion set, and an accepted suggestion disappears on the
// next recompute only because the underlying jobs or overrides changed.
package suggest

import (
	"fmt"
	"time"

	"github.com/branchnm/cutplan/core/logger"
	"github.com/branchnm/cutplan/core/metrics"
	"github.com/branchnm/cutplan/core/model"
	"github.com/branchnm/cutplan/core/slots"
	"github.com/branchnm/cutplan/core/storage"
	"github.com/branchnm/cutplan/core/weather"
)

// Config carries the suggestion heuristics.
type Config struct {
	// WindowDays is the number of forecast days considered.
	WindowDays int `json:"window_days"`
	// DayEndHour closes the working day for capacity estimates.
	DayEndHour int `json:"day_end_hour"`
	// EarlyStartHour is the start proposed for start-early days.
	EarlyStartHour int `json:"early_start_hour"`
	// JobsPerHour approximates throughput for capacity estimates.
	JobsPerHour int `json:"jobs_per_hour"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		WindowDays:     5,
		DayEndHour:     slots.DefaultEndHour,
		EarlyStartHour: 6,
		JobsPerHour:    1,
	}
}

// Engine generates and applies weather suggestions.
type Engine struct {
	cfg        Config
	classifier *weather.Classifier
	jobs       storage.JobStore
	overrides  *slots.Overrides
	log        logger.Logger
	sink       metrics.SuggestionRecorder // optional
}

// NewEngine creates an Engine. sink may be nil.
func NewEngine(cfg Config, classifier *weather.Classifier, jobs storage.JobStore, overrides *slots.Overrides, log logger.Logger, sink metrics.SuggestionRecorder) *Engine {
	def := DefaultConfig()
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = def.WindowDays
	}
	if cfg.DayEndHour <= 0 {
		cfg.DayEndHour = def.DayEndHour
	}
	if cfg.EarlyStartHour <= 0 {
		cfg.EarlyStartHour = def.EarlyStartHour
	}
	if cfg.JobsPerHour <= 0 {
		cfg.JobsPerHour = def.JobsPerHour
	}
	return &Engine{
		cfg:        cfg,
		classifier: classifier,
		jobs:       jobs,
		overrides:  overrides,
		log:        log,
		sink:       sink,
	}
}

// dayInfo pairs a classified day with its scheduled workload.
type dayInfo struct {
	class     weather.Classification
	date      string
	weekday   time.Weekday
	scheduled []model.Job
}

// Generate computes the suggestion set for the forecast window. An empty
// or missing forecast yields an empty set; Generate never fails.
func (e *Engine) Generate(forecast []model.WeatherDay, jobsByDate map[string][]model.Job) model.SuggestionSet {
	var set model.SuggestionSet
	if len(forecast) == 0 {
		return set
	}
	if len(forecast) > e.cfg.WindowDays {
		forecast = forecast[:e.cfg.WindowDays]
	}

	days := make([]dayInfo, 0, len(forecast))
	for i, wd := range forecast {
		var prev *model.WeatherDay
		if i > 0 {
			prev = &forecast[i-1]
		}
		info := dayInfo{
			class: e.classifier.Classify(wd, prev),
			date:  wd.Date,
		}
		if t, err := model.ParseDay(wd.Date); err == nil {
			info.weekday = t.Weekday()
		}
		for _, j := range jobsByDate[wd.Date] {
			if j.Status == model.StatusScheduled {
				info.scheduled = append(info.scheduled, j)
			}
		}
		days = append(days, info)
	}

	for i, d := range days {
		switch d.class.Class {
		case weather.ClassBad:
			if len(d.scheduled) == 0 {
				continue
			}
			target := chooseTarget(days, i)
			if target == "" {
				continue
			}
			set.Moves = append(set.Moves, e.moveAll(d, target))
		case weather.ClassPartial:
			e.partialDay(&set, days, i)
		}
	}
	e.record(set)
	return set
}

// moveAll builds the single combined suggestion for a bad day.
func (e *Engine) moveAll(d dayInfo, target string) model.MoveSuggestion {
	ids := make([]string, 0, len(d.scheduled))
	for _, j := range slots.SortForDay(d.scheduled) {
		ids = append(ids, j.ID)
	}
	reason := fmt.Sprintf("rain forecast for %s", d.date)
	if d.class.Severity == model.SeverityHeavy {
		reason = fmt.Sprintf("heavy rain forecast for %s", d.date)
	}
	return model.MoveSuggestion{
		JobIDs:        ids,
		CurrentDate:   d.date,
		SuggestedDate: target,
		Reason:        reason,
		Severity:      d.class.Severity,
	}
}

// partialDay emits timing adjustments for delay and start-early days,
// plus overflow moves when the compressed day cannot hold its jobs.
func (e *Engine) partialDay(set *model.SuggestionSet, days []dayInfo, i int) {
	d := days[i]
	window := e.overrides.Get(d.date)
	switch d.class.Adjust {
	case model.AdjustDelay:
		if window.StartHour < d.class.SafeStartHour {
			reason := fmt.Sprintf("morning rain on %s, start after %d:00", d.date, d.class.SafeStartHour)
			if d.class.PreviousNightRain {
				reason = fmt.Sprintf("wet grass on %s after overnight rain", d.date)
			}
			set.StartTimes = append(set.StartTimes, model.StartTimeSuggestion{
				Date:           d.date,
				CurrentStart:   window.StartHour,
				SuggestedStart: d.class.SafeStartHour,
				Reason:         reason,
				Type:           model.AdjustDelay,
			})
		}
		capacity := e.capacity(d.class.SafeStartHour, e.cfg.DayEndHour)
		e.moveOverflow(set, days, i, capacity)
	case model.AdjustStartEarly:
		if !e.overrides.Has(d.date) {
			set.StartTimes = append(set.StartTimes, model.StartTimeSuggestion{
				Date:           d.date,
				CurrentStart:   window.StartHour,
				SuggestedStart: e.cfg.EarlyStartHour,
				SuggestedEnd:   d.class.LastGoodHour,
				Reason:         fmt.Sprintf("rain arriving on %s, finish by %d:00", d.date, d.class.LastGoodHour),
				Type:           model.AdjustStartEarly,
			})
		}
		capacity := e.capacity(e.cfg.EarlyStartHour, d.class.LastGoodHour)
		e.moveOverflow(set, days, i, capacity)
	}
}

// capacity estimates how many jobs fit between two hours.
func (e *Engine) capacity(startHour, endHour int) int {
	hours := endHour - startHour
	if hours < 0 {
		hours = 0
	}
	return hours * e.cfg.JobsPerHour
}

// moveOverflow moves the jobs scheduled last off a compressed day.
func (e *Engine) moveOverflow(set *model.SuggestionSet, days []dayInfo, i int, capacity int) {
	d := days[i]
	if len(d.scheduled) <= capacity {
		return
	}
	target := chooseTarget(days, i)
	if target == "" {
		return
	}
	sorted := slots.SortForDay(d.scheduled)
	overflow := sorted[capacity:]
	ids := make([]string, 0, len(overflow))
	for _, j := range overflow {
		ids = append(ids, j.ID)
	}
	set.Moves = append(set.Moves, model.MoveSuggestion{
		JobIDs:        ids,
		CurrentDate:   d.date,
		SuggestedDate: target,
		Reason:        fmt.Sprintf("only %d jobs fit on %s around the rain", capacity, d.date),
		Severity:      model.SeverityModerate,
	})
}

// chooseTarget picks the landing day for moved jobs: future good days
// first, preferring the least-busy Friday or Saturday among them, then
// the least-busy future good day, then any good day. Date order breaks
// workload ties so the choice is deterministic.
func chooseTarget(days []dayInfo, from int) string {
	pick := func(candidates []dayInfo) string {
		best := ""
		bestLoad := 0
		for _, c := range candidates {
			if best == "" || len(c.scheduled) < bestLoad {
				best = c.date
				bestLoad = len(c.scheduled)
			}
		}
		return best
	}

	var future, futureWeekend, past []dayInfo
	for i, d := range days {
		if d.class.Class != weather.ClassGood {
			continue
		}
		if i > from {
			future = append(future, d)
			if d.weekday == time.Friday || d.weekday == time.Saturday {
				futureWeekend = append(futureWeekend, d)
			}
		} else if i != from {
			past = append(past, d)
		}
	}
	if t := pick(futureWeekend); t != "" {
		return t
	}
	if t := pick(future); t != "" {
		return t
	}
	return pick(past)
}

func (e *Engine) record(set model.SuggestionSet) {
	if e.sink == nil {
		return
	}
	now := time.Now()
	for _, m := range set.Moves {
		ev := metrics.SuggestionEvent{Date: m.CurrentDate, Kind: "move", JobCount: len(m.JobIDs), Severity: string(m.Severity), Time: now}
		if err := e.sink.RecordSuggestion(ev); err != nil {
			e.log.Errorf("suggestion metrics: %v", err)
		}
	}
	for _, s := range set.StartTimes {
		ev := metrics.SuggestionEvent{Date: s.Date, Kind: "start-time", Time: now}
		if err := e.sink.RecordSuggestion(ev); err != nil {
			e.log.Errorf("suggestion metrics: %v", err)
		}
	}
}
