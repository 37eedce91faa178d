package suggest

import (
	"context"
	"fmt"

	"github.com/branchnm/cutplan/core/model"
	"github.com/branchnm/cutplan/core/slots"
)

// AcceptMove reschedules every job in the suggestion to targetDate.
// Moved jobs lose their route order and scheduled time and append at the
// end of the target day. Persistence is per-job: a failure on one job
// does not stop the rest, and the error reports how many failed.
func (e *Engine) AcceptMove(ctx context.Context, sug model.MoveSuggestion, targetDate string) error {
	if targetDate == "" {
		targetDate = sug.SuggestedDate
	}
	if _, err := model.ParseDay(targetDate); err != nil {
		return err
	}
	jobs, err := e.jobs.FetchJobs(ctx)
	if err != nil {
		return fmt.Errorf("accept move: %w", err)
	}
	byID := make(map[string]model.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	failed := 0
	for _, id := range sug.JobIDs {
		j, ok := byID[id]
		if !ok {
			e.log.Warnf("accept move: job %s not found", id)
			failed++
			continue
		}
		j.Date = targetDate
		j.Order = nil
		j.ScheduledTime = nil
		if _, err := e.jobs.UpdateJob(ctx, j); err != nil {
			e.log.Errorf("accept move: job %s: %v", id, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("accept move: %d of %d jobs failed", failed, len(sug.JobIDs))
	}
	return nil
}

// AcceptStartTime records the day timing override. newEnd of 0 keeps the
// default end of day.
func (e *Engine) AcceptStartTime(date string, newStart, newEnd int) error {
	if _, err := model.ParseDay(date); err != nil {
		return err
	}
	w := slots.Window{StartHour: newStart, EndHour: newEnd}
	e.overrides.Set(date, w)
	return nil
}

// AcceptAll applies every pending suggestion sequentially. It is not
// transactional: a failure on one suggestion does not block the rest.
// It returns how many suggestions were applied and how many failed.
func (e *Engine) AcceptAll(ctx context.Context, set model.SuggestionSet) (applied, failed int) {
	for _, m := range set.Moves {
		if err := e.AcceptMove(ctx, m, m.SuggestedDate); err != nil {
			e.log.Errorf("accept all: move from %s: %v", m.CurrentDate, err)
			failed++
			continue
		}
		applied++
	}
	for _, s := range set.StartTimes {
		if err := e.AcceptStartTime(s.Date, s.SuggestedStart, s.SuggestedEnd); err != nil {
			e.log.Errorf("accept all: start time on %s: %v", s.Date, err)
			failed++
			continue
		}
		applied++
	}
	return applied, failed
}
