// Package reorder applies manual route edits on top of the persisted job
// store: single-day and cross-day moves with a single level of undo.
package reorder

import (
	"context"
	"fmt"

	"github.com/branchnm/cutplan/core/logger"
	"github.com/branchnm/cutplan/core/model"
	"github.com/branchnm/cutplan/core/slots"
	"github.com/branchnm/cutplan/core/storage"
)

// Controller performs manual reordering against the job store.
type Controller struct {
	jobs      storage.JobStore
	overrides *slots.Overrides
	undo      *UndoController
	log       logger.Logger
}

// NewController creates a Controller. undo may be nil to disable undo
// tracking.
func NewController(jobs storage.JobStore, overrides *slots.Overrides, undo *UndoController, log logger.Logger) *Controller {
	return &Controller{jobs: jobs, overrides: overrides, undo: undo, log: log}
}

// Move places jobID at targetIndex on targetDate. A move within the same
// day reorders it; a cross-day move also updates the date and recomputes
// scheduled times for the destination day. Unlocatable jobs and moves to
// the job's current position are no-ops. Each touched job is persisted
// individually.
func (c *Controller) Move(ctx context.Context, jobID, targetDate string, targetIndex int) error {
	jobs, err := c.jobs.FetchJobs(ctx)
	if err != nil {
		return fmt.Errorf("reorder: fetch jobs: %w", err)
	}
	var src *model.Job
	byDate := make(map[string][]model.Job)
	for _, j := range jobs {
		byDate[j.Date] = append(byDate[j.Date], j)
		if j.ID == jobID {
			jj := j
			src = &jj
		}
	}
	if src == nil {
		c.log.Warnf("reorder: job %s not found", jobID)
		return nil
	}
	if targetDate == "" {
		targetDate = src.Date
	}
	if _, err := model.ParseDay(targetDate); err != nil {
		return err
	}

	sourceDay := slots.SortForDay(byDate[src.Date])
	sourceIndex := indexOf(sourceDay, jobID)
	if src.Date == targetDate && sourceIndex == targetIndex {
		return nil
	}

	prior := undoRecord(*src, sourceIndex)

	if src.Date == targetDate {
		day := removeAt(sourceDay, sourceIndex)
		day = insertAt(day, *src, targetIndex)
		if err := c.renumber(ctx, day, false); err != nil {
			return err
		}
	} else {
		moved := *src
		moved.Date = targetDate
		destDay := insertAt(slots.SortForDay(byDate[targetDate]), moved, targetIndex)
		if err := c.renumber(ctx, destDay, true); err != nil {
			return err
		}
		if err := c.renumber(ctx, removeAt(sourceDay, sourceIndex), false); err != nil {
			return err
		}
	}

	if c.undo != nil {
		c.undo.Record(prior)
	}
	return nil
}

// renumber persists 1..N order values for the day. When rescheduled is
// set, scheduled times are recomputed from the day's slot assignment.
func (c *Controller) renumber(ctx context.Context, day []model.Job, rescheduled bool) error {
	var startHour int
	var slotByID map[string]int
	if rescheduled && len(day) > 0 {
		startHour = c.overrides.Get(day[0].Date).StartHour
	}
	failed := 0
	for i := range day {
		day[i].Order = model.IntPtr(i + 1)
	}
	if rescheduled {
		slotByID = slots.AssignSlots(day, startHour)
	}
	for _, j := range day {
		if rescheduled {
			j.ScheduledTime = model.StringPtr(slots.ClockForSlot(slotByID[j.ID]))
		}
		if _, err := c.jobs.UpdateJob(ctx, j); err != nil {
			c.log.Errorf("reorder: persist job %s: %v", j.ID, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("reorder: %d of %d jobs failed to persist", failed, len(day))
	}
	return nil
}

func indexOf(day []model.Job, jobID string) int {
	for i, j := range day {
		if j.ID == jobID {
			return i
		}
	}
	return -1
}

func removeAt(day []model.Job, i int) []model.Job {
	if i < 0 || i >= len(day) {
		return day
	}
	out := make([]model.Job, 0, len(day)-1)
	out = append(out, day[:i]...)
	return append(out, day[i+1:]...)
}

func insertAt(day []model.Job, j model.Job, i int) []model.Job {
	if i < 0 || i > len(day) {
		i = len(day)
	}
	out := make([]model.Job, 0, len(day)+1)
	out = append(out, day[:i]...)
	out = append(out, j)
	return append(out, day[i:]...)
}
