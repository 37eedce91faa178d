package reorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/branchnm/cutplan/core/logger"
	"github.com/branchnm/cutplan/core/model"
	"github.com/branchnm/cutplan/core/storage"
)

// ErrNothingToUndo is returned when no move is undoable, either because
// none happened or because the undo window expired.
var ErrNothingToUndo = errors.New("nothing to undo")

// DefaultUndoWindow is how long a move stays undoable.
const DefaultUndoWindow = 5 * time.Second

// Move captures the state needed to reverse one reorder action.
type Move struct {
	JobID         string
	FromDate      string
	TimeSlot      int
	Order         *int
	ScheduledTime *string
	At            time.Time
}

func undoRecord(j model.Job, slot int) Move {
	return Move{
		JobID:         j.ID,
		FromDate:      j.Date,
		TimeSlot:      slot,
		Order:         j.Order,
		ScheduledTime: j.ScheduledTime,
	}
}

// UndoController tracks the single most recent move. A new move
// overwrites the previous record; there is no multi-level history.
type UndoController struct {
	jobs   storage.JobStore
	log    logger.Logger
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last *Move
}

// NewUndoController creates an UndoController with the default window.
func NewUndoController(jobs storage.JobStore, log logger.Logger) *UndoController {
	return &UndoController{jobs: jobs, log: log, window: DefaultUndoWindow, now: time.Now}
}

// SetClock overrides the time source, for tests.
func (u *UndoController) SetClock(now func() time.Time) { u.now = now }

// SetWindow overrides the expiry window.
func (u *UndoController) SetWindow(d time.Duration) {
	if d > 0 {
		u.window = d
	}
}

// Record stores the move as the current undo target.
func (u *UndoController) Record(m Move) {
	m.At = u.now()
	u.mu.Lock()
	u.last = &m
	u.mu.Unlock()
}

// CanUndo reports whether an unexpired move is available.
func (u *UndoController) CanUndo() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last != nil && u.now().Sub(u.last.At) <= u.window
}

// Undo re-applies the inverse of the last move: the job returns to its
// prior date, order and scheduled time. Undo is best effort; if the
// inverse write fails the store is re-read so the caller's view matches
// what actually persisted.
func (u *UndoController) Undo(ctx context.Context) error {
	u.mu.Lock()
	last := u.last
	u.last = nil
	u.mu.Unlock()
	if last == nil || u.now().Sub(last.At) > u.window {
		return ErrNothingToUndo
	}

	jobs, err := u.jobs.FetchJobs(ctx)
	if err != nil {
		return fmt.Errorf("undo: fetch jobs: %w", err)
	}
	for _, j := range jobs {
		if j.ID != last.JobID {
			continue
		}
		j.Date = last.FromDate
		j.Order = last.Order
		j.ScheduledTime = last.ScheduledTime
		if _, err := u.jobs.UpdateJob(ctx, j); err != nil {
			u.reconcile(ctx, last.JobID)
			return fmt.Errorf("undo job %s: %w", last.JobID, err)
		}
		return nil
	}
	return fmt.Errorf("undo: job %s: %w", last.JobID, storage.ErrNotFound)
}

// reconcile re-reads the store after a failed inverse write so the log
// reflects the persisted state rather than the optimistic one.
func (u *UndoController) reconcile(ctx context.Context, jobID string) {
	jobs, err := u.jobs.FetchJobs(ctx)
	if err != nil {
		u.log.Errorf("undo reconcile: %v", err)
		return
	}
	for _, j := range jobs {
		if j.ID == jobID {
			u.log.Warnf("undo failed, job %s remains on %s", jobID, j.Date)
			return
		}
	}
}
