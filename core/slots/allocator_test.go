package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/branchnm/cutplan/core/model"
)

func job(id string, order int) model.Job {
	return model.Job{ID: id, Status: model.StatusScheduled, Order: model.IntPtr(order)}
}

func TestSortForDayByOrder(t *testing.T) {
	jobs := []model.Job{job("C", 3), job("A", 1), job("B", 2)}
	sorted := SortForDay(jobs)
	assert.Equal(t, "A", sorted[0].ID)
	assert.Equal(t, "B", sorted[1].ID)
	assert.Equal(t, "C", sorted[2].ID)
	// Input order is untouched.
	assert.Equal(t, "C", jobs[0].ID)
}

func TestSortForDayCompletedLast(t *testing.T) {
	done := job("done", 1)
	done.Status = model.StatusCompleted
	jobs := []model.Job{done, job("B", 5), job("A", 2)}
	sorted := SortForDay(jobs)
	assert.Equal(t, []string{"A", "B", "done"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
}

func TestSortForDayUnorderedAfterOrdered(t *testing.T) {
	unordered := model.Job{ID: "u", Status: model.StatusScheduled}
	jobs := []model.Job{unordered, job("A", 1)}
	sorted := SortForDay(jobs)
	assert.Equal(t, "A", sorted[0].ID)
	assert.Equal(t, "u", sorted[1].ID)
}

func TestSortForDayScheduledTimeTiebreak(t *testing.T) {
	a := model.Job{ID: "a", Status: model.StatusScheduled, ScheduledTime: model.StringPtr("9:00")}
	b := model.Job{ID: "b", Status: model.StatusScheduled, ScheduledTime: model.StringPtr("7:30")}
	sorted := SortForDay([]model.Job{a, b})
	assert.Equal(t, "b", sorted[0].ID)
}

func TestSortForDayStableOnFullTies(t *testing.T) {
	a := model.Job{ID: "first", Status: model.StatusScheduled}
	b := model.Job{ID: "second", Status: model.StatusScheduled}
	for i := 0; i < 5; i++ {
		sorted := SortForDay([]model.Job{a, b})
		assert.Equal(t, "first", sorted[0].ID)
		assert.Equal(t, "second", sorted[1].ID)
	}
}

func TestAssignSlotsDefaultStart(t *testing.T) {
	jobs := []model.Job{job("C", 3), job("A", 1), job("B", 2)}
	got := AssignSlots(jobs, DefaultStartHour)
	assert.Equal(t, 0, got["A"])
	assert.Equal(t, 1, got["B"])
	assert.Equal(t, 2, got["C"])
	assert.Equal(t, "5 AM", LabelFor(got["A"], DefaultStartHour))
	assert.Equal(t, "6 AM", LabelFor(got["B"], DefaultStartHour))
	assert.Equal(t, "7 AM", LabelFor(got["C"], DefaultStartHour))
}

func TestAssignSlotsStartOverrideShift(t *testing.T) {
	jobs := []model.Job{job("A", 1), job("B", 2)}
	got := AssignSlots(jobs, 10)
	assert.Equal(t, 5, got["A"])
	assert.Equal(t, 6, got["B"])
}

func TestAssignSlotsClampedToWindow(t *testing.T) {
	jobs := make([]model.Job, 0, 6)
	for i := 0; i < 6; i++ {
		jobs = append(jobs, job(string(rune('a'+i)), i+1))
	}
	got := AssignSlots(jobs, 15)
	for _, j := range jobs {
		assert.LessOrEqual(t, got[j.ID], MaxSlot)
	}
	assert.Equal(t, MaxSlot, got["f"])
}

func TestAssignSlotsEarlyOverrideIgnored(t *testing.T) {
	// An override before the default start never shifts slots negative.
	got := AssignSlots([]model.Job{job("A", 1)}, 3)
	assert.Equal(t, 0, got["A"])
}

func TestAssignSlotsStableAcrossRuns(t *testing.T) {
	jobs := []model.Job{job("C", 7), job("A", 2), job("B", 5)}
	first := AssignSlots(jobs, DefaultStartHour)

	// Persisting the produced positions as contiguous orders and
	// re-running reproduces the same assignment.
	rerun := make([]model.Job, len(jobs))
	copy(rerun, jobs)
	for i := range rerun {
		rerun[i].Order = model.IntPtr(first[rerun[i].ID] + 1)
	}
	assert.Equal(t, first, AssignSlots(rerun, DefaultStartHour))

	// The same holds under a start override.
	assert.Equal(t, AssignSlots(jobs, 10), AssignSlots(rerun, 10))
}

func TestLabelForAfternoon(t *testing.T) {
	assert.Equal(t, "12 PM", LabelFor(7, DefaultStartHour))
	assert.Equal(t, "1 PM", LabelFor(8, DefaultStartHour))
	assert.Equal(t, "6 PM", LabelFor(13, DefaultStartHour))
}

func TestClockForSlot(t *testing.T) {
	assert.Equal(t, "5:00", ClockForSlot(0))
	assert.Equal(t, "12:00", ClockForSlot(7))
}

func TestOverridesDefaultWindow(t *testing.T) {
	o := NewOverrides()
	w := o.Get("2026-06-01")
	assert.Equal(t, DefaultStartHour, w.StartHour)
	assert.Equal(t, DefaultEndHour, w.EndHour)
	assert.False(t, o.Has("2026-06-01"))
}

func TestOverridesSetAndClear(t *testing.T) {
	o := NewOverrides()
	o.Set("2026-06-01", Window{StartHour: 10})
	w := o.Get("2026-06-01")
	assert.Equal(t, 10, w.StartHour)
	assert.Equal(t, DefaultEndHour, w.EndHour)
	assert.True(t, o.Has("2026-06-01"))

	o.Clear("2026-06-01")
	assert.False(t, o.Has("2026-06-01"))
	assert.Equal(t, DefaultStartHour, o.Get("2026-06-01").StartHour)
}
