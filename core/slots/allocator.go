// Package slots maps a day's ordered jobs onto fixed hourly slots.
// Slot numbers are display artifacts: they are recomputed from order and
// scheduled time after every mutation and never persisted on their own.
package slots

import (
	"fmt"
	"sort"

	"github.com/branchnm/cutplan/core/model"
)

const (
	// DefaultStartHour and DefaultEndHour bound the default working day.
	DefaultStartHour = 5
	DefaultEndHour   = 18
	// SlotCount is the number of hourly slots in the default window.
	SlotCount = DefaultEndHour - DefaultStartHour + 1
	// MaxSlot is the highest valid slot index.
	MaxSlot = SlotCount - 1
)

// SortForDay orders one day's jobs for display and routing: active jobs
// before completed ones, then ascending route order, then scheduled time,
// preserving insertion order for full ties. Unordered jobs sort after
// every ordered job. The input slice is not modified.
func SortForDay(jobs []model.Job) []model.Job {
	sorted := make([]model.Job, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		ac, bc := a.Status == model.StatusCompleted, b.Status == model.StatusCompleted
		if ac != bc {
			return !ac
		}
		ao, bo := a.Order != nil, b.Order != nil
		if ao && bo && *a.Order != *b.Order {
			return *a.Order < *b.Order
		}
		if ao != bo {
			return ao
		}
		am, bm := clockOrLast(a.ScheduledTime), clockOrLast(b.ScheduledTime)
		return am < bm
	})
	return sorted
}

func clockOrLast(s *string) int {
	if s == nil {
		return 24 * 60
	}
	return model.ClockMinutes(*s)
}

// AssignSlots maps each job to its hourly slot index for the day.
// startOverride shifts the whole day later when it exceeds the default
// start; indices are clamped to the fixed window.
func AssignSlots(jobs []model.Job, startOverride int) map[string]int {
	shift := startOverride - DefaultStartHour
	if shift < 0 {
		shift = 0
	}
	out := make(map[string]int, len(jobs))
	for pos, j := range SortForDay(jobs) {
		slot := pos + shift
		if slot > MaxSlot {
			slot = MaxSlot
		}
		out[j.ID] = slot
	}
	return out
}

// LabelFor renders a slot index as a 12-hour clock label such as "5 AM".
func LabelFor(slot, startOverride int) string {
	hour := DefaultStartHour + slot
	if hour < startOverride {
		hour = startOverride
	}
	suffix := "AM"
	display := hour
	switch {
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	case hour == 0:
		display = 12
	}
	return fmt.Sprintf("%d %s", display, suffix)
}

// ClockForSlot returns the 24h "H:MM" scheduled time for a slot index.
func ClockForSlot(slot int) string {
	return model.FormatClock(DefaultStartHour+slot, 0)
}
