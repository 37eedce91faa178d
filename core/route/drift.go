package route

import (
	"github.com/branchnm/cutplan/core/events"
	"github.com/branchnm/cutplan/core/model"
)

// CheckDrift diffs the current job collection against the last optimized
// snapshot. Any mismatch while Optimized flips the state back to Idle and
// publishes DriftDetected, re-enabling manual optimization. It returns
// true when drift was detected on this call.
func (o *Orchestrator) CheckDrift(jobs []model.Job) bool {
	o.mu.Lock()
	if o.state != StateOptimized || o.snapshot == nil {
		o.mu.Unlock()
		return false
	}
	snapshot := o.snapshot
	o.mu.Unlock()

	driftID, driftDate := "", ""
	current := make(map[string]model.Job, len(jobs))
	for _, j := range jobs {
		current[j.ID] = j
	}
	for id, ord := range snapshot {
		j, ok := current[id]
		if !ok || j.Order == nil || *j.Order != ord {
			driftID = id
			driftDate = j.Date
			break
		}
	}
	if driftID == "" {
		for _, j := range jobs {
			if j.Order == nil {
				continue
			}
			if _, known := snapshot[j.ID]; !known {
				driftID = j.ID
				driftDate = j.Date
				break
			}
		}
	}
	if driftID == "" {
		return false
	}

	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
	o.log.Infof("schedule drift on job %s, optimization re-enabled", driftID)
	if o.bus != nil {
		o.bus.Publish(events.DriftDetected{JobID: driftID, Date: driftDate, Time: o.now()})
	}
	return true
}

// Snapshot returns a copy of the last optimized snapshot, nil when no
// pass has completed.
func (o *Orchestrator) Snapshot() map[string]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.snapshot == nil {
		return nil
	}
	out := make(map[string]int, len(o.snapshot))
	for k, v := range o.snapshot {
		out[k] = v
	}
	return out
}
