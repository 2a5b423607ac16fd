package core

import "time"

// DefaultDayCapacity is the per-day non-completed item budget.
const DefaultDayCapacity = 3

// DefaultRescheduleHorizonDays bounds the balancer's forward scan. An entry
// that finds no vacancy within the horizon keeps its original date.
const DefaultRescheduleHorizonDays = 90

// WorkloadMap tracks per-day non-completed item counts per container. It is
// built from the batch snapshot and mutated only by the balancer, so the
// per-day budget is honored incrementally within a batch, not just against
// pre-batch state.
type WorkloadMap struct {
	counts map[string]map[string]int // container -> ISO date -> count
}

// NewWorkloadMap derives the initial per-day counts from a container
// snapshot. Completed items and items without a date do not count against
// the budget.
func NewWorkloadMap(snapshot *ContainerSnapshot) *WorkloadMap {
	w := &WorkloadMap{counts: make(map[string]map[string]int)}
	if snapshot == nil {
		return w
	}
	for container, items := range snapshot.Items {
		for _, item := range items {
			if item.Completed || item.Due.IsZero() {
				continue
			}
			w.add(container, Midnight(item.Due), 1)
		}
	}
	return w
}

// CountOn returns the current count for a container day.
func (w *WorkloadMap) CountOn(container string, day time.Time) int {
	return w.counts[container][Midnight(day).Format("2006-01-02")]
}

// Assign records one more item on a container day.
func (w *WorkloadMap) Assign(container string, day time.Time) {
	w.add(container, Midnight(day), 1)
}

// Release removes one item from a container day, never going below zero.
func (w *WorkloadMap) Release(container string, day time.Time) {
	if w.CountOn(container, day) > 0 {
		w.add(container, Midnight(day), -1)
	}
}

func (w *WorkloadMap) add(container string, day time.Time, n int) {
	if w.counts[container] == nil {
		w.counts[container] = make(map[string]int)
	}
	w.counts[container][day.Format("2006-01-02")] += n
}

// WorkloadBalancer shifts entries off overloaded days to the first
// under-capacity day, scanning forward one day at a time.
type WorkloadBalancer struct {
	capacity int
	horizon  int
	workload *WorkloadMap
}

// NewWorkloadBalancer creates a balancer over the given workload map.
// Non-positive capacity or horizon fall back to the defaults.
func NewWorkloadBalancer(workload *WorkloadMap, capacity, horizonDays int) *WorkloadBalancer {
	if capacity <= 0 {
		capacity = DefaultDayCapacity
	}
	if horizonDays <= 0 {
		horizonDays = DefaultRescheduleHorizonDays
	}
	return &WorkloadBalancer{capacity: capacity, horizon: horizonDays, workload: workload}
}

// Place assigns an entry to its target day or the next day with remaining
// capacity. workweek restricts the scan to Monday-Friday for containers with
// workweek scheduling. The assigned day's counter is incremented either way,
// so later entries in the same batch see the updated load. moved reports
// whether the date changed.
func (b *WorkloadBalancer) Place(container string, day time.Time, workweek bool) (assigned time.Time, moved bool) {
	target := Midnight(day)
	if workweek {
		target = skipWeekend(target)
	}

	candidate := target
	for i := 0; i <= b.horizon; i++ {
		if workweek {
			candidate = skipWeekend(candidate)
		}
		if b.workload.CountOn(container, candidate) < b.capacity {
			b.workload.Assign(container, candidate)
			return candidate, !candidate.Equal(Midnight(day))
		}
		candidate = candidate.AddDate(0, 0, 1)
	}

	// No vacancy within the horizon: keep the target day rather than
	// pushing the entry out indefinitely.
	b.workload.Assign(container, target)
	return target, !target.Equal(Midnight(day))
}

// Release removes an item from a container day, freeing its slot for
// later placements.
func (b *WorkloadBalancer) Release(container string, day time.Time) {
	b.workload.Release(container, day)
}

// Capacity returns the per-day budget the balancer enforces.
func (b *WorkloadBalancer) Capacity() int {
	return b.capacity
}

func skipWeekend(day time.Time) time.Time {
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
