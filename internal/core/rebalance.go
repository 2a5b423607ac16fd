package core

import (
	"context"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/rs/zerolog"
)

// Rebalancer pulls overdue items forward across every known container.
// A container that fails to list is recorded as an error and skipped; one
// bad backend never stops the scan of the others.
type Rebalancer struct {
	backends BackendSet
	resolver *ContainerResolver
	capacity int
	horizon  int
	events   EventLogger
	log      zerolog.Logger
}

// NewRebalancer wires a rebalancer from configuration. events may be nil.
func NewRebalancer(backends BackendSet, cfg *models.GlobalConfig, events EventLogger, log zerolog.Logger) *Rebalancer {
	return &Rebalancer{
		backends: backends,
		resolver: NewContainerResolver(cfg),
		capacity: cfg.DayCapacity,
		horizon:  cfg.RescheduleHorizonDays,
		events:   events,
		log:      log,
	}
}

// RebalanceOptions narrows which existing items a rebalance run considers.
type RebalanceOptions struct {
	// From and To bound the due dates considered, inclusive. Zero means
	// unbounded on that side.
	From time.Time
	To   time.Time
	// OverdueOnly restricts the run to items dated before today.
	OverdueOnly bool
}

// Run rebalances pre-existing backend items: overdue items are pulled to
// today, items on overloaded days move to the earliest day with remaining
// capacity. opts narrows the selection; the zero value considers every
// dated, non-completed item. The scan is exhaustive over the configured
// container list.
func (r *Rebalancer) Run(ctx context.Context, today time.Time, opts RebalanceOptions) (*models.RebalanceReport, error) {
	today = Midnight(today)
	report := &models.RebalanceReport{GeneratedAt: time.Now().UTC()}

	refs := r.resolver.Containers()

	// One snapshot across all containers so the balancer sees current load
	// before any moves land.
	snapshot := &ContainerSnapshot{Items: make(map[string][]models.Item, len(refs))}
	listed := make([]ContainerRef, 0, len(refs))
	for _, ref := range refs {
		backend, err := r.backends.For(ref.Destination)
		if err != nil {
			report.Errors = append(report.Errors, models.RebalanceError{
				Container: ref.Container,
				Error:     err.Error(),
			})
			continue
		}
		items, err := backend.ListContainer(ctx, ref.Container)
		if err != nil {
			report.Errors = append(report.Errors, models.RebalanceError{
				Container: ref.Container,
				Error:     err.Error(),
			})
			continue
		}
		snapshot.Items[ref.Container] = items
		listed = append(listed, ref)
		report.Scanned = append(report.Scanned, ref.Container)
	}

	balancer := NewWorkloadBalancer(NewWorkloadMap(snapshot), r.capacity, r.horizon)

	for _, ref := range listed {
		for _, item := range snapshot.Items[ref.Container] {
			if item.Completed || item.Due.IsZero() {
				continue
			}
			due := Midnight(item.Due)
			if !opts.From.IsZero() && due.Before(Midnight(opts.From)) {
				continue
			}
			if !opts.To.IsZero() && due.After(Midnight(opts.To)) {
				continue
			}
			if opts.OverdueOnly && !due.Before(today) {
				continue
			}
			target := due
			if due.Before(today) {
				target = today
			}
			r.moveItem(ctx, ref, item, target, balancer, report)
		}
	}

	if r.events != nil {
		_ = r.events.LogEvent("rebalance.completed", map[string]any{
			"scanned": report.Scanned,
			"moved":   len(report.Moves),
			"errors":  len(report.Errors),
		})
	}
	return report, nil
}

func (r *Rebalancer) moveItem(ctx context.Context, ref ContainerRef, item models.Item, target time.Time, balancer *WorkloadBalancer, report *models.RebalanceReport) {
	// The item's own snapshot count must not compete against its placement.
	due := Midnight(item.Due)
	balancer.Release(ref.Container, due)

	assigned, _ := balancer.Place(ref.Container, target, ref.Workweek)
	if assigned.Equal(due) {
		return
	}

	backend, err := r.backends.For(ref.Destination)
	if err != nil {
		report.Errors = append(report.Errors, models.RebalanceError{
			Container: ref.Container,
			ItemID:    item.ID,
			Title:     item.Title,
			Error:     err.Error(),
		})
		return
	}

	patch := models.ItemPatch{Due: &assigned}
	if err := backend.Update(ctx, ref.Container, item.ID, patch); err != nil {
		report.Errors = append(report.Errors, models.RebalanceError{
			Container: ref.Container,
			ItemID:    item.ID,
			Title:     item.Title,
			Error:     err.Error(),
		})
		return
	}

	move := models.RebalanceMove{
		Destination: ref.Destination,
		Container:   ref.Container,
		ItemID:      item.ID,
		Title:       item.Title,
		OldDate:     Midnight(item.Due).Format("2006-01-02"),
		NewDate:     assigned.Format("2006-01-02"),
	}
	report.Moves = append(report.Moves, move)
	r.log.Info().
		Str("container", ref.Container).
		Str("item", item.ID).
		Str("from", move.OldDate).
		Str("to", move.NewDate).
		Msg("overdue item rescheduled")
	if r.events != nil {
		_ = r.events.LogEvent("rebalance.moved", map[string]any{
			"container": ref.Container,
			"item":      item.ID,
			"from":      move.OldDate,
			"to":        move.NewDate,
		})
	}
}
