package core

import (
	"context"
	"errors"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/rs/zerolog"
)

// BatchProcessor runs the full pipeline over one batch of captured entries:
// normalize, classify, resolve priority and date, check duplicates, balance
// workload, dispatch, and report.
//
// One batch means one snapshot fetch followed by a sequential single-pass
// walk: the balancer's in-batch counters depend on ordered mutation, so
// entries are never processed concurrently.
type BatchProcessor struct {
	backends   BackendSet
	resolver   *ContainerResolver
	classifier *Classifier
	priorities *PriorityResolver
	dates      *DateResolver
	dupes      *DuplicateChecker
	capacity   int
	horizon    int
	events     EventLogger
	log        zerolog.Logger
}

// NewBatchProcessor wires the pipeline stages from configuration. events
// may be nil when observability is disabled.
func NewBatchProcessor(backends BackendSet, cfg *models.GlobalConfig, events EventLogger, log zerolog.Logger) *BatchProcessor {
	return &BatchProcessor{
		backends:   backends,
		resolver:   NewContainerResolver(cfg),
		classifier: NewClassifier(cfg.Routing),
		priorities: NewPriorityResolver(),
		dates:      NewDateResolver(),
		dupes:      NewDuplicateChecker(cfg.DuplicateRule),
		capacity:   cfg.DayCapacity,
		horizon:    cfg.RescheduleHorizonDays,
		events:     events,
		log:        log,
	}
}

// classified pairs a classified entry with its routing metadata for the
// dispatch walk.
type classified struct {
	entry  models.ClassifiedEntry
	result ClassifierResult
	// routeErr is set when no container could be resolved.
	routeErr error
}

// ProcessBatch runs one batch against the current date. Every entry yields
// exactly one outcome in the returned report; a batch-fatal auth failure
// aborts remaining dispatch calls but never drops entries from the report.
func (p *BatchProcessor) ProcessBatch(ctx context.Context, raw string, today time.Time) (*models.BatchReport, error) {
	entries := NormalizeBatch(raw)
	runDate := Midnight(today).Format("2006-01-02")

	p.logEvent("batch.started", map[string]any{"entries": len(entries), "date": runDate})

	// Pure stages first: classification, priority, date, container. The
	// resulting set determines which containers the snapshot must cover.
	items := make([]classified, len(entries))
	needed := make(map[string]ContainerRef)
	for i, entry := range entries {
		c := p.classify(entry, today)
		items[i] = c
		if c.routeErr == nil && c.entry.Entry.Text != "" {
			needed[c.entry.Container] = ContainerRef{
				Destination: c.entry.Destination,
				Container:   c.entry.Container,
				Workweek:    p.resolver.Workweek(c.entry.Destination),
			}
		}
	}

	refs := make([]ContainerRef, 0, len(needed))
	for _, ref := range needed {
		refs = append(refs, ref)
	}

	snapshot, err := FetchSnapshot(ctx, p.backends, refs)
	if err != nil {
		// The snapshot is the first I/O boundary. Losing it fails the
		// whole batch, but every entry still gets an outcome.
		return p.abortedReport(items, runDate, err), nil
	}

	balancer := NewWorkloadBalancer(NewWorkloadMap(snapshot), p.capacity, p.horizon)

	report := &models.BatchReport{RunDate: runDate, GeneratedAt: time.Now().UTC()}
	var fatal error
	for _, c := range items {
		outcome, dispatchErr := p.processOne(ctx, c, snapshot, balancer, fatal)
		if fatal == nil && fatalAuth(dispatchErr) {
			fatal = dispatchErr
			report.FatalError = dispatchErr.Error()
		}
		report.Outcomes = append(report.Outcomes, outcome)
		p.logOutcome(outcome)
	}

	report.Groups = groupOutcomes(report.Outcomes)
	p.logEvent("batch.completed", map[string]any{
		"entries": len(entries),
		"date":    runDate,
		"fatal":   report.FatalError != "",
	})
	return report, nil
}

// classify runs the pure pipeline stages for one entry. Each stage only
// adds fields to the classified entry.
func (p *BatchProcessor) classify(entry models.Entry, today time.Time) classified {
	result := p.classifier.Classify(entry)

	ce := models.ClassifiedEntry{
		Entry:         entry,
		Destination:   result.Destination,
		RuleName:      result.RuleName,
		LowConfidence: result.LowConfidence,
	}
	ce.Priority = p.priorities.Resolve(entry.Text, result.Destination)

	resolved := p.dates.Resolve(entry, result.Destination, today)
	ce.Due = resolved.Due
	ce.Start = resolved.Start
	ce.End = resolved.End

	container, err := p.resolver.Resolve(entry.Text, result.Destination)
	ce.Container = container

	return classified{entry: ce, result: result, routeErr: err}
}

// processOne walks one classified entry through the stateful stages. The
// second return value carries the raw dispatch error, so the batch loop can
// inspect its type; outcome.Error holds the same text verbatim.
func (p *BatchProcessor) processOne(ctx context.Context, c classified, snapshot *ContainerSnapshot, balancer *WorkloadBalancer, fatal error) (models.EntryOutcome, error) {
	ce := c.entry
	outcome := models.EntryOutcome{
		Entry:         ce.Entry.Raw,
		Destination:   ce.Destination,
		Container:     ce.Container,
		Priority:      ce.Priority,
		LowConfidence: ce.LowConfidence,
	}

	if ce.Entry.Text == "" {
		outcome.Kind = models.OutcomeInvalid
		outcome.Error = "entry has no resolvable title"
		return outcome, nil
	}
	if fatal != nil {
		outcome.Kind = models.OutcomeNotAttempted
		outcome.Error = fatal.Error()
		return outcome, nil
	}
	if c.routeErr != nil {
		outcome.Kind = models.OutcomeFailed
		outcome.Error = c.routeErr.Error()
		return outcome, c.routeErr
	}

	// Duplicate check runs against the batch-start snapshot only; repeats
	// within the same batch are all dispatched.
	if match := p.dupes.FindMatch(ce.Title(), snapshot.Items[ce.Container]); match != nil {
		outcome.Kind = models.OutcomeSkippedDuplicate
		outcome.MatchedID = match.ID
		return outcome, nil
	}

	originalDue := ce.Due
	assigned, moved := balancer.Place(ce.Container, ce.Due, p.resolver.Workweek(ce.Destination))
	if moved {
		delta := assigned.Sub(Midnight(originalDue))
		ce.Due = assigned
		if !ce.Start.IsZero() {
			ce.Start = ce.Start.Add(delta)
			ce.End = ce.End.Add(delta)
		}
	}

	outcome, dispatchErr := p.dispatch(ctx, ce, outcome, originalDue, moved)
	if outcome.Kind == models.OutcomeFailed {
		// Nothing was created, so the day slot goes back to the pool for
		// later entries in the batch.
		balancer.Release(ce.Container, assigned)
	}
	return outcome, dispatchErr
}

// dispatch performs the backend create call, downgrading team entries to
// skipped when a fresh search reveals a duplicate the snapshot missed.
// Backend error text is carried verbatim; the raw error is returned as well
// so the caller can check for batch-fatal auth failures.
func (p *BatchProcessor) dispatch(ctx context.Context, ce models.ClassifiedEntry, outcome models.EntryOutcome, originalDue time.Time, moved bool) (models.EntryOutcome, error) {
	backend, err := p.backends.For(ce.Destination)
	if err != nil {
		outcome.Kind = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome, err
	}

	if ce.Destination == models.DestTeam {
		// The snapshot has a freshness gap; search the backend directly
		// before creating team work.
		found, err := backend.Search(ctx, ce.Container, ce.Title())
		if err != nil {
			outcome.Kind = models.OutcomeFailed
			outcome.Error = err.Error()
			return outcome, err
		}
		if match := p.dupes.FindMatch(ce.Title(), found); match != nil {
			outcome.Kind = models.OutcomeSkippedDuplicate
			outcome.MatchedID = match.ID
			return outcome, nil
		}
	}

	draft := models.ItemDraft{
		Title:    ce.Title(),
		Due:      ce.Due,
		AllDay:   ce.Start.IsZero(),
		Start:    ce.Start,
		End:      ce.End,
		Priority: ce.Priority,
	}
	if ce.Entry.Raw != ce.Entry.Text {
		draft.Description = ce.Entry.Raw
	}

	id, err := backend.Create(ctx, ce.Container, draft)
	if err != nil {
		outcome.Kind = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome, err
	}

	outcome.CreatedID = id
	outcome.DueDate = ce.Due.Format("2006-01-02")
	if moved {
		outcome.Kind = models.OutcomeRescheduled
		outcome.OriginalDate = Midnight(originalDue).Format("2006-01-02")
		outcome.NewDate = outcome.DueDate
	} else {
		outcome.Kind = models.OutcomeCreated
	}
	return outcome, nil
}

// abortedReport emits a report where no entry was attempted, used when the
// initial snapshot fetch fails.
func (p *BatchProcessor) abortedReport(items []classified, runDate string, cause error) *models.BatchReport {
	report := &models.BatchReport{
		RunDate:     runDate,
		GeneratedAt: time.Now().UTC(),
		FatalError:  cause.Error(),
	}
	for _, c := range items {
		report.Outcomes = append(report.Outcomes, models.EntryOutcome{
			Entry:         c.entry.Entry.Raw,
			Destination:   c.entry.Destination,
			Container:     c.entry.Container,
			Kind:          models.OutcomeNotAttempted,
			Error:         cause.Error(),
			LowConfidence: c.entry.LowConfidence,
		})
	}
	report.Groups = groupOutcomes(report.Outcomes)
	p.logEvent("batch.completed", map[string]any{"date": runDate, "fatal": true})
	return report
}

// fatalAuth reports whether err is a batch-fatal authentication failure.
func fatalAuth(err error) bool {
	var f interface{ AuthFatal() bool }
	return errors.As(err, &f) && f.AuthFatal()
}

func (p *BatchProcessor) logEvent(eventType string, data map[string]any) {
	if p.events == nil {
		return
	}
	_ = p.events.LogEvent(eventType, data)
}

func (p *BatchProcessor) logOutcome(o models.EntryOutcome) {
	p.log.Info().
		Str("kind", string(o.Kind)).
		Str("container", o.Container).
		Str("entry", o.Entry).
		Msg("entry processed")
	if p.events == nil {
		return
	}
	data := map[string]any{
		"entry":     o.Entry,
		"container": o.Container,
	}
	switch o.Kind {
	case models.OutcomeCreated, models.OutcomeRescheduled:
		data["id"] = o.CreatedID
	case models.OutcomeSkippedDuplicate:
		data["matched_id"] = o.MatchedID
	case models.OutcomeFailed, models.OutcomeNotAttempted, models.OutcomeInvalid:
		data["error"] = o.Error
	}
	_ = p.events.LogEvent("entry."+string(o.Kind), data)
}
