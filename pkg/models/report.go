package models

import "time"

// OutcomeKind tags the result of processing one entry. Every entry in a
// batch yields exactly one outcome.
type OutcomeKind string

const (
	// OutcomeCreated means the backend create call succeeded.
	OutcomeCreated OutcomeKind = "created"
	// OutcomeSkippedDuplicate means a near-identical non-completed item
	// already exists in the target container.
	OutcomeSkippedDuplicate OutcomeKind = "skipped_duplicate"
	// OutcomeRescheduled means the entry was created after its date was
	// shifted forward by the workload balancer.
	OutcomeRescheduled OutcomeKind = "rescheduled"
	// OutcomeFailed means the backend call failed; Error carries the
	// verbatim backend message.
	OutcomeFailed OutcomeKind = "failed"
	// OutcomeNotAttempted means a batch-fatal auth failure occurred before
	// this entry was dispatched.
	OutcomeNotAttempted OutcomeKind = "not_attempted"
	// OutcomeInvalid means the entry had no resolvable title.
	OutcomeInvalid OutcomeKind = "invalid"
)

// EntryOutcome records what happened to one entry.
type EntryOutcome struct {
	Entry       string      `yaml:"entry"`
	Destination Destination `yaml:"destination,omitempty"`
	Container   string      `yaml:"container,omitempty"`
	Kind        OutcomeKind `yaml:"kind"`
	Priority    Priority    `yaml:"priority,omitempty"`

	// CreatedID is set for created and rescheduled outcomes.
	CreatedID string `yaml:"created_id,omitempty"`
	// MatchedID is the existing item a duplicate was matched against.
	MatchedID string `yaml:"matched_id,omitempty"`
	// OriginalDate and NewDate (ISO dates) are set for rescheduled outcomes.
	OriginalDate string `yaml:"original_date,omitempty"`
	NewDate      string `yaml:"new_date,omitempty"`
	// DueDate is the final resolved date (ISO) the item was created with.
	DueDate string `yaml:"due_date,omitempty"`
	// Error is the verbatim backend error for failed outcomes.
	Error string `yaml:"error,omitempty"`

	// LowConfidence flags entries that fell through to the default
	// destination, for user review.
	LowConfidence bool `yaml:"low_confidence,omitempty"`
}

// ContainerGroup is the per-container view of a batch report. Outcomes keep
// input batch order within the group.
type ContainerGroup struct {
	Destination Destination    `yaml:"destination"`
	Container   string         `yaml:"container"`
	Outcomes    []EntryOutcome `yaml:"outcomes"`
}

// BatchReport aggregates the outcomes of one batch run. It is immutable
// once emitted.
type BatchReport struct {
	ID          string           `yaml:"id"`
	RunDate     string           `yaml:"run_date"`
	GeneratedAt time.Time        `yaml:"generated_at"`
	Outcomes    []EntryOutcome   `yaml:"outcomes"`
	Groups      []ContainerGroup `yaml:"groups"`
	// FatalError is set when the batch was aborted by an auth failure.
	FatalError string `yaml:"fatal_error,omitempty"`
}

// Counts returns the number of outcomes per kind.
func (r *BatchReport) Counts() map[OutcomeKind]int {
	counts := make(map[OutcomeKind]int)
	for _, o := range r.Outcomes {
		counts[o.Kind]++
	}
	return counts
}

// ReportIndex is the on-disk index of archived batch reports.
type ReportIndex struct {
	Version string        `yaml:"version"`
	Reports []ReportEntry `yaml:"reports"`
}

// ReportEntry is one index row for an archived report.
type ReportEntry struct {
	ID          string    `yaml:"id"`
	RunDate     string    `yaml:"run_date"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Created     int       `yaml:"created"`
	Skipped     int       `yaml:"skipped"`
	Rescheduled int       `yaml:"rescheduled"`
	Failed      int       `yaml:"failed"`
}

// RebalanceMove records one item moved by the rebalance operation.
type RebalanceMove struct {
	Destination Destination `yaml:"destination"`
	Container   string      `yaml:"container"`
	ItemID      string      `yaml:"item_id"`
	Title       string      `yaml:"title"`
	OldDate     string      `yaml:"old_date"`
	NewDate     string      `yaml:"new_date"`
}

// RebalanceError records a failed move; Error is the verbatim backend message.
type RebalanceError struct {
	Container string `yaml:"container"`
	ItemID    string `yaml:"item_id"`
	Title     string `yaml:"title"`
	Error     string `yaml:"error"`
}

// RebalanceReport lists every container scanned and every item moved by a
// rebalance run. Containers are listed even when nothing moved, so a skipped
// container is detectable.
type RebalanceReport struct {
	GeneratedAt time.Time        `yaml:"generated_at"`
	Scanned     []string         `yaml:"scanned"`
	Moves       []RebalanceMove  `yaml:"moves"`
	Errors      []RebalanceError `yaml:"errors,omitempty"`
}
