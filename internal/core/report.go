package core

import (
	"fmt"
	"strings"

	"github.com/dbrainhq/dbrain/pkg/models"
)

// groupOutcomes buckets outcomes by container, preserving the batch input
// order both across groups (first-appearance order) and within each group.
func groupOutcomes(outcomes []models.EntryOutcome) []models.ContainerGroup {
	var groups []models.ContainerGroup
	index := make(map[string]int)

	for _, o := range outcomes {
		key := o.Container
		if key == "" {
			key = "unrouted"
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.ContainerGroup{
				Container:   key,
				Destination: o.Destination,
			})
		}
		groups[i].Outcomes = append(groups[i].Outcomes, o)
	}
	return groups
}

// SummaryLine renders the one-line batch summary used in logs and the
// Telegram digest, e.g. "7 processed: 4 created, 2 skipped, 1 failed".
func SummaryLine(report *models.BatchReport) string {
	counts := report.Counts()
	parts := []string{}
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(counts[models.OutcomeCreated], "created")
	add(counts[models.OutcomeRescheduled], "rescheduled")
	add(counts[models.OutcomeSkippedDuplicate], "skipped")
	add(counts[models.OutcomeFailed], "failed")
	add(counts[models.OutcomeNotAttempted], "not attempted")
	add(counts[models.OutcomeInvalid], "invalid")

	total := len(report.Outcomes)
	if len(parts) == 0 {
		return fmt.Sprintf("%d processed", total)
	}
	return fmt.Sprintf("%d processed: %s", total, strings.Join(parts, ", "))
}

// OutcomeLine renders one outcome the way reports print it. Failure lines
// carry the backend error text verbatim; rewording it would hide what
// actually has to be retried by hand. Default-routed entries get a visible
// marker so the user can review where they landed.
func OutcomeLine(o models.EntryOutcome) string {
	var line string
	switch o.Kind {
	case models.OutcomeCreated:
		line = fmt.Sprintf("+ %s (%s, due %s)", o.Entry, o.Priority, o.DueDate)
	case models.OutcomeRescheduled:
		line = fmt.Sprintf("~ %s (%s, moved %s -> %s)", o.Entry, o.Priority, o.OriginalDate, o.NewDate)
	case models.OutcomeSkippedDuplicate:
		line = fmt.Sprintf("= %s (duplicate of %s)", o.Entry, o.MatchedID)
	case models.OutcomeFailed:
		line = fmt.Sprintf("! %s: %s", o.Entry, o.Error)
	case models.OutcomeNotAttempted:
		line = fmt.Sprintf("? %s (not attempted: %s)", o.Entry, o.Error)
	case models.OutcomeInvalid:
		line = fmt.Sprintf("x %s (%s)", o.Entry, o.Error)
	default:
		line = o.Entry
	}
	if o.LowConfidence {
		line += " (low confidence)"
	}
	return line
}
