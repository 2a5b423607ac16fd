package observability

import (
	"fmt"
	"strings"
	"time"
)

// Metrics aggregates dispatch activity derived from the event log.
type Metrics struct {
	BatchesRun      int            `json:"batches_run"`
	BatchesAborted  int            `json:"batches_aborted"`
	EntriesByKind   map[string]int `json:"entries_by_kind"`
	RebalancedItems int            `json:"rebalanced_items"`
	EventCount      int            `json:"event_count"`
	OldestEvent     *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator over the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EntriesByKind: make(map[string]int)}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch {
		case event.Type == "batch.completed":
			m.BatchesRun++
			if fatal, ok := event.Data["fatal"].(bool); ok && fatal {
				m.BatchesAborted++
			}
		case strings.HasPrefix(event.Type, "entry."):
			m.EntriesByKind[strings.TrimPrefix(event.Type, "entry.")]++
		case event.Type == "rebalance.moved":
			m.RebalancedItems++
		}
	}

	return m, nil
}
