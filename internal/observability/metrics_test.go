package observability

import (
	"testing"
	"time"
)

func TestCalculateAggregatesEvents(t *testing.T) {
	log := newTestLog(t)
	calc := NewMetricsCalculator(log)

	_ = log.LogEvent("batch.started", nil)
	_ = log.LogEvent("entry.created", nil)
	_ = log.LogEvent("entry.created", nil)
	_ = log.LogEvent("entry.skipped_duplicate", nil)
	_ = log.LogEvent("entry.failed", map[string]any{"error": "rate limit exceeded"})
	_ = log.LogEvent("batch.completed", map[string]any{"fatal": false})
	_ = log.LogEvent("rebalance.moved", nil)
	_ = log.LogEvent("batch.completed", map[string]any{"fatal": true})

	m, err := calc.Calculate(time.Time{})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if m.BatchesRun != 2 {
		t.Errorf("BatchesRun = %d, want 2", m.BatchesRun)
	}
	if m.BatchesAborted != 1 {
		t.Errorf("BatchesAborted = %d, want 1", m.BatchesAborted)
	}
	if m.EntriesByKind["created"] != 2 {
		t.Errorf("created = %d, want 2", m.EntriesByKind["created"])
	}
	if m.EntriesByKind["skipped_duplicate"] != 1 {
		t.Errorf("skipped_duplicate = %d, want 1", m.EntriesByKind["skipped_duplicate"])
	}
	if m.EntriesByKind["failed"] != 1 {
		t.Errorf("failed = %d, want 1", m.EntriesByKind["failed"])
	}
	if m.RebalancedItems != 1 {
		t.Errorf("RebalancedItems = %d, want 1", m.RebalancedItems)
	}
	if m.EventCount != 8 {
		t.Errorf("EventCount = %d, want 8", m.EventCount)
	}
	if m.OldestEvent == nil || m.NewestEvent == nil {
		t.Fatal("event time bounds not set")
	}
	if m.NewestEvent.Before(*m.OldestEvent) {
		t.Error("NewestEvent before OldestEvent")
	}
}

func TestCalculateEmptyWindow(t *testing.T) {
	log := newTestLog(t)
	calc := NewMetricsCalculator(log)
	_ = log.LogEvent("entry.created", nil)

	m, err := calc.Calculate(time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if m.EventCount != 0 || m.BatchesRun != 0 {
		t.Errorf("metrics = %+v, want all zero", m)
	}
	if m.OldestEvent != nil || m.NewestEvent != nil {
		t.Error("time bounds set for an empty window")
	}
}
