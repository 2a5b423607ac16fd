package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
)

func sampleReport(runDate string, generatedAt time.Time) *models.BatchReport {
	return &models.BatchReport{
		RunDate:     runDate,
		GeneratedAt: generatedAt,
		Outcomes: []models.EntryOutcome{
			{Entry: "купить молоко", Kind: models.OutcomeCreated, DueDate: runDate},
			{Entry: "купить молоко", Kind: models.OutcomeSkippedDuplicate, MatchedID: "1"},
			{Entry: "сломанная", Kind: models.OutcomeFailed, Error: "rate limit exceeded"},
		},
	}
}

func TestSaveReportAssignsIDAndRoundTrips(t *testing.T) {
	store := NewReportStoreManager(t.TempDir())

	report := sampleReport("2025-06-03", time.Now().UTC())
	id, err := store.SaveReport(report)
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if id == "" || report.ID != id {
		t.Fatalf("id = %q, report.ID = %q, want a generated id on both", id, report.ID)
	}

	loaded, err := store.GetReport(id)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if loaded.RunDate != "2025-06-03" {
		t.Errorf("RunDate = %q", loaded.RunDate)
	}
	if len(loaded.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(loaded.Outcomes))
	}
	if loaded.Outcomes[2].Error != "rate limit exceeded" {
		t.Errorf("failed outcome error = %q, want preserved verbatim", loaded.Outcomes[2].Error)
	}
}

func TestSaveReportRejectsDuplicateID(t *testing.T) {
	store := NewReportStoreManager(t.TempDir())

	report := sampleReport("2025-06-03", time.Now().UTC())
	id, err := store.SaveReport(report)
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	again := sampleReport("2025-06-03", time.Now().UTC())
	again.ID = id
	if _, err := store.SaveReport(again); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second save = %v, want already-exists error", err)
	}
}

func TestListReportsNewestFirst(t *testing.T) {
	store := NewReportStoreManager(t.TempDir())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		r := sampleReport("2025-06-0"+string(rune('1'+i)), base.AddDate(0, 0, i))
		if _, err := store.SaveReport(r); err != nil {
			t.Fatalf("SaveReport %d: %v", i, err)
		}
	}

	entries, err := store.ListReports()
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].RunDate != "2025-06-03" || entries[2].RunDate != "2025-06-01" {
		t.Errorf("order = %s, %s, %s, want newest first",
			entries[0].RunDate, entries[1].RunDate, entries[2].RunDate)
	}
	if entries[0].Created != 1 || entries[0].Skipped != 1 || entries[0].Failed != 1 {
		t.Errorf("index counts = %+v, want 1 created, 1 skipped, 1 failed", entries[0])
	}
}

func TestGetLatestEmptyStore(t *testing.T) {
	store := NewReportStoreManager(t.TempDir())

	latest, err := store.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest != nil {
		t.Errorf("latest = %+v, want nil on an empty store", latest)
	}
}

func TestLoadRestoresIndex(t *testing.T) {
	dir := t.TempDir()
	store := NewReportStoreManager(dir)
	id, err := store.SaveReport(sampleReport("2025-06-03", time.Now().UTC()))
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	reopened := NewReportStoreManager(dir)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	latest, err := reopened.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest == nil || latest.ID != id {
		t.Errorf("latest after reload = %+v, want report %s", latest, id)
	}
}

func TestLoadMissingIndexIsEmptyStore(t *testing.T) {
	store := NewReportStoreManager(t.TempDir())
	if err := store.Load(); err != nil {
		t.Errorf("Load on empty dir = %v, want nil", err)
	}
}

func TestGetReportUnknownID(t *testing.T) {
	store := NewReportStoreManager(t.TempDir())
	if _, err := store.GetReport("01ARZ3NDEKTSV4RRFFQ69G5FAV"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not-found", err)
	}
}
