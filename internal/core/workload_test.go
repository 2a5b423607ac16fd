package core

import (
	"testing"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewWorkloadMapSkipsCompletedAndUndated(t *testing.T) {
	monday := day(2025, 6, 2)
	snapshot := &ContainerSnapshot{Items: map[string][]models.Item{
		"inbox": {
			{ID: "1", Title: "a", Due: monday},
			{ID: "2", Title: "b", Due: monday, Completed: true},
			{ID: "3", Title: "c"},
			{ID: "4", Title: "d", Due: monday.Add(9 * time.Hour)},
		},
	}}

	w := NewWorkloadMap(snapshot)
	if got := w.CountOn("inbox", monday); got != 2 {
		t.Errorf("CountOn = %d, want 2 (completed and undated items excluded)", got)
	}
}

// A fourth entry on a full day moves to the next day.
func TestPlaceOverflowMovesToNextDay(t *testing.T) {
	monday := day(2025, 6, 2)
	b := NewWorkloadBalancer(NewWorkloadMap(nil), 3, 90)

	for i := 0; i < 3; i++ {
		assigned, moved := b.Place("inbox", monday, false)
		if moved || !assigned.Equal(monday) {
			t.Fatalf("entry %d: assigned %s moved=%v, want %s unmoved", i, assigned, moved, monday)
		}
	}

	assigned, moved := b.Place("inbox", monday, false)
	if !moved {
		t.Fatal("fourth entry not moved off the full day")
	}
	if want := monday.AddDate(0, 0, 1); !assigned.Equal(want) {
		t.Errorf("fourth entry assigned %s, want %s", assigned, want)
	}
}

func TestPlaceWorkweekSkipsWeekend(t *testing.T) {
	saturday := day(2025, 6, 7)
	b := NewWorkloadBalancer(NewWorkloadMap(nil), 3, 90)

	assigned, moved := b.Place("work", saturday, true)
	if want := day(2025, 6, 9); !assigned.Equal(want) {
		t.Errorf("assigned %s, want Monday %s", assigned, want)
	}
	if !moved {
		t.Error("weekend target not reported as moved")
	}

	// Non-workweek containers place on the Saturday as given.
	assigned, moved = b.Place("cal", saturday, false)
	if moved || !assigned.Equal(saturday) {
		t.Errorf("calendar container: assigned %s moved=%v, want %s unmoved", assigned, moved, saturday)
	}
}

// A Friday overflow on a workweek container jumps over the weekend.
func TestPlaceWorkweekOverflowLandsOnMonday(t *testing.T) {
	friday := day(2025, 6, 6)
	b := NewWorkloadBalancer(NewWorkloadMap(nil), 1, 90)

	if assigned, _ := b.Place("work", friday, true); !assigned.Equal(friday) {
		t.Fatalf("first entry assigned %s, want %s", assigned, friday)
	}
	assigned, _ := b.Place("work", friday, true)
	if want := day(2025, 6, 9); !assigned.Equal(want) {
		t.Errorf("overflow assigned %s, want Monday %s", assigned, want)
	}
}

// When every day inside the horizon is full, the entry keeps its target day
// instead of drifting past the horizon.
func TestPlaceNoVacancyKeepsTargetDay(t *testing.T) {
	monday := day(2025, 6, 2)
	horizon := 5
	b := NewWorkloadBalancer(NewWorkloadMap(nil), 1, horizon)

	for i := 0; i <= horizon; i++ {
		b.Place("inbox", monday, false)
	}

	assigned, moved := b.Place("inbox", monday, false)
	if !assigned.Equal(monday) {
		t.Errorf("assigned %s, want target day %s kept", assigned, monday)
	}
	if moved {
		t.Error("kept target day reported as moved")
	}
}

func TestPlaceTruncatesToMidnight(t *testing.T) {
	b := NewWorkloadBalancer(NewWorkloadMap(nil), 3, 90)

	assigned, _ := b.Place("inbox", time.Date(2025, 6, 2, 14, 45, 0, 0, time.UTC), false)
	if !assigned.Equal(day(2025, 6, 2)) {
		t.Errorf("assigned %s, want date truncated to midnight", assigned)
	}
}
