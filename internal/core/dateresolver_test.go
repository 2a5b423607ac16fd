package core

import (
	"testing"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
)

// Wednesday 2025-03-12 is the reference date for phrase tests.
var refWednesday = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

func TestResolveDatePhrases(t *testing.T) {
	r := NewDateResolver()

	tests := []struct {
		text string
		want time.Time
		rule string
	}{
		{"сделать сегодня", refWednesday, "today"},
		{"срочно позвонить в банк", refWednesday, "today"},
		{"купить билеты завтра", refWednesday.AddDate(0, 0, 1), "tomorrow"},
		{"сдать отчет на этой неделе", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "this-week"},
		{"до пятницы собрать данные", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "this-week"},
		{"на следующей неделе начать курс", time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), "next-week"},
		{"стратегический план канала", refWednesday.AddDate(0, 0, 7), "strategic"},
	}

	for _, tt := range tests {
		entry := models.Entry{Raw: tt.text, Text: tt.text}
		resolved := r.Resolve(entry, models.DestPersonal, refWednesday)
		if !resolved.Due.Equal(tt.want) {
			t.Errorf("Resolve(%q).Due = %s, want %s", tt.text, resolved.Due.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
		if resolved.RuleName != tt.rule {
			t.Errorf("Resolve(%q).RuleName = %q, want %q", tt.text, resolved.RuleName, tt.rule)
		}
	}
}

func TestResolveDateExplicitHintWinsOverPhrase(t *testing.T) {
	r := NewDateResolver()

	hint := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	entry := models.Entry{Raw: "завтра оплатить 2025-04-01", Text: "завтра оплатить", DateHint: &hint}

	resolved := r.Resolve(entry, models.DestPersonal, refWednesday)
	if !resolved.Due.Equal(hint) {
		t.Errorf("Due = %s, want hint date %s", resolved.Due, hint)
	}
	if resolved.RuleName != "hint" {
		t.Errorf("RuleName = %q, want hint", resolved.RuleName)
	}
}

// "This week" counts today itself: on a Friday it resolves to that Friday.
func TestResolveThisWeekOnFriday(t *testing.T) {
	r := NewDateResolver()
	friday := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	entry := models.Entry{Raw: "закрыть задачи на этой неделе", Text: "закрыть задачи на этой неделе"}
	resolved := r.Resolve(entry, models.DestPersonal, friday)
	if !resolved.Due.Equal(friday) {
		t.Errorf("Due = %s, want %s", resolved.Due, friday)
	}
}

// "Next week" is strictly after today: on a Monday it resolves to the
// following Monday, not today.
func TestResolveNextWeekOnMonday(t *testing.T) {
	r := NewDateResolver()
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	entry := models.Entry{Raw: "next week plan the sprint", Text: "next week plan the sprint"}
	resolved := r.Resolve(entry, models.DestPersonal, monday)
	want := monday.AddDate(0, 0, 7)
	if !resolved.Due.Equal(want) {
		t.Errorf("Due = %s, want %s", resolved.Due, want)
	}
}

func TestResolveCalendarTimeHintSetsSlot(t *testing.T) {
	r := NewDateResolver()

	entry := models.Entry{Raw: "созвон завтра в 15:30", Text: "созвон завтра в 15:30", TimeHint: "15:30"}
	resolved := r.Resolve(entry, models.DestCalendar, refWednesday)

	wantStart := time.Date(2025, 3, 13, 15, 30, 0, 0, time.UTC)
	if !resolved.Start.Equal(wantStart) {
		t.Errorf("Start = %s, want %s", resolved.Start, wantStart)
	}
	if !resolved.End.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("End = %s, want one hour after start", resolved.End)
	}

	// Task destinations ignore the clock time: tasks are all-day.
	taskResolved := r.Resolve(entry, models.DestPersonal, refWednesday)
	if !taskResolved.Start.IsZero() {
		t.Errorf("personal Start = %s, want zero", taskResolved.Start)
	}
}
