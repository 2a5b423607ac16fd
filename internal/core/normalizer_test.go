package core

import (
	"testing"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
)

func TestNormalizeBatchDropsNoise(t *testing.T) {
	raw := "# Captured 2025-03-01\n\n- buy milk\n---\n* call plumber\n\n   \n1. draft report\n"

	entries := NormalizeBatch(raw)
	if len(entries) != 3 {
		t.Fatalf("NormalizeBatch returned %d entries, want 3", len(entries))
	}

	want := []string{"buy milk", "call plumber", "draft report"}
	for i, w := range want {
		if entries[i].Text != w {
			t.Errorf("entry %d text = %q, want %q", i, entries[i].Text, w)
		}
	}
}

func TestNormalizeLineStripsCaptureTimestamp(t *testing.T) {
	entry := NormalizeLine("14:32 buy milk")
	if entry.Text != "buy milk" {
		t.Errorf("Text = %q, want %q", entry.Text, "buy milk")
	}
	// A leading capture timestamp is metadata, not a meeting time.
	if entry.TimeHint != "" {
		t.Errorf("TimeHint = %q, want empty", entry.TimeHint)
	}
}

func TestNormalizeLineKeepsMidTextClockTime(t *testing.T) {
	entry := NormalizeLine("созвон с командой в 15:30")
	if entry.TimeHint != "15:30" {
		t.Errorf("TimeHint = %q, want %q", entry.TimeHint, "15:30")
	}
	if entry.Text != "созвон с командой в 15:30" {
		t.Errorf("Text = %q, clock time should stay in text", entry.Text)
	}
}

func TestNormalizeLinePadsShortClockTime(t *testing.T) {
	entry := NormalizeLine("standup at 9:30")
	if entry.TimeHint != "09:30" {
		t.Errorf("TimeHint = %q, want %q", entry.TimeHint, "09:30")
	}
}

func TestNormalizeLineDestHints(t *testing.T) {
	tests := []struct {
		raw  string
		dest models.Destination
		text string
	}{
		{"@team draft the brief", models.DestTeam, "draft the brief"},
		{"draft the brief @personal", models.DestPersonal, "draft the brief"},
		{"@кал обед с партнером", models.DestCalendar, "обед с партнером"},
		{"no hint here", "", "no hint here"},
	}

	for _, tt := range tests {
		entry := NormalizeLine(tt.raw)
		if entry.DestHint != tt.dest {
			t.Errorf("NormalizeLine(%q).DestHint = %q, want %q", tt.raw, entry.DestHint, tt.dest)
		}
		if entry.Text != tt.text {
			t.Errorf("NormalizeLine(%q).Text = %q, want %q", tt.raw, entry.Text, tt.text)
		}
	}
}

func TestNormalizeLineDateHints(t *testing.T) {
	entry := NormalizeLine("pay invoice 2025-03-14")
	if entry.DateHint == nil {
		t.Fatal("DateHint = nil, want ISO date")
	}
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if !entry.DateHint.Equal(want) {
		t.Errorf("DateHint = %v, want %v", entry.DateHint, want)
	}
	if entry.Text != "pay invoice" {
		t.Errorf("Text = %q, want %q", entry.Text, "pay invoice")
	}

	dotted := NormalizeLine("сдать отчет 14.03.2025")
	if dotted.DateHint == nil || !dotted.DateHint.Equal(want) {
		t.Errorf("dotted DateHint = %v, want %v", dotted.DateHint, want)
	}
}

func TestNormalizeLineHintOnlyBecomesEmptyTitle(t *testing.T) {
	entry := NormalizeLine("@team")
	if entry.Text != "" {
		t.Errorf("Text = %q, want empty for hint-only line", entry.Text)
	}
	if entry.Raw != "@team" {
		t.Errorf("Raw = %q, want preserved", entry.Raw)
	}
}
