package core

import (
	"testing"

	"github.com/dbrainhq/dbrain/pkg/models"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Купить молоко!", "купить молоко"},
		{"  Buy   milk  ", "buy milk"},
		{"Оплатить счёт №42 (до пятницы)", "оплатить счёт 42 до пятницы"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindMatchContainsRule(t *testing.T) {
	d := NewDuplicateChecker(DuplicateRuleContains)
	existing := []models.Item{
		{ID: "1", Title: "Купить молоко и хлеб"},
		{ID: "2", Title: "Позвонить в банк", Completed: true},
		{ID: "3", Title: "Draft Q2 report"},
	}

	tests := []struct {
		title string
		want  string // matched id, empty for no match
	}{
		{"купить молоко", "1"},          // contained in existing
		{"Draft Q2 report (final)", "3"}, // existing contained in new
		{"позвонить в банк", ""},        // only completed item matches
		{"совершенно новая задача", ""},
	}

	for _, tt := range tests {
		match := d.FindMatch(tt.title, existing)
		got := ""
		if match != nil {
			got = match.ID
		}
		if got != tt.want {
			t.Errorf("FindMatch(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestFindMatchExactRule(t *testing.T) {
	d := NewDuplicateChecker(DuplicateRuleExact)
	existing := []models.Item{{ID: "1", Title: "Купить молоко и хлеб"}}

	if match := d.FindMatch("купить молоко", existing); match != nil {
		t.Errorf("exact rule matched %q against substring, want no match", match.Title)
	}
	if match := d.FindMatch("КУПИТЬ МОЛОКО И ХЛЕБ!", existing); match == nil {
		t.Error("exact rule missed case/punctuation variant")
	}
}

func TestNewDuplicateCheckerUnknownRuleFallsBack(t *testing.T) {
	d := NewDuplicateChecker("fuzzy")
	existing := []models.Item{{ID: "1", Title: "write the brief"}}
	if match := d.FindMatch("write the brief today", existing); match == nil {
		t.Error("unknown rule should behave as contains")
	}
}
