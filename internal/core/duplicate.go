package core

import (
	"strings"
	"unicode"

	"github.com/dbrainhq/dbrain/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Duplicate similarity rules. "contains" treats containment of one
// normalized title within the other as a match; "exact" requires equality
// after normalization.
const (
	DuplicateRuleExact    = "exact"
	DuplicateRuleContains = "contains"
)

var titleFolder = cases.Fold()

// NormalizeTitle produces the canonical comparison form of a title:
// NFC-normalized, case-folded, punctuation stripped, whitespace collapsed.
// Folding (rather than a plain lowercase) keeps mixed Russian/English
// titles comparable.
func NormalizeTitle(s string) string {
	s = norm.NFC.String(s)
	s = titleFolder.String(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Punctuation and symbols are dropped.
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DuplicateChecker matches new entries against the non-completed items of
// their target container.
type DuplicateChecker struct {
	rule string
}

// NewDuplicateChecker creates a checker with the given similarity rule.
// Unknown rules fall back to "contains".
func NewDuplicateChecker(rule string) *DuplicateChecker {
	if rule != DuplicateRuleExact {
		rule = DuplicateRuleContains
	}
	return &DuplicateChecker{rule: rule}
}

// FindMatch returns the first existing non-completed item whose normalized
// title is near-identical to the entry title, or nil when the entry is new.
// Only items within one container are compared; cross-container duplication
// is out of scope.
func (d *DuplicateChecker) FindMatch(title string, existing []models.Item) *models.Item {
	want := NormalizeTitle(title)
	if want == "" {
		return nil
	}

	for i := range existing {
		item := &existing[i]
		if item.Completed {
			continue
		}
		have := NormalizeTitle(item.Title)
		if have == "" {
			continue
		}
		if d.matches(want, have) {
			return item
		}
	}
	return nil
}

func (d *DuplicateChecker) matches(a, b string) bool {
	if a == b {
		return true
	}
	if d.rule == DuplicateRuleContains {
		return strings.Contains(a, b) || strings.Contains(b, a)
	}
	return false
}
