package core

import (
	"strings"

	"github.com/dbrainhq/dbrain/pkg/models"
)

// RoutingRule maps a keyword set to a destination. Rules are evaluated in
// table order and the first match wins, so ties between destinations resolve
// deterministically.
type RoutingRule struct {
	Name        string
	Destination models.Destination
	// Keywords are lowercase substrings matched against the folded text.
	Keywords []string
}

// defaultRoutingRules is the built-in ordered rule table. Team and company
// keywords come first, then personal/mentoring, then meeting phrasing.
// Extending the table happens by appending, never by reordering.
var defaultRoutingRules = []RoutingRule{
	{
		Name:        "team-company",
		Destination: models.DestTeam,
		Keywords:    []string{"smmekalka", "c-growth", "klevers", "planfix", "планфикс"},
	},
	{
		Name:        "team-ops",
		Destination: models.DestTeam,
		Keywords:    []string{"команд", "for the team", "тз на", "для команды"},
	},
	{
		Name:        "personal-mentoring",
		Destination: models.DestPersonal,
		Keywords:    []string{"ментор", "менторств", "mentee", "mentoring", "личн", "personal"},
	},
	{
		Name:        "calendar-meeting",
		Destination: models.DestCalendar,
		Keywords:    []string{"встреча", "встречу", "созвон", "звонок", "meeting", "митинг", "call with", "созвонитьс"},
	},
}

// ClassifierResult carries the routing decision for one entry.
type ClassifierResult struct {
	Destination models.Destination
	// RuleName names the matched rule, "hint" for explicit hints, and
	// "default" for the fallback.
	RuleName string
	// LowConfidence marks entries routed by the default rule, flagged in
	// the report for user review.
	LowConfidence bool
}

// Classifier assigns each entry a destination from an ordered rule table.
// It is a pure function of the text and the table.
type Classifier struct {
	rules []RoutingRule
}

// NewClassifier builds a classifier from the built-in table plus any extra
// per-destination keywords from configuration. Extra keywords are appended
// after the built-in rules so built-in evaluation order is preserved.
func NewClassifier(extra models.RoutingConfig) *Classifier {
	rules := make([]RoutingRule, len(defaultRoutingRules))
	copy(rules, defaultRoutingRules)

	if len(extra.TeamKeywords) > 0 {
		rules = append(rules, RoutingRule{Name: "team-extra", Destination: models.DestTeam, Keywords: lowerAll(extra.TeamKeywords)})
	}
	if len(extra.PersonalKeywords) > 0 {
		rules = append(rules, RoutingRule{Name: "personal-extra", Destination: models.DestPersonal, Keywords: lowerAll(extra.PersonalKeywords)})
	}
	if len(extra.CalendarKeywords) > 0 {
		rules = append(rules, RoutingRule{Name: "calendar-extra", Destination: models.DestCalendar, Keywords: lowerAll(extra.CalendarKeywords)})
	}

	return &Classifier{rules: rules}
}

// Rules exposes the active rule table for inspection.
func (c *Classifier) Rules() []RoutingRule {
	out := make([]RoutingRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify routes one entry. An explicit destination hint wins
// unconditionally; otherwise the first matching table rule decides; a
// time-bearing phrase routes to the calendar; no match falls back to the
// personal store with the low-confidence flag set.
func (c *Classifier) Classify(entry models.Entry) ClassifierResult {
	if entry.DestHint != "" {
		return ClassifierResult{Destination: entry.DestHint, RuleName: "hint"}
	}

	text := strings.ToLower(entry.Text)
	for _, rule := range c.rules {
		if matchesAny(text, rule.Keywords) {
			return ClassifierResult{Destination: rule.Destination, RuleName: rule.Name}
		}
	}

	// A concrete clock time implies a scheduled slot even without meeting
	// vocabulary.
	if entry.TimeHint != "" {
		return ClassifierResult{Destination: models.DestCalendar, RuleName: "time-phrase"}
	}

	return ClassifierResult{Destination: models.DestPersonal, RuleName: "default", LowConfidence: true}
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
