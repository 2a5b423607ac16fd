package core

import (
	"strings"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
)

// DateRule maps a relative date phrase to a concrete date. Rules are
// evaluated in table order, first match wins.
type DateRule struct {
	Name     string
	Keywords []string
	Resolve  func(today time.Time) time.Time
}

// defaultDateRules is the built-in ordered phrase table. Urgent phrasing
// resolves to today, "this week" to the week's Friday, "next week" to the
// next Monday, strategic phrasing a week out.
var defaultDateRules = []DateRule{
	{
		Name:     "today",
		Keywords: []string{"сегодня", "today", "срочно", "urgent", "asap", "немедленно"},
		Resolve:  func(today time.Time) time.Time { return today },
	},
	{
		Name:     "tomorrow",
		Keywords: []string{"завтра", "tomorrow"},
		Resolve:  func(today time.Time) time.Time { return today.AddDate(0, 0, 1) },
	},
	{
		Name:     "this-week",
		Keywords: []string{"на этой неделе", "this week", "до пятницы", "к пятнице"},
		Resolve:  func(today time.Time) time.Time { return upcomingWeekday(today, time.Friday) },
	},
	{
		Name:     "next-week",
		Keywords: []string{"на следующей неделе", "next week", "со следующей недели"},
		Resolve:  func(today time.Time) time.Time { return nextWeekday(today, time.Monday) },
	},
	{
		Name:     "strategic",
		Keywords: []string{"стратег", "strategic", "долгосрочн", "long-term"},
		Resolve:  func(today time.Time) time.Time { return today.AddDate(0, 0, 7) },
	},
}

// DateResolver maps an entry to a concrete due or start date. It is a pure
// function: the current date is an explicit parameter, never wall clock.
type DateResolver struct {
	rules []DateRule
}

// NewDateResolver builds a resolver over the built-in phrase table.
func NewDateResolver() *DateResolver {
	return &DateResolver{rules: defaultDateRules}
}

// ResolvedDate is the outcome of date resolution for one entry.
type ResolvedDate struct {
	// Due is the resolved calendar date at midnight.
	Due time.Time
	// Start and End are set when the entry carries a clock time and is
	// destined for the calendar; zero otherwise (all-day).
	Start time.Time
	End   time.Time
	// RuleName names the applied rule, "hint" or "default".
	RuleName string
}

// Resolve picks the entry's date. Resolution order is fixed: explicit date
// hint, then the phrase table, then the default of tomorrow.
func (r *DateResolver) Resolve(entry models.Entry, dest models.Destination, today time.Time) ResolvedDate {
	today = Midnight(today)

	result := ResolvedDate{Due: today.AddDate(0, 0, 1), RuleName: "default"}

	if entry.DateHint != nil {
		result.Due = Midnight(*entry.DateHint)
		result.RuleName = "hint"
	} else {
		folded := strings.ToLower(entry.Text)
		for _, rule := range r.rules {
			if matchesAny(folded, rule.Keywords) {
				result.Due = Midnight(rule.Resolve(today))
				result.RuleName = rule.Name
				break
			}
		}
	}

	if dest == models.DestCalendar && entry.TimeHint != "" {
		if t, err := time.Parse("15:04", entry.TimeHint); err == nil {
			result.Start = result.Due.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
			result.End = result.Start.Add(time.Hour)
		}
	}

	return result
}

// Midnight truncates a time to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// upcomingWeekday returns the next occurrence of wd, counting today itself.
func upcomingWeekday(today time.Time, wd time.Weekday) time.Time {
	d := Midnight(today)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// nextWeekday returns the next occurrence of wd strictly after today.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	d := Midnight(today).AddDate(0, 0, 1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
