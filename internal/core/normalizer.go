// Package core contains the business logic for dbrain: entry normalization,
// destination classification, priority and date resolution, duplicate
// detection, workload balancing, and batch dispatch.
package core

import (
	"regexp"
	"strings"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
)

var (
	// captureTimestampPattern matches a leading capture-time prefix written
	// by the voice capture layer ("14:32 buy milk"). It is stripped and is
	// never treated as a meeting time.
	captureTimestampPattern = regexp.MustCompile(`^\d{1,2}:\d{2}\s+`)

	// bulletPattern matches list markers at the start of a captured line.
	bulletPattern = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+|\[[ xX]\]\s+)`)

	// isoDatePattern and dottedDatePattern match explicit date hints.
	isoDatePattern    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dottedDatePattern = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)

	// clockTimePattern matches a scheduled time inside the cleaned text.
	clockTimePattern = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// destHintTags maps explicit destination tags to destinations. Tags are
// matched case-insensitively and stripped from the text.
var destHintTags = map[string]models.Destination{
	"@personal": models.DestPersonal,
	"@лично":    models.DestPersonal,
	"@team":     models.DestTeam,
	"@команда":  models.DestTeam,
	"@calendar": models.DestCalendar,
	"@кал":      models.DestCalendar,
}

// NormalizeBatch splits a raw multi-line capture into discrete entries.
// Markdown headers, separators, and blank lines are dropped; everything else
// becomes an Entry, even when cleaning leaves no usable title (the pipeline
// reports those as invalid rather than dropping them silently).
func NormalizeBatch(raw string) []models.Entry {
	var entries []models.Entry
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || isSeparator(trimmed) {
			continue
		}
		entries = append(entries, NormalizeLine(trimmed))
	}
	return entries
}

// NormalizeLine cleans one captured line and extracts its explicit hints.
func NormalizeLine(raw string) models.Entry {
	entry := models.Entry{Raw: raw}

	text := strings.TrimSpace(raw)
	text = captureTimestampPattern.ReplaceAllString(text, "")
	text = bulletPattern.ReplaceAllString(text, "")

	text, entry.DestHint = extractDestHint(text)
	text, entry.DateHint = extractDateHint(text)

	// A scheduled time stays in the text: time-bearing phrasing is a
	// classifier signal. Only the hint is recorded here.
	if m := clockTimePattern.FindString(text); m != "" {
		entry.TimeHint = normalizeClock(m)
	}

	entry.Text = strings.TrimSpace(strings.Join(strings.Fields(text), " "))
	return entry
}

func isSeparator(line string) bool {
	trimmed := strings.Trim(line, "-=_ ")
	return trimmed == "" && len(line) >= 3
}

// extractDestHint finds and strips an explicit destination tag.
func extractDestHint(text string) (string, models.Destination) {
	fields := strings.Fields(text)
	for i, f := range fields {
		if dest, ok := destHintTags[strings.ToLower(f)]; ok {
			rest := append(append([]string{}, fields[:i]...), fields[i+1:]...)
			return strings.Join(rest, " "), dest
		}
	}
	return text, ""
}

// extractDateHint finds and strips an explicit calendar date. ISO form wins
// over the dotted form when both are present.
func extractDateHint(text string) (string, *time.Time) {
	if m := isoDatePattern.FindString(text); m != "" {
		if d, err := time.Parse("2006-01-02", m); err == nil {
			return stripOnce(text, m), &d
		}
	}
	if m := dottedDatePattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("2.1.2006", m[1]+"."+m[2]+"."+m[3]); err == nil {
			return stripOnce(text, m[0]), &d
		}
	}
	return text, nil
}

func stripOnce(text, match string) string {
	return strings.TrimSpace(strings.Replace(text, match, "", 1))
}

// normalizeClock pads a matched clock time to the canonical "15:04" form.
func normalizeClock(m string) string {
	if len(m) == 4 { // "9:30"
		return "0" + m
	}
	return m
}
