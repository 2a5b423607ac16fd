package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/pkg/models"
)

// Report rendering styles.
var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	containerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	createdStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	rescheduledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	skippedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	failedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	invalidStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))

	fatalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("196")).
			Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderBatchReport renders a batch report grouped by container. Error text
// inside outcome lines is the backend's own, untouched.
func renderBatchReport(report *models.BatchReport) string {
	var b strings.Builder

	b.WriteString(reportTitleStyle.Render(fmt.Sprintf(" Batch %s ", report.RunDate)))
	b.WriteString("\n")
	if report.ID != "" {
		b.WriteString(summaryStyle.Render("report " + report.ID))
		b.WriteString("\n")
	}
	b.WriteString(summaryStyle.Render(core.SummaryLine(report)))
	b.WriteString("\n")

	if report.FatalError != "" {
		b.WriteString("\n")
		b.WriteString(fatalStyle.Render(" ABORTED: " + report.FatalError + " "))
		b.WriteString("\n")
	}

	for _, group := range report.Groups {
		b.WriteString("\n")
		b.WriteString(containerStyle.Render(group.Container))
		b.WriteString("\n")
		for _, o := range group.Outcomes {
			b.WriteString("  ")
			b.WriteString(styleForOutcome(o.Kind).Render(core.OutcomeLine(o)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderRebalanceReport renders a rebalance run.
func renderRebalanceReport(report *models.RebalanceReport) string {
	var b strings.Builder

	b.WriteString(reportTitleStyle.Render(" Rebalance "))
	b.WriteString("\n")
	b.WriteString(summaryStyle.Render(fmt.Sprintf("%d containers scanned, %d moved, %d errors",
		len(report.Scanned), len(report.Moves), len(report.Errors))))
	b.WriteString("\n")

	for _, m := range report.Moves {
		line := fmt.Sprintf("  ~ %s: %s %s -> %s", m.Container, m.Title, m.OldDate, m.NewDate)
		b.WriteString(rescheduledStyle.Render(line))
		b.WriteString("\n")
	}
	for _, e := range report.Errors {
		line := fmt.Sprintf("  ! %s: %s", e.Container, e.Error)
		b.WriteString(failedStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func styleForOutcome(kind models.OutcomeKind) lipgloss.Style {
	switch kind {
	case models.OutcomeCreated:
		return createdStyle
	case models.OutcomeRescheduled:
		return rescheduledStyle
	case models.OutcomeSkippedDuplicate:
		return skippedStyle
	case models.OutcomeFailed, models.OutcomeNotAttempted:
		return failedStyle
	case models.OutcomeInvalid:
		return invalidStyle
	default:
		return lipgloss.NewStyle()
	}
}
