package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/spf13/cobra"
)

// Dashboard panel indices.
const (
	panelReports = iota
	panelMetrics
	panelFailures
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	reports     []models.ReportEntry
	metricsData *metricsSnapshot
	failures    []failureSnapshot

	// State.
	loading bool
	err     error
}

type metricsSnapshot struct {
	batchesRun      int
	batchesAborted  int
	entriesByKind   map[string]int
	rebalancedItems int
	eventCount      int
}

type failureSnapshot struct {
	container string
	entry     string
	errText   string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	reports  []models.ReportEntry
	metrics  *metricsSnapshot
	failures []failureSnapshot
	err      error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelReports,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadDashboardData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadDashboardData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.reports = msg.reports
		m.metricsData = msg.metrics
		m.failures = msg.failures
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" dbrain Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	reportsPanel := m.renderReportsPanel()
	metricsPanel := m.renderMetricsPanel()
	failuresPanel := m.renderFailuresPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 3
		reportsPanel = m.applyPanelStyle(panelReports, reportsPanel, colWidth-4)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, colWidth-4)
		failuresPanel = m.applyPanelStyle(panelFailures, failuresPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, reportsPanel, metricsPanel, failuresPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		reportsPanel = m.applyPanelStyle(panelReports, reportsPanel, panelWidth)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, panelWidth)
		failuresPanel = m.applyPanelStyle(panelFailures, failuresPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, reportsPanel, metricsPanel, failuresPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderReportsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent batches"))
	b.WriteString("\n")

	if len(m.reports) == 0 {
		b.WriteString("  No reports yet.")
		return b.String()
	}

	shown := m.reports
	if len(shown) > 8 {
		shown = shown[:8]
	}
	for _, r := range shown {
		line := fmt.Sprintf("  %s  +%d =%d ~%d !%d", r.RunDate, r.Created, r.Skipped, r.Rescheduled, r.Failed)
		if r.Failed > 0 {
			b.WriteString(failedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m dashboardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Metrics (7d)"))
	b.WriteString("\n")

	if m.metricsData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metricsData
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Batches", md.batchesRun))
	if md.batchesAborted > 0 {
		b.WriteString(failedStyle.Render(fmt.Sprintf("  %-14s %d", "Aborted", md.batchesAborted)))
		b.WriteString("\n")
	}
	for _, kind := range []string{"created", "rescheduled", "skipped_duplicate", "failed", "invalid"} {
		if n := md.entriesByKind[kind]; n > 0 {
			b.WriteString(fmt.Sprintf("  %-14s %d\n", kind, n))
		}
	}
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Rebalanced", md.rebalancedItems))
	b.WriteString(fmt.Sprintf("\n  Events: %d", md.eventCount))
	return b.String()
}

func (m dashboardModel) renderFailuresPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent failures"))
	b.WriteString("\n")

	if len(m.failures) == 0 {
		b.WriteString("  No failures. Good.")
		return b.String()
	}

	for _, f := range m.failures {
		b.WriteString(failedStyle.Render(fmt.Sprintf("  %s: %s", f.container, f.entry)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("    %s\n", f.errText))
	}
	return b.String()
}

func loadDashboardData() tea.Msg {
	result := dataLoadedMsg{}

	if ReportStore != nil {
		entries, err := ReportStore.ListReports()
		if err != nil {
			result.err = fmt.Errorf("loading reports: %w", err)
			return result
		}
		result.reports = entries

		// The latest report supplies the failure panel; failures carry the
		// backend error verbatim.
		if latest, err := ReportStore.GetLatest(); err == nil && latest != nil {
			for _, o := range latest.Outcomes {
				if o.Kind != models.OutcomeFailed {
					continue
				}
				result.failures = append(result.failures, failureSnapshot{
					container: o.Container,
					entry:     o.Entry,
					errText:   o.Error,
				})
				if len(result.failures) == 5 {
					break
				}
			}
		}
	}

	if MetricsCalc != nil {
		since := time.Now().UTC().AddDate(0, 0, -7)
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metricsSnapshot{
			batchesRun:      metrics.BatchesRun,
			batchesAborted:  metrics.BatchesAborted,
			entriesByKind:   metrics.EntriesByKind,
			rebalancedItems: metrics.RebalancedItems,
			eventCount:      metrics.EventCount,
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for batches, metrics, and failures",
	Long: `Launch an interactive terminal dashboard showing recent batch runs,
dispatch metrics, and the latest failures.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportStore == nil {
			return fmt.Errorf("report store not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
