// Package mcp provides an MCP (Model Context Protocol) server that exposes
// dbrain batch processing as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/internal/observability"
	"github.com/dbrainhq/dbrain/internal/storage"
	"github.com/dbrainhq/dbrain/pkg/models"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps dbrain services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	processor   *core.BatchProcessor
	rebalancer  *core.Rebalancer
	reportStore storage.ReportStoreManager
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server with the given service dependencies.
// metricsCalc may be nil if observability is disabled.
func NewServer(processor *core.BatchProcessor, rebalancer *core.Rebalancer, reportStore storage.ReportStoreManager, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		processor:   processor,
		rebalancer:  rebalancer,
		reportStore: reportStore,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "dbrain", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type processBatchInput struct {
	Text string `json:"text" jsonschema:"required,the raw captured text, one entry per line"`
	Date string `json:"date,omitempty" jsonschema:"the run date in YYYY-MM-DD form, defaults to today"`
}

type outcomeOutput struct {
	Entry        string `json:"entry"`
	Destination  string `json:"destination,omitempty"`
	Container    string `json:"container,omitempty"`
	Kind         string `json:"kind"`
	Priority     string `json:"priority,omitempty"`
	CreatedID    string `json:"created_id,omitempty"`
	MatchedID    string `json:"matched_id,omitempty"`
	OriginalDate string `json:"original_date,omitempty"`
	NewDate      string `json:"new_date,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	Error        string `json:"error,omitempty"`
	// LowConfidence marks entries routed by the default rule for review.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

type processBatchOutput struct {
	ReportID   string          `json:"report_id,omitempty"`
	RunDate    string          `json:"run_date"`
	Summary    string          `json:"summary"`
	FatalError string          `json:"fatal_error,omitempty"`
	Outcomes   []outcomeOutput `json:"outcomes"`
}

type rebalanceInput struct {
	Date string `json:"date,omitempty" jsonschema:"the reference date in YYYY-MM-DD form, defaults to today"`
	From string `json:"from,omitempty" jsonschema:"only consider items due on or after this date (YYYY-MM-DD)"`
	To   string `json:"to,omitempty" jsonschema:"only consider items due on or before this date (YYYY-MM-DD)"`
	All  bool   `json:"all,omitempty" jsonschema:"rebalance every dated item, not only overdue ones"`
}

type rebalanceMoveOutput struct {
	Container string `json:"container"`
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
	OldDate   string `json:"old_date"`
	NewDate   string `json:"new_date"`
}

type rebalanceOutput struct {
	Scanned []string              `json:"scanned"`
	Moves   []rebalanceMoveOutput `json:"moves"`
	Errors  []string              `json:"errors,omitempty"`
}

type getReportInput struct {
	ReportID string `json:"report_id,omitempty" jsonschema:"the report ULID, defaults to the latest report"`
}

type listReportsInput struct{}

type reportSummaryOutput struct {
	ID          string `json:"id"`
	RunDate     string `json:"run_date"`
	GeneratedAt string `json:"generated_at"`
	Created     int    `json:"created"`
	Skipped     int    `json:"skipped"`
	Rescheduled int    `json:"rescheduled"`
	Failed      int    `json:"failed"`
}

type listReportsOutput struct {
	Reports []reportSummaryOutput `json:"reports"`
	Count   int                   `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	BatchesRun      int            `json:"batches_run"`
	BatchesAborted  int            `json:"batches_aborted"`
	EntriesByKind   map[string]int `json:"entries_by_kind"`
	RebalancedItems int            `json:"rebalanced_items"`
	EventCount      int            `json:"event_count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "process_batch",
		Description: "Classify and dispatch a batch of captured text lines to the configured task and calendar backends. Returns the per-entry outcomes with any backend errors verbatim.",
	}, s.handleProcessBatch)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "rebalance",
		Description: "Pull overdue items forward across every configured container, respecting the per-day capacity.",
	}, s.handleRebalance)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_report",
		Description: "Get a batch report by ID, or the latest report when no ID is given.",
	}, s.handleGetReport)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_reports",
		Description: "List archived batch reports, newest first.",
	}, s.handleListReports)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated dispatch metrics from the event log.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleProcessBatch(ctx context.Context, _ *gomcp.CallToolRequest, input processBatchInput) (*gomcp.CallToolResult, processBatchOutput, error) {
	if s.processor == nil {
		return errorResult("batch processor not initialized"), processBatchOutput{}, nil
	}
	if input.Text == "" {
		return errorResult("text is required"), processBatchOutput{}, nil
	}

	today, err := parseRunDate(input.Date)
	if err != nil {
		return errorResult(err.Error()), processBatchOutput{}, nil
	}

	report, err := s.processor.ProcessBatch(ctx, input.Text, today)
	if err != nil {
		return errorResult(fmt.Sprintf("processing batch: %s", err)), processBatchOutput{}, nil
	}

	if s.reportStore != nil {
		if _, err := s.reportStore.SaveReport(report); err != nil {
			return errorResult(fmt.Sprintf("archiving report: %s", err)), processBatchOutput{}, nil
		}
	}

	out := processBatchOutput{
		ReportID:   report.ID,
		RunDate:    report.RunDate,
		Summary:    core.SummaryLine(report),
		FatalError: report.FatalError,
		Outcomes:   make([]outcomeOutput, len(report.Outcomes)),
	}
	for i, o := range report.Outcomes {
		out.Outcomes[i] = outcomeToOutput(o)
	}
	return nil, out, nil
}

func (s *Server) handleRebalance(ctx context.Context, _ *gomcp.CallToolRequest, input rebalanceInput) (*gomcp.CallToolResult, rebalanceOutput, error) {
	if s.rebalancer == nil {
		return errorResult("rebalancer not initialized"), rebalanceOutput{}, nil
	}

	today, err := parseRunDate(input.Date)
	if err != nil {
		return errorResult(err.Error()), rebalanceOutput{}, nil
	}

	opts := core.RebalanceOptions{OverdueOnly: !input.All}
	if input.From != "" {
		if opts.From, err = parseRunDate(input.From); err != nil {
			return errorResult(err.Error()), rebalanceOutput{}, nil
		}
	}
	if input.To != "" {
		if opts.To, err = parseRunDate(input.To); err != nil {
			return errorResult(err.Error()), rebalanceOutput{}, nil
		}
	}

	report, err := s.rebalancer.Run(ctx, today, opts)
	if err != nil {
		return errorResult(fmt.Sprintf("rebalancing: %s", err)), rebalanceOutput{}, nil
	}

	out := rebalanceOutput{
		Scanned: report.Scanned,
		Moves:   make([]rebalanceMoveOutput, len(report.Moves)),
	}
	for i, m := range report.Moves {
		out.Moves[i] = rebalanceMoveOutput{
			Container: m.Container,
			ItemID:    m.ItemID,
			Title:     m.Title,
			OldDate:   m.OldDate,
			NewDate:   m.NewDate,
		}
	}
	for _, e := range report.Errors {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", e.Container, e.Error))
	}
	return nil, out, nil
}

func (s *Server) handleGetReport(_ context.Context, _ *gomcp.CallToolRequest, input getReportInput) (*gomcp.CallToolResult, processBatchOutput, error) {
	if s.reportStore == nil {
		return errorResult("report store not initialized"), processBatchOutput{}, nil
	}

	var report *models.BatchReport
	var err error
	if input.ReportID == "" {
		report, err = s.reportStore.GetLatest()
	} else {
		report, err = s.reportStore.GetReport(input.ReportID)
	}
	if err != nil {
		return errorResult(fmt.Sprintf("loading report: %s", err)), processBatchOutput{}, nil
	}
	if report == nil {
		return errorResult("no reports archived yet"), processBatchOutput{}, nil
	}

	out := processBatchOutput{
		ReportID:   report.ID,
		RunDate:    report.RunDate,
		Summary:    core.SummaryLine(report),
		FatalError: report.FatalError,
		Outcomes:   make([]outcomeOutput, len(report.Outcomes)),
	}
	for i, o := range report.Outcomes {
		out.Outcomes[i] = outcomeToOutput(o)
	}
	return nil, out, nil
}

func (s *Server) handleListReports(_ context.Context, _ *gomcp.CallToolRequest, _ listReportsInput) (*gomcp.CallToolResult, listReportsOutput, error) {
	if s.reportStore == nil {
		return errorResult("report store not initialized"), listReportsOutput{}, nil
	}

	entries, err := s.reportStore.ListReports()
	if err != nil {
		return errorResult(fmt.Sprintf("listing reports: %s", err)), listReportsOutput{}, nil
	}

	out := listReportsOutput{
		Reports: make([]reportSummaryOutput, len(entries)),
		Count:   len(entries),
	}
	for i, e := range entries {
		out.Reports[i] = reportSummaryOutput{
			ID:          e.ID,
			RunDate:     e.RunDate,
			GeneratedAt: e.GeneratedAt.Format(time.RFC3339),
			Created:     e.Created,
			Skipped:     e.Skipped,
			Rescheduled: e.Rescheduled,
			Failed:      e.Failed,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), metricsOutput{EntriesByKind: map[string]int{}}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), metricsOutput{EntriesByKind: map[string]int{}}, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{EntriesByKind: map[string]int{}}, nil
	}

	out := metricsOutput{
		BatchesRun:      metrics.BatchesRun,
		BatchesAborted:  metrics.BatchesAborted,
		EntriesByKind:   metrics.EntriesByKind,
		RebalancedItems: metrics.RebalancedItems,
		EventCount:      metrics.EventCount,
	}
	return nil, out, nil
}

// --- Helpers ---

func outcomeToOutput(o models.EntryOutcome) outcomeOutput {
	return outcomeOutput{
		Entry:         o.Entry,
		Destination:   string(o.Destination),
		Container:     o.Container,
		Kind:          string(o.Kind),
		Priority:      string(o.Priority),
		CreatedID:     o.CreatedID,
		MatchedID:     o.MatchedID,
		OriginalDate:  o.OriginalDate,
		NewDate:       o.NewDate,
		DueDate:       o.DueDate,
		Error:         o.Error,
		LowConfidence: o.LowConfidence,
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseRunDate parses an optional YYYY-MM-DD date, defaulting to today.
func parseRunDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	var value int
	if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &value); err != nil || value <= 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -value), nil
	case 'h':
		return now.Add(-time.Duration(value) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("invalid duration %q, expected suffix d or h", s)
	}
}
