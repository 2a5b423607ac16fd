package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/rs/zerolog"
)

// planfixClosedStatuses are the default Planfix statuses that count as done.
var planfixClosedStatuses = map[int]bool{3: true, 4: true}

// planfixPriorities maps internal priorities to Planfix importance labels.
var planfixPriorities = map[models.Priority]string{
	models.P1: "urgent",
	models.P2: "high",
	models.P3: "normal",
	models.P4: "low",
}

// planfixClient talks to the Planfix REST API. Each team project is one
// container; the project id is the container id.
type planfixClient struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// NewPlanfix creates the team task backend for one Planfix account.
func NewPlanfix(cfg models.PlanfixConfig, log zerolog.Logger) core.Backend {
	return &planfixClient{
		baseURL: fmt.Sprintf("https://%s.planfix.com/rest", cfg.Account),
		token:   cfg.Token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("backend", "planfix").Logger(),
	}
}

func (c *planfixClient) Name() string { return "planfix" }

// planfixTask is the wire form of a task in list responses.
type planfixTask struct {
	ID     int          `json:"id"`
	Name   string       `json:"name"`
	Status *planfixRef  `json:"status,omitempty"`
	End    *planfixDate `json:"endDateTime,omitempty"`
}

type planfixRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

type planfixDate struct {
	Date string `json:"date,omitempty"` // DD-MM-YYYY
}

type planfixListResponse struct {
	Result string        `json:"result"`
	Error  string        `json:"error,omitempty"`
	Tasks  []planfixTask `json:"tasks"`
}

type planfixCreateResponse struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
	ID     int    `json:"id"`
}

// ListContainer fetches the tasks of one project.
func (c *planfixClient) ListContainer(ctx context.Context, container string) ([]models.Item, error) {
	return c.listTasks(ctx, container, "")
}

// Search asks Planfix for tasks in the project whose name matches the query.
// The pipeline re-checks titles with its own similarity rule; this only has
// to not miss candidates.
func (c *planfixClient) Search(ctx context.Context, container, titleQuery string) ([]models.Item, error) {
	return c.listTasks(ctx, container, titleQuery)
}

func (c *planfixClient) listTasks(ctx context.Context, container, nameQuery string) ([]models.Item, error) {
	projectID, err := strconv.Atoi(container)
	if err != nil {
		return nil, fmt.Errorf("planfix project id %q is not numeric", container)
	}

	filters := []map[string]any{
		{"type": 5001, "operator": "equal", "value": projectID}, // by project
	}
	if nameQuery != "" {
		filters = append(filters, map[string]any{"type": 8, "operator": "equal", "value": nameQuery})
	}
	body := map[string]any{
		"offset":   0,
		"pageSize": 100,
		"fields":   "id,name,endDateTime,status",
		"filters":  filters,
	}

	var resp planfixListResponse
	if err := c.call(ctx, "/task/list", body, &resp, "list tasks"); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		item := models.Item{
			ID:     strconv.Itoa(t.ID),
			Title:  t.Name,
			AllDay: true,
		}
		if t.End != nil {
			item.Due = parsePlanfixDate(t.End.Date)
		}
		if t.Status != nil {
			item.Completed = planfixClosedStatuses[t.Status.ID]
		}
		items = append(items, item)
	}
	return items, nil
}

// Create adds a task to the project.
func (c *planfixClient) Create(ctx context.Context, container string, draft models.ItemDraft) (string, error) {
	projectID, err := strconv.Atoi(container)
	if err != nil {
		return "", fmt.Errorf("planfix project id %q is not numeric", container)
	}

	body := map[string]any{
		"name":    draft.Title,
		"project": map[string]any{"id": projectID},
	}
	if importance, ok := planfixPriorities[draft.Priority]; ok {
		body["priority"] = importance
	}
	if draft.Description != "" {
		body["description"] = draft.Description
	}
	if !draft.Due.IsZero() {
		body["endDateTime"] = map[string]any{"date": formatPlanfixDate(draft.Due)}
	}

	var resp planfixCreateResponse
	if err := c.call(ctx, "/task/", body, &resp, "create task"); err != nil {
		return "", err
	}
	c.log.Debug().Int("id", resp.ID).Str("title", draft.Title).Msg("task created")
	return strconv.Itoa(resp.ID), nil
}

// Update patches a task in place.
func (c *planfixClient) Update(ctx context.Context, container, id string, patch models.ItemPatch) error {
	body := map[string]any{}
	if patch.Title != nil {
		body["name"] = *patch.Title
	}
	if patch.Due != nil {
		body["endDateTime"] = map[string]any{"date": formatPlanfixDate(*patch.Due)}
	}
	var resp planfixCreateResponse
	return c.call(ctx, "/task/"+id, body, &resp, "update task")
}

// Complete moves a task to the default completed status.
func (c *planfixClient) Complete(ctx context.Context, container, id string) error {
	body := map[string]any{"status": map[string]any{"id": 3}}
	var resp planfixCreateResponse
	return c.call(ctx, "/task/"+id, body, &resp, "complete task")
}

// call performs one POST request. Planfix reports failures both as non-2xx
// statuses and as result:"fail" payloads; both become typed errors carrying
// the API's own message.
func (c *planfixClient) call(ctx context.Context, path string, body, out any, op string) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Backend: c.Name(), Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Backend: c.Name(), Op: op, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(c.Name(), op, resp.StatusCode, payload)
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", op, err)
		}
	}
	if failed, msg := planfixFailure(out); failed {
		if msg == "" {
			msg = "planfix reported failure without a message"
		}
		return &Error{Backend: c.Name(), Op: op, Message: msg}
	}
	return nil
}

func planfixFailure(out any) (bool, string) {
	switch r := out.(type) {
	case *planfixListResponse:
		if r.Result == "fail" {
			return true, r.Error
		}
	case *planfixCreateResponse:
		if r.Result == "fail" {
			return true, r.Error
		}
	}
	return false, ""
}

func parsePlanfixDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse("02-01-2006", s); err == nil {
		return t
	}
	return time.Time{}
}

func formatPlanfixDate(t time.Time) string {
	return t.Format("02-01-2006")
}
