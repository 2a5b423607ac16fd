package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/rs/zerolog"
)

const tickTickBaseURL = "https://api.ticktick.com/open/v1"

// tickTickPriorities maps internal priorities to the TickTick numeric scale.
var tickTickPriorities = map[models.Priority]int{
	models.P1: 5,
	models.P2: 3,
	models.P3: 1,
	models.P4: 0,
}

// tickTickClient talks to the TickTick Open API. Each configured project is
// one container.
type tickTickClient struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// NewTickTick creates the personal task backend.
func NewTickTick(cfg models.TickTickConfig, log zerolog.Logger) core.Backend {
	return &tickTickClient{
		baseURL: tickTickBaseURL,
		token:   cfg.AccessToken,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("backend", "ticktick").Logger(),
	}
}

func (c *tickTickClient) Name() string { return "ticktick" }

// tickTickTask is the wire form of a task in project data responses.
type tickTickTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DueDate  string `json:"dueDate,omitempty"`
	IsAllDay bool   `json:"isAllDay,omitempty"`
	Status   int    `json:"status,omitempty"` // 0 normal, 2 completed
	Priority int    `json:"priority,omitempty"`
}

type tickTickProjectData struct {
	Tasks []tickTickTask `json:"tasks"`
}

// ListContainer fetches all non-deleted tasks of one project.
func (c *tickTickClient) ListContainer(ctx context.Context, container string) ([]models.Item, error) {
	var data tickTickProjectData
	path := fmt.Sprintf("/project/%s/data", container)
	if err := c.call(ctx, http.MethodGet, path, nil, &data, "list project"); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(data.Tasks))
	for _, t := range data.Tasks {
		items = append(items, models.Item{
			ID:        t.ID,
			Title:     t.Title,
			Due:       parseTickTickDate(t.DueDate),
			AllDay:    t.IsAllDay,
			Completed: t.Status == 2,
		})
	}
	return items, nil
}

// Search matches by title against the project listing; the Open API has no
// server-side query endpoint.
func (c *tickTickClient) Search(ctx context.Context, container, titleQuery string) ([]models.Item, error) {
	items, err := c.ListContainer(ctx, container)
	if err != nil {
		return nil, err
	}
	want := core.NormalizeTitle(titleQuery)
	if want == "" {
		return nil, nil
	}
	var found []models.Item
	for _, item := range items {
		have := core.NormalizeTitle(item.Title)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			found = append(found, item)
		}
	}
	return found, nil
}

// Create adds a task to the project. TickTick expects local-style datetime
// formatting with a numeric zone offset.
func (c *tickTickClient) Create(ctx context.Context, container string, draft models.ItemDraft) (string, error) {
	body := map[string]any{
		"projectId": container,
		"title":     draft.Title,
		"isAllDay":  draft.AllDay,
		"priority":  tickTickPriorities[draft.Priority],
	}
	if draft.Description != "" {
		body["content"] = draft.Description
	}
	if !draft.Due.IsZero() {
		body["dueDate"] = formatTickTickDate(draft.Due)
	}

	var created tickTickTask
	if err := c.call(ctx, http.MethodPost, "/task", body, &created, "create task"); err != nil {
		return "", err
	}
	c.log.Debug().Str("id", created.ID).Str("title", draft.Title).Msg("task created")
	return created.ID, nil
}

// Update patches a task in place.
func (c *tickTickClient) Update(ctx context.Context, container, id string, patch models.ItemPatch) error {
	body := map[string]any{
		"id":        id,
		"projectId": container,
	}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Due != nil {
		body["dueDate"] = formatTickTickDate(*patch.Due)
	}
	return c.call(ctx, http.MethodPost, "/task/"+id, body, nil, "update task")
}

// Complete marks a task done.
func (c *tickTickClient) Complete(ctx context.Context, container, id string) error {
	path := fmt.Sprintf("/project/%s/task/%s/complete", container, id)
	return c.call(ctx, http.MethodPost, path, nil, nil, "complete task")
}

// call performs one API request and decodes the response into out when
// non-nil. Non-2xx responses become typed errors with the body verbatim.
func (c *tickTickClient) call(ctx context.Context, method, path string, body, out any, op string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

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
	return nil
}

// parseTickTickDate accepts both datetime forms the API emits.
func parseTickTickDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatTickTickDate(t time.Time) string {
	return t.Format("2006-01-02T15:04:05-0700")
}
