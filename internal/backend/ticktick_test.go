package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/rs/zerolog"
)

func newTestTickTick(srv *httptest.Server) *tickTickClient {
	return &tickTickClient{
		baseURL: srv.URL,
		token:   "test-token",
		http:    srv.Client(),
		log:     zerolog.Nop(),
	}
}

func TestTickTickListContainer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/project/inbox/data" {
			t.Errorf("path = %s, want /project/inbox/data", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(tickTickProjectData{Tasks: []tickTickTask{
			{ID: "a1", Title: "Купить молоко", DueDate: "2025-06-03T00:00:00+0000", Status: 0},
			{ID: "a2", Title: "Done task", Status: 2},
		}})
	}))
	defer srv.Close()

	items, err := newTestTickTick(srv).ListContainer(context.Background(), "inbox")
	if err != nil {
		t.Fatalf("ListContainer: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "a1" || items[0].Completed {
		t.Errorf("items[0] = %+v, want open task a1", items[0])
	}
	if want := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC); !items[0].Due.Equal(want) {
		t.Errorf("items[0].Due = %s, want %s", items[0].Due, want)
	}
	if !items[1].Completed {
		t.Error("status 2 task not marked completed")
	}
}

func TestTickTickCreateMapsPriority(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/task" {
			t.Errorf("%s %s, want POST /task", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(tickTickTask{ID: "new-1"})
	}))
	defer srv.Close()

	draft := models.ItemDraft{
		Title:    "срочно оплатить счет",
		Due:      time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		AllDay:   true,
		Priority: models.P1,
	}
	id, err := newTestTickTick(srv).Create(context.Background(), "inbox", draft)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "new-1" {
		t.Errorf("id = %q, want new-1", id)
	}
	if got["projectId"] != "inbox" {
		t.Errorf("projectId = %v", got["projectId"])
	}
	if got["priority"] != float64(5) {
		t.Errorf("priority = %v, want 5 for p1", got["priority"])
	}
	if got["dueDate"] != "2025-06-03T00:00:00+0000" {
		t.Errorf("dueDate = %v", got["dueDate"])
	}
}

func TestTickTickSearchMatchesBothWays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tickTickProjectData{Tasks: []tickTickTask{
			{ID: "1", Title: "Купить молоко и хлеб"},
			{ID: "2", Title: "Совсем другое"},
			{ID: "3", Title: "молоко"},
		}})
	}))
	defer srv.Close()

	found, err := newTestTickTick(srv).Search(context.Background(), "inbox", "купить молоко")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("got %d matches, want 2 (containment in either direction)", len(found))
	}
}

func TestTickTickUnauthorizedBecomesAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorMessage":"invalid access token"}`))
	}))
	defer srv.Close()

	_, err := newTestTickTick(srv).ListContainer(context.Background(), "inbox")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("got %T (%v), want *AuthError", err, err)
	}
	if authErr.Err.Message != `{"errorMessage":"invalid access token"}` {
		t.Errorf("Message = %q, want the response body verbatim", authErr.Err.Message)
	}
}

func TestTickTickServerErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limit exceeded"))
	}))
	defer srv.Close()

	_, err := newTestTickTick(srv).Create(context.Background(), "inbox", models.ItemDraft{Title: "x"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %T, want *Error", err)
	}
	if apiErr.Status != 429 || apiErr.Message != "rate limit exceeded" {
		t.Errorf("error = %+v, want 429 with body verbatim", apiErr)
	}
}

func TestParseTickTickDateLayouts(t *testing.T) {
	tests := []string{
		"2025-06-03T09:30:00.000+0000",
		"2025-06-03T09:30:00+0000",
		"2025-06-03T09:30:00Z",
	}
	want := time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC)
	for _, s := range tests {
		if got := parseTickTickDate(s); !got.Equal(want) {
			t.Errorf("parseTickTickDate(%q) = %s, want %s", s, got, want)
		}
	}
	if !parseTickTickDate("").IsZero() {
		t.Error("empty date not zero")
	}
	if !parseTickTickDate("not a date").IsZero() {
		t.Error("garbage date not zero")
	}
}
