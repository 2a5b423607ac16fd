package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

func TestEventToItem(t *testing.T) {
	allDay := eventToItem(&calendar.Event{
		Id:      "e1",
		Summary: "Отпуск",
		Status:  "confirmed",
		Start:   &calendar.EventDateTime{Date: "2025-06-03"},
	})
	if !allDay.AllDay {
		t.Error("date-only event not marked all-day")
	}
	if want := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC); !allDay.Due.Equal(want) {
		t.Errorf("Due = %s, want %s", allDay.Due, want)
	}

	timed := eventToItem(&calendar.Event{
		Id:      "e2",
		Summary: "Созвон",
		Start:   &calendar.EventDateTime{DateTime: "2025-06-03T15:30:00Z"},
	})
	if timed.AllDay {
		t.Error("timed event marked all-day")
	}
	if want := time.Date(2025, 6, 3, 15, 30, 0, 0, time.UTC); !timed.Due.Equal(want) {
		t.Errorf("Due = %s, want %s", timed.Due, want)
	}

	cancelled := eventToItem(&calendar.Event{Id: "e3", Status: "cancelled"})
	if !cancelled.Completed {
		t.Error("cancelled event not treated as completed")
	}
}

func TestCalendarWrapGoogleError(t *testing.T) {
	c := &calendarClient{log: zerolog.Nop()}

	err := c.wrap("list events", &googleapi.Error{Code: 403, Message: "insufficient permissions"})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("got %T, want *AuthError for 403", err)
	}
	if authErr.Err.Message != "insufficient permissions" {
		t.Errorf("Message = %q, want the API message verbatim", authErr.Err.Message)
	}

	plain := c.wrap("list events", errors.New("dial tcp: timeout"))
	var apiErr *Error
	if !errors.As(plain, &apiErr) {
		t.Fatalf("got %T, want *Error", plain)
	}
	if apiErr.Status != 0 || apiErr.Message != "dial tcp: timeout" {
		t.Errorf("error = %+v", apiErr)
	}
}

func TestCalendarCompleteUnsupported(t *testing.T) {
	c := &calendarClient{log: zerolog.Nop()}

	err := c.Complete(context.Background(), "primary", "e1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %T, want *Error", err)
	}
	if apiErr.Message != "calendar events cannot be completed" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}
