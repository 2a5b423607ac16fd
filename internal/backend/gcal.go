package backend

import (
	"context"
	"errors"
	"time"

	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// calendarClient dispatches entries to Google Calendar. The calendar id is
// the container id.
type calendarClient struct {
	srv *calendar.Service
	log zerolog.Logger
}

// NewCalendar creates the calendar backend around an authorized service.
func NewCalendar(srv *calendar.Service, log zerolog.Logger) core.Backend {
	return &calendarClient{
		srv: srv,
		log: log.With().Str("backend", "calendar").Logger(),
	}
}

func (c *calendarClient) Name() string { return "calendar" }

// ListContainer fetches upcoming and recent events. The window is bounded:
// duplicate and workload checks only care about the scheduling horizon.
func (c *calendarClient) ListContainer(ctx context.Context, container string) ([]models.Item, error) {
	now := time.Now().UTC()
	events, err := c.srv.Events.List(container).
		Context(ctx).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(now.AddDate(0, 0, -7).Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, core.DefaultRescheduleHorizonDays).Format(time.RFC3339)).
		MaxResults(250).
		Do()
	if err != nil {
		return nil, c.wrap("list events", err)
	}

	items := make([]models.Item, 0, len(events.Items))
	for _, ev := range events.Items {
		items = append(items, eventToItem(ev))
	}
	return items, nil
}

// Search queries events by free text.
func (c *calendarClient) Search(ctx context.Context, container, titleQuery string) ([]models.Item, error) {
	events, err := c.srv.Events.List(container).
		Context(ctx).
		SingleEvents(true).
		Q(titleQuery).
		MaxResults(50).
		Do()
	if err != nil {
		return nil, c.wrap("search events", err)
	}

	items := make([]models.Item, 0, len(events.Items))
	for _, ev := range events.Items {
		items = append(items, eventToItem(ev))
	}
	return items, nil
}

// Create inserts an event. Drafts without a clock time become all-day events.
func (c *calendarClient) Create(ctx context.Context, container string, draft models.ItemDraft) (string, error) {
	event := &calendar.Event{
		Summary:     draft.Title,
		Description: draft.Description,
		Location:    draft.Location,
	}
	if draft.AllDay || draft.Start.IsZero() {
		day := draft.Due.Format("2006-01-02")
		event.Start = &calendar.EventDateTime{Date: day}
		event.End = &calendar.EventDateTime{Date: day}
	} else {
		event.Start = &calendar.EventDateTime{DateTime: draft.Start.Format(time.RFC3339)}
		event.End = &calendar.EventDateTime{DateTime: draft.End.Format(time.RFC3339)}
	}
	for _, attendee := range draft.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: attendee})
	}

	created, err := c.srv.Events.Insert(container, event).Context(ctx).Do()
	if err != nil {
		return "", c.wrap("insert event", err)
	}
	c.log.Debug().Str("id", created.Id).Str("title", draft.Title).Msg("event created")
	return created.Id, nil
}

// Update patches an event's fields in place.
func (c *calendarClient) Update(ctx context.Context, container, id string, patch models.ItemPatch) error {
	event := &calendar.Event{}
	if patch.Title != nil {
		event.Summary = *patch.Title
	}
	switch {
	case patch.Start != nil && patch.End != nil:
		event.Start = &calendar.EventDateTime{DateTime: patch.Start.Format(time.RFC3339)}
		event.End = &calendar.EventDateTime{DateTime: patch.End.Format(time.RFC3339)}
	case patch.Due != nil:
		day := patch.Due.Format("2006-01-02")
		event.Start = &calendar.EventDateTime{Date: day}
		event.End = &calendar.EventDateTime{Date: day}
	}

	if _, err := c.srv.Events.Patch(container, id, event).Context(ctx).Do(); err != nil {
		return c.wrap("patch event", err)
	}
	return nil
}

// Complete is not a calendar concept; events pass or get cancelled.
func (c *calendarClient) Complete(ctx context.Context, container, id string) error {
	return &Error{Backend: c.Name(), Op: "complete", Message: "calendar events cannot be completed"}
}

// wrap converts a Google API error into the typed backend error, keeping
// the API message verbatim.
func (c *calendarClient) wrap(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return apiError(c.Name(), op, gerr.Code, []byte(gerr.Message))
	}
	return &Error{Backend: c.Name(), Op: op, Message: err.Error()}
}

func eventToItem(ev *calendar.Event) models.Item {
	item := models.Item{
		ID:        ev.Id,
		Title:     ev.Summary,
		Completed: ev.Status == "cancelled",
	}
	if ev.Start != nil {
		switch {
		case ev.Start.Date != "":
			item.AllDay = true
			if d, err := time.Parse("2006-01-02", ev.Start.Date); err == nil {
				item.Due = d
			}
		case ev.Start.DateTime != "":
			if d, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
				item.Due = d
			}
		}
	}
	return item
}
