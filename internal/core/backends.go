package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dbrainhq/dbrain/pkg/models"
)

// Backend is the capability set the core consumes from each backend
// collaborator. Defining it here keeps core independent of the backend
// package; internal/backend provides the implementations.
type Backend interface {
	Name() string
	Search(ctx context.Context, container, titleQuery string) ([]models.Item, error)
	ListContainer(ctx context.Context, container string) ([]models.Item, error)
	Create(ctx context.Context, container string, draft models.ItemDraft) (string, error)
	Update(ctx context.Context, container, id string, patch models.ItemPatch) error
	Complete(ctx context.Context, container, id string) error
}

// BackendSet holds one collaborator per destination.
type BackendSet struct {
	Personal Backend
	Team     Backend
	Calendar Backend
}

// For returns the backend for a destination. An unconfigured backend is an
// error at dispatch time, not a panic.
func (s BackendSet) For(dest models.Destination) (Backend, error) {
	var b Backend
	switch dest {
	case models.DestPersonal:
		b = s.Personal
	case models.DestTeam:
		b = s.Team
	case models.DestCalendar:
		b = s.Calendar
	default:
		return nil, fmt.Errorf("no backend for destination %q", dest)
	}
	if b == nil {
		return nil, fmt.Errorf("%s backend is not configured", dest)
	}
	return b, nil
}

// ContainerRef identifies one known container: the unit of duplicate and
// workload checks.
type ContainerRef struct {
	Destination models.Destination
	Container   string
	// Label is a human-readable name used in reports.
	Label string
	// Workweek restricts workload rescheduling to Monday-Friday.
	Workweek bool
}

// teamRoute pairs a lowercase company keyword with its Planfix project id.
type teamRoute struct {
	keyword string
	project string
}

// ContainerResolver maps a classified entry to its target container.
type ContainerResolver struct {
	personalProject string
	calendarID      string
	teamDefault     string
	// teamRoutes is sorted by keyword so the same text always resolves to
	// the same project, even when it names several companies.
	teamRoutes []teamRoute
}

// NewContainerResolver builds a resolver from the configured container map.
func NewContainerResolver(cfg *models.GlobalConfig) *ContainerResolver {
	routes := make([]teamRoute, 0, len(cfg.Planfix.Projects))
	for company, id := range cfg.Planfix.Projects {
		routes = append(routes, teamRoute{keyword: strings.ToLower(company), project: id})
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].keyword < routes[j].keyword })
	return &ContainerResolver{
		personalProject: cfg.TickTick.ProjectID,
		calendarID:      cfg.Calendar.CalendarID,
		teamDefault:     cfg.Planfix.DefaultProject,
		teamRoutes:      routes,
	}
}

// Resolve picks the container for an entry. Team entries route to the
// project of the first matching company keyword in alphabetical keyword
// order, falling back to the default team project.
func (r *ContainerResolver) Resolve(text string, dest models.Destination) (string, error) {
	switch dest {
	case models.DestPersonal:
		if r.personalProject == "" {
			return "", fmt.Errorf("personal project is not configured")
		}
		return r.personalProject, nil
	case models.DestCalendar:
		if r.calendarID == "" {
			return "", fmt.Errorf("calendar id is not configured")
		}
		return r.calendarID, nil
	case models.DestTeam:
		folded := strings.ToLower(text)
		for _, route := range r.teamRoutes {
			if strings.Contains(folded, route.keyword) {
				return route.project, nil
			}
		}
		if r.teamDefault == "" {
			return "", fmt.Errorf("default team project is not configured")
		}
		return r.teamDefault, nil
	default:
		return "", fmt.Errorf("unknown destination %q", dest)
	}
}

// Containers lists every known container. The rebalance operation iterates
// this list exhaustively; no container may be skipped.
func (r *ContainerResolver) Containers() []ContainerRef {
	var refs []ContainerRef
	if r.personalProject != "" {
		refs = append(refs, ContainerRef{
			Destination: models.DestPersonal,
			Container:   r.personalProject,
			Label:       "personal",
		})
	}
	seen := map[string]bool{}
	for _, route := range r.teamRoutes {
		if seen[route.project] {
			continue
		}
		seen[route.project] = true
		refs = append(refs, ContainerRef{
			Destination: models.DestTeam,
			Container:   route.project,
			Label:       route.keyword,
			Workweek:    true,
		})
	}
	if r.teamDefault != "" && !seen[r.teamDefault] {
		refs = append(refs, ContainerRef{
			Destination: models.DestTeam,
			Container:   r.teamDefault,
			Label:       "team",
			Workweek:    true,
		})
	}
	if r.calendarID != "" {
		refs = append(refs, ContainerRef{
			Destination: models.DestCalendar,
			Container:   r.calendarID,
			Label:       "calendar",
		})
	}
	return refs
}

// Workweek reports whether a container uses workweek scheduling.
func (r *ContainerResolver) Workweek(dest models.Destination) bool {
	// Team projects follow the office week; personal tasks and calendar
	// events land on any day.
	return dest == models.DestTeam
}

// ContainerSnapshot is the read-only view of backend state fetched once per
// batch. It reflects state as of batch start; races with concurrent
// external changes are accepted.
type ContainerSnapshot struct {
	Items map[string][]models.Item // container id -> items
}

// FetchSnapshot lists each referenced container exactly once.
func FetchSnapshot(ctx context.Context, backends BackendSet, refs []ContainerRef) (*ContainerSnapshot, error) {
	snap := &ContainerSnapshot{Items: make(map[string][]models.Item, len(refs))}
	for _, ref := range refs {
		if _, done := snap.Items[ref.Container]; done {
			continue
		}
		b, err := backends.For(ref.Destination)
		if err != nil {
			return nil, err
		}
		items, err := b.ListContainer(ctx, ref.Container)
		if err != nil {
			return nil, fmt.Errorf("listing container %s: %w", ref.Container, err)
		}
		snap.Items[ref.Container] = items
	}
	return snap, nil
}

// EventLogger is the subset of the observability event log the core needs.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}
