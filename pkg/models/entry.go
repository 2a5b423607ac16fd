package models

import "time"

// Destination identifies the backend system an entry is routed to.
type Destination string

const (
	DestPersonal Destination = "personal"
	DestTeam     Destination = "team"
	DestCalendar Destination = "calendar"
)

// Priority is the internal four-level urgency scale, p1 highest.
// Mapping to backend-specific numeric scales happens at dispatch time.
type Priority string

const (
	P1 Priority = "p1"
	P2 Priority = "p2"
	P3 Priority = "p3"
	P4 Priority = "p4"
)

// priorityRank orders priorities for comparison; lower rank is more urgent.
var priorityRank = map[Priority]int{P1: 1, P2: 2, P3: 3, P4: 4}

// Rank returns the numeric rank of the priority (1 for p1 .. 4 for p4).
// Unknown values rank below p4.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return 5
}

// Raise returns the priority one step more urgent, capped at p1.
func (p Priority) Raise() Priority {
	switch p {
	case P4:
		return P3
	case P3:
		return P2
	case P2, P1:
		return P1
	default:
		return p
	}
}

// Entry is one captured free-form line of text, produced by the normalizer.
// It is immutable after creation and consumed once per batch.
type Entry struct {
	// Raw is the line exactly as captured.
	Raw string
	// Text is the cleaned line with hints stripped.
	Text string
	// DateHint is an explicit date found in the raw text, nil if absent.
	DateHint *time.Time
	// TimeHint is a clock time found in the raw text ("15:04"), empty if absent.
	TimeHint string
	// DestHint is an explicit destination tag found in the raw text,
	// empty if absent.
	DestHint Destination
}

// ClassifiedEntry is an Entry after the classification stages. Each pipeline
// stage only fills in its own fields; earlier fields are never mutated.
type ClassifiedEntry struct {
	Entry Entry

	Destination   Destination
	RuleName      string
	LowConfidence bool

	Priority Priority

	// Due is the resolved calendar date (midnight, no wall-clock component).
	Due time.Time
	// Start and End carry the scheduled slot for calendar entries.
	// Zero for task entries and for all-day events.
	Start time.Time
	End   time.Time

	// Container is the target project or calendar id.
	Container string
}

// Title returns the text used as the created item's title.
func (c ClassifiedEntry) Title() string {
	return c.Entry.Text
}

// Item is one existing backend item as seen in a container snapshot.
type Item struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Due       time.Time `yaml:"due,omitempty"`
	AllDay    bool      `yaml:"all_day,omitempty"`
	Completed bool      `yaml:"completed,omitempty"`
}

// ItemDraft is the parameter shape for backend create calls. Date and time
// fields cross the boundary as ISO 8601 with explicit offset; all-day items
// use a bare date.
type ItemDraft struct {
	Title       string
	Description string
	Due         time.Time
	AllDay      bool
	Start       time.Time
	End         time.Time
	Priority    Priority
	Attendees   []string
	Location    string
}

// ItemPatch is the parameter shape for backend update calls. Nil fields are
// left unchanged.
type ItemPatch struct {
	Title *string
	Due   *time.Time
	Start *time.Time
	End   *time.Time
}
