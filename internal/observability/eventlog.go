package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Event is one line of the dispatch event log. Types follow a dotted
// subject.action scheme: batch.started, entry.created, entry.failed,
// rebalance.moved, report.sent.
type Event struct {
	Time  time.Time      `json:"time"`
	Level string         `json:"level"`
	Type  string         `json:"type"`
	Data  map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events back.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
}

// EventLog records dispatch activity as append-only JSONL. It satisfies
// the pipeline's event sink.
type EventLog interface {
	LogEvent(eventType string, data map[string]any) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog over a single append-only file.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog creates an EventLog backed by a JSONL file at the given path.
func NewJSONLEventLog(path string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, file: f}, nil
}

// LogEvent appends one event, deriving the level from the event type so
// failures stand out when the log is tailed.
func (l *jsonlEventLog) LogEvent(eventType string, data map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := Event{
		Time:  time.Now().UTC(),
		Level: levelFor(eventType),
		Type:  eventType,
		Data:  data,
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	encoded = append(encoded, '\n')

	if _, err := l.file.Write(encoded); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// levelFor maps event types to log levels. Failed and not-attempted entries
// are errors; invalid entries are warnings; everything else is informational.
func levelFor(eventType string) string {
	switch {
	case strings.HasSuffix(eventType, ".failed"), strings.HasSuffix(eventType, ".not_attempted"):
		return "ERROR"
	case strings.HasSuffix(eventType, ".invalid"):
		return "WARN"
	default:
		return "INFO"
	}
}

// Read scans the log file line by line and returns events matching the
// filter. Malformed lines are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

// matchesEventFilter checks whether an event satisfies all filter criteria.
func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && event.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Level != "" && event.Level != filter.Level {
		return false
	}
	return true
}
