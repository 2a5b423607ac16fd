// Package observability provides event logging, dispatch metrics, and
// report notification for dbrain. It uses structured JSON Lines (JSONL)
// for event persistence and derives metrics on-demand from the event log.
package observability
