// Package backend implements the dispatch targets: TickTick for personal
// tasks, Planfix for team tasks, and Google Calendar for events. All three
// satisfy the core.Backend interface.
package backend

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is a backend API failure. Message preserves the backend's own
// wording; reports surface failures verbatim, so nothing here may soften or
// rewrite what the API returned.
type Error struct {
	Backend string
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Backend, e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Backend, e.Op, e.Message)
}

// AuthError marks a credential failure. One of these aborts the remainder
// of a batch: every dispatch against the same backend would fail the same
// way.
type AuthError struct {
	Err *Error
}

func (e *AuthError) Error() string { return e.Err.Error() }

func (e *AuthError) Unwrap() error { return e.Err }

// AuthFatal marks the error as batch-fatal for the pipeline.
func (e *AuthError) AuthFatal() bool { return true }

// apiError builds the typed error for a non-success HTTP response, keeping
// the response body as the verbatim message. 401 and 403 become AuthError.
func apiError(backend, op string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	err := &Error{Backend: backend, Op: op, Status: status, Message: msg}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{Err: err}
	}
	return err
}
