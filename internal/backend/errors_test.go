package backend

import (
	"errors"
	"testing"
)

func TestAPIErrorKeepsBodyVerbatim(t *testing.T) {
	err := apiError("ticktick", "create task", 429, []byte("rate limit exceeded"))

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("apiError returned %T, want *Error", err)
	}
	if apiErr.Message != "rate limit exceeded" {
		t.Errorf("Message = %q, want the body verbatim", apiErr.Message)
	}
	if want := "ticktick create task: HTTP 429: rate limit exceeded"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAPIErrorEmptyBodyUsesStatusText(t *testing.T) {
	err := apiError("planfix", "list tasks", 500, nil)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("apiError returned %T, want *Error", err)
	}
	if apiErr.Message != "Internal Server Error" {
		t.Errorf("Message = %q, want status text fallback", apiErr.Message)
	}
}

func TestAPIErrorAuthStatuses(t *testing.T) {
	for _, status := range []int{401, 403} {
		err := apiError("ticktick", "list project", status, []byte("invalid token"))

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("status %d: got %T, want *AuthError", status, err)
		}
		if !authErr.AuthFatal() {
			t.Errorf("status %d: AuthFatal() = false", status)
		}
		var inner *Error
		if !errors.As(err, &inner) || inner.Status != status {
			t.Errorf("status %d: inner error not unwrappable", status)
		}
	}

	if err := apiError("ticktick", "list project", 404, nil); errors.As(err, new(*AuthError)) {
		t.Error("404 wrapped as AuthError")
	}
}
