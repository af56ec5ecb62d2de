package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewUser_Is400(t *testing.T) {
	err := NewUser("bad duration: %d", -5)
	if !IsUser(err) {
		t.Fatalf("expected a user error")
	}
	if IsSystem(err) {
		t.Fatalf("did not expect a system error")
	}
	if got := AsError(t, err).HTTPStatus(); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}

func TestNewNotFound_Is404(t *testing.T) {
	err := NewNotFound("power consumer %q not found", "kettle")
	if !IsUser(err) {
		t.Fatalf("expected a user error")
	}
	if got := AsError(t, err).HTTPStatus(); got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
}

func TestNewSystem_Is500AndWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSystem("gateway call failed", cause)

	if !IsSystem(err) {
		t.Fatalf("expected a system error")
	}
	if got := AsError(t, err).HTTPStatus(); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the system error to unwrap to its cause")
	}
}

func TestAs_FailsOnNonAppError(t *testing.T) {
	_, ok := As(errors.New("plain error"))
	if ok {
		t.Fatalf("expected As to fail on a non-apperr error")
	}
}

// AsError is a test helper asserting the *Error extracts cleanly.
func AsError(t *testing.T, err error) *Error {
	t.Helper()
	e, ok := As(err)
	if !ok {
		t.Fatalf("expected err to be an *apperr.Error, got %T", err)
	}
	return e
}
