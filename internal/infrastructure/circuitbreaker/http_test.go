package circuitbreaker

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHTTPClient_CountsServerErrorsAsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	breaker := New(Settings{FailureThreshold: 1, Timeout: time.Hour}, zap.NewNop())
	client := NewHTTPClient(srv.Client(), breaker, zap.NewNop())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := client.Do(req); err == nil {
		t.Fatalf("expected the 500 to surface as an error")
	}

	if breaker.State() != StateOpen {
		t.Fatalf("expected a 5xx response to trip the breaker")
	}
}

func TestHTTPClient_RejectsWhileOpen(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	breaker := New(Settings{FailureThreshold: 1, Timeout: time.Hour}, zap.NewNop())
	client := NewHTTPClient(srv.Client(), breaker, zap.NewNop())

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	client.Do(req) // trips the breaker open

	_, err := client.Do(req)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected ErrCircuitOpen once the breaker is open, got %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected the server to be reached exactly once, got %d", requests)
	}
}
