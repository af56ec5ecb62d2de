package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLocalCache_SetGetRoundTrip(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v" {
		t.Fatalf("expected %q, got %q", "v", got)
	}
}

func TestLocalCache_MissingKeyErrors(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()

	if _, err := c.Get(context.Background(), "nope"); err == nil {
		t.Fatalf("expected an error for a missing key")
	}
}

func TestLocalCache_ExpiredKeyErrors(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); err == nil {
		t.Fatalf("expected an error for an expired key")
	}
}

func TestLocalCache_DeleteRemovesKey(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err == nil {
		t.Fatalf("expected an error after delete")
	}
}

func TestLocalCache_SetMarshalsNonStringValues(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	type payload struct {
		A int `json:"a"`
	}
	if err := c.Set(ctx, "k", payload{A: 7}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a":7}` {
		t.Fatalf("expected marshaled JSON, got %q", got)
	}
}

func TestLocalCache_Ping(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	if err := c.Ping(); err != nil {
		t.Fatalf("expected Ping to always succeed for the local backing, got %v", err)
	}
}
