package config

import (
	"testing"
	"time"
)

func TestLoad_AppliesDefaultsWhenNoConfigFilePresent(t *testing.T) {
	t.Setenv("RUN_MODE", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "switchplanner" {
		t.Fatalf("expected default app name, got %q", cfg.App.Name)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Tariff.Type != TariffW12 {
		t.Fatalf("expected default tariff W12, got %q", cfg.Tariff.Type)
	}
	if cfg.Cache.PriceListCapacityDays != 30 {
		t.Fatalf("expected default cache capacity 30 days, got %d", cfg.Cache.PriceListCapacityDays)
	}
	if cfg.CircuitBreaker.FailureThreshold != 5 {
		t.Fatalf("expected default failure threshold 5, got %d", cfg.CircuitBreaker.FailureThreshold)
	}
	if cfg.App.Environment != "test" {
		t.Fatalf("expected environment to fall back to RUN_MODE, got %q", cfg.App.Environment)
	}
	if cfg.HTTP.RateLimitPerMinute != 120 {
		t.Fatalf("expected default rate limit 120/min, got %d", cfg.HTTP.RateLimitPerMinute)
	}
}

func TestLoad_EnvOverrideWinsOverDefault(t *testing.T) {
	t.Setenv("RUN_MODE", "test")
	t.Setenv("TARIFF_TYPE", string(TariffDayAheadMarket))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tariff.Type != TariffDayAheadMarket {
		t.Fatalf("expected env override to win, got %q", cfg.Tariff.Type)
	}
}

func TestLoad_GatewayTimeoutDefault(t *testing.T) {
	t.Setenv("RUN_MODE", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gateway.Timeout != 10*time.Second {
		t.Fatalf("expected default gateway timeout 10s, got %v", cfg.Gateway.Timeout)
	}
}
