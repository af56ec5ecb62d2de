package priceprovider

import (
	"context"
	"testing"
	"time"

	"github.com/homepower/switchplanner/internal/domain"
)

func TestW12Provider_WeekdayPeakWindow(t *testing.T) {
	p := NewW12Provider()
	// 2026-03-16 is a Monday.
	monday := time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local)

	items, err := p.GetPriceList(context.Background(), monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 24 {
		t.Fatalf("expected 24 items, got %d", len(items))
	}

	for h, item := range items {
		wantOffPeak := h < 6 || h == 13 || h == 14 || h > 21
		if wantOffPeak && item.Price != offPeakPrice {
			t.Fatalf("hour %d: expected off-peak price %d, got %d", h, offPeakPrice, item.Price)
		}
		if !wantOffPeak && item.Price != inPeakPrice {
			t.Fatalf("hour %d: expected in-peak price %d, got %d", h, inPeakPrice, item.Price)
		}
	}
}

func TestW12Provider_WeekendIsEntirelyOffPeak(t *testing.T) {
	p := NewW12Provider()
	// 2026-03-21 is a Saturday.
	saturday := time.Date(2026, 3, 21, 0, 0, 0, 0, time.Local)

	items, err := p.GetPriceList(context.Background(), saturday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for h, item := range items {
		if item.Price != offPeakPrice {
			t.Fatalf("weekend hour %d: expected off-peak price, got %d", h, item.Price)
		}
		if item.Category != domain.PriceCategoryMin {
			t.Fatalf("weekend hour %d: expected PriceCategoryMin, got %s", h, item.Category)
		}
	}
}

func TestW12Provider_ItemsAreContiguousHourlyCells(t *testing.T) {
	p := NewW12Provider()
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.Local)

	items, err := p.GetPriceList(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedStart := CutOff(day)
	for _, item := range items {
		if !item.StartsAt.Equal(expectedStart) {
			t.Fatalf("expected item to start at %v, got %v", expectedStart, item.StartsAt)
		}
		if item.Duration != time.Hour {
			t.Fatalf("expected hourly duration, got %v", item.Duration)
		}
		expectedStart = item.EndsAt()
	}
}
