// Package priceprovider implements the SingleDayPriceList contract and its
// collaborators: the W12 fixed tariff, the day-ahead market tariff, the
// tariff selector, and the period assembler that stitches day lists into an
// arbitrary window.
package priceprovider

import (
	"context"
	"time"

	"github.com/homepower/switchplanner/internal/domain"
)

// SingleDayPriceList is implemented by every price-list source. ForDay must
// be the start-of-day instant in UTC corresponding to a local calendar date;
// implementations return exactly 24 contiguous, non-overlapping items.
type SingleDayPriceList interface {
	GetPriceList(ctx context.Context, forDay time.Time) ([]domain.PriceListItem, error)
}

// CutOff converts t to local time, truncates to local midnight, and converts
// back to UTC. Idempotent: CutOff(CutOff(x)) == CutOff(x).
func CutOff(t time.Time) time.Time {
	local := t.Local()
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return midnight.UTC()
}

// ParseDate parses a DD-MM-YYYY date string as local midnight on that date.
func ParseDate(date string) (time.Time, error) {
	const layout = "02-01-2006"
	local, err := time.ParseInLocation(layout, date, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return local.UTC(), nil
}
