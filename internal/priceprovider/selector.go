package priceprovider

import (
	"context"
	"time"

	"github.com/homepower/switchplanner/internal/config"
	"github.com/homepower/switchplanner/internal/domain"
)

// Selector dispatches GetPriceList to the configured tariff, in constant
// time.
type Selector struct {
	tariff   config.TariffType
	w12      *W12Provider
	dayAhead *DayAheadMarketProvider
}

func NewSelector(tariff config.TariffType, w12 *W12Provider, dayAhead *DayAheadMarketProvider) *Selector {
	return &Selector{tariff: tariff, w12: w12, dayAhead: dayAhead}
}

func (s *Selector) GetPriceList(ctx context.Context, forDay time.Time) ([]domain.PriceListItem, error) {
	switch s.tariff {
	case config.TariffDayAheadMarket:
		return s.dayAhead.GetPriceList(ctx, forDay)
	default:
		return s.w12.GetPriceList(ctx, forDay)
	}
}
