package priceprovider

import (
	"context"
	"time"

	"github.com/homepower/switchplanner/internal/domain"
)

const (
	offPeakPrice int32 = 80000
	inPeakPrice  int32 = 160000
)

// W12Provider is the fixed two-band tariff used as a deterministic source:
// off-peak between 00:00-06:00, 13:00-15:00 and 22:00-24:00, in-peak (double
// price) otherwise; every weekend hour is off-peak.
type W12Provider struct{}

func NewW12Provider() *W12Provider {
	return &W12Provider{}
}

func (p *W12Provider) GetPriceList(_ context.Context, forDay time.Time) ([]domain.PriceListItem, error) {
	day := CutOff(forDay)
	weekday := day.Local().Weekday()
	weekend := weekday == time.Saturday || weekday == time.Sunday

	items := make([]domain.PriceListItem, 24)
	for h := 0; h < 24; h++ {
		price, category := offPeakPrice, domain.PriceCategoryMin
		if !weekend && isPeakHour(h) {
			price, category = inPeakPrice, domain.PriceCategoryMax
		}
		items[h] = domain.PriceListItem{
			StartsAt: day.Add(time.Duration(h) * time.Hour),
			Duration: time.Hour,
			Price:    price,
			Category: category,
		}
	}
	return items, nil
}

func isPeakHour(hour int) bool {
	return !(hour < 6 || hour == 13 || hour == 14 || hour > 21)
}
