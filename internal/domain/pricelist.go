package domain

import (
	"encoding/json"
	"time"
)

// PriceCategory classifies a PriceListItem for display purposes. It never
// drives planning decisions directly -- only price and weight do.
type PriceCategory string

const (
	PriceCategoryMin    PriceCategory = "Min"
	PriceCategoryMedium PriceCategory = "Medium"
	PriceCategoryMax    PriceCategory = "Max"
)

// PriceListItem is one cell of a daily price curve. Price is an integer in
// hundred-thousandths of the base currency unit so the planner never touches
// floating point.
type PriceListItem struct {
	StartsAt time.Time     `json:"startsAt"`
	Duration time.Duration `json:"duration"`
	Price    int32         `json:"price"`
	Weight   int64         `json:"weight"`
	Category PriceCategory `json:"category"`
}

// EndsAt is the instant this cell stops being in effect.
func (p PriceListItem) EndsAt() time.Time {
	return p.StartsAt.Add(p.Duration)
}

// priceListItemWire is the over-the-wire shape: instants and durations as
// integer milliseconds, matching the original's ts_milliseconds /
// serialize_time_delta serde converters.
type priceListItemWire struct {
	StartsAt int64         `json:"startsAt"`
	Duration int64         `json:"duration"`
	Price    int32         `json:"price"`
	Weight   int64         `json:"weight"`
	Category PriceCategory `json:"category"`
}

func (p PriceListItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(priceListItemWire{
		StartsAt: p.StartsAt.UnixMilli(),
		Duration: p.Duration.Milliseconds(),
		Price:    p.Price,
		Weight:   p.Weight,
		Category: p.Category,
	})
}

func (p *PriceListItem) UnmarshalJSON(data []byte) error {
	var wire priceListItemWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.StartsAt = time.UnixMilli(wire.StartsAt)
	p.Duration = time.Duration(wire.Duration) * time.Millisecond
	p.Price = wire.Price
	p.Weight = wire.Weight
	p.Category = wire.Category
	return nil
}

// CategorizePrice applies the fixed thresholds shared by every price
// provider: below 20000 is cheap, above 80000 is expensive, otherwise
// medium.
func CategorizePrice(price int32) PriceCategory {
	switch {
	case price < 20000:
		return PriceCategoryMin
	case price > 80000:
		return PriceCategoryMax
	default:
		return PriceCategoryMedium
	}
}
