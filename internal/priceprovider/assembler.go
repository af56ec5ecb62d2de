package priceprovider

import (
	"context"
	"time"

	"github.com/homepower/switchplanner/internal/domain"
)

// Assembler stitches day price-lists together to cover an arbitrary
// [from, to] window, returning owned copies so callers may annotate items
// (weight, in the planner) without mutating anything cached upstream.
type Assembler struct {
	source SingleDayPriceList
}

func NewAssembler(source SingleDayPriceList) *Assembler {
	return &Assembler{source: source}
}

// Assemble returns every item overlapping (from, to), in ascending time
// order. from must be <= to.
func (a *Assembler) Assemble(ctx context.Context, from, to time.Time) ([]domain.PriceListItem, error) {
	result := make([]domain.PriceListItem, 0, 48)

	for day := CutOff(from); day.Before(to); day = day.Add(24 * time.Hour) {
		dayItems, err := a.source.GetPriceList(ctx, day)
		if err != nil {
			return nil, err
		}
		for _, item := range dayItems {
			if item.EndsAt().After(from) && item.StartsAt.Before(to) {
				result = append(result, item)
			}
		}
	}

	return result, nil
}
