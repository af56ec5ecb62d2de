// Package planner implements the cheapest-price-cover selection and the
// switch-action construction for a single device's consumption request. It
// is a pure function of its inputs: no I/O, no clock reads beyond what is
// passed in, nothing that suspends. This makes it straightforward to
// property-test.
package planner

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/homepower/switchplanner/internal/apperr"
	"github.com/homepower/switchplanner/internal/domain"
)

// Plan selects price-list items and builds the switch-action sequence for a
// request to run D of consumption between S and T (S <= now <= T-D, D > 0).
// priceList must already be assembled to cover [S, T] (see
// priceprovider.Assembler) and sorted ascending by StartsAt.
func Plan(priceList []domain.PriceListItem, consumptionDuration time.Duration, startFrom, finishAt, now time.Time) ([]domain.ConsumptionPlanItem, error) {
	if err := validate(consumptionDuration, startFrom, finishAt, now); err != nil {
		return nil, err
	}

	cells := effectiveCells(priceList, startFrom, finishAt)
	computeWeights(cells)

	ordered := make([]cell, len(cells))
	copy(ordered, cells)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].item.Price != ordered[j].item.Price {
			return ordered[i].item.Price < ordered[j].item.Price
		}
		if ordered[i].weight != ordered[j].weight {
			return ordered[i].weight > ordered[j].weight
		}
		return ordered[i].item.StartsAt.Before(ordered[j].item.StartsAt)
	})

	selected := greedyCover(ordered, consumptionDuration)

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].item.StartsAt.Before(selected[j].item.StartsAt)
	})

	return buildPlanItems(selected, finishAt), nil
}

func validate(consumptionDuration time.Duration, startFrom, finishAt, now time.Time) error {
	if consumptionDuration <= 0 {
		return apperr.NewUser("consumption duration must be positive")
	}
	if !finishAt.After(now) {
		return apperr.NewUser("finishAt must be after now")
	}
	if now.After(finishAt.Add(-consumptionDuration)) {
		return apperr.NewUser("not enough time left before finishAt to run the requested duration")
	}
	_ = startFrom
	return nil
}

type cell struct {
	item        domain.PriceListItem
	effDuration time.Duration
	weight      int64
}

// effectiveCells clamps every price-list item to [S, T] and drops any cell
// whose clamped length is zero.
func effectiveCells(priceList []domain.PriceListItem, s, t time.Time) []cell {
	cells := make([]cell, 0, len(priceList))
	for _, item := range priceList {
		start := item.StartsAt
		if start.Before(s) {
			start = s
		}
		end := item.EndsAt()
		if end.After(t) {
			end = t
		}
		if !end.After(start) {
			continue
		}
		cells = append(cells, cell{item: item, effDuration: end.Sub(start)})
	}
	return cells
}

// computeWeights assigns, to every cell in a maximal run of time-consecutive
// cells sharing the same price, the sum of the run's effective durations (in
// minutes).
func computeWeights(cells []cell) {
	n := len(cells)
	for i := 0; i < n; {
		j := i + 1
		for j < n && cells[j].item.Price == cells[i].item.Price {
			j++
		}
		var sum int64
		for k := i; k < j; k++ {
			sum += int64(cells[k].effDuration / time.Minute)
		}
		for k := i; k < j; k++ {
			cells[k].weight = sum
		}
		i = j
	}
}

// greedyCover walks cells in cheapest-first order, accumulating effective
// duration until the requested total is reached, taking a partial amount of
// the boundary cell if needed.
func greedyCover(ordered []cell, consumptionDuration time.Duration) []cell {
	remaining := consumptionDuration
	selected := make([]cell, 0)

	for _, c := range ordered {
		if remaining <= 0 {
			break
		}
		use := c.effDuration
		if use > remaining {
			use = remaining
		}
		if use <= 0 {
			continue
		}
		selected = append(selected, cell{item: c.item, effDuration: use, weight: c.weight})
		remaining -= use
	}
	return selected
}

// buildPlanItems walks the time-ordered selected cells and emits the switch
// actions confined to each, per the spec's adjacency-tracking construction.
func buildPlanItems(selected []cell, finishAt time.Time) []domain.ConsumptionPlanItem {
	items := make([]domain.ConsumptionPlanItem, len(selected))
	actionsByItem := make([][]domain.SwitchAction, len(selected))

	adjacent := false
	var usageEnd time.Time

	for i, c := range selected {
		cellStart := c.item.StartsAt
		cellEnd := c.item.EndsAt()
		partial := c.effDuration < c.item.Duration

		var itemActions []domain.SwitchAction

		switch {
		case partial && adjacent:
			off := cellStart.Add(c.effDuration)
			itemActions = append(itemActions, newSwitchAction(off, false))
			adjacent = false
			usageEnd = off

		case partial && !adjacent:
			end := cellEnd
			if finishAt.Before(end) {
				end = finishAt
			}
			start := end.Add(-c.effDuration)
			itemActions = append(itemActions, newSwitchAction(start, true))
			adjacent = true
			usageEnd = end

		case !partial && !adjacent:
			itemActions = append(itemActions, newSwitchAction(cellStart, true))
			adjacent = true
			usageEnd = cellEnd

		default: // whole cell, already adjacent
			if !usageEnd.IsZero() && !usageEnd.Equal(cellStart) {
				itemActions = append(itemActions,
					newSwitchAction(usageEnd, false),
					newSwitchAction(cellStart, true),
				)
			}
			usageEnd = cellEnd
		}

		actionsByItem[i] = itemActions
		items[i] = domain.ConsumptionPlanItem{
			PriceListItem: c.item,
			Duration:      c.effDuration,
		}
	}

	closeTrailingAction(actionsByItem, usageEnd)

	for i := range items {
		items[i].SwitchActions = actionsByItem[i]
	}
	return items
}

// closeTrailingAction appends a final switch-off if the last emitted action
// left the device on, using the last item's own computed usage end (which
// already accounts for contiguous merges across items that never received
// their own switch-on).
func closeTrailingAction(actionsByItem [][]domain.SwitchAction, lastUsageEnd time.Time) {
	lastAction := lastEmittedAction(actionsByItem)
	if lastAction != nil && !lastAction.SwitchOn {
		return
	}
	if n := len(actionsByItem); n > 0 {
		last := n - 1
		actionsByItem[last] = append(actionsByItem[last], newSwitchAction(lastUsageEnd, false))
	}
}

func lastEmittedAction(actionsByItem [][]domain.SwitchAction) *domain.SwitchAction {
	for i := len(actionsByItem) - 1; i >= 0; i-- {
		if n := len(actionsByItem[i]); n > 0 {
			return &actionsByItem[i][n-1]
		}
	}
	return nil
}

func newSwitchAction(at time.Time, on bool) domain.SwitchAction {
	return domain.SwitchAction{
		ID:       uuid.NewString(),
		At:       at,
		SwitchOn: on,
		State:    domain.SwitchActionScheduled,
	}
}
