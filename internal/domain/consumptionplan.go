package domain

import (
	"encoding/json"
	"time"
)

// ConsumptionPlanState tracks the lifecycle of an entire plan.
type ConsumptionPlanState string

const (
	ConsumptionPlanProcessing ConsumptionPlanState = "Processing"
	ConsumptionPlanExecuted   ConsumptionPlanState = "Executed"
	ConsumptionPlanCanceled   ConsumptionPlanState = "Canceled"
)

// ConsumptionPlanItem is one price-list cell actually consumed by a plan.
// Duration is always <= PriceListItem.Duration.
type ConsumptionPlanItem struct {
	PriceListItem PriceListItem  `json:"priceListItem"`
	Duration      time.Duration  `json:"duration"`
	SwitchActions []SwitchAction `json:"switchActions"`
}

// ConsumptionPlan is a single device's scheduled consumption: an ordered set
// of price-list cells and the switch actions that realise them.
type ConsumptionPlan struct {
	ID                   string                `json:"id"`
	CreatedAt            time.Time             `json:"createdAt"`
	ConsumptionDuration  time.Duration         `json:"consumptionDuration"`
	FinishAt             time.Time             `json:"finishAt"`
	ConsumptionPlanItems []ConsumptionPlanItem `json:"consumptionPlanItems"`
	State                ConsumptionPlanState  `json:"state"`
}

// AllSwitchActions returns every switch action across every item, already in
// time order since items are ordered by starts_at and each item's own
// actions are internally time-ordered by construction.
func (p *ConsumptionPlan) AllSwitchActions() []*SwitchAction {
	actions := make([]*SwitchAction, 0, len(p.ConsumptionPlanItems)*2)
	for i := range p.ConsumptionPlanItems {
		item := &p.ConsumptionPlanItems[i]
		for j := range item.SwitchActions {
			actions = append(actions, &item.SwitchActions[j])
		}
	}
	return actions
}

// HasScheduledActions reports whether any switch action is still pending.
func (p *ConsumptionPlan) HasScheduledActions() bool {
	for _, a := range p.AllSwitchActions() {
		if a.State == SwitchActionScheduled {
			return true
		}
	}
	return false
}

// consumptionPlanItemWire and consumptionPlanWire are the over-the-wire
// shapes: durations and instants as integer milliseconds. Nested
// PriceListItem/SwitchAction values marshal through their own converters.
type consumptionPlanItemWire struct {
	PriceListItem PriceListItem  `json:"priceListItem"`
	Duration      int64          `json:"duration"`
	SwitchActions []SwitchAction `json:"switchActions"`
}

func (i ConsumptionPlanItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(consumptionPlanItemWire{
		PriceListItem: i.PriceListItem,
		Duration:      i.Duration.Milliseconds(),
		SwitchActions: i.SwitchActions,
	})
}

func (i *ConsumptionPlanItem) UnmarshalJSON(data []byte) error {
	var wire consumptionPlanItemWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	i.PriceListItem = wire.PriceListItem
	i.Duration = time.Duration(wire.Duration) * time.Millisecond
	i.SwitchActions = wire.SwitchActions
	return nil
}

type consumptionPlanWire struct {
	ID                   string                `json:"id"`
	CreatedAt            int64                 `json:"createdAt"`
	ConsumptionDuration  int64                 `json:"consumptionDuration"`
	FinishAt             int64                 `json:"finishAt"`
	ConsumptionPlanItems []ConsumptionPlanItem `json:"consumptionPlanItems"`
	State                ConsumptionPlanState  `json:"state"`
}

func (p ConsumptionPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(consumptionPlanWire{
		ID:                   p.ID,
		CreatedAt:            p.CreatedAt.UnixMilli(),
		ConsumptionDuration:  p.ConsumptionDuration.Milliseconds(),
		FinishAt:             p.FinishAt.UnixMilli(),
		ConsumptionPlanItems: p.ConsumptionPlanItems,
		State:                p.State,
	})
}

func (p *ConsumptionPlan) UnmarshalJSON(data []byte) error {
	var wire consumptionPlanWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.ID = wire.ID
	p.CreatedAt = time.UnixMilli(wire.CreatedAt)
	p.ConsumptionDuration = time.Duration(wire.ConsumptionDuration) * time.Millisecond
	p.FinishAt = time.UnixMilli(wire.FinishAt)
	p.ConsumptionPlanItems = wire.ConsumptionPlanItems
	p.State = wire.State
	return nil
}
