package domain

import (
	"encoding/json"
	"time"
)

// PowerConsumer is a device with identity, display name, and gateway entity
// id, plus at most one active consumption plan. Mutation of CurrentPlan
// always happens with the registry's writer lock held.
type PowerConsumer struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	GatewayID    string           `json:"-"`
	CurrentPlan  *ConsumptionPlan `json:"-"`
}

// DefaultConsumptionDuration is the duration suggested to clients that have
// not picked one explicitly.
const DefaultConsumptionDuration = 90 * time.Minute

// PowerConsumerModel is the client-facing projection of a PowerConsumer:
// identity, display defaults, and the current plan if one exists.
type PowerConsumerModel struct {
	ID                         string           `json:"id"`
	Name                       string           `json:"name"`
	DefaultFinishAt            time.Time        `json:"defaultFinishAt"`
	DefaultConsumptionDuration time.Duration    `json:"defaultConsumptionDuration"`
	ConsumptionPlan            *ConsumptionPlan `json:"consumptionPlan,omitempty"`
}

// DefaultFinishAt computes the suggested finish instant from local now: if
// the local hour is before 16:00, two hours from now; otherwise 07:00 local
// the following day.
func DefaultFinishAt(now time.Time) time.Time {
	local := now.Local()
	if local.Hour() < 16 {
		return now.Add(2 * time.Hour)
	}
	tomorrow := local.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 7, 0, 0, 0, local.Location())
}

// ToModel projects a PowerConsumer into its client-facing representation.
func (c *PowerConsumer) ToModel(now time.Time) PowerConsumerModel {
	return PowerConsumerModel{
		ID:                         c.ID,
		Name:                       c.Name,
		DefaultFinishAt:            DefaultFinishAt(now),
		DefaultConsumptionDuration: DefaultConsumptionDuration,
		ConsumptionPlan:            c.CurrentPlan,
	}
}

// powerConsumerModelWire is the over-the-wire shape: instants and durations
// as integer milliseconds.
type powerConsumerModelWire struct {
	ID                         string           `json:"id"`
	Name                       string           `json:"name"`
	DefaultFinishAt            int64            `json:"defaultFinishAt"`
	DefaultConsumptionDuration int64            `json:"defaultConsumptionDuration"`
	ConsumptionPlan            *ConsumptionPlan `json:"consumptionPlan,omitempty"`
}

func (m PowerConsumerModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(powerConsumerModelWire{
		ID:                         m.ID,
		Name:                       m.Name,
		DefaultFinishAt:            m.DefaultFinishAt.UnixMilli(),
		DefaultConsumptionDuration: m.DefaultConsumptionDuration.Milliseconds(),
		ConsumptionPlan:            m.ConsumptionPlan,
	})
}

func (m *PowerConsumerModel) UnmarshalJSON(data []byte) error {
	var wire powerConsumerModelWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	m.ID = wire.ID
	m.Name = wire.Name
	m.DefaultFinishAt = time.UnixMilli(wire.DefaultFinishAt)
	m.DefaultConsumptionDuration = time.Duration(wire.DefaultConsumptionDuration) * time.Millisecond
	m.ConsumptionPlan = wire.ConsumptionPlan
	return nil
}
