// Package events publishes consumption-plan lifecycle statistics to an
// optional message broker. Nothing downstream of the planner/scheduler
// depends on a publisher being configured: a Noop implementation is wired in
// when events are disabled.
package events

import (
	"encoding/json"
	"time"
)

// StatsEvent is the payload published when a consumption plan finishes or is
// canceled.
type StatsEvent struct {
	PlanID              string    `json:"plan_id"`
	PowerConsumerID      string    `json:"power_consumer_id"`
	Outcome             string    `json:"outcome"` // executed, canceled
	ConsumptionDuration time.Duration `json:"consumption_duration"`
	EmittedAt           time.Time `json:"emitted_at"`
}

// Publisher is the narrow seam the scheduler depends on; the registry's
// cancel path publishes through the scheduler.
type Publisher interface {
	PublishStats(event StatsEvent) error
	Close() error
}

func encode(event StatsEvent) ([]byte, error) {
	return json.Marshal(event)
}

const subjectConsumptionStats = "switchplanner.consumption_stats"
