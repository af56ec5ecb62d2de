package domain

import (
	"encoding/json"
	"time"
)

// SwitchActionState tracks the lifecycle of a single scheduled on/off event.
type SwitchActionState string

const (
	SwitchActionScheduled SwitchActionState = "Scheduled"
	SwitchActionExecuted  SwitchActionState = "Executed"
	SwitchActionCanceled  SwitchActionState = "Canceled"
)

// SwitchAction is one scheduled on-or-off event dispatched to the gateway at
// a specific instant. ExecutedAt and Result are only meaningful once State
// has left Scheduled.
type SwitchAction struct {
	ID         string            `json:"id"`
	At         time.Time         `json:"at"`
	SwitchOn   bool              `json:"switchOn"`
	State      SwitchActionState `json:"state"`
	ExecutedAt *time.Time        `json:"executedAt,omitempty"`
	Result     string            `json:"result,omitempty"`
}

// MarkExecuted transitions the action to Executed, regardless of whether the
// underlying gateway call succeeded -- the action represents an attempt on
// the wall clock, not a guarantee of physical effect.
func (a *SwitchAction) MarkExecuted(at time.Time, result string) {
	a.State = SwitchActionExecuted
	a.ExecutedAt = &at
	a.Result = result
}

// MarkCanceled transitions the action to Canceled. No-op if it has already
// left the Scheduled state.
func (a *SwitchAction) MarkCanceled() {
	if a.State != SwitchActionScheduled {
		return
	}
	a.State = SwitchActionCanceled
}

// switchActionWire is the over-the-wire shape: instants as integer
// milliseconds, mirroring the original's ts_milliseconds(_option) converters.
type switchActionWire struct {
	ID         string            `json:"id"`
	At         int64             `json:"at"`
	SwitchOn   bool              `json:"switchOn"`
	State      SwitchActionState `json:"state"`
	ExecutedAt *int64            `json:"executedAt,omitempty"`
	Result     string            `json:"result,omitempty"`
}

func (a SwitchAction) MarshalJSON() ([]byte, error) {
	wire := switchActionWire{
		ID:       a.ID,
		At:       a.At.UnixMilli(),
		SwitchOn: a.SwitchOn,
		State:    a.State,
		Result:   a.Result,
	}
	if a.ExecutedAt != nil {
		ms := a.ExecutedAt.UnixMilli()
		wire.ExecutedAt = &ms
	}
	return json.Marshal(wire)
}

func (a *SwitchAction) UnmarshalJSON(data []byte) error {
	var wire switchActionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	a.ID = wire.ID
	a.At = time.UnixMilli(wire.At)
	a.SwitchOn = wire.SwitchOn
	a.State = wire.State
	a.Result = wire.Result
	a.ExecutedAt = nil
	if wire.ExecutedAt != nil {
		t := time.UnixMilli(*wire.ExecutedAt)
		a.ExecutedAt = &t
	}
	return nil
}
