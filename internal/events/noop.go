package events

// Noop discards every event. Used when events.enabled is false.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) PublishStats(StatsEvent) error { return nil }
func (Noop) Close() error                  { return nil }
