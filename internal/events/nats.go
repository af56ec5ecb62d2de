package events

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher publishes consumption-plan stats to a NATS subject, adapted
// from the queue adapter's connect/publish shape.
type NATSPublisher struct {
	conn *nats.Conn
	log  *zap.Logger
}

func NewNATSPublisher(url string, log *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("connected to NATS for consumption stats", zap.String("url", url))
	return &NATSPublisher{conn: conn, log: log}, nil
}

func (p *NATSPublisher) PublishStats(event StatsEvent) error {
	data, err := encode(event)
	if err != nil {
		return fmt.Errorf("encode stats event: %w", err)
	}
	if err := p.conn.Publish(subjectConsumptionStats, data); err != nil {
		p.log.Error("failed to publish consumption stats", zap.String("plan_id", event.PlanID), zap.Error(err))
		return err
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
