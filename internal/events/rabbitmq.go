package events

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQPublisher publishes consumption-plan stats to a fanout exchange,
// adapted from the queue adapter's connect/reconnect shape.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.RWMutex
	log     *zap.Logger
}

func NewRabbitMQPublisher(url string, log *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	if err := ch.ExchangeDeclare(subjectConsumptionStats, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}

	p := &RabbitMQPublisher{conn: conn, channel: ch, url: url, log: log}
	go p.monitorConnection()
	log.Info("connected to RabbitMQ for consumption stats", zap.String("url", url))
	return p, nil
}

func (p *RabbitMQPublisher) PublishStats(event StatsEvent) error {
	data, err := encode(event)
	if err != nil {
		return fmt.Errorf("encode stats event: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.channel == nil {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	return p.channel.Publish(subjectConsumptionStats, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        data,
		Timestamp:   time.Now(),
	})
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *RabbitMQPublisher) monitorConnection() {
	for {
		reason, ok := <-p.conn.NotifyClose(make(chan *amqp.Error))
		if !ok {
			return
		}
		p.log.Warn("RabbitMQ connection lost, reconnecting", zap.String("reason", reason.Reason))

		for {
			time.Sleep(5 * time.Second)
			conn, err := amqp.Dial(p.url)
			if err != nil {
				p.log.Error("failed to reconnect to RabbitMQ", zap.Error(err))
				continue
			}
			ch, err := conn.Channel()
			if err != nil {
				conn.Close()
				continue
			}
			if err := ch.ExchangeDeclare(subjectConsumptionStats, "fanout", true, false, false, false, nil); err != nil {
				ch.Close()
				conn.Close()
				continue
			}

			p.mu.Lock()
			p.conn = conn
			p.channel = ch
			p.mu.Unlock()

			p.log.Info("reconnected to RabbitMQ")
			break
		}
	}
}
