// Package amqp publishes committed change records to a RabbitMQ topic
// exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"kanbancore/pkg/domain"
)

// DefaultExchange is the topic exchange declared when none is configured.
const DefaultExchange = "kanban.changes"

// Config selects the broker and exchange.
type Config struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// Channel is the subset of *amqp091.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher implements core.ChangeSink over an AMQP channel.
type Publisher struct {
	ch       Channel
	conn     io.Closer
	exchange string
	now      func() time.Time
}

// Dial connects to the broker, opens a channel and declares the durable topic
// exchange.
func Dial(cfg Config) (*Publisher, error) {
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	p := NewPublisher(ch, exchange)
	p.conn = conn
	return p, nil
}

// NewPublisher wraps an already opened channel. The exchange must exist.
func NewPublisher(ch Channel, exchange string) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &Publisher{ch: ch, exchange: exchange, now: func() time.Time { return time.Now().UTC() }}
}

// RoutingKey returns kanban.<entity>.<action>.
func RoutingKey(c domain.Change) string {
	return fmt.Sprintf("kanban.%s.%s", c.Entity, c.Action)
}

// Publish sends one persistent JSON message per change, in order. It stops at
// the first failure.
func (p *Publisher) Publish(ctx context.Context, changes []domain.Change) error {
	for _, c := range changes {
		body, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode change %s %s: %w", c.Entity, c.ID, err)
		}
		msg := amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    p.now(),
			Type:         string(c.Entity) + "." + string(c.Action),
			Body:         body,
		}
		if err := p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(c), false, false, msg); err != nil {
			return fmt.Errorf("publish %s: %w", RoutingKey(c), err)
		}
	}
	return nil
}

// Close closes the channel and, when dialled, the connection.
func (p *Publisher) Close() error {
	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
