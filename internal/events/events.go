// Package events publishes lead changes to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/johnwards/leaddesk/internal/domain"
)

// Event kinds, used as AMQP routing keys.
const (
	LeadCreated = "lead.created"
	LeadUpdated = "lead.updated"
)

// ExchangeName is the topic exchange lead events are published to.
const ExchangeName = "leaddesk.events"

// Event is a single lead change.
type Event struct {
	Kind       string      `json:"kind"`
	Lead       domain.Lead `json:"lead"`
	Notes      string      `json:"notes,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events as persistent JSON messages.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   channel
}

// DialAMQP connects to the broker at url and declares the events exchange.
func DialAMQP(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	p, err := newAMQPPublisher(ch)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch channel) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", ExchangeName, err)
	}
	return &AMQPPublisher{ch: ch}, nil
}

// Publish sends e with its Kind as the routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		e.Kind,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}
	return nil
}

// Close closes the channel and, if owned, the connection.
func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// LogPublisher writes events to a logger. It is used when no broker is
// configured.
type LogPublisher struct {
	Logger *slog.Logger
}

// Publish logs e at info level.
func (p LogPublisher) Publish(_ context.Context, e Event) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("lead event", "kind", e.Kind, "lead_id", e.Lead.ID, "status", e.Lead.Status)
	return nil
}
