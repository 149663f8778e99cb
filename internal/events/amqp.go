package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the durable topic exchange booking events are routed through.
// The routing key is the event type.
const Exchange = "bookings"

// AMQPPublisher publishes events to RabbitMQ over one long-lived connection,
// reopening it when the broker drops it.
type AMQPPublisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker failed: %w", err)
	}
	p.conn = conn

	if err := p.openChannel(); err != nil {
		_ = conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// openChannel opens a channel on the current connection and declares the
// exchange on it.
func (p *AMQPPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel failed: %w", err)
	}

	if err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare exchange failed: %w", err)
	}

	p.ch = ch
	return nil
}

type recovery int

const (
	recoverNone recovery = iota
	recoverChannel
	recoverConnection
)

// recoveryFor picks the cheapest repair. A channel exception closes only the
// channel, so the connection is redialled only when it is gone itself.
func recoveryFor(connOpen, chanOpen bool) recovery {
	switch {
	case !connOpen:
		return recoverConnection
	case !chanOpen:
		return recoverChannel
	}
	return recoverNone
}

func (p *AMQPPublisher) ensureOpen() error {
	connOpen := p.conn != nil && !p.conn.IsClosed()
	chanOpen := p.ch != nil && !p.ch.IsClosed()

	switch recoveryFor(connOpen, chanOpen) {
	case recoverConnection:
		if p.ch != nil {
			_ = p.ch.Close()
			p.ch = nil
		}
		return p.connect()
	case recoverChannel:
		return p.openChannel()
	}
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureOpen(); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, Exchange, string(e.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish %s failed: %w", e.Type, err)
	}
	return nil
}

// Close shuts down the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
