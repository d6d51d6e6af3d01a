// Package service holds adapters that connect the booking core to
// external systems.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/train-reservation/internal/model"
	"github.com/iliyamo/train-reservation/internal/queue"
)

const (
	// publishTimeout bounds dialing and a single publish.
	publishTimeout = 3 * time.Second
	// backlogSize is the number of events buffered while the broker is
	// slow or unreachable.
	backlogSize = 256
)

// ErrBacklogFull is returned when the event buffer is full and the event
// was dropped.
var ErrBacklogFull = errors.New("order event backlog full")

// OrderPublisher sends OrderCreatedEvent messages to RabbitMQ.
// PublishOrderCreated only enqueues; Run owns one long-lived connection,
// redials after a failure and performs the actual publish.
type OrderPublisher struct {
	url    string
	events chan queue.OrderCreatedEvent

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewOrderPublisher(url string) *OrderPublisher {
	return &OrderPublisher{url: url, events: make(chan queue.OrderCreatedEvent, backlogSize)}
}

// PublishOrderCreated queues the event for o without blocking.
func (p *OrderPublisher) PublishOrderCreated(_ context.Context, o *model.Order) error {
	select {
	case p.events <- queue.NewOrderCreatedEvent(o):
		return nil
	default:
		return ErrBacklogFull
	}
}

// Run drains the backlog until ctx is cancelled. An event that fails to
// publish is logged and dropped; the connection is reopened for the next.
func (p *OrderPublisher) Run(ctx context.Context) {
	defer p.reset()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.events:
			if err := p.send(ctx, ev); err != nil {
				log.Warnf("order-publisher: order %d: %v", ev.OrderID, err)
				p.reset()
			}
		}
	}
}

func (p *OrderPublisher) send(ctx context.Context, ev queue.OrderCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.connect(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.ch.PublishWithContext(ctx, "", queue.OrderCreatedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Type:         queue.OrderCreatedQueue,
		Body:         body,
	})
}

// connect opens the connection and channel if there is no usable one and
// declares the durable queue.
func (p *OrderPublisher) connect() error {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return nil
	}
	p.reset()

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(publishTimeout)})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue.OrderCreatedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *OrderPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
