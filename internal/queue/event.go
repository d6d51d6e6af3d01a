// Package queue carries order events over RabbitMQ and records them in
// an audit log.
package queue

import (
	"time"

	"github.com/iliyamo/train-reservation/internal/model"
)

// OrderCreatedQueue is the durable queue order events are routed to.
const OrderCreatedQueue = "order.created"

// OrderCreatedEvent is published once per committed order.
type OrderCreatedEvent struct {
	OrderID   uint64        `json:"order_id"`
	UserID    uint64        `json:"user_id"`
	CreatedAt string        `json:"created_at"`
	Tickets   []EventTicket `json:"tickets"`
}

// EventTicket is one seat of the order.
type EventTicket struct {
	TicketID  uint64 `json:"ticket_id"`
	JourneyID uint64 `json:"journey_id"`
	Cargo     int    `json:"cargo"`
	Seat      int    `json:"seat"`
}

// NewOrderCreatedEvent builds the event for a committed order.
func NewOrderCreatedEvent(o *model.Order) OrderCreatedEvent {
	ev := OrderCreatedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
		Tickets:   make([]EventTicket, 0, len(o.Tickets)),
	}
	for _, t := range o.Tickets {
		ev.Tickets = append(ev.Tickets, EventTicket{TicketID: t.ID, JourneyID: t.JourneyID, Cargo: t.Cargo, Seat: t.Seat})
	}
	return ev
}
