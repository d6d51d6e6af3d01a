package model

import "time"

// Order groups the tickets bought by one user in one booking. CreatedAt
// is assigned by the server when the order is written and never changes.
// Deleting an order deletes its tickets.
type Order struct {
	ID        uint64    `json:"id"`         // orders.id
	UserID    uint64    `json:"-"`          // orders.user_id
	CreatedAt time.Time `json:"created_at"` // orders.created_at
	Tickets   []Ticket  `json:"tickets"`
}

// Ticket reserves one seat in one cargo of a journey. The triple
// (JourneyID, Cargo, Seat) is unique across all tickets.
type Ticket struct {
	ID        uint64 `json:"id"`      // tickets.id
	Cargo     int    `json:"cargo"`   // tickets.cargo
	Seat      int    `json:"seat"`    // tickets.seat
	JourneyID uint64 `json:"journey"` // tickets.journey_id
	OrderID   uint64 `json:"-"`       // tickets.order_id
}
