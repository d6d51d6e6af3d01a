// Package booking enforces the seat-booking invariants: tickets fit the
// train layout, a seat on a journey is sold at most once, and an order
// and its tickets are written as one unit.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/train-reservation/internal/model"
)

// TicketRequest is one desired seat in a booking request.
type TicketRequest struct {
	Cargo     int    `json:"cargo"`
	Seat      int    `json:"seat"`
	JourneyID uint64 `json:"journey"`
}

// Service runs booking transactions against a Store.
type Service struct {
	store     Store
	publisher Publisher
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the publisher notified after each committed order.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock replaces time.Now as the source of order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service writing through store.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("nil store passed to booking.NewService")
	}
	s := &Service{store: store, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

type seatKey struct {
	journeyID   uint64
	cargo, seat int
}

// Book creates one order for userID holding one ticket per request, in
// request order. Either the order and all tickets are committed or
// nothing is. Validation failures are returned as *TicketError wrapping
// a *CapacityError, *DuplicateSeatError or ErrJourneyNotFound; an empty
// request yields *EmptyBookingError without touching the store.
func (s *Service) Book(ctx context.Context, userID uint64, reqs []TicketRequest) (*model.Order, error) {
	if len(reqs) == 0 {
		return nil, &EmptyBookingError{}
	}
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order := &model.Order{
		UserID:    userID,
		CreatedAt: s.now().UTC().Truncate(time.Second),
		Tickets:   make([]model.Ticket, 0, len(reqs)),
	}
	if err := tx.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	trains := make(map[uint64]model.Train)
	seen := make(map[seatKey]struct{}, len(reqs))
	for i, r := range reqs {
		train, ok := trains[r.JourneyID]
		if !ok {
			train, err = tx.JourneyTrain(ctx, r.JourneyID)
			if err != nil {
				return nil, &TicketError{Index: i, Err: err}
			}
			trains[r.JourneyID] = train
		}
		if err := ValidateTicket(r.Cargo, r.Seat, train); err != nil {
			return nil, &TicketError{Index: i, Err: err}
		}

		key := seatKey{journeyID: r.JourneyID, cargo: r.Cargo, seat: r.Seat}
		if _, dup := seen[key]; dup {
			return nil, &TicketError{Index: i, Err: duplicate(r)}
		}
		seen[key] = struct{}{}
		taken, err := tx.SeatTaken(ctx, r.JourneyID, r.Cargo, r.Seat)
		if err != nil {
			return nil, &TicketError{Index: i, Err: err}
		}
		if taken {
			return nil, &TicketError{Index: i, Err: duplicate(r)}
		}

		ticket := model.Ticket{Cargo: r.Cargo, Seat: r.Seat, JourneyID: r.JourneyID, OrderID: order.ID}
		if err := tx.CreateTicket(ctx, &ticket); err != nil {
			return nil, &TicketError{Index: i, Err: err}
		}
		order.Tickets = append(order.Tickets, ticket)
	}

	if err := tx.Commit(); err != nil {
		var dup *DuplicateSeatError
		if errors.As(err, &dup) {
			return nil, err
		}
		return nil, fmt.Errorf("commit booking: %w", err)
	}
	committed = true

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			log.Warnf("booking: publish order %d: %v", order.ID, err)
		}
	}
	return order, nil
}

func duplicate(r TicketRequest) *DuplicateSeatError {
	return &DuplicateSeatError{JourneyID: r.JourneyID, Cargo: r.Cargo, Seat: r.Seat}
}
