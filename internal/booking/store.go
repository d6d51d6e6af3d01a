package booking

import (
	"context"

	"github.com/iliyamo/train-reservation/internal/model"
)

// Store opens units of work for the booking protocol.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an atomic unit of work. Nothing written through a Tx is visible
// to other callers until Commit succeeds; Rollback discards every write
// and is safe to call after Commit.
type Tx interface {
	// CreateOrder inserts the order and assigns its ID.
	CreateOrder(ctx context.Context, order *model.Order) error
	// JourneyTrain returns the train assigned to a journey, or
	// ErrJourneyNotFound.
	JourneyTrain(ctx context.Context, journeyID uint64) (model.Train, error)
	// SeatTaken reports whether a ticket already holds the seat.
	SeatTaken(ctx context.Context, journeyID uint64, cargo, seat int) (bool, error)
	// CreateTicket inserts the ticket and assigns its ID. A uniqueness
	// violation is reported as *DuplicateSeatError.
	CreateTicket(ctx context.Context, ticket *model.Ticket) error
	// Commit makes the writes visible. A uniqueness violation detected at
	// commit is reported as *DuplicateSeatError.
	Commit() error
	Rollback() error
}

// Publisher receives orders after they have been committed.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *model.Order) error
}
