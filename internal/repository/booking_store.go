package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-reservation/internal/booking"
	"github.com/iliyamo/train-reservation/internal/model"
)

// BookingStore implements booking.Store on MySQL. The UNIQUE key on
// tickets(journey_id, cargo, seat) decides races between concurrent
// bookings; the loser receives a *booking.DuplicateSeatError. InnoDB may
// instead abort the loser with a deadlock or lock wait timeout when two
// orders claim the same seats in different order; that is reported the
// same way.
type BookingStore struct {
	db     *sql.DB
	orders *OrderRepo
}

// NewBookingStore returns a BookingStore bound to db.
func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db, orders: NewOrderRepo(db)}
}

// Begin opens a READ COMMITTED transaction.
func (s *BookingStore) Begin(ctx context.Context) (booking.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &bookingTx{tx: tx, orders: s.orders}, nil
}

type bookingTx struct {
	tx     *sql.Tx
	orders *OrderRepo
}

func (t *bookingTx) CreateOrder(ctx context.Context, o *model.Order) error {
	return t.orders.CreateTx(ctx, t.tx, o)
}

// JourneyTrain reads the journey and train rows with a shared lock so the
// layout cannot change underneath the booking.
func (t *bookingTx) JourneyTrain(ctx context.Context, journeyID uint64) (model.Train, error) {
	return journeyTrain(ctx, t.tx, journeyID, " FOR SHARE")
}

func (t *bookingTx) SeatTaken(ctx context.Context, journeyID uint64, cargo, seat int) (bool, error) {
	return seatTaken(ctx, t.tx, journeyID, cargo, seat)
}

func (t *bookingTx) CreateTicket(ctx context.Context, tk *model.Ticket) error {
	err := t.orders.CreateTicketTx(ctx, t.tx, tk)
	if err != nil && (isDuplicateKey(err) || isLockAbort(err)) {
		return &booking.DuplicateSeatError{JourneyID: tk.JourneyID, Cargo: tk.Cargo, Seat: tk.Seat}
	}
	return err
}

func (t *bookingTx) Commit() error { return t.tx.Commit() }

// Rollback ignores sql.ErrTxDone so it can follow a successful Commit.
func (t *bookingTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
