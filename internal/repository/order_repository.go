package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/train-reservation/internal/model"
)

// OrderRepo persists orders and their tickets. Writes run inside a
// caller-owned transaction; reads return the order list projection.
type OrderRepo struct {
	db       *sql.DB
	journeys *JourneyRepo
}

// NewOrderRepo returns an OrderRepo. Journey projections nested in order
// listings are loaded through a JourneyRepo on the same handle.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db, journeys: NewJourneyRepo(db)}
}

// OrderTicketRow is a ticket with its journey list projection nested.
type OrderTicketRow struct {
	ID      uint64         `json:"id"`
	Cargo   int            `json:"cargo"`
	Seat    int            `json:"seat"`
	Journey JourneyListRow `json:"journey"`
}

// OrderListRow is one order of a user with its tickets.
type OrderListRow struct {
	ID        uint64           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Tickets   []OrderTicketRow `json:"tickets"`
}

// CreateTx inserts the order row and assigns o.ID. CreatedAt must be set
// by the caller.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, created_at) VALUES (?, ?)",
		o.UserID, o.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CreateTicketTx inserts one ticket and assigns t.ID. Duplicate seats
// surface as the raw driver error; callers check isDuplicateKey.
func (r *OrderRepo) CreateTicketTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (cargo, seat, journey_id, order_id) VALUES (?, ?, ?, ?)",
		t.Cargo, t.Seat, t.JourneyID, t.OrderID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListByUser returns the user's orders newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]OrderListRow, error) {
	const q = `SELECT o.id, o.created_at, tk.id, tk.cargo, tk.seat, tk.journey_id
               FROM orders o
               LEFT JOIN tickets tk ON tk.order_id = o.id
               WHERE o.user_id = ?
               ORDER BY o.created_at DESC, o.id DESC, tk.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type pending struct {
		order, ticket int
		journeyID     uint64
	}
	out := make([]OrderListRow, 0)
	index := make(map[uint64]int)
	var refs []pending
	var journeyIDs []uint64
	seenJourney := make(map[uint64]struct{})
	for rows.Next() {
		var (
			oid       uint64
			createdAt time.Time
			tid       sql.NullInt64
			cargo     sql.NullInt64
			seat      sql.NullInt64
			jid       sql.NullInt64
		)
		if err := rows.Scan(&oid, &createdAt, &tid, &cargo, &seat, &jid); err != nil {
			return nil, err
		}
		oi, ok := index[oid]
		if !ok {
			oi = len(out)
			index[oid] = oi
			out = append(out, OrderListRow{ID: oid, CreatedAt: createdAt, Tickets: []OrderTicketRow{}})
		}
		if !tid.Valid {
			continue
		}
		out[oi].Tickets = append(out[oi].Tickets, OrderTicketRow{
			ID: uint64(tid.Int64), Cargo: int(cargo.Int64), Seat: int(seat.Int64),
		})
		refs = append(refs, pending{order: oi, ticket: len(out[oi].Tickets) - 1, journeyID: uint64(jid.Int64)})
		if _, ok := seenJourney[uint64(jid.Int64)]; !ok {
			seenJourney[uint64(jid.Int64)] = struct{}{}
			journeyIDs = append(journeyIDs, uint64(jid.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(journeyIDs) == 0 {
		return out, nil
	}
	journeys, err := r.journeys.ListByIDs(ctx, journeyIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]JourneyListRow, len(journeys))
	for _, j := range journeys {
		byID[j.ID] = j
	}
	for _, p := range refs {
		out[p.order].Tickets[p.ticket].Journey = byID[p.journeyID]
	}
	return out, nil
}

// DeleteForUser deletes an order owned by userID together with its
// tickets. Returns ErrNotFound for unknown orders and ErrForbidden when
// the order belongs to someone else.
func (r *OrderRepo) DeleteForUser(ctx context.Context, orderID, userID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx, "SELECT user_id FROM orders WHERE id = ?", orderID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ? AND user_id = ?", orderID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
