package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-reservation/internal/model"
)

// memStore is an in-memory Store with a uniqueness check on commit,
// standing in for the tickets table's unique index.
type memStore struct {
	mu         sync.Mutex
	trains     map[uint64]model.Train // keyed by journey id
	orders     map[uint64]model.Order
	tickets    map[seatKey]model.Ticket
	nextOrder  uint64
	nextTicket uint64
	beginErr   error
	// commitGate, when set, holds every Commit until all racing
	// transactions have reached it.
	commitGate *sync.WaitGroup
}

func newMemStore(trains map[uint64]model.Train) *memStore {
	return &memStore{
		trains:  trains,
		orders:  make(map[uint64]model.Order),
		tickets: make(map[seatKey]model.Ticket),
	}
}

func (m *memStore) Begin(ctx context.Context) (Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &memTx{store: m}, nil
}

func (m *memStore) counts() (orders, tickets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders), len(m.tickets)
}

type memTx struct {
	store    *memStore
	order    *model.Order
	pending  []model.Ticket
	finished bool
}

func (tx *memTx) CreateOrder(ctx context.Context, o *model.Order) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.nextOrder++
	o.ID = tx.store.nextOrder
	tx.order = o
	return nil
}

func (tx *memTx) JourneyTrain(ctx context.Context, journeyID uint64) (model.Train, error) {
	tr, ok := tx.store.trains[journeyID]
	if !ok {
		return model.Train{}, ErrJourneyNotFound
	}
	return tr, nil
}

func (tx *memTx) SeatTaken(ctx context.Context, journeyID uint64, cargo, seat int) (bool, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	_, ok := tx.store.tickets[seatKey{journeyID, cargo, seat}]
	return ok, nil
}

func (tx *memTx) CreateTicket(ctx context.Context, t *model.Ticket) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.store.nextTicket++
	t.ID = tx.store.nextTicket
	tx.pending = append(tx.pending, *t)
	return nil
}

func (tx *memTx) Commit() error {
	if g := tx.store.commitGate; g != nil {
		g.Done()
		g.Wait()
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	tx.finished = true
	for _, t := range tx.pending {
		if _, ok := tx.store.tickets[seatKey{t.JourneyID, t.Cargo, t.Seat}]; ok {
			return &DuplicateSeatError{JourneyID: t.JourneyID, Cargo: t.Cargo, Seat: t.Seat}
		}
	}
	for _, t := range tx.pending {
		tx.store.tickets[seatKey{t.JourneyID, t.Cargo, t.Seat}] = t
	}
	tx.store.orders[tx.order.ID] = *tx.order
	return nil
}

func (tx *memTx) Rollback() error {
	tx.finished = true
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []model.Order
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, o *model.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, *o)
	return p.err
}

func fixedClock() time.Time {
	return time.Date(2025, 9, 23, 8, 30, 0, 0, time.UTC)
}

func TestBookCreatesOrderWithTickets(t *testing.T) {
	store := newMemStore(map[uint64]model.Train{7: {ID: 1, CargoNum: 2, PlacesInCargo: 10}})
	pub := &recordingPublisher{}
	svc := NewService(store, WithPublisher(pub), WithClock(fixedClock))

	order, err := svc.Book(context.Background(), 42, []TicketRequest{
		{Cargo: 1, Seat: 1, JourneyID: 7},
		{Cargo: 2, Seat: 10, JourneyID: 7},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), order.UserID)
	assert.Equal(t, fixedClock(), order.CreatedAt)
	require.Len(t, order.Tickets, 2)
	for _, tk := range order.Tickets {
		assert.Equal(t, order.ID, tk.OrderID)
		assert.NotZero(t, tk.ID)
	}

	orders, tickets := store.counts()
	assert.Equal(t, 1, orders)
	assert.Equal(t, 2, tickets)
	require.Len(t, pub.orders, 1)
	assert.Equal(t, order.ID, pub.orders[0].ID)
}

func TestBookRejectsEmptyRequest(t *testing.T) {
	store := newMemStore(nil)
	store.beginErr = errors.New("must not begin")
	svc := NewService(store)

	_, err := svc.Book(context.Background(), 1, nil)
	var empty *EmptyBookingError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, "tickets", empty.FieldName())
}

func TestBookIsAtomic(t *testing.T) {
	store := newMemStore(map[uint64]model.Train{1: {CargoNum: 2, PlacesInCargo: 10}})
	pub := &recordingPublisher{}
	svc := NewService(store, WithPublisher(pub))

	_, err := svc.Book(context.Background(), 1, []TicketRequest{
		{Cargo: 1, Seat: 1, JourneyID: 1},
		{Cargo: 3, Seat: 1, JourneyID: 1},
	})
	var te *TicketError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, te.Index)
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "cargo", ce.Field)

	orders, tickets := store.counts()
	assert.Zero(t, orders)
	assert.Zero(t, tickets)
	assert.Empty(t, pub.orders)
}

func TestBookSameSeatTwice(t *testing.T) {
	store := newMemStore(map[uint64]model.Train{5: {CargoNum: 3, PlacesInCargo: 4}})
	svc := NewService(store)
	req := []TicketRequest{{Cargo: 2, Seat: 3, JourneyID: 5}}

	first, err := svc.Book(context.Background(), 1, req)
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), 2, req)
	var dup *DuplicateSeatError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, DuplicateSeatError{JourneyID: 5, Cargo: 2, Seat: 3}, *dup)

	orders, tickets := store.counts()
	assert.Equal(t, 1, orders)
	assert.Equal(t, 1, tickets)
	assert.Equal(t, first.Tickets[0], store.tickets[seatKey{5, 2, 3}])
}

func TestBookDuplicateWithinRequest(t *testing.T) {
	store := newMemStore(map[uint64]model.Train{5: {CargoNum: 3, PlacesInCargo: 4}})
	svc := NewService(store)

	_, err := svc.Book(context.Background(), 1, []TicketRequest{
		{Cargo: 1, Seat: 1, JourneyID: 5},
		{Cargo: 1, Seat: 1, JourneyID: 5},
	})
	var dup *DuplicateSeatError
	require.True(t, errors.As(err, &dup))
	orders, tickets := store.counts()
	assert.Zero(t, orders)
	assert.Zero(t, tickets)
}

func TestBookSameSeatOnDifferentJourneys(t *testing.T) {
	train := model.Train{CargoNum: 1, PlacesInCargo: 1}
	store := newMemStore(map[uint64]model.Train{1: train, 2: train})
	svc := NewService(store)

	order, err := svc.Book(context.Background(), 1, []TicketRequest{
		{Cargo: 1, Seat: 1, JourneyID: 1},
		{Cargo: 1, Seat: 1, JourneyID: 2},
	})
	require.NoError(t, err)
	assert.Len(t, order.Tickets, 2)
}

func TestBookUnknownJourney(t *testing.T) {
	svc := NewService(newMemStore(map[uint64]model.Train{}))
	_, err := svc.Book(context.Background(), 1, []TicketRequest{{Cargo: 1, Seat: 1, JourneyID: 99}})
	assert.ErrorIs(t, err, ErrJourneyNotFound)
}

func TestBookPublishFailureKeepsOrder(t *testing.T) {
	store := newMemStore(map[uint64]model.Train{1: {CargoNum: 1, PlacesInCargo: 2}})
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(store, WithPublisher(pub))

	_, err := svc.Book(context.Background(), 1, []TicketRequest{{Cargo: 1, Seat: 2, JourneyID: 1}})
	require.NoError(t, err)
	orders, _ := store.counts()
	assert.Equal(t, 1, orders)
}

func TestBookAvailabilityShrinksPerSeat(t *testing.T) {
	train := model.Train{CargoNum: 2, PlacesInCargo: 3}
	store := newMemStore(map[uint64]model.Train{1: train})
	svc := NewService(store)

	n := 0
	for cargo := 1; cargo <= train.CargoNum; cargo++ {
		for seat := 1; seat <= train.PlacesInCargo; seat++ {
			_, err := svc.Book(context.Background(), 1, []TicketRequest{{Cargo: cargo, Seat: seat, JourneyID: 1}})
			require.NoError(t, err)
			n++
			_, sold := store.counts()
			assert.Equal(t, train.TotalPlaces()-n, train.Available(sold))
		}
	}
	_, sold := store.counts()
	assert.Zero(t, train.Available(sold))
}

func TestBookConcurrentLastSeat(t *testing.T) {
	for _, gated := range []bool{false, true} {
		store := newMemStore(map[uint64]model.Train{1: {CargoNum: 1, PlacesInCargo: 1}})
		if gated {
			// Both transactions pass the pre-check before either commits,
			// so the commit-time constraint decides.
			store.commitGate = &sync.WaitGroup{}
			store.commitGate.Add(2)
		}
		svc := NewService(store)

		start := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.Book(context.Background(), uint64(i+1), []TicketRequest{{Cargo: 1, Seat: 1, JourneyID: 1}})
			}(i)
		}
		close(start)
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			var dup *DuplicateSeatError
			assert.True(t, errors.As(err, &dup), "gated=%v: unexpected error %v", gated, err)
		}
		assert.Equal(t, 1, succeeded, "gated=%v", gated)
		orders, tickets := store.counts()
		assert.Equal(t, 1, orders)
		assert.Equal(t, 1, tickets)
	}
}
