package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-reservation/internal/booking"
	"github.com/iliyamo/train-reservation/internal/model"
	"github.com/iliyamo/train-reservation/internal/repository"
)

type fakeBooker struct {
	gotUser uint64
	gotReqs []booking.TicketRequest
	order   *model.Order
	err     error
}

func (f *fakeBooker) Book(_ context.Context, userID uint64, reqs []booking.TicketRequest) (*model.Order, error) {
	f.gotUser, f.gotReqs = userID, reqs
	return f.order, f.err
}

type fakeOrders struct {
	rows      []repository.OrderListRow
	deleteErr error
	deleted   []uint64
}

func (f *fakeOrders) ListByUser(context.Context, uint64) ([]repository.OrderListRow, error) {
	return f.rows, nil
}

func (f *fakeOrders) DeleteForUser(_ context.Context, orderID, _ uint64) error {
	f.deleted = append(f.deleted, orderID)
	return f.deleteErr
}

func newCtx(method, target, body string, userID float64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID > 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestCreateOrderStatusCodes(t *testing.T) {
	created := time.Date(2025, 9, 23, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		name   string
		err    error
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "booked",
			status: http.StatusCreated,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(9), body["id"])
				assert.Len(t, body["tickets"], 1)
			},
		},
		{
			name:   "empty",
			err:    &booking.EmptyBookingError{},
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "tickets", body["field"])
			},
		},
		{
			name:   "capacity",
			err:    &booking.TicketError{Index: 1, Err: &booking.CapacityError{Field: "cargo", Value: 3, Min: 1, Max: 2}},
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "cargo", body["field"])
				assert.Equal(t, float64(1), body["index"])
				assert.Equal(t, float64(1), body["min"])
				assert.Equal(t, float64(2), body["max"])
				assert.Equal(t, "cargo number must be in available range: (1, 2), got 3", body["error"])
			},
		},
		{
			name:   "duplicate",
			err:    &booking.TicketError{Index: 0, Err: &booking.DuplicateSeatError{JourneyID: 5, Cargo: 1, Seat: 1}},
			status: http.StatusConflict,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "seat", body["field"])
				assert.Equal(t, float64(0), body["index"])
			},
		},
		{
			name:   "duplicate at commit",
			err:    &booking.DuplicateSeatError{JourneyID: 5, Cargo: 1, Seat: 1},
			status: http.StatusConflict,
		},
		{
			name:   "unknown journey",
			err:    &booking.TicketError{Index: 0, Err: booking.ErrJourneyNotFound},
			status: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "journey", body["field"])
			},
		},
		{
			name:   "storage failure",
			err:    errors.New("connection reset"),
			status: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "internal error", body["error"])
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBooker{err: tt.err}
			if tt.err == nil {
				b.order = &model.Order{ID: 9, UserID: 7, CreatedAt: created,
					Tickets: []model.Ticket{{ID: 1, Cargo: 1, Seat: 4, JourneyID: 5, OrderID: 9}}}
			}
			h := NewOrderHandler(b, &fakeOrders{})
			c, rec := newCtx(http.MethodPost, "/v1/orders", `{"tickets":[{"cargo":1,"seat":4,"journey":5}]}`, 7)

			require.NoError(t, h.Create(c))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, uint64(7), b.gotUser)
			assert.Equal(t, []booking.TicketRequest{{Cargo: 1, Seat: 4, JourneyID: 5}}, b.gotReqs)
			if tt.check != nil {
				tt.check(t, decode(t, rec))
			}
		})
	}
}

func TestCreateOrderRequiresUser(t *testing.T) {
	h := NewOrderHandler(&fakeBooker{}, &fakeOrders{})
	c, rec := newCtx(http.MethodPost, "/v1/orders", `{"tickets":[]}`, 0)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteOrder(t *testing.T) {
	store := &fakeOrders{deleteErr: repository.ErrForbidden}
	h := NewOrderHandler(&fakeBooker{}, store)

	c, rec := newCtx(http.MethodDelete, "/v1/orders/3", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	store.deleteErr = nil
	c, rec = newCtx(http.MethodDelete, "/v1/orders/3", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uint64{3, 3}, store.deleted)
}

type fakeSeats struct {
	train model.Train
	err   error
	taken bool
}

func (f fakeSeats) Train(context.Context, uint64) (model.Train, error) { return f.train, f.err }

func (f fakeSeats) SeatTaken(context.Context, uint64, int, int) (bool, error) { return f.taken, nil }

func TestValidateTicket(t *testing.T) {
	train := model.Train{ID: 1, CargoNum: 2, PlacesInCargo: 3}
	tests := []struct {
		name   string
		seats  fakeSeats
		body   string
		status int
		field  string
	}{
		{"free seat", fakeSeats{train: train}, `{"cargo":2,"seat":3,"journey":5}`, http.StatusOK, ""},
		{"seat beyond layout", fakeSeats{train: train}, `{"cargo":1,"seat":4,"journey":5}`, http.StatusBadRequest, "seat"},
		{"cargo zero", fakeSeats{train: train}, `{"cargo":0,"seat":1,"journey":5}`, http.StatusBadRequest, "cargo"},
		{"sold seat", fakeSeats{train: train, taken: true}, `{"cargo":1,"seat":1,"journey":5}`, http.StatusConflict, "seat"},
		{"unknown journey", fakeSeats{err: booking.ErrJourneyNotFound}, `{"cargo":1,"seat":1,"journey":5}`, http.StatusNotFound, "journey"},
		{"missing journey", fakeSeats{train: train}, `{"cargo":1,"seat":1}`, http.StatusBadRequest, "journey"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newCtx(http.MethodPost, "/v1/tickets/validate", tt.body, 7)
			require.NoError(t, NewTicketHandler(tt.seats).Validate(c))
			assert.Equal(t, tt.status, rec.Code)
			if tt.field != "" {
				assert.Equal(t, tt.field, decode(t, rec)["field"])
			}
		})
	}
}

func TestParseJourneyFilter(t *testing.T) {
	c, _ := newCtx(http.MethodGet, "/v1/journeys?source_name=kyi&departure_time=2025-10-01", "", 7)
	f, _, err := parseJourneyFilter(c)
	require.NoError(t, err)
	assert.Equal(t, "kyi", f.SourceName)
	require.NotNil(t, f.DepartureDate)
	assert.Equal(t, "2025-10-01", f.DepartureDate.Format(dateLayout))
	assert.Nil(t, f.ArrivalDate)

	c, _ = newCtx(http.MethodGet, "/v1/journeys?arrival_time=01.10.2025", "", 7)
	_, field, err := parseJourneyFilter(c)
	assert.Error(t, err)
	assert.Equal(t, "arrival_time", field)
}

func TestJourneyRequestValidation(t *testing.T) {
	dep := time.Date(2025, 10, 1, 7, 0, 0, 0, time.UTC)
	ok := journeyReq{Route: 1, Train: 2, DepartureTime: dep, ArrivalTime: dep.Add(time.Hour)}
	field, _ := ok.validate()
	assert.Empty(t, field)

	bad := ok
	bad.ArrivalTime = dep
	field, _ = bad.validate()
	assert.Equal(t, "arrival_time", field)

	assert.Equal(t, []uint64{}, ok.journey(0).CrewIDs)
}
