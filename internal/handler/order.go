package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-reservation/internal/booking"
	"github.com/iliyamo/train-reservation/internal/middleware"
	"github.com/iliyamo/train-reservation/internal/model"
	"github.com/iliyamo/train-reservation/internal/repository"
)

// Booker books tickets; *booking.Service implements it.
type Booker interface {
	Book(ctx context.Context, userID uint64, reqs []booking.TicketRequest) (*model.Order, error)
}

// OrderStore reads and deletes a user's orders; *repository.OrderRepo
// implements it.
type OrderStore interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.OrderListRow, error)
	DeleteForUser(ctx context.Context, orderID, userID uint64) error
}

// OrderHandler serves the caller's orders.
type OrderHandler struct {
	booker Booker
	orders OrderStore
}

func NewOrderHandler(b Booker, o OrderStore) *OrderHandler {
	if b == nil || o == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{booker: b, orders: o}
}

type createOrderReq struct {
	Tickets []booking.TicketRequest `json:"tickets"`
}

// Create books every requested ticket as one order. Returns 400 for an
// empty list or a seat outside the train, 404 for an unknown journey and
// 409 when a seat is already sold.
func (h *OrderHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	order, err := h.booker.Book(ctx, uid, req.Tickets)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// List returns the caller's orders newest first.
func (h *OrderHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	out, err := h.orders.ListByUser(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Delete removes one of the caller's orders and its tickets.
func (h *OrderHandler) Delete(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.orders.DeleteForUser(ctx, id, uid); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
