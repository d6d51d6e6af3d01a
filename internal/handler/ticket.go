package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-reservation/internal/booking"
	"github.com/iliyamo/train-reservation/internal/model"
)

// SeatLookup answers seat questions about a journey outside a booking;
// *repository.JourneyRepo implements it.
type SeatLookup interface {
	Train(ctx context.Context, journeyID uint64) (model.Train, error)
	SeatTaken(ctx context.Context, journeyID uint64, cargo, seat int) (bool, error)
}

// TicketHandler pre-checks tickets without booking them.
type TicketHandler struct {
	seats SeatLookup
}

func NewTicketHandler(s SeatLookup) *TicketHandler {
	if s == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{seats: s}
}

// Validate applies the same capacity check as booking and reports whether
// the seat is currently free. A free seat may still be lost to a
// concurrent booking.
func (h *TicketHandler) Validate(c echo.Context) error {
	var req booking.TicketRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.JourneyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "journey is required", "field": "journey"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	train, err := h.seats.Train(ctx, req.JourneyID)
	if err != nil {
		return respondError(c, err)
	}
	if err := booking.ValidateTicket(req.Cargo, req.Seat, train); err != nil {
		return respondError(c, err)
	}
	taken, err := h.seats.SeatTaken(ctx, req.JourneyID, req.Cargo, req.Seat)
	if err != nil {
		return respondError(c, err)
	}
	if taken {
		return respondError(c, &booking.DuplicateSeatError{JourneyID: req.JourneyID, Cargo: req.Cargo, Seat: req.Seat})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true, "journey": req.JourneyID, "cargo": req.Cargo, "seat": req.Seat})
}
