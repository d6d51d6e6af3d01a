package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-reservation/internal/booking"
	"github.com/iliyamo/train-reservation/internal/repository"
)

// dbTimeout bounds the repository calls of one request.
const dbTimeout = 5 * time.Second

func dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// respondError renders err as JSON. Booking and validation errors carry
// the offending field, and the ticket index when the error came from a
// multi-ticket request. Unknown errors are logged and reported as 500.
func respondError(c echo.Context, err error) error {
	body := echo.Map{"error": err.Error()}
	var te *booking.TicketError
	if errors.As(err, &te) {
		body["index"] = te.Index
		body["error"] = te.Err.Error()
		err = te.Err
	}
	var fe booking.FieldError
	if errors.As(err, &fe) {
		body["field"] = fe.FieldName()
	}

	var (
		capErr   *booking.CapacityError
		rangeErr *booking.RangeError
		dupErr   *booking.DuplicateSeatError
		emptyErr *booking.EmptyBookingError
	)
	switch {
	case errors.As(err, &capErr):
		body["min"], body["max"] = capErr.Min, capErr.Max
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &rangeErr):
		body["min"], body["max"] = rangeErr.Min, rangeErr.Max
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &emptyErr):
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &dupErr):
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, booking.ErrJourneyNotFound):
		body["field"] = "journey"
		return c.JSON(http.StatusNotFound, body)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, body)
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, body)
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrNameExists),
		errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "timeout"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
