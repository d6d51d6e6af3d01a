package booking

import (
	"errors"
	"fmt"
)

// ErrJourneyNotFound is returned when a ticket references a journey that
// does not exist.
var ErrJourneyNotFound = errors.New("journey not found")

// FieldError is implemented by validation errors that can be attributed
// to a single request field.
type FieldError interface {
	error
	FieldName() string
}

// RangeError reports a station coordinate outside geographic bounds.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be in range [%g, %g], got %g", e.Field, e.Min, e.Max, e.Value)
}

func (e *RangeError) FieldName() string { return e.Field }

// CapacityError reports a cargo or seat number outside the train layout.
// Field is "cargo" or "seat"; Min and Max bound the allowed values.
type CapacityError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s number must be in available range: (%d, %d), got %d", e.Field, e.Min, e.Max, e.Value)
}

func (e *CapacityError) FieldName() string { return e.Field }

// DuplicateSeatError reports a seat that is already sold on the journey.
// It is returned both by the pre-insert check and when the storage
// uniqueness constraint rejects the ticket.
type DuplicateSeatError struct {
	JourneyID uint64
	Cargo     int
	Seat      int
}

func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("seat %d in cargo %d is already taken for journey %d", e.Seat, e.Cargo, e.JourneyID)
}

func (e *DuplicateSeatError) FieldName() string { return "seat" }

// EmptyBookingError is returned for a booking request without tickets.
type EmptyBookingError struct{}

func (e *EmptyBookingError) Error() string { return "tickets must not be empty" }

func (e *EmptyBookingError) FieldName() string { return "tickets" }

// TicketError attaches the position of the offending ticket in the
// booking request to the underlying error.
type TicketError struct {
	Index int
	Err   error
}

func (e *TicketError) Error() string {
	return fmt.Sprintf("tickets[%d]: %v", e.Index, e.Err)
}

func (e *TicketError) Unwrap() error { return e.Err }
