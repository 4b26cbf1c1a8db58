package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField           = errors.New("missing required field")
	ErrNoOptionsAvailable     = errors.New("no options available")
	ErrOracleFailure          = errors.New("language model failure")
	ErrProviderBookingFailure = errors.New("provider booking failure")
	ErrNotFound               = errors.New("not found")
	ErrInvalidDays            = errors.New("days must be between 1 and 365")
	ErrEmptyMessage           = errors.New("message is empty")
	ErrNotReady               = errors.New("conversation is not ready to plan")
)

// MissingFieldError names the intent field plan synthesis could not do without.
type MissingFieldError struct {
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// OracleError wraps a failed or unparsable language model call.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Op, e.Err)
}

func (e *OracleError) Is(target error) bool { return target == ErrOracleFailure }
func (e *OracleError) Unwrap() error        { return e.Err }

// BookingLeg identifies which half of a plan booking failed.
type BookingLeg string

const (
	LegFlight BookingLeg = "flight"
	LegHotel  BookingLeg = "hotel"
)

// BookingError is returned when a provider rejects a booking call.
type BookingError struct {
	Leg BookingLeg
	Err error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s booking failed: %v", e.Leg, e.Err)
}

func (e *BookingError) Is(target error) bool { return target == ErrProviderBookingFailure }
func (e *BookingError) Unwrap() error        { return e.Err }
