package domain

import (
	"context"
	"time"
)

// FlightSource is a flight inventory. Search is read-only; booking is the only
// mutating call and is not idempotent.
type FlightSource interface {
	SearchFlights(ctx context.Context, c FlightCriteria) ([]FlightOffer, error)
	BookFlight(ctx context.Context, offerID string, p PassengerDetails) (*Confirmation, error)
	CancelFlight(ctx context.Context, bookingID string) error
}

// HotelSource is a hotel inventory.
type HotelSource interface {
	SearchHotels(ctx context.Context, c HotelCriteria) ([]HotelOffer, error)
	BookHotel(ctx context.Context, offerID string, d HotelBookingDetails) (*Confirmation, error)
}

// TextOracle is the language model capability the core depends on.
// Prompt construction stays behind this interface.
type TextOracle interface {
	// ExtractIntent returns only the fields found in message.
	ExtractIntent(ctx context.Context, message string, current TripIntent) (TripIntent, error)
	NextQuestion(ctx context.Context, intent TripIntent, field Field) (string, error)
	Summarize(ctx context.Context, plan *Plan) (string, error)
}

// SessionStore defines session's persistence
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	ListSessionsByUser(ctx context.Context, userID UserID, limit int) ([]*Session, error)
}

// MessageStore defines message's persistence
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *Message) error
	GetMessagesBySession(ctx context.Context, sessionID SessionID, limit int) ([]*Message, error)
}

// PlanStore keeps synthesized plans, newest first on listing.
type PlanStore interface {
	SavePlan(ctx context.Context, plan *Plan) error
	GetPlan(ctx context.Context, id PlanID) (*Plan, error)
	ListPlans(ctx context.Context, limit int) ([]*Plan, error)
}

// BookingStore keeps booking results, newest first on listing.
type BookingStore interface {
	SaveBooking(ctx context.Context, b *BookingResult) error
	ListBookings(ctx context.Context, limit int) ([]*BookingResult, error)
}

// Event is a domain notification emitted after state changes.
type Event struct {
	Type       string    `json:"type"`
	SessionID  SessionID `json:"session_id,omitempty"`
	PlanID     PlanID    `json:"plan_id,omitempty"`
	BookingID  BookingID `json:"booking_id,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	EventTripPlanned = "trip.planned"
	EventTripBooked  = "trip.booked"
)

// EventPublisher delivers domain events to interested subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}
