package domain

import "time"

// BudgetAllocation splits a trip budget; whatever is not allocated is buffer.
type BudgetAllocation struct {
	Total         Money `json:"total"`
	Flight        Money `json:"flight_budget"`
	Hotel         Money `json:"hotel_budget"`
	HotelPerNight Money `json:"hotel_budget_per_night"`
}

// Buffer is the unallocated part of the budget.
func (a BudgetAllocation) Buffer() Money {
	return a.Total - a.Flight - a.Hotel
}

// DayPlan is one day of an itinerary. Activities are keyed by time-of-day slot.
type DayPlan struct {
	Day        int               `json:"day"`
	Title      string            `json:"title"`
	Activities map[string]string `json:"activities"`
}

// AgentThought is one recorded step of the planning pipeline.
type AgentThought struct {
	Step      int       `json:"step"`
	Thought   string    `json:"thought"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Plan is the synthesized trip. It is not mutated after creation; booking
// produces a separate BookingResult.
type Plan struct {
	ID              PlanID           `json:"plan_id,omitempty"`
	Destination     string           `json:"destination"`
	Origin          string           `json:"origin"`
	DepartureDate   Date             `json:"departure_date"`
	ReturnDate      Date             `json:"return_date"`
	Days            int              `json:"days"`
	Passengers      int              `json:"passengers"`
	CabinClass      CabinClass       `json:"cabin_class"`
	Budget          Money            `json:"budget"`
	Allocation      BudgetAllocation `json:"allocation"`
	FlightCost      Money            `json:"flight_cost"`
	HotelCost       Money            `json:"hotel_cost"`
	TotalCost       Money            `json:"total_cost"`
	RemainingBudget Money            `json:"remaining_budget"`
	Flight          FlightOffer      `json:"flight"`
	Hotel           HotelOffer       `json:"hotel"`
	Itinerary       []DayPlan        `json:"itinerary"`
	Summary         string           `json:"summary"`
	Interests       []string         `json:"interests"`
	SelectionReason string           `json:"selection_reason,omitempty"`
	Thoughts        []AgentThought   `json:"thoughts,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// OverBudget reports whether the plan costs more than its budget.
func (p *Plan) OverBudget() bool {
	return p.RemainingBudget < 0
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingPartial   BookingStatus = "partial"
	BookingFailed    BookingStatus = "failed"
)

// BookingResult reports the outcome of booking a plan's flight and hotel.
// Partial completion is always explicit.
type BookingResult struct {
	ID            BookingID        `json:"id"`
	PlanID        PlanID           `json:"plan_id,omitempty"`
	Status        BookingStatus    `json:"status"`
	Flight        *Confirmation    `json:"flight_booking,omitempty"`
	Hotel         *Confirmation    `json:"hotel_booking,omitempty"`
	TotalCost     Money            `json:"total_cost"`
	Message       string           `json:"message"`
	FailureReason string           `json:"failure_reason,omitempty"`
	Compensated   bool             `json:"compensated,omitempty"`
	Passenger     PassengerDetails `json:"passenger"`
	Destination   string           `json:"destination"`
	CreatedAt     time.Time        `json:"created_at"`
}
