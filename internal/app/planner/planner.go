package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/tripwise-agent/internal/app/agentflow"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
	"github.com/PabloGalante/tripwise-agent/internal/observability"
)

// BookingPolicy decides what happens to a booked flight when the hotel leg fails.
type BookingPolicy string

const (
	// PolicyReport keeps the flight and reports a partial booking.
	PolicyReport BookingPolicy = "report"
	// PolicyCompensate cancels the flight so nothing stays half booked.
	PolicyCompensate BookingPolicy = "compensate"
)

// ParseBookingPolicy accepts "report" or "compensate"; empty means report.
func ParseBookingPolicy(s string) (BookingPolicy, error) {
	switch BookingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReport:
		return PolicyReport, nil
	case PolicyCompensate:
		return PolicyCompensate, nil
	default:
		return "", fmt.Errorf("unknown booking policy %q", s)
	}
}

// Options tune the planner. Zero values fall back to defaults.
type Options struct {
	HomeCity          string
	LeadDays          int
	BusinessThreshold domain.Money
	BookingPolicy     BookingPolicy
	OracleTimeout     time.Duration
	Composer          *Composer
	Now               func() time.Time
}

const (
	DefaultHomeCity      = "Delhi"
	DefaultLeadDays      = 14
	DefaultOracleTimeout = 20 * time.Second
)

// TravelPlanner synthesizes budget-reconciled plans and books them. It keeps no
// per-request state, so one instance can serve concurrent requests.
type TravelPlanner struct {
	flights domain.FlightSource
	hotels  domain.HotelSource
	oracle  domain.TextOracle
	opts    Options
	flow    *agentflow.Orchestrator[synthesis]
}

// New wires a planner from its collaborators.
func New(flights domain.FlightSource, hotels domain.HotelSource, oracle domain.TextOracle, opts Options) *TravelPlanner {
	if opts.HomeCity == "" {
		opts.HomeCity = DefaultHomeCity
	}
	if opts.LeadDays <= 0 {
		opts.LeadDays = DefaultLeadDays
	}
	if opts.BusinessThreshold <= 0 {
		opts.BusinessThreshold = DefaultBusinessThreshold
	}
	if opts.BookingPolicy == "" {
		opts.BookingPolicy = PolicyReport
	}
	if opts.OracleTimeout <= 0 {
		opts.OracleTimeout = DefaultOracleTimeout
	}
	if opts.Composer == nil {
		opts.Composer = DefaultComposer()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	p := &TravelPlanner{
		flights: flights,
		hotels:  hotels,
		oracle:  oracle,
		opts:    opts,
	}
	p.flow = agentflow.New("synthesize_plan",
		agentflow.Step[synthesis]{Name: "resolve_defaults", Run: p.resolveDefaults},
		agentflow.Step[synthesis]{Name: "allocate_budget", Run: p.allocateBudget},
		agentflow.Step[synthesis]{Name: "search_flights", Run: p.searchFlights},
		agentflow.Step[synthesis]{Name: "select_flight", Run: p.selectFlight},
		agentflow.Step[synthesis]{Name: "search_hotels", Run: p.searchHotels},
		agentflow.Step[synthesis]{Name: "select_hotel", Run: p.selectHotel},
		agentflow.Step[synthesis]{Name: "compute_costs", Run: p.computeCosts},
		agentflow.Step[synthesis]{Name: "compose_itinerary", Run: p.composeItinerary},
		agentflow.Step[synthesis]{Name: "summarize", Run: p.summarize},
	).WithClock(opts.Now)
	return p
}

// Policy returns the partial booking policy in effect.
func (p *TravelPlanner) Policy() BookingPolicy {
	return p.opts.BookingPolicy
}

// synthesis is the working state of one Synthesize call.
type synthesis struct {
	intent  domain.TripIntent
	alloc   domain.BudgetAllocation
	flights []domain.FlightOffer
	hotels  []domain.HotelOffer
	plan    *domain.Plan
}

// Synthesize turns a ready intent into a complete plan. The caller must have
// destination, budget and days set; otherwise a *MissingFieldError is returned.
func (p *TravelPlanner) Synthesize(ctx context.Context, intent domain.TripIntent) (*domain.Plan, error) {
	for _, f := range []domain.Field{domain.FieldDestination, domain.FieldBudget, domain.FieldDays} {
		if !intent.Has(f) {
			return nil, &domain.MissingFieldError{Field: f}
		}
	}
	if intent.Days > domain.MaxTripDays {
		return nil, fmt.Errorf("plan %d days: %w", intent.Days, domain.ErrInvalidDays)
	}

	log := observability.LoggerFromContext(ctx).With(
		"destination", intent.Destination,
		"budget", intent.Budget.Float(),
		"days", intent.Days,
	)

	st := &synthesis{
		intent: intent,
		plan: &domain.Plan{
			ID:          domain.PlanID(uuid.NewString()),
			Destination: strings.TrimSpace(intent.Destination),
			Budget:      intent.Budget,
			Days:        intent.Days,
			CreatedAt:   p.opts.Now(),
		},
	}

	thoughts, err := p.flow.Run(ctx, st)
	if err != nil {
		log.Error("plan synthesis failed", "error", err)
		return nil, err
	}
	st.plan.Thoughts = thoughts

	log.Info("plan synthesized",
		"plan_id", st.plan.ID,
		"total_cost", st.plan.TotalCost.Float(),
		"remaining_budget", st.plan.RemainingBudget.Float(),
	)
	return st.plan, nil
}

func (p *TravelPlanner) resolveDefaults(_ context.Context, st *synthesis) (string, error) {
	plan, in := st.plan, st.intent

	plan.Origin = strings.TrimSpace(in.Origin)
	if plan.Origin == "" {
		plan.Origin = p.opts.HomeCity
	}
	plan.Passengers = in.Passengers
	if plan.Passengers <= 0 {
		plan.Passengers = 1
	}
	plan.DepartureDate = in.DepartureDate
	if plan.DepartureDate.IsZero() {
		plan.DepartureDate = domain.NewDate(p.opts.Now()).AddDays(p.opts.LeadDays)
	}
	plan.ReturnDate = plan.DepartureDate.AddDays(plan.Days)
	plan.Interests = domain.MergeInterests(in.Interests, nil)
	if plan.Interests == nil {
		plan.Interests = []string{}
	}

	return fmt.Sprintf("Planning %d day(s) in %s from %s for %d passenger(s), %s to %s",
		plan.Days, plan.Destination, plan.Origin, plan.Passengers, plan.DepartureDate, plan.ReturnDate), nil
}

func (p *TravelPlanner) allocateBudget(_ context.Context, st *synthesis) (string, error) {
	alloc, err := Allocate(st.plan.Budget, st.plan.Days)
	if err != nil {
		return "", err
	}
	st.alloc = alloc
	st.plan.Allocation = alloc
	st.plan.CabinClass = CabinFor(st.plan.Budget, p.opts.BusinessThreshold)

	return fmt.Sprintf("Allocated %s to flights and %s to hotels (%s per night); searching %s class",
		alloc.Flight, alloc.Hotel, alloc.HotelPerNight, st.plan.CabinClass), nil
}

func (p *TravelPlanner) searchFlights(ctx context.Context, st *synthesis) (string, error) {
	plan := st.plan
	found, err := p.flights.SearchFlights(ctx, domain.FlightCriteria{
		Origin:        plan.Origin,
		Destination:   plan.Destination,
		DepartureDate: plan.DepartureDate,
		ReturnDate:    plan.ReturnDate,
		Passengers:    plan.Passengers,
		CabinClass:    plan.CabinClass,
	})
	if err != nil {
		return "", fmt.Errorf("search flights: %w", err)
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no flights from %s to %s: %w", plan.Origin, plan.Destination, domain.ErrNoOptionsAvailable)
	}

	st.flights = AffordableFlights(found, plan.Passengers, st.alloc.Flight)
	return fmt.Sprintf("Found %d flights from %s to %s; %d considered within the flight budget",
		len(found), plan.Origin, plan.Destination, len(st.flights)), nil
}

func (p *TravelPlanner) selectFlight(_ context.Context, st *synthesis) (string, error) {
	f, err := SelectFlight(st.flights)
	if err != nil {
		return "", err
	}
	st.plan.Flight = f
	return fmt.Sprintf("Selected %s %s at %s per passenger per leg", f.Airline, f.FlightNumber, f.Price), nil
}

func (p *TravelPlanner) searchHotels(ctx context.Context, st *synthesis) (string, error) {
	plan := st.plan
	found, err := p.hotels.SearchHotels(ctx, domain.HotelCriteria{
		Destination:    plan.Destination,
		BudgetPerNight: st.alloc.HotelPerNight,
		Interests:      plan.Interests,
		CheckIn:        plan.DepartureDate,
		CheckOut:       plan.ReturnDate,
	})
	if err != nil {
		return "", fmt.Errorf("search hotels: %w", err)
	}
	st.hotels = found
	return fmt.Sprintf("Found %d hotels in %s around %s per night", len(found), plan.Destination, st.alloc.HotelPerNight), nil
}

func (p *TravelPlanner) selectHotel(_ context.Context, st *synthesis) (string, error) {
	h, reason, err := SelectHotel(st.hotels, st.plan.Interests)
	if err != nil {
		return "", err
	}
	st.plan.Hotel = h
	st.plan.SelectionReason = reason
	return fmt.Sprintf("Selected %s (%.1f stars) at %s per night, %s", h.Name, h.Rating, h.PricePerNight, reason), nil
}

func (p *TravelPlanner) computeCosts(_ context.Context, st *synthesis) (string, error) {
	plan := st.plan
	plan.FlightCost = RoundTripCost(plan.Flight, plan.Passengers)
	plan.HotelCost = StayCost(plan.Hotel, plan.Days)
	plan.TotalCost = plan.FlightCost + plan.HotelCost
	plan.RemainingBudget = plan.Budget - plan.TotalCost

	if plan.OverBudget() {
		return fmt.Sprintf("Total %s exceeds the budget by %s", plan.TotalCost, -plan.RemainingBudget), nil
	}
	return fmt.Sprintf("Total %s leaves %s of the budget", plan.TotalCost, plan.RemainingBudget), nil
}

func (p *TravelPlanner) composeItinerary(_ context.Context, st *synthesis) (string, error) {
	st.plan.Itinerary = p.opts.Composer.Compose(st.plan.Destination, st.plan.Days, st.plan.Interests)
	return fmt.Sprintf("Composed a %d-day itinerary around %s", len(st.plan.Itinerary), PrimaryInterest(st.plan.Interests)), nil
}

func (p *TravelPlanner) summarize(ctx context.Context, st *synthesis) (string, error) {
	octx, cancel := context.WithTimeout(ctx, p.opts.OracleTimeout)
	defer cancel()

	summary, err := p.oracle.Summarize(octx, st.plan)
	if err != nil || strings.TrimSpace(summary) == "" {
		observability.LoggerFromContext(ctx).Warn("summary unavailable, using placeholder", "error", err)
		st.plan.Summary = PlaceholderSummary(st.plan)
		return "Summary unavailable; using a generated overview", nil
	}
	st.plan.Summary = strings.TrimSpace(summary)
	return "Summary written", nil
}

// PlaceholderSummary describes a plan without the language model.
func PlaceholderSummary(plan *domain.Plan) string {
	return fmt.Sprintf("Your %d-day trip from %s to %s: %s flight and a stay at %s. Total cost %s against a budget of %s.",
		plan.Days, plan.Origin, plan.Destination, plan.Flight.Airline, plan.Hotel.Name, plan.TotalCost, plan.Budget)
}

// Book books the flight, then the hotel. A failed flight leg stops the sequence; a
// failed hotel leg is reported as partial or compensated according to the policy.
// The returned result is never nil and always describes what was booked.
func (p *TravelPlanner) Book(ctx context.Context, plan *domain.Plan, passenger domain.PassengerDetails) (*domain.BookingResult, error) {
	if plan == nil || plan.Flight.ID == "" || plan.Hotel.ID == "" {
		return nil, fmt.Errorf("plan has no flight or hotel to book: %w", domain.ErrMissingField)
	}

	log := observability.LoggerFromContext(ctx).With("plan_id", plan.ID, "policy", p.opts.BookingPolicy)

	res := &domain.BookingResult{
		ID:          domain.BookingID(uuid.NewString()),
		PlanID:      plan.ID,
		TotalCost:   plan.TotalCost,
		Passenger:   passenger,
		Destination: plan.Destination,
		CreatedAt:   p.opts.Now(),
	}

	flight, err := p.flights.BookFlight(ctx, plan.Flight.ID, passenger)
	if err != nil {
		bErr := &domain.BookingError{Leg: domain.LegFlight, Err: err}
		log.Error("flight booking failed", "error", err)
		res.Status = domain.BookingFailed
		res.FailureReason = bErr.Error()
		res.Message = "Flight booking failed; the hotel was not booked."
		return res, bErr
	}
	res.Flight = flight
	log.Info("flight booked", "booking_id", flight.BookingID)

	hotel, err := p.hotels.BookHotel(ctx, plan.Hotel.ID, domain.HotelBookingDetails{
		Passenger:   passenger,
		CheckIn:     plan.DepartureDate,
		CheckOut:    plan.ReturnDate,
		TotalAmount: StayCost(plan.Hotel, plan.Days),
	})
	if err != nil {
		bErr := &domain.BookingError{Leg: domain.LegHotel, Err: err}
		log.Error("hotel booking failed", "error", err)
		res.FailureReason = bErr.Error()
		return res, p.recoverHotelFailure(ctx, res, bErr)
	}
	res.Hotel = hotel

	res.Status = domain.BookingConfirmed
	res.Message = fmt.Sprintf("Complete travel plan booked successfully! Total cost: %s", plan.TotalCost)
	log.Info("plan booked", "flight_booking", flight.BookingID, "hotel_booking", hotel.BookingID)
	return res, nil
}

func (p *TravelPlanner) recoverHotelFailure(ctx context.Context, res *domain.BookingResult, bErr *domain.BookingError) error {
	if p.opts.BookingPolicy != PolicyCompensate {
		res.Status = domain.BookingPartial
		res.Message = fmt.Sprintf("Flight booked (%s) but the hotel booking failed.", res.Flight.ConfirmationCode)
		return bErr
	}

	// Compensation runs even when ctx is already cancelled.
	if err := p.flights.CancelFlight(context.WithoutCancel(ctx), res.Flight.BookingID); err != nil {
		observability.LoggerFromContext(ctx).Error("flight compensation failed", "booking_id", res.Flight.BookingID, "error", err)
		res.Status = domain.BookingPartial
		res.Message = fmt.Sprintf("Hotel booking failed and flight %s could not be cancelled.", res.Flight.ConfirmationCode)
		return errors.Join(bErr, fmt.Errorf("cancel flight %s: %w", res.Flight.BookingID, err))
	}

	res.Status = domain.BookingFailed
	res.Compensated = true
	res.Message = "Hotel booking failed; the flight booking was cancelled."
	return bErr
}
