package inventory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

const offersPerSearch = 10

var carriers = []struct {
	airline string
	prefix  string
}{
	{"Air India", "AI"},
	{"IndiGo", "6E"},
	{"SpiceJet", "SG"},
	{"Vistara", "UK"},
	{"GoAir", "G8"},
}

var errFlightCancelled = errors.New("flight booking already cancelled")

// FlightCatalog is an in-process flight inventory. Searches are deterministic for
// identical criteria. Offers are remembered so bookings can be checked against them.
type FlightCatalog struct {
	mu       sync.RWMutex
	offers   map[string]domain.FlightOffer
	bookings map[string]*domain.Confirmation
	now      func() time.Time
}

func NewFlightCatalog() *FlightCatalog {
	return &FlightCatalog{
		offers:   make(map[string]domain.FlightOffer),
		bookings: make(map[string]*domain.Confirmation),
		now:      time.Now,
	}
}

// SearchFlights returns round-trip offers sorted by price, then ID.
func (c *FlightCatalog) SearchFlights(ctx context.Context, crit domain.FlightCriteria) ([]domain.FlightOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cabin := crit.CabinClass
	if cabin == "" {
		cabin = domain.CabinEconomy
	}
	base := 3000.0
	if cabin == domain.CabinBusiness {
		base = 8000.0
	}

	key := queryHash(crit.Origin, crit.Destination, crit.DepartureDate.String(), string(cabin), strconv.Itoa(crit.Passengers))
	r := randFromSeed(key)
	date := crit.DepartureDate.String()

	// IDs embed the query key so offers from different searches never share one.
	offers := make([]domain.FlightOffer, 0, offersPerSearch)
	for i := range offersPerSearch {
		id := fmt.Sprintf("FL-%012x-%02d", key>>16, i)

		carrier := carriers[r.IntN(len(carriers))]
		hours, minutes := 2+r.IntN(7), r.IntN(60)
		departHour := (6 + i) % 24

		offers = append(offers, domain.FlightOffer{
			ID:            id,
			Airline:       carrier.airline,
			FlightNumber:  fmt.Sprintf("%s%d", carrier.prefix, 100+r.IntN(900)),
			Origin:        crit.Origin,
			Destination:   crit.Destination,
			DepartureTime: fmt.Sprintf("%sT%02d:%02d:00", date, departHour, r.IntN(60)),
			ArrivalTime:   fmt.Sprintf("%sT%02d:%02d:00", date, (departHour+hours)%24, r.IntN(60)),
			Duration:      fmt.Sprintf("%dh %dm", hours, minutes),
			Stops:         r.IntN(3),
			Price:         domain.FromFloat(base + r.Float64()*4000 - 1000),
			Currency:      domain.Currency,
			CabinClass:    cabin,
		})
	}

	slices.SortFunc(offers, func(a, b domain.FlightOffer) int {
		return cmp.Or(cmp.Compare(a.Price, b.Price), cmp.Compare(a.ID, b.ID))
	})

	c.mu.Lock()
	for _, o := range offers {
		if _, exists := c.offers[o.ID]; !exists {
			c.offers[o.ID] = o
		}
	}
	c.mu.Unlock()

	return offers, nil
}

// BookFlight books a previously returned offer. Every call creates a new booking.
func (c *FlightCatalog) BookFlight(ctx context.Context, offerID string, p domain.PassengerDetails) (*domain.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.FullName() == "" {
		return nil, fmt.Errorf("book flight %s: passenger name is required", offerID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	offer, ok := c.offers[offerID]
	if !ok {
		return nil, fmt.Errorf("flight offer %s: %w", offerID, domain.ErrNotFound)
	}

	conf := &domain.Confirmation{
		BookingID:        "BK-" + uuid.NewString(),
		ConfirmationCode: confirmationCode(6),
		Status:           "confirmed",
		Message:          "Booking successful! Confirmation email sent.",
		OfferID:          offer.ID,
		GuestName:        p.FullName(),
		TotalAmount:      offer.Price,
		BookedAt:         c.now(),
	}
	c.bookings[conf.BookingID] = conf

	cp := *conf
	return &cp, nil
}

// CancelFlight cancels a booking made by BookFlight.
func (c *FlightCatalog) CancelFlight(_ context.Context, bookingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conf, ok := c.bookings[bookingID]
	if !ok {
		return fmt.Errorf("flight booking %s: %w", bookingID, domain.ErrNotFound)
	}
	if conf.Status == "cancelled" {
		return fmt.Errorf("flight booking %s: %w", bookingID, errFlightCancelled)
	}
	conf.Status = "cancelled"
	conf.Message = "Booking cancelled."
	return nil
}

// Booking returns a copy of a booking, including cancelled ones.
func (c *FlightCatalog) Booking(bookingID string) (*domain.Confirmation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	conf, ok := c.bookings[bookingID]
	if !ok {
		return nil, false
	}
	cp := *conf
	return &cp, true
}
