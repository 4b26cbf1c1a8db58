package planner_test

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeFlights struct {
	offers    []domain.FlightOffer
	searchErr error
	bookErr   error
	cancelErr error

	searches  []domain.FlightCriteria
	booked    []string
	cancelled []string
}

func (f *fakeFlights) SearchFlights(_ context.Context, c domain.FlightCriteria) ([]domain.FlightOffer, error) {
	f.searches = append(f.searches, c)
	return f.offers, f.searchErr
}

func (f *fakeFlights) BookFlight(_ context.Context, offerID string, _ domain.PassengerDetails) (*domain.Confirmation, error) {
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	f.booked = append(f.booked, offerID)
	return &domain.Confirmation{
		BookingID:        fmt.Sprintf("FB-%d", len(f.booked)),
		ConfirmationCode: "FLY123",
		Status:           "confirmed",
		OfferID:          offerID,
	}, nil
}

func (f *fakeFlights) CancelFlight(_ context.Context, bookingID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, bookingID)
	return nil
}

type fakeHotels struct {
	offers    []domain.HotelOffer
	searchErr error
	bookErr   error

	searches []domain.HotelCriteria
	booked   []domain.HotelBookingDetails
}

func (h *fakeHotels) SearchHotels(_ context.Context, c domain.HotelCriteria) ([]domain.HotelOffer, error) {
	h.searches = append(h.searches, c)
	return h.offers, h.searchErr
}

func (h *fakeHotels) BookHotel(_ context.Context, offerID string, d domain.HotelBookingDetails) (*domain.Confirmation, error) {
	if h.bookErr != nil {
		return nil, h.bookErr
	}
	h.booked = append(h.booked, d)
	return &domain.Confirmation{
		BookingID:        "HB-1",
		ConfirmationCode: "STAY4567",
		Status:           "confirmed",
		OfferID:          offerID,
		TotalAmount:      d.TotalAmount,
	}, nil
}

type fakeOracle struct {
	summary string
	err     error
}

func (o *fakeOracle) ExtractIntent(context.Context, string, domain.TripIntent) (domain.TripIntent, error) {
	return domain.TripIntent{}, o.err
}

func (o *fakeOracle) NextQuestion(context.Context, domain.TripIntent, domain.Field) (string, error) {
	return "", o.err
}

func (o *fakeOracle) Summarize(context.Context, *domain.Plan) (string, error) {
	return o.summary, o.err
}

func flight(id string, rupees int64) domain.FlightOffer {
	return domain.FlightOffer{
		ID:           id,
		Airline:      "IndiGo",
		FlightNumber: "6E" + id,
		Price:        domain.Rupees(rupees),
		Currency:     domain.Currency,
	}
}

func hotel(id string, rupees int64, rating float64) domain.HotelOffer {
	return domain.HotelOffer{
		ID:            id,
		Name:          "Hotel " + id,
		Rating:        rating,
		PricePerNight: domain.Rupees(rupees),
		Currency:      domain.Currency,
	}
}
