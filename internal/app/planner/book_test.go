package planner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/app/planner"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

var traveller = domain.PassengerDetails{FirstName: "Asha", LastName: "Rao", Email: "asha@example.com"}

func synthesized(t *testing.T, p *planner.TravelPlanner) *domain.Plan {
	t.Helper()
	plan, err := p.Synthesize(context.Background(), goaIntent())
	require.NoError(t, err)
	return plan
}

func TestBookConfirmsBothLegs(t *testing.T) {
	f, h := defaultSources()
	p := newTestPlanner(f, h, &fakeOracle{summary: "ok"}, planner.PolicyReport)
	plan := synthesized(t, p)

	res, err := p.Book(context.Background(), plan, traveller)
	require.NoError(t, err)

	assert.Equal(t, domain.BookingConfirmed, res.Status)
	assert.Equal(t, plan.ID, res.PlanID)
	assert.Equal(t, plan.TotalCost, res.TotalCost)
	require.NotNil(t, res.Flight)
	require.NotNil(t, res.Hotel)
	assert.Equal(t, []string{"F1"}, f.booked)

	require.Len(t, h.booked, 1)
	assert.Equal(t, plan.HotelCost, h.booked[0].TotalAmount)
	assert.Equal(t, plan.DepartureDate, h.booked[0].CheckIn)
	assert.Equal(t, plan.ReturnDate, h.booked[0].CheckOut)
}

func TestBookFlightFailureSkipsHotel(t *testing.T) {
	f, h := defaultSources()
	p := newTestPlanner(f, h, &fakeOracle{summary: "ok"}, planner.PolicyCompensate)
	plan := synthesized(t, p)
	f.bookErr = errors.New("seat map unavailable")

	res, err := p.Book(context.Background(), plan, traveller)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderBookingFailure)

	var bErr *domain.BookingError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, domain.LegFlight, bErr.Leg)

	require.NotNil(t, res)
	assert.Equal(t, domain.BookingFailed, res.Status)
	assert.Nil(t, res.Flight)
	assert.Nil(t, res.Hotel)
	assert.Empty(t, h.booked)
	assert.Empty(t, f.cancelled)
}

func TestBookHotelFailureReportsPartial(t *testing.T) {
	f, h := defaultSources()
	p := newTestPlanner(f, h, &fakeOracle{summary: "ok"}, planner.PolicyReport)
	plan := synthesized(t, p)
	h.bookErr = errors.New("sold out")

	res, err := p.Book(context.Background(), plan, traveller)

	var bErr *domain.BookingError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, domain.LegHotel, bErr.Leg)

	assert.Equal(t, domain.BookingPartial, res.Status)
	require.NotNil(t, res.Flight)
	assert.Nil(t, res.Hotel)
	assert.False(t, res.Compensated)
	assert.Empty(t, f.cancelled)
	assert.Contains(t, res.FailureReason, "sold out")
}

func TestBookHotelFailureCompensates(t *testing.T) {
	f, h := defaultSources()
	p := newTestPlanner(f, h, &fakeOracle{summary: "ok"}, planner.PolicyCompensate)
	plan := synthesized(t, p)
	h.bookErr = errors.New("sold out")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res, err := p.Book(ctx, plan, traveller)

	assert.ErrorIs(t, err, domain.ErrProviderBookingFailure)
	assert.Equal(t, domain.BookingFailed, res.Status)
	assert.True(t, res.Compensated)
	require.NotNil(t, res.Flight)
	assert.Equal(t, []string{res.Flight.BookingID}, f.cancelled)
}

func TestBookCompensationFailureStaysPartial(t *testing.T) {
	f, h := defaultSources()
	p := newTestPlanner(f, h, &fakeOracle{summary: "ok"}, planner.PolicyCompensate)
	plan := synthesized(t, p)
	h.bookErr = errors.New("sold out")
	f.cancelErr = errors.New("cancellation window closed")

	res, err := p.Book(context.Background(), plan, traveller)

	assert.ErrorIs(t, err, domain.ErrProviderBookingFailure)
	assert.ErrorContains(t, err, "cancellation window closed")
	assert.Equal(t, domain.BookingPartial, res.Status)
	assert.False(t, res.Compensated)
}

func TestBookRejectsIncompletePlan(t *testing.T) {
	f, h := defaultSources()
	p := newTestPlanner(f, h, &fakeOracle{}, planner.PolicyReport)

	_, err := p.Book(context.Background(), &domain.Plan{Destination: "Goa"}, traveller)
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Empty(t, f.booked)
}
