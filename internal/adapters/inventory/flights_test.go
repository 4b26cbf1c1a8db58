package inventory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/adapters/inventory"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

func criteria(cabin domain.CabinClass) domain.FlightCriteria {
	dep, _ := domain.ParseDate("2026-10-30")
	return domain.FlightCriteria{
		Origin:        "Delhi",
		Destination:   "Goa",
		DepartureDate: dep,
		ReturnDate:    dep.AddDays(3),
		Passengers:    1,
		CabinClass:    cabin,
	}
}

func TestSearchFlightsSortedAndPriced(t *testing.T) {
	for cabin, bounds := range map[domain.CabinClass][2]int64{
		domain.CabinEconomy:  {2000, 6000},
		domain.CabinBusiness: {7000, 11000},
	} {
		offers, err := inventory.NewFlightCatalog().SearchFlights(context.Background(), criteria(cabin))
		require.NoError(t, err)
		require.Len(t, offers, 10)

		ids := map[string]bool{}
		for i, o := range offers {
			assert.GreaterOrEqual(t, o.Price, domain.Rupees(bounds[0]))
			assert.LessOrEqual(t, o.Price, domain.Rupees(bounds[1]))
			assert.Equal(t, cabin, o.CabinClass)
			assert.Equal(t, "Goa", o.Destination)
			assert.False(t, ids[o.ID], "duplicate offer id %s", o.ID)
			ids[o.ID] = true
			if i > 0 {
				assert.LessOrEqual(t, offers[i-1].Price, o.Price)
			}
		}
	}
}

func TestSearchFlightsDeterministic(t *testing.T) {
	a, err := inventory.NewFlightCatalog().SearchFlights(context.Background(), criteria(domain.CabinEconomy))
	require.NoError(t, err)
	b, err := inventory.NewFlightCatalog().SearchFlights(context.Background(), criteria(domain.CabinEconomy))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSearchFlightsHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := inventory.NewFlightCatalog().SearchFlights(ctx, criteria(domain.CabinEconomy))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBookAndCancelFlight(t *testing.T) {
	c := inventory.NewFlightCatalog()
	offers, err := c.SearchFlights(context.Background(), criteria(domain.CabinEconomy))
	require.NoError(t, err)

	passenger := domain.PassengerDetails{FirstName: "Asha", LastName: "Rao"}
	first, err := c.BookFlight(context.Background(), offers[0].ID, passenger)
	require.NoError(t, err)
	second, err := c.BookFlight(context.Background(), offers[0].ID, passenger)
	require.NoError(t, err)

	assert.NotEqual(t, first.BookingID, second.BookingID, "bookings are not idempotent")
	assert.Len(t, first.ConfirmationCode, 6)
	assert.Equal(t, "confirmed", first.Status)

	require.NoError(t, c.CancelFlight(context.Background(), first.BookingID))
	got, ok := c.Booking(first.BookingID)
	require.True(t, ok)
	assert.Equal(t, "cancelled", got.Status)

	assert.Error(t, c.CancelFlight(context.Background(), first.BookingID))
	assert.ErrorIs(t, c.CancelFlight(context.Background(), "BK-missing"), domain.ErrNotFound)
}

func TestBookFlightValidates(t *testing.T) {
	c := inventory.NewFlightCatalog()

	_, err := c.BookFlight(context.Background(), "FL0000", domain.PassengerDetails{FirstName: "Asha"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	offers, err := c.SearchFlights(context.Background(), criteria(domain.CabinEconomy))
	require.NoError(t, err)
	_, err = c.BookFlight(context.Background(), offers[0].ID, domain.PassengerDetails{})
	assert.Error(t, err)
}

func TestBookFlightKeepsOfferAcrossSearches(t *testing.T) {
	c := inventory.NewFlightCatalog()
	ctx := context.Background()

	planned, err := c.SearchFlights(ctx, criteria(domain.CabinEconomy))
	require.NoError(t, err)
	chosen := planned[0]

	ids := map[string]string{}
	for _, o := range planned {
		ids[o.ID] = "Goa"
	}
	dep, _ := domain.ParseDate("2026-10-30")
	for i := range 200 {
		dest := fmt.Sprintf("City%03d", i)
		offers, err := c.SearchFlights(ctx, domain.FlightCriteria{
			Origin:        "Delhi",
			Destination:   dest,
			DepartureDate: dep.AddDays(i % 30),
			Passengers:    1 + i%3,
		})
		require.NoError(t, err)
		for _, o := range offers {
			prev, dup := ids[o.ID]
			require.False(t, dup, "offer id %s reused by %s and %s", o.ID, prev, dest)
			ids[o.ID] = dest
		}
	}

	conf, err := c.BookFlight(ctx, chosen.ID, domain.PassengerDetails{FirstName: "Asha", LastName: "Rao"})
	require.NoError(t, err)
	assert.Equal(t, chosen.ID, conf.OfferID)
	assert.Equal(t, chosen.Price, conf.TotalAmount)
}
