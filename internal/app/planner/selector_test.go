package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/app/planner"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

func TestSelectFlightTakesHead(t *testing.T) {
	offers := []domain.FlightOffer{flight("1", 2500), flight("2", 2500), flight("3", 4000)}

	got, err := planner.SelectFlight(offers)
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
}

func TestSelectEmptyOffers(t *testing.T) {
	_, err := planner.SelectFlight(nil)
	assert.ErrorIs(t, err, domain.ErrNoOptionsAvailable)

	_, _, err = planner.SelectHotel(nil, []string{"luxury"})
	assert.ErrorIs(t, err, domain.ErrNoOptionsAvailable)
}

func TestSelectHotelByInterest(t *testing.T) {
	offers := []domain.HotelOffer{
		hotel("mid", 3000, 4.2),
		hotel("top", 8000, 4.8),
		hotel("top-twin", 7500, 4.8),
		hotel("cheap", 1500, 3.8),
		hotel("cheap-twin", 1500, 4.0),
	}

	tests := []struct {
		name      string
		interests []string
		want      string
	}{
		{"relaxation picks highest rating", []string{"relaxation"}, "top"},
		{"luxury picks highest rating", []string{"food", "Luxury"}, "top"},
		{"budget picks lowest price", []string{"budget"}, "cheap"},
		{"adventure picks lowest price", []string{"adventure"}, "cheap"},
		{"comfort wins over thrift", []string{"adventure", "relaxation"}, "top"},
		{"no preference keeps provider order", []string{"food"}, "mid"},
		{"empty interests keeps provider order", nil, "mid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason, err := planner.SelectHotel(offers, tt.interests)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestSelectHotelIsIdempotent(t *testing.T) {
	offers := []domain.HotelOffer{hotel("a", 4000, 4.5), hotel("b", 4000, 4.5), hotel("c", 2000, 3.9)}
	for _, interests := range [][]string{{"relaxation"}, {"budget"}, {"culture"}} {
		first, _, err := planner.SelectHotel(offers, interests)
		require.NoError(t, err)
		second, _, err := planner.SelectHotel(offers, interests)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestAffordableFlights(t *testing.T) {
	offers := []domain.FlightOffer{flight("1", 2000), flight("2", 3000), flight("3", 6000)}

	fit := planner.AffordableFlights(offers, 2, domain.Rupees(12000))
	require.Len(t, fit, 2)
	assert.Equal(t, "1", fit[0].ID)
	assert.Equal(t, "2", fit[1].ID)
}

func TestAffordableFlightsFallsBackToCheapestThree(t *testing.T) {
	offers := []domain.FlightOffer{flight("d", 9000), flight("a", 5000), flight("b", 5000), flight("c", 7000)}

	got := planner.AffordableFlights(offers, 1, domain.Rupees(1000))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "d", offers[0].ID, "input must not be reordered")
}
