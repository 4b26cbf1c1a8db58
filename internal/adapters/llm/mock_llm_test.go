package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/adapters/llm"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

func extract(t *testing.T, msg string) domain.TripIntent {
	t.Helper()
	got, err := llm.NewMockLLM().ExtractIntent(context.Background(), msg, domain.TripIntent{})
	require.NoError(t, err)
	return got
}

func TestMockExtractsFullRequest(t *testing.T) {
	got := extract(t, "I want to go to Goa from Mumbai for 3 days with a budget of 50k, love beaches and seafood")

	assert.Equal(t, "Goa", got.Destination)
	assert.Equal(t, "Mumbai", got.Origin)
	assert.Equal(t, 3, got.Days)
	assert.Equal(t, domain.Rupees(50000), got.Budget)
	assert.Equal(t, []string{"relaxation", "food"}, got.Interests)
}

func TestMockExtractsOnlyStatedFields(t *testing.T) {
	got := extract(t, "I'd like to visit Jaipur")
	assert.Equal(t, domain.TripIntent{Destination: "Jaipur"}, got)

	got = extract(t, "hello there")
	assert.Equal(t, domain.TripIntent{}, got)
}

func TestMockBudgetFormats(t *testing.T) {
	tests := map[string]domain.Money{
		"my budget is ₹75,000":         domain.Rupees(75000),
		"around 1.5 lakh":              domain.Rupees(150000),
		"rs. 40000 max":                domain.Rupees(40000),
		"50000 rupees":                 domain.Rupees(50000),
		"we can spend 60000":           domain.Rupees(60000),
		"2 lakhs for the whole family": domain.Rupees(200000),
	}
	for msg, want := range tests {
		assert.Equal(t, want, extract(t, msg).Budget, msg)
	}
}

func TestMockDaysAndPassengers(t *testing.T) {
	got := extract(t, "a 5 day trip for 4 people")
	assert.Equal(t, 5, got.Days)
	assert.Equal(t, 4, got.Passengers)
	assert.Zero(t, got.Budget, "small numbers are not budgets")

	assert.Equal(t, 14, extract(t, "2 weeks in kerala").Days)
	assert.Equal(t, 7, extract(t, "a week away").Days)
	assert.Equal(t, 2, extract(t, "me and my wife").Passengers)
}

func TestMockDepartureDateIsNotBudget(t *testing.T) {
	got := extract(t, "leaving on 2026-12-20 to Manali")
	assert.Equal(t, "2026-12-20", got.DepartureDate.String())
	assert.Equal(t, "Manali", got.Destination)
	assert.Zero(t, got.Budget)
}

func TestMockUnknownDestination(t *testing.T) {
	got := extract(t, "I want to go to Paris")
	assert.Equal(t, "Paris", got.Destination)
}

func TestMockOriginIsNotDestination(t *testing.T) {
	got := extract(t, "flying from new delhi to goa")
	assert.Equal(t, "New Delhi", got.Origin)
	assert.Equal(t, "Goa", got.Destination)
}

func TestMockNextQuestionMentionsField(t *testing.T) {
	m := llm.NewMockLLM()
	intent := domain.TripIntent{Destination: "Goa"}

	q, err := m.NextQuestion(context.Background(), intent, domain.FieldBudget)
	require.NoError(t, err)
	assert.Contains(t, q, "budget")
	assert.Contains(t, q, "Goa")

	q, err = m.NextQuestion(context.Background(), intent, domain.FieldDays)
	require.NoError(t, err)
	assert.Contains(t, q, "days")

	_, err = m.NextQuestion(context.Background(), intent, domain.Field("mood"))
	assert.ErrorIs(t, err, domain.ErrOracleFailure)
}

func TestMockSummarize(t *testing.T) {
	plan := &domain.Plan{
		Destination:     "Goa",
		Origin:          "Delhi",
		Days:            3,
		Budget:          domain.Rupees(50000),
		TotalCost:       domain.Rupees(31000),
		RemainingBudget: domain.Rupees(19000),
		Flight:          domain.FlightOffer{Airline: "IndiGo", FlightNumber: "6E123"},
		Hotel:           domain.HotelOffer{Name: "Taj Exotica", Rating: 4.8},
	}
	s, err := llm.NewMockLLM().Summarize(context.Background(), plan)
	require.NoError(t, err)
	assert.Contains(t, s, "Taj Exotica")
	assert.Contains(t, s, "INR 19000.00")
}
