package planner

import (
	"fmt"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

// Budget split, in percent of the total. The remaining 10% is buffer.
const (
	flightSharePct = 40
	tripSharePct   = 90
)

// DefaultBusinessThreshold is the budget from which flights are searched in business class.
var DefaultBusinessThreshold = domain.Rupees(80000)

// Allocate splits total into flight and hotel budgets and a per-night hotel ceiling.
// Flight and hotel together always add up to exactly 90% of total (integer paise);
// rounding remainders stay in the buffer. days must be within 1..domain.MaxTripDays.
func Allocate(total domain.Money, days int) (domain.BudgetAllocation, error) {
	if days <= 0 || days > domain.MaxTripDays {
		return domain.BudgetAllocation{}, fmt.Errorf("%w: got %d", domain.ErrInvalidDays, days)
	}

	flight := total * flightSharePct / 100
	hotel := total*tripSharePct/100 - flight

	return domain.BudgetAllocation{
		Total:         total,
		Flight:        flight,
		Hotel:         hotel,
		HotelPerNight: hotel / domain.Money(days),
	}, nil
}

// CabinFor picks the cabin class for a budget. The threshold is inclusive.
func CabinFor(budget, threshold domain.Money) domain.CabinClass {
	if budget >= threshold {
		return domain.CabinBusiness
	}
	return domain.CabinEconomy
}

// RoundTripCost is what a flight costs for everyone, both ways.
func RoundTripCost(f domain.FlightOffer, passengers int) domain.Money {
	return f.Price * domain.Money(passengers) * 2
}

// StayCost is what a hotel costs for the whole trip.
func StayCost(h domain.HotelOffer, nights int) domain.Money {
	return h.PricePerNight * domain.Money(nights)
}
