package planner

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

var (
	comfortInterests = []string{"luxury", "relaxation"}
	thriftInterests  = []string{"budget", "adventure"}
)

// fallbackFlightCount is how many of the cheapest flights are kept when none fit the budget.
const fallbackFlightCount = 3

// SelectFlight picks the cheapest flight. Offers arrive sorted by price, so this is the head.
func SelectFlight(offers []domain.FlightOffer) (domain.FlightOffer, error) {
	if len(offers) == 0 {
		return domain.FlightOffer{}, fmt.Errorf("flight: %w", domain.ErrNoOptionsAvailable)
	}
	return offers[0], nil
}

// SelectHotel applies the interest-driven rule and explains the choice:
//   - luxury or relaxation: highest rating
//   - budget or adventure: lowest price per night
//   - otherwise: the provider's first offer
//
// Ties keep input order.
func SelectHotel(offers []domain.HotelOffer, interests []string) (domain.HotelOffer, string, error) {
	if len(offers) == 0 {
		return domain.HotelOffer{}, "", fmt.Errorf("hotel: %w", domain.ErrNoOptionsAvailable)
	}

	switch {
	case domain.HasAnyInterest(interests, comfortInterests...):
		best := offers[0]
		for _, h := range offers[1:] {
			if h.Rating > best.Rating {
				best = h
			}
		}
		return best, fmt.Sprintf("chosen for your %s preference: highest rated option", matched(interests, comfortInterests)), nil

	case domain.HasAnyInterest(interests, thriftInterests...):
		best := offers[0]
		for _, h := range offers[1:] {
			if h.PricePerNight < best.PricePerNight {
				best = h
			}
		}
		return best, fmt.Sprintf("chosen for your %s preference: lowest nightly price", matched(interests, thriftInterests)), nil

	default:
		return offers[0], "best balance of price and rating", nil
	}
}

// AffordableFlights keeps the flights whose round trip fits the flight budget. When none
// fit, it degrades to the cheapest few instead of failing.
func AffordableFlights(offers []domain.FlightOffer, passengers int, budget domain.Money) []domain.FlightOffer {
	var fit []domain.FlightOffer
	for _, f := range offers {
		if RoundTripCost(f, passengers) <= budget {
			fit = append(fit, f)
		}
	}
	if len(fit) > 0 {
		return fit
	}

	cheapest := slices.Clone(offers)
	slices.SortStableFunc(cheapest, func(a, b domain.FlightOffer) int {
		return cmp.Compare(a.Price, b.Price)
	})
	return cheapest[:min(fallbackFlightCount, len(cheapest))]
}

// matched returns the first of tags present in interests.
func matched(interests, tags []string) string {
	for _, i := range interests {
		i = domain.NormalizeInterest(i)
		if slices.Contains(tags, i) {
			return i
		}
	}
	return tags[0]
}
