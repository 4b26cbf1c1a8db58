package inventory

import (
	"cmp"
	"context"
	_ "embed"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

//go:embed hotels.yaml
var hotelsYAML []byte

const (
	maxHotelResults      = 6
	fallbackHotelCount   = 3
	defaultNightlyBudget = 5000
)

type hotelRecord struct {
	Name      string   `yaml:"name"`
	Category  string   `yaml:"category"`
	BasePrice int64    `yaml:"base_price"`
	Rating    float64  `yaml:"rating"`
	Amenities []string `yaml:"amenities"`

	id string
}

type hotelFile struct {
	Default      string                   `yaml:"default"`
	Destinations map[string][]hotelRecord `yaml:"destinations"`
}

// HotelCatalog is an in-process hotel inventory backed by a static catalog.
type HotelCatalog struct {
	fallback     string
	destinations map[string][]hotelRecord
	jitter       float64

	mu     sync.RWMutex
	offers map[string]domain.HotelOffer
	now    func() time.Time
}

// NewHotelCatalog loads the embedded catalog. jitter is the maximum relative price
// variation applied to each result (0.1 is ±10%); 0 disables it.
func NewHotelCatalog(jitter float64) (*HotelCatalog, error) {
	return LoadHotelCatalog(hotelsYAML, jitter)
}

// LoadHotelCatalog parses a YAML hotel catalog.
func LoadHotelCatalog(data []byte, jitter float64) (*HotelCatalog, error) {
	if jitter < 0 || jitter >= 1 {
		return nil, fmt.Errorf("hotel price jitter %v out of range [0,1)", jitter)
	}

	var f hotelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse hotel catalog: %w", err)
	}

	dest := make(map[string][]hotelRecord, len(f.Destinations))
	for name, hotels := range f.Destinations {
		key := normalizeCity(name)
		for i := range hotels {
			hotels[i].id = fmt.Sprintf("HTL-%s-%02d", strings.ToUpper(key), i+1)
		}
		dest[key] = hotels
	}

	fallback := normalizeCity(f.Default)
	if len(dest[fallback]) == 0 {
		return nil, fmt.Errorf("hotel catalog: default destination %q has no hotels", f.Default)
	}

	return &HotelCatalog{
		fallback:     fallback,
		destinations: dest,
		jitter:       jitter,
		offers:       make(map[string]domain.HotelOffer),
		now:          time.Now,
	}, nil
}

// SearchHotels filters the destination's hotels to 1.2x the nightly budget, ranks them
// by the traveller's interests and returns at most six. Jittered prices of filtered
// hotels never exceed 1.2x the budget.
func (c *HotelCatalog) SearchHotels(ctx context.Context, crit domain.HotelCriteria) ([]domain.HotelOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hotels, ok := c.destinations[normalizeCity(crit.Destination)]
	if !ok {
		hotels = c.destinations[c.fallback]
	}

	ceiling := crit.BudgetPerNight
	if ceiling <= 0 {
		ceiling = domain.Rupees(defaultNightlyBudget)
	}

	limit := ceiling * 6 / 5
	var fit []hotelRecord
	for _, h := range hotels {
		if domain.Rupees(h.BasePrice)*5 <= ceiling*6 {
			fit = append(fit, h)
		}
	}
	if len(fit) == 0 {
		// over-budget fallback; prices are not clamped
		limit = 0
		fit = slices.Clone(hotels)
		slices.SortStableFunc(fit, func(a, b hotelRecord) int { return cmp.Compare(a.BasePrice, b.BasePrice) })
		fit = fit[:min(fallbackHotelCount, len(fit))]
	}

	slices.SortStableFunc(fit, rankFor(crit.Interests))
	fit = fit[:min(maxHotelResults, len(fit))]

	offers := make([]domain.HotelOffer, 0, len(fit))
	for _, h := range fit {
		offers = append(offers, c.offer(h, crit, limit))
	}

	c.mu.Lock()
	for _, o := range offers {
		c.offers[o.ID] = o
	}
	c.mu.Unlock()

	return offers, nil
}

// rankFor mirrors the provider's own ordering, which is separate from the planner's choice.
func rankFor(interests []string) func(a, b hotelRecord) int {
	switch {
	case domain.HasAnyInterest(interests, "luxury", "relaxation"):
		return func(a, b hotelRecord) int { return cmp.Compare(b.Rating, a.Rating) }
	case domain.HasAnyInterest(interests, "budget", "backpacking"):
		return func(a, b hotelRecord) int { return cmp.Compare(a.BasePrice, b.BasePrice) }
	default:
		score := func(h hotelRecord) float64 { return h.Rating*100 - float64(h.BasePrice) }
		return func(a, b hotelRecord) int { return cmp.Compare(score(b), score(a)) }
	}
}

// offer prices h with jitter, capped at limit when limit is positive.
func (c *HotelCatalog) offer(h hotelRecord, crit domain.HotelCriteria, limit domain.Money) domain.HotelOffer {
	price := float64(h.BasePrice)
	if c.jitter > 0 {
		price *= 1 + (rand.Float64()*2-1)*c.jitter
	}
	perNight := domain.Rupees(int64(math.Round(price)))
	if limit > 0 && perNight > limit {
		perNight = limit
	}

	r := seededRand(h.id)
	checkIn, checkOut := crit.CheckIn.String(), crit.CheckOut.String()
	if checkIn == "" {
		checkIn = "14:00"
	}
	if checkOut == "" {
		checkOut = "11:00"
	}

	return domain.HotelOffer{
		ID:                 h.id,
		Name:               h.Name,
		Category:           h.Category,
		Rating:             h.Rating,
		PricePerNight:      perNight,
		Currency:           domain.Currency,
		Location:           titleCity(crit.Destination),
		Amenities:          slices.Clone(h.Amenities),
		AvailableRooms:     2 + r.IntN(9),
		DistanceFromCenter: fmt.Sprintf("%.1f km", 0.5+r.Float64()*4.5),
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		CancellationPolicy: "Free cancellation up to 24 hours before check-in",
	}
}

// BookHotel books a previously returned offer. Every call creates a new booking.
func (c *HotelCatalog) BookHotel(ctx context.Context, offerID string, d domain.HotelBookingDetails) (*domain.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Passenger.FullName() == "" {
		return nil, fmt.Errorf("book hotel %s: guest name is required", offerID)
	}

	c.mu.RLock()
	offer, ok := c.offers[offerID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("hotel offer %s: %w", offerID, domain.ErrNotFound)
	}

	return &domain.Confirmation{
		BookingID:        "HB-" + uuid.NewString(),
		ConfirmationCode: confirmationCode(8),
		Status:           "confirmed",
		Message:          fmt.Sprintf("%s booking successful! Confirmation email sent.", offer.Name),
		OfferID:          offer.ID,
		GuestName:        d.Passenger.FullName(),
		CheckIn:          d.CheckIn,
		CheckOut:         d.CheckOut,
		TotalAmount:      d.TotalAmount,
		BookedAt:         c.now(),
	}, nil
}

func normalizeCity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func titleCity(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
