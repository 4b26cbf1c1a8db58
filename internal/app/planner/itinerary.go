package planner

import (
	_ "embed"
	"fmt"
	"maps"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

// DefaultInterest is the primary interest used when the traveller named none.
const DefaultInterest = "relaxation"

//go:embed itineraries.yaml
var itinerariesYAML []byte

type dayTemplate map[string]string

type templateCatalog struct {
	Default      []dayTemplate                       `yaml:"default"`
	Destinations map[string]map[string][]dayTemplate `yaml:"destinations"`
}

// Composer turns a destination, length and primary interest into a day-by-day schedule.
type Composer struct {
	fallback     []dayTemplate
	destinations map[string]map[string][]dayTemplate
}

// LoadComposer parses a YAML template catalog.
func LoadComposer(data []byte) (*Composer, error) {
	var cat templateCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse itinerary templates: %w", err)
	}
	if len(cat.Default) == 0 {
		return nil, fmt.Errorf("itinerary templates: default template is empty")
	}

	dest := make(map[string]map[string][]dayTemplate, len(cat.Destinations))
	for name, byInterest := range cat.Destinations {
		inner := make(map[string][]dayTemplate, len(byInterest))
		for interest, days := range byInterest {
			if len(days) == 0 {
				continue
			}
			inner[domain.NormalizeInterest(interest)] = days
		}
		dest[normalizeDestination(name)] = inner
	}

	return &Composer{fallback: cat.Default, destinations: dest}, nil
}

var defaultComposer = sync.OnceValues(func() (*Composer, error) {
	return LoadComposer(itinerariesYAML)
})

// DefaultComposer returns the composer backed by the embedded template catalog.
// It panics if the embedded catalog is malformed.
func DefaultComposer() *Composer {
	c, err := defaultComposer()
	if err != nil {
		panic(err)
	}
	return c
}

// Compose returns exactly days entries. Templates repeat cyclically when the trip is
// longer than the template: day d uses template (d-1) mod len. Out-of-range lengths
// yield nil.
func (c *Composer) Compose(destination string, days int, interests []string) []domain.DayPlan {
	if days <= 0 || days > domain.MaxTripDays {
		return nil
	}
	templates := c.templatesFor(destination, PrimaryInterest(interests))

	itinerary := make([]domain.DayPlan, 0, days)
	for day := 1; day <= days; day++ {
		tpl := templates[(day-1)%len(templates)]
		itinerary = append(itinerary, domain.DayPlan{
			Day:        day,
			Title:      fmt.Sprintf("Day %d - %s", day, destination),
			Activities: maps.Clone(map[string]string(tpl)),
		})
	}
	return itinerary
}

func (c *Composer) templatesFor(destination, interest string) []dayTemplate {
	byInterest, ok := c.destinations[normalizeDestination(destination)]
	if !ok {
		return c.fallback
	}
	if days, ok := byInterest[interest]; ok {
		return days
	}
	return c.fallback
}

// PrimaryInterest is the first interest, or DefaultInterest when there is none.
func PrimaryInterest(interests []string) string {
	for _, i := range interests {
		if n := domain.NormalizeInterest(i); n != "" {
			return n
		}
	}
	return DefaultInterest
}

func normalizeDestination(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
