package llm

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

// MockLLM is a rule-based TextOracle for local runs and tests. It understands the
// phrasings travellers commonly use and never calls a network service.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

var knownCities = []string{
	"goa", "mumbai", "delhi", "new delhi", "bangalore", "bengaluru", "jaipur", "udaipur",
	"kerala", "kochi", "manali", "shimla", "rishikesh", "agra", "varanasi", "chennai",
	"hyderabad", "kolkata", "pune", "leh", "ladakh", "darjeeling", "andaman", "pondicherry",
}

type cityPattern struct {
	name string
	re   *regexp.Regexp
}

var cityPatterns = func() []cityPattern {
	out := make([]cityPattern, 0, len(knownCities))
	for _, c := range knownCities {
		out = append(out, cityPattern{name: c, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(c) + `\b`)})
	}
	return out
}()

var (
	reDate               = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	reOrigin             = regexp.MustCompile(`\bfrom\s+([a-z]+(?:\s+delhi)?)\b`)
	reGoTo               = regexp.MustCompile(`\b(?:to|visit|visiting|explore)\s+([a-z]+)\b`)
	reDays               = regexp.MustCompile(`\b(\d{1,3})\s*-?\s*(?:days?|nights?)\b`)
	reWeeks              = regexp.MustCompile(`\b(\d{1,2})\s*weeks?\b`)
	reBudgetUnit         = regexp.MustCompile(`(?:₹|\brs\.?|\binr)?\s*(\d[\d,]*(?:\.\d+)?)\s*(k|lakhs?|lacs?|l)\b`)
	reBudgetMark         = regexp.MustCompile(`(?:₹|\brs\.?\s*|\binr\s*)(\d[\d,]*(?:\.\d+)?)|(\d[\d,]*(?:\.\d+)?)\s*(?:rupees|inr|rs)\b`)
	reNumber             = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	rePassengers         = regexp.MustCompile(`\b(\d{1,2})\s*(?:people|persons|passengers|travell?ers|adults|of us)\b`)
	reFamilyOf           = regexp.MustCompile(`\bfamily of\s+(\d{1,2})\b`)
	reCouple             = regexp.MustCompile(`\b(?:couple|my (?:wife|husband|partner|girlfriend|boyfriend))\b`)
	reSolo               = regexp.MustCompile(`\b(?:solo|alone|by myself)\b`)
	destinationStopWords = map[string]bool{
		"go": true, "travel": true, "visit": true, "plan": true, "the": true, "a": true, "see": true,
		"explore": true, "book": true, "fly": true, "spend": true, "stay": true, "get": true, "be": true,
	}
)

var interestPatterns = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"relaxation", regexp.MustCompile(`\b(?:relax\w*|spa|chill\w*|peaceful|unwind|beach\w*)\b`)},
	{"adventure", regexp.MustCompile(`\b(?:adventur\w*|trek\w*|hik\w*|diving|scuba|rafting|thrill\w*|paraglid\w*)\b`)},
	{"food", regexp.MustCompile(`\b(?:\w*food\w*|cuisine|eat\w*|culinary)\b`)},
	{"culture", regexp.MustCompile(`\b(?:cultur\w*|histor\w*|heritage|museums?|temples?|forts?|palaces?)\b`)},
	{"luxury", regexp.MustCompile(`\b(?:luxur\w*|premium|5-star|five star)\b`)},
	{"budget", regexp.MustCompile(`\b(?:cheap\w*|backpack\w*|affordable|on a budget|budget[- ](?:friendly|trip|travel))\b`)},
	{"nightlife", regexp.MustCompile(`\b(?:nightlife|part(?:y|ies)|clubs?|clubbing|bars?)\b`)},
	{"shopping", regexp.MustCompile(`\b(?:shopping|shop|markets?|bazaars?)\b`)},
}

// ExtractIntent returns only the fields the message states.
func (m *MockLLM) ExtractIntent(ctx context.Context, message string, _ domain.TripIntent) (domain.TripIntent, error) {
	if err := ctx.Err(); err != nil {
		return domain.TripIntent{}, &domain.OracleError{Op: "extract_intent", Err: err}
	}

	text := strings.ToLower(message)
	var out domain.TripIntent

	if d := reDate.FindStringSubmatch(text); d != nil {
		if date, err := domain.ParseDate(d[1]); err == nil {
			out.DepartureDate = date
		}
		text = reDate.ReplaceAllString(text, " ")
	}

	if o := reOrigin.FindStringSubmatch(text); o != nil {
		out.Origin = titleCase(o[1])
	}
	out.Destination = extractDestination(text, strings.ToLower(out.Origin))

	if d := reDays.FindStringSubmatch(text); d != nil {
		out.Days, _ = strconv.Atoi(d[1])
		text = strings.Replace(text, d[0], " ", 1)
	} else if w := reWeeks.FindStringSubmatch(text); w != nil {
		n, _ := strconv.Atoi(w[1])
		out.Days = n * 7
	} else if strings.Contains(text, "a week") {
		out.Days = 7
	} else if strings.Contains(text, "weekend") {
		out.Days = 2
	}

	if p := rePassengers.FindStringSubmatch(text); p != nil {
		out.Passengers, _ = strconv.Atoi(p[1])
		text = strings.Replace(text, p[0], " ", 1)
	} else if p := reFamilyOf.FindStringSubmatch(text); p != nil {
		out.Passengers, _ = strconv.Atoi(p[1])
		text = strings.Replace(text, p[0], " ", 1)
	} else if reCouple.MatchString(text) {
		out.Passengers = 2
	} else if reSolo.MatchString(text) {
		out.Passengers = 1
	}

	out.Budget = extractBudget(text)
	out.Interests = extractInterests(text)
	return out, nil
}

func extractDestination(text, origin string) string {
	best, bestAt := "", -1
	for _, city := range cityPatterns {
		if origin != "" && strings.Contains(origin, city.name) {
			continue
		}
		for _, loc := range city.re.FindAllStringIndex(text, -1) {
			if isOriginAt(text, loc[0]) {
				continue
			}
			if bestAt == -1 || loc[0] < bestAt {
				best, bestAt = city.name, loc[0]
			}
			break
		}
	}
	if best != "" {
		return titleCase(best)
	}

	for _, m := range reGoTo.FindAllStringSubmatch(text, -1) {
		if w := m[1]; !destinationStopWords[w] && w != origin {
			return titleCase(w)
		}
	}
	return ""
}

func isOriginAt(text string, at int) bool {
	return strings.HasSuffix(strings.TrimRightFunc(text[:at], unicode.IsSpace), "from")
}

func extractBudget(text string) domain.Money {
	if m := reBudgetUnit.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			switch {
			case m[2] == "k":
				return domain.FromFloat(v * 1_000)
			default:
				return domain.FromFloat(v * 100_000)
			}
		}
	}
	if m := reBudgetMark.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, ok := parseAmount(raw); ok {
			return domain.FromFloat(v)
		}
	}
	for _, n := range reNumber.FindAllString(text, -1) {
		if v, ok := parseAmount(n); ok && v >= 1000 {
			return domain.FromFloat(v)
		}
	}
	return 0
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v, err == nil && v > 0
}

func extractInterests(text string) []string {
	type hit struct {
		tag string
		at  int
	}
	var hits []hit
	for _, p := range interestPatterns {
		if loc := p.re.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{p.tag, loc[0]})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return a.at - b.at })

	var tags []string
	for _, h := range hits {
		tags = append(tags, h.tag)
	}
	return tags
}

func (m *MockLLM) NextQuestion(_ context.Context, intent domain.TripIntent, field domain.Field) (string, error) {
	switch field {
	case domain.FieldDestination:
		return "Where would you like to go? Tell me the city you have in mind.", nil
	case domain.FieldBudget:
		if intent.Destination != "" {
			return fmt.Sprintf("%s sounds wonderful! What's your total budget for the trip, in INR?", intent.Destination), nil
		}
		return "What's your total budget for the trip, in INR?", nil
	case domain.FieldDays:
		if intent.Destination != "" {
			return fmt.Sprintf("How many days would you like to spend in %s?", intent.Destination), nil
		}
		return "How many days will the trip last?", nil
	case domain.FieldInterests:
		return "What do you enjoy most when travelling: relaxation, adventure, food or culture?", nil
	default:
		return "", &domain.OracleError{Op: "next_question", Err: fmt.Errorf("unknown field %q", field)}
	}
}

func (m *MockLLM) Summarize(_ context.Context, plan *domain.Plan) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %d-day trip to %s is ready. You fly %s %s from %s on %s and stay at %s (%.1f stars)",
		plan.Days, plan.Destination, plan.Flight.Airline, plan.Flight.FlightNumber, plan.Origin,
		plan.DepartureDate, plan.Hotel.Name, plan.Hotel.Rating)
	if plan.SelectionReason != "" {
		fmt.Fprintf(&b, ", %s", plan.SelectionReason)
	}
	b.WriteString(". ")
	if plan.OverBudget() {
		fmt.Fprintf(&b, "The total of %s is %s over your %s budget, so consider a shorter stay.",
			plan.TotalCost, -plan.RemainingBudget, plan.Budget)
	} else {
		fmt.Fprintf(&b, "The total comes to %s, leaving %s of your %s budget.",
			plan.TotalCost, plan.RemainingBudget, plan.Budget)
	}
	return b.String(), nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
