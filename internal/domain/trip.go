package domain

import "strings"

// Field names a TripIntent attribute the conversation can ask about.
type Field string

const (
	FieldDestination Field = "destination"
	FieldBudget      Field = "budget"
	FieldDays        Field = "days"
	FieldInterests   Field = "interests"
)

// MaxTripDays is the longest trip that can be planned.
const MaxTripDays = 365

// questionOrder is the priority in which missing fields are asked for.
var questionOrder = []Field{FieldDestination, FieldBudget, FieldDays, FieldInterests}

// TripIntent holds the structured trip parameters extracted so far.
// A zero field means "not known yet"; defaults are only applied at plan time.
type TripIntent struct {
	Destination   string   `json:"destination,omitempty"`
	Origin        string   `json:"origin,omitempty"`
	Budget        Money    `json:"budget,omitempty"`
	Days          int      `json:"days,omitempty"`
	Interests     []string `json:"interests,omitempty"`
	DepartureDate Date     `json:"departure_date,omitzero"`
	Passengers    int      `json:"passengers,omitempty"`
}

// Merge returns a copy of t updated with every non-empty field of update.
// Interests accumulate as a union and never shrink.
func (t TripIntent) Merge(update TripIntent) TripIntent {
	out := t
	out.Interests = MergeInterests(t.Interests, update.Interests)

	if v := strings.TrimSpace(update.Destination); v != "" {
		out.Destination = v
	}
	if v := strings.TrimSpace(update.Origin); v != "" {
		out.Origin = v
	}
	if update.Budget > 0 {
		out.Budget = update.Budget
	}
	if update.Days > 0 {
		out.Days = update.Days
	}
	if !update.DepartureDate.IsZero() {
		out.DepartureDate = update.DepartureDate
	}
	if update.Passengers > 0 {
		out.Passengers = update.Passengers
	}
	return out
}

// Ready reports whether enough is known to synthesize a plan.
// Interests are deliberately not part of readiness.
func (t TripIntent) Ready() bool {
	return t.Has(FieldDestination) && t.Has(FieldBudget) && t.Has(FieldDays)
}

// Has reports whether field f is set.
func (t TripIntent) Has(f Field) bool {
	switch f {
	case FieldDestination:
		return strings.TrimSpace(t.Destination) != ""
	case FieldBudget:
		return t.Budget > 0
	case FieldDays:
		return t.Days > 0
	case FieldInterests:
		return len(t.Interests) > 0
	default:
		return false
	}
}

// MissingFields lists unset fields in question priority order.
func (t TripIntent) MissingFields() []Field {
	var missing []Field
	for _, f := range questionOrder {
		if !t.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// NextMissing returns the highest-priority unset field.
func (t TripIntent) NextMissing() (Field, bool) {
	missing := t.MissingFields()
	if len(missing) == 0 {
		return "", false
	}
	return missing[0], true
}

// MergeInterests returns the ordered, de-duplicated union of a and b.
// Tags are normalized to lower case.
func MergeInterests(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, tag := range list {
			tag = NormalizeInterest(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

func NormalizeInterest(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// HasAnyInterest reports whether interests intersects tags.
func HasAnyInterest(interests []string, tags ...string) bool {
	for _, i := range interests {
		i = NormalizeInterest(i)
		for _, tag := range tags {
			if i == tag {
				return true
			}
		}
	}
	return false
}
