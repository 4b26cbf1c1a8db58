package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

var errNoJSON = errors.New("no JSON object in model output")

// wireIntent is the shape the model is asked to produce. Numbers may come back quoted.
type wireIntent struct {
	Destination   string       `json:"destination"`
	Origin        string       `json:"origin"`
	Budget        domain.Money `json:"budget"`
	Days          looseInt     `json:"days"`
	Interests     []string     `json:"interests"`
	DepartureDate string       `json:"departure_date"`
	Passengers    looseInt     `json:"passengers"`
}

type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*n = looseInt(f)
	return nil
}

// ParseIntent recovers a TripIntent from model output that may be wrapped in prose or
// code fences. Unparsable dates are dropped rather than failing the whole extraction.
func ParseIntent(raw string) (domain.TripIntent, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return domain.TripIntent{}, err
	}

	var w wireIntent
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return domain.TripIntent{}, fmt.Errorf("unmarshal intent: %w", err)
	}

	out := domain.TripIntent{
		Destination: strings.TrimSpace(w.Destination),
		Origin:      strings.TrimSpace(w.Origin),
		Budget:      max(w.Budget, 0),
		Days:        max(int(w.Days), 0),
		Interests:   domain.MergeInterests(w.Interests, nil),
		Passengers:  max(int(w.Passengers), 0),
	}
	if d, err := domain.ParseDate(w.DepartureDate); err == nil {
		out.DepartureDate = d
	}
	return out, nil
}

// extractObject returns the text between the first "{" and the last "}".
func extractObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || start >= end {
		return "", errNoJSON
	}
	return raw[start : end+1], nil
}

// cleanText strips code fences and surrounding quotes from a free-text answer.
func cleanText(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
