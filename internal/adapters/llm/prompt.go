package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

const baseSystemPrompt = `
You are "Tripwise", a travel planning assistant for trips within India.

Your role:
- You help the traveller describe the trip they want: where, for how long, with what budget, and what they enjoy.
- Budgets are always in Indian rupees (INR).
- You never invent bookings, prices or availability. Those come from the booking system.

General style guidelines:
- Answer in the SAME LANGUAGE as the traveller.
- Be concise and friendly.
`

const extractionInstructions = `
Task: extract trip details from the traveller's latest message.

Return ONLY a JSON object (no markdown, no code fences) with any of these keys:
{
  "destination": "city name",
  "origin": "departure city, only if the traveller says where they leave from",
  "budget": total budget in INR as a number (e.g. "50k" is 50000, "1.5 lakh" is 150000),
  "days": number of days as an integer,
  "interests": ["relaxation", "adventure", "food", "culture", "luxury", "budget", "nightlife", "shopping"],
  "departure_date": "YYYY-MM-DD",
  "passengers": number of travellers as an integer
}

Rules:
- Include ONLY keys the latest message actually states. Omit everything else.
- Do not repeat details that are already known unless the message changes them.
- If nothing is found, return {}.
`

const questionInstructions = `
Task: ask the traveller ONE short question to learn the missing detail named below.
Acknowledge what is already known in a few words. Do not ask about anything else.
Return only the question text.
`

const summaryInstructions = `
Task: write a warm 3-4 sentence overview of the trip plan below for the traveller.
Mention the flight, the hotel and why it fits their interests, and the total cost against the budget.
Use only the facts given. Return plain text, no markdown.
`

// Prompt represents the system prompt + the content to send as "user".
type Prompt struct {
	System string
	User   string
}

// BuildExtractionPrompt asks for the fields stated in message, given what is already known.
func BuildExtractionPrompt(message string, current domain.TripIntent) Prompt {
	var user strings.Builder
	if known := knownJSON(current); known != "" {
		user.WriteString("Already known:\n")
		user.WriteString(known)
		user.WriteString("\n\n")
	}
	user.WriteString("Latest traveller message:\n")
	user.WriteString(message)

	return Prompt{
		System: baseSystemPrompt + "\n" + extractionInstructions,
		User:   user.String(),
	}
}

// BuildQuestionPrompt asks for a single question about field.
func BuildQuestionPrompt(intent domain.TripIntent, field domain.Field) Prompt {
	var user strings.Builder
	if known := knownJSON(intent); known != "" {
		user.WriteString("Already known:\n")
		user.WriteString(known)
		user.WriteString("\n\n")
	}
	fmt.Fprintf(&user, "Missing detail: %s (%s)", field, fieldHint(field))

	return Prompt{
		System: baseSystemPrompt + "\n" + questionInstructions,
		User:   user.String(),
	}
}

// BuildSummaryPrompt lays out the plan facts for the overview.
func BuildSummaryPrompt(plan *domain.Plan) Prompt {
	var user strings.Builder
	fmt.Fprintf(&user, "Trip: %d days from %s to %s, %s to %s, %d traveller(s)\n",
		plan.Days, plan.Origin, plan.Destination, plan.DepartureDate, plan.ReturnDate, plan.Passengers)
	fmt.Fprintf(&user, "Interests: %s\n", strings.Join(plan.Interests, ", "))
	fmt.Fprintf(&user, "Flight: %s %s, %s class, %s round trip for everyone\n",
		plan.Flight.Airline, plan.Flight.FlightNumber, plan.CabinClass, plan.FlightCost)
	fmt.Fprintf(&user, "Hotel: %s (%s, %.1f stars), %s per night, %s in total\n",
		plan.Hotel.Name, plan.Hotel.Category, plan.Hotel.Rating, plan.Hotel.PricePerNight, plan.HotelCost)
	if plan.SelectionReason != "" {
		fmt.Fprintf(&user, "Why this hotel: %s\n", plan.SelectionReason)
	}
	fmt.Fprintf(&user, "Total cost: %s, budget: %s, remaining: %s\n", plan.TotalCost, plan.Budget, plan.RemainingBudget)
	for _, d := range plan.Itinerary {
		fmt.Fprintf(&user, "Day %d: %s / %s / %s\n", d.Day, d.Activities["morning"], d.Activities["afternoon"], d.Activities["evening"])
	}

	return Prompt{
		System: baseSystemPrompt + "\n" + summaryInstructions,
		User:   user.String(),
	}
}

func fieldHint(f domain.Field) string {
	switch f {
	case domain.FieldDestination:
		return "which city they want to visit"
	case domain.FieldBudget:
		return "their total budget in INR"
	case domain.FieldDays:
		return "how many days the trip lasts"
	case domain.FieldInterests:
		return "what they enjoy, e.g. relaxation, adventure, food or culture"
	default:
		return string(f)
	}
}

func knownJSON(intent domain.TripIntent) string {
	b, err := json.Marshal(intent)
	if err != nil || string(b) == "{}" {
		return ""
	}
	return string(b)
}
