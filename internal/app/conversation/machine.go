package conversation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
	"github.com/PabloGalante/tripwise-agent/internal/observability"
)

// ReadyMessage is the reply once destination, budget and days are all known.
const ReadyMessage = "Perfect! I have everything I need to plan your trip. Let me find the best flights, hotel and itinerary for you."

const DefaultOracleTimeout = 20 * time.Second

var fallbackQuestions = map[domain.Field]string{
	domain.FieldDestination: "Where would you like to travel?",
	domain.FieldBudget:      "What's your total budget for this trip (in INR)?",
	domain.FieldDays:        "How many days are you planning to travel?",
	domain.FieldInterests:   "What are you interested in? (e.g. relaxation, adventure, food, culture)",
}

// FallbackQuestion is the fixed question used when the language model cannot phrase one.
func FallbackQuestion(f domain.Field) string {
	if q, ok := fallbackQuestions[f]; ok {
		return q
	}
	return fmt.Sprintf("Could you tell me your %s?", f)
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	Response string
	Intent   domain.TripIntent
	Ready    bool
	State    domain.ConversationState
	Missing  []domain.Field
	History  []domain.Turn
}

// Machine advances a conversation by one turn. It keeps no state between calls;
// the caller owns history and intent.
type Machine struct {
	oracle  domain.TextOracle
	timeout time.Duration
	now     func() time.Time
}

func NewMachine(oracle domain.TextOracle, timeout time.Duration) *Machine {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	return &Machine{
		oracle:  oracle,
		timeout: timeout,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to stamp turns.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	if now != nil {
		m.now = now
	}
	return m
}

// Advance merges what the message says into intent and produces the reply. Oracle
// failures never fail the turn: extraction keeps the prior intent and questions fall
// back to fixed wording. The input history is not modified.
func (m *Machine) Advance(ctx context.Context, message string, history []domain.Turn, intent domain.TripIntent) (*TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrEmptyMessage
	}

	log := observability.LoggerFromContext(ctx)

	turns := slices.Clone(history)
	turns = append(turns, domain.Turn{Role: domain.RoleUser, Content: message, Timestamp: m.now()})

	merged := intent
	extracted, err := m.extract(ctx, message, intent)
	if err != nil {
		log.Warn("intent extraction failed, keeping previous intent", "error", err)
	} else {
		merged = intent.Merge(extracted)
	}

	res := &TurnResult{
		Intent:  merged,
		Ready:   merged.Ready(),
		Missing: merged.MissingFields(),
	}

	if res.Ready {
		res.State = domain.StateReady
		res.Response = ReadyMessage
	} else {
		res.State = domain.StateCollecting
		field, _ := merged.NextMissing()
		res.Response = m.question(ctx, merged, field)
	}

	res.History = append(turns, domain.Turn{Role: domain.RoleAssistant, Content: res.Response, Timestamp: m.now()})

	log.Info("conversation advanced",
		"ready", res.Ready,
		"missing", res.Missing,
		"history_len", len(res.History),
	)
	return res, nil
}

func (m *Machine) extract(ctx context.Context, message string, intent domain.TripIntent) (domain.TripIntent, error) {
	octx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.oracle.ExtractIntent(octx, message, intent)
}

func (m *Machine) question(ctx context.Context, intent domain.TripIntent, field domain.Field) string {
	octx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	q, err := m.oracle.NextQuestion(octx, intent, field)
	if err != nil || strings.TrimSpace(q) == "" {
		observability.LoggerFromContext(ctx).Warn("question generation failed, using fallback", "field", field, "error", err)
		return FallbackQuestion(field)
	}
	return strings.TrimSpace(q)
}
