package conversation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/adapters/inventory"
	"github.com/PabloGalante/tripwise-agent/internal/adapters/llm"
	"github.com/PabloGalante/tripwise-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/tripwise-agent/internal/app/conversation"
	"github.com/PabloGalante/tripwise-agent/internal/app/planner"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordedEvents) Publish(_ context.Context, evt domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc      *conversation.Service
	plans    *memory.PlanStore
	bookings *memory.BookingStore
	events   *recordedEvents
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	oracle := llm.NewMockLLM()
	hotels, err := inventory.NewHotelCatalog(0)
	require.NoError(t, err)

	p := planner.New(inventory.NewFlightCatalog(), hotels, oracle, planner.Options{})
	f := fixture{
		plans:    memory.NewPlanStore(),
		bookings: memory.NewBookingStore(),
		events:   &recordedEvents{},
	}
	f.svc = conversation.NewService(
		conversation.NewMachine(oracle, time.Second),
		p,
		conversation.Stores{
			Sessions: memory.NewSessionStore(),
			Messages: memory.NewMessageStore(),
			Plans:    f.plans,
			Bookings: f.bookings,
		},
		f.events,
	)
	return f
}

func TestStartSessionAndSendMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{
		UserID: domain.UserID("test-user"),
	})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if out.Session.ID == "" {
		t.Fatalf("expected session id, got empty")
	}

	reply, err := f.svc.SendMessage(ctx, conversation.SendMessageInput{
		SessionID: out.Session.ID,
		UserID:    out.Session.UserID,
		Text:      "I want to go to Goa",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if reply.AgentMessage == nil || reply.AgentMessage.Text == "" {
		t.Fatalf("expected non-empty agent reply")
	}
	if reply.Ready {
		t.Fatalf("expected session to still be collecting")
	}
	if reply.Session.Title != "Trip to Goa" {
		t.Fatalf("unexpected title %q", reply.Session.Title)
	}
}

func TestSessionConversationToBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u1"})
	require.NoError(t, err)
	id := out.Session.ID

	_, err = f.svc.PlanSession(ctx, id, "u1")
	assert.ErrorIs(t, err, domain.ErrNotReady)

	for _, text := range []string{"I want to go to Goa", "my budget is 50k", "3 days, mostly relaxing"} {
		_, err := f.svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: id, UserID: "u1", Text: text})
		require.NoError(t, err)
	}

	session, msgs, err := f.svc.GetSessionTimeline(ctx, id, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.StateReady, session.State)
	assert.Len(t, msgs, 7)
	assert.Equal(t, conversation.ReadyMessage, msgs[6].Text)
	assert.Equal(t, []string{"relaxation"}, session.Intent.Interests)

	plan, err := f.svc.PlanSession(ctx, id, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Taj Exotica", plan.Hotel.Name)

	session, msgs, err = f.svc.GetSessionTimeline(ctx, id, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePlanned, session.State)
	assert.Equal(t, plan.ID, session.PlanID)
	assert.Equal(t, plan.Summary, msgs[len(msgs)-1].Text)

	stored, err := f.plans.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.TotalCost, stored.TotalCost)

	res, err := f.svc.BookPlan(ctx, plan, domain.PassengerDetails{FirstName: "Asha", LastName: "Rao"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, res.Status)

	bookings, err := f.bookings.ListBookings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	assert.Equal(t, []string{domain.EventTripPlanned, domain.EventTripBooked}, f.events.types())
	assert.Equal(t, id, f.events.events[0].SessionID)
}

func TestSendMessageUnknownSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SendMessage(context.Background(), conversation.SendMessageInput{SessionID: "nope", Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendMessageOtherUsersSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "owner"})
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: out.Session.ID, UserID: "intruder", Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionReadsCheckOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "owner"})
	require.NoError(t, err)
	id := out.Session.ID

	_, _, err = f.svc.GetSessionTimeline(ctx, id, "intruder", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.PlanSession(ctx, id, "intruder")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, msgs, err := f.svc.GetSessionTimeline(ctx, id, "owner", 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestConcurrentTurnsKeepEveryInterest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u1"})
	require.NoError(t, err)
	id := out.Session.ID

	texts := []string{"a relaxing spa", "some trekking", "street food", "museums", "clubs at night", "local markets"}
	var wg sync.WaitGroup
	for _, text := range texts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: id, UserID: "u1", Text: text})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	session, msgs, err := f.svc.GetSessionTimeline(ctx, id, "u1", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"relaxation", "adventure", "food", "culture", "nightlife", "shopping"},
		session.Intent.Interests)
	assert.Len(t, msgs, 1+2*len(texts))
}

func TestStatelessChatAndPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	turn, err := f.svc.Chat(ctx, conversation.ChatInput{Message: "Jaipur for 4 days, budget 60000, love history"})
	require.NoError(t, err)
	require.True(t, turn.Ready)
	assert.Len(t, turn.History, 2)

	plan, err := f.svc.CreatePlan(ctx, turn.Intent)
	require.NoError(t, err)
	assert.Equal(t, "Jaipur", plan.Destination)
	assert.Len(t, plan.Itinerary, 4)
	assert.Equal(t, "Amber Fort visit", plan.Itinerary[0].Activities["morning"])

	_, err = f.svc.CreatePlan(ctx, domain.TripIntent{Destination: "Jaipur"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, []string{domain.EventTripPlanned}, f.events.types())
}
