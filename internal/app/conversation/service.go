package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
	"github.com/PabloGalante/tripwise-agent/internal/observability"
)

const welcomeMessage = "Hi, I'm Tripwise! Tell me where you'd like to go, for how long and your budget, and I'll plan the trip."

// Planner synthesizes and books plans.
type Planner interface {
	Synthesize(ctx context.Context, intent domain.TripIntent) (*domain.Plan, error)
	Book(ctx context.Context, plan *domain.Plan, passenger domain.PassengerDetails) (*domain.BookingResult, error)
}

// Stores groups the persistence ports the service writes to.
type Stores struct {
	Sessions domain.SessionStore
	Messages domain.MessageStore
	Plans    domain.PlanStore
	Bookings domain.BookingStore
}

type Service struct {
	machine      *Machine
	planner      Planner
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	planStore    domain.PlanStore
	bookingStore domain.BookingStore
	events       domain.EventPublisher
	now          func() time.Time
	locks        sessionLocks
}

// NewService wires the conversation service. events may be nil.
func NewService(machine *Machine, planner Planner, stores Stores, events domain.EventPublisher) *Service {
	return &Service{
		machine:      machine,
		planner:      planner,
		sessionStore: stores.Sessions,
		messageStore: stores.Messages,
		planStore:    stores.Plans,
		bookingStore: stores.Bookings,
		events:       events,
		now:          time.Now,
	}
}

// WithClock replaces the clock used to stamp sessions and messages.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type StartSessionInput struct {
	UserID domain.UserID
	Title  string
}

type StartSessionOutput struct {
	Session *domain.Session
	Welcome *domain.Message
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()

	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)
	log.Info("starting new session")

	session := &domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		UserID:    in.UserID,
		CreatedAt: now,
		UpdatedAt: now,
		Title:     in.Title,
		State:     domain.StateCollecting,
	}

	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	welcome := s.newMessage(session.ID, domain.RoleAssistant, welcomeMessage)
	if err := s.messageStore.AppendMessage(ctx, welcome); err != nil {
		log.Error("failed to append welcome message", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)

	return &StartSessionOutput{
		Session: session,
		Welcome: welcome,
	}, nil
}

type SendMessageInput struct {
	SessionID domain.SessionID
	UserID    domain.UserID
	Text      string
}

type SendMessageOutput struct {
	Session      *domain.Session
	UserMessage  *domain.Message
	AgentMessage *domain.Message
	Ready        bool
	Missing      []domain.Field
}

// SendMessage runs one conversation turn against the session's stored history and intent.
// Turns on the same session are serialized within this Service.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	unlock := s.locks.lock(in.SessionID)
	defer unlock()

	session, err := s.session(ctx, in.SessionID, in.UserID)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithSessionID(ctx, string(session.ID))
	log := observability.LoggerFromContext(ctx).With("user_id", session.UserID)
	log.Info("sending message", "text_len", len(in.Text))

	stored, err := s.messageStore.GetMessagesBySession(ctx, session.ID, 0)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}
	history := make([]domain.Turn, 0, len(stored))
	for _, m := range stored {
		history = append(history, m.Turn())
	}

	turn, err := s.machine.Advance(ctx, in.Text, history, session.Intent)
	if err != nil {
		return nil, err
	}

	userMsg := s.newMessage(session.ID, domain.RoleUser, turn.History[len(turn.History)-2].Content)
	if err := s.messageStore.AppendMessage(ctx, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	agentMsg := s.newMessage(session.ID, domain.RoleAssistant, turn.Response)
	if err := s.messageStore.AppendMessage(ctx, agentMsg); err != nil {
		log.Error("failed to append agent message", "error", err)
		return nil, err
	}

	session.Intent = turn.Intent
	session.State = turn.State
	if session.Title == "" && turn.Intent.Destination != "" {
		session.Title = "Trip to " + turn.Intent.Destination
	}
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	log.Info("send message completed", "ready", turn.Ready)

	return &SendMessageOutput{
		Session:      session,
		UserMessage:  userMsg,
		AgentMessage: agentMsg,
		Ready:        turn.Ready,
		Missing:      turn.Missing,
	}, nil
}

func (s *Service) GetSessionTimeline(
	ctx context.Context,
	sessionID domain.SessionID,
	userID domain.UserID,
	limit int,
) (*domain.Session, []*domain.Message, error) {

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"limit", limit,
	)

	session, err := s.session(ctx, sessionID, userID)
	if err != nil {
		log.Error("failed to get session", "error", err)
		return nil, nil, err
	}

	msgs, err := s.messageStore.GetMessagesBySession(ctx, sessionID, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	log.Info("fetched session timeline", "message_count", len(msgs))

	return session, msgs, nil
}

// PlanSession synthesizes a plan from a ready session and marks it planned.
func (s *Service) PlanSession(ctx context.Context, sessionID domain.SessionID, userID domain.UserID) (*domain.Plan, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.session(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.Intent.Ready() {
		field, _ := session.Intent.NextMissing()
		return nil, fmt.Errorf("session %s still needs %s: %w", session.ID, field, domain.ErrNotReady)
	}

	ctx = observability.WithSessionID(ctx, string(session.ID))
	plan, err := s.createPlan(ctx, session.Intent, session.ID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx)
	if err := s.messageStore.AppendMessage(ctx, s.newMessage(session.ID, domain.RoleAssistant, plan.Summary)); err != nil {
		log.Error("failed to append plan summary", "error", err)
		return nil, err
	}

	session.PlanID = plan.ID
	session.State = domain.StatePlanned
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}
	return plan, nil
}

type ChatInput struct {
	Message string
	History []domain.Turn
	Intent  domain.TripIntent
}

// Chat advances a conversation whose state is held by the caller.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*TurnResult, error) {
	return s.machine.Advance(ctx, in.Message, in.History, in.Intent)
}

// CreatePlan synthesizes, stores and announces a plan.
func (s *Service) CreatePlan(ctx context.Context, intent domain.TripIntent) (*domain.Plan, error) {
	return s.createPlan(ctx, intent, "")
}

func (s *Service) createPlan(ctx context.Context, intent domain.TripIntent, sessionID domain.SessionID) (*domain.Plan, error) {
	log := observability.LoggerFromContext(ctx)

	plan, err := s.planner.Synthesize(ctx, intent)
	if err != nil {
		return nil, err
	}

	if err := s.planStore.SavePlan(ctx, plan); err != nil {
		log.Error("failed to save plan", "plan_id", plan.ID, "error", err)
		return nil, fmt.Errorf("save plan: %w", err)
	}

	s.publish(ctx, domain.Event{
		Type:      domain.EventTripPlanned,
		SessionID: sessionID,
		PlanID:    plan.ID,
		Payload: map[string]any{
			"destination": plan.Destination,
			"days":        plan.Days,
			"total_cost":  plan.TotalCost,
		},
	})
	return plan, nil
}

// BookPlan books a plan and records the outcome, including failed and partial bookings.
func (s *Service) BookPlan(ctx context.Context, plan *domain.Plan, passenger domain.PassengerDetails) (*domain.BookingResult, error) {
	log := observability.LoggerFromContext(ctx)

	res, bookErr := s.planner.Book(ctx, plan, passenger)
	if res == nil {
		return nil, bookErr
	}

	if err := s.bookingStore.SaveBooking(ctx, res); err != nil {
		log.Error("failed to save booking", "booking_id", res.ID, "error", err)
		if bookErr == nil {
			return res, fmt.Errorf("save booking: %w", err)
		}
	}

	s.publish(ctx, domain.Event{
		Type:      domain.EventTripBooked,
		PlanID:    res.PlanID,
		BookingID: res.ID,
		Payload: map[string]any{
			"status":      res.Status,
			"compensated": res.Compensated,
		},
	})
	return res, bookErr
}

// publish logs delivery errors and drops them.
func (s *Service) publish(ctx context.Context, evt domain.Event) {
	if s.events == nil {
		return
	}
	evt.OccurredAt = s.now()
	if err := s.events.Publish(ctx, evt); err != nil {
		observability.LoggerFromContext(ctx).Warn("event publish failed", "type", evt.Type, "error", err)
	}
}

// session loads a session and checks it belongs to userID when one is given.
func (s *Service) session(ctx context.Context, id domain.SessionID, userID domain.UserID) (*domain.Session, error) {
	session, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != "" && session.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return session, nil
}

func (s *Service) newMessage(sessionID domain.SessionID, author domain.Role, text string) *domain.Message {
	return &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: sessionID,
		Author:    author,
		Text:      text,
		CreatedAt: s.now(),
	}
}

// sessionLocks hands out one mutex per session id, dropping it once unused.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[domain.SessionID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id domain.SessionID) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[domain.SessionID]*sessionLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
