package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

const defaultListLimit = 20

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (TRIPWISE_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) plansCol() *firestore.CollectionRef {
	return s.client.Collection("plans")
}

func (s *Store) bookingsCol() *firestore.CollectionRef {
	return s.client.Collection("bookings")
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type intentDoc struct {
	Destination   string   `firestore:"destination"`
	Origin        string   `firestore:"origin"`
	BudgetPaise   int64    `firestore:"budget_paise"`
	Days          int      `firestore:"days"`
	Interests     []string `firestore:"interests"`
	DepartureDate string   `firestore:"departure_date"`
	Passengers    int      `firestore:"passengers"`
}

type sessionDoc struct {
	UserID    string    `firestore:"user_id"`
	Title     string    `firestore:"title"`
	Intent    intentDoc `firestore:"intent"`
	State     string    `firestore:"state"`
	PlanID    string    `firestore:"plan_id"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type messageDoc struct {
	SessionID string    `firestore:"session_id"`
	Author    string    `firestore:"author"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

// documentDoc holds a plan or booking as its JSON wire form so money and
// dates keep the exact representation the API returns.
type documentDoc struct {
	Data      string    `firestore:"data"`
	Status    string    `firestore:"status,omitempty"`
	PlanID    string    `firestore:"plan_id,omitempty"`
	CreatedAt time.Time `firestore:"created_at"`
}

func toIntentDoc(t domain.TripIntent) intentDoc {
	return intentDoc{
		Destination:   t.Destination,
		Origin:        t.Origin,
		BudgetPaise:   int64(t.Budget),
		Days:          t.Days,
		Interests:     t.Interests,
		DepartureDate: t.DepartureDate.String(),
		Passengers:    t.Passengers,
	}
}

func (d intentDoc) toDomain() (domain.TripIntent, error) {
	t := domain.TripIntent{
		Destination: d.Destination,
		Origin:      d.Origin,
		Budget:      domain.Money(d.BudgetPaise),
		Days:        d.Days,
		Interests:   d.Interests,
		Passengers:  d.Passengers,
	}
	if d.DepartureDate != "" {
		date, err := domain.ParseDate(d.DepartureDate)
		if err != nil {
			return domain.TripIntent{}, err
		}
		t.DepartureDate = date
	}
	return t, nil
}

func toSessionDoc(session *domain.Session) sessionDoc {
	state := session.State
	if state == "" {
		state = domain.StateCollecting
	}
	return sessionDoc{
		UserID:    string(session.UserID),
		Title:     session.Title,
		Intent:    toIntentDoc(session.Intent),
		State:     string(state),
		PlanID:    string(session.PlanID),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func (d sessionDoc) toDomain(id domain.SessionID) (*domain.Session, error) {
	intent, err := d.Intent.toDomain()
	if err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	return &domain.Session{
		ID:        id,
		UserID:    domain.UserID(d.UserID),
		Title:     d.Title,
		Intent:    intent,
		State:     domain.ConversationState(d.State),
		PlanID:    domain.PlanID(d.PlanID),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.sessionDoc(session.ID).Create(ctx, toSessionDoc(session))
	if err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	doc := toSessionDoc(session)
	_, err := s.sessionDoc(session.ID).Update(ctx, []firestore.Update{
		{Path: "user_id", Value: doc.UserID},
		{Path: "title", Value: doc.Title},
		{Path: "intent", Value: doc.Intent},
		{Path: "state", Value: doc.State},
		{Path: "plan_id", Value: doc.PlanID},
		{Path: "updated_at", Value: doc.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("session %s: %w", session.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}
	return doc.toDomain(id)
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	q := s.sessionsCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListSessionsByUser: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}
		session, err := doc.toDomain(domain.SessionID(snap.Ref.ID))
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	doc := messageDoc{
		SessionID: string(msg.SessionID),
		Author:    string(msg.Author),
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}

	_, err := s.messagesCol(msg.SessionID).Doc(string(msg.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

// GetMessagesBySession returns messages oldest first. A positive limit keeps the most recent ones.
func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	q := s.messagesCol(sessionID).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, &domain.Message{
			ID:        domain.MessageID(snap.Ref.ID),
			SessionID: sessionID,
			Author:    domain.Role(doc.Author),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		})
	}
	slices.Reverse(out)
	return out, nil
}

// ─────────────────────────────────────────
// PlanStore / BookingStore implementation
// ─────────────────────────────────────────

func (s *Store) SavePlan(ctx context.Context, plan *domain.Plan) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("save plan: %w", domain.ErrMissingField)
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("firestore SavePlan: encode: %w", err)
	}
	doc := documentDoc{Data: string(data), CreatedAt: plan.CreatedAt}
	if _, err := s.plansCol().Doc(string(plan.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SavePlan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, id domain.PlanID) (*domain.Plan, error) {
	snap, err := s.plansCol().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetPlan: %w", err)
	}
	return decodeDocument[domain.Plan](snap)
}

func (s *Store) ListPlans(ctx context.Context, limit int) ([]*domain.Plan, error) {
	return listDocuments[domain.Plan](ctx, s.plansCol(), limit)
}

func (s *Store) SaveBooking(ctx context.Context, b *domain.BookingResult) error {
	if b == nil || b.ID == "" {
		return fmt.Errorf("save booking: %w", domain.ErrMissingField)
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("firestore SaveBooking: encode: %w", err)
	}
	doc := documentDoc{
		Data:      string(data),
		Status:    string(b.Status),
		PlanID:    string(b.PlanID),
		CreatedAt: b.CreatedAt,
	}
	if _, err := s.bookingsCol().Doc(string(b.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SaveBooking: %w", err)
	}
	return nil
}

func (s *Store) ListBookings(ctx context.Context, limit int) ([]*domain.BookingResult, error) {
	return listDocuments[domain.BookingResult](ctx, s.bookingsCol(), limit)
}

func decodeDocument[T any](snap *firestore.DocumentSnapshot) (*T, error) {
	var doc documentDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	v := new(T)
	if err := json.Unmarshal([]byte(doc.Data), v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	return v, nil
}

func listDocuments[T any](ctx context.Context, col *firestore.CollectionRef, limit int) ([]*T, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	iter := col.OrderBy("created_at", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	out := []*T{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore list %s: %w", col.ID, err)
		}
		v, err := decodeDocument[T](snap)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
