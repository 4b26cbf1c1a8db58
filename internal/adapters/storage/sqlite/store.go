package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

const defaultListLimit = 20

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists sessions, messages, plans and bookings in SQLite. Plans and
// booking results are stored as JSON documents next to a few queryable columns.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	intent, err := json.Marshal(session.Intent)
	if err != nil {
		return fmt.Errorf("sqlite CreateSession: encode intent: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions(id, user_id, title, intent, state, plan_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Title, string(intent), stateOrDefault(session.State),
		session.PlanID, formatTime(session.CreatedAt), formatTime(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	intent, err := json.Marshal(session.Intent)
	if err != nil {
		return fmt.Errorf("sqlite UpdateSession: encode intent: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET user_id=?, title=?, intent=?, state=?, plan_id=?, updated_at=?
		WHERE id=?`,
		session.UserID, session.Title, string(intent), stateOrDefault(session.State),
		session.PlanID, formatTime(session.UpdatedAt), session.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite UpdateSession: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, intent, state, plan_id, created_at, updated_at
		FROM sessions WHERE id=?`, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite GetSession: %w", err)
	}
	return session, nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, intent, state, plan_id, created_at, updated_at
		FROM sessions WHERE user_id=? ORDER BY created_at DESC, id LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListSessionsByUser: %w", err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.Session, error) {
	var (
		session              domain.Session
		intent, state        string
		createdAt, updatedAt string
	)
	if err := row.Scan(&session.ID, &session.UserID, &session.Title, &intent, &state,
		&session.PlanID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(intent), &session.Intent); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	session.State = domain.ConversationState(state)

	var err error
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &session, nil
}

func stateOrDefault(s domain.ConversationState) string {
	if s == "" {
		return string(domain.StateCollecting)
	}
	return string(s)
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages(id, session_id, author, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Author, msg.Text, formatTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite AppendMessage: %w", err)
	}
	return nil
}

// GetMessagesBySession returns messages oldest first. A positive limit keeps the most recent ones.
func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author, text, created_at FROM (
			SELECT seq, id, author, text, created_at FROM messages
			WHERE session_id=? ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite GetMessagesBySession: %w", err)
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		var (
			msg       = domain.Message{SessionID: sessionID}
			createdAt string
		)
		if err := rows.Scan(&msg.ID, &msg.Author, &msg.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		if msg.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

// ─────────────────────────────────────────
// PlanStore implementation
// ─────────────────────────────────────────

// SavePlan inserts a plan, or replaces the stored document for an existing ID.
func (s *Store) SavePlan(ctx context.Context, plan *domain.Plan) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("save plan: %w", domain.ErrMissingField)
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("sqlite SavePlan: encode: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans(id, destination, total_cost, data, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET destination=excluded.destination,
			total_cost=excluded.total_cost, data=excluded.data`,
		plan.ID, plan.Destination, int64(plan.TotalCost), string(data), formatTime(plan.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite SavePlan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, id domain.PlanID) (*domain.Plan, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM plans WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite GetPlan: %w", err)
	}

	var plan domain.Plan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &plan, nil
}

// ListPlans returns the last `limit` plans, newest first.
func (s *Store) ListPlans(ctx context.Context, limit int) ([]*domain.Plan, error) {
	return listDocuments[domain.Plan](ctx, s.db, `SELECT data FROM plans ORDER BY seq DESC LIMIT ?`, limit)
}

// ─────────────────────────────────────────
// BookingStore implementation
// ─────────────────────────────────────────

func (s *Store) SaveBooking(ctx context.Context, b *domain.BookingResult) error {
	if b == nil || b.ID == "" {
		return fmt.Errorf("save booking: %w", domain.ErrMissingField)
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("sqlite SaveBooking: encode: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bookings(id, plan_id, status, data, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status=excluded.status, data=excluded.data`,
		b.ID, b.PlanID, b.Status, string(data), formatTime(b.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite SaveBooking: %w", err)
	}
	return nil
}

// ListBookings returns the last `limit` bookings, newest first.
func (s *Store) ListBookings(ctx context.Context, limit int) ([]*domain.BookingResult, error) {
	return listDocuments[domain.BookingResult](ctx, s.db, `SELECT data FROM bookings ORDER BY seq DESC LIMIT ?`, limit)
}

func listDocuments[T any](ctx context.Context, db *sql.DB, query string, limit int) ([]*T, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite list: %w", err)
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		v := new(T)
		if err := json.Unmarshal([]byte(data), v); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
