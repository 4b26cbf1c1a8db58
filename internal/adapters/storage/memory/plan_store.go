package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

// DefaultListLimit applies when a list call passes limit <= 0.
const DefaultListLimit = 20

// PlanStore is a simple in-memory implementation of domain.PlanStore.
// It is NOT persistent and is only suitable for development / local mode.
type PlanStore struct {
	mu    sync.RWMutex
	plans map[domain.PlanID]*domain.Plan
	order []domain.PlanID
}

func NewPlanStore() *PlanStore {
	return &PlanStore{
		plans: make(map[domain.PlanID]*domain.Plan),
	}
}

// SavePlan stores a plan. Saving an existing ID replaces it and keeps its position.
func (s *PlanStore) SavePlan(_ context.Context, plan *domain.Plan) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("save plan: %w", domain.ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[plan.ID]; !exists {
		s.order = append(s.order, plan.ID)
	}
	s.plans[plan.ID] = plan
	return nil
}

func (s *PlanStore) GetPlan(_ context.Context, id domain.PlanID) (*domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// ListPlans returns the last `limit` plans, newest first.
func (s *PlanStore) ListPlans(_ context.Context, limit int) ([]*domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := newestFirst(s.order, limit)
	out := make([]*domain.Plan, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.plans[id])
	}
	return out, nil
}

// BookingStore is a simple in-memory implementation of domain.BookingStore.
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[domain.BookingID]*domain.BookingResult
	order    []domain.BookingID
}

func NewBookingStore() *BookingStore {
	return &BookingStore{
		bookings: make(map[domain.BookingID]*domain.BookingResult),
	}
}

func (s *BookingStore) SaveBooking(_ context.Context, b *domain.BookingResult) error {
	if b == nil || b.ID == "" {
		return fmt.Errorf("save booking: %w", domain.ErrMissingField)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[b.ID]; !exists {
		s.order = append(s.order, b.ID)
	}
	s.bookings[b.ID] = b
	return nil
}

// ListBookings returns the last `limit` bookings, newest first.
func (s *BookingStore) ListBookings(_ context.Context, limit int) ([]*domain.BookingResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := newestFirst(s.order, limit)
	out := make([]*domain.BookingResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.bookings[id])
	}
	return out, nil
}

// newestFirst takes the last `limit` ids in reverse insertion order.
// If limit <= 0, DefaultListLimit is used.
func newestFirst[T any](ids []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, len(ids))

	out := make([]T, 0, limit)
	for i := len(ids) - 1; i >= len(ids)-limit; i-- {
		out = append(out, ids[i])
	}
	return out
}
