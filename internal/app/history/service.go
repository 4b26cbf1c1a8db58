package history

import (
	"context"

	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

const defaultLimit = 20

// Service holds the logic of reading past plans and bookings
type Service struct {
	plans    domain.PlanStore
	bookings domain.BookingStore
}

// NewService creates a history service from the plan and booking stores
func NewService(plans domain.PlanStore, bookings domain.BookingStore) *Service {
	return &Service{
		plans:    plans,
		bookings: bookings,
	}
}

// ListPlans returns the last `limit` plans, newest first.
// If limit <= 0, a reasonable default value is used.
func (s *Service) ListPlans(ctx context.Context, limit int) ([]*domain.Plan, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	plans, err := s.plans.ListPlans(ctx, limit)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []*domain.Plan{}
	}
	return plans, nil
}

func (s *Service) GetPlan(ctx context.Context, id domain.PlanID) (*domain.Plan, error) {
	return s.plans.GetPlan(ctx, id)
}

// ListBookings returns the last `limit` booking results, newest first.
func (s *Service) ListBookings(ctx context.Context, limit int) ([]*domain.BookingResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	bookings, err := s.bookings.ListBookings(ctx, limit)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*domain.BookingResult{}
	}
	return bookings, nil
}
