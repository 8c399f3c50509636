package query

import (
	"context"
	"fmt"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

// ListReservationsQuery represents the query to list an order's reservations
type ListReservationsQuery struct {
	OrderID uint
	// Status filters by state; empty lists every reservation
	Status domain.ReservationStatus
}

// ListReservationsHandler handles list reservations query
type ListReservationsHandler struct {
	repo domain.ReservationRepository
}

// NewListReservationsHandler creates a new list reservations handler
func NewListReservationsHandler(repo domain.ReservationRepository) *ListReservationsHandler {
	return &ListReservationsHandler{repo: repo}
}

// Handle executes the list reservations query
func (h *ListReservationsHandler) Handle(ctx context.Context, query ListReservationsQuery) ([]domain.Reservation, error) {
	if query.OrderID == 0 {
		return nil, domain.ErrInvalidOrder
	}

	switch query.Status {
	case "", domain.StatusActive, domain.StatusReleased:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, query.Status)
	}

	reservations, err := h.repo.FindReservationsByOrder(ctx, query.OrderID, query.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	return reservations, nil
}
