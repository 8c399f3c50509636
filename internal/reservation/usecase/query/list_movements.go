package query

import (
	"context"
	"fmt"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

// ListMovementsQuery represents the query to list a product's ledger in the actor's warehouse
type ListMovementsQuery struct {
	Actor     domain.WarehouseContext
	ProductID uint
	Limit     int
	Offset    int
}

// ListMovementsHandler handles list movements query
type ListMovementsHandler struct {
	repo domain.Tx
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(repo domain.Tx) *ListMovementsHandler {
	return &ListMovementsHandler{repo: repo}
}

// Handle executes the list movements query, oldest entry first
func (h *ListMovementsHandler) Handle(ctx context.Context, query ListMovementsQuery) ([]domain.Movement, error) {
	if query.ProductID == 0 {
		return nil, domain.ErrInvalidProduct
	}

	if query.Limit <= 0 {
		query.Limit = 50
	}

	if query.Limit > 500 {
		query.Limit = 500
	}

	if query.Offset < 0 {
		query.Offset = 0
	}

	warehouseID, err := domain.ResolveWarehouse(ctx, h.repo, query.Actor)
	if err != nil {
		return nil, err
	}

	movements, err := h.repo.FindMovements(ctx, query.ProductID, warehouseID, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	return movements, nil
}
