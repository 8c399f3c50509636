package query

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

var tracer = otel.Tracer("reservation-query")

// AvailabilityQuery represents the query for a product's stock in the actor's warehouse
type AvailabilityQuery struct {
	Actor     domain.WarehouseContext
	ProductID uint
}

// AvailabilityHandler handles the availability query
type AvailabilityHandler struct {
	repo  domain.Tx
	cache domain.AvailabilityCache
}

// NewAvailabilityHandler creates a new availability handler. cache may be nil.
func NewAvailabilityHandler(repo domain.Tx, cache domain.AvailabilityCache) *AvailabilityHandler {
	return &AvailabilityHandler{repo: repo, cache: cache}
}

// Handle executes the availability query. It never writes.
func (h *AvailabilityHandler) Handle(ctx context.Context, query AvailabilityQuery) (*domain.AvailabilitySummary, error) {
	ctx, span := tracer.Start(ctx, "query.Availability",
		trace.WithAttributes(attribute.Int("product.id", int(query.ProductID))),
	)
	defer span.End()

	summary, cached, err := h.availability(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("cache.hit", cached),
		attribute.Int("result.lots", len(summary.Lots)),
	)
	return summary, nil
}

func (h *AvailabilityHandler) availability(ctx context.Context, query AvailabilityQuery) (*domain.AvailabilitySummary, bool, error) {
	if query.ProductID == 0 {
		return nil, false, domain.ErrInvalidProduct
	}

	warehouseID, err := domain.ResolveWarehouse(ctx, h.repo, query.Actor)
	if err != nil {
		return nil, false, err
	}

	if h.cache != nil {
		if summary, ok := h.cache.Get(ctx, query.ProductID, warehouseID); ok {
			return summary, true, nil
		}
	}

	if _, err := h.repo.FindProduct(ctx, query.ProductID); err != nil {
		return nil, false, err
	}

	lots, err := h.repo.FindLots(ctx, query.ProductID, warehouseID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load lots: %w", err)
	}

	summary := Summarize(query.ProductID, warehouseID, lots)
	if h.cache != nil {
		h.cache.Set(ctx, summary)
	}
	return summary, false, nil
}

// Summarize builds the availability summary for lots already ordered by id
func Summarize(productID, warehouseID uint, lots []domain.StockLot) *domain.AvailabilitySummary {
	summary := &domain.AvailabilitySummary{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		TotalQuantity:  decimal.Zero,
		TotalAvailable: decimal.Zero,
		Lots:           make([]domain.LotAvailability, 0, len(lots)),
	}

	for _, lot := range lots {
		summary.Lots = append(summary.Lots, domain.LotAvailability{
			LotID:               lot.ID,
			Label:               lot.Label,
			QuantityTotal:       lot.QuantityTotal,
			QuantityAvailable:   lot.QuantityAvailable,
			QuantityReserved:    lot.QuantityReserved,
			PercentageAvailable: domain.PercentageAvailable(lot.QuantityAvailable, lot.QuantityTotal),
		})
		summary.TotalQuantity = summary.TotalQuantity.Add(lot.QuantityTotal)
		summary.TotalAvailable = summary.TotalAvailable.Add(lot.QuantityAvailable)
		summary.TotalReserved += lot.QuantityReserved
	}
	return summary
}
