package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

var tracer = otel.Tracer("reservation-repository")

// StoreWithTracing wraps a domain.Store with spans around the locking reads
// and writes. Transactions hand out a traced Tx as well.
type StoreWithTracing struct {
	*txWithTracing
	store domain.Store
}

// NewGormStoreWithTracing creates a gorm store with tracing
func NewGormStoreWithTracing(db *gorm.DB) *StoreWithTracing {
	return NewStoreWithTracing(NewGormStore(db))
}

// NewStoreWithTracing wraps any store
func NewStoreWithTracing(store domain.Store) *StoreWithTracing {
	return &StoreWithTracing{
		txWithTracing: &txWithTracing{Tx: store},
		store:         store,
	}
}

// Transaction with tracing
func (s *StoreWithTracing) Transaction(ctx context.Context, fn func(tx domain.Tx) error) error {
	ctx, span := tracer.Start(ctx, "repository.Transaction")
	defer span.End()

	err := s.store.Transaction(ctx, func(tx domain.Tx) error {
		return fn(&txWithTracing{Tx: tx})
	})
	if err != nil {
		addDBErrorToSpan(span, err)
		span.SetAttributes(attribute.Bool("tx.rolled_back", true))
		return err
	}
	return nil
}

type txWithTracing struct {
	domain.Tx
}

func (t *txWithTracing) CreateLot(ctx context.Context, lot *domain.StockLot) error {
	ctx, span := tracer.Start(ctx, "repository.CreateLot",
		trace.WithAttributes(
			attribute.Int("lot.product_id", int(lot.ProductID)),
			attribute.Int("lot.warehouse_id", int(lot.WarehouseID)),
			attribute.String("lot.quantity_total", lot.QuantityTotal.String()),
		),
	)
	defer span.End()

	if err := t.Tx.CreateLot(ctx, lot); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("lot.id", int(lot.ID)))
	return nil
}

func (t *txWithTracing) LockAvailableLots(ctx context.Context, productID, warehouseID uint) ([]domain.StockLot, error) {
	ctx, span := tracer.Start(ctx, "repository.LockAvailableLots",
		trace.WithAttributes(
			attribute.Int("lot.product_id", int(productID)),
			attribute.Int("lot.warehouse_id", int(warehouseID)),
		),
	)
	defer span.End()

	lots, err := t.Tx.LockAvailableLots(ctx, productID, warehouseID)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(lots)))
	return lots, nil
}

func (t *txWithTracing) LockLots(ctx context.Context, ids []uint) ([]domain.StockLot, error) {
	ctx, span := tracer.Start(ctx, "repository.LockLots",
		trace.WithAttributes(attribute.Int("query.ids", len(ids))),
	)
	defer span.End()

	lots, err := t.Tx.LockLots(ctx, ids)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}
	return lots, nil
}

func (t *txWithTracing) SumAvailable(ctx context.Context, productID, warehouseID uint) (decimal.Decimal, error) {
	ctx, span := tracer.Start(ctx, "repository.SumAvailable",
		trace.WithAttributes(
			attribute.Int("lot.product_id", int(productID)),
			attribute.Int("lot.warehouse_id", int(warehouseID)),
		),
	)
	defer span.End()

	total, err := t.Tx.SumAvailable(ctx, productID, warehouseID)
	if err != nil {
		addDBErrorToSpan(span, err)
		return decimal.Zero, err
	}

	span.SetAttributes(attribute.String("result.total", total.String()))
	return total, nil
}

func (t *txWithTracing) SaveLotQuantities(ctx context.Context, lot *domain.StockLot) error {
	ctx, span := tracer.Start(ctx, "repository.SaveLotQuantities",
		trace.WithAttributes(
			attribute.Int("lot.id", int(lot.ID)),
			attribute.String("lot.quantity_available", lot.QuantityAvailable.String()),
			attribute.Int("lot.quantity_reserved", lot.QuantityReserved),
		),
	)
	defer span.End()

	if err := t.Tx.SaveLotQuantities(ctx, lot); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}
	return nil
}

func (t *txWithTracing) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	ctx, span := tracer.Start(ctx, "repository.CreateReservation",
		trace.WithAttributes(
			attribute.Int("reservation.order_id", int(reservation.OrderID)),
			attribute.Int("reservation.lot_id", int(reservation.StockLotID)),
			attribute.Int("reservation.quantity", reservation.QuantityReserved),
		),
	)
	defer span.End()

	if err := t.Tx.CreateReservation(ctx, reservation); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("reservation.id", int(reservation.ID)))
	return nil
}

func (t *txWithTracing) LockActiveReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "repository.LockActiveReservations",
		trace.WithAttributes(
			attribute.Int("filter.order_id", int(filter.OrderID)),
			attribute.Int("filter.product_id", int(filter.ProductID)),
			attribute.Bool("filter.expired", filter.ExpiredBefore != nil),
		),
	)
	defer span.End()

	reservations, err := t.Tx.LockActiveReservations(ctx, filter)
	if err != nil {
		addDBErrorToSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(reservations)))
	return reservations, nil
}

func (t *txWithTracing) MarkReleased(ctx context.Context, id uint, releasedAt time.Time, reason string) error {
	ctx, span := tracer.Start(ctx, "repository.MarkReleased",
		trace.WithAttributes(attribute.Int("reservation.id", int(id))),
	)
	defer span.End()

	if err := t.Tx.MarkReleased(ctx, id, releasedAt, reason); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}
	return nil
}

func (t *txWithTracing) AppendMovement(ctx context.Context, movement *domain.Movement) error {
	ctx, span := tracer.Start(ctx, "repository.AppendMovement",
		trace.WithAttributes(
			attribute.Int("movement.lot_id", int(movement.StockLotID)),
			attribute.String("movement.type", string(movement.Type)),
			attribute.String("movement.delta", movement.Delta.String()),
		),
	)
	defer span.End()

	if err := t.Tx.AppendMovement(ctx, movement); err != nil {
		addDBErrorToSpan(span, err)
		return err
	}
	return nil
}

// Helper function to add database error details to span
func addDBErrorToSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("database error: %v", err))
	}
}
