package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/pkg/logger"
)

// AllocateCommand represents a request to reserve stock for an order
type AllocateCommand struct {
	Actor     domain.WarehouseContext
	Order     domain.OrderRef
	ProductID uint
	Quantity  int
	// ExpirationDays of 0 uses the configured default
	ExpirationDays int
}

func (c AllocateCommand) validate() error {
	if c.Order.ID == 0 {
		return domain.ErrInvalidOrder
	}
	if c.ProductID == 0 {
		return domain.ErrInvalidProduct
	}
	if c.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if c.ExpirationDays < 0 {
		return domain.ErrInvalidExpiration
	}
	return nil
}

// AllocateHandler reserves stock across lots oldest first
type AllocateHandler struct {
	deps Dependencies
}

// NewAllocateHandler creates a new allocate handler
func NewAllocateHandler(deps Dependencies) *AllocateHandler {
	return &AllocateHandler{deps: deps}
}

// Handle executes the allocate command. It never returns nil.
func (h *AllocateHandler) Handle(ctx context.Context, cmd AllocateCommand) domain.AllocationResult {
	ctx, span := tracer.Start(ctx, "command.Allocate",
		trace.WithAttributes(
			attribute.Int("order.id", int(cmd.Order.ID)),
			attribute.Int("product.id", int(cmd.ProductID)),
			attribute.Int("quantity.requested", cmd.Quantity),
		),
	)
	defer span.End()

	start := time.Now()
	result := h.allocate(ctx, cmd)
	h.deps.Metrics.recordAllocation(result, time.Since(start))

	span.SetAttributes(attribute.String("allocation.outcome", AllocationOutcome(result)))
	if failed, ok := result.(*domain.AllocationFailed); ok {
		span.SetStatus(codes.Error, failed.Message)
	}
	return result
}

func (h *AllocateHandler) allocate(ctx context.Context, cmd AllocateCommand) domain.AllocationResult {
	if err := cmd.validate(); err != nil {
		return &domain.AllocationRejected{Err: err}
	}

	warehouseID, err := domain.ResolveWarehouse(ctx, h.deps.Store, cmd.Actor)
	if err != nil {
		if domain.IsWarehouseError(err) {
			return &domain.NoWarehouse{Err: err}
		}
		return h.fail(ctx, cmd, err)
	}

	if _, err := h.deps.Store.FindProduct(ctx, cmd.ProductID); err != nil {
		if errors.Is(err, domain.ErrUnknownProduct) {
			return &domain.AllocationRejected{Err: err}
		}
		return h.fail(ctx, cmd, err)
	}

	days := h.deps.Settings.expirationDays(cmd.ExpirationDays)
	now := h.deps.Settings.now()
	expiresAt := now.AddDate(0, 0, days)

	var allocated *domain.Allocated
	err = h.deps.Store.Transaction(ctx, func(tx domain.Tx) error {
		var txErr error
		allocated, txErr = h.distribute(ctx, tx, cmd, warehouseID, now, expiresAt)
		return txErr
	})

	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		logger.Info(ctx).
			Uint("order_id", cmd.Order.ID).
			Uint("product_id", cmd.ProductID).
			Uint("warehouse_id", warehouseID).
			Int("requested", cmd.Quantity).
			Str("available", insufficient.Available.String()).
			Msg("Insufficient stock for allocation")
		return &domain.InsufficientStock{Available: insufficient.Available, Requested: insufficient.Requested}
	case err != nil:
		return h.fail(ctx, cmd, err)
	}

	allocated.Summary.ExpirationDays = days

	logger.Info(ctx).
		Uint("order_id", cmd.Order.ID).
		Uint("product_id", cmd.ProductID).
		Uint("warehouse_id", warehouseID).
		Int("quantity", allocated.Summary.Reserved).
		Int("lots", allocated.Summary.LotCount).
		Msg("Stock allocated")

	h.deps.afterCommit(ctx, domain.EventStockReserved, "", cmd.Actor.ActorID, allocated.Reservations)
	return allocated
}

// distribute runs inside the transaction. Lots come back row-locked, so the
// sufficiency check and the mutations below see the same counters.
func (h *AllocateHandler) distribute(ctx context.Context, tx domain.Tx, cmd AllocateCommand, warehouseID uint, now, expiresAt time.Time) (*domain.Allocated, error) {
	lots, err := tx.LockAvailableLots(ctx, cmd.ProductID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lots: %w", err)
	}

	reservable := 0
	available := decimal.Zero
	for i := range lots {
		reservable += lots[i].ReservableUnits()
		available = available.Add(lots[i].QuantityAvailable)
	}
	if reservable < cmd.Quantity {
		return nil, &domain.InsufficientStockError{
			ProductID:   cmd.ProductID,
			WarehouseID: warehouseID,
			Available:   available,
			Requested:   cmd.Quantity,
		}
	}

	result := &domain.Allocated{
		Summary: domain.AllocationSummary{
			Requested: cmd.Quantity,
			ExpiresAt: expiresAt,
		},
	}

	remaining := cmd.Quantity
	for i := range lots {
		if remaining == 0 {
			break
		}

		lot := &lots[i]
		take := min(remaining, lot.ReservableUnits())
		if take == 0 {
			continue
		}

		before, err := tx.SumAvailable(ctx, cmd.ProductID, warehouseID)
		if err != nil {
			return nil, fmt.Errorf("failed to read aggregate before lot %d: %w", lot.ID, err)
		}
		lotBefore := lot.QuantityAvailable

		reservation := domain.Reservation{
			OrderID:          cmd.Order.ID,
			OrderNumber:      cmd.Order.Number,
			StockLotID:       lot.ID,
			ProductID:        cmd.ProductID,
			WarehouseID:      warehouseID,
			QuantityReserved: take,
			ReservedAt:       now,
			ExpiresAt:        expiresAt,
			Status:           domain.StatusActive,
			ActorID:          cmd.Actor.ActorID,
		}
		if err := tx.CreateReservation(ctx, &reservation); err != nil {
			return nil, fmt.Errorf("failed to create reservation on lot %d: %w", lot.ID, err)
		}

		if err := lot.Reserve(take); err != nil {
			return nil, err
		}
		if err := tx.SaveLotQuantities(ctx, lot); err != nil {
			return nil, fmt.Errorf("failed to update lot %d: %w", lot.ID, err)
		}

		after, err := tx.SumAvailable(ctx, cmd.ProductID, warehouseID)
		if err != nil {
			return nil, fmt.Errorf("failed to read aggregate after lot %d: %w", lot.ID, err)
		}

		movement := &domain.Movement{
			StockLotID:      lot.ID,
			ProductID:       cmd.ProductID,
			WarehouseID:     warehouseID,
			Delta:           decimal.NewFromInt(int64(-take)),
			AggregateBefore: before,
			AggregateAfter:  after,
			Type:            domain.MovementReservation,
			DocumentType:    cmd.Order.Document(),
			DocumentRef:     documentRef(cmd.Order.Number, cmd.Order.ID),
			Note:            fmt.Sprintf("Reserved %d from lot %s, stock %s -> %s", take, lot.Label, before, after),
			ActorID:         cmd.Actor.ActorID,
		}
		if err := tx.AppendMovement(ctx, movement); err != nil {
			return nil, fmt.Errorf("failed to append movement for lot %d: %w", lot.ID, err)
		}

		result.Reservations = append(result.Reservations, reservation)
		result.Distribution = append(result.Distribution, domain.LotAllocation{
			LotID:           lot.ID,
			Label:           lot.Label,
			QuantityTaken:   take,
			AvailableBefore: lotBefore,
			AvailableAfter:  lot.QuantityAvailable,
		})
		result.Summary.Reserved += take
		remaining -= take
	}

	if remaining > 0 {
		return nil, fmt.Errorf("allocation stopped with %d units unassigned", remaining)
	}

	result.Summary.LotCount = len(result.Distribution)
	return result, nil
}

func (h *AllocateHandler) fail(ctx context.Context, cmd AllocateCommand, err error) domain.AllocationResult {
	logger.Error(ctx).
		Err(err).
		Uint("order_id", cmd.Order.ID).
		Uint("product_id", cmd.ProductID).
		Int("quantity", cmd.Quantity).
		Msg("Allocation failed")
	return &domain.AllocationFailed{Message: "failed to allocate stock"}
}

// documentRef falls back to the order id when the order has no number yet
func documentRef(number string, orderID uint) string {
	if number != "" {
		return number
	}
	return fmt.Sprintf("%d", orderID)
}
