package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/pkg/logger"
)

// ReceiveLotCommand registers a new lot in the actor's warehouse
type ReceiveLotCommand struct {
	Actor       domain.WarehouseContext
	ProductID   uint
	Label       string
	Quantity    decimal.Decimal
	DocumentRef string
}

// ReceiveLotHandler handles the receive lot command
type ReceiveLotHandler struct {
	deps Dependencies
}

// NewReceiveLotHandler creates a new receive lot handler
func NewReceiveLotHandler(deps Dependencies) *ReceiveLotHandler {
	return &ReceiveLotHandler{deps: deps}
}

// Handle creates the lot and books a receipt movement in one transaction
func (h *ReceiveLotHandler) Handle(ctx context.Context, cmd ReceiveLotCommand) (*domain.StockLot, error) {
	ctx, span := tracer.Start(ctx, "command.ReceiveLot",
		trace.WithAttributes(
			attribute.Int("product.id", int(cmd.ProductID)),
			attribute.String("quantity", cmd.Quantity.String()),
		),
	)
	defer span.End()

	lot, err := h.receive(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	h.deps.Metrics.recordReceipt()
	if h.deps.Cache != nil {
		h.deps.Cache.Invalidate(ctx, lot.ProductID, lot.WarehouseID)
	}

	logger.Info(ctx).
		Uint("lot_id", lot.ID).
		Uint("product_id", lot.ProductID).
		Uint("warehouse_id", lot.WarehouseID).
		Str("quantity", lot.QuantityTotal.String()).
		Msg("Stock lot received")
	return lot, nil
}

func (h *ReceiveLotHandler) receive(ctx context.Context, cmd ReceiveLotCommand) (*domain.StockLot, error) {
	if cmd.ProductID == 0 {
		return nil, domain.ErrInvalidProduct
	}
	if !cmd.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}

	warehouseID, err := domain.ResolveWarehouse(ctx, h.deps.Store, cmd.Actor)
	if err != nil {
		return nil, err
	}
	if _, err := h.deps.Store.FindProduct(ctx, cmd.ProductID); err != nil {
		return nil, err
	}

	now := h.deps.Settings.now()
	label := cmd.Label
	if label == "" {
		label = "LOT-" + now.Format("20060102-150405")
	}

	lot := &domain.StockLot{
		ProductID:         cmd.ProductID,
		WarehouseID:       warehouseID,
		Label:             label,
		QuantityTotal:     cmd.Quantity,
		QuantityAvailable: cmd.Quantity,
		ReceivedAt:        now,
	}

	err = h.deps.Store.Transaction(ctx, func(tx domain.Tx) error {
		before, err := tx.SumAvailable(ctx, cmd.ProductID, warehouseID)
		if err != nil {
			return err
		}
		if err := tx.CreateLot(ctx, lot); err != nil {
			return fmt.Errorf("failed to create lot: %w", err)
		}

		return tx.AppendMovement(ctx, &domain.Movement{
			StockLotID:      lot.ID,
			ProductID:       cmd.ProductID,
			WarehouseID:     warehouseID,
			Delta:           cmd.Quantity,
			AggregateBefore: before,
			AggregateAfter:  before.Add(cmd.Quantity),
			Type:            domain.MovementReceipt,
			DocumentType:    "receipt",
			DocumentRef:     cmd.DocumentRef,
			Note:            fmt.Sprintf("Received lot %s", label),
			ActorID:         cmd.Actor.ActorID,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive lot: %w", err)
	}
	return lot, nil
}
