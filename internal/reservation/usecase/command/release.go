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

// DefaultReleaseReason is recorded when the caller gives none
const DefaultReleaseReason = "released"

// ReleaseByProductCommand releases an order's ACTIVE reservations of one product
type ReleaseByProductCommand struct {
	Actor     domain.WarehouseContext
	Order     domain.OrderRef
	ProductID uint
	Reason    string
}

// ReleaseAllCommand releases every ACTIVE reservation of an order
type ReleaseAllCommand struct {
	Actor  domain.WarehouseContext
	Order  domain.OrderRef
	Reason string
}

// ReleaseByProductHandler handles the release by product command
type ReleaseByProductHandler struct {
	releaser
}

// NewReleaseByProductHandler creates a new release by product handler
func NewReleaseByProductHandler(deps Dependencies) *ReleaseByProductHandler {
	return &ReleaseByProductHandler{releaser{deps: deps}}
}

// Handle executes the release by product command
func (h *ReleaseByProductHandler) Handle(ctx context.Context, cmd ReleaseByProductCommand) domain.ReleaseResult {
	ctx, span := tracer.Start(ctx, "command.ReleaseByProduct",
		trace.WithAttributes(
			attribute.Int("order.id", int(cmd.Order.ID)),
			attribute.Int("product.id", int(cmd.ProductID)),
		),
	)
	defer span.End()

	var result domain.ReleaseResult
	switch {
	case cmd.Order.ID == 0:
		result = &domain.ReleaseRejected{Err: domain.ErrInvalidOrder}
	case cmd.ProductID == 0:
		result = &domain.ReleaseRejected{Err: domain.ErrInvalidProduct}
	default:
		result = h.release(ctx, releaseRequest{
			filter:       domain.ReservationFilter{OrderID: cmd.Order.ID, ProductID: cmd.ProductID},
			documentType: cmd.Order.Document(),
			reason:       reasonOrDefault(cmd.Reason),
			actorID:      cmd.Actor.ActorID,
		})
	}

	h.deps.Metrics.recordRelease("product", result)
	traceRelease(span, result)
	return result
}

// ReleaseAllHandler handles the release all command
type ReleaseAllHandler struct {
	releaser
}

// NewReleaseAllHandler creates a new release all handler
func NewReleaseAllHandler(deps Dependencies) *ReleaseAllHandler {
	return &ReleaseAllHandler{releaser{deps: deps}}
}

// Handle executes the release all command
func (h *ReleaseAllHandler) Handle(ctx context.Context, cmd ReleaseAllCommand) domain.ReleaseResult {
	ctx, span := tracer.Start(ctx, "command.ReleaseAll",
		trace.WithAttributes(attribute.Int("order.id", int(cmd.Order.ID))),
	)
	defer span.End()

	var result domain.ReleaseResult
	if cmd.Order.ID == 0 {
		result = &domain.ReleaseRejected{Err: domain.ErrInvalidOrder}
	} else {
		result = h.release(ctx, releaseRequest{
			filter:       domain.ReservationFilter{OrderID: cmd.Order.ID},
			documentType: cmd.Order.Document(),
			reason:       reasonOrDefault(cmd.Reason),
			actorID:      cmd.Actor.ActorID,
		})
	}

	h.deps.Metrics.recordRelease("order", result)
	traceRelease(span, result)
	return result
}

type releaseRequest struct {
	filter       domain.ReservationFilter
	documentType string
	reason       string
	actorID      uint
}

// releaser is the shared reversal loop behind every release command
type releaser struct {
	deps Dependencies
}

func (r *releaser) release(ctx context.Context, req releaseRequest) domain.ReleaseResult {
	released := &domain.Released{}

	err := r.deps.Store.Transaction(ctx, func(tx domain.Tx) error {
		reservations, err := tx.LockActiveReservations(ctx, req.filter)
		if err != nil {
			return fmt.Errorf("failed to lock reservations: %w", err)
		}
		if len(reservations) == 0 {
			return nil
		}

		locked, err := tx.LockLots(ctx, sortedLotIDs(reservations))
		if err != nil {
			return fmt.Errorf("failed to lock lots: %w", err)
		}
		lots := make(map[uint]*domain.StockLot, len(locked))
		for i := range locked {
			lots[locked[i].ID] = &locked[i]
		}

		now := r.deps.Settings.now()
		for i := range reservations {
			res := &reservations[i]
			lot, ok := lots[res.StockLotID]
			if !ok {
				return fmt.Errorf("reservation %d: %w", res.ID, domain.ErrLotNotFound)
			}

			before, err := tx.SumAvailable(ctx, res.ProductID, res.WarehouseID)
			if err != nil {
				return fmt.Errorf("failed to read aggregate before release %d: %w", res.ID, err)
			}

			if err := lot.Restore(res.QuantityReserved); err != nil {
				return fmt.Errorf("reservation %d: %w", res.ID, err)
			}
			if err := tx.SaveLotQuantities(ctx, lot); err != nil {
				return fmt.Errorf("failed to update lot %d: %w", lot.ID, err)
			}

			after, err := tx.SumAvailable(ctx, res.ProductID, res.WarehouseID)
			if err != nil {
				return fmt.Errorf("failed to read aggregate after release %d: %w", res.ID, err)
			}

			movement := &domain.Movement{
				StockLotID:      lot.ID,
				ProductID:       res.ProductID,
				WarehouseID:     res.WarehouseID,
				Delta:           decimal.NewFromInt(int64(res.QuantityReserved)),
				AggregateBefore: before,
				AggregateAfter:  after,
				Type:            domain.MovementRelease,
				DocumentType:    req.documentType,
				DocumentRef:     documentRef(res.OrderNumber, res.OrderID),
				Note:            fmt.Sprintf("Released %d to lot %s: %s", res.QuantityReserved, lot.Label, req.reason),
				ActorID:         req.actorID,
			}
			if err := tx.AppendMovement(ctx, movement); err != nil {
				return fmt.Errorf("failed to append movement for reservation %d: %w", res.ID, err)
			}

			if err := tx.MarkReleased(ctx, res.ID, now, req.reason); err != nil {
				return fmt.Errorf("failed to release reservation %d: %w", res.ID, err)
			}
			res.Status = domain.StatusReleased
			res.ReleasedAt = &now
			res.ReleaseReason = req.reason

			released.QuantityReleased += res.QuantityReserved
			released.ReservationsReleased++
		}

		released.Reservations = reservations
		return nil
	})
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Uint("order_id", req.filter.OrderID).
			Uint("product_id", req.filter.ProductID).
			Str("reason", req.reason).
			Msg("Release failed")
		return &domain.ReleaseFailed{Message: err.Error()}
	}

	if released.ReservationsReleased > 0 {
		logger.Info(ctx).
			Uint("order_id", req.filter.OrderID).
			Uint("product_id", req.filter.ProductID).
			Int("quantity", released.QuantityReleased).
			Int("reservations", released.ReservationsReleased).
			Msg("Reservations released")
	}

	r.deps.afterCommit(ctx, domain.EventStockReleased, req.reason, req.actorID, released.Reservations)
	return released
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return DefaultReleaseReason
	}
	return reason
}

func traceRelease(span trace.Span, result domain.ReleaseResult) {
	span.SetAttributes(attribute.String("release.outcome", ReleaseOutcome(result)))
	if failed, ok := result.(*domain.ReleaseFailed); ok {
		span.SetStatus(codes.Error, failed.Message)
	}
}
