package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/usecase/command"
)

var (
	errMissingEventType = errors.New("message without event_type header")
	errNoHandler        = errors.New("no handler registered for event type")
)

// OrderReleaser releases every ACTIVE reservation of an order
type OrderReleaser interface {
	Handle(ctx context.Context, cmd command.ReleaseAllCommand) domain.ReleaseResult
}

// ReleaseOnRejection returns the handler for order.rejected: the order's
// reservations are released with the event's reason.
func ReleaseOnRejection(releaser OrderReleaser) EventHandler {
	return func(ctx context.Context, event OrderRejectedEvent) error {
		cmd := command.ReleaseAllCommand{
			Actor:  domain.WarehouseContext{ActorID: event.ActorID, WarehouseID: event.WarehouseID},
			Order:  domain.OrderRef{ID: event.OrderID, Number: event.OrderNumber},
			Reason: event.Reason,
		}

		switch r := releaser.Handle(ctx, cmd).(type) {
		case *domain.Released:
			return nil
		case *domain.ReleaseRejected:
			return fmt.Errorf("release rejected: %w", r.Err)
		case *domain.ReleaseFailed:
			return fmt.Errorf("release failed: %s", r.Message)
		default:
			return fmt.Errorf("unexpected release result %T", r)
		}
	}
}
