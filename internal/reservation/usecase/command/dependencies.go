package command

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/pkg/logger"
)

var tracer = otel.Tracer("reservation-command")

// Settings holds the tunables shared by the command handlers
type Settings struct {
	DefaultExpirationDays int
	ExpiredReason         string
	// Now is the clock; nil means time.Now
	Now func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Settings) expirationDays(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.DefaultExpirationDays > 0 {
		return s.DefaultExpirationDays
	}
	return domain.DefaultExpirationDays
}

// Dependencies are the collaborators every command handler needs. Publisher
// and Cache are optional.
type Dependencies struct {
	Store     domain.Store
	Publisher domain.EventPublisher
	Cache     domain.AvailabilityCache
	Metrics   *Metrics
	Settings  Settings
}

type stockKey struct {
	productID   uint
	warehouseID uint
}

type eventKey struct {
	orderID uint
	stockKey
}

// afterCommit invalidates cached availability for every touched product and
// publishes one event per order and product. Neither step can undo the commit,
// so failures are only logged.
func (d Dependencies) afterCommit(ctx context.Context, eventType, reason string, actorID uint, reservations []domain.Reservation) {
	if len(reservations) == 0 {
		return
	}

	if d.Cache != nil {
		seen := make(map[stockKey]bool)
		for _, r := range reservations {
			key := stockKey{r.ProductID, r.WarehouseID}
			if seen[key] {
				continue
			}
			seen[key] = true
			d.Cache.Invalidate(ctx, r.ProductID, r.WarehouseID)
		}
	}

	if d.Publisher == nil {
		return
	}

	for _, event := range buildEvents(eventType, reason, actorID, d.Settings.now(), reservations) {
		if err := d.Publisher.PublishReservationEvent(ctx, event); err != nil {
			logger.Warn(ctx).
				Err(err).
				Str("event_type", event.EventType).
				Uint("order_id", event.OrderID).
				Uint("product_id", event.ProductID).
				Msg("Failed to publish reservation event")
		}
	}
}

func buildEvents(eventType, reason string, actorID uint, at time.Time, reservations []domain.Reservation) []domain.ReservationEvent {
	index := make(map[eventKey]int)
	var events []domain.ReservationEvent

	for _, r := range reservations {
		key := eventKey{r.OrderID, stockKey{r.ProductID, r.WarehouseID}}
		i, ok := index[key]
		if !ok {
			i = len(events)
			index[key] = i
			events = append(events, domain.ReservationEvent{
				EventID:     uuid.NewString(),
				EventType:   eventType,
				OrderID:     r.OrderID,
				OrderNumber: r.OrderNumber,
				ProductID:   r.ProductID,
				WarehouseID: r.WarehouseID,
				Reason:      reason,
				ActorID:     actorID,
				Timestamp:   at,
			})
		}
		events[i].Quantity += r.QuantityReserved
		events[i].Lots = append(events[i].Lots, domain.LotQuantity{LotID: r.StockLotID, Quantity: r.QuantityReserved})
	}
	return events
}

func sortedLotIDs(reservations []domain.Reservation) []uint {
	seen := make(map[uint]bool, len(reservations))
	ids := make([]uint, 0, len(reservations))
	for _, r := range reservations {
		if !seen[r.StockLotID] {
			seen[r.StockLotID] = true
			ids = append(ids, r.StockLotID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
