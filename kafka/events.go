package kafka

import "github.com/tair/lot-reservation/internal/reservation/domain"

// OrderRejectedEvent is emitted by the order service when an order is
// cancelled or rejected and its stock should go back on the shelf
type OrderRejectedEvent struct {
	EventID     string `json:"event_id"`
	EventType   string `json:"event_type"`
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
	ActorID     uint   `json:"actor_id"`
	WarehouseID *uint  `json:"warehouse_id,omitempty"`
}

// Event types
const (
	EventTypeStockReserved = domain.EventStockReserved
	EventTypeStockReleased = domain.EventStockReleased
	EventTypeOrderRejected = "order.rejected"
)

// Kafka topics
const (
	TopicStockReservations = "stock-reservations"
	TopicOrderRejected     = "order-rejected"
)
