package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LotRepository defines the contract for stock lot access
type LotRepository interface {
	CreateLot(ctx context.Context, lot *StockLot) error
	// LockAvailableLots returns lots with available > 0, oldest first, row-locked
	// until the surrounding transaction ends.
	LockAvailableLots(ctx context.Context, productID, warehouseID uint) ([]StockLot, error)
	// LockLots row-locks the given lots in ascending id order.
	LockLots(ctx context.Context, ids []uint) ([]StockLot, error)
	FindLots(ctx context.Context, productID, warehouseID uint) ([]StockLot, error)
	SumAvailable(ctx context.Context, productID, warehouseID uint) (decimal.Decimal, error)
	SaveLotQuantities(ctx context.Context, lot *StockLot) error
}

// ReservationRepository defines the contract for reservation access
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation *Reservation) error
	LockActiveReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	MarkReleased(ctx context.Context, id uint, releasedAt time.Time, reason string) error
	FindReservationsByOrder(ctx context.Context, orderID uint, status ReservationStatus) ([]Reservation, error)
}

// MovementRepository defines the contract for the append-only ledger
type MovementRepository interface {
	AppendMovement(ctx context.Context, movement *Movement) error
	FindMovements(ctx context.Context, productID, warehouseID uint, limit, offset int) ([]Movement, error)
}

// ReferenceRepository looks up the products and warehouses owned elsewhere
type ReferenceRepository interface {
	FindProduct(ctx context.Context, id uint) (*Product, error)
	FindWarehouse(ctx context.Context, id uint) (*Warehouse, error)
}

// Tx is the unit of work handed to a transactional operation
type Tx interface {
	LotRepository
	ReservationRepository
	MovementRepository
	ReferenceRepository
}

// Store is a Tx that can also open transactions. Outside Transaction each call
// runs on its own.
type Store interface {
	Tx
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// Event types published after commit
const (
	EventStockReserved = "stock.reserved"
	EventStockReleased = "stock.released"
)

// ReservationEvent is published after an allocation or release commits
type ReservationEvent struct {
	EventID     string        `json:"event_id"`
	EventType   string        `json:"event_type"`
	OrderID     uint          `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	ProductID   uint          `json:"product_id"`
	WarehouseID uint          `json:"warehouse_id"`
	Quantity    int           `json:"quantity"`
	Lots        []LotQuantity `json:"lots"`
	Reason      string        `json:"reason,omitempty"`
	ActorID     uint          `json:"actor_id"`
	Timestamp   time.Time     `json:"timestamp"`
}

// LotQuantity is one lot's share of a reservation event
type LotQuantity struct {
	LotID    uint `json:"lot_id"`
	Quantity int  `json:"quantity"`
}

// EventPublisher announces committed reservation changes
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, event ReservationEvent) error
}

// AvailabilityCache stores availability summaries per product and warehouse
type AvailabilityCache interface {
	Get(ctx context.Context, productID, warehouseID uint) (*AvailabilitySummary, bool)
	Set(ctx context.Context, summary *AvailabilitySummary)
	Invalidate(ctx context.Context, productID, warehouseID uint)
}
