package domain

import "time"

// ReservationStatus is the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusActive   ReservationStatus = "ACTIVE"
	StatusReleased ReservationStatus = "RELEASED"
)

// DefaultExpirationDays applies when neither the caller nor the config set a window.
const DefaultExpirationDays = 3

// Reservation is a claim on part of one lot on behalf of one order
type Reservation struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	OrderID          uint              `json:"order_id" gorm:"not null;index:idx_reservation_order_status"`
	OrderNumber      string            `json:"order_number" gorm:"size:64"`
	StockLotID       uint              `json:"stock_lot_id" gorm:"not null;index"`
	ProductID        uint              `json:"product_id" gorm:"not null;index"`
	WarehouseID      uint              `json:"warehouse_id" gorm:"not null"`
	QuantityReserved int               `json:"quantity_reserved" gorm:"not null"`
	ReservedAt       time.Time         `json:"reserved_at" gorm:"not null"`
	ExpiresAt        time.Time         `json:"expires_at" gorm:"not null;index"`
	Status           ReservationStatus `json:"status" gorm:"size:16;not null;default:'ACTIVE';index:idx_reservation_order_status"`
	ReleasedAt       *time.Time        `json:"released_at,omitempty"`
	ReleaseReason    string            `json:"release_reason,omitempty" gorm:"size:255"`
	ActorID          uint              `json:"actor_id"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	Lot *StockLot `json:"lot,omitempty" gorm:"foreignKey:StockLotID"`
}

// TableName specifies the table name
func (Reservation) TableName() string {
	return "reservations"
}

// IsActive reports whether the reservation still holds stock
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// IsExpired reports whether the reservation window has passed at the given instant
func (r *Reservation) IsExpired(at time.Time) bool {
	return at.After(r.ExpiresAt)
}

// ReservationFilter selects ACTIVE reservations for release.
// Zero values mean "any".
type ReservationFilter struct {
	OrderID       uint
	ProductID     uint
	ExpiredBefore *time.Time
}

// OrderRef identifies the order a reservation belongs to.
// Number and DocumentType only annotate ledger entries.
type OrderRef struct {
	ID           uint   `json:"id"`
	Number       string `json:"number"`
	DocumentType string `json:"document_type,omitempty"`
}

// DocumentTypeProforma is the ledger document type used when none is given.
const DocumentTypeProforma = "proforma"

// Document returns the ledger document type, defaulting to proforma
func (o OrderRef) Document() string {
	if o.DocumentType == "" {
		return DocumentTypeProforma
	}
	return o.DocumentType
}
