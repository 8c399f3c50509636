package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementType classifies ledger entries
type MovementType string

const (
	MovementReservation MovementType = "reservation"
	MovementRelease     MovementType = "release"
	MovementReceipt     MovementType = "receipt"
)

// Movement is an append-only ledger entry. AggregateBefore and AggregateAfter
// hold the available quantity summed over every lot of the product in the
// warehouse, not the touched lot's own value.
type Movement struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	StockLotID      uint            `json:"stock_lot_id" gorm:"not null;index"`
	ProductID       uint            `json:"product_id" gorm:"not null;index:idx_movement_product_warehouse"`
	WarehouseID     uint            `json:"warehouse_id" gorm:"not null;index:idx_movement_product_warehouse"`
	Delta           decimal.Decimal `json:"delta" gorm:"type:numeric(14,3);not null"`
	AggregateBefore decimal.Decimal `json:"aggregate_before" gorm:"type:numeric(14,3);not null"`
	AggregateAfter  decimal.Decimal `json:"aggregate_after" gorm:"type:numeric(14,3);not null"`
	Type            MovementType    `json:"type" gorm:"size:16;not null"`
	DocumentType    string          `json:"document_type" gorm:"size:32"`
	DocumentRef     string          `json:"document_ref" gorm:"size:64;index"`
	Note            string          `json:"note" gorm:"size:512"`
	ActorID         uint            `json:"actor_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (Movement) TableName() string {
	return "stock_movements"
}

// BeforeUpdate keeps ledger rows immutable
func (m *Movement) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableMovement
}

// BeforeDelete keeps ledger rows immutable
func (m *Movement) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableMovement
}
