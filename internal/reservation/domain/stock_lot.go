package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StockLot represents one received batch of a product in a warehouse
type StockLot struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	ProductID         uint            `json:"product_id" gorm:"not null;index:idx_lot_product_warehouse"`
	WarehouseID       uint            `json:"warehouse_id" gorm:"not null;index:idx_lot_product_warehouse"`
	Label             string          `json:"label" gorm:"size:64;not null"`
	QuantityTotal     decimal.Decimal `json:"quantity_total" gorm:"type:numeric(14,3);not null;default:0"`
	QuantityAvailable decimal.Decimal `json:"quantity_available" gorm:"type:numeric(14,3);not null;default:0"`
	QuantityReserved  int             `json:"quantity_reserved" gorm:"not null;default:0"`
	ReceivedAt        time.Time       `json:"received_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (StockLot) TableName() string {
	return "stock_lots"
}

// Balanced reports whether available + reserved equals total
func (l *StockLot) Balanced() bool {
	return l.QuantityAvailable.Add(decimal.NewFromInt(int64(l.QuantityReserved))).Equal(l.QuantityTotal)
}

// ReservableUnits is the whole number of units that can still be reserved.
func (l *StockLot) ReservableUnits() int {
	if !l.QuantityAvailable.IsPositive() {
		return 0
	}
	return int(l.QuantityAvailable.Floor().IntPart())
}

// Reserve moves qty units from available to reserved.
func (l *StockLot) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > l.ReservableUnits() {
		return fmt.Errorf("lot %d: cannot reserve %d, only %s available", l.ID, qty, l.QuantityAvailable)
	}
	l.QuantityAvailable = l.QuantityAvailable.Sub(decimal.NewFromInt(int64(qty)))
	l.QuantityReserved += qty
	return nil
}

// Restore moves qty units from reserved back to available.
func (l *StockLot) Restore(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > l.QuantityReserved {
		return fmt.Errorf("lot %d: cannot restore %d, only %d reserved", l.ID, qty, l.QuantityReserved)
	}
	l.QuantityAvailable = l.QuantityAvailable.Add(decimal.NewFromInt(int64(qty)))
	l.QuantityReserved -= qty
	return nil
}

// Product is the minimal product reference the engine validates against
type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SKU       string    `json:"sku" gorm:"size:64;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// Warehouse is the minimal warehouse reference an actor is assigned to
type Warehouse struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:32;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Warehouse) TableName() string {
	return "warehouses"
}
