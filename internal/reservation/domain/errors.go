package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Configuration errors
var (
	ErrNoWarehouseConfigured = errors.New("no warehouse configured for the current user")
	ErrNoWarehouseAssigned   = errors.New("configured warehouse does not exist or is inactive")
)

// Validation errors
var (
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInvalidOrder      = errors.New("order id is required")
	ErrInvalidProduct    = errors.New("product id is required")
	ErrInvalidExpiration = errors.New("expiration days cannot be negative")
	ErrUnknownProduct    = errors.New("product not found")
	ErrInvalidStatus     = errors.New("unknown reservation status")
)

// Store errors
var (
	ErrLotNotFound          = errors.New("stock lot not found")
	ErrReservationNotActive = errors.New("reservation is not active")
	ErrImmutableMovement    = errors.New("stock movements are append-only")
)

// InsufficientStockError is returned when the warehouse cannot cover a request
type InsufficientStockError struct {
	ProductID   uint
	WarehouseID uint
	Available   decimal.Decimal
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d in warehouse %d: available %s, requested %d",
		e.ProductID, e.WarehouseID, e.Available, e.Requested)
}

// IsValidationError reports whether err is a caller input problem
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidOrder) ||
		errors.Is(err, ErrInvalidProduct) ||
		errors.Is(err, ErrInvalidExpiration) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsWarehouseError reports whether err is a warehouse resolution problem
func IsWarehouseError(err error) bool {
	return errors.Is(err, ErrNoWarehouseConfigured) || errors.Is(err, ErrNoWarehouseAssigned)
}
