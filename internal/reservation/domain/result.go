package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationResult is one of *Allocated, *InsufficientStock, *NoWarehouse,
// *AllocationRejected or *AllocationFailed.
type AllocationResult interface {
	Succeeded() bool
	allocationResult()
}

// LotAllocation describes how much one lot contributed to an allocation
type LotAllocation struct {
	LotID           uint            `json:"lot_id"`
	Label           string          `json:"label"`
	QuantityTaken   int             `json:"quantity_taken"`
	AvailableBefore decimal.Decimal `json:"available_before"`
	AvailableAfter  decimal.Decimal `json:"available_after"`
}

// AllocationSummary totals an allocation
type AllocationSummary struct {
	Requested      int       `json:"requested"`
	Reserved       int       `json:"reserved"`
	LotCount       int       `json:"lot_count"`
	ExpirationDays int       `json:"expiration_days"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Allocated is the success variant
type Allocated struct {
	Reservations []Reservation     `json:"reservations"`
	Distribution []LotAllocation   `json:"distribution"`
	Summary      AllocationSummary `json:"summary"`
}

// InsufficientStock means the warehouse cannot cover the request; nothing was written
type InsufficientStock struct {
	Available decimal.Decimal `json:"available"`
	Requested int             `json:"requested"`
}

// NoWarehouse means the actor's warehouse could not be resolved
type NoWarehouse struct {
	Err error `json:"-"`
}

// AllocationRejected means the request failed validation
type AllocationRejected struct {
	Err error `json:"-"`
}

// AllocationFailed means an unexpected error rolled the transaction back
type AllocationFailed struct {
	Message string `json:"message"`
}

func (*Allocated) Succeeded() bool          { return true }
func (*InsufficientStock) Succeeded() bool  { return false }
func (*NoWarehouse) Succeeded() bool        { return false }
func (*AllocationRejected) Succeeded() bool { return false }
func (*AllocationFailed) Succeeded() bool   { return false }

func (*Allocated) allocationResult()          {}
func (*InsufficientStock) allocationResult()  {}
func (*NoWarehouse) allocationResult()        {}
func (*AllocationRejected) allocationResult() {}
func (*AllocationFailed) allocationResult()   {}

// ReleaseResult is one of *Released, *ReleaseRejected or *ReleaseFailed.
type ReleaseResult interface {
	Succeeded() bool
	releaseResult()
}

// Released is the success variant. Zero counts mean nothing matched.
type Released struct {
	QuantityReleased     int           `json:"quantity_released"`
	ReservationsReleased int           `json:"reservations_released"`
	Reservations         []Reservation `json:"reservations,omitempty"`
}

// ReleaseRejected means the request failed validation
type ReleaseRejected struct {
	Err error `json:"-"`
}

// ReleaseFailed means the transaction was rolled back; Message carries the cause
type ReleaseFailed struct {
	Message string `json:"message"`
}

func (*Released) Succeeded() bool        { return true }
func (*ReleaseRejected) Succeeded() bool { return false }
func (*ReleaseFailed) Succeeded() bool   { return false }

func (*Released) releaseResult()        {}
func (*ReleaseRejected) releaseResult() {}
func (*ReleaseFailed) releaseResult()   {}

// LotAvailability is the per-lot line of an availability summary
type LotAvailability struct {
	LotID               uint            `json:"lot_id"`
	Label               string          `json:"label"`
	QuantityTotal       decimal.Decimal `json:"quantity_total"`
	QuantityAvailable   decimal.Decimal `json:"quantity_available"`
	QuantityReserved    int             `json:"quantity_reserved"`
	PercentageAvailable decimal.Decimal `json:"percentage_available"`
}

// AvailabilitySummary aggregates every lot of a product in one warehouse
type AvailabilitySummary struct {
	ProductID      uint              `json:"product_id"`
	WarehouseID    uint              `json:"warehouse_id"`
	TotalQuantity  decimal.Decimal   `json:"total_quantity"`
	TotalAvailable decimal.Decimal   `json:"total_available"`
	TotalReserved  int               `json:"total_reserved"`
	Lots           []LotAvailability `json:"lots"`
}

// PercentageAvailable returns round(available/total*100, 2), or 0 when total is 0
func PercentageAvailable(available, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return available.Mul(decimal.NewFromInt(100)).Div(total).Round(2)
}
