package command_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/usecase/command"
)

func TestReceiveLot(t *testing.T) {
	e := setup(t)
	e.lot(t, "OLD", "2")
	handler := command.NewReceiveLotHandler(e.deps)

	lot, err := handler.Handle(context.Background(), command.ReceiveLotCommand{
		Actor:       e.actor,
		ProductID:   e.product.ID,
		Label:       "B-2026-03",
		Quantity:    decimal.RequireFromString("12.250"),
		DocumentRef: "PO-881",
	})
	require.NoError(t, err)

	assert.NotZero(t, lot.ID)
	assert.Equal(t, e.warehouse.ID, lot.WarehouseID)
	assertLot(t, e.db, lot.ID, "12.25", 0)

	movements := e.movements(t)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementReceipt, movements[0].Type)
	assert.Equal(t, lot.ID, movements[0].StockLotID)
	assertDecimal(t, "12.25", movements[0].Delta)
	assertDecimal(t, "2", movements[0].AggregateBefore)
	assertDecimal(t, "14.25", movements[0].AggregateAfter)
	assert.Equal(t, "PO-881", movements[0].DocumentRef)

	assert.Equal(t, []uint{e.product.ID}, e.cache.invalidated)
	assert.Equal(t, 1.0, metricValue(t, e.registry, "reservation_lots_received_total", nil))
}

func TestReceiveLot_DefaultLabel(t *testing.T) {
	e := setup(t)

	lot, err := command.NewReceiveLotHandler(e.deps).Handle(context.Background(), command.ReceiveLotCommand{
		Actor: e.actor, ProductID: e.product.ID, Quantity: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "LOT-20260302-090000", lot.Label)
}

func TestReceiveLot_Rejects(t *testing.T) {
	e := setup(t)
	handler := command.NewReceiveLotHandler(e.deps)

	_, err := handler.Handle(context.Background(), command.ReceiveLotCommand{
		Actor: e.actor, ProductID: e.product.ID, Quantity: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = handler.Handle(context.Background(), command.ReceiveLotCommand{
		Actor: e.actor, ProductID: 777, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)

	_, err = handler.Handle(context.Background(), command.ReceiveLotCommand{
		Actor: domain.WarehouseContext{ActorID: 1}, ProductID: e.product.ID, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNoWarehouseConfigured)
}
