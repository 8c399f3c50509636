package command_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/usecase/command"
	"github.com/tair/lot-reservation/internal/testutil"
)

func TestAllocate_FIFOAcrossLots(t *testing.T) {
	e := setup(t)
	l1 := e.lot(t, "L1", "5")
	l2 := e.lot(t, "L2", "10")

	result := e.allocate(t, 1, 8)

	ok, isOK := result.(*domain.Allocated)
	require.True(t, isOK, "expected *Allocated, got %T", result)
	assert.True(t, result.Succeeded())

	require.Len(t, ok.Reservations, 2)
	assert.Equal(t, l1.ID, ok.Reservations[0].StockLotID)
	assert.Equal(t, 5, ok.Reservations[0].QuantityReserved)
	assert.Equal(t, l2.ID, ok.Reservations[1].StockLotID)
	assert.Equal(t, 3, ok.Reservations[1].QuantityReserved)
	assert.Less(t, ok.Reservations[0].ID, ok.Reservations[1].ID)

	assert.Equal(t, 8, ok.Summary.Requested)
	assert.Equal(t, 8, ok.Summary.Reserved)
	assert.Equal(t, 2, ok.Summary.LotCount)

	assertLot(t, e.db, l1.ID, "0", 5)
	assertLot(t, e.db, l2.ID, "7", 3)
}

func TestAllocate_ConcreteScenario(t *testing.T) {
	e := setup(t)
	l1 := e.lot(t, "L1", "3")
	l2 := e.lot(t, "L2", "4")
	l3 := e.lot(t, "L3", "0")

	result := e.allocate(t, 7, 5)
	ok, isOK := result.(*domain.Allocated)
	require.True(t, isOK, "expected *Allocated, got %T", result)

	require.Len(t, ok.Distribution, 2)
	assert.Equal(t, l1.ID, ok.Distribution[0].LotID)
	assert.Equal(t, "L1", ok.Distribution[0].Label)
	assert.Equal(t, 3, ok.Distribution[0].QuantityTaken)
	assertDecimal(t, "3", ok.Distribution[0].AvailableBefore)
	assertDecimal(t, "0", ok.Distribution[0].AvailableAfter)
	assert.Equal(t, l2.ID, ok.Distribution[1].LotID)
	assert.Equal(t, 2, ok.Distribution[1].QuantityTaken)
	assertDecimal(t, "4", ok.Distribution[1].AvailableBefore)
	assertDecimal(t, "2", ok.Distribution[1].AvailableAfter)

	assertLot(t, e.db, l1.ID, "0", 3)
	assertLot(t, e.db, l2.ID, "2", 2)
	assertLot(t, e.db, l3.ID, "0", 0)

	movements := e.movements(t)
	require.Len(t, movements, 2)
	assert.Equal(t, domain.MovementReservation, movements[0].Type)
	assertDecimal(t, "-3", movements[0].Delta)
	assertDecimal(t, "7", movements[0].AggregateBefore)
	assertDecimal(t, "4", movements[0].AggregateAfter)
	assertDecimal(t, "-2", movements[1].Delta)
	assertDecimal(t, "4", movements[1].AggregateBefore)
	assertDecimal(t, "2", movements[1].AggregateAfter)
	assert.Equal(t, "PRO-0007", movements[0].DocumentRef)
	assert.Equal(t, domain.DocumentTypeProforma, movements[0].DocumentType)
	assert.Contains(t, movements[0].Note, "L1")
	assert.Equal(t, uint(42), movements[0].ActorID)

	released := command.NewReleaseByProductHandler(e.deps).Handle(context.Background(), command.ReleaseByProductCommand{
		Actor:     e.actor,
		Order:     e.order(7),
		ProductID: e.product.ID,
		Reason:    "test",
	})
	rel, isReleased := released.(*domain.Released)
	require.True(t, isReleased, "expected *Released, got %T", released)
	assert.Equal(t, 5, rel.QuantityReleased)
	assert.Equal(t, 2, rel.ReservationsReleased)

	assertLot(t, e.db, l1.ID, "3", 0)
	assertLot(t, e.db, l2.ID, "4", 0)
	assertLot(t, e.db, l3.ID, "0", 0)
}

func TestAllocate_InsufficientStockWritesNothing(t *testing.T) {
	e := setup(t)
	l1 := e.lot(t, "L1", "4")
	l2 := e.lot(t, "L2", "6")

	result := e.allocate(t, 1, 11)

	insufficient, ok := result.(*domain.InsufficientStock)
	require.True(t, ok, "expected *InsufficientStock, got %T", result)
	assert.False(t, result.Succeeded())
	assertDecimal(t, "10", insufficient.Available)
	assert.Equal(t, 11, insufficient.Requested)

	assert.Zero(t, testutil.CountRows(t, e.db, &domain.Reservation{}))
	assert.Zero(t, testutil.CountRows(t, e.db, &domain.Movement{}))
	assertLot(t, e.db, l1.ID, "4", 0)
	assertLot(t, e.db, l2.ID, "6", 0)
	assert.Empty(t, e.publisher.Events())
}

func TestAllocate_NoLotsIsInsufficient(t *testing.T) {
	e := setup(t)

	result := e.allocate(t, 1, 1)

	insufficient, ok := result.(*domain.InsufficientStock)
	require.True(t, ok, "expected *InsufficientStock, got %T", result)
	assert.True(t, insufficient.Available.IsZero())
}

func TestAllocate_FractionalAvailabilityIsTruncated(t *testing.T) {
	e := setup(t)
	l1 := e.lot(t, "L1", "2.5")
	l2 := e.lot(t, "L2", "3")

	result := e.allocate(t, 1, 6)
	insufficient, ok := result.(*domain.InsufficientStock)
	require.True(t, ok, "expected *InsufficientStock, got %T", result)
	assertDecimal(t, "5.5", insufficient.Available)

	result = e.allocate(t, 1, 5)
	allocated, ok := result.(*domain.Allocated)
	require.True(t, ok, "expected *Allocated, got %T", result)
	require.Len(t, allocated.Distribution, 2)
	assert.Equal(t, 2, allocated.Distribution[0].QuantityTaken)
	assert.Equal(t, 3, allocated.Distribution[1].QuantityTaken)

	assertLot(t, e.db, l1.ID, "0.5", 2)
	assertLot(t, e.db, l2.ID, "0", 3)
}

func TestAllocate_ValidationFailures(t *testing.T) {
	e := setup(t)
	e.lot(t, "L1", "10")
	handler := command.NewAllocateHandler(e.deps)

	tests := []struct {
		name string
		cmd  command.AllocateCommand
		err  error
	}{
		{"zero quantity", command.AllocateCommand{Actor: e.actor, Order: e.order(1), ProductID: e.product.ID, Quantity: 0}, domain.ErrInvalidQuantity},
		{"negative quantity", command.AllocateCommand{Actor: e.actor, Order: e.order(1), ProductID: e.product.ID, Quantity: -2}, domain.ErrInvalidQuantity},
		{"missing order", command.AllocateCommand{Actor: e.actor, ProductID: e.product.ID, Quantity: 1}, domain.ErrInvalidOrder},
		{"missing product", command.AllocateCommand{Actor: e.actor, Order: e.order(1), Quantity: 1}, domain.ErrInvalidProduct},
		{"unknown product", command.AllocateCommand{Actor: e.actor, Order: e.order(1), ProductID: 9999, Quantity: 1}, domain.ErrUnknownProduct},
		{"negative expiration", command.AllocateCommand{Actor: e.actor, Order: e.order(1), ProductID: e.product.ID, Quantity: 1, ExpirationDays: -1}, domain.ErrInvalidExpiration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handler.Handle(context.Background(), tt.cmd)
			rejected, ok := result.(*domain.AllocationRejected)
			require.True(t, ok, "expected *AllocationRejected, got %T", result)
			assert.ErrorIs(t, rejected.Err, tt.err)
			assert.True(t, domain.IsValidationError(rejected.Err))
		})
	}

	assert.Zero(t, testutil.CountRows(t, e.db, &domain.Reservation{}))
}

func TestAllocate_WarehouseResolution(t *testing.T) {
	e := setup(t)
	e.lot(t, "L1", "10")
	inactive := testutil.SeedWarehouse(t, e.db, "OLD", false)
	handler := command.NewAllocateHandler(e.deps)

	tests := []struct {
		name  string
		actor domain.WarehouseContext
		err   error
	}{
		{"not configured", domain.WarehouseContext{ActorID: 42}, domain.ErrNoWarehouseConfigured},
		{"unknown warehouse", domain.NewWarehouseContext(42, 9999), domain.ErrNoWarehouseAssigned},
		{"inactive warehouse", domain.NewWarehouseContext(42, inactive.ID), domain.ErrNoWarehouseAssigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handler.Handle(context.Background(), command.AllocateCommand{
				Actor: tt.actor, Order: e.order(1), ProductID: e.product.ID, Quantity: 1,
			})
			noWarehouse, ok := result.(*domain.NoWarehouse)
			require.True(t, ok, "expected *NoWarehouse, got %T", result)
			assert.ErrorIs(t, noWarehouse.Err, tt.err)
		})
	}
}

func TestAllocate_RollsBackOnUnexpectedError(t *testing.T) {
	e := setup(t)
	l1 := e.lot(t, "L1", "2")
	l2 := e.lot(t, "L2", "5")

	deps := e.deps
	deps.Store = &faultyStore{Store: e.store, failAt: 2}

	result := command.NewAllocateHandler(deps).Handle(context.Background(), command.AllocateCommand{
		Actor: e.actor, Order: e.order(1), ProductID: e.product.ID, Quantity: 4,
	})

	failed, ok := result.(*domain.AllocationFailed)
	require.True(t, ok, "expected *AllocationFailed, got %T", result)
	assert.NotEmpty(t, failed.Message)
	assert.NotContains(t, failed.Message, "disk full")

	assert.Zero(t, testutil.CountRows(t, e.db, &domain.Reservation{}))
	assert.Zero(t, testutil.CountRows(t, e.db, &domain.Movement{}))
	assertLot(t, e.db, l1.ID, "2", 0)
	assertLot(t, e.db, l2.ID, "5", 0)
	assert.Empty(t, e.publisher.Events())
}

func TestAllocate_ExpirationWindow(t *testing.T) {
	e := setup(t)
	e.lot(t, "L1", "10")
	now := e.clock.Now()

	result := e.allocate(t, 1, 2)
	allocated, ok := result.(*domain.Allocated)
	require.True(t, ok, "expected *Allocated, got %T", result)
	assert.Equal(t, 3, allocated.Summary.ExpirationDays)
	assert.True(t, allocated.Summary.ExpiresAt.Equal(now.AddDate(0, 0, 3)))
	assert.True(t, allocated.Reservations[0].ExpiresAt.Equal(now.AddDate(0, 0, 3)))

	result = command.NewAllocateHandler(e.deps).Handle(context.Background(), command.AllocateCommand{
		Actor: e.actor, Order: e.order(2), ProductID: e.product.ID, Quantity: 1, ExpirationDays: 10,
	})
	allocated, ok = result.(*domain.Allocated)
	require.True(t, ok, "expected *Allocated, got %T", result)
	assert.Equal(t, 10, allocated.Summary.ExpirationDays)
	assert.True(t, allocated.Summary.ExpiresAt.Equal(now.AddDate(0, 0, 10)))
}

func TestAllocate_PublishesEventAndInvalidatesCache(t *testing.T) {
	e := setup(t)
	l1 := e.lot(t, "L1", "2")
	l2 := e.lot(t, "L2", "5")

	require.True(t, e.allocate(t, 3, 4).Succeeded())

	events := e.publisher.Events()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, domain.EventStockReserved, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, uint(3), event.OrderID)
	assert.Equal(t, "PRO-0003", event.OrderNumber)
	assert.Equal(t, 4, event.Quantity)
	assert.Equal(t, []domain.LotQuantity{{LotID: l1.ID, Quantity: 2}, {LotID: l2.ID, Quantity: 2}}, event.Lots)

	assert.Equal(t, []uint{e.product.ID}, e.cache.invalidated)
}

func TestAllocate_PublishFailureDoesNotUndoCommit(t *testing.T) {
	e := setup(t)
	e.lot(t, "L1", "5")
	e.publisher.err = assert.AnError

	result := e.allocate(t, 1, 2)

	assert.True(t, result.Succeeded())
	assert.EqualValues(t, 1, testutil.CountRows(t, e.db, &domain.Reservation{}))
}

func TestAllocate_ConcurrentRequestsNeverOversell(t *testing.T) {
	e := setup(t)
	l1 := e.lot(t, "L1", "8")
	l2 := e.lot(t, "L2", "12")

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	handler := command.NewAllocateHandler(e.deps)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(orderID uint) {
			defer wg.Done()
			result := handler.Handle(context.Background(), command.AllocateCommand{
				Actor: e.actor, Order: e.order(orderID), ProductID: e.product.ID, Quantity: 3,
			})
			if result.Succeeded() {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 6, succeeded)

	first := testutil.ReloadLot(t, e.db, l1.ID)
	second := testutil.ReloadLot(t, e.db, l2.ID)
	assert.Equal(t, 18, first.QuantityReserved+second.QuantityReserved)
	assert.True(t, first.Balanced())
	assert.True(t, second.Balanced())
}

func TestAllocate_Metrics(t *testing.T) {
	e := setup(t)
	e.lot(t, "L1", "5")

	e.allocate(t, 1, 3)
	e.allocate(t, 2, 30)
	e.allocate(t, 3, 0)

	assert.Equal(t, 1.0, metricValue(t, e.registry, "reservation_allocations_total", map[string]string{"outcome": "allocated"}))
	assert.Equal(t, 1.0, metricValue(t, e.registry, "reservation_allocations_total", map[string]string{"outcome": "insufficient_stock"}))
	assert.Equal(t, 1.0, metricValue(t, e.registry, "reservation_allocations_total", map[string]string{"outcome": "rejected"}))
	assert.Equal(t, 3.0, metricValue(t, e.registry, "reservation_units_reserved_total", nil))
	assert.Equal(t, 3.0, metricValue(t, e.registry, "reservation_allocation_duration_seconds", nil))
}

func TestAllocate_NilMetricsAndCollaborators(t *testing.T) {
	e := setup(t)
	e.lot(t, "L1", "5")

	deps := command.Dependencies{Store: e.store, Settings: command.Settings{Now: func() time.Time { return e.clock.Now() }}}
	result := command.NewAllocateHandler(deps).Handle(context.Background(), command.AllocateCommand{
		Actor: e.actor, Order: e.order(1), ProductID: e.product.ID, Quantity: 2,
	})

	allocated, ok := result.(*domain.Allocated)
	require.True(t, ok, "expected *Allocated, got %T", result)
	assert.Equal(t, domain.DefaultExpirationDays, allocated.Summary.ExpirationDays)
}
