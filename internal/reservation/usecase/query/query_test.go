package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/lot-reservation/internal/reservation/cache"
	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/repository"
	"github.com/tair/lot-reservation/internal/reservation/usecase/query"
	"github.com/tair/lot-reservation/internal/testutil"
)

type fixture struct {
	db        *gorm.DB
	store     *repository.GormStore
	product   *domain.Product
	warehouse *domain.Warehouse
	actor     domain.WarehouseContext
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t, repository.Models()...)
	f := fixture{
		db:        db,
		store:     repository.NewGormStore(db),
		product:   testutil.SeedProduct(t, db, "Omeprazole 20mg"),
		warehouse: testutil.SeedWarehouse(t, db, "NORTH", true),
	}
	f.actor = domain.NewWarehouseContext(5, f.warehouse.ID)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAvailability_PerLotAndTotals(t *testing.T) {
	f := setup(t)
	l1 := testutil.SeedLot(t, f.db, f.product.ID, f.warehouse.ID, "L1", "8")
	testutil.SeedLot(t, f.db, f.product.ID, f.warehouse.ID, "L2", "3")
	empty := testutil.SeedLot(t, f.db, f.product.ID, f.warehouse.ID, "EMPTY", "0")

	// reserve 2 of L1 directly so the summary has something reserved
	lot := testutil.ReloadLot(t, f.db, l1.ID)
	require.NoError(t, lot.Reserve(2))
	require.NoError(t, f.store.SaveLotQuantities(context.Background(), &lot))

	summary, err := query.NewAvailabilityHandler(f.store, nil).Handle(context.Background(), query.AvailabilityQuery{
		Actor: f.actor, ProductID: f.product.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, f.product.ID, summary.ProductID)
	assert.Equal(t, f.warehouse.ID, summary.WarehouseID)
	assert.True(t, dec("11").Equal(summary.TotalQuantity))
	assert.True(t, dec("9").Equal(summary.TotalAvailable))
	assert.Equal(t, 2, summary.TotalReserved)

	require.Len(t, summary.Lots, 3)
	assert.Equal(t, l1.ID, summary.Lots[0].LotID)
	assert.True(t, dec("75").Equal(summary.Lots[0].PercentageAvailable), "got %s", summary.Lots[0].PercentageAvailable)
	assert.True(t, dec("100").Equal(summary.Lots[1].PercentageAvailable))
	assert.Equal(t, empty.ID, summary.Lots[2].LotID)
	assert.True(t, summary.Lots[2].PercentageAvailable.IsZero())
}

func TestSummarize_RoundsPercentage(t *testing.T) {
	summary := query.Summarize(1, 1, []domain.StockLot{
		{ID: 1, QuantityTotal: dec("3"), QuantityAvailable: dec("2"), QuantityReserved: 1},
		{ID: 2, QuantityTotal: dec("0"), QuantityAvailable: dec("0")},
	})

	assert.Equal(t, "66.67", summary.Lots[0].PercentageAvailable.String())
	assert.True(t, summary.Lots[1].PercentageAvailable.IsZero())
	assert.True(t, dec("3").Equal(summary.TotalQuantity))
}

func TestSummarize_NoLots(t *testing.T) {
	summary := query.Summarize(1, 2, nil)

	assert.NotNil(t, summary.Lots)
	assert.Empty(t, summary.Lots)
	assert.True(t, summary.TotalAvailable.IsZero())
}

func TestAvailability_Errors(t *testing.T) {
	f := setup(t)
	handler := query.NewAvailabilityHandler(f.store, nil)
	inactive := testutil.SeedWarehouse(t, f.db, "CLOSED", false)

	_, err := handler.Handle(context.Background(), query.AvailabilityQuery{Actor: domain.WarehouseContext{}, ProductID: f.product.ID})
	assert.ErrorIs(t, err, domain.ErrNoWarehouseConfigured)

	_, err = handler.Handle(context.Background(), query.AvailabilityQuery{Actor: domain.NewWarehouseContext(5, inactive.ID), ProductID: f.product.ID})
	assert.ErrorIs(t, err, domain.ErrNoWarehouseAssigned)

	_, err = handler.Handle(context.Background(), query.AvailabilityQuery{Actor: f.actor})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	_, err = handler.Handle(context.Background(), query.AvailabilityQuery{Actor: f.actor, ProductID: 404})
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestAvailability_UsesCache(t *testing.T) {
	f := setup(t)
	lot := testutil.SeedLot(t, f.db, f.product.ID, f.warehouse.ID, "L1", "10")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	redisCache := cache.NewRedisCache(client, time.Minute)

	handler := query.NewAvailabilityHandler(f.store, redisCache)
	q := query.AvailabilityQuery{Actor: f.actor, ProductID: f.product.ID}

	first, err := handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(first.TotalAvailable))

	// change the row behind the cache's back
	reloaded := testutil.ReloadLot(t, f.db, lot.ID)
	require.NoError(t, reloaded.Reserve(4))
	require.NoError(t, f.store.SaveLotQuantities(context.Background(), &reloaded))

	cached, err := handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(cached.TotalAvailable))

	redisCache.Invalidate(context.Background(), f.product.ID, f.warehouse.ID)

	fresh, err := handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, dec("6").Equal(fresh.TotalAvailable))
}

func TestListMovements(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.store.AppendMovement(ctx, &domain.Movement{
			StockLotID: 1, ProductID: f.product.ID, WarehouseID: f.warehouse.ID,
			Delta: dec("1"), AggregateBefore: dec("0"), AggregateAfter: dec("1"),
			Type: domain.MovementReceipt,
		}))
	}
	handler := query.NewListMovementsHandler(f.store)

	page, err := handler.Handle(ctx, query.ListMovementsQuery{Actor: f.actor, ProductID: f.product.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Less(t, page[0].ID, page[1].ID)

	rest, err := handler.Handle(ctx, query.ListMovementsQuery{Actor: f.actor, ProductID: f.product.ID, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	_, err = handler.Handle(ctx, query.ListMovementsQuery{Actor: domain.WarehouseContext{}, ProductID: f.product.ID})
	assert.ErrorIs(t, err, domain.ErrNoWarehouseConfigured)
}

func TestListReservations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lot := testutil.SeedLot(t, f.db, f.product.ID, f.warehouse.ID, "L1", "10")
	now := time.Now()
	for i := 0; i < 2; i++ {
		require.NoError(t, f.store.CreateReservation(ctx, &domain.Reservation{
			OrderID: 11, StockLotID: lot.ID, ProductID: f.product.ID, WarehouseID: f.warehouse.ID,
			QuantityReserved: 1, ReservedAt: now, ExpiresAt: now.Add(time.Hour), Status: domain.StatusActive,
		}))
	}
	all, err := f.store.FindReservationsByOrder(ctx, 11, "")
	require.NoError(t, err)
	require.NoError(t, f.store.MarkReleased(ctx, all[0].ID, now, "x"))

	handler := query.NewListReservationsHandler(f.store)

	everything, err := handler.Handle(ctx, query.ListReservationsQuery{OrderID: 11})
	require.NoError(t, err)
	assert.Len(t, everything, 2)

	active, err := handler.Handle(ctx, query.ListReservationsQuery{OrderID: 11, Status: domain.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = handler.Handle(ctx, query.ListReservationsQuery{OrderID: 11, Status: "PENDING"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = handler.Handle(ctx, query.ListReservationsQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}
