package command_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/repository"
	"github.com/tair/lot-reservation/internal/reservation/usecase/command"
	"github.com/tair/lot-reservation/internal/testutil"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
	err    error
}

func (p *recordingPublisher) PublishReservationEvent(ctx context.Context, event domain.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []domain.ReservationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ReservationEvent(nil), p.events...)
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []uint
}

func (c *recordingCache) Get(ctx context.Context, productID, warehouseID uint) (*domain.AvailabilitySummary, bool) {
	return nil, false
}

func (c *recordingCache) Set(ctx context.Context, summary *domain.AvailabilitySummary) {}

func (c *recordingCache) Invalidate(ctx context.Context, productID, warehouseID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, productID)
}

// faultyStore fails the failAt-th AppendMovement (1-based) inside a transaction
type faultyStore struct {
	domain.Store
	mu      sync.Mutex
	appends int
	failAt  int
}

var errDiskFull = errors.New("disk full")

func (s *faultyStore) Transaction(ctx context.Context, fn func(tx domain.Tx) error) error {
	return s.Store.Transaction(ctx, func(tx domain.Tx) error {
		return fn(&faultyTx{Tx: tx, store: s})
	})
}

type faultyTx struct {
	domain.Tx
	store *faultyStore
}

func (t *faultyTx) AppendMovement(ctx context.Context, m *domain.Movement) error {
	t.store.mu.Lock()
	t.store.appends++
	fail := t.store.appends == t.store.failAt
	t.store.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return t.Tx.AppendMovement(ctx, m)
}

type env struct {
	db        *gorm.DB
	store     *repository.GormStore
	clock     *clock
	publisher *recordingPublisher
	cache     *recordingCache
	registry  *prometheus.Registry
	deps      command.Dependencies
	product   *domain.Product
	warehouse *domain.Warehouse
	actor     domain.WarehouseContext
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t, repository.Models()...)
	store := repository.NewGormStore(db)

	e := &env{
		db:        db,
		store:     store,
		clock:     &clock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		publisher: &recordingPublisher{},
		cache:     &recordingCache{},
		registry:  prometheus.NewRegistry(),
		product:   testutil.SeedProduct(t, db, "Amoxicillin 500mg"),
		warehouse: testutil.SeedWarehouse(t, db, "MAIN", true),
	}
	e.actor = domain.NewWarehouseContext(42, e.warehouse.ID)
	e.deps = command.Dependencies{
		Store:     store,
		Publisher: e.publisher,
		Cache:     e.cache,
		Metrics:   command.NewMetrics(e.registry),
		Settings: command.Settings{
			DefaultExpirationDays: 3,
			ExpiredReason:         "reservation expired",
			Now:                   e.clock.Now,
		},
	}
	return e
}

func (e *env) lot(t *testing.T, label, qty string) *domain.StockLot {
	return testutil.SeedLot(t, e.db, e.product.ID, e.warehouse.ID, label, qty)
}

func (e *env) order(id uint) domain.OrderRef {
	return domain.OrderRef{ID: id, Number: fmt.Sprintf("PRO-%04d", id)}
}

func (e *env) allocate(t *testing.T, orderID uint, qty int) domain.AllocationResult {
	t.Helper()
	return command.NewAllocateHandler(e.deps).Handle(context.Background(), command.AllocateCommand{
		Actor:     e.actor,
		Order:     e.order(orderID),
		ProductID: e.product.ID,
		Quantity:  qty,
	})
}

func (e *env) movements(t *testing.T) []domain.Movement {
	t.Helper()
	movements, err := e.store.FindMovements(context.Background(), e.product.ID, e.warehouse.ID, 0, 0)
	require.NoError(t, err)
	return movements
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func assertLot(t *testing.T, db *gorm.DB, id uint, available string, reserved int) {
	t.Helper()
	lot := testutil.ReloadLot(t, db, id)
	assert.Truef(t, decimal.RequireFromString(available).Equal(lot.QuantityAvailable),
		"lot %d available: expected %s, got %s", id, available, lot.QuantityAvailable)
	assert.Equal(t, reserved, lot.QuantityReserved, "lot %d reserved", id)
	assert.True(t, lot.Balanced(), "lot %d violates available + reserved == total", id)
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue metrics
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			if m.GetHistogram() != nil {
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}
