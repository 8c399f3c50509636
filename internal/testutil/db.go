// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

// NewDB opens a private in-memory SQLite database and migrates models into it.
// A single connection is kept so every query sees the same database and
// transactions are serialized.
func NewDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}
	return db
}

// SeedProduct inserts a product with a generated SKU
func SeedProduct(t *testing.T, db *gorm.DB, name string) *domain.Product {
	t.Helper()
	product := &domain.Product{SKU: "SKU-" + uuid.NewString()[:8], Name: name}
	require.NoError(t, db.Create(product).Error)
	return product
}

// SeedWarehouse inserts a warehouse
func SeedWarehouse(t *testing.T, db *gorm.DB, code string, active bool) *domain.Warehouse {
	t.Helper()
	warehouse := &domain.Warehouse{Code: code, Name: "Warehouse " + code, Active: true}
	require.NoError(t, db.Create(warehouse).Error)
	if !active {
		// gorm skips zero values on create, so deactivate explicitly
		require.NoError(t, db.Model(warehouse).Update("active", false).Error)
		warehouse.Active = false
	}
	return warehouse
}

// SeedLot inserts a lot with total = available = quantity
func SeedLot(t *testing.T, db *gorm.DB, productID, warehouseID uint, label string, quantity string) *domain.StockLot {
	t.Helper()
	qty := decimal.RequireFromString(quantity)
	lot := &domain.StockLot{
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Label:             label,
		QuantityTotal:     qty,
		QuantityAvailable: qty,
		ReceivedAt:        time.Now(),
	}
	require.NoError(t, db.Create(lot).Error)
	return lot
}

// ReloadLot reads a lot back from the database
func ReloadLot(t *testing.T, db *gorm.DB, id uint) domain.StockLot {
	t.Helper()
	var lot domain.StockLot
	require.NoError(t, db.First(&lot, id).Error)
	return lot
}

// CountRows counts the rows of a model's table
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
