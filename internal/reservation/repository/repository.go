package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Models lists every table the store owns, in migration order
func Models() []interface{} {
	return []interface{}{
		&domain.Product{},
		&domain.Warehouse{},
		&domain.StockLot{},
		&domain.Reservation{},
		&domain.Movement{},
	}
}

func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(Models()...)
}

// Transaction runs fn inside a database transaction. A non-nil error from fn
// rolls back everything fn wrote.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx domain.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&GormStore{db: gtx})
	})
}

// forUpdate adds SELECT ... FOR UPDATE. SQLite has no row locks and
// serializes writers, so the clause is left out there.
func (s *GormStore) forUpdate(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *GormStore) CreateLot(ctx context.Context, lot *domain.StockLot) error {
	return s.db.WithContext(ctx).Create(lot).Error
}

func (s *GormStore) LockAvailableLots(ctx context.Context, productID, warehouseID uint) ([]domain.StockLot, error) {
	var lots []domain.StockLot
	err := s.forUpdate(ctx).
		Where("product_id = ? AND warehouse_id = ? AND quantity_available > 0", productID, warehouseID).
		Order("id ASC").
		Find(&lots).Error
	return lots, err
}

func (s *GormStore) LockLots(ctx context.Context, ids []uint) ([]domain.StockLot, error) {
	var lots []domain.StockLot
	if len(ids) == 0 {
		return lots, nil
	}
	err := s.forUpdate(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	if len(lots) != len(uniqueIDs(ids)) {
		return nil, domain.ErrLotNotFound
	}
	return lots, nil
}

func (s *GormStore) FindLots(ctx context.Context, productID, warehouseID uint) ([]domain.StockLot, error) {
	var lots []domain.StockLot
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Order("id ASC").
		Find(&lots).Error
	return lots, err
}

// SumAvailable adds up quantity_available over every lot of the product in the warehouse
func (s *GormStore) SumAvailable(ctx context.Context, productID, warehouseID uint) (decimal.Decimal, error) {
	var lots []domain.StockLot
	err := s.db.WithContext(ctx).
		Select("id", "quantity_available").
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Find(&lots).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, lot := range lots {
		total = total.Add(lot.QuantityAvailable)
	}
	return total, nil
}

func (s *GormStore) SaveLotQuantities(ctx context.Context, lot *domain.StockLot) error {
	result := s.db.WithContext(ctx).
		Model(&domain.StockLot{}).
		Where("id = ?", lot.ID).
		Updates(map[string]interface{}{
			"quantity_available": lot.QuantityAvailable,
			"quantity_reserved":  lot.QuantityReserved,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

func (s *GormStore) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	return s.db.WithContext(ctx).Omit("Lot").Create(reservation).Error
}

func (s *GormStore) LockActiveReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	query := s.forUpdate(ctx).Where("status = ?", domain.StatusActive)
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.ExpiredBefore != nil {
		query = query.Where("expires_at < ?", *filter.ExpiredBefore)
	}

	var reservations []domain.Reservation
	err := query.Order("id ASC").Find(&reservations).Error
	return reservations, err
}

// MarkReleased flips an ACTIVE reservation to RELEASED. Anything else is
// ErrReservationNotActive so a concurrent release cannot restore stock twice.
func (s *GormStore) MarkReleased(ctx context.Context, id uint, releasedAt time.Time, reason string) error {
	result := s.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("id = ? AND status = ?", id, domain.StatusActive).
		Updates(map[string]interface{}{
			"status":         domain.StatusReleased,
			"released_at":    releasedAt,
			"release_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrReservationNotActive
	}
	return nil
}

func (s *GormStore) FindReservationsByOrder(ctx context.Context, orderID uint, status domain.ReservationStatus) ([]domain.Reservation, error) {
	query := s.db.WithContext(ctx).Preload("Lot").Where("order_id = ?", orderID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []domain.Reservation
	err := query.Order("id ASC").Find(&reservations).Error
	return reservations, err
}

func (s *GormStore) AppendMovement(ctx context.Context, movement *domain.Movement) error {
	return s.db.WithContext(ctx).Create(movement).Error
}

func (s *GormStore) FindMovements(ctx context.Context, productID, warehouseID uint, limit, offset int) ([]domain.Movement, error) {
	query := s.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var movements []domain.Movement
	err := query.Find(&movements).Error
	return movements, err
}

func (s *GormStore) FindProduct(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUnknownProduct
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *GormStore) FindWarehouse(ctx context.Context, id uint) (*domain.Warehouse, error) {
	var warehouse domain.Warehouse
	err := s.db.WithContext(ctx).First(&warehouse, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoWarehouseAssigned
	}
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

// CreateProduct and CreateWarehouse seed reference data owned by other services.
func (s *GormStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *GormStore) CreateWarehouse(ctx context.Context, warehouse *domain.Warehouse) error {
	return s.db.WithContext(ctx).Create(warehouse).Error
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
