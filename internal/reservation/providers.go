package reservation

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/lot-reservation/internal/reservation/delivery/http"
	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/expiry"
	"github.com/tair/lot-reservation/internal/reservation/repository"
	"github.com/tair/lot-reservation/internal/reservation/usecase/command"
	"github.com/tair/lot-reservation/pkg/config"
)

// sweeperActorID is recorded on ledger entries written by the expiry sweeper
const sweeperActorID = 0

// Service is the assembled reservation service
type Service struct {
	Handler    *http.ReservationHandler
	ReleaseAll *command.ReleaseAllHandler
	Sweeper    *expiry.Sweeper
}

// NewService groups the entry points main needs
func NewService(handler *http.ReservationHandler, releaseAll *command.ReleaseAllHandler, sweeper *expiry.Sweeper) *Service {
	return &Service{
		Handler:    handler,
		ReleaseAll: releaseAll,
		Sweeper:    sweeper,
	}
}

// ProvideStore provides the traced gorm store
func ProvideStore(db *gorm.DB) domain.Store {
	return repository.NewGormStoreWithTracing(db)
}

// ProvideTx exposes the store to the query handlers
func ProvideTx(store domain.Store) domain.Tx {
	return store
}

// ProvideReservationRepository exposes the store's reservation access
func ProvideReservationRepository(store domain.Store) domain.ReservationRepository {
	return store
}

// ProvideSettings maps configuration onto the command settings
func ProvideSettings(cfg config.ReservationConfig) command.Settings {
	return command.Settings{
		DefaultExpirationDays: cfg.DefaultExpirationDays,
		ExpiredReason:         cfg.ExpiredReason,
	}
}

// ProvideMetrics registers the reservation collectors
func ProvideMetrics(reg prometheus.Registerer) *command.Metrics {
	return command.NewMetrics(reg)
}

// ProvideDependencies provides the collaborators shared by the command handlers
func ProvideDependencies(
	store domain.Store,
	publisher domain.EventPublisher,
	cache domain.AvailabilityCache,
	metrics *command.Metrics,
	settings command.Settings,
) command.Dependencies {
	return command.Dependencies{
		Store:     store,
		Publisher: publisher,
		Cache:     cache,
		Metrics:   metrics,
		Settings:  settings,
	}
}

// ProvideSweeper provides the expired reservation sweeper
func ProvideSweeper(releaser *command.ReleaseExpiredHandler, cfg config.ReservationConfig) *expiry.Sweeper {
	return expiry.NewSweeper(releaser, cfg.SweepInterval, sweeperActorID)
}
