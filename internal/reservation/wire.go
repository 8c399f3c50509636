//go:build wireinject
// +build wireinject

package reservation

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/lot-reservation/internal/reservation/delivery/http"
	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/usecase/command"
	"github.com/tair/lot-reservation/internal/reservation/usecase/query"
	"github.com/tair/lot-reservation/pkg/config"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStore,
	ProvideTx,
	ProvideReservationRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideSettings,
	ProvideMetrics,
	ProvideDependencies,
	command.NewAllocateHandler,
	command.NewReleaseByProductHandler,
	command.NewReleaseAllHandler,
	command.NewReleaseExpiredHandler,
	command.NewReceiveLotHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewAvailabilityHandler,
	query.NewListMovementsHandler,
	query.NewListReservationsHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeService builds the reservation service with all dependencies
func InitializeService(
	db *gorm.DB,
	cfg config.ReservationConfig,
	publisher domain.EventPublisher,
	cache domain.AvailabilityCache,
	reg prometheus.Registerer,
) (*Service, error) {
	wire.Build(
		AllHandlersSet,
		http.NewReservationHandler,
		ProvideSweeper,
		NewService,
	)
	return nil, nil
}
