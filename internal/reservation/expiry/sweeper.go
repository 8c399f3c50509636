package expiry

import (
	"context"
	"time"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/usecase/command"
	"github.com/tair/lot-reservation/pkg/logger"
)

// Releaser is the command the sweeper runs on every tick
type Releaser interface {
	Handle(ctx context.Context, cmd command.ReleaseExpiredCommand) domain.ReleaseResult
}

// Sweeper periodically releases ACTIVE reservations past their expiry.
type Sweeper struct {
	releaser Releaser
	interval time.Duration
	actor    domain.WarehouseContext
}

// NewSweeper creates a sweeper. An interval of 0 disables it.
func NewSweeper(releaser Releaser, interval time.Duration, actorID uint) *Sweeper {
	return &Sweeper{
		releaser: releaser,
		interval: interval,
		actor:    domain.WarehouseContext{ActorID: actorID},
	}
}

// Enabled reports whether Run will do anything
func (s *Sweeper) Enabled() bool {
	return s.interval > 0
}

// Run sweeps once per interval until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	if !s.Enabled() {
		logger.Info(ctx).Msg("Expired reservation sweeper disabled")
		return
	}

	logger.Info(ctx).Dur("interval", s.interval).Msg("Expired reservation sweeper started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background()).Msg("Expired reservation sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass and returns the number of reservations released
func (s *Sweeper) Sweep(ctx context.Context) int {
	result := s.releaser.Handle(ctx, command.ReleaseExpiredCommand{Actor: s.actor})

	switch r := result.(type) {
	case *domain.Released:
		if r.ReservationsReleased > 0 {
			logger.Info(ctx).
				Int("reservations", r.ReservationsReleased).
				Int("quantity", r.QuantityReleased).
				Msg("Released expired reservations")
		}
		return r.ReservationsReleased
	case *domain.ReleaseFailed:
		logger.Error(ctx).Str("error", r.Message).Msg("Expired reservation sweep failed")
	}
	return 0
}
