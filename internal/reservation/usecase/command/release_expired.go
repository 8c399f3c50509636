package command

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

// ReleaseExpiredCommand releases every ACTIVE reservation that expired before At
type ReleaseExpiredCommand struct {
	Actor domain.WarehouseContext
	// At defaults to the handler clock
	At     time.Time
	Reason string
}

// ReleaseExpiredHandler handles the release expired command
type ReleaseExpiredHandler struct {
	releaser
}

// NewReleaseExpiredHandler creates a new release expired handler
func NewReleaseExpiredHandler(deps Dependencies) *ReleaseExpiredHandler {
	return &ReleaseExpiredHandler{releaser{deps: deps}}
}

// Handle executes the release expired command
func (h *ReleaseExpiredHandler) Handle(ctx context.Context, cmd ReleaseExpiredCommand) domain.ReleaseResult {
	at := cmd.At
	if at.IsZero() {
		at = h.deps.Settings.now()
	}
	reason := cmd.Reason
	if reason == "" {
		reason = h.deps.Settings.ExpiredReason
	}

	ctx, span := tracer.Start(ctx, "command.ReleaseExpired",
		trace.WithAttributes(attribute.String("expired.before", at.Format(time.RFC3339))),
	)
	defer span.End()

	result := h.release(ctx, releaseRequest{
		filter:       domain.ReservationFilter{ExpiredBefore: &at},
		documentType: domain.DocumentTypeProforma,
		reason:       reasonOrDefault(reason),
		actorID:      cmd.Actor.ActorID,
	})

	h.deps.Metrics.recordRelease("expired", result)
	traceRelease(span, result)
	return result
}
