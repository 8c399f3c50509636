package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/lot-reservation/internal/reservation/domain"
)

// Metrics counts engine outcomes. A nil *Metrics records nothing.
type Metrics struct {
	allocations        *prometheus.CounterVec
	releases           *prometheus.CounterVec
	unitsReserved      prometheus.Counter
	unitsReleased      prometheus.Counter
	lotsReceived       prometheus.Counter
	allocationDuration prometheus.Histogram
}

// NewMetrics creates the engine metrics and registers them with reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		allocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_allocations_total",
				Help: "Allocation attempts by outcome",
			},
			[]string{"outcome"},
		),
		releases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_releases_total",
				Help: "Release attempts by scope and outcome",
			},
			[]string{"scope", "outcome"},
		),
		unitsReserved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reservation_units_reserved_total",
				Help: "Units moved from available to reserved",
			},
		),
		unitsReleased: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reservation_units_released_total",
				Help: "Units moved from reserved back to available",
			},
		),
		lotsReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reservation_lots_received_total",
				Help: "Stock lots registered",
			},
		),
		allocationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reservation_allocation_duration_seconds",
				Help:    "Duration of allocation transactions in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.allocations,
			m.releases,
			m.unitsReserved,
			m.unitsReleased,
			m.lotsReceived,
			m.allocationDuration,
		)
	}
	return m
}

func (m *Metrics) recordAllocation(result domain.AllocationResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(AllocationOutcome(result)).Inc()
	m.allocationDuration.Observe(elapsed.Seconds())
	if ok, isOK := result.(*domain.Allocated); isOK {
		m.unitsReserved.Add(float64(ok.Summary.Reserved))
	}
}

func (m *Metrics) recordRelease(scope string, result domain.ReleaseResult) {
	if m == nil {
		return
	}
	m.releases.WithLabelValues(scope, ReleaseOutcome(result)).Inc()
	if ok, isOK := result.(*domain.Released); isOK {
		m.unitsReleased.Add(float64(ok.QuantityReleased))
	}
}

func (m *Metrics) recordReceipt() {
	if m == nil {
		return
	}
	m.lotsReceived.Inc()
}

// AllocationOutcome names the variant of an allocation result
func AllocationOutcome(result domain.AllocationResult) string {
	switch result.(type) {
	case *domain.Allocated:
		return "allocated"
	case *domain.InsufficientStock:
		return "insufficient_stock"
	case *domain.NoWarehouse:
		return "no_warehouse"
	case *domain.AllocationRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// ReleaseOutcome names the variant of a release result
func ReleaseOutcome(result domain.ReleaseResult) string {
	switch r := result.(type) {
	case *domain.Released:
		if r.ReservationsReleased == 0 {
			return "noop"
		}
		return "released"
	case *domain.ReleaseRejected:
		return "rejected"
	default:
		return "failed"
	}
}
