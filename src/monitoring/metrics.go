package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchase attempts by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	holdsReleased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holds_released_total",
			Help: "PENDING holds deleted, by reason",
		},
		[]string{"reason"},
	)

	settlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "Wall time of settlement attempts",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
)

func RecordPurchase(strategy, outcome string) {
	purchases.WithLabelValues(strategy, outcome).Inc()
}

func RecordReleasedHolds(reason string, count int) {
	if count <= 0 {
		return
	}
	holdsReleased.WithLabelValues(reason).Add(float64(count))
}

func ObserveSettlement(strategy string, startedAt time.Time) {
	settlementDuration.WithLabelValues(strategy).Observe(time.Since(startedAt).Seconds())
}
