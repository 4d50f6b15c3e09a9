package order

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// OrdersCreatedTotal tracks persisted orders by side.
	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_orders_created_total",
		Help: "Total number of orders created",
	}, []string{"side"})

	// CounterOrdersTotal tracks counter-orders generated by side.
	CounterOrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_counter_orders_total",
		Help: "Total number of counter-orders generated",
	}, []string{"side"})

	// VerificationsTotal tracks verification outcomes by reason.
	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_order_verifications_total",
		Help: "Total number of order verification attempts",
	}, []string{"reason"})

	// VerificationDurationSeconds tracks end-to-end verification latency.
	VerificationDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nft_market_order_verification_duration_seconds",
		Help:    "Duration of order verification including contract reads",
		Buckets: prometheus.DefBuckets,
	})

	// BookQueryDurationSeconds tracks order book query latency by side.
	BookQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nft_market_order_book_query_duration_seconds",
		Help:    "Duration of order book queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"side"})
)

func sideLabel(isSell bool) string {
	if isSell {
		return "sell"
	}
	return "offer"
}
