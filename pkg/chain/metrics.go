package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// CallDurationSeconds tracks contract read latency by method.
	CallDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nft_market_chain_call_duration_seconds",
		Help:    "Duration of eth_call contract reads",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// CallErrorsTotal tracks failed contract reads by method.
	CallErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_chain_call_errors_total",
		Help: "Total number of failed contract reads",
	}, []string{"method"})
)
