package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_cache_hits_total",
		Help: "Total number of cache hits by cache",
	}, []string{"cache"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_cache_misses_total",
		Help: "Total number of cache misses by cache",
	}, []string{"cache"})

	CacheSetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_cache_sets_total",
		Help: "Total number of accepted cache sets by cache",
	}, []string{"cache"})

	CacheRejectedSetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_cache_rejected_sets_total",
		Help: "Total number of sets dropped by the admission policy",
	}, []string{"cache"})

	CacheDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nft_market_cache_deletes_total",
		Help: "Total number of cache deletes by cache",
	}, []string{"cache"})

	// CacheHitRate mirrors Ristretto's running hit ratio.
	CacheHitRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nft_market_cache_hit_rate",
		Help: "Cache hit ratio reported by the cache engine",
	}, []string{"cache"})

	CacheOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nft_market_cache_operation_duration_seconds",
		Help:    "Duration of cache operations",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	}, []string{"cache", "operation"})
)
