package nft

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// MetadataFetchDuration tracks metadata API fetch latency.
	MetadataFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nft_market_nft_metadata_fetch_duration_seconds",
		Help:    "Duration of contract metadata fetch from the NFT API",
		Buckets: prometheus.DefBuckets,
	})

	// MetadataFetchErrorsTotal tracks metadata fetch failures.
	MetadataFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nft_market_nft_metadata_fetch_errors_total",
		Help: "Total number of contract metadata fetch errors",
	})

	// MetadataCacheHitsTotal tracks cache hits for contract metadata.
	MetadataCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nft_market_nft_metadata_cache_hits_total",
		Help: "Total number of contract metadata cache hits",
	})

	// MetadataCacheMissesTotal tracks cache misses for contract metadata.
	MetadataCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nft_market_nft_metadata_cache_misses_total",
		Help: "Total number of contract metadata cache misses",
	})
)
