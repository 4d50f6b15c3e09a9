package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RistrettoCache is a Cache backed by Ristretto. Every entry costs 1, so
// MaxCost is the item capacity.
type RistrettoCache struct {
	name   string
	cache  *ristretto.Cache
	logger *zap.Logger

	hits, misses, sets, rejected, deletes prometheus.Counter
	hitRate                               prometheus.Gauge
	getDuration, setDuration, delDuration prometheus.Observer
}

// RistrettoConfig holds configuration for Ristretto cache.
type RistrettoConfig struct {
	// Name labels the cache's metrics and logs.
	Name        string
	NumCounters int64 // keys tracked for admission, ~10x MaxCost
	MaxCost     int64
	BufferItems int64 // keys per Get buffer
	Logger      *zap.Logger
}

// DefaultRistrettoConfig sizes a named cache for roughly maxItems entries.
func DefaultRistrettoConfig(name string, maxItems int64, logger *zap.Logger) *RistrettoConfig {
	return &RistrettoConfig{
		Name:        name,
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
		Logger:      logger,
	}
}

// NewRistrettoCache creates a new Ristretto-backed cache.
func NewRistrettoCache(cfg *RistrettoConfig) (*RistrettoCache, error) {
	if cfg.Name == "" {
		return nil, errors.New("cache name cannot be empty")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache %s: %w", cfg.Name, err)
	}

	logger := cfg.Logger.With(zap.String("cache", cfg.Name))
	logger.Info("cache-initialized",
		zap.Int64("max-cost", cfg.MaxCost),
		zap.Int64("num-counters", cfg.NumCounters))

	return &RistrettoCache{
		name:        cfg.Name,
		cache:       cache,
		logger:      logger,
		hits:        CacheHitsTotal.WithLabelValues(cfg.Name),
		misses:      CacheMissesTotal.WithLabelValues(cfg.Name),
		sets:        CacheSetsTotal.WithLabelValues(cfg.Name),
		rejected:    CacheRejectedSetsTotal.WithLabelValues(cfg.Name),
		deletes:     CacheDeletesTotal.WithLabelValues(cfg.Name),
		hitRate:     CacheHitRate.WithLabelValues(cfg.Name),
		getDuration: CacheOperationDuration.WithLabelValues(cfg.Name, "get"),
		setDuration: CacheOperationDuration.WithLabelValues(cfg.Name, "set"),
		delDuration: CacheOperationDuration.WithLabelValues(cfg.Name, "delete"),
	}, nil
}

// Name returns the cache's metric label.
func (r *RistrettoCache) Name() string {
	return r.name
}

// Get retrieves a value from the cache.
func (r *RistrettoCache) Get(key string) (interface{}, bool) {
	start := time.Now()
	value, found := r.cache.Get(key)
	r.getDuration.Observe(time.Since(start).Seconds())

	if found {
		r.hits.Inc()
		r.logger.Debug("cache-hit", zap.String("key", key))
	} else {
		r.misses.Inc()
		r.logger.Debug("cache-miss", zap.String("key", key))
	}

	r.hitRate.Set(r.cache.Metrics.Ratio())

	return value, found
}

// Set stores a value with a TTL. A non-positive TTL stores without expiry.
func (r *RistrettoCache) Set(key string, value interface{}, ttl time.Duration) bool {
	start := time.Now()
	var accepted bool
	if ttl > 0 {
		accepted = r.cache.SetWithTTL(key, value, 1, ttl)
	} else {
		accepted = r.cache.Set(key, value, 1)
	}
	r.setDuration.Observe(time.Since(start).Seconds())

	if !accepted {
		r.rejected.Inc()
		r.logger.Debug("cache-set-rejected", zap.String("key", key))
		return false
	}

	r.sets.Inc()
	r.logger.Debug("cache-set",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return true
}

// Delete removes a value from the cache.
func (r *RistrettoCache) Delete(key string) {
	start := time.Now()
	r.cache.Del(key)
	r.delDuration.Observe(time.Since(start).Seconds())

	r.deletes.Inc()
	r.logger.Debug("cache-delete", zap.String("key", key))
}

// Clear removes all values from the cache.
func (r *RistrettoCache) Clear() {
	r.cache.Clear()
	r.logger.Info("cache-cleared")
}

// Close closes the cache and releases resources.
func (r *RistrettoCache) Close() {
	r.cache.Close()
	r.logger.Info("cache-closed")
}

// Wait blocks until all pending writes have been applied.
func (r *RistrettoCache) Wait() {
	r.cache.Wait()
}
