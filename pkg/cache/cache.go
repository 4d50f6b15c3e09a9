package cache

import "time"

// Cache is a TTL key/value cache for read-mostly lookups such as NFT
// contract metadata. Values are stored as-is; callers must not mutate a
// value after Set or after reading it back.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL. Admission is best-effort: a false
	// return means the value was dropped.
	Set(key string, value interface{}, ttl time.Duration) bool

	Delete(key string)
	Clear()
	Close()
}

// Key builds a namespaced cache key.
func Key(namespace, id string) string {
	return namespace + ":" + id
}

// GetAs returns the value at key when it is present and holds a T.
// A value of another type counts as a miss.
func GetAs[T any](c Cache, key string) (T, bool) {
	var zero T

	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}

	typed, ok := v.(T)
	if !ok {
		return zero, false
	}

	return typed, true
}
