// Package cache provides the bounded, versioned in-memory caches that hold
// decoded models and built graphs.
package cache

import (
	"context"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/jsfong/model-parser/internal/metrics"
)

// DefaultCapacity is used when no capacity is configured.
const DefaultCapacity = 2

// LoadFunc produces the value for a key on a cache miss.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Cache is a capacity-bounded cache keyed by "{model_id}-{version}". It is
// safe for concurrent use. Values are shared, not copied: callers must treat
// them as read-only.
type Cache[V any] struct {
	name     string
	capacity int
	lru      *lru.Cache[string, V]
	flight   singleflight.Group
	log      *logrus.Logger
}

// Key builds the cache key of one model version.
func Key(modelID string, version int) string {
	return modelID + "-" + strconv.Itoa(version)
}

// New creates a cache holding at most capacity entries. Capacities below 1
// fall back to DefaultCapacity.
func New[V any](name string, capacity int, log *logrus.Logger) (*Cache[V], error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	c := &Cache[V]{name: name, capacity: capacity, log: log}

	l, err := lru.NewWithEvict(capacity, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("creating %s cache: %w", name, err)
	}

	c.lru = l

	return c, nil
}

func (c *Cache[V]) onEvict(key string, _ V) {
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()

	c.log.WithFields(logrus.Fields{
		"cache": c.name,
		"key":   key,
	}).Debug("cache entry evicted")
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}

	return v, ok
}

// Peek returns the cached value without counting a hit or miss or touching recency.
func (c *Cache[V]) Peek(key string) (V, bool) {
	return c.lru.Peek(key)
}

// Insert stores value under key, evicting the least recently used entry once
// capacity is exceeded.
func (c *Cache[V]) Insert(key string, value V) {
	c.lru.Add(key, value)
	metrics.CacheEntries.WithLabelValues(c.name).Set(float64(c.lru.Len()))

	c.log.WithFields(logrus.Fields{
		"cache":    c.name,
		"key":      key,
		"capacity": c.capacity,
	}).Debug("cache entry inserted")
}

// GetOrLoad returns the cached value for key, or runs load and inserts its
// result. Concurrent misses for the same key share a single load. Errors are
// not cached.
//
// The shared load keeps ctx values but not its cancellation, so one caller
// going away cannot fail the others; load is expected to bound itself. A
// caller whose own ctx ends stops waiting and gets ctx.Err().
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load LoadFunc[V]) (V, error) {
	var zero V

	if v, ok := c.Get(key); ok {
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)

	ch := c.flight.DoChan(key, func() (any, error) {
		// A load that finished between our miss and entering the flight already inserted.
		if v, ok := c.lru.Peek(key); ok {
			return v, nil
		}

		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		c.Insert(key, v)

		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}

		if res.Shared {
			c.log.WithFields(logrus.Fields{"cache": c.name, "key": key}).Debug("cache load shared")
		}

		return res.Val.(V), nil //nolint:forcetypeassert // the flight only ever returns V.
	}
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
	metrics.CacheEntries.WithLabelValues(c.name).Set(0)
}
