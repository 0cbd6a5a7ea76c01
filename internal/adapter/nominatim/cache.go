package nominatim

import (
	"context"
	"fmt"
	"sync"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/boundary"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/observability"
)

// CachedGeocoder wraps a boundary.Geocoder with an in-memory LRU cache.
// Nominatim's usage policy caps request rates, so repeat lookups for the
// same place must not go back to the network.
type CachedGeocoder struct {
	inner   boundary.Geocoder
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner boundary.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Search(ctx context.Context, query string) ([]boundary.GeocodeResult, error) {
	key := "search:" + query
	if cached, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("search", "hit").Inc()
		return cached.results, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("search", "miss").Inc()

	results, err := c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so transient failures can be retried.
	if len(results) > 0 {
		c.cache.put(key, cacheValue{results: results})
	}
	return results, nil
}

func (c *CachedGeocoder) Reverse(ctx context.Context, p domain.Coordinate) (*boundary.GeocodeResult, error) {
	key := fmt.Sprintf("reverse:%.6f,%.6f", p.Lat, p.Lon)
	if cached, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("reverse", "hit").Inc()
		return cached.single, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("reverse", "miss").Inc()

	result, err := c.inner.Reverse(ctx, p)
	if err != nil {
		return nil, err
	}
	if result != nil {
		c.cache.put(key, cacheValue{single: result})
	}
	return result, nil
}

type cacheValue struct {
	results []boundary.GeocodeResult
	single  *boundary.GeocodeResult
}

// lruCache is a simple thread-safe LRU cache keyed by query string.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cacheValue
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cacheValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cacheValue{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cacheValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
