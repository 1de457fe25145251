package maproom

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	"github.com/couchcryptid/forecast-trigger-etl/internal/observability"
)

// RegionResolver resolves administrative regions for a maproom level.
type RegionResolver interface {
	Regions(ctx context.Context, p domain.RegionsParams) ([]domain.AdminRegion, error)
}

// CachedResolver wraps a RegionResolver with an in-memory LRU cache. Repeated
// builds in one session hit the same admin levels over and over; the region
// sets change on the order of years.
type CachedResolver struct {
	inner   RegionResolver
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner RegionResolver, maxEntries int, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedResolver) Regions(ctx context.Context, p domain.RegionsParams) ([]domain.AdminRegion, error) {
	key := cacheKey(p)
	if regions, ok := c.cache.get(key); ok {
		c.metrics.RegionCache.WithLabelValues("hit").Inc()
		return regions, nil
	}
	c.metrics.RegionCache.WithLabelValues("miss").Inc()

	regions, err := c.inner.Regions(ctx, p)
	if err != nil {
		return regions, err
	}
	// Only cache non-empty results so transient empty responses can be retried.
	if len(regions) > 0 {
		c.cache.put(key, regions)
	}
	return regions, nil
}

// cacheKey folds the whitelist into the key: the same level with a different
// valid-key set is a different result.
func cacheKey(p domain.RegionsParams) string {
	return fmt.Sprintf("%s|%d|%t|%s", p.Maproom, p.Level, p.NeedValidKeys, strings.Join(p.ValidKeys, ","))
}

// lruCache is a simple thread-safe LRU cache for region lists.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.AdminRegion
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.AdminRegion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.AdminRegion) {
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
