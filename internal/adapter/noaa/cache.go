package noaa

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/metar-flight-category/internal/domain"
	"github.com/couchcryptid/metar-flight-category/internal/observability"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU cache whose entries
// expire after ttl. Station files change at most a few times an hour, so a
// short ttl avoids refetching on every poll.
type CachedFetcher struct {
	inner   domain.Fetcher
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner domain.Fetcher, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFetcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, station string) (domain.RawReport, error) {
	now := c.clock.Now()
	if report, fetchedAt, ok := c.cache.get(station); ok {
		if now.Sub(fetchedAt) < c.ttl {
			c.metrics.FetchCache.WithLabelValues("hit").Inc()
			return report, nil
		}
		c.metrics.FetchCache.WithLabelValues("expired").Inc()
	} else {
		c.metrics.FetchCache.WithLabelValues("miss").Inc()
	}

	report, err := c.inner.Fetch(ctx, station)
	if err != nil {
		return report, err
	}
	c.cache.put(station, report, now)
	return report, nil
}

// lruCache is a simple thread-safe LRU cache of reports keyed by station.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     domain.RawReport
	fetchedAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.RawReport, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.RawReport{}, time.Time{}, false
	}
	c.moveToFront(e)
	return e.value, e.fetchedAt, true
}

func (c *lruCache) put(key string, value domain.RawReport, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.fetchedAt = fetchedAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, fetchedAt: fetchedAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
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
