package backend

import (
	"context"
	"sync"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
)

// CachedBaselines wraps a BaselineSource with an in-memory LRU cache keyed by
// date. Baselines are the no-event condition of a date and do not change
// between sessions.
type CachedBaselines struct {
	inner   domain.BaselineSource
	cache   *lruCache[*domain.OverlayDataset]
	metrics *observability.Metrics
}

// NewCachedBaselines creates a cache decorator around a baseline source.
func NewCachedBaselines(inner domain.BaselineSource, maxEntries int, metrics *observability.Metrics) *CachedBaselines {
	return &CachedBaselines{
		inner:   inner,
		cache:   newLRUCache[*domain.OverlayDataset](maxEntries),
		metrics: metrics,
	}
}

// Baseline returns the cached dataset for date or fetches it.
func (c *CachedBaselines) Baseline(ctx context.Context, date string) (*domain.OverlayDataset, error) {
	if o, ok := c.cache.get(date); ok {
		c.metrics.BaselineCache.WithLabelValues("hit").Inc()
		return o, nil
	}
	c.metrics.BaselineCache.WithLabelValues("miss").Inc()

	o, err := c.inner.Baseline(ctx, date)
	if err != nil {
		return nil, err
	}
	// Failures are never cached so a transient outage can be retried.
	c.cache.put(date, o)
	return o, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries <= 0 {
		return
	}

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
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

func (c *lruCache[V]) remove(e *entry[V]) {
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

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
