// Package cache provides the bounded per-category cache with recency-based
// eviction and dual-key lookup, plus the tree that composes one cache per
// catalog category under a shared capacity policy.
//
// The cache package follows the library conventions:
// - Generic over the cached value type; the cache holds no deserialization logic
// - Entries are keyed by normalized rest.Route values
// - One mutex guards get/put/evict/alias as a single critical section
// - Rosters are replaced wholesale, never patched incrementally
package cache

import (
	"container/list"
	"sync"

	"github.com/catchkit/pokecat/catalog"
	"github.com/catchkit/pokecat/rest"
)

// DefaultCapacity is the per-category entry bound used when none is given
const DefaultCapacity = 100

// cacheEntry pairs a normalized route with its decoded value
type cacheEntry[V any] struct {
	route rest.Route
	value V
}

// Cache is a bounded cache for one catalog category. Lookups promote the hit
// to most-recently-used; inserting past capacity evicts exactly the
// least-recently-touched entry. Identifiers may be display names or numeric
// ids; the roster translates either form to the canonical route key.
//
// The roster and the entry store vary independently: a roster may be loaded
// while no entry is cached, and entries may be cached before any roster
// arrives.
type Cache[V any] struct {
	mu       sync.Mutex
	cat      catalog.Category
	capacity int

	order   *list.List // front = most recently touched
	entries map[rest.Route]*list.Element

	roster       map[string]Endpoint
	rosterKeys   []string
	endpoints    []Endpoint
	rosterLoaded bool
}

// New creates a cache for one category with the given capacity
func New[V any](cat catalog.Category, capacity int) (*Cache[V], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity(capacity)
	}
	return &Cache[V]{
		cat:      cat,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[rest.Route]*list.Element),
		roster:   make(map[string]Endpoint),
	}, nil
}

// Category returns the category this cache serves
func (c *Cache[V]) Category() catalog.Category {
	return c.cat
}

// Get returns the value cached under exactly this route. A hit promotes the
// entry to most-recently-used.
func (c *Cache[V]) Get(route rest.Route) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(route)
}

// Peek returns the value cached under exactly this route without promoting it
func (c *Cache[V]) Peek(route rest.Route) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[route]; ok {
		return el.Value.(*cacheEntry[V]).value, true
	}
	var zero V
	return zero, false
}

// Put inserts or replaces the value for a route. The route is normalized
// through the roster when a mapping exists, so the same resource fetched by
// name and by id lands on one entry. Capacity overflow, including overflow
// left behind by a shrinking Resize, is pruned here.
func (c *Cache[V]) Put(route rest.Route, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	route = c.canonicalLocked(route)
	if el, ok := c.entries[route]; ok {
		el.Value.(*cacheEntry[V]).value = value
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry[V]{route: route, value: value})
	c.entries[route] = el
	for len(c.entries) > c.capacity {
		c.evictOldestLocked()
	}
}

// Lookup resolves a route to a cached value, trying the route as given first
// and then its roster alias. It never fails; an unknown identifier is a miss.
func (c *Cache[V]) Lookup(route rest.Route) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.getLocked(route); ok {
		return v, true
	}
	if alias := c.canonicalLocked(route); alias != route {
		return c.getLocked(alias)
	}
	var zero V
	return zero, false
}

// GetByIdentifier resolves a caller identifier (display name or numeric id,
// as a string) against this category's cache
func (c *Cache[V]) GetByIdentifier(identifier string) (V, bool) {
	return c.Lookup(rest.ResourceRoute(c.cat, identifier))
}

// Resize sets the capacity. Shrinking does not evict eagerly; overflow is
// pruned on the next Put.
func (c *Cache[V]) Resize(capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity(capacity)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	return nil
}

// Len returns the number of cached entries
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cap returns the current capacity
func (c *Cache[V]) Cap() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

func (c *Cache[V]) getLocked(route rest.Route) (V, bool) {
	if el, ok := c.entries[route]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *Cache[V]) evictOldestLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	delete(c.entries, back.Value.(*cacheEntry[V]).route)
	c.order.Remove(back)
}

// canonicalLocked rewrites the route's identifier segment to the roster's
// canonical key when a mapping exists. Without a loaded roster the route is
// already canonical by definition.
func (c *Cache[V]) canonicalLocked(route rest.Route) rest.Route {
	if !c.rosterLoaded {
		return route
	}
	tail := route.Tail()
	ep, ok := c.roster[tail]
	if !ok {
		return route
	}
	if key := c.canonicalKey(ep); key != tail {
		return route.WithTail(key)
	}
	return route
}
