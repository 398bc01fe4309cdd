package lod

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// DefaultCacheCapacity is the entry limit used when NewCache gets n <= 0.
const DefaultCacheCapacity = 1024

type cacheKey struct {
	hash   uint64
	tier   Tier
	ratio  float64
	method string
}

type cacheEntry struct {
	key cacheKey
	rep Representation
}

// Cache is an LRU of generated representations keyed by mesh content hash,
// tier, target ratio and simplifier. It is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	capacity  int
	items     map[cacheKey]*list.Element
	evictList *list.List

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Len       int
	Capacity  int
	Hits      int64
	Misses    int64
	Evictions int64
}

// NewCache returns a cache holding at most capacity representations.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity:  capacity,
		items:     make(map[cacheKey]*list.Element),
		evictList: list.New(),
	}
}

func (c *Cache) get(key cacheKey) (Representation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*cacheEntry).rep, true
	}
	c.misses.Add(1)
	return Representation{}, false
}

func (c *Cache) put(key cacheKey, rep Representation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)
		el.Value.(*cacheEntry).rep = rep
		return
	}

	c.items[key] = c.evictList.PushFront(&cacheEntry{key: key, rep: rep})
	for c.evictList.Len() > c.capacity {
		el := c.evictList.Back()
		c.evictList.Remove(el)
		delete(c.items, el.Value.(*cacheEntry).key)
		c.evictions.Add(1)
	}
}

// Len returns the number of cached representations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Purge drops every entry. Counters are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[cacheKey]*list.Element)
	c.evictList.Init()
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
