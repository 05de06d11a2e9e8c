// Package cache provides a bounded in-memory cache with least-recently-used
// eviction.
package cache

import (
	"container/list"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultCapacity is the number of entries kept by a cache unless configured
// otherwise
const DefaultCapacity = 500

var (
	hits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits",
		Help: "Number of lookups answered from an in-memory cache",
	}, []string{"cache"})
	misses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses",
		Help: "Number of lookups not found in an in-memory cache",
	}, []string{"cache"})
	evictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_evictions",
		Help: "Number of entries evicted from an in-memory cache because it was full",
	}, []string{"cache"})
)

type Stats struct {
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Size      int    `json:"size"`
	Hits      int    `json:"hits"`
	Misses    int    `json:"misses"`
	Evictions int    `json:"evictions"`
}

type item[K comparable, V any] struct {
	key   K
	value V
}

// LRU maps keys to values and holds at most Capacity entries. Reading or
// writing an entry marks it as most recently used; inserting a new key into a
// full cache evicts the least recently used entry.
//
// A stored zero value (for example a nil pointer meaning "known to have no
// data") is a hit and is distinct from an absent key.
type LRU[K comparable, V any] struct {
	lock     sync.Mutex
	capacity int
	order    *list.List
	entries  map[K]*list.Element

	stats     Stats
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
}

// New creates an empty cache. A capacity below 1 is replaced by
// DefaultCapacity.
func New[K comparable, V any](name string, capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &LRU[K, V]{
		capacity:  capacity,
		order:     list.New(),
		entries:   make(map[K]*list.Element),
		stats:     Stats{Name: name, Capacity: capacity},
		hits:      hits.WithLabelValues(name),
		misses:    misses.WithLabelValues(name),
		evictions: evictions.WithLabelValues(name),
	}
}

func (c *LRU[K, V]) Get(key K) (value V, found bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	e, found := c.entries[key]
	if !found {
		c.stats.Misses++
		c.misses.Inc()
		return
	}
	c.stats.Hits++
	c.hits.Inc()
	c.order.MoveToFront(e)
	return e.Value.(*item[K, V]).value, true
}

func (c *LRU[K, V]) Set(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if e, found := c.entries[key]; found {
		e.Value.(*item[K, V]).value = value
		c.order.MoveToFront(e)
		return
	}
	c.entries[key] = c.order.PushFront(&item[K, V]{key: key, value: value})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*item[K, V]).key)
		c.stats.Evictions++
		c.evictions.Inc()
	}
}

// Remove drops key from the cache, it returns false if the key was not cached
func (c *LRU[K, V]) Remove(key K) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	e, found := c.entries[key]
	if !found {
		return false
	}
	c.order.Remove(e)
	delete(c.entries, key)
	return true
}

func (c *LRU[K, V]) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.order.Init()
	c.entries = make(map[K]*list.Element)
}

func (c *LRU[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.order.Len()
}

func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns the cached keys, most recently used first
func (c *LRU[K, V]) Keys() []K {
	c.lock.Lock()
	defer c.lock.Unlock()
	keys := make([]K, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*item[K, V]).key)
	}
	return keys
}

func (c *LRU[K, V]) Stats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}
