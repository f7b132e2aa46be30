package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a size-bounded cache that evicts the least recently used entry.
// It is safe for concurrent use.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List

	hits   atomic.Uint64
	misses atomic.Uint64
}

type entry[T any] struct {
	key  string
	data T
}

// NewLRU creates a cache holding at most maxSize entries (minimum 1).
func NewLRU[T any](maxSize int) *LRU[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRU[T]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get retrieves a value and marks it most recently used.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero T
		return zero, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(elem)
	return elem.Value.(*entry[T]).data, true
}

// Set stores a value, evicting the oldest entry when full.
func (c *LRU[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[T]).data = data
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry[T]{key: key, data: data})
	if c.order.Len() > c.maxSize {
		c.removeElement(c.order.Back())
	}
}

func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Purge drops every entry. Hit and miss counters are kept.
func (c *LRU[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

func (c *LRU[T]) removeElement(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}

func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the hit and miss counts since creation.
func (c *LRU[T]) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
