// Package cache holds the explicit shared lookup caches the dashboard
// widgets and resolvers reuse. State lives in cache objects passed around
// explicitly, never in ambient package variables.
package cache

import "sync"

// Collection is a keyed, insertion-ordered cache of lookup entities. It
// backs a resolver's local fallback and keeps the full collection available
// for empty-query results.
type Collection[T any] struct {
	mu    sync.RWMutex
	keyOf func(T) int
	order []int
	byKey map[int]T
}

// NewCollection builds an empty collection keyed by keyOf.
func NewCollection[T any](keyOf func(T) int) *Collection[T] {
	return &Collection[T]{
		keyOf: keyOf,
		byKey: make(map[int]T),
	}
}

// Replace swaps the entire cached collection, preserving the given order.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.byKey = make(map[int]T, len(items))
	for _, it := range items {
		k := c.keyOf(it)
		if _, seen := c.byKey[k]; !seen {
			c.order = append(c.order, k)
		}
		c.byKey[k] = it
	}
}

// Put inserts or updates a single entry.
func (c *Collection[T]) Put(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.keyOf(item)
	if _, seen := c.byKey[k]; !seen {
		c.order = append(c.order, k)
	}
	c.byKey[k] = item
}

// Get returns the entry with the given key.
func (c *Collection[T]) Get(key int) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.byKey[key]
	return item, ok
}

// All returns the cached entries in insertion order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byKey[k])
	}
	return out
}

// Len returns the number of cached entries.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Invalidate empties the collection.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.byKey = make(map[int]T)
}
