// Package cache holds finished extraction results between requests.
package cache

import (
	"fmt"
	"os"
	"sync"
)

// LRU is a thread-safe least recently used cache. A cache with capacity 0 is
// disabled: Put is a no-op and Get always misses.
type LRU[K comparable, V any] struct {
	mutex    sync.Mutex
	capacity int
	items    map[K]*node[K, V]
	head     *node[K, V] // dummy, next is most recently used
	tail     *node[K, V] // dummy, prev is least recently used
	hits     int64
	misses   int64
}

type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// NewLRU creates a cache holding at most capacity entries. Negative
// capacities are treated as 0.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 0 {
		capacity = 0
	}

	c := &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*node[K, V]),
		head:     &node[K, V]{},
		tail:     &node[K, V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key and marks it as recently used
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, ok := c.items[key]; ok {
		c.moveToFront(n)
		c.hits++
		return n.value, true
	}

	c.misses++
	var zero V
	return zero, false
}

// Put adds or replaces the value for key, evicting the least recently used
// entry when full
func (c *LRU[K, V]) Put(key K, value V) {
	if c.capacity == 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, ok := c.items[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}

	n := &node[K, V]{key: key, value: value}
	c.addToFront(n)
	c.items[key] = n

	if len(c.items) > c.capacity {
		lru := c.tail.prev
		c.removeNode(lru)
		delete(c.items, lru.key)
	}
}

// Remove deletes key and reports whether it was present
func (c *LRU[K, V]) Remove(key K) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, ok := c.items[key]; ok {
		c.removeNode(n)
		delete(c.items, key)
		return true
	}
	return false
}

// Len returns the current number of entries
func (c *LRU[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// Keys returns all keys from most to least recently used
func (c *LRU[K, V]) Keys() []K {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	keys := make([]K, 0, len(c.items))
	for n := c.head.next; n != c.tail; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

// Stats returns hit and miss counters
func (c *LRU[K, V]) Stats() Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := c.hits + c.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return Stats{
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate,
		Size:     len(c.items),
		Capacity: c.capacity,
	}
}

func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	c.removeNode(n)
	c.addToFront(n)
}

func (c *LRU[K, V]) addToFront(n *node[K, V]) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRU[K, V]) removeNode(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

// Stats provides statistics about cache performance
type Stats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate_percent"`
	Size     int     `json:"current_size"`
	Capacity int     `json:"max_capacity"`
}

// FileKey identifies one version of a file on disk. A rewrite that changes
// the size or modification time produces a different key.
type FileKey struct {
	Path    string
	Size    int64
	ModTime int64
}

// KeyForFile stats path and builds its FileKey. path should already be
// absolute.
func KeyForFile(path string) (FileKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileKey{}, fmt.Errorf("cannot stat file: %w", err)
	}
	return FileKey{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}, nil
}
