package cache

import (
	"container/list"
	"sync"
)

// MemoryCache implements an in-memory LRU cache bounded by entry count.
// Entries never expire; they leave only through eviction or Delete.
type MemoryCache struct {
	maxSize int
	items   map[string]*list.Element
	lru     *list.List
	mu      sync.Mutex

	hits      int64
	misses    int64
	evictions int64
}

// memoryCacheItem represents an item in the memory cache
type memoryCacheItem struct {
	key   string
	value any
}

// NewMemoryCache creates a new memory cache holding at most maxSize items
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryCache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get retrieves an item and marks it most recently used
func (m *MemoryCache) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	element, exists := m.items[key]
	if !exists {
		m.misses++
		return nil, false
	}

	m.hits++
	m.lru.MoveToFront(element)

	return element.Value.(*memoryCacheItem).value, true
}

// Set stores an item, evicting the least recently used one when full
func (m *MemoryCache) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if element, exists := m.items[key]; exists {
		element.Value.(*memoryCacheItem).value = value
		m.lru.MoveToFront(element)
		return
	}

	element := m.lru.PushFront(&memoryCacheItem{key: key, value: value})
	m.items[key] = element

	m.evictIfNecessary()
}

// Delete removes an item from the memory cache
func (m *MemoryCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if element, exists := m.items[key]; exists {
		m.removeElement(element)
	}
}

// Clear removes all items; counters are kept
func (m *MemoryCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.lru.Init()
}

// Size returns the current number of items in cache
func (m *MemoryCache) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Stats returns cache statistics
func (m *MemoryCache) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Hits:      m.hits,
		Misses:    m.misses,
		Evictions: m.evictions,
		Size:      len(m.items),
		Capacity:  m.maxSize,
	}
}

func (m *MemoryCache) removeElement(element *list.Element) {
	item := element.Value.(*memoryCacheItem)
	delete(m.items, item.key)
	m.lru.Remove(element)
}

func (m *MemoryCache) evictIfNecessary() {
	for len(m.items) > m.maxSize {
		oldest := m.lru.Back()
		if oldest == nil {
			return
		}
		m.removeElement(oldest)
		m.evictions++
	}
}

// Stats contains cache statistics
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
}
