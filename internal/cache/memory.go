package cache

import (
	"container/list"
	"context"
	"sync"

	"babelfeed/internal/constants"
	"babelfeed/pkg/metrics"
)

type memoryEntry struct {
	key        string
	translated string
}

// Memory is a mutex-guarded LRU bounded by a fixed entry count. It never
// blocks on I/O, so it is safe on the worker hot path.
type Memory struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
}

func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = constants.DefaultCacheCapacity
	}
	return &Memory{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (m *Memory) Lookup(_ context.Context, text, targetLang string) (string, bool) {
	key := NormalizeKey(text, targetLang)

	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendMemory, "miss").Inc()
		return "", false
	}

	m.order.MoveToFront(elem)
	metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendMemory, "hit").Inc()
	return elem.Value.(*memoryEntry).translated, true
}

func (m *Memory) Insert(_ context.Context, text, targetLang, translated string) {
	key := NormalizeKey(text, targetLang)

	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		elem.Value.(*memoryEntry).translated = translated
		m.order.MoveToFront(elem)
		metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendMemory, "insert").Inc()
		return
	}

	if m.order.Len() >= m.capacity {
		m.evictOldest()
	}

	elem := m.order.PushFront(&memoryEntry{key: key, translated: translated})
	m.entries[key] = elem
	metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendMemory, "insert").Inc()
	metrics.CacheSize.Set(float64(m.order.Len()))
}

// Len reports the current entry count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memory) evictOldest() {
	oldest := m.order.Back()
	if oldest == nil {
		return
	}
	m.order.Remove(oldest)
	delete(m.entries, oldest.Value.(*memoryEntry).key)
	metrics.CacheOperationsTotal.WithLabelValues(constants.CacheBackendMemory, "evict").Inc()
}
