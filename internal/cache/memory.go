package cache

import "container/list"

// MemoryCache is a byte-bounded LRU. It is not safe for concurrent
// use; Store serializes access.
type MemoryCache struct {
	capacity int64
	size     int64
	order    *list.List // front is most recent
	items    map[string]*list.Element
	stats    Stats
}

type memoryEntry struct {
	key   string
	value []byte
}

// NewMemoryCache returns an LRU bounded to capacity bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns a copy of the stored bytes. Callers mutate playback
// buffers in place (gain, for one), so the cache never hands out its
// own backing array.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	stored := el.Value.(*memoryEntry).value
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, true
}

// Put stores a copy of value, detaching the entry from the caller's
// slice for the same reason Get copies on the way out.
func (c *MemoryCache) Put(key string, value []byte) error {
	if int64(len(value)) > c.capacity {
		return ErrItemTooLarge
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*memoryEntry)
		c.size += int64(len(stored)) - int64(len(entry.value))
		entry.value = stored
		c.order.MoveToFront(el)
	} else {
		el := c.order.PushFront(&memoryEntry{key: key, value: stored})
		c.items[key] = el
		c.size += int64(len(stored))
	}
	for c.size > c.capacity {
		c.evictOldest()
	}
	return nil
}

func (c *MemoryCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	entry := el.Value.(*memoryEntry)
	c.order.Remove(el)
	delete(c.items, entry.key)
	c.size -= int64(len(entry.value))
	c.stats.Evictions++
}

func (c *MemoryCache) Clear() {
	c.order.Init()
	c.items = make(map[string]*list.Element)
	c.size = 0
}

func (c *MemoryCache) Stats() Stats {
	s := c.stats
	s.Size = c.size
	s.Items = len(c.items)
	return s
}
