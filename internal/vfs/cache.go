package vfs

import (
	"container/list"
	"sync"
)

// byteBudgetCache is the extraction cache of: a bounded LRU keyed by (mount
// id, path), eviction driven by a running byte total rather than an item
// count. The teacher's spinner package reaches for dgryski/go-tinylfu for
// its block cache, but tinylfu's Cache is sized by item count; this
// component's eviction policy (strict LRU, evict-until-fits by byte total,
// oversized entries never inserted, see testable property E3) has no match
// in an item-count-capacity cache, so it is built directly on container/list
// + map, mirroring the shape of spinner's own cache struct (mutex-guarded
// map plus an ordering structure) without adopting tinylfu's
// admission-filter semantics, which this cache's contract does not call for.
type byteBudgetCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	order    *list.List // front = most recently used
	index    map[cacheKey]*list.Element
}

type cacheKey struct {
	mountID string
	path    string
}

type cacheEntry struct {
	key  cacheKey
	data []byte
}

func newByteBudgetCache(capacity int64) *byteBudgetCache {
	return &byteBudgetCache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[cacheKey]*list.Element),
	}
}

// get returns the cached bytes for key, bumping it to most-recently-used on
// a hit.
func (c *byteBudgetCache) get(key cacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).data, true
}

// put inserts data under key, evicting least-recently-used entries until the
// new entry fits within capacity. Entries larger than capacity are never
// inserted.
func (c *byteBudgetCache) put(key cacheKey, data []byte) {
	size := int64(len(data))
	if size > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.size -= int64(len(el.Value.(*cacheEntry).data))
		c.order.Remove(el)
		delete(c.index, key)
	}

	for c.size+size > c.capacity {
		back := c.order.Back()
		if back == nil {
			break
		}
		entry := back.Value.(*cacheEntry)
		c.size -= int64(len(entry.data))
		c.order.Remove(back)
		delete(c.index, entry.key)
	}

	el := c.order.PushFront(&cacheEntry{key: key, data: data})
	c.index[key] = el
	c.size += size
}

// invalidateMount drops every cache entry owned by mountID, used when a
// mount is removed
func (c *byteBudgetCache) invalidateMount(mountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.index {
		if key.mountID != mountID {
			continue
		}
		c.order.Remove(el)
		delete(c.index, key)
		c.size -= int64(len(el.Value.(*cacheEntry).data))
	}
}
