// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"container/list"
	"sync"

	"github.com/ik5/audstream/resource"
)

// DefaultCacheCapacity is the size of the shared format cache.
const DefaultCacheCapacity = 20

type cacheEntry struct {
	id     resource.Identifier
	format FileFormat
}

// FormatCache memoizes resolved formats by identifier. Entries are evicted in
// insertion order once the capacity is reached; reads never reorder them and
// nothing expires by time.
type FormatCache struct {
	capacity int
	order    *list.List
	entries  map[resource.Identifier]*list.Element

	mtx *sync.Mutex
}

var sharedCache = NewFormatCache(DefaultCacheCapacity)

// SharedCache returns the process-wide cache used by readers that are not
// given their own. It lives for the whole process.
func SharedCache() *FormatCache { return sharedCache }

// NewFormatCache creates a cache holding at most capacity entries. A
// capacity below one is raised to one.
func NewFormatCache(capacity int) *FormatCache {
	return &FormatCache{
		capacity: max(capacity, 1),
		order:    list.New(),
		entries:  make(map[resource.Identifier]*list.Element),
		mtx:      &sync.Mutex{},
	}
}

func (c *FormatCache) Get(id resource.Identifier) (FileFormat, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return FileFormat{}, false
	}
	return el.Value.(*cacheEntry).format, true
}

// Put stores f under id. An existing entry keeps its place in the eviction
// order. When the cache was full, the earliest inserted identifier is evicted
// and returned.
func (c *FormatCache) Put(id resource.Identifier, f FileFormat) (evicted resource.Identifier, ok bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if el, exists := c.entries[id]; exists {
		el.Value.(*cacheEntry).format = f
		return "", false
	}

	c.entries[id] = c.order.PushBack(&cacheEntry{id: id, format: f})
	if c.order.Len() <= c.capacity {
		return "", false
	}

	oldest := c.order.Front()
	c.order.Remove(oldest)
	e := oldest.Value.(*cacheEntry)
	delete(c.entries, e.id)
	return e.id, true
}

func (c *FormatCache) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.order.Len()
}

func (c *FormatCache) Capacity() int { return c.capacity }

// Keys lists the cached identifiers from oldest to newest.
func (c *FormatCache) Keys() []resource.Identifier {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	keys := make([]resource.Identifier, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*cacheEntry).id)
	}
	return keys
}
