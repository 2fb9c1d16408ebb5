package index

import (
	"container/list"
	"sync"
	"time"
)

type ttlEntry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// lruTTL is a threadsafe LRU with per-entry TTL, used for parse results
// keyed by file identity. Entries fall out on capacity or age, whichever
// hits first.
type lruTTL[K comparable, V any] struct {
	mu    sync.Mutex
	order *list.List
	items map[K]*list.Element
	max   int
	ttl   time.Duration
}

func newLRUTTL[K comparable, V any](max int, ttl time.Duration) *lruTTL[K, V] {
	if max <= 0 {
		max = 1
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &lruTTL[K, V]{
		order: list.New(),
		items: make(map[K]*list.Element),
		max:   max,
		ttl:   ttl,
	}
}

func (c *lruTTL[K, V]) get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, ok := c.items[key]
	if !ok {
		return zero, false
	}
	ent := ele.Value.(*ttlEntry[K, V])
	if time.Now().After(ent.expires) {
		c.drop(ele)
		return zero, false
	}
	c.order.MoveToFront(ele)
	return ent.value, true
}

func (c *lruTTL[K, V]) set(key K, value V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.items[key]; ok {
		ent := ele.Value.(*ttlEntry[K, V])
		ent.value = value
		ent.expires = time.Now().Add(c.ttl)
		c.order.MoveToFront(ele)
		return
	}
	ele := c.order.PushFront(&ttlEntry[K, V]{key: key, value: value, expires: time.Now().Add(c.ttl)})
	c.items[key] = ele
	for c.order.Len() > c.max {
		c.drop(c.order.Back())
	}
}

func (c *lruTTL[K, V]) drop(ele *list.Element) {
	if ele == nil {
		return
	}
	c.order.Remove(ele)
	delete(c.items, ele.Value.(*ttlEntry[K, V]).key)
}
