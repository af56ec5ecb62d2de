package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DayLRU bounds a Cache to a fixed number of distinct keys, evicting the
// least-recently-used key once capacity is exceeded. It wraps an underlying
// Cache (local or Redis) purely to enforce the capacity bound the TTL alone
// does not guarantee against unbounded key growth.
type DayLRU struct {
	backing  Cache
	capacity int
	ttl      time.Duration

	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
}

func NewDayLRU(backing Cache, capacity int, ttl time.Duration) *DayLRU {
	if capacity <= 0 {
		capacity = 30
	}
	return &DayLRU{
		backing:  backing,
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *DayLRU) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.backing.Get(ctx, key)
	if err != nil {
		return "", false
	}

	c.mu.Lock()
	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
	}
	c.mu.Unlock()

	return val, true
}

func (c *DayLRU) Set(ctx context.Context, key string, value string) error {
	if err := c.backing.Set(ctx, key, value, c.ttl); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		return nil
	}

	c.index[key] = c.order.PushFront(key)
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			evictKey := oldest.Value.(string)
			c.order.Remove(oldest)
			delete(c.index, evictKey)
			_ = c.backing.Delete(ctx, evictKey)
		}
	}
	return nil
}
