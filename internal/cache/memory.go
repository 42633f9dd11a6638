package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a process-local Cache. Expired entries are dropped lazily
// on read.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

func NewMemory(opts Options) *MemoryCache {
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultOptions().DefaultTTL
	}
	return &MemoryCache{
		items:      make(map[string]entry),
		defaultTTL: ttl,
		now:        time.Now,
	}
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.items[key] = entry{
		value:   append([]byte(nil), value...),
		expires: c.now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !c.now().Before(e.expires) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}

var _ Cache = (*MemoryCache)(nil)
