package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sheikh-saqib/financial-statements-engine/internal/cache"
	interfaces "github.com/sheikh-saqib/financial-statements-engine/internal/interfaces"
)

type item struct {
	value   []byte
	gen     uint64
	expires time.Time // zero means no expiry
}

// Cache is an in-process report cache. Invalidating a scope bumps its
// generation, so a computation started before the bump never lands.
type Cache struct {
	mu      sync.Mutex
	entries map[string]map[string]item // scope -> key -> item
	gens    map[string]uint64
	flight  cache.Flight

	now func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]map[string]item),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

func (c *Cache) Get(ctx context.Context, scope, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.entries[scope][key]
	if !ok || it.gen != c.gens[scope] {
		return nil, false, nil
	}
	if !it.expires.IsZero() && !c.now().Before(it.expires) {
		delete(c.entries[scope], key)
		return nil, false, nil
	}
	return it.value, true, nil
}

func (c *Cache) Set(ctx context.Context, scope, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(scope, key, value, ttl, c.gens[scope])
	return nil
}

// store writes under the lock; it is a no-op when gen is no longer current.
// Expired items of the scope are swept on every write, since keys carry
// arbitrary date ranges and may never be read again.
func (c *Cache) store(scope, key string, value []byte, ttl time.Duration, gen uint64) {
	if gen != c.gens[scope] {
		return
	}
	now := c.now()
	it := item{value: value, gen: gen}
	if ttl > 0 {
		it.expires = now.Add(ttl)
	}
	items := c.entries[scope]
	if items == nil {
		items = make(map[string]item)
		c.entries[scope] = items
	}
	for k, old := range items {
		if !old.expires.IsZero() && !now.Before(old.expires) {
			delete(items, k)
		}
	}
	items[key] = it
}

// Len reports how many items scope holds, expired ones included.
func (c *Cache) Len(scope string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries[scope])
}

func (c *Cache) Do(ctx context.Context, scope, key string, ttl time.Duration, compute interfaces.ComputeFunc) ([]byte, error) {
	if v, ok, _ := c.Get(ctx, scope, key); ok {
		return v, nil
	}

	c.mu.Lock()
	gen := c.gens[scope]
	c.mu.Unlock()

	return c.flight.Do(ctx, cache.FlightKey(scope, gen, key), func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.store(scope, key, v, ttl, gen)
		c.mu.Unlock()
		return v, nil
	})
}

func (c *Cache) Invalidate(ctx context.Context, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[scope]++
	delete(c.entries, scope)
	return nil
}

var _ interfaces.ReportCache = (*Cache)(nil)
