package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sheikh-saqib/financial-statements-engine/internal/cache"
	interfaces "github.com/sheikh-saqib/financial-statements-engine/internal/interfaces"
)

const namespace = "report"

// Cache stores encoded reports in Redis. Each scope has a generation
// counter; keys embed the generation, so invalidating is a single INCR and
// stale keys age out through their TTL.
type Cache struct {
	client goredis.UniversalClient // works with both single and cluster
	flight cache.Flight
}

func NewCache(addrs []string, password string, useCluster bool) *Cache {
	var rdb goredis.UniversalClient

	if useCluster && len(addrs) > 1 {
		rdb = goredis.NewClusterClient(&goredis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	} else {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     addrs[0],
			Password: password,
			DB:       0,
		})
	}

	return &Cache{client: rdb}
}

// NewWithClient wraps an existing client.
func NewWithClient(client goredis.UniversalClient) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func genKey(scope string) string {
	return namespace + ":gen:{" + scope + "}"
}

func itemKey(scope string, gen uint64, key string) string {
	return fmt.Sprintf("%s:{%s}:%d:%s", namespace, scope, gen, key)
}

func (c *Cache) generation(ctx context.Context, scope string) (uint64, error) {
	gen, err := c.client.Get(ctx, genKey(scope)).Uint64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *Cache) Get(ctx context.Context, scope, key string) ([]byte, bool, error) {
	gen, err := c.generation(ctx, scope)
	if err != nil {
		return nil, false, err
	}
	return c.get(ctx, itemKey(scope, gen, key))
}

func (c *Cache) get(ctx context.Context, full string) ([]byte, bool, error) {
	v, err := c.client.Get(ctx, full).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, scope, key string, value []byte, ttl time.Duration) error {
	gen, err := c.generation(ctx, scope)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itemKey(scope, gen, key), value, ttl).Err()
}

func (c *Cache) Do(ctx context.Context, scope, key string, ttl time.Duration, compute interfaces.ComputeFunc) ([]byte, error) {
	gen, err := c.generation(ctx, scope)
	if err != nil {
		return nil, err
	}
	full := itemKey(scope, gen, key)
	if v, ok, err := c.get(ctx, full); err != nil || ok {
		return v, err
	}

	return c.flight.Do(ctx, cache.FlightKey(scope, gen, key), func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		// A failed write only costs a recompute on the next read.
		_ = c.client.Set(ctx, full, v, ttl).Err()
		return v, nil
	})
}

func (c *Cache) Invalidate(ctx context.Context, scope string) error {
	return c.client.Incr(ctx, genKey(scope)).Err()
}

var _ interfaces.ReportCache = (*Cache)(nil)
