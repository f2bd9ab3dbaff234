package interfaces

import (
	"context"
	"time"
)

// ComputeFunc builds the encoded value for a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// ReportCache is a read-through cache for encoded reports, partitioned by scope.
type ReportCache interface {
	Get(ctx context.Context, scope, key string) ([]byte, bool, error)
	Set(ctx context.Context, scope, key string, value []byte, ttl time.Duration) error
	// Do returns the cached value or runs compute, letting at most one
	// computation per key run at a time; concurrent callers share its result.
	Do(ctx context.Context, scope, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error)
	// Invalidate drops every entry of scope.
	Invalidate(ctx context.Context, scope string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
