// Package cache holds the pieces shared by the report cache backends.
package cache

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	interfaces "github.com/sheikh-saqib/financial-statements-engine/internal/interfaces"
)

// Flight collapses concurrent computations of the same key into one call.
type Flight struct {
	group singleflight.Group
}

// Do runs compute once for all concurrent callers of key. A caller whose
// context ends stops waiting; the computation keeps running for the others
// on a context that is not canceled with it.
func (f *Flight) Do(ctx context.Context, key string, compute interfaces.ComputeFunc) ([]byte, error) {
	detached := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		return compute(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// FlightKey identifies a computation of key in one generation of scope.
func FlightKey(scope string, gen uint64, key string) string {
	return fmt.Sprintf("%s:%d:%s", scope, gen, key)
}
