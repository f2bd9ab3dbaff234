package statement

import (
	"context"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

// NormalizeLeaf applies a leaf's operation type to its raw ledger sum:
// "+" is always positive, "-" always negative, "+/-" keeps the sign.
func NormalizeLeaf(op models.OperationType, sum decimal.Decimal) decimal.Decimal {
	switch op {
	case models.OpAdd:
		return sum.Abs()
	case models.OpSubtract:
		return sum.Abs().Neg()
	}
	return sum
}

// Resolution holds the resolved value of every node for every
// (period, series) pair.
type Resolution struct {
	index  map[seriesPeriod]int
	values []map[string]decimal.Decimal
}

// Value returns the resolved value; unknown keys read as zero.
func (r *Resolution) Value(nodeID string, p models.Period, s models.Series) decimal.Decimal {
	i, ok := r.index[seriesPeriod{Period: p, Series: s}]
	if !ok {
		return decimal.Zero
	}
	return r.values[i][nodeID]
}

// Resolve computes leaf, group and totalizer values. Pairs are independent
// so they are resolved concurrently; within a pair nodes follow the
// structure's resolution order.
func Resolve(ctx context.Context, s *Structure, b *Bucket) (*Resolution, error) {
	pairs := b.seriesPeriods()
	r := &Resolution{
		index:  make(map[seriesPeriod]int, len(pairs)),
		values: make([]map[string]decimal.Decimal, len(pairs)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, sp := range pairs {
		i, sp := i, sp
		r.index[sp] = i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.values[i] = s.resolvePair(b, sp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Structure) resolvePair(b *Bucket, sp seriesPeriod) map[string]decimal.Decimal {
	values := make(map[string]decimal.Decimal, len(s.order))
	for _, id := range s.order {
		n := s.nodes[s.index[id]]
		var v decimal.Decimal
		switch s.kinds[id] {
		case kindLeaf:
			raw, _ := b.Value(models.BucketKey{NodeID: id, Period: sp.Period, Series: sp.Series})
			v = NormalizeLeaf(n.Operation, raw)
		case kindGroup:
			for _, child := range s.children[id] {
				v = v.Add(values[child])
			}
		case kindTotalizer:
			for _, d := range n.Dependencies {
				v = v.Add(values[d.NodeID].Mul(decimal.NewFromInt(d.Factor())))
			}
		}
		values[id] = v
	}
	return values
}
