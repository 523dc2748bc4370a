package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketdata/pkg/models"
)

// CompareSnapshots resolves symbols concurrently, at most maxConcurrency at
// a time. The result has one snapshot per input, in input order; a symbol
// that cannot be priced live does not affect the others.
func (r *Resolver) CompareSnapshots(ctx context.Context, symbols []string) []*models.Snapshot {
	out := make([]*models.Snapshot, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)
	for i, s := range symbols {
		i, s := i, s
		g.Go(func() error {
			out[i] = r.GetSnapshot(gctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
