package fetcher

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MapWithConcurrency runs fn over items using exactly min(limit, len(items))
// workers pulling from a shared index cursor. The output slice is indexed by
// input position. fn is expected to handle its own per-item failures — an
// error returned by fn stops the remaining workers.
func MapWithConcurrency[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	var cursor atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)

	for w := 0; w < limit; w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1)) - 1
				if i >= len(items) {
					return nil
				}
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				r, err := fn(gCtx, items[i])
				if err != nil {
					return err
				}
				results[i] = r
			}
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
