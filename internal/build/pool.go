package build

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEach runs fn for every index in [0, n) with at most limit goroutines.
// Every item runs to completion so the reported error is the first one in
// index order, independent of scheduling. Cancellation of ctx stops items
// that have not started yet and is returned as ctx.Err().
func forEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if limit <= 0 {
		limit = 1
	}
	errs := make([]error, n)

	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
