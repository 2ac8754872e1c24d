package util

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Parallel runs fn over inputs with at most workerLimit calls in flight.
// The first error cancels the context handed to the remaining calls and is
// returned. Canceling parent stops feeding new inputs and its error is
// returned when no call failed.
func Parallel[T any](parent context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if len(inputs) == 0 {
		return nil
	}

	if workerLimit <= 0 {
		workerLimit = 1
	}

	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(workerLimit)

	for _, item := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return fn(ctx, item)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}
