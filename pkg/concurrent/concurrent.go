package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is a long-running unit of work that returns once ctx is done.
type Task func(ctx context.Context) error

// Run starts every task in its own goroutine and waits for all of them. The
// first task to fail cancels the context shared by the others, and its error
// is returned.
func Run(ctx context.Context, tasks ...Task) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		group.Go(func() error {
			return task(groupCtx)
		})
	}
	return group.Wait()
}

// ForEach runs action for each item concurrently with at most limit running
// at once (limit <= 0 means unbounded). It returns the first error.
func ForEach[T any](items []T, limit int, action func(T) error) error {
	var group errgroup.Group
	if limit > 0 {
		group.SetLimit(limit)
	}
	for _, item := range items {
		group.Go(func() error {
			return action(item)
		})
	}
	return group.Wait()
}
