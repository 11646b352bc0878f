package runbatch

import (
	"context"
	"sync"
)

// Worker processes one item. The index is the item's position in the input
// slice and therefore the position of its result in the output slice.
type Worker[T, R any] func(ctx context.Context, index int, item T) (R, error)

// Run dispatches items in sequential windows of batchSize concurrent calls.
// The next window starts only after every call in the current one has
// returned. results[i] always corresponds to items[i] no matter in which
// order calls complete inside a window.
//
// The first error (lowest index within its window) stops the loop after the
// current window drains; subsequent windows are never dispatched. Workers
// that tolerate failure must fold errors into their result type instead of
// returning them.
func Run[T, R any](ctx context.Context, items []T, batchSize int, worker Worker[T, R]) ([]R, error) {
	if batchSize < 1 {
		batchSize = 1
	}
	results := make([]R, len(items))
	errs := make([]error, len(items))

	for start := 0; start < len(items); start += batchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx], errs[idx] = worker(ctx, idx, items[idx])
			}(i)
		}
		wg.Wait()

		for i := start; i < end; i++ {
			if errs[i] != nil {
				return results, errs[i]
			}
		}
	}
	return results, nil
}
