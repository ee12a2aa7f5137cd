// Package batch is the pipeline's only concurrency-control primitive: it
// bounds in-flight requests per stage so rate-limited upstream services are
// never hit with unbounded fan-out.
package batch

import (
	"context"
	"fmt"
	"sync"
)

// Result is the per-item outcome of a Run call. Exactly one of Value/Err is
// meaningful; Index refers to the item's position in the input slice.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Ok reports whether the item succeeded.
func (r Result[R]) Ok() bool { return r.Err == nil }

// Run partitions items into ceil(len/size) sequential batches and runs fn
// concurrently within each batch. Every item yields a Result; a failing item
// never aborts its siblings or later batches. Results are slotted by input
// index, so aggregation is independent of completion order.
func Run[T, R any](ctx context.Context, items []T, size int, fn func(context.Context, T) (R, error)) []Result[R] {
	if size <= 0 {
		size = 1
	}

	results := make([]Result[R], len(items))

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				value, err := run(ctx, items[idx], fn)
				results[idx] = Result[R]{Index: idx, Value: value, Err: err}
			}(i)
		}
		wg.Wait()
	}

	return results
}

// run invokes fn, converting a panic into a per-item error so one bad item
// cannot take down the whole stage.
func run[T, R any](ctx context.Context, item T, fn func(context.Context, T) (R, error)) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}

// Values collects the successful values of results in input order.
func Values[R any](results []Result[R]) []R {
	values := make([]R, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			values = append(values, r.Value)
		}
	}
	return values
}
