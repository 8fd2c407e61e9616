// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	dErrors "registro/pkg/domain-errors"
	"registro/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Rejected  int32
	Conflicts int32
	Errors    int32
}

// Total returns the number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Rejected + r.Conflicts + r.Errors
}

// RunConcurrent starts all goroutines behind a shared gate so they race as
// closely as possible, then classifies each outcome. Capacity rejections are
// counted apart from conflicts and other failures.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg                                   sync.WaitGroup
		successes, rejected, conflicts, errs atomic.Int32
	)
	start := make(chan struct{})

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeCapacityExceeded):
				rejected.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Rejected:  rejected.Load(),
		Conflicts: conflicts.Load(),
		Errors:    errs.Load(),
	}
}

// RunConcurrentCtx is RunConcurrent with a shared context.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}
