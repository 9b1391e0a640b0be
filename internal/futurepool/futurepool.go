// Package futurepool provides a minimal, channel-backed future, adapted
// from the blocking Proc[T]/Pool[T] shape of a generic goroutine-pool
// library into a single-shot primitive keyed to one background call.
//
// Unlike a worker pool, callers here always know exactly one function needs
// running and exactly one (possibly repeated) wait is needed on its result —
// the queue that owns these futures is responsible for ordering, not this
// package. Neither limits how many futures run at once.
package futurepool

import (
	"context"
	"sync"
)

// Future represents a function already running in its own goroutine.
// The goroutine is launched by Go and always delivers exactly one result to
// an internal buffered channel, so it never blocks waiting for a reader —
// a Future that nobody ever Waits on still terminates cleanly.
type Future[T any] struct {
	ch   chan result[T]
	once sync.Once
	val  T
	err  error
}

type result[T any] struct {
	val T
	err error
}

// Go starts fn on a new goroutine against ctx and returns a handle to its
// eventual result. fn is invoked at most once, immediately; if ctx is
// already done when the goroutine starts, fn is not called and the result
// is ctx's error.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{ch: make(chan result[T], 1)}
	go func() {
		var r result[T]
		select {
		case <-ctx.Done():
			r.err = ctx.Err()
		default:
			r.val, r.err = fn(ctx)
		}
		f.ch <- r
	}()
	return f
}

// Wait blocks until fn's result is available or waitCtx is done, whichever
// comes first. The result is cached: subsequent calls (with any ctx) return
// the same value without blocking once the first Wait has observed it.
func (f *Future[T]) Wait(waitCtx context.Context) (T, error) {
	f.once.Do(func() {
		select {
		case r := <-f.ch:
			f.val, f.err = r.val, r.err
		case <-waitCtx.Done():
			f.err = waitCtx.Err()
		}
	})
	return f.val, f.err
}
