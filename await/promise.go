// Package await provides one-shot promises used to express awaitable
// handlers and checks.
//
// A Promise is completed exactly once, either with a value or with an error,
// and may be awaited any number of times. Awaiting respects context
// cancellation. A panic inside the producing function is captured and
// re-raised in the awaiting goroutine, so a failure surfaces to the caller
// exactly as it would from a direct call.
package await

import (
	"context"
	"fmt"
)

// Promise is a one-shot container for a value of type T or an error.
type Promise[T any] struct {
	done chan struct{}
	val  T
	err  error
	pval *panicValue
}

type panicValue struct {
	value any
}

// Go runs fn on its own goroutine and returns a Promise completed with its
// result.
func Go[T any](fn func() (T, error)) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{})}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.pval = &panicValue{value: r}
			}
			close(p.done)
		}()
		p.val, p.err = fn()
	}()
	return p
}

// Void is the value type for promises that only carry success or failure.
type Void = struct{}

// Do runs an error-only function on its own goroutine.
func Do(fn func() error) *Promise[Void] {
	return Go(func() (Void, error) { return Void{}, fn() })
}

// GoCtx is Go with a context threaded through to fn.
func GoCtx[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Promise[T] {
	return Go(func() (T, error) { return fn(ctx) })
}

// Resolved returns a promise already completed with v.
func Resolved[T any](v T) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), val: v}
	close(p.done)
	return p
}

// Failed returns a promise already completed with err.
func Failed[T any](err error) *Promise[T] {
	p := &Promise[T]{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

// Await blocks until the promise completes or ctx is done.
//
// Cancellation does not consume the result; a later Await can still observe
// it. If the producing function panicked, Await re-raises the panic.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	if p.pval != nil {
		panic(p.pval.value)
	}
	return p.val, p.err
}

// Done returns a channel closed when the promise completes.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// All awaits every promise and returns their values in order.
// The first error encountered wins; remaining promises are still completed
// by their producers but no longer awaited.
func All[T any](ctx context.Context, ps ...*Promise[T]) ([]T, error) {
	out := make([]T, len(ps))
	for i, p := range ps {
		v, err := p.Await(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p *Promise[T]) String() string {
	select {
	case <-p.done:
		if p.err != nil {
			return fmt.Sprintf("Promise(err: %v)", p.err)
		}
		return fmt.Sprintf("Promise(%v)", p.val)
	default:
		return "Promise(pending)"
	}
}
