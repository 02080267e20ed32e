package core

import "context"

// Deferred is the future returned by asynchronous-style callers. Operations
// run in issue order; today every Deferred is already resolved when returned,
// but callers must still Await it before observing the result.
type Deferred[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Defer runs op and returns its result as a Deferred.
func Defer[T any](ctx context.Context, op func(context.Context) (T, error)) *Deferred[T] {
	d := &Deferred[T]{done: make(chan struct{})}
	d.value, d.err = op(ctx)
	close(d.done)
	return d
}

// DeferErr adapts an operation that only returns an error.
func DeferErr(ctx context.Context, op func(context.Context) error) *Deferred[struct{}] {
	return Defer(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
}

// Done is closed once the operation has resolved.
func (d *Deferred[T]) Done() <-chan struct{} { return d.done }

// Await blocks until the operation resolves or ctx ends.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.value, d.err
	default:
	}
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
