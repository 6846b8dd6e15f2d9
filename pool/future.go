package pool

import "context"

// Future is the one-shot settlement handle returned by Submit. Exactly one
// of value/error is set, exactly once, when the task completes.
type Future[O any] struct {
	done chan struct{}
	val  O
	err  error
}

func newFuture[O any]() *Future[O] {
	return &Future[O]{done: make(chan struct{})}
}

// settle is called at most once; the pool's dispatch path guarantees it.
func (f *Future[O]) settle(val O, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Done is closed once the future has settled.
func (f *Future[O]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future settles or ctx ends. A context error does
// not settle the future: the task keeps running and Await may be retried.
func (f *Future[O]) Await(ctx context.Context) (O, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero O
		return zero, ctx.Err()
	}
}
